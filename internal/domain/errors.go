package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrAuthenticationFailed  = errors.New("credenciales inválidas")
	ErrPermissionDenied      = errors.New("permiso denegado")
	ErrMissionNotFound       = errors.New("misión no encontrada")
	ErrWorkflowTerminalState = errors.New("la misión está en un estado final")
	ErrInvalidActionForState = errors.New("acción no válida para el estado actual")
	ErrGuardNotSatisfied     = errors.New("los datos de la misión no satisfacen ninguna transición")
	ErrValidation            = errors.New("datos inválidos")
	ErrStorageUnavailable    = errors.New("almacenamiento no disponible")

	ErrNotFound  = errors.New("recurso no encontrado")
	ErrDuplicate = errors.New("recurso duplicado")
	ErrConflict  = errors.New("conflicto con el estado actual")
)

// Códigos estables expuestos a los clientes.
const (
	KindAuthenticationFailed  = "AUTHENTICATION_FAILED"
	KindPermissionDenied      = "PERMISSION_DENIED"
	KindMissionNotFound       = "MISSION_NOT_FOUND"
	KindWorkflowTerminalState = "WORKFLOW_TERMINAL_STATE"
	KindInvalidActionForState = "INVALID_ACTION_FOR_STATE"
	KindGuardNotSatisfied     = "GUARD_NOT_SATISFIED"
	KindValidation            = "VALIDATION_ERROR"
	KindStorageUnavailable    = "STORAGE_UNAVAILABLE"
	KindNotFound              = "NOT_FOUND"
	KindDuplicate             = "DUPLICATE"
	KindConflict              = "CONFLICT"
	KindInternal              = "INTERNAL"
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrAuthenticationFailed, KindAuthenticationFailed},
	{ErrPermissionDenied, KindPermissionDenied},
	{ErrMissionNotFound, KindMissionNotFound},
	{ErrWorkflowTerminalState, KindWorkflowTerminalState},
	{ErrInvalidActionForState, KindInvalidActionForState},
	{ErrGuardNotSatisfied, KindGuardNotSatisfied},
	{ErrValidation, KindValidation},
	{ErrStorageUnavailable, KindStorageUnavailable},
	{ErrNotFound, KindNotFound},
	{ErrDuplicate, KindDuplicate},
	{ErrConflict, KindConflict},
}

// Kind devuelve el código estable del error, o INTERNAL si no es un error de dominio.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// Validationf construye un ErrValidation con detalle.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// StorageUnavailable envuelve un fallo de infraestructura conservando la causa.
func StorageUnavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
