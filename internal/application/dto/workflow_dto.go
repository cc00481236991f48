package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransitionRequest acción solicitada sobre una misión con su carga útil.
type TransitionRequest struct {
	Action            string                `json:"accion" validate:"required,oneof=APPROVE REJECT REQUEST_CORRECTION SUBMIT_CORRECTION ASSIGN_BUDGET ENDORSE MARK_PAID"`
	Comment           string                `json:"comentario" validate:"max=2000"`
	ApprovedAmount    *decimal.Decimal      `json:"monto_aprobado"`
	Allocations       []BudgetAllocationDTO `json:"partidas"`
	EndorsementNumber string                `json:"numero_refrendo" validate:"max=50"`
	PaymentMethod     string                `json:"metodo_pago" validate:"max=20"`
	TransactionNumber string                `json:"numero_transaccion" validate:"max=100"`
	ExpectedState     string                `json:"estado_esperado" validate:"max=50"`
}

// TransitionResponse resultado de una transición ejecutada.
type TransitionResponse struct {
	MissionID int64                `json:"mission_id"`
	FromState string               `json:"estado_anterior"`
	NewState  string               `json:"estado_nuevo"`
	Entry     HistoryEntryResponse `json:"historial"`
}

// HistoryEntryResponse entrada del historial de flujo.
type HistoryEntryResponse struct {
	ID            int64          `json:"id"`
	MissionID     int64          `json:"mission_id"`
	FromState     string         `json:"estado_anterior"`
	ToState       string         `json:"estado_nuevo"`
	Action        string         `json:"accion"`
	PrincipalID   string         `json:"usuario"`
	PrincipalKind string         `json:"tipo_usuario"`
	RoleID        int            `json:"rol_id"`
	Comment       string         `json:"comentario,omitempty"`
	Data          map[string]any `json:"datos_adicionales,omitempty"`
	ClientIP      string         `json:"ip_cliente,omitempty"`
	CreatedAt     time.Time      `json:"fecha_accion"`
}

// CorrectionResponse subsanación solicitada por Tesorería.
type CorrectionResponse struct {
	ID          int64      `json:"id"`
	MissionID   int64      `json:"mission_id"`
	Reason      string     `json:"motivo"`
	Deadline    string     `json:"fecha_limite"`
	Status      string     `json:"estado"`
	RequestedBy string     `json:"solicitado_por"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// AvailableActionsResponse acciones que el principal puede ejecutar ahora.
type AvailableActionsResponse struct {
	MissionID int64    `json:"mission_id"`
	State     string   `json:"estado"`
	Actions   []string `json:"acciones"`
}

// StateResponse entrada del catálogo de estados.
type StateResponse struct {
	Name    string `json:"nombre"`
	Label   string `json:"descripcion"`
	IsFinal bool   `json:"es_final"`
	Order   int    `json:"orden"`
}
