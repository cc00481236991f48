package dto

import "time"

// PermissionResponse permiso del catálogo.
type PermissionResponse struct {
	ID                  int    `json:"id"`
	Module              string `json:"modulo"`
	Action              string `json:"accion"`
	Code                string `json:"codigo"`
	Label               string `json:"descripcion"`
	IsEmployeeGrantable bool   `json:"es_permiso_empleado"`
}

// RoleResponse rol con sus permisos en vista plana y anidada.
type RoleResponse struct {
	ID             int                        `json:"id"`
	Name           string                     `json:"nombre"`
	Description    string                     `json:"descripcion"`
	IsActive       bool                       `json:"activo"`
	CreatedAt      time.Time                  `json:"created_at"`
	Permissions    []PermissionResponse       `json:"permisos,omitempty"`
	PermissionTree map[string]map[string]bool `json:"permisos_por_modulo,omitempty"`
}

// CreateRoleRequest alta de rol.
type CreateRoleRequest struct {
	Name          string `json:"nombre" validate:"required,min=3,max=100"`
	Description   string `json:"descripcion" validate:"max=500"`
	PermissionIDs []int  `json:"permisos" validate:"dive,gt=0"`
}

// ReplacePermissionsRequest sustitución del conjunto de permisos del rol.
type ReplacePermissionsRequest struct {
	PermissionIDs []int `json:"permisos" validate:"required,dive,gt=0"`
}
