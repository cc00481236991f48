package dto

import "time"

// UserResponse usuario del sistema financiero; el hash nunca sale de la API.
type UserResponse struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	RoleID       int        `json:"rol_id"`
	RoleName     string     `json:"rol"`
	IsActive     bool       `json:"activo"`
	PersonalID   *int       `json:"personal_id,omitempty"`
	DepartmentID *int       `json:"id_departamento,omitempty"`
	LastAccess   *time.Time `json:"ultimo_acceso,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// UserListRequest filtros del listado de usuarios.
type UserListRequest struct {
	PageRequest
	IncludeInactive bool `query:"incluir_inactivos"`
}

// UserListResponse página de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// CreateUserRequest alta de usuario financiero. Active ausente equivale a true.
type CreateUserRequest struct {
	Username     string `json:"username" validate:"required,min=3,max=100"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
	RoleID       int    `json:"rol_id" validate:"required,gt=0"`
	Active       *bool  `json:"activo"`
	PersonalID   *int   `json:"personal_id" validate:"omitempty,gt=0"`
	DepartmentID *int   `json:"id_departamento" validate:"omitempty,gt=0"`
}

// UpdateUserRequest cambio parcial: rol, contraseña o ambos.
type UpdateUserRequest struct {
	RoleID   *int    `json:"rol_id" validate:"omitempty,gt=0"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
}
