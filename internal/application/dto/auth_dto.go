package dto

// LoginRequest login de usuario del sistema financiero.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
}

// EmployeeLoginRequest login de empleado contra RRHH.
type EmployeeLoginRequest struct {
	Cedula   string `json:"cedula" validate:"required,max=30"`
	Password string `json:"password" validate:"required"`
}

// PrincipalResponse vista del principal autenticado (sin credenciales).
type PrincipalResponse struct {
	ID                 string                     `json:"id"`
	Kind               string                     `json:"kind"`
	Name               string                     `json:"name"`
	RoleID             int                        `json:"role_id"`
	RoleName           string                     `json:"role_name"`
	DepartmentID       int                        `json:"department_id,omitempty"`
	IsDepartmentHead   bool                       `json:"is_department_head"`
	ManagedDepartments []int                      `json:"managed_departments"`
	Permissions        map[string]map[string]bool `json:"permissions"`
}

// LoginResponse token firmado más el principal que embebe.
type LoginResponse struct {
	Token     string            `json:"token"`
	ExpiresIn int               `json:"expires_in"` // segundos
	Principal PrincipalResponse `json:"principal"`
}
