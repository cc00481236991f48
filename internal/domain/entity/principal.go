package entity

import (
	"slices"
	"strconv"
)

// PrincipalKind origen de identidad del principal.
type PrincipalKind string

const (
	PrincipalFinancialUser PrincipalKind = "usuario_financiero"
	PrincipalEmployee      PrincipalKind = "empleado"
)

// RoleRef rol efectivo de un principal. Conjunto cerrado: FinancialRole o EmployeeRole.
type RoleRef interface {
	RoleID() int
	RoleName() string
	isRole()
}

// FinancialRole rol persistido en la tabla roles del sistema financiero.
type FinancialRole struct {
	ID   int
	Name string
}

func (r FinancialRole) RoleID() int      { return r.ID }
func (r FinancialRole) RoleName() string { return r.Name }
func (FinancialRole) isRole()            {}

// EmployeeRole rol sintetizado para empleados de RRHH al iniciar sesión; no se guarda por empleado.
type EmployeeRole int

const (
	EmployeeRoleRequester      EmployeeRole = 1
	EmployeeRoleDepartmentHead EmployeeRole = 2
)

func (r EmployeeRole) RoleID() int { return int(r) }

func (r EmployeeRole) RoleName() string {
	if r == EmployeeRoleDepartmentHead {
		return "Jefe Inmediato"
	}
	return "Solicitante"
}

func (EmployeeRole) isRole() {}

// Principal superficie de capacidades común a usuarios financieros y empleados.
// Las únicas implementaciones son *FinancialUser y *Employee.
type Principal interface {
	PrincipalID() string
	Kind() PrincipalKind
	DisplayName() string
	Role() RoleRef
	RoleID() int
	Permissions() PermissionSet
	ManagesDepartment(departmentID int) bool
	// HomeDepartment departamento de adscripción; 0 si no se conoce.
	HomeDepartment() int
	// ManagedDepartmentIDs departamentos que dirige; vacío para usuarios financieros.
	ManagedDepartmentIDs() []int
	IsDepartmentHead() bool
	isPrincipal()
}

// FinancialUser usuario autenticado contra el sistema financiero.
type FinancialUser struct {
	ID           int64
	Username     string
	RoleRef      FinancialRole
	DepartmentID int
	Active       bool
	Perms        PermissionSet
}

func (u *FinancialUser) PrincipalID() string         { return strconv.FormatInt(u.ID, 10) }
func (u *FinancialUser) Kind() PrincipalKind         { return PrincipalFinancialUser }
func (u *FinancialUser) DisplayName() string         { return u.Username }
func (u *FinancialUser) Role() RoleRef               { return u.RoleRef }
func (u *FinancialUser) RoleID() int                 { return u.RoleRef.ID }
func (u *FinancialUser) Permissions() PermissionSet  { return u.Perms }
func (u *FinancialUser) ManagesDepartment(int) bool  { return false }
func (u *FinancialUser) HomeDepartment() int         { return u.DepartmentID }
func (u *FinancialUser) ManagedDepartmentIDs() []int { return nil }
func (u *FinancialUser) IsDepartmentHead() bool      { return false }
func (*FinancialUser) isPrincipal()                  {}

// Employee empleado autenticado contra RRHH con rol derivado de datos organizacionales.
type Employee struct {
	Cedula             string
	Name               string
	DepartmentID       int
	EmployeeRole       EmployeeRole
	ManagedDepartments []int
	Perms              PermissionSet
}

func (e *Employee) PrincipalID() string         { return e.Cedula }
func (e *Employee) Kind() PrincipalKind         { return PrincipalEmployee }
func (e *Employee) DisplayName() string         { return e.Name }
func (e *Employee) Role() RoleRef               { return e.EmployeeRole }
func (e *Employee) RoleID() int                 { return int(e.EmployeeRole) }
func (e *Employee) Permissions() PermissionSet  { return e.Perms }
func (e *Employee) HomeDepartment() int         { return e.DepartmentID }
func (e *Employee) ManagedDepartmentIDs() []int { return e.ManagedDepartments }
func (*Employee) isPrincipal()                  {}

// IsDepartmentHead informa si el empleado figura como aprobador de algún departamento.
func (e *Employee) IsDepartmentHead() bool {
	return e.EmployeeRole == EmployeeRoleDepartmentHead
}

// ManagesDepartment informa si el empleado dirige el departamento indicado.
func (e *Employee) ManagesDepartment(departmentID int) bool {
	return slices.Contains(e.ManagedDepartments, departmentID)
}
