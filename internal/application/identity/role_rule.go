package identity

import (
	"context"
	"slices"

	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/internal/domain/repository"
)

// RoleAssignment rol sintetizado para un empleado a partir de los departamentos que dirige.
type RoleAssignment struct {
	Role               entity.EmployeeRole
	RoleName           string
	IsDepartmentHead   bool
	ManagedDepartments []int
}

// AssignEmployeeRole regla pura: jefe inmediato si aprueba al menos un departamento, si no solicitante.
func AssignEmployeeRole(managed []int) RoleAssignment {
	depts := slices.Clone(managed)
	slices.Sort(depts)
	depts = slices.Compact(depts)
	role := entity.EmployeeRoleRequester
	if len(depts) > 0 {
		role = entity.EmployeeRoleDepartmentHead
	}
	return RoleAssignment{
		Role:               role,
		RoleName:           role.RoleName(),
		IsDepartmentHead:   role == entity.EmployeeRoleDepartmentHead,
		ManagedDepartments: depts,
	}
}

// RoleAssigner aplica la regla consultando RRHH.
type RoleAssigner struct {
	directory repository.EmployeeDirectory
}

// NewRoleAssigner construye el asignador de rol de empleados.
func NewRoleAssigner(directory repository.EmployeeDirectory) *RoleAssigner {
	return &RoleAssigner{directory: directory}
}

// Assign consulta los departamentos aprobados por la cédula. Un fallo de RRHH se propaga.
func (a *RoleAssigner) Assign(ctx context.Context, cedula string) (RoleAssignment, error) {
	managed, err := a.directory.ManagedDepartments(ctx, cedula)
	if err != nil {
		return RoleAssignment{}, err
	}
	return AssignEmployeeRole(managed), nil
}
