package auth

import (
	"fmt"
	"strconv"

	"github.com/jhoicas/viaticos-api/internal/application/dto"
	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/pkg/jwt"
)

// ClaimsFromPrincipal instantánea del principal que viaja en el token.
func ClaimsFromPrincipal(p entity.Principal) jwt.Claims {
	return jwt.Claims{
		PrincipalID:        p.PrincipalID(),
		Kind:               string(p.Kind()),
		DisplayName:        p.DisplayName(),
		RoleID:             p.RoleID(),
		RoleName:           p.Role().RoleName(),
		Permissions:        p.Permissions(),
		DepartmentID:       p.HomeDepartment(),
		ManagedDepartments: p.ManagedDepartmentIDs(),
	}
}

// PrincipalFromClaims reconstruye el principal desde un token ya validado, sin consultar la DB ni RRHH.
func PrincipalFromClaims(c *jwt.Claims) (entity.Principal, error) {
	perms := entity.PermissionSet(c.Permissions)
	if perms == nil {
		perms = entity.PermissionSet{}
	}
	switch c.Kind {
	case jwt.KindFinancialUser:
		id, err := strconv.ParseInt(c.PrincipalID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("principal_id inválido %q: %w", c.PrincipalID, err)
		}
		return &entity.FinancialUser{
			ID:           id,
			Username:     c.DisplayName,
			RoleRef:      entity.FinancialRole{ID: c.RoleID, Name: c.RoleName},
			DepartmentID: c.DepartmentID,
			Active:       true,
			Perms:        perms,
		}, nil
	case jwt.KindEmployee:
		role := entity.EmployeeRole(c.RoleID)
		if role != entity.EmployeeRoleRequester && role != entity.EmployeeRoleDepartmentHead {
			return nil, fmt.Errorf("rol de empleado inválido %d", c.RoleID)
		}
		return &entity.Employee{
			Cedula:             c.PrincipalID,
			Name:               c.DisplayName,
			DepartmentID:       c.DepartmentID,
			EmployeeRole:       role,
			ManagedDepartments: c.ManagedDepartments,
			Perms:              perms,
		}, nil
	default:
		return nil, fmt.Errorf("tipo de principal desconocido %q", c.Kind)
	}
}

// ToPrincipalResponse vista pública del principal.
func ToPrincipalResponse(p entity.Principal) dto.PrincipalResponse {
	r := dto.PrincipalResponse{
		ID:                 p.PrincipalID(),
		Kind:               string(p.Kind()),
		Name:               p.DisplayName(),
		RoleID:             p.RoleID(),
		RoleName:           p.Role().RoleName(),
		DepartmentID:       p.HomeDepartment(),
		IsDepartmentHead:   p.IsDepartmentHead(),
		ManagedDepartments: []int{},
		Permissions:        p.Permissions(),
	}
	if managed := p.ManagedDepartmentIDs(); len(managed) > 0 {
		r.ManagedDepartments = managed
	}
	if r.Permissions == nil {
		r.Permissions = map[string]map[string]bool{}
	}
	return r
}
