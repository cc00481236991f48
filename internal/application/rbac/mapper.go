package rbac

import (
	"github.com/jhoicas/viaticos-api/internal/application/dto"
	"github.com/jhoicas/viaticos-api/internal/domain/entity"
)

// ToPermissionResponses vista pública del catálogo.
func ToPermissionResponses(perms []entity.Permission) []dto.PermissionResponse {
	out := make([]dto.PermissionResponse, 0, len(perms))
	for _, p := range perms {
		out = append(out, dto.PermissionResponse{
			ID:                  p.ID,
			Module:              p.Module,
			Action:              p.Action,
			Code:                p.Code(),
			Label:               p.Label,
			IsEmployeeGrantable: p.IsEmployeeGrantable,
		})
	}
	return out
}

// ToRoleResponse rol sin permisos (listados).
func ToRoleResponse(r *entity.Role) dto.RoleResponse {
	return dto.RoleResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
	}
}

// ToRoleDetailResponse rol con ambas vistas de sus permisos.
func ToRoleDetailResponse(r *entity.Role, a Assignment) dto.RoleResponse {
	out := ToRoleResponse(r)
	out.Permissions = ToPermissionResponses(a.Flat)
	out.PermissionTree = a.Nested
	return out
}
