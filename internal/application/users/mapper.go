package users

import (
	"github.com/jhoicas/viaticos-api/internal/application/dto"
	"github.com/jhoicas/viaticos-api/internal/domain/entity"
)

// ToUserResponse vista pública del usuario, sin hash.
func ToUserResponse(u *entity.UserAccount) dto.UserResponse {
	return dto.UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		RoleID:       u.RoleID,
		RoleName:     u.RoleName,
		IsActive:     u.IsActive,
		PersonalID:   u.PersonalID,
		DepartmentID: u.DepartmentID,
		LastAccess:   u.LastAccess,
		CreatedAt:    u.CreatedAt,
	}
}

// ToUserResponses listado.
func ToUserResponses(list []*entity.UserAccount) []dto.UserResponse {
	out := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, ToUserResponse(u))
	}
	return out
}
