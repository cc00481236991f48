package repository

import (
	"context"

	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/internal/domain/workflow"
)

// RoleRepository roles, permisos y su asignación.
type RoleRepository interface {
	List(ctx context.Context) ([]*entity.Role, error)
	GetByID(ctx context.Context, id int) (*entity.Role, error)
	Create(ctx context.Context, r *entity.Role) error
	ReplacePermissions(ctx context.Context, roleID int, permissionIDs []int) error
	Delete(ctx context.Context, id int) error
	PermissionsByRole(ctx context.Context, roleID int) ([]entity.Permission, error)
	ListPermissions(ctx context.Context) ([]entity.Permission, error)
}

// WorkflowRepository definición persistida del flujo (estados_flujo, transiciones_flujo).
type WorkflowRepository interface {
	// LoadDefinition devuelve found=false si las tablas están vacías.
	LoadDefinition(ctx context.Context) (def workflow.Definition, found bool, err error)
	SaveDefinition(ctx context.Context, def workflow.Definition) error
}
