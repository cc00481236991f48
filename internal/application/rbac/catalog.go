package rbac

import (
	"context"

	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/internal/domain/repository"
)

// Assignment permisos de un rol en sus dos vistas, proyectadas del mismo conjunto.
type Assignment struct {
	RoleID int
	Flat   []entity.Permission
	Nested entity.PermissionSet
}

// Catalog resuelve los permisos de un rol. Es total: un rol inexistente da el conjunto vacío.
type Catalog struct {
	roles repository.RoleRepository
}

// NewCatalog construye el catálogo de permisos.
func NewCatalog(roles repository.RoleRepository) *Catalog {
	return &Catalog{roles: roles}
}

// Assignment devuelve la lista plana y la vista anidada del rol.
// Solo falla si el almacenamiento no responde.
func (c *Catalog) Assignment(ctx context.Context, roleID int) (Assignment, error) {
	perms, err := c.roles.PermissionsByRole(ctx, roleID)
	if err != nil {
		return Assignment{}, err
	}
	if perms == nil {
		perms = []entity.Permission{}
	}
	return Assignment{RoleID: roleID, Flat: perms, Nested: entity.NewPermissionSet(perms)}, nil
}

// PermissionsFor vista anidada módulo -> acción -> permitido.
func (c *Catalog) PermissionsFor(ctx context.Context, roleID int) (entity.PermissionSet, error) {
	a, err := c.Assignment(ctx, roleID)
	if err != nil {
		return nil, err
	}
	return a.Nested, nil
}
