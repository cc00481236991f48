package rbac

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/jhoicas/viaticos-api/internal/domain"
	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/internal/domain/repository"
)

// RoleUseCase administración de roles del sistema financiero.
type RoleUseCase struct {
	roles   repository.RoleRepository
	users   repository.UserAccountRepository
	catalog *Catalog
}

// NewRoleUseCase construye el caso de uso de roles.
func NewRoleUseCase(roles repository.RoleRepository, users repository.UserAccountRepository) *RoleUseCase {
	return &RoleUseCase{roles: roles, users: users, catalog: NewCatalog(roles)}
}

// List devuelve todos los roles.
func (uc *RoleUseCase) List(ctx context.Context) ([]*entity.Role, error) {
	return uc.roles.List(ctx)
}

// Get devuelve el rol con sus permisos en vista plana y anidada.
func (uc *RoleUseCase) Get(ctx context.Context, id int) (*entity.Role, Assignment, error) {
	role, err := uc.roles.GetByID(ctx, id)
	if err != nil {
		return nil, Assignment{}, err
	}
	if role == nil {
		return nil, Assignment{}, domain.ErrNotFound
	}
	a, err := uc.catalog.Assignment(ctx, id)
	if err != nil {
		return nil, Assignment{}, err
	}
	role.Permissions = a.Flat
	return role, a, nil
}

// Create crea un rol. El nombre es único sin distinguir mayúsculas ni acentos compuestos.
func (uc *RoleUseCase) Create(ctx context.Context, name, description string, permissionIDs []int) (*entity.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Validationf("el nombre del rol es requerido")
	}
	existing, err := uc.roles.List(ctx)
	if err != nil {
		return nil, err
	}
	fold := cases.Fold() // un Caser no se comparte entre goroutines
	folded := fold.String(name)
	for _, r := range existing {
		if fold.String(r.Name) == folded {
			return nil, fmt.Errorf("%w: ya existe el rol %q", domain.ErrDuplicate, r.Name)
		}
	}
	if err := uc.checkPermissionIDs(ctx, permissionIDs); err != nil {
		return nil, err
	}
	role := &entity.Role{Name: name, Description: description, IsActive: true}
	if err := uc.roles.Create(ctx, role); err != nil {
		return nil, err
	}
	if len(permissionIDs) > 0 {
		if err := uc.roles.ReplacePermissions(ctx, role.ID, permissionIDs); err != nil {
			return nil, err
		}
	}
	role, _, err = uc.Get(ctx, role.ID)
	return role, err
}

// ReplacePermissions sustituye el conjunto de permisos del rol.
func (uc *RoleUseCase) ReplacePermissions(ctx context.Context, roleID int, permissionIDs []int) (*entity.Role, Assignment, error) {
	role, err := uc.roles.GetByID(ctx, roleID)
	if err != nil {
		return nil, Assignment{}, err
	}
	if role == nil {
		return nil, Assignment{}, domain.ErrNotFound
	}
	if err := uc.checkPermissionIDs(ctx, permissionIDs); err != nil {
		return nil, Assignment{}, err
	}
	if err := uc.roles.ReplacePermissions(ctx, roleID, permissionIDs); err != nil {
		return nil, Assignment{}, err
	}
	return uc.Get(ctx, roleID)
}

// Delete elimina un rol que ningún usuario referencia.
func (uc *RoleUseCase) Delete(ctx context.Context, id int) error {
	role, err := uc.roles.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if role == nil {
		return domain.ErrNotFound
	}
	inUse, err := uc.users.CountByRole(ctx, id)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return fmt.Errorf("%w: el rol %q está asignado a %d usuario(s)", domain.ErrConflict, role.Name, inUse)
	}
	return uc.roles.Delete(ctx, id)
}

// Permissions catálogo completo de permisos.
func (uc *RoleUseCase) Permissions(ctx context.Context) ([]entity.Permission, error) {
	return uc.roles.ListPermissions(ctx)
}

func (uc *RoleUseCase) checkPermissionIDs(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	all, err := uc.roles.ListPermissions(ctx)
	if err != nil {
		return err
	}
	known := make(map[int]bool, len(all))
	for _, p := range all {
		known[p.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return domain.Validationf("permiso %d no existe", id)
		}
	}
	return nil
}
