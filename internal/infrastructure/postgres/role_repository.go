package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/viaticos-api/internal/domain"
	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/internal/domain/repository"
)

var _ repository.RoleRepository = (*RoleRepo)(nil)

// RoleRepo roles, permisos y rol_permisos.
type RoleRepo struct {
	q Querier
}

func NewRoleRepository(q Querier) *RoleRepo {
	return &RoleRepo{q: q}
}

// List roles con sus permisos, por id.
func (r *RoleRepo) List(ctx context.Context) ([]*entity.Role, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, nombre, COALESCE(descripcion, ''), is_active, created_at
		FROM roles ORDER BY id`)
	if err != nil {
		return nil, storageErr("list roles", err)
	}
	roles, err := pgx.CollectRows(rows, scanRole)
	if err != nil {
		return nil, storageErr("scan roles", err)
	}
	for _, role := range roles {
		if role.Permissions, err = r.PermissionsByRole(ctx, role.ID); err != nil {
			return nil, err
		}
	}
	return roles, nil
}

// GetByID (nil, nil) si no existe.
func (r *RoleRepo) GetByID(ctx context.Context, id int) (*entity.Role, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, nombre, COALESCE(descripcion, ''), is_active, created_at
		FROM roles WHERE id = $1`, id)
	if err != nil {
		return nil, storageErr("get role", err)
	}
	role, err := pgx.CollectExactlyOneRow(rows, scanRole)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("scan role", err)
	}
	if role.Permissions, err = r.PermissionsByRole(ctx, role.ID); err != nil {
		return nil, err
	}
	return role, nil
}

func scanRole(row pgx.CollectableRow) (*entity.Role, error) {
	var role entity.Role
	err := row.Scan(&role.ID, &role.Name, &role.Description, &role.IsActive, &role.CreatedAt)
	return &role, err
}

// Create inserta el rol; nombre repetido es ErrDuplicate.
func (r *RoleRepo) Create(ctx context.Context, role *entity.Role) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO roles (nombre, descripcion, is_active, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		role.Name, nullIfEmpty(role.Description), role.IsActive, role.CreatedAt,
	).Scan(&role.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: rol %q", domain.ErrDuplicate, role.Name)
		}
		return storageErr("insert role", err)
	}
	return nil
}

// ReplacePermissions reemplaza la asignación completa en una transacción.
func (r *RoleRepo) ReplacePermissions(ctx context.Context, roleID int, permissionIDs []int) error {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return storageErr("begin replace permissions", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM rol_permisos WHERE rol_id = $1`, roleID); err != nil {
		return storageErr("delete role permissions", err)
	}
	if len(permissionIDs) > 0 {
		_, err := tx.Exec(ctx, `
			INSERT INTO rol_permisos (rol_id, permiso_id)
			SELECT $1, unnest($2::int[])
			ON CONFLICT DO NOTHING`, roleID, permissionIDs)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.Validationf("permiso inexistente")
			}
			return storageErr("insert role permissions", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return storageErr("commit replace permissions", err)
	}
	return nil
}

// Delete borra el rol; si algún usuario lo referencia, ErrConflict.
func (r *RoleRepo) Delete(ctx context.Context, id int) error {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return storageErr("begin delete role", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM rol_permisos WHERE rol_id = $1`, id); err != nil {
		return storageErr("delete role permissions", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: rol %d en uso", domain.ErrConflict, id)
		}
		return storageErr("delete role", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return storageErr("commit delete role", err)
	}
	return nil
}

// PermissionsByRole permisos concedidos al rol, por módulo y acción.
func (r *RoleRepo) PermissionsByRole(ctx context.Context, roleID int) ([]entity.Permission, error) {
	rows, err := r.q.Query(ctx, `
		SELECT p.id, p.modulo, p.accion, COALESCE(p.etiqueta, ''), p.es_permiso_empleado
		FROM permisos p
		JOIN rol_permisos rp ON rp.permiso_id = p.id
		WHERE rp.rol_id = $1
		ORDER BY p.modulo, p.accion`, roleID)
	if err != nil {
		return nil, storageErr("list role permissions", err)
	}
	perms, err := pgx.CollectRows(rows, scanPermission)
	if err != nil {
		return nil, storageErr("scan role permissions", err)
	}
	return perms, nil
}

// ListPermissions catálogo completo.
func (r *RoleRepo) ListPermissions(ctx context.Context) ([]entity.Permission, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, modulo, accion, COALESCE(etiqueta, ''), es_permiso_empleado
		FROM permisos ORDER BY modulo, accion`)
	if err != nil {
		return nil, storageErr("list permissions", err)
	}
	perms, err := pgx.CollectRows(rows, scanPermission)
	if err != nil {
		return nil, storageErr("scan permissions", err)
	}
	return perms, nil
}

func scanPermission(row pgx.CollectableRow) (entity.Permission, error) {
	var p entity.Permission
	err := row.Scan(&p.ID, &p.Module, &p.Action, &p.Label, &p.IsEmployeeGrantable)
	return p, err
}
