package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/viaticos-api/internal/domain"
	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/internal/domain/repository"
)

var _ repository.UserAccountRepository = (*UserRepo)(nil)

const userColumns = `u.id, u.username, u.password_hash, u.rol_id, r.nombre, u.is_active,
	u.ultimo_acceso, u.personal_id, u.id_departamento, u.created_at`

// UserRepo implementación del puerto UserAccountRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios financieros.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

func scanUser(row pgx.CollectableRow) (*entity.UserAccount, error) {
	var u entity.UserAccount
	err := row.Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.RoleID, &u.RoleName, &u.IsActive,
		&u.LastAccess, &u.PersonalID, &u.DepartmentID, &u.CreatedAt,
	)
	return &u, err
}

func (r *UserRepo) getOne(ctx context.Context, op, where string, arg any) (*entity.UserAccount, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+userColumns+`
		FROM usuarios u
		JOIN roles r ON r.id = u.rol_id
		WHERE `+where, arg)
	if err != nil {
		return nil, storageErr(op, err)
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr(op, err)
	}
	return u, nil
}

// GetByUsername usuario con el nombre de su rol; (nil, nil) si no existe.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.UserAccount, error) {
	return r.getOne(ctx, "get user by username", "u.username = $1", username)
}

// GetByID usuario con el nombre de su rol; (nil, nil) si no existe.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.UserAccount, error) {
	return r.getOne(ctx, "get user", "u.id = $1", id)
}

// List página de usuarios ordenada por id.
func (r *UserRepo) List(ctx context.Context, includeInactive bool, limit, offset int) ([]*entity.UserAccount, int, error) {
	var total int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM usuarios WHERE $1 OR is_active`, includeInactive).Scan(&total)
	if err != nil {
		return nil, 0, storageErr("count users", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT `+userColumns+`
		FROM usuarios u
		JOIN roles r ON r.id = u.rol_id
		WHERE $1 OR u.is_active
		ORDER BY u.id
		LIMIT $2 OFFSET $3`, includeInactive, limit, offset)
	if err != nil {
		return nil, 0, storageErr("list users", err)
	}
	users, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, 0, storageErr("scan users", err)
	}
	return users, total, nil
}

// Create alta estricta desde la administración de usuarios.
func (r *UserRepo) Create(ctx context.Context, u *entity.UserAccount) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO usuarios (username, password_hash, rol_id, is_active, personal_id, id_departamento, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		u.Username, u.PasswordHash, u.RoleID, u.IsActive, u.PersonalID, u.DepartmentID, u.CreatedAt,
	).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: usuario %q o personal_id ya registrado", domain.ErrDuplicate, u.Username)
		}
		if isForeignKeyViolation(err) {
			return domain.Validationf("rol %d no existe", u.RoleID)
		}
		return storageErr("insert user", err)
	}
	return nil
}

// Upsert alta idempotente usada por la semilla: un username existente recibe el hash y el rol nuevos.
func (r *UserRepo) Upsert(ctx context.Context, u *entity.UserAccount) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO usuarios (username, password_hash, rol_id, is_active, personal_id, id_departamento, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash, rol_id = EXCLUDED.rol_id
		RETURNING id`,
		u.Username, u.PasswordHash, u.RoleID, u.IsActive, u.PersonalID, u.DepartmentID, u.CreatedAt,
	).Scan(&u.ID)
	if err != nil {
		return storageErr("upsert user", err)
	}
	return nil
}

func (r *UserRepo) update(ctx context.Context, op, set string, id int64, arg any) error {
	tag, err := r.q.Exec(ctx, `UPDATE usuarios SET `+set+` = $2 WHERE id = $1`, id, arg)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Validationf("rol %v no existe", arg)
		}
		return storageErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateRole reasigna el rol del usuario.
func (r *UserRepo) UpdateRole(ctx context.Context, id int64, roleID int) error {
	return r.update(ctx, "update user role", "rol_id", id, roleID)
}

// UpdatePassword sustituye el hash bcrypt.
func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.update(ctx, "update user password", "password_hash", id, hash)
}

// SetActive activa o desactiva la cuenta.
func (r *UserRepo) SetActive(ctx context.Context, id int64, active bool) error {
	return r.update(ctx, "set user active", "is_active", id, active)
}

// TouchLastAccess actualiza ultimo_acceso.
func (r *UserRepo) TouchLastAccess(ctx context.Context, id int64, at time.Time) error {
	if _, err := r.q.Exec(ctx, `UPDATE usuarios SET ultimo_acceso = $2 WHERE id = $1`, id, at); err != nil {
		return storageErr("touch last access", err)
	}
	return nil
}

// CountByRole usuarios asignados al rol.
func (r *UserRepo) CountByRole(ctx context.Context, roleID int) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM usuarios WHERE rol_id = $1`, roleID).Scan(&n); err != nil {
		return 0, storageErr("count users by role", err)
	}
	return n, nil
}
