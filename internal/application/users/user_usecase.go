// Package users administra las cuentas del sistema financiero: alta con hash bcrypt,
// listado, cambio de rol o contraseña y activación.
package users

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/viaticos-api/internal/application/dto"
	"github.com/jhoicas/viaticos-api/internal/domain"
	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/internal/domain/repository"
	"github.com/jhoicas/viaticos-api/pkg/password"
)

// UserUseCase administración de usuarios financieros.
type UserUseCase struct {
	users repository.UserAccountRepository
	roles repository.RoleRepository
	log   zerolog.Logger
	now   func() time.Time
}

// NewUserUseCase construye el caso de uso.
func NewUserUseCase(users repository.UserAccountRepository, roles repository.RoleRepository, log zerolog.Logger) *UserUseCase {
	return &UserUseCase{users: users, roles: roles, log: log, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *UserUseCase) WithClock(now func() time.Time) *UserUseCase {
	uc.now = now
	return uc
}

// List página de usuarios; por defecto solo activos.
func (uc *UserUseCase) List(ctx context.Context, includeInactive bool, limit, offset int) ([]*entity.UserAccount, int, error) {
	list, total, err := uc.users.List(ctx, includeInactive, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if list == nil {
		list = []*entity.UserAccount{}
	}
	return list, total, nil
}

// Get usuario por id; ErrNotFound si no existe.
func (uc *UserUseCase) Get(ctx context.Context, id int64) (*entity.UserAccount, error) {
	u, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

// Create alta de usuario con rol existente y activo.
func (uc *UserUseCase) Create(ctx context.Context, in dto.CreateUserRequest) (*entity.UserAccount, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, domain.Validationf("username es requerido")
	}
	existing, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: el usuario %q ya existe", domain.ErrDuplicate, username)
	}
	role, err := uc.activeRole(ctx, in.RoleID)
	if err != nil {
		return nil, err
	}
	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.UserAccount{
		Username:     username,
		PasswordHash: hash,
		RoleID:       role.ID,
		RoleName:     role.Name,
		IsActive:     in.Active == nil || *in.Active,
		PersonalID:   in.PersonalID,
		DepartmentID: in.DepartmentID,
		CreatedAt:    uc.now(),
	}
	if err := uc.users.Create(ctx, u); err != nil {
		return nil, err
	}
	uc.log.Info().Int64("user_id", u.ID).Str("username", u.Username).Int("rol_id", u.RoleID).Msg("usuario creado")
	return u, nil
}

// Update cambia rol, contraseña o ambos. Sin campos es un error de validación.
func (uc *UserUseCase) Update(ctx context.Context, id int64, in dto.UpdateUserRequest) (*entity.UserAccount, error) {
	if in.RoleID == nil && in.Password == nil {
		return nil, domain.Validationf("no hay cambios que aplicar")
	}
	u, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.RoleID != nil && *in.RoleID != u.RoleID {
		role, err := uc.activeRole(ctx, *in.RoleID)
		if err != nil {
			return nil, err
		}
		if err := uc.users.UpdateRole(ctx, id, role.ID); err != nil {
			return nil, err
		}
		uc.log.Info().Int64("user_id", id).Int("from", u.RoleID).Int("to", role.ID).Msg("rol de usuario cambiado")
	}
	if in.Password != nil {
		hash, err := password.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		if err := uc.users.UpdatePassword(ctx, id, hash); err != nil {
			return nil, err
		}
		uc.log.Info().Int64("user_id", id).Msg("contraseña de usuario restablecida")
	}
	return uc.Get(ctx, id)
}

// ToggleActive invierte el estado de la cuenta. Nadie desactiva su propia cuenta.
func (uc *UserUseCase) ToggleActive(ctx context.Context, actor entity.Principal, id int64) (*entity.UserAccount, error) {
	u, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.IsActive && actor != nil && actor.Kind() == entity.PrincipalFinancialUser &&
		actor.PrincipalID() == strconv.FormatInt(u.ID, 10) {
		return nil, fmt.Errorf("%w: no puede desactivar su propia cuenta", domain.ErrConflict)
	}
	if err := uc.users.SetActive(ctx, id, !u.IsActive); err != nil {
		return nil, err
	}
	u.IsActive = !u.IsActive
	uc.log.Info().Int64("user_id", id).Bool("activo", u.IsActive).Msg("estado de usuario cambiado")
	return u, nil
}

func (uc *UserUseCase) activeRole(ctx context.Context, id int) (*entity.Role, error) {
	role, err := uc.roles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, domain.Validationf("rol %d no existe", id)
	}
	if !role.IsActive {
		return nil, domain.Validationf("rol %q inactivo", role.Name)
	}
	return role, nil
}
