package users_test

import (
	"context"
	"encoding/json"
	"slices"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/viaticos-api/internal/application/dto"
	"github.com/jhoicas/viaticos-api/internal/application/users"
	"github.com/jhoicas/viaticos-api/internal/domain"
	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/internal/domain/repository"
	"github.com/jhoicas/viaticos-api/pkg/password"
)

var fixedNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// ─── fakes ───────────────────────────────────────────────────────────────────

type memUsers struct {
	byID   map[int64]*entity.UserAccount
	nextID int64
}

func newMemUsers(seed ...entity.UserAccount) *memUsers {
	m := &memUsers{byID: map[int64]*entity.UserAccount{}, nextID: 100}
	for _, u := range seed {
		c := u
		m.byID[u.ID] = &c
	}
	return m
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*entity.UserAccount, error) {
	for _, u := range m.byID {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*entity.UserAccount, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (m *memUsers) List(_ context.Context, includeInactive bool, limit, offset int) ([]*entity.UserAccount, int, error) {
	var all []*entity.UserAccount
	for _, u := range m.byID {
		if includeInactive || u.IsActive {
			c := *u
			all = append(all, &c)
		}
	}
	slices.SortFunc(all, func(a, b *entity.UserAccount) int { return int(a.ID - b.ID) })
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	return all[offset:min(offset+limit, total)], total, nil
}

func (m *memUsers) Create(_ context.Context, u *entity.UserAccount) error {
	u.ID = m.nextID
	m.nextID++
	c := *u
	m.byID[u.ID] = &c
	return nil
}

func (m *memUsers) UpdateRole(_ context.Context, id int64, roleID int) error {
	u, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.RoleID = roleID
	u.RoleName = roleNames[roleID]
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	u, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memUsers) SetActive(_ context.Context, id int64, active bool) error {
	u, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.IsActive = active
	return nil
}

func (m *memUsers) TouchLastAccess(context.Context, int64, time.Time) error { return nil }
func (m *memUsers) CountByRole(context.Context, int) (int, error)           { return 0, nil }

var roleNames = map[int]string{3: "Analista Tesorería", 5: "Contabilidad", 9: "Administrador Sistema"}

type fakeRoles struct {
	repository.RoleRepository
	inactive map[int]bool
}

func (f fakeRoles) GetByID(_ context.Context, id int) (*entity.Role, error) {
	name, ok := roleNames[id]
	if !ok {
		return nil, nil
	}
	return &entity.Role{ID: id, Name: name, IsActive: !f.inactive[id]}, nil
}

func newUseCase(repo *memUsers) *users.UserUseCase {
	return users.NewUserUseCase(repo, fakeRoles{inactive: map[int]bool{5: true}}, zerolog.Nop()).
		WithClock(func() time.Time { return fixedNow })
}

func tesorero() entity.UserAccount {
	return entity.UserAccount{ID: 1, Username: "tesoreria", RoleID: 3, RoleName: "Analista Tesorería", IsActive: true}
}

func adminPrincipal(id int64) *entity.FinancialUser {
	return &entity.FinancialUser{ID: id, Username: "admin", RoleRef: entity.FinancialRole{ID: 9, Name: "Administrador Sistema"}, Active: true}
}

// ─── alta ────────────────────────────────────────────────────────────────────

func TestCreate_GuardaHashBcrypt(t *testing.T) {
	repo := newMemUsers()
	dept := 4
	u, err := newUseCase(repo).Create(context.Background(), dto.CreateUserRequest{
		Username: "  presupuesto01 ", Password: "clave-segura-1", RoleID: 3, DepartmentID: &dept,
	})
	require.NoError(t, err)

	assert.Equal(t, "presupuesto01", u.Username)
	assert.True(t, u.IsActive, "activo por defecto")
	assert.Equal(t, "Analista Tesorería", u.RoleName)
	assert.Equal(t, fixedNow, u.CreatedAt)
	stored := repo.byID[u.ID]
	assert.NotEqual(t, "clave-segura-1", stored.PasswordHash)
	assert.True(t, password.VerifyBcrypt(stored.PasswordHash, "clave-segura-1"))
	assert.Equal(t, &dept, stored.DepartmentID)
}

func TestCreate_InactivoExplicito(t *testing.T) {
	inactive := false
	u, err := newUseCase(newMemUsers()).Create(context.Background(), dto.CreateUserRequest{
		Username: "auditor", Password: "clave-segura-1", RoleID: 3, Active: &inactive,
	})
	require.NoError(t, err)
	assert.False(t, u.IsActive)
}

func TestCreate_UsernameDuplicado(t *testing.T) {
	_, err := newUseCase(newMemUsers(tesorero())).Create(context.Background(), dto.CreateUserRequest{
		Username: "tesoreria", Password: "clave-segura-1", RoleID: 3,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreate_RolInexistenteOInactivo(t *testing.T) {
	uc := newUseCase(newMemUsers())
	for _, role := range []int{42, 5} {
		_, err := uc.Create(context.Background(), dto.CreateUserRequest{Username: "nuevo", Password: "clave-segura-1", RoleID: role})
		assert.ErrorIs(t, err, domain.ErrValidation, "rol %d", role)
	}
}

// ─── consulta ────────────────────────────────────────────────────────────────

func TestList_OcultaInactivosPorDefecto(t *testing.T) {
	off := tesorero()
	off.ID, off.Username, off.IsActive = 2, "baja", false
	uc := newUseCase(newMemUsers(tesorero(), off))

	list, total, err := uc.List(context.Background(), false, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "tesoreria", list[0].Username)

	list, total, err = uc.List(context.Background(), true, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, list, 2)
}

func TestList_VacioNoNulo(t *testing.T) {
	list, total, err := newUseCase(newMemUsers()).List(context.Background(), false, 20, 40)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, list)
}

func TestGet_NoEncontrado(t *testing.T) {
	_, err := newUseCase(newMemUsers()).Get(context.Background(), 7)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ─── cambios ─────────────────────────────────────────────────────────────────

func TestUpdate_CambiaRol(t *testing.T) {
	repo := newMemUsers(tesorero())
	role := 9
	u, err := newUseCase(repo).Update(context.Background(), 1, dto.UpdateUserRequest{RoleID: &role})
	require.NoError(t, err)
	assert.Equal(t, 9, u.RoleID)
	assert.Equal(t, "Administrador Sistema", u.RoleName)
}

func TestUpdate_RestableceContrasena(t *testing.T) {
	repo := newMemUsers(tesorero())
	pw := "otra-clave-larga"
	_, err := newUseCase(repo).Update(context.Background(), 1, dto.UpdateUserRequest{Password: &pw})
	require.NoError(t, err)
	assert.True(t, password.VerifyBcrypt(repo.byID[1].PasswordHash, pw))
}

func TestUpdate_Rechazos(t *testing.T) {
	uc := newUseCase(newMemUsers(tesorero()))
	inactiveRole := 5

	_, err := uc.Update(context.Background(), 1, dto.UpdateUserRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation, "sin cambios")

	_, err = uc.Update(context.Background(), 1, dto.UpdateUserRequest{RoleID: &inactiveRole})
	assert.ErrorIs(t, err, domain.ErrValidation, "rol inactivo")

	_, err = uc.Update(context.Background(), 99, dto.UpdateUserRequest{RoleID: &inactiveRole})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestToggleActive_AlternaEstado(t *testing.T) {
	repo := newMemUsers(tesorero())
	uc := newUseCase(repo)

	u, err := uc.ToggleActive(context.Background(), adminPrincipal(9), 1)
	require.NoError(t, err)
	assert.False(t, u.IsActive)
	assert.False(t, repo.byID[1].IsActive)

	u, err = uc.ToggleActive(context.Background(), adminPrincipal(9), 1)
	require.NoError(t, err)
	assert.True(t, u.IsActive)
}

func TestToggleActive_NoDesactivaSuPropiaCuenta(t *testing.T) {
	repo := newMemUsers(tesorero())

	_, err := newUseCase(repo).ToggleActive(context.Background(), adminPrincipal(1), 1)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.True(t, repo.byID[1].IsActive)
}

func TestToUserResponse_SinHash(t *testing.T) {
	u := tesorero()
	u.PasswordHash = "$2a$10$abc"
	raw, err := json.Marshal(users.ToUserResponse(&u))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"username":"tesoreria"`)
	assert.NotContains(t, string(raw), "$2a$")
}
