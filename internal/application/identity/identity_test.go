package identity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/viaticos-api/internal/application/identity"
	"github.com/jhoicas/viaticos-api/internal/application/rbac"
	"github.com/jhoicas/viaticos-api/internal/domain"
	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/internal/domain/repository"
	"github.com/jhoicas/viaticos-api/pkg/password"
)

// md5("admin")
const md5Admin = "21232f297a57a5a743894a0e4a801fc3"

// ─── fakes ───────────────────────────────────────────────────────────────────

type fakeUsers struct {
	repository.UserAccountRepository
	accounts map[string]*entity.UserAccount
	touched  []int64
	touchErr error
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*entity.UserAccount, error) {
	return f.accounts[username], nil
}

func (f *fakeUsers) TouchLastAccess(_ context.Context, id int64, _ time.Time) error {
	if f.touchErr != nil {
		return f.touchErr
	}
	f.touched = append(f.touched, id)
	return nil
}

func (f *fakeUsers) CountByRole(context.Context, int) (int, error) { return 0, nil }

type fakeDirectory struct {
	records map[string]*entity.PersonnelRecord
	managed map[string][]int
	err     error
}

func (f *fakeDirectory) LookupEmployee(_ context.Context, cedula string) (*entity.PersonnelRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records[cedula], nil
}

func (f *fakeDirectory) ManagedDepartments(_ context.Context, cedula string) ([]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.managed[cedula], nil
}

func (f *fakeDirectory) SearchEmployees(context.Context, string, int) ([]entity.PersonnelRecord, error) {
	return nil, nil
}

type fakeRoles struct {
	repository.RoleRepository
	perms map[int][]entity.Permission
}

func (f *fakeRoles) PermissionsByRole(_ context.Context, roleID int) ([]entity.Permission, error) {
	return f.perms[roleID], nil
}

func fixtures(t *testing.T) (*fakeUsers, *fakeDirectory, *identity.Resolver) {
	t.Helper()
	hash, err := password.Hash("s3creta-larga")
	require.NoError(t, err)
	dept := 3
	users := &fakeUsers{accounts: map[string]*entity.UserAccount{
		"tesoreria": {ID: 5, Username: "tesoreria", PasswordHash: hash, RoleID: 3, RoleName: "Analista Tesorería", IsActive: true, DepartmentID: &dept},
		"inactivo":  {ID: 6, Username: "inactivo", PasswordHash: hash, RoleID: 3, IsActive: false},
	}}
	dir := &fakeDirectory{
		records: map[string]*entity.PersonnelRecord{
			"8-1-1": {Cedula: "8-1-1", FullName: "Ana Jefa", Status: "Activo", PasswordHash: md5Admin, DepartmentID: 7},
			"8-2-2": {Cedula: "8-2-2", FullName: "Beto Solicitante", Status: "Activo", PasswordHash: md5Admin, DepartmentID: 7},
			"8-3-3": {Cedula: "8-3-3", FullName: "Carla Baja", Status: entity.EstadoDeBaja, PasswordHash: md5Admin},
			"8-4-4": {Cedula: "8-4-4", FullName: "Hash Corto", Status: "Activo", PasswordHash: "abc123"},
		},
		managed: map[string][]int{"8-1-1": {7}},
	}
	roles := &fakeRoles{perms: map[int][]entity.Permission{
		2: {{Module: "misiones", Action: "aprobar"}},
		3: {{Module: "misiones", Action: "pagar"}},
	}}
	return users, dir, identity.NewResolver(users, dir, rbac.NewCatalog(roles), zerolog.Nop())
}

// ─── regla de asignación de rol ──────────────────────────────────────────────

func TestAssignEmployeeRole(t *testing.T) {
	jefe := identity.AssignEmployeeRole([]int{7, 7, 3})
	assert.Equal(t, entity.EmployeeRoleDepartmentHead, jefe.Role)
	assert.Equal(t, "Jefe Inmediato", jefe.RoleName)
	assert.True(t, jefe.IsDepartmentHead)
	assert.Equal(t, []int{3, 7}, jefe.ManagedDepartments)

	sol := identity.AssignEmployeeRole(nil)
	assert.Equal(t, entity.EmployeeRoleRequester, sol.Role)
	assert.Equal(t, "Solicitante", sol.RoleName)
	assert.False(t, sol.IsDepartmentHead)
	assert.Empty(t, sol.ManagedDepartments)
}

// ─── usuario financiero ──────────────────────────────────────────────────────

func TestResolver_UsuarioFinanciero(t *testing.T) {
	users, _, r := fixtures(t)

	u, err := r.AuthenticateFinancialUser(context.Background(), "tesoreria", "s3creta-larga")
	require.NoError(t, err)
	assert.Equal(t, "5", u.PrincipalID())
	assert.Equal(t, 3, u.RoleID())
	assert.Equal(t, 3, u.DepartmentID)
	assert.True(t, u.Permissions().Allows("misiones", "pagar"))
	assert.Equal(t, []int64{5}, users.touched)
}

func TestResolver_UsuarioFinancieroRechazos(t *testing.T) {
	_, _, r := fixtures(t)
	for name, c := range map[string][2]string{
		"clave errónea": {"tesoreria", "otra"},
		"inexistente":   {"nadie", "s3creta-larga"},
		"inactivo":      {"inactivo", "s3creta-larga"},
		"vacío":         {"", ""},
	} {
		_, err := r.AuthenticateFinancialUser(context.Background(), c[0], c[1])
		assert.ErrorIs(t, err, domain.ErrAuthenticationFailed, name)
	}
}

func TestResolver_UltimoAccesoEsBestEffort(t *testing.T) {
	users, _, r := fixtures(t)
	users.touchErr = errors.New("db lenta")

	_, err := r.AuthenticateFinancialUser(context.Background(), "tesoreria", "s3creta-larga")
	assert.NoError(t, err)
}

// ─── empleado ────────────────────────────────────────────────────────────────

func TestResolver_EmpleadoJefeDeDepartamento(t *testing.T) {
	_, _, r := fixtures(t)

	e, err := r.AuthenticateEmployee(context.Background(), "8-1-1", "admin")
	require.NoError(t, err)
	assert.Equal(t, 2, e.RoleID())
	assert.True(t, e.IsDepartmentHead())
	assert.Contains(t, e.ManagedDepartments, 7)
	assert.True(t, e.ManagesDepartment(7))
	assert.True(t, e.Permissions().Allows("misiones", "aprobar"))
}

func TestResolver_EmpleadoSolicitante(t *testing.T) {
	_, _, r := fixtures(t)

	p, err := r.Authenticate(context.Background(), identity.Credentials{Kind: entity.PrincipalEmployee, Cedula: "8-2-2", Password: "admin"})
	require.NoError(t, err)
	e := p.(*entity.Employee)
	assert.Equal(t, 1, e.RoleID())
	assert.Empty(t, e.ManagedDepartments)
	assert.NotNil(t, e.Permissions())
	assert.False(t, e.Permissions().Allows("misiones", "aprobar"), "rol 1 sin fila en roles da permisos vacíos")
}

func TestResolver_EmpleadoRechazos(t *testing.T) {
	_, _, r := fixtures(t)
	for name, c := range map[string][2]string{
		"dado de baja":       {"8-3-3", "admin"},
		"hash no MD5":        {"8-4-4", "abc123"},
		"clave errónea":      {"8-1-1", "Admin"},
		"cédula inexistente": {"0-0-0", "admin"},
	} {
		_, err := r.AuthenticateEmployee(context.Background(), c[0], c[1])
		assert.ErrorIs(t, err, domain.ErrAuthenticationFailed, name)
	}
}

func TestResolver_RRHHCaidoNoEsCredencialInvalida(t *testing.T) {
	_, dir, r := fixtures(t)
	dir.err = domain.StorageUnavailable("lookup employee", errors.New("dial tcp: connection refused"))

	_, err := r.AuthenticateEmployee(context.Background(), "8-1-1", "admin")
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.NotErrorIs(t, err, domain.ErrAuthenticationFailed)
}

func TestResolver_TipoDeCredencialDesconocido(t *testing.T) {
	_, _, r := fixtures(t)
	_, err := r.Authenticate(context.Background(), identity.Credentials{Kind: "otro"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
