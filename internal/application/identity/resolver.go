package identity

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/viaticos-api/internal/application/rbac"
	"github.com/jhoicas/viaticos-api/internal/domain"
	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/internal/domain/repository"
	"github.com/jhoicas/viaticos-api/pkg/password"
)

// Credentials datos de login. Kind elige la fuente de identidad.
type Credentials struct {
	Kind     entity.PrincipalKind
	Username string // usuario financiero
	Cedula   string // empleado
	Password string
}

// Resolver autentica contra el sistema financiero o contra RRHH y construye el principal.
type Resolver struct {
	users     repository.UserAccountRepository
	directory repository.EmployeeDirectory
	assigner  *RoleAssigner
	catalog   *rbac.Catalog
	log       zerolog.Logger
	now       func() time.Time
}

// NewResolver construye el resolvedor de identidad.
func NewResolver(users repository.UserAccountRepository, directory repository.EmployeeDirectory, catalog *rbac.Catalog, log zerolog.Logger) *Resolver {
	return &Resolver{
		users:     users,
		directory: directory,
		assigner:  NewRoleAssigner(directory),
		catalog:   catalog,
		log:       log,
		now:       time.Now,
	}
}

// Authenticate despacha según el tipo de credencial.
func (r *Resolver) Authenticate(ctx context.Context, c Credentials) (entity.Principal, error) {
	switch c.Kind {
	case entity.PrincipalFinancialUser:
		return r.AuthenticateFinancialUser(ctx, c.Username, c.Password)
	case entity.PrincipalEmployee:
		return r.AuthenticateEmployee(ctx, c.Cedula, c.Password)
	default:
		return nil, domain.Validationf("tipo de credencial desconocido %q", c.Kind)
	}
}

// AuthenticateFinancialUser valida usuario y contraseña bcrypt. Usuario inexistente,
// contraseña errónea o cuenta inactiva responden igual.
func (r *Resolver) AuthenticateFinancialUser(ctx context.Context, username, plain string) (*entity.FinancialUser, error) {
	username = strings.TrimSpace(username)
	if username == "" || plain == "" {
		return nil, domain.ErrAuthenticationFailed
	}
	acc, err := r.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if acc == nil || !password.VerifyBcrypt(acc.PasswordHash, plain) || !acc.IsActive {
		return nil, domain.ErrAuthenticationFailed
	}
	perms, err := r.catalog.PermissionsFor(ctx, acc.RoleID)
	if err != nil {
		return nil, err
	}
	if err := r.users.TouchLastAccess(ctx, acc.ID, r.now()); err != nil {
		r.log.Warn().Err(err).Int64("user_id", acc.ID).Msg("no se pudo registrar el último acceso")
	}
	u := &entity.FinancialUser{
		ID:       acc.ID,
		Username: acc.Username,
		RoleRef:  entity.FinancialRole{ID: acc.RoleID, Name: acc.RoleName},
		Active:   acc.IsActive,
		Perms:    perms,
	}
	if acc.DepartmentID != nil {
		u.DepartmentID = *acc.DepartmentID
	}
	return u, nil
}

// AuthenticateEmployee valida cédula y contraseña MD5 heredada de RRHH y sintetiza el rol.
func (r *Resolver) AuthenticateEmployee(ctx context.Context, cedula, plain string) (*entity.Employee, error) {
	cedula = strings.TrimSpace(cedula)
	if cedula == "" || plain == "" {
		return nil, domain.ErrAuthenticationFailed
	}
	rec, err := r.directory.LookupEmployee(ctx, cedula)
	if err != nil {
		return nil, err
	}
	if rec == nil || !rec.IsActive() || !password.VerifyLegacyMD5(rec.PasswordHash, plain) {
		return nil, domain.ErrAuthenticationFailed
	}
	assignment, err := r.assigner.Assign(ctx, rec.Cedula)
	if err != nil {
		return nil, err
	}
	perms, err := r.catalog.PermissionsFor(ctx, int(assignment.Role))
	if err != nil {
		return nil, err
	}
	return &entity.Employee{
		Cedula:             rec.Cedula,
		Name:               rec.FullName,
		DepartmentID:       rec.DepartmentID,
		EmployeeRole:       assignment.Role,
		ManagedDepartments: assignment.ManagedDepartments,
		Perms:              perms,
	}, nil
}
