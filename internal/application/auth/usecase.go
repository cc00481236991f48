package auth

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/viaticos-api/internal/application/dto"
	"github.com/jhoicas/viaticos-api/internal/application/identity"
	"github.com/jhoicas/viaticos-api/internal/domain"
	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// LoginObserver recibe el resultado de cada intento de login (métricas).
type LoginObserver interface {
	LoginAttempt(kind entity.PrincipalKind, outcome string)
}

// AuthUseCase login de usuarios financieros y empleados; emite el token de sesión.
type AuthUseCase struct {
	resolver *identity.Resolver
	jwtCfg   JWTConfig
	observer LoginObserver
	log      zerolog.Logger
}

// NewAuthUseCase construye el caso de uso de auth. observer puede ser nil.
func NewAuthUseCase(resolver *identity.Resolver, jwtCfg JWTConfig, observer LoginObserver, log zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{resolver: resolver, jwtCfg: jwtCfg, observer: observer, log: log}
}

// Login autentica un usuario del sistema financiero.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	return uc.login(ctx, identity.Credentials{
		Kind:     entity.PrincipalFinancialUser,
		Username: in.Username,
		Password: in.Password,
	}, in.Username)
}

// EmployeeLogin autentica un empleado contra RRHH.
func (uc *AuthUseCase) EmployeeLogin(ctx context.Context, in dto.EmployeeLoginRequest) (*dto.LoginResponse, error) {
	return uc.login(ctx, identity.Credentials{
		Kind:     entity.PrincipalEmployee,
		Cedula:   in.Cedula,
		Password: in.Password,
	}, in.Cedula)
}

func (uc *AuthUseCase) login(ctx context.Context, cred identity.Credentials, who string) (*dto.LoginResponse, error) {
	p, err := uc.resolver.Authenticate(ctx, cred)
	if err != nil {
		uc.observe(cred.Kind, domain.Kind(err))
		ev := uc.log.Info()
		if domain.Kind(err) != domain.KindAuthenticationFailed {
			ev = uc.log.Error().Err(err)
		}
		ev.Str("kind", string(cred.Kind)).Str("login", who).Msg("login fallido")
		return nil, err
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, ClaimsFromPrincipal(p), uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	uc.observe(cred.Kind, "ok")
	uc.log.Info().Str("kind", string(p.Kind())).Str("principal", p.PrincipalID()).Int("role_id", p.RoleID()).Msg("login")
	return &dto.LoginResponse{
		Token:     token,
		ExpiresIn: uc.jwtCfg.ExpMinutes * 60,
		Principal: ToPrincipalResponse(p),
	}, nil
}

func (uc *AuthUseCase) observe(kind entity.PrincipalKind, outcome string) {
	if uc.observer != nil {
		uc.observer.LoginAttempt(kind, outcome)
	}
}
