package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/viaticos-api/internal/application/auth"
	"github.com/jhoicas/viaticos-api/internal/application/dto"
	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/pkg/jwt"
)

// LocalPrincipal clave de Locals con el principal autenticado.
const LocalPrincipal = "principal"

const (
	codeMissingToken = "MISSING_TOKEN"
	codeInvalidToken = "INVALID_TOKEN"
)

// AuthMiddleware valida el Bearer Token JWT y reconstruye el principal desde sus claims.
// No consulta la DB ni RRHH: los permisos son la instantánea tomada al iniciar sesión.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, code, msg := bearerToken(c.Get(fiber.HeaderAuthorization))
		if code != "" {
			return unauthorized(c, code, msg)
		}
		claims, err := jwt.Parse(jwtSecret, token)
		if err != nil {
			return unauthorized(c, codeInvalidToken, "token inválido o expirado")
		}
		principal, err := auth.PrincipalFromClaims(claims)
		if err != nil {
			return unauthorized(c, codeInvalidToken, "token con principal inválido")
		}
		c.Locals(LocalPrincipal, principal)
		return c.Next()
	}
}

// bearerToken extrae el token de "Bearer <token>"; code vacío si es válido.
func bearerToken(header string) (token, code, msg string) {
	if header == "" {
		return "", codeMissingToken, "Authorization header requerido"
	}
	scheme, rest, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", codeInvalidToken, "formato: Bearer <token>"
	}
	if token = strings.TrimSpace(rest); token == "" {
		return "", codeMissingToken, "token vacío"
	}
	return token, "", ""
}

func unauthorized(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: code, Message: msg, RequestID: requestID(c)})
}

// GetPrincipal principal del contexto (después de AuthMiddleware); nil si no hay.
func GetPrincipal(c *fiber.Ctx) entity.Principal {
	p, _ := c.Locals(LocalPrincipal).(entity.Principal)
	return p
}
