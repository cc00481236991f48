package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/viaticos-api/internal/application/dto"
	"github.com/jhoicas/viaticos-api/internal/domain"
)

// RequirePermission exige modulo.accion en la instantánea del token. Va después de AuthMiddleware;
// sin principal responde 401.
func RequirePermission(module, action string) fiber.Handler {
	code := module + "." + action
	return func(c *fiber.Ctx) error {
		p := GetPrincipal(c)
		if p == nil {
			return unauthorized(c, "UNAUTHORIZED", "sesión requerida")
		}
		if p.Permissions().Allows(module, action) {
			return c.Next()
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Code:      domain.KindPermissionDenied,
			Message:   fmt.Sprintf("el rol '%s' no tiene el permiso %s", p.Role().RoleName(), code),
			RequestID: requestID(c),
		})
	}
}
