package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/viaticos-api/internal/application/auth"
	"github.com/jhoicas/viaticos-api/internal/application/dto"
)

// AuthService lo que AuthHandler necesita de *auth.AuthUseCase.
type AuthService interface {
	Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error)
	EmployeeLogin(ctx context.Context, in dto.EmployeeLoginRequest) (*dto.LoginResponse, error)
}

// AuthHandler login de usuarios financieros y de empleados.
type AuthHandler struct {
	uc AuthService
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc AuthService) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Login godoc
// @Summary      Iniciar sesión (usuario financiero)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "username, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// EmployeeLogin godoc
// @Summary      Iniciar sesión (empleado de RRHH)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.EmployeeLoginRequest  true  "cedula, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/auth/employee/login [post]
func (h *AuthHandler) EmployeeLogin(c *fiber.Ctx) error {
	var in dto.EmployeeLoginRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.EmployeeLogin(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Me godoc
// @Summary      Principal de la sesión actual
// @Tags         auth
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.PrincipalResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(auth.ToPrincipalResponse(GetPrincipal(c)))
}
