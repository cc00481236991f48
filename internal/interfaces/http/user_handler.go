package http

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/viaticos-api/internal/application/dto"
	"github.com/jhoicas/viaticos-api/internal/application/users"
	"github.com/jhoicas/viaticos-api/internal/domain"
	"github.com/jhoicas/viaticos-api/internal/domain/entity"
)

// UserAdmin administración de usuarios financieros (*users.UserUseCase).
type UserAdmin interface {
	List(ctx context.Context, includeInactive bool, limit, offset int) ([]*entity.UserAccount, int, error)
	Get(ctx context.Context, id int64) (*entity.UserAccount, error)
	Create(ctx context.Context, in dto.CreateUserRequest) (*entity.UserAccount, error)
	Update(ctx context.Context, id int64, in dto.UpdateUserRequest) (*entity.UserAccount, error)
	ToggleActive(ctx context.Context, actor entity.Principal, id int64) (*entity.UserAccount, error)
}

// UserHandler usuarios del sistema financiero.
type UserHandler struct {
	uc UserAdmin
}

func NewUserHandler(uc UserAdmin) *UserHandler {
	return &UserHandler{uc: uc}
}

// List godoc
// @Summary      Listar usuarios
// @Tags         usuarios
// @Security     Bearer
// @Produce      json
// @Param        limit              query  int   false  "Máximo de filas (1-100)"
// @Param        offset             query  int   false  "Desplazamiento"
// @Param        incluir_inactivos  query  bool  false  "Incluir cuentas desactivadas"
// @Success      200  {object}  dto.UserListResponse
// @Router       /api/usuarios [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	var in dto.UserListRequest
	if err := c.QueryParser(&in); err != nil {
		return domain.Validationf("parámetros inválidos")
	}
	in.DefaultPage()
	if err := validateStruct(in); err != nil {
		return err
	}
	list, total, err := h.uc.List(c.UserContext(), in.IncludeInactive, in.Limit, in.Offset)
	if err != nil {
		return err
	}
	return c.JSON(dto.UserListResponse{
		Items: users.ToUserResponses(list),
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	})
}

// GetByID godoc
// @Summary      Obtener usuario
// @Tags         usuarios
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del usuario"
// @Success      200  {object}  dto.UserResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/usuarios/{id} [get]
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	u, err := h.uc.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(users.ToUserResponse(u))
}

// Create godoc
// @Summary      Crear usuario
// @Tags         usuarios
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateUserRequest  true  "username, password, rol_id"
// @Success      201   {object}  dto.UserResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/usuarios [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateUserRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	u, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(users.ToUserResponse(u))
}

// Update godoc
// @Summary      Cambiar rol o contraseña del usuario
// @Tags         usuarios
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                    true  "ID del usuario"
// @Param        body  body  dto.UpdateUserRequest  true  "rol_id, password"
// @Success      200   {object}  dto.UserResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/usuarios/{id} [patch]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	var in dto.UpdateUserRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	u, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(users.ToUserResponse(u))
}

// ToggleActive godoc
// @Summary      Activar o desactivar usuario
// @Tags         usuarios
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del usuario"
// @Success      200  {object}  dto.UserResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/usuarios/{id}/toggle-active [patch]
func (h *UserHandler) ToggleActive(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	u, err := h.uc.ToggleActive(c.UserContext(), GetPrincipal(c), id)
	if err != nil {
		return err
	}
	return c.JSON(users.ToUserResponse(u))
}

func userID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Validationf("id de usuario inválido")
	}
	return id, nil
}
