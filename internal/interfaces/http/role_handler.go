package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/viaticos-api/internal/application/dto"
	"github.com/jhoicas/viaticos-api/internal/application/rbac"
	"github.com/jhoicas/viaticos-api/internal/domain"
	"github.com/jhoicas/viaticos-api/internal/domain/entity"
)

// RoleAdmin administración de roles (*rbac.RoleUseCase).
type RoleAdmin interface {
	List(ctx context.Context) ([]*entity.Role, error)
	Get(ctx context.Context, id int) (*entity.Role, rbac.Assignment, error)
	Create(ctx context.Context, name, description string, permissionIDs []int) (*entity.Role, error)
	ReplacePermissions(ctx context.Context, roleID int, permissionIDs []int) (*entity.Role, rbac.Assignment, error)
	Delete(ctx context.Context, id int) error
	Permissions(ctx context.Context) ([]entity.Permission, error)
}

// RoleHandler roles y catálogo de permisos.
type RoleHandler struct {
	uc RoleAdmin
}

func NewRoleHandler(uc RoleAdmin) *RoleHandler {
	return &RoleHandler{uc: uc}
}

// List godoc
// @Summary      Listar roles
// @Tags         roles
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.RoleResponse
// @Router       /api/roles [get]
func (h *RoleHandler) List(c *fiber.Ctx) error {
	roles, err := h.uc.List(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, rbac.ToRoleResponse(r))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener rol con permisos
// @Tags         roles
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del rol"
// @Success      200  {object}  dto.RoleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/roles/{id} [get]
func (h *RoleHandler) GetByID(c *fiber.Ctx) error {
	id, err := roleID(c)
	if err != nil {
		return err
	}
	role, a, err := h.uc.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(rbac.ToRoleDetailResponse(role, a))
}

// Create godoc
// @Summary      Crear rol
// @Tags         roles
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRoleRequest  true  "nombre, descripcion, permisos"
// @Success      201   {object}  dto.RoleResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/roles [post]
func (h *RoleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRoleRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	role, err := h.uc.Create(c.UserContext(), in.Name, in.Description, in.PermissionIDs)
	if err != nil {
		return err
	}
	_, a, err := h.uc.Get(c.UserContext(), role.ID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(rbac.ToRoleDetailResponse(role, a))
}

// ReplacePermissions godoc
// @Summary      Reemplazar permisos del rol
// @Tags         roles
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                            true  "ID del rol"
// @Param        body  body  dto.ReplacePermissionsRequest  true  "permisos"
// @Success      200   {object}  dto.RoleResponse
// @Router       /api/roles/{id}/permissions [put]
func (h *RoleHandler) ReplacePermissions(c *fiber.Ctx) error {
	id, err := roleID(c)
	if err != nil {
		return err
	}
	var in dto.ReplacePermissionsRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	role, a, err := h.uc.ReplacePermissions(c.UserContext(), id, in.PermissionIDs)
	if err != nil {
		return err
	}
	return c.JSON(rbac.ToRoleDetailResponse(role, a))
}

// Delete godoc
// @Summary      Eliminar rol
// @Tags         roles
// @Security     Bearer
// @Param        id   path  int  true  "ID del rol"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/roles/{id} [delete]
func (h *RoleHandler) Delete(c *fiber.Ctx) error {
	id, err := roleID(c)
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Permissions godoc
// @Summary      Catálogo de permisos
// @Tags         roles
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.PermissionResponse
// @Router       /api/permissions [get]
func (h *RoleHandler) Permissions(c *fiber.Ctx) error {
	perms, err := h.uc.Permissions(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(rbac.ToPermissionResponses(perms))
}

func roleID(c *fiber.Ctx) (int, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, domain.Validationf("id de rol inválido")
	}
	return id, nil
}
