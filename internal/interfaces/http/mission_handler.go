package http

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/viaticos-api/internal/application/approval"
	"github.com/jhoicas/viaticos-api/internal/application/dto"
	"github.com/jhoicas/viaticos-api/internal/application/mission"
	"github.com/jhoicas/viaticos-api/internal/domain"
	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/internal/domain/workflow"
)

// MissionCreator alta de misiones.
type MissionCreator interface {
	Create(ctx context.Context, p entity.Principal, in dto.CreateMissionRequest) (*entity.Mission, error)
}

// MissionQueries lecturas del flujo.
type MissionQueries interface {
	States() []workflow.StateInfo
	GetMission(ctx context.Context, id int64) (*entity.Mission, error)
	History(ctx context.Context, id int64) ([]entity.HistoryEntry, error)
	Corrections(ctx context.Context, id int64) ([]entity.Correction, error)
	AvailableActions(ctx context.Context, id int64, p entity.Principal) (*entity.Mission, []workflow.Action, error)
	ListPending(ctx context.Context, p entity.Principal, limit, offset int) ([]*entity.Mission, int, error)
}

// TransitionExecutor única vía de cambio de estado.
type TransitionExecutor interface {
	Execute(ctx context.Context, in approval.ExecuteInput) (*approval.Result, error)
}

// EmployeeSearcher búsqueda de beneficiarios en RRHH.
type EmployeeSearcher interface {
	Search(ctx context.Context, query string, limit int) []entity.PersonnelRecord
}

// MissionHandler misiones, bandeja y transiciones.
type MissionHandler struct {
	creator   MissionCreator
	queries   MissionQueries
	evaluator TransitionExecutor
	employees EmployeeSearcher
}

// NewMissionHandler construye el handler.
func NewMissionHandler(creator MissionCreator, queries MissionQueries, evaluator TransitionExecutor, employees EmployeeSearcher) *MissionHandler {
	return &MissionHandler{creator: creator, queries: queries, evaluator: evaluator, employees: employees}
}

// Create godoc
// @Summary      Crear misión
// @Tags         missions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMissionRequest  true  "Datos de la misión"
// @Success      201   {object}  dto.MissionResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/missions [post]
func (h *MissionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMissionRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	m, err := h.creator.Create(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(mission.ToMissionResponse(m))
}

// GetByID godoc
// @Summary      Obtener misión
// @Tags         missions
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la misión"
// @Success      200  {object}  dto.MissionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/missions/{id} [get]
func (h *MissionHandler) GetByID(c *fiber.Ctx) error {
	id, err := missionID(c)
	if err != nil {
		return err
	}
	m, err := h.queries.GetMission(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(mission.ToMissionResponse(m))
}

// History godoc
// @Summary      Historial de flujo de la misión
// @Tags         missions
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la misión"
// @Success      200  {array}   dto.HistoryEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/missions/{id}/history [get]
func (h *MissionHandler) History(c *fiber.Ctx) error {
	id, err := missionID(c)
	if err != nil {
		return err
	}
	entries, err := h.queries.History(c.UserContext(), id)
	if err != nil {
		return err
	}
	out := make([]dto.HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, approval.ToHistoryEntryResponse(e))
	}
	return c.JSON(out)
}

// Corrections godoc
// @Summary      Subsanaciones solicitadas sobre la misión
// @Tags         missions
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la misión"
// @Success      200  {array}   dto.CorrectionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/missions/{id}/corrections [get]
func (h *MissionHandler) Corrections(c *fiber.Ctx) error {
	id, err := missionID(c)
	if err != nil {
		return err
	}
	list, err := h.queries.Corrections(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(approval.ToCorrectionResponses(list))
}

// Actions godoc
// @Summary      Acciones que el usuario puede ejecutar ahora
// @Tags         missions
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la misión"
// @Success      200  {object}  dto.AvailableActionsResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/missions/{id}/actions [get]
func (h *MissionHandler) Actions(c *fiber.Ctx) error {
	id, err := missionID(c)
	if err != nil {
		return err
	}
	m, actions, err := h.queries.AvailableActions(c.UserContext(), id, GetPrincipal(c))
	if err != nil {
		return err
	}
	return c.JSON(approval.ToAvailableActionsResponse(m, actions))
}

// Transition godoc
// @Summary      Ejecutar una acción del flujo
// @Tags         missions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                     true  "ID de la misión"
// @Param        body  body  dto.TransitionRequest   true  "Acción y datos"
// @Success      200   {object}  dto.TransitionResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/missions/{id}/transitions [post]
func (h *MissionHandler) Transition(c *fiber.Ctx) error {
	id, err := missionID(c)
	if err != nil {
		return err
	}
	var in dto.TransitionRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	exec, err := approval.FromTransitionRequest(id, GetPrincipal(c), in, c.IP())
	if err != nil {
		return err
	}
	res, err := h.evaluator.Execute(c.UserContext(), exec)
	if err != nil {
		return err
	}
	return c.JSON(approval.ToTransitionResponse(res))
}

// Pending godoc
// @Summary      Bandeja de misiones pendientes del usuario
// @Tags         missions
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Máximo de filas (1-100)"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {object}  dto.PendingListResponse
// @Router       /api/missions/pending [get]
func (h *MissionHandler) Pending(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return domain.Validationf("paginación inválida")
	}
	page.DefaultPage()
	if err := validateStruct(page); err != nil {
		return err
	}
	list, total, err := h.queries.ListPending(c.UserContext(), GetPrincipal(c), page.Limit, page.Offset)
	if err != nil {
		return err
	}
	return c.JSON(dto.PendingListResponse{
		Items: mission.ToMissionSummaries(list),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// States godoc
// @Summary      Catálogo de estados del flujo
// @Tags         workflow
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.StateResponse
// @Router       /api/workflow/states [get]
func (h *MissionHandler) States(c *fiber.Ctx) error {
	return c.JSON(approval.ToStateResponses(h.queries.States()))
}

// Employees godoc
// @Summary      Buscar beneficiarios en RRHH
// @Tags         employees
// @Security     Bearer
// @Produce      json
// @Param        q      query  string  true   "Cédula o nombre (mínimo 2 caracteres)"
// @Param        limit  query  int     false  "Máximo de resultados"
// @Success      200  {array}  dto.EmployeeResponse
// @Router       /api/employees [get]
func (h *MissionHandler) Employees(c *fiber.Ctx) error {
	recs := h.employees.Search(c.UserContext(), c.Query("q"), c.QueryInt("limit", 0))
	return c.JSON(mission.ToEmployeeResponses(recs))
}

func missionID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Validationf("id de misión inválido")
	}
	return id, nil
}
