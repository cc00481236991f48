package approval

import (
	"context"

	"github.com/jhoicas/viaticos-api/internal/domain"
	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/internal/domain/repository"
	"github.com/jhoicas/viaticos-api/internal/domain/workflow"
)

// QueryService lecturas del flujo: misión, historial, subsanaciones, acciones disponibles y bandeja.
type QueryService struct {
	graph       *workflow.Graph
	missions    repository.MissionRepository
	history     repository.HistoryRepository
	corrections repository.CorrectionRepository
}

// NewQueryService construye el servicio de consultas.
func NewQueryService(
	graph *workflow.Graph,
	missions repository.MissionRepository,
	history repository.HistoryRepository,
	corrections repository.CorrectionRepository,
) *QueryService {
	return &QueryService{graph: graph, missions: missions, history: history, corrections: corrections}
}

// States catálogo de estados ordenado.
func (s *QueryService) States() []workflow.StateInfo {
	return s.graph.States()
}

// GetMission misión con renglones y partidas.
func (s *QueryService) GetMission(ctx context.Context, id int64) (*entity.Mission, error) {
	m, err := s.missions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrMissionNotFound
	}
	return m, nil
}

// History historial completo ordenado por fecha y luego por id.
func (s *QueryService) History(ctx context.Context, id int64) ([]entity.HistoryEntry, error) {
	if _, err := s.GetMission(ctx, id); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByMission(ctx, id)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []entity.HistoryEntry{}
	}
	return entries, nil
}

// Corrections subsanaciones de la misión, pendientes o completadas, en orden de apertura.
func (s *QueryService) Corrections(ctx context.Context, id int64) ([]entity.Correction, error) {
	if _, err := s.GetMission(ctx, id); err != nil {
		return nil, err
	}
	list, err := s.corrections.ListByMission(ctx, id)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []entity.Correction{}
	}
	return list, nil
}

// AvailableActions acciones que el principal podría ejecutar ahora con los datos actuales de la misión.
func (s *QueryService) AvailableActions(ctx context.Context, id int64, p entity.Principal) (*entity.Mission, []workflow.Action, error) {
	m, err := s.GetMission(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	actions := []workflow.Action{}
	if p == nil || s.graph.IsFinal(m.State) {
		return m, actions, nil
	}
	for _, a := range s.graph.Actions(m.State) {
		if _, err := resolveTransition(s.graph, m, a, p); err == nil {
			actions = append(actions, a)
		}
	}
	return m, actions, nil
}

// ListPending bandeja del principal. Un jefe solo ve los departamentos que dirige y
// las subsanaciones solo le aparecen a quien preparó la misión.
func (s *QueryService) ListPending(ctx context.Context, p entity.Principal, limit, offset int) ([]*entity.Mission, int, error) {
	f := s.PendingFilter(p)
	f.Limit, f.Offset = limit, offset
	if len(f.OpenStates) == 0 && len(f.DepartmentStates) == 0 && len(f.PreparerStates) == 0 {
		return []*entity.Mission{}, 0, nil
	}
	return s.missions.ListPending(ctx, f)
}

// PendingFilter clasifica los estados donde el principal tiene alguna arista según la restricción de actor.
func (s *QueryService) PendingFilter(p entity.Principal) repository.PendingFilter {
	var f repository.PendingFilter
	if p == nil {
		return f
	}
	managed := p.ManagedDepartmentIDs()
	for _, st := range s.graph.StatesForRole(p.RoleID()) {
		open, dept, prep := false, false, false
		for _, a := range s.graph.Actions(st) {
			for _, t := range s.graph.Candidates(st, a) {
				if !t.AllowsRole(p.RoleID()) {
					continue
				}
				if t.Permission != "" && !p.Permissions().Allows(workflow.ModuleMisiones, t.Permission) {
					continue
				}
				switch {
				case t.DepartmentHeadOnly:
					dept = true
				case t.PreparerOnly:
					prep = true
				default:
					open = true
				}
			}
		}
		switch {
		case open:
			f.OpenStates = append(f.OpenStates, st)
		case dept && len(managed) > 0:
			f.DepartmentStates = append(f.DepartmentStates, st)
		case prep:
			f.PreparerStates = append(f.PreparerStates, st)
		}
	}
	if len(f.DepartmentStates) > 0 {
		f.DepartmentIDs = managed
	}
	if len(f.PreparerStates) > 0 {
		f.PreparerID = p.PrincipalID()
		f.PreparerKind = p.Kind()
	}
	return f
}
