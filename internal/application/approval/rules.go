package approval

import (
	"github.com/jhoicas/viaticos-api/internal/domain"
	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/internal/domain/workflow"
)

// permitted comprueba rol, permiso del módulo misiones y las restricciones de actor de la arista.
func permitted(t workflow.Transition, m *entity.Mission, p entity.Principal) bool {
	if !t.AllowsRole(p.RoleID()) {
		return false
	}
	if t.Permission != "" && !p.Permissions().Allows(workflow.ModuleMisiones, t.Permission) {
		return false
	}
	if t.DepartmentHeadOnly && !p.ManagesDepartment(m.DepartmentID) {
		return false
	}
	if t.PreparerOnly && !m.PreparedBy(p) {
		return false
	}
	return true
}

// resolveTransition decide la arista a ejecutar o el motivo del rechazo, en este orden:
// estado final, acción sin aristas, actor sin autorización, ninguna guarda satisfecha.
func resolveTransition(g *workflow.Graph, m *entity.Mission, action workflow.Action, p entity.Principal) (workflow.Transition, error) {
	if g.IsFinal(m.State) {
		return workflow.Transition{}, domain.ErrWorkflowTerminalState
	}
	candidates := g.Candidates(m.State, action)
	if len(candidates) == 0 {
		return workflow.Transition{}, domain.ErrInvalidActionForState
	}
	allowed := candidates[:0]
	for _, t := range candidates {
		if permitted(t, m, p) {
			allowed = append(allowed, t)
		}
	}
	if len(allowed) == 0 {
		return workflow.Transition{}, domain.ErrPermissionDenied
	}
	t, ok := workflow.Select(allowed, m.Facts())
	if !ok {
		return workflow.Transition{}, domain.ErrGuardNotSatisfied
	}
	return t, nil
}
