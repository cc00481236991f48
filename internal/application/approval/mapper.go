package approval

import (
	"strings"

	"github.com/jhoicas/viaticos-api/internal/application/dto"
	"github.com/jhoicas/viaticos-api/internal/domain"
	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/internal/domain/workflow"
)

// ToHistoryEntryResponse vista pública de una entrada de historial.
func ToHistoryEntryResponse(e entity.HistoryEntry) dto.HistoryEntryResponse {
	return dto.HistoryEntryResponse{
		ID:            e.ID,
		MissionID:     e.MissionID,
		FromState:     string(e.FromState),
		ToState:       string(e.ToState),
		Action:        string(e.Action),
		PrincipalID:   e.PrincipalID,
		PrincipalKind: string(e.PrincipalKind),
		RoleID:        e.RoleID,
		Comment:       e.Comment,
		Data:          e.Data,
		ClientIP:      e.ClientIP,
		CreatedAt:     e.CreatedAt,
	}
}

// ToCorrectionResponses subsanaciones para la API; la fecha límite viaja como fecha sin hora.
func ToCorrectionResponses(list []entity.Correction) []dto.CorrectionResponse {
	out := make([]dto.CorrectionResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.CorrectionResponse{
			ID:          c.ID,
			MissionID:   c.MissionID,
			Reason:      c.Reason,
			Deadline:    c.Deadline.Format(dto.DateLayout),
			Status:      c.Status,
			RequestedBy: c.RequestedBy,
			CreatedAt:   c.CreatedAt,
			CompletedAt: c.CompletedAt,
		})
	}
	return out
}

// ToTransitionResponse resultado de Execute para la API.
func ToTransitionResponse(r *Result) dto.TransitionResponse {
	return dto.TransitionResponse{
		MissionID: r.Mission.ID,
		FromState: string(r.From),
		NewState:  string(r.To),
		Entry:     ToHistoryEntryResponse(*r.Entry),
	}
}

// ToStateResponses catálogo de estados.
func ToStateResponses(states []workflow.StateInfo) []dto.StateResponse {
	out := make([]dto.StateResponse, 0, len(states))
	for _, s := range states {
		out = append(out, dto.StateResponse{Name: string(s.Name), Label: s.Label, IsFinal: s.IsFinal, Order: s.Order})
	}
	return out
}

// ToAvailableActionsResponse acciones disponibles.
func ToAvailableActionsResponse(m *entity.Mission, actions []workflow.Action) dto.AvailableActionsResponse {
	names := make([]string, 0, len(actions))
	for _, a := range actions {
		names = append(names, string(a))
	}
	return dto.AvailableActionsResponse{MissionID: m.ID, State: string(m.State), Actions: names}
}

// FromTransitionRequest traduce la petición HTTP a la entrada del evaluador.
func FromTransitionRequest(missionID int64, p entity.Principal, in dto.TransitionRequest, clientIP string) (ExecuteInput, error) {
	action, ok := workflow.ParseAction(strings.TrimSpace(in.Action))
	if !ok {
		return ExecuteInput{}, domain.Validationf("acción desconocida %q", in.Action)
	}
	var allocations []entity.BudgetAllocation
	for _, a := range in.Allocations {
		allocations = append(allocations, entity.BudgetAllocation{
			Code:        strings.TrimSpace(a.Code),
			Description: strings.TrimSpace(a.Description),
			Amount:      a.Amount,
		})
	}
	return ExecuteInput{
		MissionID: missionID,
		Action:    action,
		Principal: p,
		Payload: Payload{
			Comment:           in.Comment,
			ApprovedAmount:    in.ApprovedAmount,
			Allocations:       allocations,
			EndorsementNumber: strings.TrimSpace(in.EndorsementNumber),
			PaymentMethod:     strings.ToUpper(strings.TrimSpace(in.PaymentMethod)),
			TransactionNumber: strings.TrimSpace(in.TransactionNumber),
		},
		ExpectedState: workflow.State(strings.TrimSpace(in.ExpectedState)),
		ClientIP:      clientIP,
	}, nil
}
