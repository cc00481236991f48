package approval

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/viaticos-api/internal/domain"
	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/internal/domain/repository"
	"github.com/jhoicas/viaticos-api/internal/domain/workflow"
)

// Métodos de pago aceptados por MARK_PAID.
var PaymentMethods = []string{"EFECTIVO", "TRANSFERENCIA", "ACH", "CHEQUE"}

// Payload datos que acompañan a la acción.
type Payload struct {
	Comment           string
	ApprovedAmount    *decimal.Decimal
	Allocations       []entity.BudgetAllocation
	EndorsementNumber string
	PaymentMethod     string
	TransactionNumber string
}

// ExecuteInput solicitud de transición. ExpectedState, si viene, debe coincidir con el estado
// actual; así un reintento de una transición ya aplicada falla con ErrInvalidActionForState.
type ExecuteInput struct {
	MissionID     int64
	Action        workflow.Action
	Principal     entity.Principal
	Payload       Payload
	ExpectedState workflow.State
	ClientIP      string
}

// Result estado nuevo y la entrada de historial escrita en la misma transacción.
type Result struct {
	Mission *entity.Mission
	From    workflow.State
	To      workflow.State
	Entry   *entity.HistoryEntry
}

// Evaluator única vía de cambio de estado de una misión.
type Evaluator struct {
	graph    *workflow.Graph
	settings workflow.Settings
	tx       TxRunner
	notifier Notifier
	recorder Recorder
	log      zerolog.Logger
	now      func() time.Time
}

// Option personaliza el evaluador.
type Option func(*Evaluator)

// WithNotifier despachador de avisos posterior al commit.
func WithNotifier(n Notifier) Option { return func(e *Evaluator) { e.notifier = n } }

// WithRecorder métricas de transiciones.
func WithRecorder(r Recorder) Option { return func(e *Evaluator) { e.recorder = r } }

// WithLogger logger del componente.
func WithLogger(l zerolog.Logger) Option { return func(e *Evaluator) { e.log = l } }

// WithClock reloj usado para sellar historial y plazos.
func WithClock(now func() time.Time) Option { return func(e *Evaluator) { e.now = now } }

// NewEvaluator construye el evaluador de transiciones.
func NewEvaluator(graph *workflow.Graph, settings workflow.Settings, tx TxRunner, opts ...Option) *Evaluator {
	e := &Evaluator{
		graph:    graph,
		settings: settings,
		tx:       tx,
		notifier: nopNotifier{},
		recorder: nopRecorder{},
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Execute aplica la acción sobre la misión de forma atómica: bloqueo de la fila, decisión,
// efectos de la carga útil, cambio de estado y entrada de historial confirman juntos o nada.
func (e *Evaluator) Execute(ctx context.Context, in ExecuteInput) (*Result, error) {
	if in.Principal == nil {
		return nil, domain.ErrPermissionDenied
	}
	var res *Result
	err := e.tx.RunWorkflow(ctx, func(
		missions repository.MissionRepository,
		corrections repository.CorrectionRepository,
		history repository.HistoryRepository,
	) error {
		m, err := missions.GetForUpdate(ctx, in.MissionID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrMissionNotFound
		}
		if in.ExpectedState != "" && in.ExpectedState != m.State && !e.graph.IsFinal(m.State) {
			return domain.ErrInvalidActionForState
		}
		t, err := resolveTransition(e.graph, m, in.Action, in.Principal)
		if errors.Is(err, domain.ErrPermissionDenied) && in.ExpectedState == "" {
			replay, herr := e.replayed(ctx, history, m, in)
			if herr != nil {
				return herr
			}
			if replay {
				return domain.ErrInvalidActionForState
			}
		}
		if err != nil {
			return err
		}
		if err := e.validatePayload(t, in.Payload); err != nil {
			return err
		}

		at := e.stamp(m)
		data, err := e.applyEffects(ctx, t, m, in, at, missions, corrections)
		if err != nil {
			return err
		}
		if err := missions.UpdateState(ctx, m.ID, m.State, t.To, at); err != nil {
			return err
		}
		entry := &entity.HistoryEntry{
			MissionID:     m.ID,
			FromState:     m.State,
			ToState:       t.To,
			Action:        t.Action,
			PrincipalID:   in.Principal.PrincipalID(),
			PrincipalKind: in.Principal.Kind(),
			RoleID:        in.Principal.RoleID(),
			Comment:       strings.TrimSpace(in.Payload.Comment),
			Data:          data,
			ClientIP:      in.ClientIP,
			CreatedAt:     at,
		}
		if err := history.Append(ctx, entry); err != nil {
			return err
		}
		from := m.State
		m.State = t.To
		m.UpdatedAt = at
		res = &Result{Mission: m, From: from, To: t.To, Entry: entry}
		return nil
	})
	if err != nil {
		kind := domain.Kind(err)
		e.recorder.TransitionRejected(in.Action, kind)
		ev := e.log.Info()
		if kind == domain.KindStorageUnavailable || kind == domain.KindInternal {
			ev = e.log.Error()
		}
		ev.Err(err).Int64("mission_id", in.MissionID).Str("action", string(in.Action)).
			Str("principal", in.Principal.PrincipalID()).Str("kind", kind).Msg("transición rechazada")
		return nil, err
	}

	e.recorder.TransitionApplied(in.Action, res.From, res.To)
	e.log.Info().Int64("mission_id", res.Mission.ID).Str("action", string(in.Action)).
		Str("from", string(res.From)).Str("to", string(res.To)).
		Str("principal", in.Principal.PrincipalID()).Msg("transición aplicada")
	e.notifier.MissionTransitioned(context.WithoutCancel(ctx), TransitionNotice{
		MissionID:     res.Mission.ID,
		RequestNumber: res.Mission.RequestNumber,
		Action:        in.Action,
		FromState:     res.From,
		NewState:      res.To,
		BeneficiaryID: res.Mission.BeneficiaryID,
		PrincipalID:   in.Principal.PrincipalID(),
		OccurredAt:    res.Entry.CreatedAt,
	})
	return res, nil
}

// replayed indica si la última entrada del historial ya aplicó esta acción y el actor podía
// ejecutarla desde el estado anterior. Sin estado esperado, un reintento o el perdedor de una
// carrera llega aquí con el estado ya avanzado y debe ver una acción inválida, no un permiso denegado.
func (e *Evaluator) replayed(ctx context.Context, history repository.HistoryRepository, m *entity.Mission, in ExecuteInput) (bool, error) {
	entries, err := history.ListByMission(ctx, m.ID)
	if err != nil {
		return false, err
	}
	if len(entries) == 0 {
		return false, nil
	}
	last := entries[len(entries)-1]
	if last.Action != in.Action || last.ToState != m.State {
		return false, nil
	}
	if last.PrincipalID == in.Principal.PrincipalID() && last.PrincipalKind == in.Principal.Kind() {
		return true, nil
	}
	for _, t := range e.graph.Candidates(last.FromState, in.Action) {
		if t.To == m.State && permitted(t, m, in.Principal) {
			return true, nil
		}
	}
	return false, nil
}

// stamp sello del historial con la resolución del almacén, siempre posterior al último cambio de la misión.
func (e *Evaluator) stamp(m *entity.Mission) time.Time {
	at := e.now().Truncate(time.Microsecond)
	if !at.After(m.UpdatedAt) {
		at = m.UpdatedAt.Truncate(time.Microsecond).Add(time.Microsecond)
	}
	return at
}

func (e *Evaluator) validatePayload(t workflow.Transition, p Payload) error {
	if t.RequiresRationale {
		if n := utf8.RuneCountInString(strings.TrimSpace(p.Comment)); n < e.settings.MinRationaleLength {
			return domain.Validationf("la acción %s requiere un comentario de al menos %d caracteres", t.Action, e.settings.MinRationaleLength)
		}
	}
	if t.SetsApprovedAmount && p.ApprovedAmount != nil && !p.ApprovedAmount.IsPositive() {
		return domain.Validationf("el monto aprobado debe ser mayor que cero")
	}
	switch t.Action {
	case workflow.ActionAssignBudget:
		if len(p.Allocations) == 0 {
			return domain.Validationf("se requiere al menos una partida presupuestaria")
		}
		for i, a := range p.Allocations {
			if strings.TrimSpace(a.Code) == "" {
				return domain.Validationf("partida %d: código requerido", i+1)
			}
			if !a.Amount.IsPositive() {
				return domain.Validationf("partida %d: el monto debe ser mayor que cero", i+1)
			}
		}
	case workflow.ActionMarkPaid:
		if !validPaymentMethod(p.PaymentMethod) {
			return domain.Validationf("método de pago inválido %q (valores: %s)", p.PaymentMethod, strings.Join(PaymentMethods, ", "))
		}
	}
	return nil
}

func validPaymentMethod(s string) bool {
	for _, m := range PaymentMethods {
		if s == m {
			return true
		}
	}
	return false
}

// applyEffects persiste lo que exige la arista y devuelve los datos adicionales del historial.
func (e *Evaluator) applyEffects(
	ctx context.Context,
	t workflow.Transition,
	m *entity.Mission,
	in ExecuteInput,
	at time.Time,
	missions repository.MissionRepository,
	corrections repository.CorrectionRepository,
) (map[string]any, error) {
	data := map[string]any{}
	switch t.Action {
	case workflow.ActionRequestCorrection:
		c := &entity.Correction{
			MissionID:   m.ID,
			Reason:      strings.TrimSpace(in.Payload.Comment),
			Deadline:    e.settings.CorrectionDeadline(at),
			Status:      entity.CorrectionPending,
			RequestedBy: in.Principal.PrincipalID(),
			CreatedAt:   at,
		}
		if err := corrections.Open(ctx, c); err != nil {
			return nil, err
		}
		data["fecha_limite_subsanacion"] = c.Deadline.Format("2006-01-02")
	case workflow.ActionSubmitCorrection:
		if err := corrections.CompletePending(ctx, m.ID, at); err != nil {
			return nil, err
		}
	case workflow.ActionAssignBudget:
		allocs := make([]entity.BudgetAllocation, len(in.Payload.Allocations))
		total := decimal.Zero
		for i, a := range in.Payload.Allocations {
			a.Code = strings.TrimSpace(a.Code)
			allocs[i] = a
			total = total.Add(a.Amount)
		}
		if err := missions.ReplaceBudgetAllocations(ctx, m.ID, allocs); err != nil {
			return nil, err
		}
		m.BudgetAllocations = allocs
		data["partidas"] = len(allocs)
		data["monto_asignado"] = total.StringFixed(2)
	case workflow.ActionEndorse:
		if n := strings.TrimSpace(in.Payload.EndorsementNumber); n != "" {
			data["numero_refrendo"] = n
		}
	case workflow.ActionMarkPaid:
		data["metodo_pago"] = in.Payload.PaymentMethod
		if n := strings.TrimSpace(in.Payload.TransactionNumber); n != "" {
			data["numero_transaccion"] = n
		}
	}
	if t.SetsApprovedAmount {
		amount := m.TotalAmount
		if in.Payload.ApprovedAmount != nil {
			amount = *in.Payload.ApprovedAmount
		}
		if err := missions.SetApprovedAmount(ctx, m.ID, amount); err != nil {
			return nil, err
		}
		m.ApprovedAmount = decimal.NewNullDecimal(amount)
		data["monto_aprobado"] = amount.StringFixed(2)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}
