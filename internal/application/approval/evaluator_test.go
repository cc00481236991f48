package approval_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/viaticos-api/internal/application/approval"
	"github.com/jhoicas/viaticos-api/internal/domain"
	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/internal/domain/workflow"
)

var fixedNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func testSettings() workflow.Settings {
	return workflow.Settings{
		CGRThreshold:       decimal.RequireFromString("1000.00"),
		GraceDays:          10,
		MinRationaleLength: 10,
		CorrectionDays:     5,
	}
}

type harness struct {
	db       *memDB
	eval     *approval.Evaluator
	notifier *captureNotifier
	recorder *countRecorder
}

func newHarness() *harness {
	db := newMemDB()
	n := &captureNotifier{}
	r := &countRecorder{}
	g := workflow.MustBuild(workflow.DefaultDefinition())
	eval := approval.NewEvaluator(g, testSettings(), db,
		approval.WithNotifier(n),
		approval.WithRecorder(r),
		approval.WithClock(func() time.Time { return fixedNow }),
	)
	return &harness{db: db, eval: eval, notifier: n, recorder: r}
}

// newMission crea una misión tal como la deja la creación: total y refrendo calculados una vez.
func (h *harness) newMission(t workflow.MissionType, total string, state workflow.State) int64 {
	amount := decimal.RequireFromString(total)
	created := fixedNow.Add(-time.Hour)
	return h.db.put(entity.Mission{
		RequestNumber:          "MIS-2026-000001",
		Type:                   t,
		BeneficiaryID:          "8-100-200",
		DepartmentID:           7,
		PreparerID:             "8-100-200",
		PreparerKind:           entity.PrincipalEmployee,
		TotalAmount:            amount,
		RequiresCGREndorsement: testSettings().RequiresCGREndorsement(t, amount),
		State:                  state,
		CreatedAt:              created,
		UpdatedAt:              created,
	})
}

func (h *harness) exec(id int64, a workflow.Action, p entity.Principal, payload approval.Payload) (*approval.Result, error) {
	return h.eval.Execute(context.Background(), approval.ExecuteInput{MissionID: id, Action: a, Principal: p, Payload: payload})
}

func budget(amount string) approval.Payload {
	return approval.Payload{Allocations: []entity.BudgetAllocation{
		{Code: "1.01.2.3", Description: "Viáticos nacionales", Amount: decimal.RequireFromString(amount)},
	}}
}

// ─── recorrido completo ──────────────────────────────────────────────────────

func TestEvaluator_ViaticosSobreUmbralPasaPorRefrendoCGR(t *testing.T) {
	h := newHarness()
	id := h.newMission(workflow.MissionTypeViaticos, "1500.00", workflow.StatePendienteJefe)
	require.True(t, h.db.mission(id).RequiresCGREndorsement)

	steps := []struct {
		action  workflow.Action
		actor   entity.Principal
		payload approval.Payload
		want    workflow.State
	}{
		{workflow.ActionApprove, jefe("4-1-1", 7), approval.Payload{}, workflow.StatePendienteRevisionTesoreria},
		{workflow.ActionApprove, tesoreria, approval.Payload{}, workflow.StatePendienteAsignacionPresupuesto},
		{workflow.ActionAssignBudget, presupuesto, budget("1500.00"), workflow.StatePendienteContabilidad},
		{workflow.ActionApprove, contabilidad, approval.Payload{}, workflow.StatePendienteAprobacionFinanzas},
		{workflow.ActionApprove, finanzas, approval.Payload{}, workflow.StatePendienteRefrendoCGR},
	}
	for _, s := range steps {
		res, err := h.exec(id, s.action, s.actor, s.payload)
		require.NoError(t, err, "acción %s", s.action)
		assert.Equal(t, s.want, res.To)
	}

	m := h.db.mission(id)
	assert.Equal(t, workflow.StatePendienteRefrendoCGR, m.State)
	require.True(t, m.ApprovedAmount.Valid)
	assert.True(t, m.ApprovedAmount.Decimal.Equal(decimal.RequireFromString("1500")))
	require.Len(t, m.BudgetAllocations, 1)

	hist := h.db.historyOf(id)
	require.Len(t, hist, len(steps))
	for i := 1; i < len(hist); i++ {
		assert.Equal(t, hist[i-1].ToState, hist[i].FromState, "cadena rota en %d", i)
		assert.True(t, hist[i].CreatedAt.After(hist[i-1].CreatedAt), "sello no creciente en %d", i)
	}
	assert.Equal(t, workflow.StatePendienteJefe, hist[0].FromState)
	assert.Equal(t, len(steps), h.recorder.applied)
	assert.Len(t, h.notifier.notices, len(steps))
	assert.Equal(t, "8-100-200", h.notifier.notices[0].BeneficiaryID)

	res, err := h.exec(id, workflow.ActionEndorse, fiscalizador, approval.Payload{EndorsementNumber: "R-55"})
	require.NoError(t, err)
	assert.Equal(t, workflow.StateAprobadoParaPago, res.To)
	assert.Equal(t, "R-55", res.Entry.Data["numero_refrendo"])
}

func TestEvaluator_ViaticosBajoUmbralOmiteRefrendo(t *testing.T) {
	h := newHarness()
	id := h.newMission(workflow.MissionTypeViaticos, "999.99", workflow.StatePendienteAprobacionFinanzas)

	amount := decimal.RequireFromString("900.00")
	res, err := h.exec(id, workflow.ActionApprove, finanzas, approval.Payload{ApprovedAmount: &amount})
	require.NoError(t, err)
	assert.Equal(t, workflow.StateAprobadoParaPago, res.To)
	assert.Equal(t, "900.00", res.Entry.Data["monto_aprobado"])
}

func TestEvaluator_MontoAprobadoNoRecalculaRefrendo(t *testing.T) {
	h := newHarness()
	id := h.newMission(workflow.MissionTypeViaticos, "1500.00", workflow.StatePendienteAprobacionFinanzas)

	lower := decimal.RequireFromString("500.00")
	res, err := h.exec(id, workflow.ActionApprove, finanzas, approval.Payload{ApprovedAmount: &lower})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatePendienteRefrendoCGR, res.To)
	assert.True(t, h.db.mission(id).RequiresCGREndorsement)
}

func TestEvaluator_CajaMenudaTesoreriaApruebaParaPago(t *testing.T) {
	h := newHarness()
	id := h.newMission(workflow.MissionTypeCajaMenuda, "45.00", workflow.StatePendienteRevisionTesoreria)

	res, err := h.exec(id, workflow.ActionApprove, tesoreria, approval.Payload{})
	require.NoError(t, err)
	assert.Equal(t, workflow.StateAprobadoParaPago, res.To)

	res, err = h.exec(id, workflow.ActionMarkPaid, tesoreria, approval.Payload{PaymentMethod: "EFECTIVO"})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatePagado, res.To)
	assert.Equal(t, "EFECTIVO", res.Entry.Data["metodo_pago"])
}

// ─── reintentos y concurrencia ───────────────────────────────────────────────

func TestEvaluator_ReintentoFallaConAccionInvalida(t *testing.T) {
	h := newHarness()
	id := h.newMission(workflow.MissionTypeViaticos, "200.00", workflow.StatePendienteJefe)
	in := approval.ExecuteInput{
		MissionID:     id,
		Action:        workflow.ActionApprove,
		Principal:     jefe("4-1-1", 7),
		ExpectedState: workflow.StatePendienteJefe,
	}

	_, err := h.eval.Execute(context.Background(), in)
	require.NoError(t, err)
	_, err = h.eval.Execute(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidActionForState)

	assert.Len(t, h.db.historyOf(id), 1)
	assert.Equal(t, workflow.StatePendienteRevisionTesoreria, h.db.mission(id).State)
}

func TestEvaluator_ReintentoSinAristaEnNuevoEstado(t *testing.T) {
	h := newHarness()
	id := h.newMission(workflow.MissionTypeViaticos, "200.00", workflow.StatePendienteAsignacionPresupuesto)

	_, err := h.exec(id, workflow.ActionAssignBudget, presupuesto, budget("200.00"))
	require.NoError(t, err)
	_, err = h.exec(id, workflow.ActionAssignBudget, presupuesto, budget("200.00"))
	assert.ErrorIs(t, err, domain.ErrInvalidActionForState)
	assert.Len(t, h.db.historyOf(id), 1)
}

func TestEvaluator_ReintentoSinEstadoEsperado(t *testing.T) {
	cases := []struct {
		name  string
		from  workflow.State
		actor entity.Principal
	}{
		{"jefe", workflow.StatePendienteJefe, jefe("4-1-1", 7)},
		{"contabilidad", workflow.StatePendienteContabilidad, contabilidad},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness()
			id := h.newMission(workflow.MissionTypeViaticos, "200.00", tc.from)

			first, err := h.exec(id, workflow.ActionApprove, tc.actor, approval.Payload{})
			require.NoError(t, err)
			_, err = h.exec(id, workflow.ActionApprove, tc.actor, approval.Payload{})
			assert.ErrorIs(t, err, domain.ErrInvalidActionForState)

			assert.Len(t, h.db.historyOf(id), 1)
			assert.Equal(t, first.To, h.db.mission(id).State)
		})
	}
}

func TestEvaluator_SinEstadoEsperadoAjenoSigueSinPermiso(t *testing.T) {
	h := newHarness()
	id := h.newMission(workflow.MissionTypeViaticos, "200.00", workflow.StatePendienteJefe)

	_, err := h.exec(id, workflow.ActionApprove, jefe("4-1-1", 7), approval.Payload{})
	require.NoError(t, err)
	_, err = h.exec(id, workflow.ActionApprove, jefe("8-2-2", 9), approval.Payload{})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	assert.Len(t, h.db.historyOf(id), 1)
}

func TestEvaluator_ConcurrenciaSinEstadoEsperado(t *testing.T) {
	h := newHarness()
	id := h.newMission(workflow.MissionTypeViaticos, "200.00", workflow.StatePendienteContabilidad)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.exec(id, workflow.ActionApprove, contabilidad, approval.Payload{})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInvalidActionForState)
	}
	assert.Equal(t, 1, ok)
	assert.Len(t, h.db.historyOf(id), 1)
}

func TestEvaluator_ConcurrenciaSobreMismaMision(t *testing.T) {
	h := newHarness()
	id := h.newMission(workflow.MissionTypeViaticos, "200.00", workflow.StatePendienteContabilidad)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.eval.Execute(context.Background(), approval.ExecuteInput{
				MissionID:     id,
				Action:        workflow.ActionApprove,
				Principal:     contabilidad,
				ExpectedState: workflow.StatePendienteContabilidad,
			})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInvalidActionForState)
	}
	assert.Equal(t, 1, ok)
	assert.Len(t, h.db.historyOf(id), 1)
}

// ─── rechazos ────────────────────────────────────────────────────────────────

func TestEvaluator_EstadoFinalInmutable(t *testing.T) {
	for _, st := range []workflow.State{workflow.StatePagado, workflow.StateRechazado} {
		h := newHarness()
		id := h.newMission(workflow.MissionTypeViaticos, "200.00", st)
		for _, a := range []workflow.Action{workflow.ActionApprove, workflow.ActionReject, workflow.ActionMarkPaid} {
			_, err := h.exec(id, a, tesoreria, approval.Payload{Comment: "comentario suficientemente largo"})
			assert.ErrorIs(t, err, domain.ErrWorkflowTerminalState, "%s/%s", st, a)
		}
		assert.Empty(t, h.db.historyOf(id))
		assert.Equal(t, st, h.db.mission(id).State)
		assert.Equal(t, 3, h.recorder.rejected[domain.KindWorkflowTerminalState])
	}
}

func TestEvaluator_AccionSinAristaEnEstado(t *testing.T) {
	h := newHarness()
	id := h.newMission(workflow.MissionTypeViaticos, "200.00", workflow.StatePendienteJefe)

	_, err := h.exec(id, workflow.ActionEndorse, fiscalizador, approval.Payload{})
	assert.ErrorIs(t, err, domain.ErrInvalidActionForState)
}

func TestEvaluator_RolNoAutorizado(t *testing.T) {
	h := newHarness()
	id := h.newMission(workflow.MissionTypeViaticos, "200.00", workflow.StatePendienteRevisionTesoreria)

	for _, p := range []entity.Principal{contabilidad, finanzas, jefe("4-1-1", 7), solicitante("8-100-200")} {
		_, err := h.exec(id, workflow.ActionApprove, p, approval.Payload{})
		assert.ErrorIs(t, err, domain.ErrPermissionDenied, "rol %d", p.RoleID())
	}
	assert.Empty(t, h.db.historyOf(id))
}

func TestEvaluator_RolCorrectoSinPermiso(t *testing.T) {
	h := newHarness()
	id := h.newMission(workflow.MissionTypeViaticos, "200.00", workflow.StatePendienteRevisionTesoreria)
	sinPermiso := financial(31, workflow.RoleAnalistaTesoreria)
	sinPermiso.Perms = missionPerms(workflow.PermRechazar)

	_, err := h.exec(id, workflow.ActionApprove, sinPermiso, approval.Payload{})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestEvaluator_JefeDeOtroDepartamento(t *testing.T) {
	h := newHarness()
	id := h.newMission(workflow.MissionTypeViaticos, "200.00", workflow.StatePendienteJefe)

	_, err := h.exec(id, workflow.ActionApprove, jefe("4-2-2", 9), approval.Payload{})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	jefeRRHHFinanciero := financial(20, workflow.RoleJefeInmediato)
	_, err = h.exec(id, workflow.ActionApprove, jefeRRHHFinanciero, approval.Payload{})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestEvaluator_MisionInexistente(t *testing.T) {
	h := newHarness()
	_, err := h.exec(999, workflow.ActionApprove, tesoreria, approval.Payload{})
	assert.ErrorIs(t, err, domain.ErrMissionNotFound)
}

func TestEvaluator_SinPrincipal(t *testing.T) {
	h := newHarness()
	id := h.newMission(workflow.MissionTypeViaticos, "200.00", workflow.StatePendienteJefe)
	_, err := h.eval.Execute(context.Background(), approval.ExecuteInput{MissionID: id, Action: workflow.ActionApprove})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

// ─── validación de carga útil ────────────────────────────────────────────────

func TestEvaluator_RechazoRequiereJustificacion(t *testing.T) {
	h := newHarness()
	id := h.newMission(workflow.MissionTypeViaticos, "200.00", workflow.StatePendienteContabilidad)

	_, err := h.exec(id, workflow.ActionReject, contabilidad, approval.Payload{Comment: "   corto   "})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, workflow.StatePendienteContabilidad, h.db.mission(id).State)

	res, err := h.exec(id, workflow.ActionReject, contabilidad, approval.Payload{Comment: "Falta soporte de hospedaje"})
	require.NoError(t, err)
	assert.Equal(t, workflow.StateRechazado, res.To)
	assert.Equal(t, "Falta soporte de hospedaje", res.Entry.Comment)
}

func TestEvaluator_PartidasInvalidas(t *testing.T) {
	h := newHarness()
	id := h.newMission(workflow.MissionTypeViaticos, "200.00", workflow.StatePendienteAsignacionPresupuesto)

	cases := map[string]approval.Payload{
		"sin partidas": {},
		"monto cero":   budget("0"),
		"negativo":     budget("-1"),
		"sin código": {Allocations: []entity.BudgetAllocation{
			{Code: "  ", Amount: decimal.RequireFromString("10")},
		}},
	}
	for name, p := range cases {
		_, err := h.exec(id, workflow.ActionAssignBudget, presupuesto, p)
		assert.ErrorIs(t, err, domain.ErrValidation, name)
	}
	assert.Empty(t, h.db.historyOf(id))
}

func TestEvaluator_PartidasNoDebenSumarElTotal(t *testing.T) {
	h := newHarness()
	id := h.newMission(workflow.MissionTypeViaticos, "200.00", workflow.StatePendienteAsignacionPresupuesto)

	res, err := h.exec(id, workflow.ActionAssignBudget, presupuesto, budget("50.00"))
	require.NoError(t, err)
	assert.Equal(t, "50.00", res.Entry.Data["monto_asignado"])
}

func TestEvaluator_MontoAprobadoNoPositivo(t *testing.T) {
	h := newHarness()
	id := h.newMission(workflow.MissionTypeViaticos, "200.00", workflow.StatePendienteAprobacionFinanzas)
	zero := decimal.Zero

	_, err := h.exec(id, workflow.ActionApprove, finanzas, approval.Payload{ApprovedAmount: &zero})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEvaluator_PagoRequiereMetodoValido(t *testing.T) {
	h := newHarness()
	id := h.newMission(workflow.MissionTypeViaticos, "200.00", workflow.StateAprobadoParaPago)

	_, err := h.exec(id, workflow.ActionMarkPaid, tesoreria, approval.Payload{PaymentMethod: "BITCOIN"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	res, err := h.exec(id, workflow.ActionMarkPaid, tesoreria, approval.Payload{PaymentMethod: "ACH", TransactionNumber: "TX-1"})
	require.NoError(t, err)
	assert.Equal(t, "TX-1", res.Entry.Data["numero_transaccion"])
}

// ─── subsanación ─────────────────────────────────────────────────────────────

func TestEvaluator_CicloDeSubsanacion(t *testing.T) {
	h := newHarness()
	id := h.newMission(workflow.MissionTypeViaticos, "200.00", workflow.StatePendienteRevisionTesoreria)

	res, err := h.exec(id, workflow.ActionRequestCorrection, tesoreria, approval.Payload{Comment: "Adjuntar itinerario firmado"})
	require.NoError(t, err)
	assert.Equal(t, workflow.StateDevueltoCorreccion, res.To)
	assert.Equal(t, "2026-03-07", res.Entry.Data["fecha_limite_subsanacion"])

	corr := h.db.correctionsOf(id)
	require.Len(t, corr, 1)
	assert.Equal(t, entity.CorrectionPending, corr[0].Status)

	_, err = h.exec(id, workflow.ActionSubmitCorrection, solicitante("1-1-1"), approval.Payload{})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied, "solo quien preparó la misión subsana")

	res, err = h.exec(id, workflow.ActionSubmitCorrection, solicitante("8-100-200"), approval.Payload{})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatePendienteRevisionTesoreria, res.To)

	corr = h.db.correctionsOf(id)
	assert.Equal(t, entity.CorrectionCompleted, corr[0].Status)
	assert.NotNil(t, corr[0].CompletedAt)
}

// ─── atomicidad ──────────────────────────────────────────────────────────────

func TestEvaluator_FalloDeHistorialRevierteTodo(t *testing.T) {
	h := newHarness()
	id := h.newMission(workflow.MissionTypeViaticos, "200.00", workflow.StatePendienteAprobacionFinanzas)
	h.db.failAppend = true

	_, err := h.exec(id, workflow.ActionApprove, finanzas, approval.Payload{})
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	m := h.db.mission(id)
	assert.Equal(t, workflow.StatePendienteAprobacionFinanzas, m.State)
	assert.False(t, m.ApprovedAmount.Valid)
	assert.Empty(t, h.notifier.notices)
	assert.Equal(t, 1, h.recorder.rejected[domain.KindStorageUnavailable])
}
