package approval_test

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/viaticos-api/internal/application/approval"
	"github.com/jhoicas/viaticos-api/internal/domain"
	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/internal/domain/repository"
	"github.com/jhoicas/viaticos-api/internal/domain/workflow"
)

// ─── almacén en memoria con semántica transaccional ──────────────────────────

type memState struct {
	missions    map[int64]entity.Mission
	corrections []entity.Correction
	history     []entity.HistoryEntry
}

func (s *memState) clone() *memState {
	c := &memState{
		missions:    make(map[int64]entity.Mission, len(s.missions)),
		corrections: slices.Clone(s.corrections),
		history:     slices.Clone(s.history),
	}
	for k, v := range s.missions {
		c.missions[k] = v
	}
	return c
}

type memDB struct {
	mu         sync.Mutex
	st         *memState
	nextID     int64
	failAppend bool
}

func newMemDB() *memDB {
	return &memDB{st: &memState{missions: map[int64]entity.Mission{}}}
}

func (db *memDB) RunWorkflow(ctx context.Context, fn func(
	missions repository.MissionRepository,
	corrections repository.CorrectionRepository,
	history repository.HistoryRepository,
) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	work := db.st.clone()
	if err := fn(&memMissions{st: work}, &memCorrections{db: db, st: work}, &memHistory{db: db, st: work}); err != nil {
		return err
	}
	db.st = work
	return nil
}

func (db *memDB) put(m entity.Mission) int64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.nextID++
	m.ID = db.nextID
	db.st.missions[m.ID] = m
	return m.ID
}

func (db *memDB) mission(id int64) entity.Mission {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.st.missions[id]
}

func (db *memDB) historyOf(id int64) []entity.HistoryEntry {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []entity.HistoryEntry
	for _, e := range db.st.history {
		if e.MissionID == id {
			out = append(out, e)
		}
	}
	return out
}

func (db *memDB) correctionsOf(id int64) []entity.Correction {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []entity.Correction
	for _, c := range db.st.corrections {
		if c.MissionID == id {
			out = append(out, c)
		}
	}
	return out
}

// Vista fuera de transacción para el QueryService.
func (db *memDB) readers() (*memMissions, *memHistory, *memCorrections) {
	return &memMissions{st: db.st}, &memHistory{db: db, st: db.st}, &memCorrections{db: db, st: db.st}
}

type memMissions struct{ st *memState }

func (r *memMissions) Create(_ context.Context, m *entity.Mission) error {
	r.st.missions[m.ID] = *m
	return nil
}

func (r *memMissions) GetByID(_ context.Context, id int64) (*entity.Mission, error) {
	m, ok := r.st.missions[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *memMissions) GetForUpdate(ctx context.Context, id int64) (*entity.Mission, error) {
	return r.GetByID(ctx, id)
}

func (r *memMissions) UpdateState(_ context.Context, id int64, from, to workflow.State, at time.Time) error {
	m, ok := r.st.missions[id]
	if !ok || m.State != from {
		return domain.ErrInvalidActionForState
	}
	m.State = to
	m.UpdatedAt = at
	r.st.missions[id] = m
	return nil
}

func (r *memMissions) SetApprovedAmount(_ context.Context, id int64, amount decimal.Decimal) error {
	m := r.st.missions[id]
	m.ApprovedAmount = decimal.NewNullDecimal(amount)
	r.st.missions[id] = m
	return nil
}

func (r *memMissions) ReplaceBudgetAllocations(_ context.Context, id int64, allocs []entity.BudgetAllocation) error {
	m := r.st.missions[id]
	m.BudgetAllocations = slices.Clone(allocs)
	r.st.missions[id] = m
	return nil
}

func (r *memMissions) ListPending(_ context.Context, f repository.PendingFilter) ([]*entity.Mission, int, error) {
	var out []*entity.Mission
	for _, m := range r.st.missions {
		match := slices.Contains(f.OpenStates, m.State) ||
			(slices.Contains(f.DepartmentStates, m.State) && slices.Contains(f.DepartmentIDs, m.DepartmentID)) ||
			(slices.Contains(f.PreparerStates, m.State) && m.PreparerID == f.PreparerID && m.PreparerKind == f.PreparerKind)
		if match {
			mm := m
			out = append(out, &mm)
		}
	}
	slices.SortFunc(out, func(a, b *entity.Mission) int { return int(a.ID - b.ID) })
	return out, len(out), nil
}

type memCorrections struct {
	db *memDB
	st *memState
}

func (r *memCorrections) Open(_ context.Context, c *entity.Correction) error {
	c.ID = int64(len(r.st.corrections) + 1)
	r.st.corrections = append(r.st.corrections, *c)
	return nil
}

func (r *memCorrections) CompletePending(_ context.Context, missionID int64, at time.Time) error {
	for i, c := range r.st.corrections {
		if c.MissionID == missionID && c.Status == entity.CorrectionPending {
			done := at
			r.st.corrections[i].Status = entity.CorrectionCompleted
			r.st.corrections[i].CompletedAt = &done
		}
	}
	return nil
}

func (r *memCorrections) ListByMission(_ context.Context, missionID int64) ([]entity.Correction, error) {
	var out []entity.Correction
	for _, c := range r.st.corrections {
		if c.MissionID == missionID {
			out = append(out, c)
		}
	}
	return out, nil
}

type memHistory struct {
	db *memDB
	st *memState
}

func (r *memHistory) Append(_ context.Context, e *entity.HistoryEntry) error {
	if r.db.failAppend {
		return domain.StorageUnavailable("append history", context.DeadlineExceeded)
	}
	e.ID = int64(len(r.st.history) + 1)
	r.st.history = append(r.st.history, *e)
	return nil
}

func (r *memHistory) ListByMission(_ context.Context, missionID int64) ([]entity.HistoryEntry, error) {
	var out []entity.HistoryEntry
	for _, e := range r.st.history {
		if e.MissionID == missionID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ─── notificador y métricas de prueba ────────────────────────────────────────

type captureNotifier struct {
	mu      sync.Mutex
	notices []approval.TransitionNotice
}

func (n *captureNotifier) MissionTransitioned(_ context.Context, tn approval.TransitionNotice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, tn)
}

type countRecorder struct {
	mu       sync.Mutex
	applied  int
	rejected map[string]int
}

func (r *countRecorder) TransitionApplied(workflow.Action, workflow.State, workflow.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied++
}

func (r *countRecorder) TransitionRejected(_ workflow.Action, kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rejected == nil {
		r.rejected = map[string]int{}
	}
	r.rejected[kind]++
}

// ─── principales ─────────────────────────────────────────────────────────────

func missionPerms(actions ...string) entity.PermissionSet {
	perms := make([]entity.Permission, 0, len(actions))
	for _, a := range actions {
		perms = append(perms, entity.Permission{Module: workflow.ModuleMisiones, Action: a})
	}
	return entity.NewPermissionSet(perms)
}

var allMissionPerms = []string{
	workflow.PermAprobar, workflow.PermRechazar, workflow.PermDevolver, workflow.PermSubsanar,
	workflow.PermAsignarPresupuesto, workflow.PermRefrendar, workflow.PermPagar,
}

func financial(id int64, role int) *entity.FinancialUser {
	return &entity.FinancialUser{
		ID:       id,
		Username: "user",
		RoleRef:  entity.FinancialRole{ID: role, Name: "rol"},
		Active:   true,
		Perms:    missionPerms(allMissionPerms...),
	}
}

func jefe(cedula string, depts ...int) *entity.Employee {
	return &entity.Employee{
		Cedula:             cedula,
		Name:               "Jefe",
		DepartmentID:       depts[0],
		EmployeeRole:       entity.EmployeeRoleDepartmentHead,
		ManagedDepartments: depts,
		Perms:              missionPerms(allMissionPerms...),
	}
}

func solicitante(cedula string) *entity.Employee {
	return &entity.Employee{
		Cedula:       cedula,
		Name:         "Solicitante",
		DepartmentID: 7,
		EmployeeRole: entity.EmployeeRoleRequester,
		Perms:        missionPerms(workflow.PermSubsanar),
	}
}

var (
	tesoreria    = financial(30, workflow.RoleAnalistaTesoreria)
	presupuesto  = financial(40, workflow.RoleAnalistaPresupuesto)
	contabilidad = financial(50, workflow.RoleAnalistaContabilidad)
	finanzas     = financial(70, workflow.RoleDirectorFinanzas)
	fiscalizador = financial(80, workflow.RoleFiscalizadorCGR)
)
