package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/viaticos-api/internal/domain/repository"
	"github.com/jhoicas/viaticos-api/internal/domain/workflow"
)

var _ repository.WorkflowRepository = (*WorkflowRepo)(nil)

// WorkflowRepo estados_flujo y transiciones_flujo.
type WorkflowRepo struct {
	q Querier
}

func NewWorkflowRepository(q Querier) *WorkflowRepo {
	return &WorkflowRepo{q: q}
}

// LoadDefinition lee la definición; found=false si no hay estados persistidos.
// Las transiciones conservan el orden declarado (columna orden), que decide la prioridad de guardas.
func (r *WorkflowRepo) LoadDefinition(ctx context.Context) (workflow.Definition, bool, error) {
	var def workflow.Definition
	rows, err := r.q.Query(ctx, `
		SELECT nombre, etiqueta, es_final, orden, inicial_para
		FROM estados_flujo ORDER BY orden, nombre`)
	if err != nil {
		return def, false, storageErr("load workflow states", err)
	}
	def.States, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (workflow.StateInfo, error) {
		var (
			s       workflow.StateInfo
			name    string
			initial []string
		)
		err := row.Scan(&name, &s.Label, &s.IsFinal, &s.Order, &initial)
		s.Name = workflow.State(name)
		for _, t := range initial {
			s.InitialFor = append(s.InitialFor, workflow.MissionType(t))
		}
		return s, err
	})
	if err != nil {
		return def, false, storageErr("scan workflow states", err)
	}
	if len(def.States) == 0 {
		return def, false, nil
	}

	rows, err = r.q.Query(ctx, `
		SELECT estado_origen, accion, estado_destino, roles, COALESCE(permiso, ''), COALESCE(guarda, ''),
			requiere_comentario, solo_jefe_departamento, solo_preparador, fija_monto_aprobado
		FROM transiciones_flujo ORDER BY orden, id`)
	if err != nil {
		return def, false, storageErr("load workflow transitions", err)
	}
	def.Transitions, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (workflow.TransitionDef, error) {
		var (
			t                workflow.TransitionDef
			from, action, to string
		)
		err := row.Scan(&from, &action, &to, &t.Roles, &t.Permission, &t.Guard,
			&t.RequiresRationale, &t.DepartmentHeadOnly, &t.PreparerOnly, &t.SetsApprovedAmount)
		t.From, t.Action, t.To = workflow.State(from), workflow.Action(action), workflow.State(to)
		return t, err
	})
	if err != nil {
		return def, false, storageErr("scan workflow transitions", err)
	}
	return def, true, nil
}

// SaveDefinition reemplaza la definición persistida. No valida: llamar a workflow.Build antes.
func (r *WorkflowRepo) SaveDefinition(ctx context.Context, def workflow.Definition) error {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return storageErr("begin save workflow", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM transiciones_flujo`); err != nil {
		return storageErr("clear workflow transitions", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM estados_flujo`); err != nil {
		return storageErr("clear workflow states", err)
	}

	batch := &pgx.Batch{}
	for _, s := range def.States {
		initial := make([]string, 0, len(s.InitialFor))
		for _, t := range s.InitialFor {
			initial = append(initial, string(t))
		}
		batch.Queue(`
			INSERT INTO estados_flujo (nombre, etiqueta, es_final, orden, inicial_para)
			VALUES ($1, $2, $3, $4, $5)`,
			string(s.Name), s.Label, s.IsFinal, s.Order, initial)
	}
	for i, t := range def.Transitions {
		roles := t.Roles
		if roles == nil {
			roles = []int{}
		}
		batch.Queue(`
			INSERT INTO transiciones_flujo (orden, estado_origen, accion, estado_destino, roles, permiso, guarda,
				requiere_comentario, solo_jefe_departamento, solo_preparador, fija_monto_aprobado)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			i+1, string(t.From), string(t.Action), string(t.To), roles, nullIfEmpty(t.Permission), nullIfEmpty(t.Guard),
			t.RequiresRationale, t.DepartmentHeadOnly, t.PreparerOnly, t.SetsApprovedAmount)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return storageErr("insert workflow definition", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return storageErr("commit save workflow", err)
	}
	return nil
}
