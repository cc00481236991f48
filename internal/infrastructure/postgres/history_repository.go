package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/internal/domain/repository"
	"github.com/jhoicas/viaticos-api/internal/domain/workflow"
)

var _ repository.HistoryRepository = (*HistoryRepo)(nil)

// HistoryRepo historial_flujo. Solo INSERT y SELECT.
type HistoryRepo struct {
	q Querier
}

// NewHistoryRepository construye el adaptador sobre pool o tx.
func NewHistoryRepository(q Querier) *HistoryRepo {
	return &HistoryRepo{q: q}
}

// Append inserta la entrada y completa su ID.
func (r *HistoryRepo) Append(ctx context.Context, e *entity.HistoryEntry) error {
	var data any
	if len(e.Data) > 0 {
		data = e.Data
	}
	var from *string
	if e.FromState != "" {
		s := string(e.FromState)
		from = &s
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO historial_flujo (mision_id, estado_anterior, estado_nuevo, accion, usuario_id,
			tipo_usuario, rol_id, comentario, datos_adicionales, ip_cliente, fecha_accion)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		e.MissionID, from, string(e.ToState), string(e.Action), e.PrincipalID,
		string(e.PrincipalKind), e.RoleID, nullIfEmpty(e.Comment), data, nullIfEmpty(e.ClientIP), e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		return storageErr("append history", err)
	}
	return nil
}

// ListByMission entradas en orden cronológico.
func (r *HistoryRepo) ListByMission(ctx context.Context, missionID int64) ([]entity.HistoryEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, mision_id, COALESCE(estado_anterior, ''), estado_nuevo, accion, usuario_id,
			tipo_usuario, rol_id, COALESCE(comentario, ''), datos_adicionales, COALESCE(ip_cliente, ''), fecha_accion
		FROM historial_flujo
		WHERE mision_id = $1
		ORDER BY fecha_accion, id`, missionID)
	if err != nil {
		return nil, storageErr("list history", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.HistoryEntry, error) {
		var (
			e                      entity.HistoryEntry
			from, to, action, kind string
			at                     time.Time
		)
		err := row.Scan(&e.ID, &e.MissionID, &from, &to, &action, &e.PrincipalID,
			&kind, &e.RoleID, &e.Comment, &e.Data, &e.ClientIP, &at)
		e.FromState = workflow.State(from)
		e.ToState = workflow.State(to)
		e.Action = workflow.Action(action)
		e.PrincipalKind = entity.PrincipalKind(kind)
		e.CreatedAt = at
		return e, err
	})
	if err != nil {
		return nil, storageErr("scan history", err)
	}
	return list, nil
}
