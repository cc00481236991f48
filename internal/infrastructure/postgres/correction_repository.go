package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/internal/domain/repository"
)

var _ repository.CorrectionRepository = (*CorrectionRepo)(nil)

// CorrectionRepo tabla subsanaciones.
type CorrectionRepo struct {
	q Querier
}

// NewCorrectionRepository construye el adaptador sobre pool o tx.
func NewCorrectionRepository(q Querier) *CorrectionRepo {
	return &CorrectionRepo{q: q}
}

// Open registra una subsanación pendiente.
func (r *CorrectionRepo) Open(ctx context.Context, c *entity.Correction) error {
	if c.Status == "" {
		c.Status = entity.CorrectionPending
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO subsanaciones (mision_id, motivo, fecha_limite, estado, solicitado_por, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		c.MissionID, c.Reason, c.Deadline, c.Status, c.RequestedBy, c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		return storageErr("open correction", err)
	}
	return nil
}

// CompletePending cierra la subsanación pendiente; sin pendiente no hace nada.
func (r *CorrectionRepo) CompletePending(ctx context.Context, missionID int64, at time.Time) error {
	_, err := r.q.Exec(ctx, `
		UPDATE subsanaciones SET estado = $3, completed_at = $4
		WHERE mision_id = $1 AND estado = $2`,
		missionID, entity.CorrectionPending, entity.CorrectionCompleted, at)
	if err != nil {
		return storageErr("complete correction", err)
	}
	return nil
}

// ListByMission subsanaciones de la misión, de la más antigua a la más reciente.
func (r *CorrectionRepo) ListByMission(ctx context.Context, missionID int64) ([]entity.Correction, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, mision_id, motivo, fecha_limite, estado, solicitado_por, created_at, completed_at
		FROM subsanaciones
		WHERE mision_id = $1
		ORDER BY created_at, id`, missionID)
	if err != nil {
		return nil, storageErr("list corrections", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Correction, error) {
		var c entity.Correction
		err := row.Scan(&c.ID, &c.MissionID, &c.Reason, &c.Deadline, &c.Status, &c.RequestedBy, &c.CreatedAt, &c.CompletedAt)
		return c, err
	})
	if err != nil {
		return nil, storageErr("scan corrections", err)
	}
	return list, nil
}
