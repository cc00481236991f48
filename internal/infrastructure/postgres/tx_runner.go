package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/viaticos-api/internal/application/approval"
	"github.com/jhoicas/viaticos-api/internal/domain/repository"
)

var _ approval.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunWorkflow inicia una transacción, ejecuta fn con los repos del flujo atados a ella y hace
// Commit o Rollback. Los bloqueos FOR UPDATE tomados dentro de fn se liberan al terminar.
func (r *TxRunner) RunWorkflow(ctx context.Context, fn func(
	missions repository.MissionRepository,
	corrections repository.CorrectionRepository,
	history repository.HistoryRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return storageErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewMissionRepository(tx), NewCorrectionRepository(tx), NewHistoryRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return storageErr("commit transaction", err)
	}
	return nil
}
