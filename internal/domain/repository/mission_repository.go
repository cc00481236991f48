package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/internal/domain/workflow"
)

// MissionRepository puerto de persistencia de misiones.
// GetByID y GetForUpdate devuelven (nil, nil) si la misión no existe.
type MissionRepository interface {
	Create(ctx context.Context, m *entity.Mission) error
	GetByID(ctx context.Context, id int64) (*entity.Mission, error)
	// GetForUpdate bloquea la fila de la misión hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id int64) (*entity.Mission, error)
	// UpdateState cambia el estado solo si sigue siendo from; si no, ErrInvalidActionForState.
	UpdateState(ctx context.Context, id int64, from, to workflow.State, at time.Time) error
	SetApprovedAmount(ctx context.Context, id int64, amount decimal.Decimal) error
	ReplaceBudgetAllocations(ctx context.Context, id int64, allocations []entity.BudgetAllocation) error
	ListPending(ctx context.Context, f PendingFilter) ([]*entity.Mission, int, error)
}

// PendingFilter bandeja de un principal: estados abiertos a su rol, estados acotados a
// los departamentos que dirige y estados acotados a lo que él preparó.
type PendingFilter struct {
	OpenStates       []workflow.State
	DepartmentStates []workflow.State
	DepartmentIDs    []int
	PreparerStates   []workflow.State
	PreparerID       string
	PreparerKind     entity.PrincipalKind
	Limit            int
	Offset           int
}

// CorrectionRepository subsanaciones de una misión.
type CorrectionRepository interface {
	Open(ctx context.Context, c *entity.Correction) error
	// CompletePending marca como COMPLETADA la subsanación pendiente, si existe.
	CompletePending(ctx context.Context, missionID int64, at time.Time) error
	ListByMission(ctx context.Context, missionID int64) ([]entity.Correction, error)
}

// HistoryRepository historial de flujo. Solo inserciones; nunca se actualiza ni se borra.
type HistoryRepository interface {
	Append(ctx context.Context, e *entity.HistoryEntry) error
	ListByMission(ctx context.Context, missionID int64) ([]entity.HistoryEntry, error)
}
