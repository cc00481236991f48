package approval

import (
	"context"
	"time"

	"github.com/jhoicas/viaticos-api/internal/domain/repository"
	"github.com/jhoicas/viaticos-api/internal/domain/workflow"
)

// TxRunner ejecuta fn dentro de una transacción del almacén financiero con repositorios atados a ella.
// Si fn devuelve error nada de lo escrito se confirma.
type TxRunner interface {
	RunWorkflow(ctx context.Context, fn func(
		missions repository.MissionRepository,
		corrections repository.CorrectionRepository,
		history repository.HistoryRepository,
	) error) error
}

// TransitionNotice aviso posterior al commit de una transición.
type TransitionNotice struct {
	MissionID     int64
	RequestNumber string
	Action        workflow.Action
	FromState     workflow.State
	NewState      workflow.State
	BeneficiaryID string
	PrincipalID   string
	OccurredAt    time.Time
}

// Notifier despachador de avisos. No devuelve error: su fallo nunca revierte una transición.
type Notifier interface {
	MissionTransitioned(ctx context.Context, n TransitionNotice)
}

// Recorder métricas del evaluador.
type Recorder interface {
	TransitionApplied(action workflow.Action, from, to workflow.State)
	TransitionRejected(action workflow.Action, kind string)
}

type nopNotifier struct{}

func (nopNotifier) MissionTransitioned(context.Context, TransitionNotice) {}

type nopRecorder struct{}

func (nopRecorder) TransitionApplied(workflow.Action, workflow.State, workflow.State) {}
func (nopRecorder) TransitionRejected(workflow.Action, string)                       {}
