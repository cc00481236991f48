package entity

import (
	"time"

	"github.com/jhoicas/viaticos-api/internal/domain/workflow"
)

// HistoryEntry registro inmutable de una transición ejecutada (historial_flujo).
type HistoryEntry struct {
	ID            int64
	MissionID     int64
	FromState     workflow.State
	ToState       workflow.State
	Action        workflow.Action
	PrincipalID   string
	PrincipalKind PrincipalKind
	RoleID        int
	Comment       string
	Data          map[string]any
	ClientIP      string
	CreatedAt     time.Time
}
