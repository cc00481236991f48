package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/viaticos-api/internal/domain/workflow"
)

// Mission solicitud de viáticos o caja menuda sujeta al flujo de aprobación.
// State solo cambia mediante el evaluador de transiciones.
type Mission struct {
	ID                     int64
	RequestNumber          string
	Type                   workflow.MissionType
	BeneficiaryID          string // cédula
	BeneficiaryName        string
	DepartmentID           int
	PreparerID             string
	PreparerKind           PrincipalKind
	Objective              string
	Destination            string
	DepartureDate          time.Time
	ReturnDate             time.Time
	TotalAmount            decimal.Decimal
	ApprovedAmount         decimal.NullDecimal
	RequiresCGREndorsement bool
	State                  workflow.State
	SubmittedAt            time.Time
	SubmissionDeadline     time.Time
	PerDiemItems           []PerDiemItem
	TransportItems         []TransportItem
	PettyCashItems         []PettyCashItem
	BudgetAllocations      []BudgetAllocation
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Facts datos que consultan las guardas del flujo.
func (m *Mission) Facts() workflow.Facts {
	return workflow.Facts{
		MissionType:            m.Type,
		RequiresCGREndorsement: m.RequiresCGREndorsement,
	}
}

// PreparedBy informa si el principal es quien preparó la misión.
func (m *Mission) PreparedBy(p Principal) bool {
	return p != nil && m.PreparerKind == p.Kind() && m.PreparerID == p.PrincipalID()
}

// ItemsTotal suma los renglones según el tipo de misión.
func (m *Mission) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range m.PerDiemItems {
		total = total.Add(it.Total())
	}
	for _, it := range m.TransportItems {
		total = total.Add(it.Amount)
	}
	for _, it := range m.PettyCashItems {
		total = total.Add(it.Total())
	}
	return total
}

// FormatRequestNumber número de solicitud legible: MIS-<año>-<id con seis dígitos>.
func FormatRequestNumber(year int, id int64) string {
	return fmt.Sprintf("MIS-%d-%06d", year, id)
}

// PerDiemItem viático diario.
type PerDiemItem struct {
	Date      time.Time
	Breakfast decimal.Decimal
	Lunch     decimal.Decimal
	Dinner    decimal.Decimal
	Lodging   decimal.Decimal
	Notes     string
}

// Total del día.
func (it PerDiemItem) Total() decimal.Decimal {
	return decimal.Sum(it.Breakfast, it.Lunch, it.Dinner, it.Lodging)
}

// Amounts montos del renglón, para validación.
func (it PerDiemItem) Amounts() []decimal.Decimal {
	return []decimal.Decimal{it.Breakfast, it.Lunch, it.Dinner, it.Lodging}
}

// TransportItem tramo de transporte.
type TransportItem struct {
	Date        time.Time
	Kind        string // AEREO, TERRESTRE, ACUATICO...
	Origin      string
	Destination string
	Amount      decimal.Decimal
	Notes       string
}

// PettyCashItem renglón de caja menuda.
type PettyCashItem struct {
	Date      time.Time
	FromTime  string // HH:MM
	ToTime    string
	Breakfast decimal.Decimal
	Lunch     decimal.Decimal
	Dinner    decimal.Decimal
	Transport decimal.Decimal
}

// Total del renglón.
func (it PettyCashItem) Total() decimal.Decimal {
	return decimal.Sum(it.Breakfast, it.Lunch, it.Dinner, it.Transport)
}

// Amounts montos del renglón, para validación.
func (it PettyCashItem) Amounts() []decimal.Decimal {
	return []decimal.Decimal{it.Breakfast, it.Lunch, it.Dinner, it.Transport}
}

// BudgetAllocation partida presupuestaria asignada a la misión.
type BudgetAllocation struct {
	Code        string
	Description string
	Amount      decimal.Decimal
}

// Estados de una subsanación.
const (
	CorrectionPending   = "PENDIENTE"
	CorrectionCompleted = "COMPLETADA"
)

// Correction devolución para corrección (subsanación) abierta por Tesorería.
type Correction struct {
	ID          int64
	MissionID   int64
	Reason      string
	Deadline    time.Time
	Status      string
	RequestedBy string
	CreatedAt   time.Time
	CompletedAt *time.Time
}
