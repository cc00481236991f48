package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout formato de fechas de calendario en la API.
const DateLayout = "2006-01-02"

// CreateMissionRequest entrada para crear una misión de viáticos o de caja menuda.
type CreateMissionRequest struct {
	Type              string             `json:"tipo" validate:"required,oneof=VIATICOS CAJA_MENUDA"`
	BeneficiaryCedula string             `json:"cedula_beneficiario" validate:"required,max=30"`
	Objective         string             `json:"objetivo" validate:"required,max=1000"`
	Destination       string             `json:"destino" validate:"omitempty,max=300"`
	DepartureDate     string             `json:"fecha_salida" validate:"omitempty,datetime=2006-01-02"`
	ReturnDate        string             `json:"fecha_retorno" validate:"omitempty,datetime=2006-01-02"`
	PerDiemItems      []PerDiemItemDTO   `json:"viaticos" validate:"dive"`
	TransportItems    []TransportItemDTO `json:"transporte" validate:"dive"`
	PettyCashItems    []PettyCashItemDTO `json:"caja_menuda" validate:"dive"`
}

// PerDiemItemDTO renglón diario de viático.
type PerDiemItemDTO struct {
	Date      string          `json:"fecha" validate:"required,datetime=2006-01-02"`
	Breakfast decimal.Decimal `json:"desayuno"`
	Lunch     decimal.Decimal `json:"almuerzo"`
	Dinner    decimal.Decimal `json:"cena"`
	Lodging   decimal.Decimal `json:"hospedaje"`
	Notes     string          `json:"observaciones,omitempty" validate:"max=500"`
}

// TransportItemDTO tramo de transporte.
type TransportItemDTO struct {
	Date        string          `json:"fecha" validate:"required,datetime=2006-01-02"`
	Kind        string          `json:"tipo" validate:"required,max=30"`
	Origin      string          `json:"origen" validate:"required,max=200"`
	Destination string          `json:"destino" validate:"required,max=200"`
	Amount      decimal.Decimal `json:"monto"`
	Notes       string          `json:"observaciones,omitempty" validate:"max=500"`
}

// PettyCashItemDTO renglón de caja menuda.
type PettyCashItemDTO struct {
	Date      string          `json:"fecha" validate:"required,datetime=2006-01-02"`
	FromTime  string          `json:"hora_desde" validate:"omitempty,datetime=15:04"`
	ToTime    string          `json:"hora_hasta" validate:"omitempty,datetime=15:04"`
	Breakfast decimal.Decimal `json:"desayuno"`
	Lunch     decimal.Decimal `json:"almuerzo"`
	Dinner    decimal.Decimal `json:"cena"`
	Transport decimal.Decimal `json:"transporte"`
}

// BudgetAllocationDTO partida presupuestaria.
type BudgetAllocationDTO struct {
	Code        string          `json:"codigo_partida"`
	Description string          `json:"descripcion,omitempty"`
	Amount      decimal.Decimal `json:"monto"`
}

// MissionResponse misión completa con renglones y partidas.
type MissionResponse struct {
	ID                     int64                 `json:"id"`
	RequestNumber          string                `json:"numero_solicitud"`
	Type                   string                `json:"tipo"`
	BeneficiaryCedula      string                `json:"cedula_beneficiario"`
	BeneficiaryName        string                `json:"nombre_beneficiario"`
	DepartmentID           int                   `json:"id_departamento"`
	PreparerID             string                `json:"preparado_por"`
	PreparerKind           string                `json:"tipo_preparador"`
	Objective              string                `json:"objetivo"`
	Destination            string                `json:"destino,omitempty"`
	DepartureDate          string                `json:"fecha_salida,omitempty"`
	ReturnDate             string                `json:"fecha_retorno,omitempty"`
	TotalAmount            decimal.Decimal       `json:"monto_total_calculado"`
	ApprovedAmount         *decimal.Decimal      `json:"monto_aprobado"`
	RequiresCGREndorsement bool                  `json:"requiere_refrendo_cgr"`
	State                  string                `json:"estado"`
	SubmittedAt            time.Time             `json:"fecha_solicitud"`
	SubmissionDeadline     string                `json:"fecha_limite_presentacion"`
	PerDiemItems           []PerDiemItemDTO      `json:"viaticos"`
	TransportItems         []TransportItemDTO    `json:"transporte"`
	PettyCashItems         []PettyCashItemDTO    `json:"caja_menuda"`
	BudgetAllocations      []BudgetAllocationDTO `json:"partidas"`
	UpdatedAt              time.Time             `json:"updated_at"`
}

// MissionSummary fila de la bandeja de pendientes.
type MissionSummary struct {
	ID                int64           `json:"id"`
	RequestNumber     string          `json:"numero_solicitud"`
	Type              string          `json:"tipo"`
	BeneficiaryCedula string          `json:"cedula_beneficiario"`
	BeneficiaryName   string          `json:"nombre_beneficiario"`
	DepartmentID      int             `json:"id_departamento"`
	TotalAmount       decimal.Decimal `json:"monto_total_calculado"`
	State             string          `json:"estado"`
	SubmittedAt       time.Time       `json:"fecha_solicitud"`
}

// PendingListResponse página de la bandeja.
type PendingListResponse struct {
	Items []MissionSummary `json:"items"`
	Page  PageResponse     `json:"page"`
}

// EmployeeResponse resultado de búsqueda de empleados en RRHH.
type EmployeeResponse struct {
	Cedula       string `json:"cedula"`
	Name         string `json:"nombre"`
	DepartmentID int    `json:"id_departamento"`
}
