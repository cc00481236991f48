package mission

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/viaticos-api/internal/application/dto"
	"github.com/jhoicas/viaticos-api/internal/domain"
	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/internal/domain/repository"
	"github.com/jhoicas/viaticos-api/internal/domain/workflow"
)

// PermCrear permiso del módulo misiones exigido para registrar solicitudes.
const PermCrear = "crear"

// CreateMissionUseCase registro de misiones en el estado inicial de su tipo.
type CreateMissionUseCase struct {
	graph     *workflow.Graph
	settings  workflow.Settings
	missions  repository.MissionRepository
	directory repository.EmployeeDirectory
	log       zerolog.Logger
	now       func() time.Time
}

// NewCreateMissionUseCase construye el caso de uso.
func NewCreateMissionUseCase(
	graph *workflow.Graph,
	settings workflow.Settings,
	missions repository.MissionRepository,
	directory repository.EmployeeDirectory,
	log zerolog.Logger,
) *CreateMissionUseCase {
	return &CreateMissionUseCase{
		graph:     graph,
		settings:  settings,
		missions:  missions,
		directory: directory,
		log:       log,
		now:       time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *CreateMissionUseCase) WithClock(now func() time.Time) *CreateMissionUseCase {
	uc.now = now
	return uc
}

// Create valida la solicitud, resuelve el beneficiario en RRHH y persiste la misión.
// El refrendo CGR se decide aquí una sola vez.
func (uc *CreateMissionUseCase) Create(ctx context.Context, p entity.Principal, in dto.CreateMissionRequest) (*entity.Mission, error) {
	if p == nil || !p.Permissions().Allows(workflow.ModuleMisiones, PermCrear) {
		return nil, domain.ErrPermissionDenied
	}
	m, err := buildMission(in)
	if err != nil {
		return nil, err
	}

	ben, err := uc.directory.LookupEmployee(ctx, m.BeneficiaryID)
	if err != nil {
		return nil, err
	}
	if ben == nil {
		return nil, domain.Validationf("el beneficiario %s no existe en RRHH", m.BeneficiaryID)
	}
	if !ben.IsActive() {
		return nil, domain.Validationf("el beneficiario %s está dado de baja", m.BeneficiaryID)
	}

	initial, ok := uc.graph.InitialState(m.Type)
	if !ok {
		return nil, domain.Validationf("tipo de misión sin estado inicial: %s", m.Type)
	}
	now := uc.now()
	m.BeneficiaryName = ben.FullName
	m.DepartmentID = ben.DepartmentID
	m.PreparerID = p.PrincipalID()
	m.PreparerKind = p.Kind()
	m.TotalAmount = m.ItemsTotal()
	m.RequiresCGREndorsement = uc.settings.RequiresCGREndorsement(m.Type, m.TotalAmount)
	m.State = initial
	m.SubmittedAt = now
	m.SubmissionDeadline = uc.settings.SubmissionDeadline(now)
	m.CreatedAt = now
	m.UpdatedAt = now

	if err := uc.missions.Create(ctx, m); err != nil {
		return nil, err
	}
	uc.log.Info().Int64("mission_id", m.ID).Str("numero", m.RequestNumber).Str("tipo", string(m.Type)).
		Str("total", m.TotalAmount.StringFixed(2)).Bool("refrendo_cgr", m.RequiresCGREndorsement).
		Str("principal", p.PrincipalID()).Msg("misión registrada")
	return m, nil
}

// buildMission comprueba los campos exigidos por cada tipo y convierte los renglones.
func buildMission(in dto.CreateMissionRequest) (*entity.Mission, error) {
	t := workflow.MissionType(in.Type)
	if !t.Valid() {
		return nil, domain.Validationf("tipo de misión inválido %q", in.Type)
	}
	m := &entity.Mission{
		Type:          t,
		BeneficiaryID: strings.TrimSpace(in.BeneficiaryCedula),
		Objective:     strings.TrimSpace(in.Objective),
		Destination:   strings.TrimSpace(in.Destination),
	}
	if m.BeneficiaryID == "" {
		return nil, domain.Validationf("la cédula del beneficiario es requerida")
	}
	if m.Objective == "" {
		return nil, domain.Validationf("el objetivo es requerido")
	}

	switch t {
	case workflow.MissionTypeViaticos:
		if len(in.PettyCashItems) > 0 {
			return nil, domain.Validationf("una misión de viáticos no admite renglones de caja menuda")
		}
		if len(in.PerDiemItems) == 0 && len(in.TransportItems) == 0 {
			return nil, domain.Validationf("se requiere al menos un renglón de viático o de transporte")
		}
		if m.Destination == "" {
			return nil, domain.Validationf("el destino es requerido")
		}
		var err error
		if m.DepartureDate, err = parseDate("fecha_salida", in.DepartureDate); err != nil {
			return nil, err
		}
		if m.ReturnDate, err = parseDate("fecha_retorno", in.ReturnDate); err != nil {
			return nil, err
		}
		if m.ReturnDate.Before(m.DepartureDate) {
			return nil, domain.Validationf("la fecha de retorno es anterior a la de salida")
		}
		for i, it := range in.PerDiemItems {
			item, err := perDiemItem(i, it)
			if err != nil {
				return nil, err
			}
			m.PerDiemItems = append(m.PerDiemItems, item)
		}
		for i, it := range in.TransportItems {
			item, err := transportItem(i, it)
			if err != nil {
				return nil, err
			}
			m.TransportItems = append(m.TransportItems, item)
		}
	case workflow.MissionTypeCajaMenuda:
		if len(in.PerDiemItems) > 0 || len(in.TransportItems) > 0 {
			return nil, domain.Validationf("una misión de caja menuda no admite renglones de viático ni de transporte")
		}
		if len(in.PettyCashItems) == 0 {
			return nil, domain.Validationf("se requiere al menos un renglón de caja menuda")
		}
		for i, it := range in.PettyCashItems {
			item, err := pettyCashItem(i, it)
			if err != nil {
				return nil, err
			}
			m.PettyCashItems = append(m.PettyCashItems, item)
		}
	}
	return m, nil
}

func parseDate(field, s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, domain.Validationf("%s es requerida", field)
	}
	d, err := time.Parse(dto.DateLayout, s)
	if err != nil {
		return time.Time{}, domain.Validationf("%s inválida %q", field, s)
	}
	return d, nil
}

func checkAmounts(label string, total decimal.Decimal, amounts ...decimal.Decimal) error {
	for _, a := range amounts {
		if a.IsNegative() {
			return domain.Validationf("%s: los montos no pueden ser negativos", label)
		}
	}
	if !total.IsPositive() {
		return domain.Validationf("%s: el total debe ser mayor que cero", label)
	}
	return nil
}

func perDiemItem(i int, in dto.PerDiemItemDTO) (entity.PerDiemItem, error) {
	label := fmt.Sprintf("viático %d", i+1)
	d, err := parseDate(label+" fecha", in.Date)
	if err != nil {
		return entity.PerDiemItem{}, err
	}
	it := entity.PerDiemItem{Date: d, Breakfast: in.Breakfast, Lunch: in.Lunch, Dinner: in.Dinner, Lodging: in.Lodging, Notes: in.Notes}
	if err := checkAmounts(label, it.Total(), it.Amounts()...); err != nil {
		return entity.PerDiemItem{}, err
	}
	return it, nil
}

func transportItem(i int, in dto.TransportItemDTO) (entity.TransportItem, error) {
	label := fmt.Sprintf("transporte %d", i+1)
	d, err := parseDate(label+" fecha", in.Date)
	if err != nil {
		return entity.TransportItem{}, err
	}
	if strings.TrimSpace(in.Origin) == "" || strings.TrimSpace(in.Destination) == "" {
		return entity.TransportItem{}, domain.Validationf("%s: origen y destino son requeridos", label)
	}
	it := entity.TransportItem{
		Date:        d,
		Kind:        strings.ToUpper(strings.TrimSpace(in.Kind)),
		Origin:      strings.TrimSpace(in.Origin),
		Destination: strings.TrimSpace(in.Destination),
		Amount:      in.Amount,
		Notes:       in.Notes,
	}
	if err := checkAmounts(label, it.Amount, it.Amount); err != nil {
		return entity.TransportItem{}, err
	}
	return it, nil
}

func pettyCashItem(i int, in dto.PettyCashItemDTO) (entity.PettyCashItem, error) {
	label := fmt.Sprintf("caja menuda %d", i+1)
	d, err := parseDate(label+" fecha", in.Date)
	if err != nil {
		return entity.PettyCashItem{}, err
	}
	it := entity.PettyCashItem{
		Date: d, FromTime: in.FromTime, ToTime: in.ToTime,
		Breakfast: in.Breakfast, Lunch: in.Lunch, Dinner: in.Dinner, Transport: in.Transport,
	}
	if err := checkAmounts(label, it.Total(), it.Amounts()...); err != nil {
		return entity.PettyCashItem{}, err
	}
	return it, nil
}
