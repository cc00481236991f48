package mission

import (
	"time"

	"github.com/jhoicas/viaticos-api/internal/application/dto"
	"github.com/jhoicas/viaticos-api/internal/domain/entity"
)

// ToMissionResponse vista completa de la misión.
func ToMissionResponse(m *entity.Mission) dto.MissionResponse {
	r := dto.MissionResponse{
		ID:                     m.ID,
		RequestNumber:          m.RequestNumber,
		Type:                   string(m.Type),
		BeneficiaryCedula:      m.BeneficiaryID,
		BeneficiaryName:        m.BeneficiaryName,
		DepartmentID:           m.DepartmentID,
		PreparerID:             m.PreparerID,
		PreparerKind:           string(m.PreparerKind),
		Objective:              m.Objective,
		Destination:            m.Destination,
		TotalAmount:            m.TotalAmount,
		RequiresCGREndorsement: m.RequiresCGREndorsement,
		State:                  string(m.State),
		SubmittedAt:            m.SubmittedAt,
		SubmissionDeadline:     formatDate(m.SubmissionDeadline),
		DepartureDate:          formatDate(m.DepartureDate),
		ReturnDate:             formatDate(m.ReturnDate),
		PerDiemItems:           []dto.PerDiemItemDTO{},
		TransportItems:         []dto.TransportItemDTO{},
		PettyCashItems:         []dto.PettyCashItemDTO{},
		BudgetAllocations:      []dto.BudgetAllocationDTO{},
		UpdatedAt:              m.UpdatedAt,
	}
	if m.ApprovedAmount.Valid {
		a := m.ApprovedAmount.Decimal
		r.ApprovedAmount = &a
	}
	for _, it := range m.PerDiemItems {
		r.PerDiemItems = append(r.PerDiemItems, dto.PerDiemItemDTO{
			Date: formatDate(it.Date), Breakfast: it.Breakfast, Lunch: it.Lunch, Dinner: it.Dinner, Lodging: it.Lodging, Notes: it.Notes,
		})
	}
	for _, it := range m.TransportItems {
		r.TransportItems = append(r.TransportItems, dto.TransportItemDTO{
			Date: formatDate(it.Date), Kind: it.Kind, Origin: it.Origin, Destination: it.Destination, Amount: it.Amount, Notes: it.Notes,
		})
	}
	for _, it := range m.PettyCashItems {
		r.PettyCashItems = append(r.PettyCashItems, dto.PettyCashItemDTO{
			Date: formatDate(it.Date), FromTime: it.FromTime, ToTime: it.ToTime,
			Breakfast: it.Breakfast, Lunch: it.Lunch, Dinner: it.Dinner, Transport: it.Transport,
		})
	}
	for _, a := range m.BudgetAllocations {
		r.BudgetAllocations = append(r.BudgetAllocations, dto.BudgetAllocationDTO{Code: a.Code, Description: a.Description, Amount: a.Amount})
	}
	return r
}

// ToMissionSummaries filas de la bandeja.
func ToMissionSummaries(ms []*entity.Mission) []dto.MissionSummary {
	out := make([]dto.MissionSummary, 0, len(ms))
	for _, m := range ms {
		out = append(out, dto.MissionSummary{
			ID:                m.ID,
			RequestNumber:     m.RequestNumber,
			Type:              string(m.Type),
			BeneficiaryCedula: m.BeneficiaryID,
			BeneficiaryName:   m.BeneficiaryName,
			DepartmentID:      m.DepartmentID,
			TotalAmount:       m.TotalAmount,
			State:             string(m.State),
			SubmittedAt:       m.SubmittedAt,
		})
	}
	return out
}

// ToEmployeeResponses resultados de búsqueda de beneficiarios.
func ToEmployeeResponses(recs []entity.PersonnelRecord) []dto.EmployeeResponse {
	out := make([]dto.EmployeeResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, dto.EmployeeResponse{Cedula: r.Cedula, Name: r.FullName, DepartmentID: r.DepartmentID})
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dto.DateLayout)
}
