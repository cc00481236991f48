package workflow

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Settings parámetros de negocio del flujo. Se construye una vez y se pasa explícitamente
// al evaluador de transiciones y a la creación de misiones.
type Settings struct {
	CGRThreshold       decimal.Decimal
	GraceDays          int
	MinRationaleLength int
	CorrectionDays     int
}

// Validate rechaza configuraciones que harían el flujo inconsistente.
func (s Settings) Validate() error {
	if !s.CGRThreshold.IsPositive() {
		return fmt.Errorf("workflow: el umbral de refrendo CGR debe ser mayor que cero")
	}
	if s.GraceDays < 0 || s.CorrectionDays < 0 {
		return fmt.Errorf("workflow: los plazos en días no pueden ser negativos")
	}
	if s.MinRationaleLength < 1 {
		return fmt.Errorf("workflow: la longitud mínima de justificación debe ser al menos 1")
	}
	return nil
}

// RequiresCGREndorsement decide el refrendo al crear la misión. Caja menuda nunca pasa por CGR.
func (s Settings) RequiresCGREndorsement(t MissionType, total decimal.Decimal) bool {
	if t != MissionTypeViaticos {
		return false
	}
	return total.GreaterThanOrEqual(s.CGRThreshold)
}

// SubmissionDeadline fecha límite de presentación a partir de la fecha de solicitud.
func (s Settings) SubmissionDeadline(submitted time.Time) time.Time {
	y, m, d := submitted.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, submitted.Location()).AddDate(0, 0, s.GraceDays)
}

// CorrectionDeadline plazo para subsanar una devolución.
func (s Settings) CorrectionDeadline(requested time.Time) time.Time {
	y, m, d := requested.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, requested.Location()).AddDate(0, 0, s.CorrectionDays)
}
