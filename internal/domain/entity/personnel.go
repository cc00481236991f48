package entity

// EstadoDeBaja valor de nompersonal.estado para empleados dados de baja.
const EstadoDeBaja = "De Baja"

// PersonnelRecord registro de empleado leído de RRHH (solo lectura).
type PersonnelRecord struct {
	PersonalID   int
	Cedula       string
	FullName     string
	Status       string
	PasswordHash string // MD5 heredado
	Email        string
	DepartmentID int
}

// IsActive informa si el empleado puede autenticarse y ser beneficiario.
func (p *PersonnelRecord) IsActive() bool {
	return p.Status != EstadoDeBaja
}
