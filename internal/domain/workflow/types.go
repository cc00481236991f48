package workflow

// State nombre de un estado del flujo de aprobación.
type State string

// Estados del flujo de misiones.
const (
	StatePendienteJefe                  State = "PENDIENTE_JEFE"
	StatePendienteRevisionTesoreria     State = "PENDIENTE_REVISION_TESORERIA"
	StateDevueltoCorreccion             State = "DEVUELTO_CORRECCION"
	StatePendienteAsignacionPresupuesto State = "PENDIENTE_ASIGNACION_PRESUPUESTO"
	StatePendienteContabilidad          State = "PENDIENTE_CONTABILIDAD"
	StatePendienteAprobacionFinanzas    State = "PENDIENTE_APROBACION_FINANZAS"
	StatePendienteRefrendoCGR           State = "PENDIENTE_REFRENDO_CGR"
	StateAprobadoParaPago               State = "APROBADO_PARA_PAGO"
	StatePagado                         State = "PAGADO"
	StateRechazado                      State = "RECHAZADO"
)

// Action acción que un principal solicita sobre una misión.
type Action string

// Acciones del flujo.
const (
	ActionApprove           Action = "APPROVE"
	ActionReject            Action = "REJECT"
	ActionRequestCorrection Action = "REQUEST_CORRECTION"
	ActionSubmitCorrection  Action = "SUBMIT_CORRECTION"
	ActionAssignBudget      Action = "ASSIGN_BUDGET"
	ActionEndorse           Action = "ENDORSE"
	ActionMarkPaid          Action = "MARK_PAID"
)

var allActions = []Action{
	ActionApprove, ActionReject, ActionRequestCorrection, ActionSubmitCorrection,
	ActionAssignBudget, ActionEndorse, ActionMarkPaid,
}

// ParseAction valida el nombre recibido por la API.
func ParseAction(s string) (Action, bool) {
	for _, a := range allActions {
		if string(a) == s {
			return a, true
		}
	}
	return "", false
}

// MissionType tipo de misión; cada tipo tiene un único estado inicial.
type MissionType string

const (
	MissionTypeViaticos   MissionType = "VIATICOS"
	MissionTypeCajaMenuda MissionType = "CAJA_MENUDA"
)

// MissionTypes lista cerrada de tipos de misión.
var MissionTypes = []MissionType{MissionTypeViaticos, MissionTypeCajaMenuda}

// Valid informa si t es un tipo conocido.
func (t MissionType) Valid() bool {
	return t == MissionTypeViaticos || t == MissionTypeCajaMenuda
}

// Identificadores de rol sembrados en la tabla roles.
// Los roles 1 y 2 además se sintetizan para empleados de RRHH al iniciar sesión.
const (
	RoleSolicitante          = 1
	RoleJefeInmediato        = 2
	RoleAnalistaTesoreria    = 3
	RoleAnalistaPresupuesto  = 4
	RoleAnalistaContabilidad = 5
	RoleCustodioCajaMenuda   = 6
	RoleDirectorFinanzas     = 7
	RoleFiscalizadorCGR      = 8
	RoleAdministrador        = 9
)

// Facts datos de la misión contra los que se evalúan las guardas.
type Facts struct {
	MissionType            MissionType
	RequiresCGREndorsement bool
}
