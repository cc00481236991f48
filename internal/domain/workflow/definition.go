package workflow

// StateInfo metadatos de un estado.
type StateInfo struct {
	Name       State
	Label      string
	IsFinal    bool
	Order      int
	InitialFor []MissionType
}

// TransitionDef una arista del grafo tal como se declara o se persiste.
// Cuando varias comparten (From, Action) se evalúan sus guardas en el orden declarado.
type TransitionDef struct {
	From               State
	Action             Action
	To                 State
	Roles              []int
	Permission         string // acción dentro del módulo misiones, ej. "aprobar"
	Guard              string // nombre en el registro de guardas; vacío = siempre
	RequiresRationale  bool
	DepartmentHeadOnly bool // el actor debe dirigir el departamento del beneficiario
	PreparerOnly       bool // el actor debe ser quien preparó la misión
	SetsApprovedAmount bool // fija monto_aprobado al ejecutarse
}

// Definition estados y transiciones antes de validarse con Build.
type Definition struct {
	States      []StateInfo
	Transitions []TransitionDef
}

// Nombres de guardas disponibles para las definiciones persistidas.
const (
	GuardRequiresCGR = "requiere_refrendo_cgr"
	GuardWithoutCGR  = "sin_refrendo_cgr"
	GuardCajaMenuda  = "caja_menuda"
	GuardViaticos    = "viaticos"
)

// Guard predicado sobre los datos de la misión.
type Guard func(Facts) bool

var guardRegistry = map[string]Guard{
	GuardRequiresCGR: func(f Facts) bool { return f.RequiresCGREndorsement },
	GuardWithoutCGR:  func(f Facts) bool { return !f.RequiresCGREndorsement },
	GuardCajaMenuda:  func(f Facts) bool { return f.MissionType == MissionTypeCajaMenuda },
	GuardViaticos:    func(f Facts) bool { return f.MissionType == MissionTypeViaticos },
}

// Permisos del módulo misiones que exigen las transiciones.
const (
	ModuleMisiones = "misiones"

	PermAprobar            = "aprobar"
	PermRechazar           = "rechazar"
	PermDevolver           = "devolver"
	PermSubsanar           = "subsanar"
	PermAsignarPresupuesto = "asignar_presupuesto"
	PermRefrendar          = "refrendar"
	PermPagar              = "pagar"
)

var (
	rolesTesoreria = []int{RoleAnalistaTesoreria, RoleCustodioCajaMenuda}
	rolesPreparer  = []int{RoleSolicitante, RoleJefeInmediato}
)

// DefaultDefinition flujo de aprobación de viáticos y caja menuda.
func DefaultDefinition() Definition {
	both := []MissionType{MissionTypeViaticos, MissionTypeCajaMenuda}
	return Definition{
		States: []StateInfo{
			{Name: StatePendienteJefe, Label: "Pendiente de aprobación del jefe inmediato", Order: 1, InitialFor: both},
			{Name: StatePendienteRevisionTesoreria, Label: "Pendiente de revisión de Tesorería", Order: 2},
			{Name: StateDevueltoCorreccion, Label: "Devuelto para corrección", Order: 3},
			{Name: StatePendienteAsignacionPresupuesto, Label: "Pendiente de asignación presupuestaria", Order: 4},
			{Name: StatePendienteContabilidad, Label: "Pendiente de Contabilidad", Order: 5},
			{Name: StatePendienteAprobacionFinanzas, Label: "Pendiente de aprobación de Finanzas", Order: 6},
			{Name: StatePendienteRefrendoCGR, Label: "Pendiente de refrendo CGR", Order: 7},
			{Name: StateAprobadoParaPago, Label: "Aprobado para pago", Order: 8},
			{Name: StatePagado, Label: "Pagado", Order: 9, IsFinal: true},
			{Name: StateRechazado, Label: "Rechazado", Order: 10, IsFinal: true},
		},
		Transitions: []TransitionDef{
			{From: StatePendienteJefe, Action: ActionApprove, To: StatePendienteRevisionTesoreria,
				Roles: []int{RoleJefeInmediato}, Permission: PermAprobar, DepartmentHeadOnly: true},
			{From: StatePendienteJefe, Action: ActionReject, To: StateRechazado,
				Roles: []int{RoleJefeInmediato}, Permission: PermRechazar, DepartmentHeadOnly: true, RequiresRationale: true},

			{From: StatePendienteRevisionTesoreria, Action: ActionApprove, To: StateAprobadoParaPago,
				Roles: rolesTesoreria, Permission: PermAprobar, Guard: GuardCajaMenuda},
			{From: StatePendienteRevisionTesoreria, Action: ActionApprove, To: StatePendienteAsignacionPresupuesto,
				Roles: rolesTesoreria, Permission: PermAprobar, Guard: GuardViaticos},
			{From: StatePendienteRevisionTesoreria, Action: ActionRequestCorrection, To: StateDevueltoCorreccion,
				Roles: rolesTesoreria, Permission: PermDevolver, RequiresRationale: true},
			{From: StatePendienteRevisionTesoreria, Action: ActionReject, To: StateRechazado,
				Roles: rolesTesoreria, Permission: PermRechazar, RequiresRationale: true},

			{From: StateDevueltoCorreccion, Action: ActionSubmitCorrection, To: StatePendienteRevisionTesoreria,
				Roles: rolesPreparer, Permission: PermSubsanar, PreparerOnly: true},

			{From: StatePendienteAsignacionPresupuesto, Action: ActionAssignBudget, To: StatePendienteContabilidad,
				Roles: []int{RoleAnalistaPresupuesto}, Permission: PermAsignarPresupuesto},

			{From: StatePendienteContabilidad, Action: ActionApprove, To: StatePendienteAprobacionFinanzas,
				Roles: []int{RoleAnalistaContabilidad}, Permission: PermAprobar},
			{From: StatePendienteContabilidad, Action: ActionReject, To: StateRechazado,
				Roles: []int{RoleAnalistaContabilidad}, Permission: PermRechazar, RequiresRationale: true},

			{From: StatePendienteAprobacionFinanzas, Action: ActionApprove, To: StateAprobadoParaPago,
				Roles: []int{RoleDirectorFinanzas}, Permission: PermAprobar, Guard: GuardWithoutCGR, SetsApprovedAmount: true},
			{From: StatePendienteAprobacionFinanzas, Action: ActionApprove, To: StatePendienteRefrendoCGR,
				Roles: []int{RoleDirectorFinanzas}, Permission: PermAprobar, Guard: GuardRequiresCGR, SetsApprovedAmount: true},
			{From: StatePendienteAprobacionFinanzas, Action: ActionReject, To: StateRechazado,
				Roles: []int{RoleDirectorFinanzas}, Permission: PermRechazar, RequiresRationale: true},

			{From: StatePendienteRefrendoCGR, Action: ActionEndorse, To: StateAprobadoParaPago,
				Roles: []int{RoleFiscalizadorCGR}, Permission: PermRefrendar},
			{From: StatePendienteRefrendoCGR, Action: ActionReject, To: StateRechazado,
				Roles: []int{RoleFiscalizadorCGR}, Permission: PermRechazar, RequiresRationale: true},

			{From: StateAprobadoParaPago, Action: ActionMarkPaid, To: StatePagado,
				Roles: rolesTesoreria, Permission: PermPagar},
		},
	}
}
