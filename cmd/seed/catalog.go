package main

import "github.com/jhoicas/viaticos-api/internal/domain/workflow"

type seedRole struct {
	ID          int
	Name        string
	Description string
}

var roles = []seedRole{
	{workflow.RoleSolicitante, "Solicitante", "Empleado que prepara su propia solicitud"},
	{workflow.RoleJefeInmediato, "Jefe Inmediato", "Aprobador de orden 1 del departamento"},
	{workflow.RoleAnalistaTesoreria, "Analista Tesorería", "Revisión documental y pago"},
	{workflow.RoleAnalistaPresupuesto, "Analista Presupuesto", "Asignación de partidas"},
	{workflow.RoleAnalistaContabilidad, "Analista Contabilidad", "Registro contable"},
	{workflow.RoleCustodioCajaMenuda, "Custodio Caja Menuda", "Revisión y pago de caja menuda"},
	{workflow.RoleDirectorFinanzas, "Director Finanzas", "Aprobación final y monto aprobado"},
	{workflow.RoleFiscalizadorCGR, "Fiscalizador CGR", "Refrendo de la Contraloría"},
	{workflow.RoleAdministrador, "Administrador Sistema", "Administración de roles y usuarios"},
}

type seedPermission struct {
	Module   string
	Action   string
	Label    string
	Employee bool // asignable a roles de empleado
}

var permissions = []seedPermission{
	{workflow.ModuleMisiones, "ver", "Ver misiones", true},
	{workflow.ModuleMisiones, "crear", "Crear misiones", true},
	{workflow.ModuleMisiones, "editar", "Editar misiones", true},
	{workflow.ModuleMisiones, workflow.PermAprobar, "Aprobar misiones", true},
	{workflow.ModuleMisiones, workflow.PermRechazar, "Rechazar misiones", true},
	{workflow.ModuleMisiones, workflow.PermDevolver, "Devolver para corrección", false},
	{workflow.ModuleMisiones, workflow.PermSubsanar, "Subsanar observaciones", true},
	{workflow.ModuleMisiones, workflow.PermAsignarPresupuesto, "Asignar partidas presupuestarias", false},
	{workflow.ModuleMisiones, workflow.PermRefrendar, "Refrendar (CGR)", false},
	{workflow.ModuleMisiones, workflow.PermPagar, "Registrar pago", false},
	{"roles", "ver", "Ver roles", false},
	{"roles", "crear", "Crear roles", false},
	{"roles", "editar", "Editar permisos de roles", false},
	{"roles", "eliminar", "Eliminar roles", false},
	{"usuarios", "ver", "Ver usuarios", false},
	{"usuarios", "crear", "Crear usuarios", false},
	{"usuarios", "editar", "Editar usuarios", false},
	{"reportes", "ver", "Ver reportes", false},
	{"auditoria", "ver", "Ver auditoría", false},
	{"configuracion", "editar", "Editar configuración", false},
	{"sistema", "administrar", "Administrar el sistema", false},
}

// grants permisos "modulo.accion" de cada rol.
var grants = map[int][]string{
	workflow.RoleSolicitante:          {"misiones.ver", "misiones.crear", "misiones.editar", "misiones.subsanar"},
	workflow.RoleJefeInmediato:        {"misiones.ver", "misiones.crear", "misiones.editar", "misiones.subsanar", "misiones.aprobar", "misiones.rechazar"},
	workflow.RoleAnalistaTesoreria:    {"misiones.ver", "misiones.aprobar", "misiones.rechazar", "misiones.devolver", "misiones.pagar", "reportes.ver"},
	workflow.RoleAnalistaPresupuesto:  {"misiones.ver", "misiones.asignar_presupuesto", "reportes.ver"},
	workflow.RoleAnalistaContabilidad: {"misiones.ver", "misiones.aprobar", "misiones.rechazar", "reportes.ver"},
	workflow.RoleCustodioCajaMenuda:   {"misiones.ver", "misiones.aprobar", "misiones.rechazar", "misiones.devolver", "misiones.pagar"},
	workflow.RoleDirectorFinanzas:     {"misiones.ver", "misiones.aprobar", "misiones.rechazar", "reportes.ver", "auditoria.ver"},
	workflow.RoleFiscalizadorCGR:      {"misiones.ver", "misiones.refrendar", "misiones.rechazar", "auditoria.ver"},
	workflow.RoleAdministrador: {
		"roles.ver", "roles.crear", "roles.editar", "roles.eliminar",
		"usuarios.ver", "usuarios.crear", "usuarios.editar",
		"auditoria.ver", "configuracion.editar", "sistema.administrar",
	},
}
