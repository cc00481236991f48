package entity

import "sort"

// Permission par (módulo, acción) con etiqueta legible.
type Permission struct {
	ID                  int
	Module              string
	Action              string
	Label               string
	IsEmployeeGrantable bool // es_permiso_empleado
}

// Code código "modulo.accion".
func (p Permission) Code() string {
	return p.Module + "." + p.Action
}

// PermissionSet vista anidada módulo -> acción -> permitido.
// Un set nil o vacío niega todo.
type PermissionSet map[string]map[string]bool

// NewPermissionSet proyecta la lista plana en la vista anidada.
func NewPermissionSet(perms []Permission) PermissionSet {
	set := make(PermissionSet)
	for _, p := range perms {
		actions, ok := set[p.Module]
		if !ok {
			actions = make(map[string]bool)
			set[p.Module] = actions
		}
		actions[p.Action] = true
	}
	return set
}

// Allows consulta puntual usada al evaluar transiciones.
func (s PermissionSet) Allows(module, action string) bool {
	return s[module][action]
}

// Codes lista ordenada de códigos concedidos.
func (s PermissionSet) Codes() []string {
	var out []string
	for module, actions := range s {
		for action, ok := range actions {
			if ok {
				out = append(out, module+"."+action)
			}
		}
	}
	sort.Strings(out)
	return out
}
