package entity

import "time"

// Role rol del sistema financiero con su conjunto de permisos.
type Role struct {
	ID          int
	Name        string
	Description string
	IsActive    bool
	Permissions []Permission
	CreatedAt   time.Time
}

// PermissionSet vista anidada de los permisos del rol.
func (r *Role) PermissionSet() PermissionSet {
	return NewPermissionSet(r.Permissions)
}
