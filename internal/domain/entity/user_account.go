package entity

import "time"

// UserAccount fila de usuarios del sistema financiero.
type UserAccount struct {
	ID           int64
	Username     string
	PasswordHash string // bcrypt
	RoleID       int
	RoleName     string
	IsActive     bool
	LastAccess   *time.Time
	PersonalID   *int // vínculo opcional con nompersonal
	DepartmentID *int
	CreatedAt    time.Time
}
