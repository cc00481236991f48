package repository

import (
	"context"
	"time"

	"github.com/jhoicas/viaticos-api/internal/domain/entity"
)

// UserAccountRepository usuarios del sistema financiero.
// Las lecturas devuelven (nil, nil) si el usuario no existe.
type UserAccountRepository interface {
	GetByUsername(ctx context.Context, username string) (*entity.UserAccount, error)
	GetByID(ctx context.Context, id int64) (*entity.UserAccount, error)
	// List página ordenada por id y total; includeInactive incluye cuentas desactivadas.
	List(ctx context.Context, includeInactive bool, limit, offset int) ([]*entity.UserAccount, int, error)
	// Create alta estricta: username o personal_id repetido es ErrDuplicate.
	Create(ctx context.Context, u *entity.UserAccount) error
	UpdateRole(ctx context.Context, id int64, roleID int) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	SetActive(ctx context.Context, id int64, active bool) error
	TouchLastAccess(ctx context.Context, id int64, at time.Time) error
	CountByRole(ctx context.Context, roleID int) (int, error)
}

// EmployeeDirectory puerto de solo lectura hacia RRHH.
// LookupEmployee devuelve (nil, nil) si la cédula no existe; cualquier otro fallo es ErrStorageUnavailable.
type EmployeeDirectory interface {
	LookupEmployee(ctx context.Context, cedula string) (*entity.PersonnelRecord, error)
	// ManagedDepartments departamentos donde la cédula es aprobador de orden 1.
	ManagedDepartments(ctx context.Context, cedula string) ([]int, error)
	SearchEmployees(ctx context.Context, query string, limit int) ([]entity.PersonnelRecord, error)
}
