// Package rrhh adaptador de solo lectura hacia la base de personal.
package rrhh

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/internal/domain/repository"
)

var _ repository.EmployeeDirectory = (*Directory)(nil)

// Queryer subconjunto de *pgxpool.Pool que usa el directorio.
type Queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Directory implementa EmployeeDirectory sobre nompersonal y departamento_aprobadores_maestros.
type Directory struct {
	db    Queryer
	guard *guard
}

// NewDirectory construye el directorio sobre el pool de RRHH.
func NewDirectory(db Queryer, opts Options) *Directory {
	return &Directory{db: db, guard: newGuard(opts)}
}

// BreakerState "closed", "half-open" u "open".
func (d *Directory) BreakerState() string {
	return d.guard.state().String()
}

// LookupEmployee (nil, nil) si la cédula no existe.
func (d *Directory) LookupEmployee(ctx context.Context, cedula string) (*entity.PersonnelRecord, error) {
	var rec *entity.PersonnelRecord
	err := d.guard.do(ctx, "lookup employee", func(ctx context.Context) error {
		var r entity.PersonnelRecord
		err := d.db.QueryRow(ctx, `
			SELECT personal_id, cedula, COALESCE(apenom, ''), COALESCE(estado, ''),
				COALESCE(usr_password, ''), COALESCE(email, ''), COALESCE(IdDepartamento, 0)
			FROM nompersonal
			WHERE cedula = $1
			LIMIT 1`, cedula).Scan(
			&r.PersonalID, &r.Cedula, &r.FullName, &r.Status, &r.PasswordHash, &r.Email, &r.DepartmentID)
		if errors.Is(err, pgx.ErrNoRows) {
			rec = nil
			return nil
		}
		if err != nil {
			return err
		}
		rec = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ManagedDepartments departamentos donde la cédula figura como aprobador de orden 1.
func (d *Directory) ManagedDepartments(ctx context.Context, cedula string) ([]int, error) {
	var depts []int
	err := d.guard.do(ctx, "managed departments", func(ctx context.Context) error {
		rows, err := d.db.Query(ctx, `
			SELECT DISTINCT id_departamento
			FROM departamento_aprobadores_maestros
			WHERE cedula = $1 AND orden_aprobador = 1
			ORDER BY id_departamento`, cedula)
		if err != nil {
			return err
		}
		depts, err = pgx.CollectRows(rows, pgx.RowTo[int])
		return err
	})
	if err != nil {
		return nil, err
	}
	return depts, nil
}

// SearchEmployees coincidencia parcial por cédula o nombre; excluye dados de baja.
func (d *Directory) SearchEmployees(ctx context.Context, query string, limit int) ([]entity.PersonnelRecord, error) {
	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"
	var list []entity.PersonnelRecord
	err := d.guard.do(ctx, "search employees", func(ctx context.Context) error {
		rows, err := d.db.Query(ctx, `
			SELECT personal_id, cedula, COALESCE(apenom, ''), COALESCE(estado, ''),
				'', COALESCE(email, ''), COALESCE(IdDepartamento, 0)
			FROM nompersonal
			WHERE (cedula ILIKE $1 OR apenom ILIKE $1) AND COALESCE(estado, '') <> $2
			ORDER BY apenom
			LIMIT $3`, pattern, entity.EstadoDeBaja, limit)
		if err != nil {
			return err
		}
		list, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.PersonnelRecord, error) {
			var r entity.PersonnelRecord
			err := row.Scan(&r.PersonalID, &r.Cedula, &r.FullName, &r.Status, &r.PasswordHash, &r.Email, &r.DepartmentID)
			return r, err
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
