package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/viaticos-api/internal/domain"
	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/internal/domain/repository"
	"github.com/jhoicas/viaticos-api/internal/domain/workflow"
)

var _ repository.MissionRepository = (*MissionRepo)(nil)

// MissionRepo implementación de MissionRepository (usable con pool o tx).
type MissionRepo struct {
	q Querier
}

// NewMissionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMissionRepository(q Querier) *MissionRepo {
	return &MissionRepo{q: q}
}

const missionColumns = `
	id, numero_solicitud, tipo, cedula_beneficiario, nombre_beneficiario, id_departamento,
	preparado_por, tipo_preparador, objetivo, destino, fecha_salida, fecha_retorno,
	monto_total_calculado, monto_aprobado, requiere_refrendo_cgr, estado,
	fecha_solicitud, fecha_limite_presentacion, created_at, updated_at`

// Create inserta la misión y sus renglones en una sola transacción (savepoint si q ya es una tx)
// y asigna ID y número de solicitud.
func (r *MissionRepo) Create(ctx context.Context, m *entity.Mission) error {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return storageErr("begin create mission", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO misiones (numero_solicitud, tipo, cedula_beneficiario, nombre_beneficiario, id_departamento,
			preparado_por, tipo_preparador, objetivo, destino, fecha_salida, fecha_retorno,
			monto_total_calculado, monto_aprobado, requiere_refrendo_cgr, estado,
			fecha_solicitud, fecha_limite_presentacion, created_at, updated_at)
		VALUES (NULL, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULL, $12, $13, $14, $15, $16, $17)
		RETURNING id`
	err = tx.QueryRow(ctx, query,
		string(m.Type), m.BeneficiaryID, m.BeneficiaryName, m.DepartmentID,
		m.PreparerID, string(m.PreparerKind), m.Objective, nullIfEmpty(m.Destination),
		nullDate(m.DepartureDate), nullDate(m.ReturnDate),
		m.TotalAmount, m.RequiresCGREndorsement, string(m.State),
		m.SubmittedAt, m.SubmissionDeadline, m.CreatedAt, m.UpdatedAt,
	).Scan(&m.ID)
	if err != nil {
		return storageErr("insert mission", err)
	}
	m.RequestNumber = entity.FormatRequestNumber(m.SubmittedAt.Year(), m.ID)
	if _, err := tx.Exec(ctx, `UPDATE misiones SET numero_solicitud = $2 WHERE id = $1`, m.ID, m.RequestNumber); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número de solicitud %s", domain.ErrDuplicate, m.RequestNumber)
		}
		return storageErr("set request number", err)
	}

	for _, it := range m.PerDiemItems {
		_, err := tx.Exec(ctx, `
			INSERT INTO mision_viaticos (mision_id, fecha, desayuno, almuerzo, cena, hospedaje, observaciones)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			m.ID, it.Date, it.Breakfast, it.Lunch, it.Dinner, it.Lodging, nullIfEmpty(it.Notes))
		if err != nil {
			return storageErr("insert per diem item", err)
		}
	}
	for _, it := range m.TransportItems {
		_, err := tx.Exec(ctx, `
			INSERT INTO mision_transporte (mision_id, fecha, tipo, origen, destino, monto, observaciones)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			m.ID, it.Date, it.Kind, it.Origin, it.Destination, it.Amount, nullIfEmpty(it.Notes))
		if err != nil {
			return storageErr("insert transport item", err)
		}
	}
	for _, it := range m.PettyCashItems {
		_, err := tx.Exec(ctx, `
			INSERT INTO mision_caja_menuda (mision_id, fecha, hora_desde, hora_hasta, desayuno, almuerzo, cena, transporte)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			m.ID, it.Date, nullIfEmpty(it.FromTime), nullIfEmpty(it.ToTime), it.Breakfast, it.Lunch, it.Dinner, it.Transport)
		if err != nil {
			return storageErr("insert petty cash item", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return storageErr("commit create mission", err)
	}
	return nil
}

// GetByID misión con renglones y partidas; (nil, nil) si no existe.
func (r *MissionRepo) GetByID(ctx context.Context, id int64) (*entity.Mission, error) {
	return r.get(ctx, `SELECT `+missionColumns+` FROM misiones WHERE id = $1`, id)
}

// GetForUpdate igual que GetByID pero bloquea la fila hasta el fin de la transacción.
// Las misiones distintas nunca se bloquean entre sí.
func (r *MissionRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Mission, error) {
	return r.get(ctx, `SELECT `+missionColumns+` FROM misiones WHERE id = $1 FOR UPDATE`, id)
}

func (r *MissionRepo) get(ctx context.Context, query string, id int64) (*entity.Mission, error) {
	m, err := scanMission(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get mission", err)
	}
	if err := r.loadItems(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *MissionRepo) loadItems(ctx context.Context, m *entity.Mission) error {
	rows, err := r.q.Query(ctx, `
		SELECT fecha, desayuno, almuerzo, cena, hospedaje, COALESCE(observaciones, '')
		FROM mision_viaticos WHERE mision_id = $1 ORDER BY fecha, id`, m.ID)
	if err != nil {
		return storageErr("list per diem items", err)
	}
	m.PerDiemItems, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.PerDiemItem, error) {
		var it entity.PerDiemItem
		err := row.Scan(&it.Date, &it.Breakfast, &it.Lunch, &it.Dinner, &it.Lodging, &it.Notes)
		return it, err
	})
	if err != nil {
		return storageErr("scan per diem items", err)
	}

	rows, err = r.q.Query(ctx, `
		SELECT fecha, tipo, origen, destino, monto, COALESCE(observaciones, '')
		FROM mision_transporte WHERE mision_id = $1 ORDER BY fecha, id`, m.ID)
	if err != nil {
		return storageErr("list transport items", err)
	}
	m.TransportItems, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.TransportItem, error) {
		var it entity.TransportItem
		err := row.Scan(&it.Date, &it.Kind, &it.Origin, &it.Destination, &it.Amount, &it.Notes)
		return it, err
	})
	if err != nil {
		return storageErr("scan transport items", err)
	}

	rows, err = r.q.Query(ctx, `
		SELECT fecha, COALESCE(hora_desde, ''), COALESCE(hora_hasta, ''), desayuno, almuerzo, cena, transporte
		FROM mision_caja_menuda WHERE mision_id = $1 ORDER BY fecha, id`, m.ID)
	if err != nil {
		return storageErr("list petty cash items", err)
	}
	m.PettyCashItems, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.PettyCashItem, error) {
		var it entity.PettyCashItem
		err := row.Scan(&it.Date, &it.FromTime, &it.ToTime, &it.Breakfast, &it.Lunch, &it.Dinner, &it.Transport)
		return it, err
	})
	if err != nil {
		return storageErr("scan petty cash items", err)
	}

	rows, err = r.q.Query(ctx, `
		SELECT codigo_partida, COALESCE(descripcion, ''), monto
		FROM mision_partidas WHERE mision_id = $1 ORDER BY id`, m.ID)
	if err != nil {
		return storageErr("list budget allocations", err)
	}
	m.BudgetAllocations, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.BudgetAllocation, error) {
		var a entity.BudgetAllocation
		err := row.Scan(&a.Code, &a.Description, &a.Amount)
		return a, err
	})
	if err != nil {
		return storageErr("scan budget allocations", err)
	}
	return nil
}

// UpdateState cambio condicional: solo si el estado sigue siendo from.
func (r *MissionRepo) UpdateState(ctx context.Context, id int64, from, to workflow.State, at time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE misiones SET estado = $3, updated_at = $4 WHERE id = $1 AND estado = $2`,
		id, string(from), string(to), at)
	if err != nil {
		return storageErr("update mission state", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidActionForState
	}
	return nil
}

// SetApprovedAmount fija monto_aprobado.
func (r *MissionRepo) SetApprovedAmount(ctx context.Context, id int64, amount decimal.Decimal) error {
	if _, err := r.q.Exec(ctx, `UPDATE misiones SET monto_aprobado = $2 WHERE id = $1`, id, amount); err != nil {
		return storageErr("set approved amount", err)
	}
	return nil
}

// ReplaceBudgetAllocations reemplaza las partidas de la misión.
func (r *MissionRepo) ReplaceBudgetAllocations(ctx context.Context, id int64, allocations []entity.BudgetAllocation) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM mision_partidas WHERE mision_id = $1`, id); err != nil {
		return storageErr("delete budget allocations", err)
	}
	rows := make([][]any, 0, len(allocations))
	for _, a := range allocations {
		rows = append(rows, []any{id, a.Code, nullIfEmpty(a.Description), a.Amount})
	}
	tx, ok := r.q.(pgx.Tx)
	if ok && len(rows) > 0 {
		_, err := tx.CopyFrom(ctx, pgx.Identifier{"mision_partidas"},
			[]string{"mision_id", "codigo_partida", "descripcion", "monto"}, pgx.CopyFromRows(rows))
		if err != nil {
			return storageErr("copy budget allocations", err)
		}
		return nil
	}
	for _, row := range rows {
		if _, err := r.q.Exec(ctx,
			`INSERT INTO mision_partidas (mision_id, codigo_partida, descripcion, monto) VALUES ($1, $2, $3, $4)`,
			row...); err != nil {
			return storageErr("insert budget allocation", err)
		}
	}
	return nil
}

// ListPending bandeja: (estado abierto) OR (estado de jefe AND departamento dirigido)
// OR (estado de subsanación AND preparada por el principal). Orden por fecha de solicitud.
func (r *MissionRepo) ListPending(ctx context.Context, f repository.PendingFilter) ([]*entity.Mission, int, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if len(f.OpenStates) > 0 {
		conds = append(conds, "estado = ANY("+arg(stateNames(f.OpenStates))+")")
	}
	if len(f.DepartmentStates) > 0 && len(f.DepartmentIDs) > 0 {
		conds = append(conds, "(estado = ANY("+arg(stateNames(f.DepartmentStates))+") AND id_departamento = ANY("+arg(f.DepartmentIDs)+"))")
	}
	if len(f.PreparerStates) > 0 && f.PreparerID != "" {
		conds = append(conds, "(estado = ANY("+arg(stateNames(f.PreparerStates))+") AND preparado_por = "+arg(f.PreparerID)+
			" AND tipo_preparador = "+arg(string(f.PreparerKind))+")")
	}
	if len(conds) == 0 {
		return []*entity.Mission{}, 0, nil
	}
	where := strings.Join(conds, " OR ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM misiones WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, storageErr("count pending missions", err)
	}

	limit, offset := f.Limit, f.Offset
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + missionColumns + ` FROM misiones WHERE ` + where +
		` ORDER BY fecha_solicitud, id LIMIT ` + arg(limit) + ` OFFSET ` + arg(offset)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, storageErr("list pending missions", err)
	}
	defer rows.Close()
	list := []*entity.Mission{}
	for rows.Next() {
		m, err := scanMission(rows)
		if err != nil {
			return nil, 0, storageErr("scan mission", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storageErr("list pending missions", err)
	}
	return list, total, nil
}

func scanMission(row pgx.Row) (*entity.Mission, error) {
	var (
		m                  entity.Mission
		numero, destino    *string
		tipo, prepKind, st string
		salida, retorno    *time.Time
	)
	err := row.Scan(
		&m.ID, &numero, &tipo, &m.BeneficiaryID, &m.BeneficiaryName, &m.DepartmentID,
		&m.PreparerID, &prepKind, &m.Objective, &destino, &salida, &retorno,
		&m.TotalAmount, &m.ApprovedAmount, &m.RequiresCGREndorsement, &st,
		&m.SubmittedAt, &m.SubmissionDeadline, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.RequestNumber = derefString(numero)
	m.Destination = derefString(destino)
	m.Type = workflow.MissionType(tipo)
	m.PreparerKind = entity.PrincipalKind(prepKind)
	m.State = workflow.State(st)
	if salida != nil {
		m.DepartureDate = *salida
	}
	if retorno != nil {
		m.ReturnDate = *retorno
	}
	return &m, nil
}

func nullDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func stateNames(states []workflow.State) []string {
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = string(s)
	}
	return out
}
