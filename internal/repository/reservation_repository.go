package repository

import (
	"context"
	"database/sql"

	"github.com/autonew/carwash-booking/internal/model"
)

// ReservationRepo provides CRUD operations for reservations in
// `lavado_auto_reserva` and their service line items in
// `lavado_auto_reservaservicio`. Creation happens inside a caller
// supplied transaction so the subscription counter, the reservation
// header and the line items commit or roll back together.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// reservationColumns selects every header column. DATE and TIME values
// are formatted to strings so the scan does not depend on driver
// parseTime behaviour.
const reservationColumns = `r.id_reserva, r.numero_reserva,
       DATE_FORMAT(r.fecha,'%Y-%m-%d'), TIME_FORMAT(r.hora,'%H:%i:%s'),
       r.estado, r.empresa_id, r.usuario_id,
       r.es_pago_individual, r.es_reserva_empresarial,
       r.placa_vehiculo, COALESCE(r.tipo_vehiculo,'No especificado'),
       COALESCE(r.conductor_asignado,''), COALESCE(r.observaciones_empresariales,''),
       r.suscripcion_utilizada_id, r.pagado_empresa,
       r.fue_recuperada, COALESCE(r.recargo_recuperacion,0)`

type rowScanner interface{ Scan(dest ...any) error }

func scanReservation(row rowScanner) (model.Reservation, error) {
	var m model.Reservation
	err := row.Scan(&m.ID, &m.Number, &m.Date, &m.Hour,
		&m.Status, &m.BusinessID, &m.UserID,
		&m.IndividualPayment, &m.Corporate,
		&m.VehiclePlate, &m.VehicleType,
		&m.AssignedDriver, &m.CorporateNotes,
		&m.SubscriptionID, &m.PaidToBusiness,
		&m.Recovered, &m.RecoverySurcharge)
	return m, err
}

// ExistsNumberTx reports whether a booking code is already used. It is
// the uniqueness oracle of the code generator and must run inside the
// creation transaction.
func (r *ReservationRepo) ExistsNumberTx(ctx context.Context, tx *sql.Tx, number string) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM lavado_auto_reserva WHERE numero_reserva=?", number).Scan(&n)
	return n > 0, err
}

// CreateTx inserts the reservation header within an existing
// transaction and populates the generated ID. The UNIQUE index on
// numero_reserva is the final guard against code races; a duplicate
// insert surfaces as ErrConflict.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, m *model.Reservation) error {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO lavado_auto_reserva
		  (numero_reserva, fecha, hora, estado, empresa_id, usuario_id,
		   es_pago_individual, es_reserva_empresarial, placa_vehiculo, tipo_vehiculo,
		   conductor_asignado, observaciones_empresariales, suscripcion_utilizada_id,
		   pagado_empresa, fue_recuperada, recargo_recuperacion)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,FALSE,FALSE,0)`,
		m.Number, m.Date, m.Hour, m.Status, m.BusinessID, m.UserID,
		m.IndividualPayment, m.Corporate, m.VehiclePlate, m.VehicleType,
		m.AssignedDriver, m.CorporateNotes, m.SubscriptionID)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// AddServicesTx inserts the line items in a single statement. Passing
// an empty slice has no effect and returns nil.
func (r *ReservationRepo) AddServicesTx(ctx context.Context, tx *sql.Tx, items []model.ReservationService) error {
	if len(items) == 0 {
		return nil
	}
	query := `INSERT INTO lavado_auto_reservaservicio
		  (reserva_id, servicio_id, precio_aplicado, precio_original,
		   es_servicio_plan, descuento_plan_individual, descuento_empresarial) VALUES `
	args := make([]any, 0, len(items)*7)
	for i, it := range items {
		if i > 0 {
			query += ","
		}
		query += "(?,?,?,?,?,?,?)"
		args = append(args, it.ReservationID, it.ServiceID, it.AppliedPrice, it.OriginalPrice,
			it.FromPlan, it.PlanDiscount, it.CorporateDiscount)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// SlotTaken reports whether a business already has an active
// reservation at fecha+hora. excludeID skips one reservation (used by
// reschedule and recovery to ignore the row being moved); zero skips
// nothing. excludeExpired additionally ignores vencida rows, which is
// the occupancy rule of the recovery flow.
func (r *ReservationRepo) SlotTaken(ctx context.Context, businessID uint64, date, hour string, excludeID uint64, excludeExpired bool) (bool, error) {
	q := `SELECT COUNT(*) FROM lavado_auto_reserva
	       WHERE empresa_id=? AND fecha=? AND hora=? AND estado<>'cancelada'`
	args := []any{businessID, date, hour}
	if excludeExpired {
		q += " AND estado<>'vencida'"
	}
	if excludeID != 0 {
		q += " AND id_reserva<>?"
		args = append(args, excludeID)
	}
	var n int
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&n)
	return n > 0, err
}

// OccupiedHours returns the "HH:MM" hours with an active reservation
// at the business on the given date, for the availability grid.
func (r *ReservationRepo) OccupiedHours(ctx context.Context, businessID uint64, date string) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT TIME_FORMAT(hora,'%H:%i') FROM lavado_auto_reserva
		 WHERE empresa_id=? AND fecha=? AND estado<>'cancelada'`, businessID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	occupied := map[string]bool{}
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		occupied[h] = true
	}
	return occupied, rows.Err()
}

// ExpireOverdue flips the user's pendiente and confirmada reservations
// whose slot ended over an hour ago to vencida. It runs lazily before
// that user's reservation reads; repeated calls are harmless.
func (r *ReservationRepo) ExpireOverdue(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE lavado_auto_reserva
		   SET estado='vencida'
		 WHERE usuario_id=?
		   AND estado IN ('pendiente','confirmada')
		   AND TIMESTAMP(fecha, hora) + INTERVAL 1 HOUR < NOW()`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ReservationLine is one priced service of a reservation detail.
type ReservationLine struct {
	ServiceID     uint64  `json:"id_servicio"`
	Name          string  `json:"nombre"`
	AppliedPrice  float64 `json:"precio_aplicado"`
	OriginalPrice float64 `json:"precio_original"`
	FromPlan      bool    `json:"es_servicio_plan"`
}

// ReservationDetail is a reservation header plus business name, line
// items and the applied total.
type ReservationDetail struct {
	model.Reservation
	BusinessName string
	Services     []ReservationLine
	Total        float64
}

// ListByUser returns the user's reservations newest first, each with
// its business name and service line items. A header query loads the
// reservations, then one IN query loads every line item.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+reservationColumns+`, e.nombre_empresa
		  FROM lavado_auto_reserva r
		  JOIN lavado_auto_empresa e ON e.id_empresa = r.empresa_id
		 WHERE r.usuario_id = ?
		 ORDER BY r.fecha DESC, r.hora DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]ReservationDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var d ReservationDetail
		if err := rows.Scan(&d.ID, &d.Number, &d.Date, &d.Hour,
			&d.Status, &d.BusinessID, &d.UserID,
			&d.IndividualPayment, &d.Corporate,
			&d.VehiclePlate, &d.VehicleType,
			&d.AssignedDriver, &d.CorporateNotes,
			&d.SubscriptionID, &d.PaidToBusiness,
			&d.Recovered, &d.RecoverySurcharge,
			&d.BusinessName); err != nil {
			return nil, err
		}
		d.Services = []ReservationLine{}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}
	if err := r.attachLines(ctx, details, index); err != nil {
		return nil, err
	}
	return details, nil
}

// attachLines loads the line items for a batch of reservations in a
// single IN query and totals them.
func (r *ReservationRepo) attachLines(ctx context.Context, details []ReservationDetail, index map[uint64]int) error {
	args := make([]any, 0, len(details))
	for _, d := range details {
		args = append(args, d.ID)
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT rs.reserva_id, rs.servicio_id, s.nombre,
		       rs.precio_aplicado, rs.precio_original, rs.es_servicio_plan
		  FROM lavado_auto_reservaservicio rs
		  JOIN lavado_auto_servicio s ON s.id_servicio = rs.servicio_id
		 WHERE rs.reserva_id IN (`+placeholders(len(details))+`)
		 ORDER BY rs.reserva_id, s.nombre`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var resID uint64
		var line ReservationLine
		if err := rows.Scan(&resID, &line.ServiceID, &line.Name,
			&line.AppliedPrice, &line.OriginalPrice, &line.FromPlan); err != nil {
			return err
		}
		i, ok := index[resID]
		if !ok {
			continue
		}
		details[i].Services = append(details[i].Services, line)
		details[i].Total += line.AppliedPrice
	}
	return rows.Err()
}

// GetByIDForUser fetches one reservation enforcing ownership. It
// returns sql.ErrNoRows when the reservation does not exist and
// ErrForbidden when it belongs to someone else.
func (r *ReservationRepo) GetByIDForUser(ctx context.Context, id, userID uint64) (model.Reservation, error) {
	m, err := scanReservation(r.db.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM lavado_auto_reserva r WHERE r.id_reserva=?", id))
	if err != nil {
		return model.Reservation{}, err
	}
	if m.UserID != userID {
		return model.Reservation{}, ErrForbidden
	}
	return m, nil
}

// GetByNumberForUser fetches a reservation by booking code enforcing
// ownership.
func (r *ReservationRepo) GetByNumberForUser(ctx context.Context, number string, userID uint64) (model.Reservation, error) {
	m, err := scanReservation(r.db.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM lavado_auto_reserva r WHERE r.numero_reserva=?", number))
	if err != nil {
		return model.Reservation{}, err
	}
	if m.UserID != userID {
		return model.Reservation{}, ErrForbidden
	}
	return m, nil
}

// GetForBusiness fetches one reservation enforcing business ownership.
func (r *ReservationRepo) GetForBusiness(ctx context.Context, id, businessID uint64) (model.Reservation, error) {
	m, err := scanReservation(r.db.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM lavado_auto_reserva r WHERE r.id_reserva=?", id))
	if err != nil {
		return model.Reservation{}, err
	}
	if m.BusinessID != businessID {
		return model.Reservation{}, ErrForbidden
	}
	return m, nil
}

// UpdateStatus sets the estado of a reservation.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE lavado_auto_reserva SET estado=? WHERE id_reserva=?", status, id)
	return err
}

// Reschedule moves a reservation to a new fecha+hora.
func (r *ReservationRepo) Reschedule(ctx context.Context, id uint64, date, hour string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE lavado_auto_reserva SET fecha=?, hora=? WHERE id_reserva=?", date, hour, id)
	return err
}

// TotalApplied sums the applied line-item prices of a reservation. The
// recovery surcharge is computed from this figure.
func (r *ReservationRepo) TotalApplied(ctx context.Context, id uint64) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(precio_aplicado),0)
		  FROM lavado_auto_reservaservicio WHERE reserva_id=?`, id).Scan(&total)
	return total, err
}

// Recover brings a vencida reservation back to pendiente on a new
// slot, recording the surcharge and the recovery flag.
func (r *ReservationRepo) Recover(ctx context.Context, id uint64, date, hour string, surcharge float64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE lavado_auto_reserva
		   SET fecha=?, hora=?, estado='pendiente',
		       fue_recuperada=TRUE, recargo_recuperacion=?
		 WHERE id_reserva=?`, date, hour, surcharge, id)
	return err
}

// BusinessListFilter narrows and pages the business reservation list.
// Zero values mean no filter; Page starts at 1.
type BusinessListFilter struct {
	Status  string
	Date    string // YYYY-MM-DD
	Page    int
	PerPage int
}

// ListForBusiness returns one page of a business's reservations with
// customer names and line items, plus the total row count for the
// pagination envelope.
func (r *ReservationRepo) ListForBusiness(ctx context.Context, businessID uint64, f BusinessListFilter) ([]BusinessReservation, int, error) {
	where := " WHERE r.empresa_id = ?"
	args := []any{businessID}
	if f.Status != "" {
		where += " AND r.estado = ?"
		args = append(args, f.Status)
	}
	if f.Date != "" {
		where += " AND r.fecha = ?"
		args = append(args, f.Date)
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM lavado_auto_reserva r"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if f.PerPage <= 0 {
		f.PerPage = 20
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	pageArgs := append(args, f.PerPage, (f.Page-1)*f.PerPage)

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+reservationColumns+`, u.nombre_completo, COALESCE(u.telefono,'')
		  FROM lavado_auto_reserva r
		  JOIN lavado_auto_usuario u ON u.id_usuario = r.usuario_id`+where+`
		 ORDER BY r.fecha DESC, r.hora DESC
		 LIMIT ? OFFSET ?`, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := make([]BusinessReservation, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var d BusinessReservation
		if err := rows.Scan(&d.ID, &d.Number, &d.Date, &d.Hour,
			&d.Status, &d.BusinessID, &d.UserID,
			&d.IndividualPayment, &d.Corporate,
			&d.VehiclePlate, &d.VehicleType,
			&d.AssignedDriver, &d.CorporateNotes,
			&d.SubscriptionID, &d.PaidToBusiness,
			&d.Recovered, &d.RecoverySurcharge,
			&d.CustomerName, &d.CustomerPhone); err != nil {
			return nil, 0, err
		}
		d.Services = []ReservationLine{}
		index[d.ID] = len(list)
		list = append(list, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(list) == 0 {
		return list, total, nil
	}

	ids := make([]any, 0, len(list))
	for _, d := range list {
		ids = append(ids, d.ID)
	}
	lrows, err := r.db.QueryContext(ctx, `
		SELECT rs.reserva_id, rs.servicio_id, s.nombre,
		       rs.precio_aplicado, rs.precio_original, rs.es_servicio_plan
		  FROM lavado_auto_reservaservicio rs
		  JOIN lavado_auto_servicio s ON s.id_servicio = rs.servicio_id
		 WHERE rs.reserva_id IN (`+placeholders(len(list))+`)`, ids...)
	if err != nil {
		return nil, 0, err
	}
	defer lrows.Close()
	for lrows.Next() {
		var resID uint64
		var line ReservationLine
		if err := lrows.Scan(&resID, &line.ServiceID, &line.Name,
			&line.AppliedPrice, &line.OriginalPrice, &line.FromPlan); err != nil {
			return nil, 0, err
		}
		if i, ok := index[resID]; ok {
			list[i].Services = append(list[i].Services, line)
			list[i].Total += line.AppliedPrice
		}
	}
	return list, total, lrows.Err()
}

// BusinessReservation is a reservation as shown to the serving
// business, with the customer's name and phone.
type BusinessReservation struct {
	model.Reservation
	CustomerName  string
	CustomerPhone string
	Services      []ReservationLine
	Total         float64
}

// DashboardStats aggregates the counters of the business dashboard.
type DashboardStats struct {
	Today          int     `json:"reservas_hoy"`
	Pending        int     `json:"pendientes"`
	CompletedToday int     `json:"completadas_hoy"`
	MonthRevenue   float64 `json:"ingresos_mes"`
}

// Dashboard computes the business dashboard counters in one round of
// scalar queries.
func (r *ReservationRepo) Dashboard(ctx context.Context, businessID uint64) (DashboardStats, error) {
	var s DashboardStats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM lavado_auto_reserva
		 WHERE empresa_id=? AND fecha=CURDATE() AND estado<>'cancelada'`,
		businessID).Scan(&s.Today)
	if err != nil {
		return s, err
	}
	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM lavado_auto_reserva
		 WHERE empresa_id=? AND estado='pendiente'`, businessID).Scan(&s.Pending)
	if err != nil {
		return s, err
	}
	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM lavado_auto_reserva
		 WHERE empresa_id=? AND fecha=CURDATE() AND estado='completado'`,
		businessID).Scan(&s.CompletedToday)
	if err != nil {
		return s, err
	}
	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(rs.precio_aplicado),0)
		  FROM lavado_auto_reserva r
		  JOIN lavado_auto_reservaservicio rs ON rs.reserva_id = r.id_reserva
		 WHERE r.empresa_id=? AND r.estado='completado'
		   AND r.fecha >= DATE_FORMAT(CURDATE(),'%Y-%m-01')`,
		businessID).Scan(&s.MonthRevenue)
	return s, err
}

// LinesFor returns the service line items of a single reservation.
func (r *ReservationRepo) LinesFor(ctx context.Context, id uint64) ([]ReservationLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT rs.servicio_id, s.nombre, rs.precio_aplicado, rs.precio_original, rs.es_servicio_plan
		  FROM lavado_auto_reservaservicio rs
		  JOIN lavado_auto_servicio s ON s.id_servicio = rs.servicio_id
		 WHERE rs.reserva_id=?
		 ORDER BY s.nombre`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]ReservationLine, 0)
	for rows.Next() {
		var line ReservationLine
		if err := rows.Scan(&line.ServiceID, &line.Name,
			&line.AppliedPrice, &line.OriginalPrice, &line.FromPlan); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
