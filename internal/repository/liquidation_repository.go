package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/autonew/carwash-booking/internal/model"
)

// LiquidationRepo reads the settlement ledger: payout periods in
// `lavado_auto_periodoliquidacion` and their per-reservation detail in
// `lavado_auto_detalleliquidacion`. The job that creates and closes
// periods runs outside this service, so everything here is read only
// except for nothing at all.
type LiquidationRepo struct{ db *sql.DB }

func NewLiquidationRepo(db *sql.DB) *LiquidationRepo { return &LiquidationRepo{db: db} }

func (r *LiquidationRepo) DB() *sql.DB { return r.db }

// PaymentSummary aggregates a business's settlement position.
type PaymentSummary struct {
	PendingCurrent float64    `json:"pendiente_actual"`  // net of activo periods
	PendingPayment float64    `json:"pendiente_pago"`    // net of cerrado periods
	TotalPaid      float64    `json:"total_pagado"`      // net of pagado periods
	LastPaidAt     *time.Time `json:"ultimo_pago"`       // fecha_pago of the newest pagado period
	UnsettledCount int        `json:"reservas_sin_liquidar"`
}

// Summary computes the payment summary of a business: net totals per
// period estado, the date of the last payment, and how many completed
// reservations are still outside any paid run.
func (r *LiquidationRepo) Summary(ctx context.Context, businessID uint64) (PaymentSummary, error) {
	var s PaymentSummary
	rows, err := r.db.QueryContext(ctx, `
		SELECT estado, COALESCE(SUM(total_neto),0)
		  FROM lavado_auto_periodoliquidacion
		 WHERE empresa_id=?
		 GROUP BY estado`, businessID)
	if err != nil {
		return s, err
	}
	defer rows.Close()
	for rows.Next() {
		var estado string
		var net float64
		if err := rows.Scan(&estado, &net); err != nil {
			return s, err
		}
		switch estado {
		case "activo":
			s.PendingCurrent = net
		case "cerrado":
			s.PendingPayment = net
		case "pagado":
			s.TotalPaid = net
		}
	}
	if err := rows.Err(); err != nil {
		return s, err
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT MAX(fecha_pago) FROM lavado_auto_periodoliquidacion
		 WHERE empresa_id=? AND estado='pagado'`, businessID).Scan(&s.LastPaidAt)
	if err != nil {
		return s, err
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM lavado_auto_reserva
		 WHERE empresa_id=? AND estado='completado' AND pagado_empresa=FALSE`,
		businessID).Scan(&s.UnsettledCount)
	return s, err
}

const periodColumns = `id_periodo, empresa_id, fecha_inicio, fecha_fin,
       fecha_cierre, fecha_pago, total_bruto, total_descuentos,
       comision_autonew, total_comision, total_neto, estado,
       cantidad_reservas, metodo_pago, referencia_pago, observaciones`

func scanPeriod(row rowScanner) (model.SettlementPeriod, error) {
	var p model.SettlementPeriod
	err := row.Scan(&p.ID, &p.BusinessID, &p.StartDate, &p.EndDate,
		&p.ClosedAt, &p.PaidAt, &p.Gross, &p.Discounts,
		&p.CommissionRate, &p.Commission, &p.Net, &p.Status,
		&p.Reservations, &p.PaymentMethod, &p.PaymentRef, &p.Notes)
	return p, err
}

// Periods lists a business's settlement periods newest first, with an
// optional estado filter.
func (r *LiquidationRepo) Periods(ctx context.Context, businessID uint64, status string) ([]model.SettlementPeriod, error) {
	q := "SELECT " + periodColumns + " FROM lavado_auto_periodoliquidacion WHERE empresa_id=?"
	args := []any{businessID}
	if status != "" {
		q += " AND estado=?"
		args = append(args, status)
	}
	q += " ORDER BY fecha_inicio DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.SettlementPeriod, 0)
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PeriodRow is a settled reservation with its booking code and
// customer name for the period detail view.
type PeriodRow struct {
	Detail            model.SettlementDetail
	ReservationNumber string
	CustomerName      string
}

// PeriodDetail fetches a settlement period and its reservation rows,
// enforcing business ownership.
func (r *LiquidationRepo) PeriodDetail(ctx context.Context, periodID, businessID uint64) (model.SettlementPeriod, []PeriodRow, error) {
	p, err := scanPeriod(r.db.QueryRowContext(ctx,
		"SELECT "+periodColumns+" FROM lavado_auto_periodoliquidacion WHERE id_periodo=?", periodID))
	if err != nil {
		return model.SettlementPeriod{}, nil, err
	}
	if p.BusinessID != businessID {
		return model.SettlementPeriod{}, nil, ErrForbidden
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT d.id, d.periodo_id, d.reserva_id, d.valor_bruto, d.valor_descuento,
		       d.valor_neto, d.comision_aplicada, d.valor_comision, d.valor_final_empresa,
		       d.fecha_servicio, d.tipo_descuento,
		       res.numero_reserva, u.nombre_completo
		  FROM lavado_auto_detalleliquidacion d
		  JOIN lavado_auto_reserva res ON res.id_reserva = d.reserva_id
		  JOIN lavado_auto_usuario u ON u.id_usuario = res.usuario_id
		 WHERE d.periodo_id=?
		 ORDER BY d.fecha_servicio`, periodID)
	if err != nil {
		return model.SettlementPeriod{}, nil, err
	}
	defer rows.Close()

	details := make([]PeriodRow, 0)
	for rows.Next() {
		var row PeriodRow
		if err := rows.Scan(&row.Detail.ID, &row.Detail.PeriodID, &row.Detail.ReservationID,
			&row.Detail.Gross, &row.Detail.Discount, &row.Detail.Net,
			&row.Detail.CommissionRate, &row.Detail.Commission, &row.Detail.BusinessPayout,
			&row.Detail.ServiceDate, &row.Detail.DiscountKind,
			&row.ReservationNumber, &row.CustomerName); err != nil {
			return model.SettlementPeriod{}, nil, err
		}
		details = append(details, row)
	}
	return p, details, rows.Err()
}

// SettledReservation is a completed reservation with its settlement
// standing for the pending/paid lists.
type SettledReservation struct {
	ID           uint64  `json:"id_reserva"`
	Number       string  `json:"numero_reserva"`
	Date         string  `json:"fecha"`
	Hour         string  `json:"hora"`
	CustomerName string  `json:"cliente"`
	Total        float64 `json:"total"`
	Paid         bool    `json:"pagado_empresa"`
}

// CompletedByPayout lists a business's completed reservations filtered
// by whether the settlement run has paid them out yet.
func (r *LiquidationRepo) CompletedByPayout(ctx context.Context, businessID uint64, paid bool) ([]SettledReservation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT res.id_reserva, res.numero_reserva,
		       DATE_FORMAT(res.fecha,'%Y-%m-%d'), TIME_FORMAT(res.hora,'%H:%i:%s'),
		       u.nombre_completo, COALESCE(SUM(rs.precio_aplicado),0), res.pagado_empresa
		  FROM lavado_auto_reserva res
		  JOIN lavado_auto_usuario u ON u.id_usuario = res.usuario_id
		  LEFT JOIN lavado_auto_reservaservicio rs ON rs.reserva_id = res.id_reserva
		 WHERE res.empresa_id=? AND res.estado='completado' AND res.pagado_empresa=?
		 GROUP BY res.id_reserva, res.numero_reserva, res.fecha, res.hora,
		          u.nombre_completo, res.pagado_empresa
		 ORDER BY res.fecha DESC, res.hora DESC`, businessID, paid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SettledReservation, 0)
	for rows.Next() {
		var s SettledReservation
		if err := rows.Scan(&s.ID, &s.Number, &s.Date, &s.Hour,
			&s.CustomerName, &s.Total, &s.Paid); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CompletedForBusiness lists every completed reservation of a business
// with its payout standing, paid and unpaid alike.
func (r *LiquidationRepo) CompletedForBusiness(ctx context.Context, businessID uint64) ([]SettledReservation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT res.id_reserva, res.numero_reserva,
		       DATE_FORMAT(res.fecha,'%Y-%m-%d'), TIME_FORMAT(res.hora,'%H:%i:%s'),
		       u.nombre_completo, COALESCE(SUM(rs.precio_aplicado),0), res.pagado_empresa
		  FROM lavado_auto_reserva res
		  JOIN lavado_auto_usuario u ON u.id_usuario = res.usuario_id
		  LEFT JOIN lavado_auto_reservaservicio rs ON rs.reserva_id = res.id_reserva
		 WHERE res.empresa_id=? AND res.estado='completado'
		 GROUP BY res.id_reserva, res.numero_reserva, res.fecha, res.hora,
		          u.nombre_completo, res.pagado_empresa
		 ORDER BY res.fecha DESC, res.hora DESC`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SettledReservation, 0)
	for rows.Next() {
		var s SettledReservation
		if err := rows.Scan(&s.ID, &s.Number, &s.Date, &s.Hour,
			&s.CustomerName, &s.Total, &s.Paid); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
