package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/autonew/carwash-booking/internal/model"
)

// SubscriptionRepo persists plans in `lavado_auto_plan`, their service
// discounts in `lavado_auto_planservicio` and memberships in
// `lavado_auto_suscripcionusuario`.
type SubscriptionRepo struct{ db *sql.DB }

func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{db: db} }

func (r *SubscriptionRepo) DB() *sql.DB { return r.db }

const planColumns = `id_plan, nombre, COALESCE(tipo,''), COALESCE(descripcion,''),
       precio_mensual, cantidad_servicios_mes, activo,
       incluye_lavado_asientos, incluye_aspirado, incluye_lavado_exterior,
       incluye_lavado_interior_humedo, incluye_encerado, incluye_detallado_completo,
       fecha_creacion`

func scanPlan(row rowScanner) (model.Plan, error) {
	var p model.Plan
	err := row.Scan(&p.ID, &p.Name, &p.Type, &p.Description,
		&p.MonthlyPrice, &p.MonthlyServices, &p.Active,
		&p.SeatWash, &p.Vacuum, &p.ExteriorWash,
		&p.InteriorWash, &p.Waxing, &p.FullDetailing,
		&p.CreatedAt)
	return p, err
}

// Plans lists the active plans ordered by price.
func (r *SubscriptionRepo) Plans(ctx context.Context) ([]model.Plan, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+planColumns+" FROM lavado_auto_plan WHERE activo=TRUE ORDER BY precio_mensual")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := make([]model.Plan, 0)
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// PlanByID fetches one plan.
func (r *SubscriptionRepo) PlanByID(ctx context.Context, id uint64) (model.Plan, error) {
	return scanPlan(r.db.QueryRowContext(ctx,
		"SELECT "+planColumns+" FROM lavado_auto_plan WHERE id_plan=?", id))
}

// PlanServiceDiscount is one covered service of a plan with its
// catalog price and percentage discount.
type PlanServiceDiscount struct {
	Service  model.Service
	Discount float64
}

// PlanServices lists the services a plan covers with their discounts.
func (r *SubscriptionRepo) PlanServices(ctx context.Context, planID uint64) ([]PlanServiceDiscount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id_servicio, s.nombre, COALESCE(s.descripcion,''), s.precio,
		       ps.porcentaje_descuento
		  FROM lavado_auto_planservicio ps
		  JOIN lavado_auto_servicio s ON s.id_servicio = ps.servicio_id
		 WHERE ps.plan_id=?
		 ORDER BY s.nombre`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]PlanServiceDiscount, 0)
	for rows.Next() {
		var d PlanServiceDiscount
		if err := rows.Scan(&d.Service.ID, &d.Service.Name, &d.Service.Description,
			&d.Service.Price, &d.Discount); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

const subscriptionColumns = `id_suscripcion, usuario_id, plan_id,
       fecha_inicio, fecha_fin, estado,
       servicios_utilizados_mes, ultimo_reinicio_contador, auto_renovar`

func scanSubscription(row rowScanner) (model.Subscription, error) {
	var s model.Subscription
	err := row.Scan(&s.ID, &s.UserID, &s.PlanID,
		&s.StartDate, &s.EndDate, &s.Status,
		&s.UsedThisMonth, &s.LastCounterReset, &s.AutoRenew)
	return s, err
}

// ActiveByUser returns the user's active subscription, or
// sql.ErrNoRows when none exists.
func (r *SubscriptionRepo) ActiveByUser(ctx context.Context, userID uint64) (model.Subscription, error) {
	return scanSubscription(r.db.QueryRowContext(ctx, `
		SELECT `+subscriptionColumns+`
		  FROM lavado_auto_suscripcionusuario
		 WHERE usuario_id=? AND estado='activa' AND fecha_fin >= NOW()
		 ORDER BY fecha_inicio DESC LIMIT 1`, userID))
}

// GetByIDForUserTx loads a subscription by id inside a transaction,
// locking the row so the quota check and the counter increment are
// race free. It enforces ownership and active state.
func (r *SubscriptionRepo) GetByIDForUserTx(ctx context.Context, tx *sql.Tx, id, userID uint64) (model.Subscription, error) {
	s, err := scanSubscription(tx.QueryRowContext(ctx, `
		SELECT `+subscriptionColumns+`
		  FROM lavado_auto_suscripcionusuario
		 WHERE id_suscripcion=? FOR UPDATE`, id))
	if err != nil {
		return model.Subscription{}, err
	}
	if s.UserID != userID {
		return model.Subscription{}, ErrForbidden
	}
	return s, nil
}

// IncrementUsageTx bumps the monthly counter atomically inside the
// reservation transaction, so a rollback also undoes the charge.
func (r *SubscriptionRepo) IncrementUsageTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE lavado_auto_suscripcionusuario
		   SET servicios_utilizados_mes = servicios_utilizados_mes + 1
		 WHERE id_suscripcion=?`, id)
	return err
}

// ResetCounterTx zeroes the monthly counter and stamps the reset time.
// Used by the lazy 30-day normalization.
func (r *SubscriptionRepo) ResetCounterTx(ctx context.Context, tx *sql.Tx, id uint64, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE lavado_auto_suscripcionusuario
		   SET servicios_utilizados_mes = 0, ultimo_reinicio_contador = ?
		 WHERE id_suscripcion=?`, at, id)
	return err
}

// ResetCounter is ResetCounterTx outside a transaction, used when a
// read endpoint normalizes a stale counter.
func (r *SubscriptionRepo) ResetCounter(ctx context.Context, id uint64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE lavado_auto_suscripcionusuario
		   SET servicios_utilizados_mes = 0, ultimo_reinicio_contador = ?
		 WHERE id_suscripcion=?`, at, id)
	return err
}

// Create opens a 30-day membership. ErrConflict is returned when the
// user already has an active subscription.
func (r *SubscriptionRepo) Create(ctx context.Context, userID, planID uint64) (uint64, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM lavado_auto_suscripcionusuario
		 WHERE usuario_id=? AND estado='activa' AND fecha_fin >= NOW()`, userID).Scan(&n); err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO lavado_auto_suscripcionusuario
		  (usuario_id, plan_id, fecha_inicio, fecha_fin, estado,
		   servicios_utilizados_mes, ultimo_reinicio_contador, auto_renovar)
		VALUES (?,?,NOW(),NOW() + INTERVAL 30 DAY,'activa',0,NOW(),TRUE)`,
		userID, planID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// CancelForUser cancels a subscription the user owns. It returns
// sql.ErrNoRows when the subscription does not exist, ErrForbidden for
// someone else's and ErrConflict when it is not active.
func (r *SubscriptionRepo) CancelForUser(ctx context.Context, id, userID uint64) error {
	var ownerID uint64
	var status string
	err := r.db.QueryRowContext(ctx,
		"SELECT usuario_id, estado FROM lavado_auto_suscripcionusuario WHERE id_suscripcion=?",
		id).Scan(&ownerID, &status)
	if err != nil {
		return err
	}
	if ownerID != userID {
		return ErrForbidden
	}
	if status != "activa" {
		return ErrConflict
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE lavado_auto_suscripcionusuario
		   SET estado='cancelada', auto_renovar=FALSE
		 WHERE id_suscripcion=?`, id)
	return err
}

// SubscriptionWithPlan pairs a membership with its plan for history
// and status responses.
type SubscriptionWithPlan struct {
	Subscription model.Subscription
	Plan         model.Plan
}

// History lists the user's memberships newest first, each with its
// plan.
func (r *SubscriptionRepo) History(ctx context.Context, userID uint64) ([]SubscriptionWithPlan, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT su.id_suscripcion, su.usuario_id, su.plan_id,
		       su.fecha_inicio, su.fecha_fin, su.estado,
		       su.servicios_utilizados_mes, su.ultimo_reinicio_contador, su.auto_renovar,
		       p.id_plan, p.nombre, COALESCE(p.tipo,''), COALESCE(p.descripcion,''),
		       p.precio_mensual, p.cantidad_servicios_mes, p.activo,
		       p.incluye_lavado_asientos, p.incluye_aspirado, p.incluye_lavado_exterior,
		       p.incluye_lavado_interior_humedo, p.incluye_encerado, p.incluye_detallado_completo,
		       p.fecha_creacion
		  FROM lavado_auto_suscripcionusuario su
		  JOIN lavado_auto_plan p ON p.id_plan = su.plan_id
		 WHERE su.usuario_id=?
		 ORDER BY su.fecha_inicio DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SubscriptionWithPlan, 0)
	for rows.Next() {
		var sp SubscriptionWithPlan
		if err := rows.Scan(&sp.Subscription.ID, &sp.Subscription.UserID, &sp.Subscription.PlanID,
			&sp.Subscription.StartDate, &sp.Subscription.EndDate, &sp.Subscription.Status,
			&sp.Subscription.UsedThisMonth, &sp.Subscription.LastCounterReset, &sp.Subscription.AutoRenew,
			&sp.Plan.ID, &sp.Plan.Name, &sp.Plan.Type, &sp.Plan.Description,
			&sp.Plan.MonthlyPrice, &sp.Plan.MonthlyServices, &sp.Plan.Active,
			&sp.Plan.SeatWash, &sp.Plan.Vacuum, &sp.Plan.ExteriorWash,
			&sp.Plan.InteriorWash, &sp.Plan.Waxing, &sp.Plan.FullDetailing,
			&sp.Plan.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}
