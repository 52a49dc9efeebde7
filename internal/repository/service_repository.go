package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/autonew/carwash-booking/internal/model"
)

// ServiceRepo reads the wash-service catalog from
// `lavado_auto_servicio` and the per-business offerings from
// `lavado_auto_empresaservicio`.
type ServiceRepo struct{ db *sql.DB }

func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{db: db} }

func (r *ServiceRepo) DB() *sql.DB { return r.db }

// CatalogEntry is a catalog service plus how many businesses offer it.
type CatalogEntry struct {
	Service       model.Service
	BusinessCount int
}

// Catalog lists every service with the number of businesses currently
// offering it. Services nobody offers still appear with a zero count.
func (r *ServiceRepo) Catalog(ctx context.Context) ([]CatalogEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id_servicio, s.nombre, COALESCE(s.descripcion,''), s.precio,
		       COUNT(es.empresa_id)
		  FROM lavado_auto_servicio s
		  LEFT JOIN lavado_auto_empresaservicio es ON es.servicio_id = s.id_servicio
		 GROUP BY s.id_servicio, s.nombre, s.descripcion, s.precio
		 ORDER BY s.nombre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CatalogEntry
	for rows.Next() {
		var e CatalogEntry
		if err := rows.Scan(&e.Service.ID, &e.Service.Name, &e.Service.Description,
			&e.Service.Price, &e.BusinessCount); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetByID fetches one catalog service.
func (r *ServiceRepo) GetByID(ctx context.Context, id uint64) (model.Service, error) {
	var s model.Service
	err := r.db.QueryRowContext(ctx, `
		SELECT id_servicio, nombre, COALESCE(descripcion,''), precio
		  FROM lavado_auto_servicio WHERE id_servicio=?`, id).Scan(
		&s.ID, &s.Name, &s.Description, &s.Price)
	return s, err
}

// BusinessOffer is a business matched by the services search plus the
// prices it charges for the requested services.
type BusinessOffer struct {
	ID           uint64
	Name         string
	Address      string
	Phone        string
	Latitude     *float64
	Longitude    *float64
	ProfileImage *string
	Prices       map[uint64]float64 // servicio_id -> price at this business
}

// placeholders returns "?,?,...,?" for n parameters.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// BusinessesOfferingAll finds the verified businesses that offer every
// requested service. A header query matches the businesses, then a
// single IN query loads the prices for all of them.
func (r *ServiceRepo) BusinessesOfferingAll(ctx context.Context, serviceIDs []uint64) ([]BusinessOffer, error) {
	if len(serviceIDs) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(serviceIDs)+1)
	for _, id := range serviceIDs {
		args = append(args, id)
	}
	args = append(args, len(serviceIDs))

	rows, err := r.db.QueryContext(ctx, `
		SELECT e.id_empresa, e.nombre_empresa, COALESCE(e.direccion,''),
		       COALESCE(e.telefono,''), e.latitud, e.longitud, e.profile_image
		  FROM lavado_auto_empresa e
		  JOIN lavado_auto_empresaservicio es ON es.empresa_id = e.id_empresa
		 WHERE e.verificada = TRUE AND e.is_active = TRUE
		   AND es.servicio_id IN (`+placeholders(len(serviceIDs))+`)
		 GROUP BY e.id_empresa, e.nombre_empresa, e.direccion, e.telefono,
		          e.latitud, e.longitud, e.profile_image
		HAVING COUNT(DISTINCT es.servicio_id) = ?
		 ORDER BY e.nombre_empresa`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []BusinessOffer
	byID := map[uint64]int{}
	for rows.Next() {
		var o BusinessOffer
		if err := rows.Scan(&o.ID, &o.Name, &o.Address, &o.Phone,
			&o.Latitude, &o.Longitude, &o.ProfileImage); err != nil {
			return nil, err
		}
		o.Prices = map[uint64]float64{}
		byID[o.ID] = len(offers)
		offers = append(offers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(offers) == 0 {
		return offers, nil
	}

	priceArgs := make([]any, 0, len(offers)+len(serviceIDs))
	for _, o := range offers {
		priceArgs = append(priceArgs, o.ID)
	}
	for _, id := range serviceIDs {
		priceArgs = append(priceArgs, id)
	}
	prows, err := r.db.QueryContext(ctx, `
		SELECT es.empresa_id, es.servicio_id,
		       COALESCE(es.precio_personalizado, s.precio)
		  FROM lavado_auto_empresaservicio es
		  JOIN lavado_auto_servicio s ON s.id_servicio = es.servicio_id
		 WHERE es.empresa_id IN (`+placeholders(len(offers))+`)
		   AND es.servicio_id IN (`+placeholders(len(serviceIDs))+`)`, priceArgs...)
	if err != nil {
		return nil, err
	}
	defer prows.Close()

	for prows.Next() {
		var businessID, serviceID uint64
		var price float64
		if err := prows.Scan(&businessID, &serviceID, &price); err != nil {
			return nil, err
		}
		if i, ok := byID[businessID]; ok {
			offers[i].Prices[serviceID] = price
		}
	}
	return offers, prows.Err()
}

// PricesForBusiness returns the effective price of each requested
// service at one business. Services the business does not offer are
// missing from the map; the caller treats that as a validation error.
func (r *ServiceRepo) PricesForBusiness(ctx context.Context, businessID uint64, serviceIDs []uint64) (map[uint64]float64, error) {
	return r.pricesForBusiness(ctx, r.db, businessID, serviceIDs)
}

// PricesForBusinessTx is PricesForBusiness inside a transaction.
func (r *ServiceRepo) PricesForBusinessTx(ctx context.Context, tx *sql.Tx, businessID uint64, serviceIDs []uint64) (map[uint64]float64, error) {
	return r.pricesForBusiness(ctx, tx, businessID, serviceIDs)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *ServiceRepo) pricesForBusiness(ctx context.Context, q querier, businessID uint64, serviceIDs []uint64) (map[uint64]float64, error) {
	if len(serviceIDs) == 0 {
		return map[uint64]float64{}, nil
	}
	args := make([]any, 0, len(serviceIDs)+1)
	args = append(args, businessID)
	for _, id := range serviceIDs {
		args = append(args, id)
	}
	rows, err := q.QueryContext(ctx, `
		SELECT es.servicio_id, COALESCE(es.precio_personalizado, s.precio)
		  FROM lavado_auto_empresaservicio es
		  JOIN lavado_auto_servicio s ON s.id_servicio = es.servicio_id
		 WHERE es.empresa_id = ? AND es.servicio_id IN (`+placeholders(len(serviceIDs))+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prices := map[uint64]float64{}
	for rows.Next() {
		var id uint64
		var price float64
		if err := rows.Scan(&id, &price); err != nil {
			return nil, err
		}
		prices[id] = price
	}
	return prices, rows.Err()
}

// OfferedService is one row of a business's own service list.
type OfferedService struct {
	Service model.Service
	Price   float64 // effective price at this business
}

// AssignedServiceStats is one offered service with how it performed:
// total line items booked and the revenue of completed washes.
type AssignedServiceStats struct {
	Service      model.Service
	Reservations int
	Revenue      float64
}

// AssignedWithStats lists the services a business offers together with
// booking counts and completed revenue, most booked first.
func (r *ServiceRepo) AssignedWithStats(ctx context.Context, businessID uint64) ([]AssignedServiceStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id_servicio, s.nombre, COALESCE(s.descripcion,''), s.precio,
		       COUNT(res.id_reserva),
		       COALESCE(SUM(CASE WHEN res.estado='completado' THEN rs.precio_aplicado ELSE 0 END),0)
		  FROM lavado_auto_servicio s
		  JOIN lavado_auto_empresaservicio es ON es.servicio_id = s.id_servicio
		  LEFT JOIN lavado_auto_reservaservicio rs ON rs.servicio_id = s.id_servicio
		  LEFT JOIN lavado_auto_reserva res
		         ON res.id_reserva = rs.reserva_id AND res.empresa_id = es.empresa_id
		 WHERE es.empresa_id=?
		 GROUP BY s.id_servicio, s.nombre, s.descripcion, s.precio
		 ORDER BY COUNT(res.id_reserva) DESC, s.nombre`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]AssignedServiceStats, 0)
	for rows.Next() {
		var a AssignedServiceStats
		if err := rows.Scan(&a.Service.ID, &a.Service.Name, &a.Service.Description,
			&a.Service.Price, &a.Reservations, &a.Revenue); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Unassigned lists the catalog services a business does not offer yet.
func (r *ServiceRepo) Unassigned(ctx context.Context, businessID uint64) ([]model.Service, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id_servicio, s.nombre, COALESCE(s.descripcion,''), s.precio
		  FROM lavado_auto_servicio s
		 WHERE s.id_servicio NOT IN (
		       SELECT servicio_id FROM lavado_auto_empresaservicio WHERE empresa_id=?)
		 ORDER BY s.nombre`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Service, 0)
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Price); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Offered reports whether a business already offers a service.
func (r *ServiceRepo) Offered(ctx context.Context, businessID, serviceID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM lavado_auto_empresaservicio
		 WHERE empresa_id=? AND servicio_id=?`, businessID, serviceID).Scan(&n)
	return n > 0, err
}

// ServiceRequest is a business's petition to offer a catalog service,
// stored in `lavado_auto_solicitudservicioempresa`. The administrator
// approves or rejects it outside this service.
type ServiceRequest struct {
	ID          uint64
	Status      string
	Reason      string
	RequestedAt time.Time
	AdminReply  string
	RepliedAt   *time.Time
	Service     model.Service
}

// RequestsForBusiness lists a business's service requests newest
// first.
func (r *ServiceRepo) RequestsForBusiness(ctx context.Context, businessID uint64) ([]ServiceRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT sr.id_solicitud, sr.estado, COALESCE(sr.motivo_solicitud,''),
		       sr.fecha_solicitud, COALESCE(sr.respuesta_admin,''), sr.fecha_respuesta,
		       s.id_servicio, s.nombre, COALESCE(s.descripcion,''), s.precio
		  FROM lavado_auto_solicitudservicioempresa sr
		  JOIN lavado_auto_servicio s ON s.id_servicio = sr.servicio_solicitado_id
		 WHERE sr.empresa_id=?
		 ORDER BY sr.fecha_solicitud DESC`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ServiceRequest, 0)
	for rows.Next() {
		var sr ServiceRequest
		if err := rows.Scan(&sr.ID, &sr.Status, &sr.Reason,
			&sr.RequestedAt, &sr.AdminReply, &sr.RepliedAt,
			&sr.Service.ID, &sr.Service.Name, &sr.Service.Description,
			&sr.Service.Price); err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

// HasPendingRequest reports whether the business already has an open
// request for the service.
func (r *ServiceRepo) HasPendingRequest(ctx context.Context, businessID, serviceID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM lavado_auto_solicitudservicioempresa
		 WHERE empresa_id=? AND servicio_solicitado_id=? AND estado='pendiente'`,
		businessID, serviceID).Scan(&n)
	return n > 0, err
}

// CreateRequest opens a pendiente service request and returns its id.
func (r *ServiceRepo) CreateRequest(ctx context.Context, businessID, serviceID uint64, reason, responsible, phone string) (uint64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO lavado_auto_solicitudservicioempresa
		  (empresa_id, servicio_solicitado_id, estado, motivo_solicitud,
		   usuario_responsable, telefono_contacto, fecha_solicitud, respuesta_admin)
		VALUES (?,?,'pendiente',?,?,?,NOW(),'')`,
		businessID, serviceID, reason, responsible, phone)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// DeleteRequestForBusiness removes a pendiente request the business
// owns. It returns sql.ErrNoRows when the request does not exist for
// that business and ErrConflict when the administrator already
// answered it.
func (r *ServiceRepo) DeleteRequestForBusiness(ctx context.Context, requestID, businessID uint64) error {
	var status string
	err := r.db.QueryRowContext(ctx, `
		SELECT estado FROM lavado_auto_solicitudservicioempresa
		 WHERE id_solicitud=? AND empresa_id=?`, requestID, businessID).Scan(&status)
	if err != nil {
		return err
	}
	if status != "pendiente" {
		return ErrConflict
	}
	_, err = r.db.ExecContext(ctx,
		"DELETE FROM lavado_auto_solicitudservicioempresa WHERE id_solicitud=?", requestID)
	return err
}

// ListForBusiness returns the services one business offers, with the
// effective prices.
func (r *ServiceRepo) ListForBusiness(ctx context.Context, businessID uint64) ([]OfferedService, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id_servicio, s.nombre, COALESCE(s.descripcion,''), s.precio,
		       COALESCE(es.precio_personalizado, s.precio)
		  FROM lavado_auto_empresaservicio es
		  JOIN lavado_auto_servicio s ON s.id_servicio = es.servicio_id
		 WHERE es.empresa_id = ?
		 ORDER BY s.nombre`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OfferedService
	for rows.Next() {
		var o OfferedService
		if err := rows.Scan(&o.Service.ID, &o.Service.Name, &o.Service.Description,
			&o.Service.Price, &o.Price); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
