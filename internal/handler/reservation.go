package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/autonew/carwash-booking/internal/booking"
	"github.com/autonew/carwash-booking/internal/config"
	"github.com/autonew/carwash-booking/internal/model"
	"github.com/autonew/carwash-booking/internal/queue"
	"github.com/autonew/carwash-booking/internal/repository"
	queue_publisher "github.com/autonew/carwash-booking/internal/service"
)

// ReservationHandler serves the /api/reservas surface: the public
// catalog and availability endpoints plus the customer booking
// lifecycle.
type ReservationHandler struct {
	Cfg           config.Config
	Reservations  *repository.ReservationRepo
	Services      *repository.ServiceRepo
	Subscriptions *repository.SubscriptionRepo
	Users         *repository.UserRepo
	Businesses    *repository.BusinessRepo
}

func NewReservationHandler(cfg config.Config, r *repository.ReservationRepo, s *repository.ServiceRepo,
	sub *repository.SubscriptionRepo, u *repository.UserRepo, b *repository.BusinessRepo) *ReservationHandler {
	return &ReservationHandler{
		Cfg: cfg, Reservations: r, Services: s, Subscriptions: sub, Users: u, Businesses: b,
	}
}

// Catalog lists every wash service with category, vehicle hints and
// how many businesses offer it. Public and cached.
func (h *ReservationHandler) Catalog(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	entries, err := h.Services.Catalog(ctx)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando los servicios", err)
	}

	out := make([]echo.Map, 0, len(entries))
	for _, e := range entries {
		category, vehicles := booking.ClassifyService(e.Service.Name, e.Service.Description)
		out = append(out, echo.Map{
			"id_servicio":     e.Service.ID,
			"nombre":          e.Service.Name,
			"descripcion":     e.Service.Description,
			"precio":          e.Service.Price,
			"categoria":       category,
			"tipos_vehiculo":  vehicles,
			"empresas_ofrecen": e.BusinessCount,
		})
	}
	return respond(c, http.StatusOK, "", out)
}

// BusinessesByServices finds verified businesses offering every
// service in the comma-separated `servicios` query parameter.
func (h *ReservationHandler) BusinessesByServices(c echo.Context) error {
	raw := strings.TrimSpace(c.QueryParam("servicios"))
	if raw == "" {
		return fail(c, http.StatusBadRequest, "parámetro 'servicios' requerido")
	}
	var ids []uint64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil || id == 0 {
			return fail(c, http.StatusBadRequest, "ids de servicio inválidos")
		}
		ids = append(ids, id)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	offers, err := h.Services.BusinessesOfferingAll(ctx, ids)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error buscando empresas", err)
	}

	out := make([]echo.Map, 0, len(offers))
	for _, o := range offers {
		var total float64
		prices := make([]echo.Map, 0, len(o.Prices))
		for _, id := range ids {
			p := o.Prices[id]
			total += p
			prices = append(prices, echo.Map{"id_servicio": id, "precio": p})
		}
		out = append(out, echo.Map{
			"id_empresa":     o.ID,
			"nombre_empresa": o.Name,
			"direccion":      o.Address,
			"telefono":       o.Phone,
			"latitud":        o.Latitude,
			"longitud":       o.Longitude,
			"profile_image":  o.ProfileImage,
			"precios":        prices,
			"total":          total,
		})
	}
	return respond(c, http.StatusOK, "", out)
}

// AvailableSlots returns the hourly grid of a business for a date,
// marking occupied and past hours.
func (h *ReservationHandler) AvailableSlots(c echo.Context) error {
	businessID, err := strconv.ParseUint(c.QueryParam("empresa_id"), 10, 64)
	if err != nil || businessID == 0 {
		return fail(c, http.StatusBadRequest, "empresa_id requerido")
	}
	dateStr := c.QueryParam("fecha")
	if !validDate(dateStr) {
		return fail(c, http.StatusBadRequest, "fecha inválida, use YYYY-MM-DD")
	}
	date, _ := time.Parse("2006-01-02", dateStr)

	ctx, cancel := reqCtx(c)
	defer cancel()

	occupied, err := h.Reservations.OccupiedHours(ctx, businessID, dateStr)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando la disponibilidad", err)
	}
	slots := booking.BuildSlots(date, occupied, time.Now())
	return respond(c, http.StatusOK, "", echo.Map{
		"fecha":    dateStr,
		"horarios": slots,
	})
}

type createReservationReq struct {
	BusinessID     uint64   `json:"empresa_id" validate:"required"`
	Date           string   `json:"fecha" validate:"required"`
	Hour           string   `json:"hora" validate:"required"`
	ServiceIDs     []uint64 `json:"servicios" validate:"required,min=1"`
	SubscriptionID *uint64  `json:"suscripcion_id"`
	Corporate      bool     `json:"es_reserva_empresarial"`
	VehiclePlate   *string  `json:"placa_vehiculo"`
	VehicleType    string   `json:"tipo_vehiculo"`
	AssignedDriver string   `json:"conductor_asignado"`
	CorporateNotes string   `json:"observaciones_empresariales"`
}

// Create books a wash. The whole operation runs in one transaction:
// the optional subscription charge, the booking-code generation, the
// header insert and the line items commit together or not at all.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "datos incompletos o inválidos")
	}
	if !validDate(req.Date) {
		return fail(c, http.StatusBadRequest, "fecha inválida, use YYYY-MM-DD")
	}
	hour, ok := normalizeHour(req.Hour)
	if !ok {
		return fail(c, http.StatusBadRequest, "hora inválida, use HH:MM")
	}
	if !slotInGrid(shortHour(hour)) {
		return fail(c, http.StatusBadRequest, "hora fuera del horario de atención (08:00-18:00)")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	userID := principalID(c)
	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando el usuario", err)
	}

	if _, err := h.Businesses.GetByID(ctx, req.BusinessID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusNotFound, "empresa no encontrada")
		}
		return failServer(c, h.Cfg.Dev(), "error consultando la empresa", err)
	}

	taken, err := h.Reservations.SlotTaken(ctx, req.BusinessID, req.Date, hour, 0, false)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error verificando el horario", err)
	}
	if taken {
		return fail(c, http.StatusBadRequest, "el horario ya está ocupado")
	}

	tx, err := h.Reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error iniciando la transacción", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Plan discounts keyed by servicio_id, filled only when the
	// reservation charges a subscription.
	discounts := map[uint64]float64{}
	if req.SubscriptionID != nil {
		sub, err := h.Subscriptions.GetByIDForUserTx(ctx, tx, *req.SubscriptionID, userID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				return fail(c, http.StatusNotFound, "suscripción no encontrada")
			case errors.Is(err, repository.ErrForbidden):
				return fail(c, http.StatusForbidden, "la suscripción pertenece a otro usuario")
			}
			return failServer(c, h.Cfg.Dev(), "error consultando la suscripción", err)
		}
		if sub.Status != "activa" || sub.EndDate.Before(time.Now()) {
			return fail(c, http.StatusBadRequest, "la suscripción no está activa")
		}

		plan, err := h.Subscriptions.PlanByID(ctx, sub.PlanID)
		if err != nil {
			return failServer(c, h.Cfg.Dev(), "error consultando el plan", err)
		}

		quota := booking.Quota{
			Limit: plan.MonthlyServices, Used: sub.UsedThisMonth, LastReset: sub.LastCounterReset,
		}
		quota, reset := booking.Normalize(quota, time.Now())
		if reset {
			if err := h.Subscriptions.ResetCounterTx(ctx, tx, sub.ID, quota.LastReset); err != nil {
				return failServer(c, h.Cfg.Dev(), "error reiniciando el contador", err)
			}
		}
		if quota.Exhausted() {
			return fail(c, http.StatusBadRequest,
				"ha agotado los servicios de su plan este mes")
		}
		if err := h.Subscriptions.IncrementUsageTx(ctx, tx, sub.ID); err != nil {
			return failServer(c, h.Cfg.Dev(), "error actualizando el contador", err)
		}

		planServices, err := h.Subscriptions.PlanServices(ctx, sub.PlanID)
		if err != nil {
			return failServer(c, h.Cfg.Dev(), "error consultando el plan", err)
		}
		for _, ps := range planServices {
			discounts[ps.Service.ID] = ps.Discount
		}
	}

	prices, err := h.Services.PricesForBusinessTx(ctx, tx, req.BusinessID, req.ServiceIDs)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando los precios", err)
	}
	for _, id := range req.ServiceIDs {
		if _, ok := prices[id]; !ok {
			return fail(c, http.StatusBadRequest,
				fmt.Sprintf("la empresa no ofrece el servicio %d", id))
		}
	}

	kind := booking.CodePersonal
	if req.Corporate {
		kind = booking.CodeCorporate
	}
	number, err := booking.GenerateNumber(ctx, kind,
		func(ctx context.Context, code string) (bool, error) {
			return h.Reservations.ExistsNumberTx(ctx, tx, code)
		},
		rand.Intn, time.Now)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error generando el número de reserva", err)
	}

	driver := strings.TrimSpace(req.AssignedDriver)
	if driver == "" {
		driver = user.FullName
	}
	vehicleType := "No especificado"
	if req.Corporate && strings.TrimSpace(req.VehicleType) != "" {
		vehicleType = req.VehicleType
	}

	m := model.Reservation{
		Number:            number,
		Date:              req.Date,
		Hour:              hour,
		Status:            booking.StatusPending,
		BusinessID:        req.BusinessID,
		UserID:            userID,
		IndividualPayment: req.SubscriptionID == nil,
		Corporate:         req.Corporate,
		VehiclePlate:      req.VehiclePlate,
		VehicleType:       vehicleType,
		AssignedDriver:    driver,
		CorporateNotes:    req.CorporateNotes,
		SubscriptionID:    req.SubscriptionID,
	}
	if err := h.Reservations.CreateTx(ctx, tx, &m); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fail(c, http.StatusConflict, "número de reserva duplicado, intente de nuevo")
		}
		return failServer(c, h.Cfg.Dev(), "error creando la reserva", err)
	}

	items := make([]model.ReservationService, 0, len(req.ServiceIDs))
	var total float64
	for _, id := range req.ServiceIDs {
		original := prices[id]
		applied := original
		item := model.ReservationService{
			ReservationID: m.ID,
			ServiceID:     id,
			OriginalPrice: original,
		}
		if d, fromPlan := discounts[id]; fromPlan && req.SubscriptionID != nil {
			item.FromPlan = true
			item.PlanDiscount = d
			applied = booking.ApplyDiscount(original, d)
		}
		item.AppliedPrice = applied
		total += applied
		items = append(items, item)
	}
	if err := h.Reservations.AddServicesTx(ctx, tx, items); err != nil {
		return failServer(c, h.Cfg.Dev(), "error guardando los servicios", err)
	}

	if err := tx.Commit(); err != nil {
		return failServer(c, h.Cfg.Dev(), "error confirmando la reserva", err)
	}
	committed = true

	return respond(c, http.StatusCreated, "reserva creada", echo.Map{
		"id_reserva":     m.ID,
		"numero_reserva": m.Number,
		"fecha":          m.Date,
		"hora":           m.Hour,
		"estado":         m.Status,
		"total":          total,
	})
}

func slotInGrid(hour string) bool {
	for _, h := range booking.Hours() {
		if h == hour {
			return true
		}
	}
	return false
}

// ListMine returns the caller's reservations. Overdue ones are swept
// to vencida first so the list never shows a stale pendiente.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Reservations.ExpireOverdue(ctx, principalID(c)); err != nil {
		return failServer(c, h.Cfg.Dev(), "error actualizando reservas vencidas", err)
	}
	details, err := h.Reservations.ListByUser(ctx, principalID(c))
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando las reservas", err)
	}

	out := make([]echo.Map, 0, len(details))
	for _, d := range details {
		out = append(out, echo.Map{
			"id_reserva":             d.ID,
			"numero_reserva":         d.Number,
			"fecha":                  d.Date,
			"hora":                   d.Hour,
			"estado":                 d.Status,
			"empresa":                d.BusinessName,
			"id_empresa":             d.BusinessID,
			"es_reserva_empresarial": d.Corporate,
			"fue_recuperada":         d.Recovered,
			"recargo_recuperacion":   d.RecoverySurcharge,
			"servicios":              d.Services,
			"total":                  d.Total,
		})
	}
	return respond(c, http.StatusOK, "", out)
}

// loadOwned fetches a reservation by path id enforcing ownership and
// mapping the standard error cases.
func (h *ReservationHandler) loadOwned(c echo.Context) (model.Reservation, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		_ = fail(c, http.StatusBadRequest, "id inválido")
		return model.Reservation{}, false
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.Reservations.GetByIDForUser(ctx, id, principalID(c))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			_ = fail(c, http.StatusNotFound, "reserva no encontrada")
		case errors.Is(err, repository.ErrForbidden):
			_ = fail(c, http.StatusForbidden, "la reserva pertenece a otro usuario")
		default:
			_ = failServer(c, h.Cfg.Dev(), "error consultando la reserva", err)
		}
		return model.Reservation{}, false
	}
	return m, true
}

// Cancel cancels a non-terminal reservation.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	m, ok := h.loadOwned(c)
	if !ok {
		return nil
	}
	if err := booking.CanCancel(m.Status); err != nil {
		var se *booking.StateError
		errors.As(err, &se)
		return fail(c, http.StatusBadRequest,
			fmt.Sprintf("no se puede cancelar una reserva %s", se.Current))
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Reservations.UpdateStatus(ctx, m.ID, booking.StatusCancelled); err != nil {
		return failServer(c, h.Cfg.Dev(), "error cancelando la reserva", err)
	}
	return respond(c, http.StatusOK, "reserva cancelada", echo.Map{
		"id_reserva": m.ID, "estado": booking.StatusCancelled,
	})
}

type rescheduleReq struct {
	Date string `json:"fecha" validate:"required"`
	Hour string `json:"hora" validate:"required"`
}

// Reschedule moves a non-terminal reservation to a free slot.
func (h *ReservationHandler) Reschedule(c echo.Context) error {
	m, ok := h.loadOwned(c)
	if !ok {
		return nil
	}
	var req rescheduleReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "fecha y hora requeridas")
	}
	if !validDate(req.Date) {
		return fail(c, http.StatusBadRequest, "fecha inválida, use YYYY-MM-DD")
	}
	hour, ok2 := normalizeHour(req.Hour)
	if !ok2 || !slotInGrid(shortHour(hour)) {
		return fail(c, http.StatusBadRequest, "hora fuera del horario de atención (08:00-18:00)")
	}

	if err := booking.CanReschedule(m.Status); err != nil {
		var se *booking.StateError
		errors.As(err, &se)
		return fail(c, http.StatusBadRequest,
			fmt.Sprintf("no se puede reagendar una reserva %s", se.Current))
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	taken, err := h.Reservations.SlotTaken(ctx, m.BusinessID, req.Date, hour, m.ID, false)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error verificando el horario", err)
	}
	if taken {
		return fail(c, http.StatusBadRequest, "el horario ya está ocupado")
	}

	if err := h.Reservations.Reschedule(ctx, m.ID, req.Date, hour); err != nil {
		return failServer(c, h.Cfg.Dev(), "error reagendando la reserva", err)
	}
	return respond(c, http.StatusOK, "reserva reagendada", echo.Map{
		"id_reserva": m.ID, "fecha": req.Date, "hora": hour,
	})
}

// RecoverySurcharge quotes the fee to recover an expired reservation:
// 25% of the applied total.
func (h *ReservationHandler) RecoverySurcharge(c echo.Context) error {
	m, ok := h.loadOwned(c)
	if !ok {
		return nil
	}
	if err := booking.CanRecover(m.Status); err != nil {
		var se *booking.StateError
		errors.As(err, &se)
		return fail(c, http.StatusBadRequest,
			fmt.Sprintf("solo se pueden recuperar reservas vencidas, esta está %s", se.Current))
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	total, err := h.Reservations.TotalApplied(ctx, m.ID)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error calculando el recargo", err)
	}
	return respond(c, http.StatusOK, "", echo.Map{
		"id_reserva": m.ID,
		"total":      total,
		"recargo":    booking.RecoverySurcharge(total),
		"porcentaje": booking.RecoverySurchargeRate * 100,
	})
}

type recoverReq struct {
	Date             string `json:"fecha" validate:"required"`
	Hour             string `json:"hora" validate:"required"`
	PaymentConfirmed bool   `json:"pago_confirmado"`
}

// RecoverExpired brings a vencida reservation back to pendiente on a
// new slot, charging the 25% surcharge. The caller confirms the
// surcharge payment in the request body, and the destination slot must
// be free counting every non-cancelada, non-vencida reservation.
func (h *ReservationHandler) RecoverExpired(c echo.Context) error {
	var req recoverReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "fecha y hora requeridas")
	}
	if !validDate(req.Date) {
		return fail(c, http.StatusBadRequest, "fecha inválida, use YYYY-MM-DD")
	}
	hour, ok2 := normalizeHour(req.Hour)
	if !ok2 || !slotInGrid(shortHour(hour)) {
		return fail(c, http.StatusBadRequest, "hora fuera del horario de atención (08:00-18:00)")
	}
	if !req.PaymentConfirmed {
		return fail(c, http.StatusBadRequest,
			"debe confirmar el pago del recargo para recuperar la reserva")
	}

	m, ok := h.loadOwned(c)
	if !ok {
		return nil
	}
	if err := booking.CanRecover(m.Status); err != nil {
		var se *booking.StateError
		errors.As(err, &se)
		return fail(c, http.StatusBadRequest,
			fmt.Sprintf("solo se pueden recuperar reservas vencidas, esta está %s", se.Current))
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	taken, err := h.Reservations.SlotTaken(ctx, m.BusinessID, req.Date, hour, m.ID, true)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error verificando el horario", err)
	}
	if taken {
		return fail(c, http.StatusBadRequest, "el horario ya está ocupado")
	}

	total, err := h.Reservations.TotalApplied(ctx, m.ID)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error calculando el recargo", err)
	}
	surcharge := booking.RecoverySurcharge(total)

	if err := h.Reservations.Recover(ctx, m.ID, req.Date, hour, surcharge); err != nil {
		return failServer(c, h.Cfg.Dev(), "error recuperando la reserva", err)
	}
	return respond(c, http.StatusOK, "reserva recuperada", echo.Map{
		"id_reserva": m.ID,
		"fecha":      req.Date,
		"hora":       hour,
		"estado":     booking.StatusPending,
		"recargo":    surcharge,
	})
}

type verifyQRReq struct {
	Number string `json:"numero_reserva" validate:"required"`
}

// VerifyQR completes a reservation by booking code. Only the owner can
// complete it, only while pendiente, and only on the service date.
func (h *ReservationHandler) VerifyQR(c echo.Context) error {
	var req verifyQRReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "numero_reserva requerido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.Reservations.GetByNumberForUser(ctx, strings.TrimSpace(req.Number), principalID(c))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return fail(c, http.StatusNotFound, "reserva no encontrada")
		case errors.Is(err, repository.ErrForbidden):
			return fail(c, http.StatusForbidden, "la reserva pertenece a otro usuario")
		}
		return failServer(c, h.Cfg.Dev(), "error consultando la reserva", err)
	}

	if err := booking.CanComplete(m.Status); err != nil {
		var se *booking.StateError
		errors.As(err, &se)
		return fail(c, http.StatusBadRequest,
			fmt.Sprintf("no se puede completar una reserva %s", se.Current))
	}
	if m.Date != time.Now().Format("2006-01-02") {
		return fail(c, http.StatusBadRequest,
			"la reserva solo puede completarse el día del servicio")
	}

	if err := h.Reservations.UpdateStatus(ctx, m.ID, booking.StatusCompleted); err != nil {
		return failServer(c, h.Cfg.Dev(), "error completando la reserva", err)
	}

	h.publishCompleted(c, m)

	return respond(c, http.StatusOK, "reserva completada", echo.Map{
		"id_reserva":     m.ID,
		"numero_reserva": m.Number,
		"estado":         booking.StatusCompleted,
	})
}

func (h *ReservationHandler) publishCompleted(c echo.Context, m model.Reservation) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	total, err := h.Reservations.TotalApplied(ctx, m.ID)
	if err != nil {
		return
	}
	name := ""
	if b, err := h.Businesses.GetByID(ctx, m.BusinessID); err == nil {
		name = b.Name
	}
	_ = queue_publisher.PublishReservationCompleted(c.Request().Context(), queue.ReservationCompletedEvent{
		ReservationID: m.ID,
		Number:        m.Number,
		UserID:        m.UserID,
		BusinessID:    m.BusinessID,
		BusinessName:  name,
		Date:          m.Date,
		Hour:          m.Hour,
		Total:         total,
		Corporate:     m.Corporate,
		Recovered:     m.Recovered,
		CompletedAt:   time.Now().UTC().Format(time.RFC3339),
	})
}

// GetByNumber returns the caller's reservation for a booking code,
// with its line items.
func (h *ReservationHandler) GetByNumber(c echo.Context) error {
	number := strings.TrimSpace(c.Param("numero"))
	if number == "" {
		return fail(c, http.StatusBadRequest, "número de reserva requerido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.Reservations.GetByNumberForUser(ctx, number, principalID(c))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return fail(c, http.StatusNotFound, "reserva no encontrada")
		case errors.Is(err, repository.ErrForbidden):
			return fail(c, http.StatusForbidden, "la reserva pertenece a otro usuario")
		}
		return failServer(c, h.Cfg.Dev(), "error consultando la reserva", err)
	}

	lines, err := h.Reservations.LinesFor(ctx, m.ID)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando los servicios", err)
	}
	var total float64
	for _, l := range lines {
		total += l.AppliedPrice
	}
	return respond(c, http.StatusOK, "", echo.Map{
		"id_reserva":           m.ID,
		"numero_reserva":       m.Number,
		"fecha":                m.Date,
		"hora":                 m.Hour,
		"estado":               m.Status,
		"id_empresa":           m.BusinessID,
		"fue_recuperada":       m.Recovered,
		"recargo_recuperacion": m.RecoverySurcharge,
		"servicios":            lines,
		"total":                total,
	})
}
