package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/autonew/carwash-booking/internal/booking"
	"github.com/autonew/carwash-booking/internal/config"
	"github.com/autonew/carwash-booking/internal/queue"
	"github.com/autonew/carwash-booking/internal/repository"
	queue_publisher "github.com/autonew/carwash-booking/internal/service"
)

// BusinessReservationHandler serves the reservation surface of
// /api/empresa: list with filters, estado updates, the dashboard and
// the QR payload.
type BusinessReservationHandler struct {
	Cfg          config.Config
	Reservations *repository.ReservationRepo
	Businesses   *repository.BusinessRepo
}

func NewBusinessReservationHandler(cfg config.Config, r *repository.ReservationRepo, b *repository.BusinessRepo) *BusinessReservationHandler {
	return &BusinessReservationHandler{Cfg: cfg, Reservations: r, Businesses: b}
}

// Dashboard returns the business counters: today's reservations,
// pending washes, completed today, month revenue.
func (h *BusinessReservationHandler) Dashboard(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	stats, err := h.Reservations.Dashboard(ctx, principalID(c))
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando el dashboard", err)
	}
	return respond(c, http.StatusOK, "", stats)
}

func businessReservationMap(d repository.BusinessReservation) echo.Map {
	return echo.Map{
		"id_reserva":             d.ID,
		"numero_reserva":         d.Number,
		"fecha":                  d.Date,
		"hora":                   d.Hour,
		"estado":                 d.Status,
		"cliente":                d.CustomerName,
		"telefono_cliente":       d.CustomerPhone,
		"es_reserva_empresarial": d.Corporate,
		"placa_vehiculo":         d.VehiclePlate,
		"tipo_vehiculo":          d.VehicleType,
		"conductor_asignado":     d.AssignedDriver,
		"fue_recuperada":         d.Recovered,
		"recargo_recuperacion":   d.RecoverySurcharge,
		"pagado_empresa":         d.PaidToBusiness,
		"servicios":              d.Services,
		"total":                  d.Total,
	}
}

// List returns one page of the business's reservations. Query params:
// estado, fecha, page, per_page.
func (h *BusinessReservationHandler) List(c echo.Context) error {
	f := repository.BusinessListFilter{
		Status: c.QueryParam("estado"),
		Date:   c.QueryParam("fecha"),
	}
	if f.Status != "" && !validListStatus(f.Status) {
		return fail(c, http.StatusBadRequest, "estado de filtro inválido")
	}
	if f.Date != "" && !validDate(f.Date) {
		return fail(c, http.StatusBadRequest, "fecha inválida, use YYYY-MM-DD")
	}
	f.Page, _ = strconv.Atoi(c.QueryParam("page"))
	f.PerPage, _ = strconv.Atoi(c.QueryParam("per_page"))

	ctx, cancel := reqCtx(c)
	defer cancel()

	list, total, err := h.Reservations.ListForBusiness(ctx, principalID(c), f)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando las reservas", err)
	}

	out := make([]echo.Map, 0, len(list))
	for _, d := range list {
		out = append(out, businessReservationMap(d))
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	perPage := f.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	return respond(c, http.StatusOK, "", echo.Map{
		"reservas": out,
		"paginacion": echo.Map{
			"page": page, "per_page": perPage, "total": total,
		},
	})
}

func validListStatus(s string) bool {
	switch s {
	case booking.StatusPending, booking.StatusConfirmed, booking.StatusCompleted,
		booking.StatusCancelled, booking.StatusExpired:
		return true
	}
	return false
}

type updateStatusReq struct {
	Status string `json:"estado" validate:"required"`
}

// UpdateStatus changes a reservation's estado. Terminal states cannot
// move; completing publishes a reserva.completada event for the log
// consumer and the settlement feed.
func (h *BusinessReservationHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return fail(c, http.StatusBadRequest, "id inválido")
	}
	var req updateStatusReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}
	if !booking.ValidBusinessUpdate(req.Status) {
		return fail(c, http.StatusBadRequest, "estado destino inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	businessID := principalID(c)
	m, err := h.Reservations.GetForBusiness(ctx, id, businessID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return fail(c, http.StatusNotFound, "reserva no encontrada")
		case errors.Is(err, repository.ErrForbidden):
			return fail(c, http.StatusForbidden, "la reserva pertenece a otra empresa")
		}
		return failServer(c, h.Cfg.Dev(), "error consultando la reserva", err)
	}

	if booking.Terminal(m.Status) {
		return fail(c, http.StatusBadRequest,
			fmt.Sprintf("la reserva ya está %s", m.Status))
	}

	if err := h.Reservations.UpdateStatus(ctx, id, req.Status); err != nil {
		return failServer(c, h.Cfg.Dev(), "error actualizando el estado", err)
	}

	if req.Status == booking.StatusCompleted {
		h.publishCompleted(c.Request().Context(), m.ID, businessID)
	}
	return respond(c, http.StatusOK, "estado actualizado", echo.Map{
		"id_reserva": id, "estado": req.Status,
	})
}

// publishCompleted emits the completion event on a best-effort basis.
// Broker failures never fail the HTTP request.
func (h *BusinessReservationHandler) publishCompleted(ctx context.Context, reservationID, businessID uint64) {
	dbCtx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	m, err := h.Reservations.GetForBusiness(dbCtx, reservationID, businessID)
	if err != nil {
		return
	}
	total, err := h.Reservations.TotalApplied(dbCtx, m.ID)
	if err != nil {
		return
	}
	name := ""
	if b, err := h.Businesses.GetByID(dbCtx, businessID); err == nil {
		name = b.Name
	}
	_ = queue_publisher.PublishReservationCompleted(ctx, queue.ReservationCompletedEvent{
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

// QRPayload returns the booking-code payload the mobile app renders as
// a QR for check-in at the wash bay.
func (h *BusinessReservationHandler) QRPayload(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return fail(c, http.StatusBadRequest, "id inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.Reservations.GetForBusiness(ctx, id, principalID(c))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return fail(c, http.StatusNotFound, "reserva no encontrada")
		case errors.Is(err, repository.ErrForbidden):
			return fail(c, http.StatusForbidden, "la reserva pertenece a otra empresa")
		}
		return failServer(c, h.Cfg.Dev(), "error consultando la reserva", err)
	}
	return respond(c, http.StatusOK, "", echo.Map{
		"numero_reserva": m.Number,
		"fecha":          m.Date,
		"hora":           m.Hour,
		"estado":         m.Status,
	})
}
