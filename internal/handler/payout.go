package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/autonew/carwash-booking/internal/config"
	"github.com/autonew/carwash-booking/internal/model"
	"github.com/autonew/carwash-booking/internal/repository"
)

// PayoutHandler serves the read side of settlements under
// /api/empresa/pagos. Periods are created and closed by the settlement
// job, not by this API.
type PayoutHandler struct {
	Cfg          config.Config
	Liquidations *repository.LiquidationRepo
}

func NewPayoutHandler(cfg config.Config, l *repository.LiquidationRepo) *PayoutHandler {
	return &PayoutHandler{Cfg: cfg, Liquidations: l}
}

// Summary returns the payment totals of the authenticated business.
func (h *PayoutHandler) Summary(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Liquidations.Summary(ctx, principalID(c))
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando el resumen de pagos", err)
	}
	return respond(c, http.StatusOK, "", s)
}

func periodMap(p model.SettlementPeriod) echo.Map {
	m := echo.Map{
		"id_periodo":       p.ID,
		"fecha_inicio":     p.StartDate.Format("2006-01-02"),
		"fecha_fin":        p.EndDate.Format("2006-01-02"),
		"estado":           p.Status,
		"total_bruto":      p.Gross,
		"total_descuentos": p.Discounts,
		"comision":         p.CommissionRate,
		"total_comision":   p.Commission,
		"total_neto":       p.Net,
		"cantidad_reservas": p.Reservations,
		"metodo_pago":      p.PaymentMethod,
		"referencia_pago":  p.PaymentRef,
	}
	if p.PaidAt != nil {
		m["fecha_pago"] = p.PaidAt.Format("2006-01-02")
	} else {
		m["fecha_pago"] = nil
	}
	return m
}

// validPeriodStatus guards the estado query filter.
func validPeriodStatus(s string) bool {
	switch s {
	case "", "activo", "cerrado", "pagado":
		return true
	}
	return false
}

// Periods lists the business's settlement periods, optionally filtered
// by estado.
func (h *PayoutHandler) Periods(c echo.Context) error {
	status := c.QueryParam("estado")
	if !validPeriodStatus(status) {
		return fail(c, http.StatusBadRequest, "estado inválido, use activo, cerrado o pagado")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	periods, err := h.Liquidations.Periods(ctx, principalID(c), status)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando los periodos", err)
	}
	out := make([]echo.Map, 0, len(periods))
	for _, p := range periods {
		out = append(out, periodMap(p))
	}
	return respond(c, http.StatusOK, "", out)
}

// PeriodDetail returns one settlement period with its reservation
// breakdown.
func (h *PayoutHandler) PeriodDetail(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return fail(c, http.StatusBadRequest, "id inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	period, rows, err := h.Liquidations.PeriodDetail(ctx, id, principalID(c))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return fail(c, http.StatusNotFound, "periodo no encontrado")
		case errors.Is(err, repository.ErrForbidden):
			return fail(c, http.StatusForbidden, "el periodo pertenece a otra empresa")
		}
		return failServer(c, h.Cfg.Dev(), "error consultando el periodo", err)
	}

	details := make([]echo.Map, 0, len(rows))
	for _, r := range rows {
		details = append(details, echo.Map{
			"numero_reserva":  r.ReservationNumber,
			"cliente":         r.CustomerName,
			"fecha_servicio":  r.Detail.ServiceDate.Format("2006-01-02"),
			"valor_bruto":     r.Detail.Gross,
			"valor_descuento": r.Detail.Discount,
			"tipo_descuento":  r.Detail.DiscountKind,
			"valor_comision":  r.Detail.Commission,
			"valor_empresa":   r.Detail.BusinessPayout,
		})
	}

	out := periodMap(period)
	out["reservas"] = details
	return respond(c, http.StatusOK, "", out)
}

// PendingReservations lists completed reservations not yet paid out.
func (h *PayoutHandler) PendingReservations(c echo.Context) error {
	return h.byPayout(c, false)
}

// PaidReservations lists completed reservations already paid out.
func (h *PayoutHandler) PaidReservations(c echo.Context) error {
	return h.byPayout(c, true)
}

func (h *PayoutHandler) byPayout(c echo.Context, paid bool) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Liquidations.CompletedByPayout(ctx, principalID(c), paid)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando las reservas", err)
	}
	return respond(c, http.StatusOK, "", rows)
}

// MyReservations lists every completed reservation with its payout
// standing plus the aggregate pending and paid totals.
func (h *PayoutHandler) MyReservations(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Liquidations.CompletedForBusiness(ctx, principalID(c))
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando las reservas", err)
	}

	var pending, paid float64
	for _, r := range rows {
		if r.Paid {
			paid += r.Total
		} else {
			pending += r.Total
		}
	}
	return respond(c, http.StatusOK, "", echo.Map{
		"reservas":        rows,
		"total_pendiente": pending,
		"total_pagado":    paid,
	})
}
