package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/autonew/carwash-booking/internal/booking"
	"github.com/autonew/carwash-booking/internal/config"
	"github.com/autonew/carwash-booking/internal/model"
	"github.com/autonew/carwash-booking/internal/repository"
)

// SubscriptionHandler serves /api/planes: the plan catalog plus the
// customer's membership lifecycle.
type SubscriptionHandler struct {
	Cfg           config.Config
	Subscriptions *repository.SubscriptionRepo
}

func NewSubscriptionHandler(cfg config.Config, s *repository.SubscriptionRepo) *SubscriptionHandler {
	return &SubscriptionHandler{Cfg: cfg, Subscriptions: s}
}

func planMap(p model.Plan) echo.Map {
	services := p.MonthlyServices
	wire := any(services)
	if services == 0 {
		wire = "ilimitado"
	}
	return echo.Map{
		"id_plan":                 p.ID,
		"nombre":                  p.Name,
		"tipo":                    p.Type,
		"descripcion":             p.Description,
		"precio_mensual":          p.MonthlyPrice,
		"servicios_mensuales":     wire,
		"incluye_lavado_asientos": p.SeatWash,
		"incluye_aspirado":        p.Vacuum,
		"incluye_lavado_exterior": p.ExteriorWash,
		"incluye_lavado_interior": p.InteriorWash,
		"incluye_encerado":        p.Waxing,
		"incluye_detallado":       p.FullDetailing,
	}
}

// Plans lists the active subscription plans. Public and cached.
func (h *SubscriptionHandler) Plans(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	plans, err := h.Subscriptions.Plans(ctx)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando los planes", err)
	}
	out := make([]echo.Map, 0, len(plans))
	for _, p := range plans {
		out = append(out, planMap(p))
	}
	return respond(c, http.StatusOK, "", out)
}

// PlanDetail returns one plan with its covered services and the
// discounted price each would cost under the plan.
func (h *SubscriptionHandler) PlanDetail(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return fail(c, http.StatusBadRequest, "id inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	plan, err := h.Subscriptions.PlanByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusNotFound, "plan no encontrado")
		}
		return failServer(c, h.Cfg.Dev(), "error consultando el plan", err)
	}

	covered, err := h.Subscriptions.PlanServices(ctx, id)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando los servicios del plan", err)
	}

	services := make([]echo.Map, 0, len(covered))
	for _, ps := range covered {
		services = append(services, echo.Map{
			"id_servicio":          ps.Service.ID,
			"nombre":               ps.Service.Name,
			"precio":               ps.Service.Price,
			"porcentaje_descuento": ps.Discount,
			"precio_con_descuento": booking.ApplyDiscount(ps.Service.Price, ps.Discount),
		})
	}

	out := planMap(plan)
	out["servicios"] = services
	return respond(c, http.StatusOK, "", out)
}

type subscribeReq struct {
	PlanID uint64 `json:"id_plan" validate:"required"`
}

// Subscribe enrolls the caller in a plan. One active membership per
// user.
func (h *SubscriptionHandler) Subscribe(c echo.Context) error {
	var req subscribeReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "id_plan requerido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	plan, err := h.Subscriptions.PlanByID(ctx, req.PlanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(c, http.StatusNotFound, "plan no encontrado")
		}
		return failServer(c, h.Cfg.Dev(), "error consultando el plan", err)
	}
	if !plan.Active {
		return fail(c, http.StatusBadRequest, "el plan no está disponible")
	}

	id, err := h.Subscriptions.Create(ctx, principalID(c), plan.ID)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fail(c, http.StatusBadRequest, "ya tiene una suscripción activa")
		}
		return failServer(c, h.Cfg.Dev(), "error creando la suscripción", err)
	}
	return respond(c, http.StatusCreated, "suscripción creada", echo.Map{
		"id_suscripcion": id,
		"id_plan":        plan.ID,
		"estado":         "activa",
	})
}

// Cancel cancels the caller's subscription.
func (h *SubscriptionHandler) Cancel(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return fail(c, http.StatusBadRequest, "id inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	switch err := h.Subscriptions.CancelForUser(ctx, id, principalID(c)); {
	case err == nil:
	case errors.Is(err, sql.ErrNoRows):
		return fail(c, http.StatusNotFound, "suscripción no encontrada")
	case errors.Is(err, repository.ErrForbidden):
		return fail(c, http.StatusForbidden, "la suscripción pertenece a otro usuario")
	case errors.Is(err, repository.ErrConflict):
		return fail(c, http.StatusBadRequest, "la suscripción no está activa")
	default:
		return failServer(c, h.Cfg.Dev(), "error cancelando la suscripción", err)
	}
	return respond(c, http.StatusOK, "suscripción cancelada", echo.Map{
		"id_suscripcion": id, "estado": "cancelada",
	})
}

// activeNormalized fetches the caller's active membership and applies
// the lazy 30-day counter reset, persisting it when it fires.
func (h *SubscriptionHandler) activeNormalized(c echo.Context) (model.Subscription, model.Plan, booking.Quota, error) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	sub, err := h.Subscriptions.ActiveByUser(ctx, principalID(c))
	if err != nil {
		return model.Subscription{}, model.Plan{}, booking.Quota{}, err
	}
	plan, err := h.Subscriptions.PlanByID(ctx, sub.PlanID)
	if err != nil {
		return model.Subscription{}, model.Plan{}, booking.Quota{}, err
	}

	quota := booking.Quota{Limit: plan.MonthlyServices, Used: sub.UsedThisMonth, LastReset: sub.LastCounterReset}
	quota, reset := booking.Normalize(quota, time.Now())
	if reset {
		if err := h.Subscriptions.ResetCounter(ctx, sub.ID, quota.LastReset); err != nil {
			return model.Subscription{}, model.Plan{}, booking.Quota{}, err
		}
		sub.UsedThisMonth = 0
		sub.LastCounterReset = quota.LastReset
	}
	return sub, plan, quota, nil
}

// Active returns the caller's active membership with its remaining
// quota, or data null when there is none.
func (h *SubscriptionHandler) Active(c echo.Context) error {
	sub, plan, quota, err := h.activeNormalized(c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respond(c, http.StatusOK, "sin suscripción activa", nil)
		}
		return failServer(c, h.Cfg.Dev(), "error consultando la suscripción", err)
	}
	return respond(c, http.StatusOK, "", echo.Map{
		"id_suscripcion":       sub.ID,
		"plan":                 planMap(plan),
		"fecha_inicio":         sub.StartDate.Format("2006-01-02"),
		"fecha_fin":            sub.EndDate.Format("2006-01-02"),
		"estado":               sub.Status,
		"servicios_utilizados": sub.UsedThisMonth,
		"servicios_restantes":  quota.Remaining(),
		"auto_renovar":         sub.AutoRenew,
	})
}

// History lists every membership the caller has held, newest first.
func (h *SubscriptionHandler) History(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Subscriptions.History(ctx, principalID(c))
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando el historial", err)
	}
	out := make([]echo.Map, 0, len(rows))
	for _, r := range rows {
		out = append(out, echo.Map{
			"id_suscripcion": r.Subscription.ID,
			"plan":           r.Plan.Name,
			"precio_mensual": r.Plan.MonthlyPrice,
			"fecha_inicio":   r.Subscription.StartDate.Format("2006-01-02"),
			"fecha_fin":      r.Subscription.EndDate.Format("2006-01-02"),
			"estado":         r.Subscription.Status,
		})
	}
	return respond(c, http.StatusOK, "", out)
}

// Verify reports whether the caller can charge a booking to a plan:
// the active membership, its covered services with discounted prices
// and the remaining quota. Booking screens call this before offering
// the plan payment option.
func (h *SubscriptionHandler) Verify(c echo.Context) error {
	sub, plan, quota, err := h.activeNormalized(c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respond(c, http.StatusOK, "", echo.Map{"tiene_suscripcion": false})
		}
		return failServer(c, h.Cfg.Dev(), "error consultando la suscripción", err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	covered, err := h.Subscriptions.PlanServices(ctx, plan.ID)
	if err != nil {
		return failServer(c, h.Cfg.Dev(), "error consultando los servicios del plan", err)
	}
	services := make([]echo.Map, 0, len(covered))
	for _, ps := range covered {
		services = append(services, echo.Map{
			"id_servicio":          ps.Service.ID,
			"nombre":               ps.Service.Name,
			"porcentaje_descuento": ps.Discount,
			"precio_con_descuento": booking.ApplyDiscount(ps.Service.Price, ps.Discount),
		})
	}

	return respond(c, http.StatusOK, "", echo.Map{
		"tiene_suscripcion":   true,
		"id_suscripcion":      sub.ID,
		"plan":                plan.Name,
		"servicios_restantes": quota.Remaining(),
		"puede_reservar":      !quota.Exhausted(),
		"servicios":           services,
	})
}
