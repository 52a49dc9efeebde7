package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/autonew/carwash-booking/internal/booking"
	"github.com/autonew/carwash-booking/internal/config"
	"github.com/autonew/carwash-booking/internal/model"
	"github.com/autonew/carwash-booking/internal/repository"
)

// RatingHandler serves /api/calificaciones: one immutable review per
// completed reservation.
type RatingHandler struct {
	Cfg          config.Config
	Ratings      *repository.RatingRepo
	Reservations *repository.ReservationRepo
}

func NewRatingHandler(cfg config.Config, ra *repository.RatingRepo, re *repository.ReservationRepo) *RatingHandler {
	return &RatingHandler{Cfg: cfg, Ratings: ra, Reservations: re}
}

type createRatingReq struct {
	ReservationID uint64 `json:"id_reserva" validate:"required"`
	Score         int    `json:"puntuacion" validate:"required,min=1,max=5"`
	Comment       string `json:"comentario" validate:"max=500"`
}

// Create writes a review. The caller must own the reservation and it
// must be completado.
func (h *RatingHandler) Create(c echo.Context) error {
	var req createRatingReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo inválido")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "puntuación de 1 a 5 requerida")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	userID := principalID(c)
	m, err := h.Reservations.GetByIDForUser(ctx, req.ReservationID, userID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return fail(c, http.StatusNotFound, "reserva no encontrada")
		case errors.Is(err, repository.ErrForbidden):
			return fail(c, http.StatusForbidden, "la reserva pertenece a otro usuario")
		}
		return failServer(c, h.Cfg.Dev(), "error consultando la reserva", err)
	}
	if m.Status != booking.StatusCompleted {
		return fail(c, http.StatusBadRequest, "solo se pueden calificar reservas completadas")
	}

	id, err := h.Ratings.Create(ctx, model.Rating{
		ReservationID: m.ID,
		BusinessID:    m.BusinessID,
		UserID:        userID,
		Score:         req.Score,
		Comment:       req.Comment,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateRating) {
			return fail(c, http.StatusConflict, "la reserva ya fue calificada")
		}
		return failServer(c, h.Cfg.Dev(), "error guardando la calificación", err)
	}
	return respond(c, http.StatusCreated, "calificación registrada", echo.Map{
		"id_calificacion": id,
		"id_reserva":      m.ID,
		"puntuacion":      req.Score,
	})
}

// ByReservation returns the review of a reservation, data null when it
// has none yet.
func (h *RatingHandler) ByReservation(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return fail(c, http.StatusBadRequest, "id inválido")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Reservations.GetByIDForUser(ctx, id, principalID(c)); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return fail(c, http.StatusNotFound, "reserva no encontrada")
		case errors.Is(err, repository.ErrForbidden):
			return fail(c, http.StatusForbidden, "la reserva pertenece a otro usuario")
		}
		return failServer(c, h.Cfg.Dev(), "error consultando la reserva", err)
	}

	rating, err := h.Ratings.GetByReservation(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respond(c, http.StatusOK, "la reserva no tiene calificación", nil)
		}
		return failServer(c, h.Cfg.Dev(), "error consultando la calificación", err)
	}
	return respond(c, http.StatusOK, "", echo.Map{
		"id_calificacion": rating.ID,
		"id_reserva":      rating.ReservationID,
		"puntuacion":      rating.Score,
		"comentario":      rating.Comment,
		"fecha":           rating.CreatedAt.Format("2006-01-02 15:04:05"),
	})
}
