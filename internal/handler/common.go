package handler

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/autonew/carwash-booking/internal/middleware"
)

// dbTimeout bounds every database round trip started from a handler.
const dbTimeout = 5 * time.Second

// lockoutWindow is how long a temporary login lock lasts.
const lockoutWindow = 15 * time.Minute

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// principalID returns the authenticated principal's id from the JWT
// context, zero when absent.
func principalID(c echo.Context) uint64 {
	id, _ := c.Get(middleware.CtxUserID).(uint64)
	return id
}

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// validDate checks YYYY-MM-DD and rejects impossible calendar dates.
func validDate(s string) bool {
	if !dateRe.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

var hourRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)

// normalizeHour accepts "HH:MM" or "HH:MM:SS" and returns "HH:MM:SS".
func normalizeHour(s string) (string, bool) {
	if !hourRe.MatchString(s) {
		return "", false
	}
	if len(s) == 5 {
		return s + ":00", true
	}
	return s, true
}

// shortHour trims "HH:MM:SS" to the "HH:MM" used by the slot grid.
func shortHour(s string) string {
	if len(s) >= 5 {
		return s[:5]
	}
	return s
}

// Validator adapts go-playground/validator to Echo's Validator
// interface so handlers can call c.Validate on bound DTOs.
type Validator struct{ v *validator.Validate }

func NewValidator() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (val *Validator) Validate(i any) error {
	if err := val.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// failServer writes a generic 500. Dev builds append the underlying
// error so local debugging does not require log digging; production
// responses stay opaque.
func failServer(c echo.Context, dev bool, msg string, err error) error {
	if dev && err != nil {
		msg = msg + ": " + err.Error()
	}
	return fail(c, http.StatusInternalServerError, msg)
}
