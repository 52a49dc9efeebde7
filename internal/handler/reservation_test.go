package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recoverContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("5")
	return c, rec
}

// Recovery charges a surcharge, so the request must confirm that
// payment explicitly. An absent or false flag is rejected before
// anything is looked up.
func TestRecoverExpiredRequiresPaymentConfirmation(t *testing.T) {
	h := &ReservationHandler{}
	for _, body := range []string{
		`{"fecha":"2026-09-01","hora":"10:00"}`,
		`{"fecha":"2026-09-01","hora":"10:00","pago_confirmado":false}`,
	} {
		c, rec := recoverContext(t, body)
		require.NoError(t, h.RecoverExpired(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Contains(t, rec.Body.String(), "confirmar el pago del recargo", body)
	}
}

func TestRecoverRequestKeepsPaymentFlag(t *testing.T) {
	c, _ := recoverContext(t, `{"fecha":"2026-09-01","hora":"10:00","pago_confirmado":true}`)
	var req recoverReq
	require.NoError(t, c.Bind(&req))
	assert.Equal(t, "2026-09-01", req.Date)
	assert.Equal(t, "10:00", req.Hour)
	assert.True(t, req.PaymentConfirmed)
}
