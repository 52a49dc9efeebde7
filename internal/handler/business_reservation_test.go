package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autonew/carwash-booking/internal/middleware"
	"github.com/autonew/carwash-booking/internal/repository"
)

var reservationCols = []string{
	"id_reserva", "numero_reserva", "fecha", "hora", "estado",
	"empresa_id", "usuario_id", "es_pago_individual", "es_reserva_empresarial",
	"placa_vehiculo", "tipo_vehiculo", "conductor_asignado",
	"observaciones_empresariales", "suscripcion_utilizada_id",
	"pagado_empresa", "fue_recuperada", "recargo_recuperacion",
}

func reservationRow(estado string) *sqlmock.Rows {
	return sqlmock.NewRows(reservationCols).AddRow(
		uint64(5), "ANW-B0000001", "2026-08-30", "10:00:00", estado,
		uint64(9), uint64(42), true, false, nil, "No especificado",
		"Ana Pérez", "", nil, false, false, 0.0)
}

// A completado or cancelada reservation admits no estado update at
// all, not even a repeat of its current value.
func TestUpdateStatusRejectsTerminal(t *testing.T) {
	cases := []struct{ current, target string }{
		{"completado", "completado"},
		{"completado", "cancelada"},
		{"cancelada", "cancelada"},
		{"cancelada", "pendiente"},
	}
	for _, tc := range cases {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)

		mock.ExpectQuery("SELECT .+ FROM lavado_auto_reserva r WHERE r.id_reserva=").
			WithArgs(uint64(5)).
			WillReturnRows(reservationRow(tc.current))

		h := &BusinessReservationHandler{Reservations: repository.NewReservationRepo(db)}

		e := echo.New()
		e.Validator = NewValidator()
		req := httptest.NewRequest(http.MethodPut, "/",
			strings.NewReader(`{"estado":"`+tc.target+`"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("5")
		c.Set(middleware.CtxUserID, uint64(9))

		require.NoError(t, h.UpdateStatus(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "%s -> %s", tc.current, tc.target)
		assert.Contains(t, rec.Body.String(), "ya está "+tc.current)
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	}
}
