package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autonew/carwash-booking/internal/model"
)

// The header insert carries only the columns the legacy schema has;
// payment confirmation travels in the recovery request, never in a
// reservation column.
func TestCreateTxColumns(t *testing.T) {
	matcher := sqlmock.QueryMatcherFunc(func(expectedSQL, actualSQL string) error {
		if !strings.Contains(actualSQL, expectedSQL) {
			return fmt.Errorf("query %q does not contain %q", actualSQL, expectedSQL)
		}
		if strings.Contains(actualSQL, "pago_confirmado") {
			return fmt.Errorf("insert references pago_confirmado: %q", actualSQL)
		}
		return nil
	})
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(matcher))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO lavado_auto_reserva").
		WithArgs("ANW-B1234567", "2026-09-01", "10:00:00", "pendiente",
			uint64(7), uint64(42), true, false, nil, "No especificado",
			"Ana Pérez", "", nil).
		WillReturnResult(sqlmock.NewResult(11, 1))

	tx, err := db.Begin()
	require.NoError(t, err)

	m := model.Reservation{
		Number:            "ANW-B1234567",
		Date:              "2026-09-01",
		Hour:              "10:00:00",
		Status:            "pendiente",
		BusinessID:        7,
		UserID:            42,
		IndividualPayment: true,
		VehicleType:       "No especificado",
		AssignedDriver:    "Ana Pérez",
	}
	repo := NewReservationRepo(db)
	require.NoError(t, repo.CreateTx(context.Background(), tx, &m))
	assert.Equal(t, uint64(11), m.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The lazy expiry sweep only touches the requesting user's rows.
func TestExpireOverdueScopedToUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE lavado_auto_reserva SET estado='vencida' WHERE usuario_id=\?`).
		WithArgs(uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	repo := NewReservationRepo(db)
	n, err := repo.ExpireOverdue(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
