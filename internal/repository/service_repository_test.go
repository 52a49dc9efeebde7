package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteRequestForBusinessRejectsAnswered(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT estado FROM lavado_auto_solicitudservicioempresa").
		WithArgs(uint64(3), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"estado"}).AddRow("aprobada"))

	repo := NewServiceRepo(db)
	err = repo.DeleteRequestForBusiness(context.Background(), 3, 7)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRequestForBusinessDeletesPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT estado FROM lavado_auto_solicitudservicioempresa").
		WithArgs(uint64(3), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"estado"}).AddRow("pendiente"))
	mock.ExpectExec("DELETE FROM lavado_auto_solicitudservicioempresa").
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewServiceRepo(db)
	require.NoError(t, repo.DeleteRequestForBusiness(context.Background(), 3, 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasPendingRequest(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM lavado_auto_solicitudservicioempresa`).
		WithArgs(uint64(7), uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	repo := NewServiceRepo(db)
	pending, err := repo.HasPendingRequest(context.Background(), 7, 2)
	require.NoError(t, err)
	assert.True(t, pending)
	assert.NoError(t, mock.ExpectationsWereMet())
}
