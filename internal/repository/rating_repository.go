package repository

import (
	"context"
	"database/sql"

	"github.com/autonew/carwash-booking/internal/model"
)

// RatingRepo persists business reviews in
// `lavado_auto_calificacionempresa`. One rating per reservation,
// enforced both by a pre-check and by the table's unique key.
type RatingRepo struct{ db *sql.DB }

func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{db: db} }

func (r *RatingRepo) DB() *sql.DB { return r.db }

// Create stores a rating and returns its ID. ErrDuplicateRating is
// returned when the reservation is already rated.
func (r *RatingRepo) Create(ctx context.Context, m model.Rating) (uint64, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM lavado_auto_calificacionempresa WHERE reserva_id=?",
		m.ReservationID).Scan(&n); err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, ErrDuplicateRating
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO lavado_auto_calificacionempresa
		  (reserva_id, empresa_id, usuario_id, puntuacion, comentario,
		   fecha_creacion, fecha_actualizacion)
		VALUES (?,?,?,?,?,NOW(),NOW())`,
		m.ReservationID, m.BusinessID, m.UserID, m.Score, m.Comment)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrDuplicateRating
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByReservation fetches the rating of a reservation, or
// sql.ErrNoRows when it has none.
func (r *RatingRepo) GetByReservation(ctx context.Context, reservationID uint64) (model.Rating, error) {
	var m model.Rating
	err := r.db.QueryRowContext(ctx, `
		SELECT id_calificacion, reserva_id, empresa_id, usuario_id,
		       puntuacion, COALESCE(comentario,''), fecha_creacion, fecha_actualizacion
		  FROM lavado_auto_calificacionempresa
		 WHERE reserva_id=?`, reservationID).Scan(
		&m.ID, &m.ReservationID, &m.BusinessID, &m.UserID,
		&m.Score, &m.Comment, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}
