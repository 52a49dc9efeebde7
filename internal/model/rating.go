package model

import "time"

// Rating is a customer review of a completed reservation, stored in
// `lavado_auto_calificacionempresa`. At most one rating may exist per
// reservation and it is immutable once written.
type Rating struct {
	ID            uint64    // lavado_auto_calificacionempresa.id_calificacion
	ReservationID uint64    // lavado_auto_calificacionempresa.reserva_id
	BusinessID    uint64    // lavado_auto_calificacionempresa.empresa_id
	UserID        uint64    // lavado_auto_calificacionempresa.usuario_id
	Score         int       // lavado_auto_calificacionempresa.puntuacion (1..5)
	Comment       string    // lavado_auto_calificacionempresa.comentario
	CreatedAt     time.Time // lavado_auto_calificacionempresa.fecha_creacion
	UpdatedAt     time.Time // lavado_auto_calificacionempresa.fecha_actualizacion
}
