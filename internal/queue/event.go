// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationCompletedEvent is published when a business marks a wash
// as completado. It carries enough for downstream consumers to log,
// notify the customer or feed the settlement job without querying the
// primary database.
type ReservationCompletedEvent struct {
	ReservationID uint64  `json:"id_reserva"`
	Number        string  `json:"numero_reserva"`
	UserID        uint64  `json:"usuario_id"`
	BusinessID    uint64  `json:"empresa_id"`
	BusinessName  string  `json:"empresa"`
	Date          string  `json:"fecha"`
	Hour          string  `json:"hora"`
	Total         float64 `json:"total"`
	Corporate     bool    `json:"es_reserva_empresarial"`
	Recovered     bool    `json:"fue_recuperada"`
	CompletedAt   string  `json:"completada_en"`
}
