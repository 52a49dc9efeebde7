package booking

import "fmt"

// Reservation lifecycle states. The Spanish values are the literal
// estados stored in the database and exposed on the wire; legacy
// clients depend on them.
const (
	StatusPending   = "pendiente"
	StatusConfirmed = "confirmada" // legacy rows only; treated like pendiente by the expiry sweep
	StatusCompleted = "completado"
	StatusCancelled = "cancelada"
	StatusExpired   = "vencida"
)

// StateError reports a transition that the lifecycle does not allow.
// It carries the current state so handlers can name it in the
// response.
type StateError struct {
	Current string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("estado actual no lo permite: %s", e.Current)
}

// Terminal reports whether a state admits no further transitions.
func Terminal(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

// CanCancel validates a cancellation. Anything not terminal may be
// cancelled, including vencida.
func CanCancel(status string) error {
	if Terminal(status) {
		return &StateError{Current: status}
	}
	return nil
}

// CanReschedule validates a date/hour change. Terminal states cannot
// move; vencida must go through recovery instead, but rescheduling it
// directly is still rejected only when terminal to preserve the legacy
// behaviour.
func CanReschedule(status string) error {
	if Terminal(status) {
		return &StateError{Current: status}
	}
	return nil
}

// CanComplete validates completion by booking code. Only pendiente
// reservations may complete.
func CanComplete(status string) error {
	if status != StatusPending {
		return &StateError{Current: status}
	}
	return nil
}

// CanRecover validates recovery. Only vencida reservations can be
// brought back to pendiente.
func CanRecover(status string) error {
	if status != StatusExpired {
		return &StateError{Current: status}
	}
	return nil
}

// ValidBusinessUpdate reports whether a business-initiated estado
// update targets an allowed value.
func ValidBusinessUpdate(status string) bool {
	switch status {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}
