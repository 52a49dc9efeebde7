// Package repository implements the persistence layer over MySQL.
// This file defines sentinel error values shared across the
// repositories so handlers can map failure scenarios to HTTP status
// codes without inspecting SQL errors.
package repository

import (
	"errors"
	"strings"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot proceed because of
// conflicting state. Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned by registration when the correo is
// already taken.
var ErrEmailExists = errors.New("email already registered")

// ErrUsernameExists is returned by registration when the nombre de
// usuario is already taken.
var ErrUsernameExists = errors.New("username already registered")

// ErrDuplicateRating is returned when a reservation already has a
// rating.
var ErrDuplicateRating = errors.New("reservation already rated")

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
