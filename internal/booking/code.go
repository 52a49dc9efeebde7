// Package booking holds the pure domain rules of the reservation
// lifecycle: booking code generation, state transitions, the hourly
// slot grid, subscription quotas and the recovery surcharge. Nothing
// in this package touches the database; callers inject a clock, a
// random source or an existence oracle so the rules stay testable.
package booking

import (
	"context"
	"fmt"
	"time"
)

// CodeKind selects the letter embedded in a booking code: B for
// personal bookings, E for corporate ones.
type CodeKind byte

const (
	CodePersonal  CodeKind = 'B'
	CodeCorporate CodeKind = 'E'
)

// codeAttempts bounds the random phase of code generation. After this
// many collisions the generator falls back to a timestamp-derived
// suffix. The UNIQUE index on numero_reserva remains the authoritative
// guard either way.
const codeAttempts = 10

// ExistsFunc reports whether a booking code is already taken. It is
// usually backed by a SELECT inside the creation transaction.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// GenerateNumber produces a unique booking code of the form
// ANW-B1234567 or ANW-E1234567. It draws up to codeAttempts random
// 7-digit suffixes, checking each against the oracle, and falls back
// to the last seven digits of the current Unix-millisecond timestamp
// when every attempt collides. intn must behave like rand.Intn and now
// like time.Now; both are injected so tests can drive collisions.
func GenerateNumber(ctx context.Context, kind CodeKind, exists ExistsFunc, intn func(n int) int, now func() time.Time) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code := fmt.Sprintf("ANW-%c%07d", kind, intn(10000000))
		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	ms := now().UnixMilli()
	return fmt.Sprintf("ANW-%c%07d", kind, ms%10000000), nil
}
