package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextLockoutStep(t *testing.T) {
	cases := []struct {
		attempts int
		warned   bool
		want     LockoutAction
	}{
		{1, false, LockoutNone},
		{2, false, LockoutNone},
		{3, false, LockoutTemporary},
		{4, false, LockoutTemporary},
		{3, true, LockoutNone},
		{4, true, LockoutNone},
		{5, true, LockoutNone},
		{6, true, LockoutDeactivate},
		{7, true, LockoutDeactivate},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NextLockoutStep(c.attempts, c.warned),
			"attempts=%d warned=%v", c.attempts, c.warned)
	}
}

func TestAttemptsLeft(t *testing.T) {
	cases := []struct {
		attempts int
		warned   bool
		want     int
	}{
		{0, false, 3},
		{1, false, 2},
		{2, false, 1},
		{3, false, 0},
		{4, true, 2},
		{5, true, 1},
		{6, true, 0},
		{9, true, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, AttemptsLeft(c.attempts, c.warned),
			"attempts=%d warned=%v", c.attempts, c.warned)
	}
}
