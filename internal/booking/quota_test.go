package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFreshCounter(t *testing.T) {
	now := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	q := Quota{Limit: 4, Used: 2, LastReset: now.Add(-29 * 24 * time.Hour)}
	got, reset := Normalize(q, now)
	assert.False(t, reset)
	assert.Equal(t, q, got)
}

func TestNormalizeStaleCounter(t *testing.T) {
	now := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	q := Quota{Limit: 4, Used: 4, LastReset: now.Add(-31 * 24 * time.Hour)}
	got, reset := Normalize(q, now)
	assert.True(t, reset)
	assert.Equal(t, 0, got.Used)
	assert.Equal(t, now, got.LastReset)

	again, reset := Normalize(got, now)
	assert.False(t, reset)
	assert.Equal(t, got, again)
}

func TestRemaining(t *testing.T) {
	assert.Equal(t, Unlimited, Quota{Limit: 0, Used: 99}.Remaining())
	assert.Equal(t, 2, Quota{Limit: 4, Used: 2}.Remaining())
	assert.Equal(t, 0, Quota{Limit: 4, Used: 4}.Remaining())
	assert.Equal(t, 0, Quota{Limit: 4, Used: 9}.Remaining())
}

func TestExhausted(t *testing.T) {
	assert.False(t, Quota{Limit: 0, Used: 100}.Exhausted())
	assert.False(t, Quota{Limit: 4, Used: 3}.Exhausted())
	assert.True(t, Quota{Limit: 4, Used: 4}.Exhausted())
}

func TestSurcharge(t *testing.T) {
	assert.InDelta(t, 25.0, RecoverySurcharge(100), 1e-9)
	assert.InDelta(t, 0.0, RecoverySurcharge(0), 1e-9)
}

func TestApplyDiscount(t *testing.T) {
	assert.InDelta(t, 80.0, ApplyDiscount(100, 20), 1e-9)
	assert.InDelta(t, 100.0, ApplyDiscount(100, 0), 1e-9)
}
