package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidDate(t *testing.T) {
	assert.True(t, validDate("2026-08-31"))
	assert.False(t, validDate("2026-8-31"))
	assert.False(t, validDate("31-08-2026"))
	assert.False(t, validDate("2026-02-30"))
	assert.False(t, validDate(""))
}

func TestNormalizeHour(t *testing.T) {
	h, ok := normalizeHour("09:00")
	assert.True(t, ok)
	assert.Equal(t, "09:00:00", h)

	h, ok = normalizeHour("14:30:00")
	assert.True(t, ok)
	assert.Equal(t, "14:30:00", h)

	_, ok = normalizeHour("9:00")
	assert.False(t, ok)
	_, ok = normalizeHour("25:00")
	assert.False(t, ok)
	_, ok = normalizeHour("10:61")
	assert.False(t, ok)
}

func TestShortHour(t *testing.T) {
	assert.Equal(t, "08:00", shortHour("08:00:00"))
	assert.Equal(t, "08:00", shortHour("08:00"))
}

func TestSlotInGrid(t *testing.T) {
	assert.True(t, slotInGrid("08:00"))
	assert.True(t, slotInGrid("18:00"))
	assert.False(t, slotInGrid("19:00"))
	assert.False(t, slotInGrid("08:30"))
}
