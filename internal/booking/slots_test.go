package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 30, 0, 0, time.UTC)
}

func TestBuildSlotsFutureDate(t *testing.T) {
	now := date(2025, time.March, 10, 15)
	slots := BuildSlots(date(2025, time.March, 12, 0), map[string]bool{"10:00": true}, now)
	require.Len(t, slots, 11)

	assert.Equal(t, "08:00", slots[0].Hour)
	assert.True(t, slots[0].Available)
	assert.False(t, slots[0].Past)

	assert.Equal(t, "10:00", slots[2].Hour)
	assert.True(t, slots[2].Occupied)
	assert.False(t, slots[2].Available)

	assert.Equal(t, "18:00", slots[10].Hour)
}

func TestBuildSlotsTodayPastSuppression(t *testing.T) {
	now := date(2025, time.March, 10, 11)
	slots := BuildSlots(date(2025, time.March, 10, 0), nil, now)

	for _, s := range slots[:4] { // 08:00..11:00 inclusive of current hour
		assert.True(t, s.Past, s.Hour)
		assert.False(t, s.Available, s.Hour)
	}
	assert.Equal(t, "12:00", slots[4].Hour)
	assert.False(t, slots[4].Past)
	assert.True(t, slots[4].Available)
}

func TestBuildSlotsOccupiedAndPast(t *testing.T) {
	now := date(2025, time.March, 10, 9)
	slots := BuildSlots(date(2025, time.March, 10, 0), map[string]bool{"08:00": true, "14:00": true}, now)

	assert.True(t, slots[0].Occupied)
	assert.True(t, slots[0].Past)
	assert.False(t, slots[0].Available)

	assert.True(t, slots[6].Occupied)
	assert.False(t, slots[6].Past)
	assert.False(t, slots[6].Available)
}

func TestHoursCopy(t *testing.T) {
	h := Hours()
	require.Len(t, h, 11)
	h[0] = "mutated"
	assert.Equal(t, "08:00", Hours()[0])
}
