package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanCancel(t *testing.T) {
	assert.NoError(t, CanCancel(StatusPending))
	assert.NoError(t, CanCancel(StatusExpired))

	err := CanCancel(StatusCompleted)
	var se *StateError
	assert.ErrorAs(t, err, &se)
	assert.Equal(t, StatusCompleted, se.Current)

	assert.Error(t, CanCancel(StatusCancelled))
}

func TestCanReschedule(t *testing.T) {
	assert.NoError(t, CanReschedule(StatusPending))
	assert.Error(t, CanReschedule(StatusCancelled))
	assert.Error(t, CanReschedule(StatusCompleted))
}

func TestCanComplete(t *testing.T) {
	assert.NoError(t, CanComplete(StatusPending))
	for _, s := range []string{StatusCompleted, StatusCancelled, StatusExpired} {
		err := CanComplete(s)
		var se *StateError
		assert.ErrorAs(t, err, &se)
		assert.Equal(t, s, se.Current)
	}
}

func TestCanRecover(t *testing.T) {
	assert.NoError(t, CanRecover(StatusExpired))
	assert.Error(t, CanRecover(StatusPending))
	assert.Error(t, CanRecover(StatusCompleted))
}

func TestValidBusinessUpdate(t *testing.T) {
	assert.True(t, ValidBusinessUpdate(StatusPending))
	assert.True(t, ValidBusinessUpdate(StatusCompleted))
	assert.True(t, ValidBusinessUpdate(StatusCancelled))
	assert.False(t, ValidBusinessUpdate(StatusExpired))
	assert.False(t, ValidBusinessUpdate("otro"))
}
