package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateNumberFirstTry(t *testing.T) {
	exists := func(ctx context.Context, code string) (bool, error) { return false, nil }
	intn := func(n int) int { return 1234567 }
	code, err := GenerateNumber(context.Background(), CodePersonal, exists, intn, time.Now)
	require.NoError(t, err)
	assert.Equal(t, "ANW-B1234567", code)
}

func TestGenerateNumberCorporateLetter(t *testing.T) {
	exists := func(ctx context.Context, code string) (bool, error) { return false, nil }
	intn := func(n int) int { return 42 }
	code, err := GenerateNumber(context.Background(), CodeCorporate, exists, intn, time.Now)
	require.NoError(t, err)
	assert.Equal(t, "ANW-E0000042", code)
}

func TestGenerateNumberSkipsCollisions(t *testing.T) {
	calls := 0
	exists := func(ctx context.Context, code string) (bool, error) {
		calls++
		return calls < 3, nil
	}
	seq := []int{1, 2, 7654321}
	i := 0
	intn := func(n int) int { v := seq[i%len(seq)]; i++; return v }
	code, err := GenerateNumber(context.Background(), CodePersonal, exists, intn, time.Now)
	require.NoError(t, err)
	assert.Equal(t, "ANW-B7654321", code)
	assert.Equal(t, 3, calls)
}

func TestGenerateNumberTimestampFallback(t *testing.T) {
	exists := func(ctx context.Context, code string) (bool, error) { return true, nil }
	intn := func(n int) int { return 0 }
	now := func() time.Time { return time.UnixMilli(1712345678901) }
	code, err := GenerateNumber(context.Background(), CodePersonal, exists, intn, now)
	require.NoError(t, err)
	assert.Equal(t, "ANW-B5678901", code)
}

func TestGenerateNumberOracleError(t *testing.T) {
	boom := errors.New("db down")
	exists := func(ctx context.Context, code string) (bool, error) { return false, boom }
	intn := func(n int) int { return 0 }
	_, err := GenerateNumber(context.Background(), CodePersonal, exists, intn, time.Now)
	assert.ErrorIs(t, err, boom)
}
