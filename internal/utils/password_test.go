package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordFormat(t *testing.T) {
	h, err := HashPassword("secreto123", 1000)
	require.NoError(t, err)

	parts := strings.Split(h, "$")
	require.Len(t, parts, 4)
	assert.Equal(t, "pbkdf2_sha256", parts[0])
	assert.Equal(t, "1000", parts[1])
	assert.Len(t, parts[2], 12)
	assert.True(t, IsLegacyHash(h))
}

func TestVerifyPasswordLegacyRoundTrip(t *testing.T) {
	h, err := HashPassword("secreto123", 1000)
	require.NoError(t, err)

	assert.True(t, VerifyPassword(h, "secreto123"))
	assert.False(t, VerifyPassword(h, "otro"))
}

func TestVerifyPasswordKnownDjangoHash(t *testing.T) {
	// Derived with Django's hasher: pbkdf2_sha256, 1 iteration,
	// salt "abcdefghijkl", password "password".
	stored := "pbkdf2_sha256$1$abcdefghijkl$yoqrbscKyzLl4fAGnuPIhUFdzA12tcCZ3+66TZBdusA="
	assert.True(t, VerifyPassword(stored, "password"))
	assert.False(t, VerifyPassword(stored, "Password"))
}

func TestVerifyPasswordBcryptFallback(t *testing.T) {
	stored, err := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.False(t, IsLegacyHash(string(stored)))
	assert.True(t, VerifyPassword(string(stored), "secreto123"))
	assert.False(t, VerifyPassword(string(stored), "secreto124"))
}

func TestVerifyPasswordGarbage(t *testing.T) {
	assert.False(t, VerifyPassword("", "x"))
	assert.False(t, VerifyPassword("pbkdf2_sha256$abc$salt$hash", "x"))
	assert.False(t, VerifyPassword("pbkdf2_sha256$1$salt$!!notbase64!!", "x"))
}
