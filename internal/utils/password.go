package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

// Credentials migrated from the Django deployment are stored as
// "pbkdf2_sha256$iterations$salt$hash" with a base64 32-byte derived
// key. Newer rows may carry bcrypt hashes instead, so verification
// inspects the stored value and picks the matching scheme. New
// passwords are written in the Django format to keep the tables
// portable back to the old system.

const (
	djangoPrefix  = "pbkdf2_sha256"
	djangoKeyLen  = 32
	djangoSaltLen = 12
)

// saltAlphabet mirrors the character set Django uses for salts.
const saltAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// IsLegacyHash reports whether stored is a Django pbkdf2_sha256 hash.
func IsLegacyHash(stored string) bool {
	parts := strings.Split(stored, "$")
	return len(parts) == 4 && parts[0] == djangoPrefix
}

// HashPassword derives a Django-compatible pbkdf2_sha256 hash with a
// fresh random salt and the given iteration count.
func HashPassword(plain string, iterations int) (string, error) {
	salt, err := randomSalt(djangoSaltLen)
	if err != nil {
		return "", err
	}
	dk := pbkdf2.Key([]byte(plain), []byte(salt), iterations, djangoKeyLen, sha256.New)
	return fmt.Sprintf("%s$%d$%s$%s",
		djangoPrefix, iterations, salt, base64.StdEncoding.EncodeToString(dk)), nil
}

// VerifyPassword compares plain against stored, handling both the
// Django pbkdf2 format and bcrypt.
func VerifyPassword(stored, plain string) bool {
	if IsLegacyHash(stored) {
		return verifyLegacy(stored, plain)
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
}

func verifyLegacy(stored, plain string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 4 {
		return false
	}
	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return false
	}
	want, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return false
	}
	got := pbkdf2.Key([]byte(plain), []byte(parts[2]), iterations, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func randomSalt(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = saltAlphabet[int(b)%len(saltAlphabet)]
	}
	return string(out), nil
}
