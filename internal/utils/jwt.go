package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken is a signed HS256 JWT plus its expiry.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// Claims is what the backend embeds in every token: the principal's
// id, correo and rol. Legacy clients read these exact keys.
type Claims struct {
	ID    uint64
	Email string
	Role  string
}

var errBadToken = errors.New("invalid token")

// NewAccessToken signs an HS256 JWT for a principal with the given TTL
// in hours. Claims carry id, email and rol alongside exp/iat.
func NewAccessToken(secret string, c Claims, ttlHours int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlHours) * time.Hour)
	claims := jwt.MapClaims{
		"id":    c.ID,
		"email": c.Email,
		"rol":   c.Role,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken validates signature and expiry and extracts the
// principal claims.
func ParseAccessToken(secret, token string) (Claims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errBadToken
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, errBadToken
	}
	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errBadToken
	}
	id, ok := mc["id"].(float64)
	if !ok || id <= 0 {
		return Claims{}, errBadToken
	}
	email, _ := mc["email"].(string)
	role, _ := mc["rol"].(string)
	if role == "" {
		return Claims{}, errBadToken
	}
	return Claims{ID: uint64(id), Email: email, Role: role}, nil
}
