package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test"))
	require.NoError(t, err)

	return token
}

func TestParseUnverified(t *testing.T) {
	now := time.Now()

	token := signed(t, jwt.MapClaims{
		"sub":      "42",
		"email":    "buyer@example.com",
		"roleName": "Admin",
		"iat":      now.Unix(),
		"exp":      now.Add(time.Hour).Unix(),
	})

	meta, err := ParseUnverified(token)
	require.NoError(t, err)

	assert.Equal(t, "42", meta.UserID)
	assert.Equal(t, "buyer@example.com", meta.Email)
	assert.Equal(t, "Admin", meta.Role)
	assert.Equal(t, now.Unix(), meta.IssuedAt)
	assert.Equal(t, now.Add(time.Hour).Unix(), meta.ExpiresAt)
}

func TestParseUnverified_NumericID(t *testing.T) {
	token := signed(t, jwt.MapClaims{"id": float64(7), "role": "Customer"})

	meta, err := ParseUnverified(token)
	require.NoError(t, err)

	assert.Equal(t, "7", meta.UserID)
	assert.Equal(t, "Customer", meta.Role)
}

func TestParseUnverified_Garbage(t *testing.T) {
	_, err := ParseUnverified("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTTL(t *testing.T) {
	now := time.Now()

	t.Run("from exp claim", func(t *testing.T) {
		token := signed(t, jwt.MapClaims{"exp": now.Add(30 * time.Minute).Unix()})

		ttl := TTL(token, now, time.Hour)
		assert.InDelta(t, (30 * time.Minute).Seconds(), ttl.Seconds(), 1)
	})

	t.Run("expired", func(t *testing.T) {
		token := signed(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()})

		assert.Equal(t, time.Duration(0), TTL(token, now, time.Hour))
	})

	t.Run("opaque token falls back", func(t *testing.T) {
		assert.Equal(t, time.Hour, TTL("opaque-access", now, time.Hour))
	})
}
