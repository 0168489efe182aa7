package jwt

import (
	"errors"
	"fmt"
	"time"

	"handmade_shop/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidTokenClaims = errors.New("invalid token claims")
)

// ParseUnverified читает claims токена без проверки подписи.
// Подпись проверяет бэкенд, шлюзу нужны только роль и срок жизни.
func ParseUnverified(tokenString string) (models.TokenMeta, error) {
	const op = "jwt.ParseUnverified"

	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return models.TokenMeta{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.TokenMeta{}, fmt.Errorf("%s: %w", op, ErrInvalidTokenClaims)
	}

	meta := models.TokenMeta{
		UserID: firstString(claims, "uid", "sub", "id", "userId"),
		Email:  firstString(claims, "email"),
		Role:   firstString(claims, "roleName", "role"),
	}

	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		meta.IssuedAt = iat.Unix()
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		meta.ExpiresAt = exp.Unix()
	}

	return meta, nil
}

// TTL возвращает оставшееся время жизни токена или fallback,
// если срок в токене не указан.
func TTL(tokenString string, now time.Time, fallback time.Duration) time.Duration {
	meta, err := ParseUnverified(tokenString)
	if err != nil || meta.ExpiresAt == 0 {
		return fallback
	}

	left := time.Unix(meta.ExpiresAt, 0).Sub(now)
	if left <= 0 {
		return 0
	}

	return left
}

func firstString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		switch v := claims[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}

	return ""
}
