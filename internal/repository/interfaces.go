package repository

import (
	"context"

	"handmade_shop/internal/domain/models"
)

// CredentialRepository хранит пары токенов по идентификатору сессии браузера.
type CredentialRepository interface {
	GetCredentials(ctx context.Context, sessionID string) (models.TokenPair, error)
	SaveCredentials(ctx context.Context, sessionID string, pair models.TokenPair) error
	DeleteCredentials(ctx context.Context, sessionID string) error
}
