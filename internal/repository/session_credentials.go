package repository

import (
	"context"
	"errors"

	"handmade_shop/internal/domain/models"
	"handmade_shop/internal/storage"
)

// SessionCredentials привязывает репозиторий к одной сессии браузера.
type SessionCredentials struct {
	repo      CredentialRepository
	sessionID string
}

func NewSessionCredentials(repo CredentialRepository, sessionID string) *SessionCredentials {
	return &SessionCredentials{repo: repo, sessionID: sessionID}
}

// Credentials отдаёт пустую пару для анонимной сессии.
func (s *SessionCredentials) Credentials(ctx context.Context) (models.TokenPair, error) {
	pair, err := s.repo.GetCredentials(ctx, s.sessionID)
	if errors.Is(err, storage.ErrCredentialsNotFound) {
		return models.TokenPair{}, nil
	}

	return pair, err
}

func (s *SessionCredentials) SaveCredentials(ctx context.Context, pair models.TokenPair) error {
	return s.repo.SaveCredentials(ctx, s.sessionID, pair)
}

func (s *SessionCredentials) ClearCredentials(ctx context.Context) error {
	return s.repo.DeleteCredentials(ctx, s.sessionID)
}
