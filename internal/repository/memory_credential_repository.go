package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"handmade_shop/internal/domain/models"
	"handmade_shop/internal/lib/jwt"
	"handmade_shop/internal/storage"
)

// MemoryCredentialRepo хранит токены в памяти процесса,
// когда redis не настроен.
type MemoryCredentialRepo struct {
	mu         sync.RWMutex
	cache      *cache.Cache
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewMemoryCredentialRepo(accessTTL, refreshTTL time.Duration) *MemoryCredentialRepo {
	return &MemoryCredentialRepo{
		cache:      cache.New(refreshTTL, 10*time.Minute),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (r *MemoryCredentialRepo) SaveCredentials(_ context.Context, sessionID string, pair models.TokenPair) error {
	const op = "repository.MemoryCredentialRepo.SaveCredentials"

	if sessionID == "" {
		return fmt.Errorf("%s: %w", op, storage.ErrEmptySessionID)
	}

	now := time.Now()
	accessTTL := jwt.TTL(pair.AccessToken, now, r.accessTTL)
	refreshTTL := jwt.TTL(pair.RefreshToken, now, r.refreshTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	if pair.AccessToken != "" && accessTTL > 0 {
		r.cache.Set(accessKey(sessionID), pair.AccessToken, accessTTL)
	} else {
		r.cache.Delete(accessKey(sessionID))
	}
	if pair.RefreshToken != "" && refreshTTL > 0 {
		r.cache.Set(refreshKey(sessionID), pair.RefreshToken, refreshTTL)
	} else {
		r.cache.Delete(refreshKey(sessionID))
	}

	return nil
}

func (r *MemoryCredentialRepo) GetCredentials(_ context.Context, sessionID string) (models.TokenPair, error) {
	const op = "repository.MemoryCredentialRepo.GetCredentials"

	if sessionID == "" {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, storage.ErrEmptySessionID)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var pair models.TokenPair
	if v, ok := r.cache.Get(accessKey(sessionID)); ok {
		pair.AccessToken = asString(v)
	}
	if v, ok := r.cache.Get(refreshKey(sessionID)); ok {
		pair.RefreshToken = asString(v)
	}
	if pair.Empty() {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, storage.ErrCredentialsNotFound)
	}

	return pair, nil
}

func (r *MemoryCredentialRepo) DeleteCredentials(_ context.Context, sessionID string) error {
	const op = "repository.MemoryCredentialRepo.DeleteCredentials"

	if sessionID == "" {
		return fmt.Errorf("%s: %w", op, storage.ErrEmptySessionID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache.Delete(accessKey(sessionID))
	r.cache.Delete(refreshKey(sessionID))

	return nil
}
