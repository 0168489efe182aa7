package repository

import (
	"context"
	"fmt"
	"time"

	"handmade_shop/internal/domain/models"
	"handmade_shop/internal/lib/jwt"
	"handmade_shop/internal/storage"
	redisapp "handmade_shop/internal/storage/redis"

	"github.com/redis/go-redis/v9"
)

type RedisCredentialRepo struct {
	Client     *redisapp.Client
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	now        func() time.Time
}

func NewRedisCredentialRepo(client *redisapp.Client, accessTTL, refreshTTL time.Duration) *RedisCredentialRepo {
	return &RedisCredentialRepo{
		Client:     client,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// SaveCredentials пишет оба токена одной транзакцией: читатель не увидит
// новый access-токен рядом со старым refresh-токеном.
func (r *RedisCredentialRepo) SaveCredentials(ctx context.Context, sessionID string, pair models.TokenPair) error {
	const op = "repository.RedisCredentialRepo.SaveCredentials"

	if sessionID == "" {
		return fmt.Errorf("%s: %w", op, storage.ErrEmptySessionID)
	}

	now := r.clock()
	accessTTL := jwt.TTL(pair.AccessToken, now, r.AccessTTL)
	refreshTTL := jwt.TTL(pair.RefreshToken, now, r.RefreshTTL)

	pipe := r.Client.TxPipeline()
	if pair.AccessToken != "" && accessTTL > 0 {
		pipe.Set(ctx, accessKey(sessionID), pair.AccessToken, accessTTL)
	} else {
		pipe.Del(ctx, accessKey(sessionID))
	}
	if pair.RefreshToken != "" && refreshTTL > 0 {
		pipe.Set(ctx, refreshKey(sessionID), pair.RefreshToken, refreshTTL)
	} else {
		pipe.Del(ctx, refreshKey(sessionID))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisCredentialRepo) GetCredentials(ctx context.Context, sessionID string) (models.TokenPair, error) {
	const op = "repository.RedisCredentialRepo.GetCredentials"

	if sessionID == "" {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, storage.ErrEmptySessionID)
	}

	vals, err := r.Client.MGet(ctx, accessKey(sessionID), refreshKey(sessionID)).Result()
	if err != nil && err != redis.Nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	var pair models.TokenPair
	if len(vals) == 2 {
		pair.AccessToken = asString(vals[0])
		pair.RefreshToken = asString(vals[1])
	}
	if pair.Empty() {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, storage.ErrCredentialsNotFound)
	}

	return pair, nil
}

func (r *RedisCredentialRepo) DeleteCredentials(ctx context.Context, sessionID string) error {
	const op = "repository.RedisCredentialRepo.DeleteCredentials"

	if sessionID == "" {
		return fmt.Errorf("%s: %w", op, storage.ErrEmptySessionID)
	}

	if err := r.Client.Del(ctx, accessKey(sessionID), refreshKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisCredentialRepo) clock() time.Time {
	if r.now == nil {
		return time.Now()
	}
	return r.now()
}

func accessKey(sessionID string) string {
	return "credentials:" + sessionID + ":access"
}

func refreshKey(sessionID string) string {
	return "credentials:" + sessionID + ":refresh"
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}
