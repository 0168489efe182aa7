package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"handmade_shop/internal/domain/models"
	"handmade_shop/internal/repository"
	"handmade_shop/internal/storage"
	redisapp "handmade_shop/internal/storage/redis"
)

const (
	accessTTL  = 24 * time.Hour
	refreshTTL = 168 * time.Hour
)

func NewMockClient() (*redisapp.Client, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	return &redisapp.Client{Client: db}, mock
}

func setupRepo() (*repository.RedisCredentialRepo, redismock.ClientMock) {
	db, mock := NewMockClient()
	return repository.NewRedisCredentialRepo(db, accessTTL, refreshTTL), mock
}

func TestRedisCredentialRepo_Save(t *testing.T) {
	ctx := context.Background()
	sid := "8d1f0c55-2b1e-4c2a-9a57-6f3c0f1d0c11"

	t.Run("both tokens in one transaction", func(t *testing.T) {
		repo, mock := setupRepo()

		mock.ExpectTxPipeline()
		mock.ExpectSet(accessKey(sid), "access", accessTTL).SetVal("OK")
		mock.ExpectSet(refreshKey(sid), "refresh", refreshTTL).SetVal("OK")
		mock.ExpectTxPipelineExec()

		err := repo.SaveCredentials(ctx, sid, models.TokenPair{AccessToken: "access", RefreshToken: "refresh"})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing access token is removed", func(t *testing.T) {
		repo, mock := setupRepo()

		mock.ExpectTxPipeline()
		mock.ExpectDel(accessKey(sid)).SetVal(1)
		mock.ExpectSet(refreshKey(sid), "refresh", refreshTTL).SetVal("OK")
		mock.ExpectTxPipelineExec()

		err := repo.SaveCredentials(ctx, sid, models.TokenPair{RefreshToken: "refresh"})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis error", func(t *testing.T) {
		repo, mock := setupRepo()

		mock.ExpectTxPipeline()
		mock.ExpectSet(accessKey(sid), "access", accessTTL).SetErr(redis.ErrClosed)

		err := repo.SaveCredentials(ctx, sid, models.TokenPair{AccessToken: "access", RefreshToken: "refresh"})
		assert.Error(t, err)
	})

	t.Run("empty session id", func(t *testing.T) {
		repo, _ := setupRepo()

		err := repo.SaveCredentials(ctx, "", models.TokenPair{AccessToken: "access"})
		assert.ErrorIs(t, err, storage.ErrEmptySessionID)
	})
}

func TestRedisCredentialRepo_Get(t *testing.T) {
	ctx := context.Background()
	sid := "sid-1"

	t.Run("pair exists", func(t *testing.T) {
		repo, mock := setupRepo()
		mock.ExpectMGet(accessKey(sid), refreshKey(sid)).SetVal([]interface{}{"access", "refresh"})

		pair, err := repo.GetCredentials(ctx, sid)
		require.NoError(t, err)
		assert.Equal(t, models.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, pair)
	})

	t.Run("access token expired", func(t *testing.T) {
		repo, mock := setupRepo()
		mock.ExpectMGet(accessKey(sid), refreshKey(sid)).SetVal([]interface{}{nil, "refresh"})

		pair, err := repo.GetCredentials(ctx, sid)
		require.NoError(t, err)
		assert.Empty(t, pair.AccessToken)
		assert.Equal(t, "refresh", pair.RefreshToken)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := setupRepo()
		mock.ExpectMGet(accessKey(sid), refreshKey(sid)).SetVal([]interface{}{nil, nil})

		_, err := repo.GetCredentials(ctx, sid)
		assert.ErrorIs(t, err, storage.ErrCredentialsNotFound)
	})

	t.Run("redis error", func(t *testing.T) {
		repo, mock := setupRepo()
		mock.ExpectMGet(accessKey(sid), refreshKey(sid)).SetErr(redis.ErrClosed)

		_, err := repo.GetCredentials(ctx, sid)
		assert.ErrorIs(t, err, redis.ErrClosed)
	})
}

func TestRedisCredentialRepo_Delete(t *testing.T) {
	ctx := context.Background()
	sid := "sid-1"

	t.Run("successful delete", func(t *testing.T) {
		repo, mock := setupRepo()
		mock.ExpectDel(accessKey(sid), refreshKey(sid)).SetVal(2)

		assert.NoError(t, repo.DeleteCredentials(ctx, sid))
	})

	t.Run("redis error", func(t *testing.T) {
		repo, mock := setupRepo()
		mock.ExpectDel(accessKey(sid), refreshKey(sid)).SetErr(redis.ErrClosed)

		assert.ErrorIs(t, repo.DeleteCredentials(ctx, sid), redis.ErrClosed)
	})
}

func TestMemoryCredentialRepo(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryCredentialRepo(accessTTL, refreshTTL)

	_, err := repo.GetCredentials(ctx, "sid")
	assert.ErrorIs(t, err, storage.ErrCredentialsNotFound)

	pair := models.TokenPair{AccessToken: "access", RefreshToken: "refresh"}
	require.NoError(t, repo.SaveCredentials(ctx, "sid", pair))

	got, err := repo.GetCredentials(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, pair, got)

	_, err = repo.GetCredentials(ctx, "other")
	assert.ErrorIs(t, err, storage.ErrCredentialsNotFound)

	require.NoError(t, repo.DeleteCredentials(ctx, "sid"))
	_, err = repo.GetCredentials(ctx, "sid")
	assert.ErrorIs(t, err, storage.ErrCredentialsNotFound)

	assert.ErrorIs(t, repo.SaveCredentials(ctx, "", pair), storage.ErrEmptySessionID)
}

func TestMemoryCredentialRepo_Expiry(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryCredentialRepo(20*time.Millisecond, time.Hour)

	require.NoError(t, repo.SaveCredentials(ctx, "sid", models.TokenPair{AccessToken: "access", RefreshToken: "refresh"}))
	time.Sleep(40 * time.Millisecond)

	got, err := repo.GetCredentials(ctx, "sid")
	require.NoError(t, err)
	assert.Empty(t, got.AccessToken)
	assert.Equal(t, "refresh", got.RefreshToken)
}

func TestSessionCredentials(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryCredentialRepo(accessTTL, refreshTTL)
	store := repository.NewSessionCredentials(repo, "sid")

	pair, err := store.Credentials(ctx)
	require.NoError(t, err)
	assert.True(t, pair.Empty())

	require.NoError(t, store.SaveCredentials(ctx, models.TokenPair{AccessToken: "a", RefreshToken: "r"}))

	pair, err = store.Credentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", pair.AccessToken)

	require.NoError(t, store.ClearCredentials(ctx))
	pair, err = store.Credentials(ctx)
	require.NoError(t, err)
	assert.True(t, pair.Empty())
}

func setupRedis(t *testing.T) *redisapp.Client {
	if testing.Short() {
		t.Skip("redis container is skipped in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := redisContainer.Host(ctx)
	require.NoError(t, err)

	port, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := redisapp.Connect(ctx, fmt.Sprintf("%s:%s", host, port.Port()), "", 0)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
		_ = redisContainer.Terminate(ctx)
	})

	return client
}

func TestRedisCredentialRepo_Integration(t *testing.T) {
	ctx := context.Background()
	client := setupRedis(t)
	repo := repository.NewRedisCredentialRepo(client, accessTTL, refreshTTL)

	pair := models.TokenPair{AccessToken: "access", RefreshToken: "refresh"}
	require.NoError(t, repo.SaveCredentials(ctx, "sid", pair))

	got, err := repo.GetCredentials(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, pair, got)

	ttl, err := client.TTL(ctx, refreshKey("sid")).Result()
	require.NoError(t, err)
	assert.InDelta(t, refreshTTL.Seconds(), ttl.Seconds(), 5)

	require.NoError(t, repo.DeleteCredentials(ctx, "sid"))
	_, err = repo.GetCredentials(ctx, "sid")
	assert.ErrorIs(t, err, storage.ErrCredentialsNotFound)
}

func accessKey(sid string) string {
	return "credentials:" + sid + ":access"
}

func refreshKey(sid string) string {
	return "credentials:" + sid + ":refresh"
}
