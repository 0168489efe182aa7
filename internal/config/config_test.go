package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestMustLoadPath_Defaults(t *testing.T) {
	path := writeConfig(t, `
env: dev
session:
  secret: "s3cr3t"
`)

	cfg := MustLoadPath(path)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, "http://localhost:3001/api", cfg.Backend.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "/auth/refresh-token", cfg.Backend.RefreshPath)
	assert.Equal(t, 24*time.Hour, cfg.Session.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Session.RefreshTTL)
	assert.Equal(t, "/login", cfg.Session.LoginPath)
	assert.Equal(t, float64(20000), cfg.Checkout.ShippingFee)
	assert.False(t, cfg.UseRedis())
}

func TestMustLoadPath_Overrides(t *testing.T) {
	path := writeConfig(t, `
env: prod
http:
  port: "9090"
backend:
  base_url: "https://api.example.com"
  timeout: 3s
session:
  secret: "s3cr3t"
  access_ttl: 1h
redis:
  redis_addr: "localhost:6379"
  redis_db: 2
`)

	cfg := MustLoadPath(path)

	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, "https://api.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, time.Hour, cfg.Session.AccessTTL)
	assert.True(t, cfg.UseRedis())
	assert.Equal(t, 2, cfg.Redis.RedisDB)
}

func TestMustLoadPath_MissingFile(t *testing.T) {
	assert.Panics(t, func() {
		MustLoadPath(filepath.Join(t.TempDir(), "nope.yaml"))
	})
}

func TestMustLoadPath_MissingSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "placeholder")
	require.NoError(t, os.Unsetenv("SESSION_SECRET"))

	path := writeConfig(t, "env: local\n")

	assert.Panics(t, func() {
		MustLoadPath(path)
	})
}
