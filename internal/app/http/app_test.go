package httpapp_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapp "handmade_shop/internal/app/http"
	"handmade_shop/internal/config"
	"handmade_shop/internal/domain/models"
	"handmade_shop/internal/lib/apiclient"
	httprouters "handmade_shop/internal/transport/http"
	"handmade_shop/internal/transport/http/dto/response"
)

type stubAuth struct {
	httprouters.AuthService

	mu     sync.Mutex
	role   string
	logged map[string]string
}

func (s *stubAuth) Login(_ context.Context, sessionID, email, _ string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logged[sessionID] = s.role
	return &models.User{ID: "7", Email: email, RoleName: s.role}, nil
}

func (s *stubAuth) Profile(_ context.Context, sessionID string) (*models.User, error) {
	return &models.User{ID: "7", RoleName: s.roleOf(sessionID)}, nil
}

func (s *stubAuth) Session(_ context.Context, sessionID string) (models.TokenMeta, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	role, ok := s.logged[sessionID]
	if !ok {
		return models.TokenMeta{}, false, nil
	}
	return models.TokenMeta{UserID: "7", Role: role}, true, nil
}

func (s *stubAuth) roleOf(sessionID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.logged[sessionID]
}

type stubClients struct {
	mu   sync.Mutex
	sids map[string]int
}

func (s *stubClients) Client(sessionID string) (*apiclient.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sids[sessionID]++
	return nil, nil
}

func (s *stubClients) sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sids)
}

type gateway struct {
	url     string
	http    *http.Client
	auth    *stubAuth
	clients *stubClients
}

func newGateway(t *testing.T, role string, opts ...func(*httpapp.Server)) *gateway {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	auth := &stubAuth{role: role, logged: map[string]string{}}
	clients := &stubClients{sids: map[string]int{}}

	routers := httprouters.NewRouter(log, "storefront_session", "/login", httprouters.Services{Auth: auth})
	srv := httpapp.New(log,
		config.HTTPConfig{Host: "127.0.0.1", Port: "0", ShutdownTimeout: time.Second},
		config.SessionConfig{Secret: "test-secret", RefreshTTL: time.Hour},
		clients,
		routers,
	)
	for _, opt := range opts {
		opt(srv)
	}
	srv.BuildRouters()

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &gateway{
		url:     ts.URL,
		http:    &http.Client{Jar: jar, Timeout: 5 * time.Second},
		auth:    auth,
		clients: clients,
	}
}

func (g *gateway) do(t *testing.T, method, path, body string) (*http.Response, response.ErrorResponse) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, g.url+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.http.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var errResp response.ErrorResponse
	_ = json.Unmarshal(raw, &errResp)

	return resp, errResp
}

const loginBody = `{"email":"buyer@example.com","password":"secret1"}`

func TestGuards_Customer(t *testing.T) {
	g := newGateway(t, models.RoleCustomer)

	resp, body := g.do(t, http.MethodGet, "/api/v1/auth/profile", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "/login?redirect=%2Fapi%2Fv1%2Fauth%2Fprofile", resp.Header.Get("Location"))
	assert.Equal(t, "You are not logged in", body.Details)

	resp, _ = g.do(t, http.MethodPost, "/api/v1/auth/login", loginBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = g.do(t, http.MethodGet, "/api/v1/auth/profile", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = g.do(t, http.MethodPost, "/api/v1/auth/login", loginBody)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "already_authenticated", body.Error)
	assert.Equal(t, "/", body.Redirect)

	resp, body = g.do(t, http.MethodGet, "/api/v1/admin/product-custom", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "forbidden", body.Error)

	// все запросы браузера пришли с одним идентификатором сессии
	assert.Equal(t, 1, g.clients.sessions())
}

func TestGuards_Admin(t *testing.T) {
	g := newGateway(t, models.RoleAdmin)

	resp, _ := g.do(t, http.MethodPost, "/api/v1/auth/login", loginBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := g.do(t, http.MethodPost, "/api/v1/auth/register", `{}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "/dashboard", body.Redirect)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func TestSessionCookie(t *testing.T) {
	g := newGateway(t, models.RoleCustomer)

	resp, _ := g.do(t, http.MethodPost, "/api/v1/auth/login", loginBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "storefront_session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, int(time.Hour.Seconds()), cookie.MaxAge)
	assert.NotContains(t, cookie.Value, "secret1")
}

func TestHealth(t *testing.T) {
	g := newGateway(t, models.RoleCustomer)

	resp, _ := g.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	g = newGateway(t, models.RoleCustomer, func(s *httpapp.Server) {
		s.AddHealthCheck("redis", func(context.Context) error {
			return errors.New("connection refused")
		})
	})

	resp, _ = g.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
