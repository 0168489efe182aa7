package suite

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"handmade_shop/internal/app"
	"handmade_shop/internal/config"
)

type Suite struct {
	*testing.T
	Cfg     *config.Config
	Backend *Backend
	Gateway *httptest.Server
	Browser *http.Client
}

// Reply хранит разобранный ответ шлюза.
type Reply struct {
	Status   int             `json:"-"`
	Header   http.Header     `json:"-"`
	Data     json.RawMessage `json:"data"`
	Error    string          `json:"error"`
	Details  string          `json:"details"`
	Redirect string          `json:"redirect"`
}

func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()
	t.Parallel()

	cfg := config.MustLoadPath(configPath())

	backend := NewBackend(t)

	cfg.Backend.BaseURL = backend.URL
	cfg.Backend.Timeout = 5 * time.Second
	cfg.Redis.RedisAddr = ""

	application := app.New(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg)

	gateway := httptest.NewServer(application.HTTPServer)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	ctx, cancelCtx := context.WithTimeout(context.Background(), time.Minute)

	t.Cleanup(func() {
		t.Helper()
		cancelCtx()
		gateway.Close()
	})

	return ctx, &Suite{
		T:       t,
		Cfg:     cfg,
		Backend: backend,
		Gateway: gateway,
		Browser: &http.Client{Jar: jar, Timeout: 10 * time.Second},
	}
}

// Do отправляет запрос в шлюз от имени браузера с его cookie.
func (s *Suite) Do(ctx context.Context, method, path string, body any) Reply {
	s.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s, err)
		reader = strings.NewReader(string(raw))
	}

	req, err := http.NewRequestWithContext(ctx, method, s.Gateway.URL+path, reader)
	require.NoError(s, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.Browser.Do(req)
	require.NoError(s, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(s, err)

	reply := Reply{Status: resp.StatusCode, Header: resp.Header}
	if len(raw) > 0 {
		require.NoError(s, json.Unmarshal(raw, &reply), string(raw))
	}

	return reply
}

func configPath() string {
	const key = "CONFIG_PATH"

	if v := os.Getenv(key); v != "" {
		return v
	}

	return "../config/local.yaml"
}
