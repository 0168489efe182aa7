package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"handmade_shop/internal/domain/models"
	"handmade_shop/internal/lib/logger/sl"
)

const (
	DefaultTimeout     = 10 * time.Second
	DefaultRefreshPath = "/auth/refresh-token"

	maxBodySize = 4 << 20
)

// CredentialStore хранит пару токенов одной сессии.
type CredentialStore interface {
	Credentials(ctx context.Context) (models.TokenPair, error)
	SaveCredentials(ctx context.Context, pair models.TokenPair) error
	ClearCredentials(ctx context.Context) error
}

// SessionTerminator закрывает сессию пользователя после неудачного обновления токенов.
type SessionTerminator interface {
	TerminateSession(ctx context.Context)
}

type TerminatorFunc func(ctx context.Context)

func (f TerminatorFunc) TerminateSession(ctx context.Context) {
	f(ctx)
}

type Client struct {
	log         *slog.Logger
	baseURL     string
	refreshPath string
	timeout     time.Duration
	httpClient  *http.Client
	store       CredentialStore
	notifier    Notifier
	terminator  SessionTerminator
	observe     func(err error)

	mu         sync.Mutex
	refreshing bool
	pending    []chan error

	// продлевает запись клиента в Registry на время обновления
	touch func()
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithRefreshPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.refreshPath = ensureLeadingSlash(path)
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(c *Client) {
		if n != nil {
			c.notifier = n
		}
	}
}

func WithTerminator(t SessionTerminator) Option {
	return func(c *Client) {
		c.terminator = t
	}
}

// WithRefreshObserver вызывается после каждого обновления токенов с его результатом.
func WithRefreshObserver(fn func(err error)) Option {
	return func(c *Client) {
		c.observe = fn
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func New(log *slog.Logger, baseURL string, store CredentialStore, opts ...Option) (*Client, error) {
	const op = "apiclient.New"

	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%s: base url is empty", op)
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if store == nil {
		return nil, fmt.Errorf("%s: credential store is nil", op)
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Client{
		log:         log,
		baseURL:     baseURL,
		refreshPath: DefaultRefreshPath,
		timeout:     DefaultTimeout,
		store:       store,
		notifier:    nopNotifier{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}

	return c, nil
}

type request struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   []byte
	// retried выставляется перед повтором после обновления токенов
	retried  bool
	sentWith string
}

type RequestOption func(*request)

func WithQuery(key, value string) RequestOption {
	return func(r *request) {
		if r.query == nil {
			r.query = url.Values{}
		}
		r.query.Set(key, value)
	}
}

// WithQueryValues добавляет к запросу все значения q.
func WithQueryValues(q url.Values) RequestOption {
	return func(r *request) {
		if r.query == nil {
			r.query = url.Values{}
		}
		for k, vs := range q {
			for _, v := range vs {
				r.query.Add(k, v)
			}
		}
	}
}

func WithHeader(key, value string) RequestOption {
	return func(r *request) {
		if r.header == nil {
			r.header = http.Header{}
		}
		r.header.Set(key, value)
	}
}

func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, opts...)
}

func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, opts...)
}

func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body, opts...)
}

// Delete принимает тело: корзина удаляет позицию по {cartId, productId}.
func (c *Client) Delete(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, body, opts...)
}

func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Response, error) {
	const op = "apiclient.Do"

	r := &request{method: method, path: ensureLeadingSlash(path)}
	for _, opt := range opts {
		opt(r)
	}

	payload, err := marshalBody(body)
	if err != nil {
		herr := &HTTPError{Op: op, Kind: KindClient, Method: method, Path: r.path, Err: err}
		c.notify(ctx, herr)
		return nil, herr
	}
	r.body = payload

	return c.do(ctx, r)
}

func (c *Client) do(ctx context.Context, r *request) (*Response, error) {
	const op = "apiclient.do"

	log := c.log.With(
		slog.String("op", op),
		slog.String("method", r.method),
		slog.String("path", r.path),
	)

	resp, err := c.send(ctx, r)
	if err != nil {
		log.Debug("request failed", sl.Err(err))
		c.notify(ctx, err)
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if r.retried {
			herr := statusError(op, r, resp)
			log.Warn("unauthorized after refresh, closing session")
			c.teardown(ctx)
			return nil, herr
		}

		r.retried = true
		log.Debug("unauthorized, waiting for refreshed credentials")
		if err := c.awaitRefresh(ctx, r.sentWith); err != nil {
			return nil, err
		}

		return c.do(ctx, r)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		herr := statusError(op, r, resp)
		log.Debug("backend rejected request", slog.Int("status", resp.StatusCode))
		c.notify(ctx, herr)
		return nil, herr
	}

	return resp, nil
}

func (c *Client) send(ctx context.Context, r *request) (*Response, error) {
	const op = "apiclient.send"

	pair, err := c.store.Credentials(ctx)
	if err != nil {
		return nil, &HTTPError{Op: op, Kind: KindClient, Method: r.method, Path: r.path, Err: err}
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		sep := "?"
		if strings.Contains(r.path, "?") {
			sep = "&"
		}
		target += sep + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, &HTTPError{Op: op, Kind: KindClient, Method: r.method, Path: r.path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range r.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	r.sentWith = pair.AccessToken
	if pair.AccessToken != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	}

	return c.roundTrip(op, req, r)
}

func (c *Client) roundTrip(op string, req *http.Request, r *request) (*Response, error) {
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &HTTPError{Op: op, Kind: KindNetwork, Method: r.method, Path: r.path, Err: err}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodySize))
	if err != nil {
		return nil, &HTTPError{Op: op, Kind: KindNetwork, Method: r.method, Path: r.path, StatusCode: httpResp.StatusCode, Err: err}
	}

	return &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: raw}, nil
}

// awaitRefresh либо запускает обновление токенов, либо встаёт в очередь
// за уже идущим. Возвращает nil, когда запрос можно повторить.
func (c *Client) awaitRefresh(ctx context.Context, sentWith string) error {
	const op = "apiclient.awaitRefresh"

	c.mu.Lock()
	if c.refreshing {
		wait := make(chan error, 1)
		c.pending = append(c.pending, wait)
		c.mu.Unlock()

		select {
		case err := <-wait:
			return err
		case <-ctx.Done():
			return &HTTPError{Op: op, Kind: KindNetwork, Err: ctx.Err()}
		}
	}

	if current, err := c.store.Credentials(ctx); err == nil {
		switch {
		case current.AccessToken != "" && current.AccessToken != sentWith:
			// пара уже обновлена после отправки запроса
			c.mu.Unlock()
			return nil
		case current.Empty() && sentWith != "":
			// сессию уже закрыли, пока запрос был в пути
			c.mu.Unlock()
			return &HTTPError{Op: op, Kind: KindRefreshFailed, Err: ErrNoRefreshToken}
		}
	}

	c.refreshing = true
	c.mu.Unlock()

	if c.touch != nil {
		c.touch()
	}

	refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	err := c.refresh(refreshCtx)
	if err != nil {
		c.teardown(refreshCtx)
	}
	if c.observe != nil {
		c.observe(err)
	}

	c.settle(err)

	return err
}

func (c *Client) settle(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.refreshing = false

	for _, wait := range c.pending {
		wait <- err
	}
	c.pending = nil
}

func (c *Client) refresh(ctx context.Context) error {
	const op = "apiclient.refresh"

	log := c.log.With(slog.String("op", op))

	current, err := c.store.Credentials(ctx)
	if err != nil {
		log.Error("failed to read credentials", sl.Err(err))
		return &HTTPError{Op: op, Kind: KindRefreshFailed, Err: err}
	}
	if current.RefreshToken == "" {
		log.Info("no refresh token stored")
		return &HTTPError{Op: op, Kind: KindRefreshFailed, Err: ErrNoRefreshToken}
	}

	payload, err := json.Marshal(map[string]string{"refreshToken": current.RefreshToken})
	if err != nil {
		return &HTTPError{Op: op, Kind: KindRefreshFailed, Err: err}
	}

	r := &request{method: http.MethodPost, path: c.refreshPath}
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, bytes.NewReader(payload))
	if err != nil {
		return &HTTPError{Op: op, Kind: KindRefreshFailed, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.roundTrip(op, req, r)
	if err != nil {
		log.Warn("refresh request failed", sl.Err(err))
		return &HTTPError{Op: op, Kind: KindRefreshFailed, Method: r.method, Path: r.path, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn("refresh rejected", slog.Int("status", resp.StatusCode))
		return &HTTPError{
			Op:         op,
			Kind:       KindRefreshFailed,
			Method:     r.method,
			Path:       r.path,
			StatusCode: resp.StatusCode,
			Message:    extractMessage(resp.Body),
			Body:       resp.Body,
			Err:        ErrUnauthorized,
		}
	}

	var pair models.TokenPair
	if err := resp.DecodeData(&pair); err != nil {
		return &HTTPError{Op: op, Kind: KindRefreshFailed, Method: r.method, Path: r.path, Err: err}
	}
	if pair.AccessToken == "" {
		return &HTTPError{Op: op, Kind: KindRefreshFailed, Method: r.method, Path: r.path, Err: ErrMalformedTokens}
	}
	if pair.RefreshToken == "" {
		pair.RefreshToken = current.RefreshToken
	}

	if err := c.store.SaveCredentials(ctx, pair); err != nil {
		log.Error("failed to save refreshed credentials", sl.Err(err))
		return &HTTPError{Op: op, Kind: KindRefreshFailed, Err: err}
	}

	log.Info("credentials refreshed")

	return nil
}

func (c *Client) teardown(ctx context.Context) {
	if err := c.store.ClearCredentials(ctx); err != nil {
		c.log.Error("failed to clear credentials", slog.String("op", "apiclient.teardown"), sl.Err(err))
	}
	if c.terminator != nil {
		c.terminator.TerminateSession(ctx)
	}
}

func (c *Client) notify(ctx context.Context, err error) {
	if !shouldNotify(err) {
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	c.notifier.Notify(ctx, Classify(err))
}

func marshalBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	default:
		return json.Marshal(v)
	}
}

func ensureLeadingSlash(p string) string {
	if p == "" {
		return "/"
	}
	if strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}
