package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handmade_shop/internal/domain/models"
	"handmade_shop/internal/lib/apiclient"
	"handmade_shop/internal/repository"
	"handmade_shop/internal/transport/http/dto"
)

type recordedCall struct {
	Method string
	Path   string
	Body   map[string]any
}

func newCartService(t *testing.T, handler http.HandlerFunc) (*CartService, func() []recordedCall) {
	t.Helper()

	var (
		mu    sync.Mutex
		calls []recordedCall
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		mu.Lock()
		calls = append(calls, recordedCall{Method: r.Method, Path: r.URL.Path, Body: body})
		mu.Unlock()

		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := repository.NewMemoryCredentialRepo(time.Hour, 24*time.Hour)
	registry := apiclient.NewRegistry(time.Hour, func(sessionID string) (*apiclient.Client, error) {
		return apiclient.New(log, srv.URL, repository.NewSessionCredentials(repo, sessionID))
	})

	return NewCartService(log, registry), func() []recordedCall {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedCall(nil), calls...)
	}
}

func TestCartService_Cart(t *testing.T) {
	service, calls := newCartService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"cart-1","userId":"123","items":[{"productId":"p1","productName":"Bear","price":100,"quantity":2},{"productId":"p2","productName":"Cat","price":50,"quantity":0}]}`)
	})

	cart, err := service.Cart(context.Background(), "sid", "123")
	require.NoError(t, err)
	assert.Equal(t, "cart-1", cart.ID)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 250.0, cart.Subtotal())

	require.Len(t, calls(), 1)
	assert.Equal(t, "/user/cart/123", calls()[0].Path)

	_, err = service.Cart(context.Background(), "sid", "")
	assert.ErrorIs(t, err, ErrNoUser)
}

func TestCartService_Mutations(t *testing.T) {
	service, calls := newCartService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			_, _ = io.WriteString(w, `[{"productId":"p1","productName":"Bear","price":100,"quantity":1}]`)
		case http.MethodPut:
			_, _ = io.WriteString(w, `{"data":[{"productId":"p1","productName":"Bear","price":100,"quantity":3}]}`)
		default:
			_, _ = io.WriteString(w, `{"id":"cart-1","items":[]}`)
		}
	})
	ctx := context.Background()

	items, err := service.AddItem(ctx, "sid", "123", dto.AddCartItemInput{ProductID: "p1", Quantity: 1, Price: 100})
	require.NoError(t, err)
	assert.Equal(t, []models.CartItem{{ProductID: "p1", ProductName: "Bear", Price: 100, Quantity: 1}}, items)

	items, err = service.UpdateQuantity(ctx, "sid", dto.UpdateCartItemInput{CartID: "cart-1", ProductID: "p1", Quantity: 3})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)

	items, err = service.RemoveItem(ctx, "sid", dto.RemoveCartItemInput{CartID: "cart-1", ProductID: "p1"})
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, service.Clear(ctx, "sid", "cart-1"))

	got := calls()
	require.Len(t, got, 4)
	assert.Equal(t, recordedCall{Method: http.MethodPost, Path: "/user/cart", Body: map[string]any{
		"userId": "123", "productId": "p1", "quantity": float64(1), "price": float64(100),
	}}, got[0])
	assert.Equal(t, map[string]any{"cartId": "cart-1", "productId": "p1", "quantity": float64(3)}, got[1].Body)
	assert.Equal(t, recordedCall{Method: http.MethodDelete, Path: "/user/cart", Body: map[string]any{"cartId": "cart-1", "productId": "p1"}}, got[2])
	assert.Equal(t, http.MethodDelete, got[3].Method)
	assert.Equal(t, "/user/cart/cart-1", got[3].Path)
	assert.Nil(t, got[3].Body)
}

func TestCartService_BackendError(t *testing.T) {
	service, _ := newCartService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"message":"Out of stock"}`)
	})

	_, err := service.AddItem(context.Background(), "sid", "123", dto.AddCartItemInput{ProductID: "p1", Quantity: 5})
	require.Error(t, err)
	assert.Equal(t, "Out of stock", apiclient.MessageOf(err))
}
