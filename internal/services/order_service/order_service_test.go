package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"handmade_shop/internal/domain/models"
	"handmade_shop/internal/lib/apiclient"
	"handmade_shop/internal/repository"
	"handmade_shop/internal/transport/http/dto"
)

type MockCarts struct {
	mock.Mock
}

func (m *MockCarts) Cart(ctx context.Context, sessionID, userID string) (*models.Cart, error) {
	args := m.Called(ctx, sessionID, userID)
	cart, _ := args.Get(0).(*models.Cart)
	return cart, args.Error(1)
}

func (m *MockCarts) Clear(ctx context.Context, sessionID, cartID string) error {
	args := m.Called(ctx, sessionID, cartID)
	return args.Error(0)
}

type MockProducts struct {
	mock.Mock
}

func (m *MockProducts) Product(ctx context.Context, sessionID, id string) (*models.Product, error) {
	args := m.Called(ctx, sessionID, id)
	product, _ := args.Get(0).(*models.Product)
	return product, args.Error(1)
}

type fakeBackend struct {
	mu     sync.Mutex
	orders []map[string]any
	items  []map[string]any
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/user/order":
		f.orders = append(f.orders, body)
		_, _ = io.WriteString(w, `{"data":{"id":"order-1","totalAmount":1,"payment":{"payUrl":"https://pay.example/1"}}}`)
	case r.Method == http.MethodPost && r.URL.Path == "/user/order/order-item":
		f.items = append(f.items, body)
		_, _ = io.WriteString(w, `{"id":"item"}`)
	case r.Method == http.MethodGet && r.URL.Path == "/user/address":
		_, _ = io.WriteString(w, `{"data":[{"id":"a1"},{"id":"a2","isDefault":true},{"id":"a3"}]}`)
	case r.Method == http.MethodGet && r.URL.Path == "/user/order/by-user":
		_, _ = io.WriteString(w, `[{"id":"order-1"},{"id":"order-2"}]`)
	case r.Method == http.MethodDelete && r.URL.Path == "/user/address/a1":
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"not found"}`)
	}
}

func (f *fakeBackend) snapshot() ([]map[string]any, []map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]map[string]any(nil), f.orders...), append([]map[string]any(nil), f.items...)
}

func setupOrderService(t *testing.T, carts Carts, products Products) (*OrderService, *fakeBackend) {
	t.Helper()

	backend := &fakeBackend{}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := repository.NewMemoryCredentialRepo(time.Hour, 24*time.Hour)
	registry := apiclient.NewRegistry(time.Hour, func(sessionID string) (*apiclient.Client, error) {
		return apiclient.New(log, srv.URL, repository.NewSessionCredentials(repo, sessionID))
	})

	return NewOrderService(log, registry, carts, products, DefaultShippingFee), backend
}

func TestOrderService_CheckoutFromCart(t *testing.T) {
	carts := new(MockCarts)
	carts.On("Cart", mock.Anything, "sid", "42").Return(&models.Cart{
		ID: "cart-1",
		Items: []models.CartItem{
			{ProductID: "p1", Price: 100000, Quantity: 2},
			{ProductID: "p2", Price: 50000, Quantity: 1},
		},
	}, nil)
	carts.On("Clear", mock.Anything, "sid", "cart-1").Return(nil)

	products := new(MockProducts)
	service, backend := setupOrderService(t, carts, products)

	receipt, err := service.Checkout(context.Background(), "sid", "42", dto.CheckoutInput{
		AddressID:       "addr-1",
		PaymentMethodID: models.PaymentMethodPayOS,
	})
	require.NoError(t, err)
	assert.Equal(t, "order-1", receipt.Order.ID)
	assert.Equal(t, "https://pay.example/1", receipt.PayURL)

	orders, items := backend.snapshot()
	require.Len(t, orders, 1)
	assert.Equal(t, map[string]any{
		"addressId":       "addr-1",
		"totalAmount":     float64(270000),
		"paymentMethodId": float64(3),
	}, orders[0])

	require.Len(t, items, 2)
	assert.Equal(t, map[string]any{
		"orderId":   "order-1",
		"productId": "p1",
		"quantity":  float64(2),
		"unitPrice": float64(100000),
		"price":     float64(200000),
	}, items[0])
	assert.Equal(t, "p2", items[1]["productId"])

	carts.AssertExpectations(t)
	products.AssertNotCalled(t, "Product", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_CheckoutBuyNow(t *testing.T) {
	carts := new(MockCarts)
	products := new(MockProducts)
	products.On("Product", mock.Anything, "sid", "p9").Return(&models.Product{ID: "p9", Price: 30000, IsActive: true}, nil)

	service, backend := setupOrderService(t, carts, products)

	_, err := service.Checkout(context.Background(), "sid", "", dto.CheckoutInput{
		AddressID:       "addr-1",
		PaymentMethodID: models.PaymentMethodCOD,
		Items:           []dto.CheckoutItem{{ProductID: "p9", Price: 1, Quantity: 3}},
	})
	require.NoError(t, err)

	orders, items := backend.snapshot()
	require.Len(t, orders, 1)
	assert.Equal(t, float64(110000), orders[0]["totalAmount"])
	require.Len(t, items, 1)
	assert.Equal(t, float64(30000), items[0]["unitPrice"])
	assert.Equal(t, float64(90000), items[0]["price"])

	products.AssertExpectations(t)
	carts.AssertNotCalled(t, "Cart", mock.Anything, mock.Anything, mock.Anything)
	carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_CheckoutBuyNowCatalogErrors(t *testing.T) {
	tests := []struct {
		name       string
		product    *models.Product
		productErr error
		wantErr    error
	}{
		{
			name:    "inactive product",
			product: &models.Product{ID: "p9", Price: 30000},
			wantErr: ErrProductUnavailable,
		},
		{
			name:       "catalog failure",
			productErr: &apiclient.HTTPError{Kind: apiclient.KindServer, StatusCode: http.StatusNotFound},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := new(MockProducts)
			products.On("Product", mock.Anything, "sid", "p9").Return(tt.product, tt.productErr)

			service, backend := setupOrderService(t, new(MockCarts), products)

			_, err := service.Checkout(context.Background(), "sid", "", dto.CheckoutInput{
				AddressID:       "addr-1",
				PaymentMethodID: models.PaymentMethodCOD,
				Items:           []dto.CheckoutItem{{ProductID: "p9", Price: 1, Quantity: 1}},
			})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.Equal(t, http.StatusNotFound, apiclient.StatusOf(err))
			}

			orders, _ := backend.snapshot()
			assert.Empty(t, orders)
		})
	}
}

func TestOrderService_CheckoutErrors(t *testing.T) {
	tests := []struct {
		name    string
		userID  string
		input   dto.CheckoutInput
		cart    *models.Cart
		cartErr error
		wantErr error
	}{
		{
			name:    "no address",
			userID:  "42",
			input:   dto.CheckoutInput{PaymentMethodID: 2},
			wantErr: ErrNoAddress,
		},
		{
			name:    "no user",
			input:   dto.CheckoutInput{AddressID: "a", PaymentMethodID: 2},
			wantErr: ErrNoUser,
		},
		{
			name:    "empty cart",
			userID:  "42",
			input:   dto.CheckoutInput{AddressID: "a", PaymentMethodID: 2},
			cart:    &models.Cart{ID: "cart-1"},
			wantErr: ErrEmptyCart,
		},
		{
			name:    "cart failure",
			userID:  "42",
			input:   dto.CheckoutInput{AddressID: "a", PaymentMethodID: 2},
			cartErr: errors.New("boom"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			carts := new(MockCarts)
			carts.On("Cart", mock.Anything, "sid", tt.userID).Return(tt.cart, tt.cartErr).Maybe()

			service, backend := setupOrderService(t, carts, new(MockProducts))

			_, err := service.Checkout(context.Background(), "sid", tt.userID, tt.input)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			orders, _ := backend.snapshot()
			assert.Empty(t, orders)
		})
	}
}

func TestOrderService_CartNotClearedIsNotFatal(t *testing.T) {
	carts := new(MockCarts)
	carts.On("Cart", mock.Anything, "sid", "42").Return(&models.Cart{
		ID:    "cart-1",
		Items: []models.CartItem{{ProductID: "p1", Price: 10}},
	}, nil)
	carts.On("Clear", mock.Anything, "sid", "cart-1").Return(errors.New("backend down"))

	service, _ := setupOrderService(t, carts, new(MockProducts))

	receipt, err := service.Checkout(context.Background(), "sid", "42", dto.CheckoutInput{AddressID: "a", PaymentMethodID: 2})
	require.NoError(t, err)
	assert.Equal(t, "order-1", receipt.Order.ID)
}

func TestOrderService_Addresses(t *testing.T) {
	service, _ := setupOrderService(t, new(MockCarts), new(MockProducts))

	addresses, err := service.Addresses(context.Background(), "sid")
	require.NoError(t, err)
	require.Len(t, addresses, 3)
	assert.Equal(t, []string{"a2", "a1", "a3"}, []string{addresses[0].ID, addresses[1].ID, addresses[2].ID})

	require.NoError(t, service.DeleteAddress(context.Background(), "sid", "a1"))

	err = service.DeleteAddress(context.Background(), "sid", "missing")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apiclient.StatusOf(err))
}

func TestOrderService_Orders(t *testing.T) {
	service, _ := setupOrderService(t, new(MockCarts), new(MockProducts))

	orders, err := service.Orders(context.Background(), "sid")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "order-2", orders[1].ID)
}
