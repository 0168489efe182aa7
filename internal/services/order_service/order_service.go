package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"

	"handmade_shop/internal/domain/models"
	"handmade_shop/internal/lib/apiclient"
	"handmade_shop/internal/lib/logger/sl"
	"handmade_shop/internal/transport/http/dto"
)

const (
	DefaultShippingFee = 20000

	orderPath     = "/user/order"
	orderItemPath = "/user/order/order-item"
	paymentPath   = "/user/payment"
	addressPath   = "/user/address"
)

var (
	ErrEmptyCart = errors.New("cart is empty")
	ErrNoOrderID = errors.New("backend returned order without id")
	ErrNoUser    = errors.New("user id is unknown")
	ErrNoAddress = errors.New("address is required")

	ErrProductUnavailable = errors.New("product is not available")
)

type ClientProvider interface {
	Client(sessionID string) (*apiclient.Client, error)
}

// Carts отдаёт корзину пользователя, из которой оформляется заказ.
type Carts interface {
	Cart(ctx context.Context, sessionID, userID string) (*models.Cart, error)
	Clear(ctx context.Context, sessionID, cartID string) error
}

// Products отдаёт актуальную карточку товара из каталога.
type Products interface {
	Product(ctx context.Context, sessionID, id string) (*models.Product, error)
}

type OrderService struct {
	log         *slog.Logger
	clients     ClientProvider
	carts       Carts
	products    Products
	shippingFee float64
}

func NewOrderService(log *slog.Logger, clients ClientProvider, carts Carts, products Products, shippingFee float64) *OrderService {
	if shippingFee < 0 {
		shippingFee = DefaultShippingFee
	}

	return &OrderService{
		log:         log,
		clients:     clients,
		carts:       carts,
		products:    products,
		shippingFee: shippingFee,
	}
}

func (s *OrderService) Orders(ctx context.Context, sessionID string) ([]models.Order, error) {
	const op = "services.OrderService.Orders"

	var orders []models.Order
	if err := s.get(ctx, sessionID, orderPath+"/by-user", &orders); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return orders, nil
}

func (s *OrderService) Order(ctx context.Context, sessionID, orderID string) (*models.Order, error) {
	const op = "services.OrderService.Order"

	var order models.Order
	if err := s.get(ctx, sessionID, orderPath+"/"+url.PathEscape(orderID), &order); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &order, nil
}

func (s *OrderService) CreateOrder(ctx context.Context, sessionID string, input dto.CreateOrderInput) (*models.Order, error) {
	const op = "services.OrderService.CreateOrder"

	var order models.Order
	if err := s.send(ctx, sessionID, http.MethodPost, orderPath, input, &order); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if order.ID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoOrderID)
	}

	return &order, nil
}

func (s *OrderService) OrderItems(ctx context.Context, sessionID string) ([]models.OrderItem, error) {
	const op = "services.OrderService.OrderItems"

	var items []models.OrderItem
	if err := s.get(ctx, sessionID, orderItemPath, &items); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return items, nil
}

func (s *OrderService) AddOrderItem(ctx context.Context, sessionID string, input dto.OrderItemInput) (*models.OrderItem, error) {
	const op = "services.OrderService.AddOrderItem"

	var item models.OrderItem
	if err := s.send(ctx, sessionID, http.MethodPost, orderItemPath, input, &item); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &item, nil
}

func (s *OrderService) CreatePayment(ctx context.Context, sessionID string, input dto.PaymentInput) (*models.Payment, error) {
	const op = "services.OrderService.CreatePayment"

	var payment models.Payment
	if err := s.send(ctx, sessionID, http.MethodPost, paymentPath, input, &payment); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &payment, nil
}

// Addresses возвращает адреса пользователя, адрес по умолчанию первым.
func (s *OrderService) Addresses(ctx context.Context, sessionID string) ([]models.Address, error) {
	const op = "services.OrderService.Addresses"

	var addresses []models.Address
	if err := s.get(ctx, sessionID, addressPath, &addresses); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sort.SliceStable(addresses, func(i, j int) bool {
		return addresses[i].IsDefault && !addresses[j].IsDefault
	})

	return addresses, nil
}

func (s *OrderService) CreateAddress(ctx context.Context, sessionID string, input dto.AddressInput) (*models.Address, error) {
	const op = "services.OrderService.CreateAddress"

	var address models.Address
	if err := s.send(ctx, sessionID, http.MethodPost, addressPath, input, &address); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &address, nil
}

func (s *OrderService) DeleteAddress(ctx context.Context, sessionID, addressID string) error {
	const op = "services.OrderService.DeleteAddress"

	if err := s.send(ctx, sessionID, http.MethodDelete, addressPath+"/"+url.PathEscape(addressID), nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Checkout оформляет заказ: создаёт его на бэкенде, добавляет позиции
// и очищает корзину, если покупка шла из неё.
func (s *OrderService) Checkout(ctx context.Context, sessionID, userID string, input dto.CheckoutInput) (*models.Receipt, error) {
	const op = "services.OrderService.Checkout"

	log := s.log.With(
		slog.String("op", op),
		slog.String("address_id", input.AddressID),
	)

	if input.AddressID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoAddress)
	}

	var items []dto.CheckoutItem
	buyNow := len(input.Items) > 0

	var cart *models.Cart
	if buyNow {
		var err error
		items, err = s.priceItems(ctx, sessionID, input.Items)
		if err != nil {
			log.Warn("failed to price items", sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else {
		if userID == "" {
			return nil, fmt.Errorf("%s: %w", op, ErrNoUser)
		}

		var err error
		cart, err = s.carts.Cart(ctx, sessionID, userID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		for _, item := range cart.Items {
			items = append(items, dto.CheckoutItem{
				ProductID: item.ProductID,
				Price:     item.Price,
				Quantity:  quantityOrOne(item.Quantity),
			})
		}
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyCart)
	}

	var subtotal float64
	for _, item := range items {
		subtotal += item.Price * float64(quantityOrOne(item.Quantity))
	}

	order, err := s.CreateOrder(ctx, sessionID, dto.CreateOrderInput{
		AddressID:       input.AddressID,
		TotalAmount:     subtotal + s.shippingFee,
		PaymentMethodID: input.PaymentMethodID,
	})
	if err != nil {
		log.Error("failed to create order", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("order_id", order.ID))

	for _, item := range items {
		qty := quantityOrOne(item.Quantity)

		_, err := s.AddOrderItem(ctx, sessionID, dto.OrderItemInput{
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  qty,
			UnitPrice: item.Price,
			Price:     item.Price * float64(qty),
		})
		if err != nil {
			log.Error("failed to add order item", slog.String("product_id", item.ProductID), sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if cart != nil && cart.ID != "" {
		if err := s.carts.Clear(ctx, sessionID, cart.ID); err != nil {
			log.Warn("order placed but cart was not cleared", sl.Err(err))
		}
	}

	receipt := &models.Receipt{Order: *order}
	if order.Payment != nil {
		receipt.PayURL = order.Payment.PayURL
	}

	log.Info("order placed", slog.Int("items", len(items)))

	return receipt, nil
}

// priceItems подставляет цены из каталога: цене из браузера не доверяем.
func (s *OrderService) priceItems(ctx context.Context, sessionID string, items []dto.CheckoutItem) ([]dto.CheckoutItem, error) {
	priced := make([]dto.CheckoutItem, 0, len(items))
	for _, item := range items {
		product, err := s.products.Product(ctx, sessionID, item.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, item.ProductID)
		}

		item.Price = product.Price
		priced = append(priced, item)
	}

	return priced, nil
}

func (s *OrderService) get(ctx context.Context, sessionID, path string, out any) error {
	client, err := s.clients.Client(sessionID)
	if err != nil {
		return err
	}

	resp, err := client.Get(ctx, path)
	if err != nil {
		return err
	}

	return resp.DecodeData(out)
}

func (s *OrderService) send(ctx context.Context, sessionID, method, path string, body, out any) error {
	client, err := s.clients.Client(sessionID)
	if err != nil {
		return err
	}

	resp, err := client.Do(ctx, method, path, body)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	return resp.DecodeData(out)
}

func quantityOrOne(qty int) int {
	if qty <= 0 {
		return 1
	}

	return qty
}
