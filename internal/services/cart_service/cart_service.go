package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"handmade_shop/internal/domain/models"
	"handmade_shop/internal/lib/apiclient"
	"handmade_shop/internal/lib/logger/sl"
	"handmade_shop/internal/transport/http/dto"
)

var ErrNoUser = errors.New("user id is unknown")

type ClientProvider interface {
	Client(sessionID string) (*apiclient.Client, error)
}

type CartService struct {
	log     *slog.Logger
	clients ClientProvider
}

func NewCartService(log *slog.Logger, clients ClientProvider) *CartService {
	return &CartService{
		log:     log,
		clients: clients,
	}
}

func (s *CartService) Cart(ctx context.Context, sessionID, userID string) (*models.Cart, error) {
	const op = "services.CartService.Cart"

	if userID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoUser)
	}

	client, err := s.clients.Client(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := client.Get(ctx, "/user/cart/"+url.PathEscape(userID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var cart models.Cart
	if err := resp.DecodeData(&cart); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cart, nil
}

func (s *CartService) AddItem(ctx context.Context, sessionID, userID string, input dto.AddCartItemInput) ([]models.CartItem, error) {
	const op = "services.CartService.AddItem"

	log := s.log.With(
		slog.String("op", op),
		slog.String("product_id", input.ProductID),
	)

	if userID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoUser)
	}

	client, err := s.clients.Client(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := client.Post(ctx, "/user/cart", map[string]any{
		"userId":    userID,
		"productId": input.ProductID,
		"quantity":  input.Quantity,
		"price":     input.Price,
	})
	if err != nil {
		log.Warn("failed to add cart item", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items, err := decodeItems(resp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("cart item added")

	return items, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, sessionID string, input dto.UpdateCartItemInput) ([]models.CartItem, error) {
	const op = "services.CartService.UpdateQuantity"

	client, err := s.clients.Client(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := client.Put(ctx, "/user/cart", input)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items, err := decodeItems(resp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return items, nil
}

func (s *CartService) RemoveItem(ctx context.Context, sessionID string, input dto.RemoveCartItemInput) ([]models.CartItem, error) {
	const op = "services.CartService.RemoveItem"

	client, err := s.clients.Client(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := client.Delete(ctx, "/user/cart", input)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items, err := decodeItems(resp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return items, nil
}

func (s *CartService) Clear(ctx context.Context, sessionID, cartID string) error {
	const op = "services.CartService.Clear"

	client, err := s.clients.Client(sessionID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := client.Delete(ctx, "/user/cart/"+url.PathEscape(cartID), nil); err != nil {
		s.log.Warn("failed to clear cart", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// decodeItems принимает и список позиций, и корзину целиком.
func decodeItems(resp *apiclient.Response) ([]models.CartItem, error) {
	if len(resp.Body) == 0 {
		return nil, nil
	}

	var items []models.CartItem
	if err := resp.DecodeData(&items); err == nil {
		return items, nil
	}

	var cart models.Cart
	if err := resp.DecodeData(&cart); err != nil {
		return nil, err
	}

	return cart.Items, nil
}
