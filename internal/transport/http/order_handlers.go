package http

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"handmade_shop/internal/transport/http/dto"
	"handmade_shop/internal/transport/http/dto/response"
)

// GetCart godoc
// @Summary Корзина текущего пользователя
// @Tags cart
// @Produce json
// @Success 200 {object} response.Response{data=models.Cart}
// @Failure 401 {object} response.ErrorResponse
// @Router /api/v1/cart [get]
func (r *Routers) GetCart(c echo.Context) error {
	const op = "http.routers.GetCart"

	log := r.log.With(
		slog.String("op", op),
	)

	userID := UserID(c)
	if userID == "" {
		return r.notLoggedIn(c)
	}

	cart, err := r.CartService.Cart(c.Request().Context(), SessionID(c), userID)
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(cart))
}

// AddCartItem godoc
// @Summary Добавить товар в корзину
// @Tags cart
// @Accept json
// @Produce json
// @Param request body dto.AddCartItemInput true "Позиция"
// @Success 200 {object} response.Response{data=[]models.CartItem}
// @Failure 400 {object} response.ErrorResponse
// @Router /api/v1/cart/items [post]
func (r *Routers) AddCartItem(c echo.Context) error {
	const op = "http.routers.AddCartItem"

	log := r.log.With(
		slog.String("op", op),
	)

	userID := UserID(c)
	if userID == "" {
		return r.notLoggedIn(c)
	}

	var req dto.AddCartItemInput
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	items, err := r.CartService.AddItem(c.Request().Context(), SessionID(c), userID, req)
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(items))
}

// @Router /api/v1/cart/items [put]
func (r *Routers) UpdateCartItem(c echo.Context) error {
	const op = "http.routers.UpdateCartItem"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.UpdateCartItemInput
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	items, err := r.CartService.UpdateQuantity(c.Request().Context(), SessionID(c), req)
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(items))
}

// @Router /api/v1/cart/items [delete]
func (r *Routers) RemoveCartItem(c echo.Context) error {
	const op = "http.routers.RemoveCartItem"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.RemoveCartItemInput
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	items, err := r.CartService.RemoveItem(c.Request().Context(), SessionID(c), req)
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(items))
}

// @Router /api/v1/cart/{id} [delete]
func (r *Routers) ClearCart(c echo.Context) error {
	const op = "http.routers.ClearCart"

	log := r.log.With(
		slog.String("op", op),
		slog.String("cart_id", c.Param("id")),
	)

	if err := r.CartService.Clear(c.Request().Context(), SessionID(c), c.Param("id")); err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.MessageResponse("Cart cleared"))
}

// @Router /api/v1/orders [get]
func (r *Routers) ListOrders(c echo.Context) error {
	const op = "http.routers.ListOrders"

	log := r.log.With(
		slog.String("op", op),
	)

	orders, err := r.OrderService.Orders(c.Request().Context(), SessionID(c))
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(orders))
}

// @Router /api/v1/orders/{id} [get]
func (r *Routers) GetOrder(c echo.Context) error {
	const op = "http.routers.GetOrder"

	log := r.log.With(
		slog.String("op", op),
		slog.String("order_id", c.Param("id")),
	)

	order, err := r.OrderService.Order(c.Request().Context(), SessionID(c), c.Param("id"))
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(order))
}

// @Router /api/v1/orders [post]
func (r *Routers) CreateOrder(c echo.Context) error {
	const op = "http.routers.CreateOrder"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.CreateOrderInput
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	order, err := r.OrderService.CreateOrder(c.Request().Context(), SessionID(c), req)
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(order))
}

// @Router /api/v1/orders/items [get]
func (r *Routers) ListOrderItems(c echo.Context) error {
	const op = "http.routers.ListOrderItems"

	log := r.log.With(
		slog.String("op", op),
	)

	items, err := r.OrderService.OrderItems(c.Request().Context(), SessionID(c))
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(items))
}

// @Router /api/v1/orders/items [post]
func (r *Routers) AddOrderItem(c echo.Context) error {
	const op = "http.routers.AddOrderItem"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.OrderItemInput
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	item, err := r.OrderService.AddOrderItem(c.Request().Context(), SessionID(c), req)
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(item))
}

// Checkout godoc
// @Summary Оформление заказа
// @Description Создаёт заказ из корзины или из позиций «купить сейчас», добавляет позиции и очищает корзину.
// @Description Если выбрана онлайн-оплата, в ответе есть payUrl.
// @Tags orders
// @Accept json
// @Produce json
// @Param request body dto.CheckoutInput true "Адрес, способ оплаты, позиции"
// @Success 201 {object} response.Response{data=models.Receipt}
// @Failure 400 {object} response.ErrorResponse "Корзина пуста"
// @Failure 401 {object} response.ErrorResponse
// @Router /api/v1/checkout [post]
func (r *Routers) Checkout(c echo.Context) error {
	const op = "http.routers.Checkout"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.CheckoutInput
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	userID := UserID(c)
	if userID == "" && len(req.Items) == 0 {
		return r.notLoggedIn(c)
	}

	receipt, err := r.OrderService.Checkout(c.Request().Context(), SessionID(c), userID, req)
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(receipt))
}

// @Router /api/v1/payments [post]
func (r *Routers) CreatePayment(c echo.Context) error {
	const op = "http.routers.CreatePayment"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.PaymentInput
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	payment, err := r.OrderService.CreatePayment(c.Request().Context(), SessionID(c), req)
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(payment))
}

// @Router /api/v1/addresses [get]
func (r *Routers) ListAddresses(c echo.Context) error {
	const op = "http.routers.ListAddresses"

	log := r.log.With(
		slog.String("op", op),
	)

	addresses, err := r.OrderService.Addresses(c.Request().Context(), SessionID(c))
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(addresses))
}

// @Router /api/v1/addresses [post]
func (r *Routers) CreateAddress(c echo.Context) error {
	const op = "http.routers.CreateAddress"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.AddressInput
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	address, err := r.OrderService.CreateAddress(c.Request().Context(), SessionID(c), req)
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(address))
}

// @Router /api/v1/addresses/{id} [delete]
func (r *Routers) DeleteAddress(c echo.Context) error {
	const op = "http.routers.DeleteAddress"

	log := r.log.With(
		slog.String("op", op),
		slog.String("address_id", c.Param("id")),
	)

	if err := r.OrderService.DeleteAddress(c.Request().Context(), SessionID(c), c.Param("id")); err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.MessageResponse("Address deleted"))
}

// CreateCustomProduct godoc
// @Summary Заказ игрушки по своему дизайну
// @Tags custom
// @Accept json
// @Produce json
// @Param request body dto.DesignInput true "Форма дизайна"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /api/v1/product-custom [post]
func (r *Routers) CreateCustomProduct(c echo.Context) error {
	const op = "http.routers.CreateCustomProduct"

	log := r.log.With(
		slog.String("op", op),
	)

	userID := UserID(c)
	if userID == "" {
		return r.notLoggedIn(c)
	}

	var req dto.DesignInput
	if ok, err := r.bind(c, log, &req); !ok {
		return err
	}

	if err := r.CustomService.Create(c.Request().Context(), SessionID(c), userID, req); err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.MessageResponse("Custom product requested"))
}

// @Router /api/v1/users/product-custom [get]
func (r *Routers) ListMyCustomProducts(c echo.Context) error {
	const op = "http.routers.ListMyCustomProducts"

	log := r.log.With(
		slog.String("op", op),
	)

	page, err := r.CustomService.Mine(c.Request().Context(), SessionID(c), pagination(c, DefaultLimit))
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(page))
}

// @Router /api/v1/admin/product-custom [get]
func (r *Routers) ListCustomProducts(c echo.Context) error {
	const op = "http.routers.ListCustomProducts"

	log := r.log.With(
		slog.String("op", op),
	)

	page, err := r.CustomService.All(c.Request().Context(), SessionID(c), pagination(c, DefaultLimit))
	if err != nil {
		return r.backendError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(page))
}
