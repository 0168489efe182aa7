package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"handmade_shop/internal/domain/models"
	"handmade_shop/internal/lib/apiclient"
	"handmade_shop/internal/lib/logger/sl"
	"handmade_shop/internal/transport/http/dto"
	"handmade_shop/internal/transport/http/dto/response"

	orders "handmade_shop/internal/services/order_service"

	_ "handmade_shop/docs"
)

// Ключи echo.Context, которые заполняет сессионный middleware.
const (
	CtxSessionID = "sid"
	CtxUserID    = "user_id"
	CtxRole      = "role"
)

const (
	DefaultLimit = 25
	MaxLimit     = 100
)

type AuthService interface {
	Login(ctx context.Context, sessionID, email, password string) (*models.User, error)
	Register(ctx context.Context, sessionID string, input dto.RegisterInput) (*models.RegisterResult, error)
	VerifyOTP(ctx context.Context, sessionID, email, otp string) (*models.OTPVerifyResult, error)
	ResendOTP(ctx context.Context, sessionID, email string) (*models.MessageResult, error)
	VerifyEmail(ctx context.Context, sessionID, token string) (*models.MessageResult, error)
	ForgotPassword(ctx context.Context, sessionID, email string) (*models.MessageResult, error)
	ResetPassword(ctx context.Context, sessionID string, input dto.ResetPasswordInput) (*models.MessageResult, error)
	ChangePassword(ctx context.Context, sessionID string, input dto.ChangePasswordInput) (*models.MessageResult, error)
	Profile(ctx context.Context, sessionID string) (*models.User, error)
	Me(ctx context.Context, sessionID string) (*models.User, error)
	UpdateProfile(ctx context.Context, sessionID string, input dto.ProfileInput) (*models.User, error)
	Logout(ctx context.Context, sessionID string) error
	Session(ctx context.Context, sessionID string) (models.TokenMeta, bool, error)
}

type CatalogService interface {
	Products(ctx context.Context, sessionID, name string, page dto.Pagination) (*models.Page[models.Product], error)
	ProductBySlug(ctx context.Context, sessionID, slug string) (*models.Product, error)
	Product(ctx context.Context, sessionID, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, sessionID string, input dto.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, sessionID, id string, input dto.ProductInput) (*models.Product, error)
	SetProductActive(ctx context.Context, sessionID, id string, active bool) error
	DeleteProduct(ctx context.Context, sessionID, id string) error

	Categories(ctx context.Context, sessionID string, page dto.Pagination) (*models.Page[models.Category], error)
	Category(ctx context.Context, sessionID, id string) (*models.Category, error)
	CreateCategory(ctx context.Context, sessionID string, input dto.CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, sessionID, id string, input dto.CategoryInput) (*models.Category, error)
	SetCategoryActive(ctx context.Context, sessionID, id string, active bool) error
	DeleteCategory(ctx context.Context, sessionID, id string) error

	Materials(ctx context.Context, sessionID string, page dto.Pagination) (*models.Page[models.Material], error)
	Material(ctx context.Context, sessionID, id string) (*models.Material, error)
	CreateMaterial(ctx context.Context, sessionID string, input dto.MaterialInput) (*models.Material, error)
	UpdateMaterial(ctx context.Context, sessionID, id string, input dto.MaterialInput) (*models.Material, error)
	SetMaterialActive(ctx context.Context, sessionID, id string, active bool) error
	DeleteMaterial(ctx context.Context, sessionID, id string) error
}

type CartService interface {
	Cart(ctx context.Context, sessionID, userID string) (*models.Cart, error)
	AddItem(ctx context.Context, sessionID, userID string, input dto.AddCartItemInput) ([]models.CartItem, error)
	UpdateQuantity(ctx context.Context, sessionID string, input dto.UpdateCartItemInput) ([]models.CartItem, error)
	RemoveItem(ctx context.Context, sessionID string, input dto.RemoveCartItemInput) ([]models.CartItem, error)
	Clear(ctx context.Context, sessionID, cartID string) error
}

type OrderService interface {
	Orders(ctx context.Context, sessionID string) ([]models.Order, error)
	Order(ctx context.Context, sessionID, orderID string) (*models.Order, error)
	CreateOrder(ctx context.Context, sessionID string, input dto.CreateOrderInput) (*models.Order, error)
	OrderItems(ctx context.Context, sessionID string) ([]models.OrderItem, error)
	AddOrderItem(ctx context.Context, sessionID string, input dto.OrderItemInput) (*models.OrderItem, error)
	CreatePayment(ctx context.Context, sessionID string, input dto.PaymentInput) (*models.Payment, error)
	Addresses(ctx context.Context, sessionID string) ([]models.Address, error)
	CreateAddress(ctx context.Context, sessionID string, input dto.AddressInput) (*models.Address, error)
	DeleteAddress(ctx context.Context, sessionID, addressID string) error
	Checkout(ctx context.Context, sessionID, userID string, input dto.CheckoutInput) (*models.Receipt, error)
}

type CustomService interface {
	Create(ctx context.Context, sessionID, userID string, input dto.DesignInput) error
	Mine(ctx context.Context, sessionID string, page dto.Pagination) (*models.Page[models.ProductCustom], error)
	All(ctx context.Context, sessionID string, page dto.Pagination) (*models.Page[models.ProductCustom], error)
}

type NoticeService interface {
	Drain(sessionID string) []apiclient.Notification
}

type Services struct {
	Auth    AuthService
	Catalog CatalogService
	Cart    CartService
	Order   OrderService
	Custom  CustomService
	Notice  NoticeService
}

type Routers struct {
	log         *slog.Logger
	sessionName string
	loginPath   string

	AuthService    AuthService
	CatalogService CatalogService
	CartService    CartService
	OrderService   OrderService
	CustomService  CustomService
	NoticeService  NoticeService
}

func NewRouter(log *slog.Logger, sessionName, loginPath string, services Services) *Routers {
	if loginPath == "" {
		loginPath = "/login"
	}

	return &Routers{
		log:            log,
		sessionName:    sessionName,
		loginPath:      loginPath,
		AuthService:    services.Auth,
		CatalogService: services.Catalog,
		CartService:    services.Cart,
		OrderService:   services.Order,
		CustomService:  services.Custom,
		NoticeService:  services.Notice,
	}
}

func (r *Routers) SessionName() string {
	return r.sessionName
}

func (r *Routers) LoginPath() string {
	return r.loginPath
}

func SessionID(c echo.Context) string {
	v, _ := c.Get(CtxSessionID).(string)
	return v
}

func UserID(c echo.Context) string {
	v, _ := c.Get(CtxUserID).(string)
	return v
}

func Role(c echo.Context) string {
	v, _ := c.Get(CtxRole).(string)
	return v
}

// remember кладёт пользователя в cookie-сессию и в текущий контекст.
func (r *Routers) remember(c echo.Context, user *models.User) {
	if user == nil {
		return
	}

	c.Set(CtxUserID, user.ID)
	c.Set(CtxRole, user.RoleName)

	sess, err := session.Get(r.sessionName, c)
	if err != nil {
		r.log.Warn("failed to load session", sl.Err(err))
		return
	}
	sess.Values[CtxUserID] = user.ID
	sess.Values[CtxRole] = user.RoleName
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		r.log.Warn("failed to save session", sl.Err(err))
	}
}

// forget стирает пользователя из сессии, идентификатор сессии остаётся.
func (r *Routers) forget(c echo.Context) {
	c.Set(CtxUserID, "")
	c.Set(CtxRole, "")

	sess, err := session.Get(r.sessionName, c)
	if err != nil {
		return
	}
	delete(sess.Values, CtxUserID)
	delete(sess.Values, CtxRole)
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		r.log.Warn("failed to save session", sl.Err(err))
	}
}

// bind разбирает и проверяет тело запроса. При ошибке ответ уже отправлен.
func (r *Routers) bind(c echo.Context, log *slog.Logger, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		log.Warn("failed to bind request", sl.Err(err))
		return false, c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		return false, c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("validation_failed", err.Error()))
	}

	return true, nil
}

// backendError переводит ошибку похода в бэкенд в ответ шлюза.
func (r *Routers) backendError(c echo.Context, log *slog.Logger, err error) error {
	switch {
	case apiclient.IsSessionFatal(err):
		log.Info("session expired", sl.Err(err))
		r.forget(c)
		c.Response().Header().Set(echo.HeaderLocation, r.loginPath)
		return c.JSON(http.StatusUnauthorized, response.ErrSessionExpired)
	case errors.Is(err, orders.ErrEmptyCart):
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("empty_cart", "Cart is empty"))
	case errors.Is(err, orders.ErrNoAddress):
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "Address is required"))
	case errors.Is(err, orders.ErrProductUnavailable):
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("product_unavailable", "Product is no longer available"))
	}

	switch apiclient.KindOf(err) {
	case apiclient.KindServer:
		status := apiclient.StatusOf(err)
		message := apiclient.MessageOf(err)
		if message == "" {
			message = apiclient.MessageUnexpected
		}
		if status >= http.StatusInternalServerError || status < http.StatusBadRequest {
			log.Error("backend failure", sl.Err(err))
			return c.JSON(http.StatusBadGateway, response.ErrorResponseWithDetails("backend_error", message))
		}
		log.Warn("backend rejected request", sl.Err(err))
		return c.JSON(status, response.ErrorResponseWithDetails("backend_rejected", message))
	case apiclient.KindNetwork:
		log.Error("backend unreachable", sl.Err(err))
		return c.JSON(http.StatusServiceUnavailable, response.ErrorResponseWithDetails("backend_unavailable", apiclient.MessageNoConnection))
	default:
		log.Error("request failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}
}

func (r *Routers) notLoggedIn(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderLocation, r.loginPath)
	return c.JSON(http.StatusUnauthorized, response.ErrNotLoggedIn)
}

// pagination читает offset/limit из query с ограничением сверху.
func pagination(c echo.Context, defaultLimit int) dto.Pagination {
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return dto.Pagination{Offset: offset, Limit: limit}
}
