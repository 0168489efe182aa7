package httpapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/arl/statsviz"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"handmade_shop/internal/config"
	"handmade_shop/internal/domain/models"
	"handmade_shop/internal/lib/apiclient"
	"handmade_shop/internal/lib/logger/sl"
	appmiddleware "handmade_shop/internal/middleware"
	httprouters "handmade_shop/internal/transport/http"
	"handmade_shop/internal/transport/http/dto/response"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// ClientProvider выдаёт клиент API сессии; обращение продлевает его жизнь.
type ClientProvider interface {
	Client(sessionID string) (*apiclient.Client, error)
}

type Server struct {
	m       *http.ServeMux
	log     *slog.Logger
	e       *echo.Echo
	routers *httprouters.Routers
	clients ClientProvider
	host    string
	port    string
	timeout time.Duration
	checks  map[string]func(ctx context.Context) error
}

func New(log *slog.Logger, httpCfg config.HTTPConfig, sessCfg config.SessionConfig, clients ClientProvider, routers *httprouters.Routers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Validator = &CustomValidator{validator: httprouters.NewValidator()}

	store := sessions.NewCookieStore([]byte(sessCfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(sessCfg.RefreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   sessCfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	e.Use(middleware.Recover())

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogMethod:   true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				slog.String("method", v.Method),
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote ip", v.RemoteIP),
			}
			if v.Error != nil {
				log.Error("request", append(attrs, sl.Err(v.Error))...)
				return nil
			}
			log.Info("request", attrs...)

			return nil
		},
	}))

	e.Use(appmiddleware.PrometheusMetrics)

	if len(httpCfg.AllowOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     httpCfg.AllowOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
			AllowCredentials: true,
		}))
	} else {
		e.Use(middleware.CORS())
	}

	e.Use(session.Middleware(store))

	mux := http.NewServeMux()
	if err := statsviz.Register(mux); err != nil {
		log.Info("Statsviz start with error", slog.Any("error:", err.Error()))
	}

	timeout := httpCfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Server{
		m:       mux,
		log:     log,
		e:       e,
		routers: routers,
		clients: clients,
		host:    httpCfg.Host,
		port:    httpCfg.Port,
		timeout: timeout,
		checks:  map[string]func(ctx context.Context) error{},
	}
}

// AddHealthCheck подключает проверку зависимости к /health.
func (s *Server) AddHealthCheck(name string, check func(ctx context.Context) error) {
	s.checks[name] = check
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("Start", "server"), slog.String("addr", s.addr()))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(s.addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.log.Info("stopping", slog.String("op", op))

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

func (s *Server) addr() string {
	return net.JoinHostPort(s.host, s.port)
}

// sessionMiddleware гарантирует у браузера идентификатор сессии и
// переносит значения cookie в контекст запроса.
func (s *Server) sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := session.Get(s.routers.SessionName(), c)
		if sess == nil {
			s.log.Error("failed to load session", sl.Err(err))
			return c.JSON(http.StatusInternalServerError, response.ErrInternal)
		}
		if err != nil {
			// подпись не сошлась: начинаем с чистой сессии
			s.log.Debug("session cookie rejected", sl.Err(err))
			sess.Values = map[interface{}]interface{}{}
		}

		sid, _ := sess.Values[httprouters.CtxSessionID].(string)
		if _, err := uuid.Parse(sid); err != nil {
			sid = uuid.NewString()
			sess.Values[httprouters.CtxSessionID] = sid
			if err := sess.Save(c.Request(), c.Response()); err != nil {
				s.log.Error("failed to save session", sl.Err(err))
				return c.JSON(http.StatusInternalServerError, response.ErrInternal)
			}
		}

		userID, _ := sess.Values[httprouters.CtxUserID].(string)
		role, _ := sess.Values[httprouters.CtxRole].(string)

		c.Set(httprouters.CtxSessionID, sid)
		c.Set(httprouters.CtxUserID, userID)
		c.Set(httprouters.CtxRole, role)

		if _, err := s.clients.Client(sid); err != nil {
			s.log.Error("failed to resolve api client", sl.Err(err))
			return c.JSON(http.StatusInternalServerError, response.ErrInternal)
		}

		return next(c)
	}
}

// credentials читает состояние входа сессии. Роль из токена важнее роли из cookie.
func (s *Server) credentials(c echo.Context) (models.TokenMeta, bool, error) {
	meta, ok, err := s.routers.AuthService.Session(c.Request().Context(), httprouters.SessionID(c))
	if err != nil || !ok {
		return meta, ok, err
	}

	if meta.Role == "" {
		meta.Role = httprouters.Role(c)
	} else {
		c.Set(httprouters.CtxRole, meta.Role)
	}
	if httprouters.UserID(c) == "" && meta.UserID != "" {
		c.Set(httprouters.CtxUserID, meta.UserID)
	}

	return meta, true, nil
}

// guestOnly закрывает вход и регистрацию для уже вошедших.
func (s *Server) guestOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		meta, ok, err := s.credentials(c)
		if err != nil {
			s.log.Error("failed to read credentials", sl.Err(err))
			return c.JSON(http.StatusInternalServerError, response.ErrInternal)
		}

		if ok {
			redirect := "/"
			if meta.Role == models.RoleAdmin {
				redirect = "/dashboard"
			}
			c.Response().Header().Set(echo.HeaderLocation, redirect)
			return c.JSON(http.StatusConflict, response.AlreadyAuthenticated(redirect))
		}

		return next(c)
	}
}

func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, ok, err := s.credentials(c)
		if err != nil {
			s.log.Error("failed to read credentials", sl.Err(err))
			return c.JSON(http.StatusInternalServerError, response.ErrInternal)
		}

		if !ok {
			target := s.routers.LoginPath() + "?redirect=" + url.QueryEscape(c.Request().URL.Path)
			c.Response().Header().Set(echo.HeaderLocation, target)
			return c.JSON(http.StatusUnauthorized, response.ErrNotLoggedIn)
		}

		return next(c)
	}
}

// adminOnly ставится после requireAuth.
func (s *Server) adminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if httprouters.Role(c) != models.RoleAdmin {
			return c.JSON(http.StatusForbidden, response.ErrForbidden)
		}

		return next(c)
	}
}

func (s *Server) health(c echo.Context) error {
	result := map[string]string{"status": "ok"}
	status := http.StatusOK

	for name, check := range s.checks {
		if err := check(c.Request().Context()); err != nil {
			s.log.Warn("health check failed", slog.String("check", name), sl.Err(err))
			result[name] = err.Error()
			result["status"] = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		result[name] = "ok"
	}

	return c.JSON(status, result)
}

func (s *Server) BuildRouters() {
	s.e.GET("/health", s.health)
	s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	debug := s.e.Group("/debug")
	{
		debug.GET("/statsviz/", echo.WrapHandler(s.m))
		debug.GET("/statsviz/*", echo.WrapHandler(s.m))
	}

	swagger := s.e.Group("/swag")
	{
		swagger.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	api := s.e.Group("/api/v1", s.sessionMiddleware)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", s.routers.Login, s.guestOnly)
			auth.POST("/register", s.routers.Register, s.guestOnly)
			auth.POST("/verify-otp", s.routers.VerifyOTP, s.guestOnly)
			auth.POST("/resend-otp", s.routers.ResendOTP)
			auth.PUT("/verify-email", s.routers.VerifyEmail)
			auth.POST("/forgot-password", s.routers.ForgotPassword)
			auth.POST("/reset-password", s.routers.ResetPassword)
			auth.POST("/logout", s.routers.Logout)
			auth.GET("/session", s.routers.Session)

			auth.GET("/profile", s.routers.Profile, s.requireAuth)
			auth.PUT("/profile", s.routers.UpdateProfile, s.requireAuth)
			auth.POST("/change-password", s.routers.ChangePassword, s.requireAuth)
		}

		api.GET("/notifications", s.routers.Notifications)

		api.GET("/products", s.routers.ListProducts)
		api.GET("/products/slug/:slug", s.routers.GetProductBySlug)
		api.GET("/products/:id", s.routers.GetProduct)
		api.GET("/categories", s.routers.ListCategories)
		api.GET("/categories/:id", s.routers.GetCategory)
		api.GET("/materials", s.routers.ListMaterials)
		api.GET("/materials/:id", s.routers.GetMaterial)

		api.GET("/users/me", s.routers.Me, s.requireAuth)
		api.GET("/users/product-custom", s.routers.ListMyCustomProducts, s.requireAuth)
		api.POST("/product-custom", s.routers.CreateCustomProduct, s.requireAuth)

		api.GET("/cart", s.routers.GetCart, s.requireAuth)
		api.POST("/cart/items", s.routers.AddCartItem, s.requireAuth)
		api.PUT("/cart/items", s.routers.UpdateCartItem, s.requireAuth)
		api.DELETE("/cart/items", s.routers.RemoveCartItem, s.requireAuth)
		api.DELETE("/cart/:id", s.routers.ClearCart, s.requireAuth)

		api.GET("/orders", s.routers.ListOrders, s.requireAuth)
		api.POST("/orders", s.routers.CreateOrder, s.requireAuth)
		api.GET("/orders/items", s.routers.ListOrderItems, s.requireAuth)
		api.POST("/orders/items", s.routers.AddOrderItem, s.requireAuth)
		api.GET("/orders/:id", s.routers.GetOrder, s.requireAuth)
		api.POST("/checkout", s.routers.Checkout, s.requireAuth)
		api.POST("/payments", s.routers.CreatePayment, s.requireAuth)

		api.GET("/addresses", s.routers.ListAddresses, s.requireAuth)
		api.POST("/addresses", s.routers.CreateAddress, s.requireAuth)
		api.DELETE("/addresses/:id", s.routers.DeleteAddress, s.requireAuth)

		admin := api.Group("/admin", s.requireAuth, s.adminOnly)
		{
			admin.POST("/products", s.routers.CreateProduct)
			admin.PUT("/products/:id", s.routers.UpdateProduct)
			admin.PATCH("/products/:id/active", s.routers.SetProductActive)
			admin.DELETE("/products/:id", s.routers.DeleteProduct)

			admin.POST("/categories", s.routers.CreateCategory)
			admin.PUT("/categories/:id", s.routers.UpdateCategory)
			admin.PATCH("/categories/:id/active", s.routers.SetCategoryActive)
			admin.DELETE("/categories/:id", s.routers.DeleteCategory)

			admin.POST("/materials", s.routers.CreateMaterial)
			admin.PUT("/materials/:id", s.routers.UpdateMaterial)
			admin.PATCH("/materials/:id/active", s.routers.SetMaterialActive)
			admin.DELETE("/materials/:id", s.routers.DeleteMaterial)

			admin.GET("/product-custom", s.routers.ListCustomProducts)
		}
	}
}
