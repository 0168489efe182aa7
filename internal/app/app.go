package app

import (
	"context"
	"log/slog"
	"time"

	httpapp "handmade_shop/internal/app/http"
	"handmade_shop/internal/config"
	"handmade_shop/internal/lib/apiclient"
	"handmade_shop/internal/lib/logger/sl"
	"handmade_shop/internal/metrics"
	"handmade_shop/internal/repository"
	storage "handmade_shop/internal/storage/redis"
	httprouters "handmade_shop/internal/transport/http"

	auth "handmade_shop/internal/services/auth_service"
	cart "handmade_shop/internal/services/cart_service"
	catalog "handmade_shop/internal/services/catalog_service"
	custom "handmade_shop/internal/services/custom_service"
	notice "handmade_shop/internal/services/notice_service"
	order "handmade_shop/internal/services/order_service"
)

type App struct {
	HTTPServer *httpapp.Server
	Clients    *apiclient.Registry

	log   *slog.Logger
	redis *storage.Client
}

func New(log *slog.Logger, cfg *config.Config) *App {
	var (
		creds repository.CredentialRepository
		redis *storage.Client
	)

	if cfg.UseRedis() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		client, err := storage.Connect(ctx, cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)
		if err != nil {
			panic(err)
		}
		redis = client
		creds = repository.NewRedisCredentialRepo(client, cfg.Session.AccessTTL, cfg.Session.RefreshTTL)
		log.Info("credentials are stored in redis", slog.String("addr", cfg.Redis.RedisAddr))
	} else {
		creds = repository.NewMemoryCredentialRepo(cfg.Session.AccessTTL, cfg.Session.RefreshTTL)
		log.Warn("redis is not configured, credentials are kept in memory")
	}

	notices := notice.NewNoticeService(log, cfg.Cache.NoticeTTL)

	var registry *apiclient.Registry
	registry = apiclient.NewRegistry(cfg.Session.RefreshTTL, func(sessionID string) (*apiclient.Client, error) {
		return apiclient.New(
			log.With(slog.String("session", shortID(sessionID))),
			cfg.Backend.BaseURL,
			repository.NewSessionCredentials(creds, sessionID),
			apiclient.WithTimeout(cfg.Backend.Timeout),
			apiclient.WithRefreshPath(cfg.Backend.RefreshPath),
			apiclient.WithNotifier(notices.For(sessionID)),
			apiclient.WithTerminator(apiclient.TerminatorFunc(func(context.Context) {
				registry.Forget(sessionID)
			})),
			apiclient.WithRefreshObserver(metrics.ObserveRefresh),
		)
	})

	cartService := cart.NewCartService(log, registry)
	catalogService := catalog.NewCatalogService(log, registry, cfg.Cache.CatalogTTL)

	routers := httprouters.NewRouter(log, cfg.Session.CookieName, cfg.Session.LoginPath, httprouters.Services{
		Auth:    auth.NewAuthService(log, registry, creds),
		Catalog: catalogService,
		Cart:    cartService,
		Order:   order.NewOrderService(log, registry, cartService, catalogService, cfg.Checkout.ShippingFee),
		Custom:  custom.NewCustomService(log, registry),
		Notice:  notices,
	})

	server := httpapp.New(log, cfg.HTTP, cfg.Session, registry, routers)
	if redis != nil {
		server.AddHealthCheck("redis", redis.HealthCheck)
	}
	server.BuildRouters()

	return &App{
		HTTPServer: server,
		Clients:    registry,
		log:        log,
		redis:      redis,
	}
}

func (a *App) Stop() {
	if err := a.HTTPServer.Stop(); err != nil {
		a.log.Error("failed to stop http server", sl.Err(err))
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Error("failed to close redis", sl.Err(err))
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
