package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/quickshop/storefront/internal/domain/cart"
	"github.com/quickshop/storefront/internal/domain/catalog"
	"github.com/quickshop/storefront/internal/handler"
	"github.com/quickshop/storefront/internal/remote"
	"github.com/quickshop/storefront/internal/storage"
	"github.com/quickshop/storefront/internal/storage/postgres"
	"github.com/quickshop/storefront/internal/store"
	"github.com/quickshop/storefront/pkg/health"
	"github.com/quickshop/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("catalog", cfg.Catalog.Source),
	)

	// Cart persistence backend.
	cartStore, backendPing, closeBackend, err := buildCartStore(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "create cart storage")
	}
	if closeBackend != nil {
		defer closeBackend()
	}

	// Catalog source.
	source, err := buildSource(cfg)
	if err != nil {
		return errors.Wrap(err, "create catalog source")
	}
	if c, ok := source.(*remote.Client); ok {
		defer c.Close()
	}

	// Store, hydrated from the persisted cart, then bootstrapped in the
	// background so a slow catalog never blocks startup.
	productStore := store.New(cartStore, lg.Named("store"))
	productStore.Hydrate(ctx)
	loader := store.NewLoader(productStore, source, lg.Named("loader"))
	go func() {
		// Errors are recorded in the store's APIState; a client can
		// retry through POST /api/catalog/refresh.
		_ = loader.Load(ctx)
	}()

	// Health check service.
	healthSvc := health.New()
	if backendPing != nil {
		healthSvc.AddReadinessCheck("cart-storage", 5*time.Second, backendPing)
	}
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Router: health endpoints + API routes on one server.
	h := handler.New(productStore, source, loader)
	router := chi.NewRouter()
	router.Get("/livez", healthSvc.LiveEndpoint)
	router.Get("/readyz", healthSvc.ReadyEndpoint)
	router.Mount("/api", h.Routes())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(router,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("storefront", m),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: drop readiness, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// buildCartStore constructs the persistence adapter for the configured
// driver. The returned ping is nil for drivers with nothing worth probing.
func buildCartStore(ctx context.Context, cfg *Config) (cart.Store, health.CheckFunc, func(), error) {
	switch cfg.Storage.Driver {
	case "none":
		return storage.NewCartStore(storage.Noop{}, cfg.Storage.Key), nil, nil, nil
	case "memory":
		return storage.NewCartStore(storage.NewMemory(), cfg.Storage.Key), nil, nil, nil
	case "file":
		backend, err := storage.NewFile(cfg.Storage.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		return storage.NewCartStore(backend, cfg.Storage.Key), backend.Ping, nil, nil
	case "redis":
		backend, err := storage.NewRedis(ctx, cfg.Storage.RedisURL, "storefront")
		if err != nil {
			return nil, nil, nil, err
		}
		return storage.NewCartStore(backend, cfg.Storage.Key), backend.Ping, func() { _ = backend.Close() }, nil
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		ping := func(ctx context.Context) error { return pool.Ping(ctx) }
		return postgres.NewCartStore(pool, cfg.Storage.Key), ping, pool.Close, nil
	default:
		return nil, nil, nil, errors.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func buildSource(cfg *Config) (catalog.Source, error) {
	switch cfg.Catalog.Source {
	case "snapshot":
		return remote.OpenSnapshotSource(cfg.Catalog.SnapshotPath)
	case "remote":
		return remote.NewClient(remote.ClientConfig{
			BaseURL:    cfg.Catalog.BaseURL,
			Timeout:    cfg.Catalog.Timeout,
			RetryCount: cfg.Catalog.RetryCount,
		}), nil
	default:
		return nil, errors.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}
}
