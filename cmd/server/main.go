package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/pantry/internal"
	"github.com/dukerupert/pantry/internal/auth"
	"github.com/dukerupert/pantry/internal/connectivity"
	"github.com/dukerupert/pantry/internal/domain"
	"github.com/dukerupert/pantry/internal/events"
	"github.com/dukerupert/pantry/internal/firestore"
	"github.com/dukerupert/pantry/internal/handler"
	"github.com/dukerupert/pantry/internal/handler/admin"
	"github.com/dukerupert/pantry/internal/handler/storefront"
	"github.com/dukerupert/pantry/internal/memstore"
	"github.com/dukerupert/pantry/internal/middleware"
	"github.com/dukerupert/pantry/internal/router"
	"github.com/dukerupert/pantry/internal/routes"
	"github.com/dukerupert/pantry/internal/service"
	"github.com/dukerupert/pantry/internal/storage"
	"github.com/dukerupert/pantry/internal/telemetry"
	"github.com/getsentry/sentry-go"
)

// backend bundles the repositories and token verifier for one data source.
type backend struct {
	products  domain.ProductRepository
	orders    domain.OrderRepository
	inventory domain.InventoryRepository
	users     domain.UserRepository
	verifier  auth.Verifier
	probe     func(ctx context.Context) bool
	close     func() error
}

func openBackend(ctx context.Context, cfg *internal.Config, logger *slog.Logger) (*backend, error) {
	switch cfg.Backend {
	case "firestore":
		client, err := firestore.NewClient(ctx, firestore.Config{
			ProjectID:       cfg.Firebase.ProjectID,
			CredentialsFile: cfg.Firebase.CredentialsFile,
			EmulatorHost:    cfg.Firebase.EmulatorHost,
		})
		if err != nil {
			return nil, fmt.Errorf("firestore client: %w", err)
		}

		verifier, err := auth.NewFirebaseVerifier(ctx, auth.FirebaseConfig{
			ProjectID:       cfg.Firebase.ProjectID,
			CredentialsFile: cfg.Firebase.CredentialsFile,
			AdminUIDs:       cfg.Admin.UIDs,
		})
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("firebase auth: %w", err)
		}

		logger.Info("Using Firestore backend", "project", cfg.Firebase.ProjectID, "emulator", cfg.Firebase.EmulatorHost != "")
		return &backend{
			products:  firestore.NewProductRepository(client),
			orders:    firestore.NewOrderRepository(client),
			inventory: firestore.NewInventoryRepository(client),
			users:     firestore.NewUserRepository(client),
			verifier:  verifier,
			probe: func(ctx context.Context) bool {
				return firestore.Ping(ctx, client) == nil
			},
			close: client.Close,
		}, nil

	default:
		store := memstore.New()
		store.Seed(memstore.DemoCatalog(), time.Now())
		logger.Warn("Using in-memory backend with demo catalog; tokens are accepted as \"uid\" or \"uid:admin\"")
		return &backend{
			products:  store,
			orders:    store,
			inventory: store,
			users:     store,
			verifier:  auth.DevVerifier{},
			close:     func() error { return nil },
		}, nil
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Error tracking
	flushSentry, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:              cfg.Sentry.DSN,
		Enabled:          cfg.Sentry.Enabled,
		Environment:      cfg.Sentry.Environment,
		Release:          cfg.Sentry.Release,
		SampleRate:       cfg.Sentry.SampleRate,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
		Debug:            cfg.Sentry.Debug,
	}, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer flushSentry()

	telemetry.InitBusinessMetrics("pantry")

	// Backend
	be, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer be.close()

	files, err := storage.NewStorage(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATS.URL != "" {
		nc, err := events.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix, logger)
		if err != nil {
			return fmt.Errorf("nats connection failed: %w", err)
		}
		publisher = nc
		logger.Info("Publishing events to NATS", "url", cfg.NATS.URL, "prefix", cfg.NATS.SubjectPrefix)
	}
	defer publisher.Close()

	// ==========================================================================
	// Connectivity
	// ==========================================================================

	var monitorOpts []connectivity.Option
	if be.probe != nil {
		monitorOpts = append(monitorOpts, connectivity.WithProbe(be.probe))
	}
	monitor := connectivity.NewMonitor(connectivity.Config{
		ProbeURL:     cfg.Connectivity.ProbeURL,
		Interval:     cfg.Connectivity.Interval,
		ProbeTimeout: cfg.Connectivity.ProbeTimeout,
	}, logger, monitorOpts...)

	monitor.Subscribe(func(s connectivity.Status) {
		telemetry.Business.SetOnline(s.Online())
		telemetry.AddBreadcrumb("connectivity", "status changed", map[string]interface{}{
			"connected": s.Connected,
			"reachable": s.Reachable,
		})
		if !s.Online() {
			telemetry.CaptureMessage("backend unreachable", sentry.LevelWarning, map[string]interface{}{
				"connected": s.Connected,
				"reachable": s.Reachable,
			})
		}
	})
	telemetry.Business.SetOnline(true)

	gate := connectivity.NewGate(monitor, telemetry.Business.Blocked)

	// ==========================================================================
	// Services
	// ==========================================================================

	carts := service.NewCartRegistry()
	productService := service.NewProductService(be.products, files, gate, logger)
	inventoryService := service.NewInventoryService(be.inventory, gate, publisher, logger)
	orderService := service.NewOrderService(be.orders, inventoryService, carts, gate, publisher, logger,
		service.OrderConfig{Location: cfg.Location()})
	userService := service.NewUserService(be.users, gate, logger)

	monitor.AddRefresher(productService)

	go func() {
		defer telemetry.RecoverWithSentry()
		monitor.Run(ctx)
	}()

	// ==========================================================================
	// Initialize middleware
	// ==========================================================================

	metrics := middleware.NewMetrics("pantry", nil)

	securityConfig := middleware.DefaultSecurityHeadersConfig()
	if cfg.Env == "dev" {
		securityConfig.HSTSMaxAge = 0
	}

	defaultRateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	defer defaultRateLimiter.Stop()
	checkoutRateLimiter := middleware.NewRateLimiter(middleware.StrictRateLimiterConfig())
	defer checkoutRateLimiter.Stop()

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	r := router.New(
		router.Recovery(logger),
		telemetry.SentryMiddleware(),
		middleware.RequestID,
		middleware.WithRequestLogger(logger),
		metrics.Middleware,
		middleware.SecurityHeaders(securityConfig),
		router.Logger(logger),
		middleware.Authenticate(be.verifier),
		telemetry.SentryContextMiddleware(func(ctx context.Context) *telemetry.UserInfo {
			if id := domain.IdentityFromContext(ctx); id != nil {
				return &telemetry.UserInfo{ID: id.UID, Email: id.Email}
			}
			return nil
		}),
		defaultRateLimiter.Middleware,
	)

	opsDeps := routes.OpsDeps{
		HealthHandler:  handler.Health(cfg.Backend, monitor),
		MetricsHandler: metrics.Handler(),
	}
	if cfg.Storage.Provider == "local" {
		opsDeps.UploadsDir = cfg.Storage.LocalPath
		opsDeps.UploadsURL = cfg.Storage.LocalURL
	}

	routes.RegisterOpsRoutes(r, opsDeps)
	routes.RegisterStorefrontRoutes(r, routes.StorefrontDeps{
		ProductHandler:  storefront.NewProductHandler(productService),
		CartHandler:     storefront.NewCartHandler(carts, productService),
		CheckoutHandler: storefront.NewCheckoutHandler(orderService),
		OrderHandler:    storefront.NewOrderHandler(orderService),
		ProfileHandler:  storefront.NewProfileHandler(userService),
		CheckoutLimit:   checkoutRateLimiter.Middleware,
	})
	routes.RegisterAdminRoutes(r, routes.AdminDeps{
		ProductHandler:   admin.NewProductHandler(productService),
		OrderHandler:     admin.NewOrderHandler(orderService),
		InventoryHandler: admin.NewInventoryHandler(inventoryService),
	})
	logger.Debug("Routes registered", "routes", r.Routes())

	// Preflight requests match no route, so CORS wraps the whole router.
	root := router.CORS(router.SplitOrigins(cfg.CORSOrigins))(r)

	// ==========================================================================
	// Start server
	// ==========================================================================

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", srv.Addr, "env", cfg.Env, "backend", cfg.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
