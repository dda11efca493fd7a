package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	commerceserver "github.com/Apurer/go-gin-commerce/go"
	"github.com/Apurer/go-gin-commerce/internal/app/stores"
	cartobs "github.com/Apurer/go-gin-commerce/internal/domains/cart/adapters/observability"
	cartapp "github.com/Apurer/go-gin-commerce/internal/domains/cart/application"
	catalogobs "github.com/Apurer/go-gin-commerce/internal/domains/catalog/adapters/observability"
	catalogapp "github.com/Apurer/go-gin-commerce/internal/domains/catalog/application"
	dashboardobs "github.com/Apurer/go-gin-commerce/internal/domains/dashboard/adapters/observability"
	dashboardapp "github.com/Apurer/go-gin-commerce/internal/domains/dashboard/application"
	ordersobs "github.com/Apurer/go-gin-commerce/internal/domains/orders/adapters/observability"
	ordersworkflows "github.com/Apurer/go-gin-commerce/internal/domains/orders/adapters/workflows"
	orderports "github.com/Apurer/go-gin-commerce/internal/domains/orders/ports"
	platformobservability "github.com/Apurer/go-gin-commerce/internal/platform/observability"
)

const serviceName = "commerce-api"

// Run boots the commerce HTTP API with observability, stores, and workflows wired.
// It returns once ctx is cancelled and the server has drained.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	st, closeStores, err := stores.Build(ctx, cfg.PostgresDSN, logger)
	if err != nil {
		return fmt.Errorf("failed to open stores: %w", err)
	}
	defer closeStores()
	logger.Info("stores configured", slog.String("backend", string(st.Backend)))

	catalogService := catalogobs.New(
		catalogapp.NewService(st.Catalog),
		catalogobs.WithLogger(logger),
		catalogobs.WithTracer(instruments.Tracer("internal.catalog.application")),
		catalogobs.WithMeter(instruments.Meter("internal.catalog.application")),
	)
	cartService := cartobs.New(
		cartapp.NewService(st.Carts, st.Catalog),
		cartobs.WithLogger(logger),
		cartobs.WithTracer(instruments.Tracer("internal.cart.application")),
		cartobs.WithMeter(instruments.Meter("internal.cart.application")),
	)
	coreOrderService, closePublisher := NewOrderService(cfg, st, logger)
	defer closePublisher()
	orderService := ordersobs.New(
		coreOrderService,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	dashboardService := dashboardobs.New(
		dashboardapp.NewService(st.Dashboard, dashboardapp.WithLowStockThreshold(cfg.LowStockThreshold)),
		dashboardobs.WithLogger(logger),
		dashboardobs.WithTracer(instruments.Tracer("internal.dashboard.application")),
		dashboardobs.WithMeter(instruments.Meter("internal.dashboard.application")),
	)

	var orderWorkflows orderports.WorkflowOrchestrator = ordersworkflows.NewInlineOrderWorkflows(orderService)
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, placing orders inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		orderWorkflows = ordersworkflows.NewTemporalOrderWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	responder := commerceserver.NewResponder(logger)
	handlers := commerceserver.ApiHandleFunctions{
		CatalogAPI:   commerceserver.NewCatalogAPI(catalogService, responder),
		CartAPI:      commerceserver.NewCartAPI(cartService, responder),
		OrdersAPI:    commerceserver.NewOrdersAPI(orderService, orderWorkflows, responder),
		DashboardAPI: commerceserver.NewDashboardAPI(dashboardService, responder),
	}
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set, bearer tokens will be rejected")
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), otelgin.Middleware(serviceName))
	router := commerceserver.NewRouterWithGinEngine(engine, handlers,
		commerceserver.RequestTimeout(cfg.RequestTimeout),
		commerceserver.IdentityMiddleware(commerceserver.IdentityConfig{
			JWTSecret:     []byte(cfg.JWTSecret),
			SessionMaxAge: cfg.CartTTL,
		}, responder),
	)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Commerce API listening", slog.String("addr", server.Addr))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("Commerce API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout+5*time.Second)
	defer cancel()
	logger.Info("Commerce API shutting down")
	return server.Shutdown(shutdownCtx)
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
