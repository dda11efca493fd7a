package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-commerce/internal/app/api"
	"github.com/Apurer/go-gin-commerce/internal/app/stores"
	ordersobs "github.com/Apurer/go-gin-commerce/internal/domains/orders/adapters/observability"
	platformobservability "github.com/Apurer/go-gin-commerce/internal/platform/observability"
	orderactivities "github.com/Apurer/go-gin-commerce/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-gin-commerce/internal/platform/temporal/workflows/orders"
)

const serviceName = "commerce-worker"

// Run hosts the order placement workflow and its activity until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := api.LoadConfig()
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
	if st.Backend == stores.BackendMemory {
		logger.Warn("worker is using in-memory stores, orders will not be visible to the API process")
	}

	coreOrderService, closePublisher := api.NewOrderService(cfg, st, logger)
	defer closePublisher()
	orderService := ordersobs.New(
		coreOrderService,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	activities := orderactivities.NewActivities(orderService)

	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")})
	if err != nil {
		return fmt.Errorf("failed to configure Temporal tracing interceptor: %w", err)
	}
	clientOptions := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		return fmt.Errorf("failed to create Temporal client: %w", err)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.PlacementTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.PlacementWorkflow, workflow.RegisterOptions{Name: orderworkflows.PlacementWorkflowName})
	w.RegisterActivityWithOptions(activities.PlaceOrder, activity.RegisterOptions{Name: orderactivities.PlaceOrderActivityName})

	stop := make(chan interface{})
	go func() {
		<-ctx.Done()
		close(stop)
	}()
	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.PlacementTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(stop); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Temporal worker stopped")
	return nil
}
