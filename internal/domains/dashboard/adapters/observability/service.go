package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/go-gin-commerce/internal/domains/dashboard/domain"
	dashboardports "github.com/Apurer/go-gin-commerce/internal/domains/dashboard/ports"
)

const tracerName = "github.com/Apurer/go-gin-commerce/internal/domains/dashboard/adapters/observability/service"

// Service decorates the dashboard service with tracing, logging, and metrics.
type Service struct {
	inner   dashboardports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core dashboard service.
func New(inner dashboardports.Service, opts ...Option) dashboardports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) Stats(ctx context.Context, period string) (*domain.Stats, error) {
	ctx, span := s.tracer.Start(ctx, "DashboardService.Stats", trace.WithAttributes(attribute.String("dashboard.period", period)))
	defer span.End()

	stats, err := s.inner.Stats(ctx, period)
	if err != nil {
		if span != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		if s.logger != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "dashboard stats failed",
				slog.String("dashboard.period", period),
				slog.String("error", err.Error()))
		}
		return nil, err
	}
	span.SetAttributes(
		attribute.Int64("dashboard.total_orders", stats.Metrics.TotalOrders),
		attribute.Int64("dashboard.low_stock", stats.Metrics.LowStockProducts),
	)
	if s.metrics.lowStock != nil {
		s.metrics.lowStock.Record(ctx, stats.Metrics.LowStockProducts)
	}
	return stats, nil
}

type serviceMetrics struct {
	lowStock metric.Int64Gauge
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	lowStock, _ := m.Int64Gauge("dashboard.low_stock_products", metric.WithDescription("Items at or below the low stock threshold at last read"))
	return serviceMetrics{lowStock: lowStock}
}

var _ dashboardports.Service = (*Service)(nil)
