package observability

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	catalogdomain "github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"
	ordertypes "github.com/Apurer/go-gin-commerce/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-commerce/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-commerce/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-commerce/internal/shared/identity"
)

const tracerName = "github.com/Apurer/go-gin-commerce/internal/domains/orders/adapters/observability/service"

// Service decorates the orders service with tracing, logging, and metrics.
type Service struct {
	inner   orderports.Service
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

// New wraps the core orders service.
func New(inner orderports.Service, opts ...Option) orderports.Service {
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

func (s *Service) PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.PlaceOrder", trace.WithAttributes(
		attribute.String("order.actor", input.Owner.Actor()),
		attribute.Int("order.lines", len(input.Lines)),
		attribute.Bool("order.idempotent", input.IdempotencyKey != ""),
	))
	defer span.End()

	order, err := s.inner.PlaceOrder(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, rejectionReason(err))
		return nil, s.handleError(ctx, span, err, "failed to place order", slog.String("order.actor", input.Owner.Actor()))
	}
	span.SetAttributes(
		attribute.String("order.number", order.Number),
		attribute.String("order.total", order.Total.StringFixed(2)),
	)
	s.metrics.recordPlaced(ctx, order)
	s.logInfo(ctx, "order placed",
		slog.String("order.number", order.Number),
		slog.String("order.actor", input.Owner.Actor()),
		slog.String("order.total", order.Total.StringFixed(2)),
		slog.Int("order.lines", len(order.Lines)))
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, number string, caller identity.Identity) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.GetOrder", trace.WithAttributes(attribute.String("order.number", number)))
	defer span.End()

	order, err := s.inner.GetOrder(ctx, number, caller)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order.number", number))
	}
	return order, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
	}
	return err
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, catalogdomain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, catalogdomain.ErrItemNotFound), errors.Is(err, catalogdomain.ErrItemUnavailable):
		return "item_unavailable"
	case errors.Is(err, orderports.ErrIdempotencyConflict):
		return "idempotency_conflict"
	default:
		return "other"
	}
}

type serviceMetrics struct {
	placed   metric.Int64Counter
	rejected metric.Int64Counter
	units    metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	placed, _ := m.Int64Counter("orders.service.placed", metric.WithDescription("Number of orders committed"))
	rejected, _ := m.Int64Counter("orders.service.rejected", metric.WithDescription("Number of order requests rejected"))
	units, _ := m.Int64Counter("orders.service.units_sold", metric.WithDescription("Units taken from stock by orders"))
	return serviceMetrics{placed: placed, rejected: rejected, units: units}
}

func (m serviceMetrics) recordPlaced(ctx context.Context, order *domain.Order) {
	if m.placed != nil {
		m.placed.Add(ctx, 1, metric.WithAttributes(attribute.Bool("order.anonymous", order.UserID == "")))
	}
	if m.units != nil {
		var units int64
		for _, line := range order.Lines {
			units += int64(line.Quantity)
		}
		m.units.Add(ctx, units)
	}
}

func (m serviceMetrics) recordRejected(ctx context.Context, reason string) {
	if m.rejected != nil {
		m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	}
}

var _ orderports.Service = (*Service)(nil)
