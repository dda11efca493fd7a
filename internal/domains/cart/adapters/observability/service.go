package observability

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	carttypes "github.com/Apurer/go-gin-commerce/internal/domains/cart/application/types"
	cartports "github.com/Apurer/go-gin-commerce/internal/domains/cart/ports"
	"github.com/Apurer/go-gin-commerce/internal/shared/identity"
)

const tracerName = "github.com/Apurer/go-gin-commerce/internal/domains/cart/adapters/observability/service"

// Service decorates the cart service with tracing, logging, and metrics.
type Service struct {
	inner   cartports.Service
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

// New wraps the core cart service.
func New(inner cartports.Service, opts ...Option) cartports.Service {
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

func (s *Service) Get(ctx context.Context, owner identity.Identity) (*carttypes.CartView, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.Get", trace.WithAttributes(attribute.Bool("cart.owner.user", owner.IsUser())))
	defer span.End()

	view, err := s.inner.Get(ctx, owner)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load cart", slog.String("cart.owner", owner.Key()))
	}
	span.SetAttributes(attribute.Int("cart.item_count", view.ItemCount))
	return view, nil
}

func (s *Service) AddLine(ctx context.Context, input carttypes.AddLineInput) (*carttypes.CartView, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.AddLine", trace.WithAttributes(
		attribute.String("item.id", input.ItemID),
		attribute.Int("cart.line.quantity", input.Quantity),
	))
	defer span.End()

	s.logInfo(ctx, "adding item to cart",
		slog.String("cart.owner", input.Owner.Key()),
		slog.String("item.id", input.ItemID),
		slog.Int("quantity", input.Quantity))
	view, err := s.inner.AddLine(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to add item to cart", slog.String("item.id", input.ItemID))
	}
	s.metrics.recordAdded(ctx, input.Quantity)
	span.SetAttributes(attribute.Int("cart.item_count", view.ItemCount))
	return view, nil
}

func (s *Service) Clear(ctx context.Context, owner identity.Identity) error {
	ctx, span := s.tracer.Start(ctx, "CartService.Clear")
	defer span.End()

	if err := s.inner.Clear(ctx, owner); err != nil {
		return s.handleError(ctx, span, err, "failed to clear cart", slog.String("cart.owner", owner.Key()))
	}
	s.logInfo(ctx, "cart cleared", slog.String("cart.owner", owner.Key()))
	return nil
}

func (s *Service) PurgeAnonymous(ctx context.Context, olderThan time.Time) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.PurgeAnonymous", trace.WithAttributes(attribute.String("cart.cutoff", olderThan.UTC().Format(time.RFC3339))))
	defer span.End()

	removed, err := s.inner.PurgeAnonymous(ctx, olderThan)
	if err != nil {
		return 0, s.handleError(ctx, span, err, "failed to purge anonymous carts")
	}
	s.metrics.recordPurged(ctx, removed)
	s.logInfo(ctx, "anonymous carts purged", slog.Int64("removed", removed), slog.Time("cutoff", olderThan))
	return removed, nil
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

type serviceMetrics struct {
	unitsAdded metric.Int64Counter
	purged     metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	unitsAdded, _ := m.Int64Counter("cart.service.units_added", metric.WithDescription("Units added to carts"))
	purged, _ := m.Int64Counter("cart.service.carts_purged", metric.WithDescription("Anonymous carts purged"))
	return serviceMetrics{unitsAdded: unitsAdded, purged: purged}
}

func (m serviceMetrics) recordAdded(ctx context.Context, quantity int) {
	if m.unitsAdded != nil {
		m.unitsAdded.Add(ctx, int64(quantity))
	}
}

func (m serviceMetrics) recordPurged(ctx context.Context, removed int64) {
	if m.purged != nil {
		m.purged.Add(ctx, removed)
	}
}

var _ cartports.Service = (*Service)(nil)
