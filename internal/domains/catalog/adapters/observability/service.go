package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	catalogtypes "github.com/Apurer/go-gin-commerce/internal/domains/catalog/application/types"
	catalogdomain "github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/go-gin-commerce/internal/domains/catalog/ports"
)

const tracerName = "github.com/Apurer/go-gin-commerce/internal/domains/catalog/adapters/observability/service"

// Service decorates the catalog service with tracing, logging, and metrics.
type Service struct {
	inner   catalogports.Service
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

// New wraps the core catalog service.
func New(inner catalogports.Service, opts ...Option) catalogports.Service {
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

func (s *Service) Search(ctx context.Context, input catalogtypes.SearchInput) (*catalogtypes.SearchResult, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.Search", trace.WithAttributes(
		attribute.String("search.q", input.Query),
		attribute.String("search.category", input.Category),
		attribute.String("search.sort_by", input.SortBy),
		attribute.String("search.page", input.Page),
	))
	defer span.End()

	result, err := s.inner.Search(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "catalog search failed", slog.String("search.q", input.Query))
	}
	span.SetAttributes(
		attribute.Int64("search.total", result.Pagination.Total),
		attribute.Int("search.returned", len(result.Listings)),
	)
	s.metrics.recordSearch(ctx, len(result.Listings) == 0)
	s.logDebug(ctx, "catalog search served",
		slog.String("search.q", input.Query),
		slog.Int64("search.total", result.Pagination.Total),
		slog.Int("search.page", result.Pagination.Page))
	return result, nil
}

func (s *Service) GetItem(ctx context.Context, id string) (*catalogdomain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.GetItem", trace.WithAttributes(attribute.String("item.id", id)))
	defer span.End()

	item, err := s.inner.GetItem(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load item", slog.String("item.id", id))
	}
	return item, nil
}

func (s *Service) logDebug(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelDebug, msg, attrs...)
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
	searches metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	searches, _ := m.Int64Counter("catalog.service.searches", metric.WithDescription("Number of catalog searches served"))
	return serviceMetrics{searches: searches}
}

func (m serviceMetrics) recordSearch(ctx context.Context, empty bool) {
	if m.searches != nil {
		m.searches.Add(ctx, 1, metric.WithAttributes(attribute.Bool("search.empty", empty)))
	}
}

var _ catalogports.Service = (*Service)(nil)
