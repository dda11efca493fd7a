package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Apurer/go-gin-commerce/internal/domains/dashboard/domain"
	"github.com/Apurer/go-gin-commerce/internal/domains/dashboard/ports"
)

// ErrInvalidInput signals a malformed dashboard request.
var ErrInvalidInput = errors.New("invalid dashboard input")

// Service serves the dashboard rollups.
type Service struct {
	reader   ports.Reader
	lowStock int
	now      func() time.Time
}

// Option customises the service.
type Option func(*Service)

// WithLowStockThreshold overrides the low stock level. Negative values are ignored.
func WithLowStockThreshold(threshold int) Option {
	return func(s *Service) {
		if threshold >= 0 {
			s.lowStock = threshold
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the dashboard service.
func NewService(reader ports.Reader, opts ...Option) *Service {
	s := &Service{reader: reader, lowStock: domain.DefaultLowStockThreshold, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Stats aggregates the metrics for the requested trailing period.
func (s *Service) Stats(ctx context.Context, raw string) (*domain.Stats, error) {
	period, err := domain.ParsePeriod(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	since := period.Since(s.now().UTC())
	metrics, err := s.reader.Snapshot(ctx, since, s.lowStock)
	if err != nil {
		return nil, err
	}
	return &domain.Stats{Metrics: metrics, Period: period, Since: since}, nil
}

var _ ports.Service = (*Service)(nil)
