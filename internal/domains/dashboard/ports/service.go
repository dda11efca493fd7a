package ports

import (
	"context"

	"github.com/Apurer/go-gin-commerce/internal/domains/dashboard/domain"
)

// Service defines the dashboard use cases exposed to adapters (inbound/driving port).
type Service interface {
	Stats(ctx context.Context, period string) (*domain.Stats, error)
}
