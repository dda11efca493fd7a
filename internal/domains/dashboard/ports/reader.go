package ports

import (
	"context"
	"time"

	"github.com/Apurer/go-gin-commerce/internal/domains/dashboard/domain"
)

// Reader computes the rollups from the order and catalog stores (outbound/driven port).
type Reader interface {
	// Snapshot aggregates orders created at or after since and items at or below lowStock.
	Snapshot(ctx context.Context, since time.Time, lowStock int) (domain.Metrics, error)
}
