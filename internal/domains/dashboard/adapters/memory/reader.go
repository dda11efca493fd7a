package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-commerce/internal/domains/dashboard/domain"
	"github.com/Apurer/go-gin-commerce/internal/domains/dashboard/ports"
	orderdomain "github.com/Apurer/go-gin-commerce/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-commerce/internal/platform/memdb"
)

var _ ports.Reader = (*Reader)(nil)

// Reader aggregates over the shared memdb tables.
type Reader struct {
	db *memdb.DB
}

func NewReader(db *memdb.DB) *Reader {
	return &Reader{db: db}
}

func (r *Reader) Snapshot(_ context.Context, since time.Time, lowStock int) (domain.Metrics, error) {
	metrics := domain.Metrics{TotalRevenue: decimal.Zero}
	err := r.db.Read(func(t *memdb.Tables) error {
		for _, order := range t.Orders {
			if order.Status == orderdomain.StatusPending {
				metrics.PendingOrders++
			}
			if order.CreatedAt.Before(since) {
				continue
			}
			metrics.TotalOrders++
			if order.Status != orderdomain.StatusCancelled {
				metrics.TotalRevenue = metrics.TotalRevenue.Add(order.Total)
			}
		}
		for _, item := range t.Items {
			if item.Published && item.Status == catalogdomain.StatusAvailable {
				metrics.TotalProducts++
			}
			if item.Stock <= lowStock {
				metrics.LowStockProducts++
			}
		}
		return nil
	})
	return metrics, err
}
