package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	catalogdomain "github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-commerce/internal/domains/dashboard/domain"
	"github.com/Apurer/go-gin-commerce/internal/domains/dashboard/ports"
	orderdomain "github.com/Apurer/go-gin-commerce/internal/domains/orders/domain"
)

var _ ports.Reader = (*Reader)(nil)

// Reader aggregates dashboard metrics with SQL rollups.
type Reader struct {
	db *gorm.DB
}

// NewReader wires a PostgreSQL-backed reader. Caller manages DB lifecycle.
func NewReader(db *gorm.DB) *Reader {
	return &Reader{db: db}
}

type orderRollup struct {
	TotalOrders   int64           `gorm:"column:total_orders"`
	TotalRevenue  decimal.Decimal `gorm:"column:total_revenue"`
	PendingOrders int64           `gorm:"column:pending_orders"`
}

type itemRollup struct {
	TotalProducts    int64 `gorm:"column:total_products"`
	LowStockProducts int64 `gorm:"column:low_stock_products"`
}

const orderRollupSQL = `SELECT
	COUNT(*) FILTER (WHERE created_at >= @since) AS total_orders,
	COALESCE(SUM(total) FILTER (WHERE created_at >= @since AND status <> @cancelled), 0) AS total_revenue,
	COUNT(*) FILTER (WHERE status = @pending) AS pending_orders
FROM orders`

const itemRollupSQL = `SELECT
	COUNT(*) FILTER (WHERE published AND status = @available) AS total_products,
	COUNT(*) FILTER (WHERE stock <= @lowStock) AS low_stock_products
FROM items`

// Snapshot runs both rollups inside one read-only transaction.
func (r *Reader) Snapshot(ctx context.Context, since time.Time, lowStock int) (domain.Metrics, error) {
	if r == nil || r.db == nil {
		return domain.Metrics{}, errors.New("postgres dashboard reader not configured")
	}
	var (
		orders orderRollup
		items  itemRollup
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Raw(orderRollupSQL, map[string]any{
			"since":     since,
			"cancelled": string(orderdomain.StatusCancelled),
			"pending":   string(orderdomain.StatusPending),
		}).Scan(&orders).Error; err != nil {
			return err
		}
		return tx.Raw(itemRollupSQL, map[string]any{
			"available": string(catalogdomain.StatusAvailable),
			"lowStock":  lowStock,
		}).Scan(&items).Error
	})
	if err != nil {
		return domain.Metrics{}, err
	}
	return domain.Metrics{
		TotalOrders:      orders.TotalOrders,
		TotalRevenue:     orders.TotalRevenue,
		PendingOrders:    orders.PendingOrders,
		TotalProducts:    items.TotalProducts,
		LowStockProducts: items.LowStockProducts,
	}, nil
}
