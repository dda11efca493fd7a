package ports

import (
	"context"

	catalogdomain "github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-commerce/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-commerce/internal/domains/pricing"
	"github.com/Apurer/go-gin-commerce/internal/shared/identity"
)

// ErrNotFound is returned when an order number is unknown.
var ErrNotFound = domain.ErrOrderNotFound

// Placement is everything the order transaction writes.
type Placement struct {
	Order *domain.Order
	// Actor is recorded on every inventory adjustment.
	Actor string
	// ClearCartOf names the owner whose cart is emptied in the same transaction; zero keeps every cart.
	ClearCartOf identity.Identity
	// Idempotency, when set, is stored in the same transaction under Order.Number.
	Idempotency *IdempotencyRecord
}

// Repository persists orders. Place is the only writer of stock.
type Repository interface {
	// Place inserts the order and its lines, decrements stock per line with a
	// conditional update, appends one adjustment per line, and clears the cart,
	// all in one transaction. A line whose decrement matches no row aborts
	// everything with *catalogdomain.InsufficientStockError or *catalogdomain.NotFoundError.
	// A number collision returns domain.ErrDuplicateOrderNumber and an idempotency key
	// that is already stored returns ErrIdempotencyKeyInUse, both without writing.
	Place(ctx context.Context, placement Placement) ([]domain.InventoryAdjustment, error)
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	// Adjustments lists the audit rows of an item, oldest first.
	Adjustments(ctx context.Context, itemID string) ([]domain.InventoryAdjustment, error)
}

// CatalogReader is the slice of the catalog order placement reads.
type CatalogReader interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]*catalogdomain.Item, error)
}

// CouponLookup resolves coupon codes. Unknown codes yield nil without error.
type CouponLookup interface {
	FindCoupon(ctx context.Context, code string) (*pricing.Coupon, error)
}

// EventPublisher announces committed orders to other systems.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event domain.OrderPlaced) error
}
