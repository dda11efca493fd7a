package ports

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-commerce/internal/domains/cart/domain"
	catalogdomain "github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-commerce/internal/shared/identity"
)

// ErrNotFound is returned when the owner has no cart yet.
var ErrNotFound = errors.New("cart not found")

// Repository stores carts keyed by owner.
type Repository interface {
	Get(ctx context.Context, owner identity.Identity) (*domain.Cart, error)
	// AddLine creates the cart on first use and increments-or-inserts the line
	// while holding the cart lock, returning the updated cart.
	AddLine(ctx context.Context, owner identity.Identity, itemID string, quantity int, price decimal.Decimal) (*domain.Cart, error)
	// Clear removes every line of the owner's cart. Missing carts are not an error.
	Clear(ctx context.Context, owner identity.Identity) error
	// PurgeAnonymous deletes session carts not touched since the cutoff and reports how many were removed.
	PurgeAnonymous(ctx context.Context, olderThan time.Time) (int64, error)
}

// CatalogReader is the slice of the catalog the cart needs.
type CatalogReader interface {
	GetByID(ctx context.Context, id string) (*catalogdomain.Item, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*catalogdomain.Item, error)
}
