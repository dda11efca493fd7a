package ports

import (
	"context"
	"time"

	carttypes "github.com/Apurer/go-gin-commerce/internal/domains/cart/application/types"
	"github.com/Apurer/go-gin-commerce/internal/shared/identity"
)

// Service defines the cart use cases exposed to adapters (inbound/driving port).
type Service interface {
	Get(ctx context.Context, owner identity.Identity) (*carttypes.CartView, error)
	AddLine(ctx context.Context, input carttypes.AddLineInput) (*carttypes.CartView, error)
	Clear(ctx context.Context, owner identity.Identity) error
	PurgeAnonymous(ctx context.Context, olderThan time.Time) (int64, error)
}
