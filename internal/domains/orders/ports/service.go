package ports

import (
	"context"

	ordertypes "github.com/Apurer/go-gin-commerce/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-commerce/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-commerce/internal/shared/identity"
)

// Service defines the orders use cases exposed to adapters (inbound/driving port).
type Service interface {
	PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, number string, caller identity.Identity) (*domain.Order, error)
}
