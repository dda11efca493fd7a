package ports

import (
	"context"

	ordertypes "github.com/Apurer/go-gin-commerce/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-commerce/internal/domains/orders/domain"
)

// WorkflowOrchestrator exposes durable workflow operations required by the orders bounded context.
type WorkflowOrchestrator interface {
	PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*domain.Order, error)
}
