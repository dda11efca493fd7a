package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	ordertypes "github.com/Apurer/go-gin-commerce/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-commerce/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-commerce/internal/domains/orders/ports"
)

// PlaceOrderActivityName runs the order placement transaction.
const PlaceOrderActivityName = "orders.activities.PlaceOrder"

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service orderports.Service
}

// NewActivities wires the orders service into the Temporal activities bundle.
func NewActivities(service orderports.Service) *Activities {
	return &Activities{service: service}
}

// PlaceOrder commits an order. Business rejections are returned as non-retryable errors.
func (a *Activities) PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*domain.Order, error) {
	logger := activity.GetLogger(ctx)
	actor := input.Owner.Actor()
	if a == nil || a.service == nil {
		logger.Error("order placement activity not initialized", "actor", actor)
		return nil, errors.New("order placement activity not initialized")
	}
	logger.Info("PlaceOrder activity started", "actor", actor, "lines", len(input.Lines))
	order, err := a.service.PlaceOrder(ctx, input)
	if err != nil {
		logger.Error("PlaceOrder activity failed", "actor", actor, "error", err)
		return nil, EncodeError(err)
	}
	logger.Info("PlaceOrder activity completed", "orderNumber", order.Number)
	return order, nil
}
