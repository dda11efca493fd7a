package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	ordertypes "github.com/Apurer/go-gin-commerce/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-commerce/internal/domains/orders/domain"
	orderactivities "github.com/Apurer/go-gin-commerce/internal/platform/temporal/activities/orders"
)

// RunOrderPlacementSequence executes the activity that commits an order.
func RunOrderPlacementSequence(ctx workflow.Context, input ordertypes.PlaceOrderInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	actor := input.Owner.Actor()
	logger.Info("order placement sequence started", "actor", actor)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    3,
		},
	}

	var order domain.Order
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, options), orderactivities.PlaceOrderActivityName, input).Get(ctx, &order)
	if err != nil {
		logger.Error("order placement sequence failed", "actor", actor, "error", err)
		return nil, err
	}
	logger.Info("order placement sequence committed", "orderNumber", order.Number)
	return &order, nil
}
