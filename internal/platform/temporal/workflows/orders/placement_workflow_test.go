package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	catalogmemory "github.com/Apurer/go-gin-commerce/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"
	ordersmemory "github.com/Apurer/go-gin-commerce/internal/domains/orders/adapters/memory"
	ordersapp "github.com/Apurer/go-gin-commerce/internal/domains/orders/application"
	ordertypes "github.com/Apurer/go-gin-commerce/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-commerce/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-commerce/internal/domains/pricing"
	"github.com/Apurer/go-gin-commerce/internal/platform/memdb"
	orderactivities "github.com/Apurer/go-gin-commerce/internal/platform/temporal/activities/orders"
	"github.com/Apurer/go-gin-commerce/internal/shared/identity"
)

func placementInput() PlacementWorkflowInput {
	return PlacementWorkflowInput{
		Command: ordertypes.PlaceOrderInput{
			Owner:           identity.User("u1"),
			Lines:           []ordertypes.LineInput{{ItemID: "A", Quantity: 3}},
			ShippingAddress: domain.Address{Line1: "1 Main St", City: "Springfield", Country: "US"},
			PaymentMethod:   "card",
		},
		TraceID: "trace-1",
	}
}

func TestPlacementWorkflow_ReturnsCommittedOrder(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterActivityWithOptions(func(_ context.Context, input ordertypes.PlaceOrderInput) (*domain.Order, error) {
		return &domain.Order{
			Number: "ORD-20260302-100000-AAAAAA",
			UserID: input.Owner.UserID,
			Total:  decimal.RequireFromString("162.00"),
		}, nil
	}, activity.RegisterOptions{Name: orderactivities.PlaceOrderActivityName})

	env.ExecuteWorkflow(PlacementWorkflow, placementInput())
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var order domain.Order
	require.NoError(t, env.GetWorkflowResult(&order))
	assert.Equal(t, "ORD-20260302-100000-AAAAAA", order.Number)
	assert.Equal(t, "u1", order.UserID)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("162")))
}

func TestPlacementWorkflow_DoesNotRetryStockConflicts(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	attempts := 0
	env.RegisterActivityWithOptions(func(context.Context, ordertypes.PlaceOrderInput) (*domain.Order, error) {
		attempts++
		return nil, orderactivities.EncodeError(&catalogdomain.InsufficientStockError{ItemID: "B", Title: "B", Requested: 2, Available: 1})
	}, activity.RegisterOptions{Name: orderactivities.PlaceOrderActivityName})

	env.ExecuteWorkflow(PlacementWorkflow, placementInput())
	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	decoded := orderactivities.DecodeError(err)
	var stockErr *catalogdomain.InsufficientStockError
	require.True(t, errors.As(decoded, &stockErr))
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, "Insufficient stock for B. Available: 1", decoded.Error())
}

func TestPlacementWorkflow_RetriesInfrastructureFailures(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	attempts := 0
	env.RegisterActivityWithOptions(func(context.Context, ordertypes.PlaceOrderInput) (*domain.Order, error) {
		attempts++
		if attempts < 2 {
			return nil, errors.New("connection reset")
		}
		return &domain.Order{Number: "ORD-20260302-100000-BBBBBB"}, nil
	}, activity.RegisterOptions{Name: orderactivities.PlaceOrderActivityName})

	env.ExecuteWorkflow(PlacementWorkflow, placementInput())
	require.NoError(t, env.GetWorkflowError())
	assert.Equal(t, 2, attempts)
}

func TestPlacementWorkflow_RetryAfterCommitReplaysOrder(t *testing.T) {
	ctx := context.Background()
	db := memdb.New()
	catalog := catalogmemory.NewRepository(db)
	require.NoError(t, catalog.SaveItem(ctx, &catalogdomain.Item{
		ID:        "A",
		Slug:      "a",
		Title:     "A",
		Price:     decimal.NewFromInt(50),
		Stock:     10,
		Status:    catalogdomain.StatusAvailable,
		Published: true,
	}))
	service := ordersapp.NewService(
		ordersmemory.NewRepository(db),
		catalog,
		ordersmemory.NewCouponStore(db),
		pricing.NewCalculator(pricing.DefaultPolicy()),
		ordersapp.WithIdempotencyStore(ordersmemory.NewIdempotencyStore(db)),
	)
	activities := orderactivities.NewActivities(service)

	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	var keys, numbers []string
	env.RegisterActivityWithOptions(func(ctx context.Context, input ordertypes.PlaceOrderInput) (*domain.Order, error) {
		keys = append(keys, input.IdempotencyKey)
		order, err := activities.PlaceOrder(ctx, input)
		if err != nil {
			return nil, err
		}
		numbers = append(numbers, order.Number)
		if len(numbers) == 1 {
			return nil, errors.New("activity timed out after commit")
		}
		return order, nil
	}, activity.RegisterOptions{Name: orderactivities.PlaceOrderActivityName})

	env.ExecuteWorkflow(PlacementWorkflow, placementInput())
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	require.Len(t, keys, 2)
	assert.NotEmpty(t, keys[0])
	assert.Equal(t, keys[0], keys[1])
	require.Len(t, numbers, 2)
	assert.Equal(t, numbers[0], numbers[1])

	var order domain.Order
	require.NoError(t, env.GetWorkflowResult(&order))
	assert.Equal(t, numbers[0], order.Number)

	item, err := catalog.GetByID(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 7, item.Stock)
	require.NoError(t, db.Read(func(tables *memdb.Tables) error {
		assert.Len(t, tables.Orders, 1)
		return nil
	}))
}
