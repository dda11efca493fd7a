package orders

import (
	"strings"

	"go.temporal.io/sdk/workflow"

	ordertypes "github.com/Apurer/go-gin-commerce/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-commerce/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-commerce/internal/platform/temporal/sequences"
)

const (
	// PlacementWorkflowName is the public identifier for registering the workflow.
	PlacementWorkflowName = "orders.workflows.Placement"
	// PlacementTaskQueue is the queue consumed by the worker processing order workflows.
	PlacementTaskQueue = "ORDER_PLACEMENT"
)

// PlacementWorkflowInput captures the checkout command and the caller's trace.
type PlacementWorkflowInput struct {
	Command ordertypes.PlaceOrderInput
	TraceID string
}

// PlacementWorkflow commits an order through the placement activity. A command
// without an idempotency key is keyed by the workflow ID, so an activity retry
// after a commit replays the order instead of placing it again.
func PlacementWorkflow(ctx workflow.Context, input PlacementWorkflowInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	actor := input.Command.Owner.Actor()
	if strings.TrimSpace(input.Command.IdempotencyKey) == "" {
		input.Command.IdempotencyKey = workflow.GetInfo(ctx).WorkflowExecution.ID
	}
	logger.Info("PlacementWorkflow started", withTraceID(input.TraceID, "actor", actor)...)
	order, err := sequences.RunOrderPlacementSequence(ctx, input.Command)
	if err != nil {
		logger.Error("PlacementWorkflow failed", withTraceID(input.TraceID, "actor", actor, "error", err)...)
		return nil, err
	}
	logger.Info("PlacementWorkflow completed", withTraceID(input.TraceID, "orderNumber", order.Number)...)
	return order, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
