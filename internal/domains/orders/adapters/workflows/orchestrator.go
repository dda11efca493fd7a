package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	ordertypes "github.com/Apurer/go-gin-commerce/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-commerce/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-commerce/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/go-gin-commerce/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-gin-commerce/internal/platform/temporal/workflows/orders"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalOrderWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineOrderWorkflows)(nil)
)

// TemporalOrderWorkflows starts order workflows on a Temporal cluster.
type TemporalOrderWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalOrderWorkflows wires a Temporal client into the orchestrator.
func NewTemporalOrderWorkflows(c client.Client) *TemporalOrderWorkflows {
	return &TemporalOrderWorkflows{client: c, taskQueue: orderworkflows.PlacementTaskQueue}
}

// PlaceOrder runs the placement workflow and waits for its result.
func (o *TemporalOrderWorkflows) PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*domain.Order, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal order workflows not configured")
	}
	traceID := workflowTraceID(ctx)
	workflowID := buildPlacementWorkflowID(input)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		orderworkflows.PlacementWorkflowName,
		orderworkflows.PlacementWorkflowInput{Command: input, TraceID: traceID},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) && strings.TrimSpace(input.IdempotencyKey) != "" {
			existing := o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
			var order domain.Order
			if err := existing.Get(ctx, &order); err != nil {
				return nil, orderactivities.DecodeError(err)
			}
			return &order, nil
		}
		return nil, err
	}
	var order domain.Order
	if err := run.Get(ctx, &order); err != nil {
		return nil, orderactivities.DecodeError(err)
	}
	return &order, nil
}

// InlineOrderWorkflows executes the service directly without Temporal.
type InlineOrderWorkflows struct {
	service ports.Service
}

// NewInlineOrderWorkflows wraps the orders service for synchronous execution.
func NewInlineOrderWorkflows(service ports.Service) *InlineOrderWorkflows {
	return &InlineOrderWorkflows{service: service}
}

// PlaceOrder delegates to the application service without durable orchestration.
func (o *InlineOrderWorkflows) PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*domain.Order, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline order workflows not configured")
	}
	return o.service.PlaceOrder(ctx, input)
}

// buildPlacementWorkflowID derives a stable ID from the caller and idempotency key so a
// retried request joins the original run. Requests without a key get a fresh ID.
func buildPlacementWorkflowID(input ordertypes.PlaceOrderInput) string {
	if key := strings.TrimSpace(input.IdempotencyKey); key != "" {
		return fmt.Sprintf("order-placement-idem-%s", hashIdempotencyKey(input.Owner.Key()+"|"+key))
	}
	return fmt.Sprintf("order-placement-%s", uuid.NewString())
}

func hashIdempotencyKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
