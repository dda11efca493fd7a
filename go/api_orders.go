package commerceserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/Apurer/go-gin-commerce/internal/domains/orders/adapters/http/mapper"
	ordertypes "github.com/Apurer/go-gin-commerce/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-commerce/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-commerce/internal/domains/orders/ports"
	apierrors "github.com/Apurer/go-gin-commerce/internal/shared/errors"
)

// IdempotencyKeyHeader lets clients retry order placement safely.
const IdempotencyKeyHeader = "Idempotency-Key"

// OrdersAPI wires HTTP transport with the orders bounded context service and workflows.
type OrdersAPI struct {
	service   orderports.Service
	workflows orderports.WorkflowOrchestrator
	responder *apierrors.Responder
}

// NewOrdersAPI creates an OrdersAPI. A nil orchestrator places orders through the service directly.
func NewOrdersAPI(service orderports.Service, workflows orderports.WorkflowOrchestrator, responder *apierrors.Responder) OrdersAPI {
	return OrdersAPI{service: service, workflows: workflows, responder: responder}
}

// Post /api/commerce/orders
// Place an order
func (api *OrdersAPI) CreateOrder(c *gin.Context) {
	var payload orderhttpmapper.CreateOrder
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	input := orderhttpmapper.ToPlaceOrderInput(payload, callerOf(c), key)
	order, err := api.placeOrder(c.Request.Context(), input)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderhttpmapper.FromDomain(order))
}

func (api *OrdersAPI) placeOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*domain.Order, error) {
	if api.workflows != nil {
		return api.workflows.PlaceOrder(ctx, input)
	}
	return api.service.PlaceOrder(ctx, input)
}

// Get /api/commerce/orders/:orderNumber
// Find one of the caller's orders
func (api *OrdersAPI) GetOrder(c *gin.Context) {
	order, err := api.service.GetOrder(c.Request.Context(), c.Param("orderNumber"), callerOf(c))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomain(order))
}
