package commerceserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	carthttpmapper "github.com/Apurer/go-gin-commerce/internal/domains/cart/adapters/http/mapper"
	carttypes "github.com/Apurer/go-gin-commerce/internal/domains/cart/application/types"
	cartports "github.com/Apurer/go-gin-commerce/internal/domains/cart/ports"
	apierrors "github.com/Apurer/go-gin-commerce/internal/shared/errors"
)

// CartAPI wires HTTP transport with the cart bounded context.
type CartAPI struct {
	service   cartports.Service
	responder *apierrors.Responder
}

// NewCartAPI creates a CartAPI backed by the provided service.
func NewCartAPI(service cartports.Service, responder *apierrors.Responder) CartAPI {
	return CartAPI{service: service, responder: responder}
}

// Get /api/commerce/cart
// Return the caller's cart, empty when none exists
func (api *CartAPI) GetCart(c *gin.Context) {
	view, err := api.service.Get(c.Request.Context(), callerOf(c))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, carthttpmapper.FromView(view))
}

// Post /api/commerce/cart/add
// Add an item to the caller's cart
func (api *CartAPI) AddToCart(c *gin.Context) {
	var payload carthttpmapper.AddToCart
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	view, err := api.service.AddLine(c.Request.Context(), carttypes.AddLineInput{
		Owner:    callerOf(c),
		ItemID:   payload.ItemID,
		Quantity: carthttpmapper.ToAddLineQuantity(payload),
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, carthttpmapper.FromView(view))
}

// Delete /api/commerce/cart
// Empty the caller's cart
func (api *CartAPI) ClearCart(c *gin.Context) {
	if err := api.service.Clear(c.Request.Context(), callerOf(c)); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
