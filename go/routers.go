package commerceserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BasePath prefixes every commerce route.
const BasePath = "/api/commerce"

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI relative to BasePath.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// NewRouter returns a new router with the commerce routes mounted under BasePath.
// Middleware runs for every commerce route, in order.
func NewRouter(handleFunctions ApiHandleFunctions, middleware ...gin.HandlerFunc) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions, middleware...)
}

// NewRouterWithGinEngine adds the commerce routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions, middleware ...gin.HandlerFunc) *gin.Engine {
	group := router.Group(BasePath, middleware...)
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		switch route.Method {
		case http.MethodGet:
			group.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			group.POST(route.Pattern, route.HandlerFunc)
		case http.MethodPut:
			group.PUT(route.Pattern, route.HandlerFunc)
		case http.MethodPatch:
			group.PATCH(route.Pattern, route.HandlerFunc)
		case http.MethodDelete:
			group.DELETE(route.Pattern, route.HandlerFunc)
		}
	}
	return router
}

// DefaultHandleFunc answers routes whose handler is not wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// ApiHandleFunctions bundles the handlers of every API group.
type ApiHandleFunctions struct {
	// Routes for the catalog part of the API
	CatalogAPI CatalogAPI
	// Routes for the cart part of the API
	CartAPI CartAPI
	// Routes for the orders part of the API
	OrdersAPI OrdersAPI
	// Routes for the dashboard part of the API
	DashboardAPI DashboardAPI
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{
			"Search",
			http.MethodGet,
			"/search",
			handleFunctions.CatalogAPI.Search,
		},
		{
			"GetItem",
			http.MethodGet,
			"/items/:itemId",
			handleFunctions.CatalogAPI.GetItem,
		},
		{
			"GetCart",
			http.MethodGet,
			"/cart",
			handleFunctions.CartAPI.GetCart,
		},
		{
			"AddToCart",
			http.MethodPost,
			"/cart/add",
			handleFunctions.CartAPI.AddToCart,
		},
		{
			"ClearCart",
			http.MethodDelete,
			"/cart",
			handleFunctions.CartAPI.ClearCart,
		},
		{
			"CreateOrder",
			http.MethodPost,
			"/orders",
			handleFunctions.OrdersAPI.CreateOrder,
		},
		{
			"GetOrder",
			http.MethodGet,
			"/orders/:orderNumber",
			handleFunctions.OrdersAPI.GetOrder,
		},
		{
			"DashboardStats",
			http.MethodGet,
			"/dashboard/stats",
			handleFunctions.DashboardAPI.Stats,
		},
	}
}
