package commerceserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	dashboardhttpmapper "github.com/Apurer/go-gin-commerce/internal/domains/dashboard/adapters/http/mapper"
	dashboardports "github.com/Apurer/go-gin-commerce/internal/domains/dashboard/ports"
	apierrors "github.com/Apurer/go-gin-commerce/internal/shared/errors"
)

// DashboardAPI wires HTTP transport with the dashboard aggregator.
type DashboardAPI struct {
	service   dashboardports.Service
	responder *apierrors.Responder
}

// NewDashboardAPI creates a DashboardAPI backed by the provided service.
func NewDashboardAPI(service dashboardports.Service, responder *apierrors.Responder) DashboardAPI {
	return DashboardAPI{service: service, responder: responder}
}

// Get /api/commerce/dashboard/stats
// Aggregate metrics over a period
func (api *DashboardAPI) Stats(c *gin.Context) {
	stats, err := api.service.Stats(c.Request.Context(), c.Query("period"))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboardhttpmapper.FromStats(stats))
}
