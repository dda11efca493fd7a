package commerceserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	cataloghttpmapper "github.com/Apurer/go-gin-commerce/internal/domains/catalog/adapters/http/mapper"
	catalogtypes "github.com/Apurer/go-gin-commerce/internal/domains/catalog/application/types"
	catalogdomain "github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/go-gin-commerce/internal/domains/catalog/ports"
	apierrors "github.com/Apurer/go-gin-commerce/internal/shared/errors"
)

// CatalogAPI wires HTTP transport with the catalog bounded context.
type CatalogAPI struct {
	service   catalogports.Service
	responder *apierrors.Responder
}

// NewCatalogAPI creates a CatalogAPI backed by the provided service.
func NewCatalogAPI(service catalogports.Service, responder *apierrors.Responder) CatalogAPI {
	return CatalogAPI{service: service, responder: responder}
}

// Get /api/commerce/search
// Search purchasable items
func (api *CatalogAPI) Search(c *gin.Context) {
	input := catalogtypes.SearchInput{
		Query:     c.Query("q"),
		Category:  c.Query("category"),
		Tag:       c.Query("tag"),
		MinPrice:  c.Query("minPrice"),
		MaxPrice:  c.Query("maxPrice"),
		InStock:   c.Query("inStock"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Page:      c.Query("page"),
		Limit:     c.Query("limit"),
	}
	result, err := api.service.Search(c.Request.Context(), input)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromSearchResult(result))
}

// Get /api/commerce/items/:itemId
// Find a published item by id
func (api *CatalogAPI) GetItem(c *gin.Context) {
	id := c.Param("itemId")
	item, err := api.service.GetItem(c.Request.Context(), id)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	if !item.Published {
		api.responder.RespondError(c, &catalogdomain.NotFoundError{ItemID: id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": cataloghttpmapper.FromListing(catalogdomain.Listing{Item: item})})
}
