//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	pacttest "github.com/Apurer/go-gin-commerce/test/pact"

	commerceserver "github.com/Apurer/go-gin-commerce/go"
	"github.com/Apurer/go-gin-commerce/internal/app/stores"
	cartobs "github.com/Apurer/go-gin-commerce/internal/domains/cart/adapters/observability"
	cartapp "github.com/Apurer/go-gin-commerce/internal/domains/cart/application"
	catalogobs "github.com/Apurer/go-gin-commerce/internal/domains/catalog/adapters/observability"
	catalogapp "github.com/Apurer/go-gin-commerce/internal/domains/catalog/application"
	catalogdomain "github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"
	dashboardobs "github.com/Apurer/go-gin-commerce/internal/domains/dashboard/adapters/observability"
	dashboardapp "github.com/Apurer/go-gin-commerce/internal/domains/dashboard/application"
	ordersobs "github.com/Apurer/go-gin-commerce/internal/domains/orders/adapters/observability"
	ordersworkflows "github.com/Apurer/go-gin-commerce/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/Apurer/go-gin-commerce/internal/domains/orders/application"
	"github.com/Apurer/go-gin-commerce/internal/domains/pricing"
	"github.com/Apurer/go-gin-commerce/internal/platform/memdb"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCommerceProviderPact(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateItemPublished: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			if setup {
				app.seedItem(t, 5)
			}
			return nil, nil
		},
		pacttest.StateItemMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			return nil, nil
		},
		pacttest.StateItemLowStock: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			if setup {
				app.seedItem(t, 1)
			}
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.reset()
			return nil
		},
	})
	require.NoError(t, err)
}

// contractProviderApp rebuilds the whole in-memory stack on reset so every state starts empty.
type contractProviderApp struct {
	mu      sync.RWMutex
	router  http.Handler
	catalog interface {
		SaveItem(ctx context.Context, item *catalogdomain.Item) error
	}
	server *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()
	app := &contractProviderApp{}
	app.reset()
	app.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.mu.RLock()
		router := app.router
		app.mu.RUnlock()
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(app.server.Close)
	return app
}

func (a *contractProviderApp) reset() {
	st := stores.Memory(memdb.New())
	responder := commerceserver.NewResponder(nil)
	orderService := ordersobs.New(ordersapp.NewService(
		st.Orders, st.Catalog, st.Coupons,
		pricing.NewCalculator(pricing.DefaultPolicy()),
		ordersapp.WithIdempotencyStore(st.Idempotency),
	))
	handlers := commerceserver.ApiHandleFunctions{
		CatalogAPI:   commerceserver.NewCatalogAPI(catalogobs.New(catalogapp.NewService(st.Catalog)), responder),
		CartAPI:      commerceserver.NewCartAPI(cartobs.New(cartapp.NewService(st.Carts, st.Catalog)), responder),
		OrdersAPI:    commerceserver.NewOrdersAPI(orderService, ordersworkflows.NewInlineOrderWorkflows(orderService), responder),
		DashboardAPI: commerceserver.NewDashboardAPI(dashboardobs.New(dashboardapp.NewService(st.Dashboard)), responder),
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router = commerceserver.NewRouterWithGinEngine(router, handlers,
		commerceserver.IdentityMiddleware(commerceserver.IdentityConfig{}, responder))

	a.mu.Lock()
	a.router = router
	a.catalog = st.Catalog
	a.mu.Unlock()
}

func (a *contractProviderApp) seedItem(t testing.TB, stock int) {
	t.Helper()
	a.mu.RLock()
	catalog := a.catalog
	a.mu.RUnlock()
	require.NoError(t, catalog.SaveItem(context.Background(), &catalogdomain.Item{
		ID:        pacttest.ExistingItemID,
		Slug:      "pact-lamp",
		Title:     pacttest.ExampleItemTitle,
		Price:     decimal.RequireFromString(pacttest.ExampleItemPrice),
		Stock:     stock,
		Status:    catalogdomain.StatusAvailable,
		Published: true,
	}))
}
