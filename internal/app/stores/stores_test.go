package stores

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdomain "github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"
)

func TestBuildWithoutDSNUsesMemory(t *testing.T) {
	stores, cleanup, err := Build(context.Background(), "", nil)
	require.NoError(t, err)
	defer cleanup()
	assert.Equal(t, BackendMemory, stores.Backend)
}

func TestMemoryAdaptersShareTables(t *testing.T) {
	stores, cleanup, err := Build(context.Background(), "  ", nil)
	require.NoError(t, err)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, stores.Catalog.SaveItem(ctx, &catalogdomain.Item{
		ID:        "i1",
		Slug:      "i1",
		Title:     "Lamp",
		Price:     decimal.NewFromInt(12),
		Stock:     2,
		Status:    catalogdomain.StatusAvailable,
		Published: true,
	}))

	metrics, err := stores.Dashboard.Snapshot(ctx, time.Now().Add(-time.Hour), 5)
	require.NoError(t, err)
	assert.EqualValues(t, 1, metrics.TotalProducts)
	assert.EqualValues(t, 1, metrics.LowStockProducts)

	items, err := stores.Orders.Adjustments(ctx, "i1")
	require.NoError(t, err)
	assert.Empty(t, items)
}
