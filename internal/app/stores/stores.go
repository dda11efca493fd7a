package stores

import (
	"context"
	"fmt"
	"log/slog"

	cartmemory "github.com/Apurer/go-gin-commerce/internal/domains/cart/adapters/memory"
	cartpostgres "github.com/Apurer/go-gin-commerce/internal/domains/cart/adapters/persistence/postgres"
	cartports "github.com/Apurer/go-gin-commerce/internal/domains/cart/ports"
	catalogmemory "github.com/Apurer/go-gin-commerce/internal/domains/catalog/adapters/memory"
	catalogpostgres "github.com/Apurer/go-gin-commerce/internal/domains/catalog/adapters/persistence/postgres"
	catalogports "github.com/Apurer/go-gin-commerce/internal/domains/catalog/ports"
	dashboardmemory "github.com/Apurer/go-gin-commerce/internal/domains/dashboard/adapters/memory"
	dashboardpostgres "github.com/Apurer/go-gin-commerce/internal/domains/dashboard/adapters/persistence/postgres"
	dashboardports "github.com/Apurer/go-gin-commerce/internal/domains/dashboard/ports"
	ordersmemory "github.com/Apurer/go-gin-commerce/internal/domains/orders/adapters/memory"
	orderspostgres "github.com/Apurer/go-gin-commerce/internal/domains/orders/adapters/persistence/postgres"
	orderports "github.com/Apurer/go-gin-commerce/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-commerce/internal/platform/memdb"
	"github.com/Apurer/go-gin-commerce/internal/platform/migrations"
	platformpostgres "github.com/Apurer/go-gin-commerce/internal/platform/postgres"
)

// Backend names the storage a Stores value was built on.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendPostgres Backend = "postgres"
)

// Stores is the set of repositories shared by every service of one process.
type Stores struct {
	Backend     Backend
	Catalog     catalogports.Repository
	Carts       cartports.Repository
	Orders      orderports.Repository
	Coupons     orderports.CouponLookup
	Idempotency orderports.IdempotencyStore
	Dashboard   dashboardports.Reader
}

// Build connects to Postgres and migrates the schema when dsn is set, otherwise it
// returns in-memory adapters over a single shared table set. The cleanup closes the pool.
func Build(ctx context.Context, dsn string, logger *slog.Logger) (*Stores, func(), error) {
	db, cleanup, err := platformpostgres.Open(ctx, dsn, logger)
	if err != nil {
		return nil, func() {}, err
	}
	if db == nil {
		return Memory(memdb.New()), cleanup, nil
	}
	if err := migrations.Run(db.WithContext(ctx)); err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("migrate schema: %w", err)
	}
	return &Stores{
		Backend:     BackendPostgres,
		Catalog:     catalogpostgres.NewRepository(db),
		Carts:       cartpostgres.NewRepository(db),
		Orders:      orderspostgres.NewRepository(db),
		Coupons:     orderspostgres.NewCouponStore(db),
		Idempotency: orderspostgres.NewIdempotencyStore(db),
		Dashboard:   dashboardpostgres.NewReader(db),
	}, cleanup, nil
}

// Memory wires every in-memory adapter to db.
func Memory(db *memdb.DB) *Stores {
	return &Stores{
		Backend:     BackendMemory,
		Catalog:     catalogmemory.NewRepository(db),
		Carts:       cartmemory.NewRepository(db),
		Orders:      ordersmemory.NewRepository(db),
		Coupons:     ordersmemory.NewCouponStore(db),
		Idempotency: ordersmemory.NewIdempotencyStore(db),
		Dashboard:   dashboardmemory.NewReader(db),
	}
}
