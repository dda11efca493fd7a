//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/Apurer/go-gin-commerce/internal/domains/cart/ports"
	"github.com/Apurer/go-gin-commerce/internal/platform/migrations"
	platformpostgres "github.com/Apurer/go-gin-commerce/internal/platform/postgres"
	"github.com/Apurer/go-gin-commerce/internal/shared/identity"
)

func setupCartPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("commerce_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := platformpostgres.Connect(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}
	return db, cleanup
}

// seedItem inserts the catalog row cart lines reference.
func seedItem(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Exec(
		`INSERT INTO items (id, slug, title, price, stock, status, published, created_at, updated_at)
		 VALUES (?, ?, ?, 10, 10, 'AVAILABLE', true, ?, ?)`,
		id, "slug-"+id, "Item "+id, now, now,
	).Error)
}

func TestRepository_AddLineIncrements(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupCartPostgresContainer(t)
	defer cleanup()

	seedItem(t, db, "A")
	repo := NewRepository(db)
	ctx := context.Background()
	owner := identity.Session("s1")

	_, err := repo.Get(ctx, owner)
	assert.ErrorIs(t, err, ports.ErrNotFound)

	_, err = repo.AddLine(ctx, owner, "A", 2, decimal.NewFromInt(50))
	require.NoError(t, err)
	cart, err := repo.AddLine(ctx, owner, "A", 1, decimal.NewFromInt(45))
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 3, cart.Lines[0].Quantity)
	assert.True(t, cart.Lines[0].Price.Equal(decimal.NewFromInt(45)))
	assert.True(t, cart.Subtotal().Equal(decimal.NewFromInt(135)))
}

func TestRepository_ConcurrentAddLine(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupCartPostgresContainer(t)
	defer cleanup()

	seedItem(t, db, "A")
	repo := NewRepository(db)
	owner := identity.User("u1")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.AddLine(context.Background(), owner, "A", 1, decimal.NewFromInt(1))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	cart, err := repo.Get(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 10, cart.Lines[0].Quantity)
}

func TestRepository_ClearAndPurge(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupCartPostgresContainer(t)
	defer cleanup()

	seedItem(t, db, "A")
	repo := NewRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	repo.WithClock(func() time.Time { return base })

	user := identity.User("u1")
	guest := identity.Session("old")
	_, err := repo.AddLine(ctx, user, "A", 1, decimal.NewFromInt(1))
	require.NoError(t, err)
	_, err = repo.AddLine(ctx, guest, "A", 1, decimal.NewFromInt(1))
	require.NoError(t, err)

	removed, err := repo.PurgeAnonymous(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	_, err = repo.Get(ctx, guest)
	assert.ErrorIs(t, err, ports.ErrNotFound)
	var orphans int64
	require.NoError(t, db.Raw(`SELECT count(*) FROM cart_lines WHERE cart_id NOT IN (SELECT id FROM carts)`).Scan(&orphans).Error)
	assert.Zero(t, orphans)
	var kept int64
	require.NoError(t, db.Raw(`SELECT count(*) FROM cart_lines`).Scan(&kept).Error)
	assert.Equal(t, int64(1), kept)

	_, err = repo.AddLine(ctx, user, "ghost", 1, decimal.NewFromInt(1))
	assert.Error(t, err)

	require.NoError(t, repo.Clear(ctx, user))
	cart, err := repo.Get(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}
