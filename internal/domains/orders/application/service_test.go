package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartmemory "github.com/Apurer/go-gin-commerce/internal/domains/cart/adapters/memory"
	catalogmemory "github.com/Apurer/go-gin-commerce/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"
	ordersmemory "github.com/Apurer/go-gin-commerce/internal/domains/orders/adapters/memory"
	ordertypes "github.com/Apurer/go-gin-commerce/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-commerce/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-commerce/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-commerce/internal/domains/pricing"
	"github.com/Apurer/go-gin-commerce/internal/platform/memdb"
	"github.com/Apurer/go-gin-commerce/internal/shared/identity"
)

type fixture struct {
	db      *memdb.DB
	catalog *catalogmemory.Repository
	carts   *cartmemory.Repository
	orders  *ordersmemory.Repository
	coupons *ordersmemory.CouponStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memdb.New()
	return &fixture{
		db:      db,
		catalog: catalogmemory.NewRepository(db),
		carts:   cartmemory.NewRepository(db),
		orders:  ordersmemory.NewRepository(db),
		coupons: ordersmemory.NewCouponStore(db),
	}
}

func (f *fixture) service(opts ...Option) *Service {
	return NewService(f.orders, f.catalog, f.coupons, pricing.NewCalculator(pricing.DefaultPolicy()), opts...)
}

func (f *fixture) item(t *testing.T, id, price string, stock int, mutate ...func(*catalogdomain.Item)) {
	t.Helper()
	item := &catalogdomain.Item{
		ID:        id,
		Slug:      "slug-" + id,
		Title:     id,
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		Status:    catalogdomain.StatusAvailable,
		Published: true,
	}
	for _, m := range mutate {
		m(item)
	}
	require.NoError(t, f.catalog.SaveItem(context.Background(), item))
}

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	item, err := f.catalog.GetByID(context.Background(), id)
	require.NoError(t, err)
	return item.Stock
}

func orderInput(owner identity.Identity, lines ...ordertypes.LineInput) ordertypes.PlaceOrderInput {
	return ordertypes.PlaceOrderInput{
		Owner:           owner,
		Lines:           lines,
		ShippingAddress: domain.Address{Line1: "1 Main St", City: "Springfield", Country: "US"},
		PaymentMethod:   "card",
	}
}

func line(id string, qty int) ordertypes.LineInput {
	return ordertypes.LineInput{ItemID: id, Quantity: qty}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.OrderPlaced
	err    error
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, event domain.OrderPlaced) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func TestPlaceOrder_PricesWithoutCoupon(t *testing.T) {
	f := newFixture(t)
	f.item(t, "A", "50", 3)
	publisher := &recordingPublisher{}
	svc := f.service(WithPublisher(publisher))

	order, err := svc.PlaceOrder(context.Background(), orderInput(identity.User("u1"), line("A", 3)))
	require.NoError(t, err)

	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(150)))
	assert.True(t, order.Tax.Equal(decimal.RequireFromString("12.00")))
	assert.True(t, order.Shipping.IsZero())
	assert.True(t, order.Total.Equal(decimal.RequireFromString("162.00")))
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.True(t, domain.IsNumber(order.Number), order.Number)
	assert.Equal(t, "u1", order.UserID)
	require.Len(t, order.Lines, 1)
	require.NotNil(t, order.Lines[0].Item)
	assert.Equal(t, "A", order.Lines[0].Item.Title)
	assert.Equal(t, 0, f.stock(t, "A"))

	require.Len(t, publisher.events, 1)
	assert.Equal(t, order.Number, publisher.events[0].OrderNumber)
}

func TestPlaceOrder_FixedCoupon(t *testing.T) {
	f := newFixture(t)
	f.item(t, "A", "50", 3)
	require.NoError(t, f.coupons.SaveCoupon(context.Background(), pricing.Coupon{
		Code: "TWENTY", Type: pricing.CouponFixedAmount, Value: decimal.NewFromInt(20), Active: true,
	}))

	input := orderInput(identity.User("u1"), line("A", 3))
	input.CouponCode = "twenty"
	order, err := f.service().PlaceOrder(context.Background(), input)
	require.NoError(t, err)

	assert.True(t, order.Discount.Equal(decimal.NewFromInt(20)))
	assert.True(t, order.Tax.Equal(decimal.RequireFromString("10.40")))
	assert.True(t, order.Shipping.IsZero())
	assert.True(t, order.Total.Equal(decimal.RequireFromString("140.40")))
	assert.Equal(t, "TWENTY", order.CouponCode)
}

func TestPlaceOrder_IgnoresUnknownAndInactiveCoupons(t *testing.T) {
	f := newFixture(t)
	f.item(t, "A", "10", 10)
	require.NoError(t, f.coupons.SaveCoupon(context.Background(), pricing.Coupon{
		Code: "OFF", Type: pricing.CouponPercentage, Value: decimal.NewFromInt(50), Active: false,
	}))
	svc := f.service()

	for _, code := range []string{"OFF", "MISSING"} {
		input := orderInput(identity.Session("s1"), line("A", 1))
		input.CouponCode = code
		order, err := svc.PlaceOrder(context.Background(), input)
		require.NoError(t, err)
		assert.True(t, order.Discount.IsZero(), code)
		assert.Empty(t, order.CouponCode, code)
		// 10 + 0.80 tax + 10 shipping
		assert.True(t, order.Total.Equal(decimal.RequireFromString("20.80")), code)
	}
}

func TestPlaceOrder_InsufficientStockLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	f.item(t, "B", "10", 1)

	_, err := f.service().PlaceOrder(context.Background(), orderInput(identity.User("u1"), line("B", 2)))
	require.Error(t, err)
	assert.ErrorIs(t, err, catalogdomain.ErrInsufficientStock)
	assert.Equal(t, "Insufficient stock for B. Available: 1", err.Error())
	assert.Equal(t, 1, f.stock(t, "B"))

	require.NoError(t, f.db.Read(func(tables *memdb.Tables) error {
		assert.Empty(t, tables.Orders)
		assert.Empty(t, tables.Adjustments)
		return nil
	}))
}

func TestPlaceOrder_SumsRepeatedLinesForStockCheck(t *testing.T) {
	f := newFixture(t)
	f.item(t, "A", "10", 3)

	_, err := f.service().PlaceOrder(context.Background(), orderInput(identity.User("u1"), line("A", 2), line("A", 2)))
	assert.ErrorIs(t, err, catalogdomain.ErrInsufficientStock)
	assert.Equal(t, 3, f.stock(t, "A"))
}

func TestPlaceOrder_RejectsMissingAndUnavailableItems(t *testing.T) {
	f := newFixture(t)
	f.item(t, "draft", "10", 5, func(i *catalogdomain.Item) { i.Published = false })
	svc := f.service()

	_, err := svc.PlaceOrder(context.Background(), orderInput(identity.User("u1"), line("ghost", 1)))
	assert.ErrorIs(t, err, catalogdomain.ErrItemNotFound)

	_, err = svc.PlaceOrder(context.Background(), orderInput(identity.User("u1"), line("draft", 1)))
	assert.ErrorIs(t, err, catalogdomain.ErrItemUnavailable)
}

func TestPlaceOrder_Atomicity(t *testing.T) {
	f := newFixture(t)
	f.item(t, "A", "20", 5)
	f.item(t, "B", "30", 4)
	owner := identity.User("u1")
	ctx := context.Background()
	_, err := f.carts.AddLine(ctx, owner, "A", 1, decimal.NewFromInt(20))
	require.NoError(t, err)

	order, err := f.service().PlaceOrder(ctx, orderInput(owner, line("A", 2), line("B", 3)))
	require.NoError(t, err)

	assert.Equal(t, 3, f.stock(t, "A"))
	assert.Equal(t, 1, f.stock(t, "B"))

	stored, err := f.orders.GetByNumber(ctx, order.Number)
	require.NoError(t, err)
	assert.Len(t, stored.Lines, 2)

	for id, qty := range map[string]int{"A": 2, "B": 3} {
		audit, err := f.orders.Adjustments(ctx, id)
		require.NoError(t, err)
		require.Len(t, audit, 1)
		assert.Equal(t, -qty, audit[0].Adjustment)
		assert.Equal(t, "u1", audit[0].ActorID)
		assert.Equal(t, "Order "+order.Number, audit[0].Reason)
	}

	cart, err := f.carts.Get(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestPlaceOrder_KeepsAnonymousCart(t *testing.T) {
	f := newFixture(t)
	f.item(t, "A", "20", 5)
	owner := identity.Session("s1")
	ctx := context.Background()
	_, err := f.carts.AddLine(ctx, owner, "A", 1, decimal.NewFromInt(20))
	require.NoError(t, err)

	order, err := f.service().PlaceOrder(ctx, orderInput(owner, line("A", 1)))
	require.NoError(t, err)
	assert.Equal(t, "s1", order.SessionID)

	cart, err := f.carts.Get(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 1)

	audit, err := f.orders.Adjustments(ctx, "A")
	require.NoError(t, err)
	require.Len(t, audit, 1)
	assert.Equal(t, "session:s1", audit[0].ActorID)
}

func TestPlaceOrder_ConcurrentRequestsNeverOversell(t *testing.T) {
	f := newFixture(t)
	f.item(t, "A", "10", 5)
	svc := f.service()

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
	)
	for _, qty := range []int{3, 4} {
		wg.Add(1)
		go func(qty int) {
			defer wg.Done()
			_, err := svc.PlaceOrder(context.Background(), orderInput(identity.User("u1"), line("A", qty)))
			if err == nil {
				succeeded.Add(1)
				return
			}
			assert.ErrorIs(t, err, catalogdomain.ErrInsufficientStock)
		}(qty)
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	stock := f.stock(t, "A")
	assert.True(t, stock == 2 || stock == 1, "stock %d", stock)
}

func TestPlaceOrder_ValidationErrors(t *testing.T) {
	f := newFixture(t)
	f.item(t, "A", "10", 5)
	svc := f.service()

	cases := map[string]func(*ordertypes.PlaceOrderInput){
		"no lines":       func(in *ordertypes.PlaceOrderInput) { in.Lines = nil },
		"zero quantity":  func(in *ordertypes.PlaceOrderInput) { in.Lines[0].Quantity = 0 },
		"blank item":     func(in *ordertypes.PlaceOrderInput) { in.Lines[0].ItemID = " " },
		"no city":        func(in *ordertypes.PlaceOrderInput) { in.ShippingAddress.City = "" },
		"no payment":     func(in *ordertypes.PlaceOrderInput) { in.PaymentMethod = "" },
		"ambiguous user": func(in *ordertypes.PlaceOrderInput) { in.Owner = identity.Identity{UserID: "u", SessionID: "s"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			input := orderInput(identity.User("u1"), line("A", 1))
			mutate(&input)
			_, err := svc.PlaceOrder(context.Background(), input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Equal(t, 5, f.stock(t, "A"))
}

func TestPlaceOrder_IdempotencyReplayAndConflict(t *testing.T) {
	f := newFixture(t)
	f.item(t, "A", "10", 5)
	svc := f.service(WithIdempotencyStore(ordersmemory.NewIdempotencyStore(f.db)))
	ctx := context.Background()

	input := orderInput(identity.User("u1"), line("A", 1))
	input.IdempotencyKey = "key-1"
	first, err := svc.PlaceOrder(ctx, input)
	require.NoError(t, err)

	replayed, err := svc.PlaceOrder(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, first.Number, replayed.Number)
	assert.Equal(t, 4, f.stock(t, "A"))

	input.Lines[0].Quantity = 2
	_, err = svc.PlaceOrder(ctx, input)
	assert.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	assert.Equal(t, 4, f.stock(t, "A"))
}

func TestPlaceOrder_IdempotencyKeysAreScopedPerOwner(t *testing.T) {
	f := newFixture(t)
	f.item(t, "A", "10", 5)
	svc := f.service(WithIdempotencyStore(ordersmemory.NewIdempotencyStore(f.db)))
	ctx := context.Background()

	first := orderInput(identity.User("u1"), line("A", 1))
	first.IdempotencyKey = "shared"
	second := orderInput(identity.Session("s1"), line("A", 2))
	second.IdempotencyKey = "shared"

	a, err := svc.PlaceOrder(ctx, first)
	require.NoError(t, err)
	b, err := svc.PlaceOrder(ctx, second)
	require.NoError(t, err)
	assert.NotEqual(t, a.Number, b.Number)
	assert.Equal(t, 2, f.stock(t, "A"))
}

// slowCatalog widens the gap between the stock read and the commit.
type slowCatalog struct {
	ports.CatalogReader
	delay time.Duration
}

func (c slowCatalog) GetByIDs(ctx context.Context, ids []string) (map[string]*catalogdomain.Item, error) {
	time.Sleep(c.delay)
	return c.CatalogReader.GetByIDs(ctx, ids)
}

func TestPlaceOrder_ConcurrentSameKeyCommitsOnce(t *testing.T) {
	f := newFixture(t)
	f.item(t, "A", "10", 10)
	svc := NewService(f.orders, slowCatalog{CatalogReader: f.catalog, delay: 5 * time.Millisecond}, f.coupons,
		pricing.NewCalculator(pricing.DefaultPolicy()), WithIdempotencyStore(ordersmemory.NewIdempotencyStore(f.db)))

	input := orderInput(identity.User("u1"), line("A", 1))
	input.IdempotencyKey = "k1"

	var wg sync.WaitGroup
	numbers := make([]string, 2)
	errs := make([]error, 2)
	for i := range numbers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			order, err := svc.PlaceOrder(context.Background(), input)
			errs[i] = err
			if err == nil {
				numbers[i] = order.Number
			}
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, numbers[0], numbers[1])
	assert.Equal(t, 9, f.stock(t, "A"))
	require.NoError(t, f.db.Read(func(tables *memdb.Tables) error {
		assert.Len(t, tables.Orders, 1)
		assert.Len(t, tables.Adjustments, 1)
		return nil
	}))
}

func TestPlaceOrder_SameKeyReplaysWhenStockRanOut(t *testing.T) {
	f := newFixture(t)
	f.item(t, "A", "10", 1)
	svc := f.service(WithIdempotencyStore(ordersmemory.NewIdempotencyStore(f.db)))
	ctx := context.Background()

	input := orderInput(identity.User("u1"), line("A", 1))
	input.IdempotencyKey = "k1"
	reservation := &ports.IdempotencyRecord{Key: idempotencyScope(input.Owner, input.IdempotencyKey)}
	hash, err := FingerprintPlaceOrder(input)
	require.NoError(t, err)
	reservation.RequestHash = hash

	first, err := svc.PlaceOrder(ctx, input)
	require.NoError(t, err)

	// A request that read the stock before the first commit fails its check afterwards.
	replayed, err := svc.settle(ctx, reservation, input.Owner, &catalogdomain.InsufficientStockError{ItemID: "A", Available: 0})
	require.NoError(t, err)
	assert.Equal(t, first.Number, replayed.Number)

	_, err = svc.settle(ctx, nil, input.Owner, ports.ErrIdempotencyKeyInUse)
	assert.ErrorIs(t, err, ports.ErrIdempotencyConflict)
}

// flakyCatalog fails every read after the first failAfter calls.
type flakyCatalog struct {
	ports.CatalogReader
	calls     atomic.Int32
	failAfter int32
}

func (c *flakyCatalog) GetByIDs(ctx context.Context, ids []string) (map[string]*catalogdomain.Item, error) {
	if c.calls.Add(1) > c.failAfter {
		return nil, errors.New("connection reset")
	}
	return c.CatalogReader.GetByIDs(ctx, ids)
}

func TestPlaceOrder_CommittedOrderSurvivesSummaryFailure(t *testing.T) {
	f := newFixture(t)
	f.item(t, "A", "10", 5)
	var buf bytes.Buffer
	svc := NewService(f.orders, &flakyCatalog{CatalogReader: f.catalog, failAfter: 1}, f.coupons,
		pricing.NewCalculator(pricing.DefaultPolicy()), WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))))

	order, err := svc.PlaceOrder(context.Background(), orderInput(identity.User("u1"), line("A", 2)))
	require.NoError(t, err)
	assert.True(t, domain.IsNumber(order.Number))
	require.Len(t, order.Lines, 1)
	assert.Nil(t, order.Lines[0].Item)
	assert.Equal(t, 3, f.stock(t, "A"))
	assert.Contains(t, buf.String(), "connection reset")
	assert.Contains(t, buf.String(), order.Number)
}

func TestPlaceOrder_RetriesDuplicateNumbers(t *testing.T) {
	f := newFixture(t)
	f.item(t, "A", "10", 5)
	numbers := []string{
		"ORD-20260302-100000-AAAAAA",
		"ORD-20260302-100000-AAAAAA",
		"ORD-20260302-100000-BBBBBB",
	}
	var calls int
	svc := f.service(WithNumberGenerator(func(time.Time) string {
		n := numbers[calls%len(numbers)]
		calls++
		return n
	}))
	ctx := context.Background()

	first, err := svc.PlaceOrder(ctx, orderInput(identity.User("u1"), line("A", 1)))
	require.NoError(t, err)
	second, err := svc.PlaceOrder(ctx, orderInput(identity.User("u1"), line("A", 1)))
	require.NoError(t, err)

	assert.Equal(t, "ORD-20260302-100000-AAAAAA", first.Number)
	assert.Equal(t, "ORD-20260302-100000-BBBBBB", second.Number)
	assert.Equal(t, 3, f.stock(t, "A"))
}

func TestPlaceOrder_GivesUpAfterRepeatedCollisions(t *testing.T) {
	f := newFixture(t)
	f.item(t, "A", "10", 5)
	svc := f.service(WithNumberGenerator(func(time.Time) string { return "ORD-20260302-100000-AAAAAA" }))
	ctx := context.Background()

	_, err := svc.PlaceOrder(ctx, orderInput(identity.User("u1"), line("A", 1)))
	require.NoError(t, err)
	_, err = svc.PlaceOrder(ctx, orderInput(identity.User("u1"), line("A", 1)))
	assert.ErrorIs(t, err, ErrNumberExhausted)
	assert.Equal(t, 4, f.stock(t, "A"))
}

func TestPlaceOrder_PublishFailureIsLogged(t *testing.T) {
	f := newFixture(t)
	f.item(t, "A", "10", 5)
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	svc := f.service(WithPublisher(&recordingPublisher{err: errors.New("broker down")}), WithLogger(logger))

	order, err := svc.PlaceOrder(context.Background(), orderInput(identity.User("u1"), line("A", 1)))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "broker down")
	assert.Contains(t, buf.String(), order.Number)
}

func TestGetOrder_Visibility(t *testing.T) {
	f := newFixture(t)
	f.item(t, "A", "10", 5)
	svc := f.service()
	ctx := context.Background()

	owned, err := svc.PlaceOrder(ctx, orderInput(identity.User("u1"), line("A", 1)))
	require.NoError(t, err)
	guest, err := svc.PlaceOrder(ctx, orderInput(identity.Session("s1"), line("A", 1)))
	require.NoError(t, err)

	got, err := svc.GetOrder(ctx, owned.Number, identity.User("u1"))
	require.NoError(t, err)
	require.NotNil(t, got.Lines[0].Item)

	_, err = svc.GetOrder(ctx, owned.Number, identity.User("u2"))
	assert.ErrorIs(t, err, ports.ErrNotFound)
	_, err = svc.GetOrder(ctx, owned.Number, identity.Session("s1"))
	assert.ErrorIs(t, err, ports.ErrNotFound)

	_, err = svc.GetOrder(ctx, guest.Number, identity.Session("s1"))
	assert.NoError(t, err)
	_, err = svc.GetOrder(ctx, guest.Number, identity.Session("other"))
	assert.ErrorIs(t, err, ports.ErrNotFound)
	_, err = svc.GetOrder(ctx, guest.Number, identity.User("u1"))
	assert.ErrorIs(t, err, ports.ErrNotFound)

	_, err = svc.GetOrder(ctx, fmt.Sprintf("ORD-%s", "missing"), identity.User("u1"))
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
