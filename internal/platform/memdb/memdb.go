// Package memdb is the in-process store backing the memory adapters of every
// bounded context. Writes run against a copy of the tables and are published
// only when the callback succeeds, so a failed write leaves no trace.
package memdb

import (
	"sync"
	"time"

	cartdomain "github.com/Apurer/go-gin-commerce/internal/domains/cart/domain"
	catalogdomain "github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"
	orderdomain "github.com/Apurer/go-gin-commerce/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-commerce/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-commerce/internal/domains/pricing"
	"github.com/Apurer/go-gin-commerce/internal/shared/identity"
)

// Tables holds every collection. Callbacks passed to Write may mutate it freely.
type Tables struct {
	Categories  map[string]catalogdomain.Category
	Items       map[string]*catalogdomain.Item
	Reviews     []catalogdomain.Review
	Carts       map[string]*cartdomain.Cart
	Orders      map[string]*orderdomain.Order
	OrderNumber []string
	Coupons     map[string]pricing.Coupon
	Adjustments []orderdomain.InventoryAdjustment

	// IdempotencyKeys is keyed by the owner-scoped idempotency key.
	IdempotencyKeys map[string]orderports.IdempotencyRecord
}

func newTables() *Tables {
	return &Tables{
		Categories: map[string]catalogdomain.Category{},
		Items:      map[string]*catalogdomain.Item{},
		Carts:      map[string]*cartdomain.Cart{},
		Orders:     map[string]*orderdomain.Order{},
		Coupons:    map[string]pricing.Coupon{},

		IdempotencyKeys: map[string]orderports.IdempotencyRecord{},
	}
}

func (t *Tables) clone() *Tables {
	c := newTables()
	for k, v := range t.Categories {
		c.Categories[k] = v
	}
	for k, v := range t.Items {
		c.Items[k] = CloneItem(v)
	}
	c.Reviews = append(c.Reviews, t.Reviews...)
	for k, v := range t.Carts {
		c.Carts[k] = v.Clone()
	}
	for k, v := range t.Orders {
		c.Orders[k] = v.Clone()
	}
	c.OrderNumber = append(c.OrderNumber, t.OrderNumber...)
	for k, v := range t.Coupons {
		c.Coupons[k] = v
	}
	c.Adjustments = append(c.Adjustments, t.Adjustments...)
	for k, v := range t.IdempotencyKeys {
		c.IdempotencyKeys[k] = v
	}
	return c
}

// ClearCart empties the owner's cart, if any.
func (t *Tables) ClearCart(owner identity.Identity, now time.Time) {
	if cart, ok := t.Carts[owner.Key()]; ok {
		cart.Clear(now)
	}
}

// DB serialises access to the tables.
type DB struct {
	mu     sync.RWMutex
	tables *Tables
	now    func() time.Time
}

// New returns an empty database.
func New() *DB {
	return &DB{tables: newTables(), now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (db *DB) WithClock(now func() time.Time) {
	if now != nil {
		db.now = now
	}
}

// Now reads the configured clock.
func (db *DB) Now() time.Time {
	return db.now()
}

// Read runs fn with shared access. fn must not mutate the tables or retain references.
func (db *DB) Read(fn func(t *Tables) error) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return fn(db.tables)
}

// Write runs fn with exclusive access against a working copy that replaces the
// tables only when fn returns nil.
func (db *DB) Write(fn func(t *Tables) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	work := db.tables.clone()
	if err := fn(work); err != nil {
		return err
	}
	db.tables = work
	return nil
}

// CloneItem deep copies an item.
func CloneItem(item *catalogdomain.Item) *catalogdomain.Item {
	if item == nil {
		return nil
	}
	clone := *item
	clone.Tags = append([]string(nil), item.Tags...)
	if item.DiscountPrice != nil {
		discount := *item.DiscountPrice
		clone.DiscountPrice = &discount
	}
	return &clone
}
