package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-commerce/internal/domains/cart/domain"
	"github.com/Apurer/go-gin-commerce/internal/domains/cart/ports"
	"github.com/Apurer/go-gin-commerce/internal/platform/memdb"
	"github.com/Apurer/go-gin-commerce/internal/shared/identity"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps carts in the shared memdb tables, keyed by owner.
type Repository struct {
	db *memdb.DB
}

func NewRepository(db *memdb.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Get(_ context.Context, owner identity.Identity) (*domain.Cart, error) {
	var found *domain.Cart
	err := r.db.Read(func(t *memdb.Tables) error {
		cart, ok := t.Carts[owner.Key()]
		if !ok {
			return ports.ErrNotFound
		}
		found = cart.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// AddLine runs under the memdb write lock, which serialises concurrent adds to the same cart.
func (r *Repository) AddLine(_ context.Context, owner identity.Identity, itemID string, quantity int, price decimal.Decimal) (*domain.Cart, error) {
	var updated *domain.Cart
	err := r.db.Write(func(t *memdb.Tables) error {
		now := r.db.Now()
		key := owner.Key()
		cart, ok := t.Carts[key]
		if !ok {
			created, err := domain.NewCart(uuid.NewString(), owner, now)
			if err != nil {
				return err
			}
			cart = created
			t.Carts[key] = cart
		}
		if err := cart.Add(itemID, quantity, price, now); err != nil {
			return err
		}
		updated = cart.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *Repository) Clear(_ context.Context, owner identity.Identity) error {
	return r.db.Write(func(t *memdb.Tables) error {
		t.ClearCart(owner, r.db.Now())
		return nil
	})
}

func (r *Repository) PurgeAnonymous(_ context.Context, olderThan time.Time) (int64, error) {
	var removed int64
	err := r.db.Write(func(t *memdb.Tables) error {
		for key, cart := range t.Carts {
			if cart.Owner.SessionID != "" && cart.UpdatedAt.Before(olderThan) {
				delete(t.Carts, key)
				removed++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
