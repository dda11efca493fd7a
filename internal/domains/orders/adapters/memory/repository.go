package memory

import (
	"context"
	"errors"

	"github.com/google/uuid"

	catalogdomain "github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-commerce/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-commerce/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-commerce/internal/platform/memdb"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order store. Place runs inside one memdb write,
// so a failing line discards every change made before it.
type Repository struct {
	db *memdb.DB
}

func NewRepository(db *memdb.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Place(_ context.Context, placement ports.Placement) ([]domain.InventoryAdjustment, error) {
	if placement.Order == nil {
		return nil, errors.New("order is nil")
	}
	var adjustments []domain.InventoryAdjustment
	err := r.db.Write(func(t *memdb.Tables) error {
		order := placement.Order.Clone()
		if _, exists := t.Orders[order.Number]; exists {
			return domain.ErrDuplicateOrderNumber
		}
		now := r.db.Now().UTC()
		if key := placement.Idempotency; key != nil {
			if _, taken := t.IdempotencyKeys[key.Key]; taken {
				return ports.ErrIdempotencyKeyInUse
			}
			record := *key
			record.OrderNumber = order.Number
			record.CreatedAt = now
			record.UpdatedAt = now
			t.IdempotencyKeys[record.Key] = record
		}
		for i := range order.Lines {
			line := &order.Lines[i]
			line.Item = nil
			item, ok := t.Items[line.ItemID]
			if !ok {
				return &catalogdomain.NotFoundError{ItemID: line.ItemID}
			}
			if item.Stock < line.Quantity {
				return &catalogdomain.InsufficientStockError{
					ItemID:    item.ID,
					Title:     item.Title,
					Requested: line.Quantity,
					Available: item.Stock,
				}
			}
			previous := item.Stock
			item.Stock -= line.Quantity
			item.UpdatedAt = now
			adjustments = append(adjustments, domain.InventoryAdjustment{
				ID:               uuid.NewString(),
				ItemID:           item.ID,
				PreviousQuantity: previous,
				NewQuantity:      item.Stock,
				Adjustment:       -line.Quantity,
				Reason:           domain.AdjustmentReason(order.Number),
				ActorID:          placement.Actor,
				CreatedAt:        now,
			})
		}
		t.Orders[order.Number] = order
		t.OrderNumber = append(t.OrderNumber, order.Number)
		t.Adjustments = append(t.Adjustments, adjustments...)
		if !placement.ClearCartOf.IsZero() {
			t.ClearCart(placement.ClearCartOf, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return adjustments, nil
}

func (r *Repository) GetByNumber(_ context.Context, number string) (*domain.Order, error) {
	var found *domain.Order
	err := r.db.Read(func(t *memdb.Tables) error {
		order, ok := t.Orders[number]
		if !ok {
			return ports.ErrNotFound
		}
		found = order.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (r *Repository) Adjustments(_ context.Context, itemID string) ([]domain.InventoryAdjustment, error) {
	var list []domain.InventoryAdjustment
	err := r.db.Read(func(t *memdb.Tables) error {
		for _, adj := range t.Adjustments {
			if adj.ItemID == itemID {
				list = append(list, adj)
			}
		}
		return nil
	})
	return list, err
}
