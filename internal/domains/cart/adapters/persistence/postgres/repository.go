package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-commerce/internal/domains/cart/domain"
	"github.com/Apurer/go-gin-commerce/internal/domains/cart/ports"
	"github.com/Apurer/go-gin-commerce/internal/shared/identity"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists carts in PostgreSQL using GORM.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository wires a PostgreSQL-backed cart store. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

type cartRecord struct {
	ID        string    `gorm:"primaryKey;column:id"`
	OwnerKey  string    `gorm:"column:owner_key"`
	UserID    string    `gorm:"column:user_id"`
	SessionID string    `gorm:"column:session_id"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (cartRecord) TableName() string { return "carts" }

type lineRecord struct {
	CartID   string          `gorm:"primaryKey;column:cart_id"`
	ItemID   string          `gorm:"primaryKey;column:item_id"`
	Quantity int             `gorm:"column:quantity"`
	Price    decimal.Decimal `gorm:"column:price"`
	AddedAt  time.Time       `gorm:"column:added_at"`
}

func (lineRecord) TableName() string { return "cart_lines" }

// Get loads the owner's cart with its lines.
func (r *Repository) Get(ctx context.Context, owner identity.Identity) (*domain.Cart, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return load(r.db.WithContext(ctx), owner)
}

// AddLine upserts the cart, locks its row, and increments-or-inserts the line in one transaction.
func (r *Repository) AddLine(ctx context.Context, owner identity.Identity, itemID string, quantity int, price decimal.Decimal) (*domain.Cart, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	var updated *domain.Cart
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := r.now().UTC()
		header := cartRecord{
			ID:        uuid.NewString(),
			OwnerKey:  owner.Key(),
			UserID:    owner.UserID,
			SessionID: owner.SessionID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
		}).Create(&header).Error; err != nil {
			return err
		}
		var locked cartRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("owner_key = ?", owner.Key()).
			First(&locked).Error; err != nil {
			return err
		}
		line := lineRecord{CartID: locked.ID, ItemID: itemID, Quantity: quantity, Price: price.Round(2), AddedAt: now}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "item_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity": gorm.Expr("cart_lines.quantity + EXCLUDED.quantity"),
				"price":    gorm.Expr("EXCLUDED.price"),
			}),
		}).Create(&line).Error; err != nil {
			return err
		}
		cart, err := load(tx, owner)
		if err != nil {
			return err
		}
		updated = cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Clear deletes the owner's cart lines and keeps the cart row.
func (r *Repository) Clear(ctx context.Context, owner identity.Identity) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return ClearTx(r.db.WithContext(ctx), owner, r.now().UTC())
}

// ClearTx empties the owner's cart using the given handle, typically an open transaction.
func ClearTx(tx *gorm.DB, owner identity.Identity, now time.Time) error {
	if err := tx.Where("cart_id IN (?)", tx.Model(&cartRecord{}).Select("id").Where("owner_key = ?", owner.Key())).
		Delete(&lineRecord{}).Error; err != nil {
		return err
	}
	return tx.Model(&cartRecord{}).Where("owner_key = ?", owner.Key()).Update("updated_at", now).Error
}

// PurgeAnonymous deletes session carts untouched since the cutoff. Their lines go with
// them through the cart_lines foreign key.
func (r *Repository) PurgeAnonymous(ctx context.Context, olderThan time.Time) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	result := r.db.WithContext(ctx).Where("session_id <> '' AND updated_at < ?", olderThan).Delete(&cartRecord{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func load(tx *gorm.DB, owner identity.Identity) (*domain.Cart, error) {
	var header cartRecord
	if err := tx.Where("owner_key = ?", owner.Key()).First(&header).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	var lines []lineRecord
	if err := tx.Where("cart_id = ?", header.ID).Order("added_at ASC, item_id ASC").Find(&lines).Error; err != nil {
		return nil, err
	}
	cart := &domain.Cart{
		ID:        header.ID,
		Owner:     identity.Identity{UserID: header.UserID, SessionID: header.SessionID},
		CreatedAt: header.CreatedAt,
		UpdatedAt: header.UpdatedAt,
		Lines:     make([]domain.Line, 0, len(lines)),
	}
	for _, line := range lines {
		cart.Lines = append(cart.Lines, domain.Line{
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
			Price:    line.Price,
			AddedAt:  line.AddedAt,
		})
	}
	return cart, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres cart repository not configured")
	}
	return nil
}
