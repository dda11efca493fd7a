package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	cartpostgres "github.com/Apurer/go-gin-commerce/internal/domains/cart/adapters/persistence/postgres"
	catalogdomain "github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-commerce/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-commerce/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed order store. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type orderRecord struct {
	ID              string          `gorm:"primaryKey;column:id"`
	Number          string          `gorm:"column:number"`
	UserID          string          `gorm:"column:user_id"`
	SessionID       string          `gorm:"column:session_id"`
	Status          string          `gorm:"column:status"`
	Subtotal        decimal.Decimal `gorm:"column:subtotal"`
	Discount        decimal.Decimal `gorm:"column:discount"`
	Tax             decimal.Decimal `gorm:"column:tax"`
	Shipping        decimal.Decimal `gorm:"column:shipping"`
	Total           decimal.Decimal `gorm:"column:total"`
	ShippingAddress domain.Address  `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	BillingAddress  *domain.Address `gorm:"column:billing_address;type:jsonb;serializer:json"`
	PaymentMethod   string          `gorm:"column:payment_method"`
	CouponCode      string          `gorm:"column:coupon_code"`
	Notes           string          `gorm:"column:notes"`
	CreatedAt       time.Time       `gorm:"column:created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type lineRecord struct {
	ID       int64           `gorm:"primaryKey;autoIncrement;column:id"`
	OrderID  string          `gorm:"column:order_id"`
	Position int             `gorm:"column:position"`
	ItemID   string          `gorm:"column:item_id"`
	Quantity int             `gorm:"column:quantity"`
	Price    decimal.Decimal `gorm:"column:price"`
	Total    decimal.Decimal `gorm:"column:total"`
}

func (lineRecord) TableName() string { return "order_lines" }

type adjustmentRecord struct {
	ID               string    `gorm:"primaryKey;column:id"`
	ItemID           string    `gorm:"column:item_id"`
	PreviousQuantity int       `gorm:"column:previous_quantity"`
	NewQuantity      int       `gorm:"column:new_quantity"`
	Adjustment       int       `gorm:"column:adjustment"`
	Reason           string    `gorm:"column:reason"`
	ActorID          string    `gorm:"column:actor_id"`
	CreatedAt        time.Time `gorm:"column:created_at"`
}

func (adjustmentRecord) TableName() string { return "inventory_adjustments" }

type stockRow struct {
	Stock int    `gorm:"column:stock"`
	Title string `gorm:"column:title"`
}

const decrementStock = `UPDATE items SET stock = stock - ?, updated_at = ? WHERE id = ? AND stock >= ? RETURNING stock, title`

// Place reserves the idempotency key, writes the order, decrements stock, audits, and clears
// the cart in one transaction.
func (r *Repository) Place(ctx context.Context, placement ports.Placement) ([]domain.InventoryAdjustment, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	order := placement.Order
	if order == nil {
		return nil, errors.New("order is nil")
	}
	var adjustments []domain.InventoryAdjustment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		adjustments = adjustments[:0]
		if placement.Idempotency != nil {
			if err := reserveKey(tx, placement.Idempotency, order.Number, order.CreatedAt); err != nil {
				return err
			}
		}
		record := toRecord(order)
		if err := tx.Create(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrDuplicateOrderNumber
			}
			return err
		}
		now := order.CreatedAt
		for _, line := range order.Lines {
			var rows []stockRow
			if err := tx.Raw(decrementStock, line.Quantity, now, line.ItemID, line.Quantity).Scan(&rows).Error; err != nil {
				return err
			}
			if len(rows) == 0 {
				return stockFailure(tx, line)
			}
			adjustments = append(adjustments, domain.InventoryAdjustment{
				ID:               uuid.NewString(),
				ItemID:           line.ItemID,
				PreviousQuantity: rows[0].Stock + line.Quantity,
				NewQuantity:      rows[0].Stock,
				Adjustment:       -line.Quantity,
				Reason:           domain.AdjustmentReason(order.Number),
				ActorID:          placement.Actor,
				CreatedAt:        now,
			})
		}

		// Lines reference items, so they follow the decrements that proved every item exists.
		lines := make([]lineRecord, 0, len(order.Lines))
		for i, line := range order.Lines {
			lines = append(lines, lineRecord{
				OrderID:  order.ID,
				Position: i,
				ItemID:   line.ItemID,
				Quantity: line.Quantity,
				Price:    line.Price.Round(2),
				Total:    line.Total.Round(2),
			})
		}
		if err := tx.Create(&lines).Error; err != nil {
			return err
		}
		audit := make([]adjustmentRecord, 0, len(adjustments))
		for _, adj := range adjustments {
			audit = append(audit, adjustmentRecord(adj))
		}
		if err := tx.Create(&audit).Error; err != nil {
			return err
		}

		if owner := placement.ClearCartOf; !owner.IsZero() {
			if err := cartpostgres.ClearTx(tx, owner, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return adjustments, nil
}

// stockFailure explains why a conditional decrement matched no row.
func stockFailure(tx *gorm.DB, line domain.Line) error {
	var rows []stockRow
	if err := tx.Raw(`SELECT stock, title FROM items WHERE id = ?`, line.ItemID).Scan(&rows).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return &catalogdomain.NotFoundError{ItemID: line.ItemID}
	}
	return &catalogdomain.InsufficientStockError{
		ItemID:    line.ItemID,
		Title:     rows[0].Title,
		Requested: line.Quantity,
		Available: rows[0].Stock,
	}
}

// GetByNumber loads an order and its lines.
func (r *Repository) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	var lines []lineRecord
	if err := r.db.WithContext(ctx).Where("order_id = ?", record.ID).Order("position ASC").Find(&lines).Error; err != nil {
		return nil, err
	}
	return record.toDomain(lines), nil
}

// Adjustments lists the audit rows of an item, oldest first.
func (r *Repository) Adjustments(ctx context.Context, itemID string) ([]domain.InventoryAdjustment, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []adjustmentRecord
	if err := r.db.WithContext(ctx).Where("item_id = ?", itemID).Order("created_at ASC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]domain.InventoryAdjustment, 0, len(records))
	for _, rec := range records {
		list = append(list, domain.InventoryAdjustment(rec))
	}
	return list, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	return orderRecord{
		ID:              order.ID,
		Number:          order.Number,
		UserID:          order.UserID,
		SessionID:       order.SessionID,
		Status:          string(order.Status),
		Subtotal:        order.Subtotal.Round(2),
		Discount:        order.Discount.Round(2),
		Tax:             order.Tax.Round(2),
		Shipping:        order.Shipping.Round(2),
		Total:           order.Total.Round(2),
		ShippingAddress: order.ShippingAddress,
		BillingAddress:  order.BillingAddress,
		PaymentMethod:   order.PaymentMethod,
		CouponCode:      order.CouponCode,
		Notes:           order.Notes,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func (r orderRecord) toDomain(lines []lineRecord) *domain.Order {
	order := &domain.Order{
		ID:              r.ID,
		Number:          r.Number,
		UserID:          r.UserID,
		SessionID:       r.SessionID,
		Status:          domain.Status(r.Status),
		Subtotal:        r.Subtotal,
		Discount:        r.Discount,
		Tax:             r.Tax,
		Shipping:        r.Shipping,
		Total:           r.Total,
		ShippingAddress: r.ShippingAddress,
		BillingAddress:  r.BillingAddress,
		PaymentMethod:   r.PaymentMethod,
		CouponCode:      r.CouponCode,
		Notes:           r.Notes,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		Lines:           make([]domain.Line, 0, len(lines)),
	}
	for _, line := range lines {
		order.Lines = append(order.Lines, domain.Line{
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
			Price:    line.Price,
			Total:    line.Total,
		})
	}
	return order
}
