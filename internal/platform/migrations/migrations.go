package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Adapters never migrate on their own.
// Foreign keys come from the belongs-to fields below, which only exist for the migrator.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&categoryRecord{},
		&itemRecord{},
		&reviewRecord{},
		&cartRecord{},
		&cartLineRecord{},
		&orderRecord{},
		&orderLineRecord{},
		&couponRecord{},
		&inventoryAdjustmentRecord{},
		&idempotencyRecord{},
	)
}

// Catalog schema mirrors the catalog Postgres adapter.
type categoryRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:64"`
	Slug      string    `gorm:"column:slug;size:128;uniqueIndex"`
	Name      string    `gorm:"column:name"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (categoryRecord) TableName() string { return "categories" }

type itemRecord struct {
	ID            string           `gorm:"primaryKey;column:id;size:64"`
	Slug          string           `gorm:"column:slug;size:160;uniqueIndex"`
	Title         string           `gorm:"column:title;index"`
	Description   string           `gorm:"column:description;type:text"`
	Price         decimal.Decimal  `gorm:"column:price;type:numeric(12,2);index"`
	DiscountPrice *decimal.Decimal `gorm:"column:discount_price;type:numeric(12,2)"`
	Stock         int              `gorm:"column:stock;check:chk_items_stock_non_negative,stock >= 0"`
	Status        string           `gorm:"column:status;type:varchar(32);index:idx_items_status_published"`
	Published     bool             `gorm:"column:published;index:idx_items_status_published"`
	CategoryID    string           `gorm:"column:category_id;size:64;index"`
	Tags          pq.StringArray   `gorm:"column:tags;type:text[]"`
	SellerID      string           `gorm:"column:seller_id;size:64"`
	CreatedAt     time.Time        `gorm:"column:created_at;index"`
	UpdatedAt     time.Time        `gorm:"column:updated_at"`
}

func (itemRecord) TableName() string { return "items" }

type reviewRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:64"`
	ItemID    string    `gorm:"column:item_id;size:64;index:idx_reviews_item_approved"`
	Rating    int       `gorm:"column:rating;check:chk_reviews_rating,rating BETWEEN 1 AND 5"`
	Approved  bool      `gorm:"column:approved;index:idx_reviews_item_approved"`
	CreatedAt time.Time `gorm:"column:created_at"`

	Item itemRecord `gorm:"foreignKey:ItemID;references:ID;constraint:OnDelete:CASCADE"`
}

func (reviewRecord) TableName() string { return "reviews" }

// Cart schema mirrors the cart Postgres adapter.
type cartRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:64"`
	OwnerKey  string    `gorm:"column:owner_key;size:200;uniqueIndex"`
	UserID    string    `gorm:"column:user_id;size:64"`
	SessionID string    `gorm:"column:session_id;size:128"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;index"`
}

func (cartRecord) TableName() string { return "carts" }

type cartLineRecord struct {
	CartID   string          `gorm:"primaryKey;column:cart_id;size:64"`
	ItemID   string          `gorm:"primaryKey;column:item_id;size:64"`
	Quantity int             `gorm:"column:quantity;check:chk_cart_lines_quantity,quantity >= 1"`
	Price    decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	AddedAt  time.Time       `gorm:"column:added_at"`

	Cart cartRecord `gorm:"foreignKey:CartID;references:ID;constraint:OnDelete:CASCADE"`
	Item itemRecord `gorm:"foreignKey:ItemID;references:ID;constraint:OnDelete:CASCADE"`
}

func (cartLineRecord) TableName() string { return "cart_lines" }

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID              string          `gorm:"primaryKey;column:id;size:64"`
	Number          string          `gorm:"column:number;size:40;uniqueIndex"`
	UserID          string          `gorm:"column:user_id;size:64;index"`
	SessionID       string          `gorm:"column:session_id;size:128"`
	Status          string          `gorm:"column:status;type:varchar(32);index"`
	Subtotal        decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2)"`
	Discount        decimal.Decimal `gorm:"column:discount;type:numeric(12,2)"`
	Tax             decimal.Decimal `gorm:"column:tax;type:numeric(12,2)"`
	Shipping        decimal.Decimal `gorm:"column:shipping;type:numeric(12,2)"`
	Total           decimal.Decimal `gorm:"column:total;type:numeric(12,2)"`
	ShippingAddress []byte          `gorm:"column:shipping_address;type:jsonb"`
	BillingAddress  []byte          `gorm:"column:billing_address;type:jsonb"`
	PaymentMethod   string          `gorm:"column:payment_method;size:64"`
	CouponCode      string          `gorm:"column:coupon_code;size:64"`
	Notes           string          `gorm:"column:notes;type:text"`
	CreatedAt       time.Time       `gorm:"column:created_at;index"`
	UpdatedAt       time.Time       `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type orderLineRecord struct {
	ID       int64           `gorm:"primaryKey;autoIncrement;column:id"`
	OrderID  string          `gorm:"column:order_id;size:64;index"`
	Position int             `gorm:"column:position"`
	ItemID   string          `gorm:"column:item_id;size:64;index"`
	Quantity int             `gorm:"column:quantity"`
	Price    decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	Total    decimal.Decimal `gorm:"column:total;type:numeric(12,2)"`

	Order orderRecord `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
	Item  itemRecord  `gorm:"foreignKey:ItemID;references:ID;constraint:OnDelete:RESTRICT"`
}

func (orderLineRecord) TableName() string { return "order_lines" }

type couponRecord struct {
	Code            string           `gorm:"primaryKey;column:code;size:64"`
	Type            string           `gorm:"column:type;type:varchar(32)"`
	Value           decimal.Decimal  `gorm:"column:value;type:numeric(12,2)"`
	MaximumDiscount *decimal.Decimal `gorm:"column:maximum_discount;type:numeric(12,2)"`
	Active          bool             `gorm:"column:active"`
}

func (couponRecord) TableName() string { return "coupons" }

type inventoryAdjustmentRecord struct {
	ID               string    `gorm:"primaryKey;column:id;size:64"`
	ItemID           string    `gorm:"column:item_id;size:64;index"`
	PreviousQuantity int       `gorm:"column:previous_quantity"`
	NewQuantity      int       `gorm:"column:new_quantity"`
	Adjustment       int       `gorm:"column:adjustment"`
	Reason           string    `gorm:"column:reason"`
	ActorID          string    `gorm:"column:actor_id;size:200"`
	CreatedAt        time.Time `gorm:"column:created_at;index"`

	Item itemRecord `gorm:"foreignKey:ItemID;references:ID;constraint:OnDelete:RESTRICT"`
}

func (inventoryAdjustmentRecord) TableName() string { return "inventory_adjustments" }

// Idempotency schema mirrors the orders idempotency store.
type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:512"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	OrderNumber string    `gorm:"column:order_number;size:40"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "order_idempotency_keys" }
