package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status represents the sales state of a catalog item.
type Status string

const (
	StatusAvailable  Status = "AVAILABLE"
	StatusSoldOut    Status = "SOLD_OUT"
	StatusComingSoon Status = "COMING_SOON"
)

var (
	ErrEmptyID           = errors.New("item id is required")
	ErrEmptySlug         = errors.New("item slug is required")
	ErrEmptyTitle        = errors.New("item title is required")
	ErrInvalidPrice      = errors.New("item price must be greater than zero")
	ErrInvalidDiscount   = errors.New("discount price must be positive and lower than price")
	ErrNegativeStock     = errors.New("item stock must not be negative")
	ErrInvalidStatus     = errors.New("item status is invalid")
	ErrItemUnavailable   = errors.New("item is not available for purchase")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrItemNotFound      = errors.New("item not found")
)

// Category groups items in the catalog.
type Category struct {
	ID   string
	Slug string
	Name string
}

// Item is a sellable catalog entry.
type Item struct {
	ID            string
	Slug          string
	Title         string
	Description   string
	Price         decimal.Decimal
	DiscountPrice *decimal.Decimal
	Stock         int
	Status        Status
	Published     bool
	CategoryID    string
	Tags          []string
	SellerID      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate enforces the item invariants.
func (i *Item) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(i.Slug) == "" {
		return ErrEmptySlug
	}
	if strings.TrimSpace(i.Title) == "" {
		return ErrEmptyTitle
	}
	if !i.Price.IsPositive() {
		return ErrInvalidPrice
	}
	if i.DiscountPrice != nil && (!i.DiscountPrice.IsPositive() || !i.DiscountPrice.LessThan(i.Price)) {
		return ErrInvalidDiscount
	}
	if i.Stock < 0 {
		return ErrNegativeStock
	}
	if !IsValidStatus(i.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// Purchasable reports whether the item may be added to a cart or ordered.
func (i *Item) Purchasable() bool {
	return i.Status == StatusAvailable && i.Published
}

// SalePrice is the price a shopper pays: the discount price when present.
func (i *Item) SalePrice() decimal.Decimal {
	if i.DiscountPrice != nil {
		return *i.DiscountPrice
	}
	return i.Price
}

// CheckPurchase verifies the item can be bought in the requested quantity.
func (i *Item) CheckPurchase(quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if !i.Purchasable() {
		return fmt.Errorf("%w: %s", ErrItemUnavailable, i.Title)
	}
	if i.Stock < quantity {
		return &InsufficientStockError{ItemID: i.ID, Title: i.Title, Requested: quantity, Available: i.Stock}
	}
	return nil
}

// Summary returns the minimal projection embedded in carts and orders.
func (i *Item) Summary() Summary {
	return Summary{ID: i.ID, Slug: i.Slug, Title: i.Title, Status: i.Status, Stock: i.Stock}
}

// Summary is a minimal item projection.
type Summary struct {
	ID     string
	Slug   string
	Title  string
	Status Status
	Stock  int
}

// IsValidStatus reports whether status is a known item status.
func IsValidStatus(status Status) bool {
	switch status {
	case StatusAvailable, StatusSoldOut, StatusComingSoon:
		return true
	default:
		return false
	}
}

// InsufficientStockError reports an item that cannot cover a requested quantity.
type InsufficientStockError struct {
	ItemID    string
	Title     string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	name := e.Title
	if name == "" {
		name = e.ItemID
	}
	return fmt.Sprintf("Insufficient stock for %s. Available: %d", name, e.Available)
}

// Is lets errors.Is match the ErrInsufficientStock sentinel.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// NotFoundError reports a referenced item that does not exist.
type NotFoundError struct {
	ItemID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("item %s not found", e.ItemID)
}

// Is lets errors.Is match the ErrItemNotFound sentinel.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrItemNotFound
}
