package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-commerce/internal/shared/identity"
)

var (
	ErrEmptyItemID     = errors.New("cart line item id is required")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidPrice    = errors.New("cart line price must not be negative")
)

// Line is one item held in a cart with the price captured when it was last added.
type Line struct {
	ItemID   string
	Quantity int
	Price    decimal.Decimal
	AddedAt  time.Time
}

// Total is price times quantity.
func (l Line) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the pending purchase of a single owner.
type Cart struct {
	ID        string
	Owner     identity.Identity
	Lines     []Line
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCart creates an empty cart for the owner.
func NewCart(id string, owner identity.Identity, now time.Time) (*Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	return &Cart{ID: id, Owner: owner, CreatedAt: now, UpdatedAt: now}, nil
}

// Add increments the quantity of an existing line, refreshing its price, or appends a new line.
func (c *Cart) Add(itemID string, quantity int, price decimal.Decimal, now time.Time) error {
	if strings.TrimSpace(itemID) == "" {
		return ErrEmptyItemID
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if price.IsNegative() {
		return ErrInvalidPrice
	}
	c.UpdatedAt = now
	for i := range c.Lines {
		if c.Lines[i].ItemID == itemID {
			c.Lines[i].Quantity += quantity
			c.Lines[i].Price = price
			return nil
		}
	}
	c.Lines = append(c.Lines, Line{ItemID: itemID, Quantity: quantity, Price: price, AddedAt: now})
	return nil
}

// Clear drops every line but keeps the cart itself.
func (c *Cart) Clear(now time.Time) {
	c.Lines = nil
	c.UpdatedAt = now
}

// Line returns the line holding itemID.
func (c *Cart) Line(itemID string) (Line, bool) {
	for _, line := range c.Lines {
		if line.ItemID == itemID {
			return line, true
		}
	}
	return Line{}, false
}

// Subtotal sums the line totals.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	if c == nil {
		return sum
	}
	for _, line := range c.Lines {
		sum = sum.Add(line.Total())
	}
	return sum
}

// ItemCount sums the line quantities.
func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// Clone returns a deep copy.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Lines = append([]Line(nil), c.Lines...)
	return &clone
}
