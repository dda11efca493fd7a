package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-commerce/internal/shared/identity"
)

// Status tracks an order through fulfilment.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
	StatusRefunded   Status = "REFUNDED"
)

var (
	ErrEmptyLines           = errors.New("order must contain at least one line")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrEmptyItemID          = errors.New("order line item id is required")
	ErrInvalidAddress       = errors.New("shipping address requires line1, city and country")
	ErrMissingPaymentMethod = errors.New("payment method is required")
	ErrInvalidStatus        = errors.New("order status is invalid")
	ErrOrderNotFound        = errors.New("order not found")
	ErrDuplicateOrderNumber = errors.New("order number already exists")
	ErrUnbalanced           = errors.New("order totals do not balance")
)

// IsValidStatus reports whether s is a known order status.
func IsValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// Address is a postal address attached to an order.
type Address struct {
	FullName   string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
	Phone      string
}

// Validate checks the fields required to ship.
func (a Address) Validate() error {
	if strings.TrimSpace(a.Line1) == "" || strings.TrimSpace(a.City) == "" || strings.TrimSpace(a.Country) == "" {
		return ErrInvalidAddress
	}
	return nil
}

// Line is one purchased item priced at order time.
type Line struct {
	ItemID   string
	Quantity int
	Price    decimal.Decimal
	Total    decimal.Decimal
	// Item is hydrated on reads and never persisted with the line.
	Item *catalogdomain.Summary
}

// Order is a placed purchase.
type Order struct {
	ID              string
	Number          string
	UserID          string
	SessionID       string
	Status          Status
	Subtotal        decimal.Decimal
	Discount        decimal.Decimal
	Tax             decimal.Decimal
	Shipping        decimal.Decimal
	Total           decimal.Decimal
	ShippingAddress Address
	BillingAddress  *Address
	PaymentMethod   string
	CouponCode      string
	Notes           string
	Lines           []Line
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Owner is the identity the order was placed under.
func (o *Order) Owner() identity.Identity {
	return identity.Identity{UserID: o.UserID, SessionID: o.SessionID}
}

// VisibleTo reports whether caller may read the order: only the user or the
// session that placed it.
func (o *Order) VisibleTo(caller identity.Identity) bool {
	if o.UserID != "" {
		return caller.UserID == o.UserID
	}
	return o.SessionID != "" && caller.UserID == "" && caller.SessionID == o.SessionID
}

// Balanced checks that line totals, tax, shipping and discount add up to the total within a cent.
func (o *Order) Balanced() bool {
	sum := decimal.Zero
	for _, line := range o.Lines {
		sum = sum.Add(line.Total)
	}
	expected := sum.Add(o.Tax).Add(o.Shipping).Sub(o.Discount)
	return expected.Sub(o.Total).Abs().LessThanOrEqual(decimal.New(1, -2))
}

// Validate enforces structural invariants before persisting.
func (o *Order) Validate() error {
	if len(o.Lines) == 0 {
		return ErrEmptyLines
	}
	for _, line := range o.Lines {
		if strings.TrimSpace(line.ItemID) == "" {
			return ErrEmptyItemID
		}
		if line.Quantity < 1 {
			return ErrInvalidQuantity
		}
	}
	if !IsValidStatus(o.Status) {
		return ErrInvalidStatus
	}
	if !o.Balanced() {
		return ErrUnbalanced
	}
	return nil
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Lines = make([]Line, len(o.Lines))
	for i, line := range o.Lines {
		if line.Item != nil {
			summary := *line.Item
			line.Item = &summary
		}
		clone.Lines[i] = line
	}
	if o.BillingAddress != nil {
		billing := *o.BillingAddress
		clone.BillingAddress = &billing
	}
	return &clone
}

// InventoryAdjustment is the audit row written for every stock movement.
type InventoryAdjustment struct {
	ID               string
	ItemID           string
	PreviousQuantity int
	NewQuantity      int
	Adjustment       int
	Reason           string
	ActorID          string
	CreatedAt        time.Time
}

// AdjustmentReason is the reason recorded for stock taken by an order.
func AdjustmentReason(number string) string {
	return "Order " + number
}
