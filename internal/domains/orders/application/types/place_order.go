package types

import (
	"github.com/Apurer/go-gin-commerce/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-commerce/internal/shared/identity"
)

// LineInput is one requested item.
type LineInput struct {
	ItemID   string
	Quantity int
}

// PlaceOrderInput is the checkout command.
type PlaceOrderInput struct {
	Owner           identity.Identity
	Lines           []LineInput
	ShippingAddress domain.Address
	BillingAddress  *domain.Address
	PaymentMethod   string
	CouponCode      string
	Notes           string
	IdempotencyKey  string
}
