// Package pricing turns resolved order lines and an optional coupon into the
// financial totals of an order. It performs no I/O.
package pricing

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Line is an order line already resolved against the catalog.
type Line struct {
	ItemID    string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Total returns unit price times quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Policy holds the store-wide rates used by the calculator.
type Policy struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
}

// DefaultPolicy is 8% tax, free shipping above 100, otherwise a flat 10.
func DefaultPolicy() Policy {
	return Policy{
		TaxRate:               decimal.RequireFromString("0.08"),
		FreeShippingThreshold: decimal.NewFromInt(100),
		FlatShippingFee:       decimal.NewFromInt(10),
	}
}

// Quote is the breakdown returned by the calculator.
type Quote struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// Calculator computes quotes under a fixed policy.
type Calculator struct {
	policy Policy
}

// NewCalculator wires a calculator with the given policy.
func NewCalculator(policy Policy) Calculator {
	return Calculator{policy: policy}
}

// Policy returns the policy the calculator was built with.
func (c Calculator) Policy() Policy {
	return c.policy
}

// Quote prices the lines. A nil or inactive coupon yields no discount.
func (c Calculator) Quote(lines []Line, coupon *Coupon) Quote {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Total())
	}
	subtotal = Round(subtotal)

	discount := c.Discount(subtotal, coupon)
	tax := Round(subtotal.Sub(discount).Mul(c.policy.TaxRate))

	// Free shipping is decided on the pre-discount subtotal.
	shipping := Round(c.policy.FlatShippingFee)
	if subtotal.GreaterThan(c.policy.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	return Quote{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Shipping: shipping,
		Total:    Round(subtotal.Sub(discount).Add(tax).Add(shipping)),
	}
}

// Discount returns the amount a coupon takes off the subtotal, never more than the subtotal.
func (c Calculator) Discount(subtotal decimal.Decimal, coupon *Coupon) decimal.Decimal {
	if coupon == nil || !coupon.Active || !coupon.Value.IsPositive() || !subtotal.IsPositive() {
		return decimal.Zero
	}
	var discount decimal.Decimal
	switch coupon.Type {
	case CouponPercentage:
		discount = subtotal.Mul(coupon.Value).Div(hundred)
		if coupon.MaximumDiscount != nil && discount.GreaterThan(*coupon.MaximumDiscount) {
			discount = *coupon.MaximumDiscount
		}
	case CouponFixedAmount:
		discount = coupon.Value
	default:
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	return Round(discount)
}

// Round rounds a monetary amount to cents, half away from zero.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}
