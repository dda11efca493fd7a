package pricing

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// CouponType selects how a coupon value is interpreted.
type CouponType string

const (
	CouponPercentage  CouponType = "PERCENTAGE"
	CouponFixedAmount CouponType = "FIXED_AMOUNT"
)

var (
	ErrInvalidCouponCode  = errors.New("coupon code is required")
	ErrInvalidCouponType  = errors.New("coupon type must be PERCENTAGE or FIXED_AMOUNT")
	ErrInvalidCouponValue = errors.New("coupon value must be greater than zero")
)

// Coupon is a named discount rule applied at order time.
type Coupon struct {
	Code            string
	Type            CouponType
	Value           decimal.Decimal
	MaximumDiscount *decimal.Decimal
	Active          bool
}

// NormalizeCode canonicalises a coupon code for lookups.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate enforces the coupon invariants.
func (c Coupon) Validate() error {
	if NormalizeCode(c.Code) == "" {
		return ErrInvalidCouponCode
	}
	switch c.Type {
	case CouponPercentage, CouponFixedAmount:
	default:
		return ErrInvalidCouponType
	}
	if !c.Value.IsPositive() {
		return ErrInvalidCouponValue
	}
	return nil
}
