package memory

import (
	"context"

	"github.com/Apurer/go-gin-commerce/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-commerce/internal/domains/pricing"
	"github.com/Apurer/go-gin-commerce/internal/platform/memdb"
)

var _ ports.CouponLookup = (*CouponStore)(nil)

// CouponStore resolves coupons from the shared memdb tables.
type CouponStore struct {
	db *memdb.DB
}

func NewCouponStore(db *memdb.DB) *CouponStore {
	return &CouponStore{db: db}
}

// FindCoupon matches the code case-insensitively and returns nil when unknown.
func (s *CouponStore) FindCoupon(_ context.Context, code string) (*pricing.Coupon, error) {
	var found *pricing.Coupon
	err := s.db.Read(func(t *memdb.Tables) error {
		if coupon, ok := t.Coupons[pricing.NormalizeCode(code)]; ok {
			found = &coupon
		}
		return nil
	})
	return found, err
}

// SaveCoupon inserts or replaces a coupon under its normalised code.
func (s *CouponStore) SaveCoupon(_ context.Context, coupon pricing.Coupon) error {
	coupon.Code = pricing.NormalizeCode(coupon.Code)
	if err := coupon.Validate(); err != nil {
		return err
	}
	return s.db.Write(func(t *memdb.Tables) error {
		t.Coupons[coupon.Code] = coupon
		return nil
	})
}
