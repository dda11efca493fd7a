package postgres

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-commerce/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-commerce/internal/domains/pricing"
)

var _ ports.CouponLookup = (*CouponStore)(nil)

// CouponStore reads and writes coupons in PostgreSQL.
type CouponStore struct {
	db *gorm.DB
}

func NewCouponStore(db *gorm.DB) *CouponStore {
	return &CouponStore{db: db}
}

type couponRecord struct {
	Code            string           `gorm:"primaryKey;column:code"`
	Type            string           `gorm:"column:type"`
	Value           decimal.Decimal  `gorm:"column:value"`
	MaximumDiscount *decimal.Decimal `gorm:"column:maximum_discount"`
	Active          bool             `gorm:"column:active"`
}

func (couponRecord) TableName() string { return "coupons" }

// FindCoupon matches the code case-insensitively and returns nil when unknown.
func (s *CouponStore) FindCoupon(ctx context.Context, code string) (*pricing.Coupon, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("postgres coupon store not configured")
	}
	var record couponRecord
	if err := s.db.WithContext(ctx).First(&record, "code = ?", pricing.NormalizeCode(code)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pricing.Coupon{
		Code:            record.Code,
		Type:            pricing.CouponType(record.Type),
		Value:           record.Value,
		MaximumDiscount: record.MaximumDiscount,
		Active:          record.Active,
	}, nil
}

// SaveCoupon upserts a coupon under its normalised code.
func (s *CouponStore) SaveCoupon(ctx context.Context, coupon pricing.Coupon) error {
	if s == nil || s.db == nil {
		return errors.New("postgres coupon store not configured")
	}
	coupon.Code = pricing.NormalizeCode(coupon.Code)
	if err := coupon.Validate(); err != nil {
		return err
	}
	record := couponRecord{
		Code:            coupon.Code,
		Type:            string(coupon.Type),
		Value:           coupon.Value,
		MaximumDiscount: coupon.MaximumDiscount,
		Active:          coupon.Active,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		UpdateAll: true,
	}).Create(&record).Error
}
