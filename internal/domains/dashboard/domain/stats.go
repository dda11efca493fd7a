package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold is the stock level at or below which an item counts as low.
const DefaultLowStockThreshold = 5

// ErrInvalidPeriod signals a period outside the supported windows.
var ErrInvalidPeriod = errors.New("period must be one of 7d, 30d, 90d")

// Period is a trailing time window.
type Period string

const (
	Period7Days  Period = "7d"
	Period30Days Period = "30d"
	Period90Days Period = "90d"
)

// DefaultPeriod applies when no period is requested.
const DefaultPeriod = Period30Days

// ParsePeriod accepts 7d, 30d or 90d. An empty value selects DefaultPeriod.
func ParsePeriod(raw string) (Period, error) {
	switch Period(raw) {
	case "":
		return DefaultPeriod, nil
	case Period7Days, Period30Days, Period90Days:
		return Period(raw), nil
	default:
		return "", ErrInvalidPeriod
	}
}

// Days returns the window length.
func (p Period) Days() int {
	switch p {
	case Period7Days:
		return 7
	case Period90Days:
		return 90
	default:
		return 30
	}
}

// Since returns the start of the window ending at now.
func (p Period) Since(now time.Time) time.Time {
	return now.AddDate(0, 0, -p.Days())
}

// Metrics is the dashboard rollup. Empty aggregates are zero.
type Metrics struct {
	TotalOrders      int64
	TotalRevenue     decimal.Decimal
	PendingOrders    int64
	TotalProducts    int64
	LowStockProducts int64
}

// Stats pairs the metrics with the window they cover.
type Stats struct {
	Metrics Metrics
	Period  Period
	Since   time.Time
}
