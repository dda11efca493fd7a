package mapper

import (
	cataloghttpmapper "github.com/Apurer/go-gin-commerce/internal/domains/catalog/adapters/http/mapper"
	"github.com/Apurer/go-gin-commerce/internal/domains/dashboard/domain"
)

// Metrics is the HTTP representation of the dashboard rollup.
type Metrics struct {
	TotalOrders      int64   `json:"totalOrders"`
	TotalRevenue     float64 `json:"totalRevenue"`
	PendingOrders    int64   `json:"pendingOrders"`
	TotalProducts    int64   `json:"totalProducts"`
	LowStockProducts int64   `json:"lowStockProducts"`
}

// StatsResponse is the body of GET /dashboard/stats.
type StatsResponse struct {
	Metrics Metrics `json:"metrics"`
	Period  string  `json:"period"`
}

func FromStats(stats *domain.Stats) StatsResponse {
	if stats == nil {
		return StatsResponse{Period: string(domain.DefaultPeriod)}
	}
	m := stats.Metrics
	return StatsResponse{
		Metrics: Metrics{
			TotalOrders:      m.TotalOrders,
			TotalRevenue:     cataloghttpmapper.Money(m.TotalRevenue),
			PendingOrders:    m.PendingOrders,
			TotalProducts:    m.TotalProducts,
			LowStockProducts: m.LowStockProducts,
		},
		Period: string(stats.Period),
	}
}
