package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatsReport is derived revenue reporting over a window of orders. Only
// revenue-eligible order statuses contribute. Reads may observe slightly
// stale data; reporting tolerates eventual consistency.
type StatsReport struct {
	Start             time.Time       `json:"start"`
	End               time.Time       `json:"end"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	OrderCount        int64           `json:"orderCount"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	GrowthPct         decimal.Decimal `json:"growthPct"`
}
