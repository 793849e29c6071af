package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rowanholt/vesta/internal/domain"
	"github.com/rowanholt/vesta/internal/repository"
)

// StatsService derives revenue reporting from orders. It is read-only, runs
// concurrently with order mutations without locking, and may observe
// slightly stale data.
type StatsService struct {
	store repository.Store
}

// NewStatsService creates a new StatsService instance.
func NewStatsService(store repository.Store) *StatsService {
	return &StatsService{store: store}
}

// Stats reports revenue, order count, average order value, and growth for
// the window [start, end). Growth compares against the immediately preceding
// window of equal length.
func (s *StatsService) Stats(ctx context.Context, start, end time.Time) (*domain.StatsReport, error) {
	if !end.After(start) {
		return nil, domain.Invalid("stats.window", "window end must be after start")
	}

	current, err := s.store.OrderStats(ctx, start, end)
	if err != nil {
		return nil, domain.Internal(err, "stats.window", "failed to aggregate orders")
	}

	previousStart := start.Add(-end.Sub(start))
	previous, err := s.store.OrderStats(ctx, previousStart, start)
	if err != nil {
		return nil, domain.Internal(err, "stats.window", "failed to aggregate previous window")
	}

	return &domain.StatsReport{
		Start:             start,
		End:               end,
		TotalRevenue:      current.TotalRevenue,
		OrderCount:        current.OrderCount,
		AverageOrderValue: AverageOrderValue(current.TotalRevenue, current.OrderCount),
		GrowthPct:         Growth(current.TotalRevenue, previous.TotalRevenue),
	}, nil
}

// Growth returns the percentage change from previous to current revenue.
// With no baseline the growth is defined as 0, not NaN.
func Growth(current, previous decimal.Decimal) decimal.Decimal {
	if !previous.IsPositive() {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(2)
}

// AverageOrderValue returns revenue divided by order count, or 0 for an
// empty window.
func AverageOrderValue(revenue decimal.Decimal, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return revenue.Div(decimal.NewFromInt(count)).Round(2)
}
