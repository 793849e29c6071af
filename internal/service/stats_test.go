package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowanholt/vesta/internal/domain"
	"github.com/rowanholt/vesta/internal/memory"
)

func TestGrowth(t *testing.T) {
	tests := []struct {
		name              string
		current, previous string
		want              string
	}{
		{"revenue doubled", "200", "100", "100"},
		{"revenue halved", "100", "200", "-50"},
		{"flat", "150", "150", "0"},
		{"no baseline defines growth as zero", "500", "0", "0"},
		{"rounded to two decimals", "100", "300", "-66.67"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Growth(dec(tt.current), dec(tt.previous))
			assert.True(t, got.Equal(dec(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestAverageOrderValue(t *testing.T) {
	assert.True(t, AverageOrderValue(dec("300"), 4).Equal(dec("75")))
	assert.True(t, AverageOrderValue(dec("100"), 3).Equal(dec("33.33")))
	assert.True(t, AverageOrderValue(dec("0"), 0).IsZero(), "empty window has zero AOV, not NaN")
}

func TestStatsWindow(t *testing.T) {
	store := memory.NewStore()
	svc := NewStatsService(store)
	ctx := context.Background()

	// Revenue counts confirmed through delivered; pending, cancelled, and
	// refunded orders are excluded.
	seedOrder(t, store, "VST-20250105-AAAA", domain.OrderStatusConfirmed)
	seedOrder(t, store, "VST-20250105-BBBB", domain.OrderStatusDelivered)
	seedOrder(t, store, "VST-20250105-CCCC", domain.OrderStatusPending)
	seedOrder(t, store, "VST-20250105-DDDD", domain.OrderStatusCancelled)

	now := time.Now()
	report, err := svc.Stats(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, int64(2), report.OrderCount)
	assert.True(t, report.TotalRevenue.Equal(dec("4196")), "got %s", report.TotalRevenue)
	assert.True(t, report.AverageOrderValue.Equal(dec("2098")))
	// The preceding window is empty, so growth is defined as zero.
	assert.True(t, report.GrowthPct.IsZero())
}

func TestStatsRejectsInvertedWindow(t *testing.T) {
	svc := NewStatsService(memory.NewStore())
	now := time.Now()

	_, err := svc.Stats(context.Background(), now, now)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.EINVALID))

	_, err = svc.Stats(context.Background(), now, now.Add(-time.Hour))
	assert.Error(t, err)
}

func TestStatsEmptyWindow(t *testing.T) {
	svc := NewStatsService(memory.NewStore())
	now := time.Now()

	report, err := svc.Stats(context.Background(), now.Add(-time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), report.OrderCount)
	assert.True(t, report.TotalRevenue.IsZero())
	assert.True(t, report.AverageOrderValue.IsZero())
	assert.True(t, report.GrowthPct.IsZero())
}
