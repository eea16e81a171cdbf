package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"funnelforge/internal/rng"
	"funnelforge/pkg/models"
)

// pinnedConfig removes jitter so multiplier components can be checked
// exactly.
func pinnedConfig() models.Generation {
	cfg := models.DefaultConfig().Generation
	cfg.JitterMin = 1.0
	cfg.JitterMax = 1.0
	return cfg
}

func TestMultiplierComponents(t *testing.T) {
	m := NewModel(pinnedConfig(), rng.New(42))

	tests := []struct {
		name string
		day  int
		want float64
	}{
		{name: "PlainWeekday", day: 0, want: 1.0},
		{name: "WeekendDip", day: 5, want: 0.7},
		{name: "SecondWeekendDay", day: 6, want: 0.7},
		{name: "MonthEndSpike", day: 28, want: 1.2},
		{name: "QuarterlyGrowth", day: 91, want: 1.05}, // day 91: weekday, mid-month
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, m.Multiplier(tt.day), 1e-9)
		})
	}
}

func TestMultiplierStacksWeekendAndMonthEnd(t *testing.T) {
	m := NewModel(pinnedConfig(), rng.New(42))

	// Day 118: 118%7==6 (weekend), 118%30==28 (month end), 118/90==1.
	assert.InDelta(t, 0.7*1.2*1.05, m.Multiplier(118), 1e-9)
}

func TestJitterStaysInRange(t *testing.T) {
	cfg := models.DefaultConfig().Generation
	m := NewModel(cfg, rng.New(42))
	pinned := NewModel(pinnedConfig(), rng.New(42))

	for day := 0; day < 365; day++ {
		ratio := m.Multiplier(day) / pinned.Multiplier(day)
		assert.GreaterOrEqual(t, ratio, cfg.JitterMin)
		assert.Less(t, ratio, cfg.JitterMax)
	}
}

func TestDailyVolumesStayAligned(t *testing.T) {
	cfg := models.DefaultConfig().Generation
	m := NewModel(cfg, rng.New(42))

	for day := 0; day < 365; day++ {
		d := m.Daily(day)

		assert.GreaterOrEqual(t, d.NewUsers, 0)
		assert.LessOrEqual(t, d.NewUsers, d.ActiveUsers, "day %d", day)
		assert.GreaterOrEqual(t, d.Sessions, d.ActiveUsers, "day %d", day)
		assert.GreaterOrEqual(t, d.Transactions, 0)
		assert.GreaterOrEqual(t, d.Revenue, 0.0)

		assert.LessOrEqual(t, d.LeadUsers, d.ActiveUsers)
		assert.LessOrEqual(t, d.IdentifiedLeads, d.NewUsers)
		assert.LessOrEqual(t, d.PayingLeads, d.IdentifiedLeads)
	}
}

func TestDailyRevenueMatchesTransactions(t *testing.T) {
	cfg := pinnedConfig()
	m := NewModel(cfg, rng.New(42))

	d := m.Daily(0)
	assert.InDelta(t, float64(d.Transactions)*cfg.AverageTransactionValue, d.Revenue, 0.005)
}

func TestDailyIsPureFunctionOfSeedAndDay(t *testing.T) {
	cfg := models.DefaultConfig().Generation
	a := NewModel(cfg, rng.New(42))
	b := NewModel(cfg, rng.New(42))

	// Query b out of order; results must not shift.
	for _, day := range []int{200, 3, 99, 0} {
		assert.Equal(t, a.Daily(day), b.Daily(day))
	}
}
