package models

import (
	"fmt"
	"time"
)

// Config is the root configuration for a generation run.
type Config struct {
	Generation Generation `yaml:"generation"`
	Output     Output     `yaml:"output"`
	Warehouse  Warehouse  `yaml:"warehouse"`
}

// Generation holds the tuning knobs for the simulation itself. All
// values are internal knobs, not an external contract.
type Generation struct {
	Seed      int64  `yaml:"seed"`
	StartDate string `yaml:"start_date"` // YYYY-MM-DD
	Days      int    `yaml:"days"`

	BaseDailyActiveUsers int `yaml:"base_daily_active_users"`
	BaseDailyNewUsers    int `yaml:"base_daily_new_users"`
	BaseDailySessions    int `yaml:"base_daily_sessions"`

	// Lead vs anonymous traffic split
	LeadShareOfTraffic     float64 `yaml:"lead_share_of_traffic"`
	LeadIdentificationRate float64 `yaml:"lead_identification_rate"`
	LeadConversionRate     float64 `yaml:"lead_conversion_rate"`

	AverageTransactionValue float64 `yaml:"average_transaction_value"`

	// Share of the day's new-user quota that actually produces a session
	SessionCreationRate float64 `yaml:"session_creation_rate"`

	// Daily volume jitter range applied on top of seasonality and growth
	JitterMin float64 `yaml:"jitter_min"`
	JitterMax float64 `yaml:"jitter_max"`
}

// Output configures file sinks.
type Output struct {
	Directory string `yaml:"directory"`
}

// Warehouse configures the optional Snowflake load target.
type Warehouse struct {
	Enabled   bool   `yaml:"enabled"`
	Account   string `yaml:"account"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	Role      string `yaml:"role"`
	Warehouse string `yaml:"warehouse"`
	Database  string `yaml:"database"`
	Schema    string `yaml:"schema"`
}

// DefaultConfig returns the baseline configuration. The volume and
// rate constants mirror the reference SaaS funnel shape the suite was
// tuned against.
func DefaultConfig() *Config {
	return &Config{
		Generation: Generation{
			Seed:      42,
			StartDate: "2025-01-01",
			Days:      365,

			BaseDailyActiveUsers: 50000,
			BaseDailyNewUsers:    8000,
			BaseDailySessions:    75000,

			LeadShareOfTraffic:     0.10,
			LeadIdentificationRate: 0.25,
			LeadConversionRate:     0.05,

			AverageTransactionValue: 99.99,
			SessionCreationRate:     0.90,

			JitterMin: 0.9,
			JitterMax: 1.1,
		},
		Output: Output{
			Directory: "output",
		},
		Warehouse: Warehouse{
			Enabled: false,
		},
	}
}

// Start parses the configured start date.
func (g Generation) Start() (time.Time, error) {
	t, err := time.Parse("2006-01-02", g.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start_date %q: %w", g.StartDate, err)
	}
	return t.UTC(), nil
}

// Validate checks the generation config for values that would produce
// a nonsensical or non-reproducible run.
func (c *Config) Validate() error {
	g := c.Generation

	if g.Days <= 0 {
		return fmt.Errorf("generation.days must be positive, got %d", g.Days)
	}
	if _, err := g.Start(); err != nil {
		return err
	}
	if g.BaseDailyActiveUsers <= 0 || g.BaseDailyNewUsers <= 0 || g.BaseDailySessions <= 0 {
		return fmt.Errorf("generation base daily volumes must be positive")
	}
	if g.BaseDailyNewUsers > g.BaseDailyActiveUsers {
		return fmt.Errorf("generation.base_daily_new_users (%d) exceeds base_daily_active_users (%d)",
			g.BaseDailyNewUsers, g.BaseDailyActiveUsers)
	}
	for name, rate := range map[string]float64{
		"lead_share_of_traffic":    g.LeadShareOfTraffic,
		"lead_identification_rate": g.LeadIdentificationRate,
		"lead_conversion_rate":     g.LeadConversionRate,
	} {
		if rate < 0 || rate > 1 {
			return fmt.Errorf("generation.%s must be within [0,1], got %v", name, rate)
		}
	}
	if g.SessionCreationRate <= 0 || g.SessionCreationRate > 1 {
		return fmt.Errorf("generation.session_creation_rate must be within (0,1], got %v", g.SessionCreationRate)
	}
	if g.JitterMin <= 0 || g.JitterMax < g.JitterMin {
		return fmt.Errorf("generation jitter range [%v,%v] is invalid", g.JitterMin, g.JitterMax)
	}
	if g.AverageTransactionValue <= 0 {
		return fmt.Errorf("generation.average_transaction_value must be positive, got %v", g.AverageTransactionValue)
	}

	if c.Warehouse.Enabled {
		if c.Warehouse.Account == "" || c.Warehouse.Username == "" {
			return fmt.Errorf("warehouse.account and warehouse.username are required when the warehouse sink is enabled")
		}
		if c.Warehouse.Database == "" || c.Warehouse.Schema == "" {
			return fmt.Errorf("warehouse.database and warehouse.schema are required when the warehouse sink is enabled")
		}
	}

	return nil
}
