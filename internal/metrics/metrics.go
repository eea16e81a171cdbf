// Package metrics is the shared daily volume model. Every generator
// that needs "day d new users" calls the same model so cross-source
// totals reconcile before per-source noise.
package metrics

import (
	"math"

	"funnelforge/internal/rng"
	"funnelforge/pkg/models"
)

// Daily is the aligned volume tuple for one day index.
type Daily struct {
	ActiveUsers  int
	NewUsers     int
	Sessions     int
	Transactions int
	Revenue      float64

	LeadUsers       int
	IdentifiedLeads int
	PayingLeads     int
}

// Conversion funnel rates used to derive the daily transaction count
// from session volume. Leads convert at LeadConversionRate /
// LeadIdentificationRate once identified.
var (
	anonymousRates = funnelRates{addToCart: 0.20, checkoutStart: 0.60, purchase: 0.15}
	leadRates      = funnelRates{addToCart: 0.35, checkoutStart: 0.75}
)

type funnelRates struct {
	addToCart     float64
	checkoutStart float64
	purchase      float64
}

// Model computes daily volumes as a pure function of (seed, day). The
// jitter draw comes from a per-day derived stream, so the value for a
// day never depends on how many other draws happened elsewhere in the
// run.
type Model struct {
	cfg  models.Generation
	rngs rng.Factory

	baseTransactions float64
}

// NewModel builds the volume model for a run.
func NewModel(cfg models.Generation, rngs rng.Factory) *Model {
	m := &Model{cfg: cfg, rngs: rngs}

	lead := leadRates
	lead.purchase = cfg.LeadConversionRate / cfg.LeadIdentificationRate

	sessions := float64(cfg.BaseDailySessions)
	anonShare := sessions * (1 - cfg.LeadShareOfTraffic)
	leadShare := sessions * cfg.LeadShareOfTraffic

	m.baseTransactions = anonShare*anonymousRates.addToCart*anonymousRates.checkoutStart*anonymousRates.purchase +
		leadShare*lead.addToCart*lead.checkoutStart*lead.purchase

	return m
}

// Multiplier combines the weekend dampener, month-end spike, quarterly
// growth and a uniform jitter for one day index.
func (m *Model) Multiplier(day int) float64 {
	weekly := 1.0
	if dow := day % 7; dow == 5 || dow == 6 {
		weekly = 0.7
	}

	monthly := 1.0
	if day%30 >= 28 {
		monthly = 1.2
	}

	growth := 1.0 + float64(day/90)*0.05

	jitter := rng.FloatBetween(m.rngs.ForDay(day), m.cfg.JitterMin, m.cfg.JitterMax)

	return weekly * monthly * growth * jitter
}

// Daily returns the aligned volume tuple for a day index.
func (m *Model) Daily(day int) Daily {
	mult := m.Multiplier(day)

	active := int(float64(m.cfg.BaseDailyActiveUsers) * mult)
	newUsers := int(float64(m.cfg.BaseDailyNewUsers) * mult)
	transactions := int(m.baseTransactions * mult)

	return Daily{
		ActiveUsers:  active,
		NewUsers:     newUsers,
		Sessions:     int(float64(m.cfg.BaseDailySessions) * mult),
		Transactions: transactions,
		Revenue:      round2(float64(transactions) * m.cfg.AverageTransactionValue),

		LeadUsers:       int(float64(active) * m.cfg.LeadShareOfTraffic),
		IdentifiedLeads: int(float64(newUsers) * m.cfg.LeadShareOfTraffic * m.cfg.LeadIdentificationRate),
		PayingLeads:     int(float64(newUsers) * m.cfg.LeadShareOfTraffic * m.cfg.LeadConversionRate),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
