// Package catalog holds the static tables driving the simulation: the
// event taxonomy, engagement scoring, form types, trial paths, the
// product catalog and traffic attribution pools. Lookups fail fast on
// unknown keys so configuration bugs surface instead of defaulting.
package catalog

import (
	"math/rand"

	"funnelforge/internal/rng"
)

// Tier buckets a user's interaction intensity.
type Tier string

const (
	TierBounce   Tier = "bounce"
	TierLow      Tier = "low_engagement"
	TierMedium   Tier = "medium_engagement"
	TierHigh     Tier = "high_engagement"
	TierVeryHigh Tier = "very_high_engagement"
)

// Tiers lists all tiers from least to most engaged.
var Tiers = []Tier{TierBounce, TierLow, TierMedium, TierHigh, TierVeryHigh}

// TierForScore buckets an engagement score.
func TierForScore(score int) Tier {
	switch {
	case score <= 1:
		return TierBounce
	case score <= 4:
		return TierLow
	case score <= 15:
		return TierMedium
	case score <= 25:
		return TierHigh
	default:
		return TierVeryHigh
	}
}

// EngagementWeights scores a single event. Events absent from the
// table score zero.
var EngagementWeights = map[string]int{
	"page_view":             1,
	"button_click":          1,
	"search":                2,
	"pricing_page_view":     8,
	"features_page_view":    5,
	"add_to_cart":           12,
	"remove_from_cart":      -2,
	"checkout_start":        15,
	"whitepaper_download":   12,
	"demo_requested":        20,
	"trial_started":         25,
	"contact_sales_clicked": 18,
	"pricing_form_submit":   15,
	"contact_form_submit":   10,
	"newsletter_subscribe":  5,
}

// EventWeight returns the engagement weight for an event type.
func EventWeight(eventType string) int {
	return EngagementWeights[eventType]
}

// WeightedEvent pairs a browsing event type with its draw weight.
type WeightedEvent struct {
	Type   string
	Weight float64
}

// BaseEvents is the browsing taxonomy a session random-walks over.
var BaseEvents = []WeightedEvent{
	{Type: "page_view", Weight: 0.60},
	{Type: "button_click", Weight: 0.15},
	{Type: "search", Weight: 0.10},
	{Type: "pricing_page_view", Weight: 0.10},
	{Type: "features_page_view", Weight: 0.05},
}

// SelectBaseEvent draws a browsing event type.
func SelectBaseEvent(r *rand.Rand) string {
	weights := make([]float64, len(BaseEvents))
	for i, e := range BaseEvents {
		weights[i] = e.Weight
	}
	return BaseEvents[rng.WeightedIndex(r, weights)].Type
}

// InterestEvents are the consideration-tier events that move a user
// from awareness to engaged.
var InterestEvents = map[string]bool{
	"pricing_page_view":     true,
	"demo_requested":        true,
	"contact_form_submit":   true,
	"contact_sales_clicked": true,
	"pricing_form_submit":   true,
	"whitepaper_download":   true,
	"checkout_start":        true,
	"add_to_cart":           true,
}

// TrialStartEvents move a user into the trial stage and force
// identification.
var TrialStartEvents = map[string]bool{
	"trial_started":   true,
	"account_created": true,
}

// ConversionEvents move a trial user to customer.
var ConversionEvents = map[string]bool{
	"trial_converted":      true,
	"payment_completed":    true,
	"subscription_created": true,
}

// ChurnEvents push a user onto the churn path.
var ChurnEvents = map[string]bool{
	"subscription_cancelled": true,
	"payment_failed":         true,
}
