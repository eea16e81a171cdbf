package catalog

import (
	"math/rand"

	"funnelforge/internal/rng"
)

// TrafficSource is one acquisition channel with its traffic share.
type TrafficSource struct {
	Source    string
	Medium    string
	Weight    float64
	LeadHeavy bool
}

// TrafficSources is the channel mix sessions are attributed to.
var TrafficSources = []TrafficSource{
	{Source: "google", Medium: "cpc", Weight: 0.35, LeadHeavy: true},
	{Source: "facebook", Medium: "cpc", Weight: 0.20, LeadHeavy: true},
	{Source: "google", Medium: "organic", Weight: 0.25},
	{Source: "direct", Medium: "(none)", Weight: 0.15},
	{Source: "email", Medium: "email", Weight: 0.05, LeadHeavy: true},
}

// SelectTrafficSource draws a channel for a session.
func SelectTrafficSource(r *rand.Rand) TrafficSource {
	weights := make([]float64, len(TrafficSources))
	for i, s := range TrafficSources {
		weights[i] = s.Weight
	}
	return TrafficSources[rng.WeightedIndex(r, weights)]
}

// Campaign targeting classes.
const (
	TargetNewUsers       = "new_users"
	TargetReturningUsers = "returning_users"
	TargetAllUsers       = "all_users"
)

// Campaign is one paid campaign in a channel's pool.
type Campaign struct {
	ID        int
	Name      string
	Type      string
	Targeting string
	Weight    float64
}

// campaigns pools paid campaigns per "source_medium" key.
var campaigns = map[string][]Campaign{
	"google_cpc": {
		{ID: 1001, Name: "acq-trial-signup", Type: "ACQUISITION", Targeting: TargetNewUsers, Weight: 0.25},
		{ID: 1002, Name: "acq-premium-launch", Type: "ACQUISITION", Targeting: TargetNewUsers, Weight: 0.20},
		{ID: 1004, Name: "retarget-cart-abandon", Type: "REENGAGEMENT", Targeting: TargetReturningUsers, Weight: 0.20},
		{ID: 1007, Name: "acq-trial-conversion", Type: "ACQUISITION", Targeting: TargetNewUsers, Weight: 0.25},
		{ID: 1008, Name: "reeng-lapsed-users", Type: "REENGAGEMENT", Targeting: TargetReturningUsers, Weight: 0.10},
	},
	"facebook_cpc": {
		{ID: 2001, Name: "acq-trial-signup", Type: "ACQUISITION", Targeting: TargetNewUsers, Weight: 0.30},
		{ID: 2003, Name: "brand-awareness-q4", Type: "BRAND", Targeting: TargetAllUsers, Weight: 0.20},
		{ID: 2005, Name: "promo-holiday-2024", Type: "PROMOTION", Targeting: TargetAllUsers, Weight: 0.25},
		{ID: 2006, Name: "leadgen-whitepaper", Type: "LEADGEN", Targeting: TargetNewUsers, Weight: 0.15},
		{ID: 2008, Name: "reeng-lapsed-users", Type: "REENGAGEMENT", Targeting: TargetReturningUsers, Weight: 0.10},
	},
}

// CampaignFor attributes a paid session to a campaign. Non-cpc traffic
// gets none. New users only see acquisition-class targeting; returning
// users can also land on re-engagement campaigns.
func CampaignFor(source, medium string, returning bool, r *rand.Rand) *Campaign {
	if medium != "cpc" {
		return nil
	}

	pool := campaigns[source+"_"+medium]
	available := make([]Campaign, 0, len(pool))
	for _, c := range pool {
		if !returning && c.Targeting == TargetReturningUsers {
			continue
		}
		available = append(available, c)
	}
	if len(available) == 0 {
		return nil
	}

	weights := make([]float64, len(available))
	for i, c := range available {
		weights[i] = c.Weight
	}
	chosen := available[rng.WeightedIndex(r, weights)]
	return &chosen
}

// Device is a client device profile stamped onto events.
type Device struct {
	Type    string
	Family  string
	Carrier string
	OS      string
	Version string
}

// Devices is the device mix.
var Devices = []Device{
	{Type: "Android", Family: "Samsung Galaxy", Carrier: "Verizon", OS: "Android", Version: "13.0"},
	{Type: "Android", Family: "Google Pixel", Carrier: "T-Mobile", OS: "Android", Version: "14.0"},
	{Type: "iOS", Family: "iPhone", Carrier: "AT&T", OS: "iOS", Version: "17.2"},
	{Type: "iOS", Family: "iPad", Carrier: "Verizon", OS: "iOS", Version: "17.1"},
	{Type: "Web", Family: "Chrome", OS: "Windows", Version: "11"},
	{Type: "Web", Family: "Firefox", OS: "macOS", Version: "14.2"},
}

// Geo is a country with its traffic share.
type Geo struct {
	Country string
	Weight  float64
}

// GeoDistribution is the geographic traffic mix.
var GeoDistribution = []Geo{
	{Country: "United States", Weight: 0.45},
	{Country: "Canada", Weight: 0.15},
	{Country: "United Kingdom", Weight: 0.12},
	{Country: "Germany", Weight: 0.10},
	{Country: "Australia", Weight: 0.08},
	{Country: "France", Weight: 0.06},
	{Country: "Japan", Weight: 0.04},
}

// SelectGeo draws a country for a session.
func SelectGeo(r *rand.Rand) Geo {
	weights := make([]float64, len(GeoDistribution))
	for i, g := range GeoDistribution {
		weights[i] = g.Weight
	}
	return GeoDistribution[rng.WeightedIndex(r, weights)]
}

// SalesRep is one member of the mock sales team CRM records are
// assigned to.
type SalesRep struct {
	ID   int
	Name string
}

// SalesReps is the mock sales team.
var SalesReps = []SalesRep{
	{ID: 1, Name: "Sarah Johnson"},
	{ID: 2, Name: "Mike Chen"},
	{ID: 3, Name: "Emily Rodriguez"},
	{ID: 4, Name: "David Kim"},
	{ID: 5, Name: "Jessica Taylor"},
}

// SelectSalesRep draws a deal/lead owner.
func SelectSalesRep(r *rand.Rand) SalesRep {
	return SalesReps[r.Intn(len(SalesReps))]
}

// Industries assigned to generated organizations.
var Industries = []string{
	"Technology", "Software", "SaaS", "E-commerce", "Finance",
	"Healthcare", "Education", "Marketing", "Consulting", "Manufacturing",
	"Retail", "Real Estate", "Media", "Telecommunications", "Transportation",
}

// CompanySize pairs an employee bracket with its share and a deal
// value multiplier.
type CompanySize struct {
	Bracket    string
	Weight     float64
	Multiplier int
}

// CompanySizes is the organization size mix.
var CompanySizes = []CompanySize{
	{Bracket: "1-10", Weight: 0.40, Multiplier: 1},
	{Bracket: "11-50", Weight: 0.30, Multiplier: 2},
	{Bracket: "51-200", Weight: 0.15, Multiplier: 3},
	{Bracket: "201-500", Weight: 0.08, Multiplier: 5},
	{Bracket: "501-1000", Weight: 0.04, Multiplier: 7},
	{Bracket: "1000+", Weight: 0.03, Multiplier: 10},
}

// SelectCompanySize draws an organization size bracket.
func SelectCompanySize(r *rand.Rand) CompanySize {
	weights := make([]float64, len(CompanySizes))
	for i, s := range CompanySizes {
		weights[i] = s.Weight
	}
	return CompanySizes[rng.WeightedIndex(r, weights)]
}
