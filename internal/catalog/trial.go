package catalog

import (
	"math/rand"

	"funnelforge/internal/rng"
	"funnelforge/pkg/errors"
)

// TrialPath is the onboarding track assigned when a trial starts.
type TrialPath string

const (
	PathSelfService   TrialPath = "self_service"
	PathSalesAssisted TrialPath = "sales_assisted"
)

// SKUWeight pairs a product SKU with a selection weight.
type SKUWeight struct {
	SKU    string
	Weight float64
}

// TrialPathConfig describes one onboarding track: its assignment
// weight, conversion behavior and the product tiers it lands on.
type TrialPathConfig struct {
	Path                 TrialPath
	Weight               float64
	ConversionRateToPaid float64
	AvgConversionDay     int
	DemoScheduledRate    float64
	TierDistribution     []SKUWeight
}

// Trial window bounds: conversion draws happen between these days
// after trial start, and an unconverted trial expires at the
// expiration day.
const (
	TrialWindowStart   = 10
	TrialWindowEnd     = 16
	TrialExpirationDay = 14
	// Conversion probability is spread evenly across one week of the
	// window.
	TrialWindowSpreadDays = 7
)

var trialPaths = []TrialPathConfig{
	{
		Path:                 PathSelfService,
		Weight:               0.65,
		ConversionRateToPaid: 0.28,
		AvgConversionDay:     12,
		DemoScheduledRate:    0.0,
		TierDistribution: []SKUWeight{
			{SKU: "STARTER", Weight: 0.50},
			{SKU: "PRO", Weight: 0.35},
			{SKU: "BUSINESS", Weight: 0.12},
			{SKU: "ENTERPRISE", Weight: 0.03},
		},
	},
	{
		Path:                 PathSalesAssisted,
		Weight:               0.35,
		ConversionRateToPaid: 0.45,
		AvgConversionDay:     14,
		DemoScheduledRate:    0.85,
		TierDistribution: []SKUWeight{
			{SKU: "STARTER", Weight: 0.15},
			{SKU: "PRO", Weight: 0.40},
			{SKU: "BUSINESS", Weight: 0.30},
			{SKU: "ENTERPRISE", Weight: 0.15},
		},
	},
}

// TrialPathConfigFor looks up a trial path, failing fast on unknown
// paths.
func TrialPathConfigFor(path TrialPath) (TrialPathConfig, error) {
	for _, p := range trialPaths {
		if p.Path == path {
			return p, nil
		}
	}
	return TrialPathConfig{}, errors.UnknownKeyError("trial path", string(path))
}

// SelectTrialPath draws the onboarding track for a new trial.
func SelectTrialPath(r *rand.Rand) TrialPath {
	weights := make([]float64, len(trialPaths))
	for i, p := range trialPaths {
		weights[i] = p.Weight
	}
	return trialPaths[rng.WeightedIndex(r, weights)].Path
}

// SelectProductForPath draws a product from the trial path's tier
// distribution.
func SelectProductForPath(path TrialPath, r *rand.Rand) (Product, error) {
	cfg, err := TrialPathConfigFor(path)
	if err != nil {
		return Product{}, err
	}
	weights := make([]float64, len(cfg.TierDistribution))
	for i, tw := range cfg.TierDistribution {
		weights[i] = tw.Weight
	}
	idx := rng.WeightedIndex(r, weights)
	if idx < 0 {
		return Product{}, errors.New(errors.ErrCodeEmptyDistribution, "trial path has an empty tier distribution").
			WithContext("trial_path", string(path))
	}
	return ProductBySKU(cfg.TierDistribution[idx].SKU)
}
