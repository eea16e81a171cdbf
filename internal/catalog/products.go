package catalog

import (
	"math/rand"

	"funnelforge/pkg/errors"
)

// Product is one tier of the mock subscription catalog. Prices are in
// cents, annual carries roughly a 17% discount.
type Product struct {
	ID           string
	SKU          string
	Name         string
	PriceMonthly int
	PriceAnnual  int
	TrialDays    int
	Description  string
}

// Products is the full catalog, cheapest first.
var Products = []Product{
	{
		ID:           "prod_starter",
		SKU:          "STARTER",
		Name:         "Starter",
		PriceMonthly: 2900,
		PriceAnnual:  29000,
		TrialDays:    14,
		Description:  "Perfect for individuals and small teams",
	},
	{
		ID:           "prod_professional",
		SKU:          "PRO",
		Name:         "Professional",
		PriceMonthly: 9900,
		PriceAnnual:  99000,
		TrialDays:    14,
		Description:  "Advanced features for growing teams",
	},
	{
		ID:           "prod_business",
		SKU:          "BUSINESS",
		Name:         "Business",
		PriceMonthly: 19900,
		PriceAnnual:  199000,
		TrialDays:    14,
		Description:  "Comprehensive solution for established businesses",
	},
	{
		ID:           "prod_enterprise",
		SKU:          "ENTERPRISE",
		Name:         "Enterprise",
		PriceMonthly: 49900,
		PriceAnnual:  499000,
		TrialDays:    14,
		Description:  "Custom solutions with dedicated support",
	},
}

// ProductBySKU looks up a product, failing fast on unknown SKUs.
func ProductBySKU(sku string) (Product, error) {
	for _, p := range Products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return Product{}, errors.UnknownKeyError("product SKU", sku)
}

// SelectProductByEngagement picks the product tier a customer lands on
// from their engagement tier: the most engaged users skew to the top
// of the catalog.
func SelectProductByEngagement(tier Tier, r *rand.Rand) Product {
	switch tier {
	case TierVeryHigh:
		pool := []Product{mustProduct("ENTERPRISE"), mustProduct("BUSINESS")}
		return pool[r.Intn(len(pool))]
	case TierHigh, TierMedium:
		pool := []Product{mustProduct("PRO"), mustProduct("BUSINESS")}
		return pool[r.Intn(len(pool))]
	default:
		return Products[0]
	}
}

func mustProduct(sku string) Product {
	p, err := ProductBySKU(sku)
	if err != nil {
		panic(err)
	}
	return p
}
