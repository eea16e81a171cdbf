package catalog

import (
	"math/rand"

	"funnelforge/internal/rng"
	"funnelforge/pkg/errors"
)

// FormType describes one web form a visitor can submit, the event it
// emits and the CRM treatment it triggers.
type FormType struct {
	Name                 string
	EventName            string
	LifecycleStage       string
	SalesPriority        string
	ConversionRateToPaid float64
	DistributionWeight   float64
}

// FormTrialSignup is the form name that starts a trial and assigns a
// trial path.
const FormTrialSignup = "trial_signup"

// Forms lists every form type with its fill-distribution weight.
var Forms = []FormType{
	{
		Name:               FormTrialSignup,
		EventName:          "trial_started",
		LifecycleStage:     "Trial",
		SalesPriority:      "high",
		DistributionWeight: 0.35,
	},
	{
		Name:                 "demo_request",
		EventName:            "demo_requested",
		LifecycleStage:       "Marketing Qualified Lead",
		SalesPriority:        "high",
		ConversionRateToPaid: 0.12,
		DistributionWeight:   0.25,
	},
	{
		Name:                 "pricing_inquiry",
		EventName:            "pricing_form_submit",
		LifecycleStage:       "Lead",
		SalesPriority:        "high",
		ConversionRateToPaid: 0.15,
		DistributionWeight:   0.15,
	},
	{
		Name:                 "contact_us",
		EventName:            "contact_form_submit",
		LifecycleStage:       "Lead",
		SalesPriority:        "medium",
		ConversionRateToPaid: 0.08,
		DistributionWeight:   0.15,
	},
	{
		Name:                 "whitepaper_download",
		EventName:            "content_download",
		LifecycleStage:       "Lead",
		SalesPriority:        "low",
		ConversionRateToPaid: 0.03,
		DistributionWeight:   0.07,
	},
	{
		Name:                 "newsletter_signup",
		EventName:            "newsletter_subscribe",
		LifecycleStage:       "Lead",
		SalesPriority:        "low",
		ConversionRateToPaid: 0.02,
		DistributionWeight:   0.03,
	},
}

// FormByName looks up a form type, failing fast on unknown names.
func FormByName(name string) (FormType, error) {
	for _, f := range Forms {
		if f.Name == name {
			return f, nil
		}
	}
	return FormType{}, errors.UnknownKeyError("form type", name)
}

// SelectForm draws a form type by distribution weight.
func SelectForm(r *rand.Rand) FormType {
	weights := make([]float64, len(Forms))
	for i, f := range Forms {
		weights[i] = f.DistributionWeight
	}
	return Forms[rng.WeightedIndex(r, weights)]
}

// FormFillProbability is the chance an anonymous user fills a form
// this session, indexed by the session's engagement tier.
var FormFillProbability = map[Tier]float64{
	TierBounce:   0.0,
	TierLow:      0.05,
	TierMedium:   0.20,
	TierHigh:     0.45,
	TierVeryHigh: 0.70,
}

// IdentifiedFormFillRate is the flat chance an already-identified user
// submits a secondary form.
const IdentifiedFormFillRate = 0.10
