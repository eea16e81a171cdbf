package catalog

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funnelforge/pkg/errors"
)

func TestTierForScore(t *testing.T) {
	tests := []struct {
		score int
		want  Tier
	}{
		{score: 0, want: TierBounce},
		{score: 1, want: TierBounce},
		{score: 2, want: TierLow},
		{score: 4, want: TierLow},
		{score: 5, want: TierMedium},
		{score: 15, want: TierMedium},
		{score: 16, want: TierHigh},
		{score: 25, want: TierHigh},
		{score: 26, want: TierVeryHigh},
		{score: 100, want: TierVeryHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierForScore(tt.score), "score %d", tt.score)
	}
}

func TestEventWeight(t *testing.T) {
	assert.Equal(t, 25, EventWeight("trial_started"))
	assert.Equal(t, -2, EventWeight("remove_from_cart"))
	// Unknown events score zero rather than erroring: the walk can
	// emit taxonomy entries the scorer does not care about.
	assert.Equal(t, 0, EventWeight("no_such_event"))
}

func TestFormByName(t *testing.T) {
	f, err := FormByName(FormTrialSignup)
	require.NoError(t, err)
	assert.Equal(t, "trial_started", f.EventName)
	assert.Equal(t, "Trial", f.LifecycleStage)

	_, err = FormByName("petition")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnknownKey, errors.GetErrorCode(err))
}

func TestFormWeightsCoverEveryForm(t *testing.T) {
	var total float64
	for _, f := range Forms {
		assert.Greater(t, f.DistributionWeight, 0.0, f.Name)
		total += f.DistributionWeight
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestProductBySKU(t *testing.T) {
	p, err := ProductBySKU("PRO")
	require.NoError(t, err)
	assert.Equal(t, "Professional", p.Name)
	assert.Equal(t, 9900, p.PriceMonthly)

	_, err = ProductBySKU("FREE")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnknownKey, errors.GetErrorCode(err))
}

func TestSelectProductByEngagement(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	for i := 0; i < 100; i++ {
		p := SelectProductByEngagement(TierVeryHigh, r)
		assert.Contains(t, []string{"ENTERPRISE", "BUSINESS"}, p.SKU)
	}
	for i := 0; i < 100; i++ {
		p := SelectProductByEngagement(TierHigh, r)
		assert.Contains(t, []string{"PRO", "BUSINESS"}, p.SKU)
	}
	// Bounces and low engagement always land on the cheapest tier.
	assert.Equal(t, "STARTER", SelectProductByEngagement(TierBounce, r).SKU)
	assert.Equal(t, "STARTER", SelectProductByEngagement(TierLow, r).SKU)
}

func TestTrialPathConfigFor(t *testing.T) {
	selfServe, err := TrialPathConfigFor(PathSelfService)
	require.NoError(t, err)
	assert.InDelta(t, 0.28, selfServe.ConversionRateToPaid, 1e-9)
	assert.Zero(t, selfServe.DemoScheduledRate)

	assisted, err := TrialPathConfigFor(PathSalesAssisted)
	require.NoError(t, err)
	assert.InDelta(t, 0.45, assisted.ConversionRateToPaid, 1e-9)
	assert.InDelta(t, 0.85, assisted.DemoScheduledRate, 1e-9)

	_, err = TrialPathConfigFor(TrialPath("white_glove"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnknownKey, errors.GetErrorCode(err))
}

func TestSelectProductForPath(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	cfg, err := TrialPathConfigFor(PathSalesAssisted)
	require.NoError(t, err)
	valid := make(map[string]bool)
	for _, tw := range cfg.TierDistribution {
		valid[tw.SKU] = true
	}

	for i := 0; i < 200; i++ {
		p, err := SelectProductForPath(PathSalesAssisted, r)
		require.NoError(t, err)
		assert.True(t, valid[p.SKU], "unexpected SKU %s", p.SKU)
	}

	_, err = SelectProductForPath(TrialPath("white_glove"), r)
	assert.Error(t, err)
}

func TestCampaignFor(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	t.Run("OrganicTrafficGetsNone", func(t *testing.T) {
		assert.Nil(t, CampaignFor("google", "organic", false, r))
		assert.Nil(t, CampaignFor("direct", "(none)", true, r))
	})

	t.Run("NewUsersNeverSeeRetargeting", func(t *testing.T) {
		for i := 0; i < 200; i++ {
			c := CampaignFor("google", "cpc", false, r)
			require.NotNil(t, c)
			assert.NotEqual(t, TargetReturningUsers, c.Targeting)
		}
	})

	t.Run("ReturningUsersCanSeeRetargeting", func(t *testing.T) {
		seen := false
		for i := 0; i < 500; i++ {
			c := CampaignFor("facebook", "cpc", true, r)
			require.NotNil(t, c)
			if c.Targeting == TargetReturningUsers {
				seen = true
			}
		}
		assert.True(t, seen, "retargeting campaign never drawn for returning users")
	})

	t.Run("UnknownPoolGetsNone", func(t *testing.T) {
		assert.Nil(t, CampaignFor("bing", "cpc", false, r))
	})
}

func TestSelectionHelpersStayInCatalog(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	for i := 0; i < 100; i++ {
		src := SelectTrafficSource(r)
		assert.NotEmpty(t, src.Source)

		geo := SelectGeo(r)
		assert.NotEmpty(t, geo.Country)

		rep := SelectSalesRep(r)
		assert.GreaterOrEqual(t, rep.ID, 1)
		assert.LessOrEqual(t, rep.ID, len(SalesReps))

		size := SelectCompanySize(r)
		assert.GreaterOrEqual(t, size.Multiplier, 1)
	}
}
