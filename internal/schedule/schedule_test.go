package schedule

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funnelforge/internal/catalog"
	"funnelforge/internal/identity"
	"funnelforge/pkg/errors"
)

var runStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// constSource pins every draw: Float64() == v/2^63, Intn(n) == v%n for
// small n.
type constSource struct{ v int64 }

func (s constSource) Int63() int64 { return s.v }
func (s constSource) Seed(int64)   {}

// alwaysRoll draws 0.0, winning any probability check; neverRoll draws
// 0.5, losing the low-tier rolls these tests lean on.
func alwaysRoll() *rand.Rand { return rand.New(constSource{v: 0}) }
func neverRoll() *rand.Rand  { return rand.New(constSource{v: 1 << 62}) }

func TestPolicyFor(t *testing.T) {
	for _, tier := range catalog.Tiers {
		p, err := PolicyFor(tier)
		require.NoError(t, err, string(tier))
		assert.Greater(t, p.Probability, 0.0)
		assert.LessOrEqual(t, p.MinGapDays, p.MaxGapDays)
	}

	// Probability and gap both tighten as engagement rises.
	bounce, _ := PolicyFor(catalog.TierBounce)
	high, _ := PolicyFor(catalog.TierVeryHigh)
	assert.Less(t, bounce.Probability, high.Probability)
	assert.Greater(t, bounce.MinGapDays, high.MinGapDays)

	_, err := PolicyFor(catalog.Tier("hyper_engaged"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnknownKey, errors.GetErrorCode(err))
}

func TestHorizon(t *testing.T) {
	s := NewScheduler(runStart, 30)
	assert.Equal(t, runStart.AddDate(0, 0, 30), s.Horizon())
}

func TestMaybeScheduleReturnRollsTierPolicy(t *testing.T) {
	s := NewScheduler(runStart, 90)

	t.Run("WinningRollBooksWithinGap", func(t *testing.T) {
		u := identity.NewUserState("dev-1", runStart)
		u.EngagementTier = catalog.TierVeryHigh

		booked, err := s.MaybeScheduleReturn(u, runStart, alwaysRoll())
		require.NoError(t, err)
		assert.True(t, booked)

		policy, _ := PolicyFor(catalog.TierVeryHigh)
		gap := int(u.ScheduledReturnDate.Sub(runStart).Hours() / 24)
		assert.GreaterOrEqual(t, gap, policy.MinGapDays)
		assert.LessOrEqual(t, gap, policy.MaxGapDays)
	})

	t.Run("LosingRollBooksNothing", func(t *testing.T) {
		u := identity.NewUserState("dev-1", runStart)
		u.EngagementTier = catalog.TierBounce // 8% return chance, draw is 0.5

		booked, err := s.MaybeScheduleReturn(u, runStart, neverRoll())
		require.NoError(t, err)
		assert.False(t, booked)
		assert.True(t, u.ScheduledReturnDate.IsZero())
	})
}

func TestMaybeScheduleReturnClearsStaleDate(t *testing.T) {
	s := NewScheduler(runStart, 90)
	u := identity.NewUserState("dev-1", runStart)
	u.EngagementTier = catalog.TierBounce
	u.ScheduledReturnDate = runStart.AddDate(0, 0, 5)

	booked, err := s.MaybeScheduleReturn(u, runStart, neverRoll())
	require.NoError(t, err)
	assert.False(t, booked)
	assert.True(t, u.ScheduledReturnDate.IsZero(), "old booking must not survive a losing roll")
}

func TestActiveTrialAlwaysRebooks(t *testing.T) {
	s := NewScheduler(runStart, 90)
	u := identity.NewUserState("dev-1", runStart)
	u.EngagementTier = catalog.TierBounce
	require.NoError(t, u.StartTrial(catalog.PathSelfService, runStart))

	// The draw would lose the bounce-tier roll, but trial users skip it.
	booked, err := s.MaybeScheduleReturn(u, runStart, neverRoll())
	require.NoError(t, err)
	assert.True(t, booked)

	gap := int(u.ScheduledReturnDate.Sub(runStart).Hours() / 24)
	assert.GreaterOrEqual(t, gap, 1)
	assert.LessOrEqual(t, gap, 4)
}

func TestConvertedTrialFollowsTierPolicy(t *testing.T) {
	s := NewScheduler(runStart, 90)
	u := identity.NewUserState("dev-1", runStart)
	u.EngagementTier = catalog.TierBounce
	require.NoError(t, u.StartTrial(catalog.PathSelfService, runStart))
	require.NoError(t, u.Convert("STARTER", runStart.AddDate(0, 0, 12)))

	booked, err := s.MaybeScheduleReturn(u, runStart.AddDate(0, 0, 12), neverRoll())
	require.NoError(t, err)
	assert.False(t, booked, "customers are back on the ordinary tier roll")
}

func TestChurnedUsersNeverReturn(t *testing.T) {
	s := NewScheduler(runStart, 90)
	u := identity.NewUserState("dev-1", runStart)
	u.EngagementTier = catalog.TierVeryHigh
	u.LifecycleStage = identity.StageChurned

	booked, err := s.MaybeScheduleReturn(u, runStart, alwaysRoll())
	require.NoError(t, err)
	assert.False(t, booked)
}

func TestReturnsPastHorizonAreDropped(t *testing.T) {
	s := NewScheduler(runStart, 1)
	u := identity.NewUserState("dev-1", runStart)
	u.EngagementTier = catalog.TierVeryHigh

	// Minimum gap is 1 day, which already lands on the horizon.
	booked, err := s.MaybeScheduleReturn(u, runStart, alwaysRoll())
	require.NoError(t, err)
	assert.False(t, booked)
	assert.True(t, u.ScheduledReturnDate.IsZero())
}

func TestUnknownTierFailsFast(t *testing.T) {
	s := NewScheduler(runStart, 90)
	u := identity.NewUserState("dev-1", runStart)
	u.EngagementTier = catalog.Tier("hyper_engaged")

	_, err := s.MaybeScheduleReturn(u, runStart, alwaysRoll())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnknownKey, errors.GetErrorCode(err))
}
