// Package schedule decides whether and when a user comes back after a
// session. Return probability and gap both widen as engagement drops,
// which is what produces realistic multi-touch journeys for engaged
// users and one-and-done visits for bounces.
package schedule

import (
	"math/rand"
	"time"

	"funnelforge/internal/catalog"
	"funnelforge/internal/identity"
	"funnelforge/internal/rng"
	"funnelforge/pkg/errors"
)

// Policy is the return behavior for one engagement tier.
type Policy struct {
	Probability float64
	MinGapDays  int
	MaxGapDays  int
}

// policies maps engagement tier to return behavior. Highly engaged
// users return almost certainly and quickly; bounces rarely and late.
var policies = map[catalog.Tier]Policy{
	catalog.TierBounce:   {Probability: 0.08, MinGapDays: 14, MaxGapDays: 60},
	catalog.TierLow:      {Probability: 0.18, MinGapDays: 7, MaxGapDays: 30},
	catalog.TierMedium:   {Probability: 0.40, MinGapDays: 3, MaxGapDays: 14},
	catalog.TierHigh:     {Probability: 0.65, MinGapDays: 1, MaxGapDays: 7},
	catalog.TierVeryHigh: {Probability: 0.85, MinGapDays: 1, MaxGapDays: 3},
}

// PolicyFor looks up the return policy for a tier, failing fast on
// unknown tiers.
func PolicyFor(tier catalog.Tier) (Policy, error) {
	p, ok := policies[tier]
	if !ok {
		return Policy{}, errors.UnknownKeyError("engagement tier", string(tier))
	}
	return p, nil
}

// Scheduler plans return visits within a fixed generation horizon.
type Scheduler struct {
	start time.Time
	days  int
}

// NewScheduler creates a scheduler for the run window [start, start+days).
func NewScheduler(start time.Time, days int) *Scheduler {
	return &Scheduler{start: start, days: days}
}

// Horizon returns the first instant past the generation window.
func (s *Scheduler) Horizon() time.Time {
	return s.start.AddDate(0, 0, s.days)
}

// MaybeScheduleReturn rolls the tier's return policy after a session
// and stamps the user's next visit date. Returns true when a return
// was booked. Users in an active trial always come back inside the
// conversion window regardless of tier, so trials never silently
// strand. Returns landing past the horizon are dropped: the user
// simply never reappears within the run.
func (s *Scheduler) MaybeScheduleReturn(u *identity.UserState, sessionDate time.Time, r *rand.Rand) (bool, error) {
	u.ScheduledReturnDate = time.Time{}

	if u.LifecycleStage.Terminal() {
		return false, nil
	}

	if u.LifecycleStage == identity.StageTrial && !u.ConvertedToPaid {
		gap := rng.IntBetween(r, 1, 4)
		return s.book(u, sessionDate.AddDate(0, 0, gap)), nil
	}

	policy, err := PolicyFor(u.EngagementTier)
	if err != nil {
		return false, err
	}
	if r.Float64() >= policy.Probability {
		return false, nil
	}

	gap := rng.IntBetween(r, policy.MinGapDays, policy.MaxGapDays)
	return s.book(u, sessionDate.AddDate(0, 0, gap)), nil
}

func (s *Scheduler) book(u *identity.UserState, date time.Time) bool {
	if !date.Before(s.Horizon()) {
		return false
	}
	u.ScheduledReturnDate = date
	return true
}
