// Package session turns one user visit into an ordered event sequence:
// a weighted random walk over the browsing taxonomy, an optional form
// fill that can mint the user's identity, and the trial conversion or
// expiry draw for users inside the trial window. Each session mutates
// the user's state through the identity package's transitions.
package session

import (
	"math/rand"
	"time"

	"funnelforge/internal/catalog"
	"funnelforge/internal/identity"
	"funnelforge/internal/rng"
)

// Step is one generated event inside a session, already timestamped.
type Step struct {
	Type string
	At   time.Time

	FormType      string
	TrialPath     string
	ProductSKU    string
	ConversionDay int
}

// Session is the outcome of one visit: the event walk plus the
// attribution and scoring context the output layer needs.
type Session struct {
	ID    int64
	Start time.Time
	Steps []Step

	Source   catalog.TrafficSource
	Campaign *catalog.Campaign

	Score     int
	Tier      catalog.Tier
	FormFill  bool
	Converted bool
	Churned   bool
}

// churnPerSessionRate is the chance an existing customer cancels in
// any one later session.
const churnPerSessionRate = 0.02

// firstSessionVolumes is the discrete page-volume mix for first-time
// visitors, dominated by short exploratory visits.
var firstSessionVolumes = []struct {
	Pages  int
	Weight float64
}{
	{Pages: 1, Weight: 0.08},
	{Pages: 3, Weight: 0.25},
	{Pages: 7, Weight: 0.40},
	{Pages: 12, Weight: 0.20},
	{Pages: 15, Weight: 0.07},
}

// Returning visitors browse with purpose: a wider uniform range.
const (
	returningMinEvents = 3
	returningMaxEvents = 12
)

// hourWeights shapes session start times towards business hours.
var hourWeights = []float64{
	1, 1, 1, 1, 1, 2, 3, 5, 8, 10, 10, 9, // 00-11
	8, 9, 10, 10, 9, 8, 6, 5, 4, 3, 2, 1, // 12-23
}

// Generator produces sessions. Stateless apart from the stream
// factory; all per-user state lives in identity.UserState.
type Generator struct {
	rngs rng.Factory
}

// NewGenerator creates a session generator for a run.
func NewGenerator(rngs rng.Factory) *Generator {
	return &Generator{rngs: rngs}
}

// PersonaFor resolves the stable synthetic person behind a device.
func (g *Generator) PersonaFor(deviceID string) Persona {
	return personaFor(g.rngs, deviceID)
}

// Generate runs one session for a user on a day, mutating the user's
// state (session count, engagement, lifecycle) as a side effect.
func (g *Generator) Generate(u *identity.UserState, day time.Time) (*Session, error) {
	r := g.rngs.ForSession(u.DeviceID, u.SessionCount)

	start := sessionStart(day, r)
	s := &Session{
		ID:    start.UnixMilli(),
		Start: start,
	}

	s.Source = catalog.SelectTrafficSource(r)
	if u.FirstSource == "" {
		u.FirstSource = s.Source.Source
		u.FirstMedium = s.Source.Medium
	}
	s.Campaign = catalog.CampaignFor(s.Source.Source, s.Source.Medium, u.SessionCount > 0, r)

	wasCustomer := u.ConvertedToPaid

	clock := newStepClock(start, r)
	var types []string

	// 1. Browsing walk.
	volume := g.pageVolume(u, r)
	for i := 0; i < volume; i++ {
		t := catalog.SelectBaseEvent(r)
		s.Steps = append(s.Steps, Step{Type: t, At: clock.next()})
		types = append(types, t)
	}

	// 2. Form fill, driven by the walk's own engagement.
	walkTier := catalog.TierForScore(identity.ScoreEvents(types))
	if err := g.maybeFillForm(u, s, walkTier, clock, r, &types); err != nil {
		return nil, err
	}

	// 3. Trial conversion or expiry for users inside the window.
	if err := g.maybeResolveTrial(u, s, day, clock, r, &types); err != nil {
		return nil, err
	}

	// 4. Customer churn draw, only for conversions from earlier
	// sessions.
	if wasCustomer && r.Float64() < churnPerSessionRate {
		s.Steps = append(s.Steps, Step{Type: "payment_failed", At: clock.next()})
		s.Steps = append(s.Steps, Step{Type: "subscription_cancelled", At: clock.next()})
		types = append(types, "payment_failed", "subscription_cancelled")
		s.Churned = true
	}

	// 5. Score the full event set and write back.
	s.Score = identity.ScoreEvents(types)
	s.Tier = catalog.TierForScore(s.Score)

	u.EngagementTier = s.Tier
	u.TotalEngagementScore += s.Score
	u.TotalEvents += len(s.Steps)
	u.SessionCount++
	u.LastSessionDate = day

	for _, st := range s.Steps {
		u.Advance(st.Type, day)
	}

	return s, nil
}

func (g *Generator) pageVolume(u *identity.UserState, r *rand.Rand) int {
	if u.SessionCount > 0 {
		return rng.IntBetween(r, returningMinEvents, returningMaxEvents)
	}
	weights := make([]float64, len(firstSessionVolumes))
	for i, v := range firstSessionVolumes {
		weights[i] = v.Weight
	}
	return firstSessionVolumes[rng.WeightedIndex(r, weights)].Pages
}

func (g *Generator) maybeFillForm(u *identity.UserState, s *Session, walkTier catalog.Tier, clock *stepClock, r *rand.Rand, types *[]string) error {
	p := catalog.FormFillProbability[walkTier]
	if u.IsIdentified {
		p = catalog.IdentifiedFormFillRate
	}
	if r.Float64() >= p {
		return nil
	}

	form := catalog.SelectForm(r)
	s.FormFill = true

	if !u.IsIdentified {
		persona := g.PersonaFor(u.DeviceID)
		if err := u.Identify(persona.UserID, persona.Email, form.Name); err != nil {
			return err
		}
	}

	step := Step{Type: form.EventName, At: clock.next(), FormType: form.Name}

	if form.Name == catalog.FormTrialSignup && u.TrialStartDate.IsZero() {
		path := catalog.SelectTrialPath(r)
		if err := u.StartTrial(path, s.Start); err != nil {
			return err
		}
		step.TrialPath = string(path)

		s.Steps = append(s.Steps, step)
		*types = append(*types, step.Type)

		cfg, err := catalog.TrialPathConfigFor(path)
		if err != nil {
			return err
		}
		if r.Float64() < cfg.DemoScheduledRate {
			s.Steps = append(s.Steps, Step{Type: "demo_requested", At: clock.next(), TrialPath: string(path)})
			*types = append(*types, "demo_requested")
		}
		return nil
	}

	s.Steps = append(s.Steps, step)
	*types = append(*types, step.Type)
	return nil
}

func (g *Generator) maybeResolveTrial(u *identity.UserState, s *Session, day time.Time, clock *stepClock, r *rand.Rand, types *[]string) error {
	if u.TrialStartDate.IsZero() || u.ConvertedToPaid {
		return nil
	}
	days := u.DaysInTrial(day)
	if days < catalog.TrialWindowStart || days > catalog.TrialWindowEnd {
		return nil
	}

	cfg, err := catalog.TrialPathConfigFor(u.TrialPath)
	if err != nil {
		return err
	}

	if r.Float64() < cfg.ConversionRateToPaid/catalog.TrialWindowSpreadDays {
		product, err := catalog.SelectProductForPath(u.TrialPath, r)
		if err != nil {
			return err
		}
		if err := u.Convert(product.SKU, day); err != nil {
			return err
		}
		s.Steps = append(s.Steps, Step{
			Type:          "trial_converted",
			At:            clock.next(),
			TrialPath:     string(u.TrialPath),
			ProductSKU:    product.SKU,
			ConversionDay: days,
		})
		*types = append(*types, "trial_converted")
		s.Converted = true
		return nil
	}

	if days >= catalog.TrialExpirationDay {
		s.Steps = append(s.Steps, Step{Type: "trial_expired", At: clock.next(), TrialPath: string(u.TrialPath)})
		*types = append(*types, "trial_expired")
	}
	return nil
}

// sessionStart places the visit at a business-hours-weighted time of
// day.
func sessionStart(day time.Time, r *rand.Rand) time.Time {
	hour := rng.WeightedIndex(r, hourWeights)
	minute := r.Intn(60)
	second := r.Intn(60)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, second, 0, time.UTC)
}

// stepClock spaces events 5 to 180 seconds apart.
type stepClock struct {
	now time.Time
	r   *rand.Rand
}

func newStepClock(start time.Time, r *rand.Rand) *stepClock {
	return &stepClock{now: start, r: r}
}

func (c *stepClock) next() time.Time {
	at := c.now
	c.now = c.now.Add(time.Duration(rng.IntBetween(c.r, 5, 180)) * time.Second)
	return at
}
