// Package identity owns per-user state across the generation horizon:
// the anonymous-to-identified transition, lifecycle stage, engagement
// accumulation and the trial/conversion outcome.
package identity

import (
	"time"

	"funnelforge/internal/catalog"
	"funnelforge/pkg/errors"
)

// LifecycleStage is a user's position in the journey state machine.
type LifecycleStage int

const (
	StageAwareness LifecycleStage = iota
	StageEngaged
	StageTrial
	StageCustomer
	StageChurnRisk
	StageChurned
)

// String implements fmt.Stringer.
func (s LifecycleStage) String() string {
	switch s {
	case StageAwareness:
		return "awareness"
	case StageEngaged:
		return "engaged"
	case StageTrial:
		return "trial"
	case StageCustomer:
		return "customer"
	case StageChurnRisk:
		return "churn_risk"
	case StageChurned:
		return "churned"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further forward transitions are possible.
func (s LifecycleStage) Terminal() bool {
	return s == StageChurned
}

// UserState tracks one synthetic visitor across sessions. Created on
// first visit, mutated by every session, never deleted: the final
// state feeds the CRM/billing projection.
type UserState struct {
	DeviceID string
	UserID   string
	Email    string

	IsIdentified bool
	FormType     string

	SessionCount         int
	TotalEvents          int
	TotalEngagementScore int
	EngagementTier       catalog.Tier

	LifecycleStage LifecycleStage

	TrialPath       catalog.TrialPath
	TrialStartDate  time.Time
	ConvertedToPaid bool
	ConvertedDate   time.Time
	ProductSKU      string

	DemoRequestedDate time.Time
	ChurnedDate       time.Time

	FirstVisitDate      time.Time
	LastSessionDate     time.Time
	ScheduledReturnDate time.Time

	// First-touch attribution, set once on the first session.
	FirstSource string
	FirstMedium string
}

// NewUserState creates an anonymous visitor.
func NewUserState(deviceID string, firstVisit time.Time) *UserState {
	return &UserState{
		DeviceID:       deviceID,
		EngagementTier: catalog.TierBounce,
		LifecycleStage: StageAwareness,
		FirstVisitDate: firstVisit,
	}
}

// IsReturning reports whether the user has more than one session.
func (u *UserState) IsReturning() bool {
	return u.SessionCount > 1
}

// DaysSinceLastSession returns whole days since the previous session.
func (u *UserState) DaysSinceLastSession(now time.Time) int {
	if u.LastSessionDate.IsZero() {
		return 0
	}
	return int(now.Sub(u.LastSessionDate).Hours() / 24)
}

// DaysInTrial returns whole days since trial start, or -1 when no
// trial has started.
func (u *UserState) DaysInTrial(now time.Time) int {
	if u.TrialStartDate.IsZero() {
		return -1
	}
	return int(now.Sub(u.TrialStartDate).Hours() / 24)
}

// Identify mints the user's identity. The anonymous-to-identified flip
// happens exactly once and never reverts.
func (u *UserState) Identify(userID, email, formType string) error {
	if u.IsIdentified {
		return errors.New(errors.ErrCodeInvalidState, "user is already identified").
			WithContext("device_id", u.DeviceID)
	}
	u.UserID = userID
	u.Email = email
	u.FormType = formType
	u.IsIdentified = true
	return nil
}

// StartTrial assigns the trial path and start date, at most once.
func (u *UserState) StartTrial(path catalog.TrialPath, date time.Time) error {
	if !u.TrialStartDate.IsZero() {
		return errors.New(errors.ErrCodeInvalidState, "trial already started").
			WithContext("device_id", u.DeviceID)
	}
	if _, err := catalog.TrialPathConfigFor(path); err != nil {
		return err
	}
	u.TrialPath = path
	u.TrialStartDate = date
	if u.LifecycleStage < StageTrial {
		u.LifecycleStage = StageTrial
	}
	return nil
}

// Convert marks the user as a paying customer, at most once.
func (u *UserState) Convert(sku string, date time.Time) error {
	if u.ConvertedToPaid {
		return errors.New(errors.ErrCodeInvalidState, "user already converted").
			WithContext("device_id", u.DeviceID)
	}
	if _, err := catalog.ProductBySKU(sku); err != nil {
		return err
	}
	u.ConvertedToPaid = true
	u.ProductSKU = sku
	u.ConvertedDate = date
	u.LifecycleStage = StageCustomer
	return nil
}

// Advance applies the lifecycle transition for a single event. It is
// deliberately tolerant of browsing events, which move nothing.
func (u *UserState) Advance(eventType string, date time.Time) {
	if u.LifecycleStage.Terminal() {
		return
	}

	switch {
	case catalog.ChurnEvents[eventType]:
		// churn_risk is a one-event stopover: the cancel/fail event
		// itself marks the risk, a later one absorbs into churned.
		if u.LifecycleStage == StageChurnRisk {
			u.LifecycleStage = StageChurned
		} else {
			u.LifecycleStage = StageChurnRisk
		}
		if u.ChurnedDate.IsZero() {
			u.ChurnedDate = date
		}
	case catalog.ConversionEvents[eventType]:
		u.LifecycleStage = StageCustomer
	case catalog.TrialStartEvents[eventType]:
		if u.LifecycleStage < StageTrial {
			u.LifecycleStage = StageTrial
		}
	case catalog.InterestEvents[eventType]:
		if u.LifecycleStage == StageAwareness {
			u.LifecycleStage = StageEngaged
		}
		if eventType == "demo_requested" && u.DemoRequestedDate.IsZero() {
			u.DemoRequestedDate = date
		}
	}
}

// ScoreEvents sums engagement weights for a set of event types,
// floored at zero.
func ScoreEvents(eventTypes []string) int {
	score := 0
	for _, t := range eventTypes {
		score += catalog.EventWeight(t)
	}
	if score < 0 {
		return 0
	}
	return score
}
