package project

import (
	"math/rand"
	"time"

	"funnelforge/internal/catalog"
	"funnelforge/internal/identity"
	"funnelforge/internal/rng"
	"funnelforge/pkg/models"
)

// JourneyType is the sales motion a won deal went through, chosen from
// the user's funnel history. Each motion expands into a different
// activity timeline.
type JourneyType string

const (
	JourneyEnterprise   JourneyType = "enterprise"
	JourneySalesLed     JourneyType = "sales_led"
	JourneyHighTouchPLG JourneyType = "high_touch_plg"
	JourneyProductLed   JourneyType = "product_led"
)

// enterpriseARRFloor and enterpriseCycleDays push big or slow deals
// into the enterprise motion regardless of how they entered the
// funnel.
const (
	enterpriseARRFloor  = 10000.0
	enterpriseCycleDays = 60
)

// activityStep is one template entry in a journey's activity sequence.
// A nil offset range means "on the won date".
type activityStep struct {
	TypeID   int
	Type     string
	Subject  string
	Duration string
	Note     string

	MinOffset int
	MaxOffset int
	OnWonDate bool
}

var salesLedSequence = []activityStep{
	{TypeID: 3, Type: "Email", Subject: "Demo request received", Duration: "00:05:00", Note: "Initial response to demo request, scheduling call", MinOffset: 0, MaxOffset: 1},
	{TypeID: 1, Type: "Call", Subject: "Discovery call", Duration: "00:45:00", Note: "Understanding business requirements, pain points, and use cases", MinOffset: 1, MaxOffset: 3},
	{TypeID: 5, Type: "Demo", Subject: "Product demonstration", Duration: "01:00:00", Note: "Live product demo tailored to their specific use case", MinOffset: 3, MaxOffset: 7},
	{TypeID: 3, Type: "Email", Subject: "Demo follow-up and resources", Duration: "00:15:00", Note: "Sent recording, case studies, and ROI calculator", MinOffset: 3, MaxOffset: 8},
	{TypeID: 2, Type: "Meeting", Subject: "Technical deep-dive with team", Duration: "01:30:00", Note: "Engineering team review - integration requirements and architecture discussion", MinOffset: 7, MaxOffset: 14},
	{TypeID: 3, Type: "Email", Subject: "Proposal and pricing sent", Duration: "00:20:00", Note: "Custom proposal with tiered pricing options and implementation plan", MinOffset: 10, MaxOffset: 18},
	{TypeID: 1, Type: "Call", Subject: "Pricing discussion", Duration: "00:45:00", Note: "Reviewed proposal, addressed budget questions, discussed contract terms", MinOffset: 14, MaxOffset: 22},
	{TypeID: 2, Type: "Meeting", Subject: "Security and compliance review", Duration: "01:00:00", Note: "Security team review - SOC2, GDPR compliance, data handling", MinOffset: 18, MaxOffset: 28},
	{TypeID: 4, Type: "Task", Subject: "Contract sent for legal review", Duration: "00:30:00", Note: "MSA and order form sent to legal team for approval", MinOffset: 21, MaxOffset: 30},
	{TypeID: 1, Type: "Call", Subject: "Final negotiation and close", Duration: "00:30:00", Note: "Addressed final concerns, confirmed start date, closed deal!", OnWonDate: true},
}

var productLedSequence = []activityStep{
	{TypeID: 3, Type: "Email", Subject: "Welcome to your trial", Duration: "00:05:00", Note: "Automated welcome email with onboarding resources", MinOffset: 0, MaxOffset: 1},
	{TypeID: 1, Type: "Call", Subject: "Trial check-in call", Duration: "00:30:00", Note: "Quick check-in to see how trial is going and offer help", MinOffset: 3, MaxOffset: 7},
	{TypeID: 3, Type: "Email", Subject: "Trial tips and best practices", Duration: "00:10:00", Note: "Sent curated resources based on their usage patterns", MinOffset: 5, MaxOffset: 10},
	{TypeID: 6, Type: "Follow-up", Subject: "Trial conversion discussion", Duration: "00:20:00", Note: "Discussed paid plans, answered questions about features and pricing", MinOffset: 10, MaxOffset: 18},
	{TypeID: 1, Type: "Call", Subject: "Closing call", Duration: "00:25:00", Note: "Confirmed plan selection, processed payment, welcomed as customer!", OnWonDate: true},
}

var enterpriseSequence = []activityStep{
	{TypeID: 3, Type: "Email", Subject: "Enterprise inquiry response", Duration: "00:10:00", Note: "Initial outreach to understand enterprise requirements", MinOffset: 0, MaxOffset: 2},
	{TypeID: 1, Type: "Call", Subject: "Executive discovery call", Duration: "01:00:00", Note: "Discovery with VP/C-level - strategic initiatives and business objectives", MinOffset: 2, MaxOffset: 5},
	{TypeID: 5, Type: "Demo", Subject: "Executive product overview", Duration: "01:00:00", Note: "High-level demo focused on business outcomes and ROI", MinOffset: 5, MaxOffset: 10},
	{TypeID: 2, Type: "Meeting", Subject: "Technical architecture review", Duration: "02:00:00", Note: "Deep-dive with engineering - architecture, scalability, integrations", MinOffset: 10, MaxOffset: 17},
	{TypeID: 5, Type: "Demo", Subject: "Department-specific demo", Duration: "01:30:00", Note: "Customized demo for end-user teams and stakeholders", MinOffset: 14, MaxOffset: 21},
	{TypeID: 3, Type: "Email", Subject: "Enterprise proposal delivered", Duration: "00:30:00", Note: "Comprehensive proposal with custom pricing, SLAs, and implementation roadmap", MinOffset: 17, MaxOffset: 25},
	{TypeID: 2, Type: "Meeting", Subject: "Security and compliance audit", Duration: "02:00:00", Note: "InfoSec team review - penetration testing results, compliance certifications", MinOffset: 21, MaxOffset: 30},
	{TypeID: 1, Type: "Call", Subject: "ROI analysis and business case", Duration: "01:00:00", Note: "Presented financial model showing cost savings and productivity gains", MinOffset: 25, MaxOffset: 35},
	{TypeID: 2, Type: "Meeting", Subject: "Proof of concept kickoff", Duration: "01:30:00", Note: "Started 30-day POC with key use cases and success criteria", MinOffset: 28, MaxOffset: 40},
	{TypeID: 1, Type: "Call", Subject: "POC results review", Duration: "01:00:00", Note: "Reviewed POC outcomes, demonstrated value achieved", MinOffset: 50, MaxOffset: 65},
	{TypeID: 2, Type: "Meeting", Subject: "Legal and procurement review", Duration: "01:30:00", Note: "Contract negotiations with legal and procurement teams", MinOffset: 55, MaxOffset: 70},
	{TypeID: 4, Type: "Task", Subject: "Final contract preparation", Duration: "01:00:00", Note: "Prepared final MSA, DPA, and order forms with custom terms", MinOffset: 60, MaxOffset: 75},
	{TypeID: 1, Type: "Call", Subject: "Executive sign-off and close", Duration: "00:45:00", Note: "Final approval from decision makers, contract signed, deal closed!", OnWonDate: true},
}

var highTouchPLGSequence = []activityStep{
	{TypeID: 3, Type: "Email", Subject: "Trial welcome and onboarding", Duration: "00:05:00", Note: "Personalized welcome with getting started guide", MinOffset: 0, MaxOffset: 1},
	{TypeID: 1, Type: "Call", Subject: "Onboarding kickoff call", Duration: "00:45:00", Note: "Guided setup session, configured initial workspace", MinOffset: 1, MaxOffset: 3},
	{TypeID: 3, Type: "Email", Subject: "Advanced features guide", Duration: "00:10:00", Note: "Shared advanced tutorials based on their use case", MinOffset: 4, MaxOffset: 7},
	{TypeID: 6, Type: "Follow-up", Subject: "Mid-trial check-in", Duration: "00:30:00", Note: "Reviewed usage, identified blockers, provided optimization tips", MinOffset: 7, MaxOffset: 12},
	{TypeID: 2, Type: "Meeting", Subject: "Success planning session", Duration: "00:45:00", Note: "Mapped out their goals and created success plan for rollout", MinOffset: 12, MaxOffset: 18},
	{TypeID: 3, Type: "Email", Subject: "Pricing options overview", Duration: "00:15:00", Note: "Sent personalized pricing based on their expected usage", MinOffset: 14, MaxOffset: 20},
	{TypeID: 1, Type: "Call", Subject: "Plan selection and conversion", Duration: "00:30:00", Note: "Discussed options, answered billing questions, converted to paid plan!", OnWonDate: true},
}

// journeySequences indexes the activity templates by motion.
var journeySequences = map[JourneyType][]activityStep{
	JourneyEnterprise:   enterpriseSequence,
	JourneySalesLed:     salesLedSequence,
	JourneyHighTouchPLG: highTouchPLGSequence,
	JourneyProductLed:   productLedSequence,
}

// classifyJourney picks a sales motion from the deal's size and cycle
// length plus the user's funnel history. Big or slow deals are always
// enterprise; demo requesters take the sales-led cycle; highly engaged
// multi-session trialers get high-touch PLG; everyone else converted
// self-serve.
func classifyJourney(u *identity.UserState, arr float64, dealDurationDays int) JourneyType {
	switch {
	case arr >= enterpriseARRFloor || dealDurationDays >= enterpriseCycleDays:
		return JourneyEnterprise
	case !u.DemoRequestedDate.IsZero():
		return JourneySalesLed
	case !u.TrialStartDate.IsZero() &&
		(u.EngagementTier == catalog.TierHigh || u.EngagementTier == catalog.TierVeryHigh) &&
		u.SessionCount >= 5:
		return JourneyHighTouchPLG
	default:
		return JourneyProductLed
	}
}

// futureFollowUpRate is the share of customers with an open follow-up
// scheduled past the horizon.
const futureFollowUpRate = 0.30

// expandActivities builds the activity records for one won deal. Due
// dates are drawn inside the template's offset window, clipped so no
// activity lands after the deal closed; steps whose window cannot fit
// inside the deal's actual cycle are skipped.
func expandActivities(deal *models.Deal, u *identity.UserState, journey JourneyType, person *models.Person, horizon time.Time, nextID *int, r *rand.Rand) []models.Activity {
	dealStart, _ := time.Parse(timestampLayout, deal.AddTime)
	dealWon, _ := time.Parse(timestampLayout, deal.WonTime)
	durationDays := int(dealWon.Sub(dealStart).Hours() / 24)

	var out []models.Activity
	for _, step := range journeySequences[journey] {
		var due time.Time
		if step.OnWonDate {
			due = dealWon
		} else {
			maxOffset := step.MaxOffset
			if durationDays > 1 && maxOffset > durationDays-1 {
				maxOffset = durationDays - 1
			} else if durationDays <= 1 {
				maxOffset = 0
			}
			minOffset := step.MinOffset
			if minOffset > maxOffset {
				continue
			}
			due = dealStart.AddDate(0, 0, rng.IntBetween(r, minOffset, maxOffset))
		}

		out = append(out, models.Activity{
			ID:       *nextID,
			Type:     step.Type,
			TypeID:   step.TypeID,
			Subject:  step.Subject,
			Done:     true,
			DueDate:  due.Format(dateLayout),
			DueTime:  "14:00",
			Duration: step.Duration,

			OwnerID:  deal.OwnerID,
			DealID:   deal.ID,
			PersonID: person.ID,
			OrgID:    person.OrgID,

			Note:             step.Note,
			MarkedAsDoneTime: due.Format(timestampLayout),
			AddTime:          due.Format(timestampLayout),
			UpdateTime:       due.Format(timestampLayout),

			DeviceID:    u.DeviceID,
			DealTitle:   deal.Title,
			ProductSKU:  deal.ProductSKU,
			JourneyType: string(journey),
		})
		*nextID++
	}

	if r.Float64() < futureFollowUpRate {
		subject, note := futureFollowUp(journey)
		future := horizon.AddDate(0, 0, rng.IntBetween(r, 7, 30))
		out = append(out, models.Activity{
			ID:       *nextID,
			Type:     "Follow-up",
			TypeID:   6,
			Subject:  subject,
			Done:     false,
			DueDate:  future.Format(dateLayout),
			DueTime:  "14:00",
			Duration: "01:00:00",

			OwnerID:  deal.OwnerID,
			DealID:   deal.ID,
			PersonID: person.ID,
			OrgID:    person.OrgID,

			Note:       note,
			AddTime:    horizon.Format(timestampLayout),
			UpdateTime: horizon.Format(timestampLayout),

			DeviceID:    u.DeviceID,
			DealTitle:   deal.Title,
			ProductSKU:  deal.ProductSKU,
			JourneyType: string(journey),
		})
		*nextID++
	}

	return out
}

func futureFollowUp(journey JourneyType) (subject, note string) {
	switch journey {
	case JourneyEnterprise:
		return "Quarterly business review with executive team",
			"Scheduled QBR to review adoption metrics, ROI, and discuss expansion opportunities"
	case JourneySalesLed, JourneyHighTouchPLG:
		return "Success check-in call",
			"Quarterly check-in to discuss usage, satisfaction, and identify upsell opportunities"
	default:
		return "Customer health check",
			"Quick check-in to ensure customer is getting value and address any questions"
	}
}
