// Package project derives the CRM and billing datasets from final
// per-user funnel state. Everything here is a read-only projection:
// leads, deals, activities, persons, organizations on the Pipedrive
// side and customers plus subscriptions on the Stripe side all come
// from the same user registry, which is what keeps their counts and
// values consistent with each other and with the event stream.
package project

import (
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"funnelforge/internal/catalog"
	"funnelforge/internal/identity"
	"funnelforge/internal/rng"
	"funnelforge/internal/session"
	"funnelforge/internal/sink"
	"funnelforge/pkg/errors"
	"funnelforge/pkg/models"
)

const (
	timestampLayout = "2006-01-02T15:04:05"
	dateLayout      = "2006-01-02"
)

// Annual-billing share by engagement: heavy users commit for a year
// more often.
const (
	annualShareEngaged = 0.40
	annualShareDefault = 0.15
)

// Summary counts what a projection emitted.
type Summary struct {
	FunnelStates  int
	Leads         int
	Deals         int
	Activities    int
	Persons       int
	Organizations int
	Customers     int
	Subscriptions int
}

// Projector reads finalized user state and emits the cross-system
// records.
type Projector struct {
	rngs     rng.Factory
	personas func(deviceID string) session.Persona
	horizon  time.Time
}

// NewProjector creates a projector. The horizon is the first day past
// the generation window; open-ended dates (ongoing stages, future
// follow-ups) are measured against it instead of the wall clock so
// reruns stay byte-identical.
func NewProjector(rngs rng.Factory, personas func(string) session.Persona, horizon time.Time) *Projector {
	return &Projector{rngs: rngs, personas: personas, horizon: horizon}
}

// FunnelStateFor summarizes one user into their funnel snapshot. The
// stage is chosen by milestone priority, not chronology: churned wins
// over customer, customer over demo_requested, and so on down to
// visitor.
func (p *Projector) FunnelStateFor(u *identity.UserState) models.FunnelState {
	fs := models.FunnelState{
		DeviceID: u.DeviceID,
		UserID:   u.UserID,
		Email:    u.Email,

		FirstVisitDate: u.FirstVisitDate.Format(dateLayout),
		LastActiveDate: u.LastSessionDate.Format(dateLayout),

		TotalSessions:       u.SessionCount,
		TotalEvents:         u.TotalEvents,
		EngagementTier:      string(u.EngagementTier),
		DaysSinceFirstVisit: daysBetween(u.FirstVisitDate, p.horizon),
		AcquisitionChannel:  u.FirstSource + "/" + u.FirstMedium,
	}

	var stageSince time.Time
	switch {
	case !u.ChurnedDate.IsZero():
		fs.CurrentStage = models.StageChurned
		stageSince = u.ChurnedDate
	case u.ConvertedToPaid:
		fs.CurrentStage = models.StageCustomer
		stageSince = u.ConvertedDate
	case !u.DemoRequestedDate.IsZero():
		fs.CurrentStage = models.StageDemoRequested
		stageSince = u.DemoRequestedDate
	case !u.TrialStartDate.IsZero():
		fs.CurrentStage = models.StageTrialActive
		stageSince = u.TrialStartDate
	default:
		fs.CurrentStage = models.StageVisitor
		stageSince = u.FirstVisitDate
	}
	fs.DaysInCurrentStage = daysBetween(stageSince, p.horizon)

	if !u.TrialStartDate.IsZero() {
		fs.TrialStartedDate = u.TrialStartDate.Format(dateLayout)
		fs.TrialPath = string(u.TrialPath)
	}
	if u.ConvertedToPaid {
		fs.TrialConvertedDate = u.ConvertedDate.Format(dateLayout)
		fs.ProductSKU = u.ProductSKU
	}
	if !u.DemoRequestedDate.IsZero() {
		fs.DemoRequestedDate = u.DemoRequestedDate.Format(dateLayout)
	}
	if !u.ChurnedDate.IsZero() {
		fs.ChurnedDate = u.ChurnedDate.Format(dateLayout)
	}

	return fs
}

// Project derives every downstream dataset from the registry and
// writes them to the sink in a fixed dataset order.
func (p *Projector) Project(reg *identity.Registry, out sink.Sink) (*Summary, error) {
	users := reg.All()

	states := make(map[string]models.FunnelState, len(users))
	for _, u := range users {
		states[u.DeviceID] = p.FunnelStateFor(u)
	}

	orgs, orgByDomain := p.buildOrganizations(users)
	persons, personByDevice := p.buildPersons(users, states, orgByDomain)
	customers, subs, subByDevice, err := p.buildBilling(users, states)
	if err != nil {
		return nil, err
	}
	leads, err := p.buildLeads(users, states, subByDevice)
	if err != nil {
		return nil, err
	}
	deals, activities, err := p.buildDeals(users, states, subByDevice, personByDevice)
	if err != nil {
		return nil, err
	}

	tallyCounts(deals, activities, persons, personByDevice, orgs, orgByDomain)

	summary := &Summary{
		FunnelStates:  len(users),
		Leads:         len(leads),
		Deals:         len(deals),
		Activities:    len(activities),
		Persons:       len(persons),
		Organizations: len(orgs),
		Customers:     len(customers),
		Subscriptions: len(subs),
	}

	for _, u := range users {
		if err := out.Write(sink.DatasetFunnelStates, states[u.DeviceID]); err != nil {
			return nil, err
		}
	}
	for _, o := range orgs {
		if err := out.Write(sink.DatasetOrganizations, *o); err != nil {
			return nil, err
		}
	}
	for _, pr := range persons {
		if err := out.Write(sink.DatasetPersons, *pr); err != nil {
			return nil, err
		}
	}
	for _, l := range leads {
		if err := out.Write(sink.DatasetLeads, l); err != nil {
			return nil, err
		}
	}
	for _, d := range deals {
		if err := out.Write(sink.DatasetDeals, *d); err != nil {
			return nil, err
		}
	}
	for _, a := range activities {
		if err := out.Write(sink.DatasetActivities, a); err != nil {
			return nil, err
		}
	}
	for _, c := range customers {
		if err := out.Write(sink.DatasetCustomers, c); err != nil {
			return nil, err
		}
	}
	for _, s := range subs {
		if err := out.Write(sink.DatasetSubscriptions, s); err != nil {
			return nil, err
		}
	}

	return summary, nil
}

// buildOrganizations creates one organization per company email domain
// among identified users, in first-seen order. Free-mail domains are
// included too: a "Gmail" org is how the reference CRM exports look
// when B2C signups sneak into a B2B pipeline.
func (p *Projector) buildOrganizations(users []*identity.UserState) ([]*models.Organization, map[string]*models.Organization) {
	var orgs []*models.Organization
	byDomain := make(map[string]*models.Organization)

	for _, u := range users {
		if !u.IsIdentified {
			continue
		}
		domain := emailDomain(u.Email)
		if domain == "" {
			continue
		}
		if org, ok := byDomain[domain]; ok {
			org.UserCount++
			continue
		}

		f := gofakeit.New(p.rngs.HashKey("org", domain))
		r := p.projRand("org", domain)

		size := catalog.SelectCompanySize(r)
		org := &models.Organization{
			ID:        len(orgs) + 1,
			Name:      domainToName(domain),
			OwnerID:   catalog.SelectSalesRep(r).ID,
			VisibleTo: "3",
			Address:   strings.ReplaceAll(f.Address().Address, "\n", ", "),
			Label:     orgLabel(r),

			CompanyDomain:      domain,
			CompanySize:        size.Bracket,
			Industry:           catalog.Industries[r.Intn(len(catalog.Industries))],
			UserCount:          1,
			AcquisitionChannel: u.FirstSource + "/" + u.FirstMedium,

			AddTime:    u.FirstVisitDate.Format(timestampLayout),
			UpdateTime: u.LastSessionDate.Format(timestampLayout),
		}
		// Deal-size proxy scaled by company size; user count folds in
		// during the final tally.
		org.EstimatedValue = rng.IntBetween(r, 5000, 20000) * size.Multiplier

		byDomain[domain] = org
		orgs = append(orgs, org)
	}
	return orgs, byDomain
}

func (p *Projector) buildPersons(users []*identity.UserState, states map[string]models.FunnelState, orgByDomain map[string]*models.Organization) ([]*models.Person, map[string]*models.Person) {
	var persons []*models.Person
	byDevice := make(map[string]*models.Person)

	for _, u := range users {
		if !u.IsIdentified {
			continue
		}
		persona := p.personas(u.DeviceID)
		r := p.projRand("person", u.DeviceID)
		fs := states[u.DeviceID]

		var orgID int
		if org, ok := orgByDomain[emailDomain(u.Email)]; ok {
			orgID = org.ID
		}

		person := &models.Person{
			ID:        len(persons) + 1,
			OwnerID:   catalog.SelectSalesRep(r).ID,
			OrgID:     orgID,
			Name:      strings.TrimSpace(persona.FirstName + " " + persona.LastName),
			FirstName: persona.FirstName,
			LastName:  persona.LastName,
			Email:     u.Email,
			Phone:     persona.Phone,
			VisibleTo: "3",
			Label:     personLabel(u.EngagementTier),

			UserID:             u.UserID,
			DeviceID:           u.DeviceID,
			CurrentStage:       fs.CurrentStage,
			EngagementTier:     string(u.EngagementTier),
			TotalSessions:      u.SessionCount,
			AcquisitionChannel: fs.AcquisitionChannel,
			FirstVisitDate:     fs.FirstVisitDate,
			LastActiveDate:     fs.LastActiveDate,

			AddTime:    u.FirstVisitDate.Format(timestampLayout),
			UpdateTime: u.LastSessionDate.Format(timestampLayout),
		}
		persons = append(persons, person)
		byDevice[u.DeviceID] = person
	}
	return persons, byDevice
}

// buildBilling creates the Stripe pair for every customer-stage user:
// exactly one customer and one active subscription, priced from the
// product the user converted onto.
func (p *Projector) buildBilling(users []*identity.UserState, states map[string]models.FunnelState) ([]models.Customer, []models.Subscription, map[string]*models.Subscription, error) {
	var customers []models.Customer
	var subs []models.Subscription
	byDevice := make(map[string]*models.Subscription)

	for _, u := range users {
		if states[u.DeviceID].CurrentStage != models.StageCustomer {
			continue
		}
		persona := p.personas(u.DeviceID)
		r := p.projRand("billing", u.DeviceID)

		product, err := p.customerProduct(u, r)
		if err != nil {
			return nil, nil, nil, err
		}

		interval, amount := billingTerms(u.EngagementTier, product, r)

		customerID := "cus_" + randAlnum(r, 14)
		customers = append(customers, models.Customer{
			ID:       customerID,
			Object:   "customer",
			Email:    u.Email,
			Name:     strings.TrimSpace(persona.FirstName + " " + persona.LastName),
			Created:  u.ConvertedDate.Unix(),
			Currency: "usd",
			Metadata: models.CustomerMetadata{
				UserID:             u.UserID,
				DeviceID:           u.DeviceID,
				AcquisitionChannel: u.FirstSource + "/" + u.FirstMedium,
				EngagementTier:     string(u.EngagementTier),
				TotalSessions:      u.SessionCount,
			},
		})

		periodEnd := u.ConvertedDate.AddDate(0, 0, 30)
		if interval == "year" {
			periodEnd = u.ConvertedDate.AddDate(0, 0, 365)
		}

		sub := models.Subscription{
			ID:                 "sub_" + randAlnum(r, 18),
			Object:             "subscription",
			Customer:           customerID,
			Status:             "active",
			Created:            u.ConvertedDate.Unix(),
			CurrentPeriodStart: u.ConvertedDate.Unix(),
			CurrentPeriodEnd:   periodEnd.Unix(),
			Currency:           "usd",
			BillingCycleAnchor: u.ConvertedDate.Unix(),

			Plan: models.SubscriptionPlan{
				ID:       "plan_" + strings.ToLower(product.SKU) + "_" + interval + "ly",
				Product:  product.ID,
				Amount:   amount,
				Currency: "usd",
				Interval: interval,
				Nickname: product.Name + " " + strings.Title(interval) + "ly",
			},
			Metadata: models.SubscriptionMetadata{
				ProductSKU:      product.SKU,
				ProductName:     product.Name,
				BillingInterval: interval,
				UserID:          u.UserID,
				DeviceID:        u.DeviceID,
				EngagementTier:  string(u.EngagementTier),
			},
		}
		if !u.TrialStartDate.IsZero() {
			sub.TrialStart = u.TrialStartDate.Unix()
			sub.TrialEnd = u.ConvertedDate.Unix()
			sub.Metadata.ConversionDay = daysBetween(u.TrialStartDate, u.ConvertedDate)
		}

		subs = append(subs, sub)
		byDevice[u.DeviceID] = &subs[len(subs)-1]
	}
	return customers, subs, byDevice, nil
}

// buildLeads creates one lead for every user who got past plain
// browsing: trial, demo, customer or churned.
func (p *Projector) buildLeads(users []*identity.UserState, states map[string]models.FunnelState, subByDevice map[string]*models.Subscription) ([]models.Lead, error) {
	var leads []models.Lead

	for _, u := range users {
		fs := states[u.DeviceID]
		if fs.CurrentStage == models.StageVisitor {
			continue
		}
		r := p.projRand("lead", u.DeviceID)

		id, err := uuid.NewRandomFromReader(r)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeGeneration, "failed to mint lead id")
		}

		formType, lifecycle := leadClassification(u)

		var value float64
		if sub, ok := subByDevice[u.DeviceID]; ok {
			value = float64(sub.Plan.Amount) / 100
		} else if fs.CurrentStage == models.StageCustomer {
			value = 99.00
		} else {
			value = float64(rng.IntBetween(r, 3000, 15000))
		}

		title := u.Email
		if title == "" {
			title = u.UserID
		}
		if title == "" {
			title = u.DeviceID
		}

		leads = append(leads, models.Lead{
			ID:         id.String(),
			Title:      title + " - " + strings.Title(strings.ReplaceAll(formType, "_", " ")),
			OwnerID:    catalog.SelectSalesRep(r).ID,
			Value:      value,
			Currency:   "USD",
			IsArchived: fs.CurrentStage == models.StageCustomer || fs.CurrentStage == models.StageChurned,
			WasSeen:    true,
			AddTime:    u.FirstVisitDate.Format(timestampLayout),
			UpdateTime: u.LastSessionDate.Format(timestampLayout),

			Email:    u.Email,
			UserID:   u.UserID,
			DeviceID: u.DeviceID,

			LifecycleStage:     lifecycle,
			FormType:           formType,
			CurrentStage:       fs.CurrentStage,
			TrialStartedDate:   fs.TrialStartedDate,
			SalesPriority:      salesPriority(u.EngagementTier),
			EngagementTier:     string(u.EngagementTier),
			TotalSessions:      u.SessionCount,
			AcquisitionChannel: fs.AcquisitionChannel,
		})
	}
	return leads, nil
}

// buildDeals creates exactly one won deal per customer-stage user,
// valued from that user's subscription, and expands each deal into its
// journey's activity timeline.
func (p *Projector) buildDeals(users []*identity.UserState, states map[string]models.FunnelState, subByDevice map[string]*models.Subscription, personByDevice map[string]*models.Person) ([]*models.Deal, []models.Activity, error) {
	var deals []*models.Deal
	var activities []models.Activity
	activityID := 1

	for _, u := range users {
		fs := states[u.DeviceID]
		if fs.CurrentStage != models.StageCustomer {
			continue
		}
		sub, ok := subByDevice[u.DeviceID]
		if !ok {
			return nil, nil, errors.New(errors.ErrCodeGeneration, "customer has no subscription").
				WithContext("device_id", u.DeviceID)
		}
		r := p.projRand("deal", u.DeviceID)

		value := float64(sub.Plan.Amount) / 100
		mrr := value
		if sub.Plan.Interval == "year" {
			mrr = value / 12
		}
		arr := mrr * 12

		addTime := u.FirstVisitDate
		if !u.TrialStartDate.IsZero() {
			addTime = u.TrialStartDate
		}
		wonTime := u.ConvertedDate

		title := u.Email
		if title == "" {
			title = u.UserID
		}

		deal := &models.Deal{
			ID:          len(deals) + 1,
			Title:       title + " - " + sub.Metadata.ProductName + " (" + strings.Title(sub.Plan.Interval) + "ly)",
			OwnerID:     catalog.SelectSalesRep(r).ID,
			Value:       value,
			Currency:    "USD",
			StageID:     5, // closed_won
			Status:      "won",
			Probability: 100,

			AddTime:    addTime.Format(timestampLayout),
			UpdateTime: wonTime.Format(timestampLayout),
			WonTime:    wonTime.Format(timestampLayout),
			CloseTime:  wonTime.Format(timestampLayout),

			ACV: round2(value),
			ARR: round2(arr),
			MRR: round2(mrr),

			ProductSKU:      sub.Metadata.ProductSKU,
			ProductName:     sub.Metadata.ProductName,
			BillingInterval: sub.Plan.Interval,

			UserID:             u.UserID,
			DeviceID:           u.DeviceID,
			Email:              u.Email,
			TrialStartedDate:   fs.TrialStartedDate,
			ConversionDay:      sub.Metadata.ConversionDay,
			EngagementTier:     string(u.EngagementTier),
			AcquisitionChannel: fs.AcquisitionChannel,
		}

		person, ok := personByDevice[u.DeviceID]
		if !ok {
			return nil, nil, errors.New(errors.ErrCodeGeneration, "customer has no person record").
				WithContext("device_id", u.DeviceID)
		}

		journey := classifyJourney(u, arr, daysBetween(addTime, wonTime))
		dealActs := expandActivities(deal, u, journey, person, p.horizon, &activityID, r)

		deal.ActivitiesCount = len(dealActs)
		for _, a := range dealActs {
			if a.Type == "Email" {
				deal.EmailMessagesCount++
			}
		}

		deals = append(deals, deal)
		activities = append(activities, dealActs...)
	}
	return deals, activities, nil
}

// customerProduct resolves the product a customer pays for: the SKU
// fixed at conversion when present, otherwise an engagement-tier draw.
func (p *Projector) customerProduct(u *identity.UserState, r *rand.Rand) (catalog.Product, error) {
	if u.ProductSKU != "" {
		return catalog.ProductBySKU(u.ProductSKU)
	}
	return catalog.SelectProductByEngagement(u.EngagementTier, r), nil
}

func (p *Projector) projRand(kind, key string) *rand.Rand {
	return rand.New(rand.NewSource(int64(p.rngs.HashKey("project", kind, key) >> 1)))
}

func tallyCounts(deals []*models.Deal, activities []models.Activity, persons []*models.Person, personByDevice map[string]*models.Person, orgs []*models.Organization, orgByDomain map[string]*models.Organization) {
	orgByID := make(map[int]*models.Organization, len(orgs))
	for _, o := range orgs {
		orgByID[o.ID] = o
		o.PeopleCount = o.UserCount
		o.EstimatedValue *= o.UserCount
	}
	for _, d := range deals {
		if person, ok := personByDevice[d.DeviceID]; ok {
			person.ClosedDealsCount++
			person.WonDealsCount++
			if org, ok := orgByID[person.OrgID]; ok {
				org.ClosedDealsCount++
				org.WonDealsCount++
			}
		}
	}
	for _, a := range activities {
		if person, ok := personByID(persons, a.PersonID); ok {
			person.ActivitiesCount++
		}
		if org, ok := orgByID[a.OrgID]; ok {
			org.ActivitiesCount++
		}
	}
}

func personByID(persons []*models.Person, id int) (*models.Person, bool) {
	// Person IDs are assigned densely from 1 in slice order.
	if id < 1 || id > len(persons) {
		return nil, false
	}
	return persons[id-1], true
}

func billingTerms(tier catalog.Tier, product catalog.Product, r *rand.Rand) (interval string, amount int) {
	annualShare := annualShareDefault
	if tier == catalog.TierHigh || tier == catalog.TierVeryHigh {
		annualShare = annualShareEngaged
	}
	if r.Float64() < annualShare {
		return "year", product.PriceAnnual
	}
	return "month", product.PriceMonthly
}

func leadClassification(u *identity.UserState) (formType, lifecycle string) {
	switch {
	case !u.TrialStartDate.IsZero():
		return "trial_signup", "Trial"
	case !u.DemoRequestedDate.IsZero():
		return "demo_request", "Marketing Qualified Lead"
	case u.FormType != "":
		if f, err := catalog.FormByName(u.FormType); err == nil {
			return f.Name, f.LifecycleStage
		}
		return u.FormType, "Lead"
	default:
		return "contact_us", "Lead"
	}
}

func salesPriority(tier catalog.Tier) string {
	switch tier {
	case catalog.TierVeryHigh, catalog.TierHigh:
		return "high"
	case catalog.TierMedium:
		return "medium"
	default:
		return "low"
	}
}

func personLabel(tier catalog.Tier) string {
	switch tier {
	case catalog.TierVeryHigh, catalog.TierHigh:
		return "Hot"
	case catalog.TierMedium:
		return "Warm"
	default:
		return "Cold"
	}
}

func orgLabel(r *rand.Rand) string {
	labels := []string{"Hot", "Warm", "Cold", ""}
	return labels[r.Intn(len(labels))]
}

func emailDomain(email string) string {
	if i := strings.LastIndex(email, "@"); i >= 0 {
		return email[i+1:]
	}
	return ""
}

// domainToName turns "acmesoftware.com" into "Acmesoftware".
func domainToName(domain string) string {
	name := domain
	for _, suffix := range []string{".com", ".io", ".ai", ".net", ".org"} {
		name = strings.TrimSuffix(name, suffix)
	}
	name = strings.ReplaceAll(name, ".", " ")
	return strings.Title(name)
}

func daysBetween(from, to time.Time) int {
	if from.IsZero() || to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

const alnum = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func randAlnum(r *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alnum[r.Intn(len(alnum))]
	}
	return string(b)
}
