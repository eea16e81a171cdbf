package models

// Output record types for every dataset the suite emits. Each record
// is a named struct rather than a loose field map so that a renamed or
// missing field is a compile error, not a silent schema drift in the
// generated data.

// FunnelStage is a user's furthest-progressed milestone, chosen by
// priority (churned > customer > demo_requested > trial_active >
// visitor) regardless of event chronology.
type FunnelStage string

const (
	StageVisitor       FunnelStage = "visitor"
	StageTrialActive   FunnelStage = "trial_active"
	StageDemoRequested FunnelStage = "demo_requested"
	StageCustomer      FunnelStage = "customer"
	StageChurned       FunnelStage = "churned"
)

// EventProperties mirrors the event_properties blob of an Amplitude
// export row.
type EventProperties struct {
	Source         string `json:"source"`
	Medium         string `json:"medium"`
	EngagementTier string `json:"engagement_tier"`

	CampaignName string `json:"campaign_name,omitempty"`
	CampaignID   int    `json:"campaign_id,omitempty"`
	CampaignType string `json:"campaign_type,omitempty"`

	FormType  string `json:"form_type,omitempty"`
	TrialPath string `json:"trial_path,omitempty"`

	ProductSKU    string `json:"product_sku,omitempty"`
	ConversionDay int    `json:"conversion_day,omitempty"`
}

// UserProperties mirrors the user_properties blob of an Amplitude
// export row.
type UserProperties struct {
	UserType       string `json:"user_type"` // identified | anonymous
	EngagementTier string `json:"engagement_tier"`
	TotalSessions  int    `json:"total_sessions"`
	IsReturning    bool   `json:"is_returning"`
	LifecycleStage string `json:"lifecycle_stage,omitempty"`
}

// Event is a single interaction shaped like an Amplitude event export
// row.
type Event struct {
	ServerReceivedTime string `json:"server_received_time"`
	EventTime          string `json:"event_time"`
	ProcessedTime      string `json:"processed_time"`
	ClientUploadTime   string `json:"client_upload_time"`
	ClientEventTime    string `json:"client_event_time"`
	ServerUploadTime   string `json:"server_upload_time"`

	UserID      string `json:"user_id,omitempty"`
	DeviceID    string `json:"device_id"`
	UUID        string `json:"uuid"`
	AmplitudeID int64  `json:"amplitude_id"`
	SessionID   int64  `json:"session_id"`
	EventID     int64  `json:"event_id"`
	InsertID    string `json:"$insert_id"`

	EventType    string `json:"event_type"`
	App          int    `json:"app"`
	VersionName  string `json:"version_name"`
	StartVersion string `json:"start_version"`

	Platform      string `json:"platform"`
	OSName        string `json:"os_name"`
	OSVersion     string `json:"os_version"`
	DeviceType    string `json:"device_type"`
	DeviceFamily  string `json:"device_family"`
	DeviceCarrier string `json:"device_carrier,omitempty"`

	Country     string  `json:"country"`
	Region      string  `json:"region"`
	City        string  `json:"city"`
	LocationLat float64 `json:"location_lat"`
	LocationLng float64 `json:"location_lng"`

	IPAddress string `json:"ip_address"`
	Library   string `json:"library"`
	Language  string `json:"language"`

	Paying bool `json:"paying"`

	EventProperties EventProperties `json:"event_properties"`
	UserProperties  UserProperties  `json:"user_properties"`
}

// FunnelState is the per-user summary read by the CRM/billing
// projection once generation ends.
type FunnelState struct {
	DeviceID string `json:"device_id"`
	UserID   string `json:"user_id"`
	Email    string `json:"email,omitempty"`

	CurrentStage       FunnelStage `json:"current_stage"`
	FirstVisitDate     string      `json:"first_visit_date"`
	TrialStartedDate   string      `json:"trial_started_date,omitempty"`
	TrialConvertedDate string      `json:"trial_converted_date,omitempty"`
	DemoRequestedDate  string      `json:"demo_requested_date,omitempty"`
	ChurnedDate        string      `json:"churned_date,omitempty"`
	LastActiveDate     string      `json:"last_active_date"`

	TotalSessions       int    `json:"total_sessions"`
	TotalEvents         int    `json:"total_events"`
	EngagementTier      string `json:"engagement_tier"`
	DaysInCurrentStage  int    `json:"days_in_current_stage"`
	DaysSinceFirstVisit int    `json:"days_since_first_visit"`
	AcquisitionChannel  string `json:"acquisition_channel"`
	TrialPath           string `json:"trial_path,omitempty"`
	ProductSKU          string `json:"product_sku,omitempty"`
}

// Lead is a Pipedrive-shaped lead record.
type Lead struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	OwnerID    int     `json:"owner_id"`
	Value      float64 `json:"value"`
	Currency   string  `json:"currency"`
	IsArchived bool    `json:"is_archived"`
	WasSeen    bool    `json:"was_seen"`
	AddTime    string  `json:"add_time"`
	UpdateTime string  `json:"update_time"`

	Email    string `json:"email,omitempty"`
	UserID   string `json:"user_id"`
	DeviceID string `json:"device_id"`

	LifecycleStage     string      `json:"lifecycle_stage"`
	FormType           string      `json:"form_type"`
	CurrentStage       FunnelStage `json:"current_stage"`
	TrialStartedDate   string      `json:"trial_started_date,omitempty"`
	SalesPriority      string      `json:"sales_priority"`
	EngagementTier     string      `json:"engagement_tier"`
	TotalSessions      int         `json:"total_sessions"`
	AcquisitionChannel string      `json:"acquisition_channel"`
}

// Deal is a Pipedrive-shaped won deal. One per customer-stage user.
type Deal struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	OwnerID     int     `json:"owner_id"`
	Value       float64 `json:"value"`
	Currency    string  `json:"currency"`
	StageID     int     `json:"stage_id"`
	Status      string  `json:"status"`
	Probability int     `json:"probability"`

	AddTime    string `json:"add_time"`
	UpdateTime string `json:"update_time"`
	WonTime    string `json:"won_time"`
	CloseTime  string `json:"close_time"`

	ACV float64 `json:"acv"`
	ARR float64 `json:"arr"`
	MRR float64 `json:"mrr"`

	ActivitiesCount    int `json:"activities_count"`
	EmailMessagesCount int `json:"email_messages_count"`

	ProductSKU      string `json:"product_sku"`
	ProductName     string `json:"product_name"`
	BillingInterval string `json:"billing_interval"`

	UserID             string `json:"user_id"`
	DeviceID           string `json:"device_id"`
	Email              string `json:"email,omitempty"`
	TrialStartedDate   string `json:"trial_started_date,omitempty"`
	ConversionDay      int    `json:"conversion_day"`
	EngagementTier     string `json:"engagement_tier"`
	AcquisitionChannel string `json:"acquisition_channel"`
}

// Activity is a Pipedrive-shaped CRM activity tied to a deal.
type Activity struct {
	ID       int    `json:"id"`
	Type     string `json:"type"`
	TypeID   int    `json:"type_id"`
	Subject  string `json:"subject"`
	Done     bool   `json:"done"`
	DueDate  string `json:"due_date"`
	DueTime  string `json:"due_time"`
	Duration string `json:"duration"`

	OwnerID  int `json:"owner_id"`
	DealID   int `json:"deal_id"`
	PersonID int `json:"person_id"`
	OrgID    int `json:"org_id"`

	Note             string `json:"note"`
	MarkedAsDoneTime string `json:"marked_as_done_time,omitempty"`
	AddTime          string `json:"add_time"`
	UpdateTime       string `json:"update_time"`

	DeviceID    string `json:"device_id"`
	DealTitle   string `json:"deal_title"`
	ProductSKU  string `json:"product_sku"`
	JourneyType string `json:"journey_type"`
}

// Person is a Pipedrive-shaped contact derived from an identified user.
type Person struct {
	ID        int    `json:"id"`
	OwnerID   int    `json:"owner_id"`
	OrgID     int    `json:"org_id"`
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	VisibleTo string `json:"visible_to"`
	Label     string `json:"label"`

	UserID             string      `json:"user_id"`
	DeviceID           string      `json:"device_id"`
	CurrentStage       FunnelStage `json:"current_stage"`
	EngagementTier     string      `json:"engagement_tier"`
	TotalSessions      int         `json:"total_sessions"`
	AcquisitionChannel string      `json:"acquisition_channel"`
	FirstVisitDate     string      `json:"first_visit_date"`
	LastActiveDate     string      `json:"last_active_date"`

	AddTime    string `json:"add_time"`
	UpdateTime string `json:"update_time"`

	ClosedDealsCount int `json:"closed_deals_count"`
	WonDealsCount    int `json:"won_deals_count"`
	ActivitiesCount  int `json:"activities_count"`
}

// Organization is a Pipedrive-shaped company derived from an email
// domain.
type Organization struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	OwnerID   int    `json:"owner_id"`
	VisibleTo string `json:"visible_to"`
	Address   string `json:"address"`
	Label     string `json:"label,omitempty"`

	CompanyDomain      string `json:"company_domain"`
	CompanySize        string `json:"company_size"`
	Industry           string `json:"industry"`
	UserCount          int    `json:"user_count"`
	EstimatedValue     int    `json:"estimated_value"`
	AcquisitionChannel string `json:"acquisition_channel"`

	AddTime    string `json:"add_time"`
	UpdateTime string `json:"update_time"`

	PeopleCount      int `json:"people_count"`
	ClosedDealsCount int `json:"closed_deals_count"`
	WonDealsCount    int `json:"won_deals_count"`
	ActivitiesCount  int `json:"activities_count"`
}

// CustomerMetadata carries the cross-system join keys on a Stripe
// customer.
type CustomerMetadata struct {
	UserID             string `json:"user_id"`
	DeviceID           string `json:"device_id"`
	AcquisitionChannel string `json:"acquisition_channel"`
	EngagementTier     string `json:"engagement_tier"`
	TotalSessions      int    `json:"total_sessions"`
}

// Customer is a Stripe-shaped customer object.
type Customer struct {
	ID         string           `json:"id"`
	Object     string           `json:"object"`
	Email      string           `json:"email"`
	Name       string           `json:"name"`
	Created    int64            `json:"created"`
	Currency   string           `json:"currency"`
	Balance    int              `json:"balance"`
	Delinquent bool             `json:"delinquent"`
	Metadata   CustomerMetadata `json:"metadata"`
}

// SubscriptionPlan is the plan attached to a subscription item.
type SubscriptionPlan struct {
	ID       string `json:"id"`
	Product  string `json:"product"`
	Amount   int    `json:"amount"` // cents
	Currency string `json:"currency"`
	Interval string `json:"interval"` // month | year
	Nickname string `json:"nickname"`
}

// SubscriptionMetadata carries the cross-system join keys on a Stripe
// subscription.
type SubscriptionMetadata struct {
	ProductSKU      string `json:"product_sku"`
	ProductName     string `json:"product_name"`
	BillingInterval string `json:"billing_interval"`
	UserID          string `json:"user_id"`
	DeviceID        string `json:"device_id"`
	ConversionDay   int    `json:"conversion_day"`
	EngagementTier  string `json:"engagement_tier"`
}

// Subscription is a Stripe-shaped subscription object.
type Subscription struct {
	ID                 string `json:"id"`
	Object             string `json:"object"`
	Customer           string `json:"customer"`
	Status             string `json:"status"`
	Created            int64  `json:"created"`
	CurrentPeriodStart int64  `json:"current_period_start"`
	CurrentPeriodEnd   int64  `json:"current_period_end"`
	Currency           string `json:"currency"`
	BillingCycleAnchor int64  `json:"billing_cycle_anchor"`
	TrialStart         int64  `json:"trial_start,omitempty"`
	TrialEnd           int64  `json:"trial_end,omitempty"`

	Plan     SubscriptionPlan     `json:"plan"`
	Metadata SubscriptionMetadata `json:"metadata"`
}

// DailySummary is one row of the aligned daily ledger shared by every
// downstream generator. Emitting it as its own dataset lets the mock
// GA4 and Amplitude volumes be reconciled from the same source.
type DailySummary struct {
	Date     string  `json:"date"`
	DayIndex int     `json:"day_index"`
	ActiveUsers     int     `json:"active_users"`
	NewUsers        int     `json:"new_users"`
	Sessions        int     `json:"sessions"`
	Transactions    int     `json:"transactions"`
	Revenue         float64 `json:"revenue"`
	LeadUsers       int     `json:"lead_users"`
	IdentifiedLeads int     `json:"identified_leads"`
	PayingLeads     int     `json:"paying_leads"`

	SessionsCreated int `json:"sessions_created"`
	ReturningUsers  int `json:"returning_users"`
	EventsEmitted   int `json:"events_emitted"`
	FormFills       int `json:"form_fills"`
	Conversions     int `json:"conversions"`
}
