// Package sink abstracts where generated records land. Generation code
// writes named datasets and never knows whether the destination is a
// local JSONL directory, an in-memory buffer or a warehouse table.
package sink

// Dataset names emitted by a full run.
const (
	DatasetEvents        = "events"
	DatasetFunnelStates  = "funnel_states"
	DatasetLeads         = "leads"
	DatasetDeals         = "deals"
	DatasetActivities    = "activities"
	DatasetPersons       = "persons"
	DatasetOrganizations = "organizations"
	DatasetCustomers     = "customers"
	DatasetSubscriptions = "subscriptions"
	DatasetDailySummary  = "daily_summary"
)

// Sink receives generated records grouped into named datasets. Writes
// happen in generation order; implementations must preserve it so a
// fixed seed yields byte-identical output.
type Sink interface {
	// Write appends one record to a dataset.
	Write(dataset string, record any) error

	// Close flushes and releases the destination. A sink is unusable
	// after Close.
	Close() error
}
