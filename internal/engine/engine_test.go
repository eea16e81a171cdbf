package engine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funnelforge/internal/sink"
	"funnelforge/pkg/errors"
	"funnelforge/pkg/models"
)

// testConfig is a small, jitter-free run: 112 base new users at a 0.9
// session creation rate yields exactly 100 first sessions on day one.
func testConfig(days int) models.Generation {
	return models.Generation{
		Seed:      42,
		StartDate: "2025-01-01",
		Days:      days,

		BaseDailyActiveUsers: 1000,
		BaseDailyNewUsers:    112,
		BaseDailySessions:    1500,

		LeadShareOfTraffic:     0.10,
		LeadIdentificationRate: 0.25,
		LeadConversionRate:     0.05,

		AverageTransactionValue: 99.99,
		SessionCreationRate:     0.90,

		JitterMin: 1.0,
		JitterMax: 1.0,
	}
}

func TestRunMintsExactDailyQuota(t *testing.T) {
	eng, err := New(testConfig(1), zerolog.Nop())
	require.NoError(t, err)

	out := sink.NewMemory()
	res, err := eng.Run(context.Background(), out)
	require.NoError(t, err)

	assert.True(t, res.Completed)
	assert.Equal(t, 1, res.Days)
	assert.Equal(t, 100, res.Users)
	assert.Equal(t, 100, eng.Registry().Len())

	// Day one has no scheduled returns, so sessions == users.
	assert.Equal(t, 100, res.Sessions)
	for _, u := range eng.Registry().All() {
		assert.Equal(t, 1, u.SessionCount)
		assert.False(t, u.FirstVisitDate.IsZero())
	}

	assert.Equal(t, 1, out.Count(sink.DatasetDailySummary))
	assert.Equal(t, res.Events, out.Count(sink.DatasetEvents))
	assert.Greater(t, res.Events, 0)
}

func TestRunWritesAlignedDailyLedger(t *testing.T) {
	eng, err := New(testConfig(3), zerolog.Nop())
	require.NoError(t, err)

	out := sink.NewMemory()
	res, err := eng.Run(context.Background(), out)
	require.NoError(t, err)
	require.True(t, res.Completed)

	ledger := out.Records(sink.DatasetDailySummary)
	require.Len(t, ledger, 3)

	sessions, events := 0, 0
	for i, rec := range ledger {
		d := rec.(models.DailySummary)
		assert.Equal(t, i, d.DayIndex)
		assert.LessOrEqual(t, d.NewUsers, d.ActiveUsers)
		assert.GreaterOrEqual(t, d.SessionsCreated, 0)
		sessions += d.SessionsCreated
		events += d.EventsEmitted
	}
	assert.Equal(t, "2025-01-01", ledger[0].(models.DailySummary).Date)
	assert.Equal(t, "2025-01-03", ledger[2].(models.DailySummary).Date)
	assert.Equal(t, res.Sessions, sessions)
	assert.Equal(t, res.Events, events)
}

func TestRunKeepsSystemsInLockstep(t *testing.T) {
	eng, err := New(testConfig(30), zerolog.Nop())
	require.NoError(t, err)

	out := sink.NewMemory()
	res, err := eng.Run(context.Background(), out)
	require.NoError(t, err)
	require.True(t, res.Completed)
	require.NotNil(t, res.Projection)

	p := res.Projection
	assert.Equal(t, p.Customers, p.Subscriptions)
	assert.Equal(t, p.Customers, p.Deals)
	assert.Equal(t, res.Users, p.FunnelStates)

	assert.Equal(t, p.Deals, out.Count(sink.DatasetDeals))
	assert.Equal(t, p.Subscriptions, out.Count(sink.DatasetSubscriptions))
	assert.Equal(t, p.Customers, out.Count(sink.DatasetCustomers))
	assert.Equal(t, res.Users, out.Count(sink.DatasetFunnelStates))
}

func TestRunIsByteIdentical(t *testing.T) {
	run := func() map[string][]byte {
		eng, err := New(testConfig(14), zerolog.Nop())
		require.NoError(t, err)
		out := sink.NewMemory()
		res, err := eng.Run(context.Background(), out)
		require.NoError(t, err)
		require.True(t, res.Completed)

		marshaled := make(map[string][]byte)
		for _, ds := range []string{
			sink.DatasetEvents, sink.DatasetFunnelStates, sink.DatasetLeads,
			sink.DatasetDeals, sink.DatasetActivities, sink.DatasetSubscriptions,
			sink.DatasetDailySummary,
		} {
			data, err := json.Marshal(out.Records(ds))
			require.NoError(t, err)
			marshaled[ds] = data
		}
		return marshaled
	}

	a := run()
	b := run()
	for ds, data := range a {
		assert.Equal(t, data, b[ds], "dataset %s differs between reruns", ds)
	}
}

func TestRunSchedulesReturns(t *testing.T) {
	eng, err := New(testConfig(30), zerolog.Nop())
	require.NoError(t, err)

	out := sink.NewMemory()
	res, err := eng.Run(context.Background(), out)
	require.NoError(t, err)

	// Over a month some users must come back, so sessions outnumber
	// users and at least one user has multiple sessions.
	assert.Greater(t, res.Sessions, res.Users)

	returning := 0
	for _, u := range eng.Registry().All() {
		if u.IsReturning() {
			returning++
		}
	}
	assert.Greater(t, returning, 0)
}

func TestRunEventEnvelope(t *testing.T) {
	eng, err := New(testConfig(1), zerolog.Nop())
	require.NoError(t, err)

	out := sink.NewMemory()
	_, err = eng.Run(context.Background(), out)
	require.NoError(t, err)

	seqByDevice := make(map[string]int64)
	for _, rec := range out.Records(sink.DatasetEvents) {
		ev := rec.(models.Event)

		assert.NotEmpty(t, ev.DeviceID)
		assert.NotEmpty(t, ev.UUID)
		assert.NotEmpty(t, ev.InsertID)
		assert.NotEmpty(t, ev.EventType)
		assert.Equal(t, "amplitude-ts/2.9.2", ev.Library)
		assert.NotZero(t, ev.SessionID)

		// Per-device event ids count up from one with no gaps.
		seqByDevice[ev.DeviceID]++
		assert.Equal(t, seqByDevice[ev.DeviceID], ev.EventID)

		// Fixed ingest skew, never wall-clock.
		assert.NotEqual(t, ev.EventTime, ev.ServerReceivedTime)
		assert.Equal(t, ev.ServerReceivedTime, ev.ServerUploadTime)
	}
}

func TestRunCancellation(t *testing.T) {
	eng, err := New(testConfig(10), zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := eng.Run(ctx, sink.NewMemory())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeRunIncomplete, errors.GetErrorCode(err))
	assert.False(t, res.Completed)
}

func TestNewRejectsBadStartDate(t *testing.T) {
	cfg := testConfig(1)
	cfg.StartDate = "01/01/2025"
	_, err := New(cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestOnDayCallback(t *testing.T) {
	eng, err := New(testConfig(3), zerolog.Nop())
	require.NoError(t, err)

	var days []int
	var dates []string
	eng.OnDay(func(day int, date string, sessions, events int) {
		days = append(days, day)
		dates = append(dates, date)
	})

	_, err = eng.Run(context.Background(), sink.NewMemory())
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, days)
	assert.Equal(t, []string{"2025-01-01", "2025-01-02", "2025-01-03"}, dates)
}
