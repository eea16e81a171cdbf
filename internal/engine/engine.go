// Package engine runs the day loop: mint the day's new visitors, replay
// scheduled returns, turn every visit into events, and close the run
// with the cross-system projection. Generation is single-threaded on
// purpose; determinism comes from the per-entity stream factory, so a
// fixed seed reproduces the output byte for byte.
package engine

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"funnelforge/internal/identity"
	"funnelforge/internal/metrics"
	"funnelforge/internal/project"
	"funnelforge/internal/rng"
	"funnelforge/internal/schedule"
	"funnelforge/internal/session"
	"funnelforge/internal/sink"
	"funnelforge/pkg/errors"
	"funnelforge/pkg/models"
)

// Result reports what a run produced. Completed is false when the run
// stopped early; output written so far must not be treated as a full
// dataset.
type Result struct {
	Completed bool

	Days     int
	Users    int
	Sessions int
	Events   int

	Projection *project.Summary
}

// Engine orchestrates one generation run.
type Engine struct {
	cfg  models.Generation
	rngs rng.Factory
	log  zerolog.Logger

	model     *metrics.Model
	sessions  *session.Generator
	scheduler *schedule.Scheduler
	registry  *identity.Registry

	// returns queues users due to come back, keyed by date.
	returns map[string][]*identity.UserState

	uuids    *rand.Rand
	devices  *rand.Rand
	eventSeq map[string]int64

	onDay func(day int, date string, sessions, events int)
}

// New wires an engine for the given generation config.
func New(cfg models.Generation, log zerolog.Logger) (*Engine, error) {
	start, err := cfg.Start()
	if err != nil {
		return nil, err
	}

	rngs := rng.New(cfg.Seed)
	return &Engine{
		cfg:  cfg,
		rngs: rngs,
		log:  log,

		model:     metrics.NewModel(cfg, rngs),
		sessions:  session.NewGenerator(rngs),
		scheduler: schedule.NewScheduler(start, cfg.Days),
		registry:  identity.NewRegistry(),

		returns:  make(map[string][]*identity.UserState),
		uuids:    rngs.Stream("uuids"),
		devices:  rngs.Stream("devices"),
		eventSeq: make(map[string]int64),
	}, nil
}

// OnDay registers a callback invoked after each completed day with the
// run's running totals. Used by the CLI progress bar.
func (e *Engine) OnDay(fn func(day int, date string, sessions, events int)) {
	e.onDay = fn
}

// Registry exposes the user store, read-only by convention. Populated
// as the run progresses.
func (e *Engine) Registry() *identity.Registry {
	return e.registry
}

// Run executes the full horizon and the closing projection, writing
// every dataset to the sink.
func (e *Engine) Run(ctx context.Context, out sink.Sink) (*Result, error) {
	start, err := e.cfg.Start()
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Int64("seed", e.cfg.Seed).
		Str("start", e.cfg.StartDate).
		Int("days", e.cfg.Days).
		Msg("starting generation run")

	res := &Result{}

	for day := 0; day < e.cfg.Days; day++ {
		select {
		case <-ctx.Done():
			return res, errors.Wrap(ctx.Err(), errors.ErrCodeRunIncomplete, "generation cancelled").
				WithContext("day", day)
		default:
		}

		date := start.AddDate(0, 0, day)
		summary, err := e.runDay(day, date, out)
		if err != nil {
			return res, err
		}

		if err := out.Write(sink.DatasetDailySummary, summary); err != nil {
			return res, err
		}

		res.Days++
		res.Sessions += summary.SessionsCreated
		res.Events += summary.EventsEmitted

		if e.onDay != nil {
			e.onDay(day+1, summary.Date, res.Sessions, res.Events)
		}

		if (day+1)%30 == 0 {
			e.log.Debug().
				Int("day", day+1).
				Int("users", e.registry.Len()).
				Int("events", res.Events).
				Msg("generation progress")
		}
	}

	res.Users = e.registry.Len()

	horizon := e.scheduler.Horizon()
	projector := project.NewProjector(e.rngs, e.sessions.PersonaFor, horizon)
	projection, err := projector.Project(e.registry, out)
	if err != nil {
		return res, err
	}
	res.Projection = projection
	res.Completed = true

	e.log.Info().
		Int("users", res.Users).
		Int("sessions", res.Sessions).
		Int("events", res.Events).
		Int("deals", projection.Deals).
		Int("subscriptions", projection.Subscriptions).
		Msg("generation run complete")

	return res, nil
}

func (e *Engine) runDay(day int, date time.Time, out sink.Sink) (models.DailySummary, error) {
	daily := e.model.Daily(day)
	summary := models.DailySummary{
		Date:     date.Format("2006-01-02"),
		DayIndex: day,

		ActiveUsers:     daily.ActiveUsers,
		NewUsers:        daily.NewUsers,
		Sessions:        daily.Sessions,
		Transactions:    daily.Transactions,
		Revenue:         daily.Revenue,
		LeadUsers:       daily.LeadUsers,
		IdentifiedLeads: daily.IdentifiedLeads,
		PayingLeads:     daily.PayingLeads,
	}

	// New visitors for the day.
	newUsers := int(float64(daily.NewUsers) * e.cfg.SessionCreationRate)
	for i := 0; i < newUsers; i++ {
		deviceID, err := e.mintDeviceID()
		if err != nil {
			return summary, err
		}
		u := identity.NewUserState(deviceID, date)
		if !e.registry.Add(u) {
			return summary, errors.New(errors.ErrCodeGeneration, "duplicate device id minted").
				WithContext("device_id", deviceID)
		}
		if err := e.runSession(u, date, out, &summary); err != nil {
			return summary, err
		}
	}

	// Scheduled returns.
	due := e.returns[date.Format("2006-01-02")]
	delete(e.returns, date.Format("2006-01-02"))
	for _, u := range due {
		u.ScheduledReturnDate = time.Time{}
		summary.ReturningUsers++
		if err := e.runSession(u, date, out, &summary); err != nil {
			return summary, err
		}
	}

	return summary, nil
}

func (e *Engine) runSession(u *identity.UserState, date time.Time, out sink.Sink, summary *models.DailySummary) error {
	s, err := e.sessions.Generate(u, date)
	if err != nil {
		return err
	}
	summary.SessionsCreated++
	if s.FormFill {
		summary.FormFills++
	}
	if s.Converted {
		summary.Conversions++
	}

	persona := e.sessions.PersonaFor(u.DeviceID)
	for _, step := range s.Steps {
		ev, err := e.buildEvent(u, persona, s, step)
		if err != nil {
			return err
		}
		if err := out.Write(sink.DatasetEvents, ev); err != nil {
			return err
		}
		summary.EventsEmitted++
	}

	booked, err := e.scheduler.MaybeScheduleReturn(u, date, e.rngs.ForReturn(u.DeviceID, u.SessionCount))
	if err != nil {
		return err
	}
	if booked {
		key := u.ScheduledReturnDate.Format("2006-01-02")
		e.returns[key] = append(e.returns[key], u)
	}
	return nil
}

// Export timestamp format used by the reference event schema.
const eventTimeLayout = "2006-01-02 15:04:05.000000"

func (e *Engine) buildEvent(u *identity.UserState, persona session.Persona, s *session.Session, step session.Step) (models.Event, error) {
	id, err := uuid.NewRandomFromReader(e.uuids)
	if err != nil {
		return models.Event{}, errors.Wrap(err, errors.ErrCodeGeneration, "failed to mint event uuid")
	}
	insertID, err := uuid.NewRandomFromReader(e.uuids)
	if err != nil {
		return models.Event{}, errors.Wrap(err, errors.ErrCodeGeneration, "failed to mint insert id")
	}

	e.eventSeq[u.DeviceID]++

	clientTime := step.At
	uploadTime := clientTime.Add(1 * time.Second)
	serverTime := clientTime.Add(2 * time.Second)

	ev := models.Event{
		ServerReceivedTime: serverTime.Format(eventTimeLayout),
		EventTime:          clientTime.Format(eventTimeLayout),
		ProcessedTime:      serverTime.Format(eventTimeLayout),
		ClientUploadTime:   uploadTime.Format(eventTimeLayout),
		ClientEventTime:    clientTime.Format(eventTimeLayout),
		ServerUploadTime:   serverTime.Format(eventTimeLayout),

		UserID:      u.UserID,
		DeviceID:    u.DeviceID,
		UUID:        id.String(),
		AmplitudeID: int64(e.rngs.HashKey("amplitude", u.DeviceID) % 1_000_000_000),
		SessionID:   s.ID,
		EventID:     e.eventSeq[u.DeviceID],
		InsertID:    insertID.String(),

		EventType:    step.Type,
		App:          1000,
		VersionName:  "1.0.0",
		StartVersion: "1.0.0",

		Platform:      persona.Device.Type,
		OSName:        persona.Device.OS,
		OSVersion:     persona.Device.Version,
		DeviceType:    persona.Device.Type,
		DeviceFamily:  persona.Device.Family,
		DeviceCarrier: persona.Device.Carrier,

		Country:     persona.Geo.Country,
		Region:      persona.Region,
		City:        persona.City,
		LocationLat: persona.Lat,
		LocationLng: persona.Lng,

		IPAddress: persona.IP,
		Library:   "amplitude-ts/2.9.2",
		Language:  persona.Language,

		Paying: u.ConvertedToPaid,

		EventProperties: models.EventProperties{
			Source:         s.Source.Source,
			Medium:         s.Source.Medium,
			EngagementTier: string(s.Tier),

			FormType:      step.FormType,
			TrialPath:     step.TrialPath,
			ProductSKU:    step.ProductSKU,
			ConversionDay: step.ConversionDay,
		},
		UserProperties: models.UserProperties{
			UserType:       userType(u),
			EngagementTier: string(u.EngagementTier),
			TotalSessions:  u.SessionCount,
			IsReturning:    u.IsReturning(),
			LifecycleStage: u.LifecycleStage.String(),
		},
	}

	if s.Campaign != nil {
		ev.EventProperties.CampaignName = s.Campaign.Name
		ev.EventProperties.CampaignID = s.Campaign.ID
		ev.EventProperties.CampaignType = s.Campaign.Type
	}

	return ev, nil
}

func (e *Engine) mintDeviceID() (string, error) {
	id, err := uuid.NewRandomFromReader(e.devices)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeGeneration, "failed to mint device id")
	}
	return id.String(), nil
}

func userType(u *identity.UserState) string {
	if u.IsIdentified {
		return "identified"
	}
	return "anonymous"
}
