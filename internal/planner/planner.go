// Package planner coordinates series generation, conflict detection, the
// session ledger and the remote calendar into the operations the API and
// CLI expose.
package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/calendar"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/clock"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/color"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/ledger"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/metrics"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/model"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/schedule"
)

// CompletedPrefix marks a remote event summary as done. Toggling adds and
// strips it.
const CompletedPrefix = "Completed: "

// Options wires a Planner. Calendar and Ledger are required; everything
// else has a usable default.
type Options struct {
	Calendar   calendar.Store
	ExtraBusy  []calendar.BusyLister // read-only sources, e.g. ICS feeds
	Ledger     *ledger.Ledger
	Colors     color.Policy
	Clock      clock.Clock
	Location   *time.Location
	Table      schedule.ReviewTable
	Logger     zerolog.Logger
	CalendarID string

	SlotStep        time.Duration
	SlotCap         int
	HorizonPolicy   schedule.HorizonPolicy
	DefaultDuration time.Duration
}

// Planner owns one user's scheduling state end to end.
type Planner struct {
	cal        calendar.Store
	extraBusy  []calendar.BusyLister
	led        *ledger.Ledger
	colors     color.Policy
	clk        clock.Clock
	loc        *time.Location
	table      schedule.ReviewTable
	log        zerolog.Logger
	calendarID string

	slotStep        time.Duration
	slotCap         int
	horizonPolicy   schedule.HorizonPolicy
	defaultDuration time.Duration
}

func New(opts Options) (*Planner, error) {
	if opts.Calendar == nil {
		return nil, errors.New("planner: calendar store is required")
	}
	if opts.Ledger == nil {
		return nil, errors.New("planner: ledger is required")
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Table.Len() == 0 {
		opts.Table = schedule.DefaultReviewTable()
	}
	if opts.Colors.Done() == "" {
		opts.Colors = color.DefaultPolicy()
	}
	if opts.SlotStep <= 0 {
		opts.SlotStep = schedule.DefaultStepWhenBusy
	}
	if opts.SlotCap <= 0 {
		opts.SlotCap = schedule.DefaultSlotCap
	}
	if opts.DefaultDuration <= 0 {
		opts.DefaultDuration = time.Hour
	}
	return &Planner{
		cal:             opts.Calendar,
		extraBusy:       opts.ExtraBusy,
		led:             opts.Ledger,
		colors:          opts.Colors,
		clk:             opts.Clock,
		loc:             opts.Location,
		table:           opts.Table,
		log:             opts.Logger,
		calendarID:      opts.CalendarID,
		slotStep:        opts.SlotStep,
		slotCap:         opts.SlotCap,
		horizonPolicy:   opts.HorizonPolicy,
		defaultDuration: opts.DefaultDuration,
	}, nil
}

// PlanRequest describes a review series to place on the calendar.
type PlanRequest struct {
	Subject     string
	Description string
	AnchorStart time.Time
	Duration    time.Duration // zero means the configured default
	Horizon     *time.Time
}

func (r *PlanRequest) normalize(defaultDuration time.Duration) error {
	r.Subject = strings.TrimSpace(r.Subject)
	if r.Subject == "" {
		return fmt.Errorf("%w: subject is required", model.ErrInvalidConfig)
	}
	if r.AnchorStart.IsZero() {
		return fmt.Errorf("%w: anchor start is required", model.ErrInvalidConfig)
	}
	if r.Duration <= 0 {
		r.Duration = defaultDuration
	}
	return nil
}

// OccurrencePlan is one proposed occurrence with its conflict state and,
// when it collides, alternative start times on the same day.
type OccurrencePlan struct {
	Occurrence  model.ScheduledOccurrence `json:"occurrence"`
	Conflict    *model.BusyWindow         `json:"conflict,omitempty"`
	Suggestions []time.Time               `json:"suggestions,omitempty"`
}

// Plan is the dry-run result: what ScheduleSeries would create, with every
// collision surfaced before anything is written.
type Plan struct {
	Subject     string           `json:"subject"`
	Summary     string           `json:"summary"`
	ColorID     model.ColorID    `json:"color_id"`
	Occurrences []OccurrencePlan `json:"occurrences"`
}

// PlanSeries generates the series and checks every occurrence against the
// busy windows of its own day. Nothing is created or persisted.
func (p *Planner) PlanSeries(ctx context.Context, req PlanRequest) (*Plan, error) {
	if err := req.normalize(p.defaultDuration); err != nil {
		return nil, err
	}

	occs := schedule.GenerateSeries(req.AnchorStart, req.Duration, p.table, schedule.SeriesOptions{
		Horizon:       req.Horizon,
		HorizonPolicy: p.horizonPolicy,
	})

	plan := &Plan{
		Subject:     req.Subject,
		Summary:     summaryFor(req.Subject),
		ColorID:     p.colors.ColorFor(req.Subject),
		Occurrences: make([]OccurrencePlan, 0, len(occs)),
	}
	for _, occ := range occs {
		dayStart, dayEnd := p.dayBounds(occ.Start)
		busy, err := p.busyBetween(ctx, dayStart, dayEnd)
		if err != nil {
			return nil, err
		}

		op := OccurrencePlan{Occurrence: occ}
		if w, ok := schedule.FindConflict(occ.Start, occ.End, busy); ok {
			metrics.ConflictsDetected.Inc()
			conflict := w
			op.Conflict = &conflict
			op.Suggestions = schedule.SuggestSlots(busy, schedule.SlotOptions{
				Duration:     req.Duration,
				SearchStart:  occ.Start,
				SearchEnd:    dayEnd,
				StepWhenBusy: p.slotStep,
				Cap:          p.slotCap,
			})
			metrics.SuggestionsServed.Add(float64(len(op.Suggestions)))
		}
		plan.Occurrences = append(plan.Occurrences, op)
	}
	return plan, nil
}

// PartialSeriesCreationError reports a series creation that failed partway.
// Created lists the sub-events that exist remotely (and are already in the
// ledger); Err is the first failure. Rollback is the caller's decision.
type PartialSeriesCreationError struct {
	Created []model.SubEvent
	Err     error
}

func (e *PartialSeriesCreationError) Error() string {
	return fmt.Sprintf("series partly created (%d events placed): %v", len(e.Created), e.Err)
}

func (e *PartialSeriesCreationError) Unwrap() error { return e.Err }

// ScheduleSeries creates each occurrence as an independent remote event and
// records the resulting session. Each create is fallible on its own: a
// failure partway through records the partial session and returns it along
// with a *PartialSeriesCreationError, so the caller can keep the partial
// result or delete the reported ids.
func (p *Planner) ScheduleSeries(ctx context.Context, req PlanRequest) (*model.Session, error) {
	if err := req.normalize(p.defaultDuration); err != nil {
		return nil, err
	}

	occs := schedule.GenerateSeries(req.AnchorStart, req.Duration, p.table, schedule.SeriesOptions{
		Horizon:       req.Horizon,
		HorizonPolicy: p.horizonPolicy,
	})
	summary := summaryFor(req.Subject)
	colorID := p.colors.ColorFor(req.Subject)

	var subs []model.SubEvent
	var createErr error
	for _, occ := range occs {
		id, err := p.cal.CreateEvent(ctx, calendar.CreateEventRequest{
			Summary:     summary,
			Description: req.Description,
			Start:       occ.Start,
			End:         occ.End,
			ColorID:     colorID,
		})
		if err != nil {
			metrics.OccurrenceCreateFailures.Inc()
			p.log.Error().Err(err).Str("subject", req.Subject).Int("offset_days", occ.OffsetDays).Msg("create occurrence failed")
			createErr = err
			break
		}
		subs = append(subs, model.SubEvent{ID: id, Name: occ.Label})
	}

	if len(subs) == 0 {
		return nil, fmt.Errorf("schedule series: %w", createErr)
	}

	session := model.Session{
		ID:        subs[0].ID,
		Title:     summary,
		Date:      model.DateOf(req.AnchorStart.In(p.loc)),
		SubEvents: subs,
	}
	if err := p.led.Append(ctx, session); err != nil {
		return nil, fmt.Errorf("record session: %w", err)
	}
	metrics.SessionsScheduled.Inc()
	p.log.Info().Str("session_id", string(session.ID)).Str("subject", req.Subject).Int("events", len(subs)).Msg("scheduled review series")

	if createErr != nil {
		return &session, &PartialSeriesCreationError{Created: subs, Err: createErr}
	}
	return &session, nil
}

// ToggleCompletion flips a sub-event locally, then mirrors the change to
// the remote event: the summary gains or loses the completed prefix and the
// color flips to the done color or back to the captured original. A
// sub-event whose remote event is already gone still toggles locally; the
// reconciler will collect it later. A mirror failure after the local toggle
// returns the toggle result together with the error.
func (p *Planner) ToggleCompletion(ctx context.Context, sessionID, subEventID model.EventID) (ledger.ToggleResult, error) {
	observed := model.ColorID("")
	remote, err := p.cal.GetEvent(ctx, subEventID)
	switch {
	case err == nil:
		observed = remote.ColorID
	case errors.Is(err, model.ErrNotFound):
		remote = nil
	default:
		return ledger.ToggleResult{}, fmt.Errorf("read remote event: %w", err)
	}

	res, err := p.led.ToggleCompletion(ctx, sessionID, subEventID, observed)
	if err != nil {
		return ledger.ToggleResult{}, err
	}
	if res.Completed {
		metrics.TogglesApplied.WithLabelValues("completed").Inc()
	} else {
		metrics.TogglesApplied.WithLabelValues("reopened").Inc()
	}

	if remote == nil {
		p.log.Warn().Str("sub_event_id", string(subEventID)).Msg("toggled sub-event with no remote event")
		return res, nil
	}

	summary := strings.TrimPrefix(remote.Summary, CompletedPrefix)
	next := p.colors.Fallback()
	if res.Completed {
		summary = CompletedPrefix + summary
		next = p.colors.Done()
	} else if res.RestoreColor != nil {
		next = *res.RestoreColor
	}
	if err := p.cal.UpdateEvent(ctx, subEventID, summary, next); err != nil {
		return res, fmt.Errorf("mirror toggle to remote event: %w", err)
	}
	return res, nil
}

// DeleteSession deletes every remote sub-event, then removes the session
// from the ledger. Remote events that are already gone count as deleted.
// Any other remote failure leaves the session in the ledger so the call can
// be retried.
func (p *Planner) DeleteSession(ctx context.Context, sessionID model.EventID) error {
	session, err := p.led.Session(sessionID)
	if err != nil {
		return err
	}

	var failed []error
	for _, sub := range session.SubEvents {
		err := p.cal.DeleteEvent(ctx, sub.ID)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			failed = append(failed, fmt.Errorf("delete event %s: %w", sub.ID, err))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("session %s kept, remote deletes incomplete: %w", sessionID, errors.Join(failed...))
	}

	if err := p.led.Remove(ctx, sessionID); err != nil {
		return err
	}
	p.log.Info().Str("session_id", string(sessionID)).Int("events", len(session.SubEvents)).Msg("deleted review series")
	return nil
}

// Reconcile aligns the ledger with the remote calendar. Probe errors keep
// the affected entries and surface the error for retry.
func (p *Planner) Reconcile(ctx context.Context) (bool, error) {
	metrics.ReconcileRuns.Inc()

	exists := func(ctx context.Context, id model.EventID) (bool, error) {
		_, err := p.cal.GetEvent(ctx, id)
		if err == nil {
			return true, nil
		}
		if errors.Is(err, model.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	changed, err := p.led.Reconcile(ctx, exists)
	if err != nil {
		metrics.ReconcileErrors.Inc()
	}
	if changed {
		metrics.ReconcileChanges.Inc()
		p.log.Info().Msg("reconciliation pruned stale ledger entries")
	}
	return changed, err
}

// SuggestRequest asks for free start times inside a fixed search window.
type SuggestRequest struct {
	SearchStart time.Time
	SearchEnd   time.Time
	Duration    time.Duration // zero means the configured default
}

// Suggest returns up to the configured cap of conflict-free start times.
func (p *Planner) Suggest(ctx context.Context, req SuggestRequest) ([]time.Time, error) {
	if req.Duration <= 0 {
		req.Duration = p.defaultDuration
	}
	if req.SearchStart.IsZero() || !req.SearchEnd.After(req.SearchStart) {
		return nil, fmt.Errorf("%w: search window must be a non-empty interval", model.ErrInvalidConfig)
	}
	busy, err := p.busyBetween(ctx, req.SearchStart, req.SearchEnd)
	if err != nil {
		return nil, err
	}
	slots := schedule.SuggestSlots(busy, schedule.SlotOptions{
		Duration:     req.Duration,
		SearchStart:  req.SearchStart,
		SearchEnd:    req.SearchEnd,
		StepWhenBusy: p.slotStep,
		Cap:          p.slotCap,
	})
	metrics.SuggestionsServed.Add(float64(len(slots)))
	return slots, nil
}

// Session returns one ledger session.
func (p *Planner) Session(id model.EventID) (model.Session, error) {
	return p.led.Session(id)
}

// Sessions returns all ledger sessions.
func (p *Planner) Sessions() []model.Session {
	return p.led.Sessions()
}

// Progress reports the completed fraction of one session.
func (p *Planner) Progress(sessionID model.EventID) (float64, error) {
	session, err := p.led.Session(sessionID)
	if err != nil {
		return 0, err
	}
	return ledger.Progress(session), nil
}

// Streak reports the run of consecutive days ending today that have at
// least one completion, evaluated in the configured timezone.
func (p *Planner) Streak() int {
	today := model.DateOf(p.clk.Now().In(p.loc))
	return ledger.Streak(p.led.Snapshot().CompletedMarks, today, p.loc)
}

// MarkMissed records a missed occurrence. Miss detection is caller-driven;
// nothing here infers misses from the clock.
func (p *Planner) MarkMissed(ctx context.Context, id model.EventID) error {
	return p.led.MarkMissed(ctx, id)
}

func (p *Planner) dayBounds(t time.Time) (time.Time, time.Time) {
	day := model.DateOf(t.In(p.loc))
	return day.Time(p.loc), day.AddDays(1).Time(p.loc)
}

// busyBetween merges the writable calendar's busy windows with every extra
// read-only source. Any source failing fails the whole listing; suggestions
// are never computed from partial busy data.
func (p *Planner) busyBetween(ctx context.Context, timeMin, timeMax time.Time) ([]model.BusyWindow, error) {
	busy, err := p.cal.ListBusy(ctx, p.calendarID, timeMin, timeMax)
	if err != nil {
		return nil, fmt.Errorf("list busy windows: %w", err)
	}
	for _, src := range p.extraBusy {
		more, err := src.ListBusy(ctx, p.calendarID, timeMin, timeMax)
		if err != nil {
			return nil, fmt.Errorf("list busy windows: %w", err)
		}
		busy = append(busy, more...)
	}
	calendar.SortWindows(busy)
	return busy, nil
}

func summaryFor(subject string) string {
	return subject + " - Review"
}
