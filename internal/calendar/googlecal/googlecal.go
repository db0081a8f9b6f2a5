// Package googlecal implements the calendar store on the Google Calendar v3
// API. Credentials are supplied by the caller through client options; this
// package never runs an auth flow itself.
package googlecal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/calendar"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/model"
)

const (
	defaultWriteInterval = 200 * time.Millisecond
	defaultMaxAttempts   = 4
	defaultBaseBackoff   = 500 * time.Millisecond
	defaultMaxInterval   = 8 * time.Second
)

// Options configures the store. CalendarID defaults to "primary".
type Options struct {
	CalendarID    string
	Location      *time.Location
	WriteInterval time.Duration // minimum spacing between event writes
	MaxAttempts   int           // attempts per call on retryable failures
	Logger        zerolog.Logger
}

// Store talks to one Google calendar.
type Store struct {
	svc         *gcal.Service
	calendarID  string
	loc         *time.Location
	writeGate   *rate.Limiter
	maxAttempts int
	log         zerolog.Logger
}

// New builds the service client. Pass option.WithHTTPClient /
// option.WithTokenSource etc. for credentials.
func New(ctx context.Context, opts Options, clientOpts ...option.ClientOption) (*Store, error) {
	svc, err := gcal.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("init calendar client: %w", err)
	}
	if opts.CalendarID == "" {
		opts.CalendarID = "primary"
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.WriteInterval <= 0 {
		opts.WriteInterval = defaultWriteInterval
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	return &Store{
		svc:         svc,
		calendarID:  opts.CalendarID,
		loc:         opts.Location,
		writeGate:   rate.NewLimiter(rate.Every(opts.WriteInterval), 1),
		maxAttempts: opts.MaxAttempts,
		log:         opts.Logger,
	}, nil
}

func (s *Store) ListBusy(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]model.BusyWindow, error) {
	if calendarID == "" {
		calendarID = s.calendarID
	}
	var out []model.BusyWindow
	err := s.retry(ctx, "list busy", func() error {
		out = out[:0]
		call := s.svc.Events.List(calendarID).
			TimeMin(timeMin.Format(time.RFC3339)).
			TimeMax(timeMax.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime")
		return call.Pages(ctx, func(page *gcal.Events) error {
			for _, item := range page.Items {
				// Events marked free do not block scheduling.
				if item.Status == "cancelled" || item.Transparency == "transparent" {
					continue
				}
				if w, ok := windowFromEvent(item, s.loc); ok {
					out = append(out, w)
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, mapErr(err)
	}
	calendar.SortWindows(out)
	return out, nil
}

func (s *Store) CreateEvent(ctx context.Context, req calendar.CreateEventRequest) (model.EventID, error) {
	if err := s.writeGate.Wait(ctx); err != nil {
		return "", err
	}
	body := &gcal.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Start:       &gcal.EventDateTime{DateTime: req.Start.Format(time.RFC3339), TimeZone: s.loc.String()},
		End:         &gcal.EventDateTime{DateTime: req.End.Format(time.RFC3339), TimeZone: s.loc.String()},
		ColorId:     string(req.ColorID),
	}
	var created *gcal.Event
	err := s.retry(ctx, "create event", func() error {
		var err error
		created, err = s.svc.Events.Insert(s.calendarID, body).Context(ctx).Do()
		return err
	})
	if err != nil {
		return "", mapErr(err)
	}
	s.log.Debug().Str("event_id", created.Id).Str("summary", req.Summary).Msg("created remote event")
	return model.EventID(created.Id), nil
}

func (s *Store) UpdateEvent(ctx context.Context, id model.EventID, summary string, colorID model.ColorID) error {
	if err := s.writeGate.Wait(ctx); err != nil {
		return err
	}
	patch := &gcal.Event{Summary: summary, ColorId: string(colorID)}
	err := s.retry(ctx, "update event", func() error {
		_, err := s.svc.Events.Patch(s.calendarID, string(id), patch).Context(ctx).Do()
		return err
	})
	return mapErr(err)
}

func (s *Store) DeleteEvent(ctx context.Context, id model.EventID) error {
	if err := s.writeGate.Wait(ctx); err != nil {
		return err
	}
	err := s.retry(ctx, "delete event", func() error {
		return s.svc.Events.Delete(s.calendarID, string(id)).Context(ctx).Do()
	})
	return mapErr(err)
}

func (s *Store) GetEvent(ctx context.Context, id model.EventID) (*calendar.Event, error) {
	var item *gcal.Event
	err := s.retry(ctx, "get event", func() error {
		var err error
		item, err = s.svc.Events.Get(s.calendarID, string(id)).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, mapErr(err)
	}
	// Cancelled events linger as tombstones in the API; to the scheduler
	// they are gone.
	if item.Status == "cancelled" {
		return nil, fmt.Errorf("%w: event %s is cancelled", model.ErrNotFound, id)
	}
	ev := &calendar.Event{
		ID:          model.EventID(item.Id),
		Summary:     item.Summary,
		Description: item.Description,
		ColorID:     model.ColorID(item.ColorId),
	}
	if w, ok := windowFromEvent(item, s.loc); ok {
		ev.Start, ev.End = w.Start, w.End
	}
	return ev, nil
}

// retry runs fn with exponential backoff on retryable failures.
func (s *Store) retry(ctx context.Context, op string, fn func() error) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = defaultBaseBackoff
	exp.Multiplier = 2
	exp.MaxInterval = defaultMaxInterval
	exp.Reset()

	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !isRetryable(err) || attempt >= s.maxAttempts-1 {
			return err
		}
		wait := exp.NextBackOff()
		s.log.Debug().Str("op", op).Int("attempt", attempt+1).Dur("wait", wait).Err(err).Msg("retrying calendar call")
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests || gerr.Code >= 500
	}
	// Non-HTTP failures are transport-level; worth another attempt.
	return true
}

// mapErr translates API failures into the scheduler's error kinds.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone:
			return fmt.Errorf("%w: remote event", model.ErrNotFound)
		case gerr.Code == http.StatusTooManyRequests || gerr.Code >= 500:
			return fmt.Errorf("%w: %v", model.ErrRemoteUnavailable, err)
		default:
			return err
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", model.ErrRemoteUnavailable, err)
}

func windowFromEvent(item *gcal.Event, loc *time.Location) (model.BusyWindow, bool) {
	if item.Start == nil || item.End == nil {
		return model.BusyWindow{}, false
	}
	if item.Start.DateTime != "" {
		start, err1 := time.Parse(time.RFC3339, item.Start.DateTime)
		end, err2 := time.Parse(time.RFC3339, item.End.DateTime)
		if err1 != nil || err2 != nil {
			return model.BusyWindow{}, false
		}
		return model.BusyWindow{Start: start, End: end}, true
	}
	// Date-only events. The API's end date is exclusive; when present it is
	// already the normalized boundary.
	day, err := model.ParseDate(item.Start.Date)
	if err != nil {
		return model.BusyWindow{}, false
	}
	if item.End.Date != "" {
		if endDay, err := model.ParseDate(item.End.Date); err == nil {
			return model.BusyWindow{Start: day.Time(loc), End: endDay.Time(loc)}, true
		}
	}
	return calendar.AllDayWindow(day, loc), true
}
