// Package calendar defines the remote calendar contracts the scheduler
// depends on, plus the window normalization shared by implementations.
package calendar

import (
	"context"
	"sort"
	"time"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/model"
)

// Event is the scheduler's view of one remote calendar event.
type Event struct {
	ID          model.EventID
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	ColorID     model.ColorID
}

// CreateEventRequest carries everything needed to create a remote event.
// The target calendar is fixed per Store instance; creation never picks a
// calendar dynamically.
type CreateEventRequest struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	ColorID     model.ColorID
}

// BusyLister reports occupied windows. Implementations must return windows
// sorted by start time ascending; conflict detection relies on that order
// for its "first conflict" determinism.
type BusyLister interface {
	ListBusy(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]model.BusyWindow, error)
}

// Store is the full read-write calendar surface. GetEvent reports
// model.ErrNotFound for events that no longer exist; transport failures are
// wrapped in model.ErrRemoteUnavailable so callers can tell the two apart.
type Store interface {
	BusyLister
	CreateEvent(ctx context.Context, req CreateEventRequest) (model.EventID, error)
	UpdateEvent(ctx context.Context, id model.EventID, summary string, colorID model.ColorID) error
	DeleteEvent(ctx context.Context, id model.EventID) error
	GetEvent(ctx context.Context, id model.EventID) (*Event, error)
}

// AllDayWindow normalizes a date-only event into the busy window
// [midnight, start of next day) in loc. Normalization happens here at the
// adapter boundary so the overlap predicate stays pure.
func AllDayWindow(day model.Date, loc *time.Location) model.BusyWindow {
	start := day.Time(loc)
	return model.BusyWindow{Start: start, End: day.AddDays(1).Time(loc)}
}

// SortWindows orders windows by start time ascending, end time as
// tiebreaker.
func SortWindows(ws []model.BusyWindow) {
	sort.Slice(ws, func(i, j int) bool {
		if ws[i].Start.Equal(ws[j].Start) {
			return ws[i].End.Before(ws[j].End)
		}
		return ws[i].Start.Before(ws[j].Start)
	})
}
