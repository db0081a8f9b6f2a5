// Package devcal is an in-memory calendar store for development mode and
// tests. It behaves like a single remote calendar: created events become
// busy windows, ids are minted on create, lookups of deleted events fail
// with model.ErrNotFound.
package devcal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/calendar"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/model"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/schedule"
)

type Store struct {
	mu     sync.Mutex
	events map[model.EventID]calendar.Event
	order  []model.EventID
	seeded []model.BusyWindow
}

func New() *Store {
	return &Store{events: make(map[model.EventID]calendar.Event)}
}

// SeedBusy adds externally owned busy windows, e.g. fixture meetings.
func (s *Store) SeedBusy(ws ...model.BusyWindow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seeded = append(s.seeded, ws...)
}

func (s *Store) ListBusy(_ context.Context, _ string, timeMin, timeMax time.Time) ([]model.BusyWindow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.BusyWindow
	for _, w := range s.seeded {
		if schedule.Overlaps(w.Start, w.End, timeMin, timeMax) {
			out = append(out, w)
		}
	}
	for _, id := range s.order {
		ev, ok := s.events[id]
		if !ok {
			continue
		}
		if schedule.Overlaps(ev.Start, ev.End, timeMin, timeMax) {
			out = append(out, model.BusyWindow{Start: ev.Start, End: ev.End})
		}
	}
	calendar.SortWindows(out)
	return out, nil
}

func (s *Store) CreateEvent(_ context.Context, req calendar.CreateEventRequest) (model.EventID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := model.EventID(uuid.New().String())
	s.events[id] = calendar.Event{
		ID:          id,
		Summary:     req.Summary,
		Description: req.Description,
		Start:       req.Start,
		End:         req.End,
		ColorID:     req.ColorID,
	}
	s.order = append(s.order, id)
	return id, nil
}

func (s *Store) UpdateEvent(_ context.Context, id model.EventID, summary string, colorID model.ColorID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[id]
	if !ok {
		return fmt.Errorf("%w: event %s", model.ErrNotFound, id)
	}
	ev.Summary = summary
	ev.ColorID = colorID
	s.events[id] = ev
	return nil
}

func (s *Store) DeleteEvent(_ context.Context, id model.EventID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return fmt.Errorf("%w: event %s", model.ErrNotFound, id)
	}
	delete(s.events, id)
	return nil
}

func (s *Store) GetEvent(_ context.Context, id model.EventID) (*calendar.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[id]
	if !ok {
		return nil, fmt.Errorf("%w: event %s", model.ErrNotFound, id)
	}
	cp := ev
	return &cp, nil
}

// Events returns all live events in creation order, for assertions.
func (s *Store) Events() []calendar.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]calendar.Event, 0, len(s.events))
	for _, id := range s.order {
		if ev, ok := s.events[id]; ok {
			out = append(out, ev)
		}
	}
	return out
}
