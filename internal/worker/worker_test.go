package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/calendar/devcal"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/clock"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/ledger"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/model"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/planner"
)

type memStore struct {
	led model.Ledger
}

func (m *memStore) Load(context.Context) (model.Ledger, error) { return m.led.Clone(), nil }

func (m *memStore) Save(_ context.Context, led model.Ledger) error {
	m.led = led.Clone()
	return nil
}

func newTestPlanner(t *testing.T, cal *devcal.Store) *planner.Planner {
	t.Helper()

	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	led, err := ledger.Open(context.Background(), &memStore{}, clock.Fixed{T: now})
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	p, err := planner.New(planner.Options{
		Calendar: cal,
		Ledger:   led,
		Clock:    clock.Fixed{T: now},
		Location: time.UTC,
	})
	if err != nil {
		t.Fatalf("new planner: %v", err)
	}
	return p
}

func TestNewReconcilerValidatesSchedule(t *testing.T) {
	p := newTestPlanner(t, devcal.New())

	if _, err := NewReconciler(p, Config{}, zerolog.Nop()); err != nil {
		t.Fatalf("empty schedule should use default: %v", err)
	}
	if _, err := NewReconciler(p, Config{Schedule: "*/5 * * * *"}, zerolog.Nop()); err != nil {
		t.Fatalf("valid schedule rejected: %v", err)
	}
	if _, err := NewReconciler(p, Config{Schedule: "every so often"}, zerolog.Nop()); err == nil {
		t.Fatal("expected error for bogus schedule")
	}
}

func TestReconcileOnceDropsDeletedEvents(t *testing.T) {
	ctx := context.Background()
	cal := devcal.New()
	p := newTestPlanner(t, cal)

	session, err := p.ScheduleSeries(ctx, planner.PlanRequest{
		Subject:     "Physics",
		AnchorStart: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		Duration:    time.Hour,
	})
	if err != nil {
		t.Fatalf("schedule series: %v", err)
	}
	if err := cal.DeleteEvent(ctx, session.SubEvents[0].ID); err != nil {
		t.Fatalf("delete remote event: %v", err)
	}

	r, err := NewReconciler(p, Config{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new reconciler: %v", err)
	}
	r.ReconcileOnce(ctx)

	got, err := p.Session(session.ID)
	if err != nil {
		t.Fatalf("session after reconcile: %v", err)
	}
	if len(got.SubEvents) != len(session.SubEvents)-1 {
		t.Fatalf("want %d sub-events after reconcile, got %d", len(session.SubEvents)-1, len(got.SubEvents))
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	p := newTestPlanner(t, devcal.New())
	r, err := NewReconciler(p, Config{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new reconciler: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("want context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
