// Package ledger owns the persisted record of scheduled sessions, completion
// marks and missed marks, and reconciles it against the remote calendar.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/clock"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/model"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/store"
)

// Ledger is the single writer over the persisted session record. All
// mutations run under one lock and flush through the store before the
// in-memory state advances, so a crash loses at most the in-flight
// operation and the prior state is otherwise retained.
type Ledger struct {
	mu  sync.Mutex
	st  store.Store
	clk clock.Clock
	led model.Ledger
}

// Open loads the persisted ledger through st. A store with no prior state
// yields an empty ledger.
func Open(ctx context.Context, st store.Store, clk clock.Clock) (*Ledger, error) {
	led, err := st.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &Ledger{st: st, clk: clk, led: led}, nil
}

// commit persists next and only then replaces the in-memory state.
func (l *Ledger) commit(ctx context.Context, next model.Ledger) error {
	if err := l.st.Save(ctx, next); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	l.led = next
	return nil
}

// Append records a newly created session.
func (l *Ledger) Append(ctx context.Context, s model.Session) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.led.Session(s.ID) != nil {
		return fmt.Errorf("%w: session %s", model.ErrDuplicateSession, s.ID)
	}
	next := l.led.Clone()
	next.CreatedSessions = append(next.CreatedSessions, s)
	return l.commit(ctx, next)
}

// ToggleResult carries what the caller needs to mirror a toggle onto the
// remote event.
type ToggleResult struct {
	Completed    bool
	RestoreColor *model.ColorID // set when un-completing and an original color was captured
}

// ToggleCompletion flips the completed flag of the named sub-event.
//
// observed is the sub-event's current remote color. It is consulted only on
// a completing toggle that finds no captured original color: that first
// observation becomes OriginalColorID and is never overwritten afterwards.
// An empty observation (remote event unreadable or gone) captures nothing.
// Completing appends a completed mark; un-completing withdraws marks for the
// sub-event, so toggling twice restores the prior record exactly.
func (l *Ledger) ToggleCompletion(ctx context.Context, sessionID, subEventID model.EventID, observed model.ColorID) (ToggleResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.led.Clone()
	sess := next.Session(sessionID)
	if sess == nil {
		return ToggleResult{}, fmt.Errorf("%w: session %s", model.ErrNotFound, sessionID)
	}
	var se *model.SubEvent
	for i := range sess.SubEvents {
		if sess.SubEvents[i].ID == subEventID {
			se = &sess.SubEvents[i]
			break
		}
	}
	if se == nil {
		return ToggleResult{}, fmt.Errorf("%w: sub-event %s in session %s", model.ErrNotFound, subEventID, sessionID)
	}

	se.Completed = !se.Completed
	if se.Completed {
		if se.OriginalColorID == nil && observed != "" {
			c := observed
			se.OriginalColorID = &c
		}
		next.CompletedMarks = append(next.CompletedMarks, model.Mark{ID: se.ID, Timestamp: l.clk.Now()})
	} else {
		next.CompletedMarks = withoutMarks(next.CompletedMarks, se.ID)
	}

	res := ToggleResult{Completed: se.Completed}
	if !se.Completed && se.OriginalColorID != nil {
		c := *se.OriginalColorID
		res.RestoreColor = &c
	}
	if err := l.commit(ctx, next); err != nil {
		return ToggleResult{}, err
	}
	return res, nil
}

// Remove drops a session from the ledger. Call it only after the session's
// remote sub-events have been deleted (or their deletion accepted as
// best-effort).
func (l *Ledger) Remove(ctx context.Context, sessionID model.EventID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.led.Clone()
	idx := -1
	for i := range next.CreatedSessions {
		if next.CreatedSessions[i].ID == sessionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: session %s", model.ErrNotFound, sessionID)
	}
	next.CreatedSessions = append(next.CreatedSessions[:idx], next.CreatedSessions[idx+1:]...)
	return l.commit(ctx, next)
}

// MarkMissed records that the review behind id was not done. Whether and
// when to call this is caller policy; nothing here detects misses.
func (l *Ledger) MarkMissed(ctx context.Context, id model.EventID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.led.Clone()
	next.MissedMarks = append(next.MissedMarks, model.Mark{ID: id, Timestamp: l.clk.Now()})
	return l.commit(ctx, next)
}

// Session returns a copy of the named session.
func (l *Ledger) Session(id model.EventID) (model.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.led.Session(id)
	if s == nil {
		return model.Session{}, fmt.Errorf("%w: session %s", model.ErrNotFound, id)
	}
	return cloneSession(*s), nil
}

// Sessions returns copies of all tracked sessions in creation order.
func (l *Ledger) Sessions() []model.Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.led.Clone().CreatedSessions
}

// Snapshot returns a deep copy of the full ledger state.
func (l *Ledger) Snapshot() model.Ledger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.led.Clone()
}

// Reconcile aligns the ledger with remote existence as reported by exists,
// persisting the result when anything changed. The returned error aggregates
// per-id probe failures; entries behind failed probes are retained.
func (l *Ledger) Reconcile(ctx context.Context, exists ExistsFunc) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next, changed, probeErr := Reconcile(ctx, l.led, exists)
	if !changed {
		return false, probeErr
	}
	if err := l.commit(ctx, next); err != nil {
		return false, errors.Join(probeErr, err)
	}
	return true, probeErr
}

func withoutMarks(marks []model.Mark, id model.EventID) []model.Mark {
	out := marks[:0]
	for _, m := range marks {
		if m.ID != id {
			out = append(out, m)
		}
	}
	return out
}

func cloneSession(s model.Session) model.Session {
	cp := s
	cp.SubEvents = make([]model.SubEvent, len(s.SubEvents))
	for i, se := range s.SubEvents {
		if se.OriginalColorID != nil {
			c := *se.OriginalColorID
			se.OriginalColorID = &c
		}
		cp.SubEvents[i] = se
	}
	return cp
}
