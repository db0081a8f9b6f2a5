package schedule

import (
	"time"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/model"
)

const (
	// DefaultStepWhenBusy is the cursor advance used when a probe collides
	// with a busy window that ends too close to be worth jumping to.
	DefaultStepWhenBusy = 15 * time.Minute

	// DefaultSlotCap bounds how many candidates SuggestSlots collects.
	DefaultSlotCap = 5
)

// SlotOptions parameterizes SuggestSlots. SearchEnd is required; there is no
// default horizon.
type SlotOptions struct {
	Duration     time.Duration
	SearchStart  time.Time
	SearchEnd    time.Time
	StepWhenBusy time.Duration // defaults to DefaultStepWhenBusy
	Cap          int           // defaults to DefaultSlotCap
}

// SuggestSlots walks a cursor from SearchStart and collects up to Cap start
// times whose [start, start+Duration) block fits inside the horizon and
// overlaps no busy window. On a free probe the cursor advances by Duration;
// on a conflict it jumps to the conflicting window's end when that clears at
// least StepWhenBusy, otherwise it advances by StepWhenBusy so slots that
// open mid-window are not skipped. Results are ascending. Callers wanting
// more candidates re-invoke with a later SearchStart.
func SuggestSlots(busy []model.BusyWindow, opts SlotOptions) []time.Time {
	step := opts.StepWhenBusy
	if step <= 0 {
		step = DefaultStepWhenBusy
	}
	limit := opts.Cap
	if limit <= 0 {
		limit = DefaultSlotCap
	}
	if opts.Duration <= 0 {
		return nil
	}

	var out []time.Time
	cursor := opts.SearchStart
	for len(out) < limit {
		end := cursor.Add(opts.Duration)
		if end.After(opts.SearchEnd) {
			break
		}
		w, conflicted := FindConflict(cursor, end, busy)
		if !conflicted {
			out = append(out, cursor)
			cursor = end
			continue
		}
		if w.End.Sub(cursor) >= step {
			cursor = w.End
		} else {
			cursor = cursor.Add(step)
		}
	}
	return out
}
