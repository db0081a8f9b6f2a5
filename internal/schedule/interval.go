// Package schedule holds the pure scheduling core: interval overlap
// predicates, conflict detection against busy windows, free-slot search and
// spaced-repetition series generation. Nothing here performs I/O or touches
// shared state; callers may invoke these functions concurrently.
package schedule

import (
	"time"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/model"
)

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share any instant. Touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// FindConflict returns the first busy window overlapping [start, end),
// scanning in the supplied order. Remote stores return windows sorted by
// start time, so the hit is the earliest-starting conflict.
func FindConflict(start, end time.Time, busy []model.BusyWindow) (model.BusyWindow, bool) {
	for _, w := range busy {
		if Overlaps(start, end, w.Start, w.End) {
			return w, true
		}
	}
	return model.BusyWindow{}, false
}

// FindAllConflicts returns every busy window overlapping [start, end), in
// the supplied order. Intended for diagnostic display; FindConflict is the
// form that gates scheduling decisions.
func FindAllConflicts(start, end time.Time, busy []model.BusyWindow) []model.BusyWindow {
	var out []model.BusyWindow
	for _, w := range busy {
		if Overlaps(start, end, w.Start, w.End) {
			out = append(out, w)
		}
	}
	return out
}
