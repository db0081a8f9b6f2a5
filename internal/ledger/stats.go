package ledger

import (
	"time"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/model"
)

// Progress returns the completed fraction of a session's sub-events, in
// [0, 1]. A session with no sub-events reports 0.
func Progress(s model.Session) float64 {
	if len(s.SubEvents) == 0 {
		return 0
	}
	done := 0
	for _, se := range s.SubEvents {
		if se.Completed {
			done++
		}
	}
	return float64(done) / float64(len(s.SubEvents))
}

// Streak counts consecutive days ending at today with at least one
// completion mark. Several marks on the same day count once; the first day
// without a mark breaks the chain. Mark timestamps are interpreted in loc
// (UTC when nil) since "same day" depends on the user's zone.
func Streak(marks []model.Mark, today model.Date, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	seen := make(map[model.Date]bool, len(marks))
	for _, m := range marks {
		seen[model.DateOf(m.Timestamp.In(loc))] = true
	}
	streak := 0
	for day := today; seen[day]; day = day.AddDays(-1) {
		streak++
	}
	return streak
}
