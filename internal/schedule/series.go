package schedule

import (
	"time"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/model"
)

// HorizonPolicy decides what happens to occurrences computed past the
// horizon cap.
type HorizonPolicy int

const (
	// HorizonClamp moves a too-late occurrence's start back to the cap,
	// preserving its duration.
	HorizonClamp HorizonPolicy = iota
	// HorizonDrop omits too-late occurrences from the series.
	HorizonDrop
)

// SeriesOptions controls series generation. A nil Horizon means no cutoff.
type SeriesOptions struct {
	Horizon       *time.Time
	HorizonPolicy HorizonPolicy
}

// GenerateSeries computes one occurrence per table row: start is anchorStart
// plus the row's day offset, end is start plus duration. Occurrences starting
// past opts.Horizon are clamped to it or dropped per opts.HorizonPolicy. The
// function is pure: identical inputs yield identical output, making the
// planning step safe to re-run before any remote side effect.
func GenerateSeries(anchorStart time.Time, duration time.Duration, table ReviewTable, opts SeriesOptions) []model.ScheduledOccurrence {
	out := make([]model.ScheduledOccurrence, 0, len(table.intervals))
	for _, iv := range table.intervals {
		start := anchorStart.AddDate(0, 0, iv.OffsetDays)
		if opts.Horizon != nil && start.After(*opts.Horizon) {
			if opts.HorizonPolicy == HorizonDrop {
				continue
			}
			start = *opts.Horizon
		}
		out = append(out, model.ScheduledOccurrence{
			OffsetDays: iv.OffsetDays,
			Label:      iv.Label,
			Start:      start,
			End:        start.Add(duration),
		})
	}
	return out
}
