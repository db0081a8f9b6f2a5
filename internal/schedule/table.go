package schedule

import (
	"fmt"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/model"
)

// DefaultIntervals is the built-in review cadence: day offsets from the
// anchor study session, each with the action expected of the student.
var DefaultIntervals = []model.ReviewInterval{
	{OffsetDays: 1, Label: "Review notes"},
	{OffsetDays: 7, Label: "Revise"},
	{OffsetDays: 16, Label: "Deep review"},
	{OffsetDays: 35, Label: "Practice recall"},
	{OffsetDays: 90, Label: "Consolidate"},
	{OffsetDays: 180, Label: "Refresh"},
	{OffsetDays: 365, Label: "Final review"},
}

// ReviewTable is a validated review cadence. The zero value is unusable;
// construct through NewReviewTable or DefaultReviewTable.
type ReviewTable struct {
	intervals []model.ReviewInterval
}

// NewReviewTable validates and copies the given intervals. Offsets must be
// positive, strictly increasing and unique; labels must be non-empty.
// Malformed tables are rejected here, eagerly, never deep inside a
// generation loop.
func NewReviewTable(intervals []model.ReviewInterval) (ReviewTable, error) {
	if len(intervals) == 0 {
		return ReviewTable{}, fmt.Errorf("%w: review table is empty", model.ErrInvalidConfig)
	}
	prev := 0
	for i, iv := range intervals {
		if iv.OffsetDays <= prev {
			return ReviewTable{}, fmt.Errorf("%w: offsets must be positive and strictly increasing, got %d at index %d",
				model.ErrInvalidConfig, iv.OffsetDays, i)
		}
		if iv.Label == "" {
			return ReviewTable{}, fmt.Errorf("%w: interval at offset %d has an empty label",
				model.ErrInvalidConfig, iv.OffsetDays)
		}
		prev = iv.OffsetDays
	}
	return ReviewTable{intervals: append([]model.ReviewInterval(nil), intervals...)}, nil
}

// DefaultReviewTable returns the table built from DefaultIntervals.
func DefaultReviewTable() ReviewTable {
	t, err := NewReviewTable(DefaultIntervals)
	if err != nil {
		panic(err) // DefaultIntervals is a compile-time constant table
	}
	return t
}

// Intervals returns a copy of the table rows in ascending offset order.
func (t ReviewTable) Intervals() []model.ReviewInterval {
	return append([]model.ReviewInterval(nil), t.intervals...)
}

// Len reports the number of rows.
func (t ReviewTable) Len() int { return len(t.intervals) }
