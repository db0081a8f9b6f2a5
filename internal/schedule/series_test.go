package schedule

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/model"
)

func TestNewReviewTableValidation(t *testing.T) {
	cases := []struct {
		name      string
		intervals []model.ReviewInterval
	}{
		{"empty", nil},
		{"zero offset", []model.ReviewInterval{{OffsetDays: 0, Label: "x"}}},
		{"negative offset", []model.ReviewInterval{{OffsetDays: -1, Label: "x"}}},
		{"duplicate offset", []model.ReviewInterval{{OffsetDays: 1, Label: "a"}, {OffsetDays: 1, Label: "b"}}},
		{"not increasing", []model.ReviewInterval{{OffsetDays: 7, Label: "a"}, {OffsetDays: 1, Label: "b"}}},
		{"empty label", []model.ReviewInterval{{OffsetDays: 1, Label: ""}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewReviewTable(tc.intervals)
			if !errors.Is(err, model.ErrInvalidConfig) {
				t.Fatalf("want ErrInvalidConfig, got %v", err)
			}
		})
	}

	if _, err := NewReviewTable(DefaultIntervals); err != nil {
		t.Fatalf("default intervals must validate: %v", err)
	}
}

func TestGenerateSeriesTwoStepTable(t *testing.T) {
	anchor := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	table, err := NewReviewTable([]model.ReviewInterval{{OffsetDays: 1, Label: "Review notes"}, {OffsetDays: 7, Label: "Revise"}})
	if err != nil {
		t.Fatal(err)
	}

	got := GenerateSeries(anchor, time.Hour, table, SeriesOptions{})
	want := []model.ScheduledOccurrence{
		{OffsetDays: 1, Label: "Review notes",
			Start: time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)},
		{OffsetDays: 7, Label: "Revise",
			Start: time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 3, 8, 10, 0, 0, 0, time.UTC)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v\nwant %+v", got, want)
	}

	for _, occ := range got {
		if _, ok := FindConflict(occ.Start, occ.End, nil); ok {
			t.Fatalf("conflict reported on an empty calendar for %+v", occ)
		}
	}
}

func TestGenerateSeriesDeterminism(t *testing.T) {
	anchor := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	table := DefaultReviewTable()
	a := GenerateSeries(anchor, 45*time.Minute, table, SeriesOptions{})
	b := GenerateSeries(anchor, 45*time.Minute, table, SeriesOptions{})
	if !reflect.DeepEqual(a, b) {
		t.Fatal("identical inputs must produce identical series")
	}
	if len(a) != table.Len() {
		t.Fatalf("want %d occurrences, got %d", table.Len(), len(a))
	}
}

func TestGenerateSeriesHorizonPolicies(t *testing.T) {
	anchor := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	table, err := NewReviewTable([]model.ReviewInterval{{OffsetDays: 1, Label: "a"}, {OffsetDays: 7, Label: "b"}, {OffsetDays: 16, Label: "c"}})
	if err != nil {
		t.Fatal(err)
	}
	horizon := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	clamped := GenerateSeries(anchor, time.Hour, table, SeriesOptions{Horizon: &horizon})
	if len(clamped) != 3 {
		t.Fatalf("clamp must keep all occurrences, got %d", len(clamped))
	}
	last := clamped[2]
	if !last.Start.Equal(horizon) {
		t.Fatalf("start not clamped: %v", last.Start)
	}
	if !last.End.Equal(horizon.Add(time.Hour)) {
		t.Fatalf("duration not preserved after clamp: %v", last.End)
	}

	dropped := GenerateSeries(anchor, time.Hour, table, SeriesOptions{Horizon: &horizon, HorizonPolicy: HorizonDrop})
	if len(dropped) != 2 {
		t.Fatalf("drop policy must omit the late occurrence, got %+v", dropped)
	}
}
