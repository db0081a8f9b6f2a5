package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateJSON(t *testing.T) {
	d := Date{2026, time.March, 5}
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2026-03-05"` {
		t.Fatalf("got %s", b)
	}
	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d) {
		t.Fatalf("round trip: %v != %v", back, d)
	}
	if err := json.Unmarshal([]byte(`"05/03/2026"`), &back); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
}

func TestDateArithmetic(t *testing.T) {
	d := Date{2026, time.January, 31}
	if got := d.AddDays(1); !got.Equal(Date{2026, time.February, 1}) {
		t.Fatalf("AddDays over month end: %v", got)
	}
	if got := d.AddDays(-31); !got.Equal(Date{2025, time.December, 31}) {
		t.Fatalf("AddDays across year: %v", got)
	}
	if !(Date{2026, time.January, 2}).After(Date{2026, time.January, 1}) {
		t.Fatal("After")
	}
	if !(Date{2025, time.December, 31}).Before(Date{2026, time.January, 1}) {
		t.Fatal("Before across year")
	}
}

func TestDateOfUsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Colombo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 20:00 UTC on Jan 1 is already Jan 2 in Colombo (+05:30).
	utc := time.Date(2026, 1, 1, 20, 0, 0, 0, time.UTC)
	if got := DateOf(utc.In(loc)); !got.Equal(Date{2026, time.January, 2}) {
		t.Fatalf("DateOf in Colombo: %v", got)
	}
	if got := DateOf(utc); !got.Equal(Date{2026, time.January, 1}) {
		t.Fatalf("DateOf in UTC: %v", got)
	}
}
