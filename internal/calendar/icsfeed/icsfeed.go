// Package icsfeed turns subscribed ICS feeds into busy windows. Feeds are
// read-only: they contribute to conflict detection and slot suggestion but
// never receive writes.
package icsfeed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/teambition/rrule-go"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/calendar"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/model"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/schedule"
)

const (
	defaultTimeout = 15 * time.Second

	// Bounds expansion of pathological recurrence rules.
	maxOccurrencesPerEvent = 1000
)

// Options configures a Feed.
type Options struct {
	// Location anchors date-only values that carry no timezone of their own.
	// Defaults to UTC.
	Location *time.Location
	Timeout  time.Duration
	Logger   zerolog.Logger
}

// Feed lists busy windows from one or more ICS URLs.
type Feed struct {
	urls   []string
	client *resty.Client
	loc    *time.Location
	log    zerolog.Logger
}

// New builds a Feed over the given URLs.
func New(urls []string, opts Options) *Feed {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Feed{
		urls:   urls,
		client: resty.New().SetTimeout(opts.Timeout),
		loc:    opts.Location,
		log:    opts.Logger,
	}
}

// ListBusy fetches every feed and expands its events into busy windows
// inside [timeMin, timeMax). The calendarID argument is ignored; the feed
// set is fixed at construction. Any feed failure fails the whole listing;
// partial busy data is never returned.
func (f *Feed) ListBusy(ctx context.Context, _ string, timeMin, timeMax time.Time) ([]model.BusyWindow, error) {
	var out []model.BusyWindow
	for _, url := range f.urls {
		body, err := f.fetch(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("%w: ics feed: %v", model.ErrRemoteUnavailable, err)
		}
		events, err := parseFeed(body, f.loc)
		if err != nil {
			return nil, fmt.Errorf("parse ics feed: %w", err)
		}
		windows := expandAll(events, timeMin, timeMax)
		f.log.Debug().Int("events", len(events)).Int("windows", len(windows)).Msg("expanded ics feed")
		out = append(out, windows...)
	}
	calendar.SortWindows(out)
	return out, nil
}

func (f *Feed) fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch returned %s", resp.Status())
	}
	if len(resp.Body()) == 0 {
		return nil, errors.New("empty feed body")
	}
	return resp.Body(), nil
}

// feedEvent is one VEVENT, normalized enough to expand.
type feedEvent struct {
	uid        string
	start      time.Time
	end        time.Time
	allDay     bool
	rawRRule   string
	exDates    []time.Time
	recurrence *time.Time // RECURRENCE-ID when this VEVENT overrides an instance
}

func parseFeed(body []byte, loc *time.Location) ([]feedEvent, error) {
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	var events []feedEvent
	for _, ve := range cal.Events() {
		ev, ok := parseVEvent(ve, loc)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseVEvent(ve *ical.VEvent, loc *time.Location) (feedEvent, bool) {
	var ev feedEvent

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		ev.uid = p.Value
	}
	if ev.uid == "" {
		return ev, false
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return ev, false
	}
	ev.start = start
	if end, err := ve.GetEndAt(); err == nil {
		ev.end = end
	}

	if p := ve.GetProperty(ical.ComponentPropertyDtStart); p != nil {
		if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			ev.allDay = true
		}
		if !strings.Contains(p.Value, "T") {
			ev.allDay = true
		}
	}

	if ev.allDay {
		day := model.DateOf(ev.start)
		ev.start = day.Time(loc)
		if ev.end.After(start) {
			// DTEND on date-only events is the exclusive next day.
			ev.end = model.DateOf(ev.end).Time(loc)
		} else {
			ev.end = day.AddDays(1).Time(loc)
		}
	} else if !ev.end.After(ev.start) {
		// Zero-length events do not block anything.
		return ev, false
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		ev.rawRRule = p.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			if t, err := parseStamp(strings.TrimSpace(part), loc); err == nil {
				ev.exDates = append(ev.exDates, t)
			}
		}
	}

	if p := ve.GetProperty("RECURRENCE-ID"); p != nil {
		if t, err := parseStamp(p.Value, loc); err == nil {
			ev.recurrence = &t
		}
	}

	return ev, true
}

// parseStamp handles the basic DATE / DATE-TIME / UTC forms that show up in
// EXDATE and RECURRENCE-ID values.
func parseStamp(v string, loc *time.Location) (time.Time, error) {
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}
	if strings.HasSuffix(v, "Z") {
		return time.Parse("20060102T150405Z", v)
	}
	if strings.Contains(v, "T") {
		return time.ParseInLocation("20060102T150405", v, loc)
	}
	return time.ParseInLocation("20060102", v, loc)
}

// expandAll turns parsed events into busy windows intersecting
// [rangeStart, rangeEnd). An override (RECURRENCE-ID) suppresses the base
// instance it names and contributes its own window instead, wherever the
// instance moved.
func expandAll(events []feedEvent, rangeStart, rangeEnd time.Time) []model.BusyWindow {
	overridesByUID := make(map[string][]feedEvent)
	var bases []feedEvent
	for _, ev := range events {
		if ev.recurrence != nil {
			overridesByUID[ev.uid] = append(overridesByUID[ev.uid], ev)
			continue
		}
		bases = append(bases, ev)
	}

	var out []model.BusyWindow
	for _, ev := range bases {
		out = append(out, expandEvent(ev, overridesByUID[ev.uid], rangeStart, rangeEnd)...)
	}
	for _, ovs := range overridesByUID {
		for _, ov := range ovs {
			if schedule.Overlaps(ov.start, ov.end, rangeStart, rangeEnd) {
				out = append(out, model.BusyWindow{Start: ov.start, End: ov.end})
			}
		}
	}
	return out
}

func expandEvent(ev feedEvent, overrides []feedEvent, rangeStart, rangeEnd time.Time) []model.BusyWindow {
	if ev.rawRRule == "" {
		if overridden(overrides, ev.start) ||
			!schedule.Overlaps(ev.start, ev.end, rangeStart, rangeEnd) {
			return nil
		}
		return []model.BusyWindow{{Start: ev.start, End: ev.end}}
	}

	r, err := rrule.StrToRRule(ev.rawRRule)
	if err != nil {
		return nil
	}
	r.DTStart(ev.start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.exDates {
		set.ExDate(ex.In(ev.start.Location()))
	}

	// Widen the query by one duration so instances straddling rangeStart
	// are not lost; the overlap filter below trims the excess.
	dur := ev.end.Sub(ev.start)
	occStarts := set.Between(rangeStart.Add(-dur).In(ev.start.Location()), rangeEnd.In(ev.start.Location()), true)
	if len(occStarts) > maxOccurrencesPerEvent {
		occStarts = occStarts[:maxOccurrencesPerEvent]
	}
	var out []model.BusyWindow
	for _, occStart := range occStarts {
		if overridden(overrides, occStart) {
			continue
		}
		start, end := occStart, occStart.Add(dur)
		if !schedule.Overlaps(start, end, rangeStart, rangeEnd) {
			continue
		}
		out = append(out, model.BusyWindow{Start: start, End: end})
	}
	return out
}

// overridden matches RECURRENCE-ID against an instance start by exact time
// equality.
func overridden(overrides []feedEvent, instanceStart time.Time) bool {
	for _, ov := range overrides {
		if ov.recurrence != nil && ov.recurrence.Equal(instanceStart) {
			return true
		}
	}
	return false
}
