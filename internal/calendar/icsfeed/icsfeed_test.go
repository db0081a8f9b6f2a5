package icsfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/model"
)

func icsBody(events ...string) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//test//EN",
	}
	for _, ev := range events {
		lines = append(lines, "BEGIN:VEVENT")
		lines = append(lines, strings.Split(ev, "\n")...)
		lines = append(lines, "END:VEVENT")
	}
	lines = append(lines, "END:VCALENDAR", "")
	return strings.Join(lines, "\r\n")
}

func serveICS(t *testing.T, bodies map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestListBusyExpandsFeeds(t *testing.T) {
	main := icsBody(
		"UID:weekly@test\nDTSTART:20240304T090000Z\nDTEND:20240304T100000Z\nSUMMARY:Standup\nRRULE:FREQ=WEEKLY;COUNT=4\nEXDATE:20240311T090000Z",
		"UID:single@test\nDTSTART:20240305T140000Z\nDTEND:20240305T153000Z\nSUMMARY:Dentist",
		"UID:allday@test\nDTSTART;VALUE=DATE:20240306\nDTEND;VALUE=DATE:20240307\nSUMMARY:Holiday",
	)
	other := icsBody(
		"UID:gym@test\nDTSTART:20240307T080000Z\nDTEND:20240307T090000Z\nSUMMARY:Gym",
	)
	srv := serveICS(t, map[string]string{"/main.ics": main, "/other.ics": other})

	feed := New([]string{srv.URL + "/main.ics", srv.URL + "/other.ics"}, Options{Location: time.UTC})
	got, err := feed.ListBusy(context.Background(),
		"",
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	want := []model.BusyWindow{
		{Start: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)},
		{Start: time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 5, 15, 30, 0, 0, time.UTC)},
		{Start: time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)},
		{Start: time.Date(2024, 3, 7, 8, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC)},
		{Start: time.Date(2024, 3, 18, 9, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 18, 10, 0, 0, 0, time.UTC)},
	}
	require.Len(t, got, len(want))
	for i := range want {
		require.True(t, got[i].Start.Equal(want[i].Start), "window %d start: got %v", i, got[i].Start)
		require.True(t, got[i].End.Equal(want[i].End), "window %d end: got %v", i, got[i].End)
	}
}

func TestListBusyAppliesOverride(t *testing.T) {
	body := icsBody(
		"UID:weekly@test\nDTSTART:20240304T090000Z\nDTEND:20240304T100000Z\nRRULE:FREQ=WEEKLY;COUNT=3",
		"UID:weekly@test\nRECURRENCE-ID:20240311T090000Z\nDTSTART:20240311T110000Z\nDTEND:20240311T120000Z",
	)
	srv := serveICS(t, map[string]string{"/cal.ics": body})

	feed := New([]string{srv.URL + "/cal.ics"}, Options{Location: time.UTC})
	got, err := feed.ListBusy(context.Background(),
		"",
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// The middle instance moved to 11:00.
	require.True(t, got[1].Start.Equal(time.Date(2024, 3, 11, 11, 0, 0, 0, time.UTC)))
	require.True(t, got[1].End.Equal(time.Date(2024, 3, 11, 12, 0, 0, 0, time.UTC)))
	for _, w := range got {
		require.False(t, w.Start.Equal(time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)))
	}
}

func TestListBusyOverrideMovedFarForward(t *testing.T) {
	// The base series ends in January; one instance was rescheduled into
	// March and must still block March planning.
	body := icsBody(
		"UID:moved@test\nDTSTART:20240101T090000Z\nDTEND:20240101T100000Z\nRRULE:FREQ=WEEKLY;COUNT=2",
		"UID:moved@test\nRECURRENCE-ID:20240108T090000Z\nDTSTART:20240312T090000Z\nDTEND:20240312T100000Z",
	)
	srv := serveICS(t, map[string]string{"/cal.ics": body})

	feed := New([]string{srv.URL + "/cal.ics"}, Options{Location: time.UTC})
	got, err := feed.ListBusy(context.Background(),
		"",
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.True(t, got[0].Start.Equal(time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)))
}

func TestListBusyStraddlingOccurrence(t *testing.T) {
	// Nightly event 22:00-02:00; the instance starting Mar 4 crosses into
	// Mar 5 and must appear when the range starts Mar 5.
	body := icsBody(
		"UID:night@test\nDTSTART:20240304T220000Z\nDTEND:20240305T020000Z\nRRULE:FREQ=DAILY;COUNT=2",
	)
	srv := serveICS(t, map[string]string{"/cal.ics": body})

	feed := New([]string{srv.URL + "/cal.ics"}, Options{Location: time.UTC})
	got, err := feed.ListBusy(context.Background(),
		"",
		time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.True(t, got[0].Start.Equal(time.Date(2024, 3, 4, 22, 0, 0, 0, time.UTC)))
	require.True(t, got[1].Start.Equal(time.Date(2024, 3, 5, 22, 0, 0, 0, time.UTC)))
}

func TestListBusyFeedUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	feed := New([]string{srv.URL + "/cal.ics"}, Options{Location: time.UTC})
	_, err := feed.ListBusy(context.Background(),
		"",
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
	)
	require.ErrorIs(t, err, model.ErrRemoteUnavailable)
}

func TestParseStamp(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Colombo")
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	got, err := parseStamp("20240311T090000Z", loc)
	require.NoError(t, err)
	require.True(t, got.Equal(time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)))

	got, err = parseStamp("20240311T090000", loc)
	require.NoError(t, err)
	require.True(t, got.Equal(time.Date(2024, 3, 11, 9, 0, 0, 0, loc)))

	got, err = parseStamp("20240311", loc)
	require.NoError(t, err)
	require.True(t, got.Equal(time.Date(2024, 3, 11, 0, 0, 0, 0, loc)))

	_, err = parseStamp("", loc)
	require.Error(t, err)
}
