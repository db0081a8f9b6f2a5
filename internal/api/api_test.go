package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/calendar/devcal"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/clock"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/ledger"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/model"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/planner"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/schedule"
)

var apiTestNow = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

type memStore struct {
	led model.Ledger
}

func (m *memStore) Load(context.Context) (model.Ledger, error) { return m.led.Clone(), nil }

func (m *memStore) Save(_ context.Context, led model.Ledger) error {
	m.led = led.Clone()
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *devcal.Store) {
	t.Helper()

	cal := devcal.New()
	led, err := ledger.Open(context.Background(), &memStore{}, clock.Fixed{T: apiTestNow})
	require.NoError(t, err)

	table, err := schedule.NewReviewTable([]model.ReviewInterval{
		{OffsetDays: 1, Label: "Review notes"},
		{OffsetDays: 7, Label: "Revise"},
	})
	require.NoError(t, err)

	p, err := planner.New(planner.Options{
		Calendar: cal,
		Ledger:   led,
		Clock:    clock.Fixed{T: apiTestNow},
		Location: time.UTC,
		Table:    table,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(NewRouter(p))
	t.Cleanup(srv.Close)
	return srv, cal
}

func doJSON(t *testing.T, method, url string, body interface{}) (int, []byte) {
	t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func createPhysicsSession(t *testing.T, srv *httptest.Server) model.Session {
	t.Helper()
	status, body := doJSON(t, http.MethodPost, srv.URL+"/api/sessions", map[string]interface{}{
		"subject":          "Physics",
		"anchor_start":     "2024-03-01T09:00:00Z",
		"duration_minutes": 60,
	})
	require.Equal(t, http.StatusCreated, status, "body: %s", body)

	var session model.Session
	require.NoError(t, json.Unmarshal(body, &session))
	return session
}

func TestCreateListGetSession(t *testing.T) {
	srv, cal := newTestServer(t)

	session := createPhysicsSession(t, srv)
	assert.Equal(t, "Physics - Review", session.Title)
	require.Len(t, session.SubEvents, 2)
	assert.Equal(t, "Review notes", session.SubEvents[0].Name)
	assert.Len(t, cal.Events(), 2)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/api/sessions/"+string(session.ID), nil)
	require.Equal(t, http.StatusOK, status)
	var got model.Session
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, session.ID, got.ID)

	status, body = doJSON(t, http.MethodGet, srv.URL+"/api/sessions", nil)
	require.Equal(t, http.StatusOK, status)
	var list struct {
		Sessions []model.Session `json:"sessions"`
		Count    int             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, 1, list.Count)
}

func TestGetUnknownSessionReturns404(t *testing.T) {
	srv, _ := newTestServer(t)

	status, _ := doJSON(t, http.MethodGet, srv.URL+"/api/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCreateSessionValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/sessions", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	status, _ := doJSON(t, http.MethodPost, srv.URL+"/api/sessions", map[string]interface{}{
		"subject":      "Physics",
		"anchor_start": "yesterday-ish",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, http.MethodPost, srv.URL+"/api/sessions", map[string]interface{}{
		"anchor_start": "2024-03-01T09:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestToggleEndpointMirrorsRemote(t *testing.T) {
	srv, cal := newTestServer(t)
	ctx := context.Background()

	session := createPhysicsSession(t, srv)
	target := session.SubEvents[0].ID
	toggleURL := fmt.Sprintf("%s/api/sessions/%s/sub-events/%s/toggle", srv.URL, session.ID, target)

	status, body := doJSON(t, http.MethodPost, toggleURL, nil)
	require.Equal(t, http.StatusOK, status, "body: %s", body)
	var res map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, true, res["completed"])

	ev, err := cal.GetEvent(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, "Completed: Physics - Review", ev.Summary)
	assert.Equal(t, model.ColorID("8"), ev.ColorID)

	status, body = doJSON(t, http.MethodPost, toggleURL, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, false, res["completed"])
	assert.Equal(t, "7", res["restore_color"])

	ev, err = cal.GetEvent(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, "Physics - Review", ev.Summary)
}

func TestDeleteSessionEndpoint(t *testing.T) {
	srv, cal := newTestServer(t)

	session := createPhysicsSession(t, srv)
	status, _ := doJSON(t, http.MethodDelete, srv.URL+"/api/sessions/"+string(session.ID), nil)
	require.Equal(t, http.StatusNoContent, status)
	assert.Empty(t, cal.Events())

	status, _ = doJSON(t, http.MethodGet, srv.URL+"/api/sessions/"+string(session.ID), nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPlanEndpointSurfacesConflicts(t *testing.T) {
	srv, cal := newTestServer(t)
	cal.SeedBusy(model.BusyWindow{
		Start: time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 2, 10, 30, 0, 0, time.UTC),
	})

	status, body := doJSON(t, http.MethodPost, srv.URL+"/api/plan", map[string]interface{}{
		"subject":          "Physics",
		"anchor_start":     "2024-03-01T09:00:00Z",
		"duration_minutes": 60,
	})
	require.Equal(t, http.StatusOK, status, "body: %s", body)

	var plan planner.Plan
	require.NoError(t, json.Unmarshal(body, &plan))
	require.Len(t, plan.Occurrences, 2)
	require.NotNil(t, plan.Occurrences[0].Conflict)
	require.NotEmpty(t, plan.Occurrences[0].Suggestions)
	assert.True(t, plan.Occurrences[0].Suggestions[0].Equal(time.Date(2024, 3, 2, 10, 30, 0, 0, time.UTC)))
	assert.Nil(t, plan.Occurrences[1].Conflict)
	assert.Len(t, cal.Events(), 0, "planning must not create events")
}

func TestSuggestEndpoint(t *testing.T) {
	srv, cal := newTestServer(t)
	cal.SeedBusy(model.BusyWindow{
		Start: time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
	})

	url := srv.URL + "/api/suggestions?start=2024-03-02T09:00:00Z&end=2024-03-02T13:00:00Z&duration_minutes=60"
	status, body := doJSON(t, http.MethodGet, url, nil)
	require.Equal(t, http.StatusOK, status, "body: %s", body)

	var res struct {
		Slots []time.Time `json:"slots"`
		Count int         `json:"count"`
	}
	require.NoError(t, json.Unmarshal(body, &res))
	require.NotEmpty(t, res.Slots)
	assert.True(t, res.Slots[0].Equal(time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)))

	status, _ = doJSON(t, http.MethodGet, srv.URL+"/api/suggestions?start=bogus&end=2024-03-02T13:00:00Z", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestReconcileEndpoint(t *testing.T) {
	srv, cal := newTestServer(t)
	ctx := context.Background()

	session := createPhysicsSession(t, srv)
	require.NoError(t, cal.DeleteEvent(ctx, session.SubEvents[1].ID))

	status, body := doJSON(t, http.MethodPost, srv.URL+"/api/reconcile", nil)
	require.Equal(t, http.StatusOK, status)
	var res map[string]bool
	require.NoError(t, json.Unmarshal(body, &res))
	assert.True(t, res["changed"])

	status, body = doJSON(t, http.MethodGet, srv.URL+"/api/sessions/"+string(session.ID), nil)
	require.Equal(t, http.StatusOK, status)
	var got model.Session
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Len(t, got.SubEvents, 1)
}

func TestMissedAndStreakEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/api/streak", nil)
	require.Equal(t, http.StatusOK, status)
	var streak map[string]int
	require.NoError(t, json.Unmarshal(body, &streak))
	assert.Equal(t, 0, streak["streak"])

	status, _ = doJSON(t, http.MethodPost, srv.URL+"/api/missed", map[string]string{"id": "ev9"})
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = doJSON(t, http.MethodPost, srv.URL+"/api/missed", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	srv, _ := newTestServer(t)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/api/health", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "UP")

	status, body = doJSON(t, http.MethodGet, srv.URL+"/metrics", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "scheduler_")
}
