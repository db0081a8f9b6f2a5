package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/api/respond"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/model"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/planner"
)

// SessionHandler provides HTTP transport for session operations.
type SessionHandler struct {
	planner *planner.Planner
}

func NewSessionHandler(p *planner.Planner) *SessionHandler {
	return &SessionHandler{planner: p}
}

// seriesRequest is the JSON body shared by the plan and create endpoints.
type seriesRequest struct {
	Subject         string `json:"subject"`
	Description     string `json:"description,omitempty"`
	AnchorStart     string `json:"anchor_start"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	Horizon         string `json:"horizon,omitempty"`
}

func (r seriesRequest) toPlanRequest() (planner.PlanRequest, error) {
	anchor, err := time.Parse(time.RFC3339, r.AnchorStart)
	if err != nil {
		return planner.PlanRequest{}, fmt.Errorf("anchor_start must be RFC3339: %w", err)
	}
	req := planner.PlanRequest{
		Subject:     r.Subject,
		Description: r.Description,
		AnchorStart: anchor,
		Duration:    time.Duration(r.DurationMinutes) * time.Minute,
	}
	if r.Horizon != "" {
		horizon, err := time.Parse(time.RFC3339, r.Horizon)
		if err != nil {
			return planner.PlanRequest{}, fmt.Errorf("horizon must be RFC3339: %w", err)
		}
		req.Horizon = &horizon
	}
	return req, nil
}

// CreateSession POST /api/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req seriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	preq, err := req.toPlanRequest()
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	session, err := h.planner.ScheduleSeries(r.Context(), preq)
	if err != nil {
		var partial *planner.PartialSeriesCreationError
		if errors.As(err, &partial) {
			// The partial session is recorded; hand it back with the
			// failure so the caller can keep it or delete the ids.
			respond.WriteJSON(w, http.StatusBadGateway, map[string]interface{}{
				"error":   http.StatusText(http.StatusBadGateway),
				"code":    http.StatusBadGateway,
				"message": partial.Error(),
				"session": session,
			})
			return
		}
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, session)
}

// ListSessions GET /api/sessions
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.planner.Sessions()
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// GetSession GET /api/sessions/{sessionId}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := model.EventID(mux.Vars(r)["sessionId"])
	session, err := h.planner.Session(id)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, session)
}

// DeleteSession DELETE /api/sessions/{sessionId}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := model.EventID(mux.Vars(r)["sessionId"])
	if err := h.planner.DeleteSession(r.Context(), id); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleCompletion POST /api/sessions/{sessionId}/sub-events/{subEventId}/toggle
func (h *SessionHandler) ToggleCompletion(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := model.EventID(vars["sessionId"])
	subEventID := model.EventID(vars["subEventId"])

	res, err := h.planner.ToggleCompletion(r.Context(), sessionID, subEventID)
	if err != nil {
		// A mirror failure still applied the toggle locally; the caller
		// re-reads the session after retrying.
		respond.WriteDomainError(w, err)
		return
	}

	resp := map[string]interface{}{"completed": res.Completed}
	if res.RestoreColor != nil {
		resp["restore_color"] = *res.RestoreColor
	}
	respond.WriteJSON(w, http.StatusOK, resp)
}

// GetProgress GET /api/sessions/{sessionId}/progress
func (h *SessionHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	id := model.EventID(mux.Vars(r)["sessionId"])
	progress, err := h.planner.Progress(id)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": id,
		"progress":   progress,
	})
}
