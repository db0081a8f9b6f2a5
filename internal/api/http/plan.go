package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/api/respond"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/planner"
)

// PlanHandler exposes the dry-run planning and slot suggestion endpoints.
type PlanHandler struct {
	planner *planner.Planner
}

func NewPlanHandler(p *planner.Planner) *PlanHandler {
	return &PlanHandler{planner: p}
}

// Plan POST /api/plan
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
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

	plan, err := h.planner.PlanSeries(r.Context(), preq)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, plan)
}

// Suggest GET /api/suggestions?start=RFC3339&end=RFC3339&duration_minutes=60
func (h *PlanHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	start, err := time.Parse(time.RFC3339, q.Get("start"))
	if err != nil {
		respond.WriteBadRequest(w, "start must be RFC3339")
		return
	}
	end, err := time.Parse(time.RFC3339, q.Get("end"))
	if err != nil {
		respond.WriteBadRequest(w, "end must be RFC3339")
		return
	}
	var duration time.Duration
	if v := q.Get("duration_minutes"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			respond.WriteBadRequest(w, "duration_minutes must be a positive integer")
			return
		}
		duration = time.Duration(minutes) * time.Minute
	}

	slots, err := h.planner.Suggest(r.Context(), planner.SuggestRequest{
		SearchStart: start,
		SearchEnd:   end,
		Duration:    duration,
	})
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"slots": slots,
		"count": len(slots),
	})
}
