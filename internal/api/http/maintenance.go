package http

import (
	"encoding/json"
	"net/http"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/api/respond"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/model"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/planner"
)

// MaintenanceHandler exposes reconciliation and ledger bookkeeping endpoints.
type MaintenanceHandler struct {
	planner *planner.Planner
}

func NewMaintenanceHandler(p *planner.Planner) *MaintenanceHandler {
	return &MaintenanceHandler{planner: p}
}

// Reconcile POST /api/reconcile
func (h *MaintenanceHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	changed, err := h.planner.Reconcile(r.Context())
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"changed": changed})
}

// MarkMissed POST /api/missed
func (h *MaintenanceHandler) MarkMissed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		respond.WriteBadRequest(w, "body must carry a non-empty id")
		return
	}
	if err := h.planner.MarkMissed(r.Context(), model.EventID(req.ID)); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetStreak GET /api/streak
func (h *MaintenanceHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"streak": h.planner.Streak()})
}
