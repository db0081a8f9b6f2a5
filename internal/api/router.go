package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpHandlers "github.com/JatheeshaMirihana/Spaced-Repetition/internal/api/http"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/api/recovery"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/planner"
)

// NewRouter creates the HTTP router with all scheduler routes.
func NewRouter(p *planner.Planner) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)

	sessionHandler := httpHandlers.NewSessionHandler(p)
	planHandler := httpHandlers.NewPlanHandler(p)
	maintenanceHandler := httpHandlers.NewMaintenanceHandler(p)
	healthHandler := httpHandlers.NewHealthHandler()

	// Health endpoint
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	// Session endpoints
	router.HandleFunc("/api/sessions", sessionHandler.CreateSession).Methods("POST")
	router.HandleFunc("/api/sessions", sessionHandler.ListSessions).Methods("GET")
	router.HandleFunc("/api/sessions/{sessionId}", sessionHandler.GetSession).Methods("GET")
	router.HandleFunc("/api/sessions/{sessionId}", sessionHandler.DeleteSession).Methods("DELETE")
	router.HandleFunc("/api/sessions/{sessionId}/sub-events/{subEventId}/toggle", sessionHandler.ToggleCompletion).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionId}/progress", sessionHandler.GetProgress).Methods("GET")

	// Planning endpoints
	router.HandleFunc("/api/plan", planHandler.Plan).Methods("POST")
	router.HandleFunc("/api/suggestions", planHandler.Suggest).Methods("GET")

	// Maintenance endpoints
	router.HandleFunc("/api/reconcile", maintenanceHandler.Reconcile).Methods("POST")
	router.HandleFunc("/api/missed", maintenanceHandler.MarkMissed).Methods("POST")
	router.HandleFunc("/api/streak", maintenanceHandler.GetStreak).Methods("GET")

	// Prometheus metrics
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return router
}
