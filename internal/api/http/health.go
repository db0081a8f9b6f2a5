package http

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/api/respond"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/calendar"
)

// HealthHandler serves the service health endpoint.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

// healthyFlag holds 1 while the last calendar probe succeeded.
var healthyFlag atomic.Int32

// lastProbeErr keeps the most recent probe failure details.
var lastProbeErr atomic.Value // string

func init() {
	healthyFlag.Store(1)
	lastProbeErr.Store("")
}

// StartHealthMonitor launches a background goroutine that probes the remote
// calendar every interval by listing a one-minute busy window. A failing
// probe flips the health endpoint to DOWN until a probe succeeds again.
func StartHealthMonitor(ctx context.Context, cal calendar.BusyLister, calendarID string, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		probe := func() {
			probeCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			defer cancel()

			now := time.Now()
			_, err := cal.ListBusy(probeCtx, calendarID, now, now.Add(time.Minute))
			if err != nil {
				healthyFlag.Store(0)
				lastProbeErr.Store(fmt.Sprintf("calendar: %v", err))
				return
			}
			healthyFlag.Store(1)
			lastProbeErr.Store("")
		}

		// first probe runs before the first tick
		probe()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probe()
			}
		}
	}()
}

// CheckHealth handles GET /api/health
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	if healthyFlag.Load() == 1 {
		respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "UP",
			"message":   "Scheduler is healthy",
			"timestamp": time.Now().Format(time.RFC3339),
		})
		return
	}

	errMsg, _ := lastProbeErr.Load().(string)
	if errMsg == "" {
		errMsg = "Calendar unreachable"
	}
	respond.WriteJSON(w, http.StatusInternalServerError, map[string]interface{}{
		"status":    "DOWN",
		"message":   errMsg,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
