// Package metrics holds the scheduler's Prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsScheduled = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "scheduler",
			Subsystem: "planner",
			Name:      "sessions_scheduled_total",
			Help:      "Review sessions created on the calendar.",
		},
	)

	OccurrenceCreateFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "scheduler",
			Subsystem: "planner",
			Name:      "occurrence_create_failures_total",
			Help:      "Individual review occurrences that failed to create.",
		},
	)

	ConflictsDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "scheduler",
			Subsystem: "planner",
			Name:      "conflicts_detected_total",
			Help:      "Planned occurrences that collided with a busy window.",
		},
	)

	SuggestionsServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "scheduler",
			Subsystem: "planner",
			Name:      "suggestions_served_total",
			Help:      "Alternative slots returned to callers.",
		},
	)

	TogglesApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scheduler",
			Subsystem: "ledger",
			Name:      "toggles_applied_total",
			Help:      "Completion toggles applied, by resulting state.",
		},
		[]string{"state"},
	)

	ReconcileRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "scheduler",
			Subsystem: "reconcile",
			Name:      "runs_total",
			Help:      "Reconciliation passes started.",
		},
	)

	ReconcileChanges = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "scheduler",
			Subsystem: "reconcile",
			Name:      "changes_total",
			Help:      "Reconciliation passes that mutated the ledger.",
		},
	)

	ReconcileErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "scheduler",
			Subsystem: "reconcile",
			Name:      "errors_total",
			Help:      "Reconciliation passes that hit probe or store errors.",
		},
	)

	PanicsRecovered = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "scheduler",
			Subsystem: "http",
			Name:      "panics_recovered_total",
			Help:      "Handler panics converted into 500 responses.",
		},
	)
)
