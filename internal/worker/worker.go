// Package worker runs periodic ledger reconciliation against the remote
// calendar. It is embedded by scheduler-service and runs standalone in
// reconcile-worker.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/planner"
)

// Config controls the reconcile cadence.
type Config struct {
	Schedule   string        // standard cron spec, e.g. "*/15 * * * *"
	RunOnStart bool          // run one pass immediately instead of waiting for the first tick
	RunTimeout time.Duration // upper bound for a single pass
}

// Reconciler triggers ledger reconciliation on a cron schedule. A failed
// probe never drops entries; the pass is logged and retried on the next
// tick.
type Reconciler struct {
	planner *planner.Planner
	log     zerolog.Logger
	cfg     Config
}

// NewReconciler constructs a Reconciler and validates the schedule.
func NewReconciler(p *planner.Planner, cfg Config, log zerolog.Logger) (*Reconciler, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = "*/15 * * * *"
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = time.Minute
	}
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", cfg.Schedule, err)
	}
	return &Reconciler{planner: p, log: log, cfg: cfg}, nil
}

// Run blocks until ctx is canceled, reconciling on every schedule tick.
func (r *Reconciler) Run(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(r.cfg.Schedule, func() { r.ReconcileOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule reconcile job: %w", err)
	}

	r.log.Info().Str("schedule", r.cfg.Schedule).Msg("reconcile worker starting")
	if r.cfg.RunOnStart {
		r.ReconcileOnce(ctx)
	}
	c.Start()

	<-ctx.Done()
	r.log.Info().Msg("reconcile worker stopping")
	<-c.Stop().Done()
	return ctx.Err()
}

// ReconcileOnce runs a single reconcile pass.
func (r *Reconciler) ReconcileOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, r.cfg.RunTimeout)
	defer cancel()

	changed, err := r.planner.Reconcile(runCtx)
	if err != nil {
		r.log.Error().Err(err).Msg("reconcile pass failed")
		return
	}
	if changed {
		r.log.Info().Msg("reconcile removed externally deleted events")
	}
}
