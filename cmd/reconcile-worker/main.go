package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/clock"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/config"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/ledger"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/planner"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/platform/factory"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/platform/logger"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/worker"
)

func main() {
	log := logger.New("reconcile-worker")

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("timezone")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// deps
	st, err := factory.NewStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("ledger store")
	}
	led, err := ledger.Open(ctx, st, clock.System{})
	if err != nil {
		log.Fatal().Err(err).Msg("ledger open")
	}
	cal, err := factory.NewCalendar(ctx, cfg, loc, log)
	if err != nil {
		log.Fatal().Err(err).Msg("calendar backend")
	}

	// Reconciliation only probes event existence, so the scheduling profile
	// is not loaded here.
	p, err := planner.New(planner.Options{
		Calendar:   cal,
		Ledger:     led,
		Location:   loc,
		Logger:     log,
		CalendarID: cfg.CalendarID,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("planner")
	}

	w, err := worker.NewReconciler(p, worker.Config{Schedule: cfg.ReconcileSchedule, RunOnStart: true}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("reconcile schedule")
	}

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("reconcile worker exit")
		os.Exit(1)
	}
}
