package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/api"
	httpHandlers "github.com/JatheeshaMirihana/Spaced-Repetition/internal/api/http"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/clock"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/config"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/ledger"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/localstate"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/planner"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/platform/factory"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/platform/logger"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/worker"
)

func main() {
	// Optional backend flag override (google | dev)
	calendarBackend := flag.String("calendar-backend", "", "Override SCHEDULER_CALENDAR_BACKEND (google, dev)")
	flag.Parse()

	log := logger.New("scheduler-service")

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *calendarBackend != "" {
		cfg.CalendarBackend = *calendarBackend
		if err := cfg.ResolveDefaults(); err != nil {
			log.Fatal().Err(err).Msg("Invalid calendar-backend override")
		}
	}

	log.Info().
		Str("store_driver", cfg.StoreDriver).
		Str("calendar_backend", cfg.CalendarBackend).
		Int("http_port", cfg.HTTPPort).
		Msg("Scheduler service starting…")

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("Invalid timezone")
	}

	ctx := context.Background()

	// -------- Scheduling profile -------------
	profilePath := cfg.ProfilePath
	if profilePath == "" {
		if profilePath, err = localstate.ProfilePath(); err != nil {
			log.Fatal().Err(err).Msg("Cannot resolve profile path")
		}
	}
	profile, err := config.LoadProfile(profilePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", profilePath).Msg("Failed to load scheduling profile")
	}
	table, err := profile.ReviewTable()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid review intervals in profile")
	}

	// -------- Ledger store -------------------
	st, err := factory.NewStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Ledger store unavailable")
	}
	led, err := ledger.Open(ctx, st, clock.System{})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open session ledger")
	}

	// -------- Calendar backend ---------------
	cal, err := factory.NewCalendar(ctx, cfg, loc, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Calendar backend unavailable")
	}

	// -------- Planner ------------------------
	p, err := planner.New(planner.Options{
		Calendar:        cal,
		ExtraBusy:       factory.NewBusySources(cfg, loc, log),
		Ledger:          led,
		Colors:          profile.ColorPolicy(),
		Location:        loc,
		Table:           table,
		Logger:          log,
		CalendarID:      cfg.CalendarID,
		SlotStep:        profile.SlotStep(),
		SlotCap:         profile.SlotCap,
		HorizonPolicy:   profile.Horizon(),
		DefaultDuration: profile.DefaultDuration(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to assemble planner")
	}

	// -------- Health monitor -----------------
	httpHandlers.StartHealthMonitor(ctx, cal, cfg.CalendarID, 30*time.Second)

	// -------- Reconcile worker ---------------
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	rec, err := worker.NewReconciler(p, worker.Config{Schedule: cfg.ReconcileSchedule, RunOnStart: true}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid reconcile schedule")
	}
	go func() {
		if err := rec.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Reconcile worker exited")
		}
	}()

	// -------- Router & Server ----------------
	router := api.NewRouter(p)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server…")
	stopWorker()
	ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}
