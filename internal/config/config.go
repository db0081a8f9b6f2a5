package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config holds the configuration for the scheduler service.
// Environment variables are automatically parsed from the SCHEDULER_ prefix.
type Config struct {
	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Ledger store. Driver selects the backend; the path/DSN fields feed
	// the matching driver and are ignored by the others.
	StoreDriver string `envconfig:"STORE_DRIVER" default:"file"`
	LedgerPath  string `envconfig:"LEDGER_PATH" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:""`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	StoreOwner  string `envconfig:"STORE_OWNER" default:"default"`

	// Calendar backend: google talks to the real API, dev is in-memory.
	CalendarBackend       string `envconfig:"CALENDAR_BACKEND" default:"google"`
	CalendarID            string `envconfig:"CALENDAR_ID" default:"primary"`
	GoogleCredentialsFile string `envconfig:"GOOGLE_CREDENTIALS_FILE" default:""`

	// Extra read-only busy sources, comma separated ICS URLs.
	ICSFeedURLs []string `envconfig:"ICS_FEED_URLS" default:""`

	// Scheduling behavior
	Timezone          string `envconfig:"TIMEZONE" default:"Asia/Colombo"`
	ProfilePath       string `envconfig:"PROFILE_PATH" default:""`
	ReconcileSchedule string `envconfig:"RECONCILE_SCHEDULE" default:"*/15 * * * *"`
	WriteIntervalMS   int    `envconfig:"WRITE_INTERVAL_MS" default:"200"`

	ShutdownTimeoutSeconds int `envconfig:"SHUTDOWN_TIMEOUT_SECONDS" default:"10"`
}

// ResolveDefaults validates driver and backend selections and the fields
// they require.
func (c *Config) ResolveDefaults() error {
	allowedStore := map[string]bool{"file": true, "sqlite": true, "postgres": true}
	if !allowedStore[c.StoreDriver] {
		return fmt.Errorf("unsupported STORE_DRIVER: %s", c.StoreDriver)
	}
	if c.StoreDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("STORE_DRIVER=postgres requires POSTGRES_DSN")
	}

	allowedBackend := map[string]bool{"google": true, "dev": true}
	if !allowedBackend[c.CalendarBackend] {
		return fmt.Errorf("unsupported CALENDAR_BACKEND: %s", c.CalendarBackend)
	}
	if c.CalendarID == "" {
		c.CalendarID = "primary"
	}
	if c.Timezone == "" {
		c.Timezone = "Asia/Colombo"
	}
	if c.WriteIntervalMS <= 0 {
		c.WriteIntervalMS = 200
	}
	return nil
}

// Location loads the configured IANA timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// WriteInterval returns the minimum spacing between calendar writes.
func (c *Config) WriteInterval() time.Duration {
	return time.Duration(c.WriteIntervalMS) * time.Millisecond
}

// ShutdownTimeout returns how long graceful shutdown may take.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// New creates a new Config by parsing environment variables.
// Environment variables should be prefixed with SCHEDULER_
// Example: SCHEDULER_HTTP_PORT, SCHEDULER_STORE_DRIVER
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("SCHEDULER", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Int("port", cfg.HTTPPort).
		Str("store_driver", cfg.StoreDriver).
		Str("calendar_backend", cfg.CalendarBackend).
		Str("calendar_id", cfg.CalendarID).
		Int("ics_feeds", len(cfg.ICSFeedURLs)).
		Str("timezone", cfg.Timezone).
		Str("reconcile_schedule", cfg.ReconcileSchedule).
		Msg("Configuration loaded")

	return &cfg, nil
}
