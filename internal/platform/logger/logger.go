// Package logger builds the zerolog loggers used by the scheduler binaries.
package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a stdout JSON logger tagged with the service name. The level
// comes from SCHEDULER_LOG_LEVEL (debug|info|warn|error), defaulting to info.
func New(serviceName string) zerolog.Logger {
	return zerolog.New(os.Stdout).
		Level(levelFromEnv()).
		With().
		Str("service", serviceName).
		Timestamp().
		Logger()
}

func levelFromEnv() zerolog.Level {
	switch strings.ToLower(os.Getenv("SCHEDULER_LOG_LEVEL")) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
