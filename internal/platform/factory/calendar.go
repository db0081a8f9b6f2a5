package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/calendar"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/calendar/devcal"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/calendar/googlecal"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/calendar/icsfeed"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/config"
)

// NewCalendar selects the calendar store based on cfg.CalendarBackend.
func NewCalendar(ctx context.Context, cfg *config.Config, loc *time.Location, log zerolog.Logger) (calendar.Store, error) {
	switch cfg.CalendarBackend {
	case "google":
		var clientOpts []option.ClientOption
		if cfg.GoogleCredentialsFile != "" {
			clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.GoogleCredentialsFile))
		}
		return googlecal.New(ctx, googlecal.Options{
			CalendarID:    cfg.CalendarID,
			Location:      loc,
			WriteInterval: cfg.WriteInterval(),
			Logger:        log,
		}, clientOpts...)
	case "dev":
		return devcal.New(), nil
	default:
		return nil, fmt.Errorf("unknown CALENDAR_BACKEND: %s", cfg.CalendarBackend)
	}
}

// NewBusySources builds the extra read-only busy listers, currently the
// configured ICS feeds.
func NewBusySources(cfg *config.Config, loc *time.Location, log zerolog.Logger) []calendar.BusyLister {
	if len(cfg.ICSFeedURLs) == 0 {
		return nil
	}
	feed := icsfeed.New(cfg.ICSFeedURLs, icsfeed.Options{Location: loc, Logger: log})
	return []calendar.BusyLister{feed}
}
