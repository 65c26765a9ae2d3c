// Package providers binds named booking sites to the engine and monitor.
package providers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/slot-sniper/internal/domain/booking"
	"github.com/example/slot-sniper/internal/page"
	"github.com/example/slot-sniper/internal/providers/foreup"
	"github.com/example/slot-sniper/internal/providers/recgov"
)

// Provider is one booking site: it attempts claims for the race loop and
// fetches availability for the monitor.
type Provider interface {
	Name() string
	Attempt(ctx context.Context) booking.AttemptOutcome
	Recover(ctx context.Context) error
	FetchAvailability(ctx context.Context) ([]booking.Slot, error)
}

type Config struct {
	URL              string
	Username         string
	Password         string
	Window           booking.TargetWindow
	MaxUnknownStreak int
}

// New resolves a provider by name. Names accepted here must stay in sync
// with config validation.
func New(name string, pg page.Page, cfg Config, log *slog.Logger) (Provider, error) {
	switch name {
	case "foreup":
		return foreup.New(pg, foreup.Config{
			URL:              cfg.URL,
			Credentials:      foreup.Credentials{Username: cfg.Username, Password: cfg.Password},
			Window:           cfg.Window,
			MaxUnknownStreak: cfg.MaxUnknownStreak,
		}, log), nil
	case "recgov":
		return recgov.New(pg, recgov.Config{
			URL:              cfg.URL,
			Credentials:      recgov.Credentials{Username: cfg.Username, Password: cfg.Password},
			Window:           cfg.Window,
			MaxUnknownStreak: cfg.MaxUnknownStreak,
		}, log), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}
