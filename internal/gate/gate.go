// Package gate aligns execution to a release instant. The wait re-reads the
// clock every increment instead of sleeping a precomputed duration, so it
// stays correct across clock drift during long waits.
package gate

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/slot-sniper/internal/domain/booking"
)

// DefaultPoll keeps overshoot within roughly one increment of the target.
const DefaultPoll = 100 * time.Millisecond

type Gate struct {
	Log  *slog.Logger
	Poll time.Duration

	// Now is swappable for tests; nil means time.Now.
	Now func() time.Time
}

func (g *Gate) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func (g *Gate) poll() time.Duration {
	if g.Poll > 0 {
		return g.Poll
	}
	return DefaultPoll
}

// Wait blocks until the release instant is reached in its timezone, or the
// context is cancelled. Returns immediately when the instant is already past.
func (g *Gate) Wait(ctx context.Context, at booking.ReleaseInstant) error {
	target := at.Next(g.now())
	if g.Log != nil {
		g.Log.Info("waiting for release", "target", target, "remaining", target.Sub(g.now()).Round(time.Second))
	}

	timer := time.NewTimer(g.poll())
	defer timer.Stop()

	for {
		if !g.now().Before(target) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			timer.Reset(g.poll())
		}
	}
}
