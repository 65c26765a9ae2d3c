// Package monitor runs periodic availability checks, decoupled from any
// release gate or race. It reports what it sees and never claims a slot.
package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/slot-sniper/internal/domain/booking"
)

// SlotFetcher is the pluggable fetch strategy: DOM-automation providers and
// the HTTP+markup page both satisfy it. Implementations authenticate
// themselves as needed.
type SlotFetcher interface {
	FetchAvailability(ctx context.Context) ([]booking.Slot, error)
}

type CheckResult struct {
	Success   bool
	Date      string
	Slots     []booking.Slot
	Total     int
	Err       error
	CheckedAt time.Time
}

// Notifier delivers a found-availability alert. Fire and forget: failures
// are logged by the monitor, never propagated.
type Notifier interface {
	Notify(ctx context.Context, res CheckResult) error
}

// Metrics records one measurement. Implementations must not block the check.
type Metrics interface {
	Record(ctx context.Context, name string, value float64, at time.Time)
}

// History persists check results when configured.
type History interface {
	SaveCheck(ctx context.Context, res CheckResult) error
}

type Monitor struct {
	Fetcher  SlotFetcher
	Interval time.Duration
	// Date labels results and notifications; the fetcher itself is already
	// bound to the target date.
	Date string

	// Optional collaborators; nil disables the concern.
	Notifier Notifier
	Metrics  Metrics
	History  History

	Log *slog.Logger
	Now func() time.Time
}

func (m *Monitor) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Monitor) log() *slog.Logger {
	if m.Log != nil {
		return m.Log
	}
	return slog.Default()
}

// CheckOnce performs a single check-and-report cycle. A fetch failure yields
// Success=false with the reason; it never panics or aborts the caller.
func (m *Monitor) CheckOnce(ctx context.Context) CheckResult {
	res := CheckResult{Date: m.Date, CheckedAt: m.now()}

	slots, err := m.Fetcher.FetchAvailability(ctx)
	if err != nil {
		res.Err = err
		m.log().Error("availability check failed", "date", m.Date, "error", err)
		return res
	}

	res.Success = true
	res.Slots = slots
	res.Total = len(slots)
	m.log().Info("availability check", "date", m.Date, "total", res.Total)
	return res
}

// Run checks immediately, then on every tick until ctx is cancelled.
// Metrics are recorded for every check; notifications go out only when
// availability was found. Collaborator failures are logged and the loop
// rides on to the next tick.
func (m *Monitor) Run(ctx context.Context) error {
	t := time.NewTicker(m.Interval)
	defer t.Stop()

	m.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			m.tick(ctx)
		}
	}
}

func (m *Monitor) tick(ctx context.Context) {
	res := m.CheckOnce(ctx)

	if m.Metrics != nil {
		m.Metrics.Record(ctx, "available_slots", float64(res.Total), res.CheckedAt)
		success := 0.0
		if res.Success {
			success = 1.0
		}
		m.Metrics.Record(ctx, "check_success", success, res.CheckedAt)
	}

	if m.Notifier != nil && res.Success && res.Total > 0 {
		if err := m.Notifier.Notify(ctx, res); err != nil {
			m.log().Error("notification failed", "error", err)
		}
	}

	if m.History != nil {
		if err := m.History.SaveCheck(ctx, res); err != nil {
			m.log().Error("saving check failed", "error", err)
		}
	}
}
