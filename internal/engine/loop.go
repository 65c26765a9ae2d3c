// Package engine drives repeated acquisition attempts against a time budget
// and classifies what each attempt observed.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/example/slot-sniper/internal/domain/booking"
)

// DefaultFloor is the minimum spacing between attempts. The race is won by
// whoever reacts fastest, so there is no backoff beyond this floor; the floor
// only keeps the loop from hammering the remote service.
const DefaultFloor = 50 * time.Millisecond

// AttemptFunc performs one full acquisition cycle and reports its classified
// outcome. Attempts are strictly sequential: the loop never starts attempt
// n+1 before attempt n's outcome is in hand.
type AttemptFunc func(ctx context.Context) booking.AttemptOutcome

// RecoverFunc is invoked after a retryable outcome, before the next attempt.
// Typically a page reload or re-navigation.
type RecoverFunc func(ctx context.Context) error

type Loop struct {
	// Budget bounds total elapsed time. Zero means a single attempt.
	Budget time.Duration
	// Floor is the minimum delay between attempts; zero means DefaultFloor.
	Floor time.Duration
	Log   *slog.Logger

	Now func() time.Time
}

func (l *Loop) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *Loop) log() *slog.Logger {
	if l.Log != nil {
		return l.Log
	}
	return slog.Default()
}

// Run invokes attempt until it succeeds, fails fatally, the budget is spent,
// or ctx is cancelled. Budget exhaustion is a normal termination: Reserved is
// false and no error is returned. A fatal outcome surfaces its error.
func (l *Loop) Run(ctx context.Context, attempt AttemptFunc, recover RecoverFunc) (booking.LoopResult, error) {
	floor := l.Floor
	if floor <= 0 {
		floor = DefaultFloor
	}
	limiter := rate.NewLimiter(rate.Every(floor), 1)

	start := l.now()
	deadline := start.Add(l.Budget)
	res := booking.LoopResult{}

	for {
		if err := ctx.Err(); err != nil {
			res.Elapsed = l.now().Sub(start)
			return res, err
		}

		outcome := attempt(ctx)
		res.Attempts++
		res.Elapsed = l.now().Sub(start)

		switch outcome.Kind {
		case booking.OutcomeSuccess:
			res.Reserved = true
			l.log().Info("slot reserved", "attempts", res.Attempts, "elapsed", res.Elapsed.Round(time.Millisecond))
			return res, nil

		case booking.OutcomeFatal:
			err := outcome.Err
			if err == nil {
				err = fmt.Errorf("%s", outcome.Reason)
			}
			return res, fmt.Errorf("attempt %d: %s: %w", res.Attempts, outcome.Reason, err)

		case booking.OutcomeRetryable:
			l.log().Info("attempt did not reserve", "attempt", res.Attempts, "reason", outcome.Reason)
		}

		if !l.now().Before(deadline) {
			l.log().Info("budget exhausted", "attempts", res.Attempts, "elapsed", res.Elapsed.Round(time.Millisecond))
			return res, nil
		}

		if recover != nil {
			if err := recover(ctx); err != nil {
				// Recovery failures are not terminal; the next attempt
				// re-observes the page and classifies for itself.
				l.log().Warn("recovery action failed", "error", err)
			}
		}

		if err := limiter.Wait(ctx); err != nil {
			res.Elapsed = l.now().Sub(start)
			return res, err
		}
	}
}
