package engine

import (
	"fmt"

	"github.com/example/slot-sniper/internal/domain/booking"
)

// DefaultMaxUnknownStreak caps consecutive attempts that ended in an unknown
// page state before the run is declared fatal. Retrying forever on a broken
// page was the observed failure mode this guards against.
const DefaultMaxUnknownStreak = 5

// Observation is what the page automation layer saw after a claim attempt.
type Observation struct {
	// Confirmed: the confirmation marker is visible.
	Confirmed bool
	// Transient: a dismissible error dialog, disabled claim control, or
	// not-yet-sufficient availability. Always safe to retry.
	Transient bool
	Reason    string
	// Err is an automation-layer failure (element lookup timeout,
	// unexpected structure). Treated as unknown state.
	Err error
}

// Classifier turns observations into attempt outcomes. Unknown states are
// retried conservatively up to MaxUnknownStreak in a row, then escalated to
// fatal. A classifier belongs to one run; it is not safe for concurrent use.
type Classifier struct {
	// MaxUnknownStreak <= 0 means DefaultMaxUnknownStreak.
	MaxUnknownStreak int

	streak int
}

func (c *Classifier) max() int {
	if c.MaxUnknownStreak > 0 {
		return c.MaxUnknownStreak
	}
	return DefaultMaxUnknownStreak
}

func (c *Classifier) Classify(obs Observation) booking.AttemptOutcome {
	switch {
	case obs.Confirmed:
		c.streak = 0
		return booking.Success()

	case obs.Transient:
		c.streak = 0
		reason := obs.Reason
		if reason == "" {
			reason = "transient page state"
		}
		return booking.Retryable(reason)
	}

	// Neither marker: unknown state, possibly a broken page.
	c.streak++
	reason := obs.Reason
	if reason == "" {
		reason = "no expected marker on page"
	}
	if obs.Err != nil {
		reason = fmt.Sprintf("%s: %v", reason, obs.Err)
	}
	if c.streak >= c.max() {
		return booking.Fatal(fmt.Sprintf("%d consecutive unknown outcomes, last: %s", c.streak, reason), obs.Err)
	}
	return booking.Retryable(reason)
}
