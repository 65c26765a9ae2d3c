package booking

import (
	"fmt"
	"time"
)

// TargetWindow describes what a run is trying to claim: a calendar date, the
// ideal time of day, the acceptable range around it, and the capacity the
// slot must still have. Built once from config and read-only afterwards.
type TargetWindow struct {
	Date             time.Time
	Desired          TimeOfDay
	WindowStart      TimeOfDay
	WindowEnd        TimeOfDay
	RequiredCapacity int
}

// Validate rejects windows that cannot select anything sensible. Desired is
// required to sit inside the window here, at load time; the selector itself
// only treats the bounds as the hard filter.
func (w TargetWindow) Validate() error {
	if w.Date.IsZero() {
		return fmt.Errorf("target date required")
	}
	if w.RequiredCapacity < 1 {
		return fmt.Errorf("required capacity must be >= 1")
	}
	if w.WindowStart > w.WindowEnd {
		return fmt.Errorf("window start %s is after window end %s", w.WindowStart, w.WindowEnd)
	}
	if w.Desired < w.WindowStart || w.Desired > w.WindowEnd {
		return fmt.Errorf("desired time %s outside window %s..%s", w.Desired, w.WindowStart, w.WindowEnd)
	}
	return nil
}

// Slot is one bookable unit as observed on the page. Ref is an opaque handle
// into the page-automation layer; slots are rebuilt on every fetch and never
// outlive the attempt that fetched them.
type Slot struct {
	Time     TimeOfDay
	Capacity int
	Ref      any
}

// ReleaseInstant is the wall-clock moment reservations open, resolved against
// "now" in its timezone when the gate starts waiting.
type ReleaseInstant struct {
	Location *time.Location
	Hour     int
	Minute   int
}

// Next returns the instant on now's calendar day in the instant's timezone,
// with seconds zeroed.
func (r ReleaseInstant) Next(now time.Time) time.Time {
	local := now.In(r.Location)
	return time.Date(local.Year(), local.Month(), local.Day(), r.Hour, r.Minute, 0, 0, r.Location)
}

func (r ReleaseInstant) String() string {
	return fmt.Sprintf("%02d:%02d %s", r.Hour, r.Minute, r.Location)
}

type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeRetryable
	OutcomeFatal
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeRetryable:
		return "retryable"
	case OutcomeFatal:
		return "fatal"
	}
	return "unknown"
}

// AttemptOutcome is the classified result of one acquisition attempt. The
// loop consumes it to decide continue, recover, or stop.
type AttemptOutcome struct {
	Kind   OutcomeKind
	Reason string
	Err    error
}

func Success() AttemptOutcome {
	return AttemptOutcome{Kind: OutcomeSuccess}
}

func Retryable(reason string) AttemptOutcome {
	return AttemptOutcome{Kind: OutcomeRetryable, Reason: reason}
}

func Fatal(reason string, err error) AttemptOutcome {
	return AttemptOutcome{Kind: OutcomeFatal, Reason: reason, Err: err}
}

// LoopResult is the final report of an acquisition loop run. Budget
// exhaustion is a normal termination: Reserved is false and the loop returns
// no error.
type LoopResult struct {
	Reserved bool
	Attempts int
	Elapsed  time.Duration
}
