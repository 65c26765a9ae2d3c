package gate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/slot-sniper/internal/domain/booking"
)

// fakeClock advances by step every time it is read, simulating the passage
// of wall-clock time across poll iterations.
type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func TestWaitReturnsImmediatelyWhenPastTarget(t *testing.T) {
	loc := time.UTC
	clock := &fakeClock{now: time.Date(2026, 9, 1, 11, 30, 0, 0, loc)}
	g := &Gate{Poll: time.Minute, Now: clock.Now}

	done := make(chan error, 1)
	go func() {
		done <- g.Wait(context.Background(), booking.ReleaseInstant{Location: loc, Hour: 11, Minute: 29})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("gate did not release for a past instant")
	}
}

func TestWaitReleasesAtTargetNotBefore(t *testing.T) {
	loc := time.UTC
	// Each clock read advances 30s; the target is 2 minutes out, so the
	// gate must loop a few times before releasing.
	clock := &fakeClock{
		now:  time.Date(2026, 9, 1, 11, 27, 0, 0, loc),
		step: 30 * time.Second,
	}
	g := &Gate{Poll: time.Millisecond, Now: clock.Now}

	err := g.Wait(context.Background(), booking.ReleaseInstant{Location: loc, Hour: 11, Minute: 29})
	require.NoError(t, err)

	// The clock has passed the target by the time the gate releases.
	released := clock.Now()
	target := time.Date(2026, 9, 1, 11, 29, 0, 0, loc)
	require.False(t, released.Before(target), "released at %s, before target %s", released, target)
}

func TestWaitHonorsCancellation(t *testing.T) {
	loc := time.UTC
	clock := &fakeClock{now: time.Date(2026, 9, 1, 0, 0, 0, 0, loc)}
	g := &Gate{Poll: 10 * time.Millisecond, Now: clock.Now}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- g.Wait(ctx, booking.ReleaseInstant{Location: loc, Hour: 23, Minute: 59})
	}()

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("gate ignored cancellation")
	}
}
