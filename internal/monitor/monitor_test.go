package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/slot-sniper/internal/domain/booking"
)

type fetcherFunc func(ctx context.Context) ([]booking.Slot, error)

func (f fetcherFunc) FetchAvailability(ctx context.Context) ([]booking.Slot, error) {
	return f(ctx)
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []CheckResult
	err   error
}

func (n *recordingNotifier) Notify(ctx context.Context, res CheckResult) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, res)
	return n.err
}

type recordingMetrics struct {
	mu     sync.Mutex
	points map[string][]float64
}

func (m *recordingMetrics) Record(ctx context.Context, name string, value float64, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.points == nil {
		m.points = map[string][]float64{}
	}
	m.points[name] = append(m.points[name], value)
}

func slots(n int) []booking.Slot {
	out := make([]booking.Slot, n)
	for i := range out {
		out[i] = booking.Slot{Time: booking.TimeOfDay(9*60 + i*10), Capacity: 4}
	}
	return out
}

func TestCheckOnceSuccess(t *testing.T) {
	m := &Monitor{
		Fetcher: fetcherFunc(func(ctx context.Context) ([]booking.Slot, error) { return slots(3), nil }),
		Date:    "2026-09-01",
	}
	res := m.CheckOnce(context.Background())
	require.True(t, res.Success)
	require.Equal(t, 3, res.Total)
	require.Equal(t, "2026-09-01", res.Date)
}

func TestCheckOnceFetchFailure(t *testing.T) {
	boom := errors.New("login rejected")
	m := &Monitor{
		Fetcher: fetcherFunc(func(ctx context.Context) ([]booking.Slot, error) { return nil, boom }),
		Date:    "2026-09-01",
	}
	res := m.CheckOnce(context.Background())
	require.False(t, res.Success)
	require.ErrorIs(t, res.Err, boom)
	require.Zero(t, res.Total)
}

func TestTickNotifiesOnlyWhenAvailabilityFound(t *testing.T) {
	notifier := &recordingNotifier{}
	metrics := &recordingMetrics{}

	empty := &Monitor{
		Fetcher:  fetcherFunc(func(ctx context.Context) ([]booking.Slot, error) { return nil, nil }),
		Notifier: notifier,
		Metrics:  metrics,
	}
	empty.tick(context.Background())
	require.Empty(t, notifier.calls, "no notification for zero availability")

	found := &Monitor{
		Fetcher:  fetcherFunc(func(ctx context.Context) ([]booking.Slot, error) { return slots(2), nil }),
		Notifier: notifier,
		Metrics:  metrics,
	}
	found.tick(context.Background())
	require.Len(t, notifier.calls, 1)
	require.Equal(t, 2, notifier.calls[0].Total)

	// Metrics are recorded for every check, found or not.
	require.Equal(t, []float64{0, 2}, metrics.points["available_slots"])
	require.Equal(t, []float64{1, 1}, metrics.points["check_success"])
}

func TestTickSurvivesNotifierFailure(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	m := &Monitor{
		Fetcher:  fetcherFunc(func(ctx context.Context) ([]booking.Slot, error) { return slots(1), nil }),
		Notifier: notifier,
	}
	require.NotPanics(t, func() { m.tick(context.Background()) })
	require.Len(t, notifier.calls, 1)
}

func TestRunChecksImmediatelyAndStopsOnCancel(t *testing.T) {
	var mu sync.Mutex
	checks := 0
	m := &Monitor{
		Fetcher: fetcherFunc(func(ctx context.Context) ([]booking.Slot, error) {
			mu.Lock()
			checks++
			mu.Unlock()
			return nil, nil
		}),
		Interval: time.Hour,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return checks == 1
	}, 2*time.Second, 10*time.Millisecond, "first check fires without waiting a full interval")

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("monitor ignored cancellation")
	}
}
