package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/slot-sniper/internal/domain/booking"
)

func quietLoop(budget time.Duration) *Loop {
	return &Loop{Budget: budget, Floor: time.Millisecond}
}

func TestRunRetryableThenSuccess(t *testing.T) {
	outcomes := []booking.AttemptOutcome{
		booking.Retryable("no matching slot yet"),
		booking.Success(),
	}
	i := 0
	attempt := func(ctx context.Context) booking.AttemptOutcome {
		o := outcomes[i]
		i++
		return o
	}

	recoveries := 0
	res, err := quietLoop(time.Minute).Run(context.Background(), attempt, func(ctx context.Context) error {
		recoveries++
		return nil
	})

	require.NoError(t, err)
	require.True(t, res.Reserved)
	require.Equal(t, 2, res.Attempts)
	require.Equal(t, 1, recoveries, "recovery runs once, between the two attempts")
}

func TestRunZeroBudgetMakesOneAttempt(t *testing.T) {
	calls := 0
	attempt := func(ctx context.Context) booking.AttemptOutcome {
		calls++
		return booking.Retryable("still nothing")
	}

	res, err := quietLoop(0).Run(context.Background(), attempt, nil)
	require.NoError(t, err)
	require.False(t, res.Reserved)
	require.Equal(t, 1, calls)
	require.Equal(t, 1, res.Attempts)
}

func TestRunStopsAtBudget(t *testing.T) {
	attempt := func(ctx context.Context) booking.AttemptOutcome {
		time.Sleep(5 * time.Millisecond)
		return booking.Retryable("taken")
	}

	budget := 30 * time.Millisecond
	start := time.Now()
	res, err := quietLoop(budget).Run(context.Background(), attempt, nil)
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.False(t, res.Reserved)
	require.GreaterOrEqual(t, res.Attempts, 1)
	// Never exceeds the budget by more than one attempt's worst case plus
	// the floor; generous bound to keep the test stable.
	require.Less(t, elapsed, budget+200*time.Millisecond)
}

func TestRunFatalShortCircuits(t *testing.T) {
	boom := errors.New("session rejected")
	calls := 0
	attempt := func(ctx context.Context) booking.AttemptOutcome {
		calls++
		return booking.Fatal("authentication failed", boom)
	}

	res, err := quietLoop(time.Minute).Run(context.Background(), attempt, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, boom)
	require.False(t, res.Reserved)
	require.Equal(t, 1, calls, "no further attempts after a fatal outcome")
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempt := func(ctx context.Context) booking.AttemptOutcome {
		cancel()
		return booking.Retryable("keep going")
	}

	res, err := quietLoop(time.Minute).Run(ctx, attempt, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, res.Reserved)
	require.Equal(t, 1, res.Attempts)
}

func TestRunRecoveryFailureDoesNotStopLoop(t *testing.T) {
	outcomes := []booking.AttemptOutcome{
		booking.Retryable("error dialog"),
		booking.Success(),
	}
	i := 0
	attempt := func(ctx context.Context) booking.AttemptOutcome {
		o := outcomes[i]
		i++
		return o
	}

	res, err := quietLoop(time.Minute).Run(context.Background(), attempt, func(ctx context.Context) error {
		return errors.New("reload failed")
	})
	require.NoError(t, err)
	require.True(t, res.Reserved)
	require.Equal(t, 2, res.Attempts)
}
