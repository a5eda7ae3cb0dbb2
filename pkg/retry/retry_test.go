package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errFlaky = errors.New("flaky")

func fast(attempts int) Backoff {
	return Backoff{Attempts: attempts, Initial: time.Millisecond, Max: 2 * time.Millisecond, Multiplier: 2}
}

func TestBackoff_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := fast(5).Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errFlaky
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestBackoff_ExhaustsAttempts(t *testing.T) {
	var retried []int
	b := fast(3)
	b.OnRetry = func(attempt int, err error, _ time.Duration) {
		assert.ErrorIs(t, err, errFlaky)
		retried = append(retried, attempt)
	}

	calls := 0
	err := b.Do(context.Background(), func(context.Context) error {
		calls++
		return errFlaky
	})

	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestBackoff_PermanentStopsAndUnwraps(t *testing.T) {
	calls := 0
	err := fast(5).Do(context.Background(), func(context.Context) error {
		calls++
		return Permanent(errFlaky)
	})

	assert.Equal(t, errFlaky, err)
	assert.Equal(t, 1, calls)
	assert.NoError(t, Permanent(nil))
}

func TestBackoff_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := fast(3).Do(ctx, func(context.Context) error {
		t.Fatal("operation must not run")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackoff_CancelDuringPauseReturnsLastError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := Backoff{Attempts: 3, Initial: time.Hour, Max: time.Hour}
	b.OnRetry = func(int, error, time.Duration) { cancel() }

	err := b.Do(ctx, func(context.Context) error { return errFlaky })
	assert.ErrorIs(t, err, errFlaky)
}

func TestBackoff_DelayGrowsAndCaps(t *testing.T) {
	b := Backoff{Initial: 100 * time.Millisecond, Max: 300 * time.Millisecond, Multiplier: 2}
	assert.Equal(t, 100*time.Millisecond, b.Delay(1))
	assert.Equal(t, 200*time.Millisecond, b.Delay(2))
	assert.Equal(t, 300*time.Millisecond, b.Delay(5))
}

func TestBackoff_JitterStaysInBounds(t *testing.T) {
	b := Connect(3, nil)
	for range 50 {
		d := b.Delay(1)
		assert.GreaterOrEqual(t, d, 180*time.Millisecond)
		assert.LessOrEqual(t, d, 220*time.Millisecond)
	}
}
