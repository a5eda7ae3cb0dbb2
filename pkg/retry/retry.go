// Package retry runs an operation again after a growing, jittered pause.
// Every error is retried unless it is wrapped with Permanent.
package retry

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth another attempt. Do returns the
// unwrapped error immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Backoff describes how many times to try and how long to wait in between.
// The n-th pause is Initial * Multiplier^(n-1), capped at Max and then
// spread by ±Jitter of itself.
type Backoff struct {
	Attempts   int
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64

	// OnRetry, when set, is called before each pause.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Connect is the schedule used to reach an external service at startup.
func Connect(attempts int, onRetry func(attempt int, err error, delay time.Duration)) Backoff {
	return Backoff{
		Attempts:   attempts,
		Initial:    200 * time.Millisecond,
		Max:        2 * time.Second,
		Multiplier: 2,
		Jitter:     0.1,
		OnRetry:    onRetry,
	}
}

// Do calls op until it succeeds, returns a Permanent error, the attempts
// run out or ctx is done. The last error from op wins over ctx.Err().
func (b Backoff) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := max(b.Attempts, 1)

	var last error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			if last != nil {
				return last
			}
			return err
		}

		last = op(ctx)
		if last == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(last, &perm) {
			return perm.err
		}
		if attempt >= attempts {
			return last
		}

		delay := b.Delay(attempt)
		if b.OnRetry != nil {
			b.OnRetry(attempt, last, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return last
		case <-timer.C:
		}
	}
}

// Delay returns the pause after the given failed attempt, starting at 1.
func (b Backoff) Delay(attempt int) time.Duration {
	d := float64(b.Initial)
	for i := 1; i < attempt && (b.Max <= 0 || d < float64(b.Max)); i++ {
		d *= max(b.Multiplier, 1)
	}
	if b.Max > 0 && d > float64(b.Max) {
		d = float64(b.Max)
	}
	if b.Jitter > 0 {
		d += d * b.Jitter * (rand.Float64()*2 - 1)
	}
	return time.Duration(max(d, 0))
}
