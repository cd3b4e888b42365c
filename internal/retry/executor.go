package retry

import (
	"context"
	"fmt"
	"time"
)

// Operation is one fallible attempt. The context carries the caller's
// cancellation signal; implementations should respect it but are not
// forcibly interrupted mid-flight.
type Operation[T any] func(ctx context.Context) (T, error)

// Outcome reports the result of a retried operation, including how
// much work it took to get there.
type Outcome[T any] struct {
	Value      T
	OK         bool
	Attempts   int
	TotalDelay time.Duration
	Err        error
}

func (o Outcome[T]) Success() bool { return o.OK }

func (o Outcome[T]) Failed() bool { return !o.OK }

// Executor retries operations under one backoff policy. An executor is
// reusable across calls and holds no per-call state; attempts within a
// call are strictly sequential.
type Executor struct {
	policy Policy
}

func NewExecutor(policy Policy) *Executor {
	return &Executor{policy: policy}
}

func (e *Executor) Policy() Policy { return e.policy }

// Do runs op until it succeeds, attempts are exhausted, or ctx is
// canceled. It never panics past its boundary: every failure mode is
// reported through the returned Outcome. No delay is incurred after a
// success or after the final failed attempt.
func Do[T any](ctx context.Context, e *Executor, op Operation[T]) Outcome[T] {
	return DoIf(ctx, e, op, func(error) bool { return true })
}

// DoIf is Do with a retryability predicate: after a failed attempt,
// shouldRetry decides whether the error is worth another try. A false
// return stops immediately with that error, distinguishing terminal
// failures (rejected credentials, protocol mismatch) from transient
// ones (refused, reset, timed out).
func DoIf[T any](ctx context.Context, e *Executor, op Operation[T], shouldRetry func(error) bool) Outcome[T] {
	var out Outcome[T]
	maxAttempts := e.policy.MaxAttempts()
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			out.Err = err
			return out
		}

		value, err := op(ctx)
		out.Attempts = attempt + 1
		if err == nil {
			out.Value = value
			out.OK = true
			out.Err = nil
			return out
		}
		out.Err = err

		if !shouldRetry(err) {
			return out
		}
		if attempt+1 >= maxAttempts {
			return out
		}

		// The wait is committed to the total before it starts, so a
		// cancellation mid-backoff still reports the scheduled delay.
		delay := e.policy.DelayFor(attempt)
		out.TotalDelay += delay
		if err := sleep(ctx, delay); err != nil {
			out.Err = fmt.Errorf("%w (last attempt error: %v)", err, out.Err)
			return out
		}
	}
	return out
}

// sleep waits for d or until ctx is canceled, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
