package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Policy bounds how a single call is retried: at most MaxAttempts tries,
// delays starting at InitialDelay and growing by Multiplier, all inside a
// total wall-clock Budget measured from the first attempt.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
	Budget       time.Duration

	// OnRetry, if set, is called before each backoff sleep.
	OnRetry func(state State, err error)

	// Now and Sleep default to the wall clock. Tests replace them.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// State describes a call between attempts. It only lives for one Do call.
type State struct {
	Attempt   int
	Elapsed   time.Duration
	NextDelay time.Duration
}

// DefaultPolicy returns 3 attempts, 1s initial delay, x2 backoff, 30s budget.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		Multiplier:   2.0,
		Budget:       30 * time.Second,
	}
}

// Validate checks if the policy parameters are usable.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if p.InitialDelay < 0 {
		return fmt.Errorf("initial delay must be non-negative, got %v", p.InitialDelay)
	}
	if p.Multiplier < 1.0 {
		return fmt.Errorf("backoff multiplier must be >= 1.0, got %f", p.Multiplier)
	}
	if p.Budget <= 0 {
		return fmt.Errorf("total budget must be positive, got %v", p.Budget)
	}
	return nil
}

// Do runs op until it succeeds, fails fatally, or the policy gives up.
// Only errors classified KindRetryable are retried. Every failure that ends
// the call comes back as a *PermanentError wrapping the last attempt's error.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	now := p.Now
	if now == nil {
		now = time.Now
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	start := now()
	delay := p.InitialDelay

	for attempt := 1; ; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}

		elapsed := now().Sub(start)
		if KindOf(err) != KindRetryable {
			return zero, &PermanentError{Attempts: attempt, Elapsed: elapsed, Err: err}
		}
		if attempt >= maxAttempts || elapsed+delay > p.Budget {
			return zero, &PermanentError{Attempts: attempt, Elapsed: elapsed, Err: err}
		}

		wait := delay
		if remaining := p.Budget - elapsed; remaining < wait {
			wait = remaining
		}
		if p.OnRetry != nil {
			p.OnRetry(State{Attempt: attempt, Elapsed: elapsed, NextDelay: wait}, err)
		}

		if sleepErr := sleep(ctx, wait); sleepErr != nil {
			return zero, &PermanentError{
				Attempts: attempt,
				Elapsed:  now().Sub(start),
				Err:      errors.Join(sleepErr, err),
			}
		}
		delay = time.Duration(float64(delay) * p.Multiplier)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
