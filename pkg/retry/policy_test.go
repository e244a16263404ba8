package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arnavsurve/dropreport/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock only advances when the policy sleeps.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func withClock(p retry.Policy, c *fakeClock) retry.Policy {
	p.Now = c.Now
	p.Sleep = c.Sleep
	return p
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	calls := 0

	v, err := retry.Do(context.Background(), withClock(retry.DefaultPolicy(), clock), func(context.Context) (string, error) {
		calls++
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 1, calls)
	assert.Empty(t, clock.sleeps)
}

func TestDo_BudgetArithmetic(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	policy := withClock(retry.Policy{
		MaxAttempts:  6,
		InitialDelay: time.Second,
		Multiplier:   2,
		Budget:       30 * time.Second,
	}, clock)

	var lastErr error
	calls := 0
	_, err := retry.Do(context.Background(), policy, func(context.Context) (int, error) {
		calls++
		lastErr = errors.New("connection refused")
		return 0, retry.Retryable(lastErr)
	})

	require.Error(t, err)
	// After 1+2+4+8 = 15s of waiting, the next 16s delay would overrun 30s.
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}, clock.sleeps)
	assert.Equal(t, 5, calls)
	assert.LessOrEqual(t, calls, 6)
	assert.ErrorIs(t, err, lastErr)

	var perm *retry.PermanentError
	require.ErrorAs(t, err, &perm)
	assert.Equal(t, 5, perm.Attempts)
	assert.Equal(t, 15*time.Second, perm.Elapsed)
}

func TestDo_StopsAtMaxAttempts(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	calls := 0

	_, err := retry.Do(context.Background(), withClock(retry.DefaultPolicy(), clock), func(context.Context) (int, error) {
		calls++
		return 0, retry.Retryable(errors.New("timeout"))
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, clock.sleeps)
}

func TestDo_SleepCappedByRemainingBudget(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	policy := withClock(retry.Policy{
		MaxAttempts:  5,
		InitialDelay: 4 * time.Second,
		Multiplier:   2,
		Budget:       10 * time.Second,
	}, clock)

	calls := 0
	_, err := retry.Do(context.Background(), policy, func(context.Context) (int, error) {
		calls++
		// Each attempt itself takes 3s of wall time.
		clock.now = clock.now.Add(3 * time.Second)
		return 0, retry.Retryable(errors.New("reset by peer"))
	})

	require.Error(t, err)
	// attempt 1 ends at 3s, 3+4 <= 10 so wait 4s; attempt 2 ends at 10s, 10+8 > 10 so stop.
	assert.Equal(t, []time.Duration{4 * time.Second}, clock.sleeps)
	assert.Equal(t, 2, calls)
}

func TestDo_FatalIsNotRetried(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	rejected := errors.New("HTTP 400 Bad Request")
	calls := 0

	_, err := retry.Do(context.Background(), withClock(retry.DefaultPolicy(), clock), func(context.Context) (int, error) {
		calls++
		return 0, retry.Fatal(rejected)
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, clock.sleeps)
	assert.ErrorIs(t, err, rejected)

	var perm *retry.PermanentError
	require.ErrorAs(t, err, &perm)
	assert.Equal(t, 1, perm.Attempts)
}

func TestDo_UnclassifiedErrorIsFatal(t *testing.T) {
	calls := 0
	_, err := retry.Do(context.Background(), retry.DefaultPolicy(), func(context.Context) (int, error) {
		calls++
		return 0, errors.New("boom")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RecoversAfterTransientFailures(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	var states []retry.State
	policy := withClock(retry.DefaultPolicy(), clock)
	policy.OnRetry = func(s retry.State, _ error) {
		states = append(states, s)
	}

	calls := 0
	v, err := retry.Do(context.Background(), policy, func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", retry.Retryable(errors.New("connection refused"))
		}
		return "done", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "done", v)
	require.Len(t, states, 2)
	assert.Equal(t, retry.State{Attempt: 1, Elapsed: 0, NextDelay: time.Second}, states[0])
	assert.Equal(t, retry.State{Attempt: 2, Elapsed: time.Second, NextDelay: 2 * time.Second}, states[1])
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := retry.DefaultPolicy()
	policy.Sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	transient := errors.New("connection refused")
	_, err := retry.Do(ctx, policy, func(context.Context) (int, error) {
		return 0, retry.Retryable(transient)
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, transient)
}

func TestKindOf(t *testing.T) {
	base := errors.New("x")

	assert.Equal(t, retry.KindRetryable, retry.KindOf(retry.Retryable(base)))
	assert.Equal(t, retry.KindFatal, retry.KindOf(retry.Fatal(base)))
	assert.Equal(t, retry.KindFatal, retry.KindOf(base))
	assert.Nil(t, retry.Retryable(nil))
	assert.Nil(t, retry.Fatal(nil))
}

func TestPolicy_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(p *retry.Policy)
		errorMsg string
	}{
		{name: "default is valid", mutate: func(*retry.Policy) {}},
		{name: "zero attempts", mutate: func(p *retry.Policy) { p.MaxAttempts = 0 }, errorMsg: "max attempts"},
		{name: "negative delay", mutate: func(p *retry.Policy) { p.InitialDelay = -time.Second }, errorMsg: "initial delay"},
		{name: "shrinking backoff", mutate: func(p *retry.Policy) { p.Multiplier = 0.5 }, errorMsg: "backoff multiplier"},
		{name: "no budget", mutate: func(p *retry.Policy) { p.Budget = 0 }, errorMsg: "total budget"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := retry.DefaultPolicy()
			tt.mutate(&p)
			err := p.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}
