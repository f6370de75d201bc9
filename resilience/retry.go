package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// RetryPolicy configures retry behavior for one category of operations.
type RetryPolicy struct {
	// MaxAttempts is the maximum number of attempts (including the first).
	// Default: 3
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	// Default: 100ms
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries.
	// Default: 30s
	MaxDelay time.Duration

	// Multiplier is the exponential backoff multiplier.
	// Default: 2.0
	Multiplier float64

	// Jitter adds up to 25% randomness to delays. Off by default so
	// backoff sequences are exact.
	Jitter bool

	// RetryIf decides whether an error is worth another attempt.
	// Default: nothing is retried (unclassified failures must not cause
	// unbounded retrying).
	RetryIf Predicate

	// OnRetry is called before each retry sleep. It is advisory; it must
	// not alter control flow.
	OnRetry func(attempt int, err error, delay time.Duration)
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = 100 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 30 * time.Second
	}
	if p.Multiplier <= 0 {
		p.Multiplier = 2.0
	}
	if p.RetryIf == nil {
		p.RetryIf = func(error) bool { return false }
	}
	return p
}

// Retry executes operations with exponential backoff.
type Retry struct {
	policy RetryPolicy
}

// NewRetry creates a retry executor, applying policy defaults.
func NewRetry(policy RetryPolicy) *Retry {
	return &Retry{policy: policy.withDefaults()}
}

// Execute runs op until it succeeds, fails with a non-retryable error,
// or attempts are exhausted; the last error is returned. A non-retryable
// error and the final attempt both return immediately with zero sleeps.
// The inter-attempt sleep honors ctx cancellation, returning ctx.Err().
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !r.policy.RetryIf(err) || attempt == r.policy.MaxAttempts {
			return err
		}

		delay := r.delayFor(attempt)
		if r.policy.OnRetry != nil {
			r.policy.OnRetry(attempt, err, delay)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return lastErr
}

// delayFor returns the sleep before the retry following attempt:
// min(InitialDelay * Multiplier^(attempt-1), MaxDelay).
func (r *Retry) delayFor(attempt int) time.Duration {
	mult := math.Pow(r.policy.Multiplier, float64(attempt-1))
	delay := time.Duration(float64(r.policy.InitialDelay) * mult)

	if delay > r.policy.MaxDelay || delay <= 0 {
		delay = r.policy.MaxDelay
	}

	if r.policy.Jitter && delay > 0 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		delay += time.Duration(rand.Int64N(int64(delay / 4)))
	}

	return delay
}

// Policy returns the effective retry policy.
func (r *Retry) Policy() RetryPolicy {
	return r.policy
}
