package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func alwaysRetry(err error) bool { return err != nil }

func TestNewRetry_Defaults(t *testing.T) {
	r := NewRetry(RetryPolicy{})

	if r.policy.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", r.policy.MaxAttempts)
	}
	if r.policy.InitialDelay != 100*time.Millisecond {
		t.Errorf("InitialDelay = %v, want 100ms", r.policy.InitialDelay)
	}
	if r.policy.MaxDelay != 30*time.Second {
		t.Errorf("MaxDelay = %v, want 30s", r.policy.MaxDelay)
	}
	if r.policy.Multiplier != 2.0 {
		t.Errorf("Multiplier = %f, want 2.0", r.policy.Multiplier)
	}
}

func TestRetry_DefaultPredicateNeverRetries(t *testing.T) {
	r := NewRetry(RetryPolicy{MaxAttempts: 5, InitialDelay: time.Millisecond})

	attempts := 0
	testErr := errors.New("unclassified failure")
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return testErr
	})

	if err != testErr {
		t.Errorf("Execute() error = %v, want %v", err, testErr)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (unclassified errors are non-retryable)", attempts)
	}
}

func TestRetry_SuccessOnFirstAttempt(t *testing.T) {
	r := NewRetry(RetryPolicy{MaxAttempts: 3, RetryIf: alwaysRetry})

	attempts := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetry_FailsTwiceThenSucceeds(t *testing.T) {
	var delays []time.Duration
	r := NewRetry(RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     30 * time.Millisecond,
		Multiplier:   3,
		RetryIf:      alwaysRetry,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			delays = append(delays, delay)
		},
	})

	attempts := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	// Backoff sequence: initial, then initial*multiplier.
	want := []time.Duration{time.Millisecond, 3 * time.Millisecond}
	if len(delays) != len(want) {
		t.Fatalf("delays = %v, want %v", delays, want)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delays[%d] = %v, want %v", i, delays[i], want[i])
		}
	}
}

func TestRetry_ExhaustedReturnsLastError(t *testing.T) {
	r := NewRetry(RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		RetryIf:      alwaysRetry,
	})

	attempts := 0
	testErr := errors.New("persistent")
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return testErr
	})

	if err != testErr {
		t.Errorf("Execute() error = %v, want %v", err, testErr)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetry_NonRetryableReturnsImmediately(t *testing.T) {
	retryable := errors.New("retryable")
	fatal := errors.New("fatal")

	attempts := 0
	sleeps := 0
	r := NewRetry(RetryPolicy{
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
		RetryIf:      func(err error) bool { return err == retryable },
		OnRetry:      func(int, error, time.Duration) { sleeps++ },
	})

	err := r.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return fatal
	})

	if err != fatal {
		t.Errorf("Execute() error = %v, want %v", err, fatal)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if sleeps != 0 {
		t.Errorf("sleeps = %d, want 0 (non-retryable errors must not sleep)", sleeps)
	}
}

func TestRetry_NoSleepAfterLastAttempt(t *testing.T) {
	// A 1h delay would hang the test if the final attempt slept.
	r := NewRetry(RetryPolicy{MaxAttempts: 1, InitialDelay: time.Hour, RetryIf: alwaysRetry})

	start := time.Now()
	_ = r.Execute(context.Background(), func(ctx context.Context) error {
		return errors.New("always")
	})
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("final attempt took %v, want immediate return", elapsed)
	}
}

func TestRetry_CancellationInterruptsSleep(t *testing.T) {
	r := NewRetry(RetryPolicy{
		MaxAttempts:  5,
		InitialDelay: time.Hour,
		RetryIf:      alwaysRetry,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := r.Execute(ctx, func(ctx context.Context) error {
		return errors.New("transient")
	})
	elapsed := time.Since(start)

	if err != context.Canceled {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
	if elapsed > time.Second {
		t.Errorf("sleep interrupted after %v, want prompt interruption", elapsed)
	}
}

func TestRetry_DelayFor(t *testing.T) {
	tests := []struct {
		name   string
		policy RetryPolicy
		n      int
		want   time.Duration
	}{
		{
			name:   "first retry uses initial delay",
			policy: RetryPolicy{InitialDelay: time.Second, MaxDelay: 30 * time.Second, Multiplier: 3, RetryIf: alwaysRetry},
			n:      1,
			want:   time.Second,
		},
		{
			name:   "second retry multiplies once",
			policy: RetryPolicy{InitialDelay: time.Second, MaxDelay: 30 * time.Second, Multiplier: 3, RetryIf: alwaysRetry},
			n:      2,
			want:   3 * time.Second,
		},
		{
			name:   "growth is capped at max delay",
			policy: RetryPolicy{InitialDelay: time.Second, MaxDelay: 5 * time.Second, Multiplier: 10, RetryIf: alwaysRetry},
			n:      4,
			want:   5 * time.Second,
		},
		{
			name:   "language server profile",
			policy: RetryPolicy{InitialDelay: 500 * time.Millisecond, MaxDelay: 5 * time.Second, Multiplier: 2, RetryIf: alwaysRetry},
			n:      2,
			want:   time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRetry(tt.policy)
			if got := r.delayFor(tt.n); got != tt.want {
				t.Errorf("delayFor(%d) = %v, want %v", tt.n, got, tt.want)
			}
		})
	}
}

func TestRetry_OnRetryCallback(t *testing.T) {
	var attempts []int
	r := NewRetry(RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		RetryIf:      alwaysRetry,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			attempts = append(attempts, attempt)
		},
	})

	_ = r.Execute(context.Background(), func(ctx context.Context) error {
		return errors.New("always")
	})

	// Two retries follow three attempts.
	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("OnRetry attempts = %v, want [1 2]", attempts)
	}
}
