package fallback

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonwraymond/toolguard/engine"
	"github.com/jonwraymond/toolguard/policy"
	"github.com/jonwraymond/toolguard/resilience"
)

// newTestEngine opens its circuit after one failure and stays open.
func newTestEngine() *engine.Engine {
	table := policy.NewTable(
		map[policy.Category]policy.CategoryConfig{
			"lookup": {
				Timeout: time.Second,
				Retry:   resilience.RetryPolicy{MaxAttempts: 1},
				Circuit: resilience.CircuitPolicy{FailureThreshold: 1, ResetTimeout: time.Hour},
			},
		},
		map[string]policy.Route{
			"package_info": {Category: "lookup", Circuit: "package-registry"},
		},
	)
	return engine.New(engine.Config{Table: table})
}

func TestExecute_RecordsAndServesStale(t *testing.T) {
	eng := newTestEngine()
	store := NewMemory()
	ctx := context.Background()
	input := map[string]any{"name": "left-pad"}

	// A successful call records its result.
	out, stale, err := Execute(ctx, eng, store, "package_info", input, time.Minute,
		func(context.Context) ([]byte, error) {
			return []byte(`{"name":"left-pad"}`), nil
		})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if stale {
		t.Error("fresh result reported stale")
	}
	if !bytes.Equal(out, []byte(`{"name":"left-pad"}`)) {
		t.Errorf("Execute() = %q", out)
	}

	// One failure opens the circuit.
	down := errors.New("registry down")
	_, _, err = Execute(ctx, eng, store, "package_info", input, time.Minute,
		func(context.Context) ([]byte, error) { return nil, down })
	if !errors.Is(err, down) {
		t.Fatalf("Execute() error = %v, want the genuine failure", err)
	}

	// While open, the recorded result answers, marked stale.
	calls := 0
	out, stale, err = Execute(ctx, eng, store, "package_info", input, time.Minute,
		func(context.Context) ([]byte, error) {
			calls++
			return nil, down
		})
	if err != nil {
		t.Fatalf("Execute() error = %v while open", err)
	}
	if calls != 0 {
		t.Errorf("op called %d times while open, want 0", calls)
	}
	if !stale {
		t.Error("stored result not reported stale")
	}
	if !bytes.Equal(out, []byte(`{"name":"left-pad"}`)) {
		t.Errorf("stale Execute() = %q", out)
	}
}

func TestExecute_NoStoredResult(t *testing.T) {
	eng := newTestEngine()
	store := NewMemory()
	ctx := context.Background()
	down := errors.New("registry down")

	// Open the circuit with nothing recorded.
	_, _, _ = Execute(ctx, eng, store, "package_info", nil, time.Minute,
		func(context.Context) ([]byte, error) { return nil, down })

	_, _, err := Execute(ctx, eng, store, "package_info", nil, time.Minute,
		func(context.Context) ([]byte, error) { return nil, down })
	if !errors.Is(err, ErrNoResult) {
		t.Errorf("Execute() error = %v, want ErrNoResult", err)
	}
}

func TestExecute_GenuineFailureNotServedFromStore(t *testing.T) {
	eng := newTestEngine()
	store := NewMemory()
	ctx := context.Background()

	// Record a good result, then reset the circuit so the next failure
	// is genuine rather than a rejection.
	_, _, err := Execute(ctx, eng, store, "package_info", nil, time.Minute,
		func(context.Context) ([]byte, error) { return []byte("good"), nil })
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	down := errors.New("registry down")
	_, _, err = Execute(ctx, eng, store, "package_info", nil, time.Minute,
		func(context.Context) ([]byte, error) { return nil, down })
	if !errors.Is(err, down) {
		t.Errorf("Execute() error = %v, want the genuine failure despite a stored result", err)
	}
}

func TestExecute_ExpiredResultNotServed(t *testing.T) {
	eng := newTestEngine()
	store := NewMemory()
	ctx := context.Background()
	down := errors.New("registry down")

	_, _, err := Execute(ctx, eng, store, "package_info", nil, 10*time.Millisecond,
		func(context.Context) ([]byte, error) { return []byte("good"), nil })
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	_, _, _ = Execute(ctx, eng, store, "package_info", nil, time.Minute,
		func(context.Context) ([]byte, error) { return nil, down })
	time.Sleep(20 * time.Millisecond)

	_, _, err = Execute(ctx, eng, store, "package_info", nil, time.Minute,
		func(context.Context) ([]byte, error) { return nil, down })
	if !errors.Is(err, ErrNoResult) {
		t.Errorf("Execute() error = %v, want ErrNoResult once the entry expired", err)
	}
}

func TestExecute_UnusableToolNameFailsLoudly(t *testing.T) {
	eng := newTestEngine()
	store := NewMemory()

	_, _, err := Execute(context.Background(), eng, store, "package\ninfo", nil, time.Minute,
		func(context.Context) ([]byte, error) {
			t.Error("op ran despite an unusable key")
			return nil, nil
		})
	if !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Execute() error = %v, want ErrInvalidKey", err)
	}
}

func TestExecute_NilStore(t *testing.T) {
	eng := newTestEngine()

	_, _, err := Execute(context.Background(), eng, nil, "package_info", nil, time.Minute,
		func(context.Context) ([]byte, error) { return nil, nil })
	if !errors.Is(err, ErrNilStore) {
		t.Errorf("Execute() error = %v, want ErrNilStore", err)
	}
}
