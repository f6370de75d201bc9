package resilience

import (
	"context"
	"time"
)

// WithTimeout races op against a deadline of budget. If the deadline
// fires first, the operation is abandoned (its context is cancelled and
// its eventual completion discarded) and a *TimeoutError labelled with
// tool is returned. If the caller's context is cancelled first, the
// cancellation error propagates instead so callers can tell a slow
// dependency from a departed client. Otherwise op's outcome propagates
// unchanged.
func WithTimeout(ctx context.Context, tool string, budget time.Duration, op func(context.Context) error) error {
	if budget <= 0 {
		return op(ctx)
	}

	opCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	// Buffered so the abandoned goroutine can always complete its send.
	done := make(chan error, 1)
	go func() {
		done <- op(opCtx)
	}()

	select {
	case err := <-done:
		return err
	case <-opCtx.Done():
		if ctx.Err() != nil {
			// Caller cancelled; not a timeout.
			return ctx.Err()
		}
		return &TimeoutError{Tool: tool, Budget: budget}
	}
}
