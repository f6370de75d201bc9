// Package resilience provides the primitives that protect tool
// execution from failing dependencies: a timeout wrapper, error
// classifiers, a retry executor with exponential backoff, and a
// registry of named circuit breakers with idle eviction.
//
// # Primitives
//
//   - Timeout: races an operation against a per-call budget and fails
//     with a typed *TimeoutError when the budget elapses, abandoning
//     the in-flight operation.
//
//   - Classifiers: pure predicates (IsRateLimited, IsServerError,
//     IsTimeout, IsNotReady, IsResourceBusy) composed with AnyOf into a
//     category's retryable predicate. Errors matching no classifier are
//     non-retryable.
//
//   - Retry: repeats an operation with exponential backoff until
//     success, a non-retryable error, or attempts exhausted. Sleeps are
//     interrupted promptly by context cancellation.
//
//   - Circuit / Registry: per-dependency failure isolation. A circuit
//     opens after a run of consecutive failures, rejects calls with
//     *CircuitOpenError while open, probes with a single trial call
//     after its reset timeout, and closes again after enough probe
//     successes. The registry creates circuits lazily by name and
//     sweeps idle, non-open circuits in the background.
//
// # Usage
//
//	reg := resilience.NewRegistry(resilience.RegistryConfig{})
//	go reg.Run(ctx)
//
//	policy := resilience.CircuitPolicy{
//	    FailureThreshold: 3,
//	    SuccessThreshold: 1,
//	    ResetTimeout:     30 * time.Second,
//	}
//
//	err := resilience.WithTimeout(ctx, "search_code", time.Minute, func(ctx context.Context) error {
//	    return reg.Execute(ctx, "github-search", policy, func(ctx context.Context) error {
//	        return resilience.NewRetry(resilience.RetryPolicy{
//	            MaxAttempts:  3,
//	            InitialDelay: time.Second,
//	            Multiplier:   3,
//	            RetryIf:      resilience.AnyOf(resilience.IsRateLimited, resilience.IsServerError, resilience.IsTimeout),
//	        }).Execute(ctx, callSearchAPI)
//	    })
//	})
//
// The engine package performs exactly this composition per tool name;
// most callers should use it instead of wiring the layers by hand.
package resilience
