package policy

import (
	"time"

	"github.com/jonwraymond/toolguard/resilience"
)

// Category is a class of dependency sharing one timeout/retry/circuit
// policy.
type Category string

// The built-in categories.
const (
	// CategoryRemoteSearch covers remote code/issue search APIs.
	CategoryRemoteSearch Category = "remote-api-search"
	// CategoryRemoteContent covers remote file/tree/commit reads.
	CategoryRemoteContent Category = "remote-api-content"
	// CategoryRemoteWrites covers remote mutations: branches, commits, PRs.
	CategoryRemoteWrites Category = "remote-api-writes"
	// CategoryLSPNavigation covers language-server navigation queries.
	CategoryLSPNavigation Category = "language-server-navigation"
	// CategoryLSPHierarchy covers language-server call/type hierarchy queries.
	CategoryLSPHierarchy Category = "language-server-hierarchy"
	// CategoryLocalFS covers local filesystem search and reads.
	CategoryLocalFS Category = "local-filesystem"
	// CategoryPackageLookup covers package-registry metadata lookups.
	CategoryPackageLookup Category = "package-lookup"
)

// Categories lists the built-in categories.
func Categories() []Category {
	return []Category{
		CategoryRemoteSearch,
		CategoryRemoteContent,
		CategoryRemoteWrites,
		CategoryLSPNavigation,
		CategoryLSPHierarchy,
		CategoryLocalFS,
		CategoryPackageLookup,
	}
}

// CategoryConfig bundles the timeout budget, retry policy, and circuit
// policy for one category. Configs are immutable after process start.
type CategoryConfig struct {
	// Timeout bounds total wall-clock time for a call, retries included.
	Timeout time.Duration
	// Retry governs transient-failure behavior of the raw operation.
	Retry resilience.RetryPolicy
	// Circuit governs when the category's circuits open and close.
	Circuit resilience.CircuitPolicy
}

// Retryable predicates per dependency class. Remote APIs retry on rate
// limiting, 5xx, and timeouts; language servers additionally tolerate a
// server that has not finished starting; local filesystem calls retry
// only on busy resources and timeouts.
var (
	retryRemoteAPI      = resilience.AnyOf(resilience.IsRateLimited, resilience.IsServerError, resilience.IsTimeout)
	retryLanguageServer = resilience.AnyOf(resilience.IsTimeout, resilience.IsNotReady)
	retryLocalFS        = resilience.AnyOf(resilience.IsResourceBusy, resilience.IsTimeout)
)

// Defaults returns the built-in category table.
func Defaults() map[Category]CategoryConfig {
	return map[Category]CategoryConfig{
		CategoryRemoteSearch: {
			Timeout: 60 * time.Second,
			Retry: resilience.RetryPolicy{
				MaxAttempts:  3,
				InitialDelay: time.Second,
				MaxDelay:     30 * time.Second,
				Multiplier:   3,
				RetryIf:      retryRemoteAPI,
			},
			Circuit: resilience.CircuitPolicy{
				FailureThreshold: 2,
				SuccessThreshold: 1,
				ResetTimeout:     60 * time.Second,
			},
		},
		CategoryRemoteContent: {
			Timeout: 60 * time.Second,
			Retry: resilience.RetryPolicy{
				MaxAttempts:  3,
				InitialDelay: time.Second,
				MaxDelay:     30 * time.Second,
				Multiplier:   3,
				RetryIf:      retryRemoteAPI,
			},
			Circuit: resilience.CircuitPolicy{
				FailureThreshold: 3,
				SuccessThreshold: 1,
				ResetTimeout:     30 * time.Second,
			},
		},
		CategoryRemoteWrites: {
			Timeout: 60 * time.Second,
			Retry: resilience.RetryPolicy{
				MaxAttempts:  3,
				InitialDelay: time.Second,
				MaxDelay:     30 * time.Second,
				Multiplier:   3,
				RetryIf:      retryRemoteAPI,
			},
			Circuit: resilience.CircuitPolicy{
				FailureThreshold: 3,
				SuccessThreshold: 1,
				ResetTimeout:     30 * time.Second,
			},
		},
		CategoryLSPNavigation: {
			Timeout: 30 * time.Second,
			Retry: resilience.RetryPolicy{
				MaxAttempts:  3,
				InitialDelay: 500 * time.Millisecond,
				MaxDelay:     5 * time.Second,
				Multiplier:   2,
				RetryIf:      retryLanguageServer,
			},
			Circuit: resilience.CircuitPolicy{
				FailureThreshold: 3,
				SuccessThreshold: 2,
				ResetTimeout:     30 * time.Second,
			},
		},
		CategoryLSPHierarchy: {
			Timeout: 30 * time.Second,
			Retry: resilience.RetryPolicy{
				MaxAttempts:  3,
				InitialDelay: 500 * time.Millisecond,
				MaxDelay:     5 * time.Second,
				Multiplier:   2,
				RetryIf:      retryLanguageServer,
			},
			Circuit: resilience.CircuitPolicy{
				FailureThreshold: 2,
				SuccessThreshold: 2,
				ResetTimeout:     30 * time.Second,
			},
		},
		CategoryLocalFS: {
			Timeout: 30 * time.Second,
			Retry: resilience.RetryPolicy{
				MaxAttempts:  2,
				InitialDelay: 100 * time.Millisecond,
				MaxDelay:     time.Second,
				Multiplier:   2,
				RetryIf:      retryLocalFS,
			},
			Circuit: resilience.CircuitPolicy{
				FailureThreshold: 3,
				SuccessThreshold: 1,
				ResetTimeout:     15 * time.Second,
			},
		},
		CategoryPackageLookup: {
			Timeout: 30 * time.Second,
			Retry: resilience.RetryPolicy{
				MaxAttempts:  3,
				InitialDelay: time.Second,
				MaxDelay:     15 * time.Second,
				Multiplier:   2,
				RetryIf:      retryRemoteAPI,
			},
			Circuit: resilience.CircuitPolicy{
				FailureThreshold: 3,
				SuccessThreshold: 1,
				ResetTimeout:     30 * time.Second,
			},
		},
	}
}
