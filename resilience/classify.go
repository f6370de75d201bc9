package resilience

import (
	"context"
	"errors"
	"strings"
)

// StatusCoder is implemented by errors that carry an HTTP-like status
// code. Classifiers prefer this structured signal over message matching.
type StatusCoder interface {
	StatusCode() int
}

// Predicate classifies an error. Predicates must treat a nil error as
// not matching and must not panic on arbitrary error values.
type Predicate func(err error) bool

// AnyOf composes predicates with OR. An error matching none of them is
// considered non-retryable: uncertainty must not cause unbounded retrying.
func AnyOf(preds ...Predicate) Predicate {
	return func(err error) bool {
		for _, p := range preds {
			if p(err) {
				return true
			}
		}
		return false
	}
}

// httpStatus extracts a carried status code, walking the error chain.
func httpStatus(err error) (int, bool) {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode(), true
	}
	return 0, false
}

func messageContains(err error, substrs ...string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range substrs {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// IsRateLimited reports whether err indicates rate limiting or quota
// exhaustion. A carried status of 403 or 429 takes precedence over the
// message text.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := httpStatus(err); ok {
		return code == 403 || code == 429
	}
	return messageContains(err, "rate limit", "too many requests", "quota exceeded")
}

// IsServerError reports whether err carries a 5xx status.
func IsServerError(err error) bool {
	if code, ok := httpStatus(err); ok {
		return code >= 500 && code <= 599
	}
	return false
}

// IsTimeout reports whether err is a timeout: a TimeoutError, a context
// deadline, or a message that reads like one.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return messageContains(err, "timeout", "timed out", "deadline exceeded")
}

// IsNotReady reports whether err indicates a dependency that has not
// finished starting up, such as a language server still indexing.
func IsNotReady(err error) bool {
	return messageContains(err, "not ready", "not initialized", "server is starting")
}

// IsResourceBusy reports whether err indicates a transiently busy local
// resource (file locks, contended handles).
func IsResourceBusy(err error) bool {
	return messageContains(err, "resource busy", "device or resource busy", "file is locked", "temporarily unavailable")
}
