package resilience

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned when a circuit rejects a call without
	// attempting the underlying operation.
	ErrCircuitOpen = errors.New("resilience: circuit is open")

	// ErrTimeout is returned when an operation exceeds its budget.
	ErrTimeout = errors.New("resilience: operation timed out")
)

// TimeoutError reports that an operation exceeded its timeout budget.
// It matches ErrTimeout under errors.Is.
type TimeoutError struct {
	// Tool is the label of the operation that timed out.
	Tool string
	// Budget is the deadline the operation failed to meet.
	Budget time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("resilience: %s timed out after %s", e.Tool, e.Budget)
}

// Is reports whether target is ErrTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// CircuitOpenError reports a fail-fast rejection: the dependency behind
// the named circuit is presumed broken and the call was not attempted.
// It matches ErrCircuitOpen under errors.Is.
type CircuitOpenError struct {
	// Name is the circuit that rejected the call.
	Name string
	// Remaining is how long until the circuit will probe again.
	// Zero means a half-open probe is already in flight.
	Remaining time.Duration
}

// Error implements the error interface.
func (e *CircuitOpenError) Error() string {
	if e.Remaining <= 0 {
		return fmt.Sprintf("resilience: circuit %q is open (probe in flight)", e.Name)
	}
	return fmt.Sprintf("resilience: circuit %q is open, retry in %s", e.Name, e.Remaining)
}

// Is reports whether target is ErrCircuitOpen.
func (e *CircuitOpenError) Is(target error) bool {
	return target == ErrCircuitOpen
}

// StatusError carries an HTTP-like status code so classifiers can use a
// structured signal instead of message matching. Integrations that talk
// to remote APIs should wrap failures in it.
type StatusError struct {
	// Code is the HTTP-like status code.
	Code int
	// Message describes the failure.
	Message string
	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("resilience: status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("resilience: status %d", e.Code)
}

// Unwrap returns the underlying error.
func (e *StatusError) Unwrap() error {
	return e.Err
}

// StatusCode returns the carried status code.
func (e *StatusError) StatusCode() int {
	return e.Code
}
