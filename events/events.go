package events

import (
	"time"
)

// Kind identifies a resilience event.
type Kind string

// The event kinds emitted by the engine and registry.
const (
	// KindRetryAttempt is emitted before each retry sleep.
	KindRetryAttempt Kind = "retry_attempt"
	// KindCircuitOpened is emitted when a circuit trips open.
	KindCircuitOpened Kind = "circuit_opened"
	// KindCircuitHalfOpen is emitted when an open circuit begins probing.
	KindCircuitHalfOpen Kind = "circuit_half_open"
	// KindCircuitClosed is emitted when a circuit recovers.
	KindCircuitClosed Kind = "circuit_closed"
	// KindCircuitEvicted is emitted when the sweep removes an idle circuit.
	KindCircuitEvicted Kind = "circuit_evicted"
)

// Event is one advisory resilience event. Events never affect control
// flow: they are published fire-and-forget and dropped under pressure.
type Event struct {
	Kind    Kind
	Tool    string
	Circuit string

	// Attempt and Delay are set for retry events.
	Attempt int
	Delay   time.Duration

	// Failures is set for circuit_opened.
	Failures int

	// Err is the error that triggered a retry, if any.
	Err error

	At time.Time
}
