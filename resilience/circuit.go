package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State represents the circuit state.
type State int

const (
	// StateClosed means calls flow through normally.
	StateClosed State = iota
	// StateOpen means calls are rejected without reaching the dependency.
	StateOpen
	// StateHalfOpen means a probe call is testing whether the dependency recovered.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitPolicy configures one circuit's state machine.
type CircuitPolicy struct {
	// FailureThreshold is the number of consecutive failures in the
	// closed state before the circuit opens.
	// Default: 5
	FailureThreshold int

	// SuccessThreshold is the number of consecutive probe successes in
	// the half-open state before the circuit closes.
	// Default: 1
	SuccessThreshold int

	// ResetTimeout is how long the circuit stays open before allowing a
	// half-open probe.
	// Default: 30 seconds
	ResetTimeout time.Duration
}

func (p CircuitPolicy) withDefaults() CircuitPolicy {
	if p.FailureThreshold <= 0 {
		p.FailureThreshold = 5
	}
	if p.SuccessThreshold <= 0 {
		p.SuccessThreshold = 1
	}
	if p.ResetTimeout <= 0 {
		p.ResetTimeout = 30 * time.Second
	}
	return p
}

// CircuitStats is a point-in-time snapshot of one circuit.
type CircuitStats struct {
	Name                 string
	State                State
	ConsecutiveFailures  int
	ConsecutiveSuccesses int
	LastFailureAt        time.Time
	LastAttemptAt        time.Time

	// OpenRemaining is how long until an open circuit probes again.
	// Zero unless State is open.
	OpenRemaining time.Duration
}

// Circuit is the failure-isolation state for one named dependency.
// Circuits are created and owned by a Registry; all state access goes
// through the circuit's own mutex so unrelated circuits never contend.
type Circuit struct {
	name   string
	policy CircuitPolicy

	// onTransition is invoked under the circuit lock; it must not call
	// back into the circuit.
	onTransition func(from, to State, stats CircuitStats)

	mu            sync.Mutex
	state         State
	failures      int
	successes     int
	lastFailureAt time.Time
	lastAttemptAt time.Time
	probeInFlight bool
}

func newCircuit(name string, policy CircuitPolicy, onTransition func(from, to State, stats CircuitStats)) *Circuit {
	return &Circuit{
		name:         name,
		policy:       policy.withDefaults(),
		onTransition: onTransition,
		state:        StateClosed,
		// Treat creation as an attempt so a circuit is not swept before
		// its first execution.
		lastAttemptAt: time.Now(),
	}
}

// Name returns the circuit name.
func (c *Circuit) Name() string {
	return c.name
}

// Policy returns the effective circuit policy.
func (c *Circuit) Policy() CircuitPolicy {
	return c.policy
}

// Execute runs op under the circuit. In the open state before the reset
// timeout elapses it returns *CircuitOpenError without calling op. Once
// the timeout elapses the same call becomes the half-open probe; only
// one probe may be in flight at a time. Cancellation of op's context is
// reported but never counted against the circuit.
func (c *Circuit) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := c.before(); err != nil {
		return err
	}

	err := op(ctx)
	c.after(err)
	return err
}

// before atomically checks the state, admits or rejects the call, and
// performs the open -> half-open transition when the reset timeout has
// elapsed. The transition and the probe admission are one step: a state
// check never consumes a probe slot separately from executing the call.
func (c *Circuit) before() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	c.lastAttemptAt = now

	switch c.state {
	case StateOpen:
		elapsed := now.Sub(c.lastFailureAt)
		if elapsed < c.policy.ResetTimeout {
			return &CircuitOpenError{Name: c.name, Remaining: c.policy.ResetTimeout - elapsed}
		}
		c.transitionLocked(StateHalfOpen)
		c.probeInFlight = true
		return nil

	case StateHalfOpen:
		if c.probeInFlight {
			return &CircuitOpenError{Name: c.name}
		}
		c.probeInFlight = true
		return nil

	default:
		return nil
	}
}

func (c *Circuit) after(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateHalfOpen {
		c.probeInFlight = false
	}

	// A cancelled call never genuinely failed against the dependency.
	if err != nil && errors.Is(err, context.Canceled) {
		return
	}

	switch c.state {
	case StateClosed:
		if err != nil {
			c.failures++
			c.lastFailureAt = time.Now()
			if c.failures >= c.policy.FailureThreshold {
				c.transitionLocked(StateOpen)
			}
		} else {
			c.failures = 0
		}

	case StateHalfOpen:
		if err != nil {
			c.lastFailureAt = time.Now()
			c.transitionLocked(StateOpen)
		} else {
			c.successes++
			if c.successes >= c.policy.SuccessThreshold {
				c.transitionLocked(StateClosed)
			}
		}
	}
}

// transitionLocked moves the state machine and resets both counters.
// Callers must hold c.mu.
func (c *Circuit) transitionLocked(to State) {
	from := c.state
	if from == to {
		return
	}
	c.state = to
	c.successes = 0
	if to != StateOpen {
		c.failures = 0
	}
	if to == StateHalfOpen {
		c.probeInFlight = false
	}

	if c.onTransition != nil {
		c.onTransition(from, to, c.statsLocked())
	}
}

// State returns the current state. An open circuit whose reset timeout
// has elapsed is reported as half-open, but the actual transition (and
// the probe slot) is only taken by the next Execute.
func (c *Circuit) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.effectiveStateLocked()
}

func (c *Circuit) effectiveStateLocked() State {
	if c.state == StateOpen && time.Since(c.lastFailureAt) >= c.policy.ResetTimeout {
		return StateHalfOpen
	}
	return c.state
}

// Stats returns a snapshot of the circuit.
func (c *Circuit) Stats() CircuitStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statsLocked()
}

func (c *Circuit) statsLocked() CircuitStats {
	stats := CircuitStats{
		Name:                 c.name,
		State:                c.effectiveStateLocked(),
		ConsecutiveFailures:  c.failures,
		ConsecutiveSuccesses: c.successes,
		LastFailureAt:        c.lastFailureAt,
		LastAttemptAt:        c.lastAttemptAt,
	}
	if stats.State == StateOpen {
		stats.OpenRemaining = c.policy.ResetTimeout - time.Since(c.lastFailureAt)
	}
	return stats
}

// Reset forces the circuit back to closed with zero counters.
func (c *Circuit) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transitionLocked(StateClosed)
	c.failures = 0
	c.probeInFlight = false
}
