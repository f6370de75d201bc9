package health

import (
	"fmt"
	"time"

	"github.com/jonwraymond/toolguard/resilience"
)

// Status represents the health of a dependency or of the whole layer.
type Status int

const (
	// StatusHealthy indicates the dependency is serving calls normally.
	StatusHealthy Status = iota
	// StatusDegraded indicates the dependency recently failed and is
	// being probed.
	StatusDegraded
	// StatusUnhealthy indicates the dependency is presumed broken and
	// calls are being fail-fasted.
	StatusUnhealthy
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so reports serialize
// with readable statuses.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "healthy":
		*s = StatusHealthy
	case "degraded":
		*s = StatusDegraded
	case "unhealthy":
		*s = StatusUnhealthy
	default:
		return fmt.Errorf("health: unknown status %q", text)
	}
	return nil
}

// CircuitReport is the health view of one circuit. A circuit that has
// been open for minutes reads very differently from one slow call: the
// open duration and remaining cooldown make that distinction visible.
type CircuitReport struct {
	Name                string        `json:"name"`
	Status              Status        `json:"status"`
	State               string        `json:"state"`
	ConsecutiveFailures int           `json:"consecutive_failures,omitempty"`
	OpenFor             time.Duration `json:"open_for,omitempty"`
	RetryIn             time.Duration `json:"retry_in,omitempty"`
	LastAttemptAt       time.Time     `json:"last_attempt_at"`
}

// Report aggregates the health of every registered circuit.
type Report struct {
	Status    Status          `json:"status"`
	Circuits  []CircuitReport `json:"circuits"`
	CheckedAt time.Time       `json:"checked_at"`
}

// statusFor maps a circuit state to a health status.
func statusFor(state resilience.State) Status {
	switch state {
	case resilience.StateOpen:
		return StatusUnhealthy
	case resilience.StateHalfOpen:
		return StatusDegraded
	default:
		return StatusHealthy
	}
}

// RegistryChecker reports circuit health from a registry snapshot.
type RegistryChecker struct {
	registry *resilience.Registry
}

// NewRegistryChecker creates a checker over reg.
func NewRegistryChecker(reg *resilience.Registry) *RegistryChecker {
	return &RegistryChecker{registry: reg}
}

// Check builds a report from the current registry snapshot. The
// aggregate status is the worst individual status; an empty registry is
// healthy.
func (c *RegistryChecker) Check() Report {
	now := time.Now()
	stats := c.registry.Snapshot()

	report := Report{
		Status:    StatusHealthy,
		Circuits:  make([]CircuitReport, 0, len(stats)),
		CheckedAt: now,
	}

	for _, s := range stats {
		cr := CircuitReport{
			Name:                s.Name,
			Status:              statusFor(s.State),
			State:               s.State.String(),
			ConsecutiveFailures: s.ConsecutiveFailures,
			LastAttemptAt:       s.LastAttemptAt,
		}
		if s.State == resilience.StateOpen {
			cr.OpenFor = now.Sub(s.LastFailureAt)
			cr.RetryIn = s.OpenRemaining
		}
		if cr.Status > report.Status {
			report.Status = cr.Status
		}
		report.Circuits = append(report.Circuits, cr)
	}

	return report
}
