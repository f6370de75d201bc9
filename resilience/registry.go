package resilience

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// RegistryConfig configures a circuit registry.
type RegistryConfig struct {
	// SweepInterval is how often the idle-eviction sweep runs.
	// Default: 15 minutes
	SweepInterval time.Duration

	// IdleTTL is how long a non-open circuit may sit untouched before
	// the sweep evicts it.
	// Default: 1 hour
	IdleTTL time.Duration

	// OnTransition is called whenever any circuit changes state. It runs
	// under the circuit lock and must not call back into the registry.
	OnTransition func(from, to State, stats CircuitStats)

	// OnEvict is called when the sweep removes an idle circuit.
	OnEvict func(stats CircuitStats)
}

func (c RegistryConfig) withDefaults() RegistryConfig {
	if c.SweepInterval <= 0 {
		c.SweepInterval = 15 * time.Minute
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = time.Hour
	}
	return c
}

// Registry owns all circuits, keyed by name. Circuits are created
// lazily on first use and removed only by the idle-eviction sweep. The
// registry lock guards only the map; each circuit serializes its own
// state, so calls through unrelated circuits proceed in parallel.
type Registry struct {
	config RegistryConfig

	mu       sync.RWMutex
	circuits map[string]*Circuit
}

// NewRegistry creates an empty circuit registry.
func NewRegistry(config RegistryConfig) *Registry {
	return &Registry{
		config:   config.withDefaults(),
		circuits: make(map[string]*Circuit),
	}
}

// Execute runs op under the circuit registered as name, creating the
// circuit with policy on first use. The policy is fixed at creation;
// later calls with a different policy do not reconfigure the circuit.
func (r *Registry) Execute(ctx context.Context, name string, policy CircuitPolicy, op func(context.Context) error) error {
	return r.getOrCreate(name, policy).Execute(ctx, op)
}

// ExecuteWithFallback is Execute, except that a fail-fast rejection is
// answered by fallback instead of surfacing *CircuitOpenError. Genuine
// operation errors are never routed to the fallback.
func (r *Registry) ExecuteWithFallback(ctx context.Context, name string, policy CircuitPolicy, op, fallback func(context.Context) error) error {
	err := r.Execute(ctx, name, policy, op)
	if err != nil && fallback != nil && errors.Is(err, ErrCircuitOpen) {
		return fallback(ctx)
	}
	return err
}

func (r *Registry) getOrCreate(name string, policy CircuitPolicy) *Circuit {
	r.mu.RLock()
	c, ok := r.circuits[name]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.circuits[name]; ok {
		return c
	}
	c = newCircuit(name, policy, r.config.OnTransition)
	r.circuits[name] = c
	return c
}

// Circuit returns the circuit registered as name, if any.
func (r *Registry) Circuit(name string) (*Circuit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.circuits[name]
	return c, ok
}

// Len returns the number of registered circuits.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.circuits)
}

// Reset forces the named circuit back to closed. It reports whether the
// circuit existed.
func (r *Registry) Reset(name string) bool {
	c, ok := r.Circuit(name)
	if ok {
		c.Reset()
	}
	return ok
}

// Snapshot returns stats for every registered circuit, sorted by name.
func (r *Registry) Snapshot() []CircuitStats {
	r.mu.RLock()
	circuits := make([]*Circuit, 0, len(r.circuits))
	for _, c := range r.circuits {
		circuits = append(circuits, c)
	}
	r.mu.RUnlock()

	stats := make([]CircuitStats, 0, len(circuits))
	for _, c := range circuits {
		stats = append(stats, c.Stats())
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats
}

// Run executes the idle-eviction sweep on the configured interval until
// ctx is cancelled. Eviction is memory hygiene, not correctness: an
// evicted circuit is recreated closed with zero counters on next use.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.Sweep(now)
		}
	}
}

// Sweep removes every circuit that is not open and has not seen an
// execution attempt for longer than the idle TTL. Open circuits are
// never removed: evicting one would erase fail-fast memory for a
// dependency still known to be broken. Sweep returns the number of
// circuits evicted.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for name, c := range r.circuits {
		c.mu.Lock()
		idle := c.state != StateOpen && now.Sub(c.lastAttemptAt) > r.config.IdleTTL
		stats := c.statsLocked()
		c.mu.Unlock()

		if !idle {
			continue
		}
		delete(r.circuits, name)
		evicted++
		if r.config.OnEvict != nil {
			r.config.OnEvict(stats)
		}
	}
	return evicted
}
