package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/toolguard/events"
	"github.com/jonwraymond/toolguard/observe"
	"github.com/jonwraymond/toolguard/policy"
	"github.com/jonwraymond/toolguard/resilience"
)

// ErrUnknownTool is returned when a tool name has no route and no
// default category is configured.
var ErrUnknownTool = errors.New("engine: unknown tool")

// Operation is the already-bound, fully-parameterized invocation of a
// wrapped dependency. The engine knows nothing about what it does.
type Operation func(context.Context) error

// Config configures an Engine.
type Config struct {
	// Table resolves tool names to categories and circuits.
	// Default: policy.DefaultTable()
	Table *policy.Table

	// Registry holds circuit state. When nil the engine creates its own,
	// wired to Dispatcher for transition and eviction events. A caller
	// injecting a registry owns its event wiring and sweep.
	Registry *resilience.Registry

	// Dispatcher receives advisory events. Nil disables event emission.
	Dispatcher *events.Dispatcher

	// Logger records execution outcomes. Default: discard.
	Logger observe.Logger

	// Tracer spans each execution. Default: no-op.
	Tracer trace.Tracer

	// DefaultCategory, when set, routes unknown tool names to this
	// category with a circuit named after the tool. When empty, unknown
	// tools fail with ErrUnknownTool.
	DefaultCategory policy.Category

	// SweepInterval and IdleTTL configure the owned registry's
	// idle-circuit eviction; ignored when Registry is injected.
	SweepInterval time.Duration
	IdleTTL       time.Duration
}

// Engine composes timeout, circuit breaker, and retry around tool
// operations, outermost first: the timeout bounds total wall-clock time
// including retries; the circuit wraps retry so a fail-fast rejection
// spends no retry attempts; retry governs only the raw operation.
type Engine struct {
	table      *policy.Table
	registry   *resilience.Registry
	dispatcher *events.Dispatcher
	logger     observe.Logger
	tracer     trace.Tracer
	defaultCat policy.Category
}

// New creates an engine, applying defaults for unset fields.
func New(cfg Config) *Engine {
	e := &Engine{
		table:      cfg.Table,
		registry:   cfg.Registry,
		dispatcher: cfg.Dispatcher,
		logger:     cfg.Logger,
		tracer:     cfg.Tracer,
		defaultCat: cfg.DefaultCategory,
	}

	if e.table == nil {
		e.table = policy.DefaultTable()
	}
	if e.logger == nil {
		e.logger = observe.NopLogger()
	}
	if e.tracer == nil {
		e.tracer = tracenoop.NewTracerProvider().Tracer("noop")
	}
	if e.registry == nil {
		e.registry = resilience.NewRegistry(resilience.RegistryConfig{
			SweepInterval: cfg.SweepInterval,
			IdleTTL:       cfg.IdleTTL,
			OnTransition:  e.publishTransition,
			OnEvict:       e.publishEviction,
		})
	}

	return e
}

// Registry returns the circuit registry the engine executes against.
func (e *Engine) Registry() *resilience.Registry {
	return e.registry
}

// Run executes the idle-circuit eviction sweep until ctx is cancelled.
// Callers that injected their own registry run its sweep themselves.
func (e *Engine) Run(ctx context.Context) {
	e.registry.Run(ctx)
}

// Execute runs op under the tool's resilience policy. It returns op's
// result, or exactly one of: *resilience.TimeoutError (total budget
// exceeded), *resilience.CircuitOpenError (fail-fast rejection), the
// underlying error once retries are exhausted or deemed non-retryable,
// or ctx.Err() when the caller cancels.
func (e *Engine) Execute(ctx context.Context, tool string, op Operation) error {
	return e.execute(ctx, tool, op, nil)
}

// ExecuteWithFallback is Execute, except fallback answers fail-fast
// rejections instead of surfacing *resilience.CircuitOpenError. Genuine
// operation errors never reach the fallback.
func (e *Engine) ExecuteWithFallback(ctx context.Context, tool string, op, fallback Operation) error {
	return e.execute(ctx, tool, op, fallback)
}

// Do runs a value-returning operation under eng's resilience policy for
// tool. On error the zero value is returned.
func Do[T any](ctx context.Context, eng *Engine, tool string, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := eng.Execute(ctx, tool, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (e *Engine) execute(ctx context.Context, tool string, op, fallback Operation) error {
	route, cfg, err := e.resolve(tool)
	if err != nil {
		return err
	}

	ctx, span := e.tracer.Start(ctx, "resilience.exec."+tool, trace.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("category", string(route.Category)),
		attribute.String("circuit", route.Circuit),
	))
	defer span.End()

	logger := e.logger.WithScope(observe.Scope{
		Tool:     tool,
		Category: string(route.Category),
		Circuit:  route.Circuit,
	})

	retry := resilience.NewRetry(e.instrumentRetry(cfg.Retry, tool, route.Circuit))

	start := time.Now()
	err = resilience.WithTimeout(ctx, tool, cfg.Timeout, func(ctx context.Context) error {
		attempt := func(ctx context.Context) error {
			return retry.Execute(ctx, op)
		}
		if fallback != nil {
			return e.registry.ExecuteWithFallback(ctx, route.Circuit, cfg.Circuit, attempt, fallback)
		}
		return e.registry.Execute(ctx, route.Circuit, cfg.Circuit, attempt)
	})
	duration := time.Since(start)

	fields := []observe.Field{{Key: "duration_ms", Value: duration.Milliseconds()}}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		fields = append(fields, observe.Field{Key: "error", Value: err.Error()})
		logger.Error(ctx, "tool execution failed", fields...)
	} else {
		logger.Debug(ctx, "tool execution completed", fields...)
	}

	return err
}

// resolve maps a tool name to its route and category config.
func (e *Engine) resolve(tool string) (policy.Route, policy.CategoryConfig, error) {
	route, ok := e.table.Route(tool)
	if !ok {
		if e.defaultCat == "" {
			return policy.Route{}, policy.CategoryConfig{}, fmt.Errorf("%w: %q", ErrUnknownTool, tool)
		}
		// Unrouted tools get their own circuit: isolation by default.
		route = policy.Route{Category: e.defaultCat, Circuit: tool}
	}

	cfg, ok := e.table.Config(route.Category)
	if !ok {
		return policy.Route{}, policy.CategoryConfig{}, fmt.Errorf("%w: %q routes to unknown category %q", ErrUnknownTool, tool, route.Category)
	}
	return route, cfg, nil
}

// instrumentRetry layers event emission onto a category retry policy
// without altering its control flow.
func (e *Engine) instrumentRetry(p resilience.RetryPolicy, tool, circuit string) resilience.RetryPolicy {
	if e.dispatcher == nil {
		return p
	}

	inner := p.OnRetry
	p.OnRetry = func(attempt int, err error, delay time.Duration) {
		e.dispatcher.Publish(events.Event{
			Kind:    events.KindRetryAttempt,
			Tool:    tool,
			Circuit: circuit,
			Attempt: attempt,
			Delay:   delay,
			Err:     err,
		})
		if inner != nil {
			inner(attempt, err, delay)
		}
	}
	return p
}

func (e *Engine) publishTransition(from, to resilience.State, stats resilience.CircuitStats) {
	if e.dispatcher == nil {
		return
	}

	ev := events.Event{Circuit: stats.Name}
	switch to {
	case resilience.StateOpen:
		ev.Kind = events.KindCircuitOpened
		ev.Failures = stats.ConsecutiveFailures
	case resilience.StateHalfOpen:
		ev.Kind = events.KindCircuitHalfOpen
	case resilience.StateClosed:
		ev.Kind = events.KindCircuitClosed
	default:
		return
	}
	e.dispatcher.Publish(ev)
}

func (e *Engine) publishEviction(stats resilience.CircuitStats) {
	if e.dispatcher == nil {
		return
	}
	e.dispatcher.Publish(events.Event{
		Kind:    events.KindCircuitEvicted,
		Circuit: stats.Name,
	})
}
