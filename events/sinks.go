package events

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/toolguard/observe"
)

// LoggerSink writes each event as a structured log line. Circuit trips
// log at warn so operators can tell a broken dependency from the info
// noise of ordinary retries.
type LoggerSink struct {
	logger observe.Logger
}

// NewLoggerSink creates a sink writing to logger.
func NewLoggerSink(logger observe.Logger) *LoggerSink {
	return &LoggerSink{logger: logger}
}

// Handle logs the event.
func (s *LoggerSink) Handle(ctx context.Context, ev Event) {
	fields := []observe.Field{
		{Key: "event", Value: string(ev.Kind)},
	}
	if ev.Tool != "" {
		fields = append(fields, observe.Field{Key: "tool", Value: ev.Tool})
	}
	if ev.Circuit != "" {
		fields = append(fields, observe.Field{Key: "circuit", Value: ev.Circuit})
	}

	switch ev.Kind {
	case KindRetryAttempt:
		fields = append(fields,
			observe.Field{Key: "attempt", Value: ev.Attempt},
			observe.Field{Key: "delay_ms", Value: ev.Delay.Milliseconds()},
		)
		if ev.Err != nil {
			fields = append(fields, observe.Field{Key: "error", Value: ev.Err.Error()})
		}
		s.logger.Info(ctx, "retrying after failure", fields...)

	case KindCircuitOpened:
		fields = append(fields, observe.Field{Key: "failures", Value: ev.Failures})
		s.logger.Warn(ctx, "circuit opened", fields...)

	case KindCircuitHalfOpen:
		s.logger.Info(ctx, "circuit probing", fields...)

	case KindCircuitClosed:
		s.logger.Info(ctx, "circuit closed", fields...)

	case KindCircuitEvicted:
		s.logger.Debug(ctx, "idle circuit evicted", fields...)

	default:
		s.logger.Debug(ctx, "resilience event", fields...)
	}
}

// MetricsSink records events as OpenTelemetry counters.
type MetricsSink struct {
	retries     metric.Int64Counter
	transitions metric.Int64Counter
	evictions   metric.Int64Counter
}

// NewMetricsSink creates a sink recording to meter.
func NewMetricsSink(meter metric.Meter) (*MetricsSink, error) {
	retries, err := meter.Int64Counter(
		"resilience.retry.attempts",
		metric.WithDescription("Retry attempts per tool"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	transitions, err := meter.Int64Counter(
		"resilience.circuit.transitions",
		metric.WithDescription("Circuit state transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	evictions, err := meter.Int64Counter(
		"resilience.circuit.evictions",
		metric.WithDescription("Idle circuits evicted by the sweep"),
		metric.WithUnit("{circuit}"),
	)
	if err != nil {
		return nil, err
	}

	return &MetricsSink{retries: retries, transitions: transitions, evictions: evictions}, nil
}

// Handle records the event.
func (s *MetricsSink) Handle(ctx context.Context, ev Event) {
	switch ev.Kind {
	case KindRetryAttempt:
		s.retries.Add(ctx, 1, metric.WithAttributes(
			attribute.String("tool", ev.Tool),
		))

	case KindCircuitOpened, KindCircuitHalfOpen, KindCircuitClosed:
		s.transitions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("circuit", ev.Circuit),
			attribute.String("to", transitionTarget(ev.Kind)),
		))

	case KindCircuitEvicted:
		s.evictions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("circuit", ev.Circuit),
		))
	}
}

func transitionTarget(k Kind) string {
	switch k {
	case KindCircuitOpened:
		return "open"
	case KindCircuitHalfOpen:
		return "half-open"
	case KindCircuitClosed:
		return "closed"
	default:
		return "unknown"
	}
}
