// Package observe provides the telemetry surface for the resilience
// engine: a structured JSON logger with scope attachment and field
// redaction, plus OpenTelemetry tracer and meter setup with pluggable
// exporters. It performs no execution of its own.
package observe
