// Package events carries advisory resilience events (retry attempts,
// circuit transitions, evictions) from the execution path to logging
// and metrics sinks. Publishing is fire-and-forget: a bounded queue and
// a background consumer group keep the side channel off the critical
// path, and a full queue drops events rather than blocking callers.
package events
