package events

import (
	"context"
	"testing"

	"github.com/jonwraymond/toolguard/observe"
)

// BenchmarkDispatcher_Publish measures the non-blocking publish path
// with a running consumer.
func BenchmarkDispatcher_Publish(b *testing.B) {
	d := NewDispatcher(DispatcherConfig{
		Buffer: 4096,
		Sinks:  []Sink{SinkFunc(func(context.Context, Event) {})},
	})
	defer d.Close()
	ev := Event{Kind: KindRetryAttempt, Tool: "search_code", Circuit: "github-search", Attempt: 1}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Publish(ev)
	}
}

// BenchmarkLoggerSink_Handle measures formatting cost per event.
func BenchmarkLoggerSink_Handle(b *testing.B) {
	sink := NewLoggerSink(observe.NopLogger())
	ctx := context.Background()
	ev := Event{Kind: KindCircuitOpened, Circuit: "github-search", Failures: 2}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sink.Handle(ctx, ev)
	}
}
