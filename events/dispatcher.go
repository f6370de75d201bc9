package events

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Sink consumes events off the critical path. Implementations must not
// block for long and must not panic; a panicking sink is contained and
// the event dropped.
type Sink interface {
	Handle(ctx context.Context, ev Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, ev Event)

// Handle calls the function.
func (f SinkFunc) Handle(ctx context.Context, ev Event) {
	f(ctx, ev)
}

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	// Buffer is the queue capacity. Publishing to a full queue drops the
	// event rather than blocking the caller.
	// Default: 256
	Buffer int

	// Workers is the number of consumer goroutines.
	// Default: 1
	Workers int

	// Sinks receive every event, in registration order.
	Sinks []Sink
}

// Dispatcher decouples event producers from sinks with a bounded queue
// and a background consumer group. Publish never blocks and never
// fails: overflow and sink errors are invisible to the caller.
type Dispatcher struct {
	sinks   []Sink
	ch      chan Event
	dropped atomic.Int64

	mu     sync.RWMutex
	closed bool

	group  *errgroup.Group
	cancel context.CancelFunc
}

// NewDispatcher creates a dispatcher and starts its consumers.
func NewDispatcher(config DispatcherConfig) *Dispatcher {
	if config.Buffer <= 0 {
		config.Buffer = 256
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	d := &Dispatcher{
		sinks:  config.Sinks,
		ch:     make(chan Event, config.Buffer),
		group:  g,
		cancel: cancel,
	}

	for i := 0; i < config.Workers; i++ {
		g.Go(func() error {
			d.consume(ctx)
			return nil
		})
	}

	return d
}

// Publish enqueues an event without blocking. Events published after
// Close, or while the queue is full, are counted as dropped.
func (d *Dispatcher) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.dropped.Add(1)
		return
	}

	select {
	case d.ch <- ev:
	default:
		d.dropped.Add(1)
	}
}

// Dropped returns how many events have been dropped so far.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Close stops accepting events, drains the queue, and waits for the
// consumers to finish.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.ch)
	d.mu.Unlock()

	err := d.group.Wait()
	d.cancel()
	return err
}

func (d *Dispatcher) consume(ctx context.Context) {
	for ev := range d.ch {
		d.deliver(ctx, ev)
	}
}

// deliver hands the event to each sink, containing panics so a broken
// sink never stops the consumer.
func (d *Dispatcher) deliver(ctx context.Context, ev Event) {
	for _, s := range d.sinks {
		func() {
			defer func() { _ = recover() }()
			s.Handle(ctx, ev)
		}()
	}
}
