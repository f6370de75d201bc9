// Package engine is the public entry point of the resilience layer. It
// resolves a tool name to its category budgets and shared circuit, then
// nests timeout over circuit breaker over retry around the operation:
//
//	eng := engine.New(engine.Config{})
//	go eng.Run(ctx) // idle-circuit eviction
//
//	err := eng.Execute(ctx, "search_code", func(ctx context.Context) error {
//	    return callSearchAPI(ctx, query)
//	})
//
// The timeout is outermost so it bounds total wall-clock time, retries
// included. The circuit wraps retry so an open circuit rejects in
// microseconds instead of burning the retry budget on a dependency
// known to be down. Exactly three failure shapes are added to the
// operation's own errors: *resilience.TimeoutError,
// *resilience.CircuitOpenError, and the caller's context error.
package engine
