// Package fallback serves the last known good result of a tool while
// the circuit guarding it is open.
//
// The engine's fallback hook answers fail-fast rejections; this package
// gives that hook something to answer with. Execute records every
// successful result in a Store under a deterministic key derived from
// the tool name and its input, and replays the stored result when the
// circuit rejects a call. Results expire: a stale-but-recent answer is
// better than none, an ancient one is not.
//
//	store := fallback.NewMemory()
//	out, stale, err := fallback.Execute(ctx, eng, store, "package_info",
//		map[string]any{"name": "left-pad"}, 10*time.Minute,
//		func(ctx context.Context) ([]byte, error) {
//			return registry.Lookup(ctx, "left-pad")
//		})
//
// Genuine operation failures are never answered from the store; only
// circuit rejections are.
package fallback
