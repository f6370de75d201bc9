package fallback

import (
	"context"
	"time"

	"github.com/jonwraymond/toolguard/engine"
)

// Execute runs op for tool through eng, recording each successful
// result under the (tool, input) key. While the tool's circuit is open
// and rejecting calls, the last recorded result is served instead of
// the rejection error; stale reports when that happened, so callers can
// mark the answer as possibly outdated. If nothing is stored,
// ErrNoResult surfaces in place of the rejection.
//
// Only fail-fast rejections are answered from the store. Genuine
// operation failures surface unchanged, so callers never mistake a
// stale answer for a fresh failure.
func Execute(ctx context.Context, eng *engine.Engine, store Store, tool string, input any, ttl time.Duration, op func(context.Context) ([]byte, error)) (result []byte, stale bool, err error) {
	if store == nil {
		return nil, false, ErrNilStore
	}

	key, err := Key(tool, input)
	if err != nil {
		return nil, false, err
	}

	err = eng.ExecuteWithFallback(ctx, tool,
		func(ctx context.Context) error {
			out, opErr := op(ctx)
			if opErr != nil {
				return opErr
			}
			result = out
			_ = store.Set(ctx, key, out, ttl)
			return nil
		},
		func(ctx context.Context) error {
			stored, ok := store.Get(ctx, key)
			if !ok {
				return ErrNoResult
			}
			result = stored
			stale = true
			return nil
		})
	if err != nil {
		return nil, false, err
	}
	return result, stale, nil
}
