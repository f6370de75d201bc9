package fallback

import (
	"context"
	"errors"
	"strings"
	"time"
)

// MaxKeyLength is the maximum allowed length for a store key.
const MaxKeyLength = 512

// Sentinel errors for store operations.
var (
	ErrNilStore   = errors.New("fallback: store is nil")
	ErrInvalidKey = errors.New("fallback: key is invalid")
	ErrKeyTooLong = errors.New("fallback: key exceeds max length")
	ErrNoResult   = errors.New("fallback: no stored result")
)

// Store holds the last good result per key so it can be served while
// the dependency behind a circuit is unavailable. Entries carry a TTL:
// a stale-but-recent answer beats none, an ancient one does not.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Get never errors; it returns (nil, false) on miss or expiry.
type Store interface {
	// Get retrieves a stored result. Returns (nil, false) on miss.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set records a result with the given TTL. TTL<=0 stores nothing.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a stored result. Idempotent, no error on miss.
	Delete(ctx context.Context, key string) error
}

// ValidateKey checks that a key is usable as a store key.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
