// Package cache provides the cache stores for ordering and dimension data.
// Supports both in-memory and Redis backends for multi-instance deployments.
package cache

import (
	"context"
	"time"
)

// Default TTLs for the two cache families. Both are external tunables; these
// are the fallbacks when the config leaves them unset.
const (
	// DefaultOrderTTL is the time-to-live for ordering entries.
	DefaultOrderTTL = 1 * time.Hour

	// DefaultDimensionTTL is the time-to-live for image dimension entries.
	DefaultDimensionTTL = 24 * time.Hour

	// DefaultFallbackTTL is the time-to-live for the degraded-mode fallback
	// slot holding the last successfully assembled response per issue.
	DefaultFallbackTTL = 24 * time.Hour
)

// Store is a byte-oriented key-value store with per-entry TTL.
// Implementations must be safe for concurrent use and must never return an
// expired entry as a hit.
type Store interface {
	// Get retrieves a value. The second return value reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Kind names the backend ("memory" or "redis") for introspection.
	Kind() string

	// Close releases any resources held by the store.
	Close() error
}
