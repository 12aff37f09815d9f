package interfaces

import (
	"context"
	"time"
)

// Cache is the process-wide store that fronts slow collaborators such as the
// GitHub raw file fetcher.
type Cache[V any] interface {
	// Get returns the cached value for key. Fresh reports whether the entry
	// is still inside its TTL window; stale entries are returned with
	// fresh=false so callers can decide whether to serve them.
	Get(key string) (value V, fresh bool, ok bool)
	Set(key string, value V)
	Delete(key string)
	// GetOrFetch serves a fresh entry, refreshes an expired one through fetch
	// and falls back to the last known value when the refresh fails.
	GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (V, error)) (V, error)
}

// CacheStats exposes counters useful for diagnostics endpoints.
type CacheStats struct {
	Hits        int64
	Misses      int64
	StaleServed int64
	Size        int
	TTL         time.Duration
}
