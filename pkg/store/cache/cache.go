// Package cache is the explicit cache boundary for provider responses.
// The interface is injected wherever caching is needed so tests can
// substitute a fake; there is no ambient module-level cache.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys with a TTL.
type Cache interface {
	// Get returns the cached value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key for ttl. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
