package cache

import (
	"context"
	"time"
)

// Store is the shared key/value cache behind session lookups and rate
// limiting. Implementations are expected to expire entries on their own; a
// Get past the TTL reports a miss, never stale data.
type Store interface {
	// IncrementWithTTL bumps a counter, starting the window on first use,
	// and returns the new count with the time left in the window.
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get reports (value, true) on a hit and (nil, false) on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, keys ...string) error
}
