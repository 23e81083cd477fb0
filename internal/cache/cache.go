// Package cache provides a small key-value cache used to memoize computed
// room balances between mutations.
package cache

import (
	"context"
	"time"
)

// Cache is the interface room balance memoization runs against. Get returns
// false on a miss; implementations never return stale entries after Delete.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
