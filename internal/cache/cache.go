// Package cache provides the response cache used to avoid repeating upstream
// report calls. Entries expire after a per-entry TTL.
package cache

import (
	"context"
	"time"
)

// TTL presets
const (
	TTLShort  = 5 * time.Minute
	TTLMedium = 15 * time.Minute
	TTLLong   = time.Hour
)

// Store is a keyed cache of T values with per-entry TTL. Get reports a miss
// with ok=false; an expired entry is a miss.
type Store[T any] interface {
	Get(ctx context.Context, key string) (value T, ok bool, err error)
	Set(ctx context.Context, key string, value T, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Len(ctx context.Context) (int, error)
	Cleaner
	Close() error
}

// Cleaner evicts expired entries and reports how many were removed.
type Cleaner interface {
	CleanExpired(ctx context.Context) (int, error)
}

var (
	_ Store[struct{}] = (*Memory[struct{}])(nil)
	_ Store[struct{}] = (*Redis[struct{}])(nil)
)
