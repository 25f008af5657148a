package cache

import (
	"context"
	"sync"
	"time"
)

type entry[T any] struct {
	data      T
	timestamp time.Time
	ttl       time.Duration
}

// expired reports whether now is strictly past the entry's lifetime.
func (e entry[T]) expired(now time.Time) bool {
	return now.After(e.timestamp.Add(e.ttl))
}

// Memory is a process-lifetime Store backed by a map. Entries are replaced
// wholesale on Set (last write wins).
type Memory[T any] struct {
	mu      sync.Mutex
	entries map[string]entry[T]
	now     func() time.Time
}

// MemoryOption configures a Memory store
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	now func() time.Time
}

// WithClock replaces time.Now, used by tests to control expiry.
func WithClock(now func() time.Time) MemoryOption {
	return func(o *memoryOptions) {
		o.now = now
	}
}

func NewMemory[T any](opts ...MemoryOption) *Memory[T] {
	options := memoryOptions{now: time.Now}
	for _, opt := range opts {
		opt(&options)
	}
	return &Memory[T]{
		entries: make(map[string]entry[T]),
		now:     options.now,
	}
}

func (m *Memory[T]) Get(_ context.Context, key string) (T, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T
	e, ok := m.entries[key]
	if !ok {
		return zero, false, nil
	}
	if e.expired(m.now()) {
		delete(m.entries, key)
		return zero, false, nil
	}
	return e.data, true, nil
}

func (m *Memory[T]) Set(_ context.Context, key string, value T, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry[T]{data: value, timestamp: m.now(), ttl: ttl}
	return nil
}

func (m *Memory[T]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

func (m *Memory[T]) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.entries)
	return nil
}

// Len counts stored entries, including expired ones not yet evicted.
func (m *Memory[T]) Len(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries), nil
}

func (m *Memory[T]) CleanExpired(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	cleaned := 0
	for key, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, key)
			cleaned++
		}
	}
	return cleaned, nil
}

func (m *Memory[T]) Close() error {
	return nil
}
