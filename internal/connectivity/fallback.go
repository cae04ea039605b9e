package connectivity

import (
	"context"
	"sync"
)

// Fallback keeps the last successful result of a read per key so callers can
// keep serving it when the backend cannot be reached.
type Fallback[T any] struct {
	mu   sync.RWMutex
	last map[string]T
}

// NewFallback returns an empty cache.
func NewFallback[T any]() *Fallback[T] {
	return &Fallback[T]{last: make(map[string]T)}
}

// Read calls fetch and remembers the result under key. If fetch fails with a
// network error the last known value for key is returned, or def if there is
// none, and stale is true. Other errors are returned unchanged.
func (f *Fallback[T]) Read(ctx context.Context, key string, def T, fetch func(ctx context.Context) (T, error)) (value T, stale bool, err error) {
	v, err := fetch(ctx)
	if err == nil {
		f.Store(key, v)
		return v, false, nil
	}
	if !IsNetworkError(err) {
		var zero T
		return zero, false, err
	}
	if cached, ok := f.Load(key); ok {
		return cached, true, nil
	}
	return def, true, nil
}

// Store records v as the last known value for key.
func (f *Fallback[T]) Store(key string, v T) {
	f.mu.Lock()
	f.last[key] = v
	f.mu.Unlock()
}

// Load returns the last known value for key.
func (f *Fallback[T]) Load(key string) (T, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.last[key]
	return v, ok
}

// Keys returns every key with a remembered value.
func (f *Fallback[T]) Keys() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	keys := make([]string, 0, len(f.last))
	for k := range f.last {
		keys = append(keys, k)
	}
	return keys
}

// Forget drops the value for key.
func (f *Fallback[T]) Forget(key string) {
	f.mu.Lock()
	delete(f.last, key)
	f.mu.Unlock()
}
