package geocode

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
)

// Cache stores geocode results keyed by address hash. Implementations
// must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (*Result, bool, error)
	Put(ctx context.Context, key, address string, result *Result) error
	Close() error
}

// cacheKey returns SHA-256 hex of the normalized address.
func cacheKey(address string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(address), " "))
	h := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", h)
}

// MemoryCache is an in-process Cache for tests and one-shot runs.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]Result
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]Result)}
}

// Get implements Cache.
func (m *MemoryCache) Get(_ context.Context, key string) (*Result, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	out := r
	return &out, true, nil
}

// Put implements Cache.
func (m *MemoryCache) Put(_ context.Context, key, _ string, result *Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = *result
	return nil
}

// Close implements Cache.
func (m *MemoryCache) Close() error { return nil }
