/*
Package cache memoises evaluated views.

PURPOSE:
  Evaluating a view is pure: the same parameters and bonuses always give
  the same rows. The API stores the encoded view under a key derived from
  that input, so repeated GETs of an unchanged session skip the math.

IMPLEMENTATIONS:
  Memory:  process-local map, the default
  Redis:   shared across server instances, entries expire after a TTL

A cache miss and a cache error look the same to callers: Get returns false.
*/
package cache

import (
	"context"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Cache stores string values by key.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string) error
}

// Key derives a cache key from a prefix and the canonical encoding of the input.
func Key(prefix string, payload []byte) string {
	return prefix + ":" + strconv.FormatUint(xxhash.Sum64(payload), 16)
}

// =============================================================================
// MEMORY
// =============================================================================

// Memory is an unbounded in-process Cache.
type Memory struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemory creates an empty memory cache.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

// Len returns the number of cached entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
