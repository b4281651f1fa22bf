package cache

import (
	"context"
	"sync"
	"time"
)

// Store is the key-value surface the typed caches need. RedisClient and
// MemoryStore implement it.
type Store interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
}

var (
	_ Store = (*RedisClient)(nil)
	_ Store = (*MemoryStore)(nil)
)

type memoryItem struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is a process-local Store used with the memory storage driver
// and in tests.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryItem), now: time.Now}
}

func (m *MemoryStore) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = m.item(value, ttl)
	return nil
}

func (m *MemoryStore) SetNX(_ context.Context, key string, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.live(key); ok {
		return false, nil
	}
	m.items[key] = m.item(value, ttl)
	return true, nil
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.live(key)
	if !ok {
		return "", ErrMiss
	}
	return it.value, nil
}

func (m *MemoryStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

func (m *MemoryStore) item(value string, ttl time.Duration) memoryItem {
	it := memoryItem{value: value}
	if ttl > 0 {
		it.expiresAt = m.now().Add(ttl)
	}
	return it
}

// live must be called with mu held.
func (m *MemoryStore) live(key string) (memoryItem, bool) {
	it, ok := m.items[key]
	if !ok {
		return memoryItem{}, false
	}
	if !it.expiresAt.IsZero() && !m.now().Before(it.expiresAt) {
		delete(m.items, key)
		return memoryItem{}, false
	}
	return it, true
}
