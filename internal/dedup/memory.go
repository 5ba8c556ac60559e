package dedup

import (
	"context"
	"sync"
	"time"

	"ticker-alerts/internal/models"
)

// MemoryCache is an in-process Cache for single-instance runs and tests.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	// now is swappable for tests.
	now func() time.Time
}

type memoryEntry struct {
	events  []models.TriggerEvent
	expires time.Time
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Seen implements Cache.
func (m *MemoryCache) Seen(_ context.Context, symbol, recipient, key string, date time.Time) (bool, error) {
	k := Key(symbol, recipient, key, date)

	m.mu.RLock()
	entry, ok := m.entries[k]
	m.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if m.now().After(entry.expires) {
		m.mu.Lock()
		delete(m.entries, k)
		m.mu.Unlock()
		return false, nil
	}
	return true, nil
}

// Record implements Cache.
func (m *MemoryCache) Record(_ context.Context, symbol, recipient, key string, date time.Time, events []models.TriggerEvent) error {
	if len(events) == 0 {
		return nil
	}
	now := m.now()

	m.mu.Lock()
	m.entries[Key(symbol, recipient, key, date)] = memoryEntry{
		events:  events,
		expires: now.Add(TTL(now)),
	}
	m.mu.Unlock()
	return nil
}

// Close implements Cache.
func (m *MemoryCache) Close() error {
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}
