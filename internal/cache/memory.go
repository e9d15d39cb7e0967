package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultGCInterval is how often the background sweep removes expired items.
// Expiry is also checked lazily on every Get, so the sweep only bounds memory.
const DefaultGCInterval = 5 * time.Minute

type memoryItem struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore implements Store with an in-process map. Suitable for
// single-instance deployments; use RedisStore behind a load balancer.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	stop  chan struct{}
	once  sync.Once
}

// NewMemoryStore creates an in-memory store and starts its background sweep.
// A non-positive gcInterval falls back to DefaultGCInterval.
func NewMemoryStore(gcInterval time.Duration) *MemoryStore {
	if gcInterval <= 0 {
		gcInterval = DefaultGCInterval
	}
	s := &MemoryStore{
		items: make(map[string]memoryItem),
		stop:  make(chan struct{}),
	}
	go s.runGC(gcInterval)
	return s
}

// Get retrieves an item if it exists and has not expired.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(item.expiresAt) {
		return nil, false, nil
	}
	return item.data, true, nil
}

// Set stores an item with the given TTL.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = memoryItem{
		data:      value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Kind reports the backend name.
func (s *MemoryStore) Kind() string {
	return "memory"
}

// Close stops the background sweep.
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	return nil
}

// runGC periodically removes expired items so long-unread keys don't pin memory.
func (s *MemoryStore) runGC(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	now := time.Now()
	removed := 0

	s.mu.Lock()
	for k, v := range s.items {
		if now.After(v.expiresAt) {
			delete(s.items, k)
			removed++
		}
	}
	s.mu.Unlock()

	if removed > 0 {
		slog.Debug("cache sweep removed expired entries", "count", removed)
	}
}
