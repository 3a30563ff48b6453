package blacklist

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the single-node backend: a map of token value to expiry with
// lazy removal on lookup and a periodic sweep. Suitable for tests and
// deployments with one gateway instance.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
	stop   chan struct{}
}

func NewMemoryStore() *MemoryStore {
	store := &MemoryStore{
		tokens: make(map[string]time.Time),
		stop:   make(chan struct{}),
	}

	go store.cleanup()

	return store
}

func (m *MemoryStore) Add(ctx context.Context, tokenValue string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokens[tokenValue] = time.Now().Add(ttl)
	return nil
}

func (m *MemoryStore) Contains(ctx context.Context, tokenValue string) (bool, error) {
	m.mu.RLock()
	expiresAt, exists := m.tokens[tokenValue]
	m.mu.RUnlock()

	if !exists {
		return false, nil
	}

	if time.Now().After(expiresAt) {
		m.mu.Lock()
		delete(m.tokens, tokenValue)
		m.mu.Unlock()
		return false, nil
	}

	return true, nil
}

func (m *MemoryStore) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			m.mu.Lock()
			for tokenValue, expiresAt := range m.tokens {
				if now.After(expiresAt) {
					delete(m.tokens, tokenValue)
				}
			}
			m.mu.Unlock()
		case <-m.stop:
			return
		}
	}
}

func (m *MemoryStore) Close() {
	close(m.stop)
}
