package credential

import (
	"context"
	"sync"
	"time"

	"storefront-orders/internal/domain"
)

// MemoryStore is a process-local Repository. Nothing survives a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string]Credential
	now   func() time.Time
}

// NewMemory returns an empty MemoryStore. A nil clock defaults to time.Now.
func NewMemory(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{slots: make(map[string]Credential), now: now}
}

func (m *MemoryStore) Put(_ context.Context, c Credential) error {
	c.CreatedAt = m.now()
	m.mu.Lock()
	m.slots[c.Name] = c
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, name string) (*Credential, error) {
	m.mu.RLock()
	c, ok := m.slots[name]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !m.now().Before(c.ExpiresAt) {
		m.mu.Lock()
		delete(m.slots, name)
		m.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (m *MemoryStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	delete(m.slots, name)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}
