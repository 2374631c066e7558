package settings

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
)

// MemoryStore is a Store that lives only as long as the process
type MemoryStore struct {
	mu   sync.Mutex
	data domain.Settings
}

// NewMemoryStore creates a store seeded with initial
func NewMemoryStore(initial domain.Settings) *MemoryStore {
	return &MemoryStore{data: initial.Clone()}
}

func (m *MemoryStore) Load(ctx context.Context) (domain.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.Clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, s domain.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = s.Clone()
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, fn func(domain.Settings) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.data.Clone()
	if err := fn(next); err != nil {
		return err
	}
	m.data = next
	return nil
}

func (m *MemoryStore) Reset(ctx context.Context) error {
	return m.Save(ctx, nil)
}
