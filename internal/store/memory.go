package store

import (
	"context"
	"sync"
)

// MemoryStore keeps values for the lifetime of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Update(_ context.Context, key string, fn UpdateFunc) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, found := m.values[key]
	next, err := fn(current, found)
	if err != nil {
		return "", err
	}
	m.values[key] = next
	return next, nil
}

func (m *MemoryStore) Close() error { return nil }
