// Package storage provides durable client storage backends for the session
// and theme stores.
package storage

import (
	"sync"

	"agency/internal/domain/service"
)

// Memory is a process-local Storage. It backs tests and single-user tooling.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ service.Storage = (*Memory)(nil)

// NewMemory returns an empty in-memory storage.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]

	return v, ok
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value

	return nil
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)

	return nil
}
