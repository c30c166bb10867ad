package prefs

import (
	"context"
	"sync"
)

// Memory is a KV kept in memory, used where nothing should outlive the
// process.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemory returns an empty Memory.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get implements Getter.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements KV.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
