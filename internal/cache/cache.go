// Package cache provides a process-scoped in-memory key-value cache.
package cache

import "sync"

// Memory is an eviction-free map guarded by a mutex. It holds until the
// process exits and therefore suits small bounded keyspaces only.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]any
}

// NewMemory creates an empty Memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]any)}
}

// Get returns the stored value and whether the key is present.
func (m *Memory) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.entries[key]
	return value, ok
}

// Set stores a value, replacing any previous entry for the key.
func (m *Memory) Set(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
}

// Len reports the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
