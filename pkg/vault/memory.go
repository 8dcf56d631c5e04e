package vault

import (
	"bytes"
	"context"
	"sync"
)

// Memory is an in-process Custodian for tests and local development.
// It is safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	keys map[string][]byte

	// FailWith, when set, is returned by every call. Lets tests simulate a
	// custodian outage.
	FailWith error
}

func NewMemory() *Memory {
	return &Memory{keys: make(map[string][]byte)}
}

func (m *Memory) Store(ctx context.Context, path string, key []byte) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[path] = bytes.Clone(key)
	return nil
}

func (m *Memory) Fetch(ctx context.Context, path string) ([]byte, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	key, ok := m.keys[path]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return bytes.Clone(key), nil
}

func (m *Memory) Delete(ctx context.Context, path string) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, path)
	return nil
}

// Len reports the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.keys)
}
