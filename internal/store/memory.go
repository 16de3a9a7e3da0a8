package store

import (
	"context"
	"sync"
)

// Memory is an in-memory store.
type Memory struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, collection string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.docs[collection]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *Memory) Save(_ context.Context, collection string, data []byte) error {
	if err := checkName(collection); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs[collection] = append([]byte(nil), data...)
	return nil
}
