package kvstore

import (
	"context"
	"sync"
)

// Memory is a process-local store for tests and ephemeral runs
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

// NewMemory creates an empty store
func NewMemory() *Memory {
	return &Memory{data: map[string]map[string][]byte{}}
}

func (m *Memory) Get(_ context.Context, namespace, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[namespace][key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) Set(_ context.Context, namespace, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bucket(namespace)[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) SetIfAbsent(_ context.Context, namespace, key string, value []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.bucket(namespace)
	if _, ok := b[key]; ok {
		return false, nil
	}
	b[key] = append([]byte(nil), value...)
	return true, nil
}

func (m *Memory) Close() error {
	return nil
}

func (m *Memory) bucket(namespace string) map[string][]byte {
	b, ok := m.data[namespace]
	if !ok {
		b = map[string][]byte{}
		m.data[namespace] = b
	}
	return b
}
