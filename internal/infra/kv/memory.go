package kv

import (
	"context"
	"sync"

	"github.com/bryanwahyu/genefit/internal/domain/session"
)

// Memory is an in-process store. Entries are lost on restart.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, namespace, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[namespace+":"+key]
	if !ok {
		return nil, session.ErrNoEntry
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Set(_ context.Context, namespace, key string, value []byte) error {
	m.mu.Lock()
	m.data[namespace+":"+key] = append([]byte(nil), value...)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, namespace, key string) error {
	m.mu.Lock()
	delete(m.data, namespace+":"+key)
	m.mu.Unlock()
	return nil
}
