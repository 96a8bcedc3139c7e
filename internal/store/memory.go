package store

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
)

// Memory keeps documents in process. Used by tests and the local server.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]json.RawMessage
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string]json.RawMessage)}
}

func (m *Memory) GetJSON(_ context.Context, key string) (json.RawMessage, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(doc), true, nil
}

func (m *Memory) PutJSON(_ context.Context, key string, doc json.RawMessage) error {
	if err := checkJSON(doc); err != nil {
		return err
	}
	m.mu.Lock()
	m.docs[key] = slices.Clone(doc)
	m.mu.Unlock()
	return nil
}
