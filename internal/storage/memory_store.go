package storage

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore is an in-process CartStore. It backs tests and the
// no-Redis fallback mode; records survive only for the process lifetime.
type MemoryStore struct {
	mu   sync.RWMutex
	recs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[string][]byte)}
}

func (m *MemoryStore) Load(_ context.Context, sessionID string) (*CartRecord, error) {
	m.mu.RLock()
	data, ok := m.recs[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrCartNotFound
	}

	var rec CartRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (m *MemoryStore) Save(_ context.Context, sessionID string, rec *CartRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.recs[sessionID] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.recs, sessionID)
	m.mu.Unlock()
	return nil
}
