package history

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store that evicts the oldest record once full
type MemoryStore struct {
	mu      sync.RWMutex
	max     int
	order   []string
	records map[string]Record
}

// NewMemoryStore creates a MemoryStore holding at most maxRecords records
func NewMemoryStore(maxRecords int) *MemoryStore {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}

	return &MemoryStore{
		max:     maxRecords,
		records: make(map[string]Record),
	}
}

// Save stores rec, moving an existing id to the newest position
func (m *MemoryStore) Save(_ context.Context, rec Record) error {
	rec.ID = strings.TrimSpace(rec.ID)
	if rec.ID == "" {
		return ErrMissingID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[rec.ID]; ok {
		m.order = slices.DeleteFunc(m.order, func(id string) bool { return id == rec.ID })
	}

	m.records[rec.ID] = rec
	m.order = append(m.order, rec.ID)

	for len(m.order) > m.max {
		delete(m.records, m.order[0])
		m.order = m.order[1:]
	}

	return nil
}

// Get returns the record stored under id
func (m *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}

	return rec, nil
}

// List returns every record, newest first
func (m *MemoryStore) List(_ context.Context) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Record, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		out = append(out, m.records[m.order[i]])
	}

	return out, nil
}

// Delete removes the record stored under id
func (m *MemoryStore) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return false, nil
	}

	delete(m.records, id)
	m.order = slices.DeleteFunc(m.order, func(o string) bool { return o == id })

	return true, nil
}

// Clear removes every record
func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.order = nil
	m.records = make(map[string]Record)

	return nil
}
