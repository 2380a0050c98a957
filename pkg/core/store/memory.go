package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-process TabularStore. It backs local runs without
// Google credentials and keeps tests hermetic.
type MemoryStore struct {
	mu     sync.RWMutex
	sheets map[string][][]string
	order  []string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sheets: make(map[string][][]string)}
}

func (m *MemoryStore) AppendRows(ctx context.Context, sheet string, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sheets[sheet]; !ok {
		m.order = append(m.order, sheet)
	}
	for _, row := range rows {
		cp := make([]string, len(row))
		copy(cp, row)
		m.sheets[sheet] = append(m.sheets[sheet], cp)
	}
	return nil
}

func (m *MemoryStore) DeleteLastRow(ctx context.Context, sheet string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.sheets[sheet]
	if len(rows) == 0 {
		return nil
	}
	m.sheets[sheet] = rows[:len(rows)-1]
	return nil
}

func (m *MemoryStore) DeleteRow(ctx context.Context, sheet string, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.sheets[sheet]
	if index < 0 || index >= len(rows) {
		return nil
	}
	m.sheets[sheet] = append(rows[:index], rows[index+1:]...)
	return nil
}

func (m *MemoryStore) Rows(ctx context.Context, sheet string) ([][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.sheets[sheet]
	out := make([][]string, len(rows))
	for i, row := range rows {
		cp := make([]string, len(row))
		copy(cp, row)
		out[i] = cp
	}
	return out, nil
}

func (m *MemoryStore) SheetNames(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, len(m.order))
	copy(names, m.order)
	return names, nil
}
