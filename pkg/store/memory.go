package store

import (
	"context"
	"sync"

	"github.com/AdrienGannerie/gridboard/pkg/grid"
)

// Memory is an in-memory store for development and testing. It is safe for
// concurrent use so one instance can back several test engines.
type Memory struct {
	mu    sync.RWMutex
	items map[string]grid.ItemLayout
}

// NewMemory creates an empty in-memory store, optionally seeded with items.
func NewMemory(seed ...grid.ItemLayout) *Memory {
	m := &Memory{items: make(map[string]grid.ItemLayout, len(seed))}
	for _, it := range seed {
		m.items[it.ID] = it
	}
	return m
}

// LoadAll returns a copy of every stored item.
func (m *Memory) LoadAll(_ context.Context, _ int) ([]grid.ItemLayout, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]grid.ItemLayout, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, it)
	}
	return out, nil
}

// OnItemsAdded stores the new items.
func (m *Memory) OnItemsAdded(_ context.Context, items []grid.ItemLayout, _ int) error {
	return m.upsert(items)
}

// OnItemsUpdated overwrites the stored layout of each item.
func (m *Memory) OnItemsUpdated(_ context.Context, items []grid.ItemLayout, _ int) error {
	return m.upsert(items)
}

// OnItemsDeleted removes the items.
func (m *Memory) OnItemsDeleted(_ context.Context, items []grid.ItemLayout, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range items {
		delete(m.items, it.ID)
	}
	return nil
}

func (m *Memory) upsert(items []grid.ItemLayout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range items {
		m.items[it.ID] = it
	}
	return nil
}

// Len returns the number of stored items.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Item returns the stored layout for the given id.
func (m *Memory) Item(id string) (grid.ItemLayout, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.items[id]
	return it, ok
}
