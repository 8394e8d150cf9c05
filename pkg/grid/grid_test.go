package grid

import (
	"context"
	"testing"
)

// fakeStore records every notification batch the engine emits. It is the
// in-package stand-in for the real store backends.
type fakeStore struct {
	load    []ItemLayout
	loadErr error

	added   [][]ItemLayout
	deleted [][]ItemLayout
	updated [][]ItemLayout
}

func (s *fakeStore) LoadAll(_ context.Context, _ int) ([]ItemLayout, error) {
	return s.load, s.loadErr
}

func (s *fakeStore) OnItemsAdded(_ context.Context, items []ItemLayout, _ int) error {
	s.added = append(s.added, items)
	return nil
}

func (s *fakeStore) OnItemsDeleted(_ context.Context, items []ItemLayout, _ int) error {
	s.deleted = append(s.deleted, items)
	return nil
}

func (s *fakeStore) OnItemsUpdated(_ context.Context, items []ItemLayout, _ int) error {
	s.updated = append(s.updated, items)
	return nil
}

// item builds a located test item with relaxed minimums.
func item(id string, x, y, w, h int) ItemLayout {
	return ItemLayout{ID: id, StartX: x, StartY: y, Width: w, Height: h, MinWidth: 1, MinHeight: 1}
}

// unlocated builds an item that has never been placed.
func unlocated(id string, w, h int) ItemLayout {
	return ItemLayout{ID: id, StartX: -1, StartY: -1, Width: w, Height: h, MinWidth: 1, MinHeight: 1}
}

// newTestEngine attaches an engine to a fakeStore seeded with items.
func newTestEngine(t *testing.T, slots int, opts Options, seed ...ItemLayout) (*Engine, *fakeStore) {
	t.Helper()
	st := &fakeStore{load: seed}
	opts.SlotCount = slots
	eng := NewEngine(nil)
	if err := eng.Attach(context.Background(), st, opts); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	// Attach notifications never fire; reset anyway so tests count from zero.
	st.added, st.deleted, st.updated = nil, nil, nil
	return eng, st
}

// checkInvariants asserts the non-overlap and bounds invariants that must
// hold after every public mutation.
func checkInvariants(t *testing.T, e *Engine) {
	t.Helper()
	if err := e.index.Validate(); err != nil {
		t.Fatalf("index invariant: %v", err)
	}
	for id, st := range e.items {
		if !st.hasLocation {
			continue
		}
		it := st.layout
		if it.StartX < 0 || it.StartX+it.Width > e.slots() || it.StartY < 0 {
			t.Fatalf("bounds invariant: %s at %s with %d slots", id, it.Rect(), e.slots())
		}
		if it.Width < it.MinWidth || it.Height < it.MinHeight {
			t.Fatalf("size invariant: %s is %dx%d, minimum %dx%d", id, it.Width, it.Height, it.MinWidth, it.MinHeight)
		}
	}
}

// rectOf fails the test unless the item exists, then returns its rectangle.
func rectOf(t *testing.T, e *Engine, id string) Rect {
	t.Helper()
	it, ok := e.Item(id)
	if !ok {
		t.Fatalf("item %s missing", id)
	}
	return it.Rect()
}
