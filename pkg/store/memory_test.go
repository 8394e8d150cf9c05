package store

import (
	"context"
	"testing"

	"github.com/AdrienGannerie/gridboard/pkg/grid"
)

func layout(id string, x, y, w, h int) grid.ItemLayout {
	return grid.ItemLayout{ID: id, StartX: x, StartY: y, Width: w, Height: h, MinWidth: 1, MinHeight: 1}
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(layout("seed", 0, 0, 2, 1))

	items, err := m.LoadAll(ctx, 4)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(items) != 1 || items[0].ID != "seed" {
		t.Fatalf("LoadAll = %v, want the seed item", items)
	}

	if err := m.OnItemsAdded(ctx, []grid.ItemLayout{layout("a", 2, 0, 2, 1)}, 4); err != nil {
		t.Fatal(err)
	}
	if err := m.OnItemsUpdated(ctx, []grid.ItemLayout{layout("a", 0, 1, 2, 1)}, 4); err != nil {
		t.Fatal(err)
	}
	if err := m.OnItemsDeleted(ctx, []grid.ItemLayout{layout("seed", 0, 0, 2, 1)}, 4); err != nil {
		t.Fatal(err)
	}

	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
	it, ok := m.Item("a")
	if !ok || it.StartY != 1 {
		t.Errorf("Item(a) = %v, %v; want the updated layout", it, ok)
	}
	if _, ok := m.Item("seed"); ok {
		t.Error("seed survived deletion")
	}
}

func TestMemorySurvivesDeleteThenReadd(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(layout("a", 0, 0, 2, 1))

	eng := grid.NewEngine(nil)
	if err := eng.Attach(ctx, m, grid.Options{SlotCount: 4}); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if err := eng.StartEditing(); err != nil {
		t.Fatal(err)
	}
	if err := eng.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if err := eng.Add(ctx, grid.ItemLayout{ID: "a", StartX: -1, StartY: -1, Width: 2, Height: 2, MinWidth: 1, MinHeight: 1}, true); err != nil {
		t.Fatal(err)
	}
	if err := eng.ExitEditing(ctx, true); err != nil {
		t.Fatalf("ExitEditing: %v", err)
	}

	// Delete-then-re-add within one session is a net update; the store must
	// still hold the item, at its post-session geometry.
	it, ok := m.Item("a")
	if !ok {
		t.Fatal("a missing from the store after confirm")
	}
	if it.Height != 2 || it.StartX != 0 || it.StartY != 0 {
		t.Errorf("stored layout = %v, want 2x2@(0,0)", it)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
}

func TestMemoryBacksEngine(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	eng := grid.NewEngine(nil)
	if err := eng.Attach(ctx, m, grid.Options{SlotCount: 4}); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if err := eng.Add(ctx, grid.ItemLayout{ID: "a", StartX: -1, StartY: -1, Width: 2, Height: 1, MinWidth: 1, MinHeight: 1}, true); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// A second engine attached to the same store sees the placed item.
	other := grid.NewEngine(nil)
	if err := other.Attach(ctx, m, grid.Options{SlotCount: 4}); err != nil {
		t.Fatalf("second Attach: %v", err)
	}
	it, ok := other.Item("a")
	if !ok || it.Rect() != (grid.Rect{X: 0, Y: 0, W: 2, H: 1}) {
		t.Errorf("second engine sees %v, %v", it, ok)
	}
}
