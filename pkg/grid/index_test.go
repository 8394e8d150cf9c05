package grid

import (
	"errors"
	"testing"
)

func TestSpatialIndexOccupancy(t *testing.T) {
	x := NewSpatialIndex(4)

	if err := x.IndexItem(item("a", 0, 0, 2, 2)); err != nil {
		t.Fatalf("IndexItem a: %v", err)
	}
	if err := x.IndexItem(item("b", 2, 0, 2, 1)); err != nil {
		t.Fatalf("IndexItem b: %v", err)
	}

	tests := []struct {
		name   string
		cx, cy int
		owner  string
		taken  bool
	}{
		{"a top-left", 0, 0, "a", true},
		{"a bottom-right", 1, 1, "a", true},
		{"b left", 2, 0, "b", true},
		{"free below b", 2, 1, "", false},
		{"outside columns", 4, 0, "", false},
		{"negative row", 0, -1, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, taken := x.CellOwner(tt.cx, tt.cy)
			if owner != tt.owner || taken != tt.taken {
				t.Errorf("CellOwner(%d,%d) = %q, %v; want %q, %v", tt.cx, tt.cy, owner, taken, tt.owner, tt.taken)
			}
		})
	}

	if x.Len() != 2 {
		t.Errorf("Len() = %d, want 2", x.Len())
	}
	if err := x.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestSpatialIndexRejectsOverlap(t *testing.T) {
	x := NewSpatialIndex(4)
	if err := x.IndexItem(item("a", 0, 0, 2, 2)); err != nil {
		t.Fatalf("IndexItem a: %v", err)
	}
	err := x.IndexItem(item("b", 1, 1, 2, 1))
	if !errors.Is(err, ErrIndexMismatch) {
		t.Fatalf("IndexItem overlapping b: got %v, want ErrIndexMismatch", err)
	}
	// The failed insert must not leave partial state behind.
	if x.Has("b") {
		t.Error("b indexed despite overlap")
	}
	if err := x.Validate(); err != nil {
		t.Fatalf("Validate after rejected insert: %v", err)
	}
}

func TestSpatialIndexRejectsEmptyRect(t *testing.T) {
	x := NewSpatialIndex(4)
	tests := []struct {
		name string
		it   ItemLayout
	}{
		{"fully outside columns", item("a", 4, 0, 2, 1)},
		{"negative row", item("b", 0, -1, 1, 1)},
		{"zero height", item("c", 0, 0, 1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := x.IndexItem(tt.it); !errors.Is(err, ErrIndexMismatch) {
				t.Errorf("IndexItem(%s) = %v, want ErrIndexMismatch", tt.it.Rect(), err)
			}
		})
	}
}

func TestSpatialIndexRemove(t *testing.T) {
	x := NewSpatialIndex(4)
	if err := x.IndexItem(item("a", 0, 0, 2, 1)); err != nil {
		t.Fatal(err)
	}
	if err := x.IndexItem(item("b", 2, 0, 2, 1)); err != nil {
		t.Fatal(err)
	}

	x.RemoveItem("a")
	if x.Has("a") {
		t.Error("a still indexed after RemoveItem")
	}
	if _, taken := x.CellOwner(0, 0); taken {
		t.Error("a's cell still occupied")
	}
	if owner, _ := x.CellOwner(2, 0); owner != "b" {
		t.Errorf("b's cell owner = %q, want b", owner)
	}

	// Removing an unknown id is a no-op.
	x.RemoveItem("ghost")
	if err := x.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestSpatialIndexConflictsReadingOrder(t *testing.T) {
	x := NewSpatialIndex(4)
	for _, it := range []ItemLayout{
		item("late", 0, 2, 4, 1),
		item("mid", 2, 1, 2, 1),
		item("early", 0, 0, 2, 1),
	} {
		if err := x.IndexItem(it); err != nil {
			t.Fatal(err)
		}
	}

	got := x.Conflicts(Rect{X: 0, Y: 0, W: 4, H: 3}, "")
	want := []string{"early", "mid", "late"}
	if len(got) != len(want) {
		t.Fatalf("Conflicts = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Conflicts = %v, want %v", got, want)
		}
	}

	if got := x.Conflicts(Rect{X: 0, Y: 0, W: 4, H: 1}, "early"); len(got) != 0 {
		t.Errorf("Conflicts excluding early = %v, want none", got)
	}
	// Columns outside the grid are ignored, not an error.
	if got := x.Conflicts(Rect{X: 3, Y: 0, W: 4, H: 1}, ""); len(got) != 0 {
		t.Errorf("Conflicts past right edge = %v, want none", got)
	}
}

func TestSpatialIndexFirstLast(t *testing.T) {
	x := NewSpatialIndex(4)
	if _, ok := x.FirstItem(); ok {
		t.Error("FirstItem on empty index")
	}
	if _, ok := x.LastItem(); ok {
		t.Error("LastItem on empty index")
	}
	if x.MaxRow() != -1 {
		t.Errorf("MaxRow on empty index = %d, want -1", x.MaxRow())
	}

	for _, it := range []ItemLayout{
		item("b", 2, 0, 2, 3),
		item("a", 0, 0, 2, 1),
		item("c", 0, 4, 1, 1),
	} {
		if err := x.IndexItem(it); err != nil {
			t.Fatal(err)
		}
	}

	if id, _ := x.FirstItem(); id != "a" {
		t.Errorf("FirstItem = %q, want a", id)
	}
	if id, _ := x.LastItem(); id != "c" {
		t.Errorf("LastItem = %q, want c", id)
	}
	if x.MaxRow() != 4 {
		t.Errorf("MaxRow = %d, want 4", x.MaxRow())
	}

	order := x.Items()
	want := []string{"a", "b", "c"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("Items = %v, want %v", order, want)
		}
	}

	// The tallest item, not the lowest origin, holds the maximum cell once c
	// is gone.
	x.RemoveItem("c")
	if id, _ := x.LastItem(); id != "b" {
		t.Errorf("LastItem after removing c = %q, want b", id)
	}
}

func TestSpatialIndexRebuild(t *testing.T) {
	x := NewSpatialIndex(4)
	if err := x.IndexItem(item("old", 0, 0, 4, 4)); err != nil {
		t.Fatal(err)
	}

	err := x.Rebuild([]ItemLayout{
		item("a", 0, 0, 2, 1),
		item("b", 2, 0, 2, 1),
	})
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if x.Has("old") {
		t.Error("old item survived Rebuild")
	}
	if x.Len() != 2 {
		t.Errorf("Len after Rebuild = %d, want 2", x.Len())
	}
	if err := x.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if err := x.Rebuild([]ItemLayout{item("a", 0, 0, 2, 1), item("b", 1, 0, 2, 1)}); !errors.Is(err, ErrIndexMismatch) {
		t.Fatalf("Rebuild with overlap = %v, want ErrIndexMismatch", err)
	}
}

func TestSpatialIndexValidateDetectsCorruption(t *testing.T) {
	x := NewSpatialIndex(4)
	if err := x.IndexItem(item("a", 0, 0, 2, 1)); err != nil {
		t.Fatal(err)
	}

	// Hand the occupancy map a cell its own rect does not cover.
	x.cells[cellIndex(3, 3, 4)] = "a"
	if err := x.Validate(); !errors.Is(err, ErrIndexMismatch) {
		t.Fatalf("Validate on corrupted index = %v, want ErrIndexMismatch", err)
	}
}

func TestCellMapDeleteGuard(t *testing.T) {
	m := &cellMap{}
	m.set(5, "a")
	m.set(9, "b")

	// A delete keyed correctly but attributed to another item must not fire.
	m.delete(5, "b")
	if len(m.keys) != 2 {
		t.Fatalf("guarded delete removed an entry: keys = %v", m.keys)
	}
	m.delete(5, "a")
	if len(m.keys) != 1 || m.ids[0] != "b" {
		t.Fatalf("delete(5, a): keys = %v ids = %v", m.keys, m.ids)
	}
}
