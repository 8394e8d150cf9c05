package grid

import (
	"context"
	"testing"
)

func TestCompactRemovesEmptyRows(t *testing.T) {
	eng, st := newTestEngine(t, 4, Options{},
		item("a", 0, 0, 2, 1),
		item("b", 0, 2, 2, 1),
		item("c", 0, 4, 2, 1),
	)

	if err := eng.Compact(context.Background()); err != nil {
		t.Fatalf("Compact: %v", err)
	}
	want := map[string]Rect{
		"a": {X: 0, Y: 0, W: 2, H: 1},
		"b": {X: 0, Y: 1, W: 2, H: 1},
		"c": {X: 0, Y: 2, W: 2, H: 1},
	}
	for id, r := range want {
		if got := rectOf(t, eng, id); got != r {
			t.Errorf("%s at %s, want %s", id, got, r)
		}
	}
	// Only the items that moved are persisted.
	if len(st.updated) != 1 || len(st.updated[0]) != 2 {
		t.Fatalf("updated batches = %v, want one batch holding b and c", st.updated)
	}
	checkInvariants(t, eng)
}

func TestCompactPreservesRelativeOrder(t *testing.T) {
	eng, _ := newTestEngine(t, 4, Options{},
		item("tall", 0, 1, 2, 3),
		item("low", 2, 5, 2, 1),
	)

	if err := eng.Compact(context.Background()); err != nil {
		t.Fatalf("Compact: %v", err)
	}
	if got := rectOf(t, eng, "tall"); got != (Rect{X: 0, Y: 0, W: 2, H: 3}) {
		t.Errorf("tall at %s, want 2x3@(0,0)", got)
	}
	if got := rectOf(t, eng, "low"); got != (Rect{X: 2, Y: 3, W: 2, H: 1}) {
		t.Errorf("low at %s, want 2x1@(2,3)", got)
	}
	checkInvariants(t, eng)
}

func TestCompactIsIdempotent(t *testing.T) {
	eng, st := newTestEngine(t, 4, Options{},
		item("a", 0, 0, 2, 1),
		item("b", 0, 3, 2, 1),
	)
	ctx := context.Background()

	if err := eng.Compact(ctx); err != nil {
		t.Fatal(err)
	}
	first := layoutSnapshot(eng)
	if err := eng.Compact(ctx); err != nil {
		t.Fatal(err)
	}
	for id, r := range layoutSnapshot(eng) {
		if first[id] != r {
			t.Errorf("%s moved on the second compaction: %s -> %s", id, first[id], r)
		}
	}
	// The no-op second pass must not notify the store again.
	if len(st.updated) != 1 {
		t.Errorf("updated batches = %d, want 1", len(st.updated))
	}
}

func TestCompactEmptyAndDenseLayouts(t *testing.T) {
	t.Run("empty grid", func(t *testing.T) {
		eng, st := newTestEngine(t, 4, Options{})
		if err := eng.Compact(context.Background()); err != nil {
			t.Fatalf("Compact: %v", err)
		}
		if len(st.updated) != 0 {
			t.Error("empty compaction notified the store")
		}
	})
	t.Run("already dense", func(t *testing.T) {
		eng, st := newTestEngine(t, 4, Options{},
			item("a", 0, 0, 4, 2),
			item("b", 0, 2, 2, 1),
		)
		if err := eng.Compact(context.Background()); err != nil {
			t.Fatalf("Compact: %v", err)
		}
		if len(st.updated) != 0 {
			t.Error("dense compaction notified the store")
		}
	})
}

func TestCompactSkipsRowsSpannedByTallItems(t *testing.T) {
	// Row 1 holds no item origin but is covered by the tall item, so it is
	// occupied and must not be removed.
	eng, _ := newTestEngine(t, 4, Options{},
		item("tall", 0, 0, 2, 2),
		item("side", 2, 1, 2, 1),
	)

	if err := eng.Compact(context.Background()); err != nil {
		t.Fatalf("Compact: %v", err)
	}
	if got := rectOf(t, eng, "side"); got != (Rect{X: 2, Y: 1, W: 2, H: 1}) {
		t.Errorf("side at %s, want untouched 2x1@(2,1)", got)
	}
	checkInvariants(t, eng)
}
