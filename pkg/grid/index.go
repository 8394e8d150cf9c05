package grid

import (
	"fmt"
	"slices"
	"sort"
)

// cellMap is an ordered map from flattened cell index to item id, backed by a
// parallel pair of sorted slices. Lookups are O(log n); inserts and deletes
// shift the tail of the slice, which is fine for the few hundred items a
// dashboard realistically holds.
type cellMap struct {
	keys []int
	ids  []string
}

func (m *cellMap) set(key int, id string) {
	i, found := slices.BinarySearch(m.keys, key)
	if found {
		m.ids[i] = id
		return
	}
	m.keys = slices.Insert(m.keys, i, key)
	m.ids = slices.Insert(m.ids, i, id)
}

// delete removes the entry for key, but only when it belongs to id. The guard
// matters during displacement: two items may transiently derive the same
// boundary cell key, and removing one must never drop the other's entry.
func (m *cellMap) delete(key int, id string) {
	i, found := slices.BinarySearch(m.keys, key)
	if !found || m.ids[i] != id {
		return
	}
	m.keys = slices.Delete(m.keys, i, i+1)
	m.ids = slices.Delete(m.ids, i, i+1)
}

func (m *cellMap) min() (int, string, bool) {
	if len(m.keys) == 0 {
		return 0, "", false
	}
	return m.keys[0], m.ids[0], true
}

func (m *cellMap) max() (int, string, bool) {
	if len(m.keys) == 0 {
		return 0, "", false
	}
	n := len(m.keys) - 1
	return m.keys[n], m.ids[n], true
}

// SpatialIndex tracks which grid cell is occupied by which item. It keeps one
// occupancy map over every occupied cell plus two ordered structures keyed by
// each item's first and last occupied cell, so "what comes first/last" queries
// need no full scan. All three are mutated together behind this type; callers
// can never update one without the others.
//
// The zero value is not usable - use NewSpatialIndex. SpatialIndex is not
// safe for concurrent use.
type SpatialIndex struct {
	slots int
	cells map[int]string // occupied cell -> item id
	first *cellMap       // item's min occupied cell -> item id
	last  *cellMap       // item's max occupied cell -> item id
	items map[string]Rect
}

// NewSpatialIndex creates an empty index for a grid that is slots columns
// wide. slots must be positive.
func NewSpatialIndex(slots int) *SpatialIndex {
	return &SpatialIndex{
		slots: slots,
		cells: make(map[int]string),
		first: &cellMap{},
		last:  &cellMap{},
		items: make(map[string]Rect),
	}
}

// SlotCount returns the number of columns the index was created with.
func (x *SpatialIndex) SlotCount() int { return x.slots }

// Len returns the number of indexed items.
func (x *SpatialIndex) Len() int { return len(x.items) }

// Has reports whether the item is currently indexed.
func (x *SpatialIndex) Has(id string) bool {
	_, ok := x.items[id]
	return ok
}

// ItemRect returns the indexed rectangle for the item.
func (x *SpatialIndex) ItemRect(id string) (Rect, bool) {
	r, ok := x.items[id]
	return r, ok
}

// clip returns the column range [lo, hi) of r restricted to valid columns.
// Rows need no clipping: the grid grows downward without bound.
func (x *SpatialIndex) clip(r Rect) (lo, hi int) {
	lo, hi = r.X, r.X+r.W
	if lo < 0 {
		lo = 0
	}
	if hi > x.slots {
		hi = x.slots
	}
	return lo, hi
}

// IndexItem records the item's rectangle as occupied. It fails with
// ErrIndexMismatch when the rectangle yields no cells (entirely outside the
// grid) or when any cell is already held by another item; both indicate a
// caller bug, since conflict resolution must clear the ground first.
func (x *SpatialIndex) IndexItem(it ItemLayout) error {
	r := it.Rect()
	lo, hi := x.clip(r)
	if lo >= hi || r.H <= 0 || r.Y < 0 {
		return fmt.Errorf("%w: %s occupies no cells at %s", ErrIndexMismatch, it.ID, r)
	}
	for y := r.Y; y < r.Y+r.H; y++ {
		for cx := lo; cx < hi; cx++ {
			if owner, taken := x.cells[cellIndex(cx, y, x.slots)]; taken && owner != it.ID {
				return fmt.Errorf("%w: cell (%d,%d) already held by %s, wanted by %s", ErrIndexMismatch, cx, y, owner, it.ID)
			}
		}
	}
	for y := r.Y; y < r.Y+r.H; y++ {
		for cx := lo; cx < hi; cx++ {
			x.cells[cellIndex(cx, y, x.slots)] = it.ID
		}
	}
	x.first.set(cellIndex(lo, r.Y, x.slots), it.ID)
	x.last.set(cellIndex(hi-1, r.Y+r.H-1, x.slots), it.ID)
	x.items[it.ID] = r
	return nil
}

// RemoveItem removes every cell held by the item. Removing an item that is
// not indexed is a no-op.
func (x *SpatialIndex) RemoveItem(id string) {
	r, ok := x.items[id]
	if !ok {
		return
	}
	lo, hi := x.clip(r)
	for y := r.Y; y < r.Y+r.H; y++ {
		for cx := lo; cx < hi; cx++ {
			key := cellIndex(cx, y, x.slots)
			if x.cells[key] == id {
				delete(x.cells, key)
			}
		}
	}
	x.first.delete(cellIndex(lo, r.Y, x.slots), id)
	x.last.delete(cellIndex(hi-1, r.Y+r.H-1, x.slots), id)
	delete(x.items, id)
}

// CellOwner returns the item holding the cell (x, y), if any.
func (x *SpatialIndex) CellOwner(cx, cy int) (string, bool) {
	if cx < 0 || cx >= x.slots || cy < 0 {
		return "", false
	}
	id, ok := x.cells[cellIndex(cx, cy, x.slots)]
	return id, ok
}

// Conflicts returns every distinct item occupying a cell inside r, excluding
// the given item id, in row-major first-encountered order. Columns outside
// the grid are ignored.
func (x *SpatialIndex) Conflicts(r Rect, exclude string) []string {
	lo, hi := x.clip(r)
	var ids []string
	seen := make(map[string]struct{})
	for y := r.Y; y < r.Y+r.H; y++ {
		if y < 0 {
			continue
		}
		for cx := lo; cx < hi; cx++ {
			id, ok := x.cells[cellIndex(cx, y, x.slots)]
			if !ok || id == exclude {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// FirstItem returns the occupant of the minimum occupied cell, i.e. the item
// a reader encounters first in row-major order.
func (x *SpatialIndex) FirstItem() (string, bool) {
	_, id, ok := x.first.min()
	return id, ok
}

// LastItem returns the occupant of the maximum occupied cell. Scroll-follow
// logic uses this to jump to the bottom of the layout.
func (x *SpatialIndex) LastItem() (string, bool) {
	_, id, ok := x.last.max()
	return id, ok
}

// MaxRow returns the highest row index touched by any item, or -1 when the
// index is empty.
func (x *SpatialIndex) MaxRow() int {
	key, _, ok := x.last.max()
	if !ok {
		return -1
	}
	_, y := cellCoords(key, x.slots)
	return y
}

// Items returns the indexed rectangles ordered by first occupied cell, which
// is the row-major reading order of the layout.
func (x *SpatialIndex) Items() []string {
	ids := make([]string, len(x.first.ids))
	copy(ids, x.first.ids)
	return ids
}

// Rebuild discards the index contents and re-indexes the given items.
// It stops at the first item that cannot be indexed.
func (x *SpatialIndex) Rebuild(items []ItemLayout) error {
	x.cells = make(map[int]string)
	x.first = &cellMap{}
	x.last = &cellMap{}
	x.items = make(map[string]Rect)
	for _, it := range items {
		if err := x.IndexItem(it); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks index integrity: every item's occupied cells form exactly
// the rectangle recorded for it, no cell is held by an item that does not
// exist, and the first/last orderings agree with the occupancy map. It
// returns ErrIndexMismatch describing the first violation found.
//
// Validate is O(grid area touched) and meant for tests and debug assertions,
// not for the mutation path.
func (x *SpatialIndex) Validate() error {
	counted := make(map[string]int)
	for key, id := range x.cells {
		cx, cy := cellCoords(key, x.slots)
		r, ok := x.items[id]
		if !ok {
			return fmt.Errorf("%w: cell (%d,%d) held by unknown item %s", ErrIndexMismatch, cx, cy, id)
		}
		if !r.Contains(cx, cy) {
			return fmt.Errorf("%w: cell (%d,%d) held by %s outside its rect %s", ErrIndexMismatch, cx, cy, id, r)
		}
		counted[id]++
	}
	for id, r := range x.items {
		lo, hi := x.clip(r)
		want := (hi - lo) * r.H
		if counted[id] != want {
			return fmt.Errorf("%w: %s holds %d cells, rect %s implies %d", ErrIndexMismatch, id, counted[id], r, want)
		}
	}
	if len(x.first.ids) != len(x.items) || len(x.last.ids) != len(x.items) {
		return fmt.Errorf("%w: ordering size %d/%d, items %d", ErrIndexMismatch, len(x.first.ids), len(x.last.ids), len(x.items))
	}
	if !sort.IntsAreSorted(x.first.keys) || !sort.IntsAreSorted(x.last.keys) {
		return fmt.Errorf("%w: unsorted ordering", ErrIndexMismatch)
	}
	return nil
}
