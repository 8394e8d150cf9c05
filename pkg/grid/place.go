package grid

import (
	"fmt"
	"slices"
)

// maxMountAttempts bounds the linear auto-placement scan. Reaching it means
// the grid structurally cannot admit the item (for example a minimum width
// above the slot count that slipped past validation) and is reported as
// ErrPlacementExhausted rather than looping forever.
const maxMountAttempts = 1_000_000

// fitResult classifies one placement attempt at a fixed origin.
type fitResult int

const (
	// fitBlocked: the origin cell itself is taken, or the rectangle cannot
	// satisfy the grid width. The caller must try the next origin.
	fitBlocked fitResult = iota
	// fitExact: the rectangle fits as requested with no conflict.
	fitExact
	// fitShrunk: a smaller rectangle anchored at the same origin fits and
	// satisfies the item's minimums.
	fitShrunk
	// fitConflict: the rectangle conflicts and no admissible shrink exists;
	// the original rectangle is returned for higher-level push logic.
	fitConflict
)

// freeBound scans r row by row, columns left to right, against the index.
// The first filled cell in a row narrows the admissible right boundary for
// all subsequent rows. Each conflict records an overflow possibility: a
// candidate rectangle ending just before the conflict. A conflict at r's own
// top-left origin fails the whole origin.
//
// With no conflicts the full rectangle is returned as fitExact. Otherwise,
// when shrinking is enabled, the possibility with the largest area that still
// satisfies the minimums wins, ties going to the latest recorded (which
// favors taller candidates). With nothing admissible the original rectangle
// comes back as fitConflict.
func (e *Engine) freeBound(id string, r Rect, minW, minH int) (Rect, fitResult) {
	right := r.X + r.W
	var poss []Rect
	conflicted := false
	truncated := false

scan:
	for y := r.Y; y < r.Y+r.H; y++ {
		for cx := r.X; cx < right; cx++ {
			owner, taken := e.index.CellOwner(cx, y)
			if !taken || owner == id {
				continue
			}
			if cx == r.X && y == r.Y {
				return Rect{}, fitBlocked
			}
			conflicted = true
			if cx == r.X {
				// Row blocked at the left edge: no rectangle containing the
				// origin can reach this row or any below it.
				poss = append(poss, Rect{X: r.X, Y: r.Y, W: right - r.X, H: y - r.Y})
				truncated = true
				break scan
			}
			poss = append(poss, Rect{X: r.X, Y: r.Y, W: cx - r.X, H: y - r.Y + 1})
			right = cx
			continue scan
		}
	}
	if !conflicted {
		return r, fitExact
	}
	if !truncated {
		// The tightened width held for every remaining row, so the
		// full-height candidate is also free. Recorded last, it wins
		// area ties.
		poss = append(poss, Rect{X: r.X, Y: r.Y, W: right - r.X, H: r.H})
	}

	if e.opts.ShrinkToPlace {
		if best, ok := bestPossibility(poss, minW, minH); ok {
			return best, fitShrunk
		}
	}
	return r, fitConflict
}

// bestPossibility filters the recorded sub-rectangles to those satisfying the
// minimum size and picks the largest by area, later entries winning ties.
func bestPossibility(poss []Rect, minW, minH int) (Rect, bool) {
	var best Rect
	found := false
	for _, p := range poss {
		if p.W < minW || p.H < minH || p.W <= 0 || p.H <= 0 {
			continue
		}
		if !found || p.Area() >= best.Area() {
			best = p
			found = true
		}
	}
	return best, found
}

// tryPlace attempts to place an item of the given size with its minimums at
// the flattened origin cell. Horizontal overflow is resolved by shrinking the
// width one slot at a time when shrink-to-place is on, failing once the width
// would drop below minW.
func (e *Engine) tryPlace(id string, origin, w, h, minW, minH int) (Rect, fitResult) {
	x, y := cellCoords(origin, e.slots())
	for x+w > e.slots() {
		if !e.opts.ShrinkToPlace || w-1 < minW {
			return Rect{}, fitBlocked
		}
		w--
	}
	return e.freeBound(id, Rect{X: x, Y: y, W: w, H: h}, minW, minH)
}

// mountAt removes the item from the index and scans flattened cell indices
// from start, committing the first conflict-free placement (shrunk if
// necessary and allowed). The scan is bounded; exhausting it is fatal.
func (e *Engine) mountAt(j *journal, id string, start int) error {
	st, ok := e.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	e.unindex(j, id)
	it := st.layout
	for attempt := 0; attempt < maxMountAttempts; attempt++ {
		r, res := e.tryPlace(id, start+attempt, it.Width, it.Height, it.MinWidth, it.MinHeight)
		if res == fitExact || res == fitShrunk {
			return e.setItemRect(j, id, r)
		}
	}
	return fmt.Errorf("%w: %s after %d origins", ErrPlacementExhausted, id, maxMountAttempts)
}

// remountAll rebuilds the index from every item's stored layout. Located
// items are tried at their exact stored origin first, in reading order for
// determinism; any that no longer fit join the unlocated items in a second
// pass that top-mounts them. Optional slide-to-top and compaction run last.
func (e *Engine) remountAll() error {
	e.index = NewSpatialIndex(e.slots())

	var located, unlocated []string
	for _, id := range sortedIDs(e.items) {
		if e.items[id].hasLocation {
			located = append(located, id)
		} else {
			unlocated = append(unlocated, id)
		}
	}
	slices.SortStableFunc(located, func(a, b string) int {
		ra, rb := e.items[a].layout, e.items[b].layout
		return cellIndex(ra.StartX, ra.StartY, e.slots()) - cellIndex(rb.StartX, rb.StartY, e.slots())
	})

	var deferred []string
	for _, id := range located {
		it := e.items[id].layout
		if it.StartX < 0 || it.StartX >= e.slots() || it.StartY < 0 {
			deferred = append(deferred, id)
			continue
		}
		origin := cellIndex(it.StartX, it.StartY, e.slots())
		r, res := e.tryPlace(id, origin, it.Width, it.Height, it.MinWidth, it.MinHeight)
		if res != fitExact && res != fitShrunk {
			deferred = append(deferred, id)
			continue
		}
		if err := e.setItemRect(nil, id, r); err != nil {
			return err
		}
	}
	for _, id := range append(deferred, unlocated...) {
		if err := e.mountAt(nil, id, 0); err != nil {
			return err
		}
	}

	if e.opts.SlideToTop {
		if err := e.slideToTop(); err != nil {
			return err
		}
	}
	if e.opts.RemoveEmptyRows {
		e.compact()
	}
	return nil
}

// slideToTop re-mounts every item in reading order from the first cell,
// discarding stored positions, so the layout packs upward without gaps.
func (e *Engine) slideToTop() error {
	order := e.index.Items()
	e.index = NewSpatialIndex(e.slots())
	for _, id := range order {
		if err := e.mountAt(nil, id, 0); err != nil {
			return err
		}
	}
	return nil
}
