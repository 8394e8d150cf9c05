package grid

// compact removes fully empty rows: every item's row shifts up by the number
// of empty rows strictly above it, which preserves relative vertical order.
// The index is rebuilt from the rewritten layouts. Returns the ids of items
// that moved, in reading order; a layout with no empty rows is untouched.
func (e *Engine) compact() []string {
	maxRow := e.index.MaxRow()
	if maxRow < 0 {
		return nil
	}

	occupied := make([]bool, maxRow+1)
	order := e.index.Items()
	for _, id := range order {
		r, _ := e.index.ItemRect(id)
		for y := r.Y; y < r.Y+r.H && y <= maxRow; y++ {
			occupied[y] = true
		}
	}

	// shift[y] = number of empty rows strictly above row y.
	shift := make([]int, maxRow+1)
	empty := 0
	for y := 0; y <= maxRow; y++ {
		shift[y] = empty
		if !occupied[y] {
			empty++
		}
	}
	if empty == 0 {
		return nil
	}

	var moved []string
	layouts := make([]ItemLayout, 0, len(order))
	for _, id := range order {
		st := e.items[id]
		if d := shift[st.layout.StartY]; d > 0 {
			st.layout.StartY -= d
			e.items[id] = st
			moved = append(moved, id)
		}
		layouts = append(layouts, st.layout)
	}

	// Rebuilding from layouts that were all indexed a moment ago and only
	// moved upward into rows just verified empty cannot fail.
	if err := e.index.Rebuild(layouts); err != nil {
		panic(err)
	}
	return moved
}
