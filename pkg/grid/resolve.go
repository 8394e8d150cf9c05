package grid

// maxCascadeSteps bounds the total number of recursive displacement attempts
// within one public operation. Hitting the ceiling is a structural problem
// (for example minimums that make every push impossible) and surfaces as
// ErrPlacementExhausted, not as a retryable condition.
const maxCascadeSteps = 100_000

// cascade carries the shared step budget for one conflict-resolution
// operation across its recursive displacement chain.
type cascade struct {
	steps     int
	exhausted bool
}

func (c *cascade) spend() bool {
	c.steps++
	if c.steps > maxCascadeSteps {
		c.exhausted = true
		return false
	}
	return true
}

// tryPushAndMount places the item at r, displacing conflicting items
// downward by r's height, recursively. Each call is transactional relative to
// its own subtree: on failure it reverts every mutation it made (and nothing
// an enclosing scope made), so the blast radius of a failed push is exactly
// the set of items it personally touched.
func (e *Engine) tryPushAndMount(j *journal, id string, r Rect, c *cascade) bool {
	if !c.spend() {
		return false
	}
	if r.Y < 0 || r.X < 0 {
		return false
	}
	st, ok := e.items[id]
	if !ok {
		return false
	}
	for r.X+r.W > e.slots() {
		if !e.opts.ShrinkToPlace || r.W-1 < st.layout.MinWidth {
			return false
		}
		r.W--
	}

	conflicts := e.index.Conflicts(r, id)
	if len(conflicts) == 0 {
		return e.setItemRect(j, id, r) == nil
	}

	mark := j.mark()
	displaced := make([]Rect, len(conflicts))
	for i, cid := range conflicts {
		displaced[i], _ = e.index.ItemRect(cid)
		e.unindex(j, cid)
	}
	if e.setItemRect(j, id, r) != nil {
		j.revertTo(e, mark)
		return false
	}
	for i, cid := range conflicts {
		if !e.tryPushAndMount(j, cid, displaced[i].Shifted(0, r.H), c) {
			j.revertTo(e, mark)
			return false
		}
	}
	return true
}

// moveItemsVertically places the anchor at r and re-places every item that
// conflicted with it shifted by the signed delta, cascading further
// displacements downward. On any failure the scope reverts: the anchor's move
// and every displaced item's original rectangle are restored.
func (e *Engine) moveItemsVertically(j *journal, c *cascade, id string, r Rect, delta int) bool {
	mark := j.mark()
	conflicts := e.index.Conflicts(r, id)
	displaced := make([]Rect, len(conflicts))
	for i, cid := range conflicts {
		displaced[i], _ = e.index.ItemRect(cid)
		e.unindex(j, cid)
	}
	if e.setItemRect(j, id, r) != nil {
		j.revertTo(e, mark)
		return false
	}
	for i, cid := range conflicts {
		moved := displaced[i].Shifted(0, delta)
		if moved.Y < 0 || !e.tryPushAndMount(j, cid, moved, c) {
			j.revertTo(e, mark)
			return false
		}
	}
	return true
}

// insertNear applies the directional insertion strategy for the drop zone.
// The inserted item keeps its own size; its column is the target's start
// column clamped so the rectangle stays inside the grid.
func (e *Engine) insertNear(j *journal, c *cascade, id, targetID string, zone DropZone) bool {
	t := e.items[targetID].layout
	it := e.items[id].layout
	w, h := it.Width, it.Height
	x := t.StartX
	if x+w > e.slots() {
		x = e.slots() - w
	}
	if x < 0 {
		x = 0
	}

	switch zone {
	case DropTop:
		y := t.StartY - h
		if y < 0 {
			// No room above row 0: clamp there and push the conflicts down.
			return e.moveItemsVertically(j, c, id, Rect{X: x, Y: 0, W: w, H: h}, h)
		}
		return e.moveItemsVertically(j, c, id, Rect{X: x, Y: y, W: w, H: h}, -h)

	case DropBottom:
		return e.insertBelow(j, c, id, t, x, w, h)

	case DropLeft:
		lx := t.StartX - w
		if lx < 0 {
			return e.insertBelow(j, c, id, t, x, w, h)
		}
		r := Rect{X: lx, Y: t.StartY, W: w, H: h}
		if len(e.index.Conflicts(r, id)) > 0 {
			// Left insertion never cascades vertically itself.
			return e.insertBelow(j, c, id, t, x, w, h)
		}
		return e.setItemRect(j, id, r) == nil

	case DropRight:
		rx := t.StartX + t.Width
		if rx+w > e.slots() {
			return e.insertBelow(j, c, id, t, x, w, h)
		}
		r := Rect{X: rx, Y: t.StartY, W: w, H: h}
		if len(e.index.Conflicts(r, id)) > 0 {
			return e.insertBelow(j, c, id, t, x, w, h)
		}
		return e.setItemRect(j, id, r) == nil

	default:
		return e.tryPushAndMount(j, id, Rect{X: x, Y: t.StartY, W: w, H: h}, c)
	}
}

// insertBelow is the shared bottom-insertion fallback: the item lands
// immediately below the target and conflicts shift down by its height.
func (e *Engine) insertBelow(j *journal, c *cascade, id string, t ItemLayout, x, w, h int) bool {
	r := Rect{X: x, Y: t.StartY + t.Height, W: w, H: h}
	return e.moveItemsVertically(j, c, id, r, h)
}
