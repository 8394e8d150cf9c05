package grid

// journalEntry captures one item's state immediately before a mutation:
// its full record (nil when the item did not exist) and whether its cells
// were present in the spatial index.
type journalEntry struct {
	id      string
	prev    *itemState
	indexed bool
}

// journal is a small in-memory transaction log shared by every conflict
// resolution strategy. Each mutation records the prior state of the item it
// is about to touch; revertTo replays the records in reverse, restoring the
// engine and index exactly. Nested scopes are expressed with mark/revertTo,
// which lets the cascading placer roll back only its own subtree of
// displacements while an outer push keeps its records alive.
type journal struct {
	entries []journalEntry
}

// mark returns a scope marker for revertTo.
func (j *journal) mark() int { return len(j.entries) }

// record snapshots the item's current state in the engine. Call it before
// every mutation inside a journalled scope; duplicates are fine because
// reverse replay restores the earliest snapshot last.
func (j *journal) record(e *Engine, id string) {
	ent := journalEntry{id: id, indexed: e.index.Has(id)}
	if st, ok := e.items[id]; ok {
		cp := st
		ent.prev = &cp
	}
	j.entries = append(j.entries, ent)
}

// revertTo undoes every mutation recorded at or after mark, in reverse order.
// Restoration cannot fail: each replayed state was valid when recorded, and
// later entries have already vacated the cells it needs.
func (j *journal) revertTo(e *Engine, mark int) {
	for i := len(j.entries) - 1; i >= mark; i-- {
		ent := j.entries[i]
		e.index.RemoveItem(ent.id)
		if ent.prev == nil {
			delete(e.items, ent.id)
			continue
		}
		st := *ent.prev
		e.items[ent.id] = st
		if ent.indexed {
			// The snapshot was indexed when taken, so re-indexing it must
			// succeed; a failure here means the journal itself is corrupt.
			if err := e.index.IndexItem(st.layout); err != nil {
				panic(err)
			}
		}
	}
	j.entries = j.entries[:mark]
}
