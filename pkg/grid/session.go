package grid

import (
	"context"
	"fmt"
)

// editSession is the engine's transaction payload while editing. It owns a
// full snapshot of the pre-edit layout and tracks which items were added,
// deleted, or moved/resized during the episode. Confirm produces a minimal
// changed-item list; cancel restores the snapshot exactly.
type editSession struct {
	snapshot map[string]itemState
	added    map[string]struct{}
	deleted  map[string]ItemLayout
	changed  map[string]struct{}
}

func newEditSession(items map[string]itemState) *editSession {
	snap := make(map[string]itemState, len(items))
	for id, st := range items {
		snap[id] = st
	}
	return &editSession{
		snapshot: snap,
		added:    make(map[string]struct{}),
		deleted:  make(map[string]ItemLayout),
		changed:  make(map[string]struct{}),
	}
}

// noteAdded records an addition. Re-adding an ID that was deleted earlier in
// the same session nets out to an update: the item existed at session start,
// so the deletion is dropped and the ID lands in the changed set, keeping
// every ID in exactly one confirm batch.
func (s *editSession) noteAdded(id string) {
	if _, wasDeleted := s.deleted[id]; wasDeleted {
		delete(s.deleted, id)
		s.changed[id] = struct{}{}
		return
	}
	s.added[id] = struct{}{}
}

// noteDeleted records a deletion with the item's last-known payload for
// restoration on cancel. An item added within the same session is simply
// forgotten: from the transaction's perspective it never existed.
func (s *editSession) noteDeleted(it ItemLayout) {
	if _, wasAdded := s.added[it.ID]; wasAdded {
		delete(s.added, it.ID)
		return
	}
	delete(s.changed, it.ID)
	s.deleted[it.ID] = it
}

// noteChanged marks an item's geometry as pending. Added and deleted items
// are tracked by their own sets and skipped here.
func (s *editSession) noteChanged(id string) {
	if _, wasAdded := s.added[id]; wasAdded {
		return
	}
	if _, wasDeleted := s.deleted[id]; wasDeleted {
		return
	}
	s.changed[id] = struct{}{}
}

func (s *editSession) pending() bool {
	return len(s.added) > 0 || len(s.deleted) > 0 || len(s.changed) > 0
}

// HasPendingChanges reports whether the open edit session staged any
// additions, deletions, or geometry changes. False when no session is open.
func (e *Engine) HasPendingChanges() bool {
	return e.state == stateEditing && e.session.pending()
}

// StartEditing opens an edit session: the current item set and every layout
// are snapshotted, and store notifications are suspended until the session
// ends. Only one session may be open at a time.
func (e *Engine) StartEditing() error {
	if err := e.guard(); err != nil {
		return err
	}
	if e.state == stateEditing {
		return ErrEditing
	}
	e.session = newEditSession(e.items)
	e.state = stateEditing
	e.logger.Debug("edit session opened", "items", len(e.items))
	return nil
}

// ExitEditing closes the open session. With confirm the staged changes are
// flushed to the store in up to three batched calls (added, deleted,
// updated), after the optional compaction pass so persisted layouts match the
// live state. Without confirm every mutation of the session is undone: added
// items vanish, deleted items return, and all geometry reverts to the
// snapshot.
//
// Calling ExitEditing with no session open is a no-op: both paths are
// idempotent once the engine is idle.
func (e *Engine) ExitEditing(ctx context.Context, confirm bool) error {
	if err := e.guard(); err != nil {
		return err
	}
	if e.state != stateEditing {
		return nil
	}
	s := e.session
	e.session = nil
	e.state = stateIdle

	if !confirm {
		e.cancelTo(s)
		e.logger.Debug("edit session cancelled")
		return nil
	}

	if e.opts.RemoveEmptyRows {
		for _, id := range e.compact() {
			s.noteChanged(id)
		}
	}

	var firstErr error
	notify := func(items []ItemLayout, f func(context.Context, []ItemLayout, int) error) {
		if len(items) == 0 {
			return
		}
		if err := f(ctx, items, e.slots()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	notify(e.collectLayouts(sortedIDs(s.added)), e.store.OnItemsAdded)
	notify(collectDeleted(s.deleted), e.store.OnItemsDeleted)
	notify(e.collectLayouts(sortedIDs(s.changed)), e.store.OnItemsUpdated)

	e.logger.Debug("edit session confirmed",
		"added", len(s.added), "deleted", len(s.deleted), "changed", len(s.changed))
	if firstErr != nil {
		return fmt.Errorf("%w: %w", ErrStore, firstErr)
	}
	return nil
}

// cancelTo restores the pre-session snapshot exactly: the item set becomes
// the snapshot's (added items removed, deleted items back) and the index is
// rebuilt from the snapshot layouts rather than the live ones, so geometry
// reverts precisely even for items moved several times.
func (e *Engine) cancelTo(s *editSession) {
	e.items = make(map[string]itemState, len(s.snapshot))
	var layouts []ItemLayout
	for _, id := range sortedIDs(s.snapshot) {
		st := s.snapshot[id]
		e.items[id] = st
		if st.hasLocation {
			layouts = append(layouts, st.layout)
		}
	}
	if err := e.index.Rebuild(layouts); err != nil {
		// The snapshot indexed cleanly when it was taken.
		panic(err)
	}
}

// collectLayouts resolves ids to their current layouts, skipping any that no
// longer exist.
func (e *Engine) collectLayouts(ids []string) []ItemLayout {
	out := make([]ItemLayout, 0, len(ids))
	for _, id := range ids {
		if st, ok := e.items[id]; ok {
			out = append(out, st.layout)
		}
	}
	return out
}

func collectDeleted(deleted map[string]ItemLayout) []ItemLayout {
	out := make([]ItemLayout, 0, len(deleted))
	for _, id := range sortedIDs(deleted) {
		out = append(out, deleted[id])
	}
	return out
}
