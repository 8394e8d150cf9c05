package grid

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sort"

	"github.com/charmbracelet/log"
)

// Axis selects the scroll direction of the grid. Only vertical grids are
// supported: columns are fixed, rows grow without bound.
type Axis int

const (
	// AxisVertical is the default and currently only supported axis.
	AxisVertical Axis = iota
	// AxisHorizontal is reserved; Attach rejects it with ErrConfiguration.
	AxisHorizontal
)

// Options configures an engine on Attach.
type Options struct {
	// SlotCount is the fixed number of columns. Changing it requires a
	// fresh Attach.
	SlotCount int

	// ShrinkToPlace allows reducing an item's width and height (down to
	// its minimums) to reach a conflict-free placement.
	ShrinkToPlace bool

	// SlideToTop re-mounts all items in reading order on attach and on
	// MountItems, ignoring stored positions, to eliminate gaps.
	SlideToTop bool

	// RemoveEmptyRows compacts the layout after mounting and on confirm.
	RemoveEmptyRows bool

	// Axis is the scroll direction. Must be AxisVertical.
	Axis Axis
}

// state is the engine's transaction state. Keeping it as an enumerated value
// (rather than loose boolean flags) makes illegal transitions impossible to
// express.
type state int

const (
	stateIdle state = iota
	stateEditing
)

// itemState is the engine's mutable record for one item: its current layout
// plus whether it has ever been successfully placed. Items loaded from the
// store with a valid origin start located; newly added items become located
// on first mount.
type itemState struct {
	layout      ItemLayout
	hasLocation bool
}

// Engine is the grid layout controller. It owns the spatial index and the
// item set, resolves placements and conflicts, stages mutations in an edit
// session, and notifies the attached [Store] of durable changes.
//
// Engine is single-threaded by design: all mutations happen synchronously on
// the thread driving the host UI, so there is no internal locking.
type Engine struct {
	logger *log.Logger

	store  Store
	opts   Options
	status LoadStatus

	index *SpatialIndex
	items map[string]itemState

	state   state
	session *editSession
}

// NewEngine creates a detached engine. The logger may be nil, in which case
// logging is discarded. Call Attach before any other method.
func NewEngine(logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{logger: logger}
}

// Attach (re)initializes the engine: it validates the options, loads the full
// item set from the store with the caller's context governing the timeout,
// and runs the full mount pass. Items are sorted by ID before mounting so the
// initial layout is deterministic.
//
// A load failure leaves the engine in StatusError and is returned wrapped in
// ErrStore; the engine never retries on its own.
func (e *Engine) Attach(ctx context.Context, store Store, opts Options) error {
	if store == nil {
		return fmt.Errorf("%w: nil store", ErrConfiguration)
	}
	if opts.SlotCount <= 0 {
		return fmt.Errorf("%w: slot count %d", ErrConfiguration, opts.SlotCount)
	}
	if opts.Axis != AxisVertical {
		return fmt.Errorf("%w: only the vertical axis is supported", ErrConfiguration)
	}

	e.detach()
	e.store = store
	e.opts = opts
	e.status = StatusLoading

	loaded, err := store.LoadAll(ctx, opts.SlotCount)
	if err != nil {
		e.status = StatusError
		return fmt.Errorf("%w: load: %w", ErrStore, err)
	}

	e.index = NewSpatialIndex(opts.SlotCount)
	e.items = make(map[string]itemState, len(loaded))
	slices.SortFunc(loaded, func(a, b ItemLayout) int {
		return cmpString(a.ID, b.ID)
	})
	for _, it := range loaded {
		if err := e.admissible(it); err != nil {
			e.status = StatusError
			return err
		}
		if _, dup := e.items[it.ID]; dup {
			e.status = StatusError
			return fmt.Errorf("%w: %s", ErrDuplicateItem, it.ID)
		}
		e.items[it.ID] = itemState{
			layout:      it,
			hasLocation: it.StartX >= 0 && it.StartY >= 0,
		}
	}

	if err := e.remountAll(); err != nil {
		e.status = StatusError
		return err
	}
	e.status = StatusLoaded
	e.logger.Debug("attached", "items", len(e.items), "slots", opts.SlotCount)
	return nil
}

// Detach drops the index, item set, and any open edit session. The engine
// returns to StatusDetached and rejects mutations until the next Attach.
func (e *Engine) Detach() { e.detach() }

func (e *Engine) detach() {
	e.store = nil
	e.index = nil
	e.items = nil
	e.state = stateIdle
	e.session = nil
	e.status = StatusDetached
}

// Status returns the engine's load status.
func (e *Engine) Status() LoadStatus { return e.status }

// SlotCount returns the configured column count, or 0 when detached.
func (e *Engine) SlotCount() int { return e.opts.SlotCount }

func (e *Engine) slots() int { return e.opts.SlotCount }

// Editing reports whether an edit session is open.
func (e *Engine) Editing() bool { return e.state == stateEditing }

// guard returns ErrNotAttached unless the engine is attached and loaded.
func (e *Engine) guard() error {
	if e.index == nil || e.status != StatusLoaded {
		return ErrNotAttached
	}
	return nil
}

// admissible rejects items the grid configuration can never hold.
func (e *Engine) admissible(it ItemLayout) error {
	if err := it.Validate(); err != nil {
		return err
	}
	if it.MinWidth > e.slots() {
		return fmt.Errorf("%w: %s: minimum width %d exceeds %d slots", ErrConfiguration, it.ID, it.MinWidth, e.slots())
	}
	if it.Width > e.slots() && !e.opts.ShrinkToPlace {
		return fmt.Errorf("%w: %s: width %d exceeds %d slots and shrink-to-place is off", ErrConfiguration, it.ID, it.Width, e.slots())
	}
	return nil
}

// Items returns a copy of every placed item's layout in reading order
// (row-major by first occupied cell).
func (e *Engine) Items() []ItemLayout {
	if e.index == nil {
		return nil
	}
	ids := e.index.Items()
	out := make([]ItemLayout, 0, len(ids))
	for _, id := range ids {
		out = append(out, e.items[id].layout)
	}
	return out
}

// Item returns the current layout for the given ID.
func (e *Engine) Item(id string) (ItemLayout, bool) {
	st, ok := e.items[id]
	return st.layout, ok
}

// FirstItem returns the item a reader encounters first in row-major order.
func (e *Engine) FirstItem() (string, bool) {
	if e.index == nil {
		return "", false
	}
	return e.index.FirstItem()
}

// LastItem returns the occupant of the maximum occupied cell.
func (e *Engine) LastItem() (string, bool) {
	if e.index == nil {
		return "", false
	}
	return e.index.LastItem()
}

// Add validates, auto-places, and indexes a new item. With mountToTop the
// placement scan starts at the first cell so the item fills the uppermost
// gap; otherwise the scan starts at the last occupied row. Outside an edit
// session the store is notified immediately.
func (e *Engine) Add(ctx context.Context, it ItemLayout, mountToTop bool) error {
	return e.AddAll(ctx, []ItemLayout{it}, mountToTop)
}

// AddAll adds several items in order. It stops at the first failure; items
// added before the failure stay placed.
func (e *Engine) AddAll(ctx context.Context, items []ItemLayout, mountToTop bool) error {
	if err := e.guard(); err != nil {
		return err
	}
	var added []ItemLayout
	for _, it := range items {
		if err := e.admissible(it); err != nil {
			return e.flushAdded(ctx, added, err)
		}
		if _, dup := e.items[it.ID]; dup {
			return e.flushAdded(ctx, added, fmt.Errorf("%w: %s", ErrDuplicateItem, it.ID))
		}
		e.items[it.ID] = itemState{layout: it}
		start := 0
		if !mountToTop {
			if row := e.index.MaxRow(); row > 0 {
				start = cellIndex(0, row, e.slots())
			}
		}
		if err := e.mountAt(nil, it.ID, start); err != nil {
			delete(e.items, it.ID)
			return e.flushAdded(ctx, added, err)
		}
		added = append(added, e.items[it.ID].layout)
	}
	return e.flushAdded(ctx, added, nil)
}

// flushAdded records or notifies the successfully added items, then returns
// the original error (if any).
func (e *Engine) flushAdded(ctx context.Context, added []ItemLayout, err error) error {
	if len(added) == 0 {
		return err
	}
	if e.state == stateEditing {
		for _, it := range added {
			e.session.noteAdded(it.ID)
		}
		return err
	}
	if nerr := e.store.OnItemsAdded(ctx, added, e.slots()); nerr != nil {
		e.logger.Warn("store add notification failed", "err", nerr)
		if err == nil {
			err = fmt.Errorf("%w: %w", ErrStore, nerr)
		}
	}
	return err
}

// Delete removes items from the index and the item set. Unknown IDs fail
// with ErrUnknownItem before anything is removed.
func (e *Engine) Delete(ctx context.Context, ids ...string) error {
	if err := e.guard(); err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := e.items[id]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownItem, id)
		}
	}
	deleted := make([]ItemLayout, 0, len(ids))
	for _, id := range ids {
		deleted = append(deleted, e.items[id].layout)
		e.index.RemoveItem(id)
		delete(e.items, id)
	}
	if e.state == stateEditing {
		for _, it := range deleted {
			e.session.noteDeleted(it)
		}
		return nil
	}
	if err := e.store.OnItemsDeleted(ctx, deleted, e.slots()); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	return nil
}

// PlaceAt moves (and optionally resizes) an item to the given rectangle,
// pushing conflicting items down, cascading as needed. When the displacement
// chain cannot be completed the whole operation rolls back and the layout is
// exactly what it was before the call.
func (e *Engine) PlaceAt(ctx context.Context, id string, r Rect) error {
	if err := e.guard(); err != nil {
		return err
	}
	st, ok := e.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	if err := validTarget(st.layout, r); err != nil {
		return err
	}
	j := &journal{}
	c := &cascade{}
	if !e.tryPushAndMount(j, id, r, c) {
		j.revertTo(e, 0)
		if c.exhausted {
			return fmt.Errorf("%w: placing %s at %s", ErrPlacementExhausted, id, r)
		}
		return fmt.Errorf("%w: %s at %s", ErrNoPlacement, id, r)
	}
	return e.flushChanged(ctx, j)
}

// Resize changes an item's size in place, pushing conflicts down like
// PlaceAt.
func (e *Engine) Resize(ctx context.Context, id string, w, h int) error {
	if err := e.guard(); err != nil {
		return err
	}
	st, ok := e.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	r := st.layout.Rect()
	r.W, r.H = w, h
	return e.PlaceAt(ctx, id, r)
}

// InsertNear re-places an item relative to a target item, choosing the
// directional strategy implied by the drop zone. Use [ZoneAt] to derive the
// zone from a normalized pointer offset. On failure the layout rolls back to
// its state before the call.
func (e *Engine) InsertNear(ctx context.Context, id, targetID string, zone DropZone) error {
	if err := e.guard(); err != nil {
		return err
	}
	if _, ok := e.items[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	if _, ok := e.items[targetID]; !ok {
		return fmt.Errorf("%w: target %s", ErrUnknownItem, targetID)
	}
	if id == targetID {
		return fmt.Errorf("%w: item %s cannot target itself", ErrInvalidItem, id)
	}
	j := &journal{}
	c := &cascade{}
	if !e.insertNear(j, c, id, targetID, zone) {
		j.revertTo(e, 0)
		if c.exhausted {
			return fmt.Errorf("%w: inserting %s %s of %s", ErrPlacementExhausted, id, zone, targetID)
		}
		return fmt.Errorf("%w: inserting %s %s of %s", ErrNoPlacement, id, zone, targetID)
	}
	return e.flushChanged(ctx, j)
}

// flushChanged derives the set of items whose geometry actually changed
// during the journalled operation and records or notifies it.
func (e *Engine) flushChanged(ctx context.Context, j *journal) error {
	changed := e.changedSince(j)
	if len(changed) == 0 {
		return nil
	}
	if e.state == stateEditing {
		for _, it := range changed {
			e.session.noteChanged(it.ID)
		}
		return nil
	}
	if err := e.store.OnItemsUpdated(ctx, changed, e.slots()); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	return nil
}

// changedSince compares every item the journal touched against its earliest
// recorded state and returns the layouts that ended up different. Items that
// no longer exist are skipped; additions and deletions are tracked by their
// own paths.
func (e *Engine) changedSince(j *journal) []ItemLayout {
	earliest := make(map[string]*itemState)
	var order []string
	for _, ent := range j.entries {
		if _, ok := earliest[ent.id]; !ok {
			earliest[ent.id] = ent.prev
			order = append(order, ent.id)
		}
	}
	var out []ItemLayout
	for _, id := range order {
		cur, ok := e.items[id]
		if !ok {
			continue
		}
		prev := earliest[id]
		if prev == nil || prev.layout != cur.layout {
			out = append(out, cur.layout)
		}
	}
	return out
}

// Compact removes fully empty rows, shifting items upward while preserving
// their relative vertical order. Outside an edit session the moved items are
// flushed to the store.
func (e *Engine) Compact(ctx context.Context) error {
	if err := e.guard(); err != nil {
		return err
	}
	moved := e.compact()
	if len(moved) == 0 {
		return nil
	}
	if e.state == stateEditing {
		for _, id := range moved {
			e.session.noteChanged(id)
		}
		return nil
	}
	layouts := make([]ItemLayout, 0, len(moved))
	for _, id := range moved {
		layouts = append(layouts, e.items[id].layout)
	}
	if err := e.store.OnItemsUpdated(ctx, layouts, e.slots()); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	return nil
}

// MountItems fully re-derives the index from all items' stored layouts: two
// passes (located items first, then unlocated ones), top-mount fallback for
// any that fail to place, then the optional slide-to-top and compaction
// passes. It is the coarse recovery path and also runs on Attach.
func (e *Engine) MountItems() error {
	if err := e.guard(); err != nil {
		return err
	}
	return e.remountAll()
}

// setItemRect records the item in the journal (when given), moves it to r,
// and re-indexes its cells. The item becomes located.
func (e *Engine) setItemRect(j *journal, id string, r Rect) error {
	st, ok := e.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	if j != nil {
		j.record(e, id)
	}
	e.index.RemoveItem(id)
	st.layout = st.layout.WithRect(r)
	st.hasLocation = true
	if err := e.index.IndexItem(st.layout); err != nil {
		e.logger.Warn("index mismatch", "item", id, "rect", r, "err", err)
		return err
	}
	e.items[id] = st
	return nil
}

// unindex removes the item's cells while keeping its record, journalling the
// prior state.
func (e *Engine) unindex(j *journal, id string) {
	if j != nil {
		j.record(e, id)
	}
	e.index.RemoveItem(id)
}

// validTarget checks a requested rectangle against an item's size
// constraints and the grid's fixed top/left edges.
func validTarget(it ItemLayout, r Rect) error {
	switch {
	case r.X < 0 || r.Y < 0:
		return fmt.Errorf("%w: %s: negative origin %s", ErrInvalidItem, it.ID, r)
	case r.W < it.MinWidth || r.H < it.MinHeight:
		return fmt.Errorf("%w: %s: %s below minimum %dx%d", ErrInvalidItem, it.ID, r, it.MinWidth, it.MinHeight)
	case it.MaxWidth != 0 && r.W > it.MaxWidth:
		return fmt.Errorf("%w: %s: width %d above maximum %d", ErrInvalidItem, it.ID, r.W, it.MaxWidth)
	case it.MaxHeight != 0 && r.H > it.MaxHeight:
		return fmt.Errorf("%w: %s: height %d above maximum %d", ErrInvalidItem, it.ID, r.H, it.MaxHeight)
	}
	return nil
}

// sortedIDs returns the map's keys in ascending order, for deterministic
// iteration.
func sortedIDs[V any](m map[string]V) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
