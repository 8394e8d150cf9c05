// Package grid implements a dashboard grid layout engine: movable, resizable
// rectangular items on a discrete grid with a fixed column count and an
// unbounded row count.
//
// The package keeps a spatial index of cell occupancy, finds conflict-free
// placements for items (with optional shrink-to-fit), resolves placement
// conflicts by pushing, cascading displacement, or directional insertion, and
// stages interactive mutations inside an edit session that can be confirmed
// or cancelled atomically.
//
// # Architecture
//
// The central type is [Engine], which owns:
//   - a [SpatialIndex] mapping occupied cells to item ids,
//   - the placement scanner (auto-placement, overflow detection, shrink-to-fit),
//   - the conflict resolver (push-down, drop-zone insertion, cascading
//     displacement with journal-based rollback),
//   - the edit-session transaction (snapshot, pending-change tracking,
//     confirm/cancel).
//
// Durable storage is delegated to a [Store]; the engine only decides when to
// notify it. Implementations for memory, file, Redis, and MongoDB backends
// live in the store package.
//
// # Invariants
//
// After every public mutation:
//   - no two items occupy the same cell (non-overlap),
//   - every item satisfies 0 <= StartX and StartX+Width <= SlotCount,
//   - every item satisfies Width >= MinWidth and Height >= MinHeight.
//
// [SpatialIndex.Validate] checks these and is used extensively by the tests.
//
// # Usage
//
//	eng := grid.NewEngine(nil)
//	err := eng.Attach(ctx, store, grid.Options{
//	    SlotCount:       8,
//	    ShrinkToPlace:   true,
//	    RemoveEmptyRows: true,
//	})
//	if err != nil {
//	    return err
//	}
//
//	// Stage a few mutations, then commit them in one batch.
//	if err := eng.StartEditing(); err != nil {
//	    return err
//	}
//	_ = eng.Add(ctx, grid.ItemLayout{ID: "clock", Width: 2, Height: 1, MinWidth: 1, MinHeight: 1}, false)
//	_ = eng.ExitEditing(ctx, true)
//
// Engine is not safe for concurrent use: all mutations are expected to happen
// synchronously on the thread driving the UI, which is also why the engine
// holds no locks.
package grid
