// Package pkg provides the core libraries for gridboard dashboard layouts.
//
// # Overview
//
// Gridboard manages the placement of rectangular items on a column grid:
// widgets keep their configured size where possible, conflicts push other
// items out of the way, and every durable change flows to a pluggable store.
// The pkg directory is organized into four areas:
//
//  1. [grid] - The layout engine: spatial index, placement, conflict
//     resolution, edit sessions, and compaction.
//  2. [store] - Persistence backends (memory, file, Redis, MongoDB)
//     implementing the engine's delegate interface.
//  3. [errors] - Structured errors with stable codes for the CLI, HTTP, and
//     store boundaries.
//  4. [buildinfo] - Version metadata injected at build time.
//
// # Architecture
//
// The typical data flow through gridboard:
//
//	Store (file/redis/mongo)
//	         ↓ LoadAll
//	    [grid] Engine (mount, place, resolve conflicts)
//	         ↓ OnItemsAdded / OnItemsDeleted / OnItemsUpdated
//	Store (file/redis/mongo)
//
// Hosts (the HTTP API and the terminal editor in internal/cli) drive the
// engine synchronously; the engine is single-threaded by design.
//
// # Quick Start
//
// Attach an engine to a store and place a widget:
//
//	eng := grid.NewEngine(nil)
//	err := eng.Attach(ctx, store.NewMemory(), grid.Options{
//	    SlotCount:     8,
//	    ShrinkToPlace: true,
//	})
//	if err != nil {
//	    return err
//	}
//	err = eng.Add(ctx, grid.ItemLayout{
//	    ID: "clock", StartX: -1, StartY: -1,
//	    Width: 2, Height: 1, MinWidth: 1, MinHeight: 1,
//	}, true)
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/grid/...      # Engine only
//	go test -run Example        # Examples only
//
// [grid]: https://pkg.go.dev/github.com/AdrienGannerie/gridboard/pkg/grid
// [store]: https://pkg.go.dev/github.com/AdrienGannerie/gridboard/pkg/store
// [errors]: https://pkg.go.dev/github.com/AdrienGannerie/gridboard/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/AdrienGannerie/gridboard/pkg/buildinfo
package pkg
