// Package store provides persistence delegates for the grid layout engine.
//
// Every type here implements [grid.Store] and durably records item layouts
// for one named dashboard. The engine decides when to call the hooks; the
// stores only decide how the data is kept:
//   - Memory: map-backed, for tests and demos
//   - File: one JSON document per dashboard in a config directory
//   - Redis: one hash per dashboard, fields keyed by item id
//   - Mongo: one document per item in a shared collection
//
// # Usage
//
//	// CLI / demos
//	st, err := store.NewFile("", "home")
//
//	// Production, multi-instance
//	st := store.NewRedis(redis.NewClient(&redis.Options{Addr: "localhost:6379"}), "home")
//
//	eng := grid.NewEngine(nil)
//	err = eng.Attach(ctx, st, grid.Options{SlotCount: 8})
//
// Stores never retry on failure; the engine surfaces their errors to the
// caller and retry policy stays with the host application.
package store
