package grid

import "context"

// Store is the persistence delegate consumed by the engine. The engine calls
// it when items are durably added, deleted, or updated; calls never fire while
// an edit session is open, so multiple transient edits coalesce into at most
// three batched calls on confirm. Items passed to the notification hooks
// carry their current resolved layout.
//
// Store implementations may block on I/O; the engine passes through the
// caller's context and treats any error as terminal for the operation.
// Retry policy, if any, belongs to the implementation.
type Store interface {
	// LoadAll returns the full item set for a grid that is slots columns
	// wide. Items with a negative origin are treated as never placed and
	// auto-mounted on attach.
	LoadAll(ctx context.Context, slots int) ([]ItemLayout, error)

	// OnItemsAdded is called with newly added items. The slice is never empty.
	OnItemsAdded(ctx context.Context, items []ItemLayout, slots int) error

	// OnItemsDeleted is called with removed items, each carrying its
	// last-known layout. The slice is never empty.
	OnItemsDeleted(ctx context.Context, items []ItemLayout, slots int) error

	// OnItemsUpdated is called with items whose geometry changed.
	// The slice is never empty.
	OnItemsUpdated(ctx context.Context, items []ItemLayout, slots int) error
}

// LoadStatus describes the engine's relationship to its store.
type LoadStatus int

const (
	// StatusDetached means Attach has not been called, or Detach was.
	StatusDetached LoadStatus = iota
	// StatusLoading means LoadAll is in flight.
	StatusLoading
	// StatusLoaded means the layout was loaded and mounted successfully.
	StatusLoaded
	// StatusError means the last attach failed; the engine rejects
	// mutations until a successful re-attach.
	StatusError
)

// String returns the status name for logging.
func (s LoadStatus) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusError:
		return "error"
	default:
		return "detached"
	}
}
