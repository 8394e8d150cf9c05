package grid

import "errors"

var (
	// ErrNotAttached is returned by every mutating [Engine] method when the
	// engine has not been attached to a store yet, or after a failed attach.
	ErrNotAttached = errors.New("engine not attached")

	// ErrConfiguration is returned when the grid configuration can never
	// admit an item: an item wider than the slot count with shrink-to-fit
	// disabled, a minimum width above the slot count, or a non-positive
	// slot count. Configuration errors are fatal and never retried.
	ErrConfiguration = errors.New("invalid grid configuration")

	// ErrInvalidItem is returned by [ItemLayout.Validate] when an item's
	// geometry or size constraints are internally inconsistent.
	ErrInvalidItem = errors.New("invalid item")

	// ErrDuplicateItem is returned by [Engine.Add] when an item with the
	// same ID is already managed by the engine.
	ErrDuplicateItem = errors.New("duplicate item ID")

	// ErrUnknownItem is returned when an operation names an item ID the
	// engine does not manage.
	ErrUnknownItem = errors.New("unknown item ID")

	// ErrIndexMismatch indicates an internal consistency failure in the
	// spatial index, e.g. a rectangle that should occupy at least one cell
	// yields none, or an insert would overwrite another item's cell. It is
	// a defect in the caller, never a recoverable condition.
	ErrIndexMismatch = errors.New("spatial index mismatch")

	// ErrPlacementExhausted is returned when the bounded auto-placement
	// scan gives up. It indicates a grid that structurally cannot admit
	// the item and is treated as fatal, not as a transient failure.
	ErrPlacementExhausted = errors.New("placement scan exhausted")

	// ErrNoPlacement is returned when a push or directional insert cannot
	// complete its displacement chain. The operation rolls back first, so
	// the layout is exactly what it was before the attempt.
	ErrNoPlacement = errors.New("no valid placement")

	// ErrEditing is returned by [Engine.StartEditing] when an edit session
	// is already open. Only one transaction may be open at a time.
	ErrEditing = errors.New("edit session already open")

	// ErrStore wraps failures reported by the persistence delegate, on
	// attach as well as on notification. The engine does not retry; retry
	// policy belongs to the delegate.
	ErrStore = errors.New("store error")
)
