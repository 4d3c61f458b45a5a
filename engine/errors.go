package engine

import "errors"

// Error kinds surfaced by the sequence engine, per spec.md §7.
var (
	// ErrUnknownReference is returned when a local operation names an id
	// not present in the store.
	ErrUnknownReference = errors.New("engine: unknown reference")

	// ErrDuplicateIdentifier is returned when an insert attempts to
	// create an id already present in the store. For locally generated
	// ids this indicates a programmer error or a replayed call; for
	// remote ops it is treated as an idempotent success by RemoteApply
	// rather than surfaced to the caller.
	ErrDuplicateIdentifier = errors.New("engine: duplicate identifier")

	// ErrTombstonedTarget is returned by LocalUpdate when its target has
	// already been deleted.
	ErrTombstonedTarget = errors.New("engine: update target is tombstoned")
)
