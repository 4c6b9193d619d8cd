package marker

import "errors"

// Errors returned by marker index operations.
var (
	// ErrDuplicateMarkerID indicates an insert reused a live marker id.
	ErrDuplicateMarkerID = errors.New("duplicate marker id")

	// ErrUnknownMarkerID indicates the id does not name a marker in the index.
	ErrUnknownMarkerID = errors.New("unknown marker id")

	// ErrInvalidRange indicates a marker range with a negative offset.
	ErrInvalidRange = errors.New("invalid marker range")
)
