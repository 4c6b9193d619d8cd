package buffer

import "errors"

// Errors returned by buffer operations.
var (
	// ErrOutOfRange indicates a position at or past the end of the text.
	ErrOutOfRange = errors.New("position out of range")
)
