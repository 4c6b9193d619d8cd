package engine

import (
	"errors"

	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/engine/marker"
	"github.com/dshills/textcore/internal/engine/patch"
	"github.com/dshills/textcore/internal/engine/search"
)

// Errors returned by engine operations. Errors from the sub-packages are
// re-exported so callers need only this package for errors.Is checks.
var (
	// ErrInvalidPattern indicates a regex that does not compile.
	ErrInvalidPattern = search.ErrInvalidPattern

	// ErrMatchTimeout indicates a regex evaluation exceeded its timeout.
	ErrMatchTimeout = search.ErrMatchTimeout

	// ErrPatchInapplicable indicates a splice or composition that does not
	// apply to the patch's current state.
	ErrPatchInapplicable = patch.ErrPatchInapplicable

	// ErrCorruptPatch indicates serialized changes that cannot be decoded.
	ErrCorruptPatch = patch.ErrCorruptPatch

	// ErrDuplicateMarkerID indicates an insert with an id already present.
	ErrDuplicateMarkerID = marker.ErrDuplicateMarkerID

	// ErrUnknownMarkerID indicates an id that is not in the index.
	ErrUnknownMarkerID = marker.ErrUnknownMarkerID

	// ErrOutOfRange indicates a position or offset outside the text.
	ErrOutOfRange = buffer.ErrOutOfRange

	// ErrUnknownBuffer indicates a buffer id the engine does not hold.
	ErrUnknownBuffer = errors.New("unknown buffer")

	// ErrNoPath indicates a buffer that was not opened from a file.
	ErrNoPath = errors.New("buffer has no file")

	// ErrClosed indicates an operation on a closed engine.
	ErrClosed = errors.New("engine is closed")
)
