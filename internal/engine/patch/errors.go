package patch

import "errors"

// Errors returned by patch operations.
var (
	// ErrPatchInapplicable indicates a splice or composition cannot be
	// merged consistently. The patch is left unchanged.
	ErrPatchInapplicable = errors.New("patch does not apply")

	// ErrCorruptPatch indicates serialized patch data could not be decoded.
	ErrCorruptPatch = errors.New("corrupt patch data")
)
