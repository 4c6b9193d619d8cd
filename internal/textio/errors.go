package textio

import "errors"

var (
	// ErrUnknownEncoding indicates an encoding name with no known charset.
	ErrUnknownEncoding = errors.New("unknown encoding")

	// ErrBinary indicates content that does not look like text.
	ErrBinary = errors.New("binary content")
)
