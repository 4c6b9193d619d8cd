package search

import (
	"errors"
	"fmt"
)

// Errors returned by the search engine.
var (
	// ErrInvalidPattern indicates a pattern that failed to compile.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrMatchTimeout indicates a match exceeded the regex timeout.
	ErrMatchTimeout = errors.New("match timed out")
)

// PatternError reports a pattern the regex engine rejected.
type PatternError struct {
	Source  string
	Message string
}

// Error implements error.
func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern /%s/: %s", e.Source, e.Message)
}

// Unwrap returns ErrInvalidPattern so errors.Is works.
func (e *PatternError) Unwrap() error {
	return ErrInvalidPattern
}
