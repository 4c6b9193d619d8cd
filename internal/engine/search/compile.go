package search

import (
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultMatchTimeout bounds a single regex evaluation.
const DefaultMatchTimeout = 5 * time.Second

// Pattern is a regex source together with its flags.
type Pattern struct {
	Source     string
	IgnoreCase bool
	Unicode    bool
}

// Regex is a compiled Pattern.
type Regex struct {
	pattern Pattern
	re      *regexp2.Regexp
}

// CompileOption configures Compile.
type CompileOption func(*regexp2.Regexp)

// WithMatchTimeout sets the per-evaluation timeout. Zero or less disables
// the timeout.
func WithMatchTimeout(d time.Duration) CompileOption {
	return func(re *regexp2.Regexp) {
		if d <= 0 {
			d = regexp2.DefaultMatchTimeout
		}
		re.MatchTimeout = d
	}
}

// Compile compiles p with ECMAScript syntax. ^ and $ match at line
// boundaries.
func Compile(p Pattern, opts ...CompileOption) (*Regex, error) {
	flags := regexp2.RegexOptions(regexp2.ECMAScript | regexp2.Multiline)
	if p.IgnoreCase {
		flags |= regexp2.IgnoreCase
	}
	if p.Unicode {
		flags |= regexp2.Unicode
	}

	re, err := regexp2.Compile(p.Source, flags)
	if err != nil {
		return nil, &PatternError{Source: p.Source, Message: err.Error()}
	}
	re.MatchTimeout = DefaultMatchTimeout
	for _, opt := range opts {
		opt(re)
	}
	return &Regex{pattern: p, re: re}, nil
}

// MustCompile is like Compile but panics on error. It is intended for
// patterns known at compile time.
func MustCompile(p Pattern) *Regex {
	re, err := Compile(p)
	if err != nil {
		panic(err)
	}
	return re
}

// Pattern returns the pattern the regex was compiled from.
func (r *Regex) Pattern() Pattern {
	return r.pattern
}

// String returns the pattern source.
func (r *Regex) String() string {
	return r.pattern.Source
}
