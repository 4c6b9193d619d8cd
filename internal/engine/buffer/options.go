package buffer

import (
	"time"

	"github.com/dshills/textcore/internal/engine/diff"
	"github.com/dshills/textcore/internal/engine/search"
	"github.com/dshills/textcore/internal/logging"
)

// Option is a functional option for configuring a TextBuffer.
type Option func(*TextBuffer)

// WithLogger sets the logger. The buffer adds its id as a field.
func WithLogger(l *logging.Logger) Option {
	return func(b *TextBuffer) {
		if l != nil {
			b.log = l
		}
	}
}

// WithLineEnding sets the line ending assumed for text that has none.
func WithLineEnding(le LineEnding) Option {
	return func(b *TextBuffer) {
		b.defaultEnding = le
		b.lineEnding = le
	}
}

// WithSearchTimeout bounds each regex evaluation.
func WithSearchTimeout(d time.Duration) Option {
	return func(b *TextBuffer) {
		b.searchTimeout = d
	}
}

// WithScorer sets the scorer for word subsequence search.
func WithScorer(s search.Scorer) Option {
	return func(b *TextBuffer) {
		if s != nil {
			b.scorer = s
		}
	}
}

// WithTokenizer sets the tokenizer for word subsequence search.
func WithTokenizer(t search.Tokenizer) Option {
	return func(b *TextBuffer) {
		if t != nil {
			b.tokenizer = t
		}
	}
}

// WithDiffOptions configures the diff used by LoadFromText.
func WithDiffOptions(opts diff.Options) Option {
	return func(b *TextBuffer) {
		b.diffOpts = opts
	}
}
