package engine

import (
	"github.com/dshills/textcore/internal/engine/search"
	"github.com/dshills/textcore/internal/logging"
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithLogger sets the logger. Without it the engine creates one at the
// configured level.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithScorer overrides the configured word scorer.
func WithScorer(s search.Scorer) Option {
	return func(e *Engine) {
		if s != nil {
			e.scorer = s
		}
	}
}

// WithTokenizer overrides the configured word tokenizer.
func WithTokenizer(t search.Tokenizer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tokenizer = t
		}
	}
}
