// Package highlight keeps syntax token spans as markers in a buffer.
//
// A Highlighter lexes buffer text with chroma and records every token that
// is not pure whitespace as a marker in one marker index. Because the index
// is attached to the buffer, token spans follow edits without re-lexing;
// Rehighlight re-lexes just the rows an edit touched.
package highlight

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/engine/marker"
	"github.com/dshills/textcore/internal/engine/point"
	"github.com/dshills/textcore/internal/engine/search"
	"github.com/dshills/textcore/internal/logging"
)

// Token is one highlighted span.
type Token struct {
	ID    marker.ID
	Kind  chroma.TokenType
	Range point.Range
}

// Highlighter tracks the token markers it created in a single index.
// It is safe for concurrent use.
type Highlighter struct {
	lexer chroma.Lexer
	log   *logging.Logger

	mu    sync.Mutex
	kinds map[marker.ID]chroma.TokenType
	next  marker.ID
}

// New returns a highlighter for the named language. Unknown names fall
// back to plain text.
func New(lexerName string) *Highlighter {
	lexer := lexers.Get(lexerName)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return newHighlighter(lexer)
}

// ForFile picks the language from a file name.
func ForFile(filename string) *Highlighter {
	lexer := lexers.Match(filename)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return newHighlighter(lexer)
}

func newHighlighter(lexer chroma.Lexer) *Highlighter {
	h := &Highlighter{
		lexer: chroma.Coalesce(lexer),
		kinds: make(map[marker.ID]chroma.TokenType),
		next:  1,
	}
	h.log = logging.Default().WithComponent("highlight").WithField("lexer", h.Language())
	return h
}

// SetLogger replaces the logger.
func (h *Highlighter) SetLogger(l *logging.Logger) {
	if l != nil {
		h.log = l.WithComponent("highlight").WithField("lexer", h.Language())
	}
}

// Language returns the lexer name.
func (h *Highlighter) Language() string {
	return h.lexer.Config().Name
}

// Highlight replaces every token marker in idx with a fresh lexing of the
// whole buffer.
func (h *Highlighter) Highlight(buf *buffer.TextBuffer, idx *marker.Index) error {
	return buf.UpdateMarkers(func(doc search.Document) error {
		h.mu.Lock()
		defer h.mu.Unlock()

		n := doc.CharacterCount()
		spans, err := h.lex(doc.TextInOffsetRange(0, n), 0)
		if err != nil {
			return err
		}

		for id := range h.kinds {
			_ = idx.Delete(id)
		}
		clear(h.kinds)
		if err := h.insert(idx, spans); err != nil {
			return err
		}
		h.log.Debug("highlighted %d tokens", len(spans))
		return nil
	})
}

// Rehighlight re-lexes the rows covered by rng. The region grows to take
// in any token that crosses its edges, and lexing restarts in the
// language's initial state at the region start.
func (h *Highlighter) Rehighlight(buf *buffer.TextBuffer, idx *marker.Index, rng point.Range) error {
	return buf.UpdateMarkers(func(doc search.Document) error {
		h.mu.Lock()
		defer h.mu.Unlock()

		rng = point.NewRange(rng.Start, rng.End)
		start := doc.OffsetForPosition(point.Point{Row: rng.Start.Row})
		end := doc.OffsetForPosition(point.Point{Row: rng.End.Row + 1})

		stale := h.own(idx.FindIntersecting(start, end))
		for _, id := range stale {
			r, err := idx.Range(id)
			if err != nil {
				continue
			}
			start = min(start, r.Start)
			end = max(end, r.End)
		}
		// Old tokens stay in place when lexing fails.
		spans, err := h.lex(doc.TextInOffsetRange(start, end), start)
		if err != nil {
			return err
		}

		for _, id := range stale {
			_ = idx.Delete(id)
			delete(h.kinds, id)
		}
		// Tokens fully inside the grown region are stale too.
		for _, id := range h.own(idx.FindContainedIn(start, end)) {
			_ = idx.Delete(id)
			delete(h.kinds, id)
		}
		if err := h.insert(idx, spans); err != nil {
			return err
		}
		h.log.Debug("rehighlighted %d tokens in %d..%d", len(spans), start, end)
		return nil
	})
}

// span is a lexed token not yet stored as a marker.
type span struct {
	start, end int
	kind       chroma.TokenType
}

// lex tokenises text, which begins at offset base, and returns the spans
// of tokens that are not whitespace.
func (h *Highlighter) lex(text string, base int) ([]span, error) {
	it, err := h.lexer.Tokenise(nil, text)
	if err != nil {
		return nil, fmt.Errorf("lexing %s: %w", h.Language(), err)
	}

	// The lexer may append a newline; never mark past the text.
	limit := base + utf8.RuneCountInString(text)
	offset := base
	var spans []span
	for tok := it(); tok != chroma.EOF; tok = it() {
		n := utf8.RuneCountInString(tok.Value)
		start, end := offset, min(offset+n, limit)
		offset += n
		if start >= end || strings.TrimSpace(tok.Value) == "" {
			continue
		}
		spans = append(spans, span{start: start, end: end, kind: tok.Type})
	}
	return spans, nil
}

// insert stores spans as markers in idx.
func (h *Highlighter) insert(idx *marker.Index, spans []span) error {
	for _, sp := range spans {
		id := h.next
		h.next++
		if err := idx.Insert(id, sp.start, sp.end, marker.Options{}); err != nil {
			return err
		}
		h.kinds[id] = sp.kind
	}
	return nil
}

// own filters ids down to the markers this highlighter created.
func (h *Highlighter) own(ids []marker.ID) []marker.ID {
	out := ids[:0]
	for _, id := range ids {
		if _, ok := h.kinds[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Kind returns the token type recorded for a marker.
func (h *Highlighter) Kind(id marker.ID) (chroma.TokenType, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	k, ok := h.kinds[id]
	return k, ok
}

// Len returns the number of token markers.
func (h *Highlighter) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.kinds)
}

// Tokens returns the tokens intersecting rng, ordered by start.
func (h *Highlighter) Tokens(buf *buffer.TextBuffer, idx *marker.Index, rng point.Range) []Token {
	var out []Token
	_ = buf.UpdateMarkers(func(doc search.Document) error {
		h.mu.Lock()
		defer h.mu.Unlock()

		rng = point.NewRange(rng.Start, rng.End)
		start := doc.OffsetForPosition(rng.Start)
		end := doc.OffsetForPosition(rng.End)
		for _, id := range h.own(idx.FindIntersecting(start, end)) {
			r, err := idx.Range(id)
			if err != nil {
				continue
			}
			out = append(out, Token{
				ID:   id,
				Kind: h.kinds[id],
				Range: point.Range{
					Start: doc.PositionForOffset(r.Start),
					End:   doc.PositionForOffset(r.End),
				},
			})
		}
		return nil
	})
	slices.SortFunc(out, func(a, b Token) int {
		if c := a.Range.Start.Compare(b.Range.Start); c != 0 {
			return c
		}
		return int(a.ID) - int(b.ID)
	})
	return out
}

// Kinds returns the distinct token types currently marked.
func (h *Highlighter) Kinds() []chroma.TokenType {
	h.mu.Lock()
	defer h.mu.Unlock()
	seen := make(map[chroma.TokenType]struct{})
	for _, k := range h.kinds {
		seen[k] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

// StyleEntry returns how the named chroma style draws kind. Unknown style
// names use chroma's fallback style.
func StyleEntry(styleName string, kind chroma.TokenType) chroma.StyleEntry {
	return styles.Get(styleName).Get(kind)
}
