package engine

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/textcore/internal/config"
	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/engine/marker"
	"github.com/dshills/textcore/internal/engine/patch"
	"github.com/dshills/textcore/internal/engine/point"
	"github.com/dshills/textcore/internal/engine/search"
	"github.com/dshills/textcore/internal/logging"
	"github.com/dshills/textcore/internal/textio"
)

// Re-export commonly used types for convenience.
type (
	// Point is a row/column position.
	Point = point.Point

	// Range is a pair of positions.
	Range = point.Range

	// TextBuffer is an editable document.
	TextBuffer = buffer.TextBuffer

	// LineEnding specifies the line ending style.
	LineEnding = buffer.LineEnding

	// Patch is a sequence of non-overlapping hunks.
	Patch = patch.Patch

	// Hunk is one change of a Patch.
	Hunk = patch.Hunk

	// MarkerIndex holds ranges that follow edits.
	MarkerIndex = marker.Index

	// MarkerID identifies a marker in its index.
	MarkerID = marker.ID

	// Pattern is a regex source with its flags.
	Pattern = search.Pattern

	// Match is one regex match.
	Match = search.Match

	// SubsequenceMatch is one ranked word.
	SubsequenceMatch = search.SubsequenceMatch
)

// Re-export constants.
const (
	LineEndingLF   = buffer.LineEndingLF
	LineEndingCRLF = buffer.LineEndingCRLF
	LineEndingCR   = buffer.LineEndingCR
)

// DefaultRange spans every position.
var DefaultRange = point.DefaultRange

// entry is a buffer held by the engine and the file it came from.
type entry struct {
	buf      *buffer.TextBuffer
	path     string
	encoding string
}

// Engine creates buffers from a configuration and connects them to files.
//
// All Engine methods are safe for concurrent use.
type Engine struct {
	cfg        *config.Config
	log        *logging.Logger
	scorer     search.Scorer
	tokenizer  search.Tokenizer
	lua        *search.LuaScorer
	lineEnding buffer.LineEnding

	mu      sync.RWMutex
	buffers map[uuid.UUID]*entry
	closed  bool
}

// New creates an engine. A nil cfg means config.Default(). The
// configuration is validated and copied.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	le, _ := buffer.ParseLineEnding(cfg.Buffer.LineEnding)

	e := &Engine{
		cfg:        cfg.Clone(),
		lineEnding: le,
		buffers:    make(map[uuid.UUID]*entry),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.log == nil {
		lc := logging.DefaultConfig()
		lc.Level = cfg.LogLevel()
		e.log = logging.New(lc)
	}

	if e.tokenizer == nil {
		if strings.EqualFold(cfg.Search.Tokenizer, "segment") {
			e.tokenizer = search.SegmentTokenizer{}
		} else {
			e.tokenizer = search.ClassTokenizer{}
		}
	}

	if e.scorer == nil {
		weighted := weightedScorer(cfg.Search.Weights)
		e.scorer = weighted
		if strings.EqualFold(cfg.Search.Scorer, "lua") {
			script, err := os.ReadFile(cfg.Search.LuaScript)
			if err != nil {
				return nil, fmt.Errorf("loading lua scorer: %w", err)
			}
			ls, err := search.NewLuaScorer(string(script), cfg.Search.LuaTimeout.Std())
			if err != nil {
				return nil, fmt.Errorf("loading lua scorer %s: %w", cfg.Search.LuaScript, err)
			}
			ls.Fallback = weighted
			e.lua = ls
			e.scorer = ls
		}
	}

	e.log.WithComponent("engine").Debug("ready: tokenizer=%s scorer=%s line_ending=%s",
		cfg.Search.Tokenizer, cfg.Search.Scorer, le)
	return e, nil
}

func weightedScorer(w config.Weights) search.WeightedScorer {
	return search.WeightedScorer{
		BaseScore:            w.Base,
		ConsecutiveBonus:     w.Consecutive,
		WordBoundaryBonus:    w.WordBoundary,
		PrefixBonus:          w.Prefix,
		ExactPrefixBonus:     w.ExactPrefix,
		GapPenalty:           w.Gap,
		LeadingPenalty:       w.Leading,
		LengthBonusThreshold: w.LengthBonusMax,
	}
}

// Config returns a copy of the engine's configuration.
func (e *Engine) Config() *config.Config {
	return e.cfg.Clone()
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *logging.Logger {
	return e.log
}

// Scorer returns the scorer used for word search.
func (e *Engine) Scorer() search.Scorer {
	return e.scorer
}

func (e *Engine) bufferOptions() []buffer.Option {
	return []buffer.Option{
		buffer.WithLogger(e.log),
		buffer.WithLineEnding(e.lineEnding),
		buffer.WithSearchTimeout(e.cfg.Buffer.SearchTimeout.Std()),
		buffer.WithScorer(e.scorer),
		buffer.WithTokenizer(e.tokenizer),
	}
}

func (e *Engine) register(ent *entry) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.buffers[ent.buf.ID()] = ent
	return nil
}

// lookup returns a copy of the entry for buf.
func (e *Engine) lookup(buf *buffer.TextBuffer) (entry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return entry{}, ErrClosed
	}
	ent, ok := e.buffers[buf.ID()]
	if !ok {
		return entry{}, fmt.Errorf("%w: %s", ErrUnknownBuffer, buf.ID())
	}
	return *ent, nil
}

// NewBuffer creates a buffer holding text as its base text.
func (e *Engine) NewBuffer(text string) (*TextBuffer, error) {
	buf := buffer.NewFromString(text, e.bufferOptions()...)
	if err := e.register(&entry{buf: buf}); err != nil {
		return nil, err
	}
	return buf, nil
}

// Open reads path in the configured encoding into a new buffer. With no
// configured encoding the charset is detected.
func (e *Engine) Open(path string) (*TextBuffer, error) {
	text, enc, err := textio.ReadTextEncoding(textio.OS, path, e.cfg.Buffer.Encoding)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	buf := buffer.NewFromString(text, e.bufferOptions()...)
	if err := e.register(&entry{buf: buf, path: path, encoding: enc}); err != nil {
		return nil, err
	}
	e.log.WithComponent("engine").Debug("opened %s as %s", path, enc)
	return buf, nil
}

// Path returns the file a buffer was opened from or saved to.
func (e *Engine) Path(buf *TextBuffer) (string, error) {
	ent, err := e.lookup(buf)
	if err != nil {
		return "", err
	}
	return ent.path, nil
}

// Reload reads the buffer's file again and loads it with LoadFromText.
// With trackChanges the differences become edits that follow markers;
// otherwise the buffer is reset to the file.
func (e *Engine) Reload(buf *TextBuffer, trackChanges bool) (*Patch, error) {
	ent, err := e.lookup(buf)
	if err != nil {
		return nil, err
	}
	if ent.path == "" {
		return nil, ErrNoPath
	}
	text, err := textio.ReadText(textio.OS, ent.path, ent.encoding)
	if err != nil {
		return nil, err
	}
	return buf.LoadFromText(text, trackChanges)
}

// Save writes the buffer to its file with its line endings and encoding,
// then makes the saved text the new base text.
func (e *Engine) Save(buf *TextBuffer) error {
	ent, err := e.lookup(buf)
	if err != nil {
		return err
	}
	if ent.path == "" {
		return ErrNoPath
	}
	return e.save(ent, ent.path)
}

// SaveAs writes the buffer to path and remembers path for later saves.
func (e *Engine) SaveAs(buf *TextBuffer, path string) error {
	ent, err := e.lookup(buf)
	if err != nil {
		return err
	}
	if err := e.save(ent, path); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if held, ok := e.buffers[buf.ID()]; ok {
		held.path = path
	}
	return nil
}

func (e *Engine) save(ent entry, path string) error {
	enc := ent.encoding
	if enc == "" {
		enc = e.cfg.Buffer.Encoding
	}
	if err := textio.WriteText(path, ent.buf.TextWithLineEndings(), enc); err != nil {
		return err
	}
	ent.buf.FlushChanges()
	e.log.WithComponent("engine").Debug("saved %s", path)
	return nil
}

// Follow reloads buf whenever its file changes until ctx is done.
// Reloads reset the buffer unless trackChanges is set.
func (e *Engine) Follow(ctx context.Context, buf *TextBuffer, trackChanges bool, onReload func(textio.ReloadEvent)) error {
	ent, err := e.lookup(buf)
	if err != nil {
		return err
	}
	if ent.path == "" {
		return ErrNoPath
	}
	f, err := textio.NewFollower(ent.path, buf,
		textio.WithDebounce(e.cfg.Buffer.FollowDebounce.Std()),
		textio.WithEncoding(ent.encoding),
		textio.WithTrackChanges(trackChanges),
		textio.WithFollowerLogger(e.log),
		textio.WithOnReload(onReload),
	)
	if err != nil {
		return err
	}
	return f.Run(ctx)
}

// FindWords ranks the words of buf containing query as a subsequence,
// using the configured extra word characters and result limit. A
// configured limit of zero returns every word.
func (e *Engine) FindWords(buf *TextBuffer, query string) []SubsequenceMatch {
	limit := e.cfg.Search.MaxResults
	if limit == 0 {
		limit = -1
	}
	return buf.FindWordsWithSubsequence(query, e.cfg.Search.ExtraWordCharacters, limit)
}

// Buffer returns the buffer with the given id.
func (e *Engine) Buffer(id uuid.UUID) (*TextBuffer, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ent, ok := e.buffers[id]
	if !ok {
		return nil, false
	}
	return ent.buf, true
}

// Buffers returns every held buffer ordered by id.
func (e *Engine) Buffers() []*TextBuffer {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*TextBuffer, 0, len(e.buffers))
	for _, ent := range e.buffers {
		out = append(out, ent.buf)
	}
	slices.SortFunc(out, func(a, b *TextBuffer) int {
		return strings.Compare(a.ID().String(), b.ID().String())
	})
	return out
}

// CloseBuffer releases a buffer.
func (e *Engine) CloseBuffer(buf *TextBuffer) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.buffers[buf.ID()]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBuffer, buf.ID())
	}
	delete(e.buffers, buf.ID())
	return nil
}

// Close releases every buffer and the scripting state. Close is
// idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	clear(e.buffers)
	if e.lua != nil {
		e.lua.Close()
	}
	return nil
}
