package buffer

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dshills/textcore/internal/engine/diff"
	"github.com/dshills/textcore/internal/engine/lineindex"
	"github.com/dshills/textcore/internal/engine/marker"
	"github.com/dshills/textcore/internal/engine/patch"
	"github.com/dshills/textcore/internal/engine/point"
	"github.com/dshills/textcore/internal/engine/rope"
	"github.com/dshills/textcore/internal/engine/search"
	"github.com/dshills/textcore/internal/logging"
)

// TextBuffer is an editable document that records its changes against a
// base text. Positions and offsets count characters.
//
// Accessors are safe for concurrent use. Attached marker indexes are
// updated under the buffer's lock but are not themselves synchronized;
// callers that read them concurrently with edits must serialize access.
type TextBuffer struct {
	mu sync.RWMutex

	id      uuid.UUID
	rope    rope.Rope
	lines   *lineindex.Index
	base    string
	changes *patch.Patch
	markers []*marker.Index
	version uint64

	lineEnding    LineEnding
	defaultEnding LineEnding

	log           *logging.Logger
	searchTimeout time.Duration
	scorer        search.Scorer
	tokenizer     search.Tokenizer
	diffOpts      diff.Options
}

// New creates an empty buffer.
func New(opts ...Option) *TextBuffer {
	b := &TextBuffer{
		id:            uuid.New(),
		rope:          rope.New(),
		lines:         lineindex.New(),
		changes:       patch.New(),
		log:           logging.Default(),
		searchTimeout: search.DefaultMatchTimeout,
		scorer:        search.DefaultWeights(),
		tokenizer:     search.ClassTokenizer{},
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.WithComponent("buffer").WithField("buffer", b.id.String())
	return b
}

// NewFromString creates a buffer whose base text is text.
func NewFromString(text string, opts ...Option) *TextBuffer {
	b := New(opts...)
	b.resetLocked(text)
	return b
}

// ID returns the buffer's unique id.
func (b *TextBuffer) ID() uuid.UUID {
	return b.id
}

// Version returns a counter incremented by every change to the text.
func (b *TextBuffer) Version() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// Text returns the full content. Line endings are \n.
func (b *TextBuffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.String()
}

// TextWithLineEndings returns the content using the buffer's line ending.
func (b *TextBuffer) TextWithLineEndings() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return expandLineEndings(b.rope.String(), b.lineEnding)
}

// TextInRange returns the text in rng after clipping both ends.
func (b *TextBuffer) TextInRange(rng point.Range) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	start, end := b.offsetsLocked(rng)
	return b.rope.Slice(start, end)
}

// Length returns the number of characters.
func (b *TextBuffer) Length() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.Len()
}

// Extent returns the position of the end of the text.
func (b *TextBuffer) Extent() point.Point {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lines.Extent()
}

// LineCount returns the number of lines, always at least one.
func (b *TextBuffer) LineCount() int {
	return b.Extent().Row + 1
}

// LineLengthForRow returns the length of row without its terminator, or
// false if the row does not exist.
func (b *TextBuffer) LineLengthForRow(row int) (int, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if row < 0 || row >= b.lines.LineCount() {
		return 0, false
	}
	return b.lines.LineLength(row), true
}

// LineForRow returns the text of row without its terminator, or false if
// the row does not exist.
func (b *TextBuffer) LineForRow(row int) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if row < 0 || row >= b.lines.LineCount() {
		return "", false
	}
	start := b.lines.OffsetForRow(row)
	return b.rope.Slice(start, start+b.lines.LineLength(row)), true
}

// LineEndingForRow returns the terminator of row: the buffer's line ending
// for every row but the last, and "" for the last row or a missing one.
func (b *TextBuffer) LineEndingForRow(row int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if row < 0 || row >= b.lines.LineCount()-1 {
		return ""
	}
	return b.lineEnding.Sequence()
}

// LineEnding returns the line ending detected in the loaded text.
func (b *TextBuffer) LineEnding() LineEnding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineEnding
}

// HasAstral reports whether the text contains characters outside the
// Basic Multilingual Plane.
func (b *TextBuffer) HasAstral() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.HasAstral()
}

// CharacterIndexForPosition returns the offset of p after clipping.
func (b *TextBuffer) CharacterIndexForPosition(p point.Point) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lines.OffsetForPosition(p)
}

// PositionForCharacterIndex returns the position of offset. Negative
// offsets map to the origin and offsets past the end to the extent.
func (b *TextBuffer) PositionForCharacterIndex(offset int) point.Point {
	if offset < 0 {
		return point.Zero
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lines.PositionForOffset(offset)
}

// ClipPosition returns the nearest valid position to p.
func (b *TextBuffer) ClipPosition(p point.Point) point.Point {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lines.ClipPosition(p)
}

// CharacterAtPosition returns the character at p after clipping. A
// position at a line end yields '\n'; the end of the text yields
// ErrOutOfRange.
func (b *TextBuffer) CharacterAtPosition(p point.Point) (rune, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	offset := b.lines.OffsetForPosition(p)
	r, ok := b.rope.CharAt(offset)
	if !ok {
		return 0, fmt.Errorf("character at %s: %w", p, ErrOutOfRange)
	}
	return r, nil
}

// SetTextInRange replaces the text in rng. The range is clipped. The edit
// is recorded in the change patch, then applied to the text, the line
// index and every attached marker index. If the change cannot be
// recorded nothing is modified.
func (b *TextBuffer) SetTextInRange(rng point.Range, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.setTextInRangeLocked(rng, normalizeLineEndings(text))
}

// SetText replaces the whole text as a recorded change.
func (b *TextBuffer) SetText(text string) error {
	return b.SetTextInRange(point.DefaultRange, text)
}

// Reset replaces the whole text and makes it the new base text. Recorded
// changes are discarded, so the buffer is no longer modified.
func (b *TextBuffer) Reset(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetLocked(text)
}

func (b *TextBuffer) setTextInRangeLocked(rng point.Range, text string) error {
	rng = point.NewRange(rng.Start, rng.End)
	start := b.lines.ClipPosition(rng.Start)
	end := b.lines.ClipPosition(rng.End)
	startOffset := b.lines.OffsetForPosition(start)
	endOffset := b.lines.OffsetForPosition(end)
	if startOffset == endOffset && text == "" {
		return nil
	}

	oldText := b.rope.Slice(startOffset, endOffset)
	err := b.changes.Splice(start, point.Traversal(end, start), point.ExtentOf(text), &oldText, &text)
	if err != nil {
		b.log.Warn("set text in range %s: %v", rng, err)
		return fmt.Errorf("set text in range %s: %w", rng, err)
	}
	b.spliceLocked(start, end, startOffset, endOffset, text)
	return nil
}

// spliceLocked applies a replacement to the text, the line index and the
// marker indexes, leaving the change patch alone.
func (b *TextBuffer) spliceLocked(start, end point.Point, startOffset, endOffset int, text string) {
	lengths := lineLengths(text)
	lengths[0] += start.Column
	lengths[len(lengths)-1] += b.lines.LineLength(end.Row) - end.Column

	b.rope = b.rope.Replace(startOffset, endOffset, text)
	b.lines.Splice(start.Row, end.Row-start.Row+1, lengths)
	inserted := utf8.RuneCountInString(text)
	for _, idx := range b.markers {
		idx.Splice(startOffset, endOffset-startOffset, inserted)
	}
	b.version++
}

func (b *TextBuffer) resetLocked(text string) {
	b.lineEnding = DetectLineEnding(text, b.defaultEnding)
	text = normalizeLineEndings(text)

	oldLength := b.rope.Len()
	b.rope = rope.FromString(text)
	b.lines = lineindex.NewFromLengths(lineLengths(text))
	b.base = text
	b.changes = patch.New()
	inserted := b.rope.Len()
	for _, idx := range b.markers {
		idx.Splice(0, oldLength, inserted)
	}
	b.version++
	b.log.Debug("reset to %d characters", inserted)
}

// offsetsLocked clips rng and returns its offsets in order.
func (b *TextBuffer) offsetsLocked(rng point.Range) (int, int) {
	start := b.lines.OffsetForPosition(rng.Start)
	end := b.lines.OffsetForPosition(rng.End)
	if start > end {
		start, end = end, start
	}
	return start, end
}

// lineLengths returns the character length of every line of text.
func lineLengths(text string) []int {
	parts := strings.Split(text, "\n")
	lengths := make([]int, len(parts))
	for i, part := range parts {
		lengths[i] = utf8.RuneCountInString(part)
	}
	return lengths
}
