package buffer

import "github.com/dshills/textcore/internal/engine/rope"

// Snapshot is a read-only view of a buffer's text at one version. Ropes
// are immutable, so a snapshot never changes and may be read from any
// goroutine.
type Snapshot struct {
	rope       rope.Rope
	version    uint64
	lineEnding LineEnding
}

// Snapshot captures the current text.
func (b *TextBuffer) Snapshot() *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return &Snapshot{rope: b.rope, version: b.version, lineEnding: b.lineEnding}
}

// Text returns the snapshot's content.
func (s *Snapshot) Text() string {
	return s.rope.String()
}

// TextWithLineEndings returns the content using the captured line ending.
func (s *Snapshot) TextWithLineEndings() string {
	return expandLineEndings(s.rope.String(), s.lineEnding)
}

// TextInOffsetRange returns the characters in [start, end), clamped.
func (s *Snapshot) TextInOffsetRange(start, end int) string {
	return s.rope.Slice(start, end)
}

// Length returns the number of characters.
func (s *Snapshot) Length() int {
	return s.rope.Len()
}

// Version returns the buffer version the snapshot was taken at.
func (s *Snapshot) Version() uint64 {
	return s.version
}

// LineEnding returns the buffer's line ending at capture time.
func (s *Snapshot) LineEnding() LineEnding {
	return s.lineEnding
}
