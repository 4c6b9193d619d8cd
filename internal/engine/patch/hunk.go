package patch

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dshills/textcore/internal/engine/point"
)

// Hunk maps one region of the old coordinate space to its replacement in
// the new coordinate space. Texts are optional; nil means unknown.
type Hunk struct {
	OldStart point.Point
	OldEnd   point.Point
	NewStart point.Point
	NewEnd   point.Point
	OldText  *string
	NewText  *string
}

// OldExtent returns the extent of the replaced region.
func (h Hunk) OldExtent() point.Point {
	return point.Traversal(h.OldEnd, h.OldStart)
}

// NewExtent returns the extent of the replacement.
func (h Hunk) NewExtent() point.Point {
	return point.Traversal(h.NewEnd, h.NewStart)
}

// IsNoop reports whether the hunk neither removes nor inserts anything.
func (h Hunk) IsNoop() bool {
	return h.OldStart == h.OldEnd && h.NewStart == h.NewEnd
}

// String returns a human-readable representation of the hunk.
func (h Hunk) String() string {
	return fmt.Sprintf("%s-%s => %s-%s", h.OldStart, h.OldEnd, h.NewStart, h.NewEnd)
}

// Equal compares positions and texts.
func (h Hunk) Equal(other Hunk) bool {
	return h.OldStart == other.OldStart && h.OldEnd == other.OldEnd &&
		h.NewStart == other.NewStart && h.NewEnd == other.NewEnd &&
		sameText(h.OldText, other.OldText) && sameText(h.NewText, other.NewText)
}

func sameText(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func textPtr(s string) *string {
	return &s
}

// byteIndexAt returns the byte index in text of the position rel, where
// rel is relative to the start of text. It returns -1 when rel lies
// outside text.
func byteIndexAt(text string, rel point.Point) int {
	i := 0
	for row := 0; row < rel.Row; row++ {
		nl := strings.IndexByte(text[i:], '\n')
		if nl < 0 {
			return -1
		}
		i += nl + 1
	}
	for col := 0; col < rel.Column; col++ {
		if i >= len(text) || text[i] == '\n' {
			return -1
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return i
}

// sliceText returns the part of text (which begins at base) between the
// positions from and to. ok is false if either position falls outside.
func sliceText(text string, base, from, to point.Point) (string, bool) {
	a := byteIndexAt(text, point.Traversal(from, base))
	b := byteIndexAt(text, point.Traversal(to, base))
	if a < 0 || b < 0 || b < a {
		return "", false
	}
	return text[a:b], true
}
