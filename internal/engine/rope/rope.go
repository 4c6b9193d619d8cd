package rope

import "strings"

// Rope is an immutable rope for text storage. Offsets are characters.
// Operations return new Rope values; the original is never modified.
type Rope struct {
	root *node
}

// New creates an empty rope.
func New() Rope {
	return Rope{root: newLeaf(nil)}
}

// FromString creates a rope from a string.
func FromString(s string) Rope {
	if len(s) == 0 {
		return New()
	}
	return buildFromChunks(splitIntoChunks(s))
}

func buildFromChunks(chunks []Chunk) Rope {
	if len(chunks) == 0 {
		return New()
	}
	var nodes []*node
	for i := 0; i < len(chunks); i += MaxChunksPerLeaf {
		end := min(i+MaxChunksPerLeaf, len(chunks))
		leaf := make([]Chunk, end-i)
		copy(leaf, chunks[i:end])
		nodes = append(nodes, newLeaf(leaf))
	}
	for len(nodes) > 1 {
		var parents []*node
		for i := 0; i < len(nodes); i += MaxChildren {
			end := min(i+MaxChildren, len(nodes))
			children := make([]*node, end-i)
			copy(children, nodes[i:end])
			parents = append(parents, newInternal(children))
		}
		nodes = parents
	}
	return Rope{root: nodes[0]}
}

// Len returns the total character count.
func (r Rope) Len() int {
	if r.root == nil {
		return 0
	}
	return r.root.chars()
}

// LineCount returns the number of lines (newlines + 1).
func (r Rope) LineCount() int {
	return r.Summary().Lines + 1
}

// IsEmpty returns true if the rope contains no text.
func (r Rope) IsEmpty() bool {
	return r.Len() == 0
}

// HasAstral reports whether any character lies outside the Basic
// Multilingual Plane.
func (r Rope) HasAstral() bool {
	return r.Summary().Astral > 0
}

// Summary returns the aggregated metrics for the entire rope.
func (r Rope) Summary() TextSummary {
	if r.root == nil {
		return TextSummary{}
	}
	return r.root.summary
}

// String returns the full text as a string.
// Use sparingly for large ropes.
func (r Rope) String() string {
	if r.root == nil {
		return ""
	}
	var sb strings.Builder
	sb.Grow(r.root.summary.Bytes)
	r.root.appendTo(&sb)
	return sb.String()
}

// Slice returns the text in the character range [start, end).
// The range is clamped to the rope.
func (r Rope) Slice(start, end int) string {
	start = max(start, 0)
	end = min(end, r.Len())
	if r.root == nil || start >= end {
		return ""
	}
	var sb strings.Builder
	r.root.appendRange(&sb, start, end)
	return sb.String()
}

// CharAt returns the character at the given offset.
// Returns 0 and false if offset is out of range.
func (r Rope) CharAt(offset int) (rune, bool) {
	if r.root == nil || offset < 0 || offset >= r.Len() {
		return 0, false
	}
	return r.root.charAt(offset), true
}

// Insert inserts text at the given character offset.
func (r Rope) Insert(offset int, text string) Rope {
	if len(text) == 0 {
		return r
	}
	if r.IsEmpty() {
		return FromString(text)
	}
	left, right := r.Split(offset)
	return left.Concat(FromString(text)).Concat(right)
}

// Delete removes text in the character range [start, end).
func (r Rope) Delete(start, end int) Rope {
	start = max(start, 0)
	end = min(end, r.Len())
	if r.root == nil || start >= end {
		return r
	}
	left, rest := r.Split(start)
	_, right := rest.Split(end - start)
	return left.Concat(right)
}

// Replace replaces text in the character range [start, end) with new text.
func (r Rope) Replace(start, end int, text string) Rope {
	return r.Delete(start, end).Insert(start, text)
}

// Split splits the rope at offset, returning two ropes.
// Left rope contains [0, offset), right contains [offset, end).
func (r Rope) Split(offset int) (Rope, Rope) {
	if r.root == nil || offset <= 0 {
		return New(), r
	}
	if offset >= r.Len() {
		return r, New()
	}
	left, right := r.root.split(offset)
	return Rope{root: left}, Rope{root: right}
}

// Concat concatenates two ropes.
func (r Rope) Concat(other Rope) Rope {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	return Rope{root: concat(r.root, other.root)}
}

// Height returns the height of the rope tree.
func (r Rope) Height() int {
	if r.root == nil {
		return 0
	}
	return int(r.root.height) + 1
}

// Equals returns true if two ropes contain the same text.
func (r Rope) Equals(other Rope) bool {
	if r.Summary() != other.Summary() {
		return false
	}
	return r.String() == other.String()
}
