package lineindex

import (
	"math/rand/v2"

	"github.com/dshills/textcore/internal/engine/point"
)

const nilNode int32 = -1

// node is one line in the arena.
type node struct {
	left, right int32
	priority    uint32

	length  int // this line, terminator excluded
	count   int // lines in subtree
	sum     int // sum of lengths in subtree
	longest int // longest line in subtree
}

// Index is a balanced line-length table.
// The zero value is not usable; call New or NewFromLengths.
type Index struct {
	nodes []node
	free  []int32
	root  int32
}

// New creates an index holding the empty document: one line of length 0.
func New() *Index {
	return NewFromLengths(nil)
}

// NewFromLengths creates an index from line lengths.
// An empty slice produces a single empty line.
func NewFromLengths(lengths []int) *Index {
	idx := &Index{root: nilNode}
	if len(lengths) == 0 {
		lengths = []int{0}
	}
	idx.root = idx.build(lengths)
	return idx
}

// LineCount returns the number of lines, always at least one.
func (idx *Index) LineCount() int {
	return idx.count(idx.root)
}

// CharacterCount returns the document length: all line lengths plus
// one terminator between consecutive lines.
func (idx *Index) CharacterCount() int {
	n := idx.count(idx.root)
	return idx.sum(idx.root) + n - 1
}

// LongestColumn returns the length of the longest line.
func (idx *Index) LongestColumn() int {
	if idx.root == nilNode {
		return 0
	}
	return idx.nodes[idx.root].longest
}

// Extent returns the position of the document end.
func (idx *Index) Extent() point.Point {
	last := idx.LineCount() - 1
	return point.Point{Row: last, Column: idx.LineLength(last)}
}

// LineLength returns the length of row, or 0 for a row out of range.
func (idx *Index) LineLength(row int) int {
	n := idx.root
	for n != nilNode {
		nd := &idx.nodes[n]
		lc := idx.count(nd.left)
		switch {
		case row < lc:
			n = nd.left
		case row == lc:
			return nd.length
		default:
			row -= lc + 1
			n = nd.right
		}
	}
	return 0
}

// Lengths returns every line length in row order.
func (idx *Index) Lengths() []int {
	out := make([]int, 0, idx.LineCount())
	var walk func(n int32)
	walk = func(n int32) {
		if n == nilNode {
			return
		}
		walk(idx.nodes[n].left)
		out = append(out, idx.nodes[n].length)
		walk(idx.nodes[n].right)
	}
	walk(idx.root)
	return out
}

// OffsetForRow returns the offset of the first character of row.
// Rows past the end clamp to the document length.
func (idx *Index) OffsetForRow(row int) int {
	if row <= 0 {
		return 0
	}
	if row >= idx.LineCount() {
		return idx.CharacterCount()
	}
	offset := 0
	n := idx.root
	for n != nilNode {
		nd := &idx.nodes[n]
		lc := idx.count(nd.left)
		switch {
		case row < lc:
			n = nd.left
		case row == lc:
			return offset + idx.sum(nd.left) + lc
		default:
			offset += idx.sum(nd.left) + lc + nd.length + 1
			row -= lc + 1
			n = nd.right
		}
	}
	return offset
}

// PositionForOffset converts a character offset to a position.
// The offset is clamped to [0, CharacterCount].
func (idx *Index) PositionForOffset(offset int) point.Point {
	if offset <= 0 {
		return point.Zero
	}
	if total := idx.CharacterCount(); offset > total {
		offset = total
	}

	row := 0
	n := idx.root
	for n != nilNode {
		nd := &idx.nodes[n]
		lc := idx.count(nd.left)
		lineStart := idx.sum(nd.left) + lc
		switch {
		case offset < lineStart:
			n = nd.left
		case offset <= lineStart+nd.length:
			return point.Point{Row: row + lc, Column: offset - lineStart}
		default:
			offset -= lineStart + nd.length + 1
			row += lc + 1
			n = nd.right
		}
	}
	return idx.Extent()
}

// OffsetForPosition converts a position to a character offset.
// Columns clamp to the row's length; rows past the last line, including
// point.Infinity, clamp to the document end.
func (idx *Index) OffsetForPosition(p point.Point) int {
	if p.Row < 0 {
		return 0
	}
	if p.Row >= idx.LineCount() {
		return idx.CharacterCount()
	}
	col := min(max(p.Column, 0), idx.LineLength(p.Row))
	return idx.OffsetForRow(p.Row) + col
}

// ClipPosition clamps p to the nearest valid position.
func (idx *Index) ClipPosition(p point.Point) point.Point {
	return idx.PositionForOffset(idx.OffsetForPosition(p))
}

// Splice replaces deletedLineCount lines starting at startRow with lines
// of the given lengths. Arguments are clamped to the current table. A
// splice that would leave no lines restores the single empty line.
func (idx *Index) Splice(startRow, deletedLineCount int, newLineLengths []int) {
	total := idx.LineCount()
	startRow = min(max(startRow, 0), total)
	deletedLineCount = min(max(deletedLineCount, 0), total-startRow)

	left, rest := idx.split(idx.root, startRow)
	mid, right := idx.split(rest, deletedLineCount)
	idx.release(mid)

	root := idx.merge(left, idx.build(newLineLengths))
	root = idx.merge(root, right)
	if root == nilNode {
		root = idx.build([]int{0})
	}
	idx.root = root
}

func (idx *Index) count(n int32) int {
	if n == nilNode {
		return 0
	}
	return idx.nodes[n].count
}

func (idx *Index) sum(n int32) int {
	if n == nilNode {
		return 0
	}
	return idx.nodes[n].sum
}

func (idx *Index) update(n int32) {
	nd := &idx.nodes[n]
	nd.count = 1
	nd.sum = nd.length
	nd.longest = nd.length
	for _, c := range [2]int32{nd.left, nd.right} {
		if c == nilNode {
			continue
		}
		child := &idx.nodes[c]
		nd.count += child.count
		nd.sum += child.sum
		nd.longest = max(nd.longest, child.longest)
	}
}

func (idx *Index) alloc(length int) int32 {
	nd := node{left: nilNode, right: nilNode, priority: rand.Uint32(), length: length}
	var n int32
	if k := len(idx.free); k > 0 {
		n = idx.free[k-1]
		idx.free = idx.free[:k-1]
		idx.nodes[n] = nd
	} else {
		n = int32(len(idx.nodes))
		idx.nodes = append(idx.nodes, nd)
	}
	idx.update(n)
	return n
}

// release returns a whole subtree to the free list.
func (idx *Index) release(n int32) {
	if n == nilNode {
		return
	}
	idx.release(idx.nodes[n].left)
	idx.release(idx.nodes[n].right)
	idx.free = append(idx.free, n)
}

// build creates a treap from lengths in linear time using the
// right-spine stack construction.
func (idx *Index) build(lengths []int) int32 {
	stack := make([]int32, 0, 32)
	for _, l := range lengths {
		n := idx.alloc(max(l, 0))
		last := nilNode
		for len(stack) > 0 && idx.nodes[stack[len(stack)-1]].priority < idx.nodes[n].priority {
			last = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			idx.update(last)
		}
		idx.nodes[n].left = last
		if len(stack) > 0 {
			idx.nodes[stack[len(stack)-1]].right = n
		}
		stack = append(stack, n)
	}
	for i := len(stack) - 1; i >= 0; i-- {
		idx.update(stack[i])
	}
	if len(stack) == 0 {
		return nilNode
	}
	return stack[0]
}

// split separates the first k lines of subtree n from the rest.
func (idx *Index) split(n int32, k int) (int32, int32) {
	if n == nilNode {
		return nilNode, nilNode
	}
	lc := idx.count(idx.nodes[n].left)
	if k <= lc {
		l, r := idx.split(idx.nodes[n].left, k)
		idx.nodes[n].left = r
		idx.update(n)
		return l, n
	}
	l, r := idx.split(idx.nodes[n].right, k-lc-1)
	idx.nodes[n].right = l
	idx.update(n)
	return n, r
}

// merge joins two subtrees where every line of a precedes every line of b.
func (idx *Index) merge(a, b int32) int32 {
	if a == nilNode {
		return b
	}
	if b == nilNode {
		return a
	}
	if idx.nodes[a].priority > idx.nodes[b].priority {
		idx.nodes[a].right = idx.merge(idx.nodes[a].right, b)
		idx.update(a)
		return a
	}
	idx.nodes[b].left = idx.merge(a, idx.nodes[b].left)
	idx.update(b)
	return b
}
