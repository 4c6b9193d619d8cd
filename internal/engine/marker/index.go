package marker

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// ID identifies a marker. IDs are chosen by the caller.
type ID uint32

// Options controls how a marker reacts to edits at its boundaries.
type Options struct {
	// ExclusiveStart keeps text inserted at the start out of the marker.
	ExclusiveStart bool
	// ExclusiveEnd keeps text inserted at the end out of the marker.
	ExclusiveEnd bool
}

// Exclusive returns options with both boundaries exclusive.
func Exclusive() Options {
	return Options{ExclusiveStart: true, ExclusiveEnd: true}
}

// Range is a span of character offsets.
type Range struct {
	Start int
	End   int
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%d:%d]", r.Start, r.End)
}

// IsEmpty returns true if the range has zero length.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

const nilNode int32 = -1

type node struct {
	left, right, parent int32
	priority            uint32

	id         ID
	start, end int
	maxEnd     int
	shift      int // pending for both children; already applied to this node
	opts       Options
}

// Index owns the markers of one buffer.
type Index struct {
	nodes []node
	free  []int32
	root  int32
	byID  map[ID]int32
}

// New creates an empty marker index.
func New() *Index {
	return &Index{root: nilNode, byID: make(map[ID]int32)}
}

// Len returns the number of markers.
func (idx *Index) Len() int {
	return len(idx.byID)
}

// Has reports whether id names a marker.
func (idx *Index) Has(id ID) bool {
	_, ok := idx.byID[id]
	return ok
}

// Insert adds a marker. Reversed bounds are swapped.
func (idx *Index) Insert(id ID, start, end int, opts Options) error {
	if _, ok := idx.byID[id]; ok {
		return fmt.Errorf("insert %d: %w", id, ErrDuplicateMarkerID)
	}
	if start > end {
		start, end = end, start
	}
	if start < 0 {
		return fmt.Errorf("insert %d [%d:%d]: %w", id, start, end, ErrInvalidRange)
	}

	n := idx.alloc()
	nd := &idx.nodes[n]
	nd.id, nd.start, nd.end, nd.maxEnd, nd.opts = id, start, end, end, opts
	idx.byID[id] = n
	idx.root = idx.insertNode(idx.root, n)
	idx.nodes[idx.root].parent = nilNode
	return nil
}

// Delete removes a marker.
func (idx *Index) Delete(id ID) error {
	n, ok := idx.byID[id]
	if !ok {
		return fmt.Errorf("delete %d: %w", id, ErrUnknownMarkerID)
	}
	start := idx.actual(n).Start

	left, rest := idx.split(idx.root, func(nd *node) bool {
		return keyLess(nd.start, nd.id, start, id)
	})
	target, right := idx.split(rest, func(nd *node) bool {
		return nd.start == start && nd.id == id
	})
	if target != n {
		// The tree disagrees with the id table; put everything back.
		idx.root = idx.merge(idx.merge(left, target), right)
		return fmt.Errorf("delete %d: %w", id, ErrUnknownMarkerID)
	}
	idx.root = idx.merge(left, right)
	if idx.root != nilNode {
		idx.nodes[idx.root].parent = nilNode
	}
	delete(idx.byID, id)
	idx.free = append(idx.free, n)
	return nil
}

// Range returns the current range of a marker.
func (idx *Index) Range(id ID) (Range, error) {
	n, ok := idx.byID[id]
	if !ok {
		return Range{}, fmt.Errorf("range %d: %w", id, ErrUnknownMarkerID)
	}
	return idx.actual(n), nil
}

// Options returns the boundary options of a marker.
func (idx *Index) Options(id ID) (Options, error) {
	n, ok := idx.byID[id]
	if !ok {
		return Options{}, fmt.Errorf("options %d: %w", id, ErrUnknownMarkerID)
	}
	return idx.nodes[n].opts, nil
}

// IsExclusive reports whether both boundaries of a marker are exclusive.
func (idx *Index) IsExclusive(id ID) bool {
	n, ok := idx.byID[id]
	return ok && idx.nodes[n].opts == Exclusive()
}

// SetExclusive sets both boundaries of a marker.
func (idx *Index) SetExclusive(id ID, exclusive bool) error {
	n, ok := idx.byID[id]
	if !ok {
		return fmt.Errorf("set exclusive %d: %w", id, ErrUnknownMarkerID)
	}
	idx.nodes[n].opts = Options{ExclusiveStart: exclusive, ExclusiveEnd: exclusive}
	return nil
}

// Dump returns every marker's range keyed by id.
func (idx *Index) Dump() map[ID]Range {
	out := make(map[ID]Range, len(idx.byID))
	idx.walk(idx.root, 0, func(nd *node, r Range) {
		out[nd.id] = r
	})
	return out
}

// RemoveEmpty deletes every zero-length marker and returns their ids in
// ascending order.
func (idx *Index) RemoveEmpty() []ID {
	var ids []ID
	idx.walk(idx.root, 0, func(nd *node, r Range) {
		if r.IsEmpty() {
			ids = append(ids, nd.id)
		}
	})
	slices.Sort(ids)
	for _, id := range ids {
		_ = idx.Delete(id)
	}
	return ids
}

// actual resolves the true range of node n by adding the pending shifts
// of its ancestors.
func (idx *Index) actual(n int32) Range {
	nd := &idx.nodes[n]
	r := Range{Start: nd.start, End: nd.end}
	for p := nd.parent; p != nilNode; p = idx.nodes[p].parent {
		r.Start += idx.nodes[p].shift
		r.End += idx.nodes[p].shift
	}
	return r
}

// walk visits every node in key order with its true range.
func (idx *Index) walk(n int32, acc int, fn func(nd *node, r Range)) {
	if n == nilNode {
		return
	}
	nd := &idx.nodes[n]
	idx.walk(nd.left, acc+nd.shift, fn)
	fn(nd, Range{Start: nd.start + acc, End: nd.end + acc})
	idx.walk(nd.right, acc+nd.shift, fn)
}

func keyLess(start int, id ID, otherStart int, otherID ID) bool {
	if start != otherStart {
		return start < otherStart
	}
	return id < otherID
}

func (idx *Index) alloc() int32 {
	nd := node{left: nilNode, right: nilNode, parent: nilNode, priority: rand.Uint32()}
	if k := len(idx.free); k > 0 {
		n := idx.free[k-1]
		idx.free = idx.free[:k-1]
		idx.nodes[n] = nd
		return n
	}
	idx.nodes = append(idx.nodes, nd)
	return int32(len(idx.nodes) - 1)
}

// applyShift moves a whole subtree by delta.
func (idx *Index) applyShift(n int32, delta int) {
	if n == nilNode || delta == 0 {
		return
	}
	nd := &idx.nodes[n]
	nd.start += delta
	nd.end += delta
	nd.maxEnd += delta
	nd.shift += delta
}

// push hands a node's pending shift down to its children.
func (idx *Index) push(n int32) {
	nd := &idx.nodes[n]
	if nd.shift == 0 {
		return
	}
	idx.applyShift(nd.left, nd.shift)
	idx.applyShift(nd.right, nd.shift)
	nd.shift = 0
}

// update recomputes aggregates and re-links children to n.
func (idx *Index) update(n int32) {
	nd := &idx.nodes[n]
	nd.maxEnd = nd.end
	for _, c := range [2]int32{nd.left, nd.right} {
		if c == nilNode {
			continue
		}
		idx.nodes[c].parent = n
		nd.maxEnd = max(nd.maxEnd, idx.nodes[c].maxEnd)
	}
}

// split separates subtree n into the nodes for which goesLeft is true and
// the rest. goesLeft must be monotone in key order.
func (idx *Index) split(n int32, goesLeft func(*node) bool) (int32, int32) {
	if n == nilNode {
		return nilNode, nilNode
	}
	idx.push(n)
	if goesLeft(&idx.nodes[n]) {
		l, r := idx.split(idx.nodes[n].right, goesLeft)
		idx.nodes[n].right = l
		idx.update(n)
		return n, r
	}
	l, r := idx.split(idx.nodes[n].left, goesLeft)
	idx.nodes[n].left = r
	idx.update(n)
	return l, n
}

// merge joins two subtrees where every key of a precedes every key of b.
func (idx *Index) merge(a, b int32) int32 {
	if a == nilNode {
		return b
	}
	if b == nilNode {
		return a
	}
	if idx.nodes[a].priority > idx.nodes[b].priority {
		idx.push(a)
		idx.nodes[a].right = idx.merge(idx.nodes[a].right, b)
		idx.update(a)
		return a
	}
	idx.push(b)
	idx.nodes[b].left = idx.merge(a, idx.nodes[b].left)
	idx.update(b)
	return b
}

// insertNode places the detached node n into subtree root.
func (idx *Index) insertNode(root, n int32) int32 {
	nd := idx.nodes[n]
	left, right := idx.split(root, func(other *node) bool {
		return keyLess(other.start, other.id, nd.start, nd.id)
	})
	return idx.merge(idx.merge(left, n), right)
}
