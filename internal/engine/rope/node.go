package rope

import "strings"

// Tree structure constants
const (
	// MinChildren is the minimum children per internal node (except root).
	MinChildren = 4

	// MaxChildren is the maximum children per internal node before splitting.
	MaxChildren = 8

	// MaxChunksPerLeaf is the maximum chunks in a leaf node.
	MaxChunksPerLeaf = 4
)

// node is a node in the rope B+ tree.
// Leaf nodes (height == 0) hold text chunks; internal nodes hold children.
type node struct {
	height  uint8
	summary TextSummary

	children []*node
	chunks   []Chunk
}

func newLeaf(chunks []Chunk) *node {
	n := &node{chunks: chunks}
	for _, c := range chunks {
		n.summary = n.summary.Add(c.summary)
	}
	return n
}

func newInternal(children []*node) *node {
	if len(children) == 0 {
		return newLeaf(nil)
	}
	n := &node{height: children[0].height + 1, children: children}
	for _, c := range children {
		n.summary = n.summary.Add(c.summary)
	}
	return n
}

func (n *node) isLeaf() bool {
	return n.height == 0
}

// chars returns the character length of the subtree.
func (n *node) chars() int {
	return n.summary.Chars
}

func (n *node) appendTo(sb *strings.Builder) {
	if n.isLeaf() {
		for _, c := range n.chunks {
			sb.WriteString(c.data)
		}
		return
	}
	for _, child := range n.children {
		child.appendTo(sb)
	}
}

// appendRange appends the characters in [start, end) to the builder.
func (n *node) appendRange(sb *strings.Builder, start, end int) {
	if start >= end {
		return
	}
	offset := 0
	if n.isLeaf() {
		for _, c := range n.chunks {
			cEnd := offset + c.Chars()
			if cEnd > start && offset < end {
				sb.WriteString(c.slice(max(start-offset, 0), min(end, cEnd)-offset))
			}
			if cEnd >= end {
				break
			}
			offset = cEnd
		}
		return
	}
	for _, child := range n.children {
		cEnd := offset + child.chars()
		if cEnd > start && offset < end {
			child.appendRange(sb, max(start-offset, 0), min(end, cEnd)-offset)
		}
		if cEnd >= end {
			break
		}
		offset = cEnd
	}
}

// charAt returns the character at offset, which must be in range.
func (n *node) charAt(offset int) rune {
	for !n.isLeaf() {
		for _, child := range n.children {
			if offset < child.chars() {
				n = child
				break
			}
			offset -= child.chars()
		}
	}
	for _, c := range n.chunks {
		if offset < c.Chars() {
			return c.charAt(offset)
		}
		offset -= c.Chars()
	}
	return 0
}

// split splits the node at a character offset.
// The left node holds [0, offset), the right [offset, end).
func (n *node) split(offset int) (*node, *node) {
	if offset <= 0 {
		return newLeaf(nil), n
	}
	if offset >= n.chars() {
		return n, newLeaf(nil)
	}
	if n.isLeaf() {
		return n.splitLeaf(offset)
	}
	return n.splitInternal(offset)
}

func (n *node) splitLeaf(offset int) (*node, *node) {
	var left, right []Chunk
	pos := 0
	for _, c := range n.chunks {
		switch {
		case pos+c.Chars() <= offset:
			left = append(left, c)
		case pos >= offset:
			right = append(right, c)
		default:
			l, r := c.Split(offset - pos)
			left = append(left, l)
			right = append(right, r)
		}
		pos += c.Chars()
	}
	return newLeaf(left), newLeaf(right)
}

func (n *node) splitInternal(offset int) (*node, *node) {
	var left, right []*node
	pos := 0
	for _, child := range n.children {
		switch {
		case pos+child.chars() <= offset:
			left = append(left, child)
		case pos >= offset:
			right = append(right, child)
		default:
			l, r := child.split(offset - pos)
			if l.chars() > 0 {
				left = append(left, l)
			}
			if r.chars() > 0 {
				right = append(right, r)
			}
		}
		pos += child.chars()
	}
	return buildFromChildren(left), buildFromChildren(right)
}

// buildFromChildren creates a balanced tree from nodes of mixed height.
func buildFromChildren(children []*node) *node {
	switch len(children) {
	case 0:
		return newLeaf(nil)
	case 1:
		return children[0]
	}
	height := children[0].height
	for _, c := range children[1:] {
		height = max(height, c.height)
	}
	for i, c := range children {
		for c.height < height {
			c = newInternal([]*node{c})
		}
		children[i] = c
	}
	if len(children) <= MaxChildren {
		return newInternal(children)
	}
	var parents []*node
	for i := 0; i < len(children); i += MaxChildren {
		end := min(i+MaxChildren, len(children))
		parents = append(parents, newInternal(children[i:end:end]))
	}
	return buildFromChildren(parents)
}

// concat concatenates two nodes.
func concat(left, right *node) *node {
	if left == nil || left.chars() == 0 {
		if right == nil {
			return newLeaf(nil)
		}
		return right
	}
	if right == nil || right.chars() == 0 {
		return left
	}
	if left.isLeaf() && right.isLeaf() {
		if len(left.chunks)+len(right.chunks) <= MaxChunksPerLeaf {
			chunks := make([]Chunk, 0, len(left.chunks)+len(right.chunks))
			chunks = append(chunks, left.chunks...)
			chunks = append(chunks, right.chunks...)
			return newLeaf(chunks)
		}
		return newInternal([]*node{left, right})
	}

	for left.height < right.height {
		left = newInternal([]*node{left})
	}
	for right.height < left.height {
		right = newInternal([]*node{right})
	}
	all := make([]*node, 0, len(left.children)+len(right.children))
	all = append(all, left.children...)
	all = append(all, right.children...)
	return buildFromChildren(all)
}
