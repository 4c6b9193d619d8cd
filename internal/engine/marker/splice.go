package marker

// Splice updates every marker for an edit that replaced deleted characters
// at start with inserted characters.
func (idx *Index) Splice(start, deleted, inserted int) {
	if idx.root == nilNode || (deleted == 0 && inserted == 0) {
		return
	}
	if start < 0 {
		start = 0
	}
	deleted = max(deleted, 0)
	inserted = max(inserted, 0)
	m := mover{start: start, end: start + deleted, inserted: inserted, delta: inserted - deleted}

	before, rest := idx.split(idx.root, func(nd *node) bool { return nd.start < m.start })
	inside, after := idx.split(rest, func(nd *node) bool { return nd.start <= m.end })

	idx.moveEnds(before, m)
	idx.applyShift(after, m.delta)

	var moved []int32
	idx.collect(inside, &moved)
	var rebuilt int32 = nilNode
	for _, n := range moved {
		nd := &idx.nodes[n]
		s := m.moveStart(nd.start, nd.opts.ExclusiveStart)
		e := m.moveEnd(nd.end, nd.opts.ExclusiveEnd)
		nd.start, nd.end, nd.maxEnd = s, max(e, s), max(e, s)
		nd.left, nd.right, nd.parent, nd.shift = nilNode, nilNode, nilNode, 0
		rebuilt = idx.insertNode(rebuilt, n)
	}

	idx.root = idx.merge(idx.merge(before, rebuilt), after)
	if idx.root != nilNode {
		idx.nodes[idx.root].parent = nilNode
	}
}

type mover struct {
	start, end int
	inserted   int
	delta      int
}

func (m mover) moveStart(b int, exclusive bool) int {
	switch {
	case b < m.start:
		return b
	case b == m.start:
		if exclusive {
			return m.start + m.inserted
		}
		return m.start
	case b <= m.end:
		return m.start + m.inserted
	default:
		return b + m.delta
	}
}

func (m mover) moveEnd(b int, exclusive bool) int {
	switch {
	case b < m.start:
		return b
	case b == m.start:
		if exclusive {
			return m.start
		}
		return m.start + m.inserted
	case b <= m.end:
		return m.start + m.inserted
	default:
		return b + m.delta
	}
}

// moveEnds rewrites the ends of markers that start before the edit. Their
// keys do not change, so the tree shape is kept and only aggregates are
// refreshed. Subtrees whose max end precedes the edit are skipped.
func (idx *Index) moveEnds(n int32, m mover) {
	if n == nilNode || idx.nodes[n].maxEnd < m.start {
		return
	}
	idx.push(n)
	nd := &idx.nodes[n]
	if nd.end >= m.start {
		nd.end = max(m.moveEnd(nd.end, nd.opts.ExclusiveEnd), nd.start)
	}
	idx.moveEnds(nd.left, m)
	idx.moveEnds(nd.right, m)
	idx.update(n)
}

// collect detaches subtree n into a list of nodes in key order with all
// pending shifts resolved.
func (idx *Index) collect(n int32, out *[]int32) {
	if n == nilNode {
		return
	}
	idx.push(n)
	idx.collect(idx.nodes[n].left, out)
	*out = append(*out, n)
	idx.collect(idx.nodes[n].right, out)
}
