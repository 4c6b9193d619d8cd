package marker

import "slices"

// FindIntersecting returns markers that overlap or touch [start, end].
func (idx *Index) FindIntersecting(start, end int) []ID {
	start, end = order(start, end)
	var out []ID
	var visit func(n int32, acc int)
	visit = func(n int32, acc int) {
		if n == nilNode {
			return
		}
		nd := &idx.nodes[n]
		if nd.maxEnd+acc < start {
			return
		}
		visit(nd.left, acc+nd.shift)
		if nd.start+acc > end {
			return
		}
		if nd.end+acc >= start {
			out = append(out, nd.id)
		}
		visit(nd.right, acc+nd.shift)
	}
	visit(idx.root, 0)
	return sorted(out)
}

// FindContaining returns markers whose range covers [start, end].
func (idx *Index) FindContaining(start, end int) []ID {
	start, end = order(start, end)
	var out []ID
	var visit func(n int32, acc int)
	visit = func(n int32, acc int) {
		if n == nilNode {
			return
		}
		nd := &idx.nodes[n]
		if nd.maxEnd+acc < end {
			return
		}
		visit(nd.left, acc+nd.shift)
		if nd.start+acc > start {
			return
		}
		if nd.end+acc >= end {
			out = append(out, nd.id)
		}
		visit(nd.right, acc+nd.shift)
	}
	visit(idx.root, 0)
	return sorted(out)
}

// FindContainedIn returns markers that lie entirely within [start, end].
func (idx *Index) FindContainedIn(start, end int) []ID {
	start, end = order(start, end)
	var out []ID
	var visit func(n int32, acc int)
	visit = func(n int32, acc int) {
		if n == nilNode {
			return
		}
		nd := &idx.nodes[n]
		s := nd.start + acc
		if s >= start {
			visit(nd.left, acc+nd.shift)
		}
		if s > end {
			return
		}
		if s >= start && nd.end+acc <= end {
			out = append(out, nd.id)
		}
		visit(nd.right, acc+nd.shift)
	}
	visit(idx.root, 0)
	return sorted(out)
}

// FindStartingIn returns markers whose start lies in [start, end].
func (idx *Index) FindStartingIn(start, end int) []ID {
	start, end = order(start, end)
	var out []ID
	var visit func(n int32, acc int)
	visit = func(n int32, acc int) {
		if n == nilNode {
			return
		}
		nd := &idx.nodes[n]
		s := nd.start + acc
		if s >= start {
			visit(nd.left, acc+nd.shift)
		}
		if s > end {
			return
		}
		if s >= start {
			out = append(out, nd.id)
		}
		visit(nd.right, acc+nd.shift)
	}
	visit(idx.root, 0)
	return sorted(out)
}

// FindEndingIn returns markers whose end lies in [start, end].
func (idx *Index) FindEndingIn(start, end int) []ID {
	start, end = order(start, end)
	var out []ID
	var visit func(n int32, acc int)
	visit = func(n int32, acc int) {
		if n == nilNode {
			return
		}
		nd := &idx.nodes[n]
		if nd.maxEnd+acc < start {
			return
		}
		visit(nd.left, acc+nd.shift)
		if nd.start+acc > end {
			return
		}
		if e := nd.end + acc; e >= start && e <= end {
			out = append(out, nd.id)
		}
		visit(nd.right, acc+nd.shift)
	}
	visit(idx.root, 0)
	return sorted(out)
}

// FindStartingAt returns markers that start at offset.
func (idx *Index) FindStartingAt(offset int) []ID {
	return idx.FindStartingIn(offset, offset)
}

// FindEndingAt returns markers that end at offset.
func (idx *Index) FindEndingAt(offset int) []ID {
	return idx.FindEndingIn(offset, offset)
}

func order(start, end int) (int, int) {
	if start > end {
		return end, start
	}
	return start, end
}

func sorted(ids []ID) []ID {
	slices.Sort(ids)
	return ids
}
