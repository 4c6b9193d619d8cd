// Package lineindex maps rows to line lengths and converts between
// character offsets and row/column positions.
//
// The index is an implicit treap stored in an arena: nodes live in a
// slice and reference each other by int32 index, freed nodes are
// recycled through a free list. Every node carries the length of one
// line (terminator excluded) and subtree aggregates, so offset and
// position lookups descend a single root-to-leaf path.
//
// All conversions clamp instead of failing:
//
//	idx := lineindex.NewFromLengths([]int{2, 2, 2}) // "ab\ncd\nef"
//	idx.PositionForOffset(3)                        // (1:0)
//	idx.OffsetForPosition(point.Max)                // 8
package lineindex
