package point

import "fmt"

// Range represents a span between two points.
// Start is inclusive, End is exclusive: [Start, End).
type Range struct {
	Start Point
	End   Point
}

// DefaultRange spans the whole document, {(0,0), (∞,∞)}.
// Callers receive it by value, so it can never be mutated.
var DefaultRange = Range{Start: Zero, End: Max}

// NewRange creates a range, swapping the points if they are out of order.
func NewRange(start, end Point) Range {
	if end.Before(start) {
		start, end = end, start
	}
	return Range{Start: start, End: end}
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%s-%s)", r.Start, r.End)
}

// IsEmpty returns true if the range has zero length.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// IsValid returns true if Start <= End.
func (r Range) IsValid() bool {
	return !r.End.Before(r.Start)
}

// Extent returns the traversal from Start to End.
func (r Range) Extent() Point {
	return Traversal(r.End, r.Start)
}

// Contains returns true if p lies within [Start, End).
func (r Range) Contains(p Point) bool {
	return !p.Before(r.Start) && p.Before(r.End)
}

// ContainsRange returns true if other lies entirely within r.
func (r Range) ContainsRange(other Range) bool {
	return !other.Start.Before(r.Start) && !other.End.After(r.End)
}

// Intersects returns true if the closed ranges share at least one point.
func (r Range) Intersects(other Range) bool {
	return !r.Start.After(other.End) && !other.Start.After(r.End)
}
