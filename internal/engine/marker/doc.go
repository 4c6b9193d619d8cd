// Package marker tracks identified ranges over character offsets and
// keeps them consistent as the text they annotate is edited.
//
// # Structure
//
// Markers live in an arena-indexed treap ordered by (start, id). Each
// node records the largest end offset in its subtree, which bounds every
// interval query, and a pending shift that moves a whole subtree at once.
// A splice therefore touches only the markers whose boundaries fall in or
// before the edited span; everything after it moves in constant time.
//
// # Boundaries
//
// When a splice replaces [s, s+d) with i characters:
//
//   - boundaries before s do not move
//   - a boundary exactly at s stays put or moves past the insertion,
//     depending on exclusivity (a non-exclusive start stays at s and a
//     non-exclusive end moves to s+i, so the marker grows)
//   - boundaries inside the deleted span move to s+i
//   - boundaries after the span shift by i-d
//
// A marker fully inside a deletion collapses to an empty range; it is
// never removed implicitly. RemoveEmpty deletes such markers on request.
package marker
