// Package rope provides an immutable rope data structure indexed by
// character (Unicode code point) offsets.
//
// A rope is a tree where leaf nodes contain text chunks and internal nodes
// store aggregated metrics (byte, character, and newline counts). This
// implementation uses a B+ tree variant for better cache locality and
// worst-case performance.
//
// Key features:
//   - O(log n) insertion, deletion, and character access
//   - Immutable operations return new ropes; originals are never modified
//   - Offsets are characters, so callers never deal with UTF-8 boundaries
//
// Basic usage:
//
//	r := rope.FromString("héllo world")
//	r = r.Insert(5, ",")           // "héllo, world"
//	r = r.Delete(0, 7)             // "world"
//	text := r.String()             // "world"
package rope
