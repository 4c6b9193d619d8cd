// Package engine provides the text buffer core for textcore.
//
// The engine package serves as the main facade. It turns a configuration
// into ready-to-use buffers and ties them to the file system, while the
// sub-packages hold the algorithms.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - point: Row/column coordinates, ranges and traversals
//   - rope: Balanced rope storing text as runes
//   - lineindex: Line-length table converting offsets and positions
//   - patch: Hunk sequences with splice, compose, invert and serialization
//   - marker: Interval index whose ranges follow edits
//   - diff: Line and character diffs producing patches
//   - search: ECMAScript regex search and word subsequence ranking
//   - buffer: The TextBuffer combining all of the above
//
// # Coordinates
//
// Positions are zero-based rows and columns. Columns and offsets count
// characters (Unicode code points), so a character outside the Basic
// Multilingual Plane occupies one column. Line endings are stored as a
// single newline; the ending read from a file is remembered and restored
// by TextWithLineEndings.
//
// # Basic Usage
//
//	e, err := engine.New(config.Default())
//	if err != nil {
//		return err
//	}
//	defer e.Close()
//
//	buf, _ := e.NewBuffer("hello world")
//	buf.SetTextInRange(engine.Range{
//		Start: engine.Point{Row: 0, Column: 0},
//		End:   engine.Point{Row: 0, Column: 5},
//	}, "goodbye")
//
//	m, _ := buf.Find(engine.Pattern{Source: `w\w+`})
//	// m.Range is 0,8 - 0,13
//
// # Loading Files
//
// Open reads a file in the configured encoding and remembers it; Reload
// brings an unmodified or tracked buffer up to date with disk:
//
//	buf, err := e.Open("notes.txt")
//	...
//	patch, err := e.Reload(buf, false)
//
// Follow keeps reloading a buffer whenever its file changes until the
// context is cancelled.
//
// # Thread Safety
//
// Buffer accessors are safe for concurrent use. Marker indexes are not
// synchronized on their own; they are updated under the owning buffer's
// lock during edits.
package engine
