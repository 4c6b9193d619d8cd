// Package buffer provides TextBuffer, the document type of the text
// engine.
//
// A TextBuffer keeps four structures in step:
//
//   - a rope holding the characters
//   - a line index mapping offsets to positions and back
//   - a patch recording every change since the base text
//   - any number of attached marker indexes
//
// Every edit goes through SetTextInRange, which records the change in the
// patch first and only then touches the other structures, so a change the
// patch rejects leaves the buffer untouched.
//
// Line endings are normalized to \n on the way in. The dominant ending of
// the loaded text is remembered and reported per row by LineEndingForRow
// and applied again by TextWithLineEndings.
//
// Basic usage:
//
//	buf := buffer.NewFromString("hello\nworld")
//	_ = buf.SetTextInRange(point.NewRange(point.New(1, 0), point.New(1, 5)), "there")
//	buf.IsModified() // true
//
//	markers := buf.AddMarkerIndex()
//	_, _ = buf.FindAndMarkAll(markers, nextID, false, search.Pattern{Source: "t\\w+"})
//
// Thread Safety:
//
// Accessors take a read lock and mutations a write lock. Snapshot returns
// an immutable view for readers on other goroutines.
package buffer
