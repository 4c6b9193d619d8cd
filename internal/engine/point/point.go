// Package point defines the row/column coordinates shared by the text
// engine components.
//
// Columns are counted in characters (Unicode code points), never bytes.
// The Infinity sentinel may appear in any coordinate and always clamps
// to the end of the document when resolved against a buffer.
package point

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// Infinity is the sentinel for an unbounded row or column.
const Infinity = math.MaxInt

// Point represents a row and column position.
// Both Row and Column are 0-indexed.
type Point struct {
	Row    int // 0-indexed row number
	Column int // 0-indexed column (characters within the row)
}

// Zero is the origin of every document.
var Zero = Point{}

// Max is the end-of-document sentinel {+∞, +∞}.
var Max = Point{Row: Infinity, Column: Infinity}

// New returns the point (row, column).
func New(row, column int) Point {
	return Point{Row: row, Column: column}
}

// String returns a human-readable representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("(%s:%s)", coord(p.Row), coord(p.Column))
}

func coord(v int) string {
	if v == Infinity {
		return "∞"
	}
	return fmt.Sprintf("%d", v)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Point) Compare(other Point) int {
	if p.Row < other.Row {
		return -1
	}
	if p.Row > other.Row {
		return 1
	}
	if p.Column < other.Column {
		return -1
	}
	if p.Column > other.Column {
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Point) Before(other Point) bool {
	return p.Compare(other) < 0
}

// After returns true if p comes after other.
func (p Point) After(other Point) bool {
	return p.Compare(other) > 0
}

// IsZero returns true if this is the zero point (0:0).
func (p Point) IsZero() bool {
	return p.Row == 0 && p.Column == 0
}

// IsInfinite reports whether either coordinate is the sentinel.
func (p Point) IsInfinite() bool {
	return p.Row == Infinity || p.Column == Infinity
}

// Min returns the lesser of two points.
func Min(a, b Point) Point {
	if a.Compare(b) <= 0 {
		return a
	}
	return b
}

// MaxOf returns the greater of two points.
func MaxOf(a, b Point) Point {
	if a.Compare(b) >= 0 {
		return a
	}
	return b
}

// Traverse moves from p by the given extent. An extent spanning rows
// replaces the column; a single-row extent adds to it.
func Traverse(p, extent Point) Point {
	if extent.Row == 0 {
		return Point{Row: p.Row, Column: addSat(p.Column, extent.Column)}
	}
	return Point{Row: addSat(p.Row, extent.Row), Column: extent.Column}
}

// Traversal returns the extent that leads from start to p.
// It is the inverse of Traverse: Traverse(start, Traversal(p, start)) == p.
func Traversal(p, start Point) Point {
	if p.Row == start.Row {
		return Point{Row: 0, Column: p.Column - start.Column}
	}
	return Point{Row: p.Row - start.Row, Column: p.Column}
}

func addSat(a, b int) int {
	if a == Infinity || b == Infinity || a > Infinity-b {
		return Infinity
	}
	return a + b
}

// ExtentOf returns the extent of text: the number of newlines it
// contains and the character count after the last one.
func ExtentOf(text string) Point {
	rows := strings.Count(text, "\n")
	if rows == 0 {
		return Point{Column: utf8.RuneCountInString(text)}
	}
	last := strings.LastIndexByte(text, '\n')
	return Point{Row: rows, Column: utf8.RuneCountInString(text[last+1:])}
}
