package diff

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Kind classifies an Op.
type Kind uint8

const (
	// Equal marks elements present in both sequences.
	Equal Kind = iota
	// Insert marks elements only in the new sequence.
	Insert
	// Delete marks elements only in the old sequence.
	Delete
	// Replace marks old elements replaced by new ones.
	Replace
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case Equal:
		return "equal"
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	case Replace:
		return "replace"
	default:
		return "unknown"
	}
}

// Op describes how old[OldStart:OldEnd] relates to new[NewStart:NewEnd].
type Op struct {
	Kind     Kind
	OldStart int
	OldEnd   int
	NewStart int
	NewEnd   int
}

// Lines compares two sequences of lines and returns the ops covering both
// entirely, in order.
func Lines(oldLines, newLines []string) []Op {
	m := difflib.NewMatcherWithJunk(oldLines, newLines, false, nil)
	codes := m.GetOpCodes()
	ops := make([]Op, 0, len(codes))
	for _, c := range codes {
		ops = append(ops, Op{
			Kind:     kindOf(c.Tag),
			OldStart: c.I1,
			OldEnd:   c.I2,
			NewStart: c.J1,
			NewEnd:   c.J2,
		})
	}
	return ops
}

func kindOf(tag byte) Kind {
	switch tag {
	case 'i':
		return Insert
	case 'd':
		return Delete
	case 'r':
		return Replace
	default:
		return Equal
	}
}

// SplitLines splits text after each newline. The final element holds the
// text after the last newline and may be empty, so joining the result
// reproduces text exactly.
func SplitLines(text string) []string {
	return strings.SplitAfter(text, "\n")
}

// Unified renders the line diff of two texts in unified format with the
// given number of context lines. It returns "" when the texts are equal.
func Unified(oldName, newName, oldText, newText string, context int) (string, error) {
	if oldText == newText {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldText),
		B:        difflib.SplitLines(newText),
		FromFile: oldName,
		ToFile:   newName,
		Context:  context,
	})
}
