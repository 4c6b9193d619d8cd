package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Span is a half-open range of rune indices.
type Span struct {
	Start int
	End   int
}

// Tokenizer splits text into words. extra lists characters that count as
// word characters in addition to letters, digits and underscore.
type Tokenizer interface {
	Words(text []rune, extra string) []Span
}

// ClassTokenizer treats maximal runs of word characters as words.
type ClassTokenizer struct{}

// Words implements Tokenizer.
func (ClassTokenizer) Words(text []rune, extra string) []Span {
	var spans []Span
	start := -1
	for i, r := range text {
		if isWordChar(r, extra) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			spans = append(spans, Span{Start: start, End: i})
			start = -1
		}
	}
	if start >= 0 {
		spans = append(spans, Span{Start: start, End: len(text)})
	}
	return spans
}

// SegmentTokenizer uses Unicode word segmentation (UAX #29). A segment is
// a word when its first character is a word character.
type SegmentTokenizer struct{}

// Words implements Tokenizer.
func (SegmentTokenizer) Words(text []rune, extra string) []Span {
	var spans []Span
	rest := string(text)
	state := -1
	pos := 0
	for rest != "" {
		var word string
		word, rest, state = uniseg.FirstWordInString(rest, state)
		n := utf8.RuneCountInString(word)
		if first, _ := utf8.DecodeRuneInString(word); isWordChar(first, extra) {
			spans = append(spans, Span{Start: pos, End: pos + n})
		}
		pos += n
	}
	return spans
}

func isWordChar(r rune, extra string) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) ||
		(extra != "" && strings.ContainsRune(extra, r))
}
