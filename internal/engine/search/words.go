package search

import (
	"cmp"
	"slices"
	"unicode"

	"github.com/dshills/textcore/internal/engine/point"
)

// SubsequenceMatch is a distinct word containing the query as a
// case-insensitive subsequence.
type SubsequenceMatch struct {
	Word string
	// Positions holds the start of every occurrence of Word, in order.
	Positions []point.Point
	// MatchIndices holds the index in Word of each query character.
	MatchIndices []int
	Score        int
}

type wordOptions struct {
	scorer    Scorer
	tokenizer Tokenizer
}

// WordOption configures FindWordsWithSubsequence.
type WordOption func(*wordOptions)

// WithScorer overrides the default WeightedScorer.
func WithScorer(s Scorer) WordOption {
	return func(o *wordOptions) {
		if s != nil {
			o.scorer = s
		}
	}
}

// WithTokenizer overrides the default ClassTokenizer.
func WithTokenizer(t Tokenizer) WordOption {
	return func(o *wordOptions) {
		if t != nil {
			o.tokenizer = t
		}
	}
}

// FindWordsWithSubsequence returns the distinct words inside rng that
// contain query as a case-insensitive subsequence, best score first and
// ties broken by word. At most maxCount results are returned; a
// negative maxCount means no limit.
func FindWordsWithSubsequence(doc Document, query, extraWordChars string, maxCount int, rng point.Range, opts ...WordOption) []SubsequenceMatch {
	o := wordOptions{scorer: DefaultWeights(), tokenizer: ClassTokenizer{}}
	for _, opt := range opts {
		opt(&o)
	}

	start := doc.OffsetForPosition(rng.Start)
	end := doc.OffsetForPosition(rng.End)
	if start > end {
		start, end = end, start
	}
	text := []rune(doc.TextInOffsetRange(start, end))
	queryRunes := lower([]rune(query))

	byWord := make(map[string]*SubsequenceMatch)
	var results []*SubsequenceMatch
	for _, span := range o.tokenizer.Words(text, extraWordChars) {
		original := text[span.Start:span.End]
		word := string(original)
		if m, ok := byWord[word]; ok {
			m.Positions = append(m.Positions, doc.PositionForOffset(start+span.Start))
			continue
		}

		folded := lower(original)
		indices, ok := subsequence(queryRunes, folded)
		if !ok {
			continue
		}
		m := &SubsequenceMatch{
			Word:         word,
			Positions:    []point.Point{doc.PositionForOffset(start + span.Start)},
			MatchIndices: indices,
			Score:        o.scorer.Score(queryRunes, original, folded, indices),
		}
		byWord[word] = m
		results = append(results, m)
	}

	slices.SortFunc(results, func(a, b *SubsequenceMatch) int {
		if a.Score != b.Score {
			return cmp.Compare(b.Score, a.Score)
		}
		return cmp.Compare(a.Word, b.Word)
	})
	if maxCount >= 0 && len(results) > maxCount {
		results = results[:maxCount]
	}

	out := make([]SubsequenceMatch, len(results))
	for i, m := range results {
		out[i] = *m
	}
	return out
}

// subsequence greedily matches query left to right inside text.
func subsequence(query, text []rune) ([]int, bool) {
	indices := make([]int, 0, len(query))
	qi := 0
	for i := 0; i < len(text) && qi < len(query); i++ {
		if text[i] == query[qi] {
			indices = append(indices, i)
			qi++
		}
	}
	return indices, qi == len(query)
}

// lower folds each rune independently so indices stay aligned with the
// input.
func lower(runes []rune) []rune {
	out := make([]rune, len(runes))
	for i, r := range runes {
		out[i] = unicode.ToLower(r)
	}
	return out
}
