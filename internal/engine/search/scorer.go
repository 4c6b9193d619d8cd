package search

import "unicode"

// Scorer ranks a word that contains the query as a subsequence.
type Scorer interface {
	// Score returns the rank of a match; higher is better.
	//
	// queryRunes and textRunes are lower-cased; originalRunes keeps the
	// word's case for boundary detection. matches holds the index in the
	// word of each query character.
	Score(queryRunes, originalRunes, textRunes []rune, matches []int) int
}

// WeightedScorer scores matches with adjustable weights.
type WeightedScorer struct {
	// BaseScore is the starting score for any match.
	BaseScore int

	// ConsecutiveBonus is added for each match directly after another.
	ConsecutiveBonus int

	// WordBoundaryBonus is added for each match at a word boundary.
	WordBoundaryBonus int

	// PrefixBonus is added when the first match is the first character.
	PrefixBonus int

	// ExactPrefixBonus is added when the word starts with the query.
	ExactPrefixBonus int

	// GapPenalty is subtracted for each unmatched character between the
	// first and last match.
	GapPenalty int

	// LeadingPenalty is subtracted for each character before the first match.
	LeadingPenalty int

	// LengthBonusThreshold rewards words shorter than it by the difference.
	LengthBonusThreshold int
}

// DefaultWeights returns the default scoring weights.
func DefaultWeights() WeightedScorer {
	return WeightedScorer{
		BaseScore:            100,
		ConsecutiveBonus:     20,
		WordBoundaryBonus:    15,
		PrefixBonus:          25,
		ExactPrefixBonus:     50,
		GapPenalty:           2,
		LeadingPenalty:       1,
		LengthBonusThreshold: 20,
	}
}

// Score implements Scorer.
func (s WeightedScorer) Score(queryRunes, originalRunes, textRunes []rune, matches []int) int {
	if len(matches) == 0 {
		return 0
	}

	score := s.BaseScore
	for i := 1; i < len(matches); i++ {
		if matches[i] == matches[i-1]+1 {
			score += s.ConsecutiveBonus
		}
	}
	for _, idx := range matches {
		if isWordBoundary(originalRunes, idx) {
			score += s.WordBoundaryBonus
		}
	}
	if matches[0] == 0 {
		score += s.PrefixBonus
	}
	if len(matches) > 1 {
		if gap := matches[len(matches)-1] - matches[0] - len(matches) + 1; gap > 0 {
			score -= gap * s.GapPenalty
		}
	}
	score -= matches[0] * s.LeadingPenalty

	if n := len(textRunes); n < s.LengthBonusThreshold {
		score += s.LengthBonusThreshold - n
	}
	if hasPrefix(textRunes, queryRunes) {
		score += s.ExactPrefixBonus
	}

	return max(score, 1)
}

func hasPrefix(text, prefix []rune) bool {
	if len(text) < len(prefix) {
		return false
	}
	for i, r := range prefix {
		if text[i] != r {
			return false
		}
	}
	return true
}

// isWordBoundary reports whether the rune at idx starts a sub-word: the
// first rune, a rune after a separator, or an upper-case rune after a
// lower-case one.
func isWordBoundary(runes []rune, idx int) bool {
	if idx == 0 {
		return true
	}
	if idx >= len(runes) {
		return false
	}
	prev, curr := runes[idx-1], runes[idx]
	if unicode.IsSpace(prev) || unicode.IsPunct(prev) {
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(curr)
}
