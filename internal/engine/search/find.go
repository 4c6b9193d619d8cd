package search

import (
	"fmt"

	"github.com/dlclark/regexp2"

	"github.com/dshills/textcore/internal/engine/point"
)

// Document is the text a search runs over. Offsets count characters.
type Document interface {
	CharacterCount() int
	OffsetForPosition(p point.Point) int
	PositionForOffset(offset int) point.Point
	TextInOffsetRange(start, end int) string
}

// Match is one regex match.
type Match struct {
	Range       point.Range
	StartOffset int
	EndOffset   int
	Text        string
	Groups      []Group
}

// Group is a capture group of a Match. Group 0 is not included.
type Group struct {
	Name    string
	Text    string
	Range   point.Range
	Matched bool
}

// scan holds the document text and the offsets of a search range. The
// regex engine sees the whole text, so anchors, word boundaries and
// lookaround behave at the range edges as they do in the document. Only
// matches lying entirely within the range are reported.
type scan struct {
	doc        Document
	runes      []rune
	start, end int
}

func newScan(doc Document, rng point.Range) scan {
	start := doc.OffsetForPosition(rng.Start)
	end := doc.OffsetForPosition(rng.End)
	if start > end {
		start, end = end, start
	}
	return scan{
		doc:   doc,
		runes: []rune(doc.TextInOffsetRange(0, doc.CharacterCount())),
		start: start,
		end:   end,
	}
}

// first returns the first match at or after the range start.
func (s scan) first(re *Regex) (*regexp2.Match, error) {
	m, err := re.re.FindRunesMatchStartingAt(s.runes, s.start)
	return s.fit(re, m, err)
}

// fit returns m if it lies within the range. A match running past the range
// end is dropped and the search retried one character after its start, so a
// shorter match beginning later can still be found. It returns nil once
// matches start beyond the range.
func (s scan) fit(re *Regex, m *regexp2.Match, err error) (*regexp2.Match, error) {
	for m != nil && err == nil {
		if m.Index > s.end {
			return nil, nil
		}
		if m.Index+m.Length <= s.end {
			return m, nil
		}
		m, err = re.re.FindRunesMatchStartingAt(s.runes, m.Index+1)
	}
	return m, err
}

func (s scan) match(m *regexp2.Match) Match {
	out := Match{
		StartOffset: m.Index,
		EndOffset:   m.Index + m.Length,
		Text:        m.String(),
	}
	out.Range = s.offsetRange(out.StartOffset, out.EndOffset)

	groups := m.Groups()
	if len(groups) > 1 {
		out.Groups = make([]Group, 0, len(groups)-1)
		for _, g := range groups[1:] {
			grp := Group{Name: g.Name, Matched: len(g.Captures) > 0}
			if grp.Matched {
				grp.Text = g.String()
				grp.Range = s.offsetRange(g.Index, g.Index+g.Length)
			}
			out.Groups = append(out.Groups, grp)
		}
	}
	return out
}

func (s scan) offsetRange(start, end int) point.Range {
	return point.Range{Start: s.doc.PositionForOffset(start), End: s.doc.PositionForOffset(end)}
}

func wrapMatchErr(re *Regex, err error) error {
	return fmt.Errorf("search /%s/: %w: %v", re.pattern.Source, ErrMatchTimeout, err)
}

// Find returns the first match of re inside rng, or nil if there is none.
func Find(doc Document, re *Regex, rng point.Range) (*Match, error) {
	s := newScan(doc, rng)
	m, err := s.first(re)
	if err != nil {
		return nil, wrapMatchErr(re, err)
	}
	if m == nil {
		return nil, nil
	}
	out := s.match(m)
	return &out, nil
}

// FindAll returns every non-overlapping match of re inside rng in document
// order. After an empty match the scan resumes one character later.
func FindAll(doc Document, re *Regex, rng point.Range) ([]Match, error) {
	s := newScan(doc, rng)
	var out []Match
	m, err := s.first(re)
	for m != nil && err == nil {
		out = append(out, s.match(m))
		m, err = re.re.FindNextMatch(m)
		m, err = s.fit(re, m, err)
	}
	if err != nil {
		return nil, wrapMatchErr(re, err)
	}
	return out, nil
}
