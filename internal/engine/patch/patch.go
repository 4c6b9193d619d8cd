package patch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/textcore/internal/engine/point"
)

// Patch is an ordered sequence of non-overlapping hunks describing a
// transformation from an old coordinate space to a new one.
//
// Hunks are kept sorted by position and never touch each other in the
// new space: a splice that reaches an existing hunk is merged into it.
// Lookups use binary search; a splice rewrites the positions of the
// hunks that follow it.
type Patch struct {
	hunks []Hunk
}

// New creates an empty patch.
func New() *Patch {
	return &Patch{}
}

// Hunks returns a copy of the hunks in order.
func (p *Patch) Hunks() []Hunk {
	out := make([]Hunk, len(p.hunks))
	copy(out, p.hunks)
	return out
}

// ChangeCount returns the number of hunks.
func (p *Patch) ChangeCount() int {
	return len(p.hunks)
}

// Clone returns an independent copy of the patch.
func (p *Patch) Clone() *Patch {
	return &Patch{hunks: p.Hunks()}
}

// Equal reports whether two patches have identical hunks.
func (p *Patch) Equal(other *Patch) bool {
	if len(p.hunks) != len(other.hunks) {
		return false
	}
	for i := range p.hunks {
		if !p.hunks[i].Equal(other.hunks[i]) {
			return false
		}
	}
	return true
}

// Invert returns the patch mapping the new space back to the old one.
func (p *Patch) Invert() *Patch {
	out := &Patch{hunks: make([]Hunk, len(p.hunks))}
	for i, h := range p.hunks {
		out.hunks[i] = Hunk{
			OldStart: h.NewStart,
			OldEnd:   h.NewEnd,
			NewStart: h.OldStart,
			NewEnd:   h.OldEnd,
			OldText:  h.NewText,
			NewText:  h.OldText,
		}
	}
	return out
}

// HunksInNewRange returns the hunks whose new range touches [start, end].
func (p *Patch) HunksInNewRange(start, end point.Point) []Hunk {
	lo := sort.Search(len(p.hunks), func(i int) bool {
		return !p.hunks[i].NewEnd.Before(start)
	})
	var out []Hunk
	for i := lo; i < len(p.hunks) && !p.hunks[i].NewStart.After(end); i++ {
		out = append(out, p.hunks[i])
	}
	return out
}

// Splice records an edit expressed in the patch's new coordinate space:
// the region of deletionExtent starting at start is replaced by a region
// of insertionExtent. The texts are optional.
//
// Hunks touching the edited region are merged with it. If a provided text
// disagrees with its extent, or the deleted text contradicts the recorded
// text of a hunk it overlaps, ErrPatchInapplicable is returned and the
// patch is left unchanged.
func (p *Patch) Splice(start, deletionExtent, insertionExtent point.Point, deletedText, insertedText *string) error {
	if deletedText != nil && point.ExtentOf(*deletedText) != deletionExtent {
		return fmt.Errorf("%w: deleted text does not span %s", ErrPatchInapplicable, deletionExtent)
	}
	if insertedText != nil && point.ExtentOf(*insertedText) != insertionExtent {
		return fmt.Errorf("%w: inserted text does not span %s", ErrPatchInapplicable, insertionExtent)
	}
	if deletionExtent.IsZero() && insertionExtent.IsZero() {
		return nil
	}

	end := point.Traverse(start, deletionExtent)
	newEnd := point.Traverse(start, insertionExtent)

	lo := sort.Search(len(p.hunks), func(i int) bool {
		return !p.hunks[i].NewEnd.Before(start)
	})
	hi := lo
	for hi < len(p.hunks) && !p.hunks[hi].NewStart.After(end) {
		hi++
	}

	var merged Hunk
	if lo == hi {
		oldStart := p.toOld(start, lo)
		merged = Hunk{
			OldStart: oldStart,
			OldEnd:   point.Traverse(oldStart, deletionExtent),
			NewStart: start,
			NewEnd:   newEnd,
			OldText:  deletedText,
			NewText:  insertedText,
		}
	} else {
		var err error
		merged, err = p.merge(lo, hi, start, end, newEnd, deletedText, insertedText)
		if err != nil {
			return err
		}
	}

	next := make([]Hunk, 0, len(p.hunks)+1)
	next = append(next, p.hunks[:lo]...)
	if !merged.IsNoop() {
		next = append(next, merged)
	}
	for _, h := range p.hunks[hi:] {
		h.NewStart = point.Traverse(newEnd, point.Traversal(h.NewStart, end))
		h.NewEnd = point.Traverse(newEnd, point.Traversal(h.NewEnd, end))
		next = append(next, h)
	}
	p.hunks = next
	return nil
}

// toOld maps a new-space position lying in the unchanged region before
// hunk i into the old space.
func (p *Patch) toOld(pos point.Point, i int) point.Point {
	if i == 0 {
		return pos
	}
	prev := p.hunks[i-1]
	return point.Traverse(prev.OldEnd, point.Traversal(pos, prev.NewEnd))
}

// merge folds hunks [lo, hi) and the edit [start, end) -> [start, newEnd)
// into one hunk without modifying the patch.
func (p *Patch) merge(lo, hi int, start, end, newEnd point.Point, deletedText, insertedText *string) (Hunk, error) {
	first, last := p.hunks[lo], p.hunks[hi-1]

	if deletedText != nil {
		for _, h := range p.hunks[lo:hi] {
			if h.NewText == nil {
				continue
			}
			from := point.MaxOf(start, h.NewStart)
			to := point.Min(end, h.NewEnd)
			if to.Before(from) {
				continue
			}
			got, ok1 := sliceText(*deletedText, start, from, to)
			want, ok2 := sliceText(*h.NewText, h.NewStart, from, to)
			if !ok1 || !ok2 || got != want {
				return Hunk{}, fmt.Errorf("%w: deleted text contradicts %s", ErrPatchInapplicable, h)
			}
		}
	}

	merged := Hunk{
		OldStart: first.OldStart,
		OldEnd:   last.OldEnd,
		NewStart: point.Min(start, first.NewStart),
	}
	if start.Before(first.NewStart) {
		merged.OldStart = p.toOld(start, lo)
	}
	if end.After(last.NewEnd) {
		merged.OldEnd = point.Traverse(last.OldEnd, point.Traversal(end, last.NewEnd))
		merged.NewEnd = newEnd
	} else {
		merged.NewEnd = point.Traverse(newEnd, point.Traversal(last.NewEnd, end))
	}

	merged.NewText = mergeNewText(first, last, start, end, insertedText)
	merged.OldText = p.mergeOldText(lo, hi, start, end, deletedText)
	return merged, nil
}

func mergeNewText(first, last Hunk, start, end point.Point, insertedText *string) *string {
	if insertedText == nil {
		return nil
	}
	var sb strings.Builder
	if first.NewStart.Before(start) {
		if first.NewText == nil {
			return nil
		}
		prefix, ok := sliceText(*first.NewText, first.NewStart, first.NewStart, start)
		if !ok {
			return nil
		}
		sb.WriteString(prefix)
	}
	sb.WriteString(*insertedText)
	if end.Before(last.NewEnd) {
		if last.NewText == nil {
			return nil
		}
		suffix, ok := sliceText(*last.NewText, last.NewStart, end, last.NewEnd)
		if !ok {
			return nil
		}
		sb.WriteString(suffix)
	}
	return textPtr(sb.String())
}

// mergeOldText rebuilds the old text of a merged region from the hunks'
// old texts and the deleted text covering the gaps between them.
func (p *Patch) mergeOldText(lo, hi int, start, end point.Point, deletedText *string) *string {
	var sb strings.Builder
	gap := func(from, to point.Point) bool {
		if !from.Before(to) {
			return true
		}
		if deletedText == nil {
			return false
		}
		s, ok := sliceText(*deletedText, start, from, to)
		if !ok {
			return false
		}
		sb.WriteString(s)
		return true
	}

	if !gap(start, p.hunks[lo].NewStart) {
		return nil
	}
	for i := lo; i < hi; i++ {
		h := p.hunks[i]
		if h.OldText == nil {
			return nil
		}
		sb.WriteString(*h.OldText)
		next := end
		if i+1 < hi {
			next = p.hunks[i+1].NewStart
		}
		if !gap(h.NewEnd, next) {
			return nil
		}
	}
	return textPtr(sb.String())
}

// Compose folds patches left to right into one patch. Each patch's old
// space must be the previous result's new space. The inputs are not
// modified; on failure ErrPatchInapplicable is returned.
func Compose(patches []*Patch) (*Patch, error) {
	result := New()
	for i, next := range patches {
		if next == nil {
			continue
		}
		for _, h := range next.hunks {
			if err := result.Splice(h.NewStart, h.OldExtent(), h.NewExtent(), h.OldText, h.NewText); err != nil {
				return nil, fmt.Errorf("compose patch %d: %w", i, err)
			}
		}
	}
	return result, nil
}

// Apply applies the patch to text in the old coordinate space and
// returns the text in the new space. Every hunk must carry its new text.
func (p *Patch) Apply(text string) (string, error) {
	lineStarts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lineStarts = append(lineStarts, i+1)
		}
	}
	offset := func(pos point.Point) int {
		if pos.Row >= len(lineStarts) {
			return -1
		}
		i := byteIndexAt(text[lineStarts[pos.Row]:], point.Point{Column: pos.Column})
		if i < 0 {
			return -1
		}
		return lineStarts[pos.Row] + i
	}

	var sb strings.Builder
	last := 0
	for _, h := range p.hunks {
		from, to := offset(h.OldStart), offset(h.OldEnd)
		if from < last || to < from {
			return "", fmt.Errorf("%w: %s is outside the text", ErrPatchInapplicable, h)
		}
		if h.NewText == nil {
			return "", fmt.Errorf("%w: %s has no new text", ErrPatchInapplicable, h)
		}
		sb.WriteString(text[last:from])
		sb.WriteString(*h.NewText)
		last = to
	}
	sb.WriteString(text[last:])
	return sb.String(), nil
}
