package buffer

import (
	"fmt"

	"github.com/dshills/textcore/internal/engine/marker"
	"github.com/dshills/textcore/internal/engine/point"
	"github.com/dshills/textcore/internal/engine/search"
)

// view exposes the buffer to the search engine. It must only be used
// while the buffer's lock is held.
type view struct {
	b *TextBuffer
}

func (v view) CharacterCount() int { return v.b.rope.Len() }

func (v view) OffsetForPosition(p point.Point) int { return v.b.lines.OffsetForPosition(p) }

func (v view) PositionForOffset(offset int) point.Point { return v.b.lines.PositionForOffset(offset) }

func (v view) TextInOffsetRange(start, end int) string { return v.b.rope.Slice(start, end) }

func (b *TextBuffer) compile(p search.Pattern) (*search.Regex, error) {
	re, err := search.Compile(p, search.WithMatchTimeout(b.searchTimeout))
	if err != nil {
		b.log.Debug("compile /%s/: %v", p.Source, err)
		return nil, err
	}
	return re, nil
}

// Find returns the first match of p in the whole text, or nil.
func (b *TextBuffer) Find(p search.Pattern) (*search.Match, error) {
	return b.FindInRange(p, point.DefaultRange)
}

// FindInRange returns the first match of p inside rng, or nil.
func (b *TextBuffer) FindInRange(p search.Pattern, rng point.Range) (*search.Match, error) {
	re, err := b.compile(p)
	if err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return search.Find(view{b}, re, rng)
}

// FindAll returns every match of p in the whole text.
func (b *TextBuffer) FindAll(p search.Pattern) ([]search.Match, error) {
	return b.FindAllInRange(p, point.DefaultRange)
}

// FindAllInRange returns every match of p inside rng in order.
func (b *TextBuffer) FindAllInRange(p search.Pattern, rng point.Range) ([]search.Match, error) {
	re, err := b.compile(p)
	if err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return search.FindAll(view{b}, re, rng)
}

// FindAndMarkAll inserts a marker into idx for every match of p in the
// whole text.
func (b *TextBuffer) FindAndMarkAll(idx *marker.Index, nextID func() marker.ID, exclusive bool, p search.Pattern) ([]marker.ID, error) {
	return b.FindAndMarkAllInRange(idx, nextID, exclusive, p, point.DefaultRange)
}

// FindAndMarkAllInRange inserts a marker into idx for every match of p
// inside rng and returns the new ids in match order. Ids come from
// nextID. All matches are found before any marker is inserted; if the
// pattern is invalid or an insert fails, idx is left as it was.
func (b *TextBuffer) FindAndMarkAllInRange(idx *marker.Index, nextID func() marker.ID, exclusive bool, p search.Pattern, rng point.Range) ([]marker.ID, error) {
	re, err := b.compile(p)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	matches, err := search.FindAll(view{b}, re, rng)
	if err != nil {
		return nil, err
	}

	opts := marker.Options{ExclusiveStart: exclusive, ExclusiveEnd: exclusive}
	ids := make([]marker.ID, 0, len(matches))
	for _, m := range matches {
		id := nextID()
		if err := idx.Insert(id, m.StartOffset, m.EndOffset, opts); err != nil {
			for _, inserted := range ids {
				_ = idx.Delete(inserted)
			}
			return nil, fmt.Errorf("find and mark /%s/: %w", p.Source, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// FindWordsWithSubsequence ranks the distinct words of the whole text
// containing query as a subsequence. A negative maxCount means no limit.
func (b *TextBuffer) FindWordsWithSubsequence(query, extraWordChars string, maxCount int) []search.SubsequenceMatch {
	return b.FindWordsWithSubsequenceInRange(query, extraWordChars, maxCount, point.DefaultRange)
}

// FindWordsWithSubsequenceInRange is FindWordsWithSubsequence limited to
// the words inside rng.
func (b *TextBuffer) FindWordsWithSubsequenceInRange(query, extraWordChars string, maxCount int, rng point.Range) []search.SubsequenceMatch {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return search.FindWordsWithSubsequence(view{b}, query, extraWordChars, maxCount, rng,
		search.WithScorer(b.scorer), search.WithTokenizer(b.tokenizer))
}
