package buffer

import (
	"slices"

	"github.com/dshills/textcore/internal/engine/marker"
	"github.com/dshills/textcore/internal/engine/point"
	"github.com/dshills/textcore/internal/engine/search"
)

// AddMarkerIndex creates a marker index whose markers follow every edit to
// the buffer.
func (b *TextBuffer) AddMarkerIndex() *marker.Index {
	idx := marker.New()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.markers = append(b.markers, idx)
	return idx
}

// RemoveMarkerIndex detaches idx. It reports whether idx was attached.
func (b *TextBuffer) RemoveMarkerIndex(idx *marker.Index) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.Index(b.markers, idx)
	if i < 0 {
		return false
	}
	b.markers = slices.Delete(b.markers, i, i+1)
	return true
}

// MarkerRange returns the range of a marker in idx as positions.
func (b *TextBuffer) MarkerRange(idx *marker.Index, id marker.ID) (point.Range, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	r, err := idx.Range(id)
	if err != nil {
		return point.Range{}, err
	}
	return point.Range{
		Start: b.lines.PositionForOffset(r.Start),
		End:   b.lines.PositionForOffset(r.End),
	}, nil
}

// UpdateMarkers runs fn with the buffer locked for writing. fn reads the
// text through doc and may change markers in attached indexes without
// racing an edit. fn must not call methods of b.
func (b *TextBuffer) UpdateMarkers(fn func(doc search.Document) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return fn(view{b})
}
