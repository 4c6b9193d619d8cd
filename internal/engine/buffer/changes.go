package buffer

import (
	"fmt"
	"hash/fnv"

	"github.com/dshills/textcore/internal/engine/diff"
	"github.com/dshills/textcore/internal/engine/patch"
	"github.com/dshills/textcore/internal/engine/point"
)

// IsModified reports whether the text differs from the base text in any
// recorded change.
func (b *TextBuffer) IsModified() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return hasNetChange(b.changes)
}

// hasNetChange reports whether some hunk replaces text with different
// text. Hunks without texts count as changes.
func hasNetChange(p *patch.Patch) bool {
	for _, h := range p.Hunks() {
		if h.OldText == nil || h.NewText == nil || *h.OldText != *h.NewText {
			return true
		}
	}
	return false
}

// BaseText returns the text the recorded changes apply to.
func (b *TextBuffer) BaseText() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.base
}

// BaseTextDigest returns the FNV-64a digest of the base text as 16
// hexadecimal digits.
func (b *TextBuffer) BaseTextDigest() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	h := fnv.New64a()
	_, _ = h.Write([]byte(b.base))
	return fmt.Sprintf("%016x", h.Sum64())
}

// Changes returns a copy of the patch from the base text to the text.
func (b *TextBuffer) Changes() *patch.Patch {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.changes.Clone()
}

// UnifiedDiff renders the difference between the base text and the text.
func (b *TextBuffer) UnifiedDiff(context int) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return diff.Unified("base", "current", b.base, b.rope.String(), context)
}

// FlushChanges makes the current text the new base text.
func (b *TextBuffer) FlushChanges() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushLocked()
}

func (b *TextBuffer) flushLocked() {
	b.base = b.rope.String()
	b.changes = patch.New()
}

// LoadFromText brings the buffer to text, typically the current content
// of its file on disk, and returns the patch from the text before the
// call to text.
//
// When the content changed and trackChanges is false, the buffer is reset
// so text becomes its base. When trackChanges is true the difference is
// applied as recorded edits, keeping the base text and marking the buffer
// modified. When nothing changed, recorded changes are flushed.
func (b *TextBuffer) LoadFromText(text string, trackChanges bool) (*patch.Patch, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	normalized := normalizeLineEndings(text)
	fromBase, err := diff.Compute(b.base, normalized, b.diffOpts)
	if err != nil {
		return nil, fmt.Errorf("load from text: %w", err)
	}

	result := fromBase
	if b.changes.ChangeCount() > 0 {
		result, err = patch.Compose([]*patch.Patch{b.changes.Invert(), fromBase})
		if err != nil {
			return nil, fmt.Errorf("load from text: %w", err)
		}
	}

	if !hasNetChange(result) {
		flushed := b.changes.ChangeCount()
		b.flushLocked()
		b.log.Debug("load from text: unchanged, %d changes flushed", flushed)
		return result, nil
	}

	if !trackChanges {
		b.resetLocked(text)
		b.log.Debug("load from text: reset with %d hunks", result.ChangeCount())
		return result, nil
	}

	hunks := result.Hunks()
	for i := len(hunks) - 1; i >= 0; i-- {
		h := hunks[i]
		if h.NewText == nil {
			return nil, fmt.Errorf("load from text: %w: %s has no new text", patch.ErrPatchInapplicable, h)
		}
		if err := b.setTextInRangeLocked(point.Range{Start: h.OldStart, End: h.OldEnd}, *h.NewText); err != nil {
			return nil, fmt.Errorf("load from text: %w", err)
		}
	}
	b.log.Debug("load from text: applied %d hunks as edits", len(hunks))
	return result, nil
}

// SerializeChanges encodes the recorded changes.
func (b *TextBuffer) SerializeChanges() ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.changes.Serialize()
}

// DeserializeChanges replaces the recorded changes with decoded ones and
// brings the text to the base text with those changes applied. On error
// the buffer is unchanged.
func (b *TextBuffer) DeserializeChanges(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	restored, err := patch.Deserialize(data)
	if err != nil {
		return fmt.Errorf("deserialize changes: %w", err)
	}
	target, err := restored.Apply(b.base)
	if err != nil {
		return fmt.Errorf("deserialize changes: %w", err)
	}

	step, err := diff.Compute(b.rope.String(), target, b.diffOpts)
	if err != nil {
		return fmt.Errorf("deserialize changes: %w", err)
	}
	hunks := step.Hunks()
	for i := len(hunks) - 1; i >= 0; i-- {
		h := hunks[i]
		start, end := b.lines.OffsetForPosition(h.OldStart), b.lines.OffsetForPosition(h.OldEnd)
		b.spliceLocked(h.OldStart, h.OldEnd, start, end, *h.NewText)
	}
	b.changes = restored
	b.log.Debug("deserialized %d changes", restored.ChangeCount())
	return nil
}
