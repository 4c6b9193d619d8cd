package diff

import (
	"fmt"
	"strings"

	"github.com/dshills/textcore/internal/engine/patch"
	"github.com/dshills/textcore/internal/engine/point"
)

// Options configures Compute.
type Options struct {
	// RefineLimit is the largest replaced block, in runes of old plus new
	// text, refined character by character. Zero means DefaultRefineLimit;
	// a negative value disables refinement.
	RefineLimit int
}

// Compute returns a patch that transforms oldText into newText. Every hunk
// carries both its old and new text.
func Compute(oldText, newText string, opts Options) (*patch.Patch, error) {
	limit := opts.RefineLimit
	if limit == 0 {
		limit = DefaultRefineLimit
	}

	b := &builder{p: patch.New(), limit: limit}
	if oldText == newText {
		return b.p, nil
	}

	oldLines, newLines := SplitLines(oldText), SplitLines(newText)
	for _, op := range Lines(oldLines, newLines) {
		oldSeg := strings.Join(oldLines[op.OldStart:op.OldEnd], "")
		newSeg := strings.Join(newLines[op.NewStart:op.NewEnd], "")
		switch op.Kind {
		case Equal:
			b.keep(newSeg)
		case Replace:
			b.refine(oldSeg, newSeg)
		default:
			b.change(oldSeg, newSeg)
		}
		if b.err != nil {
			return nil, b.err
		}
	}
	return b.p, nil
}

// builder records changes left to right; pos is the current position in
// the new text, which is where the next change begins.
type builder struct {
	p     *patch.Patch
	pos   point.Point
	limit int
	err   error
}

func (b *builder) keep(text string) {
	b.pos = point.Traverse(b.pos, point.ExtentOf(text))
}

func (b *builder) change(oldSeg, newSeg string) {
	if b.err != nil || oldSeg == newSeg {
		b.keep(newSeg)
		return
	}
	newExtent := point.ExtentOf(newSeg)
	if err := b.p.Splice(b.pos, point.ExtentOf(oldSeg), newExtent, &oldSeg, &newSeg); err != nil {
		b.err = fmt.Errorf("diff at %s: %w", b.pos, err)
		return
	}
	b.pos = point.Traverse(b.pos, newExtent)
}

func (b *builder) refine(oldSeg, newSeg string) {
	a, c := []rune(oldSeg), []rune(newSeg)
	if b.limit < 0 || len(a)+len(c) > b.limit {
		b.change(oldSeg, newSeg)
		return
	}
	for _, op := range Runes(a, c) {
		o, n := string(a[op.OldStart:op.OldEnd]), string(c[op.NewStart:op.NewEnd])
		if op.Kind == Equal {
			b.keep(n)
			continue
		}
		b.change(o, n)
	}
}
