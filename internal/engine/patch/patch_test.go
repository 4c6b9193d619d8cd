package patch

import (
	"errors"
	"testing"

	"github.com/dshills/textcore/internal/engine/point"
)

func s(text string) *string { return &text }

// edit splices text replacement into p and applies the same edit to doc.
func edit(t *testing.T, p *Patch, doc *string, start, end point.Point, inserted string) {
	t.Helper()
	from := byteIndexAt(*doc, start)
	to := byteIndexAt(*doc, end)
	if from < 0 || to < 0 {
		t.Fatalf("edit %s-%s outside %q", start, end, *doc)
	}
	deleted := (*doc)[from:to]
	err := p.Splice(start, point.Traversal(end, start), point.ExtentOf(inserted), s(deleted), s(inserted))
	if err != nil {
		t.Fatalf("Splice: %v", err)
	}
	*doc = (*doc)[:from] + inserted + (*doc)[to:]
}

func TestSpliceIntoEmptyPatch(t *testing.T) {
	p := New()
	if err := p.Splice(point.New(0, 2), point.New(0, 3), point.New(0, 1), s("cde"), s("X")); err != nil {
		t.Fatal(err)
	}
	want := Hunk{
		OldStart: point.New(0, 2), OldEnd: point.New(0, 5),
		NewStart: point.New(0, 2), NewEnd: point.New(0, 3),
		OldText: s("cde"), NewText: s("X"),
	}
	if got := p.Hunks(); len(got) != 1 || !got[0].Equal(want) {
		t.Fatalf("hunks = %v, want %v", got, want)
	}
}

func TestSpliceMergesOverlappingHunk(t *testing.T) {
	base := "abcdefgh"
	doc := base
	p := New()
	edit(t, p, &doc, point.New(0, 2), point.New(0, 5), "X") // abXfgh
	edit(t, p, &doc, point.New(0, 1), point.New(0, 4), "")  // agh

	hunks := p.Hunks()
	if len(hunks) != 1 {
		t.Fatalf("got %d hunks, want 1", len(hunks))
	}
	want := Hunk{
		OldStart: point.New(0, 1), OldEnd: point.New(0, 6),
		NewStart: point.New(0, 1), NewEnd: point.New(0, 1),
		OldText: s("bcdef"), NewText: s(""),
	}
	if !hunks[0].Equal(want) {
		t.Errorf("hunk = %v %q->%q, want %v", hunks[0], *hunks[0].OldText, *hunks[0].NewText, want)
	}
	out, err := p.Apply(base)
	if err != nil || out != doc {
		t.Errorf("Apply = %q, %v; want %q", out, err, doc)
	}
}

func TestSpliceAcrossRows(t *testing.T) {
	base := "ab\ncd\nef"
	doc := base
	p := New()
	edit(t, p, &doc, point.New(0, 1), point.New(1, 1), "Z") // aZd\nef
	edit(t, p, &doc, point.New(1, 0), point.New(1, 0), "xy\n")

	if doc != "aZd\nxy\nef" {
		t.Fatalf("doc = %q", doc)
	}
	hunks := p.Hunks()
	if len(hunks) != 2 {
		t.Fatalf("got %d hunks, want 2", len(hunks))
	}
	if hunks[1].OldStart != point.New(2, 0) || hunks[1].NewEnd != point.New(2, 0) {
		t.Errorf("second hunk = %s", hunks[1])
	}
	out, err := p.Apply(base)
	if err != nil || out != doc {
		t.Errorf("Apply = %q, %v; want %q", out, err, doc)
	}
	back, err := p.Invert().Apply(doc)
	if err != nil || back != base {
		t.Errorf("inverted Apply = %q, %v; want %q", back, err, base)
	}
}

func TestSpliceShiftsFollowingHunks(t *testing.T) {
	doc := "one\ntwo\nthree"
	p := New()
	edit(t, p, &doc, point.New(2, 0), point.New(2, 5), "3")
	edit(t, p, &doc, point.New(0, 0), point.New(0, 0), "zero\n")

	hunks := p.Hunks()
	if len(hunks) != 2 {
		t.Fatalf("got %d hunks", len(hunks))
	}
	if hunks[1].NewStart != point.New(3, 0) || hunks[1].OldStart != point.New(2, 0) {
		t.Errorf("shifted hunk = %s", hunks[1])
	}
}

func TestSpliceRejectsInconsistentInput(t *testing.T) {
	tests := []struct {
		name string
		run  func(p *Patch) error
	}{
		{"inserted text extent", func(p *Patch) error {
			return p.Splice(point.New(0, 0), point.Zero, point.New(0, 2), nil, s("abc"))
		}},
		{"deleted text extent", func(p *Patch) error {
			return p.Splice(point.New(0, 0), point.New(1, 0), point.Zero, s("ab"), nil)
		}},
		{"contradicting deleted text", func(p *Patch) error {
			return p.Splice(point.New(0, 2), point.New(0, 1), point.Zero, s("Q"), s(""))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New()
			if err := p.Splice(point.New(0, 2), point.New(0, 3), point.New(0, 1), s("cde"), s("X")); err != nil {
				t.Fatal(err)
			}
			before := p.Clone()
			err := tt.run(p)
			if !errors.Is(err, ErrPatchInapplicable) {
				t.Fatalf("err = %v, want ErrPatchInapplicable", err)
			}
			if !p.Equal(before) {
				t.Error("failed splice modified the patch")
			}
		})
	}
}

func TestSpliceDropsCancelledEdits(t *testing.T) {
	doc := "abc"
	p := New()
	edit(t, p, &doc, point.New(0, 1), point.New(0, 1), "xyz")
	edit(t, p, &doc, point.New(0, 1), point.New(0, 4), "")
	if p.ChangeCount() != 0 {
		t.Errorf("ChangeCount = %d, want 0: %v", p.ChangeCount(), p.Hunks())
	}
}

func TestSpliceWithoutTexts(t *testing.T) {
	p := New()
	if err := p.Splice(point.New(0, 1), point.New(0, 2), point.New(0, 4), nil, nil); err != nil {
		t.Fatal(err)
	}
	if err := p.Splice(point.New(0, 3), point.New(0, 1), point.Zero, nil, nil); err != nil {
		t.Fatal(err)
	}
	h := p.Hunks()[0]
	if h.OldText != nil || h.NewText != nil {
		t.Error("texts should stay unknown")
	}
	if h.OldExtent() != point.New(0, 2) || h.NewExtent() != point.New(0, 3) {
		t.Errorf("hunk = %s", h)
	}
	if _, err := p.Apply("abcd"); !errors.Is(err, ErrPatchInapplicable) {
		t.Errorf("Apply without text: err = %v", err)
	}
}

func buildChain(t *testing.T) (string, []*Patch, string) {
	t.Helper()
	base := "abcdefgh"
	doc := base
	a, b, c := New(), New(), New()
	edit(t, a, &doc, point.New(0, 2), point.New(0, 5), "X")  // abXfgh
	edit(t, b, &doc, point.New(0, 6), point.New(0, 6), "!!") // abXfgh!!
	edit(t, c, &doc, point.New(0, 3), point.New(0, 6), "")   // abX!!
	return base, []*Patch{a, b, c}, doc
}

func TestComposeChain(t *testing.T) {
	base, chain, final := buildChain(t)
	composed, err := Compose(chain)
	if err != nil {
		t.Fatal(err)
	}
	want := Hunk{
		OldStart: point.New(0, 2), OldEnd: point.New(0, 8),
		NewStart: point.New(0, 2), NewEnd: point.New(0, 5),
		OldText: s("cdefgh"), NewText: s("X!!"),
	}
	if h := composed.Hunks(); len(h) != 1 || !h[0].Equal(want) {
		t.Fatalf("composed = %v", h)
	}
	if out, err := composed.Apply(base); err != nil || out != final {
		t.Errorf("Apply = %q, %v; want %q", out, err, final)
	}
}

func TestComposeAssociative(t *testing.T) {
	_, chain, _ := buildChain(t)
	a, b, c := chain[0], chain[1], chain[2]

	all, err := Compose([]*Patch{a, b, c})
	if err != nil {
		t.Fatal(err)
	}
	ab, err := Compose([]*Patch{a, b})
	if err != nil {
		t.Fatal(err)
	}
	left, err := Compose([]*Patch{ab, c})
	if err != nil {
		t.Fatal(err)
	}
	bc, err := Compose([]*Patch{b, c})
	if err != nil {
		t.Fatal(err)
	}
	right, err := Compose([]*Patch{a, bc})
	if err != nil {
		t.Fatal(err)
	}
	if !all.Equal(left) || !all.Equal(right) {
		t.Errorf("composition not associative:\n%v\n%v\n%v", all.Hunks(), left.Hunks(), right.Hunks())
	}
}

func TestComposeFailureLeavesInputs(t *testing.T) {
	a := New()
	if err := a.Splice(point.New(0, 0), point.Zero, point.New(0, 3), s(""), s("abc")); err != nil {
		t.Fatal(err)
	}
	b := New()
	if err := b.Splice(point.New(0, 0), point.New(0, 3), point.Zero, s("xyz"), s("")); err != nil {
		t.Fatal(err)
	}
	before := a.Clone()
	if _, err := Compose([]*Patch{a, b}); !errors.Is(err, ErrPatchInapplicable) {
		t.Fatalf("err = %v, want ErrPatchInapplicable", err)
	}
	if !a.Equal(before) {
		t.Error("Compose modified its input")
	}
}

func TestHunksInNewRange(t *testing.T) {
	doc := "0123456789"
	p := New()
	edit(t, p, &doc, point.New(0, 1), point.New(0, 2), "a")
	edit(t, p, &doc, point.New(0, 5), point.New(0, 6), "b")
	edit(t, p, &doc, point.New(0, 8), point.New(0, 9), "c")
	got := p.HunksInNewRange(point.New(0, 4), point.New(0, 8))
	if len(got) != 2 {
		t.Errorf("got %d hunks, want 2", len(got))
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	_, chain, _ := buildChain(t)
	p, err := Compose(chain)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Splice(point.New(3, 0), point.Zero, point.New(1, 2), nil, nil); err != nil {
		t.Fatal(err)
	}

	data, err := p.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	got, err := Deserialize(data)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(p) {
		t.Errorf("round trip = %v, want %v", got.Hunks(), p.Hunks())
	}
}

func TestDeserializeRejectsCorruptData(t *testing.T) {
	p := New()
	if err := p.Splice(point.Zero, point.Zero, point.New(0, 5), s(""), s("hello")); err != nil {
		t.Fatal(err)
	}
	data, _ := p.Serialize()

	tests := map[string][]byte{
		"empty":     nil,
		"bad magic": append([]byte("XXXX"), data[4:]...),
		"truncated": data[:len(data)-2],
		"trailing":  append(append([]byte{}, data...), 0),
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Deserialize(in); !errors.Is(err, ErrCorruptPatch) {
				t.Errorf("err = %v, want ErrCorruptPatch", err)
			}
		})
	}
}

func FuzzDeserialize(f *testing.F) {
	p := New()
	_ = p.Splice(point.Zero, point.Zero, point.New(0, 5), s(""), s("hello"))
	data, _ := p.Serialize()
	f.Add(data)
	f.Add([]byte("TCPT\x01"))

	f.Fuzz(func(t *testing.T, data []byte) {
		_, _ = Deserialize(data)
	})
}
