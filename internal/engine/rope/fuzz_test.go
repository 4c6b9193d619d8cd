package rope

import (
	"testing"
	"unicode/utf8"
)

// FuzzFromString tests rope creation from arbitrary strings.
func FuzzFromString(f *testing.F) {
	f.Add("")
	f.Add("hello\nworld")
	f.Add("日本語")
	f.Add("emoji 🎉 test")

	f.Fuzz(func(t *testing.T, s string) {
		if !utf8.ValidString(s) {
			return
		}
		r := FromString(s)
		if r.Len() != utf8.RuneCountInString(s) {
			t.Errorf("length mismatch: got %d", r.Len())
		}
		if r.String() != s {
			t.Errorf("content mismatch")
		}
	})
}

// FuzzInsertDelete tests that an insert followed by deleting the same
// span restores the original text.
func FuzzInsertDelete(f *testing.F) {
	f.Add("hello", 0, "x")
	f.Add("hello", 5, "world")
	f.Add("日本語", 1, "x")

	f.Fuzz(func(t *testing.T, initial string, offset int, insert string) {
		if !utf8.ValidString(initial) || !utf8.ValidString(insert) {
			return
		}
		n := utf8.RuneCountInString(initial)
		offset = min(max(offset, 0), n)

		r := FromString(initial).Insert(offset, insert)
		back := r.Delete(offset, offset+utf8.RuneCountInString(insert))
		if back.String() != initial {
			t.Errorf("round trip = %q, want %q", back.String(), initial)
		}
	})
}
