package rope

// TextSummary holds aggregated metrics for a text span.
// This is the "summary" type for the tree, implementing monoid operations.
type TextSummary struct {
	// Bytes is the UTF-8 byte count.
	Bytes int

	// Chars is the character (code point) count.
	Chars int

	// Lines is the number of newline characters.
	Lines int

	// Astral is the number of characters outside the Basic Multilingual Plane.
	Astral int
}

// Add combines two summaries (monoid operation).
// This is called when concatenating rope sections.
func (s TextSummary) Add(other TextSummary) TextSummary {
	return TextSummary{
		Bytes:  s.Bytes + other.Bytes,
		Chars:  s.Chars + other.Chars,
		Lines:  s.Lines + other.Lines,
		Astral: s.Astral + other.Astral,
	}
}

// IsZero returns true if this is the zero/identity summary.
func (s TextSummary) IsZero() bool {
	return s.Chars == 0
}

// ComputeSummary calculates metrics for a string.
func ComputeSummary(s string) TextSummary {
	sum := TextSummary{Bytes: len(s)}
	for _, r := range s {
		sum.Chars++
		switch {
		case r == '\n':
			sum.Lines++
		case r > 0xFFFF:
			sum.Astral++
		}
	}
	return sum
}

// byteIndex returns the byte index of the n-th character of s.
// n is clamped to [0, characters in s].
func byteIndex(s string, n int) int {
	if n <= 0 {
		return 0
	}
	i := 0
	for pos := range s {
		if i == n {
			return pos
		}
		i++
	}
	return len(s)
}
