package textio

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// Canonical names returned by DetectEncoding.
const (
	UTF8       = "UTF-8"
	UTF8BOM    = "UTF-8BOM"
	UTF16LE    = "UTF-16LE"
	UTF16BE    = "UTF-16BE"
	UTF16LEBOM = "UTF-16LEBOM"
	UTF16BEBOM = "UTF-16BEBOM"
	Latin1     = "ISO-8859-1"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

type rewrite struct {
	re    *regexp2.Regexp
	repl  string
	count int
}

// normalizeRules run in order on the upper-cased name.
var normalizeRules = []rewrite{
	{regexp2.MustCompile(`[^A-Z\d]`, regexp2.ECMAScript), "", -1},
	{regexp2.MustCompile(`^(UTF|UCS|ISO|WINDOWS|KOI8|EUC)(\w)`, regexp2.ECMAScript), "$1-$2", 1},
	{regexp2.MustCompile(`^(ISO-8859)(\d)`, regexp2.ECMAScript), "$1-$2", 1},
	{regexp2.MustCompile(`^(SHIFT)(\w)`, regexp2.ECMAScript), "$1_$2", 1},
}

// NormalizeEncoding maps a user-supplied encoding name to its canonical
// spelling. The name is upper-cased and stripped of everything but ASCII
// letters and digits, then separators are restored for the UTF, UCS, ISO,
// WINDOWS, KOI8 and EUC families (hyphen), ISO-8859 parts (hyphen) and
// SHIFT_JIS (underscore).
func NormalizeEncoding(name string) string {
	s := strings.ToUpper(name)
	for _, r := range normalizeRules {
		out, err := r.re.Replace(s, r.repl, -1, r.count)
		if err != nil {
			// Only a match timeout fails, and no rule sets one.
			continue
		}
		s = out
	}
	return s
}

// LookupEncoding resolves name, after normalization, to a charset.
// An empty name means UTF-8. Besides the IANA names, UTF-8BOM,
// UTF-16LEBOM and UTF-16BEBOM select Unicode encodings that write a byte
// order mark.
func LookupEncoding(name string) (encoding.Encoding, error) {
	norm := NormalizeEncoding(name)
	switch norm {
	case "":
		return unicode.UTF8, nil
	case UTF8BOM:
		return unicode.UTF8BOM, nil
	case UTF16LEBOM:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case UTF16BEBOM:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), nil
	}
	enc, err := ianaindex.IANA.Encoding(norm)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return enc, nil
}

// DetectEncoding guesses the charset of content. A byte order mark wins
// and is kept in the returned name so that encoding writes it back;
// otherwise valid UTF-8 is UTF-8 and anything else is read as Latin-1,
// which accepts every byte sequence.
func DetectEncoding(content []byte) string {
	switch {
	case bytes.HasPrefix(content, bomUTF8):
		return UTF8BOM
	case bytes.HasPrefix(content, bomUTF16LE):
		return UTF16LEBOM
	case bytes.HasPrefix(content, bomUTF16BE):
		return UTF16BEBOM
	case utf8.Valid(content):
		return UTF8
	default:
		return Latin1
	}
}

// IsBinary reports whether content looks like binary data: it has a NUL
// byte, or more than 10% control characters other than tab, newline and
// carriage return, within the first 8KB.
func IsBinary(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	sample := content[:min(len(content), 8192)]
	if bytes.IndexByte(sample, 0) >= 0 {
		return true
	}
	nonText := 0
	for _, b := range sample {
		if b < 32 && b != '\t' && b != '\n' && b != '\r' {
			nonText++
		}
	}
	return float64(nonText)/float64(len(sample)) > 0.1
}
