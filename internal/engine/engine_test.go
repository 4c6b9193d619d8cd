package engine

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dshills/textcore/internal/config"
	"github.com/dshills/textcore/internal/engine/search"
	"github.com/dshills/textcore/internal/logging"
)

func newTestEngine(t *testing.T, cfg *config.Config) *Engine {
	t.Helper()
	e, err := New(cfg, WithLogger(logging.Nop()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// ============================================================================
// Construction
// ============================================================================

func TestNew(t *testing.T) {
	e := newTestEngine(t, nil)

	if e.Config().Buffer.LineEnding != "lf" {
		t.Errorf("expected default line ending lf, got %q", e.Config().Buffer.LineEnding)
	}
	ws, ok := e.Scorer().(search.WeightedScorer)
	if !ok {
		t.Fatalf("expected WeightedScorer, got %T", e.Scorer())
	}
	if ws != search.DefaultWeights() {
		t.Errorf("expected default weights, got %+v", ws)
	}
	if e.Logger() == nil {
		t.Error("expected a logger")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Search.Tokenizer = "words"

	if _, err := New(cfg); !errors.Is(err, config.ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed, got %v", err)
	}
}

func TestNew_ConfigIsCopied(t *testing.T) {
	cfg := config.Default()
	e := newTestEngine(t, cfg)

	cfg.Search.MaxResults = 1
	if e.Config().Search.MaxResults != 100 {
		t.Errorf("expected engine config to be unaffected, got %d", e.Config().Search.MaxResults)
	}
}

func TestNew_SegmentTokenizer(t *testing.T) {
	cfg := config.Default()
	cfg.Search.Tokenizer = "Segment"
	e := newTestEngine(t, cfg)

	if _, ok := e.tokenizer.(search.SegmentTokenizer); !ok {
		t.Errorf("expected SegmentTokenizer, got %T", e.tokenizer)
	}
}

func TestNew_LuaScorer(t *testing.T) {
	script := writeFile(t, "score.lua", []byte(`function score(query, word, matches) return #word end`))
	cfg := config.Default()
	cfg.Search.Scorer = "lua"
	cfg.Search.LuaScript = script
	e := newTestEngine(t, cfg)

	ls, ok := e.Scorer().(*search.LuaScorer)
	if !ok {
		t.Fatalf("expected *LuaScorer, got %T", e.Scorer())
	}
	if _, ok := ls.Fallback.(search.WeightedScorer); !ok {
		t.Errorf("expected weighted fallback, got %T", ls.Fallback)
	}

	buf, err := e.NewBuffer("ab abc abcd")
	if err != nil {
		t.Fatal(err)
	}
	got := e.FindWords(buf, "ab")
	if len(got) != 3 {
		t.Fatalf("expected 3 words, got %d", len(got))
	}
	if got[0].Word != "abcd" || got[0].Score != 4 {
		t.Errorf("expected abcd scored 4 first, got %q scored %d", got[0].Word, got[0].Score)
	}
}

func TestNew_LuaScriptMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Search.Scorer = "lua"
	cfg.Search.LuaScript = filepath.Join(t.TempDir(), "missing.lua")

	if _, err := New(cfg); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestNew_LuaScriptInvalid(t *testing.T) {
	cfg := config.Default()
	cfg.Search.Scorer = "lua"
	cfg.Search.LuaScript = writeFile(t, "bad.lua", []byte("function score("))

	if _, err := New(cfg); err == nil {
		t.Error("expected error for invalid script")
	}
}

// ============================================================================
// Buffers
// ============================================================================

func TestNewBuffer_LineEnding(t *testing.T) {
	cfg := config.Default()
	cfg.Buffer.LineEnding = "crlf"
	e := newTestEngine(t, cfg)

	buf, err := e.NewBuffer("one line")
	if err != nil {
		t.Fatal(err)
	}
	if buf.LineEnding() != LineEndingCRLF {
		t.Errorf("expected configured CRLF, got %v", buf.LineEnding())
	}
	if err := buf.SetTextInRange(Range{Start: Point{Row: 0, Column: 3}, End: Point{Row: 0, Column: 4}}, "\n"); err != nil {
		t.Fatal(err)
	}
	if buf.TextWithLineEndings() != "one\r\nline" {
		t.Errorf("expected CRLF output, got %q", buf.TextWithLineEndings())
	}

	// Detected endings win over the configured default.
	buf, err = e.NewBuffer("a\nb\n")
	if err != nil {
		t.Fatal(err)
	}
	if buf.LineEnding() != LineEndingLF {
		t.Errorf("expected detected LF, got %v", buf.LineEnding())
	}
}

func TestBuffers(t *testing.T) {
	e := newTestEngine(t, nil)

	a, _ := e.NewBuffer("a")
	b, _ := e.NewBuffer("b")

	if got := len(e.Buffers()); got != 2 {
		t.Fatalf("expected 2 buffers, got %d", got)
	}
	if got, ok := e.Buffer(a.ID()); !ok || got != a {
		t.Error("expected to find buffer a by id")
	}

	if err := e.CloseBuffer(a); err != nil {
		t.Fatalf("CloseBuffer failed: %v", err)
	}
	if err := e.CloseBuffer(a); !errors.Is(err, ErrUnknownBuffer) {
		t.Errorf("expected ErrUnknownBuffer, got %v", err)
	}
	if _, ok := e.Buffer(a.ID()); ok {
		t.Error("expected closed buffer to be gone")
	}
	if _, err := e.Path(a); !errors.Is(err, ErrUnknownBuffer) {
		t.Errorf("expected ErrUnknownBuffer, got %v", err)
	}

	got := e.Buffers()
	if len(got) != 1 || got[0] != b {
		t.Errorf("expected only buffer b, got %d buffers", len(got))
	}
}

func TestClose(t *testing.T) {
	e, err := New(nil, WithLogger(logging.Nop()))
	if err != nil {
		t.Fatal(err)
	}
	buf, _ := e.NewBuffer("x")

	if err := e.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("expected second Close to succeed, got %v", err)
	}
	if _, err := e.NewBuffer("y"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if err := e.Save(buf); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if len(e.Buffers()) != 0 {
		t.Error("expected no buffers after Close")
	}
}

func TestConcurrentNewBuffer(t *testing.T) {
	e := newTestEngine(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf, err := e.NewBuffer("text")
			if err != nil {
				t.Errorf("NewBuffer failed: %v", err)
				return
			}
			_ = e.FindWords(buf, "t")
		}()
	}
	wg.Wait()

	if got := len(e.Buffers()); got != 10 {
		t.Errorf("expected 10 buffers, got %d", got)
	}
}

// ============================================================================
// Files
// ============================================================================

func TestOpenSave_Latin1(t *testing.T) {
	path := writeFile(t, "latin1.txt", []byte("caf\xe9\r\nbar"))
	cfg := config.Default()
	cfg.Buffer.Encoding = "latin1"
	e := newTestEngine(t, cfg)

	buf, err := e.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if buf.Text() != "café\nbar" {
		t.Errorf("expected decoded text, got %q", buf.Text())
	}
	if buf.LineEnding() != LineEndingCRLF {
		t.Errorf("expected CRLF, got %v", buf.LineEnding())
	}
	if got, _ := e.Path(buf); got != path {
		t.Errorf("expected path %q, got %q", path, got)
	}

	if err := buf.SetTextInRange(Range{Start: Point{Row: 1, Column: 0}, End: Point{Row: 1, Column: 3}}, "baz"); err != nil {
		t.Fatal(err)
	}
	if !buf.IsModified() {
		t.Error("expected buffer to be modified")
	}

	if err := e.Save(buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if buf.IsModified() {
		t.Error("expected buffer to be unmodified after Save")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte("caf\xe9\r\nbaz")) {
		t.Errorf("unexpected saved bytes %q", data)
	}
}

func TestOpenSave_DetectedUTF16(t *testing.T) {
	original := []byte{0xFF, 0xFE, 'h', 0, 'i', 0}
	path := writeFile(t, "utf16.txt", original)
	cfg := config.Default()
	cfg.Buffer.Encoding = ""
	e := newTestEngine(t, cfg)

	buf, err := e.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if buf.Text() != "hi" {
		t.Errorf("expected hi, got %q", buf.Text())
	}
	if err := e.Save(buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !bytes.Equal(data, original) {
		t.Errorf("expected encoding and byte order mark preserved, got %v", data)
	}
}

func TestOpen_Errors(t *testing.T) {
	cfg := config.Default()
	cfg.Buffer.Encoding = ""
	e := newTestEngine(t, cfg)

	if _, err := e.Open(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
	bin := writeFile(t, "data.bin", []byte{0, 1, 2, 3})
	if _, err := e.Open(bin); err == nil {
		t.Error("expected error opening binary file")
	}
}

func TestOpenAndReload_ReadErrors(t *testing.T) {
	e := newTestEngine(t, nil)
	path := writeFile(t, "gone.txt", []byte("text"))

	buf, err := e.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	_, openErr := e.Open(path)
	_, reloadErr := e.Reload(buf, false)
	for name, err := range map[string]error{"Open": openErr, "Reload": reloadErr} {
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("%s: expected os.ErrNotExist, got %v", name, err)
			continue
		}
		if !strings.Contains(err.Error(), "reading "+path) {
			t.Errorf("%s: expected error to name the read of %s, got %q", name, path, err)
		}
	}
}

func TestSaveAs(t *testing.T) {
	e := newTestEngine(t, nil)
	buf, _ := e.NewBuffer("draft")

	if err := e.Save(buf); !errors.Is(err, ErrNoPath) {
		t.Errorf("expected ErrNoPath, got %v", err)
	}
	if _, err := e.Reload(buf, false); !errors.Is(err, ErrNoPath) {
		t.Errorf("expected ErrNoPath from Reload, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "draft.txt")
	if err := e.SaveAs(buf, path); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
	if got, _ := e.Path(buf); got != path {
		t.Errorf("expected path %q, got %q", path, got)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "draft" {
		t.Errorf("expected saved text, got %q", data)
	}

	if err := buf.SetText("final"); err != nil {
		t.Fatal(err)
	}
	if err := e.Save(buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "final" {
		t.Errorf("expected saved text, got %q", data)
	}
}

func TestReload(t *testing.T) {
	path := writeFile(t, "reload.txt", []byte("one"))
	e := newTestEngine(t, nil)

	buf, err := e.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("one two"), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := e.Reload(buf, false)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if p.ChangeCount() != 1 {
		t.Errorf("expected 1 change, got %d", p.ChangeCount())
	}
	if buf.Text() != "one two" {
		t.Errorf("expected reloaded text, got %q", buf.Text())
	}
	if buf.IsModified() {
		t.Error("expected reset buffer to be unmodified")
	}

	if err := os.WriteFile(path, []byte("one two three"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Reload(buf, true); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if buf.Text() != "one two three" {
		t.Errorf("expected reloaded text, got %q", buf.Text())
	}
	if !buf.IsModified() {
		t.Error("expected tracked reload to leave buffer modified")
	}
}

// ============================================================================
// Search
// ============================================================================

func TestFindWords_MaxResults(t *testing.T) {
	cfg := config.Default()
	cfg.Search.MaxResults = 2
	e := newTestEngine(t, cfg)
	buf, _ := e.NewBuffer("alpha beta gamma delta")

	if got := len(e.FindWords(buf, "a")); got != 2 {
		t.Errorf("expected 2 results, got %d", got)
	}
}

func TestFindWords_NoLimit(t *testing.T) {
	cfg := config.Default()
	cfg.Search.MaxResults = 0
	e := newTestEngine(t, cfg)
	buf, _ := e.NewBuffer("alpha beta gamma delta")

	if got := len(e.FindWords(buf, "a")); got != 4 {
		t.Errorf("expected every word with a zero limit, got %d", got)
	}
}

func TestFindWords_ExtraWordCharacters(t *testing.T) {
	cfg := config.Default()
	cfg.Search.ExtraWordCharacters = "-"
	e := newTestEngine(t, cfg)
	buf, _ := e.NewBuffer("foo-bar baz")

	got := e.FindWords(buf, "fb")
	if len(got) != 1 || got[0].Word != "foo-bar" {
		t.Errorf("expected foo-bar, got %+v", got)
	}
}

func TestErrorsReexported(t *testing.T) {
	e := newTestEngine(t, nil)
	buf, _ := e.NewBuffer("text")

	if _, err := buf.Find(Pattern{Source: "("}); !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("expected ErrInvalidPattern, got %v", err)
	}
	if _, err := buf.CharacterAtPosition(Point{Row: 5, Column: 0}); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}

	idx := buf.AddMarkerIndex()
	if _, err := buf.MarkerRange(idx, MarkerID(7)); !errors.Is(err, ErrUnknownMarkerID) {
		t.Errorf("expected ErrUnknownMarkerID, got %v", err)
	}
	if err := buf.DeserializeChanges([]byte{0xFF}); !errors.Is(err, ErrCorruptPatch) {
		t.Errorf("expected ErrCorruptPatch, got %v", err)
	}
}
