package textio

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/logging"
)

func TestNormalizeEncoding(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"utf8", "UTF-8"},
		{"UTF-8", "UTF-8"},
		{"utf_16le", "UTF-16LE"},
		{"ucs2", "UCS-2"},
		{"iso 8859-1", "ISO-8859-1"},
		{"ISO_8859_15", "ISO-8859-15"},
		{"iso2022jp", "ISO-2022JP"},
		{"windows1252", "WINDOWS-1252"},
		{"koi8r", "KOI8-R"},
		{"eucjp", "EUC-JP"},
		{"Shift_JIS", "SHIFT_JIS"},
		{"shift-jis", "SHIFT_JIS"},
		{"cp1252", "CP1252"},
		{"ascii", "ASCII"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeEncoding(tt.input); got != tt.want {
				t.Errorf("NormalizeEncoding(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLookupEncoding(t *testing.T) {
	for _, name := range []string{"", "utf8", "utf-16le", "latin1", "iso88591", "windows-1252", "shiftjis", "koi8-r", "utf-8-bom"} {
		if _, err := LookupEncoding(name); err != nil {
			t.Errorf("LookupEncoding(%q) failed: %v", name, err)
		}
	}
	if _, err := LookupEncoding("klingon"); !errors.Is(err, ErrUnknownEncoding) {
		t.Errorf("expected ErrUnknownEncoding, got %v", err)
	}
}

func TestDetectEncoding(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    string
	}{
		{"empty", nil, UTF8},
		{"ascii", []byte("hello"), UTF8},
		{"utf8", []byte("héllo"), UTF8},
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, "hi"...), UTF8BOM},
		{"utf16le bom", []byte{0xFF, 0xFE, 'h', 0}, UTF16LEBOM},
		{"utf16be bom", []byte{0xFE, 0xFF, 0, 'h'}, UTF16BEBOM},
		{"latin1", []byte{'c', 'a', 'f', 0xE9}, Latin1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectEncoding(tt.content); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestIsBinary(t *testing.T) {
	if IsBinary([]byte("plain\ttext\r\n")) {
		t.Error("expected text not to be binary")
	}
	if !IsBinary([]byte{'a', 0, 'b'}) {
		t.Error("expected NUL byte to mark binary")
	}
	if !IsBinary([]byte{1, 2, 3, 4, 'a'}) {
		t.Error("expected control characters to mark binary")
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		encoding string
		want     string
	}{
		{"utf8", []byte("héllo"), "utf8", "héllo"},
		{"utf8 strips bom", append([]byte{0xEF, 0xBB, 0xBF}, "hi"...), "utf8", "hi"},
		{"latin1", []byte{'c', 'a', 'f', 0xE9}, "latin1", "café"},
		{"windows1252 euro", []byte{0x80}, "windows-1252", "€"},
		{"utf16 bom overrides name", []byte{0xFF, 0xFE, 'h', 0, 'i', 0}, "utf8", "hi"},
		{"utf16be", []byte{0, 'h', 0, 'i'}, "utf-16be", "hi"},
		{"detected latin1", []byte{'c', 'a', 'f', 0xE9}, "", "café"},
		{"detected utf16le", []byte{0xFF, 0xFE, 'o', 0, 'k', 0}, "", "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.data, tt.encoding)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDecode_Binary(t *testing.T) {
	if _, err := Decode([]byte{'a', 0, 'b'}, ""); !errors.Is(err, ErrBinary) {
		t.Errorf("expected ErrBinary, got %v", err)
	}
	// An explicit encoding skips the check.
	if _, err := Decode([]byte{'a', 0, 'b'}, "utf8"); err != nil {
		t.Errorf("expected explicit encoding to decode, got %v", err)
	}
}

func TestEncode(t *testing.T) {
	got, err := Encode("café", "latin1")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !bytes.Equal(got, []byte{'c', 'a', 'f', 0xE9}) {
		t.Errorf("unexpected latin1 bytes %v", got)
	}

	got, err = Encode("hi", "utf-16")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !bytes.Equal(got, []byte{0xFE, 0xFF, 0, 'h', 0, 'i'}) {
		t.Errorf("expected utf-16 with bom, got %v", got)
	}

	got, err = Encode("hi", UTF16LEBOM)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !bytes.Equal(got, []byte{0xFF, 0xFE, 'h', 0, 'i', 0}) {
		t.Errorf("expected utf-16le with bom, got %v", got)
	}

	got, err = Encode("hi", "utf-8-bom")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !bytes.Equal(got, []byte{0xEF, 0xBB, 0xBF, 'h', 'i'}) {
		t.Errorf("expected utf-8 with bom, got %v", got)
	}

	if _, err := Encode("€", "latin1"); err == nil {
		t.Error("expected error for unencodable character")
	}
}

func TestReadText(t *testing.T) {
	fsys := fstest.MapFS{
		"doc.txt":    {Data: []byte{'n', 'a', 0xEF, 'v', 'e'}},
		"utf8.txt":   {Data: []byte("plain")},
		"binary.bin": {Data: []byte{0, 1, 2}},
	}

	got, err := ReadText(fsys, "doc.txt", "iso-8859-1")
	if err != nil {
		t.Fatalf("ReadText failed: %v", err)
	}
	if got != "naïve" {
		t.Errorf("expected naïve, got %q", got)
	}

	if _, err := ReadText(fsys, "missing.txt", ""); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
	if _, err := ReadText(fsys, "binary.bin", ""); !errors.Is(err, ErrBinary) {
		t.Errorf("expected ErrBinary, got %v", err)
	}
	if _, err := ReadText(fsys, "utf8.txt", "martian"); !errors.Is(err, ErrUnknownEncoding) {
		t.Errorf("expected ErrUnknownEncoding, got %v", err)
	}
}

func TestReadTextEncoding(t *testing.T) {
	fsys := fstest.MapFS{
		"latin1.txt": {Data: []byte{'c', 'a', 'f', 0xE9}},
		"utf16.txt":  {Data: []byte{0xFE, 0xFF, 0, 'h', 0, 'i'}},
	}
	tests := []struct {
		path     string
		encoding string
		wantText string
		wantEnc  string
	}{
		{"latin1.txt", "", "café", Latin1},
		{"latin1.txt", "windows-1252", "café", "windows-1252"},
		{"utf16.txt", "", "hi", UTF16BEBOM},
	}
	for _, tt := range tests {
		t.Run(tt.path+"/"+tt.encoding, func(t *testing.T) {
			text, enc, err := ReadTextEncoding(fsys, tt.path, tt.encoding)
			if err != nil {
				t.Fatalf("ReadTextEncoding failed: %v", err)
			}
			if text != tt.wantText {
				t.Errorf("expected text %q, got %q", tt.wantText, text)
			}
			if enc != tt.wantEnc {
				t.Errorf("expected encoding %q, got %q", tt.wantEnc, enc)
			}
		})
	}

	if _, _, err := ReadTextEncoding(fsys, "missing.txt", ""); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestWriteText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	if err := WriteText(path, "café\n", "latin1"); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte{'c', 'a', 'f', 0xE9, '\n'}) {
		t.Errorf("unexpected bytes %v", data)
	}

	got, err := ReadText(OS, path, "latin1")
	if err != nil {
		t.Fatalf("ReadText failed: %v", err)
	}
	if got != "café\n" {
		t.Errorf("expected round trip, got %q", got)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the target file, found %d entries", len(entries))
	}
}

func TestWriteText_KeepsOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keep.txt")
	if err := os.WriteFile(path, []byte("original"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := WriteText(path, "€", "latin1"); err == nil {
		t.Fatal("expected encode error")
	}
	data, _ := os.ReadFile(path)
	if string(data) != "original" {
		t.Errorf("expected file untouched, got %q", data)
	}
}

func TestFollower_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "follow.txt")
	if err := os.WriteFile(path, []byte("one\r\ntwo"), 0o644); err != nil {
		t.Fatal(err)
	}

	buf := buffer.NewFromString("one")
	f, err := NewFollower(path, buf, WithFollowerLogger(logging.Nop()))
	if err != nil {
		t.Fatal(err)
	}
	p, err := f.Reload()
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if p.ChangeCount() != 1 {
		t.Errorf("expected 1 change, got %d", p.ChangeCount())
	}
	if buf.Text() != "one\ntwo" {
		t.Errorf("expected reloaded text, got %q", buf.Text())
	}
}

func TestFollower_Run(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "follow.txt")
	if err := os.WriteFile(path, []byte("alpha"), 0o644); err != nil {
		t.Fatal(err)
	}

	buf := buffer.NewFromString("alpha")
	reloads := make(chan ReloadEvent, 8)
	f, err := NewFollower(path, buf,
		WithDebounce(20*time.Millisecond),
		WithFollowerLogger(logging.Nop()),
		WithOnReload(func(ev ReloadEvent) { reloads <- ev }),
	)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	// Give the watcher time to register.
	time.Sleep(50 * time.Millisecond)
	if err := WriteText(path, "alpha beta", "utf8"); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-reloads:
		if ev.Err != nil {
			t.Fatalf("reload failed: %v", ev.Err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
	if buf.Text() != "alpha beta" {
		t.Errorf("expected reloaded text, got %q", buf.Text())
	}

	if err := f.Run(ctx); !errors.Is(err, ErrFollowerRunning) {
		t.Errorf("expected ErrFollowerRunning, got %v", err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected nil on cancel, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("follower did not stop")
	}
}
