package textio

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadFileFS reads whole files. fs.ReadFileFS and fstest.MapFS satisfy it.
type ReadFileFS interface {
	ReadFile(name string) ([]byte, error)
}

type osFS struct{}

func (osFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// OS reads from the operating system's file system.
var OS ReadFileFS = osFS{}

// ReadText reads path from fsys and decodes it to a string.
//
// A byte order mark overrides the named encoding and is stripped. An empty
// encoding name detects the charset with DetectEncoding and rejects
// binary content with ErrBinary.
func ReadText(fsys ReadFileFS, path, encodingName string) (string, error) {
	text, _, err := ReadTextEncoding(fsys, path, encodingName)
	return text, err
}

// ReadTextEncoding is ReadText that also returns the encoding name used,
// which is the detected one when encodingName is empty.
func ReadTextEncoding(fsys ReadFileFS, path, encodingName string) (string, string, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", path, err)
	}
	text, used, err := decode(data, encodingName)
	if err != nil {
		return "", "", fmt.Errorf("decoding %s: %w", path, err)
	}
	return text, used, nil
}

// Decode converts data in the named encoding to a string.
// See ReadText for the handling of empty names and byte order marks.
func Decode(data []byte, encodingName string) (string, error) {
	text, _, err := decode(data, encodingName)
	return text, err
}

func decode(data []byte, encodingName string) (string, string, error) {
	if encodingName == "" {
		encodingName = DetectEncoding(data)
		if encodingName != UTF16LEBOM && encodingName != UTF16BEBOM && IsBinary(data) {
			return "", "", ErrBinary
		}
	}
	enc, err := LookupEncoding(encodingName)
	if err != nil {
		return "", "", err
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(enc.NewDecoder()), data)
	if err != nil {
		return "", "", err
	}
	return string(out), encodingName, nil
}

// Encode converts text to the named encoding. Characters the charset
// cannot represent are an error.
func Encode(text, encodingName string) ([]byte, error) {
	enc, err := LookupEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	out, _, err := transform.Bytes(enc.NewEncoder(), []byte(text))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WriteText encodes text and replaces path with it. The data goes to a
// temporary file in the same directory which is then renamed over path,
// so readers never observe a partial write.
func WriteText(path, text, encodingName string) error {
	data, err := Encode(text, encodingName)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	name := tmp.Name()
	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("writing %s: %w", path, err)
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
