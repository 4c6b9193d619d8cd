package patch

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/dshills/textcore/internal/engine/point"
)

// Serialized patches start with a magic tag and a format version.
var magic = []byte("TCPT")

const formatVersion = 1

const (
	flagOldText = 1 << iota
	flagNewText
)

// Serialize encodes the patch in a compact binary form. The hunk order and
// texts survive a round trip through Deserialize.
func (p *Patch) Serialize() ([]byte, error) {
	buf := make([]byte, 0, 16+len(p.hunks)*16)
	buf = append(buf, magic...)
	buf = append(buf, formatVersion)
	buf = binary.AppendUvarint(buf, uint64(len(p.hunks)))
	for _, h := range p.hunks {
		for _, pt := range [4]point.Point{h.OldStart, h.OldEnd, h.NewStart, h.NewEnd} {
			if pt.Row < 0 || pt.Column < 0 {
				return nil, fmt.Errorf("serialize %s: negative coordinate", h)
			}
			buf = binary.AppendUvarint(buf, uint64(pt.Row))
			buf = binary.AppendUvarint(buf, uint64(pt.Column))
		}
		var flags byte
		if h.OldText != nil {
			flags |= flagOldText
		}
		if h.NewText != nil {
			flags |= flagNewText
		}
		buf = append(buf, flags)
		for _, t := range [2]*string{h.OldText, h.NewText} {
			if t != nil {
				buf = binary.AppendUvarint(buf, uint64(len(*t)))
				buf = append(buf, *t...)
			}
		}
	}
	return buf, nil
}

// Deserialize decodes a patch produced by Serialize.
func Deserialize(data []byte) (*Patch, error) {
	if !bytes.HasPrefix(data, magic) || len(data) < len(magic)+1 {
		return nil, fmt.Errorf("%w: missing header", ErrCorruptPatch)
	}
	if v := data[len(magic)]; v != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptPatch, v)
	}
	r := bytes.NewReader(data[len(magic)+1:])

	count, err := binary.ReadUvarint(r)
	if err != nil || count > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: bad hunk count", ErrCorruptPatch)
	}

	p := &Patch{hunks: make([]Hunk, 0, count)}
	for i := uint64(0); i < count; i++ {
		var pts [4]point.Point
		for j := range pts {
			row, err1 := binary.ReadUvarint(r)
			col, err2 := binary.ReadUvarint(r)
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("%w: truncated hunk %d", ErrCorruptPatch, i)
			}
			pts[j] = point.Point{Row: int(row), Column: int(col)}
		}
		flags, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: truncated hunk %d", ErrCorruptPatch, i)
		}
		h := Hunk{OldStart: pts[0], OldEnd: pts[1], NewStart: pts[2], NewEnd: pts[3]}
		if flags&flagOldText != 0 {
			if h.OldText, err = readText(r); err != nil {
				return nil, fmt.Errorf("%w: hunk %d old text", ErrCorruptPatch, i)
			}
		}
		if flags&flagNewText != 0 {
			if h.NewText, err = readText(r); err != nil {
				return nil, fmt.Errorf("%w: hunk %d new text", ErrCorruptPatch, i)
			}
		}
		if n := len(p.hunks); n > 0 && !p.hunks[n-1].NewEnd.Before(h.NewStart) {
			return nil, fmt.Errorf("%w: hunk %d out of order", ErrCorruptPatch, i)
		}
		p.hunks = append(p.hunks, h)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptPatch, r.Len())
	}
	return p, nil
}

func readText(r *bytes.Reader) (*string, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	if n > uint64(r.Len()) {
		return nil, io.ErrUnexpectedEOF
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return textPtr(string(b)), nil
}
