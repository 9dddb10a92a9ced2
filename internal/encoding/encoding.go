// Package encoding is the default implementation of the load/save
// normalization collaborator spec.md §1 and §6 describe as external: BOM
// sniffing for UTF-8/UTF-16, a small table of legacy 8-bit charmaps, and
// CRLF/CR/LF line-ending detection, so load_from_file/save are runnable
// end to end. It is a default implementation (SPEC_FULL.md §C.4) whose
// Decode and Encode internal/editor calls directly — not claimed to be
// exhaustive.
package encoding

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	gdencoding "github.com/gdamore/encoding"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Kind names how the on-disk bytes were encoded.
type Kind int

const (
	KindUTF8 Kind = iota
	KindUTF8BOM
	KindUTF16LE
	KindUTF16BE
	KindCharmap
)

// LineEnding names the on-disk line terminator convention.
type LineEnding int

const (
	LF LineEnding = iota
	CRLF
	CR
)

// Detected records what Decode found, so Encode can reverse it exactly.
type Detected struct {
	Kind       Kind
	CharmapName string
	charmap    encoding.Encoding
	LineEnding LineEnding
}

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16leBOM = []byte{0xFF, 0xFE}
	utf16beBOM = []byte{0xFE, 0xFF}
)

// charmapTable is the small fixed set of legacy 8-bit encodings this
// package will fall back to for content that isn't valid UTF-8 and has no
// BOM. gdamore/encoding supplies these; the teacher doesn't use this
// library, but tcell (which the teacher and this module both depend on)
// pulls it in transitively for terminal charset support, so it's already
// part of the dependency graph this package exercises directly.
var charmapTable = []struct {
	name string
	enc  encoding.Encoding
}{
	{"ISO-8859-1", gdencoding.ISO8859_1},
	{"ISO-8859-15", gdencoding.ISO8859_15},
	{"CP437", gdencoding.CP437},
	{"KOI8-R", gdencoding.KOI8R},
}

// Decode normalizes raw file bytes into UTF-8 with LF newlines, detecting
// encoding and line ending along the way.
func Decode(data []byte) ([]byte, Detected, error) {
	switch {
	case bytes.HasPrefix(data, utf8BOM):
		text := data[len(utf8BOM):]
		return normalizeLineEndings(text), Detected{Kind: KindUTF8BOM, LineEnding: detectLineEnding(text)}, nil
	case bytes.HasPrefix(data, utf16leBOM):
		return decodeUTF16(data, unicode.LittleEndian, KindUTF16LE)
	case bytes.HasPrefix(data, utf16beBOM):
		return decodeUTF16(data, unicode.BigEndian, KindUTF16BE)
	}

	if utf8OK(data) {
		return normalizeLineEndings(data), Detected{Kind: KindUTF8, LineEnding: detectLineEnding(data)}, nil
	}
	if looksBinary(data) {
		return nil, Detected{}, ErrBinaryFile
	}
	for _, cm := range charmapTable {
		if out, err := cm.enc.NewDecoder().Bytes(data); err == nil {
			return normalizeLineEndings(out), Detected{Kind: KindCharmap, CharmapName: cm.name, charmap: cm.enc, LineEnding: detectLineEnding(data)}, nil
		}
	}
	return nil, Detected{}, ErrBinaryFile
}

func decodeUTF16(data []byte, endian unicode.Endianness, kind Kind) ([]byte, Detected, error) {
	enc := unicode.UTF16(endian, unicode.ExpectBOM)
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, Detected{}, fmt.Errorf("encoding: decode utf-16: %w", err)
	}
	return normalizeLineEndings(out), Detected{Kind: kind, LineEnding: detectLineEnding(out)}, nil
}

func utf8OK(data []byte) bool {
	return utf8.Valid(data)
}

// looksBinary uses the common NUL-byte heuristic: text files essentially
// never contain a NUL byte.
func looksBinary(data []byte) bool {
	n := len(data)
	if n > 8000 {
		n = 8000
	}
	return bytes.IndexByte(data[:n], 0) >= 0
}

func detectLineEnding(text []byte) LineEnding {
	idx := bytes.IndexByte(text, '\n')
	if idx > 0 && text[idx-1] == '\r' {
		return CRLF
	}
	if idx < 0 && bytes.IndexByte(text, '\r') >= 0 {
		return CR
	}
	return LF
}

func normalizeLineEndings(text []byte) []byte {
	if bytes.IndexByte(text, '\r') < 0 {
		return text
	}
	out := make([]byte, 0, len(text))
	for i := 0; i < len(text); i++ {
		if text[i] == '\r' {
			if i+1 < len(text) && text[i+1] == '\n' {
				continue
			}
			out = append(out, '\n')
			continue
		}
		out = append(out, text[i])
	}
	return out
}

// Encode reverses Decode's normalization: it restores the original line
// ending convention, then re-encodes to the original byte encoding.
func Encode(text []byte, d Detected) ([]byte, error) {
	switch d.LineEnding {
	case CRLF:
		text = bytes.ReplaceAll(text, []byte{'\n'}, []byte{'\r', '\n'})
	case CR:
		text = bytes.ReplaceAll(text, []byte{'\n'}, []byte{'\r'})
	}

	switch d.Kind {
	case KindUTF8:
		return text, nil
	case KindUTF8BOM:
		return append(append([]byte{}, utf8BOM...), text...), nil
	case KindUTF16LE:
		return encodeUTF16(text, unicode.LittleEndian)
	case KindUTF16BE:
		return encodeUTF16(text, unicode.BigEndian)
	case KindCharmap:
		out, err := d.charmap.NewEncoder().Bytes(text)
		if err != nil {
			return nil, fmt.Errorf("encoding: encode %s: %w", d.CharmapName, err)
		}
		return out, nil
	}
	return text, nil
}

func encodeUTF16(text []byte, endian unicode.Endianness) ([]byte, error) {
	enc := unicode.UTF16(endian, unicode.UseBOM)
	out, _, err := transform.Bytes(enc.NewEncoder(), text)
	if err != nil {
		return nil, fmt.Errorf("encoding: encode utf-16: %w", err)
	}
	return out, nil
}
