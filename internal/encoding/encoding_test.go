package encoding

import "testing"

func TestDecodeUTF8NoBOM(t *testing.T) {
	data := []byte("hello\nworld\n")
	text, d, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Kind != KindUTF8 || d.LineEnding != LF {
		t.Fatalf("got kind=%d ending=%d", d.Kind, d.LineEnding)
	}
	if string(text) != "hello\nworld\n" {
		t.Fatalf("got %q", text)
	}
}

func TestDecodeUTF8BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("hi\n")...)
	text, d, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Kind != KindUTF8BOM {
		t.Fatalf("expected KindUTF8BOM, got %d", d.Kind)
	}
	if string(text) != "hi\n" {
		t.Fatalf("got %q", text)
	}
}

func TestDecodeCRLFNormalizesToLF(t *testing.T) {
	data := []byte("one\r\ntwo\r\n")
	text, d, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.LineEnding != CRLF {
		t.Fatalf("expected CRLF detected, got %d", d.LineEnding)
	}
	if string(text) != "one\ntwo\n" {
		t.Fatalf("got %q", text)
	}
}

func TestEncodeRoundTripsCRLF(t *testing.T) {
	original := []byte("a\r\nb\r\nc\r\n")
	text, d, err := Decode(original)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	out, err := Encode(text, d)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(out) != string(original) {
		t.Fatalf("roundtrip mismatch: got %q want %q", out, original)
	}
}

func TestEncodeRoundTripsUTF8BOM(t *testing.T) {
	original := append([]byte{0xEF, 0xBB, 0xBF}, []byte("x\ny\n")...)
	text, d, err := Decode(original)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	out, err := Encode(text, d)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(out) != string(original) {
		t.Fatalf("roundtrip mismatch: got %q want %q", out, original)
	}
}

func TestDecodeUTF16LE(t *testing.T) {
	data := []byte{0xFF, 0xFE, 'h', 0x00, 'i', 0x00, '\n', 0x00}
	text, d, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Kind != KindUTF16LE {
		t.Fatalf("expected KindUTF16LE, got %d", d.Kind)
	}
	if string(text) != "hi\n" {
		t.Fatalf("got %q", text)
	}
}

func TestDecodeBinaryRejected(t *testing.T) {
	data := []byte{0x00, 0x01, 0x02, 0xff, 0x00, 0x10}
	if _, _, err := Decode(data); err != ErrBinaryFile {
		t.Fatalf("expected ErrBinaryFile, got %v", err)
	}
}

func TestDecodeLatin1Fallback(t *testing.T) {
	// 0xE9 alone is invalid UTF-8 but valid Latin-1 ('é').
	data := []byte{'c', 'a', 'f', 0xE9, '\n'}
	text, d, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Kind != KindCharmap {
		t.Fatalf("expected KindCharmap, got %d", d.Kind)
	}
	if len(text) == 0 {
		t.Fatalf("expected decoded text")
	}
}
