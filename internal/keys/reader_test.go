package keys

import (
	"io"
	"testing"
)

// fakeSource hands out its whole buffer on the first Read, then reports
// io.EOF — enough to drive ReadKey through one full escape sequence
// without a real terminal, and without the timeout path ever firing for
// bytes that are already buffered.
type fakeSource struct {
	data []byte
	pos  int
}

func (f *fakeSource) Read(p []byte) (int, error) {
	if f.pos >= len(f.data) {
		return 0, io.EOF
	}
	n := copy(p, f.data[f.pos:])
	f.pos += n
	return n, nil
}

func TestReaderPlainChar(t *testing.T) {
	r := NewReader(&fakeSource{data: []byte("x")})
	k, ok := r.ReadKey()
	if !ok || k.Kind != KindChar || k.Char != 'x' {
		t.Fatalf("got %+v ok=%v", k, ok)
	}
}

func TestReaderCtrlByte(t *testing.T) {
	r := NewReader(&fakeSource{data: []byte{0x01}}) // Ctrl-A
	k, ok := r.ReadKey()
	if !ok || k.Kind != KindCtrl || k.Ctrl != 'a' {
		t.Fatalf("got %+v ok=%v", k, ok)
	}
}

func TestReaderBackspace(t *testing.T) {
	r := NewReader(&fakeSource{data: []byte{0x7f}})
	k, ok := r.ReadKey()
	if !ok || k.Kind != KindNamed || k.Name != Backspace {
		t.Fatalf("got %+v ok=%v", k, ok)
	}
}

func TestReaderUTF8MultiByte(t *testing.T) {
	// U+65E5 "日", UTF-8: E6 97 A5
	r := NewReader(&fakeSource{data: []byte{0xe6, 0x97, 0xa5}})
	k, ok := r.ReadKey()
	if !ok || k.Kind != KindCodepoint || k.Cp != '日' {
		t.Fatalf("got %+v ok=%v", k, ok)
	}
}

func TestReaderCSIArrow(t *testing.T) {
	r := NewReader(&fakeSource{data: []byte{0x1b, '[', 'A'}})
	k, ok := r.ReadKey()
	if !ok || k.Kind != KindNamed || k.Name != ArrowUp {
		t.Fatalf("got %+v ok=%v", k, ok)
	}
}

func TestReaderCSIAltArrow(t *testing.T) {
	// ESC [ 1 ; 3 A is xterm's Alt+Up (modifier param 3 = 1+Alt(2)).
	r := NewReader(&fakeSource{data: []byte("\x1b[1;3A")})
	k, ok := r.ReadKey()
	if !ok || k.Kind != KindNamed || k.Name != AltArrowUp {
		t.Fatalf("got %+v ok=%v", k, ok)
	}
}

func TestReaderCSIDelete(t *testing.T) {
	r := NewReader(&fakeSource{data: []byte("\x1b[3~")})
	k, ok := r.ReadKey()
	if !ok || k.Kind != KindNamed || k.Name != Delete {
		t.Fatalf("got %+v ok=%v", k, ok)
	}
}

func TestReaderCSIBacktab(t *testing.T) {
	r := NewReader(&fakeSource{data: []byte("\x1b[Z")})
	k, ok := r.ReadKey()
	if !ok || k.Kind != KindNamed || k.Name != ShiftTab {
		t.Fatalf("got %+v ok=%v", k, ok)
	}
}

func TestReaderSS3Home(t *testing.T) {
	r := NewReader(&fakeSource{data: []byte("\x1bOH")})
	k, ok := r.ReadKey()
	if !ok || k.Kind != KindNamed || k.Name != Home {
		t.Fatalf("got %+v ok=%v", k, ok)
	}
}

func TestReaderAltChord(t *testing.T) {
	r := NewReader(&fakeSource{data: []byte{0x1b, 'f'}}) // Alt-f
	k, ok := r.ReadKey()
	if !ok || k.Kind != KindAlt || k.Alt != 'f' {
		t.Fatalf("got %+v ok=%v", k, ok)
	}
}

// TestReaderBareEscape relies on the source ending immediately after the
// ESC byte: the pump's io.EOF lands on the errs channel before
// escTimeout elapses, so readByteTimeout returns promptly rather than
// this test actually waiting out the timeout.
func TestReaderBareEscape(t *testing.T) {
	r := NewReader(&fakeSource{data: []byte{0x1b}})
	k, ok := r.ReadKey()
	if !ok || k.Kind != KindNamed || k.Name != Escape {
		t.Fatalf("got %+v ok=%v", k, ok)
	}
}

func TestReaderEOFReturnsFalse(t *testing.T) {
	r := NewReader(&fakeSource{})
	_, ok := r.ReadKey()
	if ok {
		t.Fatal("expected ok=false on an empty, already-closed source")
	}
}

func TestReaderSequenceOfKeys(t *testing.T) {
	r := NewReader(&fakeSource{data: []byte("ab\x1b[C")})
	want := []struct {
		kind Kind
		char byte
		name Name
	}{
		{kind: KindChar, char: 'a'},
		{kind: KindChar, char: 'b'},
		{kind: KindNamed, name: ArrowRight},
	}
	for _, w := range want {
		k, ok := r.ReadKey()
		if !ok {
			t.Fatalf("unexpected ok=false, want kind=%v", w.kind)
		}
		if k.Kind != w.kind || (w.kind == KindChar && k.Char != w.char) || (w.kind == KindNamed && k.Name != w.name) {
			t.Fatalf("got %+v, want kind=%v char=%q name=%v", k, w.kind, w.char, w.name)
		}
	}
}
