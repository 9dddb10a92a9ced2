package keys

import (
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"
)

// escTimeout is how long ReadKey waits for a follow-up byte after a bare
// ESC before concluding it really was the Escape key rather than the lead
// byte of an Alt-chord or a CSI/SS3 escape sequence. Per spec.md §5: "the
// escape-key timeout is entirely the key-decoder's concern" — this
// package, not the terminal or the Controller, owns that decision.
const escTimeout = 50 * time.Millisecond

// Reader turns a raw byte stream (a terminal's stdin) into decoded Keys.
// A background goroutine pumps bytes into a channel so ReadKey can apply
// the escape timeout with a select rather than a blocking read with no
// deadline — the editor's single event-loop goroutine still does exactly
// one blocking receive per key, preserving spec.md §5's single-threaded,
// cooperative scheduling model from the Controller's point of view.
type Reader struct {
	bytes chan byte
	errs  chan error
}

// NewReader starts the pump goroutine over r (an *os.File already in raw
// mode) and returns a ready Reader.
func NewReader(r Source) *Reader {
	kr := &Reader{bytes: make(chan byte, 256), errs: make(chan error, 1)}
	go kr.pump(r)
	return kr
}

// Source is the minimal surface NewReader needs — satisfied by *os.File.
type Source interface {
	Read(p []byte) (int, error)
}

func (kr *Reader) pump(r Source) {
	buf := make([]byte, 256)
	for {
		n, err := r.Read(buf)
		for i := 0; i < n; i++ {
			kr.bytes <- buf[i]
		}
		if err != nil {
			kr.errs <- err
			return
		}
	}
}

func (kr *Reader) readByte() (byte, bool) {
	select {
	case b := <-kr.bytes:
		return b, true
	case err := <-kr.errs:
		return kr.afterErr(err)
	}
}

func (kr *Reader) readByteTimeout(d time.Duration) (byte, bool) {
	select {
	case b := <-kr.bytes:
		return b, true
	case <-time.After(d):
		return 0, false
	case err := <-kr.errs:
		return kr.afterErr(err)
	}
}

// afterErr runs once the pump's final error has been received. The pump
// sends that error only after queueing every byte it read, so a byte still
// queued is returned first; the error is put back so later reads see it too.
func (kr *Reader) afterErr(err error) (byte, bool) {
	kr.errs <- err
	select {
	case b := <-kr.bytes:
		return b, true
	default:
		return 0, false
	}
}

// ReadKey blocks for the next decoded key, or returns ok=false once the
// underlying source is closed/erroring.
func (kr *Reader) ReadKey() (Key, bool) {
	b, ok := kr.readByte()
	if !ok {
		return Key{}, false
	}

	if b != 0x1b {
		return Decode(kr.syntheticEvent(kr.classifyPlain(b))), true
	}

	b2, gotMore := kr.readByteTimeout(escTimeout)
	if !gotMore {
		return Key{Kind: KindNamed, Name: Escape}, true
	}
	switch b2 {
	case '[':
		return kr.decodeCSI()
	case 'O':
		return kr.decodeSS3()
	default:
		// Alt-chord: ESC followed directly by the chorded byte.
		return Decode(tcell.NewEventKey(tcell.KeyRune, rune(b2), tcell.ModAlt)), true
	}
}

type plainKey struct {
	key  tcell.Key
	ch   rune
	mod  tcell.ModMask
}

func (kr *Reader) syntheticEvent(p plainKey) *tcell.EventKey {
	return tcell.NewEventKey(p.key, p.ch, p.mod)
}

// classifyPlain maps one non-ESC byte to the tcell key space: C0 control
// codes to their named/Ctrl key, everything else to a rune (reassembling
// multi-byte UTF-8 sequences when the lead byte calls for it).
func (kr *Reader) classifyPlain(b byte) plainKey {
	switch b {
	case 0x00:
		return plainKey{key: tcell.KeyCtrlSpace}
	case 0x09:
		return plainKey{key: tcell.KeyTab}
	case 0x0d:
		return plainKey{key: tcell.KeyEnter}
	case 0x7f, 0x08:
		return plainKey{key: tcell.KeyBackspace2}
	case 0x1f:
		return plainKey{key: tcell.KeyCtrlUnderscore}
	}
	if b >= 0x01 && b <= 0x1a {
		return plainKey{key: tcell.KeyCtrlA + tcell.Key(b-0x01)}
	}
	if b < 0x80 {
		return plainKey{key: tcell.KeyRune, ch: rune(b)}
	}
	return plainKey{key: tcell.KeyRune, ch: kr.decodeUTF8Rune(b)}
}

// decodeUTF8Rune reassembles a multi-byte UTF-8 codepoint given its lead
// byte, reading the expected number of continuation bytes from the pump.
func (kr *Reader) decodeUTF8Rune(lead byte) rune {
	var n int
	var r rune
	switch {
	case lead&0xe0 == 0xc0:
		n, r = 1, rune(lead&0x1f)
	case lead&0xf0 == 0xe0:
		n, r = 2, rune(lead&0x0f)
	case lead&0xf8 == 0xf0:
		n, r = 3, rune(lead&0x07)
	default:
		return rune(lead)
	}
	for i := 0; i < n; i++ {
		b, ok := kr.readByte()
		if !ok || b&0xc0 != 0x80 {
			return '�'
		}
		r = r<<6 | rune(b&0x3f)
	}
	return r
}

// decodeCSI parses the body of an ESC [ sequence: either a single final
// letter (arrows, Home/End/Backtab) or digits, optional ";"+modifier
// digits, then a final byte (xterm's extended navigation keys).
func (kr *Reader) decodeCSI() (Key, bool) {
	var params []byte
	for {
		b, ok := kr.readByteTimeout(escTimeout)
		if !ok {
			return Key{Kind: KindUnknown}, true
		}
		if b >= 0x40 && b <= 0x7e {
			return kr.finishCSI(params, b), true
		}
		params = append(params, b)
	}
}

func (kr *Reader) finishCSI(params []byte, final byte) Key {
	numParam, modParam := splitCSIParams(params)
	mod := modFromCSI(modParam)

	switch final {
	case 'A':
		return namedOrModified(tcell.KeyUp, AltArrowUp, mod)
	case 'B':
		return namedOrModified(tcell.KeyDown, AltArrowDown, mod)
	case 'C':
		return Key{Kind: KindNamed, Name: ArrowRight}
	case 'D':
		return Key{Kind: KindNamed, Name: ArrowLeft}
	case 'H':
		return Key{Kind: KindNamed, Name: Home}
	case 'F':
		return Key{Kind: KindNamed, Name: End}
	case 'Z':
		return Key{Kind: KindNamed, Name: ShiftTab}
	case '~':
		switch numParam {
		case 1, 7:
			return Key{Kind: KindNamed, Name: Home}
		case 4, 8:
			return Key{Kind: KindNamed, Name: End}
		case 3:
			if mod&tcell.ModAlt != 0 {
				return Key{Kind: KindNamed, Name: AltDelete}
			}
			return Key{Kind: KindNamed, Name: Delete}
		case 5:
			return Key{Kind: KindNamed, Name: PageUp}
		case 6:
			return Key{Kind: KindNamed, Name: PageDown}
		}
	}
	return Key{Kind: KindUnknown}
}

func namedOrModified(plain tcell.Key, altName Name, mod tcell.ModMask) Key {
	if mod&tcell.ModAlt != 0 {
		return Key{Kind: KindNamed, Name: altName}
	}
	switch plain {
	case tcell.KeyUp:
		return Key{Kind: KindNamed, Name: ArrowUp}
	case tcell.KeyDown:
		return Key{Kind: KindNamed, Name: ArrowDown}
	}
	return Key{Kind: KindUnknown}
}

// splitCSIParams parses "n" or "n;m" into (n, m), defaulting absent
// fields to 0/1 per xterm convention (m defaults to 1 = no modifier).
func splitCSIParams(params []byte) (n, m int) {
	m = 1
	parts := splitBytes(params, ';')
	if len(parts) > 0 {
		if v, err := strconv.Atoi(parts[0]); err == nil {
			n = v
		}
	}
	if len(parts) > 1 {
		if v, err := strconv.Atoi(parts[1]); err == nil {
			m = v
		}
	}
	return n, m
}

func splitBytes(b []byte, sep byte) []string {
	var out []string
	start := 0
	for i, c := range b {
		if c == sep {
			out = append(out, string(b[start:i]))
			start = i + 1
		}
	}
	out = append(out, string(b[start:]))
	return out
}

// modFromCSI maps xterm's 1-based modifier parameter to a ModMask: 2=Shift,
// 3=Alt, 5=Ctrl, and their OR-combinations (the encoding is
// 1+bitmask(Shift=1,Alt=2,Ctrl=4)).
func modFromCSI(m int) tcell.ModMask {
	if m <= 1 {
		return tcell.ModNone
	}
	bits := m - 1
	var mod tcell.ModMask
	if bits&1 != 0 {
		mod |= tcell.ModShift
	}
	if bits&2 != 0 {
		mod |= tcell.ModAlt
	}
	if bits&4 != 0 {
		mod |= tcell.ModCtrl
	}
	return mod
}

// decodeSS3 handles ESC O <letter>, the SS3-prefixed form some terminals
// (notably xterm in application-cursor-keys mode) use for arrows/Home/End.
func (kr *Reader) decodeSS3() (Key, bool) {
	b, ok := kr.readByteTimeout(escTimeout)
	if !ok {
		return Key{Kind: KindUnknown}, true
	}
	switch b {
	case 'A':
		return Key{Kind: KindNamed, Name: ArrowUp}, true
	case 'B':
		return Key{Kind: KindNamed, Name: ArrowDown}, true
	case 'C':
		return Key{Kind: KindNamed, Name: ArrowRight}, true
	case 'D':
		return Key{Kind: KindNamed, Name: ArrowLeft}, true
	case 'H':
		return Key{Kind: KindNamed, Name: Home}, true
	case 'F':
		return Key{Kind: KindNamed, Name: End}, true
	}
	return Key{Kind: KindUnknown}, true
}
