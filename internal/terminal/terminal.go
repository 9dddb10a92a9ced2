// Package terminal implements the capability contract spec.md §5
// describes: raw-mode entry/exit, dimension queries with change
// notification, cursor positioning/visibility, scroll-region control, and
// buffered ANSI output. Grounded on the teacher's internal/tui (a thin
// lifecycle wrapper — New/Close/Clear/Show/Size — around the terminal
// library), but the drawing side is retargeted from tcell.Screen's
// cell-grid model to raw ANSI byte emission via golang.org/x/term, since
// SPEC_FULL.md's View does its own line-level diffing and wants direct
// control over scroll-region escape sequences tcell's screen abstraction
// doesn't expose. tcell itself is kept, but only as the key-decoding
// collaborator in internal/keys — this package owns the screen.
package terminal

import (
	"bufio"
	"bytes"
	"fmt"
	"os"

	"golang.org/x/term"
)

// Terminal is a buffered ANSI writer over a raw-mode terminal, plus the
// dimension/capability queries the View needs to lay out a frame.
type Terminal struct {
	in     *os.File
	out    *os.File
	w      *bufio.Writer
	state  *term.State
	width  int
	height int

	// testBuf is non-nil only for Terminals built by ForTest.
	testBuf *bytes.Buffer
}

// Open puts stdin/stdout into raw mode and returns a ready Terminal.
func Open() (*Terminal, error) {
	in, out := os.Stdin, os.Stdout
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("terminal: stdin is not a tty")
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("terminal: enter raw mode: %w", err)
	}
	width, height, err := term.GetSize(int(out.Fd()))
	if err != nil {
		width, height = 80, 24
	}
	t := &Terminal{in: in, out: out, w: bufio.NewWriterSize(out, 64*1024), state: state, width: width, height: height}
	t.w.WriteString("\x1b[?1049h") // alternate screen
	t.w.Flush()
	return t, nil
}

// Close restores the original terminal mode and leaves the alternate
// screen, flushing any buffered output first.
func (t *Terminal) Close() error {
	t.w.WriteString("\x1b[?25h\x1b[?1049l")
	t.w.Flush()
	if t.state != nil {
		return term.Restore(int(t.in.Fd()), t.state)
	}
	return nil
}

// Size returns the last-known terminal dimensions.
func (t *Terminal) Size() (width, height int) { return t.width, t.height }

// Refresh re-queries the OS for the current dimensions, reporting whether
// they changed (the caller's SIGWINCH handler calls this, then forces a
// full-frame redraw on true).
func (t *Terminal) Refresh() (changed bool, err error) {
	w, h, err := term.GetSize(int(t.out.Fd()))
	if err != nil {
		return false, fmt.Errorf("terminal: query size: %w", err)
	}
	changed = w != t.width || h != t.height
	t.width, t.height = w, h
	return changed, nil
}

// Write buffers raw bytes for the next Flush. Bytes reach the terminal
// earlier only when the buffer (64 KiB for a Terminal from Open) fills, so
// a frame that fits in it can be assembled as several small Write calls
// without tearing on a signal between them.
func (t *Terminal) Write(p []byte) (int, error) { return t.w.Write(p) }

// Flush sends everything buffered since the last Flush to the terminal.
func (t *Terminal) Flush() error { return t.w.Flush() }

// MoveCursor positions the cursor at 1-based terminal coordinates derived
// from 0-based (col, row).
func (t *Terminal) MoveCursor(col, row int) { fmt.Fprintf(t.w, "\x1b[%d;%dH", row+1, col+1) }

// HideCursor and ShowCursor toggle cursor visibility.
func (t *Terminal) HideCursor() { t.w.WriteString("\x1b[?25l") }
func (t *Terminal) ShowCursor() { t.w.WriteString("\x1b[?25h") }

// SetScrollRegion restricts scrolling to [top, bottom] (0-based,
// inclusive), enabling ScrollUp/ScrollDown to move only that band.
func (t *Terminal) SetScrollRegion(top, bottom int) {
	fmt.Fprintf(t.w, "\x1b[%d;%dr", top+1, bottom+1)
}

// ResetScrollRegion restores the scroll region to the full screen.
func (t *Terminal) ResetScrollRegion() { t.w.WriteString("\x1b[r") }

// ScrollUp and ScrollDown scroll the active region by n lines, letting
// the View redraw only the lines that entered the viewport rather than
// repainting every row when text scrolls by one or two lines.
func (t *Terminal) ScrollUp(n int)   { fmt.Fprintf(t.w, "\x1b[%dS", n) }
func (t *Terminal) ScrollDown(n int) { fmt.Fprintf(t.w, "\x1b[%dT", n) }

// ClearScreen erases the whole display and homes the cursor.
func (t *Terminal) ClearScreen() { t.w.WriteString("\x1b[2J\x1b[H") }

// RawInput exposes stdin for a caller-owned read loop.
func (t *Terminal) RawInput() *os.File { return t.in }
