package view

import (
	"testing"

	"github.com/bethropolis/glyph/internal/piece"
	"github.com/bethropolis/glyph/internal/terminal"
	"github.com/bethropolis/glyph/internal/theme"
)

func newTestView(text string, width, height int) (*View, *piece.Table) {
	t := piece.LoadFromSlice([]byte(text))
	v := New(t, theme.New(), Viewport{Width: width, Height: height})
	return v, t
}

func newTestTerm() *terminal.Terminal {
	return terminal.ForTest()
}

func TestRenderIdempotence(t *testing.T) {
	v, _ := newTestView("hello\nworld\n", 20, 5)
	term := newTestTerm()
	v.Render(term, StatusFields{Filename: "x"})
	first := term.TestOutput()

	term2 := terminal.ForTest()
	v.Render(term2, StatusFields{Filename: "x"})
	second := term2.TestOutput()

	if len(second) >= len(first) {
		t.Fatalf("expected second render to write substantially less; first=%d second=%d", len(first), len(second))
	}
}

func TestCursorMotionWideCharsS6(t *testing.T) {
	v, _ := newTestView("あいう", 80, 24)
	if v.CursorX != 0 {
		t.Fatalf("expected start at 0")
	}
	for i := 0; i < 3; i++ {
		v.MoveRight()
	}
	if v.CursorX != 6 {
		t.Fatalf("expected cursor_x=6 after three wide-char moves, got %d", v.CursorX)
	}
}

func TestMoveLeftRightRoundTrip(t *testing.T) {
	v, _ := newTestView("abc\tdef\n", 80, 24)
	for i := 0; i < 4; i++ {
		v.MoveRight()
	}
	x := v.CursorX
	for i := 0; i < 4; i++ {
		v.MoveLeft()
	}
	if v.CursorX != 0 {
		t.Fatalf("expected to return to column 0, got %d (was %d)", v.CursorX, x)
	}
}

func TestMoveToLineStartEnd(t *testing.T) {
	v, _ := newTestView("hello world\n", 80, 24)
	v.MoveToLineEnd()
	if v.CursorX != 11 {
		t.Fatalf("expected line end at col 11, got %d", v.CursorX)
	}
	v.MoveToLineStart()
	if v.CursorX != 0 {
		t.Fatalf("expected line start at col 0, got %d", v.CursorX)
	}
}

func manyLines(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		s += "line" + string(rune('0'+i%10)) + "\n"
	}
	return s
}

// TestScrollOffKeepsMargin exercises reconcileScroll's ScrollOff clamp: the
// cursor should never approach within margin lines of the viewport's bottom
// edge while buffer lines remain below it, scrolling the top line forward
// instead.
func TestScrollOffKeepsMargin(t *testing.T) {
	v, _ := newTestView(manyLines(20), 80, 10) // textHeight = 10 - StatusBarHeight(1) = 9
	v.ScrollOff = 2

	for i := 0; i < 7; i++ {
		v.MoveDown()
	}

	if v.FileLine() != 7 {
		t.Fatalf("expected file line 7 after 7 MoveDown calls, got %d", v.FileLine())
	}
	if v.TopLine != 1 {
		t.Fatalf("expected scroll-off to have advanced TopLine to 1, got %d", v.TopLine)
	}
	if v.CursorY != 6 {
		t.Fatalf("expected cursor_y clamped to height-margin-1=6, got %d", v.CursorY)
	}
}

// TestStatusBarHeightReservesRows checks the textHeight() helper: the text
// area shrinks by StatusBarHeight, floored at 1 row so a misconfigured
// (oversized) status bar never leaves no room to draw text at all.
func TestStatusBarHeightReservesRows(t *testing.T) {
	v, _ := newTestView("x\n", 80, 24)
	v.StatusBarHeight = 3
	if got, want := v.textHeight(), 21; got != want {
		t.Fatalf("textHeight() = %d, want %d", got, want)
	}

	v.StatusBarHeight = 100
	if got := v.textHeight(); got != 1 {
		t.Fatalf("textHeight() should floor at 1, got %d", got)
	}
}
