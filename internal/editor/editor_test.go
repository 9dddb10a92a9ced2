package editor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bethropolis/glyph/internal/keys"
	"github.com/bethropolis/glyph/internal/piece"
	"github.com/bethropolis/glyph/internal/theme"
	"github.com/bethropolis/glyph/internal/view"
)

func newTestController(text string) *Controller {
	table := piece.LoadFromSlice([]byte(text))
	v := view.New(table, theme.New(), view.Viewport{Width: 80, Height: 24})
	return New(Config{Table: table, View: v})
}

func (c *Controller) content() string {
	return string(c.table.GetRange(0, c.table.Len()))
}

func typeChars(c *Controller, s string) {
	for _, r := range s {
		c.HandleKey(keys.Key{Kind: keys.KindChar, Char: byte(r)})
	}
}

func TestInsertAndBackspace(t *testing.T) {
	c := newTestController("")
	typeChars(c, "hi")
	if got := c.content(); got != "hi" {
		t.Fatalf("content = %q, want %q", got, "hi")
	}
	c.HandleKey(keys.Key{Kind: keys.KindNamed, Name: keys.Backspace})
	if got := c.content(); got != "h" {
		t.Fatalf("content = %q, want %q", got, "h")
	}
}

func TestDeleteForward(t *testing.T) {
	c := newTestController("abc")
	c.HandleKey(keys.Key{Kind: keys.KindNamed, Name: keys.Delete})
	if got := c.content(); got != "bc" {
		t.Fatalf("content = %q, want %q", got, "bc")
	}
}

// TestUndoRedoCoalescing verifies that typing a contiguous run coalesces
// into a single undo entry, and that redo after undo restores — rather
// than re-inverts — the coalesced run (the kind-swap this guards against
// would make redo re-delete instead of re-insert).
func TestUndoRedoCoalescing(t *testing.T) {
	c := newTestController("")
	typeChars(c, "abc")
	if got := c.content(); got != "abc" {
		t.Fatalf("content after typing = %q, want %q", got, "abc")
	}
	if len(c.undo.undo) != 1 {
		t.Fatalf("undo stack = %d entries, want 1 (coalesced)", len(c.undo.undo))
	}

	c.HandleKey(keys.Key{Kind: keys.KindAlt, Alt: '/'}) // Alt-/ undo
	if got := c.content(); got != "" {
		t.Fatalf("content after undo = %q, want empty", got)
	}

	c.HandleKey(keys.Key{Kind: keys.KindNamed, Name: keys.CtrlUnderscore}) // redo
	if got := c.content(); got != "abc" {
		t.Fatalf("content after redo = %q, want %q (redo must re-insert, not re-delete)", got, "abc")
	}
}

func TestUndoRedoOfDelete(t *testing.T) {
	c := newTestController("abc")
	c.view.MoveToBufferEnd()
	c.HandleKey(keys.Key{Kind: keys.KindNamed, Name: keys.Backspace})
	c.HandleKey(keys.Key{Kind: keys.KindNamed, Name: keys.Backspace})
	c.HandleKey(keys.Key{Kind: keys.KindNamed, Name: keys.Backspace})
	if got := c.content(); got != "" {
		t.Fatalf("content after 3 backspaces = %q, want empty", got)
	}

	c.HandleKey(keys.Key{Kind: keys.KindAlt, Alt: '/'}) // undo the coalesced delete run
	if got := c.content(); got != "abc" {
		t.Fatalf("content after undo = %q, want %q", got, "abc")
	}

	c.HandleKey(keys.Key{Kind: keys.KindNamed, Name: keys.CtrlUnderscore}) // redo
	if got := c.content(); got != "" {
		t.Fatalf("content after redo = %q, want empty (redo must re-delete, not re-insert)", got)
	}
}

func TestUndoStackEmptyReportsNoFurtherUndo(t *testing.T) {
	c := newTestController("x")
	c.HandleKey(keys.Key{Kind: keys.KindAlt, Alt: '/'})
	if c.message != "No further undo information" {
		t.Fatalf("message = %q", c.message)
	}
}

func TestKillLineAndYank(t *testing.T) {
	c := newTestController("hello\nworld")
	c.HandleKey(keys.Key{Kind: keys.KindCtrl, Ctrl: 'k'}) // kill to end of first line
	if got := c.content(); got != "\nworld" {
		t.Fatalf("content after kill-line = %q", got)
	}
	c.HandleKey(keys.Key{Kind: keys.KindCtrl, Ctrl: 'y'}) // yank it back
	if got := c.content(); got != "hello\nworld" {
		t.Fatalf("content after yank = %q", got)
	}
}

func TestKillRegionRequiresMark(t *testing.T) {
	c := newTestController("abc")
	c.HandleKey(keys.Key{Kind: keys.KindCtrl, Ctrl: 'w'})
	if c.message != "No mark set" {
		t.Fatalf("message = %q, want 'No mark set'", c.message)
	}
}

func TestMarkSetAndKillRegion(t *testing.T) {
	c := newTestController("abcdef")
	c.HandleKey(keys.Key{Kind: keys.KindNamed, Name: keys.CtrlSpace}) // set mark at pos 0
	c.view.MoveRight()
	c.view.MoveRight()
	c.view.MoveRight() // cursor now at pos 3
	c.HandleKey(keys.Key{Kind: keys.KindCtrl, Ctrl: 'w'})
	if got := c.content(); got != "def" {
		t.Fatalf("content after kill-region = %q, want %q", got, "def")
	}
	if c.markSet {
		t.Fatal("mark should be cleared after kill-region")
	}
}

func TestMarkToggleClears(t *testing.T) {
	c := newTestController("abc")
	c.HandleKey(keys.Key{Kind: keys.KindNamed, Name: keys.CtrlSpace})
	if !c.markSet {
		t.Fatal("mark should be set")
	}
	c.HandleKey(keys.Key{Kind: keys.KindNamed, Name: keys.CtrlSpace})
	if c.markSet {
		t.Fatal("mark should be cleared on second toggle")
	}
}

func TestRectangleKillAndYank(t *testing.T) {
	c := newTestController("abcd\nefgh\nijkl")
	c.setOrClearMark() // mark at (line 0, col 0)
	c.view.MoveDown()
	c.view.MoveDown()
	c.view.MoveRight()
	c.view.MoveRight() // cursor at (line 2, col 2)

	c.killRectangle()
	if got := c.content(); got != "cd\ngh\nkl" {
		t.Fatalf("content after kill-rectangle = %q", got)
	}

	c.view.MoveToBufferStart()
	c.yankRectangle()
	if got := c.content(); got != "abcd\nefgh\nijkl" {
		t.Fatalf("content after yank-rectangle = %q, want %q", got, "abcd\nefgh\nijkl")
	}
}

func TestYankRectangleEmptyReportsMessage(t *testing.T) {
	c := newTestController("abc")
	c.yankRectangle()
	if c.message != "Rectangle kill-ring is empty" {
		t.Fatalf("message = %q", c.message)
	}
}

func TestIncrementalSearchForwardAndWraparound(t *testing.T) {
	c := newTestController("foo bar foo baz")
	c.enterISearch(true)
	c.appendISearchChar('f')
	c.appendISearchChar('o')
	c.appendISearchChar('o')
	if c.view.CursorBytePos() != 0 {
		t.Fatalf("first match at %d, want 0", c.view.CursorBytePos())
	}

	c.stepISearch(true) // step past first match, to the second "foo"
	if c.view.CursorBytePos() != 8 {
		t.Fatalf("second match at %d, want 8", c.view.CursorBytePos())
	}

	c.stepISearch(true) // no more matches ahead: wraps back to the first
	if c.view.CursorBytePos() != 0 {
		t.Fatalf("wrapped match at %d, want 0", c.view.CursorBytePos())
	}
}

func TestIncrementalSearchFailingMessage(t *testing.T) {
	c := newTestController("abc")
	c.enterISearch(true)
	c.appendISearchChar('z')
	if c.message != " (Failing I-search)" {
		t.Fatalf("message = %q", c.message)
	}
}

func TestIncrementalSearchEscapeRestoresCursor(t *testing.T) {
	c := newTestController("abc foo")
	start := c.view.CursorBytePos()
	c.enterISearch(true)
	c.appendISearchChar('f')
	c.appendISearchChar('o')
	c.appendISearchChar('o')
	if c.view.CursorBytePos() == start {
		t.Fatal("cursor should have moved to the match")
	}
	c.HandleKey(keys.Key{Kind: keys.KindNamed, Name: keys.Escape})
	if c.view.CursorBytePos() != start {
		t.Fatalf("cursor after cancel = %d, want %d (restored)", c.view.CursorBytePos(), start)
	}
	if c.mode != ModeNormal {
		t.Fatalf("mode after cancel = %v, want ModeNormal", c.mode)
	}
}

func TestPerformSearchNonIncremental(t *testing.T) {
	c := newTestController("one two three two")
	c.lastSearch = []byte("two")
	c.performSearch(true, true)
	if c.view.CursorBytePos() != 4 {
		t.Fatalf("cursor at %d, want 4", c.view.CursorBytePos())
	}
	c.performSearch(true, true)
	if c.view.CursorBytePos() != 14 {
		t.Fatalf("cursor at %d, want 14", c.view.CursorBytePos())
	}
}

func TestPerformSearchFailureSetsMessage(t *testing.T) {
	c := newTestController("one two")
	c.lastSearch = []byte("zzz")
	c.performSearch(true, true)
	if c.message == "" {
		t.Fatal("expected a failure message")
	}
}

func TestPrefixXSaveFlow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	c := newTestController("saved content")
	c.HandleKey(keys.Key{Kind: keys.KindCtrl, Ctrl: 'x'})
	if c.mode != ModePrefixX {
		t.Fatalf("mode = %v, want ModePrefixX", c.mode)
	}
	c.HandleKey(keys.Key{Kind: keys.KindCtrl, Ctrl: 's'})
	if c.mode != ModeFilenameInput {
		t.Fatalf("mode = %v, want ModeFilenameInput (no filename set yet)", c.mode)
	}
	typeChars(c, path)
	c.HandleKey(keys.Key{Kind: keys.KindNamed, Name: keys.Enter})

	if c.mode != ModeNormal {
		t.Fatalf("mode after save = %v, want ModeNormal", c.mode)
	}
	if c.filename != path {
		t.Fatalf("filename = %q, want %q", c.filename, path)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	if string(got) != "saved content" {
		t.Fatalf("saved content = %q, want %q", got, "saved content")
	}
	if c.Modified() {
		t.Fatal("buffer should be unmodified (undo log cleared) right after save")
	}
}

func TestPrefixXQuitConfirmFlow(t *testing.T) {
	c := newTestController("x")
	typeChars(c, "y") // dirty the buffer
	c.HandleKey(keys.Key{Kind: keys.KindCtrl, Ctrl: 'x'})
	c.HandleKey(keys.Key{Kind: keys.KindCtrl, Ctrl: 'c'})
	if c.mode != ModeQuitConfirm {
		t.Fatalf("mode = %v, want ModeQuitConfirm (buffer is modified)", c.mode)
	}
	c.HandleKey(keys.Key{Kind: keys.KindChar, Char: 'c'}) // cancel
	if c.mode != ModeNormal || c.Quit {
		t.Fatalf("after cancel: mode=%v Quit=%v", c.mode, c.Quit)
	}

	c.HandleKey(keys.Key{Kind: keys.KindCtrl, Ctrl: 'x'})
	c.HandleKey(keys.Key{Kind: keys.KindCtrl, Ctrl: 'c'})
	c.HandleKey(keys.Key{Kind: keys.KindChar, Char: 'n'}) // quit without saving
	if !c.Quit {
		t.Fatal("Quit should be true after answering 'n'")
	}
}

func TestPrefixXUnmodifiedQuitsImmediately(t *testing.T) {
	c := newTestController("x")
	c.HandleKey(keys.Key{Kind: keys.KindCtrl, Ctrl: 'x'})
	c.HandleKey(keys.Key{Kind: keys.KindCtrl, Ctrl: 'c'})
	if !c.Quit {
		t.Fatal("an unmodified buffer should quit without confirmation")
	}
}

func TestPrefixRCancelsOnUnknownKey(t *testing.T) {
	c := newTestController("abc")
	c.HandleKey(keys.Key{Kind: keys.KindCtrl, Ctrl: 'x'})
	c.HandleKey(keys.Key{Kind: keys.KindChar, Char: 'r'})
	if c.mode != ModePrefixR {
		t.Fatalf("mode = %v, want ModePrefixR", c.mode)
	}
	c.HandleKey(keys.Key{Kind: keys.KindChar, Char: 'z'})
	if c.mode != ModeNormal {
		t.Fatalf("mode = %v, want ModeNormal after an unrecognized r-prefix key", c.mode)
	}
}

func TestCopyRegionLeavesBufferUnchanged(t *testing.T) {
	c := newTestController("abcdef")
	c.setOrClearMark()
	c.view.MoveRight()
	c.view.MoveRight()
	c.copyRegion()
	if got := c.content(); got != "abcdef" {
		t.Fatalf("content changed by copy-region: %q", got)
	}
	if c.markSet {
		t.Fatal("mark should be cleared after copy-region")
	}
	c.view.MoveToBufferEnd()
	c.yank()
	if got := c.content(); got != "abcdefab" {
		t.Fatalf("content after yank = %q, want %q", got, "abcdefab")
	}
}
