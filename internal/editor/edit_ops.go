package editor

import (
	"unicode"
	"unicode/utf8"

	"github.com/bethropolis/glyph/internal/grapheme"
)

// insertChar UTF-8 encodes codepoint, inserts it at the cursor, records an
// Insert undo entry, and advances the cursor by the inserted cluster's
// display width. Matches spec.md §4.6's insert_char.
func (c *Controller) insertChar(cp rune) {
	pos := c.view.CursorBytePos()
	buf := make([]byte, utf8.RuneLen(cp))
	n := utf8.EncodeRune(buf, cp)
	buf = buf[:n]

	before := pos
	if err := c.table.InsertAt(pos, buf); err != nil {
		c.setMessage("insert failed: %v", err)
		return
	}
	c.undo.push(undoEntry{kind: opInsert, pos: pos, text: append([]byte(nil), buf...), cursorBefore: before})

	if cp == '\n' {
		c.view.CursorY++
		c.view.MarkFullRedraw()
	} else {
		c.view.CursorX++
	}
	c.syncCursorAfterEdit(pos + n)
}

// deleteForward removes the grapheme cluster at the cursor.
func (c *Controller) deleteForward() {
	pos := c.view.CursorBytePos()
	it := grapheme.New(c.table, pos)
	cl, ok := it.NextGraphemeCluster()
	if !ok {
		return
	}
	text := c.table.GetRange(pos, cl.ByteLen)
	if _, err := c.table.Delete(pos, cl.ByteLen); err != nil {
		c.setMessage("delete failed: %v", err)
		return
	}
	c.undo.push(undoEntry{kind: opDelete, pos: pos, text: append([]byte(nil), text...), cursorBefore: pos})
	c.view.MarkFullRedraw()
	c.syncCursorAfterEdit(pos)
}

// backspace removes the grapheme cluster before the cursor and moves the
// cursor left by its width (or onto the previous line's end if it deleted
// a newline).
func (c *Controller) backspace() {
	pos := c.view.CursorBytePos()
	if pos == 0 {
		return
	}
	it := grapheme.New(c.table, pos)
	cl, ok := it.PrevGraphemeCluster()
	if !ok {
		return
	}
	start := pos - cl.ByteLen
	text := c.table.GetRange(start, cl.ByteLen)
	if _, err := c.table.Delete(start, cl.ByteLen); err != nil {
		c.setMessage("delete failed: %v", err)
		return
	}
	c.undo.push(undoEntry{kind: opDelete, pos: start, text: append([]byte(nil), text...), cursorBefore: pos})
	c.view.MarkFullRedraw()
	c.syncCursorAfterEdit(start)
}

// syncCursorAfterEdit repositions the view's cursor at the buffer byte
// offset pos, re-deriving CursorX/CursorY/TopLine from the table's current
// line index rather than trying to incrementally patch them, since an
// insert/delete may have changed the line count.
func (c *Controller) syncCursorAfterEdit(pos int) {
	line := c.table.FindLineByPos(pos)
	lineStart, _ := c.table.GetLineStart(line)
	c.view.CursorY = line - c.view.TopLine
	c.view.CursorX = c.columnOf(lineStart, pos)
	c.view.TopCol = 0
	c.view.Reconcile()
	c.view.MarkFullRedraw()
}

func (c *Controller) columnOf(lineStart, pos int) int {
	col := 0
	it := grapheme.New(c.table, lineStart)
	for it.Pos() < pos {
		cl, ok := it.NextGraphemeCluster()
		if !ok {
			break
		}
		col += clusterCols(cl, col, c.view.TabWidth)
	}
	return col
}

func clusterCols(c grapheme.Cluster, col, tabWidth int) int {
	if c.BaseCP == '\t' {
		if tabWidth <= 0 {
			tabWidth = 8
		}
		return tabWidth - (col % tabWidth)
	}
	return c.DisplayWidth
}

// isWordRune classifies codepoints for word-motion/word-kill purposes:
// letters, digits, and underscore are "word" characters, everything else
// (including all whitespace and punctuation) is a boundary.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// wordForwardPos returns the buffer position one word forward of pos:
// skip any leading non-word run, then skip the following word run.
func (c *Controller) wordForwardPos(pos int) int {
	it := grapheme.New(c.table, pos)
	total := c.table.Len()
	for it.Pos() < total {
		cl, ok := it.NextGraphemeCluster()
		if !ok || isWordRune(cl.BaseCP) {
			if ok {
				it.Seek(it.Pos() - cl.ByteLen)
			}
			break
		}
	}
	for it.Pos() < total {
		save := it.Pos()
		cl, ok := it.NextGraphemeCluster()
		if !ok || !isWordRune(cl.BaseCP) {
			return save
		}
	}
	return total
}

// wordBackwardPos is wordForwardPos's mirror, walking PrevGraphemeCluster.
func (c *Controller) wordBackwardPos(pos int) int {
	it := grapheme.New(c.table, pos)
	for it.Pos() > 0 {
		cl, ok := it.PrevGraphemeCluster()
		if !ok || isWordRune(cl.BaseCP) {
			if ok {
				it.Seek(it.Pos() + cl.ByteLen)
			}
			break
		}
	}
	for it.Pos() > 0 {
		save := it.Pos()
		cl, ok := it.PrevGraphemeCluster()
		if !ok || !isWordRune(cl.BaseCP) {
			return save
		}
	}
	return 0
}

func (c *Controller) moveWordForward() {
	pos := c.view.CursorBytePos()
	target := c.wordForwardPos(pos)
	c.jumpToBytePos(target)
}

func (c *Controller) moveWordBackward() {
	pos := c.view.CursorBytePos()
	target := c.wordBackwardPos(pos)
	c.jumpToBytePos(target)
}

func (c *Controller) killWordForward() {
	pos := c.view.CursorBytePos()
	target := c.wordForwardPos(pos)
	c.killRange(pos, target, true)
}

// jumpToBytePos repositions the cursor at an arbitrary buffer offset,
// recomputing line/column from scratch (used by word motion and search).
func (c *Controller) jumpToBytePos(pos int) {
	line := c.table.FindLineByPos(pos)
	lineStart, _ := c.table.GetLineStart(line)
	c.view.CursorY = line - c.view.TopLine
	c.view.CursorX = c.columnOf(lineStart, pos)
	c.view.Reconcile()
}

// killRange deletes [start, end), writes the removed text to the
// kill-ring, and records an undo entry. The cursor lands at start after
// the delete whatever atEnd says; every caller passes true.
func (c *Controller) killRange(start, end int, atEnd bool) {
	if end <= start {
		return
	}
	text := append([]byte(nil), c.table.GetRange(start, end-start)...)
	if _, err := c.table.Delete(start, end-start); err != nil {
		c.setMessage("kill failed: %v", err)
		return
	}
	c.kill.writeLinear(text)
	c.undo.push(undoEntry{kind: opDelete, pos: start, text: text, cursorBefore: start})
	c.syncCursorAfterEdit(start)
}

// killLine kills from the cursor to end-of-line (not including the
// newline) or, if the cursor is already there, the newline itself —
// matching Emacs' Ctrl-K.
func (c *Controller) killLine() {
	pos := c.view.CursorBytePos()
	line := c.table.FindLineByPos(pos)
	lineStart, _ := c.table.GetLineStart(line)
	lineEnd := c.table.FindLineEndFromPos(lineStart)
	end := lineEnd
	if pos == lineEnd {
		if next, ok := c.table.FindNextLineFromPos(lineStart); ok {
			end = next
		}
	}
	c.killRange(pos, end, true)
}

// killRegion kills mark..point (whichever order), clearing the mark.
func (c *Controller) killRegion() {
	if !c.markSet {
		c.setMessage("No mark set")
		return
	}
	pos := c.view.CursorBytePos()
	start, end := pos, c.mark
	if start > end {
		start, end = end, start
	}
	c.killRange(start, end, true)
	c.markSet = false
}

// copyRegion (Alt-W) copies mark..point to the kill-ring without deleting.
func (c *Controller) copyRegion() {
	if !c.markSet {
		c.setMessage("No mark set")
		return
	}
	pos := c.view.CursorBytePos()
	start, end := pos, c.mark
	if start > end {
		start, end = end, start
	}
	text := append([]byte(nil), c.table.GetRange(start, end-start)...)
	c.kill.writeLinear(text)
	c.markSet = false
	c.setMessage("Region copied")
}

// yank inserts the kill-ring's current content at the cursor.
func (c *Controller) yank() {
	text := c.kill.readLinear()
	if len(text) == 0 {
		return
	}
	pos := c.view.CursorBytePos()
	if err := c.table.InsertAt(pos, text); err != nil {
		c.setMessage("yank failed: %v", err)
		return
	}
	c.undo.push(undoEntry{kind: opInsert, pos: pos, text: append([]byte(nil), text...), cursorBefore: pos})
	c.syncCursorAfterEdit(pos + len(text))
}

func (c *Controller) setOrClearMark() {
	if c.markSet {
		c.markSet = false
		c.setMessage("Mark cleared")
		return
	}
	c.mark = c.view.CursorBytePos()
	c.markSet = true
	c.setMessage("Mark set")
}

func (c *Controller) undoAction() {
	pos, ok := c.undo.undoOnce(c.table)
	if !ok {
		c.setMessage("No further undo information")
		return
	}
	c.syncCursorAfterEdit(pos)
	c.view.MarkFullRedraw()
}

func (c *Controller) redoAction() {
	pos, ok := c.undo.redoOnce(c.table)
	if !ok {
		c.setMessage("No further redo information")
		return
	}
	c.syncCursorAfterEdit(pos)
	c.view.MarkFullRedraw()
}

func (c *Controller) selectAll() {
	c.mark = 0
	c.markSet = true
	c.jumpToBytePos(c.table.Len())
}
