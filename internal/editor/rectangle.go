package editor

import "github.com/bethropolis/glyph/internal/grapheme"

// killRectangle and yankRectangle implement SPEC_FULL.md §C.1: a rectangle
// is the column-aligned sub-range [startCol, endCol) applied independently
// to each line from the mark's line to the cursor's line.

func (c *Controller) killRectangle() {
	if !c.markSet {
		c.setMessage("No mark set")
		return
	}
	pos := c.view.CursorBytePos()
	startLine, startCol := c.lineAndCol(c.mark)
	endLine, endCol := c.lineAndCol(pos)
	if startLine > endLine {
		startLine, endLine = endLine, startLine
	}
	if startCol > endCol {
		startCol, endCol = endCol, startCol
	}

	rows := make([][]byte, 0, endLine-startLine+1)
	// Delete from the bottom line up so earlier deletions don't shift the
	// byte offsets of lines still to be processed.
	type deletion struct{ pos, length int }
	var plan []deletion
	for line := startLine; line <= endLine; line++ {
		lineStart, ok := c.table.GetLineStart(line)
		if !ok {
			rows = append(rows, nil)
			continue
		}
		lineEnd := c.table.FindLineEndFromPos(lineStart)
		from := c.byteAtColumn(lineStart, lineEnd, startCol)
		to := c.byteAtColumn(lineStart, lineEnd, endCol)
		rows = append(rows, append([]byte(nil), c.table.GetRange(from, to-from)...))
		if to > from {
			plan = append(plan, deletion{from, to - from})
		}
	}
	for i := len(plan) - 1; i >= 0; i-- {
		d := plan[i]
		text := c.table.GetRange(d.pos, d.length)
		if _, err := c.table.Delete(d.pos, d.length); err != nil {
			continue
		}
		c.undo.push(undoEntry{kind: opDelete, pos: d.pos, text: append([]byte(nil), text...), cursorBefore: d.pos})
	}
	c.kill.setRectangle(rows)
	c.markSet = false
	start, _ := c.table.GetLineStart(startLine)
	c.syncCursorAfterEdit(c.byteAtColumn(start, c.table.FindLineEndFromPos(start), startCol))
}

func (c *Controller) yankRectangle() {
	rows := c.kill.rectangle()
	if len(rows) == 0 {
		c.setMessage("Rectangle kill-ring is empty")
		return
	}
	pos := c.view.CursorBytePos()
	line, col := c.lineAndCol(pos)
	for i, row := range rows {
		targetLine := line + i
		lineStart, ok := c.table.GetLineStart(targetLine)
		if !ok {
			// Past the last line: add a newline to extend the buffer.
			c.table.InsertAt(c.table.Len(), []byte{'\n'})
			lineStart, _ = c.table.GetLineStart(targetLine)
		}
		lineEnd := c.table.FindLineEndFromPos(lineStart)
		insertAt := c.byteAtColumn(lineStart, lineEnd, col)
		if insertAt == lineEnd && col > c.columnOf(lineStart, lineEnd) {
			pad := col - c.columnOf(lineStart, lineEnd)
			padding := make([]byte, pad)
			for j := range padding {
				padding[j] = ' '
			}
			c.table.InsertAt(insertAt, padding)
			insertAt += pad
		}
		c.table.InsertAt(insertAt, row)
		c.undo.push(undoEntry{kind: opInsert, pos: insertAt, text: append([]byte(nil), row...), cursorBefore: insertAt})
	}
	c.syncCursorAfterEdit(pos)
}

func (c *Controller) lineAndCol(pos int) (line, col int) {
	line = c.table.FindLineByPos(pos)
	lineStart, _ := c.table.GetLineStart(line)
	return line, c.columnOf(lineStart, pos)
}

// byteAtColumn walks clusters from lineStart, returning the byte offset of
// display column col, clamped to lineEnd if the line is shorter.
func (c *Controller) byteAtColumn(lineStart, lineEnd, col int) int {
	if col <= 0 {
		return lineStart
	}
	return minInt(c.bytePosAtColumn(lineStart, lineEnd, col), lineEnd)
}

func (c *Controller) bytePosAtColumn(lineStart, lineEnd, col int) int {
	it := grapheme.New(c.table, lineStart)
	cur := 0
	for it.Pos() < lineEnd && cur < col {
		cl, ok := it.NextGraphemeCluster()
		if !ok {
			break
		}
		cur += clusterCols(cl, cur, c.view.TabWidth)
	}
	return it.Pos()
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
