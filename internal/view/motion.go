package view

import "github.com/bethropolis/glyph/internal/grapheme"

// FileLine is the buffer line number the cursor currently sits on.
func (v *View) FileLine() int { return v.TopLine + v.CursorY }

// CursorBytePos returns the buffer byte offset of the cursor, computed by
// walking display columns on the cursor's line from its start. Cached on
// (cursor_x, cursor_y, top_line) per spec.md §4.5's cursor-byte-position
// cache, since it is recomputed on nearly every render and every motion.
func (v *View) CursorBytePos() int {
	if v.cursorBytePos.valid && v.cursorBytePos.x == v.CursorX && v.cursorBytePos.y == v.CursorY && v.cursorBytePos.topLine == v.TopLine {
		return v.cursorBytePos.pos
	}
	line := v.FileLine()
	start, ok := v.table.GetLineStart(line)
	if !ok {
		start, _, _ = v.table.GetLineRange(v.table.LineCount() - 1)
	}
	lineEnd := v.table.FindLineEndFromPos(start)

	pos := start
	col := 0
	it := grapheme.New(v.table, start)
	for col < v.CursorX && it.Pos() < lineEnd {
		c, ok := it.NextGraphemeCluster()
		if !ok {
			break
		}
		col += clusterColumns(c, col, v.TabWidth)
		pos = it.Pos()
	}
	v.cursorBytePos = cursorBytePosCache{valid: true, x: v.CursorX, y: v.CursorY, topLine: v.TopLine, pos: pos}
	return pos
}

func (v *View) setCursorBytePos(pos int) {
	v.cursorBytePos = cursorBytePosCache{valid: true, x: v.CursorX, y: v.CursorY, topLine: v.TopLine, pos: pos}
}

// MoveRight advances the cursor by the display width of the next grapheme
// cluster on the current line, or wraps to the next line's start.
func (v *View) MoveRight() {
	pos := v.CursorBytePos()
	line := v.FileLine()
	lineEnd := v.table.FindLineEndFromPos(pos)
	if pos >= lineEnd {
		if start, ok := v.table.GetLineStart(line + 1); ok {
			v.CursorY++
			v.CursorX = 0
			v.setCursorBytePos(start)
			v.reconcileScroll()
		}
		return
	}
	it := grapheme.New(v.table, pos)
	c, ok := it.NextGraphemeCluster()
	if !ok {
		return
	}
	v.CursorX += clusterColumns(c, v.CursorX, v.TabWidth)
	v.setCursorBytePos(pos + c.ByteLen)
	v.reconcileScroll()
}

// columnAtBytePos walks clusters from lineStart, returning the display
// column of target. Used to recompute CursorX from a byte offset — the
// only correct way to do it in the presence of tabs, whose width depends
// on the running column rather than on the cluster alone.
func (v *View) columnAtBytePos(lineStart, target int) int {
	col := 0
	it := grapheme.New(v.table, lineStart)
	for it.Pos() < target {
		c, ok := it.NextGraphemeCluster()
		if !ok {
			break
		}
		col += clusterColumns(c, col, v.TabWidth)
	}
	return col
}

// MoveLeft retreats the cursor by the previous grapheme cluster's display
// width, or to the end of the previous line.
func (v *View) MoveLeft() {
	pos := v.CursorBytePos()
	line := v.FileLine()
	start, _ := v.table.GetLineStart(line)
	if pos <= start {
		if line == 0 {
			return
		}
		v.CursorY--
		prevStart, _ := v.table.GetLineStart(line - 1)
		prevEnd := v.table.FindLineEndFromPos(prevStart)
		v.CursorX = v.lineDisplayWidth(line - 1)
		v.setCursorBytePos(prevEnd)
		v.reconcileScroll()
		return
	}
	it := grapheme.New(v.table, pos)
	c, ok := it.PrevGraphemeCluster()
	if !ok {
		return
	}
	newPos := pos - c.ByteLen
	v.CursorX = v.columnAtBytePos(start, newPos)
	v.setCursorBytePos(newPos)
	v.reconcileScroll()
}

// MoveUp and MoveDown change the cursor's line, preserving CursorX where
// the target line is wide enough, clamping otherwise.
func (v *View) MoveUp()   { v.moveVertical(-1) }
func (v *View) MoveDown() { v.moveVertical(1) }

func (v *View) moveVertical(delta int) {
	line := v.FileLine()
	target := line + delta
	if target < 0 || target >= v.table.LineCount() {
		return
	}
	v.CursorY += delta
	width := v.lineDisplayWidth(target)
	if v.CursorX > width {
		v.CursorX = width
	}
	v.cursorBytePos.valid = false
	v.reconcileScroll()
}

// MoveToLineStart and MoveToLineEnd set CursorX to the line's boundary.
func (v *View) MoveToLineStart() {
	v.CursorX = 0
	start, _ := v.table.GetLineStart(v.FileLine())
	v.setCursorBytePos(start)
}

func (v *View) MoveToLineEnd() {
	line := v.FileLine()
	v.CursorX = v.lineDisplayWidth(line)
	start, _ := v.table.GetLineStart(line)
	v.setCursorBytePos(v.table.FindLineEndFromPos(start))
}

// MoveToBufferStart and MoveToBufferEnd jump to offset 0 / total_length.
func (v *View) MoveToBufferStart() {
	v.TopLine, v.TopCol, v.CursorX, v.CursorY = 0, 0, 0, 0
	v.setCursorBytePos(0)
	v.MarkFullRedraw()
}

func (v *View) MoveToBufferEnd() {
	last := v.table.LineCount() - 1
	start, _ := v.table.GetLineStart(last)
	v.CursorX = v.lineDisplayWidth(last)
	v.CursorY = last - v.TopLine
	if height := v.textHeight(); v.CursorY >= height || v.CursorY < 0 {
		v.ScrollViewport(last - (height - 1) - v.TopLine)
		v.CursorY = last - v.TopLine
	}
	v.setCursorBytePos(v.table.FindLineEndFromPos(start))
}

// ScrollViewport moves TopLine by lines, clamping to the buffer and
// recording scroll_delta for the renderer's scroll-region fast path.
func (v *View) ScrollViewport(lines int) {
	if lines == 0 {
		return
	}
	newTop := v.TopLine + lines
	maxTop := v.table.LineCount() - 1
	if newTop < 0 {
		newTop = 0
	}
	if newTop > maxTop {
		newTop = maxTop
	}
	delta := newTop - v.TopLine
	if delta == 0 {
		return
	}
	v.TopLine = newTop
	// Shift the line-width cache with the viewport so every slot keeps
	// describing the same file line; slots scrolled into view start empty.
	shifted := [lineWidthCacheSize]int{}
	for i := range shifted {
		shifted[i] = -1
		if j := i + delta; j >= 0 && j < lineWidthCacheSize {
			shifted[i] = v.lineWidthCache[j]
		}
	}
	v.lineWidthCache = shifted
	v.lineWidthBase += delta
	v.cursorBytePos.valid = false
	v.MarkScroll(delta)
}

// Reconcile exposes reconcileScroll for callers (the Controller) that set
// CursorX/CursorY directly after an edit or a jump, rather than through
// one of the Move* operations.
func (v *View) Reconcile() { v.reconcileScroll() }

// reconcileScroll keeps the cursor inside the viewport after a horizontal
// or vertical motion, scrolling when it would otherwise land outside.
func (v *View) reconcileScroll() {
	height := v.textHeight()
	margin := v.ScrollOff
	if max := (height - 1) / 2; margin > max {
		margin = max
	}
	if v.CursorY < margin {
		before := v.TopLine
		v.ScrollViewport(v.CursorY - margin)
		v.CursorY -= v.TopLine - before
	} else if v.CursorY >= height-margin {
		before := v.TopLine
		v.ScrollViewport(v.CursorY - (height - margin - 1))
		v.CursorY -= v.TopLine - before
	}
	if v.CursorY < 0 {
		v.CursorY = 0
	} else if v.CursorY >= height {
		v.CursorY = height - 1
	}
	textWidth := v.Viewport.Width - v.lineNumWidth
	if textWidth < 1 {
		textWidth = 1
	}
	if v.CursorX < v.TopCol {
		v.TopCol = v.CursorX
		v.MarkFullRedraw()
	} else if v.CursorX >= v.TopCol+textWidth {
		v.TopCol = v.CursorX - textWidth + 1
		v.MarkFullRedraw()
	}
}
