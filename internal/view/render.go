package view

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bethropolis/glyph/internal/grapheme"
	"github.com/bethropolis/glyph/internal/lang"
	"github.com/bethropolis/glyph/internal/terminal"
)

type styleKind int

const (
	styleNone styleKind = iota
	styleGrey
	styleSelection
	styleIdeographic
)

// Render draws one frame, writing only the bytes that changed since the
// previous call (spec.md §8.8's render-idempotence property: a second
// call with no intervening mutation writes nothing beyond cursor
// positioning).
func (v *View) Render(term *terminal.Terminal, status StatusFields) {
	v.pollModification()

	lineCount := v.table.LineCount()
	v.lineNumWidth = 0
	if v.ShowLineNumbers {
		last := v.TopLine + v.textHeight()
		if last > lineCount {
			last = lineCount
		}
		v.lineNumWidth = digits(last) + 1
	}

	if v.Viewport.Width != v.lastViewportW || v.Viewport.Height != v.lastViewportH || v.lineNumWidth != v.lastLineNumWidth {
		v.MarkFullRedraw()
		v.resizePrevScreen()
		v.lastLineNumWidth = v.lineNumWidth
	}

	if !v.needsFullRedraw && v.scrollDelta != 0 {
		v.tryScrollFastPath(term)
	}
	v.scrollDelta = 0

	textWidth := v.Viewport.Width - v.lineNumWidth
	if textWidth < 1 {
		textWidth = 1
	}

	inBlock := v.blockCommentAt(v.TopLine)
	for row := 0; row < v.textHeight(); row++ {
		fileLine := v.TopLine + row
		inBlock = v.renderRow(term, row, fileLine, textWidth, inBlock)
	}

	v.renderStatusBar(term, status)
	v.positionCursor(term)
	term.Flush()
	v.needsFullRedraw = false
}

func (v *View) tryScrollFastPath(term *terminal.Terminal) {
	delta := v.scrollDelta
	maxLines := v.textHeight()
	spansFullWidth := v.Viewport.X == 0
	if !spansFullWidth || delta == 0 || abs(delta) >= maxLines/2 || maxLines < 2 {
		v.MarkFullRedraw()
		return
	}
	top := v.Viewport.Y
	bottom := v.Viewport.Y + maxLines - 1
	term.SetScrollRegion(top, bottom)
	if delta > 0 {
		term.ScrollUp(delta)
		v.prevScreen = append(v.prevScreen[delta:], make([][]byte, delta)...)
	} else {
		n := -delta
		v.prevScreen = append(make([][]byte, n), v.prevScreen[:len(v.prevScreen)-n]...)
		term.ScrollDown(n)
	}
	term.ResetScrollRegion()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func digits(n int) int {
	if n < 1 {
		n = 1
	}
	d := 0
	for n > 0 {
		d++
		n /= 10
	}
	return d
}

// renderRow draws one screen row and returns whether that file line ends
// inside an open block comment (fed as the next row's starting state).
func (v *View) renderRow(term *terminal.Terminal, row, fileLine, textWidth int, inBlockAtStart bool) bool {
	v.expandedLine = v.expandedLine[:0]
	v.plainVisible = v.plainVisible[:0]
	v.visibleMap = v.visibleMap[:0]
	v.rawOffsets = v.rawOffsets[:0]
	rawOffsets := v.rawOffsets

	start, _, ok := v.table.GetLineRange(fileLine)
	if !ok {
		v.writeRow(term, row, nil)
		return inBlockAtStart
	}
	lineEnd := v.table.FindLineEndFromPos(start)
	raw := v.table.GetRange(start, lineEnd-start)
	analysis := v.lineAnalysis(fileLine, raw, inBlockAtStart)

	if v.lineNumWidth > 0 {
		label := fmt.Sprintf("%*d ", v.lineNumWidth-1, fileLine+1)
		v.expandedLine = append(v.expandedLine, v.theme.GreyFG...)
		v.expandedLine = append(v.expandedLine, label...)
		v.expandedLine = append(v.expandedLine, v.theme.Reset...)
	}

	it := grapheme.New(v.table, start)
	col := 0
	curStyle := styleNone
	shownScrollMarker := false
	for it.Pos() < lineEnd {
		bufPos := it.Pos()
		c, ok := it.NextGraphemeCluster()
		if !ok {
			break
		}
		width := clusterColumns(c, col, v.TabWidth)

		if col+width <= v.TopCol {
			col += width
			continue
		}
		if col < v.TopCol {
			if !shownScrollMarker {
				v.emitStyled(&curStyle, styleGrey, []byte("»"))
				v.plainVisible = append(v.plainVisible, '»')
				v.visibleMap = append(v.visibleMap, len(v.expandedLine))
				rawOffsets = append(rawOffsets, bufPos)
				shownScrollMarker = true
			}
			col += width
			continue
		}
		if col-v.TopCol >= textWidth {
			break
		}

		inComment := spanContains(analysis.Spans, bufPos-start)
		selected := v.Selection.Active && bufPos >= v.Selection.Start && bufPos < v.Selection.End
		rep, isControl, isIdeo := visibleRepresentation(c)
		if c.BaseCP == '\t' {
			rep = bytes.Repeat([]byte{' '}, min(width, textWidth-(col-v.TopCol)))
		}

		want := styleNone
		switch {
		case selected:
			want = styleSelection
		case isControl || inComment:
			want = styleGrey
		case isIdeo:
			want = styleIdeographic
		}
		v.emitStyled(&curStyle, want, rep)
		for i := range rep {
			rawOffsets = append(rawOffsets, bufPos)
			v.visibleMap = append(v.visibleMap, len(v.expandedLine)-len(rep)+i)
		}
		v.plainVisible = append(v.plainVisible, rep...)
		col += width
	}
	if curStyle != styleNone {
		v.expandedLine = append(v.expandedLine, v.theme.Reset...)
	}

	v.highlightedLine = v.applySearchHighlight(v.expandedLine, v.plainVisible, v.visibleMap, rawOffsets)
	v.writeRow(term, row, v.highlightedLine)
	return analysis.EndsInBlock
}

func spanContains(spans []lang.Span, pos int) bool {
	for _, s := range spans {
		if pos >= s.Start && pos < s.End {
			return true
		}
	}
	return false
}

// emitStyled appends an ANSI transition to expandedLine if the wanted
// style differs from the current one, then appends content.
func (v *View) emitStyled(cur *styleKind, want styleKind, content []byte) {
	if *cur != want {
		if *cur != styleNone {
			v.expandedLine = append(v.expandedLine, v.theme.Reset...)
		}
		switch want {
		case styleGrey:
			v.expandedLine = append(v.expandedLine, v.theme.GreyFG...)
		case styleSelection:
			v.expandedLine = append(v.expandedLine, v.theme.InverseOn...)
		case styleIdeographic:
			v.expandedLine = append(v.expandedLine, v.theme.IdeographicBG...)
		}
		*cur = want
	}
	v.expandedLine = append(v.expandedLine, content...)
}

// visibleRepresentation returns the bytes rendered for one grapheme
// cluster: tabs become spaces by the caller (handled via width, no glyph
// to emit besides the padding itself — spaces), control/DEL become the
// two-byte "^X" caret notation, everything else is the cluster's own
// UTF-8 bytes.
func visibleRepresentation(c grapheme.Cluster) (rep []byte, isControl, isIdeographic bool) {
	switch {
	case c.BaseCP == '\t':
		return nil, false, false // caller pads via clusterColumns' width
	case c.BaseCP < 0x20 || c.BaseCP == 0x7f:
		ctrl := byte(c.BaseCP) ^ 0x40
		return []byte{'^', ctrl}, true, false
	case c.BaseCP == 0x3000:
		buf := make([]byte, utf8.RuneLen(c.BaseCP))
		utf8.EncodeRune(buf, c.BaseCP)
		return buf, false, true
	default:
		buf := make([]byte, utf8.RuneLen(c.BaseCP))
		n := utf8.EncodeRune(buf, c.BaseCP)
		return buf[:n], false, false
	}
}

// applySearchHighlight wraps matches found in plain (the ANSI-free visible
// text) with the theme's highlight codes, translating offsets back into
// expanded (which may already carry selection/comment ANSI) via
// visibleMap.
func (v *View) applySearchHighlight(expanded, plain []byte, visibleMap, rawOffsets []int) []byte {
	type match struct{ start, end int }
	var matches []match
	if v.SearchRegex != nil {
		for from := 0; from <= len(plain); {
			s, e, ok := v.SearchRegex.Search(plain, from)
			if !ok {
				break
			}
			matches = append(matches, match{s, e})
			if e == s {
				from = e + 1
			} else {
				from = e
			}
		}
	} else if len(v.SearchPattern) > 0 {
		from := 0
		for {
			idx := bytes.Index(plain[from:], v.SearchPattern)
			if idx < 0 {
				break
			}
			s := from + idx
			e := s + len(v.SearchPattern)
			matches = append(matches, match{s, e})
			from = e
		}
	}
	if len(matches) == 0 {
		return expanded
	}

	out := make([]byte, 0, len(expanded)+len(matches)*16)
	prev := 0
	for _, m := range matches {
		expStart := visibleMap[m.start]
		var expEnd int
		if m.end < len(plain) {
			expEnd = visibleMap[m.end]
		} else {
			expEnd = len(expanded)
		}
		isCurrent := v.SearchCurrentMatchPos >= 0 && rawOffsets[m.start] == v.SearchCurrentMatchPos
		out = append(out, expanded[prev:expStart]...)
		if isCurrent {
			out = append(out, v.theme.SearchCurrent...)
		} else {
			out = append(out, v.theme.SearchMatch...)
		}
		out = append(out, expanded[expStart:expEnd]...)
		out = append(out, v.theme.Reset...)
		prev = expEnd
	}
	out = append(out, expanded[prev:]...)
	return out
}

func hasANSI(b []byte) bool { return bytes.IndexByte(b, 0x1b) >= 0 }

// writeRow diffs newContent against the previous frame's row and writes
// only what changed, or the whole row when either side carries ANSI
// (diff-with-escapes is brittle across boundaries, so that case always
// repaints in full, per spec.md §4.5 step 5).
func (v *View) writeRow(term *terminal.Terminal, row int, newContent []byte) {
	old := v.prevScreen[row]
	if !v.needsFullRedraw && bytes.Equal(old, newContent) {
		return
	}

	textX := v.Viewport.X + v.lineNumWidth
	screenY := v.Viewport.Y + row
	textWidth := v.Viewport.Width - v.lineNumWidth

	if v.needsFullRedraw || hasANSI(old) || hasANSI(newContent) {
		term.MoveCursor(textX, screenY)
		term.Write(newContent)
		padVisibleTo(term, visibleWidth(newContent), textWidth)
	} else {
		first := 0
		for first < len(old) && first < len(newContent) && old[first] == newContent[first] {
			first++
		}
		for first > 0 && isUTF8Continuation(newContent, first) {
			first--
		}
		col := runeCount(newContent[:first])
		term.MoveCursor(textX+col, screenY)
		term.Write(newContent[first:])
		padVisibleTo(term, col+runeCount(newContent[first:]), textWidth)
	}
	v.prevScreen[row] = append([]byte(nil), newContent...)
}

func isUTF8Continuation(b []byte, i int) bool {
	return i < len(b) && b[i]&0xC0 == 0x80
}

func runeCount(b []byte) int { return utf8.RuneCount(b) }

// visibleWidth counts columns ignoring CSI escape sequences entirely
// (spec.md: "each CSI parameter+intermediate+final byte pair contributes
// 0 columns").
func visibleWidth(b []byte) int {
	w := 0
	for i := 0; i < len(b); {
		if b[i] == 0x1b && i+1 < len(b) && b[i+1] == '[' {
			j := i + 2
			for j < len(b) && (b[j] < 0x40 || b[j] > 0x7e) {
				j++
			}
			if j < len(b) {
				j++
			}
			i = j
			continue
		}
		_, size := utf8.DecodeRune(b[i:])
		w += grapheme.StringWidth(string(b[i : i+size]))
		i += size
	}
	return w
}

func padVisibleTo(term *terminal.Terminal, have, want int) {
	if have < want {
		term.Write([]byte(strings.Repeat(" ", want-have)))
	}
}

func (v *View) renderStatusBar(term *terminal.Terminal, status StatusFields) {
	// Rows above the final status row are padding reserved by
	// StatusBarHeight > 1; only the last row carries the status text.
	for row := v.textHeight(); row < v.Viewport.Height-1; row++ {
		if v.needsFullRedraw {
			term.MoveCursor(v.Viewport.X, v.Viewport.Y+row)
			term.Write(v.theme.InverseOn)
			padVisibleTo(term, 0, v.Viewport.Width)
			term.Write(v.theme.InverseOff)
		}
	}

	row := v.Viewport.Height - 1
	width := v.Viewport.Width
	var left, right string
	if status.Message != "" {
		left = status.Message
	} else {
		ro := ""
		if status.ReadOnly {
			ro = "[RO] "
		}
		mod := " "
		if status.Modified {
			mod = "*"
		}
		left = fmt.Sprintf(" %s%s%s", mod, ro, status.Filename)

		le := "LF"
		if status.CRLF {
			le = "CRLF"
		}
		ovr := ""
		if status.Overwrite {
			ovr = "[OVR] "
		}
		right = fmt.Sprintf("L%d C%d  %s(%s) %s", status.Line, status.Col, status.Encoding, le, ovr)
	}

	line := layoutStatusLine(left, right, width)
	if !v.needsFullRedraw && !v.statusBarDirty && line == v.lastStatusLine {
		return
	}
	content := append(append(append([]byte(nil), v.theme.InverseOn...), line...), v.theme.InverseOff...)

	term.MoveCursor(v.Viewport.X, v.Viewport.Y+row)
	term.Write(content)
	v.lastStatusLine = line
	v.statusBarDirty = false
}

func layoutStatusLine(left, right string, width int) string {
	if width <= 0 {
		return ""
	}
	lw := utf8.RuneCountInString(left)
	rw := utf8.RuneCountInString(right)
	if lw+rw >= width {
		avail := width
		if avail <= 0 {
			return ""
		}
		out := []rune(left)
		if len(out) > avail {
			out = out[:avail]
		}
		return string(out)
	}
	pad := width - lw - rw
	return left + strings.Repeat(" ", pad) + right
}

func (v *View) positionCursor(term *terminal.Terminal) {
	col := v.Viewport.X + v.lineNumWidth + maxInt(0, v.CursorX-v.TopCol)
	row := v.Viewport.Y + v.CursorY
	if col < v.Viewport.X+v.lineNumWidth || col >= v.Viewport.X+v.Viewport.Width ||
		row < v.Viewport.Y || row >= v.Viewport.Y+v.textHeight() {
		term.HideCursor()
		return
	}
	term.MoveCursor(col, row)
	term.ShowCursor()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
