// Package view is the display state and differential renderer spec.md
// §4.5 describes: scroll position and cursor held in display-width units,
// a previous-frame cache for byte-level diffing, and a handful of small
// bounded caches keyed off the PieceTable's modification_count so the
// View never has to be told explicitly that the buffer changed under it.
//
// Grounded on the teacher's internal/tui (TUI.Size/Clear/Show lifecycle)
// and internal/tui/drawing.go (the grapheme-cluster draw loop: tab
// expansion to the next stop, per-cluster display width via uniseg,
// selection/highlight style layering, gutter width from line count),
// generalized from tcell's cell-grid SetContent model to raw ANSI byte
// emission with an explicit previous-frame diff, since this View owns the
// terminal directly (internal/terminal) instead of drawing into a
// tcell.Screen.
package view

import (
	"github.com/bethropolis/glyph/internal/grapheme"
	"github.com/bethropolis/glyph/internal/lang"
	"github.com/bethropolis/glyph/internal/piece"
	"github.com/bethropolis/glyph/internal/regex"
	"github.com/bethropolis/glyph/internal/theme"
)

const (
	blockCommentCacheSize = 64
	lineAnalysisCacheSize = 64
	lineWidthCacheSize    = 128
)

// Viewport is the screen rectangle this View draws into.
type Viewport struct {
	X, Y, Width, Height int
}

// Selection is the active mark..point region, in buffer byte offsets
// already normalized so Start <= End.
type Selection struct {
	Active     bool
	Start, End int
}

// StatusFields are the caller-supplied facts the status bar renders;
// View owns none of this state, it only formats it.
type StatusFields struct {
	Filename  string
	ReadOnly  bool
	Modified  bool
	Line, Col int
	Encoding  string
	CRLF      bool
	Overwrite bool
	Message   string // transient message; replaces the whole bar when set
}

type blockCommentEntry struct {
	valid   bool
	line    int
	inBlock bool
}

type lineAnalysisEntry struct {
	valid    bool
	line     int
	analysis lang.LineAnalysis
}

type cursorBytePosCache struct {
	valid          bool
	x, y, topLine  int
	pos            int
}

type cursorPrevCharCache struct {
	valid   bool
	pos     int
	cluster grapheme.Cluster
}

// View is one rendering surface over a PieceTable. The Controller owns
// the PieceTable; View only ever reads it.
type View struct {
	table *piece.Table
	theme *theme.Theme
	lang  *lang.Definition

	TopLine, TopCol  int
	CursorX, CursorY int
	Viewport         Viewport

	TabWidth        int
	ScrollOff       int
	StatusBarHeight int
	ShowLineNumbers bool
	lineNumWidth    int

	Selection     Selection
	SearchPattern []byte
	SearchRegex   *regex.Program
	// SearchCurrentMatchPos is the buffer byte offset of the match that
	// should receive the distinct "current match" highlight, or -1.
	SearchCurrentMatchPos int

	expandedLine    []byte
	highlightedLine []byte
	plainVisible    []byte
	visibleMap      []int
	rawOffsets      []int

	prevScreen       [][]byte
	needsFullRedraw  bool
	statusBarDirty   bool
	scrollDelta      int
	lastViewportW    int
	lastViewportH    int
	lastLineNumWidth int

	blockCommentCache [blockCommentCacheSize]blockCommentEntry
	lineAnalysisCache [lineAnalysisCacheSize]lineAnalysisEntry
	lineWidthCache    [lineWidthCacheSize]int
	lineWidthBase     int

	cursorBytePos  cursorBytePosCache
	cursorPrevChar cursorPrevCharCache

	lastModCount int
	lastStatusLine string
}

// New creates a View over table, sized to viewport.
func New(table *piece.Table, th *theme.Theme, viewport Viewport) *View {
	v := &View{
		table:                 table,
		theme:                 th,
		Viewport:              viewport,
		TabWidth:              8,
		StatusBarHeight:       1,
		ShowLineNumbers:       true,
		SearchCurrentMatchPos: -1,
		needsFullRedraw:       true,
		lastModCount:          table.ModificationCount(),
	}
	v.resetLineWidthCache()
	v.resizePrevScreen()
	return v
}

// SetLanguage installs the comment/indent definition used for comment-span
// highlighting; nil disables it.
func (v *View) SetLanguage(def *lang.Definition) {
	v.lang = def
	v.invalidateAnalysisCaches()
}

// SetTabWidth changes the effective tab width, invalidating every cache
// whose contents depend on column layout.
func (v *View) SetTabWidth(w int) {
	if w <= 0 {
		w = 8
	}
	if w == v.TabWidth {
		return
	}
	v.TabWidth = w
	v.resetLineWidthCache()
	v.cursorBytePos.valid = false
	v.MarkFullRedraw()
}

// MarkFullRedraw forces the next Render to repaint every row.
func (v *View) MarkFullRedraw() {
	v.needsFullRedraw = true
	v.statusBarDirty = true
}

// MarkScroll records that the viewport moved by delta lines (positive =
// content scrolled up, revealing later lines) so Render can try the
// scroll-region fast path instead of a full redraw.
func (v *View) MarkScroll(delta int) { v.scrollDelta += delta }

// Resize adjusts the viewport to a new terminal size, invalidating the
// previous-frame cache so the next Render repaints everything. Called by
// the SIGWINCH handler once terminal.Refresh reports a size change.
func (v *View) Resize(width, height int) {
	v.Viewport.Width = width
	v.Viewport.Height = height
	v.resizePrevScreen()
	v.Reconcile()
	v.MarkFullRedraw()
}

// textHeight is the number of rows available for buffer content, after
// reserving StatusBarHeight rows at the bottom of the viewport.
func (v *View) textHeight() int {
	h := v.Viewport.Height - v.StatusBarHeight
	if h < 1 {
		h = 1
	}
	return h
}

func (v *View) resizePrevScreen() {
	h := v.Viewport.Height
	if h < 1 {
		h = 1
	}
	v.prevScreen = make([][]byte, h)
	v.lastViewportW = v.Viewport.Width
	v.lastViewportH = v.Viewport.Height
}

func (v *View) resetLineWidthCache() {
	for i := range v.lineWidthCache {
		v.lineWidthCache[i] = -1
	}
	v.lineWidthBase = v.TopLine
}

func (v *View) invalidateAnalysisCaches() {
	for i := range v.lineAnalysisCache {
		v.lineAnalysisCache[i].valid = false
	}
	for i := range v.blockCommentCache {
		v.blockCommentCache[i].valid = false
	}
	v.MarkFullRedraw()
}

// pollModification invalidates every cache keyed by buffer content when
// the PieceTable has mutated since the last check. This is the View's
// only coupling to the Controller: it never receives explicit edit
// notifications, it just notices modification_count moved (spec.md §9's
// "communicate invalidation via the modification_count counter that the
// View polls").
func (v *View) pollModification() {
	mc := v.table.ModificationCount()
	if mc == v.lastModCount {
		return
	}
	v.lastModCount = mc
	v.invalidateAnalysisCaches()
	v.resetLineWidthCache()
	v.cursorBytePos.valid = false
	v.cursorPrevChar.valid = false
	v.MarkFullRedraw()
}

func (v *View) blockCommentAt(line int) bool {
	slot := &v.blockCommentCache[line%blockCommentCacheSize]
	if slot.valid && slot.line == line {
		return slot.inBlock
	}
	inBlock := false
	if v.lang != nil && line > 0 {
		prevInBlock := v.blockCommentAt(line - 1)
		prevStart, _ := v.table.GetLineStart(line - 1)
		prevEnd := v.table.FindLineEndFromPos(prevStart)
		raw := v.table.GetRange(prevStart, prevEnd-prevStart)
		inBlock = v.lang.ScanLine(raw, prevInBlock).EndsInBlock
	}
	*slot = blockCommentEntry{valid: true, line: line, inBlock: inBlock}
	return inBlock
}

func (v *View) lineAnalysis(line int, raw []byte, startInBlock bool) lang.LineAnalysis {
	slot := &v.lineAnalysisCache[line%lineAnalysisCacheSize]
	if slot.valid && slot.line == line {
		return slot.analysis
	}
	var a lang.LineAnalysis
	if v.lang != nil {
		a = v.lang.ScanLine(raw, startInBlock)
	}
	*slot = lineAnalysisEntry{valid: true, line: line, analysis: a}
	return a
}

// lineDisplayWidth returns the full display width of fileLine, using the
// line-width cache (shifted on scroll, not invalidated, per spec.md's
// §4.5 cache description).
func (v *View) lineDisplayWidth(fileLine int) int {
	idx := fileLine - v.lineWidthBase
	if idx >= 0 && idx < lineWidthCacheSize && v.lineWidthCache[idx] >= 0 {
		return v.lineWidthCache[idx]
	}
	start, end, ok := v.table.GetLineRange(fileLine)
	width := 0
	if ok {
		it := grapheme.New(v.table, start)
		for it.Pos() < end {
			c, ok := it.NextGraphemeCluster()
			if !ok {
				break
			}
			width += clusterColumns(c, width, v.TabWidth)
		}
	}
	if idx >= 0 && idx < lineWidthCacheSize {
		v.lineWidthCache[idx] = width
	}
	return width
}

// clusterColumns is how many columns a cluster occupies starting at the
// given running column, accounting for tab stops.
func clusterColumns(c grapheme.Cluster, col, tabWidth int) int {
	if c.BaseCP == '\t' {
		if tabWidth <= 0 {
			tabWidth = 8
		}
		return tabWidth - (col % tabWidth)
	}
	return c.DisplayWidth
}
