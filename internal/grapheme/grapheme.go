// Package grapheme implements a finite, non-restartable forward+backward
// cursor over a piece.Table: byte and codepoint stepping, UAX #29 grapheme
// cluster segmentation, and East Asian Width display-width computation.
//
// Grounded on the teacher's use of rivo/uniseg (internal/tui/drawing.go's
// calculateVisualColumn, internal/core/cursor.go) for cluster iteration and
// width, generalized from "iterate a materialized string" to "iterate a
// piece-table-backed buffer" by fetching growing byte windows from the
// table instead of holding the whole line in memory.
package grapheme

import (
	"io"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/bethropolis/glyph/internal/piece"
)

// Cluster describes one user-perceived character: its first codepoint (used
// for classification, e.g. "is this a tab"), its display width in terminal
// columns, and how many bytes it occupies.
type Cluster struct {
	BaseCP       rune
	DisplayWidth int
	ByteLen      int
}

const (
	minWindow = 64
	maxWindow = 8192
)

// Iterator is a value type that owns its position and borrows the Table;
// it never mutates the buffer.
//
// spec.md's `seek` position cache (`{last_sought_pos, last_sought_piece_idx,
// last_sought_piece_start}`) is not duplicated here: Table already keeps a
// single-entry access cache across GetRange/ByteAt calls that are not
// preceded by a mutation, so Seek followed by sequential reads gets the
// same amortized O(1) behavior for free. See DESIGN.md.
type Iterator struct {
	t   *piece.Table
	pos int
}

// New returns an Iterator positioned at pos.
func New(t *piece.Table, pos int) *Iterator {
	return &Iterator{t: t, pos: pos}
}

// Pos returns the iterator's current byte position.
func (g *Iterator) Pos() int { return g.pos }

// Seek repositions the iterator without reading anything.
func (g *Iterator) Seek(pos int) { g.pos = pos }

// Next returns the byte at the current position and advances by one.
func (g *Iterator) Next() (byte, bool) {
	b, ok := g.t.ByteAt(g.pos)
	if !ok {
		return 0, false
	}
	g.pos++
	return b, true
}

// Prev steps back one byte and returns it.
func (g *Iterator) Prev() (byte, bool) {
	if g.pos <= 0 {
		return 0, false
	}
	g.pos--
	b, _ := g.t.ByteAt(g.pos)
	return b, true
}

// PeekByte returns the byte at the current position without advancing.
func (g *Iterator) PeekByte() (byte, bool) { return g.t.ByteAt(g.pos) }

// AlignToUTF8Start walks pos backward until it no longer lands on a UTF-8
// continuation byte.
func (g *Iterator) AlignToUTF8Start(pos int) int {
	for pos > 0 {
		b, ok := g.t.ByteAt(pos)
		if !ok || b&0xC0 != 0x80 {
			break
		}
		pos--
	}
	return pos
}

// NextCodepoint decodes and advances past one UTF-8 codepoint.
func (g *Iterator) NextCodepoint() (rune, error) {
	buf := g.t.GetRange(g.pos, utf8.UTFMax)
	if len(buf) == 0 {
		return 0, io.EOF
	}
	r, size := utf8.DecodeRune(buf)
	if r == utf8.RuneError && size <= 1 {
		return utf8.RuneError, ErrInvalidUTF8
	}
	g.pos += size
	return r, nil
}

// PrevCodepoint decodes the codepoint immediately before the current
// position and moves the cursor to its start.
func (g *Iterator) PrevCodepoint() (rune, error) {
	if g.pos <= 0 {
		return 0, io.EOF
	}
	start := g.AlignToUTF8Start(g.pos - 1)
	buf := g.t.GetRange(start, g.pos-start)
	r, size := utf8.DecodeRune(buf)
	if size == 0 {
		return 0, ErrInvalidUTF8
	}
	g.pos = start
	return r, nil
}

// fetchCluster grows the fetch window until FirstGraphemeCluster returns a
// cluster that didn't end exactly at the window's edge (meaning it's not
// truncated), or until maxWindow is reached.
func (g *Iterator) fetchCluster(pos int) ([]byte, int) {
	window := minWindow
	for {
		buf := g.t.GetRange(pos, window)
		if len(buf) == 0 {
			return nil, 0
		}
		cluster, _, width, _ := uniseg.FirstGraphemeCluster(buf, -1)
		if len(cluster) < len(buf) || len(buf) < window || window >= maxWindow {
			return cluster, width
		}
		window *= 2
	}
}

// adjustWidth resolves the display width uniseg reports for a cluster's
// base codepoint. uniseg returns -1 for codepoints whose East Asian Width
// is ambiguous/unassigned rather than guessing; go-runewidth's locale-aware
// table is the fallback consulted in that case, matching the teacher's
// terminal-width stack.
func adjustWidth(r rune, w int) int {
	if r < 0x20 || r == 0x7f {
		return 0
	}
	if w < 0 {
		return runewidth.RuneWidth(r)
	}
	return w
}

// NextGraphemeCluster returns the cluster starting at the current position
// and advances past it.
func (g *Iterator) NextGraphemeCluster() (Cluster, bool) {
	if g.pos >= g.t.Len() {
		return Cluster{}, false
	}
	raw, width := g.fetchCluster(g.pos)
	if len(raw) == 0 {
		return Cluster{}, false
	}
	r, _ := utf8.DecodeRune(raw)
	cl := Cluster{BaseCP: r, DisplayWidth: adjustWidth(r, width), ByteLen: len(raw)}
	g.pos += len(raw)
	return cl, true
}

// safeRestartBefore returns a position at or before pos from which a
// forward cluster scan is guaranteed correct: the start of the line
// containing pos-1. Line (and buffer) boundaries are always safe restart
// points because control characters, including '\n', are always their own
// grapheme cluster (UAX #29 GB4/GB5).
func (g *Iterator) safeRestartBefore(pos int) int {
	if pos <= 0 {
		return 0
	}
	line := g.t.FindLineByPos(pos - 1)
	start, _ := g.t.GetLineStart(line)
	return start
}

// PrevGraphemeCluster returns the cluster ending at the current position
// and moves the cursor to its start.
func (g *Iterator) PrevGraphemeCluster() (Cluster, bool) {
	if g.pos <= 0 {
		return Cluster{}, false
	}
	target := g.pos
	p := g.safeRestartBefore(target)

	var last Cluster
	var lastStart int
	found := false
	for p < target {
		raw, width := g.fetchCluster(p)
		if len(raw) == 0 {
			break
		}
		end := p + len(raw)
		if end <= target {
			r, _ := utf8.DecodeRune(raw)
			last = Cluster{BaseCP: r, DisplayWidth: adjustWidth(r, width), ByteLen: len(raw)}
			lastStart = p
			found = true
		}
		if end >= target {
			break
		}
		p = end
	}
	if !found {
		return Cluster{}, false
	}
	g.pos = lastStart
	return last, true
}

// CopyBytes copies from the current position into dest, advancing past
// whatever was copied, and returns the number of bytes copied.
func (g *Iterator) CopyBytes(dest []byte) int {
	n := copy(dest, g.t.GetRange(g.pos, len(dest)))
	g.pos += n
	return n
}

// StringWidth computes the total display width of an arbitrary string
// using the same rules as Cluster.DisplayWidth, for callers (the View's
// visibleWidth, which measures rendered row bytes) that don't have a
// piece-table-backed range to iterate.
func StringWidth(s string) int {
	width := 0
	state := -1
	for len(s) > 0 {
		var cluster string
		var w int
		cluster, s, w, state = uniseg.FirstGraphemeClusterInString(s, state)
		r, _ := utf8.DecodeRuneInString(cluster)
		width += adjustWidth(r, w)
	}
	return width
}
