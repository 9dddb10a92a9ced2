package piece

import (
	"bytes"
	"time"
)

// DefaultCoalesceWindow is the undo-granularity timer from spec.md §4.1: an
// insertion that lands immediately after the previous one, into the same
// Add-sourced piece, merges into it if less than this much time has passed.
const DefaultCoalesceWindow = 300 * time.Millisecond

type pieceAccessCache struct {
	valid      bool
	idx        int
	pieceStart int
}

type coalesceState struct {
	valid   bool
	pieceIdx int
	endPos  int
	at      time.Time
}

// Table is the piece table: an immutable original buffer, a growable add
// buffer every insert appends to, and the ordered list of Pieces whose
// concatenation is the logical document.
//
// Grounded on oligo-gvcode's buffer.PieceTable (original/modify split,
// tryAppendToLastPiece coalescing) adapted to byte offsets and to the
// mmap-backed original buffer spec.md requires (see mmap_unix.go).
type Table struct {
	original   []byte
	mapped     bool // true if original is an mmap and must be munmap'd on Close
	addBuf     []byte
	pieces     []Piece
	totalLength int

	modificationCount int
	cachedLineCount   int
	lineIdx           *LineIndex

	access    pieceAccessCache
	coalesce  coalesceState

	// CoalesceWindow may be overridden by internal/config; defaults to
	// DefaultCoalesceWindow.
	CoalesceWindow time.Duration
}

// NewEmpty returns a Table over an empty document.
func NewEmpty() *Table {
	return &Table{
		lineIdx:        newLineIndex(),
		CoalesceWindow: DefaultCoalesceWindow,
	}
}

// LoadFromSlice builds a Table whose original buffer is data. The Table does
// not take ownership in any special way here; data is treated as immutable
// for the Table's lifetime, per spec.md §6's ownership discipline.
func LoadFromSlice(data []byte) *Table {
	t := &Table{
		original:       data,
		lineIdx:        newLineIndex(),
		CoalesceWindow: DefaultCoalesceWindow,
	}
	if len(data) > 0 {
		t.pieces = []Piece{{Source: Original, Start: 0, Length: len(data)}}
		t.totalLength = len(data)
		t.cachedLineCount = 1 + bytes.Count(data, []byte{'\n'})
	} else {
		t.cachedLineCount = 1
	}
	t.lineIdx.invalidateFrom(0)
	t.lineIdx.ensureValid(t.totalLength, t.GetRange)
	return t
}

// Close releases the original buffer if it is an mmap. Safe to call on a
// Table built from LoadFromSlice or NewEmpty (no-op).
func (t *Table) Close() error {
	if t.mapped && t.original != nil {
		err := munmapOriginal(t.original)
		t.original = nil
		t.mapped = false
		return err
	}
	return nil
}

func (t *Table) bufferFor(s Source) []byte {
	if s == Add {
		return t.addBuf
	}
	return t.original
}

// Len returns the total byte length of the logical document.
func (t *Table) Len() int { return t.totalLength }

// ModificationCount increases on every insert and delete; View caches poll
// it to detect staleness without the Table holding a back-pointer to the
// View (spec.md §6's cyclic-reference note).
func (t *Table) ModificationCount() int { return t.modificationCount }

// findPieceAt locates the piece containing byte position pos, returning the
// piece index, that piece's global start offset, and pos's offset within
// it. pos == totalLength returns the sentinel (len(pieces), totalLength, 0),
// meaning "insert/append after everything".
func (t *Table) findPieceAt(pos int) (idx, pieceStart, offset int) {
	if pos >= t.totalLength {
		return len(t.pieces), t.totalLength, 0
	}
	start, cum := 0, 0
	if t.access.valid && t.access.idx < len(t.pieces) && pos >= t.access.pieceStart {
		start, cum = t.access.idx, t.access.pieceStart
	}
	for i := start; i < len(t.pieces); i++ {
		p := t.pieces[i]
		if pos < cum+p.Length {
			t.access = pieceAccessCache{valid: true, idx: i, pieceStart: cum}
			return i, cum, pos - cum
		}
		cum += p.Length
	}
	return len(t.pieces), t.totalLength, 0
}

func insertPieceAt(pieces []Piece, idx int, p Piece) []Piece {
	pieces = append(pieces, Piece{})
	copy(pieces[idx+1:], pieces[idx:])
	pieces[idx] = p
	return pieces
}

func countNewlines(buf []byte, start, length int) int {
	if length <= 0 {
		return 0
	}
	return bytes.Count(buf[start:start+length], []byte{'\n'})
}

func (t *Table) resetCoalesce() { t.coalesce = coalesceState{} }

// InsertAt inserts bytes before position pos. Fails with
// ErrPositionOutOfBounds if pos > total_length.
func (t *Table) InsertAt(pos int, data []byte) error {
	if pos < 0 || pos > t.totalLength {
		return ErrPositionOutOfBounds
	}
	if len(data) == 0 {
		return nil
	}

	pieceIdx := -1
	if t.coalesce.valid && pos == t.coalesce.endPos && t.coalesce.pieceIdx < len(t.pieces) {
		p := t.pieces[t.coalesce.pieceIdx]
		if p.Source == Add && p.Start+p.Length == len(t.addBuf) && time.Since(t.coalesce.at) < t.CoalesceWindow {
			t.addBuf = append(t.addBuf, data...)
			p.Length += len(data)
			t.pieces[t.coalesce.pieceIdx] = p
			pieceIdx = t.coalesce.pieceIdx
		}
	}

	if pieceIdx < 0 {
		addStart := len(t.addBuf)
		t.addBuf = append(t.addBuf, data...)
		idx, _, offset := t.findPieceAt(pos)
		newPiece := Piece{Source: Add, Start: addStart, Length: len(data)}
		switch {
		case idx >= len(t.pieces):
			t.pieces = append(t.pieces, newPiece)
			pieceIdx = len(t.pieces) - 1
		case offset == 0:
			t.pieces = insertPieceAt(t.pieces, idx, newPiece)
			pieceIdx = idx
		default:
			left := t.pieces[idx]
			right := Piece{Source: left.Source, Start: left.Start + offset, Length: left.Length - offset}
			left.Length = offset
			t.pieces[idx] = left
			t.pieces = insertPieceAt(t.pieces, idx+1, newPiece)
			t.pieces = insertPieceAt(t.pieces, idx+2, right)
			pieceIdx = idx + 1
		}
	}

	t.coalesce = coalesceState{valid: true, pieceIdx: pieceIdx, endPos: pos + len(data), at: time.Now()}
	t.totalLength += len(data)
	t.modificationCount++
	t.cachedLineCount += bytes.Count(data, []byte{'\n'})
	t.lineIdx.updateForInsert(pos, data)
	t.access = pieceAccessCache{}
	return nil
}

// Delete removes up to count bytes starting at pos; count is clamped so the
// operation never crosses total_length. Returns the number of bytes
// actually deleted.
func (t *Table) Delete(pos, count int) (int, error) {
	if pos < 0 || pos > t.totalLength {
		return 0, ErrPositionOutOfBounds
	}
	if count < 0 {
		count = 0
	}
	if pos+count > t.totalLength {
		count = t.totalLength - pos
	}
	if count == 0 {
		return 0, nil
	}
	end := pos + count
	t.resetCoalesce()

	newPieces := make([]Piece, 0, len(t.pieces))
	offset := 0
	deletedNewlines := 0
	for _, p := range t.pieces {
		pStart := offset
		pEnd := offset + p.Length
		offset = pEnd
		buf := t.bufferFor(p.Source)
		switch {
		case pEnd <= pos || pStart >= end:
			newPieces = append(newPieces, p)
		case pStart >= pos && pEnd <= end:
			deletedNewlines += countNewlines(buf, p.Start, p.Length)
		default:
			if pStart < pos {
				newPieces = append(newPieces, Piece{Source: p.Source, Start: p.Start, Length: pos - pStart})
			}
			delStart, delEnd := max(pStart, pos), min(pEnd, end)
			deletedNewlines += countNewlines(buf, p.Start+(delStart-pStart), delEnd-delStart)
			if pEnd > end {
				rel := end - pStart
				newPieces = append(newPieces, Piece{Source: p.Source, Start: p.Start + rel, Length: pEnd - end})
			}
		}
	}
	t.pieces = newPieces
	t.totalLength -= count
	t.modificationCount++
	t.cachedLineCount -= deletedNewlines
	t.lineIdx.updateForDelete(pos, count, deletedNewlines)
	t.access = pieceAccessCache{}
	return count, nil
}

// ByteAt returns the byte at pos, or ok=false if pos is out of range.
func (t *Table) ByteAt(pos int) (byte, bool) {
	if pos < 0 || pos >= t.totalLength {
		return 0, false
	}
	idx, _, offset := t.findPieceAt(pos)
	if idx >= len(t.pieces) {
		return 0, false
	}
	p := t.pieces[idx]
	return t.bufferFor(p.Source)[p.Start+offset], true
}

// GetRange returns up to length bytes starting at pos. Bounded: it returns
// fewer bytes (or none) rather than erroring when pos+length runs past the
// end of the document.
func (t *Table) GetRange(pos, length int) []byte {
	if pos < 0 {
		pos = 0
	}
	if pos >= t.totalLength || length <= 0 {
		return nil
	}
	if pos+length > t.totalLength {
		length = t.totalLength - pos
	}
	out := make([]byte, 0, length)
	idx, _, offset := t.findPieceAt(pos)
	remaining := length
	for remaining > 0 && idx < len(t.pieces) {
		p := t.pieces[idx]
		buf := t.bufferFor(p.Source)
		avail := p.Length - offset
		take := avail
		if take > remaining {
			take = remaining
		}
		out = append(out, buf[p.Start+offset:p.Start+offset+take]...)
		remaining -= take
		idx++
		offset = 0
	}
	return out
}

// ExtractText is an alias for GetRange used at call sites that want text
// for the undo log or kill-ring, matching the teacher's naming split
// between "read for rendering" and "read for recording an edit".
func (t *Table) ExtractText(pos, length int) []byte { return t.GetRange(pos, length) }

// LineCount returns the number of lines in the document (always >= 1).
func (t *Table) LineCount() int {
	t.lineIdx.ensureValid(t.totalLength, t.GetRange)
	return t.lineIdx.lineCount()
}

// GetLineStart returns the byte offset of the first byte of line, or
// ok=false if line is out of range.
func (t *Table) GetLineStart(line int) (int, bool) {
	t.lineIdx.ensureValid(t.totalLength, t.GetRange)
	return t.lineIdx.lineStart(line)
}

// FindLineByPos returns the line number containing byte offset pos.
func (t *Table) FindLineByPos(pos int) int {
	t.lineIdx.ensureValid(t.totalLength, t.GetRange)
	return t.lineIdx.findLine(pos)
}

// GetLineRange returns the [start, end) byte range of line, end being
// either the offset of the next line's start or total_length for the last
// line. ok is false if line is out of range.
func (t *Table) GetLineRange(line int) (start, end int, ok bool) {
	t.lineIdx.ensureValid(t.totalLength, t.GetRange)
	start, ok = t.lineIdx.lineStart(line)
	if !ok {
		return 0, 0, false
	}
	if next, has := t.lineIdx.lineStart(line + 1); has {
		end = next
	} else {
		end = t.totalLength
	}
	return start, end, true
}

// FindLineEndFromPos returns the offset of the '\n' terminating pos's line,
// or total_length if pos's line is the last (unterminated) one.
func (t *Table) FindLineEndFromPos(pos int) int {
	line := t.FindLineByPos(pos)
	_, end, _ := t.GetLineRange(line)
	if end > 0 && end <= t.totalLength {
		if end == t.totalLength {
			return end
		}
		return end - 1 // end points just past the '\n'
	}
	return end
}

// FindNextLineFromPos returns the start offset of the line after pos's
// line, or ok=false if pos's line is the last line.
func (t *Table) FindNextLineFromPos(pos int) (int, bool) {
	line := t.FindLineByPos(pos)
	return t.GetLineStart(line + 1)
}

// SearchForward scans for pattern starting at start, piece by piece,
// carrying at most len(pattern)-1 trailing bytes across piece boundaries so
// matches straddling a split are still found.
func (t *Table) SearchForward(pattern []byte, start int) (int, bool) {
	m := len(pattern)
	if m == 0 || start < 0 || start > t.totalLength {
		return 0, false
	}
	idx, _, offset := t.findPieceAt(start)
	pos := start
	var carry []byte
	for idx < len(t.pieces) {
		p := t.pieces[idx]
		buf := t.bufferFor(p.Source)
		seg := buf[p.Start+offset : p.Start+p.Length]

		var hay []byte
		hayBase := pos - len(carry)
		if len(carry) > 0 {
			hay = make([]byte, 0, len(carry)+len(seg))
			hay = append(hay, carry...)
			hay = append(hay, seg...)
		} else {
			hay = seg
		}
		if rel := bytes.Index(hay, pattern); rel >= 0 {
			return hayBase + rel, true
		}
		keep := m - 1
		if keep > len(hay) {
			keep = len(hay)
		}
		if keep > 0 {
			carry = append(carry[:0:0], hay[len(hay)-keep:]...)
		} else {
			carry = nil
		}
		pos += len(seg)
		idx++
		offset = 0
	}
	return 0, false
}

// SearchBackward scans candidate start positions from start-1 down to 0,
// trying an exact match at each; the first match (i.e. the rightmost
// occurrence starting before start) wins.
func (t *Table) SearchBackward(pattern []byte, start int) (int, bool) {
	m := len(pattern)
	if m == 0 {
		return 0, false
	}
	if start > t.totalLength {
		start = t.totalLength
	}
	for p := start - 1; p >= 0; p-- {
		if p+m > t.totalLength {
			continue
		}
		if bytes.Equal(t.GetRange(p, m), pattern) {
			return p, true
		}
	}
	return 0, false
}
