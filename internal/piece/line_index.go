package piece

import "sort"

// LineIndex maps line numbers to the byte offset of their first byte. It is
// maintained incrementally on every insert/delete so that most queries never
// trigger a rescan; a full or partial rebuild only happens after the index
// has been explicitly invalidated. In this package that happens once, when
// LoadFromSlice indexes the loaded content; after that
// update_for_insert/update_for_delete keep it exact.
//
// Grounded on spec.md §4.3; line_starts[0] is always 0 while the buffer is
// non-empty, and the slice is kept strictly increasing.
type LineIndex struct {
	lineStarts   []int
	valid        bool
	validUntilPos int
}

func newLineIndex() *LineIndex {
	return &LineIndex{lineStarts: []int{0}, valid: true, validUntilPos: 0}
}

// rangeFunc fetches n bytes starting at pos from the owning Table.
type rangeFunc func(pos, n int) []byte

// ensureValid rebuilds (fully or from validUntilPos) whatever portion of the
// index a prior invalidateFrom marked stale.
func (li *LineIndex) ensureValid(total int, fetch rangeFunc) {
	if li.valid {
		return
	}
	cut := li.validUntilPos
	n := sort.Search(len(li.lineStarts), func(i int) bool { return li.lineStarts[i] >= cut })
	li.lineStarts = li.lineStarts[:n]
	if len(li.lineStarts) == 0 {
		li.lineStarts = append(li.lineStarts, 0)
		cut = 0
	}
	if total > cut {
		chunk := fetch(cut, total-cut)
		for i, b := range chunk {
			if b == '\n' {
				li.lineStarts = append(li.lineStarts, cut+i+1)
			}
		}
	}
	li.valid = true
	li.validUntilPos = total
}

// invalidateFrom marks everything from pos onward stale; the next query
// rebuilds via ensureValid.
func (li *LineIndex) invalidateFrom(pos int) {
	i := li.findLine(pos)
	cut := 0
	if i < len(li.lineStarts) {
		cut = li.lineStarts[i]
	}
	if !li.valid {
		if cut < li.validUntilPos {
			li.validUntilPos = cut
		}
	} else {
		li.validUntilPos = cut
	}
	li.valid = false
}

func (li *LineIndex) updateForInsert(pos int, text []byte) {
	if !li.valid {
		if li.validUntilPos > pos {
			li.validUntilPos = pos
		}
		return
	}
	shift := len(text)
	idx := sort.Search(len(li.lineStarts), func(i int) bool { return li.lineStarts[i] > pos })
	for i := idx; i < len(li.lineStarts); i++ {
		li.lineStarts[i] += shift
	}
	var fresh []int
	for i, b := range text {
		if b == '\n' {
			fresh = append(fresh, pos+i+1)
		}
	}
	if len(fresh) > 0 {
		merged := make([]int, 0, len(li.lineStarts)+len(fresh))
		merged = append(merged, li.lineStarts[:idx]...)
		merged = append(merged, fresh...)
		merged = append(merged, li.lineStarts[idx:]...)
		li.lineStarts = merged
	}
	li.validUntilPos += shift
}

func (li *LineIndex) updateForDelete(pos, count, deletedNewlines int) {
	if !li.valid {
		if li.validUntilPos > pos {
			li.validUntilPos = pos
		}
		return
	}
	end := pos + count
	if deletedNewlines > 0 {
		out := li.lineStarts[:0]
		for _, v := range li.lineStarts {
			switch {
			case v <= pos:
				out = append(out, v)
			case v > pos && v <= end:
				// dropped: this line start fell inside the deleted range
			default:
				out = append(out, v-count)
			}
		}
		li.lineStarts = out
	} else {
		idx := sort.Search(len(li.lineStarts), func(i int) bool { return li.lineStarts[i] > pos })
		for i := idx; i < len(li.lineStarts); i++ {
			li.lineStarts[i] -= count
		}
	}
	li.validUntilPos -= count
}

func (li *LineIndex) lineCount() int { return len(li.lineStarts) }

func (li *LineIndex) lineStart(n int) (int, bool) {
	if n < 0 || n >= len(li.lineStarts) {
		return 0, false
	}
	return li.lineStarts[n], true
}

// findLine returns the largest line index i such that lineStarts[i] <= pos.
func (li *LineIndex) findLine(pos int) int {
	i := sort.Search(len(li.lineStarts), func(i int) bool { return li.lineStarts[i] > pos }) - 1
	if i < 0 {
		i = 0
	}
	return i
}
