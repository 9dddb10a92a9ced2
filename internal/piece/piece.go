// Package piece implements the text-storage core of the editor: an
// immutable "original" buffer (heap-allocated or mmap'd), a growable
// "add" buffer that all insertions append to, and an ordered list of
// Pieces whose concatenation is the logical document.
//
// Grounded on the append/overwrite buffer split used by
// oligo-gvcode's buffer.PieceTable, adapted to byte (not rune) offsets
// and to the mmap-backed original buffer spec.md requires.
package piece

// Source names which underlying byte array a Piece's range refers to.
type Source uint8

const (
	// Original is the immutable buffer the PieceTable was loaded with.
	Original Source = iota
	// Add is the growable, append-only buffer all inserts land in.
	Add
)

func (s Source) String() string {
	if s == Add {
		return "add"
	}
	return "original"
}

// Piece is an immutable descriptor of a half-open byte range
// [Start, Start+Length) in one of the two underlying buffers.
type Piece struct {
	Source Source
	Start  int
	Length int
}

func (p Piece) end() int { return p.Start + p.Length }
