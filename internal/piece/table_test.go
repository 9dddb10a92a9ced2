package piece

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func (t *Table) fullBytes() []byte {
	return t.GetRange(0, t.totalLength)
}

func TestInsertAtBasic(t *testing.T) {
	tbl := LoadFromSlice([]byte("hello world"))
	if err := tbl.InsertAt(5, []byte(",")); err != nil {
		t.Fatalf("InsertAt: %v", err)
	}
	if got := string(tbl.fullBytes()); got != "hello, world" {
		t.Fatalf("got %q", got)
	}
}

func TestInsertAtOutOfBounds(t *testing.T) {
	tbl := LoadFromSlice([]byte("abc"))
	if err := tbl.InsertAt(10, []byte("x")); err != ErrPositionOutOfBounds {
		t.Fatalf("want ErrPositionOutOfBounds, got %v", err)
	}
}

func TestCoalescingMergesSequentialTyping(t *testing.T) {
	tbl := LoadFromSlice(nil)
	tbl.CoalesceWindow = time.Hour
	for i, r := range "hello" {
		if err := tbl.InsertAt(i, []byte(string(r))); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	if string(tbl.fullBytes()) != "hello" {
		t.Fatalf("got %q", tbl.fullBytes())
	}
	if len(tbl.pieces) != 1 {
		t.Fatalf("want coalesced into 1 piece, got %d: %+v", len(tbl.pieces), tbl.pieces)
	}
}

func TestDeleteSinglePieceCases(t *testing.T) {
	tbl := LoadFromSlice([]byte("abcdef"))
	if n, err := tbl.Delete(2, 2); err != nil || n != 2 {
		t.Fatalf("delete: %d %v", n, err)
	}
	if got := string(tbl.fullBytes()); got != "abef" {
		t.Fatalf("got %q", got)
	}
}

func TestDeleteAcrossPieces(t *testing.T) {
	tbl := LoadFromSlice([]byte("abc"))
	if err := tbl.InsertAt(3, []byte("def")); err != nil {
		t.Fatal(err)
	}
	if err := tbl.InsertAt(6, []byte("ghi")); err != nil {
		t.Fatal(err)
	}
	// Buffer is now "abcdefghi"; the deleted range spans whatever piece
	// boundaries resulted from the two inserts above.
	if n, err := tbl.Delete(2, 5); err != nil || n != 5 {
		t.Fatalf("delete: %d %v", n, err)
	}
	if got := string(tbl.fullBytes()); got != "abhi" {
		t.Fatalf("got %q", got)
	}
}

func TestDeleteClampsCount(t *testing.T) {
	tbl := LoadFromSlice([]byte("abc"))
	if n, err := tbl.Delete(1, 100); err != nil || n != 2 {
		t.Fatalf("delete: %d %v", n, err)
	}
	if got := string(tbl.fullBytes()); got != "a" {
		t.Fatalf("got %q", got)
	}
}

func TestPieceLengthConsistency(t *testing.T) {
	tbl := LoadFromSlice([]byte("the quick brown fox"))
	ops := []struct {
		pos   int
		ins   string
		delAt int
		delN  int
	}{
		{pos: 4, ins: "very "},
		{delAt: 0, delN: 4},
		{pos: 0, ins: "A "},
	}
	for _, op := range ops {
		if op.ins != "" {
			if err := tbl.InsertAt(op.pos, []byte(op.ins)); err != nil {
				t.Fatal(err)
			}
		}
		if op.delN != 0 {
			if _, err := tbl.Delete(op.delAt, op.delN); err != nil {
				t.Fatal(err)
			}
		}
		sum := 0
		for _, p := range tbl.pieces {
			sum += p.Length
		}
		if sum != tbl.totalLength {
			t.Fatalf("piece length sum %d != total_length %d", sum, tbl.totalLength)
		}
		if got := len(tbl.fullBytes()); got != tbl.totalLength {
			t.Fatalf("observed byte count %d != total_length %d", got, tbl.totalLength)
		}
	}
}

func TestLineIndexSoundness(t *testing.T) {
	tbl := LoadFromSlice([]byte("abc\ndef\nghi"))
	if got, want := tbl.LineCount(), 3; got != want {
		t.Fatalf("LineCount() = %d, want %d", got, want)
	}
	if _, err := tbl.Delete(3, 5); err != nil {
		t.Fatal(err)
	}
	if got, want := string(tbl.fullBytes()), "abcghi"; got != want {
		t.Fatalf("got %q", got)
	}
	if got, want := tbl.LineCount(), 1; got != want {
		t.Fatalf("LineCount() after delete = %d, want %d", got, want)
	}
}

func TestLineIndexSoundnessScenarioS2(t *testing.T) {
	tbl := LoadFromSlice([]byte("abc\ndef\nghi"))
	if n, err := tbl.Delete(3, 2); err != nil || n != 2 {
		t.Fatalf("delete: %d %v", n, err)
	}
	if got, want := string(tbl.fullBytes()), "abcef\nghi"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if got, want := tbl.LineCount(), 2; got != want {
		t.Fatalf("LineCount() = %d want %d", got, want)
	}
	start, ok := tbl.GetLineStart(1)
	if !ok || start != 6 {
		t.Fatalf("GetLineStart(1) = %d,%v want 6,true", start, ok)
	}
}

func TestGetLineRange(t *testing.T) {
	tbl := LoadFromSlice([]byte("one\ntwo\nthree"))
	start, end, ok := tbl.GetLineRange(1)
	if !ok || start != 4 || end != 8 {
		t.Fatalf("GetLineRange(1) = %d,%d,%v", start, end, ok)
	}
	start, end, ok = tbl.GetLineRange(2)
	if !ok || start != 8 || end != 13 {
		t.Fatalf("GetLineRange(2) = %d,%d,%v", start, end, ok)
	}
	if _, _, ok := tbl.GetLineRange(3); ok {
		t.Fatalf("GetLineRange(3) should be out of range")
	}
}

func TestSearchForwardFindsAllNonOverlapping(t *testing.T) {
	tbl := LoadFromSlice([]byte("ababab"))
	var got []int
	pos := 0
	for {
		m, ok := tbl.SearchForward([]byte("ab"), pos)
		if !ok {
			break
		}
		got = append(got, m)
		pos = m + 2
	}
	want := []int{0, 2, 4}
	if !equalInts(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestSearchForwardAcrossPieceBoundary(t *testing.T) {
	tbl := LoadFromSlice([]byte("abc"))
	if err := tbl.InsertAt(3, []byte("def")); err != nil {
		t.Fatal(err)
	}
	// pieces are [abc][def]; pattern straddles the boundary.
	pos, ok := tbl.SearchForward([]byte("cde"), 0)
	if !ok || pos != 2 {
		t.Fatalf("SearchForward = %d,%v want 2,true", pos, ok)
	}
}

func TestSearchBackward(t *testing.T) {
	tbl := LoadFromSlice([]byte("ababab"))
	pos, ok := tbl.SearchBackward([]byte("ab"), 6)
	if !ok || pos != 4 {
		t.Fatalf("SearchBackward = %d,%v want 4,true", pos, ok)
	}
	pos, ok = tbl.SearchBackward([]byte("ab"), 4)
	if !ok || pos != 2 {
		t.Fatalf("SearchBackward = %d,%v want 2,true", pos, ok)
	}
}

func TestGetRangeBoundedNotErroring(t *testing.T) {
	tbl := LoadFromSlice([]byte("abc"))
	if got := tbl.GetRange(1, 100); string(got) != "bc" {
		t.Fatalf("got %q", got)
	}
	if got := tbl.GetRange(10, 5); got != nil {
		t.Fatalf("got %q, want nil past end", got)
	}
}

func TestLargeDocumentRoundTrip(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 2000; i++ {
		b.WriteString("line ")
		b.WriteString(strings.Repeat("x", i%7))
		b.WriteByte('\n')
	}
	src := b.String()
	tbl := LoadFromSlice([]byte(src))
	if got := tbl.fullBytes(); !bytes.Equal(got, []byte(src)) {
		t.Fatalf("round trip mismatch: len got=%d want=%d", len(got), len(src))
	}
	if got, want := tbl.LineCount(), 2001; got != want {
		t.Fatalf("LineCount = %d want %d", got, want)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
