package grapheme

import (
	"testing"

	"github.com/bethropolis/glyph/internal/piece"
)

func TestNextGraphemeClusterASCII(t *testing.T) {
	tbl := piece.LoadFromSlice([]byte("abc"))
	g := New(tbl, 0)
	var got []rune
	for {
		c, ok := g.NextGraphemeCluster()
		if !ok {
			break
		}
		got = append(got, c.BaseCP)
		if c.DisplayWidth != 1 {
			t.Fatalf("width = %d, want 1 for %q", c.DisplayWidth, c.BaseCP)
		}
	}
	want := []rune{'a', 'b', 'c'}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestGraphemeRoundTripForwardBackward(t *testing.T) {
	src := "ábc中\U0001F600d" // a+combining-acute, then CJK, then emoji
	tbl := piece.LoadFromSlice([]byte(src))

	var fwd []Cluster
	g := New(tbl, 0)
	for {
		c, ok := g.NextGraphemeCluster()
		if !ok {
			break
		}
		fwd = append(fwd, c)
	}

	var back []Cluster
	g2 := New(tbl, tbl.Len())
	for {
		c, ok := g2.PrevGraphemeCluster()
		if !ok {
			break
		}
		back = append(back, c)
	}

	if len(fwd) != len(back) {
		t.Fatalf("forward found %d clusters, backward found %d", len(fwd), len(back))
	}
	for i := range fwd {
		j := len(back) - 1 - i
		if fwd[i].BaseCP != back[j].BaseCP || fwd[i].ByteLen != back[j].ByteLen {
			t.Fatalf("mismatch at %d: forward=%+v backward=%+v", i, fwd[i], back[j])
		}
	}
}

func TestControlCharWidthIsZero(t *testing.T) {
	tbl := piece.LoadFromSlice([]byte("\x01x"))
	g := New(tbl, 0)
	c, ok := g.NextGraphemeCluster()
	if !ok {
		t.Fatal("expected a cluster")
	}
	if c.DisplayWidth != 0 {
		t.Fatalf("width = %d, want 0 for control char", c.DisplayWidth)
	}
}

func TestWideCharWidthIsTwo(t *testing.T) {
	tbl := piece.LoadFromSlice([]byte("中"))
	g := New(tbl, 0)
	c, ok := g.NextGraphemeCluster()
	if !ok {
		t.Fatal("expected a cluster")
	}
	if c.DisplayWidth != 2 {
		t.Fatalf("width = %d, want 2 for CJK char", c.DisplayWidth)
	}
}

func TestAlignToUTF8Start(t *testing.T) {
	tbl := piece.LoadFromSlice([]byte("中x")) // 中 is 3 bytes
	g := New(tbl, 0)
	if got := g.AlignToUTF8Start(2); got != 0 {
		t.Fatalf("AlignToUTF8Start(2) = %d, want 0", got)
	}
	if got := g.AlignToUTF8Start(3); got != 3 {
		t.Fatalf("AlignToUTF8Start(3) = %d, want 3", got)
	}
}

func TestStringWidth(t *testing.T) {
	if w := StringWidth("ab"); w != 2 {
		t.Fatalf("StringWidth(ab) = %d, want 2", w)
	}
	if w := StringWidth("中"); w != 2 {
		t.Fatalf("StringWidth(中) = %d, want 2", w)
	}
}
