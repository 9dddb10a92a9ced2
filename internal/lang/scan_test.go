package lang

import "testing"

func TestScanLineComment(t *testing.T) {
	d := &Definition{LineComment: "//", BlockStart: "/*", BlockEnd: "*/"}
	la := d.ScanLine([]byte(`x := 1 // set x`), false)
	if la.EndsInBlock {
		t.Fatal("should not end in block")
	}
	if len(la.Spans) != 1 || la.Spans[0].Start != 7 {
		t.Fatalf("got %+v", la.Spans)
	}
}

func TestScanBlockCommentAcrossLines(t *testing.T) {
	d := &Definition{LineComment: "//", BlockStart: "/*", BlockEnd: "*/"}
	la1 := d.ScanLine([]byte(`x := 1 /* start of`), false)
	if !la1.EndsInBlock {
		t.Fatal("expected unterminated block to carry over")
	}
	la2 := d.ScanLine([]byte(`  a comment */ y := 2`), true)
	if la2.EndsInBlock {
		t.Fatal("should have closed")
	}
	if len(la2.Spans) != 1 || la2.Spans[0].Start != 0 || la2.Spans[0].End != 14 {
		t.Fatalf("got %+v", la2.Spans)
	}
}

func TestScanNoLanguage(t *testing.T) {
	var d *Definition
	la := d.ScanLine([]byte("anything"), false)
	if len(la.Spans) != 0 {
		t.Fatalf("nil definition should produce no spans, got %+v", la.Spans)
	}
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	if d := r.Lookup(".go"); d == nil || d.Name != "Go" {
		t.Fatalf("got %+v", d)
	}
	if d := r.Lookup("PY"); d == nil || d.Name != "Python" {
		t.Fatalf("got %+v", d)
	}
	if d := r.Lookup("xyz123"); d != nil {
		t.Fatalf("unknown extension should be nil, got %+v", d)
	}
}
