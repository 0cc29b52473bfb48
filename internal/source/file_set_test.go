package source

import (
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("units/main.ky", []byte("fn main() void:\n  return\n"), 0)
	id2 := fs.Add("units/main.ky", []byte("fn main() void:\n  pass\n"), 0)
	if id1 == id2 {
		t.Fatalf("expected a new FileID for the second Add")
	}
	latest, ok := fs.GetLatest("units/./main.ky")
	if !ok || latest != id2 {
		t.Fatalf("expected latest id %d, got %d (ok=%v)", id2, latest, ok)
	}
}

func TestFileGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.Add("a.ky", []byte("first\nsecond\nthird"), 0)
	f := fs.Get(id)
	cases := map[uint32]string{1: "first", 2: "second", 3: "third", 4: "", 0: ""}
	for line, want := range cases {
		if got := f.GetLine(line); got != want {
			t.Errorf("line %d: got %q, want %q", line, got, want)
		}
	}
}

func TestNormalizeCRLFAndBOM(t *testing.T) {
	content, bom := removeBOM([]byte{0xEF, 0xBB, 0xBF, 'a', '\r', '\n', 'b'})
	if !bom {
		t.Fatalf("expected BOM to be detected")
	}
	content, crlf := normalizeCRLF(content)
	if !crlf || string(content) != "a\nb" {
		t.Fatalf("unexpected normalization result %q (crlf=%v)", content, crlf)
	}
}

func TestSpanCoverAndOrder(t *testing.T) {
	a := Span{File: 1, Line: 3, Col: 5, EndCol: 9}
	b := Span{File: 1, Line: 3, Col: 2, EndCol: 6}
	got := a.Cover(b)
	if got.Col != 2 || got.EndCol != 9 {
		t.Fatalf("unexpected cover result %v", got)
	}
	if !b.Before(a) || a.Before(b) {
		t.Fatalf("expected %v before %v", b, a)
	}
	other := Span{File: 1, Line: 4, Col: 1, EndCol: 2}
	if a.Cover(other) != a {
		t.Fatalf("spans on different lines must not merge")
	}
	if NoSpan.IsValid() {
		t.Fatalf("NoSpan must be invalid")
	}
}
