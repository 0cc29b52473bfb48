package astio

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kestrel/internal/ast"
	"kestrel/internal/source"
	"kestrel/internal/testkit"
)

const sample = `
source: |
  fn main() { let x = 1 }
units:
  - name: main
    fns:
      - name: main
        span: {line: 1, col: 1, end: 24}
        body:
          - kind: let
            name: x
            value: {kind: int, text: "1", span: {line: 1, col: 21, end: 22}}
            span: {line: 1, col: 13, end: 22}
`

func TestDecodeYAML(t *testing.T) {
	doc, err := DecodeYAML([]byte(sample))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Units) != 1 || len(doc.Units[0].Fns) != 1 {
		t.Fatalf("unexpected shape %+v", doc)
	}
	let := doc.Units[0].Fns[0].Body[0]
	if let.Kind != ast.StmtLet || let.Value.Kind != ast.ExprInt || let.Value.Span.Col != 21 {
		t.Fatalf("let decoded as %+v", let)
	}
	if !strings.HasPrefix(doc.Source, "fn main()") {
		t.Fatalf("source lost: %q", doc.Source)
	}
}

func TestDecodeYAMLRejects(t *testing.T) {
	cases := map[string]string{
		"unknown field": "units: [{name: main, fnz: []}]",
		"bad kind":      "units: [{name: main, fns: [{name: f, body: [{kind: loop}]}]}]",
		"no units":      "source: x",
		"unnamed unit":  "units: [{fns: []}]",
		"two docs":      "units: [{name: a}]\n---\nunits: [{name: b}]",
	}
	for name, src := range cases {
		if _, err := DecodeYAML([]byte(src)); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
}

func TestCacheKeepsForest(t *testing.T) {
	doc, err := DecodeYAML([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	doc.Path = "main.k"
	var buf bytes.Buffer
	if err := EncodeCache(&buf, []*Document{doc}); err != nil {
		t.Fatal(err)
	}
	docs, err := DecodeCache(&buf)
	if err != nil {
		t.Fatal(err)
	}
	got := docs[0].Units[0].Fns[0].Body[0]
	if docs[0].Path != "main.k" || got.Kind != ast.StmtLet || got.Value.Text != "1" || got.Span.Col != 13 {
		t.Fatalf("cache changed the forest: %+v", got)
	}
}

func TestDecodeCacheRejectsOtherSchema(t *testing.T) {
	var buf bytes.Buffer
	p := cachePayload{Schema: cacheSchema + 1}
	if err := encodePayload(&buf, &p); err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeCache(&buf); !errors.Is(err, ErrStaleCache) {
		t.Fatalf("expected a stale cache error, got %v", err)
	}
}

func TestLoadFilesStampsSpans(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	if err := os.WriteFile(a, []byte(sample), 0o600); err != nil {
		t.Fatal(err)
	}
	doc, err := DecodeYAML([]byte("units: [{name: lib}]"))
	if err != nil {
		t.Fatal(err)
	}
	doc.Path = "lib.k"
	cache := filepath.Join(dir, "lib"+CacheExt)
	if err := WriteCache(cache, []*Document{doc}); err != nil {
		t.Fatal(err)
	}

	fs := source.NewFileSet()
	forest, docs, err := LoadFiles(context.Background(), fs, []string{a, cache}, 2)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(docs) != 2 || len(forest.Units) != 2 || forest.Units[1].Name != "lib" {
		t.Fatalf("unexpected forest %+v", forest.Units)
	}
	main := forest.Units[0]
	value := main.Fns[0].Body[0].Value
	if value.Span.File != main.File || fs.Name(main.File) != filepath.ToSlash(a) {
		t.Fatalf("spans not stamped with %s", fs.Name(main.File))
	}
	if line := fs.Get(main.File).GetLine(1); !strings.Contains(line, "let x") {
		t.Fatalf("source text not registered: %q", line)
	}
	if fs.Name(forest.Units[1].File) != "lib.k" {
		t.Fatalf("cache document path lost")
	}

	if _, _, err := LoadFiles(context.Background(), fs, []string{filepath.Join(dir, "missing.yaml")}, 1); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestLoadedSpansFitSource(t *testing.T) {
	doc, err := DecodeYAML([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	doc.Path = "main.k"
	fs := source.NewFileSet()
	forest := Register(fs, []*Document{doc})
	u := forest.Units[0]
	if err := testkit.CheckSpanInvariants(u, fs.Get(u.File)); err != nil {
		t.Fatal(err)
	}
	u.Fns[0].Body[0].Value.Span.EndCol = 80
	if err := testkit.CheckSpanInvariants(u, fs.Get(u.File)); err == nil {
		t.Fatalf("a span past the end of its line should be rejected")
	}
}
