package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"kestrel/internal/diag"
	"kestrel/internal/source"
)

func sampleBag(fs *source.FileSet) *diag.Bag {
	file := fs.AddVirtual("/work/src/main.k", []byte("fn main() {\n\tlet x: int = \"s\"\n}\n"))
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.SemaTypeMismatch, source.Span{File: file, Line: 2, Col: 15, EndCol: 18}, "expected int, found str").
		WithNote(source.Span{File: file, Line: 2, Col: 9, EndCol: 10}, "x declared here").
		WithFix("change the type of x", diag.FixEdit{Span: source.Span{File: file, Line: 2, Col: 9, EndCol: 12}, NewText: "str"}))
	return bag
}

func TestPrettyUnderlinesSpan(t *testing.T) {
	fs := source.NewFileSet()
	bag := sampleBag(fs)
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true, ShowFixes: true}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(buf.String(), "\n")
	if lines[0] != "main.k:2:15: ERROR SEM3200: expected int, found str" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != " 2 |     let x: int = \"s\"" {
		t.Fatalf("source line = %q", lines[1])
	}
	// the tab is four cells wide, so column 15 sits at cell 17
	if lines[2] != "   | "+strings.Repeat(" ", 17)+"^~~" {
		t.Fatalf("marker = %q", lines[2])
	}
	if !strings.Contains(buf.String(), "note: main.k:2:9: x declared here") {
		t.Fatalf("note missing:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "help: change the type of x") {
		t.Fatalf("fix missing:\n%s", buf.String())
	}
}

func TestPrettyWideRunes(t *testing.T) {
	shown, pad, width := layoutLine("let 名前 = 1", source.Span{Line: 1, Col: 5, EndCol: 7}, 0)
	if shown != "let 名前 = 1" || pad != 4 || width != 4 {
		t.Fatalf("got %q pad=%d width=%d", shown, pad, width)
	}
}

func TestPrettyColor(t *testing.T) {
	fs := source.NewFileSet()
	bag := sampleBag(fs)
	var plain, colored bytes.Buffer
	if err := Pretty(&plain, bag, fs, PrettyOpts{}); err != nil {
		t.Fatal(err)
	}
	if err := Pretty(&colored, bag, fs, PrettyOpts{Color: true}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(plain.String(), "\x1b[") || !strings.Contains(colored.String(), "\x1b[") {
		t.Fatalf("colour flag not honoured")
	}
}

func TestJSON(t *testing.T) {
	fs := source.NewFileSet()
	bag := sampleBag(fs)
	bag.Add(diag.NewError(diag.MonoNoMain, source.Span{}, "no main function"))
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{PathMode: PathModeRelative, BaseDir: "/work", IncludeNotes: true, IncludeFixes: true}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 2 || out.Errors != 2 {
		t.Fatalf("unexpected counts %+v", out)
	}
	first := out.Diagnostics[0]
	if first.Location.File != "src/main.k" || first.Location.Line != 2 || len(first.Notes) != 1 || first.Fixes[0].Edits[0].NewText != "str" {
		t.Fatalf("unexpected first diagnostic %+v", first)
	}
	if out.Diagnostics[1].Code != "MON6001" || out.Diagnostics[1].Location.File != "<unknown>" {
		t.Fatalf("unexpected second diagnostic %+v", out.Diagnostics[1])
	}
}

func TestColorEnabledOnBuffer(t *testing.T) {
	if ColorEnabled(&bytes.Buffer{}) || TerminalWidth(&bytes.Buffer{}) != 0 {
		t.Fatalf("a buffer is not a terminal")
	}
}
