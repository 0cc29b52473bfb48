package diag

import (
	"errors"
	"strings"
	"testing"

	"kestrel/internal/source"
)

func TestBagLimitAndSort(t *testing.T) {
	bag := NewBag(2)
	r := BagReporter{Bag: bag}
	ReportError(r, SemaUnknownType, source.Span{File: 0, Line: 5, Col: 1, EndCol: 3}, "late").Emit()
	ReportError(r, SemaUnknownFunction, source.Span{File: 0, Line: 2, Col: 1, EndCol: 3}, "early").Emit()
	ReportError(r, SemaUnknownVariable, source.Span{File: 0, Line: 1, Col: 1, EndCol: 3}, "dropped").Emit()

	if bag.Len() != 2 {
		t.Fatalf("expected limit of 2 diagnostics, got %d", bag.Len())
	}
	bag.Sort()
	if bag.Items()[0].Message != "early" {
		t.Fatalf("expected sorted order, got %q first", bag.Items()[0].Message)
	}
	if !bag.HasCode(SemaUnknownType) || bag.HasCode(SemaUnknownVariable) {
		t.Fatalf("unexpected code set")
	}
}

func TestReportBuilderNotes(t *testing.T) {
	bag := NewBag(4)
	sp := source.Span{Line: 3, Col: 2, EndCol: 4}
	ReportError(BagReporter{Bag: bag}, SemaWrongArgumentTypes, sp, "no overload").
		WithNotes(sp, []string{"f(int) int", "f(str) int"}).
		Emit()
	d := bag.Items()[0]
	if len(d.Notes) != 2 || d.Notes[1].Msg != "f(str) int" {
		t.Fatalf("unexpected notes %+v", d.Notes)
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(8)
	r := NewDedupReporter(BagReporter{Bag: bag})
	sp := source.Span{Line: 1, Col: 1, EndCol: 2}
	r.Report(SemaUnknownType, SevError, sp, "unknown type Foo", nil, nil)
	r.Report(SemaUnknownType, SevError, sp, "unknown type Foo", nil, nil)
	if bag.Len() != 1 {
		t.Fatalf("expected duplicate to be dropped, got %d", bag.Len())
	}
}

func TestCompilerErrorRecovered(t *testing.T) {
	run := func() (err error) {
		defer RecoverInternal(&err)
		CompilerError("bad state %d", 7)
		return nil
	}
	err := run()
	var ie *InternalError
	if !errors.As(err, &ie) || !strings.Contains(ie.Message, "bad state 7") {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestShortFormat(t *testing.T) {
	fs := source.NewFileSet()
	f := fs.AddVirtual("main.ky", nil)
	diags := []Diagnostic{
		NewError(SemaMissingReturn, source.Span{File: f, Line: 4, Col: 1, EndCol: 3}, "f does not always return"),
	}
	got := FormatShortDiagnostics(diags, fs, false)
	want := "main.ky:4:1: ERROR SEM3208 f does not always return"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	fe := Fatal(MonoNoMain, source.NoSpan, "no main function")
	if fe.Error() != "MON6001: no main function" {
		t.Fatalf("unexpected fatal text %q", fe.Error())
	}
}
