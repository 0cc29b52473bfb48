package sema

import (
	"context"
	"strings"
	"testing"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/symbols"
	"kestrel/internal/types"
)

type checked struct {
	tab *symbols.Table
	res *Result
	bag *diag.Bag
}

func checkUnits(t *testing.T, units ...*ast.Unit) checked {
	t.Helper()
	bag := diag.NewBag(64)
	rep := diag.BagReporter{Bag: bag}
	tab, err := symbols.Build(ast.NewForest(units...), types.NewInterner(), symbols.Options{Core: "core", Reporter: rep})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected symbol diagnostics: %v", bag.Items())
	}
	res := Check(context.Background(), tab, Options{Reporter: rep})
	return checked{tab: tab, res: res, bag: bag}
}

func (c checked) clean(t *testing.T) {
	t.Helper()
	if c.bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", c.bag.Items())
	}
}

func (c checked) expect(t *testing.T, code diag.Code, fragment string) diag.Diagnostic {
	t.Helper()
	for _, d := range c.bag.Items() {
		if d.Code != code {
			continue
		}
		text := d.Message
		for _, n := range d.Notes {
			text += "\n" + n.Msg
		}
		if strings.Contains(text, fragment) {
			return d
		}
	}
	t.Fatalf("expected %v mentioning %q, got %v", code, fragment, c.bag.Items())
	return diag.Diagnostic{}
}

// fn returns the checked body of the only function called name.
func (c checked) fn(t *testing.T, name string) *hir.Func {
	t.Helper()
	var found *hir.Func
	for _, id := range c.res.Order {
		if c.tab.Fn(id).Name != name {
			continue
		}
		if found != nil {
			t.Fatalf("%s is overloaded", name)
		}
		found = c.res.Funcs[id]
	}
	if found == nil {
		t.Fatalf("no checked function %s", name)
	}
	return found
}

// calls collects every call in f in source order.
func calls(f *hir.Func) []*hir.Expr {
	var out []*hir.Expr
	hir.WalkBlock(f.Body, nil, func(e *hir.Expr) {
		if e.Kind == hir.ExprCall {
			out = append(out, e)
		}
	})
	return out
}

func callData(t *testing.T, e *hir.Expr) hir.CallData {
	t.Helper()
	d, ok := e.Data.(hir.CallData)
	if !ok {
		t.Fatalf("expected a call, got %v", e.Kind)
	}
	return d
}

func letOf(t *testing.T, f *hir.Func, name string) hir.LetData {
	t.Helper()
	var out *hir.LetData
	hir.WalkBlock(f.Body, func(s *hir.Stmt) {
		if d, ok := s.Data.(hir.LetData); ok && d.Name == name {
			out = &d
		}
	}, nil)
	if out == nil {
		t.Fatalf("no let %s", name)
	}
	return *out
}

func intT() *ast.TypeExpr  { return ast.T("int") }
func boolT() *ast.TypeExpr { return ast.T("bool") }
