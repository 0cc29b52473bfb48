package ast

import "testing"

func TestSubstituteLeavesOriginalIntact(t *testing.T) {
	body := Bin(Id("a"), "+", Call("f", Id("a"), QId("core", "a")))
	out := Substitute(body, map[string]*Expr{"a": Int(3)})

	if out.X.Kind != ExprInt || out.Y.Args[0].Value.Kind != ExprInt {
		t.Fatalf("unqualified identifiers should be replaced")
	}
	if out.Y.Args[1].Value.Kind != ExprIdent {
		t.Fatalf("qualified identifiers must stay")
	}
	if body.X.Kind != ExprIdent {
		t.Fatalf("source tree was mutated")
	}
}

func TestStampFile(t *testing.T) {
	u := NewUnit("main").Add(
		Func("main", nil, nil, If(Bool(true), Do(Call("f", Int(1))))),
	)
	StampFile(u, 4)
	var bad int
	WalkStmts(u.Fns[0].Body, func(s *Stmt) {
		if s.Span.File != 4 {
			bad++
		}
	}, func(e *Expr) {
		if e.Span.File != 4 {
			bad++
		}
	})
	if bad != 0 || u.File != 4 {
		t.Fatalf("%d nodes kept the old document", bad)
	}
}

func TestKindText(t *testing.T) {
	var m FnMode
	if err := m.UnmarshalText([]byte("declImpl")); err != nil || m != ModeDeclImpl {
		t.Fatalf("parse declImpl: %v %v", m, err)
	}
	if err := m.UnmarshalText([]byte("method")); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
	if !ModeTrait.Dispatchable() || ModeFn.Dispatchable() || ModeMacro.Callable() {
		t.Fatalf("mode predicates are off")
	}
}
