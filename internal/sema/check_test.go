package sema

import (
	"strings"
	"testing"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
)

func TestOverloadDisambiguation(t *testing.T) {
	c := checkUnits(t, ast.NewUnit("main").Add(
		ast.Func("f", ast.Params(ast.P("x", intT())), intT(), ast.Ret(ast.Int(1))),
		ast.Func("f", ast.Params(ast.P("x", ast.T("str"))), intT(), ast.Ret(ast.Int(2))),
		ast.Func("f", ast.Params(ast.P("x", ast.T("T"))), intT(), ast.Ret(ast.Int(3))),
		ast.Func("main", nil, nil,
			ast.Do(ast.Call("f", ast.Int(1))),
			ast.Do(ast.Call("f", ast.Str("a"))),
			ast.Do(ast.Call("f", ast.Bool(true))),
		),
	))
	c.clean(t)
	got := calls(c.fn(t, "main"))
	if len(got) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(got))
	}
	want := []string{"int", "str", "T"}
	for i, call := range got {
		fn := c.tab.Fn(callData(t, call).Fn)
		if param := c.tab.Types.Format(fn.Params[0].Type); param != want[i] {
			t.Fatalf("call %d picked f(%s), want f(%s)", i, param, want[i])
		}
	}
}

func TestAmbiguousLiteralOverload(t *testing.T) {
	c := checkUnits(t, ast.NewUnit("main").Add(
		ast.Func("f", ast.Params(ast.P("x", ast.T("i32"))), nil),
		ast.Func("f", ast.Params(ast.P("x", ast.T("i64"))), nil),
		ast.Func("main", nil, nil, ast.Do(ast.Call("f", ast.Int(1)))),
	))
	d := c.expect(t, diag.SemaAmbiguousFunction, "f(?int)")
	if len(d.Notes) != 2 {
		t.Fatalf("expected a note per candidate, got %v", d.Notes)
	}
}

func TestLiteralSettlesToFirstConcreteUse(t *testing.T) {
	c := checkUnits(t, ast.NewUnit("main").Add(
		ast.Func("g", ast.Params(ast.P("x", ast.T("f32"))), ast.T("f32"), ast.Ret(ast.Id("x"))),
		ast.Func("main", nil, nil,
			ast.Let("a", nil, ast.Int(1)),
			ast.Let("b", nil, ast.Call("g", ast.Id("a"))),
			ast.Let("n", nil, ast.Bin(ast.Int(2), "+", ast.Int(3))),
		),
	))
	c.clean(t)
	f := c.fn(t, "main")
	in := c.tab.Types
	a := letOf(t, f, "a")
	if got := in.Format(a.Type); got != "f32" {
		t.Fatalf("a should settle to f32, got %s", got)
	}
	if got := in.Format(a.Value.Type); got != "f32" {
		t.Fatalf("literal 1 should settle to f32, got %s", got)
	}
	if got := in.Format(letOf(t, f, "b").Type); got != "f32" {
		t.Fatalf("b should be f32, got %s", got)
	}
	n := letOf(t, f, "n")
	if got := in.Format(n.Type); got != "int" {
		t.Fatalf("unconstrained literals default to int, got %s", got)
	}
	sum := n.Value.Data.(hir.BinaryOpData)
	if in.Format(sum.Left.Type) != "int" || in.Format(sum.Right.Type) != "int" {
		t.Fatalf("operands should settle with their sum")
	}
}

func TestExhaustiveReturn(t *testing.T) {
	cond := ast.Params(ast.P("c", boolT()))
	c := checkUnits(t, ast.NewUnit("main").Add(
		ast.Func("open", cond, intT(), ast.If(ast.Id("c"), ast.Ret(ast.Int(1)))),
	))
	c.expect(t, diag.SemaMissingReturn, "open does not always return")

	c = checkUnits(t, ast.NewUnit("main").Add(
		ast.Func("closed", cond, intT(),
			ast.If(ast.Id("c"), ast.Ret(ast.Int(1))),
			ast.Else(ast.Ret(ast.Int(2))),
		),
		ast.Func("loops", nil, intT(), ast.While(ast.Bool(true), ast.Ret(ast.Int(1)))),
	))
	c.clean(t)
}

func TestStructureErrors(t *testing.T) {
	c := checkUnits(t, ast.NewUnit("main").Add(
		ast.Func("main", nil, nil,
			ast.Break(),
			ast.Else(),
			ast.While(ast.Bool(false), ast.Continue()),
		),
	))
	c.expect(t, diag.SemaLoopControlOutside, "break outside of a loop")
	c.expect(t, diag.SemaElseWithoutIf, "else without a preceding if")
	if c.bag.ErrorCount() != 2 {
		t.Fatalf("continue inside while is fine, got %v", c.bag.Items())
	}
}

func TestFieldVisibilityAcrossUnits(t *testing.T) {
	lib := ast.NewUnit("lib").Add(
		ast.StructDecl("Box", nil,
			ast.FVis("secret", intT(), ast.VisPrivate),
			ast.FVis("size", intT(), ast.VisGet),
			ast.F("open", intT()),
		),
		ast.Func("grow", ast.Params(ast.P("b", ast.Ref(ast.T("Box")))), nil,
			ast.Assign(ast.Sel(ast.Id("b"), "size"), "+=", ast.Int(1)),
			ast.Assign(ast.Sel(ast.Id("b"), "secret"), "=", ast.Int(0)),
		),
	)
	main := ast.NewUnit("main").Use("lib").Add(
		ast.Func("poke", ast.Params(ast.P("b", ast.Ref(ast.T("Box")))), nil,
			ast.Assign(ast.Sel(ast.Id("b"), "open"), "=", ast.Int(1)),
			ast.Let("n", nil, ast.Sel(ast.Id("b"), "size")),
			ast.Assign(ast.Sel(ast.Id("b"), "size"), "=", ast.Int(2)),
			ast.Let("s", nil, ast.Sel(ast.Id("b"), "secret")),
		),
	)
	c := checkUnits(t, lib, main)
	c.expect(t, diag.SemaNotMutable, "field size of Box is read-only outside unit lib")
	c.expect(t, diag.SemaPrivateAccess, "field secret of Box is private")
	if c.bag.ErrorCount() != 2 {
		t.Fatalf("only the two foreign accesses should fail, got %v", c.bag.Items())
	}
}

func TestImmutableGlobal(t *testing.T) {
	c := checkUnits(t, ast.NewUnit("main").Add(
		ast.G("limit", nil, ast.Int(3)),
		ast.MutG("count", nil, ast.Int(0)),
		ast.Func("main", nil, nil,
			ast.Assign(ast.Id("count"), "+=", ast.Id("limit")),
			ast.Assign(ast.Id("limit"), "=", ast.Int(4)),
		),
	))
	c.expect(t, diag.SemaNotMutable, "global limit is not mutable")
	if c.bag.ErrorCount() != 1 {
		t.Fatalf("unexpected diagnostics: %v", c.bag.Items())
	}
	if got := c.tab.Types.Format(c.res.Globals[0].Type); got != "int" {
		t.Fatalf("limit should be inferred as int, got %s", got)
	}
}

func TestDeclNamedArguments(t *testing.T) {
	c := checkUnits(t, ast.NewUnit("main").Add(
		ast.Func("area", ast.Params(ast.P("w", intT()), ast.P("h", intT())), intT(),
			ast.Ret(ast.Bin(ast.Id("w"), "*", ast.Id("h")))),
		ast.Func("rect", ast.Params(ast.P("w", intT()), ast.PDefault("h", intT(), ast.Int(1))), intT()).
			WithMode(ast.ModeDecl).WithTarget("area"),
		ast.Func("main", nil, nil,
			ast.Do(ast.CallArgs("", "rect", ast.Named("h", ast.Int(3)), ast.Named("w", ast.Int(2)))),
			ast.Do(ast.Call("rect", ast.Int(5))),
		),
	))
	c.clean(t)
	got := calls(c.fn(t, "main"))
	full := callData(t, got[0])
	if full.Mask != 0b11 || len(full.Args) != 2 {
		t.Fatalf("named call should supply both parameters, mask %b", full.Mask)
	}
	if lit := full.Args[0].Data.(hir.LiteralData); lit.Text != "2" {
		t.Fatalf("arguments should be in parameter order, first is %s", lit.Text)
	}
	short := callData(t, got[1])
	if short.Mask != 0b01 || len(short.Args) != 1 {
		t.Fatalf("h should take its default, mask %b", short.Mask)
	}
	if len(c.res.Defaults) != 1 {
		t.Fatalf("expected the default of h to be checked, got %d", len(c.res.Defaults))
	}
}

func TestNamedArgumentsNeedDecl(t *testing.T) {
	c := checkUnits(t, ast.NewUnit("main").Add(
		ast.Func("area", ast.Params(ast.P("w", intT()), ast.P("h", intT())), intT(),
			ast.Ret(ast.Bin(ast.Id("w"), "*", ast.Id("h")))),
		ast.Func("main", nil, nil,
			ast.Do(ast.CallArgs("", "area", ast.Named("w", ast.Int(1)), ast.Named("h", ast.Int(2)))),
		),
	))
	c.expect(t, diag.SemaWrongArgumentTypes, "candidate")
}

func TestOperatorsLowerToImpls(t *testing.T) {
	v := ast.T("V")
	c := checkUnits(t, ast.NewUnit("main").Add(
		ast.StructDecl("V", nil, ast.F("x", intT())),
		ast.Func("add", ast.Params(ast.P("a", v), ast.P("b", v)), v,
			ast.Ret(ast.Lit(v, ast.Named("x", ast.Bin(ast.Sel(ast.Id("a"), "x"), "+", ast.Sel(ast.Id("b"), "x")))))).
			WithMode(ast.ModeImpl),
		ast.Func("twice", ast.Params(ast.P("a", ast.T("T"))), ast.T("T"), ast.Ret(ast.Bin(ast.Id("a"), "+", ast.Id("a")))),
		ast.Func("main", nil, nil,
			ast.Let("v", nil, ast.Lit(v, ast.Named("x", ast.Int(1)))),
			ast.Let("w", nil, ast.Bin(ast.Id("v"), "+", ast.Id("v"))),
			ast.Assign(ast.Id("w"), "+=", ast.Id("v")),
		),
	))
	c.clean(t)
	for _, call := range calls(c.fn(t, "main")) {
		d := callData(t, call)
		if d.Op != "add" || d.Deferred || c.tab.Fn(d.Fn).Name != "add" {
			t.Fatalf("v + v should call the add implementation, got %+v", d)
		}
	}
	generic := calls(c.fn(t, "twice"))
	if len(generic) != 1 || !callData(t, generic[0]).Deferred {
		t.Fatalf("a + a on a generic should be resolved per instance")
	}
	if got := c.tab.Types.Format(generic[0].Type); got != "T" {
		t.Fatalf("deferred add should have the operand type, got %s", got)
	}
}

func TestMismatchedPrimitiveOperands(t *testing.T) {
	c := checkUnits(t, ast.NewUnit("main").Add(
		ast.Func("main", ast.Params(ast.P("a", intT()), ast.P("b", ast.T("f32"))), nil,
			ast.Let("x", nil, ast.Bin(ast.Id("a"), "+", ast.Id("b"))),
			ast.Let("y", nil, ast.Bin(ast.Bool(true), "+", ast.Bool(false))),
		),
	))
	c.expect(t, diag.SemaInvalidOperands, "mismatched operands int and f32")
	c.expect(t, diag.SemaInvalidOperands, "operator + is not defined on bool and bool")
}

func TestVariantConstructors(t *testing.T) {
	opt := ast.EnumDecl("Opt", []string{"T"}, ast.F("some", ast.T("T")), ast.F("none", ast.T("void")))
	c := checkUnits(t, ast.NewUnit("main").Add(
		opt,
		ast.Func("main", nil, nil,
			ast.Let("a", ast.T("Opt", intT()), ast.Call("none")),
			ast.Let("b", nil, ast.QCall("Opt", "some", ast.Int(1))),
			ast.Let("c", nil, ast.QCall("Opt", "none")),
		),
	))
	c.expect(t, diag.SemaTypeMismatch, "cannot infer T of Opt.none")
	f := c.fn(t, "main")
	if got := c.tab.Types.Format(letOf(t, f, "a").Type); got != "Opt[int]" {
		t.Fatalf("a: got %s", got)
	}
	if got := c.tab.Types.Format(letOf(t, f, "b").Type); got != "Opt[int]" {
		t.Fatalf("b should infer T from the payload, got %s", got)
	}
}

func TestUnionInjection(t *testing.T) {
	c := checkUnits(t, ast.NewUnit("main").Add(
		ast.Func("find", ast.Params(ast.P("c", boolT())), ast.UnionT(intT(), ast.T("void")),
			ast.If(ast.Id("c"), ast.Ret(ast.Int(7))),
			ast.Ret(nil),
		),
	))
	c.clean(t)
	var injected []string
	hir.WalkBlock(c.fn(t, "find").Body, nil, func(e *hir.Expr) {
		if e.Kind == hir.ExprInject {
			injected = append(injected, e.Data.(hir.VariantData).Variant)
		}
	})
	if len(injected) != 2 || injected[0] != "int" || injected[1] != "void" {
		t.Fatalf("expected int and void injections, got %v", injected)
	}
}

func TestMacroExpandsInCaller(t *testing.T) {
	c := checkUnits(t, ast.NewUnit("main").Add(
		ast.Func("double", ast.Params(&ast.Param{Name: "x"}), nil, ast.Ret(ast.Bin(ast.Id("x"), "*", ast.Int(2)))).
			WithMode(ast.ModeMacro),
		ast.Func("main", nil, nil,
			ast.Let("y", ast.T("i64"), ast.Call("double", ast.Int(4))),
		),
	))
	c.clean(t)
	y := letOf(t, c.fn(t, "main"), "y")
	if y.Value.Kind != hir.ExprBinaryOp || c.tab.Types.Format(y.Value.Type) != "i64" {
		t.Fatalf("macro should expand to a product typed i64, got %v %s", y.Value.Kind, c.tab.Types.Format(y.Value.Type))
	}
}

func TestReferenceLocalsRejected(t *testing.T) {
	c := checkUnits(t, ast.NewUnit("main").Add(
		ast.Func("main", nil, nil,
			ast.Let("x", nil, ast.Int(1)),
			ast.Let("r", nil, ast.Addr(ast.Id("x"))),
			ast.Let("t", ast.T("T"), nil),
		),
	))
	c.expect(t, diag.SemaReferenceNotParam, "local r")
	c.expect(t, diag.SemaGenericEscape, "generic T of local t")
}

func TestOverloadByResultType(t *testing.T) {
	c := checkUnits(t, ast.NewUnit("main").Add(
		ast.Func("read", nil, intT(), ast.Ret(ast.Int(1))),
		ast.Func("read", nil, ast.T("str"), ast.Ret(ast.Str("a"))),
		ast.Func("main", nil, nil,
			ast.Let("s", ast.T("str"), ast.Call("read")),
			ast.Let("n", intT(), ast.Call("read")),
			ast.Do(ast.Call("read")),
		),
	))
	c.expect(t, diag.SemaAmbiguousFunction, "call of read() is ambiguous")
	if c.bag.ErrorCount() != 1 {
		t.Fatalf("only the untyped call should be ambiguous, got %v", c.bag.Items())
	}
	f := c.fn(t, "main")
	for name, want := range map[string]string{"s": "str", "n": "int"} {
		call := callData(t, letOf(t, f, name).Value)
		if got := c.tab.Types.Format(c.tab.Fn(call.Fn).Return); got != want {
			t.Fatalf("%s should call read() %s, got read() %s", name, want, got)
		}
	}
}

func TestAmbiguousLocalFollowsGenericResult(t *testing.T) {
	c := checkUnits(t, ast.NewUnit("main").Add(
		ast.Func("id", ast.Params(ast.P("x", ast.T("T"))), ast.T("T"), ast.Ret(ast.Id("x"))),
		ast.Func("main", nil, nil,
			ast.Let("a", nil, ast.Int(1)),
			ast.Let("b", ast.T("f32"), ast.Call("id", ast.Id("a"))),
		),
	))
	c.clean(t)
	f := c.fn(t, "main")
	in := c.tab.Types
	if got := in.Format(letOf(t, f, "a").Type); got != "f32" {
		t.Fatalf("a should settle to f32, got %s", got)
	}
	call := callData(t, letOf(t, f, "b").Value)
	if got := in.Format(call.Sig); got != "fn(f32) f32" {
		t.Fatalf("id should be called at fn(f32) f32, got %s", got)
	}
	if got := in.Format(call.Args[0].Type); got != "f32" {
		t.Fatalf("the argument should be f32, got %s", got)
	}
}

func TestUnknownFunctionVersusNoOverload(t *testing.T) {
	c := checkUnits(t, ast.NewUnit("main").Add(
		ast.Func("f", ast.Params(ast.P("x", intT())), nil),
		ast.Func("main", nil, nil,
			ast.Do(ast.Call("g", ast.Int(1))),
			ast.Do(ast.Call("f", ast.Str("a"))),
		),
	))
	c.expect(t, diag.SemaUnknownFunction, "unknown function g")
	d := c.expect(t, diag.SemaWrongArgumentTypes, "no overload of f accepts (str)")
	if len(d.Notes) != 1 || !strings.HasPrefix(d.Notes[0].Msg, "candidate main.f(int)") {
		t.Fatalf("the rejected signature should be listed, got %v", d.Notes)
	}
	if c.bag.ErrorCount() != 2 {
		t.Fatalf("unexpected diagnostics: %v", c.bag.Items())
	}
}

func TestDeclDefaultResolvesThroughImpl(t *testing.T) {
	pt := ast.QT("l", "Pt")
	lib := ast.NewUnit("lib").Add(
		ast.StructDecl("Pt", nil, ast.F("x", intT())),
		ast.Func("render", ast.Params(ast.P("p", ast.T("Pt"))), ast.T("str"), ast.Ret(ast.Str("pt"))).WithMode(ast.ModeImpl),
	)
	main := ast.NewUnit("main").UseAs("lib", "l").Add(
		ast.Func("showImpl", ast.Params(ast.P("x", ast.T("T")), ast.P("f", ast.FnT(ast.T("str"), ast.T("T")))), ast.T("str"),
			ast.Ret(ast.Call("f", ast.Id("x")))),
		ast.Func("show", ast.Params(ast.P("x", ast.T("T")), ast.PDefault("f", ast.FnT(ast.T("str"), ast.T("T")), ast.Id("render"))), ast.T("str")).
			WithMode(ast.ModeDecl).WithTarget("showImpl"),
		ast.Func("label", ast.Params(ast.P("p", pt), ast.PDefault("f", ast.FnT(ast.T("str"), pt), ast.Id("render"))), ast.T("str")).
			WithMode(ast.ModeDecl).WithTarget("showImpl"),
		ast.Func("main", nil, nil,
			ast.Let("p", nil, ast.Lit(pt, ast.Named("x", ast.Int(1)))),
			ast.Let("s", nil, ast.Call("show", ast.Id("p"))),
		),
	)
	c := checkUnits(t, lib, main)
	c.clean(t)
	mainID := mainUnit(t, c.tab)
	defaultOf := func(name string) hir.FnRefData {
		ids, _ := c.tab.LookupFns(mainID, "", name)
		if len(ids) != 1 {
			t.Fatalf("no decl %s", name)
		}
		e := c.res.Defaults[DefaultKey{Fn: ids[0], Param: 1}]
		if e == nil || e.Kind != hir.ExprFnRef {
			t.Fatalf("default of %s should be a function reference, got %v", name, e)
		}
		return e.Data.(hir.FnRefData)
	}
	if d := defaultOf("show"); !d.Deferred || !d.Impl || d.Name != "render" {
		t.Fatalf("a generic default should be left to each instance, got %+v", d)
	}
	d := defaultOf("label")
	if d.Deferred || c.tab.Fn(d.Fn).Name != "render" || c.tab.UnitName(c.tab.Fn(d.Fn).Unit) != "lib" {
		t.Fatalf("a concrete default should bind lib's render, got %+v", d)
	}
}
