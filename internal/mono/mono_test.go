package mono

import (
	"context"
	"errors"
	"strings"
	"testing"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/sema"
	"kestrel/internal/symbols"
	"kestrel/internal/types"
)

func analyze(t *testing.T, units ...*ast.Unit) (*symbols.Table, *sema.Result) {
	t.Helper()
	bag := diag.NewBag(64)
	rep := diag.BagReporter{Bag: bag}
	tab, err := symbols.Build(ast.NewForest(units...), types.NewInterner(), symbols.Options{Core: "core", Reporter: rep})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	res := sema.Check(context.Background(), tab, sema.Options{Reporter: rep})
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	return tab, res
}

func run(t *testing.T, units ...*ast.Unit) (*symbols.Table, *Program) {
	t.Helper()
	tab, res := analyze(t, units...)
	bag := diag.NewBag(16)
	prog, err := Monomorphize(context.Background(), tab, res, Options{Reporter: diag.BagReporter{Bag: bag}})
	if err != nil {
		t.Fatalf("monomorphize: %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	return tab, prog
}

func fatalCode(t *testing.T, err error) diag.Code {
	t.Helper()
	var fe *diag.FatalError
	if !errors.As(err, &fe) {
		t.Fatalf("expected a fatal error, got %v", err)
	}
	return fe.Code
}

func names(p *Program) []string {
	out := make([]string, len(p.Funcs))
	for i, inst := range p.Funcs {
		out[i] = inst.Name
	}
	return out
}

func callsIn(f *hir.Func) []hir.CallData {
	var out []hir.CallData
	hir.WalkBlock(f.Body, nil, func(e *hir.Expr) {
		if d, ok := e.Data.(hir.CallData); ok {
			out = append(out, d)
		}
	})
	return out
}

func intT() *ast.TypeExpr { return ast.T("int") }

func TestRecursiveGenericInstantiatedOnce(t *testing.T) {
	tab, prog := run(t, ast.NewUnit("main").Add(
		ast.Func("count", ast.Params(ast.P("x", ast.T("T")), ast.P("n", intT())), intT(),
			ast.If(ast.Bin(ast.Id("n"), "==", ast.Int(0)), ast.Ret(ast.Int(0))),
			ast.Ret(ast.Call("count", ast.Id("x"), ast.Bin(ast.Id("n"), "-", ast.Int(1)))),
		),
		ast.Func("main", nil, nil,
			ast.Let("a", nil, ast.Call("count", ast.Int(1), ast.Int(3))),
			ast.Let("b", nil, ast.Call("count", ast.Str("s"), ast.Int(2))),
			ast.Let("c", nil, ast.Call("count", ast.Int(4), ast.Int(5))),
		),
	))
	got := strings.Join(names(prog), " ")
	if got != "main.main main.count[int] main.count[str]" {
		t.Fatalf("instances: %s", got)
	}
	if prog.Entry != prog.Funcs[0] {
		t.Fatalf("entry should be the first instance")
	}
	inner, _ := prog.ByName("main.count[int]")
	calls := callsIn(inner.Func)
	if len(calls) != 1 || calls[0].Instance != "main.count[int]" {
		t.Fatalf("recursive call should reuse its own instance, got %+v", calls)
	}
	x := inner.Func.Local(inner.Func.Params[0])
	if x.Type != tab.Types.Builtins().Int {
		t.Fatalf("x should be int in count[int], got %s", tab.Types.Format(x.Type))
	}
}

func TestPointerCycleOrders(t *testing.T) {
	tab, prog := run(t, ast.NewUnit("main").Add(
		ast.StructDecl("Node", nil, ast.F("v", intT()), ast.F("next", ast.Ptr(ast.T("Node")))),
		ast.Func("value", ast.Params(ast.P("n", ast.Ptr(ast.T("Node")))), intT(), ast.Ret(ast.Sel(ast.Id("n"), "v"))),
		ast.Func("main", nil, nil, ast.Let("f", nil, ast.Id("value"))),
	))
	pos := map[string]int{}
	for i, ty := range prog.Types {
		pos[tab.Types.Format(ty)] = i
	}
	node, ok := pos["Node"]
	if !ok {
		t.Fatalf("Node missing from %v", pos)
	}
	if pos["int"] > node {
		t.Fatalf("int must precede Node: %v", pos)
	}
	if _, ok := pos["*Node"]; !ok {
		t.Fatalf("*Node missing from %v", pos)
	}
}

func TestValueCycleIsFatal(t *testing.T) {
	tab, res := analyze(t, ast.NewUnit("main").Add(
		ast.StructDecl("Bad", nil, ast.F("inner", ast.T("Bad"))),
		ast.Func("peek", ast.Params(ast.P("b", ast.T("Bad"))), intT(), ast.Ret(ast.Int(1))),
		ast.Func("main", nil, nil, ast.Let("f", nil, ast.Id("peek"))),
	))
	_, err := Monomorphize(context.Background(), tab, res, Options{})
	if code := fatalCode(t, err); code != diag.MonoRecursiveStruct {
		t.Fatalf("expected a recursive struct error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Bad contains itself by value") {
		t.Fatalf("unexpected message %v", err)
	}
}

func TestEntryFunction(t *testing.T) {
	tab, res := analyze(t, ast.NewUnit("main").Add(ast.Func("start", nil, nil)))
	_, err := Monomorphize(context.Background(), tab, res, Options{})
	if fatalCode(t, err) != diag.MonoNoMain {
		t.Fatalf("expected no main, got %v", err)
	}
	if _, err := Monomorphize(context.Background(), tab, res, Options{Entry: "start"}); err != nil {
		t.Fatalf("custom entry: %v", err)
	}

	tab, res = analyze(t,
		ast.NewUnit("a").Add(ast.Func("main", nil, nil)),
		ast.NewUnit("b").Add(ast.Func("main", nil, nil)),
	)
	_, err = Monomorphize(context.Background(), tab, res, Options{})
	if fatalCode(t, err) != diag.MonoMultipleMain {
		t.Fatalf("expected multiple mains, got %v", err)
	}
}

func TestDeferredOperatorsResolvePerInstance(t *testing.T) {
	v := ast.T("V")
	_, prog := run(t, ast.NewUnit("main").Add(
		ast.StructDecl("V", nil, ast.F("x", intT())),
		ast.Func("add", ast.Params(ast.P("a", v), ast.P("b", v)), v,
			ast.Ret(ast.Lit(v, ast.Named("x", ast.Bin(ast.Sel(ast.Id("a"), "x"), "+", ast.Sel(ast.Id("b"), "x")))))).
			WithMode(ast.ModeImpl),
		ast.Func("twice", ast.Params(ast.P("a", ast.T("T"))), ast.T("T"), ast.Ret(ast.Bin(ast.Id("a"), "+", ast.Id("a")))),
		ast.Func("main", nil, nil,
			ast.Let("n", nil, ast.Call("twice", ast.Int(1))),
			ast.Let("w", nil, ast.Call("twice", ast.Lit(v, ast.Named("x", ast.Int(2))))),
		),
	))
	ints, ok := prog.ByName("main.twice[int]")
	if !ok {
		t.Fatalf("instances: %v", names(prog))
	}
	ret := ints.Func.Body.Stmts[0].Data.(hir.ReturnData).Value
	if op, ok := ret.Data.(hir.BinaryOpData); !ok || op.Op != "+" {
		t.Fatalf("int + int should become the builtin operator, got %v", ret.Kind)
	}
	vs, ok := prog.ByName("main.twice[V]")
	if !ok {
		t.Fatalf("instances: %v", names(prog))
	}
	calls := callsIn(vs.Func)
	if len(calls) != 1 || calls[0].Deferred || calls[0].Instance != "main.add" {
		t.Fatalf("V + V should call the add instance, got %+v", calls)
	}
}

func TestDeclWrapperFillsDefaults(t *testing.T) {
	_, prog := run(t, ast.NewUnit("main").Add(
		ast.Func("area", ast.Params(ast.P("w", intT()), ast.P("h", intT())), intT(),
			ast.Ret(ast.Bin(ast.Id("w"), "*", ast.Id("h")))),
		ast.Func("rect", ast.Params(ast.P("w", intT()), ast.PDefault("h", intT(), ast.Int(1))), intT()).
			WithMode(ast.ModeDecl).WithTarget("area"),
		ast.Func("main", nil, nil,
			ast.Let("a", nil, ast.Call("rect", ast.Int(5))),
			ast.Let("b", nil, ast.CallArgs("", "rect", ast.Named("h", ast.Int(2)), ast.Named("w", ast.Int(3)))),
		),
	))
	short, ok := prog.ByName("main.rect{1}")
	if !ok {
		t.Fatalf("instances: %v", names(prog))
	}
	if len(short.Func.Params) != 1 || !short.Wrapper {
		t.Fatalf("rect{1} should take only w")
	}
	calls := callsIn(short.Func)
	if len(calls) != 1 || calls[0].Instance != "main.area" || len(calls[0].Args) != 2 {
		t.Fatalf("wrapper should forward to area, got %+v", calls)
	}
	if lit, ok := calls[0].Args[1].Data.(hir.LiteralData); !ok || lit.Text != "1" {
		t.Fatalf("h should come from its default")
	}
	if _, ok := prog.ByName("main.rect{11}"); !ok {
		t.Fatalf("the named call needs its own wrapper: %v", names(prog))
	}
}

func TestUnionVariantsFollowInstance(t *testing.T) {
	_, prog := run(t, ast.NewUnit("main").Add(
		ast.Func("wrap", ast.Params(ast.P("x", ast.T("T"))), ast.UnionT(ast.T("T"), ast.T("void")), ast.Ret(ast.Id("x"))),
		ast.Func("main", nil, nil, ast.Let("w", nil, ast.Call("wrap", ast.Str("s")))),
	))
	inst, ok := prog.ByName("main.wrap[str]")
	if !ok {
		t.Fatalf("instances: %v", names(prog))
	}
	var variants []string
	hir.WalkBlock(inst.Func.Body, nil, func(e *hir.Expr) {
		if e.Kind == hir.ExprInject {
			variants = append(variants, e.Data.(hir.VariantData).Variant)
		}
	})
	if len(variants) != 1 || variants[0] != "str" {
		t.Fatalf("injection should name the str arm, got %v", variants)
	}
}

func TestListing(t *testing.T) {
	tab, prog := run(t, ast.NewUnit("main").Add(
		ast.Func("id", ast.Params(ast.P("x", ast.T("T"))), ast.T("T"), ast.Ret(ast.Id("x"))),
		ast.Func("main", nil, nil,
			ast.Let("a", nil, ast.Call("id", ast.Int(1))),
			ast.Let("b", nil, ast.Call("id", ast.Int(2))),
		),
	))
	l := prog.Listing(tab)
	if l.Entry != "main.main" || len(l.Functions) != 2 {
		t.Fatalf("unexpected listing %+v", l)
	}
	if calls := l.Functions[0].Calls; len(calls) != 1 || calls[0] != "main.id[int]" {
		t.Fatalf("calls should be deduplicated, got %v", calls)
	}
	if l.Functions[1].Type != "fn(int) int" {
		t.Fatalf("instance type = %s", l.Functions[1].Type)
	}
}

func TestDeclDefaultBindsImplPerInstance(t *testing.T) {
	fnT := ast.FnT(ast.T("str"), ast.T("T"))
	lib := ast.NewUnit("lib").Add(
		ast.StructDecl("Pt", nil, ast.F("x", intT())),
		ast.Func("render", ast.Params(ast.P("p", ast.T("Pt"))), ast.T("str"), ast.Ret(ast.Str("pt"))).WithMode(ast.ModeImpl),
	)
	main := ast.NewUnit("main").UseAs("lib", "l").Add(
		ast.Func("showImpl", ast.Params(ast.P("x", ast.T("T")), ast.P("f", fnT)), ast.T("str"),
			ast.Ret(ast.Call("f", ast.Id("x")))),
		ast.Func("show", ast.Params(ast.P("x", ast.T("T")), ast.PDefault("f", fnT, ast.Id("render"))), ast.T("str")).
			WithMode(ast.ModeDecl).WithTarget("showImpl"),
		ast.Func("main", nil, nil,
			ast.Let("p", nil, ast.Lit(ast.QT("l", "Pt"), ast.Named("x", ast.Int(1)))),
			ast.Let("s", nil, ast.Call("show", ast.Id("p"))),
		),
	)
	_, prog := run(t, lib, main)
	var wrapper *Instance
	for _, inst := range prog.Funcs {
		if inst.Wrapper && strings.HasPrefix(inst.Name, "main.show") {
			wrapper = inst
		}
	}
	if wrapper == nil {
		t.Fatalf("no show wrapper in %v", names(prog))
	}
	calls := callsIn(wrapper.Func)
	if len(calls) != 1 || len(calls[0].Args) != 2 {
		t.Fatalf("wrapper should forward two arguments, got %+v", calls)
	}
	ref, ok := calls[0].Args[1].Data.(hir.FnRefData)
	if !ok || ref.Deferred || ref.Instance != "lib.render" {
		t.Fatalf("the default should bind lib's render, got %+v", calls[0].Args[1].Data)
	}
	if _, ok := prog.ByName("lib.render"); !ok {
		t.Fatalf("render should be instantiated: %v", names(prog))
	}
}
