package sema

import (
	"testing"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
)

func shapeUnit(fns ...*ast.Fn) *ast.Unit {
	u := ast.NewUnit("main").Add(ast.EnumDecl("Shape", nil,
		ast.F("circle", ast.T("f64")),
		ast.F("square", ast.T("f64")),
	))
	for _, f := range fns {
		u.Add(f)
	}
	return u
}

func shapeFn(name string, body ...*ast.Stmt) *ast.Fn {
	return ast.Func(name, ast.Params(ast.P("s", ast.T("Shape"))), ast.T("f64"), body...)
}

func TestEarlyReturnNarrowsRest(t *testing.T) {
	c := checkUnits(t, shapeUnit(shapeFn("side",
		ast.If(ast.Is(ast.Id("s"), "circle"), ast.Ret(ast.Sel(ast.Id("s"), "circle"))),
		ast.Ret(ast.Sel(ast.Id("s"), "square")),
	)))
	c.clean(t)
}

func TestPayloadNeedsNarrowing(t *testing.T) {
	c := checkUnits(t, shapeUnit(shapeFn("side",
		ast.If(ast.Is(ast.Id("s"), "circle"), ast.Let("x", nil, ast.Int(1))),
		ast.Ret(ast.Sel(ast.Id("s"), "circle")),
	)))
	c.expect(t, diag.SemaEnumNotNarrowed, "enum can be [circle, square]")
}

func TestImpossibleVariantTest(t *testing.T) {
	c := checkUnits(t, shapeUnit(shapeFn("side",
		ast.If(ast.Is(ast.Id("s"), "circle"), ast.Ret(ast.Float("1.0"))),
		ast.If(ast.Is(ast.Id("s"), "circle"), ast.Ret(ast.Float("2.0"))),
		ast.Ret(ast.Sel(ast.Id("s"), "square")),
	)))
	d := c.expect(t, diag.SemaEnumCannotBe, "enum can not be circle here")
	if len(d.Notes) != 1 || d.Notes[0].Msg != "enum can be [square]" {
		t.Fatalf("unexpected notes %v", d.Notes)
	}
	if c.bag.ErrorCount() != 1 {
		t.Fatalf("square should still be readable: %v", c.bag.Items())
	}
}

func TestConstructorInstallsVariant(t *testing.T) {
	c := checkUnits(t, shapeUnit(shapeFn("side",
		ast.Assign(ast.Id("s"), "=", ast.QCall("Shape", "square", ast.Float("2.0"))),
		ast.Let("t", nil, ast.QCall("Shape", "circle", ast.Float("1.0"))),
		ast.Ret(ast.Bin(ast.Sel(ast.Id("s"), "square"), "+", ast.Sel(ast.Id("t"), "circle"))),
	)))
	c.clean(t)
}

func TestAndNarrowsRightOperand(t *testing.T) {
	c := checkUnits(t, shapeUnit(shapeFn("side",
		ast.If(ast.Bin(ast.Is(ast.Id("s"), "circle"), "and", ast.Bin(ast.Sel(ast.Id("s"), "circle"), ">", ast.Float("0.0"))),
			ast.Ret(ast.Sel(ast.Id("s"), "circle"))),
		ast.Ret(ast.Float("0.0")),
	)))
	c.clean(t)

	c = checkUnits(t, shapeUnit(shapeFn("side",
		ast.If(ast.Bin(ast.Is(ast.Id("s"), "circle"), "or", ast.Bin(ast.Sel(ast.Id("s"), "circle"), ">", ast.Float("0.0"))),
			ast.Ret(ast.Float("1.0"))),
		ast.Ret(ast.Float("0.0")),
	)))
	c.expect(t, diag.SemaEnumNotNarrowed, "enum can be [square]")
}

func TestLoopWritesDropNarrowing(t *testing.T) {
	c := checkUnits(t, shapeUnit(shapeFn("side",
		ast.If(ast.Is(ast.Id("s"), "circle"),
			ast.While(ast.Bool(false),
				ast.Let("r", nil, ast.Sel(ast.Id("s"), "circle")),
				ast.Assign(ast.Id("s"), "=", ast.QCall("Shape", "square", ast.Float("1.0"))),
			),
		),
		ast.Ret(ast.Float("0.0")),
	)))
	c.expect(t, diag.SemaEnumNotNarrowed, "enum can be [circle, square]")
}

func TestOrExitLeavesRemainingVariant(t *testing.T) {
	tok := func(body ...*ast.Stmt) *ast.Unit {
		return ast.NewUnit("main").Add(
			ast.EnumDecl("Tok", nil, ast.F("num", intT()), ast.F("name", ast.T("str")), ast.F("eof", ast.T("void"))),
			ast.Func("value", ast.Params(ast.P("t", ast.T("Tok"))), intT(), body...),
		)
	}
	c := checkUnits(t, tok(
		ast.If(ast.Bin(ast.Is(ast.Id("t"), "name"), "or", ast.Is(ast.Id("t"), "eof")), ast.Ret(ast.Int(0))),
		ast.Ret(ast.Sel(ast.Id("t"), "num")),
	))
	c.clean(t)

	c = checkUnits(t, tok(
		ast.If(ast.Is(ast.Id("t"), "name"), ast.Ret(ast.Int(0))),
		ast.Ret(ast.Sel(ast.Id("t"), "num")),
	))
	c.expect(t, diag.SemaEnumNotNarrowed, "enum can be [num, eof]")
}
