package symbols

import (
	"errors"
	"testing"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/source"
	"kestrel/internal/types"
)

func buildForest(t *testing.T, units ...*ast.Unit) (*Table, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(32)
	tab, err := Build(ast.NewForest(units...), types.NewInterner(), Options{Core: "core", Reporter: diag.BagReporter{Bag: bag}})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return tab, bag
}

func TestUnknownImportIsFatal(t *testing.T) {
	_, err := Build(ast.NewForest(ast.NewUnit("main").Use("nope")), types.NewInterner(), Options{})
	var fe *diag.FatalError
	if !errors.As(err, &fe) || fe.Code != diag.ProjUnknownUnit {
		t.Fatalf("expected fatal unknown unit, got %v", err)
	}
}

func TestDuplicateUnitIsFatal(t *testing.T) {
	_, err := Build(ast.NewForest(ast.NewUnit("a"), ast.NewUnit("a")), types.NewInterner(), Options{})
	var fe *diag.FatalError
	if !errors.As(err, &fe) || fe.Code != diag.ProjDuplicateUnit {
		t.Fatalf("expected fatal duplicate unit, got %v", err)
	}
}

func TestCoreIsImplicitlyImported(t *testing.T) {
	core := ast.NewUnit("core").Add(ast.StructDecl("Pair", []string{"T"}, ast.F("a", ast.T("T")), ast.F("b", ast.T("T"))))
	lib := ast.NewUnit("lib").UseAs("core", "c")
	main := ast.NewUnit("main")
	tab, bag := buildForest(t, core, lib, main)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	mainID, _ := tab.UnitByName("main")
	if got := tab.Unit(mainID).Imports; len(got) != 1 || got[0] != tab.Core {
		t.Fatalf("main should import core implicitly, got %v", got)
	}
	libID, _ := tab.UnitByName("lib")
	if got := tab.Unit(libID).Imports; len(got) != 1 || got[0] != tab.Core {
		t.Fatalf("an aliased import of core keeps the implicit plain one, got %v", got)
	}
	if ty := tab.ResolveType(ast.T("Pair", ast.T("int")), libID, nil); ty == types.NoTypeID {
		t.Fatalf("Pair should stay visible unqualified in lib")
	}
	if ty := tab.ResolveType(ast.T("Pair", ast.T("int")), mainID, nil); ty == types.NoTypeID {
		t.Fatalf("Pair should be visible through core")
	}
}

func TestExplicitCoreImportIsNotDoubled(t *testing.T) {
	core := ast.NewUnit("core")
	main := ast.NewUnit("main").Use("core")
	tab, bag := buildForest(t, core, main)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	mainID, _ := tab.UnitByName("main")
	if got := tab.Unit(mainID).Imports; len(got) != 1 || got[0] != tab.Core {
		t.Fatalf("core should be imported once, got %v", got)
	}
}

func TestRedundantImportOffersRemoval(t *testing.T) {
	lib := ast.NewUnit("lib")
	main := ast.NewUnit("main").Use("lib").Use("lib").Use("main")
	main.Uses[1].Span = source.Span{Line: 2, Col: 1, EndCol: 8}
	tab, bag := buildForest(t, lib, main)
	if bag.HasErrors() {
		t.Fatalf("redundant imports are not errors: %v", bag.Items())
	}
	items := bag.Items()
	if len(items) != 2 {
		t.Fatalf("expected two warnings, got %v", items)
	}
	for _, d := range items {
		if d.Code != diag.ProjRedundantImport || d.Severity != diag.SevWarning {
			t.Fatalf("unexpected diagnostic %v", d)
		}
		if len(d.Fixes) != 1 || len(d.Fixes[0].Edits) != 1 || d.Fixes[0].Edits[0].NewText != "" {
			t.Fatalf("expected a removal fix, got %+v", d.Fixes)
		}
	}
	if items[0].Fixes[0].Edits[0].Span != main.Uses[1].Span {
		t.Fatalf("the fix should delete the repeated import")
	}
	if items[1].Message != "unit main imports itself" {
		t.Fatalf("unexpected message %q", items[1].Message)
	}
	mainID, _ := tab.UnitByName("main")
	if got := tab.Unit(mainID).Imports; len(got) != 1 {
		t.Fatalf("lib should be imported once, got %v", got)
	}
}

func TestAliasedImportIsQualifiedOnly(t *testing.T) {
	geo := ast.NewUnit("geo").Add(ast.StructDecl("Point", nil, ast.F("x", ast.T("int"))))
	main := ast.NewUnit("main").UseAs("geo", "g")
	tab, _ := buildForest(t, geo, main)
	mainID, _ := tab.UnitByName("main")

	bag := diag.NewBag(4)
	if ty := tab.ResolveType(ast.T("Point"), mainID, diag.BagReporter{Bag: bag}); ty != types.NoTypeID {
		t.Fatalf("aliased unit must be invisible to unqualified lookup")
	}
	if !bag.HasCode(diag.SemaUnknownType) {
		t.Fatalf("expected unknown type, got %v", bag.Items())
	}
	if ty := tab.ResolveType(ast.QT("g", "Point"), mainID, nil); ty == types.NoTypeID {
		t.Fatalf("alias-qualified lookup should succeed")
	}
	if ty := tab.ResolveType(ast.QT("geo", "Point"), mainID, nil); ty == types.NoTypeID {
		t.Fatalf("unit-qualified lookup should succeed")
	}
}

func TestAmbiguousTypeAcrossImports(t *testing.T) {
	a := ast.NewUnit("a").Add(ast.StructDecl("Node", nil))
	b := ast.NewUnit("b").Add(ast.StructDecl("Node", nil))
	main := ast.NewUnit("main").Use("a").Use("b")
	tab, _ := buildForest(t, a, b, main)
	mainID, _ := tab.UnitByName("main")
	bag := diag.NewBag(4)
	tab.ResolveType(ast.T("Node"), mainID, diag.BagReporter{Bag: bag})
	if !bag.HasCode(diag.SemaAmbiguousType) || len(bag.Items()[0].Notes) != 2 {
		t.Fatalf("expected ambiguous type with two candidates, got %v", bag.Items())
	}
}

func TestShapeErrors(t *testing.T) {
	main := ast.NewUnit("main").Add(
		ast.StructDecl("X", nil),
		ast.StructDecl("Dup", nil, ast.F("a", ast.T("int")), ast.F("a", ast.T("int"))),
		ast.EnumDecl("Opt", nil, ast.F("Some", ast.T("int")), ast.F("Some", nil)),
		ast.StructDecl("Holder", nil, ast.F("r", ast.Ref(ast.T("int")))),
		ast.StructDecl("Wrong", nil, ast.F("v", ast.T("T"))),
		ast.Func("f", nil, ast.Ref(ast.T("int"))),
	)
	_, bag := buildForest(t, main)
	for _, code := range []diag.Code{
		diag.SemaGenericNameReserved,
		diag.SemaDuplicateField,
		diag.SemaDuplicateVariant,
		diag.SemaReferenceNotParam,
		diag.SemaUnknownType,
	} {
		if !bag.HasCode(code) {
			t.Errorf("missing %s in %v", code.ID(), bag.Items())
		}
	}
}

func TestOverloadSetsAndRegistry(t *testing.T) {
	core := ast.NewUnit("core").Add(
		ast.Func("eq", ast.Params(ast.P("a", ast.T("str")), ast.P("b", ast.T("str"))), ast.T("bool")).WithMode(ast.ModeImpl),
		ast.Func("eq", ast.Params(ast.P("a", ast.T("T")), ast.P("b", ast.T("T"))), ast.T("bool")).WithMode(ast.ModeTrait),
		ast.Func("twice", ast.Params(ast.P("x", nil)), nil, ast.Ret(ast.Bin(ast.Id("x"), "+", ast.Id("x")))).WithMode(ast.ModeMacro),
	)
	main := ast.NewUnit("main").Add(
		ast.Func("f", ast.Params(ast.P("x", ast.T("int"))), ast.T("int")),
		ast.Func("f", ast.Params(ast.P("x", ast.T("str"))), ast.T("int")),
		ast.Func("f", ast.Params(ast.P("y", ast.T("int"))), ast.T("int")),
	)
	tab, bag := buildForest(t, core, main)
	if !bag.HasCode(diag.SemaDuplicateSymbol) {
		t.Fatalf("identical overload should be rejected")
	}
	mainID, _ := tab.UnitByName("main")
	fns, _ := tab.LookupFns(mainID, "", "f")
	if len(fns) != 2 {
		t.Fatalf("expected two overloads of f, got %d", len(fns))
	}
	if got := tab.Impls.Candidates("eq"); len(got) != 2 || !tab.Fn(got[1]).Generic {
		t.Fatalf("unexpected eq registry %v", got)
	}
	if len(tab.LookupMacros(mainID, "", "twice")) != 1 {
		t.Fatalf("macro should be visible through core")
	}
	if fns, _ := tab.LookupFns(mainID, "", "twice"); len(fns) != 0 {
		t.Fatalf("macros are not part of overload sets")
	}
}

func TestIdentifiersAreNormalized(t *testing.T) {
	composed := "caf\u00e9"
	decomposed := "cafe\u0301"
	main := ast.NewUnit("main").Add(ast.StructDecl(composed, nil))
	tab, _ := buildForest(t, main)
	mainID, _ := tab.UnitByName("main")
	if ty := tab.ResolveType(ast.T(decomposed), mainID, nil); ty == types.NoTypeID {
		t.Fatalf("decomposed spelling should find the composed template")
	}
}
