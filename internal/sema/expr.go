package sema

import (
	"slices"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/narrow"
	"kestrel/internal/source"
	"kestrel/internal/symbols"
	"kestrel/internal/types"
)

// expr checks e and returns its typed tree. It never returns nil: on errors
// the result has type NoTypeID and later checks stay quiet about it. want is
// a hint from the context, the caller still coerces.
func (tc *typeChecker) expr(e *ast.Expr, want types.TypeID) *hir.Expr {
	if e == nil {
		return tc.invalid(source.Span{})
	}
	b := tc.types.Builtins()
	switch e.Kind {
	case ast.ExprInt:
		return tc.literal(e, hir.LiteralInt, b.AmbiguousInt)
	case ast.ExprFloat:
		return tc.literal(e, hir.LiteralFloat, b.AmbiguousFloat)
	case ast.ExprStr:
		return tc.literal(e, hir.LiteralString, b.Str)
	case ast.ExprChar:
		return tc.literal(e, hir.LiteralChar, b.Char)
	case ast.ExprBool:
		return tc.literal(e, hir.LiteralBool, b.Bool)
	case ast.ExprIdent:
		return tc.ident(e, want)
	case ast.ExprCall:
		return tc.call(e, want)
	case ast.ExprField:
		return tc.field(e)
	case ast.ExprIndex:
		return tc.index(e)
	case ast.ExprRange:
		return tc.rangeExpr(e)
	case ast.ExprBinary:
		return tc.binary(e, want)
	case ast.ExprUnary:
		return tc.unary(e, want)
	case ast.ExprIs:
		h, _ := tc.isTest(e)
		return h
	case ast.ExprStruct:
		return tc.structLit(e, want)
	case ast.ExprCurrent:
		return tc.current(e)
	case ast.ExprAddr:
		return tc.addr(e)
	case ast.ExprDeref:
		return tc.derefExpr(e)
	}
	tc.report(diag.SemaTypeMismatch, e.Span, "unsupported expression %s", e.Kind)
	return tc.invalid(e.Span)
}

func (tc *typeChecker) literal(e *ast.Expr, kind hir.LiteralKind, ty types.TypeID) *hir.Expr {
	return &hir.Expr{
		Kind: hir.ExprLiteral,
		Type: ty,
		Span: e.Span,
		Data: hir.LiteralData{Kind: kind, Text: e.Text, Bool: e.Bool},
	}
}

// ident resolves a name used as a value: locals shadow globals, globals
// shadow functions.
func (tc *typeChecker) ident(e *ast.Expr, want types.TypeID) *hir.Expr {
	name := symbols.Normalize(e.Text)
	if e.Qualifier == "" {
		if id, ok := tc.lookupLocal(name); ok {
			return tc.localRef(id, e)
		}
	}
	gids, ok := tc.tab.LookupGlobals(tc.unit, e.Qualifier, name)
	if !ok {
		tc.report(diag.SemaUnknownUnit, e.Span, "unknown unit or alias %s", e.Qualifier)
		return tc.invalid(e.Span)
	}
	switch len(gids) {
	case 0:
		return tc.fnRef(e, want)
	case 1:
		return tc.globalRef(gids[0], e)
	}
	notes := make([]string, 0, len(gids))
	for _, gid := range gids {
		notes = append(notes, "candidate "+tc.tab.UnitName(tc.tab.Global(gid).Unit)+"."+name)
	}
	if tc.reporter != nil {
		diag.ReportError(tc.reporter, diag.SemaAmbiguousVariable, e.Span,
			"variable "+qualifiedName(e.Qualifier, name)+" is ambiguous").
			WithNotes(e.Span, notes).
			Emit()
	}
	return tc.invalid(e.Span)
}

// localRef reads a local. Reference parameters are read through, so a
// reference never flows as a value.
func (tc *typeChecker) localRef(id hir.LocalID, e *ast.Expr) *hir.Expr {
	l := tc.fn.Local(id)
	h := &hir.Expr{Kind: hir.ExprLocal, Type: l.Type, Span: e.Span, Data: hir.LocalData{Local: id, Name: l.Name}}
	if tc.types.Kind(l.Type) == types.KindReference {
		return tc.deref(h)
	}
	return h
}

func (tc *typeChecker) globalRef(id symbols.GlobalID, e *ast.Expr) *hir.Expr {
	g := tc.tab.Global(id)
	if g.Type == types.NoTypeID {
		tc.report(diag.SemaUnknownVariable, e.Span, "global %s is used before its type is known", g.Name)
		return tc.invalid(e.Span)
	}
	return &hir.Expr{Kind: hir.ExprGlobal, Type: g.Type, Span: e.Span, Data: hir.GlobalData{Global: id, Name: g.Name}}
}

// fnRef names a function as a value. A function-typed want picks among
// overloads.
func (tc *typeChecker) fnRef(e *ast.Expr, want types.TypeID) *hir.Expr {
	name := symbols.Normalize(e.Text)
	ids, _ := tc.tab.LookupFns(tc.unit, e.Qualifier, name)
	ids = slices.DeleteFunc(ids, func(id symbols.FnID) bool { return !tc.tab.Fn(id).Mode.Callable() })
	if len(ids) == 0 {
		tc.report(diag.SemaUnknownVariable, e.Span, "unknown variable %s", qualifiedName(e.Qualifier, name))
		return tc.invalid(e.Span)
	}
	if ret, params, ok := tc.types.FnSignature(want); ok {
		args := make([]Arg, len(params))
		for i, p := range params {
			args[i] = Arg{Type: p}
		}
		m, found := tc.resolver.ResolveFn(CallSite{
			Unit: tc.unit, Qualifier: e.Qualifier, Name: name, Args: args, Want: ret, Span: e.Span,
		}, tc.reporter)
		if !found {
			return tc.invalid(e.Span)
		}
		return tc.fnRefTo(m.Fn, m.Sig, e)
	}
	if len(ids) > 1 {
		tc.report(diag.SemaAmbiguousFunction, e.Span, "%s names %d functions, the expected type does not pick one",
			qualifiedName(e.Qualifier, name), len(ids))
		return tc.invalid(e.Span)
	}
	fn := tc.tab.Fn(ids[0])
	return tc.fnRefTo(ids[0], fn.Type, e)
}

func (tc *typeChecker) fnRefTo(id symbols.FnID, sig types.TypeID, e *ast.Expr) *hir.Expr {
	fn := tc.tab.Fn(id)
	if !tc.checkEscape(sig, e.Span, "function "+fn.Name) {
		return tc.invalid(e.Span)
	}
	return &hir.Expr{Kind: hir.ExprFnRef, Type: sig, Span: e.Span, Data: hir.FnRefData{Fn: id, Name: fn.Name, Unit: fn.Unit}}
}

// deferredFnRef handles a default argument naming a function where the
// parameter type is generic: the overload is picked per instance.
func (tc *typeChecker) deferredFnRef(def *ast.Expr, want types.TypeID) (*hir.Expr, bool) {
	if def == nil || def.Kind != ast.ExprIdent || !tc.types.IsGeneric(want) {
		return nil, false
	}
	if _, _, ok := tc.types.FnSignature(want); !ok {
		return nil, false
	}
	name := symbols.Normalize(def.Text)
	if gids, _ := tc.tab.LookupGlobals(tc.unit, def.Qualifier, name); len(gids) > 0 {
		return nil, false
	}
	ids, ok := tc.tab.LookupFns(tc.unit, def.Qualifier, name)
	if !ok || len(ids) == 0 {
		return nil, false
	}
	unit := tc.unit
	if def.Qualifier != "" {
		unit = tc.tab.Fn(ids[0]).Unit
	}
	return &hir.Expr{
		Kind: hir.ExprFnRef,
		Type: want,
		Span: def.Span,
		Data: hir.FnRefData{Name: name, Unit: unit, Deferred: true},
	}, true
}

// implFnRef handles a default argument naming a function no overload visible
// from the decl's unit provides. The name is then an operation resolved
// among the implementations of every unit; a generic parameter type leaves
// the choice to each instance.
func (tc *typeChecker) implFnRef(def *ast.Expr, want types.TypeID) (*hir.Expr, bool) {
	if def == nil || def.Kind != ast.ExprIdent || def.Qualifier != "" {
		return nil, false
	}
	ret, params, ok := tc.types.FnSignature(want)
	if !ok {
		return nil, false
	}
	name := symbols.Normalize(def.Text)
	if gids, _ := tc.tab.LookupGlobals(tc.unit, "", name); len(gids) > 0 {
		return nil, false
	}
	ids, _ := tc.tab.LookupFns(tc.unit, "", name)
	if slices.ContainsFunc(ids, func(id symbols.FnID) bool { return tc.tab.Fn(id).Mode.Callable() }) {
		return nil, false
	}
	if len(tc.tab.Impls.Candidates(name)) == 0 {
		return nil, false
	}
	if tc.types.IsGeneric(want) {
		return &hir.Expr{
			Kind: hir.ExprFnRef,
			Type: want,
			Span: def.Span,
			Data: hir.FnRefData{Name: name, Unit: tc.unit, Deferred: true, Impl: true},
		}, true
	}
	m, found := tc.resolver.ResolveImpl(name, params, ret, def.Span, tc.reporter)
	if !found {
		return tc.invalid(def.Span), true
	}
	if m.Sig != want {
		tc.report(diag.SemaTypeMismatch, def.Span, "%s resolves to %s, expected %s",
			name, tc.typeLabel(m.Sig), tc.typeLabel(want))
		return tc.invalid(def.Span), true
	}
	return tc.fnRefTo(m.Fn, m.Sig, def), true
}

// field reads a struct field or, on sums, the payload of a narrowed variant.
func (tc *typeChecker) field(e *ast.Expr) *hir.Expr {
	obj := tc.value(e.X, types.NoTypeID)
	if obj.Type == types.NoTypeID {
		return tc.invalid(e.Span)
	}
	if tc.types.Kind(obj.Type) == types.KindPointer {
		obj = tc.deref(obj)
	}
	name := symbols.Normalize(e.Text)
	if tc.types.IsSum(obj.Type) {
		return tc.variantPayload(obj, name, e)
	}
	tmpl := tc.types.TemplateOf(obj.Type)
	if tmpl == nil || tmpl.Builtin != types.NotBuiltin {
		tc.report(diag.SemaUnknownField, e.Span, "%s has no fields", tc.typeLabel(obj.Type))
		return tc.invalid(e.Span)
	}
	f, ok := tc.types.Field(obj.Type, name)
	if !ok {
		tc.report(diag.SemaUnknownField, e.Span, "%s has no field %s", tc.typeLabel(obj.Type), name)
		return tc.invalid(e.Span)
	}
	if f.Vis == types.VisPrivate && tmpl.Unit != tc.unit {
		tc.report(diag.SemaPrivateAccess, e.Span, "field %s of %s is private", name, tmpl.Name)
		return tc.invalid(e.Span)
	}
	return &hir.Expr{
		Kind: hir.ExprFieldAccess,
		Type: f.Type,
		Span: e.Span,
		Data: hir.FieldAccessData{Object: obj, FieldName: name, FieldIdx: tmpl.FieldIndex(name)},
	}
}

// possible returns the variants obj may hold at this point.
func (tc *typeChecker) possible(obj *hir.Expr) []string {
	total := tc.types.Variants(obj.Type)
	if key, ok := tc.pathKey(obj); ok {
		return tc.narrow.Possible(key, total)
	}
	return total
}

func (tc *typeChecker) variantPayload(obj *hir.Expr, variant string, e *ast.Expr) *hir.Expr {
	variants := tc.types.Variants(obj.Type)
	idx := slices.Index(variants, variant)
	if idx < 0 {
		tc.report(diag.SemaUnknownVariant, e.Span, "%s has no variant %s", tc.typeLabel(obj.Type), variant)
		return tc.invalid(e.Span)
	}
	possible := tc.possible(obj)
	if len(possible) != 1 || possible[0] != variant {
		if tc.reporter != nil {
			diag.ReportError(tc.reporter, diag.SemaEnumNotNarrowed, e.Span,
				"cannot read variant "+variant+" of "+tc.typeLabel(obj.Type)).
				WithNote(e.Span, "enum can be "+narrow.Format(possible)).
				Emit()
		}
		return tc.invalid(e.Span)
	}
	vt, _ := tc.types.VariantType(obj.Type, variant)
	return &hir.Expr{
		Kind: hir.ExprVariantPayload,
		Type: vt,
		Span: e.Span,
		Data: hir.VariantData{Value: obj, Variant: variant, Index: idx},
	}
}

// current reads the payload of the single variant obj is known to hold.
func (tc *typeChecker) current(e *ast.Expr) *hir.Expr {
	obj := tc.value(e.X, types.NoTypeID)
	if obj.Type == types.NoTypeID {
		return tc.invalid(e.Span)
	}
	if !tc.types.IsSum(obj.Type) {
		tc.report(diag.SemaTypeMismatch, e.Span, "current needs an enum, got %s", tc.typeLabel(obj.Type))
		return tc.invalid(e.Span)
	}
	possible := tc.possible(obj)
	if len(possible) != 1 {
		if tc.reporter != nil {
			diag.ReportError(tc.reporter, diag.SemaEnumNotNarrowed, e.Span,
				"current variant of "+tc.typeLabel(obj.Type)+" is not known").
				WithNote(e.Span, "enum can be "+narrow.Format(possible)).
				Emit()
		}
		return tc.invalid(e.Span)
	}
	return tc.variantPayload(obj, possible[0], e)
}

// isTest checks `x is V` and returns what it teaches when true.
func (tc *typeChecker) isTest(e *ast.Expr) (*hir.Expr, narrow.Cond) {
	obj := tc.value(e.X, types.NoTypeID)
	if obj.Type == types.NoTypeID {
		return tc.invalid(e.Span), narrow.None
	}
	if !tc.types.IsSum(obj.Type) {
		tc.report(diag.SemaTypeMismatch, e.Span, "is needs an enum, got %s", tc.typeLabel(obj.Type))
		return tc.invalid(e.Span), narrow.None
	}
	variant := symbols.Normalize(e.Text)
	variants := tc.types.Variants(obj.Type)
	idx := slices.Index(variants, variant)
	if idx < 0 {
		tc.report(diag.SemaUnknownVariant, e.Span, "%s has no variant %s", tc.typeLabel(obj.Type), variant)
		return tc.invalid(e.Span), narrow.None
	}
	possible := tc.possible(obj)
	if !slices.Contains(possible, variant) {
		if tc.reporter != nil {
			diag.ReportError(tc.reporter, diag.SemaEnumCannotBe, e.Span, "enum can not be "+variant+" here").
				WithNote(e.Span, "enum can be "+narrow.Format(possible)).
				Emit()
		}
		return tc.invalid(e.Span), narrow.None
	}
	h := &hir.Expr{
		Kind: hir.ExprTagTest,
		Type: tc.boolT(),
		Span: e.Span,
		Data: hir.VariantData{Value: obj, Variant: variant, Index: idx},
	}
	cond := narrow.None
	if key, ok := tc.pathKey(obj); ok {
		cond = narrow.Is(key, variants, variant)
	}
	return h, cond
}

// index handles X[i]: builtin on raw pointers and str, the `index`
// implementation otherwise.
func (tc *typeChecker) index(e *ast.Expr) *hir.Expr {
	obj := tc.value(e.X, types.NoTypeID)
	b := tc.types.Builtins()
	if obj.Type == types.NoTypeID {
		tc.value(e.Y, b.Int)
		return tc.invalid(e.Span)
	}
	switch {
	case tc.types.Kind(obj.Type) == types.KindPointer, tc.types.IsStr(obj.Type):
		i := tc.coerce(tc.value(e.Y, b.Int), b.Int, e.Y.Span)
		ty := b.Char
		if elem, ok := tc.types.Elem(obj.Type); ok {
			ty = elem
		}
		return &hir.Expr{Kind: hir.ExprIndex, Type: ty, Span: e.Span, Data: hir.IndexData{Object: obj, Index: i}}
	}
	i := tc.value(e.Y, b.Int)
	ref := tc.borrow(obj, e.Span)
	call := tc.traitCall("index", []*hir.Expr{ref, i}, types.NoTypeID, e.Span)
	if call.Type == types.NoTypeID {
		return call
	}
	if tc.types.Kind(call.Type) != types.KindPointer {
		tc.report(diag.SemaTypeMismatch, e.Span, "index must return a pointer, got %s", tc.typeLabel(call.Type))
		return tc.invalid(e.Span)
	}
	return tc.deref(call)
}

// rangeExpr handles X[from:to] through the three-argument `index`
// implementation. Pointer results are read through.
func (tc *typeChecker) rangeExpr(e *ast.Expr) *hir.Expr {
	obj := tc.value(e.X, types.NoTypeID)
	b := tc.types.Builtins()
	from := tc.value(e.Y, b.Int)
	to := tc.value(e.Z, b.Int)
	if obj.Type == types.NoTypeID {
		return tc.invalid(e.Span)
	}
	ref := tc.borrow(obj, e.Span)
	call := tc.traitCall("index", []*hir.Expr{ref, from, to}, types.NoTypeID, e.Span)
	if tc.types.Kind(call.Type) == types.KindPointer {
		return tc.deref(call)
	}
	return call
}

func (tc *typeChecker) addr(e *ast.Expr) *hir.Expr {
	x := tc.value(e.X, types.NoTypeID)
	if x.Type == types.NoTypeID {
		return x
	}
	return tc.borrow(x, e.Span)
}

func (tc *typeChecker) derefExpr(e *ast.Expr) *hir.Expr {
	x := tc.value(e.X, types.NoTypeID)
	if x.Type == types.NoTypeID {
		return x
	}
	if _, ok := tc.types.Elem(x.Type); !ok {
		tc.report(diag.SemaTypeMismatch, e.Span, "cannot dereference %s", tc.typeLabel(x.Type))
		return tc.invalid(e.Span)
	}
	h := tc.deref(x)
	h.Span = e.Span
	return h
}
