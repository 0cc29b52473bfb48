package sema

import (
	"slices"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/symbols"
	"kestrel/internal/types"
)

// call dispatches a call expression. In order: function-typed variables,
// variant constructors qualified by their enum, constructors of the expected
// enum, macros, then plain overload resolution.
func (tc *typeChecker) call(e *ast.Expr, want types.TypeID) *hir.Expr {
	name := symbols.Normalize(e.Text)
	if e.Qualifier == "" {
		if id, ok := tc.lookupLocal(name); ok {
			return tc.indirectCall(tc.localRef(id, e), e)
		}
	}
	if tc.tab.IsTemplateName(tc.unit, e.Qualifier) {
		return tc.qualifiedCtor(e, want)
	}
	if e.Qualifier == "" && tc.types.IsEnum(want) {
		if _, ok := tc.types.VariantType(want, name); ok {
			return tc.variantCtor(want, name, e)
		}
	}
	if macros := tc.tab.LookupMacros(tc.unit, e.Qualifier, name); len(macros) > 0 {
		return tc.expandMacro(macros, e, want)
	}
	ids, ok := tc.tab.LookupFns(tc.unit, e.Qualifier, name)
	if ok && !slices.ContainsFunc(ids, func(id symbols.FnID) bool { return tc.tab.Fn(id).Mode.Callable() }) {
		if gids, _ := tc.tab.LookupGlobals(tc.unit, e.Qualifier, name); len(gids) == 1 {
			return tc.indirectCall(tc.globalRef(gids[0], e), e)
		}
	}
	return tc.directCall(e, want)
}

// directCall resolves a call by overload. Arguments are first checked
// without context; those that fail are offered as wildcards and checked
// again against the chosen parameter.
func (tc *typeChecker) directCall(e *ast.Expr, want types.TypeID) *hir.Expr {
	name := symbols.Normalize(e.Text)
	probes := make([]*hir.Expr, len(e.Args))
	clean := make([]bool, len(e.Args))
	args := make([]Arg, len(e.Args))
	for i, a := range e.Args {
		var rep countingReporter
		tc.withReporter(&rep, func() { probes[i] = tc.expr(a.Value, types.NoTypeID) })
		clean[i] = rep.errors == 0
		args[i] = Arg{Name: a.Name}
		if clean[i] && probes[i].Type != tc.void() {
			args[i].Type = probes[i].Type
		}
	}
	m, ok := tc.resolver.ResolveFn(CallSite{
		Unit:      tc.unit,
		Qualifier: e.Qualifier,
		Name:      name,
		Args:      args,
		Want:      want,
		Span:      e.Span,
	}, tc.reporter)
	if !ok {
		for i, a := range e.Args {
			if !clean[i] {
				tc.value(a.Value, types.NoTypeID)
			}
		}
		return tc.invalid(e.Span)
	}
	fn := tc.tab.Fn(m.Fn)
	out := make([]*hir.Expr, 0, len(e.Args))
	for pi, slot := range m.Slots {
		if slot < 0 {
			continue
		}
		pt := m.Params[pi]
		h := probes[slot]
		if !clean[slot] {
			h = tc.expr(e.Args[slot].Value, pt)
		}
		out = append(out, tc.argTo(h, pt, e.Args[slot].Span))
	}
	if !tc.checkEscape(m.Return, e.Span, "the result of "+fn.Name) {
		return tc.invalid(e.Span)
	}
	data := hir.CallData{Fn: m.Fn, Sig: m.Sig, Args: out}
	if fn.Mode.IsDecl() {
		data.Mask = m.Mask
	}
	return &hir.Expr{Kind: hir.ExprCall, Type: m.Return, Span: e.Span, Data: data}
}

// indirectCall calls a function-typed value with positional arguments.
func (tc *typeChecker) indirectCall(callee *hir.Expr, e *ast.Expr) *hir.Expr {
	if callee.Type == types.NoTypeID {
		return callee
	}
	ret, params, ok := tc.types.FnSignature(callee.Type)
	if !ok {
		tc.report(diag.SemaNotCallable, e.Span, "%s of type %s is not callable", e.Text, tc.typeLabel(callee.Type))
		return tc.invalid(e.Span)
	}
	if len(e.Args) != len(params) {
		tc.report(diag.SemaWrongArgumentTypes, e.Span, "%s takes %d arguments, got %d", e.Text, len(params), len(e.Args))
		return tc.invalid(e.Span)
	}
	args := make([]*hir.Expr, len(params))
	for i, a := range e.Args {
		if a.Name != "" {
			tc.report(diag.SemaUnknownNamedArg, a.Span, "function values take no named arguments")
			return tc.invalid(e.Span)
		}
		args[i] = tc.argTo(tc.expr(a.Value, params[i]), params[i], a.Span)
	}
	return &hir.Expr{
		Kind: hir.ExprIndirectCall,
		Type: ret,
		Span: e.Span,
		Data: hir.IndirectCallData{Callee: callee, Args: args},
	}
}

// qualifiedCtor handles Enum.Variant(payload). Generic arguments come from
// the expected type or from the payload.
func (tc *typeChecker) qualifiedCtor(e *ast.Expr, want types.TypeID) *hir.Expr {
	matches, _ := tc.tab.LookupTemplates(tc.unit, "", e.Qualifier)
	if len(matches) != 1 {
		tc.report(diag.SemaAmbiguousType, e.Span, "type %s is ambiguous", e.Qualifier)
		return tc.invalid(e.Span)
	}
	tmpl := tc.types.Template(matches[0].ID)
	if !tmpl.IsEnum || tmpl.Builtin != types.NotBuiltin {
		tc.report(diag.SemaTypeMismatch, e.Span, "%s is not an enum", tmpl.Name)
		return tc.invalid(e.Span)
	}
	variant := symbols.Normalize(e.Text)
	idx := tmpl.FieldIndex(variant)
	if idx < 0 {
		tc.report(diag.SemaUnknownVariant, e.Span, "%s has no variant %s", tmpl.Name, variant)
		return tc.invalid(e.Span)
	}
	if wt := tc.types.TemplateOf(want); wt == tmpl {
		return tc.variantCtor(want, variant, e)
	}
	if len(tmpl.Generics) == 0 {
		return tc.variantCtor(tc.types.Struct(matches[0].ID, nil), variant, e)
	}

	// infer the enum's arguments from the payload
	header := make([]types.TypeID, len(tmpl.Generics))
	for i, g := range tmpl.Generics {
		header[i] = tc.types.Generic(g)
	}
	m := types.Subst{}
	if len(e.Args) == 1 {
		var rep countingReporter
		var probe *hir.Expr
		tc.withReporter(&rep, func() { probe = tc.value(e.Args[0].Value, types.NoTypeID) })
		if rep.errors == 0 && probe.Type != types.NoTypeID {
			tc.types.Applicable(probe.Type, tmpl.Fields[idx].Type, true, m)
		}
	}
	args := make([]types.TypeID, len(tmpl.Generics))
	for i, g := range tmpl.Generics {
		bound, ok := m[g]
		if !ok || bound == types.NoTypeID {
			tc.report(diag.SemaTypeMismatch, e.Span, "cannot infer %s of %s.%s; add an expected type", g, tmpl.Name, variant)
			return tc.invalid(e.Span)
		}
		args[i] = bound
	}
	return tc.variantCtor(tc.types.Struct(matches[0].ID, args), variant, e)
}

// variantCtor builds variant of the enum type ty from the call's arguments.
func (tc *typeChecker) variantCtor(ty types.TypeID, variant string, e *ast.Expr) *hir.Expr {
	payloadType, _ := tc.types.VariantType(ty, variant)
	idx := slices.Index(tc.types.Variants(ty), variant)
	var payload *hir.Expr
	switch {
	case payloadType == tc.void():
		if len(e.Args) != 0 {
			tc.report(diag.SemaWrongArgumentTypes, e.Span, "variant %s takes no payload", variant)
			return tc.invalid(e.Span)
		}
	case len(e.Args) != 1 || e.Args[0].Name != "":
		tc.report(diag.SemaWrongArgumentTypes, e.Span, "variant %s takes one positional payload of type %s",
			variant, tc.typeLabel(payloadType))
		return tc.invalid(e.Span)
	default:
		payload = tc.coerce(tc.value(e.Args[0].Value, payloadType), payloadType, e.Args[0].Span)
	}
	if !tc.checkEscape(ty, e.Span, "variant "+variant) {
		return tc.invalid(e.Span)
	}
	return &hir.Expr{
		Kind: hir.ExprVariantLit,
		Type: ty,
		Span: e.Span,
		Data: hir.VariantData{Value: payload, Variant: variant, Index: idx},
	}
}

// expandMacro substitutes the arguments into the macro's single expression
// and checks the result where the call stands.
func (tc *typeChecker) expandMacro(ids []symbols.FnID, e *ast.Expr, want types.TypeID) *hir.Expr {
	name := qualifiedName(e.Qualifier, symbols.Normalize(e.Text))
	if len(ids) > 1 {
		tc.report(diag.SemaAmbiguousFunction, e.Span, "macro %s is ambiguous", name)
		return tc.invalid(e.Span)
	}
	mac := tc.tab.Fn(ids[0])
	if tc.macroDepth >= maxMacroDepth {
		tc.report(diag.SemaNotCallable, e.Span, "expansion of macro %s nests deeper than %d", name, maxMacroDepth)
		return tc.invalid(e.Span)
	}
	if len(e.Args) != len(mac.Params) {
		tc.report(diag.SemaWrongArgumentTypes, e.Span, "macro %s takes %d arguments, got %d", name, len(mac.Params), len(e.Args))
		return tc.invalid(e.Span)
	}
	repl := make(map[string]*ast.Expr, len(e.Args))
	for i, a := range e.Args {
		if a.Name != "" {
			tc.report(diag.SemaUnknownNamedArg, a.Span, "macro %s takes no named arguments", name)
			return tc.invalid(e.Span)
		}
		p := mac.Params[i]
		if !tc.types.IsGeneric(p.Type) && !tc.macroArgFits(a.Value, p.Type) {
			tc.report(diag.SemaWrongArgumentTypes, a.Span, "argument %s of macro %s must be %s", p.Name, name, tc.typeLabel(p.Type))
			return tc.invalid(e.Span)
		}
		repl[p.Name] = a.Value
	}
	body := mac.Decl.Body
	if len(body) != 1 || body[0].Value == nil {
		tc.report(diag.SemaNotCallable, e.Span, "macro %s must consist of a single expression", name)
		return tc.invalid(e.Span)
	}
	tc.macroDepth++
	defer func() { tc.macroDepth-- }()
	h := tc.expr(ast.Substitute(body[0].Value, repl), want)
	h.Span = e.Span
	return h
}

// macroArgFits probes a macro argument against a typed parameter. Arguments
// that fail to check on their own are reported once expanded.
func (tc *typeChecker) macroArgFits(arg *ast.Expr, param types.TypeID) bool {
	var rep countingReporter
	var h *hir.Expr
	tc.withReporter(&rep, func() { h = tc.expr(arg, param) })
	if rep.errors > 0 || h.Type == types.NoTypeID {
		return true
	}
	return tc.types.Applicable(h.Type, param, false, types.Subst{})
}
