package sema

import (
	"slices"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/source"
	"kestrel/internal/types"
)

func (tc *typeChecker) invalid(span source.Span) *hir.Expr {
	return &hir.Expr{Kind: hir.ExprLiteral, Type: types.NoTypeID, Span: span, Data: hir.LiteralData{}}
}

// value checks e in a context that consumes its result.
func (tc *typeChecker) value(e *ast.Expr, want types.TypeID) *hir.Expr {
	h := tc.expr(e, want)
	if h.Type != types.NoTypeID && h.Type == tc.void() {
		tc.report(diag.SemaVoidValue, h.Span, "expression of type void used as a value")
		h.Type = types.NoTypeID
	}
	return h
}

// coerce verifies that h may be offered where want is expected, settling
// untyped literals and injecting into T|K sums on the way. Untyped values
// (NoTypeID) were already reported and pass silently.
func (tc *typeChecker) coerce(h *hir.Expr, want types.TypeID, span source.Span) *hir.Expr {
	if h == nil || want == types.NoTypeID || h.Type == types.NoTypeID || h.Type == want {
		return h
	}
	in := tc.types
	if in.IsUnion(want) && in.TemplateOf(h.Type) != in.TemplateOf(want) {
		for idx, arm := range in.MustLookup(want).Args {
			if in.Applicable(h.Type, arm, false, types.Subst{}) {
				return tc.inject(tc.coerce(h, arm, span), want, idx)
			}
		}
	}
	if in.HasAmbiguous(h.Type) && !in.HasAmbiguous(want) && in.Applicable(h.Type, want, false, types.Subst{}) {
		tc.refine(h, want)
		return h
	}
	if in.Applicable(h.Type, want, false, types.Subst{}) {
		return h
	}
	tc.report(diag.SemaTypeMismatch, span, "expected %s, got %s", tc.typeLabel(want), tc.typeLabel(h.Type))
	return h
}

// refine fixes the type of an expression whose type still holds untyped
// literals. A local takes the type of its first concrete use. A call whose
// result was bound from an untyped argument passes want on to that argument.
func (tc *typeChecker) refine(h *hir.Expr, want types.TypeID) {
	in := tc.types
	h.Type = want
	switch d := h.Data.(type) {
	case hir.LocalData:
		if l := tc.fn.Local(d.Local); l != nil && in.HasAmbiguous(l.Type) {
			l.Type = want
		}
	case hir.CallData:
		ret, params, ok := in.FnSignature(d.Sig)
		if !ok || !in.HasAmbiguous(ret) {
			return
		}
		out := slices.Clone(params)
		for i, p := range params {
			if p == ret {
				out[i] = want
			}
		}
		for i, a := range d.Args {
			if callParam(params, d.Mask, i) != ret || !in.HasAmbiguous(a.Type) {
				continue
			}
			if in.Applicable(a.Type, want, false, types.Subst{}) {
				tc.refine(a, want)
			}
		}
		d.Sig = in.Fn(want, out)
		h.Data = d
	}
}

func (tc *typeChecker) inject(h *hir.Expr, union types.TypeID, idx int) *hir.Expr {
	arm := tc.types.MustLookup(union).Args[idx]
	return &hir.Expr{
		Kind: hir.ExprInject,
		Type: union,
		Span: h.Span,
		Data: hir.VariantData{Value: h, Variant: tc.types.Format(arm), Index: idx},
	}
}

// injectVoid builds the void arm of a sum that has one.
func (tc *typeChecker) injectVoid(union types.TypeID, span source.Span) (*hir.Expr, bool) {
	if !tc.types.IsUnion(union) {
		return nil, false
	}
	for idx, arm := range tc.types.MustLookup(union).Args {
		if arm == tc.void() {
			return &hir.Expr{
				Kind: hir.ExprInject,
				Type: union,
				Span: span,
				Data: hir.VariantData{Variant: tc.types.Format(arm), Index: idx},
			}, true
		}
	}
	return nil, false
}

// argTo prepares an argument for a parameter of type param, lending it when
// the parameter is a reference.
func (tc *typeChecker) argTo(h *hir.Expr, param types.TypeID, span source.Span) *hir.Expr {
	if h.Type == tc.void() {
		tc.report(diag.SemaVoidValue, h.Span, "expression of type void used as a value")
		return h
	}
	if tc.types.Kind(param) == types.KindReference {
		h = tc.borrow(h, span)
	}
	return tc.coerce(h, param, span)
}

// borrow turns an lvalue into a reference to it. A reference parameter read
// as a value is passed on as the reference itself.
func (tc *typeChecker) borrow(h *hir.Expr, span source.Span) *hir.Expr {
	in := tc.types
	if h.Type == types.NoTypeID || in.Kind(h.Type) == types.KindReference {
		return h
	}
	if d, ok := h.Data.(hir.OperandData); ok && h.Kind == hir.ExprDeref && in.Kind(d.Operand.Type) == types.KindReference {
		tc.clearPath(h)
		return d.Operand
	}
	if !tc.addressable(h) {
		tc.report(diag.SemaNotAddressable, span, "cannot take a reference to a temporary of type %s", tc.typeLabel(h.Type))
		return h
	}
	tc.clearPath(h)
	return &hir.Expr{
		Kind: hir.ExprAddrOf,
		Type: in.Reference(h.Type),
		Span: h.Span,
		Data: hir.OperandData{Operand: h},
	}
}

// deref reads through a pointer or reference.
func (tc *typeChecker) deref(h *hir.Expr) *hir.Expr {
	elem, _ := tc.types.Elem(h.Type)
	return &hir.Expr{Kind: hir.ExprDeref, Type: elem, Span: h.Span, Data: hir.OperandData{Operand: h}}
}
