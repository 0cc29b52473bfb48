package mono

import (
	"fmt"

	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/sema"
	"kestrel/internal/types"
)

func (b *builder) cloner(m types.Subst) *hir.Cloner {
	return &hir.Cloner{
		Type: func(t types.TypeID) types.TypeID {
			if len(m) == 0 {
				return t
			}
			return b.in.Apply(t, m)
		},
		Rewrite: b.rewrite,
	}
}

// rewrite runs on each cloned expression once its children carry concrete
// types: it resolves deferred calls, points callees at their instances and
// renames union variants whose arm types were generic.
func (b *builder) rewrite(e *hir.Expr) *hir.Expr {
	switch d := e.Data.(type) {
	case hir.CallData:
		if d.Deferred {
			if op := b.builtinOp(e, d); op != nil {
				return op
			}
			if !b.resolveImpl(e, &d) {
				e.Data = d
				return e
			}
		}
		if inst := b.instantiate(d.Fn, d.Sig, d.Mask, e.Span); inst != nil {
			d.Instance = inst.Name
		}
		e.Data = d
	case hir.FnRefData:
		if d.Deferred && !b.resolveFnRef(e, &d) {
			e.Data = d
			return e
		}
		if inst := b.instantiate(d.Fn, e.Type, 0, e.Span); inst != nil {
			d.Instance = inst.Name
		}
		e.Data = d
	case hir.VariantData:
		owner := e.Type
		if e.Kind == hir.ExprTagTest || e.Kind == hir.ExprVariantPayload {
			owner = d.Value.Type
		}
		if b.in.IsUnion(owner) {
			if variants := b.in.Variants(owner); d.Index < len(variants) {
				d.Variant = variants[d.Index]
				e.Data = d
			}
		}
	}
	return e
}

// builtinOp lowers a deferred trait call whose operands turned out to be
// primitives of one type to the builtin operator.
func (b *builder) builtinOp(e *hir.Expr, d hir.CallData) *hir.Expr {
	sym, ok := sema.OpSymbol(d.Op)
	if !ok || len(d.Args) != 2 {
		return nil
	}
	l, r := d.Args[0], d.Args[1]
	if l.Type != r.Type {
		return nil
	}
	switch d.Op {
	case "eq":
		ok = b.in.IsPrimitive(l.Type) || b.in.Kind(l.Type) == types.KindPointer
	case "less":
		ok = b.in.IsPrimitive(l.Type) && !b.in.IsBool(l.Type)
	default:
		ok = b.in.IsNumeric(l.Type)
	}
	if !ok {
		return nil
	}
	return &hir.Expr{Kind: hir.ExprBinaryOp, Type: e.Type, Span: e.Span, Data: hir.BinaryOpData{Op: sym, Left: l, Right: r}}
}

// resolveImpl picks the implementation of a deferred trait call now that
// its operands are concrete.
func (b *builder) resolveImpl(e *hir.Expr, d *hir.CallData) bool {
	argTypes := make([]types.TypeID, len(d.Args))
	for i, a := range d.Args {
		argTypes[i] = a.Type
	}
	m, ok := b.resolver.ResolveImpl(d.Op, argTypes, e.Type, e.Span, b.rep)
	if !ok {
		return false
	}
	if m.Return != e.Type {
		diag.ReportError(b.rep, diag.SemaTypeMismatch, e.Span,
			fmt.Sprintf("%s for (%s) returns %s, expected %s", d.Op, b.in.FormatList(argTypes), b.in.Format(m.Return), b.in.Format(e.Type))).
			WithNote(e.Span, "implementation "+b.tab.FormatFn(m.Fn)).
			Emit()
		return false
	}
	d.Fn, d.Sig, d.Deferred = m.Fn, m.Sig, false
	return true
}

// resolveFnRef picks the overload a deferred function reference names at
// its concrete function type.
func (b *builder) resolveFnRef(e *hir.Expr, d *hir.FnRefData) bool {
	ret, params, ok := b.in.FnSignature(e.Type)
	if !ok {
		diag.CompilerError("mono: deferred reference %s has type %s", d.Name, b.in.Format(e.Type))
	}
	args := make([]sema.Arg, len(params))
	for i, p := range params {
		args[i] = sema.Arg{Type: p}
	}
	var (
		m     sema.Match
		found bool
	)
	if d.Impl {
		m, found = b.resolver.ResolveImpl(d.Name, params, ret, e.Span, b.rep)
	} else {
		m, found = b.resolver.ResolveFn(sema.CallSite{Unit: d.Unit, Name: d.Name, Args: args, Want: ret, Span: e.Span}, b.rep)
	}
	if !found {
		return false
	}
	if m.Sig != e.Type {
		diag.ReportError(b.rep, diag.SemaTypeMismatch, e.Span,
			fmt.Sprintf("%s resolves to %s, expected %s", d.Name, b.in.Format(m.Sig), b.in.Format(e.Type))).
			Emit()
		return false
	}
	d.Fn, d.Deferred = m.Fn, false
	return true
}
