package sema

import (
	"slices"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/narrow"
	"kestrel/internal/source"
	"kestrel/internal/types"
)

// arithmeticOps maps operators to the trait operation implementing them on
// non-primitive operands.
var arithmeticOps = map[string]string{
	"+": "add",
	"-": "sub",
	"*": "mul",
	"/": "div",
	"%": "mod",
}

// OpSymbol returns the builtin operator of an arithmetic or comparison trait
// operation; deferred calls on primitives become plain operators.
func OpSymbol(op string) (string, bool) {
	switch op {
	case "eq":
		return "==", true
	case "less":
		return "<", true
	}
	for sym, name := range arithmeticOps {
		if name == op {
			return sym, true
		}
	}
	return "", false
}

func isLogical(op string) bool {
	switch op {
	case "and", "&&", "or", "||":
		return true
	}
	return false
}

func isComparison(op string) bool {
	switch op {
	case "==", "!=", "<", ">", "<=", ">=":
		return true
	}
	return false
}

func logicalOp(op string) string {
	if op == "&&" || op == "and" {
		return "and"
	}
	return "or"
}

func (tc *typeChecker) binary(e *ast.Expr, want types.TypeID) *hir.Expr {
	switch {
	case isLogical(e.Text):
		h, _ := tc.cond(e)
		return h
	case isComparison(e.Text):
		return tc.compare(e)
	}
	if _, ok := arithmeticOps[e.Text]; !ok {
		tc.report(diag.SemaInvalidOperands, e.Span, "unknown operator %s", e.Text)
		return tc.invalid(e.Span)
	}
	var hint types.TypeID
	if tc.types.IsNumeric(want) {
		hint = want
	}
	l := tc.value(e.X, hint)
	r := tc.value(e.Y, hint)
	return tc.arith(e.Text, l, r, want, e.Span)
}

// arith lowers an arithmetic operator: builtin on primitives of one type,
// the matching trait implementation otherwise.
func (tc *typeChecker) arith(op string, l, r *hir.Expr, want types.TypeID, span source.Span) *hir.Expr {
	if l.Type == types.NoTypeID || r.Type == types.NoTypeID {
		return tc.invalid(span)
	}
	in := tc.types
	if in.IsNumericLike(l.Type) && in.IsNumericLike(r.Type) {
		ty, ok := tc.unifyPrimitive(l, r, span)
		if !ok {
			return tc.invalid(span)
		}
		return &hir.Expr{Kind: hir.ExprBinaryOp, Type: ty, Span: span, Data: hir.BinaryOpData{Op: op, Left: l, Right: r}}
	}
	if in.IsPrimitive(l.Type) && in.IsPrimitive(r.Type) {
		tc.report(diag.SemaInvalidOperands, span, "operator %s is not defined on %s and %s",
			op, tc.typeLabel(l.Type), tc.typeLabel(r.Type))
		return tc.invalid(span)
	}
	return tc.traitCall(arithmeticOps[op], []*hir.Expr{l, r}, want, span)
}

// unifyPrimitive brings two primitive operands to one type. An untyped
// literal takes the type of a concrete partner; two literals stay untyped,
// float when either is.
func (tc *typeChecker) unifyPrimitive(l, r *hir.Expr, span source.Span) (types.TypeID, bool) {
	in := tc.types
	la, ra := in.IsAmbiguous(l.Type), in.IsAmbiguous(r.Type)
	switch {
	case la && ra:
		if in.Kind(l.Type) == types.KindAmbiguousFloat || in.Kind(r.Type) == types.KindAmbiguousFloat {
			return in.Builtins().AmbiguousFloat, true
		}
		return in.Builtins().AmbiguousInt, true
	case la:
		tc.coerce(l, r.Type, span)
		return r.Type, l.Type == r.Type
	case ra:
		tc.coerce(r, l.Type, span)
		return l.Type, l.Type == r.Type
	case l.Type == r.Type:
		return l.Type, true
	}
	tc.report(diag.SemaInvalidOperands, span, "mismatched operands %s and %s", tc.typeLabel(l.Type), tc.typeLabel(r.Type))
	return types.NoTypeID, false
}

// compare lowers comparisons. On non-primitive operands == and < come from
// eq and less; the others are derived from them.
func (tc *typeChecker) compare(e *ast.Expr) *hir.Expr {
	l := tc.value(e.X, types.NoTypeID)
	r := tc.value(e.Y, l.Type)
	if l.Type == types.NoTypeID || r.Type == types.NoTypeID {
		return tc.invalid(e.Span)
	}
	in := tc.types
	op := e.Text
	primitive := in.IsPrimitive(l.Type) && in.IsPrimitive(r.Type)
	pointers := in.Kind(l.Type) == types.KindPointer && (op == "==" || op == "!=")
	if primitive || pointers {
		if primitive {
			if _, ok := tc.unifyPrimitive(l, r, e.Span); !ok {
				return tc.invalid(e.Span)
			}
		} else {
			r = tc.coerce(r, l.Type, e.Span)
		}
		return &hir.Expr{Kind: hir.ExprBinaryOp, Type: tc.boolT(), Span: e.Span, Data: hir.BinaryOpData{Op: op, Left: l, Right: r}}
	}
	var call *hir.Expr
	switch op {
	case "==":
		return tc.traitCall("eq", []*hir.Expr{l, r}, tc.boolT(), e.Span)
	case "!=":
		call = tc.traitCall("eq", []*hir.Expr{l, r}, tc.boolT(), e.Span)
	case "<":
		return tc.traitCall("less", []*hir.Expr{l, r}, tc.boolT(), e.Span)
	case ">":
		return tc.traitCall("less", []*hir.Expr{r, l}, tc.boolT(), e.Span)
	case "<=":
		call = tc.traitCall("less", []*hir.Expr{r, l}, tc.boolT(), e.Span)
	case ">=":
		call = tc.traitCall("less", []*hir.Expr{l, r}, tc.boolT(), e.Span)
	}
	return tc.negate(call)
}

func (tc *typeChecker) negate(h *hir.Expr) *hir.Expr {
	if h.Type == types.NoTypeID {
		return h
	}
	return &hir.Expr{Kind: hir.ExprUnaryOp, Type: tc.boolT(), Span: h.Span, Data: hir.UnaryOpData{Op: "not", Operand: h}}
}

func (tc *typeChecker) unary(e *ast.Expr, want types.TypeID) *hir.Expr {
	if e.Text == "not" {
		h, _ := tc.cond(e)
		return h
	}
	if e.Text != "-" {
		tc.report(diag.SemaInvalidOperands, e.Span, "unknown operator %s", e.Text)
		return tc.invalid(e.Span)
	}
	var hint types.TypeID
	if tc.types.IsNumeric(want) {
		hint = want
	}
	x := tc.value(e.X, hint)
	if x.Type == types.NoTypeID {
		return x
	}
	if !tc.types.IsNumericLike(x.Type) {
		tc.report(diag.SemaInvalidOperands, e.Span, "operator - is not defined on %s", tc.typeLabel(x.Type))
		return tc.invalid(e.Span)
	}
	return &hir.Expr{Kind: hir.ExprUnaryOp, Type: x.Type, Span: e.Span, Data: hir.UnaryOpData{Op: "-", Operand: x}}
}

// cond checks a boolean expression and returns what it teaches about enum
// paths when it holds. The right side of and/or is checked under what the
// left side teaches.
func (tc *typeChecker) cond(e *ast.Expr) (*hir.Expr, narrow.Cond) {
	switch {
	case e.Kind == ast.ExprUnary && e.Text == "not":
		x, c := tc.cond(e.X)
		if x.Type == types.NoTypeID {
			return x, narrow.None
		}
		h := tc.negate(x)
		h.Span = e.Span
		return h, narrow.Not(c)
	case e.Kind == ast.ExprBinary && isLogical(e.Text):
		op := logicalOp(e.Text)
		l, lc := tc.cond(e.X)
		tc.narrow.Push()
		if op == "and" {
			tc.narrow.Apply(lc.Set)
		} else {
			tc.narrow.Apply(narrow.Not(lc).Set)
		}
		r, rc := tc.cond(e.Y)
		tc.narrow.Pop()
		h := &hir.Expr{Kind: hir.ExprBinaryOp, Type: tc.boolT(), Span: e.Span, Data: hir.BinaryOpData{Op: op, Left: l, Right: r}}
		if l.Type == types.NoTypeID || r.Type == types.NoTypeID {
			h.Type = types.NoTypeID
		}
		if op == "and" {
			return h, narrow.And(lc, rc)
		}
		return h, narrow.Or(lc, rc)
	case e.Kind == ast.ExprIs:
		return tc.isTest(e)
	}
	h := tc.value(e, tc.boolT())
	return tc.coerce(h, tc.boolT(), e.Span), narrow.None
}

// traitCall resolves a compiler-synthesized operation. Operands mentioning
// generics are resolved again per instance; the call still gets a type now.
func (tc *typeChecker) traitCall(op string, args []*hir.Expr, want types.TypeID, span source.Span) *hir.Expr {
	argTypes := make([]types.TypeID, len(args))
	generic := false
	for i, a := range args {
		if a.Type == types.NoTypeID {
			return tc.invalid(span)
		}
		argTypes[i] = a.Type
		generic = generic || tc.types.IsGeneric(a.Type)
	}
	if generic {
		var ret types.TypeID
		switch op {
		case "eq", "less":
			ret = tc.boolT()
		case "add", "sub", "mul", "div", "mod":
			ret = args[0].Type
		default:
			m, ok := tc.resolver.ResolveImpl(op, argTypes, want, span, tc.reporter)
			if !ok {
				return tc.invalid(span)
			}
			ret = m.Return
		}
		return &hir.Expr{
			Kind: hir.ExprCall,
			Type: ret,
			Span: span,
			Data: hir.CallData{Sig: tc.types.Fn(ret, argTypes), Args: args, Op: op, Deferred: true},
		}
	}
	m, ok := tc.resolver.ResolveImpl(op, argTypes, want, span, tc.reporter)
	if !ok {
		return tc.invalid(span)
	}
	for i := range args {
		args[i] = tc.coerce(args[i], m.Params[i], span)
	}
	if !tc.checkEscape(m.Return, span, op) {
		return tc.invalid(span)
	}
	return &hir.Expr{
		Kind: hir.ExprCall,
		Type: m.Return,
		Span: span,
		Data: hir.CallData{Fn: m.Fn, Sig: m.Sig, Args: args, Op: op},
	}
}

// appendTo lowers `target ++= value` to append(&target, value), formatting
// the value first when no append takes it as is.
func (tc *typeChecker) appendTo(target *hir.Expr, value *ast.Expr, span source.Span) *hir.Expr {
	v := tc.value(value, types.NoTypeID)
	if target.Type == types.NoTypeID || v.Type == types.NoTypeID {
		return tc.invalid(span)
	}
	ref := tc.borrow(target, span)
	direct := []types.TypeID{ref.Type, tc.types.DefaultAmbiguous(v.Type)}
	if slices.ContainsFunc(direct, tc.types.IsGeneric) {
		return tc.traitCall("append", []*hir.Expr{ref, v}, types.NoTypeID, span)
	}
	if _, ok := tc.resolver.ResolveImpl("append", []types.TypeID{ref.Type, v.Type}, types.NoTypeID, span, nil); ok {
		return tc.traitCall("append", []*hir.Expr{ref, v}, types.NoTypeID, span)
	}
	text := tc.traitCall("format", []*hir.Expr{v}, types.NoTypeID, span)
	return tc.traitCall("append", []*hir.Expr{ref, text}, types.NoTypeID, span)
}
