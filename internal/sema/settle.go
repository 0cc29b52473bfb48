package sema

import (
	"kestrel/internal/hir"
	"kestrel/internal/types"
)

// settleFunc gives every untyped literal in the body its final type. Locals
// never refined by a concrete use default to int and f64.
func (tc *typeChecker) settleFunc() {
	f := tc.fn
	for i := range f.Locals {
		if tc.types.HasAmbiguous(f.Locals[i].Type) {
			f.Locals[i].Type = tc.types.DefaultAmbiguous(f.Locals[i].Type)
		}
	}
	tc.settleBlock(f.Body)
}

func (tc *typeChecker) settleBlock(b *hir.Block) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		tc.settleStmt(s)
	}
}

func (tc *typeChecker) settleStmt(s *hir.Stmt) {
	switch d := s.Data.(type) {
	case hir.LetData:
		if l := tc.fn.Local(d.Local); l != nil {
			d.Type = l.Type
		}
		tc.settleExpr(d.Value, d.Type)
		s.Data = d
	case hir.ExprStmtData:
		tc.settleExpr(d.Expr, types.NoTypeID)
	case hir.AssignData:
		tc.settleExpr(d.Target, types.NoTypeID)
		tc.settleExpr(d.Value, d.Target.Type)
	case hir.ReturnData:
		tc.settleExpr(d.Value, tc.fn.Result)
	case hir.IfData:
		tc.settleExpr(d.Cond, tc.boolT())
		tc.settleBlock(d.Then)
		tc.settleBlock(d.Else)
	case hir.WhileData:
		tc.settleExpr(d.Cond, tc.boolT())
		tc.settleBlock(d.Body)
	case hir.ForData:
		tc.settleExpr(d.Next, types.NoTypeID)
		if l := tc.fn.Local(d.Local); l != nil {
			d.Elem = l.Type
		}
		tc.settleBlock(d.Body)
		s.Data = d
	case hir.BlockData:
		tc.settleBlock(d.Block)
	}
}

// settleExpr pushes want down into e, fixing untyped literal types on the
// way. Children are settled against the types their parent now has.
func (tc *typeChecker) settleExpr(e *hir.Expr, want types.TypeID) {
	if e == nil {
		return
	}
	in := tc.types
	switch d := e.Data.(type) {
	case hir.LocalData:
		if l := tc.fn.Local(d.Local); l != nil {
			e.Type = l.Type
		}
		return
	case hir.UnaryOpData:
		if d.Op == "not" {
			tc.settleExpr(d.Operand, tc.boolT())
			return
		}
		tc.settleExpr(d.Operand, tc.numericWant(e.Type, want))
		e.Type = d.Operand.Type
		return
	case hir.BinaryOpData:
		switch {
		case d.Op == "and" || d.Op == "or":
			tc.settleExpr(d.Left, tc.boolT())
			tc.settleExpr(d.Right, tc.boolT())
		case isComparison(d.Op):
			tc.settlePair(d.Left, d.Right, types.NoTypeID)
		default:
			tc.settlePair(d.Left, d.Right, tc.numericWant(e.Type, want))
			e.Type = d.Left.Type
			return
		}
	case hir.CallData:
		e.Type = tc.settleType(e.Type, want)
		if in.HasAmbiguous(d.Sig) {
			d.Sig = tc.settleSig(d.Sig, e.Type)
		}
		_, params, _ := in.FnSignature(d.Sig)
		for i, a := range d.Args {
			tc.settleExpr(a, callParam(params, d.Mask, i))
		}
		e.Data = d
		return
	case hir.IndirectCallData:
		tc.settleExpr(d.Callee, types.NoTypeID)
		_, params, _ := in.FnSignature(d.Callee.Type)
		for i, a := range d.Args {
			tc.settleExpr(a, callParam(params, 0, i))
		}
	case hir.FieldAccessData:
		tc.settleExpr(d.Object, types.NoTypeID)
		if f, ok := in.Field(d.Object.Type, d.FieldName); ok {
			e.Type = f.Type
		}
		return
	case hir.VariantData:
		switch e.Kind {
		case hir.ExprTagTest:
			tc.settleExpr(d.Value, types.NoTypeID)
		case hir.ExprVariantPayload:
			tc.settleExpr(d.Value, types.NoTypeID)
			if vt, ok := in.VariantType(d.Value.Type, d.Variant); ok {
				e.Type = vt
			}
		default:
			e.Type = tc.settleType(e.Type, want)
			if e.Kind == hir.ExprInject {
				arm := in.MustLookup(e.Type).Args[d.Index]
				d.Variant = in.Format(arm)
				tc.settleExpr(d.Value, arm)
				e.Data = d
			} else if vt, ok := in.VariantType(e.Type, d.Variant); ok {
				tc.settleExpr(d.Value, vt)
			}
		}
		return
	case hir.StructLitData:
		e.Type = tc.settleType(e.Type, want)
		for _, f := range d.Fields {
			ft := types.NoTypeID
			if field, ok := in.Field(e.Type, f.Name); ok {
				ft = field.Type
			}
			tc.settleExpr(f.Value, ft)
		}
		return
	case hir.IndexData:
		tc.settleExpr(d.Object, types.NoTypeID)
		tc.settleExpr(d.Index, in.Builtins().Int)
		if elem, ok := in.Elem(d.Object.Type); ok {
			e.Type = elem
		}
		return
	case hir.OperandData:
		if e.Kind == hir.ExprAddrOf {
			elemWant, _ := in.Elem(want)
			tc.settleExpr(d.Operand, elemWant)
			e.Type = in.Reference(d.Operand.Type)
			return
		}
		tc.settleExpr(d.Operand, types.NoTypeID)
		if elem, ok := in.Elem(d.Operand.Type); ok {
			e.Type = elem
		}
		return
	}
	e.Type = tc.settleType(e.Type, want)
}

// settlePair settles the operands of a builtin binary operator to a single
// type: a concrete operand decides, then want, then the defaults.
func (tc *typeChecker) settlePair(l, r *hir.Expr, want types.TypeID) {
	target := want
	if lt := tc.currentType(l); !tc.types.HasAmbiguous(lt) {
		target = lt
	} else if rt := tc.currentType(r); !tc.types.HasAmbiguous(rt) {
		target = rt
	}
	tc.settleExpr(l, target)
	tc.settleExpr(r, target)
}

// currentType is the type e will settle to without outside help.
func (tc *typeChecker) currentType(e *hir.Expr) types.TypeID {
	switch d := e.Data.(type) {
	case hir.LocalData:
		if l := tc.fn.Local(d.Local); l != nil {
			return l.Type
		}
	case hir.UnaryOpData:
		if d.Op == "-" {
			return tc.currentType(d.Operand)
		}
	case hir.BinaryOpData:
		if _, ok := arithmeticOps[d.Op]; ok {
			if lt := tc.currentType(d.Left); !tc.types.HasAmbiguous(lt) {
				return lt
			}
			return tc.currentType(d.Right)
		}
	}
	return e.Type
}

func (tc *typeChecker) numericWant(own, want types.TypeID) types.TypeID {
	if !tc.types.HasAmbiguous(own) {
		return own
	}
	if tc.types.IsNumeric(want) {
		return want
	}
	return types.NoTypeID
}

// settleType replaces untyped parts of t, following want where it has the
// same shape.
func (tc *typeChecker) settleType(t, want types.TypeID) types.TypeID {
	in := tc.types
	if !in.HasAmbiguous(t) {
		return t
	}
	if in.IsAmbiguous(t) {
		return in.SettleAmbiguous(t, want)
	}
	if want != types.NoTypeID && !in.HasAmbiguous(want) && in.Kind(t) == in.Kind(want) &&
		in.TemplateOf(t) == in.TemplateOf(want) && in.Applicable(t, want, false, types.Subst{}) {
		return want
	}
	return in.DefaultAmbiguous(t)
}

// settleSig fixes a call signature whose result settled to ret.
func (tc *typeChecker) settleSig(sig, ret types.TypeID) types.TypeID {
	in := tc.types
	oldRet, params, _ := in.FnSignature(sig)
	out := make([]types.TypeID, len(params))
	for i, p := range params {
		if in.HasAmbiguous(p) && p == oldRet {
			out[i] = ret
			continue
		}
		out[i] = in.DefaultAmbiguous(p)
	}
	return in.Fn(tc.settleType(oldRet, ret), out)
}

// callParam returns the parameter type of argument i. Decl calls carry only
// the supplied arguments, picked out by mask.
func callParam(params []types.TypeID, mask uint64, i int) types.TypeID {
	if mask == 0 {
		if i < len(params) {
			return params[i]
		}
		return types.NoTypeID
	}
	seen := 0
	for p := range params {
		if mask&(1<<uint(p)) == 0 {
			continue
		}
		if seen == i {
			return params[p]
		}
		seen++
	}
	return types.NoTypeID
}
