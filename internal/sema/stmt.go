package sema

import (
	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/narrow"
	"kestrel/internal/source"
	"kestrel/internal/symbols"
	"kestrel/internal/types"
)

func (tc *typeChecker) block(body []*ast.Stmt, span source.Span) *hir.Block {
	tc.pushScope()
	defer tc.popScope()
	return &hir.Block{Stmts: tc.stmts(body), Span: span}
}

// stmts checks a statement list; if/elif/else runs are folded into one
// nested if.
func (tc *typeChecker) stmts(body []*ast.Stmt) []*hir.Stmt {
	out := make([]*hir.Stmt, 0, len(body))
	for i := 0; i < len(body); i++ {
		s := body[i]
		switch s.Kind {
		case ast.StmtIf:
			j := i + 1
			for j < len(body) && body[j].Kind == ast.StmtElif {
				j++
			}
			if j < len(body) && body[j].Kind == ast.StmtElse {
				j++
			}
			out = append(out, tc.ifChain(body[i:j]))
			i = j - 1
		case ast.StmtElif, ast.StmtElse:
			tc.report(diag.SemaElseWithoutIf, s.Span, "%s without a preceding if", s.Kind)
		default:
			if h := tc.stmt(s); h != nil {
				out = append(out, h)
			}
		}
	}
	return out
}

func (tc *typeChecker) stmt(s *ast.Stmt) *hir.Stmt {
	switch s.Kind {
	case ast.StmtLet:
		return tc.let(s)
	case ast.StmtAssign:
		return tc.assign(s)
	case ast.StmtExpr:
		h := tc.expr(s.Value, types.NoTypeID)
		return &hir.Stmt{Kind: hir.StmtExpr, Span: s.Span, Data: hir.ExprStmtData{Expr: h}}
	case ast.StmtWhile:
		return tc.while(s)
	case ast.StmtFor:
		return tc.forIn(s)
	case ast.StmtReturn:
		return tc.ret(s)
	case ast.StmtBreak, ast.StmtContinue:
		if tc.loopDepth == 0 {
			tc.report(diag.SemaLoopControlOutside, s.Span, "%s outside of a loop", s.Kind)
			return nil
		}
		kind := hir.StmtBreak
		if s.Kind == ast.StmtContinue {
			kind = hir.StmtContinue
		}
		return &hir.Stmt{Kind: kind, Span: s.Span}
	case ast.StmtBlock:
		return &hir.Stmt{Kind: hir.StmtBlock, Span: s.Span, Data: hir.BlockData{Block: tc.block(s.Body, s.Span)}}
	}
	tc.report(diag.SemaTypeMismatch, s.Span, "unsupported statement %s", s.Kind)
	return nil
}

func (tc *typeChecker) let(s *ast.Stmt) *hir.Stmt {
	name := symbols.Normalize(s.Name)
	ty := types.NoTypeID
	typed := s.Type != nil
	if typed {
		ty = tc.resolveType(s.Type)
		ty = tc.localType(ty, name, s.Span)
	}
	var value *hir.Expr
	if s.Value != nil {
		value = tc.value(s.Value, ty)
		switch {
		case ty != types.NoTypeID:
			value = tc.coerce(value, ty, s.Value.Span)
		case !typed:
			ty = tc.localType(value.Type, name, s.Span)
		}
	} else if !typed {
		tc.report(diag.SemaTypeMismatch, s.Span, "let %s needs a type or a value", name)
	}
	id := tc.declareLocal(name, ty, false, s.Span)
	if value != nil {
		tc.afterWrite(&hir.Expr{Kind: hir.ExprLocal, Type: ty, Data: hir.LocalData{Local: id}}, value)
	}
	return &hir.Stmt{Kind: hir.StmtLet, Span: s.Span, Data: hir.LetData{Local: id, Name: name, Type: ty, Value: value}}
}

// localType validates the type of a let binding.
func (tc *typeChecker) localType(ty types.TypeID, name string, span source.Span) types.TypeID {
	switch {
	case ty == types.NoTypeID:
		return ty
	case tc.types.HasReference(ty):
		tc.report(diag.SemaReferenceNotParam, span, "local %s cannot hold reference type %s", name, tc.typeLabel(ty))
		return types.NoTypeID
	case ty == tc.void():
		tc.report(diag.SemaVoidValue, span, "local %s cannot have type void", name)
		return types.NoTypeID
	case !tc.checkEscape(ty, span, "local "+name):
		return types.NoTypeID
	}
	return ty
}

func (tc *typeChecker) assign(s *ast.Stmt) *hir.Stmt {
	target := tc.value(s.Target, types.NoTypeID)
	if target.Type == types.NoTypeID {
		tc.value(s.Value, types.NoTypeID)
		return nil
	}
	if !tc.assignable(target, s.Span) {
		return nil
	}
	in := tc.types
	switch s.Op {
	case "=":
		v := tc.value(s.Value, target.Type)
		if in.HasAmbiguous(target.Type) && v.Type != types.NoTypeID && !in.HasAmbiguous(v.Type) &&
			in.Applicable(target.Type, v.Type, false, types.Subst{}) {
			tc.refine(target, v.Type)
		}
		v = tc.coerce(v, target.Type, s.Value.Span)
		tc.afterWrite(target, v)
		return &hir.Stmt{Kind: hir.StmtAssign, Span: s.Span, Data: hir.AssignData{Target: target, Op: "=", Value: v}}
	case "++=":
		call := tc.appendTo(target, s.Value, s.Span)
		return &hir.Stmt{Kind: hir.StmtExpr, Span: s.Span, Data: hir.ExprStmtData{Expr: call}}
	}
	op := s.Op[:len(s.Op)-1]
	if _, ok := arithmeticOps[op]; !ok || len(s.Op) != 2 || s.Op[1] != '=' {
		tc.report(diag.SemaInvalidOperands, s.Span, "unknown assignment operator %s", s.Op)
		return nil
	}
	v := tc.value(s.Value, target.Type)
	defer tc.afterWrite(target, nil)
	if in.IsNumericLike(target.Type) && in.IsNumericLike(v.Type) {
		if _, ok := tc.unifyPrimitive(target, v, s.Span); !ok {
			return nil
		}
		return &hir.Stmt{Kind: hir.StmtAssign, Span: s.Span, Data: hir.AssignData{Target: target, Op: s.Op, Value: v}}
	}
	sum := tc.coerce(tc.arith(op, target, v, target.Type, s.Span), target.Type, s.Span)
	if sum.Type == types.NoTypeID {
		return nil
	}
	return &hir.Stmt{Kind: hir.StmtAssign, Span: s.Span, Data: hir.AssignData{Target: target, Op: "=", Value: sum}}
}

// ifChain checks if/elif.../else. Each branch sees the negation of the
// conditions before it. After the chain, the negations of a leading run of
// branches that always leave the enclosing block still hold.
func (tc *typeChecker) ifChain(chain []*ast.Stmt) *hir.Stmt {
	type branch struct {
		cond *hir.Expr
		body *hir.Block
		span source.Span
	}
	branches := make([]branch, 0, len(chain))
	var before, after []narrow.Cond
	leaving := true
	for _, s := range chain {
		tc.narrow.Push()
		for _, c := range before {
			tc.narrow.Apply(c.Set)
		}
		var cond *hir.Expr
		c := narrow.None
		if s.Kind != ast.StmtElse {
			cond, c = tc.cond(s.Value)
			tc.narrow.Apply(c.Set)
		}
		body := tc.block(s.Body, s.Span)
		tc.narrow.Pop()

		neg := narrow.Not(c)
		if leaving && exits(body) {
			after = append(after, neg)
		} else {
			leaving = false
		}
		before = append(before, neg)
		branches = append(branches, branch{cond: cond, body: body, span: s.Span})
	}
	for _, c := range after {
		tc.narrow.Apply(c.Set)
	}

	// fold from the last branch: a trailing else becomes the Else block
	var tail *hir.Block
	var out *hir.Stmt
	for i := len(branches) - 1; i >= 0; i-- {
		b := branches[i]
		if b.cond == nil {
			tail = b.body
			continue
		}
		out = &hir.Stmt{Kind: hir.StmtIf, Span: b.span, Data: hir.IfData{Cond: b.cond, Then: b.body, Else: tail}}
		tail = &hir.Block{Stmts: []*hir.Stmt{out}, Span: b.span}
	}
	return out
}

// clearLoopWrites drops narrowing the loop body may invalidate.
func (tc *typeChecker) clearLoopWrites(body []*ast.Stmt, extra ...*ast.Expr) {
	for _, key := range tc.loopWrites(body, extra...) {
		tc.narrow.Clear(key)
	}
}

func (tc *typeChecker) while(s *ast.Stmt) *hir.Stmt {
	tc.clearLoopWrites(s.Body, s.Value)
	tc.narrow.Push()
	defer tc.narrow.Pop()
	cond, c := tc.cond(s.Value)
	tc.narrow.Apply(c.Set)
	tc.loopDepth++
	body := tc.block(s.Body, s.Span)
	tc.loopDepth--
	return &hir.Stmt{Kind: hir.StmtWhile, Span: s.Span, Data: hir.WhileData{Cond: cond, Body: body}}
}

// forIn checks `for x in it`: the loop calls next(&it), which returns
// E|void, and binds x: E until void comes back.
func (tc *typeChecker) forIn(s *ast.Stmt) *hir.Stmt {
	tc.clearLoopWrites(s.Body, s.Value)
	iter := tc.value(s.Value, types.NoTypeID)
	name := symbols.Normalize(s.Name)
	elem := types.NoTypeID
	next := tc.invalid(s.Span)
	if iter.Type != types.NoTypeID {
		next = tc.traitCall("next", []*hir.Expr{tc.borrow(iter, s.Value.Span)}, types.NoTypeID, s.Span)
		elem = tc.nextElem(next.Type, s.Span)
	}
	tc.pushScope()
	defer tc.popScope()
	id := tc.declareLocal(name, elem, false, s.Span)
	tc.loopDepth++
	body := &hir.Block{Stmts: tc.stmts(s.Body), Span: s.Span}
	tc.loopDepth--
	return &hir.Stmt{
		Kind: hir.StmtFor,
		Span: s.Span,
		Data: hir.ForData{Local: id, Name: name, Elem: elem, Next: next, Body: body},
	}
}

// nextElem extracts E from the E|void result of next.
func (tc *typeChecker) nextElem(ty types.TypeID, span source.Span) types.TypeID {
	if ty == types.NoTypeID {
		return ty
	}
	if tc.types.IsUnion(ty) {
		arms := tc.types.MustLookup(ty).Args
		if len(arms) == 2 && arms[1] == tc.void() {
			return arms[0]
		}
		if len(arms) == 2 && arms[0] == tc.void() {
			return arms[1]
		}
	}
	tc.report(diag.SemaTypeMismatch, span, "next must return E|void, got %s", tc.typeLabel(ty))
	return types.NoTypeID
}

func (tc *typeChecker) ret(s *ast.Stmt) *hir.Stmt {
	result := tc.void()
	if tc.sym != nil {
		result = tc.sym.Return
	}
	out := &hir.Stmt{Kind: hir.StmtReturn, Span: s.Span}
	switch {
	case s.Value == nil && result == tc.void():
		out.Data = hir.ReturnData{}
	case s.Value == nil:
		v, ok := tc.injectVoid(result, s.Span)
		if !ok {
			tc.report(diag.SemaTypeMismatch, s.Span, "missing return value of type %s", tc.typeLabel(result))
		}
		out.Data = hir.ReturnData{Value: v}
	case result == tc.void():
		tc.expr(s.Value, types.NoTypeID)
		tc.report(diag.SemaTypeMismatch, s.Value.Span, "function returning void cannot return a value")
		out.Data = hir.ReturnData{}
	default:
		v := tc.coerce(tc.value(s.Value, result), result, s.Value.Span)
		out.Data = hir.ReturnData{Value: v}
	}
	return out
}
