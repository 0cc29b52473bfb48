package sema

import (
	"strconv"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/source"
	"kestrel/internal/symbols"
	"kestrel/internal/types"
)

// pathKey names the lvalue h for narrowing: L<local> or G<global> followed by
// .field, .variant, [n] and .* steps. Mutable globals, raw pointer targets and
// computed indexes have no key and are never narrowed.
func (tc *typeChecker) pathKey(h *hir.Expr) (string, bool) {
	if h == nil {
		return "", false
	}
	switch d := h.Data.(type) {
	case hir.LocalData:
		return "L" + strconv.FormatUint(uint64(d.Local), 10), true
	case hir.GlobalData:
		if g := tc.tab.Global(d.Global); g == nil || g.Mutable {
			return "", false
		}
		return "G" + strconv.FormatUint(uint64(d.Global), 10), true
	case hir.FieldAccessData:
		base, ok := tc.pathKey(d.Object)
		return base + "." + d.FieldName, ok
	case hir.VariantData:
		if h.Kind != hir.ExprVariantPayload {
			return "", false
		}
		base, ok := tc.pathKey(d.Value)
		return base + "." + d.Variant, ok
	case hir.IndexData:
		lit, isLit := d.Index.Data.(hir.LiteralData)
		if !isLit || lit.Kind != hir.LiteralInt {
			return "", false
		}
		base, ok := tc.pathKey(d.Object)
		return base + "[" + lit.Text + "]", ok
	case hir.OperandData:
		if h.Kind != hir.ExprDeref || tc.types.Kind(d.Operand.Type) != types.KindReference {
			return "", false
		}
		base, ok := tc.pathKey(d.Operand)
		return base + ".*", ok
	}
	return "", false
}

// clearPath forgets the narrowing of h and everything below it.
func (tc *typeChecker) clearPath(h *hir.Expr) {
	if key, ok := tc.pathKey(h); ok {
		tc.narrow.Clear(key)
	}
}

// afterWrite records an assignment to target: prior narrowing is dropped and
// a constructed variant becomes the only possible one.
func (tc *typeChecker) afterWrite(target, value *hir.Expr) {
	key, ok := tc.pathKey(target)
	if !ok {
		return
	}
	tc.narrow.Clear(key)
	if value == nil {
		return
	}
	if value.Kind == hir.ExprVariantLit || value.Kind == hir.ExprInject {
		d := value.Data.(hir.VariantData)
		tc.narrow.Install(key, tc.types.Variants(value.Type), d.Variant)
	}
}

// addressable reports expressions that denote storage.
func (tc *typeChecker) addressable(h *hir.Expr) bool {
	switch d := h.Data.(type) {
	case hir.LocalData, hir.GlobalData:
		return true
	case hir.FieldAccessData:
		return tc.addressable(d.Object)
	case hir.VariantData:
		return h.Kind == hir.ExprVariantPayload && tc.addressable(d.Value)
	case hir.IndexData:
		return tc.types.Kind(d.Object.Type) == types.KindPointer
	case hir.OperandData:
		return h.Kind == hir.ExprDeref
	}
	return false
}

// assignable reports whether target may be written from this unit.
func (tc *typeChecker) assignable(target *hir.Expr, span source.Span) bool {
	switch d := target.Data.(type) {
	case hir.LocalData:
		return true
	case hir.GlobalData:
		g := tc.tab.Global(d.Global)
		if !g.Mutable {
			tc.report(diag.SemaNotMutable, span, "global %s is not mutable", g.Name)
			return false
		}
		return true
	case hir.FieldAccessData:
		tmpl := tc.types.TemplateOf(d.Object.Type)
		if tmpl != nil && tmpl.Unit != tc.unit && d.FieldIdx >= 0 {
			switch tmpl.Fields[d.FieldIdx].Vis {
			case types.VisPrivate:
				tc.report(diag.SemaPrivateAccess, span, "field %s of %s is private", d.FieldName, tmpl.Name)
				return false
			case types.VisGetOnly:
				tc.report(diag.SemaNotMutable, span, "field %s of %s is read-only outside unit %s",
					d.FieldName, tmpl.Name, tc.tab.UnitName(tmpl.Unit))
				return false
			}
		}
		return tc.assignableRoot(d.Object, span)
	case hir.VariantData:
		if target.Kind == hir.ExprVariantPayload {
			return tc.assignableRoot(d.Value, span)
		}
	case hir.IndexData:
		if tc.types.Kind(d.Object.Type) == types.KindPointer {
			return true
		}
		tc.report(diag.SemaNotMutable, span, "%s cannot be modified in place", tc.typeLabel(d.Object.Type))
		return false
	case hir.OperandData:
		if target.Kind == hir.ExprDeref {
			return true
		}
	}
	if target.Type != types.NoTypeID {
		tc.report(diag.SemaNotAddressable, span, "cannot assign to this expression")
	}
	return false
}

// assignableRoot checks the container of a written field.
func (tc *typeChecker) assignableRoot(h *hir.Expr, span source.Span) bool {
	switch h.Kind {
	case hir.ExprLocal, hir.ExprDeref:
		return true
	case hir.ExprGlobal, hir.ExprFieldAccess, hir.ExprVariantPayload, hir.ExprIndex:
		return tc.assignable(h, span)
	}
	if h.Type != types.NoTypeID {
		tc.report(diag.SemaNotAddressable, span, "cannot assign to a field of a temporary")
	}
	return false
}

// loopWrites collects the root keys of paths a loop body may change: write
// targets, borrowed operands, call arguments and iterated values. Their
// narrowing cannot be trusted at the loop head.
func (tc *typeChecker) loopWrites(body []*ast.Stmt, extra ...*ast.Expr) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(e *ast.Expr) {
		if key, ok := tc.rootKey(e); ok {
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				out = append(out, key)
			}
		}
	}
	visit := func(e *ast.Expr) {
		switch e.Kind {
		case ast.ExprAddr:
			add(e.X)
		case ast.ExprCall:
			for _, a := range e.Args {
				add(a.Value)
			}
		case ast.ExprIndex, ast.ExprRange:
			add(e.X)
		}
	}
	for _, e := range extra {
		ast.WalkExpr(e, visit)
	}
	ast.WalkStmts(body, func(s *ast.Stmt) {
		switch s.Kind {
		case ast.StmtAssign:
			add(s.Target)
		case ast.StmtFor:
			add(s.Value)
		}
	}, visit)
	return out
}

// rootKey finds the variable at the root of a syntactic path.
func (tc *typeChecker) rootKey(e *ast.Expr) (string, bool) {
	for e != nil {
		switch e.Kind {
		case ast.ExprField, ast.ExprIndex, ast.ExprRange, ast.ExprDeref, ast.ExprCurrent, ast.ExprAddr:
			e = e.X
			continue
		case ast.ExprIdent:
			name := symbols.Normalize(e.Text)
			if e.Qualifier == "" {
				if id, ok := tc.lookupLocal(name); ok {
					return "L" + strconv.FormatUint(uint64(id), 10), true
				}
			}
			gids, ok := tc.tab.LookupGlobals(tc.unit, e.Qualifier, name)
			if ok && len(gids) == 1 {
				return "G" + strconv.FormatUint(uint64(gids[0]), 10), true
			}
		}
		return "", false
	}
	return "", false
}
