package sema

import (
	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/symbols"
	"kestrel/internal/types"
)

// structLit checks T{field: value, ...}. A generic template written without
// arguments takes them from the expected type or from the field values.
func (tc *typeChecker) structLit(e *ast.Expr, want types.TypeID) *hir.Expr {
	te := e.Type
	if te == nil {
		tc.report(diag.SemaTypeMismatch, e.Span, "struct literal without a type")
		return tc.invalid(e.Span)
	}
	var (
		ty     types.TypeID
		values map[string]*hir.Expr
	)
	if tid, ok := tc.inferableTemplate(te); ok {
		tmpl := tc.types.Template(tid)
		if tc.types.TemplateOf(want) == tmpl {
			ty = want
		} else {
			ty, values = tc.inferStructArgs(tid, e)
			if ty == types.NoTypeID {
				return tc.invalid(e.Span)
			}
		}
	} else {
		ty = tc.resolveType(te)
		if ty == types.NoTypeID {
			return tc.invalid(e.Span)
		}
	}

	tmpl := tc.types.TemplateOf(ty)
	if tmpl == nil || tmpl.IsEnum || tmpl.Builtin != types.NotBuiltin {
		tc.report(diag.SemaTypeMismatch, e.Span, "%s cannot be built with a struct literal", tc.typeLabel(ty))
		return tc.invalid(e.Span)
	}
	fields := tc.types.Fields(ty)
	inits := make([]*hir.Expr, len(fields))
	failed := false
	for _, a := range e.Args {
		name := symbols.Normalize(a.Name)
		idx := tmpl.FieldIndex(name)
		switch {
		case idx < 0:
			tc.report(diag.SemaExtraField, a.Span, "%s has no field %s", tmpl.Name, name)
			failed = true
			continue
		case inits[idx] != nil:
			tc.report(diag.SemaDuplicateField, a.Span, "field %s is set twice", name)
			failed = true
			continue
		case fields[idx].Vis == types.VisPrivate && tmpl.Unit != tc.unit:
			tc.report(diag.SemaPrivateAccess, a.Span, "field %s of %s is private", name, tmpl.Name)
			failed = true
		}
		v, checked := values[name]
		if !checked {
			v = tc.value(a.Value, fields[idx].Type)
		}
		inits[idx] = tc.coerce(v, fields[idx].Type, a.Span)
	}
	out := make([]hir.StructFieldInit, 0, len(fields))
	for i, f := range fields {
		if inits[i] == nil {
			tc.report(diag.SemaMissingField, e.Span, "missing field %s of %s", f.Name, tmpl.Name)
			failed = true
			continue
		}
		out = append(out, hir.StructFieldInit{Name: f.Name, Value: inits[i], Span: inits[i].Span})
	}
	if failed || !tc.checkEscape(ty, e.Span, "struct literal") {
		return tc.invalid(e.Span)
	}
	return &hir.Expr{Kind: hir.ExprStructLit, Type: ty, Span: e.Span, Data: hir.StructLitData{Fields: out}}
}

// inferableTemplate reports a bare name of a single generic template.
func (tc *typeChecker) inferableTemplate(te *ast.TypeExpr) (types.TemplateID, bool) {
	if te.Kind != ast.TypeName || len(te.Args) > 0 || symbols.IsGenericName(te.Name) {
		return types.NoTemplateID, false
	}
	matches, ok := tc.tab.LookupTemplates(tc.unit, te.Qualifier, te.Name)
	if !ok || len(matches) != 1 {
		return types.NoTemplateID, false
	}
	tmpl := tc.types.Template(matches[0].ID)
	if tmpl == nil || len(tmpl.Generics) == 0 || tmpl.IsEnum {
		return types.NoTemplateID, false
	}
	return matches[0].ID, true
}

// inferStructArgs binds the template's generics from the field values. The
// checked values are returned for reuse.
func (tc *typeChecker) inferStructArgs(tid types.TemplateID, e *ast.Expr) (types.TypeID, map[string]*hir.Expr) {
	tmpl := tc.types.Template(tid)
	m := types.Subst{}
	values := make(map[string]*hir.Expr, len(e.Args))
	for _, a := range e.Args {
		name := symbols.Normalize(a.Name)
		idx := tmpl.FieldIndex(name)
		if idx < 0 {
			continue
		}
		if _, dup := values[name]; dup {
			continue
		}
		v := tc.value(a.Value, types.NoTypeID)
		values[name] = v
		if v.Type == types.NoTypeID {
			continue
		}
		if !tc.types.Applicable(v.Type, tmpl.Fields[idx].Type, true, m) {
			tc.report(diag.SemaTypeMismatch, a.Span, "field %s of %s cannot hold %s",
				name, tmpl.Name, tc.typeLabel(v.Type))
			return types.NoTypeID, nil
		}
	}
	args := make([]types.TypeID, len(tmpl.Generics))
	for i, g := range tmpl.Generics {
		bound, ok := m[g]
		if !ok || bound == types.NoTypeID {
			tc.report(diag.SemaTypeMismatch, e.Span, "cannot infer %s of %s; write the type arguments", g, tmpl.Name)
			return types.NoTypeID, nil
		}
		args[i] = bound
	}
	return tc.types.Struct(tid, args), values
}
