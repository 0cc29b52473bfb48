package symbols

import (
	"fmt"
	"strings"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/types"
)

// ResolveType turns a syntactic type into a semantic one, searching the
// unit's own table, its imports and the builtin unit according to the
// qualifier. A nil reporter resolves silently; feasibility probes rely on
// that to avoid duplicate diagnostics. Failures yield NoTypeID.
func (t *Table) ResolveType(te *ast.TypeExpr, unit UnitID, rep diag.Reporter) types.TypeID {
	if te == nil {
		return t.Types.Builtins().Void
	}
	switch te.Kind {
	case ast.TypePointer:
		elem := t.ResolveType(te.Elem, unit, rep)
		if elem == types.NoTypeID {
			return types.NoTypeID
		}
		return t.Types.Pointer(elem)
	case ast.TypeReference:
		elem := t.ResolveType(te.Elem, unit, rep)
		if elem == types.NoTypeID {
			return types.NoTypeID
		}
		return t.Types.Reference(elem)
	case ast.TypeUnion:
		left := t.ResolveType(te.Left, unit, rep)
		right := t.ResolveType(te.Right, unit, rep)
		if left == types.NoTypeID || right == types.NoTypeID {
			return types.NoTypeID
		}
		return t.Types.Union(left, right)
	case ast.TypeFn:
		ret := t.ResolveType(te.Return, unit, rep)
		params := make([]types.TypeID, len(te.Params))
		failed := ret == types.NoTypeID
		for i, p := range te.Params {
			params[i] = t.ResolveType(p, unit, rep)
			failed = failed || params[i] == types.NoTypeID
		}
		if failed {
			return types.NoTypeID
		}
		return t.Types.Fn(ret, params)
	default:
		return t.resolveNamed(te, unit, rep)
	}
}

func (t *Table) resolveNamed(te *ast.TypeExpr, unit UnitID, rep diag.Reporter) types.TypeID {
	name := Normalize(te.Name)
	if te.Qualifier == "" && IsGenericName(name) {
		if len(te.Args) > 0 {
			report(rep, diag.SemaGenericArgCount, te, "generic %s takes no arguments", name)
			return types.NoTypeID
		}
		return t.Types.Generic(name)
	}

	matches, ok := t.LookupTemplates(unit, te.Qualifier, name)
	if !ok {
		reportUnknownUnit(rep, te.Span, te.Qualifier)
		return types.NoTypeID
	}
	switch len(matches) {
	case 0:
		report(rep, diag.SemaUnknownType, te, "unknown type %s", qualified(te.Qualifier, name))
		return types.NoTypeID
	case 1:
	default:
		if rep != nil {
			notes := make([]string, 0, len(matches))
			for _, m := range matches {
				notes = append(notes, fmt.Sprintf("candidate %s.%s", t.UnitName(m.Unit), name))
			}
			diag.ReportError(rep, diag.SemaAmbiguousType, te.Span, "ambiguous type "+name).
				WithNotes(te.Span, notes).
				Emit()
		}
		return types.NoTypeID
	}

	tmpl := t.Types.Template(matches[0].ID)
	if len(te.Args) != len(tmpl.Generics) {
		report(rep, diag.SemaGenericArgCount, te, "%s expects %d generic arguments, got %d",
			tmpl.Name, len(tmpl.Generics), len(te.Args))
		return types.NoTypeID
	}
	args := make([]types.TypeID, len(te.Args))
	for i, a := range te.Args {
		args[i] = t.ResolveType(a, unit, rep)
		if args[i] == types.NoTypeID {
			return types.NoTypeID
		}
	}
	return t.Types.Struct(matches[0].ID, args)
}

func report(rep diag.Reporter, code diag.Code, te *ast.TypeExpr, format string, args ...any) {
	if rep == nil {
		return
	}
	diag.ReportError(rep, code, te.Span, fmt.Sprintf(format, args...)).Emit()
}

func qualified(qualifier, name string) string {
	if qualifier == "" {
		return name
	}
	return strings.Join([]string{qualifier, name}, ".")
}
