package symbols

import (
	"fmt"
	"slices"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/source"
	"kestrel/internal/types"
)

// Options configure the table build.
type Options struct {
	// Core names the unit implicitly imported by every other unit.
	Core     string
	Reporter diag.Reporter
}

// Build turns the parsed units into symbol tables.
//
// Templates of all units are registered first; imports are wired next, and
// only then are field types and function signatures resolved, since
// resolution is cross-unit. An import naming an unknown unit, or two units
// sharing a name, abort the build with a *diag.FatalError.
func Build(forest *ast.Forest, in *types.Interner, opts Options) (*Table, error) {
	t := NewTable(in)
	b := &builder{t: t, rep: opts.Reporter, templates: make(map[*ast.Struct]types.TemplateID)}
	if forest == nil {
		return t, nil
	}
	for _, u := range forest.Units {
		if err := b.declareUnit(u); err != nil {
			return nil, err
		}
	}
	if opts.Core != "" {
		if id, ok := t.byName[Normalize(opts.Core)]; ok {
			t.Core = id
		}
	}
	for _, id := range t.Units() {
		if err := b.wireImports(id); err != nil {
			return nil, err
		}
	}
	for _, id := range t.Units() {
		b.resolveFields(id)
	}
	for _, id := range t.Units() {
		b.declareFns(id)
		b.declareGlobals(id)
	}
	return t, nil
}

type builder struct {
	t         *Table
	rep       diag.Reporter
	templates map[*ast.Struct]types.TemplateID
}

func (b *builder) errorf(code diag.Code, span source.Span, format string, args ...any) *diag.ReportBuilder {
	return diag.ReportError(b.rep, code, span, fmt.Sprintf(format, args...))
}

func (b *builder) declareUnit(decl *ast.Unit) error {
	if decl == nil {
		return nil
	}
	name := Normalize(decl.Name)
	if prev, dup := b.t.byName[name]; dup {
		return diag.Fatal(diag.ProjDuplicateUnit, decl.Span,
			"unit %s is declared twice (first at %s)", name, b.t.Unit(prev).Span)
	}
	id := b.t.addUnit(name, decl.Span)
	u := b.t.Unit(id)
	u.Decl = decl
	u.File = decl.File

	for _, s := range decl.Structs {
		b.declareTemplate(u, s)
	}
	return nil
}

func (b *builder) declareTemplate(u *Unit, s *ast.Struct) {
	name := Normalize(s.Name)
	if IsGenericName(name) {
		b.errorf(diag.SemaGenericNameReserved, s.Span, "%s: single-letter names are reserved for generics", name).Emit()
		return
	}
	if _, dup := u.Templates[name]; dup {
		b.errorf(diag.SemaDuplicateSymbol, s.Span, "type %s is already declared in unit %s", name, u.Name).Emit()
		return
	}
	generics := make([]string, 0, len(s.Generics))
	for _, g := range s.Generics {
		g = Normalize(g)
		if !IsGenericName(g) {
			b.errorf(diag.SemaGenericNameReserved, s.Span, "generic parameter %s of %s must be a single uppercase letter", g, name).Emit()
			continue
		}
		if slices.Contains(generics, g) {
			b.errorf(diag.SemaDuplicateSymbol, s.Span, "generic parameter %s of %s is repeated", g, name).Emit()
			continue
		}
		generics = append(generics, g)
	}
	id := b.t.Types.NewTemplate(types.Template{
		Name:     name,
		Unit:     u.ID,
		Generics: generics,
		IsEnum:   s.IsEnum,
		Span:     s.Span,
	})
	u.Templates[name] = id
	u.templateOrder = append(u.templateOrder, id)
	b.templates[s] = id
}

func (b *builder) wireImports(id UnitID) error {
	u := b.t.Unit(id)
	explicitCore := false
	for _, use := range u.Decl.Uses {
		target, ok := b.t.byName[Normalize(use.Unit)]
		if !ok {
			return diag.Fatal(diag.ProjUnknownUnit, use.Span, "unit %s imports unknown unit %s", u.Name, use.Unit)
		}
		if use.Alias == "" {
			if target == id || u.importsPlain(target) {
				b.redundantImport(u, use, target == id)
				continue
			}
			if target == b.t.Core {
				explicitCore = true
			}
			u.Imports = append(u.Imports, target)
			continue
		}
		alias := Normalize(use.Alias)
		if prev, dup := u.Aliases[alias]; dup && prev != target {
			b.errorf(diag.SemaDuplicateSymbol, use.Span, "alias %s already names unit %s", alias, b.t.UnitName(prev)).Emit()
			continue
		}
		u.Aliases[alias] = target
	}
	if b.t.Core != BuiltinUnit && b.t.Core != id && !explicitCore {
		u.Imports = append(u.Imports, b.t.Core)
	}
	return nil
}

// redundantImport warns about a plain import that adds nothing and offers
// to delete it.
func (b *builder) redundantImport(u *Unit, use *ast.Use, self bool) {
	msg := fmt.Sprintf("unit %s imports %s more than once", u.Name, Normalize(use.Unit))
	if self {
		msg = fmt.Sprintf("unit %s imports itself", u.Name)
	}
	diag.ReportWarning(b.rep, diag.ProjRedundantImport, use.Span, msg).
		WithFix("remove the import", diag.FixEdit{Span: use.Span}).
		Emit()
}

func (b *builder) resolveFields(id UnitID) {
	u := b.t.Unit(id)
	for _, s := range u.Decl.Structs {
		tid, ok := b.templates[s]
		if !ok {
			continue
		}
		tmpl := b.t.Types.Template(tid)
		dupCode, what := diag.SemaDuplicateField, "field"
		if s.IsEnum {
			dupCode, what = diag.SemaDuplicateVariant, "variant"
		}
		fields := make([]types.Field, 0, len(s.Fields))
		seen := make(map[string]struct{}, len(s.Fields))
		for _, f := range s.Fields {
			fname := Normalize(f.Name)
			if _, dup := seen[fname]; dup {
				b.errorf(dupCode, f.Span, "%s %s of %s is declared twice", what, fname, tmpl.Name).Emit()
				continue
			}
			seen[fname] = struct{}{}
			ft := b.t.Types.Builtins().Void
			if f.Type != nil {
				ft = b.t.ResolveType(f.Type, id, b.rep)
			}
			if ft == types.NoTypeID {
				continue
			}
			if b.t.Types.HasReference(ft) {
				b.errorf(diag.SemaReferenceNotParam, f.Span, "field %s: references are only allowed as parameters", fname).Emit()
				continue
			}
			for _, g := range b.t.Types.GenericNames(ft) {
				if !slices.Contains(tmpl.Generics, g) {
					b.errorf(diag.SemaUnknownType, f.Span, "generic %s is not a parameter of %s", g, tmpl.Name).Emit()
				}
			}
			fields = append(fields, types.Field{Name: fname, Type: ft, Vis: visibility(f.Visibility)})
		}
		b.t.Types.SetFields(tid, fields)
	}
}

func visibility(v ast.Visibility) types.Visibility {
	switch v {
	case ast.VisGet:
		return types.VisGetOnly
	case ast.VisPrivate:
		return types.VisPrivate
	default:
		return types.VisPublic
	}
}

func (b *builder) declareFns(id UnitID) {
	u := b.t.Unit(id)
	for _, decl := range u.Decl.Fns {
		fn, ok := b.signature(u, decl)
		if !ok {
			continue
		}
		if fn.Mode == ast.ModeMacro {
			if _, dup := u.Macros[fn.Name]; dup {
				b.errorf(diag.SemaDuplicateSymbol, decl.Span, "macro %s is already declared in unit %s", fn.Name, u.Name).Emit()
				continue
			}
			u.Macros[fn.Name] = b.t.Fns.New(fn)
			continue
		}
		if b.duplicateOverload(u, fn) {
			b.errorf(diag.SemaDuplicateSymbol, decl.Span, "%s is already declared in unit %s with the same signature", fn.Name, u.Name).Emit()
			continue
		}
		fid := b.t.Fns.New(fn)
		u.Fns[fn.Name] = append(u.Fns[fn.Name], fid)
		if fn.Mode.Dispatchable() {
			b.t.Impls.add(fn.Name, fid)
		}
	}
}

func (b *builder) duplicateOverload(u *Unit, fn *Fn) bool {
	for _, other := range u.Fns[fn.Name] {
		prev := b.t.Fn(other)
		if prev.Type == fn.Type {
			return true
		}
	}
	return false
}

// signature resolves parameter and return types of a function declaration.
func (b *builder) signature(u *Unit, decl *ast.Fn) (*Fn, bool) {
	fn := &Fn{
		Name: Normalize(decl.Name),
		Unit: u.ID,
		Mode: decl.Mode,
		Decl: decl,
		Span: decl.Span,
	}
	ok := true
	in := b.t.Types
	for _, p := range decl.Params {
		var pt types.TypeID
		switch {
		case p.Type != nil:
			pt = b.t.ResolveType(p.Type, u.ID, b.rep)
		case decl.Mode == ast.ModeMacro:
			// untyped macro parameters accept anything
			pt = in.Generic(genericFor(len(fn.Params)))
		default:
			b.errorf(diag.SemaUnknownType, p.Span, "parameter %s of %s has no type", p.Name, fn.Name).Emit()
		}
		if pt == types.NoTypeID {
			ok = false
			continue
		}
		inner := pt
		if in.Kind(pt) == types.KindReference {
			inner, _ = in.Elem(pt)
		}
		if in.HasReference(inner) {
			b.errorf(diag.SemaReferenceNotParam, p.Span, "parameter %s: references cannot be nested", p.Name).Emit()
		}
		fn.Params = append(fn.Params, Param{Name: Normalize(p.Name), Type: pt, Default: p.Default, Span: p.Span})
	}
	fn.Return = b.t.ResolveType(decl.Return, u.ID, b.rep)
	if fn.Return == types.NoTypeID {
		ok = false
	} else if in.HasReference(fn.Return) {
		b.errorf(diag.SemaReferenceNotParam, decl.Span, "%s: references are only allowed as parameters", fn.Name).Emit()
	}
	if !ok {
		return nil, false
	}
	fn.Type = in.Fn(fn.Return, fn.ParamTypes())
	fn.Generic = in.IsGeneric(fn.Type)

	switch {
	case decl.Mode == ast.ModeMacro:
		if len(decl.Body) != 1 || decl.Body[0].Kind != ast.StmtReturn || decl.Body[0].Value == nil {
			b.errorf(diag.SemaMissingReturn, decl.Span, "macro %s must consist of a single return expression", fn.Name).Emit()
			return nil, false
		}
	case decl.Mode.IsDecl():
		if decl.Target == "" {
			b.errorf(diag.SemaUnknownFunction, decl.Span, "%s %s has no target", decl.Mode, fn.Name).Emit()
			return nil, false
		}
	}
	return fn, true
}

// genericFor names the generic standing for the i-th untyped macro parameter.
func genericFor(i int) string {
	return string(rune('A' + i%26))
}

func (b *builder) declareGlobals(id UnitID) {
	u := b.t.Unit(id)
	for _, decl := range u.Decl.Globals {
		name := Normalize(decl.Name)
		if _, dup := u.Globals[name]; dup {
			b.errorf(diag.SemaDuplicateSymbol, decl.Span, "global %s is already declared in unit %s", name, u.Name).Emit()
			continue
		}
		g := &Global{Name: name, Unit: id, Mutable: decl.Mutable, Decl: decl, Span: decl.Span}
		if decl.Type != nil {
			g.Type = b.t.ResolveType(decl.Type, id, b.rep)
			if g.Type != types.NoTypeID && b.t.Types.HasReference(g.Type) {
				b.errorf(diag.SemaReferenceNotParam, decl.Span, "global %s: references are only allowed as parameters", name).Emit()
				g.Type = types.NoTypeID
			}
		}
		u.Globals[name] = b.t.Globals.New(g)
	}
}
