package symbols

import (
	"kestrel/internal/ast"
	"kestrel/internal/source"
	"kestrel/internal/types"
)

// Param is a resolved function parameter.
type Param struct {
	Name    string
	Type    types.TypeID
	Default *ast.Expr
	Span    source.Span
}

// Fn is a resolved function signature. Several Fn may share a name; which one
// a call means is decided by overload resolution.
type Fn struct {
	Name    string
	Unit    UnitID
	Mode    ast.FnMode
	Params  []Param
	Return  types.TypeID
	Type    types.TypeID // fn(params) return
	Generic bool
	Decl    *ast.Fn
	Span    source.Span
}

// ParamTypes lists the parameter types in order.
func (f *Fn) ParamTypes() []types.TypeID {
	out := make([]types.TypeID, len(f.Params))
	for i := range f.Params {
		out[i] = f.Params[i].Type
	}
	return out
}

// ParamIndex returns the position of the named parameter.
func (f *Fn) ParamIndex(name string) int {
	for i := range f.Params {
		if f.Params[i].Name == name {
			return i
		}
	}
	return -1
}

// Global is a unit-level variable. Type is NoTypeID until the globals pass
// infers it when no type was written.
type Global struct {
	Name    string
	Unit    UnitID
	Type    types.TypeID
	Mutable bool
	Decl    *ast.Global
	Span    source.Span
}

// Unit is the symbol table of one compilation unit.
type Unit struct {
	ID        UnitID
	Name      string
	File      source.FileID
	Decl      *ast.Unit
	Templates map[string]types.TemplateID
	Fns       map[string][]FnID
	Macros    map[string]FnID
	Globals   map[string]GlobalID
	// Imports are plain imports in declaration order; the core unit is
	// appended when it was not imported explicitly.
	Imports []UnitID
	Aliases map[string]UnitID
	Span    source.Span

	templateOrder []types.TemplateID
}

func newUnit(id UnitID, name string) Unit {
	return Unit{
		ID:        id,
		Name:      name,
		Templates: make(map[string]types.TemplateID),
		Fns:       make(map[string][]FnID),
		Macros:    make(map[string]FnID),
		Globals:   make(map[string]GlobalID),
		Aliases:   make(map[string]UnitID),
	}
}

// TemplateOrder lists the unit's templates in declaration order.
func (u *Unit) TemplateOrder() []types.TemplateID {
	return u.templateOrder
}

// importsPlain reports whether u plainly imports other.
func (u *Unit) importsPlain(other UnitID) bool {
	for _, id := range u.Imports {
		if id == other {
			return true
		}
	}
	return false
}
