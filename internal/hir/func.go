package hir

import (
	"kestrel/internal/source"
	"kestrel/internal/symbols"
	"kestrel/internal/types"
)

// LocalID indexes Func.Locals. NoLocalID is the unused slot 0.
type LocalID uint32

const NoLocalID LocalID = 0

// Local is a parameter or local variable.
type Local struct {
	Name  string
	Type  types.TypeID
	Param bool
	Span  source.Span
}

// Func is a type-checked function body.
type Func struct {
	Sym    symbols.FnID
	Name   string
	Params []LocalID
	Locals []Local
	Result types.TypeID
	Body   *Block
	Span   source.Span
}

// Local returns the local stored under id, or nil.
func (f *Func) Local(id LocalID) *Local {
	if f == nil || id == NoLocalID || int(id) >= len(f.Locals) {
		return nil
	}
	return &f.Locals[id]
}

// Global is a type-checked global initializer.
type Global struct {
	Sym   symbols.GlobalID
	Name  string
	Type  types.TypeID
	Value *Expr
	Span  source.Span
}
