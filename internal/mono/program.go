package mono

import (
	"kestrel/internal/ast"
	"kestrel/internal/hir"
	"kestrel/internal/symbols"
	"kestrel/internal/types"
)

// Key identifies one instantiation: the template function, the concrete
// function type it is used at, and for decl wrappers the supplied-argument
// mask.
type Key struct {
	Fn   symbols.FnID
	Type types.TypeID
	Mode ast.FnMode
	Mask uint64
}

// Instance is a concrete function produced from a template.
type Instance struct {
	Key   Key
	Name  string
	Subst types.Subst
	// Wrapper marks synthesized decl forwarders.
	Wrapper bool
	Func    *hir.Func
}

// Program is what the backend consumes.
type Program struct {
	Entry *Instance
	// Funcs are in instantiation order, Entry first.
	Funcs []*Instance
	// Types lists every concrete type the functions touch; each comes after
	// the types it holds by value.
	Types   []types.TypeID
	Globals []*hir.Global
}

// Lookup returns the instance produced for key.
func (p *Program) Lookup(key Key) (*Instance, bool) {
	for _, inst := range p.Funcs {
		if inst.Key == key {
			return inst, true
		}
	}
	return nil, false
}

// ByName returns the instance with the given mangled name.
func (p *Program) ByName(name string) (*Instance, bool) {
	for _, inst := range p.Funcs {
		if inst.Name == name {
			return inst, true
		}
	}
	return nil, false
}
