package mono

import (
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/types"
)

// checkConcrete verifies that no generic or untyped literal type and no
// deferred reference survived in an instance. Instances that already
// reported an error are skipped.
func (b *builder) checkConcrete() {
	for _, inst := range b.prog.Funcs {
		if inst.Func == nil || b.broken[inst] {
			continue
		}
		check := func(t types.TypeID) {
			if t != types.NoTypeID && (b.in.IsGeneric(t) || b.in.HasAmbiguous(t)) {
				diag.CompilerError("mono: %s still mentions %s", inst.Name, b.in.Format(t))
			}
		}
		check(inst.Func.Result)
		for _, l := range inst.Func.Locals {
			check(l.Type)
		}
		hir.WalkBlock(inst.Func.Body, nil, func(e *hir.Expr) {
			check(e.Type)
			switch d := e.Data.(type) {
			case hir.CallData:
				check(d.Sig)
				if d.Deferred || d.Instance == "" {
					diag.CompilerError("mono: unresolved call in %s", inst.Name)
				}
			case hir.FnRefData:
				if d.Deferred || d.Instance == "" {
					diag.CompilerError("mono: unresolved reference to %s in %s", d.Name, inst.Name)
				}
			}
		})
	}
}
