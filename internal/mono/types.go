package mono

import (
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/types"
)

type visitState uint8

const (
	unvisited visitState = iota
	inProgress
	visited
)

// typeOrder is a DFS over the type graph. Fields and union arms are owning
// edges; pointees, function signatures and type arguments are not. Each
// non-owning edge opens a new segment, so a type met again while in
// progress within its own segment is held by value in a cycle.
type typeOrder struct {
	in      *types.Interner
	state   map[types.TypeID]visitState
	segment map[types.TypeID]int
	next    int
	out     []types.TypeID
}

// orderTypes fills Program.Types in post-order.
func (b *builder) orderTypes() error {
	o := &typeOrder{
		in:      b.in,
		state:   make(map[types.TypeID]visitState),
		segment: make(map[types.TypeID]int),
	}
	for _, t := range b.touchedTypes() {
		if err := o.visit(t, o.fresh()); err != nil {
			return err
		}
	}
	b.prog.Types = o.out
	return nil
}

func (o *typeOrder) fresh() int {
	o.next++
	return o.next
}

func (o *typeOrder) visit(t types.TypeID, seg int) error {
	if t == types.NoTypeID {
		return nil
	}
	switch o.state[t] {
	case visited:
		return nil
	case inProgress:
		if o.segment[t] == seg && o.in.Kind(t) == types.KindStruct {
			tmpl := o.in.TemplateOf(t)
			return diag.Fatal(diag.MonoRecursiveStruct, tmpl.Span, "%s contains itself by value", o.in.Format(t))
		}
		return nil
	}
	o.state[t] = inProgress
	o.segment[t] = seg
	tt := o.in.MustLookup(t)
	switch tt.Kind {
	case types.KindPointer, types.KindReference:
		if err := o.visit(tt.Elem, o.fresh()); err != nil {
			return err
		}
	case types.KindFn:
		if err := o.visit(tt.Elem, o.fresh()); err != nil {
			return err
		}
		for _, p := range tt.Args {
			if err := o.visit(p, o.fresh()); err != nil {
				return err
			}
		}
	case types.KindStruct:
		if o.in.IsUnion(t) {
			for _, arm := range tt.Args {
				if err := o.visit(arm, seg); err != nil {
					return err
				}
			}
			break
		}
		for _, f := range o.in.Fields(t) {
			if err := o.visit(f.Type, seg); err != nil {
				return err
			}
		}
		for _, a := range tt.Args {
			if err := o.visit(a, o.fresh()); err != nil {
				return err
			}
		}
	}
	o.state[t] = visited
	o.out = append(o.out, t)
	return nil
}

// touchedTypes lists every type mentioned by the program, in first-seen
// order.
func (b *builder) touchedTypes() []types.TypeID {
	seen := make(map[types.TypeID]bool)
	var out []types.TypeID
	add := func(t types.TypeID) {
		if t != types.NoTypeID && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, g := range b.prog.Globals {
		add(g.Type)
		eachType(g.Value, add)
	}
	for _, inst := range b.prog.Funcs {
		if inst.Func == nil {
			continue
		}
		add(inst.Key.Type)
		for _, l := range inst.Func.Locals {
			add(l.Type)
		}
		hir.WalkBlock(inst.Func.Body, func(s *hir.Stmt) {
			switch d := s.Data.(type) {
			case hir.LetData:
				add(d.Type)
			case hir.ForData:
				add(d.Elem)
			}
		}, func(e *hir.Expr) {
			add(e.Type)
			if d, ok := e.Data.(hir.CallData); ok {
				add(d.Sig)
			}
		})
	}
	return out
}

func eachType(e *hir.Expr, visit func(types.TypeID)) {
	if e == nil {
		return
	}
	hir.WalkExpr(e, func(x *hir.Expr) {
		visit(x.Type)
		if d, ok := x.Data.(hir.CallData); ok {
			visit(d.Sig)
		}
	})
}
