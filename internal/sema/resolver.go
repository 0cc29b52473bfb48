package sema

import (
	"fmt"
	"strings"

	"kestrel/internal/diag"
	"kestrel/internal/source"
	"kestrel/internal/symbols"
	"kestrel/internal/types"
)

// maxDeclParams bounds decl parameter lists; the supplied-argument mask has
// one bit per parameter.
const maxDeclParams = 64

// Arg is a call argument as seen by overload resolution. An argument whose
// Type is NoTypeID could not be typed without context and matches any
// parameter.
type Arg struct {
	Name string
	Type types.TypeID
}

// CallSite describes a plain call to resolve.
type CallSite struct {
	Unit      symbols.UnitID
	Qualifier string
	Name      string
	Args      []Arg
	// Want is the type expected of the call's result, NoTypeID if unknown.
	// It binds generics the arguments left open and rules out candidates
	// whose bound result cannot be offered as Want.
	Want types.TypeID
	Span source.Span
}

// Match is a callee picked by resolution.
type Match struct {
	Fn    symbols.FnID
	Subst types.Subst
	// Params and Return are the declared types with the callee's generics
	// replaced by their bindings; Sig combines them.
	Params []types.TypeID
	Return types.TypeID
	Sig    types.TypeID
	// Slots maps each parameter to the argument supplying it, -1 when the
	// parameter takes its default.
	Slots []int
	Mask  uint64
}

// Supplied reports whether parameter i received an argument.
func (m *Match) Supplied(i int) bool {
	return i < len(m.Slots) && m.Slots[i] >= 0
}

// Resolver implements plain overload resolution and trait implementation
// lookup over a built symbol table.
type Resolver struct {
	tab *symbols.Table
	in  *types.Interner
}

// NewResolver creates a resolver over tab.
func NewResolver(tab *symbols.Table) *Resolver {
	return &Resolver{tab: tab, in: tab.Types}
}

// ResolveFn picks the unique callable overload of site.Name visible from
// site.Unit. When several apply and exactly one of them is not generic, that
// one wins.
func (r *Resolver) ResolveFn(site CallSite, rep diag.Reporter) (Match, bool) {
	ids, ok := r.tab.LookupFns(site.Unit, site.Qualifier, site.Name)
	if !ok {
		report(rep, diag.SemaUnknownUnit, site.Span, "unknown unit or alias %s", site.Qualifier)
		return Match{}, false
	}
	var (
		named   []symbols.FnID
		matches []Match
	)
	for _, id := range ids {
		fn := r.tab.Fn(id)
		if !fn.Mode.Callable() {
			continue
		}
		named = append(named, id)
		if m, ok := r.match(id, site.Args, site.Want); ok {
			matches = append(matches, m)
		}
	}
	name := qualifiedName(site.Qualifier, site.Name)
	switch len(matches) {
	case 1:
		return matches[0], true
	case 0:
		if len(named) == 0 {
			report(rep, diag.SemaUnknownFunction, site.Span, "unknown function %s", name)
			return Match{}, false
		}
		if rep != nil {
			diag.ReportError(rep, diag.SemaWrongArgumentTypes, site.Span,
				fmt.Sprintf("no overload of %s accepts (%s)", name, r.formatArgs(site.Args))).
				WithNotes(site.Span, r.candidateNotes(named)).
				Emit()
		}
		return Match{}, false
	}

	var concrete []Match
	for _, m := range matches {
		if !r.tab.Fn(m.Fn).Generic {
			concrete = append(concrete, m)
		}
	}
	switch {
	case len(concrete) == 1:
		return concrete[0], true
	case len(concrete) > 1:
		if m, ok := r.preferDefaults(concrete, site.Args); ok {
			return m, true
		}
	}
	if rep != nil {
		ids := make([]symbols.FnID, len(matches))
		for i, m := range matches {
			ids[i] = m.Fn
		}
		diag.ReportError(rep, diag.SemaAmbiguousFunction, site.Span,
			fmt.Sprintf("call of %s(%s) is ambiguous", name, r.formatArgs(site.Args))).
			WithNotes(site.Span, r.candidateNotes(ids)).
			Emit()
	}
	return Match{}, false
}

// ResolveImpl finds the implementation of a compiler-synthesized operation
// among the dispatchable functions of every unit. A single concrete match
// wins over any number of generic ones; ties within either group are
// ambiguous.
func (r *Resolver) ResolveImpl(op string, args []types.TypeID, want types.TypeID, span source.Span, rep diag.Reporter) (Match, bool) {
	callArgs := make([]Arg, len(args))
	for i, a := range args {
		callArgs[i] = Arg{Type: a}
	}
	var concrete, generic []Match
	for _, id := range r.tab.Impls.Candidates(op) {
		m, ok := r.match(id, callArgs, want)
		if !ok {
			continue
		}
		if r.tab.Fn(id).Generic {
			generic = append(generic, m)
		} else {
			concrete = append(concrete, m)
		}
	}
	var ambiguous []Match
	switch {
	case len(concrete) == 1:
		return concrete[0], true
	case len(concrete) > 1:
		ambiguous = concrete
	case len(generic) == 1:
		return generic[0], true
	case len(generic) > 1:
		ambiguous = generic
	default:
		report(rep, diag.SemaUnknownImpl, span, "no implementation of %s for (%s)", op, r.formatArgs(callArgs))
		return Match{}, false
	}
	if rep != nil {
		ids := make([]symbols.FnID, len(ambiguous))
		for i, m := range ambiguous {
			ids[i] = m.Fn
		}
		diag.ReportError(rep, diag.SemaAmbiguousImpl, span,
			fmt.Sprintf("implementation of %s for (%s) is ambiguous", op, r.formatArgs(callArgs))).
			WithNotes(span, r.candidateNotes(ids)).
			Emit()
	}
	return Match{}, false
}

// match tests one candidate against the call's arguments.
func (r *Resolver) match(id symbols.FnID, args []Arg, want types.TypeID) (Match, bool) {
	fn := r.tab.Fn(id)
	slots, ok := bindSlots(fn, args)
	if !ok {
		return Match{}, false
	}
	in := r.in
	m := make(types.Subst)
	for i, s := range slots {
		if s < 0 || args[s].Type == types.NoTypeID {
			continue
		}
		at, pt := args[s].Type, fn.Params[i].Type
		trial := m.Clone()
		if in.Applicable(at, pt, true, trial) {
			m = trial
			continue
		}
		// a value may be lent to a reference parameter
		elem, isRef := in.Elem(pt)
		if !isRef || in.Kind(pt) != types.KindReference || in.Kind(at) == types.KindReference {
			return Match{}, false
		}
		trial = m.Clone()
		if !in.Applicable(at, elem, true, trial) {
			return Match{}, false
		}
		m = trial
	}
	if want != types.NoTypeID {
		if r.hasUnbound(fn, m) {
			trial := m.Clone()
			if in.Applicable(want, fn.Return, true, trial) {
				m = trial
			}
		}
		if !r.hasUnbound(fn, m) && !r.returnFits(in.Apply(fn.Return, m), want) {
			return Match{}, false
		}
	}

	out := Match{Fn: id, Subst: m, Slots: slots}
	out.Params = make([]types.TypeID, len(fn.Params))
	for i := range fn.Params {
		out.Params[i] = in.Apply(fn.Params[i].Type, m)
		if slots[i] >= 0 {
			out.Mask |= 1 << uint(i)
		}
	}
	out.Return = in.Apply(fn.Return, m)
	out.Sig = in.Fn(out.Return, out.Params)
	return out, true
}

// returnFits reports whether a bound result may stand where want is
// expected. Untyped literals in either type are settled later and always fit,
// and a void expectation discards the result.
func (r *Resolver) returnFits(ret, want types.TypeID) bool {
	in := r.in
	if in.IsVoid(want) || in.HasAmbiguous(want) || in.HasAmbiguous(ret) || in.IsGeneric(want) {
		return true
	}
	if in.Applicable(ret, want, false, types.Subst{}) {
		return true
	}
	// a value result may be lent where a reference is expected
	elem, ok := in.Elem(want)
	return ok && in.Kind(want) == types.KindReference && in.Applicable(ret, elem, false, types.Subst{})
}

// bindSlots assigns positional arguments in order and named ones by name.
// Named arguments and defaults are only understood by decl functions.
func bindSlots(fn *symbols.Fn, args []Arg) ([]int, bool) {
	decl := fn.Mode.IsDecl()
	if decl && len(fn.Params) > maxDeclParams {
		return nil, false
	}
	slots := make([]int, len(fn.Params))
	for i := range slots {
		slots[i] = -1
	}
	next, sawNamed := 0, false
	for i, a := range args {
		if a.Name == "" {
			if sawNamed || next >= len(slots) {
				return nil, false
			}
			slots[next] = i
			next++
			continue
		}
		if !decl {
			return nil, false
		}
		sawNamed = true
		idx := fn.ParamIndex(symbols.Normalize(a.Name))
		if idx < 0 || slots[idx] >= 0 {
			return nil, false
		}
		slots[idx] = i
	}
	for i, s := range slots {
		if s < 0 && (!decl || fn.Params[i].Default == nil) {
			return nil, false
		}
	}
	return slots, true
}

// hasUnbound reports whether the callee still has generics with no binding.
func (r *Resolver) hasUnbound(fn *symbols.Fn, m types.Subst) bool {
	for _, g := range r.in.GenericNames(fn.Type) {
		if bound, ok := m[g]; !ok || bound == types.NoTypeID {
			return true
		}
	}
	return false
}

// preferDefaults breaks a tie between concrete overloads for calls with
// untyped literal arguments: the overload taking the literals' default types
// wins.
func (r *Resolver) preferDefaults(matches []Match, args []Arg) (Match, bool) {
	literal := false
	var picked []Match
	for _, m := range matches {
		exact := true
		for i, s := range m.Slots {
			if s < 0 {
				continue
			}
			at := args[s].Type
			if !r.in.IsAmbiguous(at) {
				continue
			}
			literal = true
			if m.Params[i] != r.in.DefaultAmbiguous(at) {
				exact = false
				break
			}
		}
		if exact {
			picked = append(picked, m)
		}
	}
	if !literal || len(picked) != 1 {
		return Match{}, false
	}
	return picked[0], true
}

func (r *Resolver) candidateNotes(ids []symbols.FnID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, "candidate "+r.tab.FormatFn(id))
	}
	return out
}

func (r *Resolver) formatArgs(args []Arg) string {
	parts := make([]string, len(args))
	for i, a := range args {
		label := "_"
		if a.Type != types.NoTypeID {
			label = r.in.Format(a.Type)
		}
		if a.Name != "" {
			label = a.Name + ": " + label
		}
		parts[i] = label
	}
	return strings.Join(parts, ", ")
}

func report(rep diag.Reporter, code diag.Code, span source.Span, format string, args ...any) {
	if rep == nil {
		return
	}
	diag.ReportError(rep, code, span, fmt.Sprintf(format, args...)).Emit()
}

func qualifiedName(qualifier, name string) string {
	if qualifier == "" {
		return name
	}
	return qualifier + "." + name
}
