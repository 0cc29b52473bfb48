package symbols

import "slices"

// ImplRegistry indexes dispatchable functions (impl, declImpl, trait) of all
// units by operation name. Candidate order is unit order, then declaration
// order; resolution does not depend on it except for reporting.
type ImplRegistry struct {
	byOp map[string][]FnID
}

func newImplRegistry() *ImplRegistry {
	return &ImplRegistry{byOp: make(map[string][]FnID)}
}

func (r *ImplRegistry) add(op string, id FnID) {
	r.byOp[op] = append(r.byOp[op], id)
}

// Candidates returns every implementation registered for op.
func (r *ImplRegistry) Candidates(op string) []FnID {
	if r == nil {
		return nil
	}
	return r.byOp[Normalize(op)]
}

// Ops lists registered operation names, sorted.
func (r *ImplRegistry) Ops() []string {
	out := make([]string, 0, len(r.byOp))
	for op := range r.byOp {
		out = append(out, op)
	}
	slices.Sort(out)
	return out
}
