package narrow

import (
	"slices"
	"strings"
)

// Entry holds the variants of one path: all of them, and the subset still
// possible. Both keep declaration order.
type Entry struct {
	Total    []string
	Possible []string
}

// Set maps path keys to entries.
type Set map[string]Entry

// Keys returns the set's keys sorted.
func (s Set) Keys() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// UnionsIntersection combines the constraints of two conditions that both
// hold (&&). A key only one side constrains keeps that side's entry, so the
// result covers the union of the keys.
func UnionsIntersection(a, b Set) Set {
	out := make(Set, len(a)+len(b))
	for k, e := range a {
		out[k] = e
	}
	for k, e := range b {
		if prev, ok := out[k]; ok {
			out[k] = Entry{Total: prev.Total, Possible: intersect(prev.Possible, e.Possible)}
			continue
		}
		out[k] = e
	}
	return out
}

// IntersectingUnion combines the constraints of two conditions of which at
// least one holds (||). Keys constrained by only one side are dropped.
func IntersectingUnion(a, b Set) Set {
	out := make(Set)
	for k, ea := range a {
		eb, ok := b[k]
		if !ok {
			continue
		}
		out[k] = Entry{Total: ea.Total, Possible: union(ea.Total, ea.Possible, eb.Possible)}
	}
	return out
}

// InnerComplement negates every entry against its total variant set.
func InnerComplement(s Set) Set {
	out := make(Set, len(s))
	for k, e := range s {
		var rest []string
		for _, v := range e.Total {
			if !slices.Contains(e.Possible, v) {
				rest = append(rest, v)
			}
		}
		out[k] = Entry{Total: e.Total, Possible: rest}
	}
	return out
}

func intersect(a, b []string) []string {
	var out []string
	for _, v := range a {
		if slices.Contains(b, v) {
			out = append(out, v)
		}
	}
	return out
}

// union keeps the order of total.
func union(total, a, b []string) []string {
	var out []string
	for _, v := range total {
		if slices.Contains(a, v) || slices.Contains(b, v) {
			out = append(out, v)
		}
	}
	return out
}

// Format renders a possibility list the way diagnostics print it: [A, B].
func Format(variants []string) string {
	return "[" + strings.Join(variants, ", ") + "]"
}

// Cond is the narrowing learned when a condition is true. An exact Cond is
// equivalent to its set rather than merely implied by it; only exact
// single-key conditions can be negated soundly.
type Cond struct {
	Set   Set
	Exact bool
}

// None is a condition that teaches nothing.
var None = Cond{}

// Is is the condition "path is variant".
func Is(key string, total []string, variant string) Cond {
	return Cond{
		Set:   Set{key: {Total: total, Possible: []string{variant}}},
		Exact: true,
	}
}

// And combines a && b.
func And(a, b Cond) Cond {
	return Cond{Set: UnionsIntersection(a.Set, b.Set), Exact: a.Exact && b.Exact}
}

// Or combines a || b.
func Or(a, b Cond) Cond {
	exact := a.Exact && b.Exact && len(a.Set) == 1 && len(b.Set) == 1
	if exact {
		for k := range a.Set {
			_, exact = b.Set[k]
		}
	}
	return Cond{Set: IntersectingUnion(a.Set, b.Set), Exact: exact}
}

// Not negates c. Anything but an exact single-key condition negates to None.
func Not(c Cond) Cond {
	if !c.Exact || len(c.Set) != 1 {
		return None
	}
	return Cond{Set: InnerComplement(c.Set), Exact: true}
}
