package narrow

import (
	"slices"
	"testing"
)

var abc = []string{"A", "B", "C"}

func TestSetAlgebra(t *testing.T) {
	x := Set{"x": {Total: abc, Possible: []string{"A", "B"}}}
	y := Set{"x": {Total: abc, Possible: []string{"B", "C"}}, "y": {Total: abc, Possible: []string{"A"}}}

	and := UnionsIntersection(x, y)
	if got := and["x"].Possible; !slices.Equal(got, []string{"B"}) {
		t.Fatalf("&& on x = %v", got)
	}
	if _, ok := and["y"]; !ok {
		t.Fatalf("&& keeps keys constrained by one side")
	}

	or := IntersectingUnion(x, y)
	if got := or["x"].Possible; !slices.Equal(got, abc) {
		t.Fatalf("|| on x = %v", got)
	}
	if _, ok := or["y"]; ok {
		t.Fatalf("|| drops keys constrained by one side")
	}

	if got := InnerComplement(x)["x"].Possible; !slices.Equal(got, []string{"C"}) {
		t.Fatalf("complement = %v", got)
	}
}

func TestNotIsOnlySoundForExactSingleKey(t *testing.T) {
	isA := Is("x", abc, "A")
	if got := Not(isA).Set["x"].Possible; !slices.Equal(got, []string{"B", "C"}) {
		t.Fatalf("not(x is A) = %v", got)
	}
	both := And(isA, Is("y", abc, "B"))
	if len(Not(both).Set) != 0 {
		t.Fatalf("negating a two-key conjunction must teach nothing")
	}
	loose := And(isA, None)
	if len(Not(loose).Set) != 0 {
		t.Fatalf("negating an inexact condition must teach nothing")
	}
	either := Or(isA, Is("x", abc, "B"))
	if !either.Exact {
		t.Fatalf("x is A || x is B is exact")
	}
	if got := Not(either).Set["x"].Possible; !slices.Equal(got, []string{"C"}) {
		t.Fatalf("not(x is A || x is B) = %v", got)
	}
}

func TestTrackerFrames(t *testing.T) {
	tr := NewTracker()
	tr.Push()
	tr.Apply(Is("x", abc, "A").Set)
	if got := tr.Possible("x", abc); !slices.Equal(got, []string{"A"}) {
		t.Fatalf("inside branch = %v", got)
	}
	tr.Pop()
	if got := tr.Possible("x", abc); !slices.Equal(got, abc) {
		t.Fatalf("narrowing must not leak out of the branch, got %v", got)
	}
}

func TestClearInsideBranchReachesParent(t *testing.T) {
	tr := NewTracker()
	tr.Install("x", abc, "B")
	tr.Apply(Is("x.next", abc, "A").Set)
	tr.Push()
	tr.Clear("x")
	if got := tr.Possible("x.next", abc); !slices.Equal(got, abc) {
		t.Fatalf("clearing x forgets x.next, got %v", got)
	}
	tr.Pop()
	if got := tr.Possible("x", abc); !slices.Equal(got, abc) {
		t.Fatalf("assignment in a branch invalidates the outer narrowing, got %v", got)
	}
}

func TestCoversRespectsSegments(t *testing.T) {
	if covers("x", "xy") {
		t.Fatalf("x does not cover xy")
	}
	if !covers("x", "x[2]") || !covers("x", "x.f") {
		t.Fatalf("x covers its sub-paths")
	}
}
