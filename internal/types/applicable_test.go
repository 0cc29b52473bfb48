package types

import "testing"

func TestApplicableSubstitutionSoundness(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	list := in.NewTemplate(Template{Name: "List", Unit: 1, Generics: []string{"T"}})
	T, K := in.Generic("T"), in.Generic("K")

	generics := []TypeID{
		T,
		in.Pointer(T),
		in.Struct(list, []TypeID{T}),
		in.Fn(K, []TypeID{T, in.Reference(T)}),
		in.Struct(list, []TypeID{in.Union(T, K)}),
	}
	concretes := []TypeID{
		b.Int,
		in.Pointer(b.Str),
		in.Struct(list, []TypeID{b.F32}),
		in.Fn(b.Bool, []TypeID{b.Char, in.Reference(b.Char)}),
		in.Struct(list, []TypeID{in.Union(b.Int, b.Void)}),
	}
	for i := range generics {
		for _, c := range concretes {
			m := Subst{}
			if !in.Applicable(c, generics[i], true, m) {
				continue
			}
			if got := in.Apply(generics[i], m); got != c {
				t.Fatalf("apply(%s, %v) = %s, want %s", in.Format(generics[i]), m, in.Format(got), in.Format(c))
			}
		}
		m := Subst{}
		if !in.Applicable(concretes[i], generics[i], true, m) {
			t.Fatalf("%s should unify with %s", in.Format(concretes[i]), in.Format(generics[i]))
		}
	}
}

func TestHeaderBindingMustAgree(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	T := in.Generic("T")
	m := Subst{}
	if !in.Applicable(b.Int, T, true, m) {
		t.Fatalf("first occurrence must bind")
	}
	if in.Applicable(b.Str, T, true, m) {
		t.Fatalf("second occurrence must agree with the binding")
	}
	if !in.Applicable(b.AmbiguousInt, T, true, m) {
		t.Fatalf("untyped int literal fits the int binding")
	}
}

func TestAmbiguousBindingUpgrades(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	T := in.Generic("T")
	m := Subst{}
	in.Applicable(b.AmbiguousInt, T, true, m)
	if !in.Applicable(b.F32, T, true, m) {
		t.Fatalf("concrete numeric should upgrade the literal binding")
	}
	if m["T"] != b.F32 {
		t.Fatalf("T = %s, want f32", in.Format(m["T"]))
	}
	m = Subst{}
	in.Applicable(b.AmbiguousFloat, T, true, m)
	if in.Applicable(b.Int, T, true, m) {
		t.Fatalf("float literal must not become int")
	}
}

func TestLiteralApplicability(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if !in.Applicable(b.AmbiguousInt, b.U8, false, nil) || !in.Applicable(b.AmbiguousInt, b.F64, false, nil) {
		t.Fatalf("int literal fits every numeric")
	}
	if in.Applicable(b.AmbiguousFloat, b.Int, false, nil) {
		t.Fatalf("float literal does not fit int")
	}
	if in.Applicable(b.AmbiguousInt, b.Str, false, nil) {
		t.Fatalf("literal does not fit str")
	}
}

func TestUnionInjection(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	u := in.Union(b.Int, b.Void)
	if !in.Applicable(b.Int, u, false, nil) || !in.Applicable(b.AmbiguousInt, u, false, nil) {
		t.Fatalf("arm types inject into the union")
	}
	if in.Applicable(b.Str, u, false, nil) {
		t.Fatalf("str is not an arm")
	}
	if in.Applicable(in.Pointer(b.Int), in.Pointer(u), false, nil) {
		t.Fatalf("injection is not allowed behind a pointer")
	}
	m := Subst{}
	if !in.Applicable(b.Str, in.Union(in.Generic("T"), b.Void), true, m) || m["T"] != b.Str {
		t.Fatalf("injection should bind T in header mode")
	}
}

func TestApplyIsSimultaneous(t *testing.T) {
	in := NewInterner()
	T, K := in.Generic("T"), in.Generic("K")
	fn := in.Fn(T, []TypeID{K})
	got := in.Apply(fn, Subst{"T": K, "K": T})
	if got != in.Fn(K, []TypeID{T}) {
		t.Fatalf("swap failed: %s", in.Format(got))
	}
	if !in.IsGeneric(fn) || in.IsGeneric(in.Builtins().Int) {
		t.Fatalf("IsGeneric is off")
	}
}

func TestSettleAmbiguous(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	p := in.Pointer(b.AmbiguousInt)
	if got := in.DefaultAmbiguous(p); got != in.Pointer(b.Int) {
		t.Fatalf("default = %s", in.Format(got))
	}
	if got := in.SettleAmbiguous(b.AmbiguousInt, b.F32); got != b.F32 {
		t.Fatalf("settle = %s", in.Format(got))
	}
	if got := in.SettleAmbiguous(b.AmbiguousFloat, b.I32); got != b.F64 {
		t.Fatalf("float literal cannot settle to i32, got %s", in.Format(got))
	}
}
