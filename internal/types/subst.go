package types

import "slices"

// Subst maps generic names to their bindings.
type Subst map[string]TypeID

// Clone copies the map so a failed trial does not leak bindings.
func (m Subst) Clone() Subst {
	out := make(Subst, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Names returns bound names in sorted order.
func (m Subst) Names() []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Apply substitutes bound generic names recursively; unbound names are left
// unchanged. Substitution is simultaneous, so {T: K, K: T} swaps.
func (in *Interner) Apply(id TypeID, m Subst) TypeID {
	if len(m) == 0 {
		return id
	}
	return in.mapType(id, func(tt Type) (TypeID, bool) {
		if tt.Kind != KindGeneric {
			return NoTypeID, false
		}
		if bound, ok := m[tt.Name]; ok && bound != NoTypeID {
			return bound, true
		}
		return NoTypeID, false
	})
}

// DefaultAmbiguous turns untyped literal types into int and f64.
func (in *Interner) DefaultAmbiguous(id TypeID) TypeID {
	return in.mapType(id, func(tt Type) (TypeID, bool) {
		switch tt.Kind {
		case KindAmbiguousInt:
			return in.builtins.Int, true
		case KindAmbiguousFloat:
			return in.builtins.F64, true
		}
		return NoTypeID, false
	})
}

// SettleAmbiguous replaces untyped literal types with want when want accepts
// them, and defaults them otherwise.
func (in *Interner) SettleAmbiguous(id, want TypeID) TypeID {
	return in.mapType(id, func(tt Type) (TypeID, bool) {
		if tt.Kind != KindAmbiguousInt && tt.Kind != KindAmbiguousFloat {
			return NoTypeID, false
		}
		if want != NoTypeID && in.IsNumeric(want) && in.literalFits(tt.Kind, want) {
			return want, true
		}
		if tt.Kind == KindAmbiguousInt {
			return in.builtins.Int, true
		}
		return in.builtins.F64, true
	})
}

// mapType rebuilds id bottom-up, replacing leaves for which leaf returns true.
func (in *Interner) mapType(id TypeID, leaf func(Type) (TypeID, bool)) TypeID {
	tt, ok := in.Lookup(id)
	if !ok {
		return id
	}
	if repl, hit := leaf(tt); hit {
		return repl
	}
	switch tt.Kind {
	case KindPointer:
		if elem := in.mapType(tt.Elem, leaf); elem != tt.Elem {
			return in.Pointer(elem)
		}
	case KindReference:
		if elem := in.mapType(tt.Elem, leaf); elem != tt.Elem {
			return in.Reference(elem)
		}
	case KindFn:
		ret := in.mapType(tt.Elem, leaf)
		params, changed := in.mapArgs(tt.Args, leaf)
		if changed || ret != tt.Elem {
			return in.Fn(ret, params)
		}
	case KindStruct:
		if args, changed := in.mapArgs(tt.Args, leaf); changed {
			return in.Struct(tt.Template, args)
		}
	}
	return id
}

func (in *Interner) mapArgs(args []TypeID, leaf func(Type) (TypeID, bool)) ([]TypeID, bool) {
	if len(args) == 0 {
		return args, false
	}
	out := make([]TypeID, len(args))
	changed := false
	for i, a := range args {
		out[i] = in.mapType(a, leaf)
		if out[i] != a {
			changed = true
		}
	}
	return out, changed
}
