package types

// Equal is nominal equality. Interning makes it structural for pointers,
// references and functions as well.
func (in *Interner) Equal(a, b TypeID) bool {
	return a == b
}

// Applicable reports whether a value of type sub may be offered where sup is
// expected.
//
// With header set, bare generic names in sup are unified: the first
// occurrence records sub into m, later occurrences must agree with the
// recorded binding. Untyped literal types are accepted by every numeric
// template they fit and a value of T is accepted where T|K is expected.
func (in *Interner) Applicable(sub, sup TypeID, header bool, m Subst) bool {
	return in.applicable(sub, sup, header, m, true)
}

func (in *Interner) applicable(sub, sup TypeID, header bool, m Subst, top bool) bool {
	if sub == NoTypeID || sup == NoTypeID {
		return false
	}
	supT := in.MustLookup(sup)
	if header && supT.Kind == KindGeneric {
		return in.bind(supT.Name, sub, m)
	}
	if sub == sup {
		return true
	}
	subT := in.MustLookup(sub)

	switch subT.Kind {
	case KindAmbiguousInt, KindAmbiguousFloat:
		if supT.Kind == subT.Kind || (subT.Kind == KindAmbiguousInt && supT.Kind == KindAmbiguousFloat) {
			return true
		}
		if in.literalFits(subT.Kind, sup) {
			return true
		}
	}

	// injection into T|K, checked by recursing into both arms
	if top && in.IsUnion(sup) && (subT.Kind != KindStruct || subT.Template != supT.Template) {
		for _, arm := range supT.Args {
			trial := m.Clone()
			if in.applicable(sub, arm, header, trial, true) {
				for k, v := range trial {
					m[k] = v
				}
				return true
			}
		}
		return false
	}

	if subT.Kind != supT.Kind {
		return false
	}
	switch supT.Kind {
	case KindPointer, KindReference:
		return in.applicable(subT.Elem, supT.Elem, header, m, false)
	case KindFn:
		if len(subT.Args) != len(supT.Args) {
			return false
		}
		if !in.applicable(subT.Elem, supT.Elem, header, m, false) {
			return false
		}
		return in.applicableArgs(subT.Args, supT.Args, header, m)
	case KindStruct:
		if subT.Template != supT.Template || len(subT.Args) != len(supT.Args) {
			return false
		}
		return in.applicableArgs(subT.Args, supT.Args, header, m)
	}
	return false
}

func (in *Interner) applicableArgs(sub, sup []TypeID, header bool, m Subst) bool {
	for i := range sup {
		if !in.applicable(sub[i], sup[i], header, m, false) {
			return false
		}
	}
	return true
}

// bind unifies generic name with sub. A binding to an untyped literal is
// upgraded when a later occurrence supplies a concrete numeric it fits.
func (in *Interner) bind(name string, sub TypeID, m Subst) bool {
	bound, ok := m[name]
	if !ok || bound == NoTypeID {
		m[name] = sub
		return true
	}
	if bound == sub {
		return true
	}
	bk, sk := in.Kind(bound), in.Kind(sub)
	switch {
	case in.IsAmbiguous(bound) && in.IsAmbiguous(sub):
		if bk == KindAmbiguousInt && sk == KindAmbiguousFloat {
			m[name] = sub
		}
		return true
	case in.IsAmbiguous(bound):
		if in.literalFits(bk, sub) {
			m[name] = sub
			return true
		}
		return false
	case in.IsAmbiguous(sub):
		return in.literalFits(sk, bound)
	}
	return false
}

// literalFits reports whether an untyped literal of kind k may become want.
func (in *Interner) literalFits(k Kind, want TypeID) bool {
	switch k {
	case KindAmbiguousInt:
		return in.IsNumeric(want)
	case KindAmbiguousFloat:
		return in.IsFloat(want)
	}
	return false
}
