package types

func (in *Interner) builtinClass(id TypeID) BuiltinClass {
	tmpl := in.TemplateOf(id)
	if tmpl == nil {
		return NotBuiltin
	}
	return tmpl.Builtin
}

// IsAmbiguous reports whether id is an untyped literal type.
func (in *Interner) IsAmbiguous(id TypeID) bool {
	k := in.Kind(id)
	return k == KindAmbiguousInt || k == KindAmbiguousFloat
}

// IsInteger reports concrete integer templates.
func (in *Interner) IsInteger(id TypeID) bool {
	return in.builtinClass(id) == BuiltinInt
}

// IsFloat reports concrete floating point templates.
func (in *Interner) IsFloat(id TypeID) bool {
	return in.builtinClass(id) == BuiltinFloat
}

// IsNumeric reports concrete numeric templates.
func (in *Interner) IsNumeric(id TypeID) bool {
	c := in.builtinClass(id)
	return c == BuiltinInt || c == BuiltinFloat
}

// IsNumericLike accepts concrete numerics and untyped literals.
func (in *Interner) IsNumericLike(id TypeID) bool {
	return in.IsNumeric(id) || in.IsAmbiguous(id)
}

// IsPrimitive reports types whose operators the compiler implements directly:
// numerics, bool and char.
func (in *Interner) IsPrimitive(id TypeID) bool {
	switch in.builtinClass(id) {
	case BuiltinInt, BuiltinFloat, BuiltinBool, BuiltinChar:
		return true
	}
	return in.IsAmbiguous(id)
}

func (in *Interner) IsBool(id TypeID) bool { return id == in.builtins.Bool }
func (in *Interner) IsStr(id TypeID) bool  { return id == in.builtins.Str }
func (in *Interner) IsVoid(id TypeID) bool { return id == in.builtins.Void }

// IsBuiltinValue reports builtin non-generic templates (int, str, void, ...).
func (in *Interner) IsBuiltinValue(id TypeID) bool {
	c := in.builtinClass(id)
	return c != NotBuiltin && c != BuiltinUnion
}

// IsUnion reports T|K types.
func (in *Interner) IsUnion(id TypeID) bool {
	return in.builtinClass(id) == BuiltinUnion
}

// IsEnum reports user enums (templates flagged isEnum), excluding T|K.
func (in *Interner) IsEnum(id TypeID) bool {
	tmpl := in.TemplateOf(id)
	return tmpl != nil && tmpl.IsEnum && tmpl.Builtin != BuiltinUnion
}

// IsSum reports any tagged union: enums and T|K.
func (in *Interner) IsSum(id TypeID) bool {
	tmpl := in.TemplateOf(id)
	return tmpl != nil && tmpl.IsEnum
}

// Elem returns the pointee of a pointer or reference.
func (in *Interner) Elem(id TypeID) (TypeID, bool) {
	tt, ok := in.Lookup(id)
	if !ok || (tt.Kind != KindPointer && tt.Kind != KindReference) {
		return NoTypeID, false
	}
	return tt.Elem, true
}

// FnSignature splits a function type into return and parameter types.
func (in *Interner) FnSignature(id TypeID) (ret TypeID, params []TypeID, ok bool) {
	tt, found := in.Lookup(id)
	if !found || tt.Kind != KindFn {
		return NoTypeID, nil, false
	}
	return tt.Elem, tt.Args, true
}

// Variants lists the variant names of a sum type in declaration order.
// T|K variants are named by the printed arm types.
func (in *Interner) Variants(id TypeID) []string {
	if !in.IsSum(id) {
		return nil
	}
	if in.IsUnion(id) {
		tt := in.MustLookup(id)
		out := make([]string, 0, len(tt.Args))
		for _, a := range tt.Args {
			out = append(out, in.Format(a))
		}
		return out
	}
	tmpl := in.TemplateOf(id)
	out := make([]string, 0, len(tmpl.Fields))
	for _, f := range tmpl.Fields {
		out = append(out, f.Name)
	}
	return out
}

// VariantType returns the payload type of a named variant.
func (in *Interner) VariantType(id TypeID, name string) (TypeID, bool) {
	if !in.IsSum(id) {
		return NoTypeID, false
	}
	if in.IsUnion(id) {
		for _, a := range in.MustLookup(id).Args {
			if in.Format(a) == name {
				return a, true
			}
		}
		return NoTypeID, false
	}
	f, ok := in.Field(id, name)
	if !ok {
		return NoTypeID, false
	}
	return f.Type, true
}

// IsGeneric reports whether any reachable leaf is an unbound generic.
func (in *Interner) IsGeneric(id TypeID) bool {
	found := false
	in.walk(id, func(tt Type) bool {
		if tt.Kind == KindGeneric {
			found = true
		}
		return !found
	})
	return found
}

// HasAmbiguous reports whether an untyped literal type is reachable.
func (in *Interner) HasAmbiguous(id TypeID) bool {
	found := false
	in.walk(id, func(tt Type) bool {
		if tt.Kind == KindAmbiguousInt || tt.Kind == KindAmbiguousFloat {
			found = true
		}
		return !found
	})
	return found
}

// HasReference reports whether a reference type is reachable outside of
// function types.
func (in *Interner) HasReference(id TypeID) bool {
	tt, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch tt.Kind {
	case KindReference:
		return true
	case KindPointer:
		return in.HasReference(tt.Elem)
	case KindStruct:
		for _, a := range tt.Args {
			if in.HasReference(a) {
				return true
			}
		}
	}
	return false
}

// GenericNames collects distinct generic names reachable from id, in
// first-seen order.
func (in *Interner) GenericNames(id TypeID) []string {
	var out []string
	seen := make(map[string]struct{})
	in.walk(id, func(tt Type) bool {
		if tt.Kind == KindGeneric {
			if _, ok := seen[tt.Name]; !ok {
				seen[tt.Name] = struct{}{}
				out = append(out, tt.Name)
			}
		}
		return true
	})
	return out
}

// walk visits id and its children depth first until visit returns false.
func (in *Interner) walk(id TypeID, visit func(Type) bool) bool {
	tt, ok := in.Lookup(id)
	if !ok {
		return true
	}
	if !visit(tt) {
		return false
	}
	switch tt.Kind {
	case KindPointer, KindReference:
		return in.walk(tt.Elem, visit)
	case KindFn:
		if !in.walk(tt.Elem, visit) {
			return false
		}
	}
	for _, a := range tt.Args {
		if !in.walk(a, visit) {
			return false
		}
	}
	return true
}
