package types

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for the compiler-provided types.
type Builtins struct {
	Int, I8, I16, I32, I64 TypeID
	U8, U16, U32, U64      TypeID
	F32, F64               TypeID
	Bool, Char, Str, Void  TypeID
	AmbiguousInt           TypeID
	AmbiguousFloat         TypeID
	Union                  TemplateID
}

// builtinTemplates lists the templates owned by BuiltinUnit, in registration order.
var builtinTemplates = []struct {
	name  string
	class BuiltinClass
}{
	{"int", BuiltinInt}, {"i8", BuiltinInt}, {"i16", BuiltinInt}, {"i32", BuiltinInt}, {"i64", BuiltinInt},
	{"u8", BuiltinInt}, {"u16", BuiltinInt}, {"u32", BuiltinInt}, {"u64", BuiltinInt},
	{"f32", BuiltinFloat}, {"f64", BuiltinFloat},
	{"bool", BuiltinBool}, {"char", BuiltinChar}, {"str", BuiltinStr}, {"void", BuiltinVoid},
}

// UnionTemplateName is the name of the built-in two-arm sum template.
const UnionTemplateName = "TypeUnion"

// Interner provides stable TypeIDs by hashing structural descriptors.
// Interned ids make nominal equality an integer comparison.
type Interner struct {
	types     []Type
	index     map[typeKey]TypeID
	templates []Template
	builtins  Builtins
	byName    map[string]TemplateID
}

// NewInterner constructs an interner seeded with built-in templates.
func NewInterner() *Interner {
	in := &Interner{
		index:  make(map[typeKey]TypeID, 64),
		byName: make(map[string]TemplateID, len(builtinTemplates)+1),
	}
	// reserve 0 as invalid sentinel
	in.types = append(in.types, Type{})
	in.templates = append(in.templates, Template{})

	ids := make(map[string]TypeID, len(builtinTemplates))
	for _, bt := range builtinTemplates {
		tid := in.NewTemplate(Template{Name: bt.name, Unit: BuiltinUnit, Builtin: bt.class})
		in.byName[bt.name] = tid
		ids[bt.name] = in.Struct(tid, nil)
	}
	union := in.NewTemplate(Template{
		Name:     UnionTemplateName,
		Unit:     BuiltinUnit,
		Generics: []string{"T", "K"},
		IsEnum:   true,
		Builtin:  BuiltinUnion,
	})
	in.byName[UnionTemplateName] = union

	b := &in.builtins
	b.Int, b.I8, b.I16, b.I32, b.I64 = ids["int"], ids["i8"], ids["i16"], ids["i32"], ids["i64"]
	b.U8, b.U16, b.U32, b.U64 = ids["u8"], ids["u16"], ids["u32"], ids["u64"]
	b.F32, b.F64 = ids["f32"], ids["f64"]
	b.Bool, b.Char, b.Str, b.Void = ids["bool"], ids["char"], ids["str"], ids["void"]
	b.AmbiguousInt = in.Intern(Type{Kind: KindAmbiguousInt})
	b.AmbiguousFloat = in.Intern(Type{Kind: KindAmbiguousFloat})
	b.Union = union
	return in
}

// Builtins returns ids of the compiler-provided types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// BuiltinTemplate returns the builtin template registered under name.
func (in *Interner) BuiltinTemplate(name string) (TemplateID, bool) {
	id, ok := in.byName[name]
	return id, ok
}

// BuiltinTemplateNames lists builtin template names in registration order.
func (in *Interner) BuiltinTemplateNames() []string {
	out := make([]string, 0, len(builtinTemplates)+1)
	for _, bt := range builtinTemplates {
		out = append(out, bt.name)
	}
	return append(out, UnionTemplateName)
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := makeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	t.Args = append([]TypeID(nil), t.Args...)
	in.types = append(in.types, t)
	in.index[key] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if in == nil || id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Kind returns the kind of id, KindInvalid for unknown ids.
func (in *Interner) Kind(id TypeID) Kind {
	tt, _ := in.Lookup(id)
	return tt.Kind
}

// Len reports the number of interned types, sentinel included.
func (in *Interner) Len() int {
	return len(in.types)
}

// Constructors ---------------------------------------------------------------

func (in *Interner) Generic(name string) TypeID {
	return in.Intern(Type{Kind: KindGeneric, Name: name})
}

func (in *Interner) Pointer(elem TypeID) TypeID {
	return in.Intern(Type{Kind: KindPointer, Elem: elem})
}

func (in *Interner) Reference(elem TypeID) TypeID {
	return in.Intern(Type{Kind: KindReference, Elem: elem})
}

// Fn describes a function type.
func (in *Interner) Fn(ret TypeID, params []TypeID) TypeID {
	return in.Intern(Type{Kind: KindFn, Elem: ret, Args: params})
}

// Struct instantiates a template with generic arguments.
func (in *Interner) Struct(tmpl TemplateID, args []TypeID) TypeID {
	return in.Intern(Type{Kind: KindStruct, Template: tmpl, Args: args})
}

// Union builds the T|K sum.
func (in *Interner) Union(left, right TypeID) TypeID {
	return in.Struct(in.builtins.Union, []TypeID{left, right})
}

type typeKey struct {
	Kind     Kind
	Name     string
	Elem     TypeID
	Template TemplateID
	Args     string
}

func makeKey(t Type) typeKey {
	return typeKey{
		Kind:     t.Kind,
		Name:     t.Name,
		Elem:     t.Elem,
		Template: t.Template,
		Args:     joinIDs(t.Args),
	}
}

func joinIDs(ids []TypeID) string {
	if len(ids) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, id := range ids {
		if i > 0 {
			sb.WriteByte('#')
		}
		sb.WriteString(strconv.FormatUint(uint64(id), 10))
	}
	return sb.String()
}
