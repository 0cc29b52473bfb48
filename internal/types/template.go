package types

import (
	"fmt"

	"fortio.org/safecast"

	"kestrel/internal/source"
)

// Template is the generic, unit-owned definition of a struct or enum.
// Fields are filled in by SetFields once every template is registered.
type Template struct {
	Name     string
	Unit     UnitID
	Generics []string
	Fields   []Field
	IsEnum   bool
	Builtin  BuiltinClass
	Span     source.Span
}

// FieldIndex returns the position of name in the template's fields.
func (t *Template) FieldIndex(name string) int {
	if t == nil {
		return -1
	}
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return i
		}
	}
	return -1
}

// NewTemplate registers a template and returns its id.
func (in *Interner) NewTemplate(t Template) TemplateID {
	n, err := safecast.Conv[uint32](len(in.templates))
	if err != nil {
		panic(fmt.Errorf("templates overflow: %w", err))
	}
	t.Generics = append([]string(nil), t.Generics...)
	in.templates = append(in.templates, t)
	return TemplateID(n)
}

// Template returns the template stored under id, or nil.
func (in *Interner) Template(id TemplateID) *Template {
	if in == nil || id == NoTemplateID || int(id) >= len(in.templates) {
		return nil
	}
	return &in.templates[id]
}

// SetFields stores the resolved fields of a template.
func (in *Interner) SetFields(id TemplateID, fields []Field) {
	tmpl := in.Template(id)
	if tmpl == nil {
		return
	}
	tmpl.Fields = append([]Field(nil), fields...)
}

// TemplateOf returns the template of a struct type.
func (in *Interner) TemplateOf(id TypeID) *Template {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindStruct {
		return nil
	}
	return in.Template(tt.Template)
}

// templateSubst maps the template's generic names to the type's arguments.
func (in *Interner) templateSubst(id TypeID) (*Template, Subst) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindStruct {
		return nil, nil
	}
	tmpl := in.Template(tt.Template)
	if tmpl == nil {
		return nil, nil
	}
	m := make(Subst, len(tmpl.Generics))
	for i, g := range tmpl.Generics {
		if i < len(tt.Args) {
			m[g] = tt.Args[i]
		}
	}
	return tmpl, m
}

// Fields returns the fields of a struct type with the template's generics
// replaced by the type's arguments.
func (in *Interner) Fields(id TypeID) []Field {
	tmpl, m := in.templateSubst(id)
	if tmpl == nil {
		return nil
	}
	out := make([]Field, len(tmpl.Fields))
	for i, f := range tmpl.Fields {
		out[i] = f
		out[i].Type = in.Apply(f.Type, m)
	}
	return out
}

// Field looks up a single substituted field.
func (in *Interner) Field(id TypeID, name string) (Field, bool) {
	tmpl, m := in.templateSubst(id)
	if tmpl == nil {
		return Field{}, false
	}
	idx := tmpl.FieldIndex(name)
	if idx < 0 {
		return Field{}, false
	}
	f := tmpl.Fields[idx]
	f.Type = in.Apply(f.Type, m)
	return f, true
}
