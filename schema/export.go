package schema

import (
	"strconv"

	"github.com/oy3o/fixcodec"
)

// FromTypes builds a Document declaring types and every named type they
// reference, dependencies first. Structs and enums must be named, and a
// name may not be shared by two different descriptors.
func FromTypes(types ...fixcodec.Type) (*Document, error) {
	x := &exporter{seen: make(map[string]fixcodec.Type)}
	for _, t := range types {
		if err := x.visit(t, nil); err != nil {
			return nil, err
		}
	}
	return &Document{Version: "1", Types: x.decls}, nil
}

type exporter struct {
	seen  map[string]fixcodec.Type
	decls []TypeDecl
}

func (x *exporter) visit(t fixcodec.Type, path []string) error {
	switch t := t.(type) {
	case fixcodec.Scalar:
		if !t.Valid() {
			return schemaError(path, "invalid scalar")
		}
		return nil
	case *fixcodec.Array:
		return x.visit(t.Elem, path)
	case *fixcodec.Struct:
		if done, err := x.mark(t, t.Name, path); done || err != nil {
			return err
		}
		d := TypeDecl{Name: t.Name, Fields: make([]FieldDecl, len(t.Fields))}
		for i, f := range t.Fields {
			if err := x.visit(f.Type, pathWith(path, t.Name, f.Name)); err != nil {
				return err
			}
			d.Fields[i] = FieldDecl{Name: f.Name, Type: refOf(f.Type)}
		}
		x.decls = append(x.decls, d)
		return nil
	case *fixcodec.Enum:
		if done, err := x.mark(t, t.Name, path); done || err != nil {
			return err
		}
		d := TypeDecl{Name: t.Name, Repr: t.Repr.String(), Variants: make([]VariantDecl, len(t.Variants))}
		for i, v := range t.Variants {
			vd := VariantDecl{Name: v.Name, Tag: v.Discriminant}
			if v.Payload != nil {
				if err := x.visit(v.Payload, pathWith(path, t.Name, v.Name)); err != nil {
					return err
				}
				if v.Field != "" {
					vd.Fields = []FieldDecl{{Name: v.Field, Type: refOf(v.Payload)}}
				} else {
					vd.Payload = refOf(v.Payload)
				}
			}
			d.Variants[i] = vd
		}
		x.decls = append(x.decls, d)
		return nil
	}
	return schemaError(path, "unsupported descriptor %T", t)
}

// mark records a named descriptor. It reports done when t was already
// exported.
func (x *exporter) mark(t fixcodec.Type, name string, path []string) (done bool, err error) {
	if name == "" {
		return false, schemaError(path, "anonymous %s cannot be exported", t)
	}
	if prev, ok := x.seen[name]; ok {
		if prev != t {
			return false, schemaError(path, "two different types are named %q", name)
		}
		return true, nil
	}
	// Marked before the fields are visited, so recursive types terminate.
	x.seen[name] = t
	return false, nil
}

func refOf(t fixcodec.Type) string {
	if a, ok := t.(*fixcodec.Array); ok {
		return "[" + strconv.Itoa(a.Len) + "]" + refOf(a.Elem)
	}
	return t.String()
}
