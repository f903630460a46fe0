package schema

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/oy3o/fixcodec"
)

// Schema is a resolved Document: every declared type as a descriptor
// whose layout has already been computed.
type Schema struct {
	Version string

	types map[string]fixcodec.Type
	order []string
	// arrays interns [N]T references so equal references share a descriptor.
	arrays map[string]*fixcodec.Array
}

// Build resolves every declaration of doc and computes its layout, so a
// malformed descriptor is reported before any value is encoded.
func Build(doc *Document) (*Schema, error) {
	s := &Schema{
		Version: doc.Version,
		types:   make(map[string]fixcodec.Type, len(doc.Types)),
		arrays:  make(map[string]*fixcodec.Array),
	}

	// Declare first so declarations may reference each other in any order.
	for i := range doc.Types {
		d := &doc.Types[i]
		if err := s.declare(d); err != nil {
			return nil, err
		}
	}

	for i := range doc.Types {
		d := &doc.Types[i]
		var err error
		if d.IsEnum() {
			err = s.defineEnum(d)
		} else {
			err = s.defineStruct(d)
		}
		if err != nil {
			return nil, err
		}
	}

	for _, name := range s.order {
		l, err := fixcodec.LayoutOf(s.types[name])
		if err != nil {
			return nil, err
		}
		fixcodec.Logger().Debug("schema type resolved", zap.String("type", name), zap.Int("size", l.Size))
	}
	return s, nil
}

func (s *Schema) declare(d *TypeDecl) error {
	if d.Name == "" {
		return schemaError(nil, "type %d has no name", len(s.order))
	}
	if _, ok := fixcodec.ParseScalar(d.Name); ok {
		return schemaError([]string{d.Name}, "type name %q shadows a scalar", d.Name)
	}
	if strings.ContainsAny(d.Name, "[] ") {
		return schemaError([]string{d.Name}, "invalid type name %q", d.Name)
	}
	if _, dup := s.types[d.Name]; dup {
		return schemaError([]string{d.Name}, "duplicate type %q", d.Name)
	}

	if !d.IsEnum() {
		s.types[d.Name] = &fixcodec.Struct{Name: d.Name}
		s.order = append(s.order, d.Name)
		return nil
	}

	if len(d.Fields) > 0 {
		return schemaError([]string{d.Name}, "type declares both fields and variants")
	}
	if d.Repr == "" {
		return schemaError([]string{d.Name}, "enum has no repr")
	}
	repr, ok := fixcodec.ParseScalar(d.Repr)
	if !ok {
		return schemaError([]string{d.Name}, "unknown repr %q", d.Repr)
	}
	s.types[d.Name] = &fixcodec.Enum{Name: d.Name, Repr: repr}
	s.order = append(s.order, d.Name)
	return nil
}

func (s *Schema) defineStruct(d *TypeDecl) error {
	st := s.types[d.Name].(*fixcodec.Struct)
	st.Fields = make([]fixcodec.Field, len(d.Fields))
	for i, f := range d.Fields {
		t, err := s.resolve(f.Type, []string{d.Name, f.Name})
		if err != nil {
			return err
		}
		st.Fields[i] = fixcodec.Field{Name: f.Name, Type: t}
	}
	return nil
}

func (s *Schema) defineEnum(d *TypeDecl) error {
	e := s.types[d.Name].(*fixcodec.Enum)
	e.Variants = make([]fixcodec.Variant, len(d.Variants))
	for i, vd := range d.Variants {
		path := []string{d.Name, vd.Name}
		if len(vd.Fields) > 1 || (len(vd.Fields) == 1 && vd.Payload != "") {
			return schemaError(path, "variant carries more than one payload field")
		}

		v := fixcodec.Unit(vd.Name)
		switch {
		case len(vd.Fields) == 1:
			f := vd.Fields[0]
			if f.Name == "" {
				return schemaError(path, "payload field of variant %q has no name", vd.Name)
			}
			t, err := s.resolve(f.Type, pathWith(path, f.Name))
			if err != nil {
				return err
			}
			v = fixcodec.Named(vd.Name, f.Name, t)
		case vd.Payload != "":
			t, err := s.resolve(vd.Payload, path)
			if err != nil {
				return err
			}
			v = fixcodec.Tuple(vd.Name, t)
		}
		if vd.Tag != nil {
			v = v.At(*vd.Tag)
		}
		e.Variants[i] = v
	}
	return nil
}

// resolve turns a type reference into a descriptor.
func (s *Schema) resolve(ref string, path []string) (fixcodec.Type, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, schemaError(path, "missing type")
	}
	if sc, ok := fixcodec.ParseScalar(ref); ok {
		return sc, nil
	}
	if t, ok := s.types[ref]; ok {
		return t, nil
	}
	if !strings.HasPrefix(ref, "[") {
		return nil, schemaError(path, "unknown type %q", ref)
	}

	end := strings.IndexByte(ref, ']')
	if end < 0 {
		return nil, schemaError(path, "unterminated array type %q", ref)
	}
	n, err := strconv.Atoi(strings.TrimSpace(ref[1:end]))
	if err != nil || n < 0 {
		return nil, schemaError(path, "invalid array length in %q", ref)
	}
	elem, err := s.resolve(ref[end+1:], path)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("[%d]%s", n, elem)
	if a, ok := s.arrays[key]; ok {
		return a, nil
	}
	a := fixcodec.NewArray(elem, n)
	s.arrays[key] = a
	return a, nil
}

// Lookup returns the declared type with the given name.
func (s *Schema) Lookup(name string) (fixcodec.Type, bool) {
	t, ok := s.types[name]
	return t, ok
}

// Resolve returns the type a reference such as "Bar", "u16" or "[4]Bar"
// denotes, computing its layout.
func (s *Schema) Resolve(ref string) (fixcodec.Type, error) {
	t, err := s.resolve(ref, nil)
	if err != nil {
		return nil, err
	}
	if _, err := fixcodec.LayoutOf(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Names returns the declared type names in declaration order.
func (s *Schema) Names() []string {
	return append([]string(nil), s.order...)
}

// Types returns the declared types in declaration order.
func (s *Schema) Types() []fixcodec.Type {
	types := make([]fixcodec.Type, len(s.order))
	for i, name := range s.order {
		types[i] = s.types[name]
	}
	return types
}

// pathWith returns path extended by names without aliasing the caller's backing array.
func pathWith(path []string, names ...string) []string {
	p := make([]string, len(path), len(path)+len(names))
	copy(p, path)
	return append(p, names...)
}

func schemaError(path []string, msg string, args ...any) *fixcodec.Error {
	return fixcodec.NewError(fixcodec.PhaseSchema, fixcodec.KindMalformedDescriptor).
		Path(path...).
		Detail(msg, args...).
		Build()
}
