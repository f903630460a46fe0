package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oy3o/fixcodec"
)

const barYAML = `
version: "1"
types:
  - name: Bar
    fields:
      - {name: something, type: u16}
      - {name: foo, type: Foo}
      - {name: other, type: Eenie}
      - {name: another, type: Meenie}
      - {name: lastly, type: Meenie}
  - name: Foo
    fields:
      - {name: a, type: bool}
      - {name: b, type: u16}
  - name: Eenie
    repr: u16
    variants:
      - {name: A, tag: 0xde}
      - B
      - C
      - {name: D, tag: 0xff}
      - E
  - name: Meenie
    repr: u8
    variants:
      - A
      - name: B
        tag: 0x10
        fields: [{name: val, type: bool}]
      - {name: C, payload: u16}
`

const barTOML = `
version = "1"

[[types]]
name = "Foo"
fields = [{ name = "a", type = "bool" }, { name = "b", type = "u16" }]

[[types]]
name = "Eenie"
repr = "u16"
variants = [
  { name = "A", tag = 0xde },
  { name = "B" },
  { name = "C" },
  { name = "D", tag = 0xff },
  { name = "E" },
]

[[types]]
name = "Meenie"
repr = "u8"

[[types.variants]]
name = "A"

[[types.variants]]
name = "B"
tag = 0x10
fields = [{ name = "val", type = "bool" }]

[[types.variants]]
name = "C"
payload = "u16"

[[types]]
name = "Bar"
fields = [
  { name = "something", type = "u16" },
  { name = "foo", type = "Foo" },
  { name = "other", type = "Eenie" },
  { name = "another", type = "Meenie" },
  { name = "lastly", type = "Meenie" },
]
`

var barBytes = []byte{0x0, 0x10, 0x0, 0x1, 0x0, 0x00, 0xdf, 0x11, 0x1, 0x2c, 0x0, 0x0, 0x0}

func barValue() map[string]any {
	return map[string]any{
		"something": uint16(0x10),
		"foo":       map[string]any{"a": false, "b": uint16(0x100)},
		"other":     fixcodec.Of("B"),
		"another":   fixcodec.Of("C", uint16(300)),
		"lastly":    fixcodec.Of("A"),
	}
}

func mustBuild(t *testing.T, doc *Document, err error) *Schema {
	t.Helper()
	require.NoError(t, err)
	s, err := Build(doc)
	require.NoError(t, err)
	return s
}

func TestParseYAML(t *testing.T) {
	doc, err := Parse([]byte(barYAML))
	require.NoError(t, err)

	assert.Equal(t, "1", doc.Version)
	require.Len(t, doc.Types, 4)
	meenie := doc.Types[3]
	assert.True(t, meenie.IsEnum())
	assert.Equal(t, VariantDecl{Name: "A"}, meenie.Variants[0])
	require.NotNil(t, meenie.Variants[1].Tag)
	assert.EqualValues(t, 0x10, *meenie.Variants[1].Tag)
	assert.Equal(t, []FieldDecl{{Name: "val", Type: "bool"}}, meenie.Variants[1].Fields)
	assert.Equal(t, "u16", meenie.Variants[2].Payload)
}

func TestBuildEncodesBar(t *testing.T) {
	for name, load := range map[string]func() (*Document, error){
		"YAML": func() (*Document, error) { return Parse([]byte(barYAML)) },
		"TOML": func() (*Document, error) { return ParseTOML([]byte(barTOML)) },
	} {
		t.Run(name, func(t *testing.T) {
			doc, err := load()
			s := mustBuild(t, doc, err)

			bar, ok := s.Lookup("Bar")
			require.True(t, ok)
			data, err := fixcodec.Encode(bar, barValue())
			require.NoError(t, err)
			assert.Equal(t, barBytes, data)

			eenie, _ := s.Lookup("Eenie")
			l := fixcodec.MustLayout(eenie)
			assert.Equal(t, []uint64{0xde, 0xdf, 0xe0, 0xff, 0x100}, l.Tags)
		})
	}
}

func TestSchemaAccessors(t *testing.T) {
	doc, err := Parse([]byte(barYAML))
	s := mustBuild(t, doc, err)

	assert.Equal(t, []string{"Bar", "Foo", "Eenie", "Meenie"}, s.Names())
	assert.Len(t, s.Types(), 4)

	_, ok := s.Lookup("Moe")
	assert.False(t, ok)

	arr, err := s.Resolve("[2]Foo")
	require.NoError(t, err)
	size, err := fixcodec.SizeOf(arr)
	require.NoError(t, err)
	assert.Equal(t, 6, size)

	again, err := s.Resolve(" [2] Foo ")
	require.NoError(t, err)
	assert.Same(t, arr, again, "array references are interned")

	nested, err := s.Resolve("[3][2]u8")
	require.NoError(t, err)
	assert.Equal(t, "[3][2]u8", nested.String())

	u16, err := s.Resolve("u16")
	require.NoError(t, err)
	assert.Equal(t, fixcodec.U16, u16)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		detail string
	}{
		{"UnnamedType", `types: [{fields: []}]`, "has no name"},
		{"ScalarName", `types: [{name: u8, fields: []}]`, "shadows a scalar"},
		{"DuplicateType", `types: [{name: A, fields: []}, {name: A, fields: []}]`, `duplicate type "A"`},
		{"FieldsAndVariants", `types: [{name: A, repr: u8, fields: [{name: x, type: u8}], variants: [X]}]`, "both fields and variants"},
		{"MissingRepr", `types: [{name: A, variants: [X]}]`, "enum has no repr"},
		{"UnknownRepr", `types: [{name: A, repr: u12, variants: [X]}]`, `unknown repr "u12"`},
		{"UnknownType", `types: [{name: A, fields: [{name: x, type: Moe}]}]`, `unknown type "Moe"`},
		{"MissingType", `types: [{name: A, fields: [{name: x}]}]`, "missing type"},
		{"BadArray", `types: [{name: A, fields: [{name: x, type: "[x]u8"}]}]`, "invalid array length"},
		{"OpenArray", `types: [{name: A, fields: [{name: x, type: "[4u8"}]}]`, "unterminated array"},
		{"TwoPayloadFields", `types: [{name: A, repr: u8, variants: [{name: X, fields: [{name: a, type: u8}, {name: b, type: u8}]}]}]`, "more than one payload field"},
		{"PayloadAndField", `types: [{name: A, repr: u8, variants: [{name: X, payload: u8, fields: [{name: a, type: u8}]}]}]`, "more than one payload field"},
		{"UnnamedPayloadField", `types: [{name: A, repr: u8, variants: [{name: X, fields: [{type: u8}]}]}]`, "has no name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)

			_, err = Build(doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, &fixcodec.Error{Phase: fixcodec.PhaseSchema, Kind: fixcodec.KindMalformedDescriptor})
			assert.Contains(t, err.Error(), tt.detail)
		})
	}
}

func TestBuildLayoutErrors(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		detail string
	}{
		{"Recursive", `types: [{name: A, fields: [{name: next, type: B}]}, {name: B, fields: [{name: back, type: "[1]A"}]}]`, "recursive type"},
		{"SignedRepr", `types: [{name: A, repr: i8, variants: [X]}]`, "not an unsigned integer"},
		{"TagOverflow", `types: [{name: A, repr: u8, variants: [{name: X, tag: 255}, Y]}]`, "overflows u8"},
		{"DuplicateTag", `types: [{name: A, repr: u8, variants: [{name: X, tag: 1}, {name: Y, tag: 1}]}]`, "repeats tag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)

			_, err = Build(doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, &fixcodec.Error{Phase: fixcodec.PhaseLayout, Kind: fixcodec.KindMalformedDescriptor})
			assert.Contains(t, err.Error(), tt.detail)
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("types: [{name: A, variants: [[1]]}]"))
	assert.ErrorContains(t, err, "expected variant name or mapping")

	_, err = ParseTOML([]byte("version = \"1\"\ncolour = \"red\"\n"))
	assert.ErrorContains(t, err, "unknown keys")

	_, err = ParseTOML([]byte("types = ["))
	assert.ErrorContains(t, err, "failed to parse schema TOML")
}

func TestFromTypesRoundTrip(t *testing.T) {
	doc, err := Parse([]byte(barYAML))
	s := mustBuild(t, doc, err)
	bar, _ := s.Lookup("Bar")

	exported, err := FromTypes(bar)
	require.NoError(t, err)
	names := make([]string, len(exported.Types))
	for i, d := range exported.Types {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"Foo", "Eenie", "Meenie", "Bar"}, names, "dependencies come first")

	for _, format := range []string{"schema.yaml", "schema.toml"} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), format)
			require.NoError(t, WriteFile(exported, path))

			loaded, err := LoadFile(path)
			s2 := mustBuild(t, loaded, err)
			bar2, ok := s2.Lookup("Bar")
			require.True(t, ok)
			if diff := cmp.Diff(bar, bar2); diff != "" {
				t.Errorf("descriptor changed through %s (-want +got):\n%s", format, diff)
			}
		})
	}
}

func TestMarshalShorthand(t *testing.T) {
	doc := &Document{Version: "1", Types: []TypeDecl{{
		Name:     "E",
		Repr:     "u8",
		Variants: []VariantDecl{{Name: "A"}, {Name: "B", Tag: fixcodec.Ptr[uint64](4)}},
	}}}
	data, err := Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "- A\n")
	assert.Contains(t, string(data), "name: B")
}

func TestFromTypesErrors(t *testing.T) {
	_, err := FromTypes(fixcodec.NewStruct("", fixcodec.Field{Name: "a", Type: fixcodec.U8}))
	assert.ErrorContains(t, err, "anonymous")

	a := fixcodec.NewStruct("Same", fixcodec.Field{Name: "a", Type: fixcodec.U8})
	b := fixcodec.NewStruct("Same", fixcodec.Field{Name: "b", Type: fixcodec.U8})
	_, err = FromTypes(fixcodec.NewStruct("Both",
		fixcodec.Field{Name: "x", Type: a},
		fixcodec.Field{Name: "y", Type: b},
	))
	assert.ErrorContains(t, err, `two different types are named "Same"`)
	var e *fixcodec.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, []string{"Both", "y"}, e.Path)
}

func TestFromTypesErrorPath(t *testing.T) {
	inner := fixcodec.NewStruct("Inner",
		fixcodec.Field{Name: "x", Type: fixcodec.U8},
		fixcodec.Field{Name: "y", Type: fixcodec.U8},
	)
	other := fixcodec.NewStruct("Other", fixcodec.Field{Name: "z", Type: fixcodec.Scalar(200)})
	outer := fixcodec.NewStruct("Outer",
		fixcodec.Field{Name: "a", Type: inner},
		fixcodec.Field{Name: "b", Type: other},
	)

	_, err := FromTypes(outer)
	var e *fixcodec.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, fixcodec.PhaseSchema, e.Phase)
	assert.Equal(t, []string{"Outer", "b", "Other", "z"}, e.Path)

	p := make([]string, 1, 8)
	p[0] = "root"
	a := pathWith(p, "a")
	b := pathWith(p, "b")
	assert.Equal(t, []string{"root", "a"}, a)
	assert.Equal(t, []string{"root", "b"}, b)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
