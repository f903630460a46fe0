package fixcodec

import (
	"fmt"
	"strconv"
	"strings"
)

// Type is a type descriptor: a Scalar, a *Struct, an *Enum or an *Array.
//
// Descriptors are plain data. Once a layout has been computed from a
// descriptor it must not be mutated, since layouts are memoized by
// descriptor identity.
type Type interface {
	String() string
	isType()
}

var (
	_ Type = Scalar(0)
	_ Type = (*Struct)(nil)
	_ Type = (*Enum)(nil)
	_ Type = (*Array)(nil)
)

// Field is a named member of a Struct.
type Field struct {
	Name string
	Type Type
}

// Struct is an ordered list of fields. Declaration order is the wire order.
type Struct struct {
	Name   string
	Fields []Field
}

func NewStruct(name string, fields ...Field) *Struct {
	return &Struct{Name: name, Fields: fields}
}

func (*Struct) isType() {}

func (s *Struct) String() string {
	if s.Name != "" {
		return s.Name
	}
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return "struct{" + strings.Join(names, ", ") + "}"
}

// FieldIndex returns the index of the named field, or -1.
func (s *Struct) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Variant is one alternative of an Enum. It carries at most one payload.
type Variant struct {
	Name string
	// Discriminant is the explicit tag literal, nil when the tag continues
	// from the previous explicit one.
	Discriminant *uint64
	// Field names the payload of a struct-like variant (B { val: bool }).
	// It is empty for tuple-like and unit variants and never reaches the wire.
	Field   string
	Payload Type
}

// Unit declares a variant without payload.
func Unit(name string) Variant {
	return Variant{Name: name}
}

// Tuple declares a variant carrying one unnamed payload.
func Tuple(name string, payload Type) Variant {
	return Variant{Name: name, Payload: payload}
}

// Named declares a variant carrying one named payload field.
func Named(name, field string, payload Type) Variant {
	return Variant{Name: name, Field: field, Payload: payload}
}

// At returns a copy of v with an explicit discriminant.
func (v Variant) At(tag uint64) Variant {
	v.Discriminant = &tag
	return v
}

func (v Variant) HasPayload() bool {
	return v.Payload != nil
}

// Enum is a tagged set of variants encoded as a big-endian tag of Repr
// width followed by a payload region shared by all variants.
type Enum struct {
	Name     string
	Repr     Scalar
	Variants []Variant
}

func NewEnum(name string, repr Scalar, variants ...Variant) *Enum {
	return &Enum{Name: name, Repr: repr, Variants: variants}
}

func (*Enum) isType() {}

func (e *Enum) String() string {
	if e.Name != "" {
		return e.Name
	}
	names := make([]string, len(e.Variants))
	for i, v := range e.Variants {
		names[i] = v.Name
	}
	return "enum(" + e.Repr.String() + "){" + strings.Join(names, ", ") + "}"
}

// VariantIndex returns the index of the named variant, or -1.
func (e *Enum) VariantIndex(name string) int {
	for i, v := range e.Variants {
		if v.Name == name {
			return i
		}
	}
	return -1
}

// Array is a fixed-count sequence of elements packed back to back.
type Array struct {
	Elem Type
	Len  int
}

func NewArray(elem Type, n int) *Array {
	return &Array{Elem: elem, Len: n}
}

func (*Array) isType() {}

func (a *Array) String() string {
	return "[" + strconv.Itoa(a.Len) + "]" + typeName(a.Elem)
}

// EnumValue is the in-memory value of an Enum: the active variant and its payload.
// Payload is nil for unit variants.
type EnumValue struct {
	Name    string
	Payload any
}

// Of builds an EnumValue. A missing payload means a unit variant.
func Of(name string, payload ...any) EnumValue {
	if len(payload) == 0 {
		return EnumValue{Name: name}
	}
	return EnumValue{Name: name, Payload: payload[0]}
}

func (v EnumValue) String() string {
	if v.Payload == nil {
		return v.Name
	}
	return v.Name + "(" + fmt.Sprint(v.Payload) + ")"
}

func typeName(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
