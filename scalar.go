package fixcodec

import "fmt"

// Scalar is a fixed-size leaf type. Every Scalar is also a Type.
type Scalar uint8

const (
	invalidScalar Scalar = iota // zero value is not a valid scalar

	Bool
	U8
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	F32
	F64

	scalarCount = int(iota)
)

var scalarSizes = [scalarCount]int{0, 1, 1, 2, 4, 8, 1, 2, 4, 8, 4, 8}

var scalarNames = [scalarCount]string{
	"invalid",
	"bool",
	"u8",
	"u16",
	"u32",
	"u64",
	"i8",
	"i16",
	"i32",
	"i64",
	"f32",
	"f64",
}

func (Scalar) isType() {}

func (s Scalar) String() string {
	if s.Valid() {
		return scalarNames[s]
	}
	return fmt.Sprintf("Scalar(%d)", uint8(s))
}

// Size returns the wire width in bytes, or 0 for an invalid scalar.
func (s Scalar) Size() int {
	if s.Valid() {
		return scalarSizes[s]
	}
	return 0
}

func (s Scalar) Valid() bool {
	return s > invalidScalar && int(s) < scalarCount
}

func (s Scalar) IsUnsigned() bool {
	switch s {
	case U8, U16, U32, U64:
		return true
	}
	return false
}

func (s Scalar) IsSigned() bool {
	switch s {
	case I8, I16, I32, I64:
		return true
	}
	return false
}

func (s Scalar) IsFloat() bool {
	return s == F32 || s == F64
}

// Bits returns the bit width of the scalar.
func (s Scalar) Bits() int {
	return s.Size() * 8
}

// ParseScalar resolves a scalar by its wire name ("u16", "bool", ...).
func ParseScalar(name string) (Scalar, bool) {
	for i := 1; i < scalarCount; i++ {
		if scalarNames[i] == name {
			return Scalar(i), true
		}
	}
	return invalidScalar, false
}
