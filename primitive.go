package fixcodec

import (
	"io"
	"math"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// PutInt writes v big-endian into dst using the width of T and returns that width.
func PutInt[T constraints.Integer](dst []byte, v T) int {
	n := int(unsafe.Sizeof(v))
	putUint(dst, n, uint64(v))
	return n
}

// GetInt reads a big-endian T from the first bytes of src.
func GetInt[T constraints.Integer](src []byte) T {
	var v T
	return T(getUint(src, int(unsafe.Sizeof(v))))
}

// PutFloat writes the IEEE-754 bits of v big-endian into dst and returns the width.
func PutFloat[T constraints.Float](dst []byte, v T) int {
	switch n := unsafe.Sizeof(v); n {
	case 4:
		Order.PutUint32(dst, math.Float32bits(float32(v)))
		return 4
	default:
		Order.PutUint64(dst, math.Float64bits(float64(v)))
		return 8
	}
}

// GetFloat reads a big-endian IEEE-754 T from the first bytes of src.
func GetFloat[T constraints.Float](src []byte) T {
	var v T
	if unsafe.Sizeof(v) == 4 {
		return T(math.Float32frombits(Order.Uint32(src)))
	}
	return T(math.Float64frombits(Order.Uint64(src)))
}

func putUint(dst []byte, n int, v uint64) {
	switch n {
	case 1:
		dst[0] = byte(v)
	case 2:
		Order.PutUint16(dst, uint16(v))
	case 4:
		Order.PutUint32(dst, uint32(v))
	default:
		Order.PutUint64(dst, v)
	}
}

func getUint(src []byte, n int) uint64 {
	switch n {
	case 1:
		return uint64(src[0])
	case 2:
		return uint64(Order.Uint16(src))
	case 4:
		return uint64(Order.Uint32(src))
	default:
		return Order.Uint64(src)
	}
}

// EncodeScalar writes v into dst[:s.Size()]. v must have the canonical Go
// type of s: bool, uint8..uint64, int8..int64, float32 or float64.
func EncodeScalar(dst []byte, s Scalar, v any) error {
	if len(dst) < s.Size() {
		return io.ErrShortBuffer
	}
	return encodeScalar(dst, s, v, nil)
}

// DecodeScalar reads a value of s from src[:s.Size()].
// Only a boolean byte outside {0, 1} can fail.
func DecodeScalar(s Scalar, src []byte) (any, error) {
	if !s.Valid() {
		return nil, malformed(nil, s, "invalid scalar")
	}
	if len(src) < s.Size() {
		return nil, ErrTruncatedData
	}
	return decodeScalar(s, src, nil)
}

func encodeScalar(dst []byte, s Scalar, v any, path []string) error {
	ok := true
	switch s {
	case Bool:
		var b bool
		if b, ok = v.(bool); ok {
			dst[0] = 0
			if b {
				dst[0] = 1
			}
		}
	case U8:
		ok = putAs[uint8](dst, v)
	case U16:
		ok = putAs[uint16](dst, v)
	case U32:
		ok = putAs[uint32](dst, v)
	case U64:
		ok = putAs[uint64](dst, v)
	case I8:
		ok = putAs[int8](dst, v)
	case I16:
		ok = putAs[int16](dst, v)
	case I32:
		ok = putAs[int32](dst, v)
	case I64:
		ok = putAs[int64](dst, v)
	case F32:
		var f float32
		if f, ok = v.(float32); ok {
			PutFloat(dst, f)
		}
	case F64:
		var f float64
		if f, ok = v.(float64); ok {
			PutFloat(dst, f)
		}
	default:
		return malformed(path, s, "invalid scalar")
	}
	if !ok {
		return typeMismatch(path, s, v)
	}
	return nil
}

func putAs[T constraints.Integer](dst []byte, v any) bool {
	x, ok := v.(T)
	if ok {
		PutInt(dst, x)
	}
	return ok
}

func decodeScalar(s Scalar, src []byte, path []string) (any, error) {
	switch s {
	case Bool:
		switch src[0] {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
		return nil, invalidBool(path, src[0])
	case U8:
		return src[0], nil
	case U16:
		return GetInt[uint16](src), nil
	case U32:
		return GetInt[uint32](src), nil
	case U64:
		return GetInt[uint64](src), nil
	case I8:
		return int8(src[0]), nil
	case I16:
		return GetInt[int16](src), nil
	case I32:
		return GetInt[int32](src), nil
	case I64:
		return GetInt[int64](src), nil
	case F32:
		return GetFloat[float32](src), nil
	case F64:
		return GetFloat[float64](src), nil
	}
	return nil, malformed(path, s, "invalid scalar")
}
