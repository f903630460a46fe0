package fixcodec

import (
	"fmt"
	"strconv"
)

// Decode reads a value of t from data.
//
// data must hold at least SizeOf(t) bytes; any bytes beyond that must be
// zero. Decoding stops at the first invalid byte pattern, in field and tag
// order, and never returns a partial value.
func Decode(t Type, data []byte) (any, error) {
	l, err := LayoutOf(t)
	if err != nil {
		return nil, err
	}
	if len(data) < l.Size {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrTruncatedData, l.Size, len(data))
	}
	if len(data) > l.Size {
		if err := CheckBufferNotZeros(data[l.Size:]); err != nil {
			return nil, err
		}
	}
	return decodeValue(data[:l.Size], t, l, nil)
}

// decodeValue reads a value of t from src, which is exactly l.Size bytes.
func decodeValue(src []byte, t Type, l *Layout, path []string) (any, error) {
	switch t := t.(type) {
	case Scalar:
		return decodeScalar(t, src, path)
	case *Struct:
		return decodeStruct(src, t, l, path)
	case *Enum:
		return decodeEnum(src, t, l, path)
	case *Array:
		return decodeArray(src, t, l, path)
	}
	return nil, malformed(path, t, "unsupported descriptor %T", t)
}

func decodeStruct(src []byte, s *Struct, l *Layout, path []string) (any, error) {
	m := make(map[string]any, len(s.Fields))
	for i, f := range s.Fields {
		fp := pathWith(path, f.Name)
		fl, err := layoutOf(f.Type, fp, nil)
		if err != nil {
			return nil, err
		}
		start, end := l.FieldRange(i)
		fv, err := decodeValue(src[start:end], f.Type, fl, fp)
		if err != nil {
			return nil, err
		}
		m[f.Name] = fv
	}
	return m, nil
}

func decodeEnum(src []byte, e *Enum, l *Layout, path []string) (any, error) {
	tag := getUint(src, l.TagSize)
	i := l.VariantIndex(tag)
	if i < 0 {
		return nil, unknownTag(path, e, tag)
	}
	variant := e.Variants[i]
	if !variant.HasPayload() {
		return EnumValue{Name: variant.Name}, nil
	}

	vp := pathWith(path, variant.Name)
	pl, err := layoutOf(variant.Payload, vp, nil)
	if err != nil {
		return nil, err
	}
	// Padding after the payload is not validated.
	p, err := decodeValue(src[l.TagSize:l.TagSize+pl.Size], variant.Payload, pl, vp)
	if err != nil {
		return nil, err
	}
	return EnumValue{Name: variant.Name, Payload: p}, nil
}

func decodeArray(src []byte, a *Array, l *Layout, path []string) (any, error) {
	el, err := layoutOf(a.Elem, pathWith(path, "[]"), nil)
	if err != nil {
		return nil, err
	}
	items := make([]any, a.Len)
	for i := range items {
		start, end := l.ElemRange(i)
		item, err := decodeValue(src[start:end], a.Elem, el, pathWith(path, strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		items[i] = item
	}
	return items, nil
}
