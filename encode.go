package fixcodec

import (
	"io"
	"slices"
	"strconv"
)

// Encode returns the fixed-size encoding of v as a value of t.
//
// Values use their canonical in-memory form: the Go type of each Scalar,
// map[string]any for a Struct, EnumValue for an Enum and []any for an Array.
// Encoding only fails when t is malformed or v does not have the shape of t.
func Encode(t Type, v any) ([]byte, error) {
	l, err := LayoutOf(t)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, l.Size)
	if err := encodeValue(buf, t, l, v, nil); err != nil {
		return nil, err
	}
	return buf, nil
}

// EncodeTo encodes v into the first SizeOf(t) bytes of dst and returns that size.
// Those bytes are overwritten entirely, padding included. On error their
// content is unspecified.
func EncodeTo(dst []byte, t Type, v any) (int, error) {
	l, err := LayoutOf(t)
	if err != nil {
		return 0, err
	}
	if len(dst) < l.Size {
		return 0, io.ErrShortBuffer
	}
	dst = dst[:l.Size]
	clear(dst)
	if err := encodeValue(dst, t, l, v, nil); err != nil {
		return 0, err
	}
	return l.Size, nil
}

// encodeValue writes v into dst, which is exactly l.Size zeroed bytes.
func encodeValue(dst []byte, t Type, l *Layout, v any, path []string) error {
	switch t := t.(type) {
	case Scalar:
		return encodeScalar(dst, t, v, path)
	case *Struct:
		return encodeStruct(dst, t, l, v, path)
	case *Enum:
		return encodeEnum(dst, t, l, v, path)
	case *Array:
		return encodeArray(dst, t, l, v, path)
	}
	return malformed(path, t, "unsupported descriptor %T", t)
}

func encodeStruct(dst []byte, s *Struct, l *Layout, v any, path []string) error {
	m, ok := v.(map[string]any)
	if !ok {
		return typeMismatch(path, s, v)
	}

	for i, f := range s.Fields {
		fp := pathWith(path, f.Name)
		fv, present := m[f.Name]
		if !present {
			return NewError(PhaseEncode, KindFieldMissing).
				Path(fp...).
				Type(typeName(s)).
				Detail("required field %q not found", f.Name).
				Build()
		}
		fl, err := layoutOf(f.Type, fp, nil)
		if err != nil {
			return err
		}
		start, end := l.FieldRange(i)
		if err := encodeValue(dst[start:end], f.Type, fl, fv, fp); err != nil {
			return err
		}
	}

	if len(m) != len(s.Fields) {
		var unknown []string
		for k := range m {
			if s.FieldIndex(k) < 0 {
				unknown = append(unknown, k)
			}
		}
		slices.Sort(unknown)
		return NewError(PhaseEncode, KindFieldUnknown).
			Path(pathWith(path, unknown[0])...).
			Type(typeName(s)).
			Detail("unknown field %q", unknown[0]).
			Build()
	}
	return nil
}

func encodeEnum(dst []byte, e *Enum, l *Layout, v any, path []string) error {
	ev, ok := v.(EnumValue)
	if !ok {
		return typeMismatch(path, e, v)
	}
	i := e.VariantIndex(ev.Name)
	if i < 0 {
		return NewError(PhaseEncode, KindFieldUnknown).
			Path(path...).
			Type(typeName(e)).
			Value(ev.Name).
			Detail("unknown variant %q", ev.Name).
			Build()
	}
	variant := e.Variants[i]
	putUint(dst, l.TagSize, l.Tags[i])

	vp := pathWith(path, variant.Name)
	if !variant.HasPayload() {
		if ev.Payload != nil {
			return NewError(PhaseEncode, KindTypeMismatch).
				Path(vp...).
				Type(typeName(e)).
				Value(ev.Payload).
				Detail("variant %q carries no payload", variant.Name).
				Build()
		}
		return nil
	}
	if ev.Payload == nil {
		return NewError(PhaseEncode, KindFieldMissing).
			Path(vp...).
			Type(typeName(e)).
			Detail("variant %q requires a %s payload", variant.Name, typeName(variant.Payload)).
			Build()
	}

	pl, err := layoutOf(variant.Payload, vp, nil)
	if err != nil {
		return err
	}
	// Left-aligned; the rest of the shared region stays zero.
	return encodeValue(dst[l.TagSize:l.TagSize+pl.Size], variant.Payload, pl, ev.Payload, vp)
}

func encodeArray(dst []byte, a *Array, l *Layout, v any, path []string) error {
	items, ok := v.([]any)
	if !ok {
		return typeMismatch(path, a, v)
	}
	if len(items) != a.Len {
		return NewError(PhaseEncode, KindOutOfRange).
			Path(path...).
			Type(typeName(a)).
			Value(len(items)).
			Detail("array has %d elements, want %d", len(items), a.Len).
			Build()
	}
	el, err := layoutOf(a.Elem, pathWith(path, "[]"), nil)
	if err != nil {
		return err
	}
	for i, item := range items {
		start, end := l.ElemRange(i)
		if err := encodeValue(dst[start:end], a.Elem, el, item, pathWith(path, strconv.Itoa(i))); err != nil {
			return err
		}
	}
	return nil
}
