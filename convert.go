package fixcodec

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Convert turns a loosely typed value, as produced by YAML, TOML or JSON
// decoders, into the canonical value of t accepted by Encode.
//
//   - integers accept any Go integer, integral floats and numeric strings
//     ("0x1f" included), range-checked against the scalar width;
//   - floats accept any Go number;
//   - structs accept map[string]any or map[any]any with exactly the declared fields;
//   - enums accept EnumValue, a variant name for unit variants, or a single-key
//     map {Variant: payload}; a named variant wraps its payload as {Variant: {field: payload}};
//   - arrays accept []any of the declared length.
func Convert(t Type, v any) (any, error) {
	if _, err := LayoutOf(t); err != nil {
		return nil, err
	}
	return convertValue(t, v, nil)
}

func convertValue(t Type, v any, path []string) (any, error) {
	switch t := t.(type) {
	case Scalar:
		return convertScalar(t, v, path)
	case *Struct:
		return convertStruct(t, v, path)
	case *Enum:
		return convertEnum(t, v, path)
	case *Array:
		items, ok := v.([]any)
		if !ok {
			return nil, typeMismatch(path, t, v)
		}
		if len(items) != t.Len {
			return nil, NewError(PhaseEncode, KindOutOfRange).
				Path(path...).
				Type(typeName(t)).
				Value(len(items)).
				Detail("array has %d elements, want %d", len(items), t.Len).
				Build()
		}
		out := make([]any, len(items))
		for i, item := range items {
			c, err := convertValue(t.Elem, item, pathWith(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	}
	return nil, malformed(path, t, "unsupported descriptor %T", t)
}

func convertStruct(s *Struct, v any, path []string) (any, error) {
	var m map[string]any
	switch x := v.(type) {
	case map[string]any:
		m = x
	case map[any]any:
		m = make(map[string]any, len(x))
		for k, fv := range x {
			ks, ok := k.(string)
			if !ok {
				return nil, NewError(PhaseEncode, KindTypeMismatch).
					Path(path...).
					Type(typeName(s)).
					Value(k).
					Detail("field name %v is not a string", k).
					Build()
			}
			m[ks] = fv
		}
	default:
		return nil, typeMismatch(path, s, v)
	}

	out := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		fp := pathWith(path, f.Name)
		fv, present := m[f.Name]
		if !present {
			return nil, NewError(PhaseEncode, KindFieldMissing).
				Path(fp...).
				Type(typeName(s)).
				Detail("required field %q not found", f.Name).
				Build()
		}
		c, err := convertValue(f.Type, fv, fp)
		if err != nil {
			return nil, err
		}
		out[f.Name] = c
	}
	if len(m) != len(s.Fields) {
		var unknown []string
		for k := range m {
			if s.FieldIndex(k) < 0 {
				unknown = append(unknown, k)
			}
		}
		slices.Sort(unknown)
		return nil, NewError(PhaseEncode, KindFieldUnknown).
			Path(pathWith(path, unknown[0])...).
			Type(typeName(s)).
			Detail("unknown field %q", unknown[0]).
			Build()
	}
	return out, nil
}

func convertEnum(e *Enum, v any, path []string) (any, error) {
	var (
		name    string
		payload any
		wrapped bool // payload of a named variant still carries its field wrapper
	)
	switch x := v.(type) {
	case EnumValue:
		name, payload = x.Name, x.Payload
	case string:
		name = x
	case map[string]any:
		if len(x) != 1 {
			return nil, enumShape(path, e, v)
		}
		for k, p := range x {
			name, payload, wrapped = k, p, true
		}
	case map[any]any:
		if len(x) != 1 {
			return nil, enumShape(path, e, v)
		}
		for k, p := range x {
			ks, ok := k.(string)
			if !ok {
				return nil, enumShape(path, e, v)
			}
			name, payload, wrapped = ks, p, true
		}
	default:
		return nil, typeMismatch(path, e, v)
	}

	i := e.VariantIndex(name)
	if i < 0 {
		return nil, NewError(PhaseEncode, KindFieldUnknown).
			Path(path...).
			Type(typeName(e)).
			Value(name).
			Detail("unknown variant %q", name).
			Build()
	}
	variant := e.Variants[i]
	vp := pathWith(path, variant.Name)

	if !variant.HasPayload() {
		if payload != nil {
			return nil, NewError(PhaseEncode, KindTypeMismatch).
				Path(vp...).
				Type(typeName(e)).
				Value(payload).
				Detail("variant %q carries no payload", variant.Name).
				Build()
		}
		return EnumValue{Name: variant.Name}, nil
	}
	if payload == nil {
		return nil, NewError(PhaseEncode, KindFieldMissing).
			Path(vp...).
			Type(typeName(e)).
			Detail("variant %q requires a %s payload", variant.Name, typeName(variant.Payload)).
			Build()
	}

	if wrapped && variant.Field != "" {
		inner, ok := payload.(map[string]any)
		if !ok || len(inner) != 1 {
			return nil, NewError(PhaseEncode, KindTypeMismatch).
				Path(vp...).
				Type(typeName(e)).
				Value(payload).
				Detail("variant %q expects {%s: value}", variant.Name, variant.Field).
				Build()
		}
		p, present := inner[variant.Field]
		if !present {
			return nil, NewError(PhaseEncode, KindFieldMissing).
				Path(pathWith(vp, variant.Field)...).
				Type(typeName(e)).
				Detail("required field %q not found", variant.Field).
				Build()
		}
		payload = p
	}

	c, err := convertValue(variant.Payload, payload, vp)
	if err != nil {
		return nil, err
	}
	return EnumValue{Name: variant.Name, Payload: c}, nil
}

func enumShape(path []string, e *Enum, v any) *Error {
	return NewError(PhaseEncode, KindTypeMismatch).
		Path(path...).
		Type(typeName(e)).
		Value(v).
		Detail("enum value must be a variant name or a single-key map").
		Build()
}

func convertScalar(s Scalar, v any, path []string) (any, error) {
	switch {
	case s == Bool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
		return nil, typeMismatch(path, s, v)
	case s.IsFloat():
		f, ok := toFloat(v)
		if !ok {
			return nil, typeMismatch(path, s, v)
		}
		if s == F32 {
			if !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
				return nil, outOfRange(path, s, v)
			}
			return float32(f), nil
		}
		return f, nil
	case s.IsUnsigned() || s.IsSigned():
		mag, neg, ok := toInteger(v)
		if !ok {
			return nil, typeMismatch(path, s, v)
		}
		if !fitsInteger(s, mag, neg) {
			return nil, outOfRange(path, s, v)
		}
		return integerOf(s, mag, neg), nil
	}
	return nil, malformed(path, s, "invalid scalar")
}

func outOfRange(path []string, s Scalar, v any) *Error {
	return NewError(PhaseEncode, KindOutOfRange).
		Path(path...).
		Type(s.String()).
		Value(v).
		Detail("value %v overflows %s", v, s).
		Build()
}

// toInteger splits an integral value into magnitude and sign.
func toInteger(v any) (mag uint64, neg bool, ok bool) {
	signed := func(i int64) (uint64, bool, bool) {
		if i < 0 {
			return uint64(-(i + 1)) + 1, true, true
		}
		return uint64(i), false, true
	}
	switch x := v.(type) {
	case int:
		return signed(int64(x))
	case int8:
		return signed(int64(x))
	case int16:
		return signed(int64(x))
	case int32:
		return signed(int64(x))
	case int64:
		return signed(x)
	case uint:
		return uint64(x), false, true
	case uint8:
		return uint64(x), false, true
	case uint16:
		return uint64(x), false, true
	case uint32:
		return uint64(x), false, true
	case uint64:
		return x, false, true
	case float32:
		return floatInteger(float64(x))
	case float64:
		return floatInteger(x)
	case string:
		s := strings.TrimSpace(x)
		if u, err := strconv.ParseUint(s, 0, 64); err == nil {
			return u, false, true
		}
		if i, err := strconv.ParseInt(s, 0, 64); err == nil {
			return signed(i)
		}
	}
	return 0, false, false
}

func floatInteger(f float64) (uint64, bool, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f || math.Abs(f) >= 1<<64 {
		return 0, false, false
	}
	if f < 0 {
		return uint64(-f), true, true
	}
	return uint64(f), false, true
}

func fitsInteger(s Scalar, mag uint64, neg bool) bool {
	bits := s.Bits()
	if s.IsUnsigned() {
		return (!neg || mag == 0) && mag <= uint64(math.MaxUint64)>>(64-bits)
	}
	limit := uint64(1) << (bits - 1)
	if neg {
		return mag <= limit
	}
	return mag < limit
}

func integerOf(s Scalar, mag uint64, neg bool) any {
	i := int64(mag)
	if neg {
		i = -i
	}
	switch s {
	case U8:
		return uint8(mag)
	case U16:
		return uint16(mag)
	case U32:
		return uint32(mag)
	case U64:
		return mag
	case I8:
		return int8(i)
	case I16:
		return int16(i)
	case I32:
		return int32(i)
	default:
		return i
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	mag, neg, ok := toInteger(v)
	if !ok {
		return 0, false
	}
	f := float64(mag)
	if neg {
		f = -f
	}
	return f, true
}
