package fixcodec

import (
	"encoding"
	"fmt"
	"io"
)

// ReadFromGeneric provides a generic `io.ReaderFrom` for fixed-size types.
// It reads exactly v.Size() bytes and hands them to UnmarshalBinary, so the
// stream is never read past the end of the value.
func ReadFromGeneric[T interface {
	Sizer
	encoding.BinaryUnmarshaler
}](v T, r io.Reader) (int64, error) {
	buf := make([]byte, v.Size())
	n, err := io.ReadFull(r, buf)
	if err != nil {
		if err == io.ErrUnexpectedEOF {
			return int64(n), fmt.Errorf("%w: expected %d bytes, but read %d", ErrTruncatedData, len(buf), n)
		}
		return int64(n), err
	}
	return int64(n), v.UnmarshalBinary(buf)
}

// WriteToGeneric provides a generic `io.WriterTo` implementation.
// It adapts a type that can marshal to a byte slice to the streaming io.Writer interface.
func WriteToGeneric[T encoding.BinaryMarshaler](v T, w io.Writer) (int64, error) {
	buf, err := v.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(buf)
	if err != nil {
		return int64(n), err
	}
	if n < len(buf) {
		return int64(n), io.ErrShortWrite
	}
	return int64(n), nil
}

// DecodeAs decodes data as t and asserts the result to T, e.g.
// DecodeAs[EnumValue] or DecodeAs[map[string]any].
func DecodeAs[T any](t Type, data []byte) (T, error) {
	var zero T
	v, err := Decode(t, data)
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, NewError(PhaseDecode, KindTypeMismatch).
			Type(typeName(t)).
			Value(v).
			Detail("decoded %T, want %T", v, zero).
			Build()
	}
	return out, nil
}

// MustLayout is like LayoutOf but panics if t is malformed.
// It simplifies safe initialization of package-level descriptors.
func MustLayout(t Type) *Layout {
	l, err := LayoutOf(t)
	if err != nil {
		panic(err)
	}
	return l
}
