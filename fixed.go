package fixcodec

import (
	"io"
)

// Fixed binds a value to its type descriptor and provides a `Codec`
// implementation for it. The layout of Type is computed once and memoized.
//
// After a successful UnmarshalBinary or ReadFrom, Value holds the decoded
// value; on failure it is left untouched.
type Fixed struct {
	Type  Type
	Value any
}

// Statically assert that Fixed implements Codec.
var _ Codec = (*Fixed)(nil)

func NewFixed(t Type, v any) *Fixed {
	return &Fixed{Type: t, Value: v}
}

// Size returns the fixed size of the encoding in bytes, or 0 if Type is malformed.
func (c *Fixed) Size() int {
	size, err := SizeOf(c.Type)
	if err != nil {
		return 0
	}
	return size
}

// MarshalBinary implements the standard `encoding.BinaryMarshaler` interface.
// Note: This method allocates a new byte slice. For performance-critical paths,
// use `MarshalTo` instead.
func (c *Fixed) MarshalBinary() ([]byte, error) {
	return Encode(c.Type, c.Value)
}

// UnmarshalBinary implements the standard `encoding.BinaryUnmarshaler` interface.
// Bytes beyond the fixed size must be zero.
func (c *Fixed) UnmarshalBinary(data []byte) error {
	v, err := Decode(c.Type, data)
	if err != nil {
		return err
	}
	c.Value = v
	return nil
}

// ReadFrom implements `io.ReaderFrom`. It consumes exactly Size bytes.
func (c *Fixed) ReadFrom(r io.Reader) (int64, error) {
	return ReadFromGeneric(c, r)
}

// WriteTo implements `io.WriterTo`.
func (c *Fixed) WriteTo(w io.Writer) (int64, error) {
	return WriteToGeneric(c, w)
}

// MarshalTo marshals the value into the provided slice `p`.
// This is the most performant marshalling option as it avoids memory allocation.
func (c *Fixed) MarshalTo(p []byte) (int, error) {
	return EncodeTo(p, c.Type, c.Value)
}
