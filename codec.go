// Package fixcodec encodes values of runtime type descriptors into a
// fixed-width, big-endian binary form and decodes them back.
//
// Every descriptor (Scalar, Struct, Enum, Array) has a size known before
// any value is seen. Enums carry a tag of their representation width
// followed by a payload region as wide as their largest variant, so all
// values of a type occupy the same number of bytes.
package fixcodec

import (
	"encoding"
	"io"
)

// Sizer reports the fixed encoded width of a value.
type Sizer interface {
	Size() int
}

// Marshaler encodes a value into exactly Size() bytes.
type Marshaler interface {
	encoding.BinaryMarshaler
	io.WriterTo

	// MarshalTo encodes into buf, returning io.ErrShortBuffer if buf is
	// shorter than Size().
	MarshalTo(buf []byte) (int, error)
}

// Unmarshaler decodes a value from exactly Size() bytes.
type Unmarshaler interface {
	encoding.BinaryUnmarshaler
	// ReadFrom consumes exactly one encoding from a stream.
	io.ReaderFrom
}

// Codec is a self-sizing binary encoder and decoder.
type Codec interface {
	Sizer
	Marshaler
	Unmarshaler
}
