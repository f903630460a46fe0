package fixcodec

import (
	"encoding/binary"
	"fmt"
)

var (
	BE = binary.BigEndian
	// Order is the wire byte order of every integer, float and enum tag.
	Order = BE
)

// BUFFER_SIZE is the default buffer size of record streams.
const BUFFER_SIZE = 4096

func Ptr[T any](v T) *T { return &v } // Ptr is a helper to create a pointer to a value, handy for explicit discriminants.

// CheckBufferNotZeros verifies that every byte of b is zero.
// Decoders use it to reject data left over after a fixed-size value.
func CheckBufferNotZeros(b []byte) error {
	for i, c := range b {
		if c != 0 {
			return fmt.Errorf("%w: found non-zero byte 0x%02x at offset %d", ErrTrailingData, c, i)
		}
	}
	return nil
}
