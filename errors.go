package fixcodec

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNilIO indicates that NewReader/NewWriter was called with an nil interface
	ErrNilIO = errors.New("fixcodec: NewReader/NewWriter called with a nil io.Reader/io.Writer")

	// ErrAlreadyBuffered indicates that NewReader/NewWriter was given a bufio reader or
	// writer smaller than the requested size, which would double-buffer the stream.
	ErrAlreadyBuffered = errors.New("fixcodec: reader or writer is already buffered")

	// ErrTrailingData is returned by Decode when non-zero bytes are found
	// after the end of the fixed-size encoding.
	ErrTrailingData = errors.New("fixcodec: non-zero trailing data found after decoding")

	// ErrTruncatedData indicates that the input is shorter than the layout size of the type.
	ErrTruncatedData = errors.New("fixcodec: truncated data")

	// ErrZeroSizeRecord indicates a record stream over a type that encodes to zero bytes,
	// where records cannot be told apart.
	ErrZeroSizeRecord = errors.New("fixcodec: record stream of a zero-size type")
)

// Phase indicates where the error occurred.
type Phase string

const (
	PhaseLayout Phase = "layout" // descriptor validation and layout computation
	PhaseEncode Phase = "encode" // value to bytes
	PhaseDecode Phase = "decode" // bytes to value
	PhaseSchema Phase = "schema" // schema document resolution
)

// ErrorKind categorizes the error.
type ErrorKind string

const (
	KindMalformedDescriptor ErrorKind = "malformed_descriptor"
	KindInvalidScalar       ErrorKind = "invalid_scalar"
	KindUnknownTag          ErrorKind = "unknown_tag"
	KindTypeMismatch        ErrorKind = "type_mismatch"
	KindFieldMissing        ErrorKind = "field_missing"
	KindFieldUnknown        ErrorKind = "field_unknown"
	KindOutOfRange          ErrorKind = "out_of_range"
)

// Kind sentinels, usable with errors.Is regardless of phase.
var (
	ErrMalformedDescriptor = &Error{Kind: KindMalformedDescriptor}
	ErrInvalidScalar       = &Error{Kind: KindInvalidScalar}
	ErrUnknownTag          = &Error{Kind: KindUnknownTag}
	ErrTypeMismatch        = &Error{Kind: KindTypeMismatch}
	ErrFieldMissing        = &Error{Kind: KindFieldMissing}
	ErrFieldUnknown        = &Error{Kind: KindFieldUnknown}
	ErrOutOfRange          = &Error{Kind: KindOutOfRange}
)

// Error is the structured error returned by layout, encode and decode operations.
// Errors raised by a nested field are created once, with the full field path,
// and returned unchanged by every enclosing struct, array and enum.
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   ErrorKind
	Type   string
	Detail string
	Path   []string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("fixcodec: ")
	if e.Phase != "" {
		b.WriteString(string(e.Phase))
		b.WriteByte(' ')
	}
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}
	if e.Type != "" {
		b.WriteString(" (")
		b.WriteString(e.Type)
		b.WriteByte(')')
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
// A target with an empty Phase matches every phase.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// NewError creates a new error builder
func NewError(phase Phase, kind ErrorKind) *Builder {
	return &Builder{err: Error{Phase: phase, Kind: kind}}
}

// Path sets the field path. The slice is copied.
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = append([]string(nil), path...)
	return b
}

// Type sets the descriptor name the error refers to.
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

func malformed(path []string, t Type, msg string, args ...any) *Error {
	return NewError(PhaseLayout, KindMalformedDescriptor).Path(path...).Type(typeName(t)).Detail(msg, args...).Build()
}

func typeMismatch(path []string, t Type, v any) *Error {
	return NewError(PhaseEncode, KindTypeMismatch).
		Path(path...).
		Type(typeName(t)).
		Value(v).
		Detail("cannot encode %T", v).
		Build()
}

// invalidBool is the InvalidScalar error raised for a boolean byte outside {0, 1}.
func invalidBool(path []string, b byte) *Error {
	return NewError(PhaseDecode, KindInvalidScalar).
		Path(path...).
		Type(Bool.String()).
		Value(b).
		Detail("invalid boolean byte 0x%02x", b).
		Build()
}

func unknownTag(path []string, e *Enum, tag uint64) *Error {
	return NewError(PhaseDecode, KindUnknownTag).
		Path(path...).
		Type(typeName(e)).
		Value(tag).
		Detail("tag 0x%x matches no variant", tag).
		Build()
}

// pathWith returns path extended by name without aliasing the caller's backing array.
func pathWith(path []string, name string) []string {
	p := make([]string, len(path), len(path)+1)
	copy(p, path)
	return append(p, name)
}
