package fixcodec

import (
	"bufio"
	"io"
)

// Writer writes back-to-back fixed-size records of one type to a stream.
// It wraps bufio.Writer and tracks the first I/O error. After an I/O error,
// all subsequent writes become no-ops.
type Writer struct {
	w       *bufio.Writer
	t       Type
	buf     []byte // scratch record, reused across writes
	count   int64  // total bytes written
	records int64
	err     error // first I/O error encountered
}

// NewWriterSize creates a new Writer of records of t with a specified buffer size.
// A *bufio.Writer that is already large enough is used as is; a smaller one
// is rejected with ErrAlreadyBuffered.
func NewWriterSize(w io.Writer, t Type, size int) (*Writer, error) {
	if w == nil {
		return nil, ErrNilIO
	}
	l, err := LayoutOf(t)
	if err != nil {
		return nil, err
	}
	if l.Size == 0 {
		return nil, ErrZeroSizeRecord
	}

	if size <= 0 {
		size = BUFFER_SIZE
	}
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriterSize(w, size)
	} else if bw.Size() < size {
		// prevent unpredictable double-buffering.
		return nil, ErrAlreadyBuffered
	}
	return &Writer{w: bw, t: t, buf: make([]byte, l.Size)}, nil
}

// NewWriter creates a new Writer with a default buffer size.
func NewWriter(w io.Writer, t Type) (*Writer, error) {
	return NewWriterSize(w, t, 0)
}

// Write encodes v and appends it to the stream. An encoding error is
// returned without touching the stream, so later records stay aligned.
func (w *Writer) Write(v any) error {
	if w.err != nil {
		return w.err
	}
	if _, err := EncodeTo(w.buf, w.t, v); err != nil {
		return err
	}
	n, err := w.w.Write(w.buf)
	w.count += int64(n)
	w.setError(err)
	if w.err == nil {
		w.records++
	}
	return w.err
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.setError(w.w.Flush())
	return w.err
}

func (w *Writer) Count() int64   { return w.count }
func (w *Writer) Records() int64 { return w.records }
func (w *Writer) Err() error     { return w.err }

// setError records the first non-nil error.
// This preserves the root cause of a failure chain instead of a later,
// less relevant error.
func (w *Writer) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Result flushes the buffer and returns the final count and error state.
func (w *Writer) Result() (int64, error) {
	w.Flush()
	return w.count, w.err
}
