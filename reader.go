package fixcodec

import (
	"bufio"
	"fmt"
	"io"
	"iter"
)

// Reader reads back-to-back fixed-size records of one type from a stream.
// It tracks the first I/O error; subsequent reads return it again.
type Reader struct {
	r       *bufio.Reader
	t       Type
	buf     []byte
	count   int64 // total bytes read
	records int64
	err     error // first I/O error encountered
}

// NewReaderSize creates a new Reader of records of t with a specified buffer size.
// Like NewWriterSize, it refuses to double-buffer a smaller *bufio.Reader.
func NewReaderSize(r io.Reader, t Type, size int) (*Reader, error) {
	if r == nil {
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
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReaderSize(r, size)
	} else if br.Size() < size {
		return nil, ErrAlreadyBuffered
	}
	return &Reader{r: br, t: t, buf: make([]byte, l.Size)}, nil
}

// NewReader creates a new Reader with a default buffer size.
func NewReader(r io.Reader, t Type) (*Reader, error) {
	return NewReaderSize(r, t, 0)
}

// Read decodes the next record. It returns io.EOF when the stream ends
// cleanly on a record boundary. A decode error consumes the record but
// leaves the stream usable.
func (r *Reader) Read() (any, error) {
	if r.err != nil {
		return nil, r.err
	}
	n, err := io.ReadFull(r.r, r.buf)
	r.count += int64(n)
	if err != nil {
		if err == io.ErrUnexpectedEOF {
			// To provide a more specific error for callers;
			// a partial record is different from a clean end-of-stream.
			err = fmt.Errorf("%w: record %d has %d of %d bytes", ErrTruncatedData, r.records, n, len(r.buf))
		}
		r.err = err
		return nil, err
	}
	r.records++
	return Decode(r.t, r.buf)
}

// All iterates over the remaining records. Iteration stops after the first
// error, which is yielded; a clean end of stream yields nothing.
func (r *Reader) All() iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		for {
			v, err := r.Read()
			if err == io.EOF {
				return
			}
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}

func (r *Reader) Count() int64   { return r.count }
func (r *Reader) Records() int64 { return r.records }
func (r *Reader) Err() error     { return r.err }
func (r *Reader) IsEOF() bool    { return r.err == io.EOF }

// Result returns the total bytes read and the final error state.
// A clean end of stream is not an error.
func (r *Reader) Result() (int64, error) {
	if r.err == io.EOF {
		return r.count, nil
	}
	return r.count, r.err
}
