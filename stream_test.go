package fixcodec

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func foo(a bool, b uint16) map[string]any {
	return map[string]any{"a": a, "b": b}
}

// failingWriter rejects every write.
type failingWriter struct{ err error }

func (w failingWriter) Write([]byte) (int, error) { return 0, w.err }

// --- Writer Test Suite ---

type WriterTestSuite struct {
	suite.Suite
	buf    *bytes.Buffer
	writer *Writer
}

// SetupTest runs before each test in the suite, ensuring a clean state.
func (s *WriterTestSuite) SetupTest() {
	s.buf = &bytes.Buffer{}
	var err error
	s.writer, err = NewWriter(s.buf, fooType)
	s.Require().NoError(err)
}

func (s *WriterTestSuite) TestConstructors() {
	s.T().Run("NilWriter", func(t *testing.T) {
		_, err := NewWriter(nil, fooType)
		assert.ErrorIs(t, err, ErrNilIO)
	})

	s.T().Run("MalformedType", func(t *testing.T) {
		_, err := NewWriter(&bytes.Buffer{}, NewEnum("E", F64))
		assert.ErrorIs(t, err, ErrMalformedDescriptor)
	})

	s.T().Run("ZeroSizeType", func(t *testing.T) {
		_, err := NewWriter(&bytes.Buffer{}, NewStruct("Empty"))
		assert.ErrorIs(t, err, ErrZeroSizeRecord)
	})

	s.T().Run("ReusesBufferedWriter", func(t *testing.T) {
		bw := bufio.NewWriterSize(&bytes.Buffer{}, 8192)
		w, err := NewWriterSize(bw, fooType, 1024)
		require.NoError(t, err)
		assert.Same(t, bw, w.w)
	})

	s.T().Run("RejectsSmallBufferedWriter", func(t *testing.T) {
		bw := bufio.NewWriterSize(&bytes.Buffer{}, 16)
		_, err := NewWriterSize(bw, fooType, 1024)
		assert.ErrorIs(t, err, ErrAlreadyBuffered)
	})
}

func (s *WriterTestSuite) TestRecords() {
	s.Require().NoError(s.writer.Write(foo(false, 0x100)))
	s.Require().NoError(s.writer.Write(foo(true, 0xffff)))
	s.Zero(s.buf.Len(), "records stay buffered until flushed")

	n, err := s.writer.Result()
	s.Require().NoError(err)
	s.EqualValues(6, n)
	s.EqualValues(2, s.writer.Records())
	s.Equal([]byte{0x00, 0x01, 0x00, 0x01, 0xff, 0xff}, s.buf.Bytes())
}

func (s *WriterTestSuite) TestEncodeErrorKeepsStream() {
	err := s.writer.Write(true)
	s.ErrorIs(err, ErrTypeMismatch)
	s.NoError(s.writer.Err(), "encode errors are not latched")

	s.Require().NoError(s.writer.Write(foo(true, 1)))
	n, err := s.writer.Result()
	s.Require().NoError(err)
	s.EqualValues(3, n)
	s.EqualValues(1, s.writer.Records())
}

func (s *WriterTestSuite) TestIOErrorIsLatched() {
	boom := errors.New("boom")
	w, err := NewWriterSize(failingWriter{boom}, fooType, 1)
	s.Require().NoError(err)

	s.ErrorIs(w.Write(foo(true, 1)), boom)
	s.ErrorIs(w.Write(foo(true, 2)), boom)
	s.ErrorIs(w.Flush(), boom)
	s.Zero(w.Records())

	_, err = w.Result()
	s.ErrorIs(err, boom)
}

func TestWriter(t *testing.T) {
	suite.Run(t, new(WriterTestSuite))
}

// --- Reader Test Suite ---

type ReaderTestSuite struct {
	suite.Suite
}

func (s *ReaderTestSuite) TestConstructors() {
	_, err := NewReader(nil, fooType)
	s.ErrorIs(err, ErrNilIO)

	_, err = NewReader(&bytes.Buffer{}, NewArray(U8, 0))
	s.ErrorIs(err, ErrZeroSizeRecord)

	br := bufio.NewReaderSize(&bytes.Buffer{}, 2*BUFFER_SIZE)
	r, err := NewReader(br, fooType)
	s.Require().NoError(err)
	s.Same(br, r.r)

	_, err = NewReaderSize(bufio.NewReaderSize(&bytes.Buffer{}, 16), fooType, 64)
	s.ErrorIs(err, ErrAlreadyBuffered)
}

func (s *ReaderTestSuite) TestRecords() {
	r, err := NewReader(bytes.NewReader(append(bytes.Clone(barBytes), barBytes...)), barType)
	s.Require().NoError(err)

	for i := 0; i < 2; i++ {
		v, err := r.Read()
		s.Require().NoError(err)
		s.Equal(barValue(), v)
	}

	_, err = r.Read()
	s.ErrorIs(err, io.EOF)
	s.True(r.IsEOF())
	s.EqualValues(2, r.Records())

	n, err := r.Result()
	s.NoError(err)
	s.EqualValues(26, n)
}

func (s *ReaderTestSuite) TestTruncatedRecord() {
	r, err := NewReader(bytes.NewReader([]byte{0x00, 0x00, 0x01, 0x01}), fooType)
	s.Require().NoError(err)

	_, err = r.Read()
	s.Require().NoError(err)

	_, err = r.Read()
	s.ErrorIs(err, ErrTruncatedData)
	s.False(r.IsEOF())

	// The error is latched.
	_, err = r.Read()
	s.ErrorIs(err, ErrTruncatedData)
	n, err := r.Result()
	s.ErrorIs(err, ErrTruncatedData)
	s.EqualValues(4, n)
}

func (s *ReaderTestSuite) TestDecodeErrorKeepsStream() {
	r, err := NewReader(bytes.NewReader([]byte{0x02, 0x00, 0x00, 0x01, 0x00, 0x05}), fooType)
	s.Require().NoError(err)

	_, err = r.Read()
	s.ErrorIs(err, ErrInvalidScalar)
	s.NoError(r.Err())

	v, err := r.Read()
	s.Require().NoError(err)
	s.Equal(foo(true, 5), v)
}

func (s *ReaderTestSuite) TestAll() {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, eenieType)
	s.Require().NoError(err)
	names := []string{"A", "B", "C", "D", "E"}
	for _, name := range names {
		s.Require().NoError(w.Write(Of(name)))
	}
	_, err = w.Result()
	s.Require().NoError(err)

	r, err := NewReader(&buf, eenieType)
	s.Require().NoError(err)
	var got []string
	for v, err := range r.All() {
		s.Require().NoError(err)
		got = append(got, v.(EnumValue).Name)
	}
	s.Equal(names, got)
	s.True(r.IsEOF())
}

func (s *ReaderTestSuite) TestAllStopsOnError() {
	r, err := NewReader(bytes.NewReader([]byte{0x00, 0xde, 0x00, 0x01, 0x00, 0xdf}), eenieType)
	s.Require().NoError(err)

	var seen int
	var last error
	for _, err := range r.All() {
		seen++
		last = err
	}
	s.Equal(2, seen)
	s.ErrorIs(last, ErrUnknownTag)
}

func TestReader(t *testing.T) {
	suite.Run(t, new(ReaderTestSuite))
}
