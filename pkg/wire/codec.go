package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
)

// ErrShortBuffer indicates a decode ran past the end of its input.
var ErrShortBuffer = errors.New("short buffer")

// Writer appends little-endian fields to a byte slice.
type Writer struct {
	buf []byte
}

// NewWriter creates a writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// U8 appends one byte.
func (w *Writer) U8(v uint8) {
	w.buf = append(w.buf, v)
}

// U16 appends a little-endian uint16.
func (w *Writer) U16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// U32 appends a little-endian uint32.
func (w *Writer) U32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// U64 appends a little-endian uint64.
func (w *Writer) U64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// F32 appends an IEEE-754 single as little-endian bits.
func (w *Writer) F32(v float32) {
	w.U32(math.Float32bits(v))
}

// F64 appends an IEEE-754 double as little-endian bits.
func (w *Writer) F64(v float64) {
	w.U64(math.Float64bits(v))
}

// Raw appends p unchanged.
func (w *Writer) Raw(p []byte) {
	w.buf = append(w.buf, p...)
}

// Zeros appends n zero bytes.
func (w *Writer) Zeros(n int) {
	for i := 0; i < n; i++ {
		w.buf = append(w.buf, 0)
	}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the encoded buffer. The writer keeps ownership; callers
// that retain the slice must not write further.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Reader decodes little-endian fields from a byte slice. The first out of
// bounds access sets a sticky error and every later read returns zero.
type Reader struct {
	buf []byte
	off int
	err error
}

// NewReader creates a reader over p.
func NewReader(p []byte) *Reader {
	return &Reader{buf: p}
}

// take returns the next n bytes or records a short buffer error.
func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.buf) {
		r.err = fmt.Errorf("%w: %w: need %d bytes at offset %d, have %d",
			fault.ErrFormat, ErrShortBuffer, n, r.off, len(r.buf)-r.off)
		return nil
	}
	p := r.buf[r.off : r.off+n]
	r.off += n
	return p
}

// U8 reads one byte.
func (r *Reader) U8() uint8 {
	p := r.take(1)
	if p == nil {
		return 0
	}
	return p[0]
}

// U16 reads a little-endian uint16.
func (r *Reader) U16() uint16 {
	p := r.take(2)
	if p == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(p)
}

// U32 reads a little-endian uint32.
func (r *Reader) U32() uint32 {
	p := r.take(4)
	if p == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(p)
}

// U64 reads a little-endian uint64.
func (r *Reader) U64() uint64 {
	p := r.take(8)
	if p == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(p)
}

// F32 reads an IEEE-754 single.
func (r *Reader) F32() float32 {
	return math.Float32frombits(r.U32())
}

// F64 reads an IEEE-754 double.
func (r *Reader) F64() float64 {
	return math.Float64frombits(r.U64())
}

// Raw returns the next n bytes without copying.
func (r *Reader) Raw(n int) []byte {
	return r.take(n)
}

// Skip advances past n bytes.
func (r *Reader) Skip(n int) {
	r.take(n)
}

// Offset returns the number of bytes consumed.
func (r *Reader) Offset() int {
	return r.off
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// Err returns the first decode error, if any.
func (r *Reader) Err() error {
	return r.err
}

// U16s decodes n little-endian uint16 values from p into a new slice.
// Used for pixel arrays, which dominate response sizes.
func U16s(p []byte, n int) ([]uint16, error) {
	if len(p) < 2*n {
		return nil, fmt.Errorf("%w: %w: %d pixels need %d bytes, have %d",
			fault.ErrFormat, ErrShortBuffer, n, 2*n, len(p))
	}
	out := make([]uint16, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(p[2*i:])
	}
	return out, nil
}

// PutU16s encodes values little-endian into a new slice.
func PutU16s(values []uint16) []byte {
	out := make([]byte, 2*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint16(out[2*i:], v)
	}
	return out
}
