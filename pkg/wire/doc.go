// Package wire provides the bounds-checked little-endian codec used by every
// exchange in the driver stack.
//
// Both instrument protocol families encode multi-byte numeric fields in
// little-endian order. Writer appends fields to a growing buffer; Reader
// consumes them with a sticky error so a decoder can read a whole layout and
// check Err once at the end:
//
//	r := wire.NewReader(resp)
//	opcode := r.U8()
//	value := r.U32()
//	if err := r.Err(); err != nil {
//	    return err // wraps fault.ErrFormat
//	}
//
// Running past the end of the buffer is always reported as a format error,
// never as zero values silently accepted.
package wire
