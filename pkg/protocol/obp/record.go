package obp

import (
	"fmt"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/wire"
)

// Buffered record layout.
const (
	RecordMetadataSize = 64
	RecordChecksumSize = 4
)

// RecordSize returns the size of one buffered record for pixels pixels.
func RecordSize(pixels int) int {
	return RecordMetadataSize + 2*pixels + RecordChecksumSize
}

// Record is one buffered spectrum.
type Record struct {
	// Sequence counts records since the buffer was last cleared.
	Sequence uint32

	// TickMicros is the device clock at the end of integration.
	TickMicros uint64

	IntegrationMicros uint32
	Pixels            []uint16
}

// EncodeRecord serializes r.
func EncodeRecord(r Record) []byte {
	w := wire.NewWriter(RecordSize(len(r.Pixels)))
	w.U32(r.Sequence)
	w.U64(r.TickMicros)
	w.U32(r.IntegrationMicros)
	w.U16(uint16(len(r.Pixels)))
	w.Zeros(RecordMetadataSize - w.Len())
	for _, px := range r.Pixels {
		w.U16(px)
	}
	w.U32(recordSum(w.Bytes()))
	return w.Bytes()
}

// ParseRecord decodes one record of pixels pixels and verifies its
// checksum.
func ParseRecord(p []byte, pixels int) (Record, error) {
	if len(p) != RecordSize(pixels) {
		return Record{}, fmt.Errorf("%w: record is %d bytes, expected %d", fault.ErrFormat, len(p), RecordSize(pixels))
	}
	r := wire.NewReader(p)
	rec := Record{
		Sequence:          r.U32(),
		TickMicros:        r.U64(),
		IntegrationMicros: r.U32(),
	}
	if n := int(r.U16()); n != pixels {
		return Record{}, fmt.Errorf("%w: record holds %d pixels, expected %d", fault.ErrFormat, n, pixels)
	}
	r.Skip(RecordMetadataSize - r.Offset())
	body := r.Raw(2 * pixels)
	sum := r.U32()
	if err := r.Err(); err != nil {
		return Record{}, err
	}
	if want := recordSum(p[:len(p)-RecordChecksumSize]); sum != want {
		return Record{}, fmt.Errorf("%w: record %d checksum %#x, computed %#x", fault.ErrFormat, rec.Sequence, sum, want)
	}
	px, err := wire.U16s(body, pixels)
	if err != nil {
		return Record{}, err
	}
	rec.Pixels = px
	return rec, nil
}

// recordSum is the byte sum of everything before the checksum word.
func recordSum(p []byte) uint32 {
	var s uint32
	for _, b := range p {
		s += uint32(b)
	}
	return s
}

// WholeRecords returns how many complete records of size recordSize fit
// in both n received bytes and a buffer of capacity bytes, and how many
// received bytes are left over.
func WholeRecords(n, capacity, recordSize int) (count, discarded int) {
	if recordSize <= 0 {
		return 0, n
	}
	count = min(n, capacity) / recordSize
	return count, n - count*recordSize
}
