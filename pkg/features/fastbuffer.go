package features

import (
	"fmt"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/model"
	"github.com/lumen-instruments/spectro-go/pkg/protocol"
	"github.com/lumen-instruments/spectro-go/pkg/protocol/obp"
)

// MaxBatch bounds the records requested by one Begin.
const MaxBatch = 1 << 16

// FastBufferHelper runs pipelined acquisition.
type FastBufferHelper interface {
	Begin(l *protocol.Link, n uint32) error
	Retrieve(l *protocol.Link, max uint32) ([]byte, error)
}

// FastBuffer captures batches of records on the device and retrieves them
// later. Begin does not wait for the batch; Retrieve blocks until records
// are available or the transport times out with fault.ErrTimeout, which is
// safe to retry.
type FastBuffer struct {
	*model.Feature[FastBufferHelper]
	pixels int
}

// NewFastBuffer creates a fast buffer feature for pixels-wide records.
func NewFastBuffer(pixels int, bindings ...model.Binding[FastBufferHelper]) *FastBuffer {
	return &FastBuffer{
		Feature: model.NewFeature(model.FamilyFastBuffer, bindings...),
		pixels:  pixels,
	}
}

// RecordSize returns the size of one record in bytes.
func (f *FastBuffer) RecordSize() int {
	return obp.RecordSize(f.pixels)
}

// ActiveRecordSize is RecordSize for an open device. It fails like every
// other call once the device is closed.
func (f *FastBuffer) ActiveRecordSize() (int, error) {
	if _, _, err := f.Resolve(); err != nil {
		return 0, err
	}
	return f.RecordSize(), nil
}

// Pixels returns the record width.
func (f *FastBuffer) Pixels() int {
	return f.pixels
}

// Begin starts capturing n records.
func (f *FastBuffer) Begin(n int) error {
	h, l, err := f.Resolve()
	if err != nil {
		return err
	}
	if n < 1 || n > MaxBatch {
		return fmt.Errorf("%w: batch of %d records", fault.ErrIllegalArgument, n)
	}
	return h.Begin(l, uint32(n))
}

// Retrieve copies as many complete records as fit into out and returns
// their count. Trailing partial bytes are discarded. out must hold at
// least one record.
func (f *FastBuffer) Retrieve(out []byte) (int, error) {
	h, l, err := f.Resolve()
	if err != nil {
		return 0, err
	}
	rs := f.RecordSize()
	if len(out) < rs {
		return 0, fmt.Errorf("%w: buffer of %d bytes holds no %d-byte record", fault.ErrIllegalArgument, len(out), rs)
	}
	data, err := h.Retrieve(l, uint32(len(out)/rs))
	if err != nil {
		return 0, err
	}
	count, discarded := obp.WholeRecords(len(data), len(out), rs)
	copy(out, data[:count*rs])
	l.Metrics.Records(count, discarded)
	return count, nil
}

// Records splits the first count records of p and verifies each.
func (f *FastBuffer) Records(p []byte, count int) ([]obp.Record, error) {
	rs := f.RecordSize()
	if count*rs > len(p) {
		return nil, fmt.Errorf("%w: %d records need %d bytes, have %d", fault.ErrIllegalArgument, count, count*rs, len(p))
	}
	out := make([]obp.Record, count)
	for i := range out {
		r, err := obp.ParseRecord(p[i*rs:(i+1)*rs], f.pixels)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out[i] = r
	}
	return out, nil
}

type obpFastBuffer struct{}

// OBPFastBuffer returns the OBP fast buffer helper.
func OBPFastBuffer() FastBufferHelper { return obpFastBuffer{} }

func (obpFastBuffer) Begin(l *protocol.Link, n uint32) error {
	_, err := obp.BeginBatch(n).Execute(l)
	return err
}

func (obpFastBuffer) Retrieve(l *protocol.Link, max uint32) ([]byte, error) {
	return obp.RetrieveBatch(max).Execute(l)
}
