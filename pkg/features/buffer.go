package features

import (
	"fmt"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/model"
	"github.com/lumen-instruments/spectro-go/pkg/protocol"
	"github.com/lumen-instruments/spectro-go/pkg/protocol/obp"
)

// CapacityLimits bounds the on-device buffer capacity in records.
type CapacityLimits struct {
	Min uint32
	Max uint32
}

// DataBufferHelper manages the on-device record buffer.
type DataBufferHelper interface {
	Limits() CapacityLimits
	Capacity(l *protocol.Link) (uint32, error)
	SetCapacity(l *protocol.Link, n uint32) error
	Count(l *protocol.Link) (uint32, error)
	Clear(l *protocol.Link) error
	RemoveOldest(l *protocol.Link, n uint32) error
}

// DataBuffer manages the on-device ring buffer.
type DataBuffer struct {
	*model.Feature[DataBufferHelper]
}

// NewDataBuffer creates a data buffer feature.
func NewDataBuffer(bindings ...model.Binding[DataBufferHelper]) *DataBuffer {
	return &DataBuffer{model.NewFeature(model.FamilyDataBuffer, bindings...)}
}

// CapacityLimits returns the settable capacity range.
func (b *DataBuffer) CapacityLimits() (CapacityLimits, error) {
	h, _, err := b.Resolve()
	if err != nil {
		return CapacityLimits{}, err
	}
	return h.Limits(), nil
}

// Capacity returns the current capacity.
func (b *DataBuffer) Capacity() (uint32, error) {
	h, l, err := b.Resolve()
	if err != nil {
		return 0, err
	}
	return h.Capacity(l)
}

// SetCapacity changes the capacity. Values outside the limits are
// rejected without I/O and leave the capacity unchanged.
func (b *DataBuffer) SetCapacity(n uint32) error {
	h, l, err := b.Resolve()
	if err != nil {
		return err
	}
	if lim := h.Limits(); n < lim.Min || n > lim.Max {
		return fmt.Errorf("%w: capacity %d outside [%d, %d]", fault.ErrIllegalArgument, n, lim.Min, lim.Max)
	}
	return h.SetCapacity(l, n)
}

// Count returns the number of buffered records.
func (b *DataBuffer) Count() (uint32, error) {
	h, l, err := b.Resolve()
	if err != nil {
		return 0, err
	}
	return h.Count(l)
}

// Clear discards every buffered record.
func (b *DataBuffer) Clear() error {
	h, l, err := b.Resolve()
	if err != nil {
		return err
	}
	return h.Clear(l)
}

// RemoveOldest discards the n oldest records.
func (b *DataBuffer) RemoveOldest(n uint32) error {
	h, l, err := b.Resolve()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: remove 0 records", fault.ErrIllegalArgument)
	}
	return h.RemoveOldest(l, n)
}

type obpDataBuffer struct {
	limits CapacityLimits
}

// OBPDataBuffer returns the OBP buffer helper. Capacity limits are read
// on open.
func OBPDataBuffer() DataBufferHelper {
	return &obpDataBuffer{}
}

// Initialize caches the capacity limits.
func (h *obpDataBuffer) Initialize(l *protocol.Link) error {
	lo, err := obp.BufferCapacityMin().Execute(l)
	if err != nil {
		return err
	}
	hi, err := obp.BufferCapacityMax().Execute(l)
	if err != nil {
		return err
	}
	if lo > hi {
		return fmt.Errorf("%w: capacity limits [%d, %d]", fault.ErrFormat, lo, hi)
	}
	h.limits = CapacityLimits{Min: lo, Max: hi}
	return nil
}

func (h *obpDataBuffer) Limits() CapacityLimits { return h.limits }

func (h *obpDataBuffer) Capacity(l *protocol.Link) (uint32, error) {
	return obp.BufferCapacity().Execute(l)
}

func (h *obpDataBuffer) SetCapacity(l *protocol.Link, n uint32) error {
	_, err := obp.SetBufferCapacity(n).Execute(l)
	return err
}

func (h *obpDataBuffer) Count(l *protocol.Link) (uint32, error) {
	return obp.BufferCount().Execute(l)
}

func (h *obpDataBuffer) Clear(l *protocol.Link) error {
	_, err := obp.ClearBuffer().Execute(l)
	return err
}

func (h *obpDataBuffer) RemoveOldest(l *protocol.Link, n uint32) error {
	_, err := obp.RemoveOldest(n).Execute(l)
	return err
}
