package bus

import (
	"time"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/log"
	"github.com/lumen-instruments/spectro-go/pkg/metrics"
)

// MaxLogFrameDataSize caps the bytes copied into a capture event. Raw
// spectra and buffer batches run to hundreds of kilobytes.
const MaxLogFrameDataSize = 4096

// Instrumented records every transfer of an inner helper to the protocol
// capture log and to metrics.
type Instrumented struct {
	inner   TransferHelper
	hint    Hint
	kind    Kind
	session *Session
	word    int
}

func newInstrumented(inner TransferHelper, hint Hint, kind Kind, session *Session, word int) *Instrumented {
	return &Instrumented{inner: inner, hint: hint, kind: kind, session: session, word: word}
}

func (h *Instrumented) Send(p []byte) (int, error) {
	n, err := h.inner.Send(p)
	h.record(p[:n], len(p), log.DirectionOut, err)
	return n, err
}

func (h *Instrumented) Receive(p []byte) (int, error) {
	n, err := h.inner.Receive(p)
	h.record(p[:n], len(p), log.DirectionIn, err)
	return n, err
}

func (h *Instrumented) record(data []byte, requested int, dir log.Direction, err error) {
	s := h.session
	bus := h.kind.String()
	if err != nil {
		s.Metrics.TransferError(bus, fault.KindOf(err).String())
		s.Capture.Log(log.Event{
			Timestamp: time.Now(),
			SessionID: s.ID,
			Direction: dir,
			Layer:     log.LayerTransport,
			Category:  log.CategoryError,
			DeviceID:  s.DeviceID,
			Bus:       bus,
			Location:  s.Location,
			Error: &log.ErrorEventData{
				Layer:   log.LayerTransport,
				Message: err.Error(),
				Kind:    fault.KindOf(err).String(),
				Context: h.hint.String(),
			},
		})
		return
	}

	s.Metrics.Transfer(bus, dir.String(), len(data))
	padded := 0
	if h.word > 1 {
		if r := requested % h.word; r != 0 {
			padded = requested + h.word - r
		}
	}

	frame := data
	truncated := false
	if len(frame) > MaxLogFrameDataSize {
		frame = frame[:MaxLogFrameDataSize]
		truncated = true
	}
	s.Capture.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: s.ID,
		Direction: dir,
		Layer:     log.LayerTransport,
		Category:  log.CategoryMessage,
		DeviceID:  s.DeviceID,
		Bus:       bus,
		Location:  s.Location,
		Frame: &log.FrameEvent{
			Size:      len(data),
			Padded:    padded,
			Hint:      h.hint.String(),
			Data:      append([]byte(nil), frame...),
			Truncated: truncated,
		},
	})
}

// Session carries per-open identity and sinks shared by a bus's helpers.
type Session struct {
	// ID is a fresh UUID for every open.
	ID string

	// DeviceID is the registry ID of the owning device.
	DeviceID uint32

	// Location is the locator in display form.
	Location string

	Capture log.Logger
	Metrics *metrics.Collector
}

// Compile-time interface satisfaction check.
var _ TransferHelper = (*Instrumented)(nil)
