// Package protocoltest provides in-memory buses and helpers for exchange
// tests.
package protocoltest

import (
	"fmt"

	"github.com/lumen-instruments/spectro-go/pkg/bus"
	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/protocol"
	"github.com/lumen-instruments/spectro-go/pkg/transport"
)

// Helper is a TransferHelper that records sends and serves queued bytes.
//
// Responses are consumed in order; a single response may be read across
// several Receive calls. When Respond is set it is called for every send
// and its result is queued.
type Helper struct {
	Sent      [][]byte
	Responses [][]byte
	Respond   func(request []byte) []byte

	pending []byte
}

// Compile-time interface satisfaction check.
var _ bus.TransferHelper = (*Helper)(nil)

// Queue appends responses.
func (h *Helper) Queue(responses ...[]byte) {
	h.Responses = append(h.Responses, responses...)
}

// Send records p.
func (h *Helper) Send(p []byte) (int, error) {
	h.Sent = append(h.Sent, append([]byte(nil), p...))
	if h.Respond != nil {
		if r := h.Respond(p); r != nil {
			h.Responses = append(h.Responses, r)
		}
	}
	return len(p), nil
}

// Receive fills p from the queue.
func (h *Helper) Receive(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(h.pending) == 0 {
			if len(h.Responses) == 0 {
				break
			}
			h.pending = h.Responses[0]
			h.Responses = h.Responses[1:]
			continue
		}
		c := copy(p[n:], h.pending)
		h.pending = h.pending[c:]
		n += c
	}
	switch {
	case n == len(p):
		return n, nil
	case n == 0:
		return 0, fmt.Errorf("%w: no data queued", fault.ErrTimeout)
	default:
		return n, fmt.Errorf("%w: %w: %d of %d bytes", fault.ErrFormat, transport.ErrFrameTruncated, n, len(p))
	}
}

// Buffered reports how many queued bytes remain unread.
func (h *Helper) Buffered() int {
	n := len(h.pending)
	for _, r := range h.Responses {
		n += len(r)
	}
	return n
}

// Bus is an in-memory bus serving one helper for every hint.
type Bus struct {
	H      bus.TransferHelper
	Closed bool

	// Hints records every hint requested, in order.
	Hints []bus.Hint
}

// Compile-time interface satisfaction check.
var _ bus.Bus = (*Bus)(nil)

func (b *Bus) Kind() bus.Kind               { return bus.KindUSB }
func (b *Bus) Locator() bus.Locator         { return bus.USBLocator{Vendor: 0xFFFF, Product: 1} }
func (b *Bus) SetLocator(bus.Locator) error { return nil }
func (b *Bus) Open() error                  { b.Closed = false; return nil }
func (b *Bus) Close() error                 { b.Closed = true; return nil }
func (b *Bus) IsOpen() bool                 { return !b.Closed }
func (b *Bus) SessionID() string            { return "test-session" }
func (b *Bus) SetDeviceID(uint32)           {}
func (b *Bus) Prober() (bus.Prober, bool)   { return nil, false }

func (b *Bus) Helper(h bus.Hint) (bus.TransferHelper, error) {
	if b.Closed {
		return nil, fault.ErrNotOpen
	}
	b.Hints = append(b.Hints, h)
	return b.H, nil
}

// Link returns an open link speaking p over a fresh helper.
func Link(p protocol.Protocol) (*protocol.Link, *Helper, *Bus) {
	h := &Helper{}
	b := &Bus{H: h}
	return &protocol.Link{Protocol: p, Bus: b}, h, b
}
