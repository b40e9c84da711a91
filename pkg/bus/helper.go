package bus

import (
	"errors"
	"fmt"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/transport"
)

// TransferHelper moves whole buffers across one bus binding.
type TransferHelper interface {
	// Send writes all of p.
	Send(p []byte) (int, error)

	// Receive fills p completely. It returns an error wrapping
	// fault.ErrTimeout when nothing arrived, and one wrapping
	// fault.ErrFormat when the peer sent fewer than len(p) bytes.
	Receive(p []byte) (int, error)
}

// classify wraps transport failures that are neither timeouts nor format
// errors as transfer failures.
func classify(err error) error {
	if err == nil || errors.Is(err, fault.ErrTimeout) || errors.Is(err, fault.ErrFormat) || errors.Is(err, fault.ErrTransfer) {
		return err
	}
	return fmt.Errorf("%w: %w", fault.ErrTransfer, err)
}

// StreamHelper serves byte-stream transports (RS-232, TCP) where a single
// read may return any prefix of the expected data.
type StreamHelper struct {
	stream transport.Stream
}

// NewStreamHelper creates a helper over s.
func NewStreamHelper(s transport.Stream) *StreamHelper {
	return &StreamHelper{stream: s}
}

func (h *StreamHelper) Send(p []byte) (int, error) {
	n, err := transport.WriteAll(h.stream, p)
	return n, classify(err)
}

func (h *StreamHelper) Receive(p []byte) (int, error) {
	n, err := transport.ReadFull(h.stream, p)
	return n, classify(err)
}

// PacketHelper serves USB bulk pipes, where each read returns one complete
// transfer from the device.
type PacketHelper struct {
	stream transport.Stream
}

// NewPacketHelper creates a helper over s.
func NewPacketHelper(s transport.Stream) *PacketHelper {
	return &PacketHelper{stream: s}
}

func (h *PacketHelper) Send(p []byte) (int, error) {
	n, err := transport.WriteAll(h.stream, p)
	return n, classify(err)
}

// Receive performs one read. A short transfer is a format error; the
// remainder is not awaited.
func (h *PacketHelper) Receive(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err := h.readPacket(p)
	if err != nil {
		return n, err
	}
	return n, truncated(n, len(p))
}

// packetReader is implemented by helpers whose single read returns one
// whole device transfer, however short it is.
type packetReader interface {
	readPacket(p []byte) (int, error)
}

func (h *PacketHelper) readPacket(p []byte) (int, error) {
	n, err := h.stream.Read(p)
	if err != nil {
		return n, classify(err)
	}
	if n == 0 {
		return 0, fault.ErrTimeout
	}
	return n, nil
}

// truncated reports a transfer of n bytes where want were expected.
func truncated(n, want int) error {
	if n < want {
		return fmt.Errorf("%w: %w: %d of %d bytes", fault.ErrFormat, transport.ErrFrameTruncated, n, want)
	}
	return nil
}

// Compile-time interface satisfaction checks.
var (
	_ TransferHelper = (*StreamHelper)(nil)
	_ TransferHelper = (*PacketHelper)(nil)
)
