package protocol

import (
	"fmt"

	"github.com/lumen-instruments/spectro-go/pkg/bus"
	"github.com/lumen-instruments/spectro-go/pkg/fault"
)

// Transfer is one step of a transaction. It returns the bytes received, or
// nil for sends.
type Transfer interface {
	Do(h bus.TransferHelper) ([]byte, error)
}

// TransferFunc adapts a function to Transfer.
type TransferFunc func(h bus.TransferHelper) ([]byte, error)

// Do calls f.
func (f TransferFunc) Do(h bus.TransferHelper) ([]byte, error) {
	return f(h)
}

// Send writes a fixed request.
func Send(request []byte) Transfer {
	return TransferFunc(func(h bus.TransferHelper) ([]byte, error) {
		n, err := h.Send(request)
		if err != nil {
			return nil, err
		}
		if n != len(request) {
			return nil, fmt.Errorf("%w: sent %d of %d bytes", fault.ErrTransfer, n, len(request))
		}
		return nil, nil
	})
}

// Receive reads exactly n bytes and, if verify is non-nil, checks them.
func Receive(n int, verify func([]byte) error) Transfer {
	return TransferFunc(func(h bus.TransferHelper) ([]byte, error) {
		buf, err := ReceiveExactly(h, n)
		if err != nil {
			return nil, err
		}
		if verify != nil {
			if err := verify(buf); err != nil {
				return nil, err
			}
		}
		return buf, nil
	})
}

// ReceiveExactly reads n bytes through h. Fewer bytes is a format error,
// never a short success.
func ReceiveExactly(h bus.TransferHelper, n int) ([]byte, error) {
	buf := make([]byte, n)
	got, err := h.Receive(buf)
	if err != nil {
		return nil, err
	}
	if got < n {
		return nil, fmt.Errorf("%w: received %d of %d bytes", fault.ErrFormat, got, n)
	}
	return buf, nil
}

// EchoError builds the format error for a response whose echoed field does
// not match the request.
func EchoError(field string, got, want uint32) error {
	return fmt.Errorf("%w: echoed %s %#x, expected %#x", fault.ErrFormat, field, got, want)
}
