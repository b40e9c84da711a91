package transport

import (
	"context"
	"time"
)

// Stream is one bidirectional byte pipe.
type Stream interface {
	// Read reads up to len(p) bytes. It blocks until data arrives or the
	// stream's read timeout passes, in which case it returns an error
	// wrapping fault.ErrTimeout.
	Read(p []byte) (int, error)

	// Write writes p.
	Write(p []byte) (int, error)
}

// Port is a Stream that owns an OS handle.
type Port interface {
	Stream

	// Close releases the handle. Repeated calls return nil.
	Close() error
}

// USBAddress identifies one enumerated USB device.
type USBAddress struct {
	Vendor  uint16
	Product uint16
	Bus     int
	Address int
}

// USBDriver enumerates and opens USB devices.
type USBDriver interface {
	// Enumerate lists attached devices with the given vendor and product.
	Enumerate(vendor, product uint16) ([]USBAddress, error)

	// Open claims the device at addr. Reads on pipes obtained from the
	// returned device use timeout.
	Open(addr USBAddress, timeout time.Duration) (USBDevice, error)
}

// USBDevice is a claimed USB device.
type USBDevice interface {
	// Pipe returns a stream writing to the out endpoint and reading from
	// the in endpoint. Endpoint numbers exclude the direction bit.
	Pipe(out, in uint8) (Stream, error)

	// Close releases the interface and the device handle.
	Close() error
}

// SerialDriver opens RS-232 ports.
type SerialDriver interface {
	Open(path string, baud int, timeout time.Duration) (Port, error)
}

// Dialer connects TCP sockets.
type Dialer interface {
	Dial(host string, port int, timeout time.Duration) (Port, error)
}

// ServiceEndpoint is a network instrument found by service discovery.
type ServiceEndpoint struct {
	Instance string
	Host     string
	Port     int
	Model    string
	Serial   string
}

// ServiceBrowser discovers network instruments.
type ServiceBrowser interface {
	// Browse returns the endpoints seen before ctx is done.
	Browse(ctx context.Context) ([]ServiceEndpoint, error)
}
