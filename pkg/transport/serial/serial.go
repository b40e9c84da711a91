// Package serial implements transport.SerialDriver for RS-232 instruments
// using go.bug.st/serial.
package serial

import (
	"fmt"
	"sync"
	"time"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/transport"
	"go.bug.st/serial"
)

// Driver opens serial ports in 8N1 mode.
type Driver struct{}

// Open opens path at baud with the given read timeout. Stale input left
// by a previous session is discarded.
func (Driver) Open(path string, baud int, timeout time.Duration) (transport.Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: serial open %s: %w", fault.ErrTransfer, path, err)
	}
	if err := p.SetReadTimeout(timeout); err != nil {
		p.Close()
		return nil, fmt.Errorf("%w: serial timeout %s: %w", fault.ErrTransfer, path, err)
	}
	if err := p.ResetInputBuffer(); err != nil {
		p.Close()
		return nil, fmt.Errorf("%w: serial flush %s: %w", fault.ErrTransfer, path, err)
	}
	return &Port{port: p, path: path}, nil
}

// Port is an open serial port.
type Port struct {
	port serial.Port
	path string

	mu     sync.Mutex
	closed bool
}

// Read reads available bytes. go.bug.st/serial reports an expired read
// timeout as (0, nil), which is translated to fault.ErrTimeout.
func (p *Port) Read(b []byte) (int, error) {
	n, err := p.port.Read(b)
	if err != nil {
		return n, fmt.Errorf("serial read %s: %w", p.path, err)
	}
	if n == 0 && len(b) > 0 {
		return 0, fmt.Errorf("serial read %s: %w", p.path, fault.ErrTimeout)
	}
	return n, nil
}

// Write writes b.
func (p *Port) Write(b []byte) (int, error) {
	n, err := p.port.Write(b)
	if err != nil {
		return n, fmt.Errorf("serial write %s: %w", p.path, err)
	}
	return n, nil
}

// Close closes the port. Repeated calls return nil.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.port.Close()
}

// ListPorts returns the serial port paths present on the host.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("serial list: %w", err)
	}
	return ports, nil
}

// Compile-time interface satisfaction checks.
var (
	_ transport.SerialDriver = Driver{}
	_ transport.Port         = (*Port)(nil)
)
