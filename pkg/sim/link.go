package sim

import (
	"fmt"
	"sync"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/transport"
)

// Instrument answers one host request. A nil reply means the instrument
// stays silent.
type Instrument interface {
	Handle(request []byte) []byte
}

// outbox holds bytes an instrument has sent but the host has not read.
type outbox struct {
	mu  sync.Mutex
	buf []byte
}

func (o *outbox) put(p []byte) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.buf = append(o.buf, p...)
}

func (o *outbox) take(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.buf) == 0 {
		return 0, fmt.Errorf("%w: sim: nothing to read", fault.ErrTimeout)
	}
	n := copy(p, o.buf)
	o.buf = o.buf[n:]
	return n, nil
}

// conn is a stream to one instrument.
type conn struct {
	mu      sync.Mutex
	inst    Instrument
	out     *outbox
	closed  bool
	onClose func()
}

func newConn(inst Instrument, onClose func()) *conn {
	return &conn{inst: inst, out: &outbox{}, onClose: onClose}
}

func (c *conn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, fmt.Errorf("%w: sim: write on closed stream", fault.ErrTransfer)
	}
	if reply := c.inst.Handle(p); reply != nil {
		c.out.put(reply)
	}
	return len(p), nil
}

func (c *conn) Read(p []byte) (int, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return 0, fmt.Errorf("%w: sim: read on closed stream", fault.ErrTransfer)
	}
	return c.out.take(p)
}

func (c *conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.onClose != nil {
		c.onClose()
	}
	return nil
}

// Compile-time interface satisfaction check.
var _ transport.Port = (*conn)(nil)
