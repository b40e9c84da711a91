// Package tcp implements transport.Dialer for network instruments and
// discovers them over mDNS.
package tcp

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/transport"
)

// Dialer connects to instruments over TCP/IPv4.
type Dialer struct{}

// Dial connects to host:port. The timeout bounds the connect and every
// later read and write.
func (Dialer) Dial(host string, port int, timeout time.Duration) (transport.Port, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp4", addr, timeout)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("tcp dial %s: %w", addr, fault.ErrTimeout)
		}
		return nil, fmt.Errorf("%w: tcp dial %s: %w", fault.ErrTransfer, addr, err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
	return NewConn(conn, timeout), nil
}

// Conn adapts a net.Conn to transport.Port with per-call deadlines.
type Conn struct {
	conn    net.Conn
	timeout time.Duration

	mu     sync.Mutex
	closed bool
}

// NewConn wraps conn. Reads and writes fail with fault.ErrTimeout after
// timeout elapses without progress.
func NewConn(conn net.Conn, timeout time.Duration) *Conn {
	return &Conn{conn: conn, timeout: timeout}
}

// Read reads available bytes.
func (c *Conn) Read(b []byte) (int, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, fmt.Errorf("tcp deadline: %w", err)
	}
	n, err := c.conn.Read(b)
	if err != nil {
		if isTimeout(err) {
			return n, fmt.Errorf("tcp read: %w", fault.ErrTimeout)
		}
		return n, fmt.Errorf("tcp read: %w", err)
	}
	return n, nil
}

// Write writes b.
func (c *Conn) Write(b []byte) (int, error) {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, fmt.Errorf("tcp deadline: %w", err)
	}
	n, err := c.conn.Write(b)
	if err != nil {
		if isTimeout(err) {
			return n, fmt.Errorf("tcp write: %w", fault.ErrTimeout)
		}
		return n, fmt.Errorf("tcp write: %w", err)
	}
	return n, nil
}

// Close closes the socket. Repeated calls return nil.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Compile-time interface satisfaction checks.
var (
	_ transport.Dialer = Dialer{}
	_ transport.Port   = (*Conn)(nil)
)
