package sim

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/transport"
)

// ErrUnreachable indicates nothing listens at an address.
var ErrUnreachable = errors.New("connection refused")

// Network is a simulated IP network that also answers service browsing.
type Network struct {
	mu        sync.Mutex
	listeners map[string]Instrument
	services  []transport.ServiceEndpoint
}

// NewNetwork creates an empty network.
func NewNetwork() *Network {
	return &Network{listeners: make(map[string]Instrument)}
}

// Listen serves inst at host:port and, when ep is non-nil, advertises it.
func (n *Network) Listen(host string, port int, inst Instrument, ep *transport.ServiceEndpoint) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners[net.JoinHostPort(host, strconv.Itoa(port))] = inst
	if ep != nil {
		e := *ep
		e.Host, e.Port = host, port
		n.services = append(n.services, e)
	}
}

// Unlisten removes the instrument and its advertisement.
func (n *Network) Unlisten(host string, port int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.listeners, net.JoinHostPort(host, strconv.Itoa(port)))
	kept := n.services[:0]
	for _, s := range n.services {
		if s.Host != host || s.Port != port {
			kept = append(kept, s)
		}
	}
	n.services = kept
}

// Dial connects to host:port.
func (n *Network) Dial(host string, port int, _ time.Duration) (transport.Port, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	inst, ok := n.listeners[net.JoinHostPort(host, strconv.Itoa(port))]
	if !ok {
		return nil, fmt.Errorf("%w: dial %s:%d: %w", fault.ErrTransfer, host, port, ErrUnreachable)
	}
	return newConn(inst, nil), nil
}

// Browse returns every advertised endpoint.
func (n *Network) Browse(ctx context.Context) ([]transport.ServiceEndpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]transport.ServiceEndpoint(nil), n.services...), nil
}

// Serial is a set of simulated RS-232 ports.
type Serial struct {
	mu    sync.Mutex
	ports map[string]Instrument
	open  map[string]bool
}

// NewSerial creates an empty port set.
func NewSerial() *Serial {
	return &Serial{ports: make(map[string]Instrument), open: make(map[string]bool)}
}

// Connect wires inst to path.
func (s *Serial) Connect(path string, inst Instrument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ports[path] = inst
}

// Open opens path. A port can be open once.
func (s *Serial) Open(path string, baud int, _ time.Duration) (transport.Port, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.ports[path]
	if !ok {
		return nil, fmt.Errorf("%w: open %s: no such port", fault.ErrTransfer, path)
	}
	if s.open[path] {
		return nil, fmt.Errorf("%w: open %s: port busy", fault.ErrTransfer, path)
	}
	if baud <= 0 {
		return nil, fmt.Errorf("%w: baud %d", fault.ErrIllegalArgument, baud)
	}
	s.open[path] = true
	return newConn(inst, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.open, path)
	}), nil
}

// Compile-time interface satisfaction checks.
var (
	_ transport.Dialer         = (*Network)(nil)
	_ transport.ServiceBrowser = (*Network)(nil)
	_ transport.SerialDriver   = (*Serial)(nil)
)
