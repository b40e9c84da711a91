package bus

import (
	"context"
	"fmt"
	"time"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/transport"
)

// DefaultBrowseTimeout bounds an mDNS probe when the caller's context has
// no deadline.
const DefaultBrowseTimeout = 2 * time.Second

// TCPConfig describes how a device type sits on the network.
type TCPConfig struct {
	// Browser finds instruments. Nil disables probing.
	Browser transport.ServiceBrowser

	// Model filters browse results by advertised model. Empty accepts all.
	Model string

	// BrowseTimeout overrides DefaultBrowseTimeout.
	BrowseTimeout time.Duration
}

// TCPBus talks to an instrument over a TCP socket. Every hint shares the
// one stream.
type TCPBus struct {
	base
	dialer transport.Dialer
	config TCPConfig
}

// NewTCPBus creates a closed TCP bus.
func NewTCPBus(dialer transport.Dialer, config TCPConfig, opts Options) *TCPBus {
	if config.BrowseTimeout <= 0 {
		config.BrowseTimeout = DefaultBrowseTimeout
	}
	return &TCPBus{base: newBase(KindTCP, opts), dialer: dialer, config: config}
}

// SetLocator binds a TCPLocator.
func (b *TCPBus) SetLocator(l Locator) error {
	return b.setLocator(l)
}

// Open connects the socket.
func (b *TCPBus) Open() error {
	if b.IsOpen() {
		return nil
	}
	loc, ok := b.locator.(TCPLocator)
	if !ok {
		return fmt.Errorf("%w: tcp bus has no locator", fault.ErrIllegalArgument)
	}

	port, err := b.dialer.Dial(loc.Host, loc.Port, b.opts.Timeout)
	if err != nil {
		return classify(err)
	}

	h := NewStreamHelper(port)
	helpers := make(map[Hint]TransferHelper, len(Hints))
	for _, hint := range Hints {
		helpers[hint] = h
	}
	b.install(helpers, port.Close, 0)
	return nil
}

// Prober returns an mDNS prober when a browser is configured.
func (b *TCPBus) Prober() (Prober, bool) {
	if b.config.Browser == nil {
		return nil, false
	}
	return tcpProber{b}, true
}

type tcpProber struct {
	bus *TCPBus
}

func (p tcpProber) Probe(ctx context.Context) ([]Locator, error) {
	cfg := p.bus.config
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.BrowseTimeout)
		defer cancel()
	}

	endpoints, err := cfg.Browser.Browse(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: mdns browse: %w", fault.ErrTransfer, err)
	}
	locs := make([]Locator, 0, len(endpoints))
	for _, ep := range endpoints {
		if cfg.Model != "" && ep.Model != "" && ep.Model != cfg.Model {
			continue
		}
		loc, err := NewTCPLocator(ep.Host, ep.Port)
		if err != nil {
			p.bus.opts.Logger.Warn("tcp probe: skipping endpoint", "instance", ep.Instance, "error", err)
			continue
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

// Compile-time interface satisfaction check.
var _ Bus = (*TCPBus)(nil)
