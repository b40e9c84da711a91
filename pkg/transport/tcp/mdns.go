package tcp

import (
	"context"
	"log/slog"
	"net"
	"strings"

	"github.com/enbility/zeroconf/v3"
	"github.com/lumen-instruments/spectro-go/pkg/transport"
)

// mDNS service parameters for network spectrometers.
const (
	ServiceType = "_spectrometer._tcp"
	Domain      = "local."
)

// TXT record keys advertised by network instruments.
const (
	TXTModel  = "model"
	TXTSerial = "sn"
)

// BrowserConfig configures the mDNS browser.
type BrowserConfig struct {
	// Service overrides ServiceType.
	Service string

	// Interface restricts browsing to one network interface.
	Interface string

	// Logger for operational messages. Nil discards.
	Logger *slog.Logger
}

// Browser finds network spectrometers over mDNS.
type Browser struct {
	config BrowserConfig
	logger *slog.Logger
}

// NewBrowser creates a browser.
func NewBrowser(config BrowserConfig) *Browser {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if config.Service == "" {
		config.Service = ServiceType
	}
	return &Browser{config: config, logger: logger}
}

// Browse collects instruments announced before ctx is done. Entries from
// several interfaces for the same instance are merged into one endpoint.
func (b *Browser) Browse(ctx context.Context) ([]transport.ServiceEndpoint, error) {
	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	browseErr := make(chan error, 1)
	go func() {
		browseErr <- zeroconf.Browse(ctx, b.config.Service, Domain, entries, removed, b.options()...)
	}()

	seen := make(map[string]transport.ServiceEndpoint)
	var order []string
	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				entries = nil
				continue
			}
			ep, valid := EntryToEndpoint(entry)
			if !valid {
				continue
			}
			if _, dup := seen[ep.Instance]; !dup {
				order = append(order, ep.Instance)
				b.logger.Debug("mdns: instrument found", "instance", ep.Instance, "host", ep.Host, "port", ep.Port)
			}
			seen[ep.Instance] = ep
		case entry, ok := <-removed:
			if !ok {
				removed = nil
				continue
			}
			delete(seen, entry.Instance)
		case err := <-browseErr:
			if err != nil && ctx.Err() == nil {
				return nil, err
			}
			browseErr = nil
		case <-ctx.Done():
			out := make([]transport.ServiceEndpoint, 0, len(seen))
			for _, inst := range order {
				if ep, ok := seen[inst]; ok {
					out = append(out, ep)
				}
			}
			return out, nil
		}
	}
}

func (b *Browser) options() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption
	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		} else {
			b.logger.Warn("mdns: interface not found, browsing all", "interface", b.config.Interface, "error", err)
		}
	}
	return opts
}

// EntryToEndpoint converts a zeroconf entry. IPv4 addresses are preferred
// because instruments only speak TCP/IPv4; the host name is the fallback.
func EntryToEndpoint(entry *zeroconf.ServiceEntry) (transport.ServiceEndpoint, bool) {
	if entry == nil || entry.Port <= 0 {
		return transport.ServiceEndpoint{}, false
	}
	host := strings.TrimSuffix(entry.HostName, ".")
	if len(entry.AddrIPv4) > 0 {
		host = entry.AddrIPv4[0].String()
	}
	if host == "" {
		return transport.ServiceEndpoint{}, false
	}

	ep := transport.ServiceEndpoint{
		Instance: entry.Instance,
		Host:     host,
		Port:     entry.Port,
	}
	for _, kv := range entry.Text {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		switch k {
		case TXTModel:
			ep.Model = v
		case TXTSerial:
			ep.Serial = v
		}
	}
	return ep, true
}

// Compile-time interface satisfaction check.
var _ transport.ServiceBrowser = (*Browser)(nil)
