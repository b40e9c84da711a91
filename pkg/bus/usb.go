package bus

import (
	"context"
	"fmt"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/transport"
)

// Endpoints is one bulk OUT/IN pair, numbered without the direction bit.
type Endpoints struct {
	Out uint8
	In  uint8
}

// USBConfig describes how a device type sits on USB.
type USBConfig struct {
	Vendor  uint16
	Product uint16

	// Endpoints maps each supported hint to its endpoint pair.
	Endpoints map[Hint]Endpoints

	// WordSize pads every transfer to this alignment when above 1.
	WordSize int
}

// USBBus talks to an instrument over USB bulk endpoints.
type USBBus struct {
	base
	driver transport.USBDriver
	config USBConfig
}

// NewUSBBus creates a closed USB bus.
func NewUSBBus(driver transport.USBDriver, config USBConfig, opts Options) *USBBus {
	return &USBBus{base: newBase(KindUSB, opts), driver: driver, config: config}
}

// SetLocator binds l, which must match the configured vendor and product.
func (b *USBBus) SetLocator(l Locator) error {
	if u, ok := l.(USBLocator); ok && (u.Vendor != b.config.Vendor || u.Product != b.config.Product) {
		return fmt.Errorf("%w: %s does not match %04x:%04x",
			fault.ErrIllegalArgument, u, b.config.Vendor, b.config.Product)
	}
	return b.setLocator(l)
}

// Open claims the device and resolves one pipe per configured hint.
func (b *USBBus) Open() error {
	if b.IsOpen() {
		return nil
	}
	loc, ok := b.locator.(USBLocator)
	if !ok {
		return fmt.Errorf("%w: usb bus has no locator", fault.ErrIllegalArgument)
	}

	dev, err := b.driver.Open(transport.USBAddress{
		Vendor:  loc.Vendor,
		Product: loc.Product,
		Bus:     loc.Bus,
		Address: loc.Address,
	}, b.opts.Timeout)
	if err != nil {
		return classify(err)
	}

	helpers := make(map[Hint]TransferHelper, len(b.config.Endpoints))
	for _, hint := range Hints {
		ep, ok := b.config.Endpoints[hint]
		if !ok {
			continue
		}
		s, err := dev.Pipe(ep.Out, ep.In)
		if err != nil {
			dev.Close()
			return classify(fmt.Errorf("usb pipe %s: %w", hint, err))
		}
		var h TransferHelper = NewPacketHelper(s)
		if b.config.WordSize > 1 {
			aligned := NewAlignedHelper(h, b.config.WordSize)
			aligned.onPad = func(n int) { b.opts.Metrics.Padding(KindUSB.String(), n) }
			h = aligned
		}
		helpers[hint] = h
	}
	if len(helpers) == 0 {
		dev.Close()
		return fmt.Errorf("%w: usb bus has no endpoints", fault.ErrIllegalArgument)
	}

	b.install(helpers, dev.Close, b.config.WordSize)
	return nil
}

// Prober enumerates attached devices with the configured vendor and product.
func (b *USBBus) Prober() (Prober, bool) {
	return usbProber{b}, true
}

type usbProber struct {
	bus *USBBus
}

func (p usbProber) Probe(ctx context.Context) ([]Locator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := p.bus.config
	addrs, err := p.bus.driver.Enumerate(cfg.Vendor, cfg.Product)
	if err != nil {
		return nil, classify(err)
	}
	locs := make([]Locator, 0, len(addrs))
	for _, a := range addrs {
		loc, err := NewUSBLocator(a.Vendor, a.Product, a.Bus, a.Address)
		if err != nil {
			p.bus.opts.Logger.Warn("usb probe: skipping address", "error", err)
			continue
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

// Compile-time interface satisfaction check.
var _ Bus = (*USBBus)(nil)
