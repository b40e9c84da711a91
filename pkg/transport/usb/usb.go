// Package usb implements transport.USBDriver on top of libusb via gousb.
package usb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/gousb"
	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/transport"
)

// Defaults for the configuration and interface claimed on open. Every
// supported instrument exposes its bulk endpoints on interface 0 of
// configuration 1.
const (
	DefaultConfig    = 1
	DefaultInterface = 0
)

// ErrNotFound indicates the addressed device is no longer attached.
var ErrNotFound = errors.New("usb device not found")

// Driver enumerates and opens USB instruments. The libusb context is
// created on first use and shared by every device the driver opens.
type Driver struct {
	Config    int
	Interface int

	mu  sync.Mutex
	ctx *gousb.Context
}

// NewDriver creates a driver claiming the default configuration and
// interface.
func NewDriver() *Driver {
	return &Driver{Config: DefaultConfig, Interface: DefaultInterface}
}

func (d *Driver) context() *gousb.Context {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctx == nil {
		d.ctx = gousb.NewContext()
	}
	return d.ctx
}

// Enumerate lists attached devices matching vendor and product without
// opening them.
func (d *Driver) Enumerate(vendor, product uint16) ([]transport.USBAddress, error) {
	var found []transport.USBAddress
	devs, err := d.context().OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if uint16(desc.Vendor) == vendor && uint16(desc.Product) == product {
			found = append(found, transport.USBAddress{
				Vendor:  vendor,
				Product: product,
				Bus:     desc.Bus,
				Address: desc.Address,
			})
		}
		return false
	})
	for _, dev := range devs {
		dev.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: usb enumerate %04x:%04x: %w", fault.ErrTransfer, vendor, product, err)
	}
	return found, nil
}

// Open claims the device at addr.
func (d *Driver) Open(addr transport.USBAddress, timeout time.Duration) (transport.USBDevice, error) {
	devs, err := d.context().OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return uint16(desc.Vendor) == addr.Vendor &&
			uint16(desc.Product) == addr.Product &&
			desc.Bus == addr.Bus &&
			desc.Address == addr.Address
	})
	if len(devs) == 0 {
		if err == nil {
			err = ErrNotFound
		}
		return nil, fmt.Errorf("%w: usb open %d:%d: %w", fault.ErrTransfer, addr.Bus, addr.Address, err)
	}
	dev := devs[0]
	for _, extra := range devs[1:] {
		extra.Close()
	}

	if err := dev.SetAutoDetach(true); err != nil {
		dev.Close()
		return nil, fmt.Errorf("%w: usb auto-detach: %w", fault.ErrTransfer, err)
	}
	cfg, err := dev.Config(d.Config)
	if err != nil {
		dev.Close()
		return nil, fmt.Errorf("%w: usb config %d: %w", fault.ErrTransfer, d.Config, err)
	}
	intf, err := cfg.Interface(d.Interface, 0)
	if err != nil {
		cfg.Close()
		dev.Close()
		return nil, fmt.Errorf("%w: usb interface %d: %w", fault.ErrTransfer, d.Interface, err)
	}

	return &Device{dev: dev, cfg: cfg, intf: intf, timeout: timeout}, nil
}

// Close releases the libusb context. Devices opened by the driver must be
// closed first.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctx == nil {
		return nil
	}
	err := d.ctx.Close()
	d.ctx = nil
	return err
}

// Device is a claimed USB instrument.
type Device struct {
	dev     *gousb.Device
	cfg     *gousb.Config
	intf    *gousb.Interface
	timeout time.Duration

	mu     sync.Mutex
	closed bool
}

// Pipe pairs a bulk OUT and a bulk IN endpoint.
func (d *Device) Pipe(out, in uint8) (transport.Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, fmt.Errorf("%w: usb device closed", fault.ErrTransfer)
	}

	o, err := d.intf.OutEndpoint(int(out))
	if err != nil {
		return nil, fmt.Errorf("%w: usb out endpoint %d: %w", fault.ErrTransfer, out, err)
	}
	i, err := d.intf.InEndpoint(int(in))
	if err != nil {
		return nil, fmt.Errorf("%w: usb in endpoint %d: %w", fault.ErrTransfer, in, err)
	}
	return &pipe{out: o, in: i, timeout: d.timeout}, nil
}

// Close releases the interface, configuration and device handle.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	d.intf.Close()
	cfgErr := d.cfg.Close()
	devErr := d.dev.Close()
	return errors.Join(cfgErr, devErr)
}

// pipe is one OUT/IN endpoint pair with a per-call timeout.
type pipe struct {
	out     *gousb.OutEndpoint
	in      *gousb.InEndpoint
	timeout time.Duration
}

func (p *pipe) Read(b []byte) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	n, err := p.in.ReadContext(ctx, b)
	if err != nil {
		if isTimeout(err) {
			return n, fmt.Errorf("usb read: %w", fault.ErrTimeout)
		}
		return n, fmt.Errorf("usb read: %w", err)
	}
	return n, nil
}

func (p *pipe) Write(b []byte) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	n, err := p.out.WriteContext(ctx, b)
	if err != nil {
		if isTimeout(err) {
			return n, fmt.Errorf("usb write: %w", fault.ErrTimeout)
		}
		return n, fmt.Errorf("usb write: %w", err)
	}
	return n, nil
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, gousb.ErrorTimeout) ||
		errors.Is(err, gousb.TransferTimedOut) ||
		errors.Is(err, gousb.TransferCancelled)
}

// Compile-time interface satisfaction checks.
var (
	_ transport.USBDriver = (*Driver)(nil)
	_ transport.USBDevice = (*Device)(nil)
	_ transport.Stream    = (*pipe)(nil)
)
