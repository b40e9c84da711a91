package sim

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/transport"
)

// USB errors.
var (
	ErrNotAttached = errors.New("no device at address")
	ErrClaimed     = errors.New("device already claimed")
)

// USB is a simulated USB host controller.
type USB struct {
	mu       sync.Mutex
	attached map[transport.USBAddress]*usbSlot
}

type usbSlot struct {
	inst    Instrument
	claimed bool
}

// NewUSB creates an empty controller.
func NewUSB() *USB {
	return &USB{attached: make(map[transport.USBAddress]*usbSlot)}
}

// Attach plugs inst in at addr, replacing anything already there.
func (u *USB) Attach(addr transport.USBAddress, inst Instrument) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.attached[addr] = &usbSlot{inst: inst}
}

// Detach unplugs the device at addr.
func (u *USB) Detach(addr transport.USBAddress) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.attached, addr)
}

// Enumerate lists attached devices matching vendor and product, ordered
// by bus and address.
func (u *USB) Enumerate(vendor, product uint16) ([]transport.USBAddress, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	var out []transport.USBAddress
	for a := range u.attached {
		if a.Vendor == vendor && a.Product == product {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b transport.USBAddress) int {
		if c := cmp.Compare(a.Bus, b.Bus); c != 0 {
			return c
		}
		return cmp.Compare(a.Address, b.Address)
	})
	return out, nil
}

// Open claims the device at addr.
func (u *USB) Open(addr transport.USBAddress, _ time.Duration) (transport.USBDevice, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	slot, ok := u.attached[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %w: %04x:%04x bus %d address %d",
			fault.ErrTransfer, ErrNotAttached, addr.Vendor, addr.Product, addr.Bus, addr.Address)
	}
	if slot.claimed {
		return nil, fmt.Errorf("%w: %w", fault.ErrTransfer, ErrClaimed)
	}
	slot.claimed = true
	return &usbDevice{host: u, addr: addr, inst: slot.inst, inboxes: make(map[uint8]*outbox)}, nil
}

// Claimed reports whether the device at addr is open.
func (u *USB) Claimed(addr transport.USBAddress) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	slot, ok := u.attached[addr]
	return ok && slot.claimed
}

func (u *USB) release(addr transport.USBAddress) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if slot, ok := u.attached[addr]; ok {
		slot.claimed = false
	}
}

type usbDevice struct {
	mu      sync.Mutex
	host    *USB
	addr    transport.USBAddress
	inst    Instrument
	inboxes map[uint8]*outbox
	closed  bool
}

// Pipe returns a stream writing to out and reading from in. Replies are
// queued on the reading endpoint of the pipe that carried the request.
func (d *usbDevice) Pipe(out, in uint8) (transport.Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, fmt.Errorf("%w: sim: device closed", fault.ErrTransfer)
	}
	box, ok := d.inboxes[in]
	if !ok {
		box = &outbox{}
		d.inboxes[in] = box
	}
	return &usbPipe{dev: d, in: box}, nil
}

func (d *usbDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.host.release(d.addr)
	return nil
}

func (d *usbDevice) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

type usbPipe struct {
	dev *usbDevice
	in  *outbox
}

func (p *usbPipe) Write(b []byte) (int, error) {
	if p.dev.isClosed() {
		return 0, fmt.Errorf("%w: sim: device closed", fault.ErrTransfer)
	}
	if reply := p.dev.inst.Handle(b); reply != nil {
		p.in.put(reply)
	}
	return len(b), nil
}

func (p *usbPipe) Read(b []byte) (int, error) {
	if p.dev.isClosed() {
		return 0, fmt.Errorf("%w: sim: device closed", fault.ErrTransfer)
	}
	return p.in.take(b)
}

// Compile-time interface satisfaction checks.
var (
	_ transport.USBDriver = (*USB)(nil)
	_ transport.USBDevice = (*usbDevice)(nil)
)
