package bus

import (
	"fmt"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/transport"
)

// SerialBus talks to an instrument over RS-232. Every hint shares the one
// stream; the port cannot be probed.
type SerialBus struct {
	base
	driver transport.SerialDriver
}

// NewSerialBus creates a closed serial bus.
func NewSerialBus(driver transport.SerialDriver, opts Options) *SerialBus {
	return &SerialBus{base: newBase(KindRS232, opts), driver: driver}
}

// SetLocator binds a SerialLocator.
func (b *SerialBus) SetLocator(l Locator) error {
	return b.setLocator(l)
}

// Open opens the port.
func (b *SerialBus) Open() error {
	if b.IsOpen() {
		return nil
	}
	loc, ok := b.locator.(SerialLocator)
	if !ok {
		return fmt.Errorf("%w: serial bus has no locator", fault.ErrIllegalArgument)
	}

	port, err := b.driver.Open(loc.Path, loc.Baud, b.opts.Timeout)
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

// Prober reports that serial ports cannot be probed.
func (b *SerialBus) Prober() (Prober, bool) {
	return nil, false
}

// Compile-time interface satisfaction check.
var _ Bus = (*SerialBus)(nil)
