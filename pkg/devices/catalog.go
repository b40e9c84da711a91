// Package devices is the catalog of supported instrument types.
//
// A catalog maps type names to constructors. Each constructor builds a
// closed model.Device with the buses, protocols and features of that type.
// Buses are only built for transports whose driver is supplied, so the same
// catalog serves real hardware and the simulator.
package devices

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/lumen-instruments/spectro-go/pkg/bus"
	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/log"
	"github.com/lumen-instruments/spectro-go/pkg/metrics"
	"github.com/lumen-instruments/spectro-go/pkg/model"
	"github.com/lumen-instruments/spectro-go/pkg/transport"
)

// Catalog errors.
var (
	ErrUnknownType   = errors.New("unknown device type")
	ErrDuplicateType = errors.New("device type already registered")
)

// Drivers supplies the transports devices are built on. A nil driver
// leaves the corresponding bus out.
type Drivers struct {
	USB     transport.USBDriver
	Serial  transport.SerialDriver
	Dialer  transport.Dialer
	Browser transport.ServiceBrowser
}

// Options configures device construction.
type Options struct {
	Drivers Drivers

	// Timeout bounds every transfer. Zero uses bus.DefaultTimeout.
	Timeout time.Duration

	// Timeouts overrides Timeout per bus kind.
	Timeouts map[bus.Kind]time.Duration

	// BrowseTimeout bounds mDNS probing. Zero uses bus.DefaultBrowseTimeout.
	BrowseTimeout time.Duration

	Logger  *slog.Logger
	Capture log.Logger
	Metrics *metrics.Collector
}

func (o Options) busOptions(kind bus.Kind) bus.Options {
	timeout := o.Timeout
	if t, ok := o.Timeouts[kind]; ok && t > 0 {
		timeout = t
	}
	return bus.Options{Timeout: timeout, Logger: o.Logger, Capture: o.Capture, Metrics: o.Metrics}
}

// Constructor builds a closed device.
type Constructor func(opts Options) (*model.Device, error)

// Catalog maps type names to constructors.
type Catalog struct {
	types map[string]Constructor
	names []string
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{types: make(map[string]Constructor)}
}

// Default returns a catalog with every built-in type.
func Default() *Catalog {
	c := NewCatalog()
	for _, t := range builtin {
		if err := c.Register(t.name, t.ctor); err != nil {
			panic(err)
		}
	}
	return c
}

// Register adds a type.
func (c *Catalog) Register(name string, ctor Constructor) error {
	if name == "" || ctor == nil {
		return fmt.Errorf("%w: empty type name or nil constructor", fault.ErrIllegalArgument)
	}
	if _, ok := c.types[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, name)
	}
	c.types[name] = ctor
	c.names = append(c.names, name)
	return nil
}

// Names returns registered type names in registration order.
func (c *Catalog) Names() []string {
	return slices.Clone(c.names)
}

// New builds a device of the named type.
func (c *Catalog) New(name string, opts Options) (*model.Device, error) {
	ctor, ok := c.types[name]
	if !ok {
		return nil, fmt.Errorf("%w: %w: %q", fault.ErrIllegalArgument, ErrUnknownType, name)
	}
	return ctor(opts)
}
