package model

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lumen-instruments/spectro-go/pkg/bus"
	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/log"
	"github.com/lumen-instruments/spectro-go/pkg/metrics"
	"github.com/lumen-instruments/spectro-go/pkg/protocol"
)

// Device errors.
var (
	ErrDeviceDestroyed = errors.New("device destroyed")
	ErrIDAssigned      = errors.New("device ID already assigned")
	ErrNoLocator       = errors.New("device has no locator")
)

// ID is a process-unique device identifier. Zero means unassigned.
type ID uint32

// FeatureID addresses one feature of a device. IDs start at 1 and follow
// construction order.
type FeatureID uint32

// Config describes the fixed composition of a device.
type Config struct {
	// Type is the catalog type name.
	Type string

	Buses     []bus.Bus
	Protocols []protocol.Protocol

	// Routes selects the protocol family spoken over each bus kind. Kinds
	// not listed speak Protocols[0].
	Routes map[bus.Kind]protocol.Family

	Features []Capability

	// Pixels is the detector width, when known from the type.
	Pixels int

	Logger  *slog.Logger
	Capture log.Logger
	Metrics *metrics.Collector
}

// Device composes buses, protocols and features. Exactly one bus is
// active while open.
//
// Reads of identity (ID, Type, Locator) are safe from any goroutine.
// Operations on one device must be serialized by the caller.
type Device struct {
	mu sync.RWMutex

	typeName  string
	pixels    int
	buses     []bus.Bus
	protocols []protocol.Protocol
	routes    map[bus.Kind]protocol.Family
	features  []Capability

	id        ID
	locator   bus.Locator
	destroyed bool

	active bus.Bus
	link   *protocol.Link

	logger  *slog.Logger
	capture log.Logger
	metrics *metrics.Collector
}

// NewDevice validates cfg and builds a closed device.
func NewDevice(cfg Config) (*Device, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("%w: device type name is empty", fault.ErrIllegalArgument)
	}
	if len(cfg.Buses) == 0 || len(cfg.Protocols) == 0 {
		return nil, fmt.Errorf("%w: %s needs at least one bus and one protocol", fault.ErrIllegalArgument, cfg.Type)
	}
	seen := make(map[bus.Kind]bool, len(cfg.Buses))
	for _, b := range cfg.Buses {
		if seen[b.Kind()] {
			return nil, fmt.Errorf("%w: %s has two %s buses", fault.ErrIllegalArgument, cfg.Type, b.Kind())
		}
		seen[b.Kind()] = true
	}
	d := &Device{
		typeName:  cfg.Type,
		pixels:    cfg.Pixels,
		buses:     cfg.Buses,
		protocols: cfg.Protocols,
		routes:    cfg.Routes,
		features:  cfg.Features,
		logger:    cfg.Logger,
		capture:   log.OrNoop(cfg.Capture),
		metrics:   cfg.Metrics,
	}
	if d.logger == nil {
		d.logger = slog.New(slog.DiscardHandler)
	}
	for _, k := range kindsOf(cfg.Routes) {
		if _, err := d.protocolFor(k); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func kindsOf(routes map[bus.Kind]protocol.Family) []bus.Kind {
	kinds := make([]bus.Kind, 0, len(routes))
	for k := range routes {
		kinds = append(kinds, k)
	}
	return kinds
}

// Type returns the catalog type name.
func (d *Device) Type() string {
	return d.typeName
}

// Pixels returns the detector width declared by the type, or 0.
func (d *Device) Pixels() int {
	return d.pixels
}

// ID returns the assigned ID, or 0.
func (d *Device) ID() ID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.id
}

// AssignID sets the device ID. An ID is assigned once.
func (d *Device) AssignID(id ID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.id != 0 {
		return fmt.Errorf("%w: %d", ErrIDAssigned, d.id)
	}
	if id == 0 {
		return fmt.Errorf("%w: zero device ID", fault.ErrIllegalArgument)
	}
	d.id = id
	for _, b := range d.buses {
		b.SetDeviceID(uint32(id))
	}
	return nil
}

// Locator returns the bound locator, or nil.
func (d *Device) Locator() bus.Locator {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.locator
}

// SetLocator binds the device to l. The device must be closed and have a
// bus of l's kind.
func (d *Device) SetLocator(l bus.Locator) error {
	if l == nil {
		return fmt.Errorf("%w: nil locator", fault.ErrIllegalArgument)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active != nil {
		return fmt.Errorf("%w: %s is open", fault.ErrIllegalArgument, d.typeName)
	}
	if d.busFor(l.Kind()) == nil {
		return fmt.Errorf("%w: %s has no %s bus", fault.ErrIllegalArgument, d.typeName, l.Kind())
	}
	d.locator = l
	return nil
}

// Buses returns the device's buses in construction order.
func (d *Device) Buses() []bus.Bus {
	return d.buses
}

// Protocols returns the device's protocols in construction order.
func (d *Device) Protocols() []protocol.Protocol {
	return d.protocols
}

func (d *Device) busFor(k bus.Kind) bus.Bus {
	for _, b := range d.buses {
		if b.Kind() == k {
			return b
		}
	}
	return nil
}

func (d *Device) protocolFor(k bus.Kind) (protocol.Protocol, error) {
	fam, ok := d.routes[k]
	if !ok {
		return d.protocols[0], nil
	}
	for _, p := range d.protocols {
		if p.Family == fam {
			return p, nil
		}
	}
	return protocol.Protocol{}, fmt.Errorf("%w: %s routes %s to unsupported protocol %s",
		fault.ErrIllegalArgument, d.typeName, k, fam)
}

// Open binds the bus matching the locator, selects its protocol and binds
// every feature. A feature whose initializer fails is logged and left
// unusable; the device still opens. Opening an open device is a no-op.
func (d *Device) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case d.destroyed:
		return fmt.Errorf("%w: %w", fault.ErrNoSuchDevice, ErrDeviceDestroyed)
	case d.active != nil:
		return nil
	case d.locator == nil:
		return fmt.Errorf("%w: %s: %w", fault.ErrIllegalArgument, d.typeName, ErrNoLocator)
	}

	b := d.busFor(d.locator.Kind())
	p, err := d.protocolFor(b.Kind())
	if err != nil {
		return err
	}
	if err := b.SetLocator(d.locator); err != nil {
		return err
	}
	if err := b.Open(); err != nil {
		d.metrics.DeviceOpened(false)
		d.logState("", "OPEN_FAILED", err.Error())
		return fmt.Errorf("open %s at %s: %w", d.typeName, d.locator, err)
	}

	d.active = b
	d.link = &protocol.Link{
		Protocol: p,
		Bus:      b,
		DeviceID: uint32(d.id),
		Capture:  d.capture,
		Metrics:  d.metrics,
	}
	for _, f := range d.features {
		if err := f.Bind(d.link); err != nil {
			d.logger.Warn("feature unusable", "device", d.id, "type", d.typeName, "family", f.Family(), "error", err)
			d.logFeature(f, "UNUSABLE", err.Error())
		}
	}

	d.metrics.DeviceOpened(true)
	d.logState("CLOSED", "OPEN", p.String())
	d.logger.Info("device opened", "device", d.id, "type", d.typeName, "location", d.locator, "protocol", p)
	return nil
}

// Close releases feature state, then the bus. Repeated calls return nil.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closeLocked()
}

func (d *Device) closeLocked() error {
	if d.active == nil {
		return nil
	}
	for _, f := range d.features {
		f.Release()
	}
	err := d.active.Close()
	d.active = nil
	d.link = nil

	d.metrics.DeviceOpened(false)
	d.logState("OPEN", "CLOSED", "")
	d.logger.Info("device closed", "device", d.id, "type", d.typeName, "error", err)
	return err
}

// Destroy closes the device and marks it unusable.
func (d *Device) Destroy() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	err := d.closeLocked()
	d.destroyed = true
	return err
}

// IsOpen reports whether a bus is active.
func (d *Device) IsOpen() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.active != nil
}

// Link returns the active link, or nil when closed.
func (d *Device) Link() *protocol.Link {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.link
}

// Protocol returns the active protocol. ok is false when closed.
func (d *Device) Protocol() (p protocol.Protocol, ok bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.link == nil {
		return protocol.Protocol{}, false
	}
	return d.link.Protocol, true
}

// Features returns every feature in construction order.
func (d *Device) Features() []Capability {
	return d.features
}

// FeatureIDs returns the IDs of the features of family, in order.
func (d *Device) FeatureIDs(family FeatureFamily) []FeatureID {
	var ids []FeatureID
	for i, f := range d.features {
		if f.Family() == family {
			ids = append(ids, FeatureID(i+1))
		}
	}
	return ids
}

// Feature returns the feature with id.
func (d *Device) Feature(id FeatureID) (Capability, error) {
	if id == 0 || int(id) > len(d.features) {
		return nil, fmt.Errorf("%w: feature %d on %s", fault.ErrNoSuchFeature, id, d.typeName)
	}
	return d.features[id-1], nil
}

// FeatureOf returns the first feature of type T on d.
func FeatureOf[T Capability](d *Device) (T, error) {
	for _, f := range d.features {
		if t, ok := f.(T); ok {
			return t, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: %T on %s", fault.ErrNoSuchFeature, zero, d.typeName)
}

func (d *Device) logState(from, to, reason string) {
	d.capture.Log(log.Event{
		Timestamp:  time.Now(),
		Layer:      log.LayerDevice,
		Category:   log.CategoryState,
		DeviceID:   uint32(d.id),
		DeviceType: d.typeName,
		Location:   locatorString(d.locator),
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityDevice,
			OldState: from,
			NewState: to,
			Reason:   reason,
		},
	})
}

func (d *Device) logFeature(f Capability, state, reason string) {
	d.capture.Log(log.Event{
		Timestamp:  time.Now(),
		Layer:      log.LayerDevice,
		Category:   log.CategoryState,
		DeviceID:   uint32(d.id),
		DeviceType: d.typeName,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityFeature,
			NewState: state,
			Reason:   f.Family().String() + ": " + reason,
		},
	})
}

func locatorString(l bus.Locator) string {
	if l == nil {
		return ""
	}
	return l.String()
}
