// Package registry tracks the devices a process can address.
//
// Devices enter the registry two ways. Probing asks every bus of every
// catalog type where its instruments are and keeps the probed pool in step
// with the answer. Manual specification adds a device at a caller-supplied
// locator to a separate pool that probing never touches. Both pools draw
// IDs from one counter, so an ID is never reused while the registry lives.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/lumen-instruments/spectro-go/pkg/bus"
	"github.com/lumen-instruments/spectro-go/pkg/devices"
	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/log"
	"github.com/lumen-instruments/spectro-go/pkg/model"
)

// Options configures a registry.
type Options struct {
	// Device is passed to every catalog constructor.
	Device devices.Options

	// Types restricts probing to these type names. Empty probes every
	// catalog type.
	Types []string
}

// Registry owns every device it creates.
//
// ID lookups may run concurrently with each other. Probe, AddSpecified and
// Close are writers and must not overlap with operations on the devices
// they may destroy.
type Registry struct {
	mu sync.RWMutex

	catalog *devices.Catalog
	opts    Options
	logger  *slog.Logger
	capture log.Logger

	lastID    model.ID
	specified []*model.Device
	probed    []*model.Device
}

// New creates an empty registry.
func New(catalog *devices.Catalog, opts Options) *Registry {
	logger := opts.Device.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		catalog: catalog,
		opts:    opts,
		logger:  logger,
		capture: log.OrNoop(opts.Device.Capture),
	}
}

// probeKey identifies one bus of one device type.
type probeKey struct {
	typeName string
	kind     bus.Kind
}

// Probe queries every probe-capable bus of every device type, adds a device
// for each new locator and destroys probed devices that were not seen.
// Failures are logged and confined to the bus they occurred on; devices
// behind a failing bus are kept. It returns the size of the probed pool.
func (r *Registry) Probe(ctx context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[bus.Locator]bool)
	failed := make(map[probeKey]bool)

	for _, name := range r.types() {
		exemplar, err := r.catalog.New(name, r.opts.Device)
		if err != nil {
			r.logger.Debug("probe: type unavailable", "type", name, "error", err)
			continue
		}
		for _, b := range exemplar.Buses() {
			p, ok := b.Prober()
			if !ok {
				continue
			}
			locs, err := p.Probe(ctx)
			if err != nil {
				failed[probeKey{name, b.Kind()}] = true
				r.logger.Warn("probe failed", "type", name, "bus", b.Kind(), "error", err)
				r.logError(name, b.Kind(), err)
				continue
			}
			for _, loc := range locs {
				if seen[loc] {
					continue
				}
				seen[loc] = true
				if r.findProbed(loc) != nil {
					continue
				}
				d, err := r.materialize(name, loc)
				if err != nil {
					r.logger.Warn("probe: device not added", "type", name, "location", loc, "error", err)
					r.logError(name, loc.Kind(), err)
					continue
				}
				r.probed = append(r.probed, d)
				r.logRegistry(d, "ADDED", "probed")
			}
		}
		_ = exemplar.Destroy()
	}

	kept := r.probed[:0]
	for _, d := range r.probed {
		loc := d.Locator()
		if seen[loc] || failed[probeKey{d.Type(), loc.Kind()}] {
			kept = append(kept, d)
			continue
		}
		_ = d.Destroy()
		r.logRegistry(d, "PURGED", "not seen")
		r.logger.Info("device purged", "device", d.ID(), "type", d.Type(), "location", loc)
	}
	clear(r.probed[len(kept):])
	r.probed = kept

	r.opts.Device.Metrics.Probed(len(r.probed))
	return len(r.probed)
}

func (r *Registry) types() []string {
	if len(r.opts.Types) > 0 {
		return r.opts.Types
	}
	return r.catalog.Names()
}

func (r *Registry) findProbed(loc bus.Locator) *model.Device {
	for _, d := range r.probed {
		if d.Locator() == loc {
			return d
		}
	}
	return nil
}

// materialize builds a device of typeName at loc and assigns the next ID.
// A partially built device is destroyed on failure.
func (r *Registry) materialize(typeName string, loc bus.Locator) (*model.Device, error) {
	d, err := r.catalog.New(typeName, r.opts.Device)
	if err != nil {
		return nil, err
	}
	if err := d.SetLocator(loc); err != nil {
		_ = d.Destroy()
		return nil, err
	}
	r.lastID++
	if err := d.AssignID(r.lastID); err != nil {
		_ = d.Destroy()
		return nil, err
	}
	return d, nil
}

// AddSpecified adds a device of typeName at loc to the specified pool.
func (r *Registry) AddSpecified(typeName string, loc bus.Locator) (model.ID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range r.specified {
		if d.Type() == typeName && d.Locator() == loc {
			return 0, fmt.Errorf("%w: %s at %s already specified as %d", fault.ErrIllegalArgument, typeName, loc, d.ID())
		}
	}
	d, err := r.materialize(typeName, loc)
	if err != nil {
		return 0, err
	}
	r.specified = append(r.specified, d)
	r.logRegistry(d, "ADDED", "specified")
	r.logger.Info("device specified", "device", d.ID(), "type", typeName, "location", loc)
	return d.ID(), nil
}

// Device returns the device with id. The specified pool is consulted first.
func (r *Registry) Device(id model.ID) (*model.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, pool := range [][]*model.Device{r.specified, r.probed} {
		for _, d := range pool {
			if d.ID() == id {
				return d, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %d", fault.ErrNoSuchDevice, id)
}

// IDs lists specified devices, then probed devices, each in ascending order.
func (r *Registry) IDs() []model.ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append(sortedIDs(r.specified), sortedIDs(r.probed)...)
}

func sortedIDs(pool []*model.Device) []model.ID {
	ids := make([]model.ID, len(pool))
	for i, d := range pool {
		ids[i] = d.ID()
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of tracked devices.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.specified) + len(r.probed)
}

// Close destroys every device. The registry can be reused afterwards; IDs
// keep counting from where they stopped.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var first error
	for _, d := range slices.Concat(r.specified, r.probed) {
		if err := d.Destroy(); err != nil && first == nil {
			first = err
		}
		r.logRegistry(d, "DESTROYED", "registry closed")
	}
	r.specified = nil
	r.probed = nil
	return first
}

func (r *Registry) logRegistry(d *model.Device, state, reason string) {
	r.capture.Log(log.Event{
		Timestamp:  time.Now(),
		Layer:      log.LayerDevice,
		Category:   log.CategoryState,
		DeviceID:   uint32(d.ID()),
		DeviceType: d.Type(),
		Bus:        d.Locator().Kind().String(),
		Location:   d.Locator().String(),
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityRegistry,
			NewState: state,
			Reason:   reason,
		},
	})
}

func (r *Registry) logError(typeName string, kind bus.Kind, err error) {
	r.capture.Log(log.Event{
		Timestamp:  time.Now(),
		Layer:      log.LayerDevice,
		Category:   log.CategoryError,
		DeviceType: typeName,
		Bus:        kind.String(),
		Error: &log.ErrorEventData{
			Layer:   log.LayerDevice,
			Message: err.Error(),
			Kind:    fault.KindOf(err).String(),
			Context: "probe",
		},
	})
}
