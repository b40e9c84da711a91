// Package api is the handle-based boundary over the registry.
//
// Every call takes a device ID, a feature ID where one applies and a *Code
// out-parameter, and returns a count or a value. Nothing panics across the
// boundary: failures become codes, and a recovered panic reports
// CodeTransferError. A nil code pointer is allowed.
//
//	var code api.Code
//	n := a.ProbeDevices(ctx)
//	ids := make([]uint32, n)
//	a.DeviceIDs(ids)
//	a.OpenDevice(ids[0], &code)
package api

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/lumen-instruments/spectro-go/pkg/bus"
	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/model"
	"github.com/lumen-instruments/spectro-go/pkg/registry"
)

// API wraps a registry.
type API struct {
	reg    *registry.Registry
	logger *slog.Logger
}

// New creates a boundary over reg.
func New(reg *registry.Registry, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &API{reg: reg, logger: logger}
}

func set(code *Code, c Code) {
	if code != nil {
		*code = c
	}
}

// guard runs fn and reports its outcome in code.
func (a *API) guard(op string, code *Code, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("boundary call panicked", "op", op, "panic", r, "stack", string(debug.Stack()))
			set(code, CodeTransferError)
		}
	}()
	err := fn()
	if err != nil {
		a.logger.Debug("boundary call failed", "op", op, "error", err)
	}
	set(code, CodeOf(err))
}

// ProbeDevices refreshes the probed pool and returns its size.
func (a *API) ProbeDevices(ctx context.Context) int {
	var n int
	a.guard("probe", nil, func() error {
		n = a.reg.Probe(ctx)
		return nil
	})
	return n
}

// AddRS232DeviceLocation specifies a device reachable on a serial port and
// returns its ID, or 0.
func (a *API) AddRS232DeviceLocation(typeName, path string, baud int, code *Code) uint32 {
	var id model.ID
	a.guard("add-rs232", code, func() error {
		loc, err := bus.NewSerialLocator(path, baud)
		if err != nil {
			return err
		}
		id, err = a.reg.AddSpecified(typeName, loc)
		return err
	})
	return uint32(id)
}

// AddTCPIPv4DeviceLocation specifies a device reachable over TCP and
// returns its ID, or 0.
func (a *API) AddTCPIPv4DeviceLocation(typeName, host string, port int, code *Code) uint32 {
	var id model.ID
	a.guard("add-tcp", code, func() error {
		loc, err := bus.NewTCPLocator(host, port)
		if err != nil {
			return err
		}
		id, err = a.reg.AddSpecified(typeName, loc)
		return err
	})
	return uint32(id)
}

// NumberOfDeviceIDs returns the number of tracked devices.
func (a *API) NumberOfDeviceIDs() int {
	var n int
	a.guard("device-count", nil, func() error {
		n = a.reg.Len()
		return nil
	})
	return n
}

// DeviceIDs fills out with device IDs and returns the number written.
func (a *API) DeviceIDs(out []uint32) int {
	var n int
	a.guard("device-ids", nil, func() error {
		ids := a.reg.IDs()
		n = min(len(ids), len(out))
		for i := 0; i < n; i++ {
			out[i] = uint32(ids[i])
		}
		return nil
	})
	return n
}

// OpenDevice opens the device.
func (a *API) OpenDevice(id uint32, code *Code) {
	a.guard("open", code, func() error {
		d, err := a.reg.Device(model.ID(id))
		if err != nil {
			return err
		}
		return d.Open()
	})
}

// CloseDevice closes the device.
func (a *API) CloseDevice(id uint32, code *Code) {
	a.guard("close", code, func() error {
		d, err := a.reg.Device(model.ID(id))
		if err != nil {
			return err
		}
		return d.Close()
	})
}

// DeviceType copies the type name into out and returns its length.
func (a *API) DeviceType(id uint32, code *Code, out []byte) int {
	var n int
	a.guard("device-type", code, func() error {
		d, err := a.reg.Device(model.ID(id))
		if err != nil {
			return err
		}
		n, err = copyString(out, d.Type())
		return err
	})
	return n
}

// NumberOfFeatures returns how many features of family the device has.
func (a *API) NumberOfFeatures(id uint32, family model.FeatureFamily, code *Code) int {
	var n int
	a.guard("feature-count", code, func() error {
		d, err := a.reg.Device(model.ID(id))
		if err != nil {
			return err
		}
		n = len(d.FeatureIDs(family))
		return nil
	})
	return n
}

// FeatureIDs fills out with the IDs of the device's features of family and
// returns the number written.
func (a *API) FeatureIDs(id uint32, family model.FeatureFamily, code *Code, out []uint32) int {
	var n int
	a.guard("feature-ids", code, func() error {
		d, err := a.reg.Device(model.ID(id))
		if err != nil {
			return err
		}
		ids := d.FeatureIDs(family)
		n = min(len(ids), len(out))
		for i := 0; i < n; i++ {
			out[i] = uint32(ids[i])
		}
		return nil
	})
	return n
}

// Shutdown destroys every device.
func (a *API) Shutdown() {
	a.guard("shutdown", nil, a.reg.Close)
}

// feature resolves a typed feature of a device.
func feature[T model.Capability](a *API, id, fid uint32) (T, error) {
	var zero T
	d, err := a.reg.Device(model.ID(id))
	if err != nil {
		return zero, err
	}
	f, err := d.Feature(model.FeatureID(fid))
	if err != nil {
		return zero, err
	}
	t, ok := f.(T)
	if !ok {
		return zero, fmt.Errorf("%w: feature %d of device %d is %s", fault.ErrNoSuchFeature, fid, id, f.Family())
	}
	return t, nil
}

// copyString copies s into out. out must hold all of s.
func copyString(out []byte, s string) (int, error) {
	if len(out) < len(s) {
		return 0, fmt.Errorf("%w: %d bytes for %d", ErrInvalidBuffer, len(out), len(s))
	}
	return copy(out, s), nil
}
