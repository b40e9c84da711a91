package registry_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/lumen-instruments/spectro-go/pkg/bus"
	"github.com/lumen-instruments/spectro-go/pkg/devices"
	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/log"
	"github.com/lumen-instruments/spectro-go/pkg/model"
	"github.com/lumen-instruments/spectro-go/pkg/registry"
	"github.com/lumen-instruments/spectro-go/pkg/sim"
	"github.com/lumen-instruments/spectro-go/pkg/transport"
	"github.com/lumen-instruments/spectro-go/pkg/transport/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	simA   = transport.USBAddress{Vendor: devices.VendorSim, Product: devices.ProductSim2048, Bus: 1, Address: 2}
	simB   = transport.USBAddress{Vendor: devices.VendorSim, Product: devices.ProductSim2048, Bus: 1, Address: 5}
	simLeg = transport.USBAddress{Vendor: devices.VendorSim, Product: devices.ProductSimLegacy, Bus: 2, Address: 1}
)

type recorder struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *recorder) Log(e log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) states(entity log.StateEntity) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if e.StateChange != nil && e.StateChange.Entity == entity {
			out = append(out, e.StateChange.NewState)
		}
	}
	return out
}

func newSimUSB(addrs ...transport.USBAddress) *sim.USB {
	u := sim.NewUSB()
	for _, a := range addrs {
		attach(u, a)
	}
	return u
}

func attach(u *sim.USB, a transport.USBAddress) {
	if a.Product == devices.ProductSimLegacy {
		u.Attach(a, sim.NewLegacyInstrument(sim.DefaultLegacyConfig("LEG", 2048)))
		return
	}
	u.Attach(a, sim.NewOBPInstrument(sim.DefaultOBPConfig("OBP", 2048)))
}

func newRegistry(drv devices.Drivers, capture log.Logger) *registry.Registry {
	return registry.New(devices.Default(), registry.Options{
		Device: devices.Options{Drivers: drv, Capture: capture},
	})
}

func TestProbeIdentityIsStable(t *testing.T) {
	usb := newSimUSB(simA, simB, simLeg)
	r := newRegistry(devices.Drivers{USB: usb}, nil)
	defer r.Close()

	require.Equal(t, 3, r.Probe(context.Background()))
	ids := r.IDs()
	assert.Equal(t, []model.ID{1, 2, 3}, ids)

	locs := make(map[model.ID]bus.Locator)
	for _, id := range ids {
		d, err := r.Device(id)
		require.NoError(t, err)
		locs[id] = d.Locator()
	}

	require.Equal(t, 3, r.Probe(context.Background()))
	assert.Equal(t, ids, r.IDs())
	for _, id := range ids {
		d, err := r.Device(id)
		require.NoError(t, err)
		assert.Equal(t, locs[id], d.Locator())
	}
}

func TestProbeTypes(t *testing.T) {
	usb := newSimUSB(simA, simLeg)
	r := newRegistry(devices.Drivers{USB: usb}, nil)
	defer r.Close()

	r.Probe(context.Background())
	types := make(map[string]int)
	for _, id := range r.IDs() {
		d, err := r.Device(id)
		require.NoError(t, err)
		types[d.Type()]++
	}
	assert.Equal(t, map[string]int{devices.TypeSim2048: 1, devices.TypeSimLegacy: 1}, types)
}

func TestProbePurgesUnseenAndNeverReusesIDs(t *testing.T) {
	usb := newSimUSB(simA, simB)
	rec := &recorder{}
	r := newRegistry(devices.Drivers{USB: usb}, rec)
	defer r.Close()

	require.Equal(t, 2, r.Probe(context.Background()))
	first, err := r.Device(1)
	require.NoError(t, err)
	loc, err := bus.NewUSBLocator(simA.Vendor, simA.Product, simA.Bus, simA.Address)
	require.NoError(t, err)
	require.Equal(t, loc, first.Locator())

	usb.Detach(simA)
	require.Equal(t, 1, r.Probe(context.Background()))
	_, err = r.Device(1)
	assert.ErrorIs(t, err, fault.ErrNoSuchDevice)
	assert.ErrorIs(t, first.Open(), fault.ErrNoSuchDevice, "purged device is destroyed")

	attach(usb, simA)
	require.Equal(t, 2, r.Probe(context.Background()))
	assert.Equal(t, []model.ID{2, 3}, r.IDs())

	assert.Equal(t, []string{"ADDED", "ADDED", "PURGED", "ADDED"}, rec.states(log.StateEntityRegistry))
}

func TestSpecifiedPoolIsNotProbed(t *testing.T) {
	usb := newSimUSB(simA)
	serial := sim.NewSerial()
	serial.Connect("/dev/ttyS0", sim.NewLegacyInstrument(sim.DefaultLegacyConfig("SER", 2048)))
	r := newRegistry(devices.Drivers{USB: usb, Serial: serial}, nil)
	defer r.Close()

	require.Equal(t, 1, r.Probe(context.Background()))

	loc, err := bus.NewSerialLocator("/dev/ttyS0", 9600)
	require.NoError(t, err)
	id, err := r.AddSpecified(devices.TypeSimLegacy, loc)
	require.NoError(t, err)
	assert.Equal(t, model.ID(2), id)

	_, err = r.AddSpecified(devices.TypeSimLegacy, loc)
	assert.ErrorIs(t, err, fault.ErrIllegalArgument)

	usb.Detach(simA)
	require.Equal(t, 0, r.Probe(context.Background()))
	assert.Equal(t, []model.ID{2}, r.IDs())

	d, err := r.Device(id)
	require.NoError(t, err)
	require.NoError(t, d.Open())
	proto, ok := d.Protocol()
	require.True(t, ok)
	assert.Equal(t, "LEGACY", proto.String())
}

func TestAddSpecifiedRejects(t *testing.T) {
	r := newRegistry(devices.Drivers{USB: sim.NewUSB()}, nil)
	defer r.Close()

	usbLoc, err := bus.NewUSBLocator(devices.VendorSim, devices.ProductSim2048, 1, 1)
	require.NoError(t, err)
	tcpLoc, err := bus.NewTCPLocator("10.0.0.7", devices.OceanFXPort)
	require.NoError(t, err)

	_, err = r.AddSpecified("NO-SUCH-TYPE", usbLoc)
	assert.ErrorIs(t, err, fault.ErrIllegalArgument)
	assert.ErrorIs(t, err, devices.ErrUnknownType)

	_, err = r.AddSpecified(devices.TypeSimLegacy, tcpLoc)
	assert.ErrorIs(t, err, fault.ErrIllegalArgument, "no TCP bus")

	id, err := r.AddSpecified(devices.TypeSim2048, usbLoc)
	require.NoError(t, err)
	assert.Equal(t, model.ID(1), id, "failed adds consume no IDs")
	assert.Equal(t, 1, r.Len())
}

func TestProbeFailureIsIsolated(t *testing.T) {
	drv := mocks.NewMockUSBDriver(t)
	drv.EXPECT().Enumerate(mock.Anything, mock.Anything).Return(nil, errors.New("libusb: busy"))

	network := sim.NewNetwork()
	network.Listen("192.0.2.10", devices.OceanFXPort,
		sim.NewOBPInstrument(sim.DefaultOBPConfig("NET", 2048)),
		&transport.ServiceEndpoint{Instance: "sim-net", Model: devices.TypeSim2048})

	rec := &recorder{}
	r := newRegistry(devices.Drivers{USB: drv, Dialer: network, Browser: network}, rec)
	defer r.Close()

	require.Equal(t, 1, r.Probe(context.Background()))
	d, err := r.Device(1)
	require.NoError(t, err)
	assert.Equal(t, devices.TypeSim2048, d.Type())
	assert.Equal(t, bus.KindTCP, d.Locator().Kind())

	var probeErrors int
	for _, e := range rec.events {
		if e.Error != nil && e.Error.Context == "probe" {
			probeErrors++
		}
	}
	assert.Equal(t, len(devices.Default().Names()), probeErrors, "one error per USB-capable type")
}

// flakyUSB fails enumeration on demand.
type flakyUSB struct {
	*sim.USB
	fail bool
}

func (f *flakyUSB) Enumerate(vendor, product uint16) ([]transport.USBAddress, error) {
	if f.fail {
		return nil, errors.New("libusb: io")
	}
	return f.USB.Enumerate(vendor, product)
}

func TestProbeKeepsDevicesBehindFailingBus(t *testing.T) {
	usb := &flakyUSB{USB: newSimUSB(simA)}
	r := newRegistry(devices.Drivers{USB: usb}, nil)
	defer r.Close()

	require.Equal(t, 1, r.Probe(context.Background()))
	usb.fail = true
	assert.Equal(t, 1, r.Probe(context.Background()))
	_, err := r.Device(1)
	assert.NoError(t, err)
}

func TestCloseTearsDownIdentity(t *testing.T) {
	usb := newSimUSB(simA, simB)
	rec := &recorder{}
	r := newRegistry(devices.Drivers{USB: usb}, rec)

	require.Equal(t, 2, r.Probe(context.Background()))
	d, err := r.Device(1)
	require.NoError(t, err)
	require.NoError(t, d.Open())
	assert.True(t, usb.Claimed(simA))

	require.NoError(t, r.Close())
	assert.False(t, d.IsOpen())
	assert.False(t, usb.Claimed(simA))
	assert.Zero(t, r.Len())
	assert.Empty(t, r.IDs())
	_, err = r.Device(1)
	assert.ErrorIs(t, err, fault.ErrNoSuchDevice)
	assert.Contains(t, rec.states(log.StateEntityRegistry), "DESTROYED")

	require.Equal(t, 2, r.Probe(context.Background()))
	assert.Equal(t, []model.ID{3, 4}, r.IDs())
}

func TestProbeHonorsTypeFilter(t *testing.T) {
	usb := newSimUSB(simA, simLeg)
	r := registry.New(devices.Default(), registry.Options{
		Device: devices.Options{Drivers: devices.Drivers{USB: usb}},
		Types:  []string{devices.TypeSimLegacy},
	})
	defer r.Close()

	require.Equal(t, 1, r.Probe(context.Background()))
	d, err := r.Device(r.IDs()[0])
	require.NoError(t, err)
	assert.Equal(t, devices.TypeSimLegacy, d.Type())
}
