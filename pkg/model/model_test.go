package model

import (
	"errors"
	"testing"

	"github.com/lumen-instruments/spectro-go/pkg/bus"
	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/protocol"
	"github.com/lumen-instruments/spectro-go/pkg/protocol/protocoltest"
)

// echoHelper is a feature helper that sends one byte per call.
type echoHelper struct {
	tag     byte
	initErr error
	inits   int
}

func (h *echoHelper) Initialize(l *protocol.Link) error {
	h.inits++
	return h.initErr
}

func (h *echoHelper) ping(l *protocol.Link) error {
	tx := protocol.Transaction[struct{}]{
		Name:      "ping",
		Hint:      bus.HintControl,
		Transfers: []protocol.Transfer{protocol.Send([]byte{h.tag})},
	}
	_, err := tx.Execute(l)
	return err
}

// pinger is a feature wrapping echoHelper the way concrete features wrap
// their helpers.
type pinger struct {
	*Feature[*echoHelper]
}

func (p pinger) Ping() error {
	h, l, err := p.Resolve()
	if err != nil {
		return err
	}
	return h.ping(l)
}

// serialBus is an in-memory RS-232 bus.
type serialBus struct {
	protocoltest.Bus
}

func (b *serialBus) Kind() bus.Kind { return bus.KindRS232 }

func newTestDevice(t *testing.T, features ...Capability) (*Device, *protocoltest.Helper, *protocoltest.Bus) {
	t.Helper()
	h := &protocoltest.Helper{}
	b := &protocoltest.Bus{H: h, Closed: true}
	d, err := NewDevice(Config{
		Type:      "TEST",
		Buses:     []bus.Bus{b},
		Protocols: []protocol.Protocol{protocol.OBP},
		Features:  features,
	})
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}
	if err := d.SetLocator(bus.USBLocator{Vendor: 1, Product: 2}); err != nil {
		t.Fatalf("SetLocator: %v", err)
	}
	return d, h, b
}

func TestNewDeviceValidation(t *testing.T) {
	usb := &protocoltest.Bus{}
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no type", Config{Buses: []bus.Bus{usb}, Protocols: []protocol.Protocol{protocol.OBP}}},
		{"no buses", Config{Type: "X", Protocols: []protocol.Protocol{protocol.OBP}}},
		{"no protocols", Config{Type: "X", Buses: []bus.Bus{usb}}},
		{"duplicate bus kind", Config{Type: "X", Buses: []bus.Bus{usb, &protocoltest.Bus{}}, Protocols: []protocol.Protocol{protocol.OBP}}},
		{"route to missing protocol", Config{
			Type:      "X",
			Buses:     []bus.Bus{usb},
			Protocols: []protocol.Protocol{protocol.OBP},
			Routes:    map[bus.Kind]protocol.Family{bus.KindUSB: protocol.FamilyLegacy},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDevice(tt.cfg); !errors.Is(err, fault.ErrIllegalArgument) {
				t.Errorf("NewDevice() = %v, want ErrIllegalArgument", err)
			}
		})
	}
}

func TestOpenBindsAndCloseReleases(t *testing.T) {
	helper := &echoHelper{tag: 0x42}
	f := pinger{NewFeature(FamilySpectrometer, Binding[*echoHelper]{Family: protocol.FamilyOBP, Helper: helper})}
	d, h, b := newTestDevice(t, f)

	if err := f.Ping(); !errors.Is(err, fault.ErrNotOpen) {
		t.Fatalf("Ping before open = %v, want ErrNotOpen", err)
	}
	if err := d.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !d.IsOpen() || !b.IsOpen() {
		t.Fatal("device and bus should be open")
	}
	if helper.inits != 1 {
		t.Errorf("initializer ran %d times, want 1", helper.inits)
	}
	if p, ok := d.Protocol(); !ok || p != protocol.OBP {
		t.Errorf("Protocol() = %v, %v", p, ok)
	}

	if err := f.Ping(); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if len(h.Sent) != 1 || h.Sent[0][0] != 0x42 {
		t.Errorf("sent %v", h.Sent)
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if b.IsOpen() {
		t.Error("bus still open after Close")
	}
	if err := f.Ping(); !errors.Is(err, fault.ErrNotOpen) {
		t.Errorf("Ping after close = %v, want ErrNotOpen", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestProtocolMismatchHasNoSideEffects(t *testing.T) {
	f := pinger{NewFeature(FamilyEEPROM, Binding[*echoHelper]{Family: protocol.FamilyLegacy, Helper: &echoHelper{}})}
	d, h, b := newTestDevice(t, f)
	if err := d.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := f.Ping(); !errors.Is(err, fault.ErrProtocolMismatch) {
			t.Fatalf("Ping #%d = %v, want ErrProtocolMismatch", i, err)
		}
	}
	if len(h.Sent) != 0 {
		t.Errorf("mismatched feature sent %d frames", len(h.Sent))
	}
	if len(b.Hints) != 0 {
		t.Errorf("mismatched feature asked for helpers %v", b.Hints)
	}
	if f.Supports(protocol.FamilyOBP) {
		t.Error("Supports(OBP) = true")
	}
}

func TestInitializerFailureIsolated(t *testing.T) {
	cause := errors.New("eeprom unreadable")
	bad := pinger{NewFeature(FamilyNonlinearity, Binding[*echoHelper]{Family: protocol.FamilyOBP, Helper: &echoHelper{initErr: cause}})}
	good := pinger{NewFeature(FamilySerialNumber, Binding[*echoHelper]{Family: protocol.FamilyOBP, Helper: &echoHelper{tag: 1}})}
	d, _, _ := newTestDevice(t, bad, good)

	if err := d.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	err := bad.Ping()
	if !errors.Is(err, fault.ErrFeatureUnusable) || !errors.Is(err, cause) {
		t.Errorf("bad.Ping() = %v, want ErrFeatureUnusable wrapping cause", err)
	}
	if err := good.Ping(); err != nil {
		t.Errorf("good.Ping() = %v", err)
	}
}

func TestRoutesSelectProtocolPerBus(t *testing.T) {
	usb := &protocoltest.Bus{H: &protocoltest.Helper{}, Closed: true}
	rs := &serialBus{protocoltest.Bus{H: &protocoltest.Helper{}, Closed: true}}
	d, err := NewDevice(Config{
		Type:      "DUAL",
		Buses:     []bus.Bus{usb, rs},
		Protocols: []protocol.Protocol{protocol.OBP, protocol.Legacy},
		Routes:    map[bus.Kind]protocol.Family{bus.KindRS232: protocol.FamilyLegacy},
	})
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}

	if err := d.SetLocator(bus.SerialLocator{Path: "/dev/ttyS0", Baud: 9600}); err != nil {
		t.Fatalf("SetLocator: %v", err)
	}
	if err := d.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if p, _ := d.Protocol(); p.Family != protocol.FamilyLegacy {
		t.Errorf("RS-232 protocol = %s, want LEGACY", p)
	}
	if d.Link().Bus != bus.Bus(rs) {
		t.Error("active bus is not the serial bus")
	}
	if err := d.SetLocator(bus.USBLocator{Vendor: 1}); !errors.Is(err, fault.ErrIllegalArgument) {
		t.Errorf("SetLocator while open = %v", err)
	}
	_ = d.Close()

	if err := d.SetLocator(bus.USBLocator{Vendor: 1}); err != nil {
		t.Fatalf("SetLocator: %v", err)
	}
	if err := d.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if p, _ := d.Protocol(); p.Family != protocol.FamilyOBP {
		t.Errorf("USB protocol = %s, want OBP", p)
	}
}

func TestSetLocatorWithoutMatchingBus(t *testing.T) {
	d, _, _ := newTestDevice(t)
	err := d.SetLocator(bus.TCPLocator{Host: "10.0.0.2", Port: 57357})
	if !errors.Is(err, fault.ErrIllegalArgument) {
		t.Errorf("SetLocator(tcp) = %v, want ErrIllegalArgument", err)
	}
}

func TestOpenWithoutLocator(t *testing.T) {
	d, err := NewDevice(Config{Type: "X", Buses: []bus.Bus{&protocoltest.Bus{}}, Protocols: []protocol.Protocol{protocol.OBP}})
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}
	if err := d.Open(); !errors.Is(err, ErrNoLocator) {
		t.Errorf("Open() = %v, want ErrNoLocator", err)
	}
}

func TestAssignIDOnce(t *testing.T) {
	d, _, _ := newTestDevice(t)
	if err := d.AssignID(0); !errors.Is(err, fault.ErrIllegalArgument) {
		t.Errorf("AssignID(0) = %v", err)
	}
	if err := d.AssignID(7); err != nil {
		t.Fatalf("AssignID: %v", err)
	}
	if err := d.AssignID(8); !errors.Is(err, ErrIDAssigned) {
		t.Errorf("second AssignID = %v, want ErrIDAssigned", err)
	}
	if d.ID() != 7 {
		t.Errorf("ID() = %d, want 7", d.ID())
	}
}

func TestDestroy(t *testing.T) {
	f := pinger{NewFeature(FamilySpectrometer, Binding[*echoHelper]{Family: protocol.FamilyOBP, Helper: &echoHelper{}})}
	d, _, b := newTestDevice(t, f)
	if err := d.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := d.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if b.IsOpen() {
		t.Error("bus open after Destroy")
	}
	if err := d.Open(); !errors.Is(err, fault.ErrNoSuchDevice) {
		t.Errorf("Open after Destroy = %v, want ErrNoSuchDevice", err)
	}
	if err := f.Ping(); !errors.Is(err, fault.ErrNotOpen) {
		t.Errorf("Ping after Destroy = %v", err)
	}
}

func TestFeatureLookup(t *testing.T) {
	a := pinger{NewFeature[*echoHelper](FamilySpectrometer)}
	b := pinger{NewFeature[*echoHelper](FamilyDataBuffer)}
	c := pinger{NewFeature[*echoHelper](FamilyDataBuffer)}
	d, _, _ := newTestDevice(t, a, b, c)

	ids := d.FeatureIDs(FamilyDataBuffer)
	if len(ids) != 2 || ids[0] != 2 || ids[1] != 3 {
		t.Errorf("FeatureIDs(DATA_BUFFER) = %v, want [2 3]", ids)
	}
	if len(d.FeatureIDs(FamilyPixelBinning)) != 0 {
		t.Error("unexpected PIXEL_BINNING feature")
	}
	f, err := d.Feature(1)
	if err != nil || f.Family() != FamilySpectrometer {
		t.Errorf("Feature(1) = %v, %v", f, err)
	}
	if _, err := d.Feature(4); !errors.Is(err, fault.ErrNoSuchFeature) {
		t.Errorf("Feature(4) = %v", err)
	}
	if _, err := d.Feature(0); !errors.Is(err, fault.ErrNoSuchFeature) {
		t.Errorf("Feature(0) = %v", err)
	}

	got, err := FeatureOf[pinger](d)
	if err != nil || got.Family() != FamilySpectrometer {
		t.Errorf("FeatureOf = %v, %v", got, err)
	}
}

func TestDuplicateBindingIgnored(t *testing.T) {
	first := &echoHelper{tag: 1}
	f := NewFeature(FamilyLamp,
		Binding[*echoHelper]{Family: protocol.FamilyOBP, Helper: first},
		Binding[*echoHelper]{Family: protocol.FamilyOBP, Helper: &echoHelper{tag: 2}},
	)
	if err := f.Bind(&protocol.Link{Protocol: protocol.OBP, Bus: &protocoltest.Bus{}}); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	h, _, err := f.Resolve()
	if err != nil || h != first {
		t.Errorf("Resolve() = %v, %v; want first helper", h, err)
	}
}

func TestFamilyStrings(t *testing.T) {
	if FamilyDataBuffer == FamilyPixelBinning {
		t.Fatal("DATA_BUFFER and PIXEL_BINNING share a value")
	}
	for _, f := range Families {
		got, ok := ParseFamily(f.String())
		if !ok || got != f {
			t.Errorf("ParseFamily(%q) = %v, %v", f, got, ok)
		}
	}
	if FeatureFamily(99).String() != "UNKNOWN" {
		t.Error("unknown family string")
	}
}
