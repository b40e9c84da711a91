package devices

import (
	"github.com/lumen-instruments/spectro-go/pkg/bus"
	"github.com/lumen-instruments/spectro-go/pkg/features"
	"github.com/lumen-instruments/spectro-go/pkg/model"
	"github.com/lumen-instruments/spectro-go/pkg/protocol"
)

// Type names.
const (
	TypeUSB2000Plus = "USB2000PLUS"
	TypeQEPro       = "QE-PRO"
	TypeOceanFX     = "OCEAN-FX"
	TypeSim2048     = "SIM-2048"
	TypeSimLegacy   = "SIM-LEGACY"
)

// USB identifiers.
const (
	VendorOcean uint16 = 0x2457
	VendorSim   uint16 = 0xFFFF

	ProductUSB2000Plus uint16 = 0x101E
	ProductQEPro       uint16 = 0x4004
	ProductOceanFX     uint16 = 0x2001
	ProductSim2048     uint16 = 0x2048
	ProductSimLegacy   uint16 = 0x0001
)

// OceanFXPort is the TCP port network instruments listen on.
const OceanFXPort = 57357

var builtin = []struct {
	name string
	ctor Constructor
}{
	{TypeUSB2000Plus, newUSB2000Plus},
	{TypeQEPro, newQEPro},
	{TypeOceanFX, newOceanFX},
	{TypeSim2048, newSim2048},
	{TypeSimLegacy, newSimLegacy},
}

// Endpoint maps.
var (
	// legacyEndpoints sends everything on EP1 OUT; spectra come back on a
	// dedicated pipe.
	legacyEndpoints = map[bus.Hint]bus.Endpoints{
		bus.HintControl:  {Out: 0x01, In: 0x01},
		bus.HintSpectrum: {Out: 0x01, In: 0x02},
	}

	obpEndpoints = map[bus.Hint]bus.Endpoints{
		bus.HintControl:    {Out: 0x01, In: 0x01},
		bus.HintSpectrum:   {Out: 0x01, In: 0x01},
		bus.HintBulkBuffer: {Out: 0x01, In: 0x01},
	}
)

// Legacy integration limits, in microseconds.
var usb2000Limits = features.IntegrationLimits{Min: 1000, Max: 65_535_000}

func usbBus(opts Options, vendor, product uint16, eps map[bus.Hint]bus.Endpoints, word int) []bus.Bus {
	if opts.Drivers.USB == nil {
		return nil
	}
	return []bus.Bus{bus.NewUSBBus(opts.Drivers.USB, bus.USBConfig{
		Vendor:    vendor,
		Product:   product,
		Endpoints: eps,
		WordSize:  word,
	}, opts.busOptions(bus.KindUSB))}
}

func serialBus(opts Options) []bus.Bus {
	if opts.Drivers.Serial == nil {
		return nil
	}
	return []bus.Bus{bus.NewSerialBus(opts.Drivers.Serial, opts.busOptions(bus.KindRS232))}
}

func tcpBus(opts Options, modelName string) []bus.Bus {
	if opts.Drivers.Dialer == nil {
		return nil
	}
	return []bus.Bus{bus.NewTCPBus(opts.Drivers.Dialer, bus.TCPConfig{
		Browser:       opts.Drivers.Browser,
		Model:         modelName,
		BrowseTimeout: opts.BrowseTimeout,
	}, opts.busOptions(bus.KindTCP))}
}

func config(name string, pixels int, opts Options, p protocol.Protocol, buses []bus.Bus, fs ...model.Capability) model.Config {
	return model.Config{
		Type:      name,
		Pixels:    pixels,
		Buses:     buses,
		Protocols: []protocol.Protocol{p},
		Features:  fs,
		Logger:    opts.Logger,
		Capture:   opts.Capture,
		Metrics:   opts.Metrics,
	}
}

// Binding shorthands.

func onLegacy[H any](h H) model.Binding[H] {
	return model.Binding[H]{Family: protocol.FamilyLegacy, Helper: h}
}

func onOBP[H any](h H) model.Binding[H] {
	return model.Binding[H]{Family: protocol.FamilyOBP, Helper: h}
}

// legacyFeatures is the feature set of opcode-protocol instruments.
func legacyFeatures(pixels int, limits features.IntegrationLimits) []model.Capability {
	return []model.Capability{
		features.NewSpectrometer(pixels, onLegacy(features.LegacySpectrometer(limits))),
		features.NewSerialNumber(onLegacy(features.LegacySerialNumber())),
		features.NewEEPROM(onLegacy(features.LegacyEEPROM())),
		features.NewLamp(onLegacy(features.LegacyLamp())),
		features.NewNonlinearity(onLegacy(features.LegacyNonlinearity())),
	}
}

// obpFeatures is the common feature set of OBP instruments. Detectors with
// pixel binning size their spectra by the active factor.
func obpFeatures(pixels int, binned bool) []model.Capability {
	spec := features.OBPSpectrometer()
	if binned {
		spec = features.OBPBinnedSpectrometer()
	}
	return []model.Capability{
		features.NewSpectrometer(pixels, onOBP(spec)),
		features.NewSerialNumber(onOBP(features.OBPSerialNumber())),
		features.NewRevision(onOBP(features.OBPRevision())),
		features.NewLamp(onOBP(features.OBPLamp())),
		features.NewNonlinearity(onOBP(features.OBPNonlinearity())),
		features.NewDataBuffer(onOBP(features.OBPDataBuffer())),
	}
}

func newUSB2000Plus(opts Options) (*model.Device, error) {
	const pixels = 2048
	buses := append(usbBus(opts, VendorOcean, ProductUSB2000Plus, legacyEndpoints, 0), serialBus(opts)...)
	return model.NewDevice(config(TypeUSB2000Plus, pixels, opts, protocol.Legacy, buses,
		legacyFeatures(pixels, usb2000Limits)...))
}

func newQEPro(opts Options) (*model.Device, error) {
	const pixels = 1044
	fs := append(obpFeatures(pixels, false),
		features.NewThermoElectric(onOBP(features.OBPThermoElectric())),
	)
	buses := usbBus(opts, VendorOcean, ProductQEPro, obpEndpoints, bus.DefaultWordSize)
	return model.NewDevice(config(TypeQEPro, pixels, opts, protocol.OBP, buses, fs...))
}

func newOceanFX(opts Options) (*model.Device, error) {
	const pixels = 2136
	fs := append(obpFeatures(pixels, true),
		features.NewPixelBinning(onOBP(features.OBPPixelBinning())),
		features.NewFastBuffer(pixels, onOBP(features.OBPFastBuffer())),
	)
	buses := append(usbBus(opts, VendorOcean, ProductOceanFX, obpEndpoints, 0), tcpBus(opts, TypeOceanFX)...)
	return model.NewDevice(config(TypeOceanFX, pixels, opts, protocol.OBP, buses, fs...))
}

// newSim2048 carries every OBP feature plus a legacy-only EEPROM, which
// reports a protocol mismatch on every call.
func newSim2048(opts Options) (*model.Device, error) {
	const pixels = 2048
	fs := append(obpFeatures(pixels, true),
		features.NewThermoElectric(onOBP(features.OBPThermoElectric())),
		features.NewPixelBinning(onOBP(features.OBPPixelBinning())),
		features.NewFastBuffer(pixels, onOBP(features.OBPFastBuffer())),
		features.NewEEPROM(onLegacy(features.LegacyEEPROM())),
	)
	buses := append(usbBus(opts, VendorSim, ProductSim2048, obpEndpoints, 0), tcpBus(opts, TypeSim2048)...)
	return model.NewDevice(config(TypeSim2048, pixels, opts, protocol.OBP, buses, fs...))
}

func newSimLegacy(opts Options) (*model.Device, error) {
	const pixels = 2048
	buses := append(usbBus(opts, VendorSim, ProductSimLegacy, legacyEndpoints, 0), serialBus(opts)...)
	return model.NewDevice(config(TypeSimLegacy, pixels, opts, protocol.Legacy, buses,
		legacyFeatures(pixels, usb2000Limits)...))
}
