package main

import (
	"log/slog"

	"github.com/lumen-instruments/spectro-go/pkg/config"
	"github.com/lumen-instruments/spectro-go/pkg/devices"
	"github.com/lumen-instruments/spectro-go/pkg/sim"
	"github.com/lumen-instruments/spectro-go/pkg/transport"
)

// Simulated bench used by --sim.
const (
	simSerialPath = "/dev/ttySIM0"
	simHost       = "192.0.2.10"
)

// simDrivers attaches a SIM-2048 and a SIM-LEGACY to a simulated USB bus,
// wires a second SIM-LEGACY to simSerialPath and advertises a second
// SIM-2048 over mDNS at simHost.
func simDrivers(_ config.Config, logger *slog.Logger) (devices.Drivers, func()) {
	usb := sim.NewUSB()
	usb.Attach(
		transport.USBAddress{Vendor: devices.VendorSim, Product: devices.ProductSim2048, Bus: 1, Address: 4},
		sim.NewOBPInstrument(sim.DefaultOBPConfig("SIM2048-01", 2048)),
	)
	usb.Attach(
		transport.USBAddress{Vendor: devices.VendorSim, Product: devices.ProductSimLegacy, Bus: 1, Address: 7},
		sim.NewLegacyInstrument(sim.DefaultLegacyConfig("SIMLEG-01", 2048)),
	)

	ser := sim.NewSerial()
	ser.Connect(simSerialPath, sim.NewLegacyInstrument(sim.DefaultLegacyConfig("SIMLEG-02", 2048)))

	network := sim.NewNetwork()
	network.Listen(simHost, devices.OceanFXPort, sim.NewOBPInstrument(sim.DefaultOBPConfig("SIM2048-02", 2048)),
		&transport.ServiceEndpoint{Instance: "sim-2048-02", Model: devices.TypeSim2048, Serial: "SIM2048-02"})

	logger.Debug("simulated bench ready", "serial", simSerialPath, "host", simHost)
	return devices.Drivers{USB: usb, Serial: ser, Dialer: network, Browser: network}, nil
}
