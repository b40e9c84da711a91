// Package sim provides in-process instruments and transport drivers.
//
// Instruments answer byte-level requests exactly as hardware would: an
// OBPInstrument speaks the binary message protocol and keeps an on-device
// record buffer, a LegacyInstrument speaks the opcode protocol. Drivers
// attach instruments to simulated USB addresses, serial paths and network
// endpoints, and implement the transport interfaces the buses consume:
//
//	usb := sim.NewUSB()
//	usb.Attach(transport.USBAddress{Vendor: 0x2457, Product: 0x4004, Bus: 1, Address: 4},
//	    sim.NewOBPInstrument(sim.DefaultOBPConfig("SIM00001", 2048)))
//	b := bus.NewUSBBus(usb, cfg, bus.Options{})
//
// Reads never block. When an instrument has nothing to say, a read fails
// with fault.ErrTimeout at once.
package sim
