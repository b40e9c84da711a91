// Package features provides the spectrometer capabilities exposed by
// devices.
//
// Each feature pairs a capability tag with one helper per protocol family
// it supports. Helpers for the legacy opcode protocol and for OBP live
// next to the feature they implement:
//
//	spec := features.NewSpectrometer(2048,
//	    model.Binding[features.SpectrometerHelper]{Family: protocol.FamilyOBP, Helper: features.OBPSpectrometer()},
//	)
//
// Feature methods resolve the helper for the open device's protocol and
// run its exchanges. Argument checks that can be made from cached limits
// happen before any I/O.
//
// # Features
//
//   - Spectrometer: integration time, trigger mode, spectra, wavelengths
//   - SerialNumber, Revision: identity
//   - EEPROM: raw information slots (legacy only)
//   - ThermoElectric: detector cooler
//   - Lamp: strobe/lamp output
//   - Nonlinearity: correction coefficients
//   - PixelBinning: binning factor
//   - DataBuffer: on-device buffer capacity and housekeeping
//   - FastBuffer: pipelined batch acquisition
package features
