// Package log provides structured protocol capture for the driver stack.
//
// This package defines the Logger interface and Event types for recording
// instrument traffic at several layers (transport, exchange, device). It is
// separate from operational logging (slog): protocol capture is a complete
// machine-readable trace of what crossed the bus, for debugging firmware
// and timing issues.
//
// # Basic Usage
//
// Callers hand a Logger to the registry through the device options:
//
//	// Binary capture file
//	fl, _ := log.NewFileLogger("/var/log/spectro/session.splog")
//
//	// File and console
//	capture := log.NewMultiLogger(fl, log.NewSlogAdapter(slog.Default()))
//
//	reg := registry.New(devices.Default(), registry.Options{
//	    Device: devices.Options{Drivers: drv, Capture: capture},
//	})
//
// # Event Types
//
//   - Transport: raw bytes moved by a TransferHelper (FrameEvent)
//   - Exchange: one executed transaction (ExchangeEvent)
//   - Device: open/close and registry changes (StateChangeEvent)
//
// Errors at any layer carry an ErrorEventData payload.
//
// # File Format
//
// Capture files are a stream of CBOR-encoded events with the .splog
// extension. `spectro log view` prints and filters them.
package log
