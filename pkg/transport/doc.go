// Package transport defines the byte-level primitives the driver stack is
// built on: USB bulk pipes, RS-232 ports and TCP sockets.
//
// The interfaces here are deliberately thin. They move bytes and report
// timeouts; everything protocol-aware lives above them in package bus.
// Concrete implementations live in the usb, serial and tcp subpackages and
// in package sim for simulated instruments.
//
// # Timeouts
//
// Every Read honours the timeout the stream was opened with. A read that
// sees no data before the deadline returns an error wrapping
// fault.ErrTimeout. Any other failure is an I/O error and is wrapped as
// fault.ErrTransfer by the caller.
//
// # Framing
//
// ReadFull and WriteAll loop over partial transfers for stream transports.
// A read that times out after receiving some but not all bytes is a
// truncated frame and reports a format error.
package transport
