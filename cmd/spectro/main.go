// Command spectro drives spectrometers from the command line.
//
// It probes USB and mDNS for known instrument types, adds devices at fixed
// RS-232 or TCP locations from a configuration file, reads spectra, streams
// buffered acquisitions and views protocol capture files.
//
// Usage:
//
//	spectro [--config file] [--log-level level] [--capture file] [--sim] <command>
//
// Commands:
//
//	probe      List attached instruments
//	spectrum   Read one spectrum from a device
//	acquire    Stream fast buffer records to stdout
//	shell      Interactive session
//	log view   Print a capture file
//
// Examples:
//
//	# List instruments, including simulated ones
//	spectro --sim probe
//
//	# One spectrum at 20 ms from device 1
//	spectro spectrum --integration 20000 1
//
//	# 5000 buffered records with a protocol capture
//	spectro --capture run.splog acquire --count 5000 1
//
//	# Only transport events of device 1
//	spectro log view --layer transport --device 1 run.splog
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
