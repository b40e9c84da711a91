// Package model implements the device composition model of the driver
// stack.
//
// # Composition
//
// A Device is built once by a catalog constructor and never changes shape:
//
//	Device (OCEAN-FX, id 3)
//	├── Buses:     USB, TCP
//	├── Protocols: OBP
//	└── Features:
//	    ├── Spectrometer  [OBP → obpSpectrometer]
//	    ├── SerialNumber  [OBP → obpSerial]
//	    ├── DataBuffer    [OBP → obpBuffer]
//	    └── FastBuffer    [OBP → obpFastBuffer]
//
// Opening a device binds the bus matching its locator and selects the
// protocol that bus speaks. Each Feature then resolves the helper bound to
// that protocol family. A feature with no helper for the active family
// fails every call with fault.ErrProtocolMismatch without touching the
// bus.
//
// # Feature Families
//
// Every feature carries a FeatureFamily tag used for enumeration at the
// boundary: callers ask how many features of a family a device has, then
// fetch their IDs.
//
// # Lifecycle
//
// Open binds, Close releases feature state and then the bus, Destroy closes
// and marks the device unusable. After Close any feature call returns
// fault.ErrNotOpen.
package model
