// Package bus binds a device to one physical transport.
//
// A Bus holds a Locator describing where the instrument lives and, once
// opened, a map from Hint to TransferHelper. Protocol code asks the bus for
// a helper by hint and never sees endpoint numbers, alignment rules or
// chunking; those are resolved when the bus opens, because USB endpoint
// addresses depend on the configuration negotiated with the hardware.
//
// Buses that can find hardware on their own expose a Prober through the
// Prober method. Callers query the capability explicitly:
//
//	if p, ok := b.Prober(); ok {
//	    locs, err := p.Probe(ctx)
//	    ...
//	}
//
// Open never leaves a transport handle behind on failure, and Close is
// idempotent.
package bus
