package model

import (
	"fmt"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/protocol"
)

// Initializer is implemented by helpers that need to talk to the device
// once after it opens, for example to cache calibration data.
type Initializer interface {
	Initialize(l *protocol.Link) error
}

// Capability is the protocol-independent view of a feature held by a
// Device.
type Capability interface {
	// Family returns the capability tag.
	Family() FeatureFamily

	// Supports reports whether a helper exists for the protocol family.
	Supports(f protocol.Family) bool

	// Bind resolves the helper for l's protocol and runs its initializer.
	// A mismatch is not an error here; it surfaces on every call instead.
	Bind(l *protocol.Link) error

	// Release drops the binding. Later calls fail with fault.ErrNotOpen.
	Release()
}

// Binding pairs a protocol family with the helper implementing a feature
// for it.
type Binding[H any] struct {
	Family protocol.Family
	Helper H
}

// Feature is a capability with one helper per supported protocol family.
// The binding list is fixed at construction.
type Feature[H any] struct {
	family   FeatureFamily
	bindings []Binding[H]

	link   *protocol.Link
	helper H
	found  bool
	broken error
}

// Compile-time interface satisfaction check.
var _ Capability = (*Feature[any])(nil)

// NewFeature creates a feature of family with the given bindings. Later
// bindings for an already listed protocol family are ignored.
func NewFeature[H any](family FeatureFamily, bindings ...Binding[H]) *Feature[H] {
	f := &Feature[H]{family: family}
	for _, b := range bindings {
		if !f.Supports(b.Family) {
			f.bindings = append(f.bindings, b)
		}
	}
	return f
}

// Family returns the capability tag.
func (f *Feature[H]) Family() FeatureFamily {
	return f.family
}

// Supports reports whether a helper exists for p.
func (f *Feature[H]) Supports(p protocol.Family) bool {
	for _, b := range f.bindings {
		if b.Family == p {
			return true
		}
	}
	return false
}

// Bind resolves the helper for the link's protocol. If the helper
// implements Initializer it runs now; a failure leaves only this feature
// unusable and is returned for logging.
func (f *Feature[H]) Bind(l *protocol.Link) error {
	f.Release()
	if l == nil {
		return fmt.Errorf("%w: nil link", fault.ErrIllegalArgument)
	}
	f.link = l
	for _, b := range f.bindings {
		if b.Family == l.Protocol.Family {
			f.helper = b.Helper
			f.found = true
			break
		}
	}
	if !f.found {
		return nil
	}
	if init, ok := any(f.helper).(Initializer); ok {
		if err := init.Initialize(l); err != nil {
			f.broken = fmt.Errorf("%w: %s: %w", fault.ErrFeatureUnusable, f.family, err)
			return f.broken
		}
	}
	return nil
}

// Release drops the binding.
func (f *Feature[H]) Release() {
	var zero H
	f.link = nil
	f.helper = zero
	f.found = false
	f.broken = nil
}

// Resolve returns the active helper and link. It fails with
// fault.ErrNotOpen when unbound, fault.ErrProtocolMismatch when no helper
// matches the active protocol, and fault.ErrFeatureUnusable when the
// helper failed to initialize. No I/O happens here.
func (f *Feature[H]) Resolve() (H, *protocol.Link, error) {
	var zero H
	switch {
	case f.link == nil:
		return zero, nil, fmt.Errorf("%w: %s feature", fault.ErrNotOpen, f.family)
	case !f.found:
		return zero, nil, fmt.Errorf("%w: %s feature has no helper for %s",
			fault.ErrProtocolMismatch, f.family, f.link.Protocol)
	case f.broken != nil:
		return zero, nil, f.broken
	}
	return f.helper, f.link, nil
}
