package bus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/log"
	"github.com/lumen-instruments/spectro-go/pkg/metrics"
)

// DefaultTimeout is the read timeout used when Options leaves it zero.
const DefaultTimeout = time.Second

// Bus binds a device to one transport.
type Bus interface {
	// Kind returns the transport family.
	Kind() Kind

	// Locator returns the bound address, or nil before one is set.
	Locator() Locator

	// SetLocator binds an address. It fails with fault.ErrIllegalArgument
	// for a locator of another kind, or while the bus is open.
	SetLocator(l Locator) error

	// Open acquires the transport and builds the hint map. On failure
	// nothing stays acquired. Opening an open bus is a no-op.
	Open() error

	// Close releases the transport. Repeated calls return nil.
	Close() error

	// IsOpen reports whether Open succeeded and Close has not run.
	IsOpen() bool

	// Helper returns the TransferHelper for h. It fails with
	// fault.ErrNotOpen before Open.
	Helper(h Hint) (TransferHelper, error)

	// Prober returns the probing capability, if the bus has one.
	Prober() (Prober, bool)

	// SessionID returns the UUID of the current open, or "".
	SessionID() string

	// SetDeviceID tags capture events with the owning device's ID.
	SetDeviceID(id uint32)
}

// Prober finds hardware locations for one bus.
type Prober interface {
	Probe(ctx context.Context) ([]Locator, error)
}

// Options configures a bus.
type Options struct {
	// Timeout bounds every blocking read and write.
	Timeout time.Duration

	// Logger for operational messages. Nil discards.
	Logger *slog.Logger

	// Capture receives transport frames. Nil discards.
	Capture log.Logger

	// Metrics records transfer counters. Nil disables.
	Metrics *metrics.Collector
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	o.Capture = log.OrNoop(o.Capture)
	return o
}

// base holds the state common to every bus kind.
type base struct {
	kind     Kind
	opts     Options
	locator  Locator
	deviceID uint32

	helpers map[Hint]TransferHelper
	session *Session
	release func() error
}

func newBase(kind Kind, opts Options) base {
	return base{kind: kind, opts: opts.withDefaults()}
}

func (b *base) Kind() Kind {
	return b.kind
}

func (b *base) Locator() Locator {
	return b.locator
}

func (b *base) IsOpen() bool {
	return b.helpers != nil
}

func (b *base) SetDeviceID(id uint32) {
	b.deviceID = id
	if b.session != nil {
		b.session.DeviceID = id
	}
}

func (b *base) SessionID() string {
	if b.session == nil {
		return ""
	}
	return b.session.ID
}

func (b *base) setLocator(l Locator) error {
	if l == nil {
		return fmt.Errorf("%w: nil locator", fault.ErrIllegalArgument)
	}
	if l.Kind() != b.kind {
		return fmt.Errorf("%w: %s locator on %s bus", fault.ErrIllegalArgument, l.Kind(), b.kind)
	}
	if b.IsOpen() {
		return fmt.Errorf("%w: %s bus is open", fault.ErrIllegalArgument, b.kind)
	}
	b.locator = l
	return nil
}

func (b *base) Helper(h Hint) (TransferHelper, error) {
	if !b.IsOpen() {
		return nil, fmt.Errorf("%w: %s bus", fault.ErrNotOpen, b.kind)
	}
	helper, ok := b.helpers[h]
	if !ok {
		return nil, fmt.Errorf("%w: %s bus has no helper for hint %s", fault.ErrIllegalArgument, b.kind, h)
	}
	return helper, nil
}

// install wraps each helper for capture and marks the bus open.
func (b *base) install(helpers map[Hint]TransferHelper, release func() error, word int) {
	b.session = &Session{
		ID:       uuid.New().String(),
		DeviceID: b.deviceID,
		Location: b.locator.String(),
		Capture:  b.opts.Capture,
		Metrics:  b.opts.Metrics,
	}
	wrapped := make(map[Hint]TransferHelper, len(helpers))
	for hint, h := range helpers {
		wrapped[hint] = newInstrumented(h, hint, b.kind, b.session, word)
	}
	b.helpers = wrapped
	b.release = release
	b.opts.Logger.Debug("bus opened", "bus", b.kind, "location", b.locator, "session", b.session.ID)
}

func (b *base) Close() error {
	if !b.IsOpen() {
		return nil
	}
	release := b.release
	session := b.session.ID
	b.helpers = nil
	b.session = nil
	b.release = nil

	err := release()
	b.opts.Logger.Debug("bus closed", "bus", b.kind, "location", b.locator, "session", session, "error", err)
	return err
}
