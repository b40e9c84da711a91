package log

import "time"

// Event represents a protocol capture event at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies one bus open (UUID). Empty for registry events.
	SessionID string `cbor:"2,keyasint,omitempty"`

	// Direction indicates data flow relative to the host. Events that move
	// no data leave it as DirectionNone.
	Direction Direction `cbor:"3,keyasint,omitempty"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// DeviceID is the registry ID of the device, 0 if not yet assigned.
	DeviceID uint32 `cbor:"6,keyasint,omitempty"`

	// DeviceType is the catalog type name.
	DeviceType string `cbor:"7,keyasint,omitempty"`

	// Bus is the transport kind (USB, RS232, TCP).
	Bus string `cbor:"8,keyasint,omitempty"`

	// Location is the locator in display form.
	Location string `cbor:"9,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"` // Transport layer
	Exchange    *ExchangeEvent    `cbor:"11,keyasint,omitempty"` // Exchange layer
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"` // Device/registry state
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of data flow.
type Direction uint8

const (
	// DirectionNone marks events that carry no data flow.
	DirectionNone Direction = 0
	// DirectionIn indicates data read from the instrument.
	DirectionIn Direction = 1
	// DirectionOut indicates data written to the instrument.
	DirectionOut Direction = 2
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionNone:
		return "NONE"
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which layer captured the event.
type Layer uint8

const (
	// LayerTransport is the TransferHelper layer (raw bytes).
	LayerTransport Layer = 0
	// LayerExchange is the protocol exchange layer.
	LayerExchange Layer = 1
	// LayerDevice is the device and registry layer.
	LayerDevice Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerExchange:
		return "EXCHANGE"
	case LayerDevice:
		return "DEVICE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates bytes or an exchange on the wire.
	CategoryMessage Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw bytes at the transport layer.
type FrameEvent struct {
	// Size is the number of bytes the caller asked to move.
	Size int `cbor:"1,keyasint"`

	// Padded is the size actually moved on the wire when the helper pads
	// to a word boundary. Zero when no padding was applied.
	Padded int `cbor:"2,keyasint,omitempty"`

	// Hint names the helper selection hint (CONTROL, SPECTRUM, ...).
	Hint string `cbor:"3,keyasint,omitempty"`

	// Data is the raw bytes (may be truncated for large frames).
	Data []byte `cbor:"4,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"5,keyasint,omitempty"`
}

// ExchangeEvent captures one executed transaction.
type ExchangeEvent struct {
	// Protocol is the wire protocol family name.
	Protocol string `cbor:"1,keyasint"`

	// Name identifies the exchange (for example "set-integration-time").
	Name string `cbor:"2,keyasint"`

	// MessageType is the opcode or OBP message type.
	MessageType uint32 `cbor:"3,keyasint,omitempty"`

	// Transfers is the number of transfers the transaction carries.
	Transfers int `cbor:"4,keyasint"`

	// Duration is the wall time spent executing the transaction.
	Duration time.Duration `cbor:"5,keyasint"`

	// Result is the outcome kind (NONE on success).
	Result string `cbor:"6,keyasint"`
}

// StateChangeEvent captures device lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityDevice indicates a device open/close.
	StateEntityDevice StateEntity = 0
	// StateEntityRegistry indicates a device was added or purged.
	StateEntityRegistry StateEntity = 1
	// StateEntityFeature indicates a feature was bound or disabled.
	StateEntityFeature StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityDevice:
		return "DEVICE"
	case StateEntityRegistry:
		return "REGISTRY"
	case StateEntityFeature:
		return "FEATURE"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Kind is the fault classification.
	Kind string `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
