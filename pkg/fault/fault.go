// Package fault defines the failure taxonomy shared by every layer of the
// driver stack.
//
// Lower layers wrap one of the sentinels below with fmt.Errorf("%w: ...")
// so callers can classify a failure with errors.Is or KindOf without
// inspecting message text. Conversion to integer status codes happens only
// at the outer boundary (package api).
package fault

import "errors"

// Driver errors.
var (
	// ErrProtocolMismatch indicates a feature has no helper for the
	// device's active protocol.
	ErrProtocolMismatch = errors.New("feature/protocol mismatch")

	// ErrTransfer indicates an I/O level failure on the transport.
	ErrTransfer = errors.New("transfer failed")

	// ErrFormat indicates an undersized or malformed response, or a
	// response whose echoed fields do not match the request.
	ErrFormat = errors.New("malformed response")

	// ErrIllegalArgument indicates a bad locator, configuration or
	// parameter. Raised before any I/O takes place.
	ErrIllegalArgument = errors.New("illegal argument")

	// ErrTimeout indicates the transport deadline passed with no data.
	ErrTimeout = errors.New("transport timeout")

	// ErrNotOpen indicates the device has no active bus.
	ErrNotOpen = errors.New("device not open")

	// ErrFeatureUnusable indicates the feature failed to initialize for
	// the current session.
	ErrFeatureUnusable = errors.New("feature unusable")

	// ErrNoSuchDevice indicates an unknown device ID.
	ErrNoSuchDevice = errors.New("no such device")

	// ErrNoSuchFeature indicates an unknown feature ID or a feature the
	// device does not carry.
	ErrNoSuchFeature = errors.New("no such feature")
)

// Kind classifies an error into the family callers act on.
type Kind uint8

const (
	KindNone Kind = iota
	KindProtocolMismatch
	KindTransfer
	KindFormat
	KindIllegalArgument
	KindTimeout
	KindNotOpen
	KindFeatureUnusable
	KindNoSuchDevice
	KindNoSuchFeature
	KindUnknown
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "NONE"
	case KindProtocolMismatch:
		return "PROTOCOL_MISMATCH"
	case KindTransfer:
		return "TRANSFER"
	case KindFormat:
		return "FORMAT"
	case KindIllegalArgument:
		return "ILLEGAL_ARGUMENT"
	case KindTimeout:
		return "TIMEOUT"
	case KindNotOpen:
		return "NOT_OPEN"
	case KindFeatureUnusable:
		return "FEATURE_UNUSABLE"
	case KindNoSuchDevice:
		return "NO_SUCH_DEVICE"
	case KindNoSuchFeature:
		return "NO_SUCH_FEATURE"
	default:
		return "UNKNOWN"
	}
}

// kindOrder lists sentinels from most to least specific. An unusable
// feature wraps the initialization cause, so it is checked before the
// transport level kinds.
var kindOrder = []struct {
	err  error
	kind Kind
}{
	{ErrNoSuchDevice, KindNoSuchDevice},
	{ErrNoSuchFeature, KindNoSuchFeature},
	{ErrNotOpen, KindNotOpen},
	{ErrFeatureUnusable, KindFeatureUnusable},
	{ErrProtocolMismatch, KindProtocolMismatch},
	{ErrIllegalArgument, KindIllegalArgument},
	{ErrTimeout, KindTimeout},
	{ErrFormat, KindFormat},
	{ErrTransfer, KindTransfer},
}

// KindOf returns the kind of err. Errors outside the taxonomy report
// KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, k := range kindOrder {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnknown
}

// IsTimeout reports whether err is a transport timeout. Callers use it to
// decide whether an operation can be retried on the same session.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
