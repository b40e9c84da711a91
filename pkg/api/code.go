package api

import (
	"errors"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
)

// Code is the integer status every boundary call reports.
type Code int

const (
	CodeSuccess Code = iota
	CodeNoDevice
	CodeFeatureNotFound
	CodeTransferError
	CodeNotImplemented
	CodeInvalidBuffer
	CodeTimeout
	CodeInvalidArgument
)

// String returns the code name.
func (c Code) String() string {
	switch c {
	case CodeSuccess:
		return "SUCCESS"
	case CodeNoDevice:
		return "NO_DEVICE"
	case CodeFeatureNotFound:
		return "FEATURE_NOT_FOUND"
	case CodeTransferError:
		return "TRANSFER_ERROR"
	case CodeNotImplemented:
		return "NOT_IMPLEMENTED"
	case CodeInvalidBuffer:
		return "INVALID_BUFFER"
	case CodeTimeout:
		return "TIMEOUT"
	case CodeInvalidArgument:
		return "INVALID_ARGUMENT"
	default:
		return "UNKNOWN"
	}
}

// ErrInvalidBuffer indicates a caller buffer that is nil or too small.
var ErrInvalidBuffer = errors.New("invalid buffer")

// CodeOf maps an error to its boundary code.
func CodeOf(err error) Code {
	switch {
	case err == nil:
		return CodeSuccess
	case errors.Is(err, ErrInvalidBuffer):
		return CodeInvalidBuffer
	case errors.Is(err, errors.ErrUnsupported):
		return CodeNotImplemented
	}
	switch fault.KindOf(err) {
	case fault.KindNoSuchDevice, fault.KindNotOpen:
		return CodeNoDevice
	case fault.KindNoSuchFeature, fault.KindProtocolMismatch, fault.KindFeatureUnusable:
		return CodeFeatureNotFound
	case fault.KindTimeout:
		return CodeTimeout
	case fault.KindIllegalArgument:
		return CodeInvalidArgument
	default:
		return CodeTransferError
	}
}
