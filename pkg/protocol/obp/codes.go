package obp

import (
	"fmt"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
)

// Message types.
const (
	MsgHardwareRevision uint32 = 0x00000080
	MsgFirmwareRevision uint32 = 0x00000090
	MsgSerialNumber     uint32 = 0x00000100
	MsgSerialLength     uint32 = 0x00000101

	MsgIntegrationTime    uint32 = 0x00110000
	MsgIntegrationTimeMin uint32 = 0x00110001
	MsgIntegrationTimeMax uint32 = 0x00110002
	MsgSetIntegrationTime uint32 = 0x00110010
	MsgSetTriggerMode     uint32 = 0x00110110
	MsgPixelCount         uint32 = 0x00110220
	MsgBinningFactor      uint32 = 0x00110280
	MsgBinningFactorMax   uint32 = 0x00110281
	MsgSetBinningFactor   uint32 = 0x00110290
	MsgSetLampEnable      uint32 = 0x00110410
	MsgRawSpectrum        uint32 = 0x00101100

	MsgSaturationLevel uint32 = 0x000C0001

	MsgWavelengthCoeffCount uint32 = 0x00180100
	MsgWavelengthCoeff      uint32 = 0x00180101
	MsgNonlinearityCount    uint32 = 0x00181100
	MsgNonlinearityCoeff    uint32 = 0x00181101

	MsgTECTemperature uint32 = 0x00420004
	MsgTECEnable      uint32 = 0x00420010
	MsgTECSetpoint    uint32 = 0x00420011

	MsgBufferCapacityMax  uint32 = 0x00100820
	MsgBufferCapacityMin  uint32 = 0x00100821
	MsgBufferCapacity     uint32 = 0x00100822
	MsgBufferClear        uint32 = 0x00100830
	MsgBufferRemoveOldest uint32 = 0x00100831
	MsgSetBufferCapacity  uint32 = 0x00100832
	MsgBufferCount        uint32 = 0x00100900
	MsgBufferBegin        uint32 = 0x00100902
	MsgBufferRetrieve     uint32 = 0x00100928
)

// Device error numbers.
const (
	ErrnoSuccess         uint16 = 0
	ErrnoBadVersion      uint16 = 1
	ErrnoUnknownMessage  uint16 = 2
	ErrnoBadChecksum     uint16 = 3
	ErrnoTooLarge        uint16 = 4
	ErrnoLengthMismatch  uint16 = 5
	ErrnoBadPayload      uint16 = 6
	ErrnoNotReady        uint16 = 7
	ErrnoUnknownChecksum uint16 = 8
	ErrnoReset           uint16 = 9
	ErrnoNoData          uint16 = 12
)

// ErrnoString returns a short name for a device error number.
func ErrnoString(errno uint16) string {
	switch errno {
	case ErrnoSuccess:
		return "success"
	case ErrnoBadVersion:
		return "unsupported protocol version"
	case ErrnoUnknownMessage:
		return "unknown message type"
	case ErrnoBadChecksum:
		return "bad checksum"
	case ErrnoTooLarge:
		return "message too large"
	case ErrnoLengthMismatch:
		return "payload length mismatch"
	case ErrnoBadPayload:
		return "invalid payload"
	case ErrnoNotReady:
		return "device not ready"
	case ErrnoUnknownChecksum:
		return "unknown checksum type"
	case ErrnoReset:
		return "device reset"
	case ErrnoNoData:
		return "command data not found"
	default:
		return fmt.Sprintf("errno %d", errno)
	}
}

// DeviceError is a NACK or exception reported by the instrument.
type DeviceError struct {
	Type      uint32
	Errno     uint16
	Exception bool
}

func (e *DeviceError) Error() string {
	kind := "nack"
	if e.Exception {
		kind = "exception"
	}
	return fmt.Sprintf("message %#08x: device %s: %s", e.Type, kind, ErrnoString(e.Errno))
}

// Unwrap classifies device errors as transfer failures.
func (e *DeviceError) Unwrap() error {
	return fault.ErrTransfer
}
