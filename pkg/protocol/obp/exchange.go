package obp

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/lumen-instruments/spectro-go/pkg/bus"
	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/protocol"
	"github.com/lumen-instruments/spectro-go/pkg/wire"
)

var lastToken atomic.Uint32

// nextToken returns a fresh regarding token, never zero.
func nextToken() uint32 {
	for {
		if t := lastToken.Add(1); t != 0 {
			return t
		}
	}
}

// Request builds the host message for msgType with payload.
func Request(msgType uint32, payload []byte) *Message {
	return &Message{
		Flags:        FlagAckRequested,
		Type:         msgType,
		Regarding:    nextToken(),
		ChecksumType: ChecksumMD5,
		Payload:      payload,
	}
}

// ReadMessage reads one message through h: the header first, then the
// bytes it announces.
func ReadMessage(h bus.TransferHelper) (*Message, error) {
	head, err := protocol.ReceiveExactly(h, HeaderSize)
	if err != nil {
		return nil, err
	}
	hdr, err := decodeHeader(head)
	if err != nil {
		return nil, err
	}
	rest, err := protocol.ReceiveExactly(h, hdr.remaining)
	if err != nil {
		return nil, err
	}
	return decodeBody(hdr, head, rest)
}

// Reply reads the answer to req and checks it. The returned bytes are the
// reply payload.
func Reply(req *Message) protocol.Transfer {
	return protocol.TransferFunc(func(h bus.TransferHelper) ([]byte, error) {
		m, err := ReadMessage(h)
		if err != nil {
			return nil, err
		}
		if err := check(req, m); err != nil {
			return nil, err
		}
		return m.Payload, nil
	})
}

func check(req, resp *Message) error {
	if resp.Type != req.Type {
		return protocol.EchoError("message type", resp.Type, req.Type)
	}
	if resp.Regarding != req.Regarding {
		return protocol.EchoError("regarding token", resp.Regarding, req.Regarding)
	}
	if resp.Flags&(FlagNack|FlagException) != 0 {
		return &DeviceError{Type: resp.Type, Errno: resp.Errno, Exception: resp.Flags&FlagException != 0}
	}
	if !resp.IsResponse() {
		return fmt.Errorf("%w: message %#08x lacks the response flag", fault.ErrFormat, resp.Type)
	}
	return nil
}

// Query builds a request/reply transaction over hint.
func Query[T any](name string, msgType uint32, payload []byte, hint bus.Hint, decode func([]byte) (T, error)) protocol.Transaction[T] {
	req := Request(msgType, payload)
	return protocol.Transaction[T]{
		Name:      name,
		Code:      msgType,
		Hint:      hint,
		Transfers: []protocol.Transfer{protocol.Send(req.Encode()), Reply(req)},
		Decode:    decode,
	}
}

// Command builds a transaction whose reply carries only the acknowledgement.
func Command(name string, msgType uint32, payload []byte) protocol.Transaction[struct{}] {
	return Query[struct{}](name, msgType, payload, bus.HintControl, nil)
}

// Payload decoders. Each rejects a payload of the wrong size.

func exact(p []byte, n int) error {
	if len(p) != n {
		return fmt.Errorf("%w: payload is %d bytes, expected %d", fault.ErrFormat, len(p), n)
	}
	return nil
}

// DecodeU8 decodes a one-byte payload.
func DecodeU8(p []byte) (uint8, error) {
	if err := exact(p, 1); err != nil {
		return 0, err
	}
	return p[0], nil
}

// DecodeU16 decodes a two-byte payload.
func DecodeU16(p []byte) (uint16, error) {
	if err := exact(p, 2); err != nil {
		return 0, err
	}
	return wire.NewReader(p).U16(), nil
}

// DecodeU32 decodes a four-byte payload.
func DecodeU32(p []byte) (uint32, error) {
	if err := exact(p, 4); err != nil {
		return 0, err
	}
	return wire.NewReader(p).U32(), nil
}

// DecodeF32 decodes a four-byte float payload.
func DecodeF32(p []byte) (float32, error) {
	if err := exact(p, 4); err != nil {
		return 0, err
	}
	return wire.NewReader(p).F32(), nil
}

// DecodeString decodes an ASCII payload, trimmed at the first NUL.
func DecodeString(p []byte) (string, error) {
	s := string(p)
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return s, nil
}

func u8(v uint8) []byte { return []byte{v} }

func u32(v uint32) []byte {
	w := wire.NewWriter(4)
	w.U32(v)
	return w.Bytes()
}

func f32(v float32) []byte {
	w := wire.NewWriter(4)
	w.F32(v)
	return w.Bytes()
}

// Identity.

func HardwareRevision() protocol.Transaction[uint8] {
	return Query("hardware-revision", MsgHardwareRevision, nil, bus.HintControl, DecodeU8)
}

func FirmwareRevision() protocol.Transaction[uint16] {
	return Query("firmware-revision", MsgFirmwareRevision, nil, bus.HintControl, DecodeU16)
}

func SerialNumber() protocol.Transaction[string] {
	return Query("serial-number", MsgSerialNumber, nil, bus.HintControl, DecodeString)
}

func SerialNumberLength() protocol.Transaction[uint8] {
	return Query("serial-number-length", MsgSerialLength, nil, bus.HintControl, DecodeU8)
}

// Acquisition.

func IntegrationTime() protocol.Transaction[uint32] {
	return Query("integration-time", MsgIntegrationTime, nil, bus.HintControl, DecodeU32)
}

func IntegrationTimeMin() protocol.Transaction[uint32] {
	return Query("integration-time-min", MsgIntegrationTimeMin, nil, bus.HintControl, DecodeU32)
}

func IntegrationTimeMax() protocol.Transaction[uint32] {
	return Query("integration-time-max", MsgIntegrationTimeMax, nil, bus.HintControl, DecodeU32)
}

func SetIntegrationTime(micros uint32) protocol.Transaction[struct{}] {
	return Command("set-integration-time", MsgSetIntegrationTime, u32(micros))
}

func SetTriggerMode(mode uint8) protocol.Transaction[struct{}] {
	return Command("set-trigger-mode", MsgSetTriggerMode, u8(mode))
}

func PixelCount() protocol.Transaction[uint16] {
	return Query("pixel-count", MsgPixelCount, nil, bus.HintControl, DecodeU16)
}

func SaturationLevel() protocol.Transaction[uint32] {
	return Query("saturation-level", MsgSaturationLevel, nil, bus.HintControl, DecodeU32)
}

// RawSpectrum reads one unformatted spectrum of pixels values.
func RawSpectrum(pixels int) protocol.Transaction[[]uint16] {
	return Query("raw-spectrum", MsgRawSpectrum, nil, bus.HintSpectrum, func(p []byte) ([]uint16, error) {
		if err := exact(p, 2*pixels); err != nil {
			return nil, err
		}
		return wire.U16s(p, pixels)
	})
}

// Calibration.

func WavelengthCoeffCount() protocol.Transaction[uint8] {
	return Query("wavelength-coeff-count", MsgWavelengthCoeffCount, nil, bus.HintControl, DecodeU8)
}

func WavelengthCoeff(index uint8) protocol.Transaction[float32] {
	return Query("wavelength-coeff", MsgWavelengthCoeff, u8(index), bus.HintControl, DecodeF32)
}

func NonlinearityCount() protocol.Transaction[uint8] {
	return Query("nonlinearity-count", MsgNonlinearityCount, nil, bus.HintControl, DecodeU8)
}

func NonlinearityCoeff(index uint8) protocol.Transaction[float32] {
	return Query("nonlinearity-coeff", MsgNonlinearityCoeff, u8(index), bus.HintControl, DecodeF32)
}

// Thermoelectric cooler and lamp.

func TECTemperature() protocol.Transaction[float32] {
	return Query("tec-temperature", MsgTECTemperature, nil, bus.HintControl, DecodeF32)
}

func SetTECEnable(enable bool) protocol.Transaction[struct{}] {
	return Command("set-tec-enable", MsgTECEnable, u8(boolByte(enable)))
}

func SetTECSetpoint(celsius float32) protocol.Transaction[struct{}] {
	return Command("set-tec-setpoint", MsgTECSetpoint, f32(celsius))
}

func SetLampEnable(enable bool) protocol.Transaction[struct{}] {
	return Command("set-lamp-enable", MsgSetLampEnable, u8(boolByte(enable)))
}

// Pixel binning.

func BinningFactor() protocol.Transaction[uint8] {
	return Query("binning-factor", MsgBinningFactor, nil, bus.HintControl, DecodeU8)
}

func BinningFactorMax() protocol.Transaction[uint8] {
	return Query("binning-factor-max", MsgBinningFactorMax, nil, bus.HintControl, DecodeU8)
}

func SetBinningFactor(factor uint8) protocol.Transaction[struct{}] {
	return Command("set-binning-factor", MsgSetBinningFactor, u8(factor))
}

// On-device buffer.

func BufferCapacity() protocol.Transaction[uint32] {
	return Query("buffer-capacity", MsgBufferCapacity, nil, bus.HintControl, DecodeU32)
}

func BufferCapacityMin() protocol.Transaction[uint32] {
	return Query("buffer-capacity-min", MsgBufferCapacityMin, nil, bus.HintControl, DecodeU32)
}

func BufferCapacityMax() protocol.Transaction[uint32] {
	return Query("buffer-capacity-max", MsgBufferCapacityMax, nil, bus.HintControl, DecodeU32)
}

func SetBufferCapacity(n uint32) protocol.Transaction[struct{}] {
	return Command("set-buffer-capacity", MsgSetBufferCapacity, u32(n))
}

func BufferCount() protocol.Transaction[uint32] {
	return Query("buffer-count", MsgBufferCount, nil, bus.HintControl, DecodeU32)
}

func ClearBuffer() protocol.Transaction[struct{}] {
	return Command("clear-buffer", MsgBufferClear, nil)
}

func RemoveOldest(n uint32) protocol.Transaction[struct{}] {
	return Command("remove-oldest", MsgBufferRemoveOldest, u32(n))
}

// BeginBatch starts the capture of n records and returns once the device
// acknowledges.
func BeginBatch(n uint32) protocol.Transaction[struct{}] {
	return Command("begin-batch", MsgBufferBegin, u32(n))
}

// RetrieveBatch asks for at most max records and returns the raw record
// bytes. With nothing buffered the device stays silent and the read times
// out.
func RetrieveBatch(max uint32) protocol.Transaction[[]byte] {
	return Query("retrieve-batch", MsgBufferRetrieve, u32(max), bus.HintBulkBuffer, func(p []byte) ([]byte, error) {
		return p, nil
	})
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
