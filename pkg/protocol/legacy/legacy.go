// Package legacy builds exchanges for the fixed-opcode command set spoken
// by older USB and RS-232 spectrometers.
//
// Every request starts with a one-byte opcode followed by fixed-width
// little-endian arguments. Replies have fixed lengths. Information slot
// replies echo the opcode and slot number; raw spectra are followed by a
// single sync byte.
package legacy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lumen-instruments/spectro-go/pkg/bus"
	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/protocol"
	"github.com/lumen-instruments/spectro-go/pkg/wire"
)

// Opcodes.
const (
	OpInitialize      uint8 = 0x01
	OpSetIntegration  uint8 = 0x02
	OpSetStrobe       uint8 = 0x03
	OpQueryInfo       uint8 = 0x05
	OpWriteInfo       uint8 = 0x06
	OpRequestSpectrum uint8 = 0x09
	OpSetTrigger      uint8 = 0x0A
	OpQueryStatus     uint8 = 0xFE
)

// Information slots.
const (
	SlotSerial            uint8 = 0
	SlotWavelength0       uint8 = 1 // 1..4 hold the wavelength polynomial
	SlotStrayLight        uint8 = 5
	SlotNonlinearity0     uint8 = 6 // 6..13 hold nonlinearity coefficients
	SlotNonlinearityOrder uint8 = 14
	SlotConfiguration     uint8 = 16
	SlotSaturation        uint8 = 17
	MaxSlot               uint8 = 19
)

// Layout constants.
const (
	// SyncByte terminates every raw spectrum.
	SyncByte = 0x69

	// InfoValueSize is the ASCII payload of an information slot.
	InfoValueSize = 15

	// InfoReplySize is the slot reply: echoed opcode, slot, value.
	InfoReplySize = 2 + InfoValueSize

	// StatusSize is the status reply length.
	StatusSize = 16

	// WavelengthSlots and NonlinearitySlots count coefficient slots.
	WavelengthSlots   = 4
	NonlinearitySlots = 8
)

// Initialize resets the instrument to power-on defaults.
func Initialize() protocol.Transaction[struct{}] {
	return command("initialize", OpInitialize, nil)
}

// SetIntegrationTime sets the integration time in microseconds.
func SetIntegrationTime(micros uint32) protocol.Transaction[struct{}] {
	w := wire.NewWriter(4)
	w.U32(micros)
	return command("set-integration-time", OpSetIntegration, w.Bytes())
}

// SetTriggerMode selects the acquisition trigger.
func SetTriggerMode(mode uint16) protocol.Transaction[struct{}] {
	w := wire.NewWriter(2)
	w.U16(mode)
	return command("set-trigger-mode", OpSetTrigger, w.Bytes())
}

// SetStrobe enables or disables the lamp strobe output.
func SetStrobe(enable bool) protocol.Transaction[struct{}] {
	w := wire.NewWriter(2)
	if enable {
		w.U16(1)
	} else {
		w.U16(0)
	}
	return command("set-strobe", OpSetStrobe, w.Bytes())
}

func command(name string, op uint8, args []byte) protocol.Transaction[struct{}] {
	w := wire.NewWriter(1 + len(args))
	w.U8(op)
	w.Raw(args)
	return protocol.Transaction[struct{}]{
		Name:      name,
		Code:      uint32(op),
		Hint:      bus.HintControl,
		Transfers: []protocol.Transfer{protocol.Send(w.Bytes())},
	}
}

// QueryInfo reads one information slot as a string.
func QueryInfo(slot uint8) protocol.Transaction[string] {
	return protocol.Transaction[string]{
		Name: "query-info",
		Code: uint32(OpQueryInfo),
		Hint: bus.HintControl,
		Transfers: []protocol.Transfer{
			protocol.Send([]byte{OpQueryInfo, slot}),
			protocol.Receive(InfoReplySize, func(p []byte) error {
				if p[0] != OpQueryInfo {
					return protocol.EchoError("opcode", uint32(p[0]), uint32(OpQueryInfo))
				}
				if p[1] != slot {
					return protocol.EchoError("slot", uint32(p[1]), uint32(slot))
				}
				return nil
			}),
		},
		Decode: func(last []byte) (string, error) {
			return DecodeInfoValue(last[2:]), nil
		},
	}
}

// WriteInfo stores value in an information slot. Values longer than the
// slot are rejected.
func WriteInfo(slot uint8, value string) (protocol.Transaction[struct{}], error) {
	if len(value) > InfoValueSize {
		return protocol.Transaction[struct{}]{}, fmt.Errorf("%w: slot value %q exceeds %d bytes",
			fault.ErrIllegalArgument, value, InfoValueSize)
	}
	if slot > MaxSlot {
		return protocol.Transaction[struct{}]{}, fmt.Errorf("%w: slot %d", fault.ErrIllegalArgument, slot)
	}
	w := wire.NewWriter(1 + InfoValueSize)
	w.U8(slot)
	w.Raw([]byte(value))
	w.Zeros(InfoValueSize - len(value))
	return command("write-info", OpWriteInfo, w.Bytes()), nil
}

// QueryFloat reads an information slot holding an ASCII number.
func QueryFloat(slot uint8) protocol.Transaction[float64] {
	q := QueryInfo(slot)
	return protocol.Transaction[float64]{
		Name:      "query-info-float",
		Code:      q.Code,
		Hint:      q.Hint,
		Transfers: q.Transfers,
		Decode: func(last []byte) (float64, error) {
			s := DecodeInfoValue(last[2:])
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return 0, fmt.Errorf("%w: slot %d value %q is not a number", fault.ErrFormat, slot, s)
			}
			return v, nil
		},
	}
}

// DecodeInfoValue trims a slot value at the first NUL and surrounding
// blanks.
func DecodeInfoValue(p []byte) string {
	if i := strings.IndexByte(string(p), 0); i >= 0 {
		p = p[:i]
	}
	return strings.TrimSpace(string(p))
}

// EncodeInfoValue pads value to a slot.
func EncodeInfoValue(value string) []byte {
	out := make([]byte, InfoValueSize)
	copy(out, value)
	return out
}

// RequestSpectrum triggers an acquisition and reads the raw pixels. The
// request and the reply share the spectrum pipe.
func RequestSpectrum(pixels int) protocol.Transaction[[]uint16] {
	return protocol.Transaction[[]uint16]{
		Name: "request-spectrum",
		Code: uint32(OpRequestSpectrum),
		Hint: bus.HintSpectrum,
		Transfers: []protocol.Transfer{
			protocol.Send([]byte{OpRequestSpectrum}),
			protocol.Receive(2*pixels+1, func(p []byte) error {
				if sync := p[len(p)-1]; sync != SyncByte {
					return protocol.EchoError("sync byte", uint32(sync), SyncByte)
				}
				return nil
			}),
		},
		Decode: func(last []byte) ([]uint16, error) {
			return wire.U16s(last[:2*pixels], pixels)
		},
	}
}

// Status is the decoded status reply.
type Status struct {
	Pixels             uint16
	IntegrationMicros  uint32
	StrobeEnabled      bool
	TriggerMode        uint8
	Acquiring          bool
	PacketsPerSpectrum uint8
	HighSpeed          bool
}

// QueryStatus reads the status block.
func QueryStatus() protocol.Transaction[Status] {
	return protocol.Transaction[Status]{
		Name: "query-status",
		Code: uint32(OpQueryStatus),
		Hint: bus.HintControl,
		Transfers: []protocol.Transfer{
			protocol.Send([]byte{OpQueryStatus}),
			protocol.Receive(StatusSize, nil),
		},
		Decode: DecodeStatus,
	}
}

// DecodeStatus parses a status reply.
func DecodeStatus(p []byte) (Status, error) {
	r := wire.NewReader(p)
	s := Status{
		Pixels:             r.U16(),
		IntegrationMicros:  r.U32(),
		StrobeEnabled:      r.U8() != 0,
		TriggerMode:        r.U8(),
		Acquiring:          r.U8() != 0,
		PacketsPerSpectrum: r.U8(),
	}
	r.Skip(4)
	s.HighSpeed = r.U8() == 0x80
	r.Skip(1)
	if err := r.Err(); err != nil {
		return Status{}, err
	}
	return s, nil
}

// EncodeStatus builds a status reply.
func EncodeStatus(s Status) []byte {
	w := wire.NewWriter(StatusSize)
	w.U16(s.Pixels)
	w.U32(s.IntegrationMicros)
	w.U8(boolByte(s.StrobeEnabled))
	w.U8(s.TriggerMode)
	w.U8(boolByte(s.Acquiring))
	w.U8(s.PacketsPerSpectrum)
	w.Zeros(4)
	if s.HighSpeed {
		w.U8(0x80)
	} else {
		w.U8(0)
	}
	w.Zeros(1)
	return w.Bytes()
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
