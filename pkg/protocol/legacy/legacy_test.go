package legacy_test

import (
	"bytes"
	"testing"

	"github.com/lumen-instruments/spectro-go/pkg/bus"
	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/protocol"
	"github.com/lumen-instruments/spectro-go/pkg/protocol/legacy"
	"github.com/lumen-instruments/spectro-go/pkg/protocol/protocoltest"
	"github.com/lumen-instruments/spectro-go/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandEncoding(t *testing.T) {
	tests := []struct {
		name string
		tx   protocol.Transaction[struct{}]
		want []byte
	}{
		{"initialize", legacy.Initialize(), []byte{0x01}},
		{"integration 10ms", legacy.SetIntegrationTime(10000), []byte{0x02, 0x10, 0x27, 0x00, 0x00}},
		{"trigger external", legacy.SetTriggerMode(3), []byte{0x0A, 0x03, 0x00}},
		{"strobe on", legacy.SetStrobe(true), []byte{0x03, 0x01, 0x00}},
		{"strobe off", legacy.SetStrobe(false), []byte{0x03, 0x00, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, h, _ := protocoltest.Link(protocol.Legacy)
			_, err := tt.tx.Execute(link)
			require.NoError(t, err)
			require.Len(t, h.Sent, 1)
			assert.Equal(t, tt.want, h.Sent[0])
		})
	}
}

func infoReply(op, slot uint8, value string) []byte {
	return append([]byte{op, slot}, legacy.EncodeInfoValue(value)...)
}

func TestQueryInfo(t *testing.T) {
	link, h, _ := protocoltest.Link(protocol.Legacy)
	h.Queue(infoReply(legacy.OpQueryInfo, legacy.SlotSerial, "USB2+H01234"))

	got, err := legacy.QueryInfo(legacy.SlotSerial).Execute(link)
	require.NoError(t, err)
	assert.Equal(t, "USB2+H01234", got)
	assert.Equal(t, []byte{0x05, 0x00}, h.Sent[0])
}

func TestQueryInfoEchoMismatch(t *testing.T) {
	tests := []struct {
		name  string
		reply []byte
	}{
		{"wrong opcode", infoReply(0x06, 1, "3.5e2")},
		{"wrong slot", infoReply(legacy.OpQueryInfo, 2, "3.5e2")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, h, _ := protocoltest.Link(protocol.Legacy)
			h.Queue(tt.reply)
			_, err := legacy.QueryInfo(1).Execute(link)
			assert.ErrorIs(t, err, fault.ErrFormat)
		})
	}
}

func TestQueryInfoShortReply(t *testing.T) {
	link, h, _ := protocoltest.Link(protocol.Legacy)
	h.Queue([]byte{legacy.OpQueryInfo, 0, 'A'})
	_, err := legacy.QueryInfo(0).Execute(link)
	assert.ErrorIs(t, err, fault.ErrFormat)
}

func TestQueryFloat(t *testing.T) {
	link, h, _ := protocoltest.Link(protocol.Legacy)
	h.Queue(
		infoReply(legacy.OpQueryInfo, legacy.SlotWavelength0, "339.5"),
		infoReply(legacy.OpQueryInfo, legacy.SlotWavelength0+1, "not a number"),
	)

	v, err := legacy.QueryFloat(legacy.SlotWavelength0).Execute(link)
	require.NoError(t, err)
	assert.InDelta(t, 339.5, v, 1e-9)

	_, err = legacy.QueryFloat(legacy.SlotWavelength0 + 1).Execute(link)
	assert.ErrorIs(t, err, fault.ErrFormat)
}

func TestWriteInfo(t *testing.T) {
	tx, err := legacy.WriteInfo(legacy.SlotSaturation, "65535")
	require.NoError(t, err)

	link, h, _ := protocoltest.Link(protocol.Legacy)
	_, err = tx.Execute(link)
	require.NoError(t, err)
	require.Len(t, h.Sent[0], 2+legacy.InfoValueSize)
	assert.Equal(t, []byte{legacy.OpWriteInfo, legacy.SlotSaturation}, h.Sent[0][:2])
	assert.Equal(t, "65535", legacy.DecodeInfoValue(h.Sent[0][2:]))

	_, err = legacy.WriteInfo(0, "this value is far too long")
	assert.ErrorIs(t, err, fault.ErrIllegalArgument)
	_, err = legacy.WriteInfo(legacy.MaxSlot+1, "x")
	assert.ErrorIs(t, err, fault.ErrIllegalArgument)
}

func TestDecodeInfoValueStopsAtNUL(t *testing.T) {
	p := []byte{'1', '2', 0, 'x', 'y'}
	assert.Equal(t, "12", legacy.DecodeInfoValue(p))
}

func rawSpectrum(pixels []uint16, sync byte) []byte {
	return append(wire.PutU16s(pixels), sync)
}

func TestRequestSpectrum(t *testing.T) {
	pixels := make([]uint16, 2048)
	for i := range pixels {
		pixels[i] = uint16(i * 3)
	}
	link, h, b := protocoltest.Link(protocol.Legacy)
	h.Queue(rawSpectrum(pixels, legacy.SyncByte))

	got, err := legacy.RequestSpectrum(len(pixels)).Execute(link)
	require.NoError(t, err)
	assert.Equal(t, pixels, got)
	assert.Equal(t, []bus.Hint{bus.HintSpectrum}, b.Hints)
	assert.Equal(t, []byte{legacy.OpRequestSpectrum}, h.Sent[0])
}

func TestRequestSpectrumFraming(t *testing.T) {
	pixels := []uint16{1, 2, 3, 4}
	tests := []struct {
		name  string
		reply []byte
	}{
		{"bad sync byte", rawSpectrum(pixels, 0x00)},
		{"missing sync byte", wire.PutU16s(pixels)},
		{"short spectrum", rawSpectrum(pixels[:3], legacy.SyncByte)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, h, _ := protocoltest.Link(protocol.Legacy)
			h.Queue(tt.reply)
			_, err := legacy.RequestSpectrum(len(pixels)).Execute(link)
			assert.ErrorIs(t, err, fault.ErrFormat)
		})
	}
}

func TestRequestSpectrumTimeout(t *testing.T) {
	link, _, _ := protocoltest.Link(protocol.Legacy)
	_, err := legacy.RequestSpectrum(16).Execute(link)
	assert.ErrorIs(t, err, fault.ErrTimeout)
}

func TestStatusRoundTrip(t *testing.T) {
	want := legacy.Status{
		Pixels:             2048,
		IntegrationMicros:  100000,
		StrobeEnabled:      true,
		TriggerMode:        1,
		PacketsPerSpectrum: 8,
		HighSpeed:          true,
	}
	p := legacy.EncodeStatus(want)
	require.Len(t, p, legacy.StatusSize)

	link, h, _ := protocoltest.Link(protocol.Legacy)
	h.Queue(p)
	got, err := legacy.QueryStatus().Execute(link)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.True(t, bytes.Equal([]byte{legacy.OpQueryStatus}, h.Sent[0]))
}
