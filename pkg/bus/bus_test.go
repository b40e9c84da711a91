package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/log"
	"github.com/lumen-instruments/spectro-go/pkg/transport"
	"github.com/lumen-instruments/spectro-go/pkg/transport/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testUSB = USBConfig{
	Vendor:  0x2457,
	Product: 0x4004,
	Endpoints: map[Hint]Endpoints{
		HintControl:  {Out: 1, In: 1},
		HintSpectrum: {Out: 1, In: 2},
	},
	WordSize: 4,
}

type captureRecorder struct {
	events []log.Event
}

func (c *captureRecorder) Log(e log.Event) {
	c.events = append(c.events, e)
}

func TestUSBBusOpenBuildsHelpers(t *testing.T) {
	driver := mocks.NewMockUSBDriver(t)
	dev := mocks.NewMockUSBDevice(t)
	ctrl := mocks.NewMockStream(t)
	spec := mocks.NewMockStream(t)

	addr := transport.USBAddress{Vendor: 0x2457, Product: 0x4004, Bus: 2, Address: 7}
	driver.EXPECT().Open(addr, 250*time.Millisecond).Return(dev, nil).Once()
	dev.EXPECT().Pipe(uint8(1), uint8(1)).Return(ctrl, nil).Once()
	dev.EXPECT().Pipe(uint8(1), uint8(2)).Return(spec, nil).Once()
	dev.EXPECT().Close().Return(nil).Once()

	b := NewUSBBus(driver, testUSB, Options{Timeout: 250 * time.Millisecond})
	_, err := b.Helper(HintControl)
	assert.ErrorIs(t, err, fault.ErrNotOpen)

	loc, _ := NewUSBLocator(0x2457, 0x4004, 2, 7)
	require.NoError(t, b.SetLocator(loc))
	require.NoError(t, b.Open())
	assert.True(t, b.IsOpen())
	assert.NotEmpty(t, b.SessionID())

	h, err := b.Helper(HintSpectrum)
	require.NoError(t, err)
	assert.NotNil(t, h)

	_, err = b.Helper(HintBulkBuffer)
	assert.ErrorIs(t, err, fault.ErrIllegalArgument)

	assert.ErrorIs(t, b.SetLocator(loc), fault.ErrIllegalArgument, "rebinding an open bus")

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	assert.False(t, b.IsOpen())
	assert.Empty(t, b.SessionID())
}

func TestUSBBusOpenReleasesOnPipeFailure(t *testing.T) {
	driver := mocks.NewMockUSBDriver(t)
	dev := mocks.NewMockUSBDevice(t)

	driver.EXPECT().Open(mock.Anything, mock.Anything).Return(dev, nil).Once()
	dev.EXPECT().Pipe(uint8(1), uint8(1)).Return(mocks.NewMockStream(t), nil).Maybe()
	dev.EXPECT().Pipe(uint8(1), uint8(2)).Return(nil, errors.New("endpoint busy")).Once()
	dev.EXPECT().Close().Return(nil).Once()

	b := NewUSBBus(driver, testUSB, Options{})
	loc, _ := NewUSBLocator(0x2457, 0x4004, 1, 1)
	require.NoError(t, b.SetLocator(loc))

	err := b.Open()
	assert.ErrorIs(t, err, fault.ErrTransfer)
	assert.False(t, b.IsOpen())
}

func TestUSBBusOpenWithoutLocator(t *testing.T) {
	b := NewUSBBus(mocks.NewMockUSBDriver(t), testUSB, Options{})
	assert.ErrorIs(t, b.Open(), fault.ErrIllegalArgument)
}

func TestUSBBusRejectsForeignLocator(t *testing.T) {
	b := NewUSBBus(mocks.NewMockUSBDriver(t), testUSB, Options{})

	other, _ := NewUSBLocator(0x2457, 0x101E, 1, 1)
	assert.ErrorIs(t, b.SetLocator(other), fault.ErrIllegalArgument)

	tcp, _ := NewTCPLocator("10.0.0.1", 57357)
	assert.ErrorIs(t, b.SetLocator(tcp), fault.ErrIllegalArgument)
	assert.ErrorIs(t, b.SetLocator(nil), fault.ErrIllegalArgument)
}

func TestUSBBusProbe(t *testing.T) {
	driver := mocks.NewMockUSBDriver(t)
	driver.EXPECT().Enumerate(uint16(0x2457), uint16(0x4004)).Return([]transport.USBAddress{
		{Vendor: 0x2457, Product: 0x4004, Bus: 1, Address: 3},
		{Vendor: 0x2457, Product: 0x4004, Bus: 2, Address: 9},
	}, nil).Once()

	b := NewUSBBus(driver, testUSB, Options{})
	p, ok := b.Prober()
	require.True(t, ok)

	locs, err := p.Probe(context.Background())
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, Locator(USBLocator{Vendor: 0x2457, Product: 0x4004, Bus: 2, Address: 9}), locs[1])
}

func TestUSBBusCapturesPaddedFrames(t *testing.T) {
	driver := mocks.NewMockUSBDriver(t)
	dev := mocks.NewMockUSBDevice(t)
	ctrl := mocks.NewMockStream(t)

	cfg := USBConfig{Vendor: 1, Product: 2, Endpoints: map[Hint]Endpoints{HintControl: {Out: 1, In: 1}}, WordSize: 4}
	driver.EXPECT().Open(mock.Anything, mock.Anything).Return(dev, nil).Once()
	dev.EXPECT().Pipe(uint8(1), uint8(1)).Return(ctrl, nil).Once()
	ctrl.EXPECT().Write(mock.Anything).RunAndReturn(func(p []byte) (int, error) {
		assert.Len(t, p, 8)
		return len(p), nil
	}).Once()

	capture := &captureRecorder{}
	b := NewUSBBus(driver, cfg, Options{Capture: capture})
	b.SetDeviceID(12)
	loc, _ := NewUSBLocator(1, 2, 0, 0)
	require.NoError(t, b.SetLocator(loc))
	require.NoError(t, b.Open())

	h, err := b.Helper(HintControl)
	require.NoError(t, err)
	n, err := h.Send([]byte{1, 2, 3, 4, 5})
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	require.Len(t, capture.events, 1)
	ev := capture.events[0]
	assert.Equal(t, uint32(12), ev.DeviceID)
	assert.Equal(t, "USB", ev.Bus)
	assert.Equal(t, b.SessionID(), ev.SessionID)
	require.NotNil(t, ev.Frame)
	assert.Equal(t, 5, ev.Frame.Size)
	assert.Equal(t, 8, ev.Frame.Padded)
	assert.Equal(t, "CONTROL", ev.Frame.Hint)
}

func TestSerialBus(t *testing.T) {
	driver := mocks.NewMockSerialDriver(t)
	port := mocks.NewMockPort(t)
	driver.EXPECT().Open("/dev/ttyUSB0", 9600, DefaultTimeout).Return(port, nil).Once()
	port.EXPECT().Close().Return(nil).Once()

	b := NewSerialBus(driver, Options{})
	_, ok := b.Prober()
	assert.False(t, ok, "serial buses cannot probe")

	loc, _ := NewSerialLocator("/dev/ttyUSB0", 9600)
	require.NoError(t, b.SetLocator(loc))
	require.NoError(t, b.Open())

	for _, hint := range Hints {
		_, err := b.Helper(hint)
		assert.NoError(t, err, hint.String())
	}
	require.NoError(t, b.Close())
}

func TestSerialBusOpenFailureLeavesClosed(t *testing.T) {
	driver := mocks.NewMockSerialDriver(t)
	driver.EXPECT().Open(mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("no such file")).Once()

	b := NewSerialBus(driver, Options{})
	loc, _ := NewSerialLocator("/dev/ttyUSB9", 9600)
	require.NoError(t, b.SetLocator(loc))

	assert.ErrorIs(t, b.Open(), fault.ErrTransfer)
	assert.False(t, b.IsOpen())
	assert.NoError(t, b.Close())
}

func TestTCPBusProberFiltersModel(t *testing.T) {
	browser := mocks.NewMockServiceBrowser(t)
	browser.EXPECT().Browse(mock.Anything).RunAndReturn(func(ctx context.Context) ([]transport.ServiceEndpoint, error) {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline, "probe must bound the browse")
		return []transport.ServiceEndpoint{
			{Instance: "a", Host: "10.0.0.5", Port: 57357, Model: "OCEAN-FX"},
			{Instance: "b", Host: "10.0.0.6", Port: 57357, Model: "OTHER"},
			{Instance: "c", Host: "10.0.0.7", Port: 57357},
			{Instance: "d", Host: "", Port: 57357},
		}, nil
	}).Once()

	b := NewTCPBus(mocks.NewMockDialer(t), TCPConfig{Browser: browser, Model: "OCEAN-FX"}, Options{})
	p, ok := b.Prober()
	require.True(t, ok)

	locs, err := p.Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Locator{
		TCPLocator{Host: "10.0.0.5", Port: 57357},
		TCPLocator{Host: "10.0.0.7", Port: 57357},
	}, locs)
}

func TestTCPBusWithoutBrowserCannotProbe(t *testing.T) {
	b := NewTCPBus(mocks.NewMockDialer(t), TCPConfig{}, Options{})
	_, ok := b.Prober()
	assert.False(t, ok)
}

func TestTCPBusOpen(t *testing.T) {
	dialer := mocks.NewMockDialer(t)
	port := mocks.NewMockPort(t)
	dialer.EXPECT().Dial("10.0.0.5", 57357, time.Second).Return(port, nil).Once()
	port.EXPECT().Close().Return(nil).Once()

	b := NewTCPBus(dialer, TCPConfig{}, Options{})
	loc, _ := NewTCPLocator("10.0.0.5", 57357)
	require.NoError(t, b.SetLocator(loc))
	require.NoError(t, b.Open())
	require.NoError(t, b.Open(), "second open is a no-op")
	require.NoError(t, b.Close())
}
