package sim

import (
	"math"
	"sync"

	"github.com/lumen-instruments/spectro-go/pkg/protocol/obp"
	"github.com/lumen-instruments/spectro-go/pkg/wire"
)

// OBPConfig describes a simulated OBP instrument.
type OBPConfig struct {
	Serial           string
	Pixels           int
	HardwareRevision uint8
	FirmwareRevision uint16

	IntegrationMin uint32
	IntegrationMax uint32
	Saturation     uint32

	Wavelength   []float32
	Nonlinearity []float32

	BufferMin      uint32
	BufferMax      uint32
	BufferCapacity uint32

	BinningMax uint8

	// TickMicros advances the device clock per captured record.
	TickMicros uint64
}

// DefaultOBPConfig returns a plausible instrument with the given serial
// number and detector width.
func DefaultOBPConfig(serial string, pixels int) OBPConfig {
	return OBPConfig{
		Serial:           serial,
		Pixels:           pixels,
		HardwareRevision: 2,
		FirmwareRevision: 0x0104,
		IntegrationMin:   10,
		IntegrationMax:   10_000_000,
		Saturation:       65535,
		Wavelength:       []float32{339.5, 0.3821, -1.6e-5, -1.4e-9},
		Nonlinearity:     []float32{0.91, 7.6e-6, -1.2e-10},
		BufferMin:        1,
		BufferMax:        50_000,
		BufferCapacity:   1000,
		BinningMax:       4,
		TickMicros:       1000,
	}
}

// OBPInstrument simulates an instrument speaking the binary message
// protocol.
type OBPInstrument struct {
	mu  sync.Mutex
	cfg OBPConfig

	integration uint32
	trigger     uint8
	binning     uint8
	lamp        bool
	tecOn       bool
	setpoint    float32
	capacity    uint32

	buffer *ring
	seq    uint32
	tick   uint64

	nacks   map[uint32]uint16
	handled []uint32
}

// NewOBPInstrument creates an instrument in its power-on state.
func NewOBPInstrument(cfg OBPConfig) *OBPInstrument {
	return &OBPInstrument{
		cfg:         cfg,
		integration: max(cfg.IntegrationMin, 1000),
		binning:     1,
		setpoint:    20,
		capacity:    cfg.BufferCapacity,
		buffer:      newRing(int(cfg.BufferCapacity)),
		nacks:       make(map[uint32]uint16),
	}
}

// NackOn makes the instrument refuse msgType with errno.
func (d *OBPInstrument) NackOn(msgType uint32, errno uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nacks[msgType] = errno
}

// Handled returns the message types processed so far.
func (d *OBPInstrument) Handled() []uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]uint32(nil), d.handled...)
}

// IntegrationTime returns the current integration time.
func (d *OBPInstrument) IntegrationTime() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.integration
}

// Buffered returns the number of records waiting and the number evicted
// since power-on.
func (d *OBPInstrument) Buffered() (waiting, evicted int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buffer.len(), d.buffer.evicted
}

// Handle decodes one request and returns the encoded reply. Undecodable
// requests and retrieves from an empty buffer get no reply.
func (d *OBPInstrument) Handle(request []byte) []byte {
	req, err := obp.Decode(request)
	if err != nil {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.handled = append(d.handled, req.Type)

	if errno, ok := d.nacks[req.Type]; ok {
		return d.reply(req, obp.FlagNack, errno, nil)
	}
	payload, errno, silent := d.dispatch(req)
	if silent {
		return nil
	}
	if errno != obp.ErrnoSuccess {
		return d.reply(req, obp.FlagNack, errno, nil)
	}
	return d.reply(req, obp.FlagAck, 0, payload)
}

func (d *OBPInstrument) reply(req *obp.Message, flags, errno uint16, payload []byte) []byte {
	m := &obp.Message{
		Flags:        obp.FlagResponse | flags,
		Errno:        errno,
		Type:         req.Type,
		Regarding:    req.Regarding,
		ChecksumType: obp.ChecksumMD5,
		Payload:      payload,
	}
	return m.Encode()
}

func (d *OBPInstrument) dispatch(req *obp.Message) (payload []byte, errno uint16, silent bool) {
	r := wire.NewReader(req.Payload)
	switch req.Type {
	case obp.MsgHardwareRevision:
		return []byte{d.cfg.HardwareRevision}, 0, false
	case obp.MsgFirmwareRevision:
		return u16(d.cfg.FirmwareRevision), 0, false
	case obp.MsgSerialNumber:
		return []byte(d.cfg.Serial), 0, false
	case obp.MsgSerialLength:
		return []byte{32}, 0, false

	case obp.MsgIntegrationTime:
		return u32(d.integration), 0, false
	case obp.MsgIntegrationTimeMin:
		return u32(d.cfg.IntegrationMin), 0, false
	case obp.MsgIntegrationTimeMax:
		return u32(d.cfg.IntegrationMax), 0, false
	case obp.MsgSetIntegrationTime:
		v := r.U32()
		if r.Err() != nil || v < d.cfg.IntegrationMin || v > d.cfg.IntegrationMax {
			return nil, obp.ErrnoBadPayload, false
		}
		d.integration = v
		return nil, 0, false
	case obp.MsgSetTriggerMode:
		v := r.U8()
		if r.Err() != nil || v > 3 {
			return nil, obp.ErrnoBadPayload, false
		}
		d.trigger = v
		return nil, 0, false
	case obp.MsgPixelCount:
		return u16(uint16(d.cfg.Pixels)), 0, false
	case obp.MsgSaturationLevel:
		return u32(d.cfg.Saturation), 0, false
	case obp.MsgRawSpectrum:
		return wire.PutU16s(bin(d.spectrum(), int(d.binning))), 0, false

	case obp.MsgWavelengthCoeffCount:
		return []byte{uint8(len(d.cfg.Wavelength))}, 0, false
	case obp.MsgWavelengthCoeff:
		return coefficient(d.cfg.Wavelength, r)
	case obp.MsgNonlinearityCount:
		return []byte{uint8(len(d.cfg.Nonlinearity))}, 0, false
	case obp.MsgNonlinearityCoeff:
		return coefficient(d.cfg.Nonlinearity, r)

	case obp.MsgTECTemperature:
		return f32(d.temperature()), 0, false
	case obp.MsgTECEnable:
		d.tecOn = r.U8() != 0
		return nil, 0, false
	case obp.MsgTECSetpoint:
		v := r.F32()
		if r.Err() != nil {
			return nil, obp.ErrnoBadPayload, false
		}
		d.setpoint = v
		return nil, 0, false
	case obp.MsgSetLampEnable:
		d.lamp = r.U8() != 0
		return nil, 0, false

	case obp.MsgBinningFactor:
		return []byte{d.binning}, 0, false
	case obp.MsgBinningFactorMax:
		return []byte{d.cfg.BinningMax}, 0, false
	case obp.MsgSetBinningFactor:
		v := r.U8()
		if r.Err() != nil || v == 0 || v > d.cfg.BinningMax {
			return nil, obp.ErrnoBadPayload, false
		}
		d.binning = v
		return nil, 0, false

	case obp.MsgBufferCapacity:
		return u32(d.capacity), 0, false
	case obp.MsgBufferCapacityMin:
		return u32(d.cfg.BufferMin), 0, false
	case obp.MsgBufferCapacityMax:
		return u32(d.cfg.BufferMax), 0, false
	case obp.MsgSetBufferCapacity:
		v := r.U32()
		if r.Err() != nil || v < d.cfg.BufferMin || v > d.cfg.BufferMax {
			return nil, obp.ErrnoBadPayload, false
		}
		d.capacity = v
		d.buffer.resize(int(v))
		return nil, 0, false
	case obp.MsgBufferCount:
		return u32(uint32(d.buffer.len())), 0, false
	case obp.MsgBufferClear:
		d.buffer.clear()
		d.seq = 0
		return nil, 0, false
	case obp.MsgBufferRemoveOldest:
		v := r.U32()
		if r.Err() != nil {
			return nil, obp.ErrnoBadPayload, false
		}
		d.buffer.drop(int(v))
		return nil, 0, false
	case obp.MsgBufferBegin:
		v := r.U32()
		if r.Err() != nil || v == 0 {
			return nil, obp.ErrnoBadPayload, false
		}
		d.capture(int(v))
		return nil, 0, false
	case obp.MsgBufferRetrieve:
		v := r.U32()
		if r.Err() != nil || v == 0 {
			return nil, obp.ErrnoBadPayload, false
		}
		recs := d.buffer.pop(int(v))
		if len(recs) == 0 {
			return nil, 0, true
		}
		out := make([]byte, 0, len(recs)*obp.RecordSize(d.cfg.Pixels))
		for _, rec := range recs {
			out = append(out, rec...)
		}
		return out, 0, false
	}
	return nil, obp.ErrnoUnknownMessage, false
}

// capture acquires n records into the buffer.
func (d *OBPInstrument) capture(n int) {
	for i := 0; i < n; i++ {
		d.seq++
		d.tick += d.cfg.TickMicros + uint64(d.integration)
		d.buffer.push(obp.EncodeRecord(obp.Record{
			Sequence:          d.seq,
			TickMicros:        d.tick,
			IntegrationMicros: d.integration,
			Pixels:            d.spectrum(),
		}))
	}
}

// spectrum synthesizes a dark floor plus one emission line whose height
// follows the integration time, clipped at saturation.
func (d *OBPInstrument) spectrum() []uint16 {
	return synthesize(d.cfg.Pixels, d.integration, d.cfg.Saturation)
}

func synthesize(pixels int, integration, saturation uint32) []uint16 {
	out := make([]uint16, pixels)
	center := float64(pixels) / 2
	width := float64(pixels) / 40
	height := float64(integration) / 2
	for i := range out {
		x := (float64(i) - center) / width
		v := 1000 + height*math.Exp(-x*x/2)
		out[i] = uint16(min(v, float64(saturation), math.MaxUint16))
	}
	return out
}

// bin averages each run of f adjacent pixels. Pixels left over at the end
// are dropped.
func bin(pixels []uint16, f int) []uint16 {
	if f <= 1 {
		return pixels
	}
	out := make([]uint16, len(pixels)/f)
	for i := range out {
		var sum int
		for _, v := range pixels[i*f : (i+1)*f] {
			sum += int(v)
		}
		out[i] = uint16(sum / f)
	}
	return out
}

// temperature reads the setpoint while the cooler runs, ambient otherwise.
func (d *OBPInstrument) temperature() float32 {
	if d.tecOn {
		return d.setpoint
	}
	return 25
}

func coefficient(c []float32, r *wire.Reader) ([]byte, uint16, bool) {
	i := int(r.U8())
	if r.Err() != nil || i >= len(c) {
		return nil, obp.ErrnoBadPayload, false
	}
	return f32(c[i]), 0, false
}

func u16(v uint16) []byte {
	w := wire.NewWriter(2)
	w.U16(v)
	return w.Bytes()
}

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

// Compile-time interface satisfaction check.
var _ Instrument = (*OBPInstrument)(nil)
