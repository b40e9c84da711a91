package sim

import (
	"strconv"
	"sync"

	"github.com/lumen-instruments/spectro-go/pkg/protocol/legacy"
	"github.com/lumen-instruments/spectro-go/pkg/wire"
)

// LegacyConfig describes a simulated opcode-protocol instrument.
type LegacyConfig struct {
	Serial       string
	Pixels       int
	Saturation   uint32
	Wavelength   [legacy.WavelengthSlots]float64
	Nonlinearity []float64
}

// DefaultLegacyConfig returns a plausible instrument.
func DefaultLegacyConfig(serial string, pixels int) LegacyConfig {
	return LegacyConfig{
		Serial:       serial,
		Pixels:       pixels,
		Saturation:   62500,
		Wavelength:   [legacy.WavelengthSlots]float64{178.2, 0.3689, -1.8e-5, -2.1e-10},
		Nonlinearity: []float64{0.9, 4.2e-6, -3.1e-10},
	}
}

// LegacyInstrument simulates an opcode-protocol instrument.
type LegacyInstrument struct {
	mu     sync.Mutex
	cfg    LegacyConfig
	slots  [legacy.MaxSlot + 1][]byte
	status legacy.Status

	initialized int
	handled     []uint8
}

// NewLegacyInstrument creates an instrument with its information slots
// populated from cfg.
func NewLegacyInstrument(cfg LegacyConfig) *LegacyInstrument {
	d := &LegacyInstrument{cfg: cfg}
	d.slots[legacy.SlotSerial] = legacy.EncodeInfoValue(cfg.Serial)
	for i, c := range cfg.Wavelength {
		d.slots[legacy.SlotWavelength0+uint8(i)] = legacy.EncodeInfoValue(formatFloat(c))
	}
	if n := len(cfg.Nonlinearity); n > 0 {
		d.slots[legacy.SlotNonlinearityOrder] = legacy.EncodeInfoValue(strconv.Itoa(n - 1))
		for i, c := range cfg.Nonlinearity {
			d.slots[legacy.SlotNonlinearity0+uint8(i)] = legacy.EncodeInfoValue(formatFloat(c))
		}
	}
	d.slots[legacy.SlotSaturation] = legacy.EncodeInfoValue(strconv.FormatUint(uint64(cfg.Saturation), 10))
	for i := range d.slots {
		if d.slots[i] == nil {
			d.slots[i] = legacy.EncodeInfoValue("")
		}
	}
	d.reset()
	return d
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 8, 64)
}

func (d *LegacyInstrument) reset() {
	d.status = legacy.Status{
		Pixels:             uint16(d.cfg.Pixels),
		IntegrationMicros:  100_000,
		PacketsPerSpectrum: uint8((2*d.cfg.Pixels + 511) / 512),
		HighSpeed:          true,
	}
}

// Status returns the current status block.
func (d *LegacyInstrument) Status() legacy.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// Initialized returns how many times the host sent the initialize opcode.
func (d *LegacyInstrument) Initialized() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initialized
}

// Handled returns the opcodes processed so far.
func (d *LegacyInstrument) Handled() []uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]uint8(nil), d.handled...)
}

// Handle executes one opcode. Padding after the arguments is ignored.
func (d *LegacyInstrument) Handle(request []byte) []byte {
	if len(request) == 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	op := request[0]
	r := wire.NewReader(request[1:])
	d.handled = append(d.handled, op)

	switch op {
	case legacy.OpInitialize:
		d.initialized++
		d.reset()
	case legacy.OpSetIntegration:
		if v := r.U32(); r.Err() == nil {
			d.status.IntegrationMicros = v
		}
	case legacy.OpSetStrobe:
		if v := r.U16(); r.Err() == nil {
			d.status.StrobeEnabled = v != 0
		}
	case legacy.OpSetTrigger:
		if v := r.U16(); r.Err() == nil {
			d.status.TriggerMode = uint8(v)
		}
	case legacy.OpQueryInfo:
		slot := r.U8()
		if r.Err() != nil || slot > legacy.MaxSlot {
			return nil
		}
		return append([]byte{legacy.OpQueryInfo, slot}, d.slots[slot]...)
	case legacy.OpWriteInfo:
		slot := r.U8()
		value := r.Raw(legacy.InfoValueSize)
		if r.Err() != nil || slot > legacy.MaxSlot {
			return nil
		}
		d.slots[slot] = append([]byte(nil), value...)
	case legacy.OpRequestSpectrum:
		px := synthesize(d.cfg.Pixels, d.status.IntegrationMicros, d.cfg.Saturation)
		return append(wire.PutU16s(px), legacy.SyncByte)
	case legacy.OpQueryStatus:
		return legacy.EncodeStatus(d.status)
	}
	return nil
}

// Compile-time interface satisfaction check.
var _ Instrument = (*LegacyInstrument)(nil)
