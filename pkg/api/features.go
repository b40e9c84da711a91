package api

import (
	"fmt"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/features"
	"github.com/lumen-instruments/spectro-go/pkg/model"
)

// call resolves feature fid of device id as a T and runs fn on it. The
// result is the zero R unless fn succeeds.
func call[T model.Capability, R any](a *API, op string, id, fid uint32, code *Code, fn func(T) (R, error)) R {
	var r R
	a.guard(op, code, func() error {
		f, err := feature[T](a, id, fid)
		if err != nil {
			return err
		}
		v, err := fn(f)
		if err != nil {
			return err
		}
		r = v
		return nil
	})
	return r
}

// do is call for operations without a result.
func do[T model.Capability](a *API, op string, id, fid uint32, code *Code, fn func(T) error) {
	call(a, op, id, fid, code, func(f T) (struct{}, error) {
		return struct{}{}, fn(f)
	})
}

func checkBuffer(have, want int) error {
	if have < want {
		return fmt.Errorf("%w: room for %d of %d values", ErrInvalidBuffer, have, want)
	}
	return nil
}

// Spectrometer.

// SetIntegrationTimeMicros sets the integration time.
func (a *API) SetIntegrationTimeMicros(id, fid uint32, code *Code, micros uint32) {
	do(a, "set-integration-time", id, fid, code, func(s *features.Spectrometer) error {
		return s.SetIntegrationTime(micros)
	})
}

// MinIntegrationTimeMicros returns the shortest integration time.
func (a *API) MinIntegrationTimeMicros(id, fid uint32, code *Code) uint32 {
	return call(a, "min-integration-time", id, fid, code, func(s *features.Spectrometer) (uint32, error) {
		lim, err := s.IntegrationLimits()
		return lim.Min, err
	})
}

// MaxIntegrationTimeMicros returns the longest integration time.
func (a *API) MaxIntegrationTimeMicros(id, fid uint32, code *Code) uint32 {
	return call(a, "max-integration-time", id, fid, code, func(s *features.Spectrometer) (uint32, error) {
		lim, err := s.IntegrationLimits()
		return lim.Max, err
	})
}

// SetTriggerMode selects the trigger mode.
func (a *API) SetTriggerMode(id, fid uint32, code *Code, mode int) {
	do(a, "set-trigger-mode", id, fid, code, func(s *features.Spectrometer) error {
		if mode < 0 || mode > 255 {
			return fmt.Errorf("%w: trigger mode %d", fault.ErrIllegalArgument, mode)
		}
		return s.SetTriggerMode(features.TriggerMode(mode))
	})
}

// FormattedSpectrumLength returns the number of values in a formatted
// spectrum at the current binning factor.
func (a *API) FormattedSpectrumLength(id, fid uint32, code *Code) int {
	return call(a, "formatted-spectrum-length", id, fid, code, func(s *features.Spectrometer) (int, error) {
		return s.Length()
	})
}

// FormattedSpectrum acquires a spectrum scaled to MaxIntensity into out and
// returns the number of values written.
func (a *API) FormattedSpectrum(id, fid uint32, code *Code, out []float64) int {
	return call(a, "formatted-spectrum", id, fid, code, func(s *features.Spectrometer) (int, error) {
		n, err := s.Length()
		if err != nil {
			return 0, err
		}
		if err := checkBuffer(len(out), n); err != nil {
			return 0, err
		}
		values, err := s.FormattedSpectrum()
		if err != nil {
			return 0, err
		}
		return copy(out, values), nil
	})
}

// UnformattedSpectrumLength returns the byte length of a raw spectrum.
func (a *API) UnformattedSpectrumLength(id, fid uint32, code *Code) int {
	return call(a, "unformatted-spectrum-length", id, fid, code, func(s *features.Spectrometer) (int, error) {
		n, err := s.Length()
		return 2 * n, err
	})
}

// UnformattedSpectrum acquires raw counts into out, two little-endian
// bytes per pixel, and returns the number of bytes written.
func (a *API) UnformattedSpectrum(id, fid uint32, code *Code, out []byte) int {
	return call(a, "unformatted-spectrum", id, fid, code, func(s *features.Spectrometer) (int, error) {
		n, err := s.Length()
		if err != nil {
			return 0, err
		}
		if err := checkBuffer(len(out), 2*n); err != nil {
			return 0, err
		}
		raw, err := s.UnformattedSpectrum()
		if err != nil {
			return 0, err
		}
		for i, v := range raw {
			out[2*i] = byte(v)
			out[2*i+1] = byte(v >> 8)
		}
		return 2 * len(raw), nil
	})
}

// Wavelengths fills out with the wavelength of every pixel and returns the
// number written.
func (a *API) Wavelengths(id, fid uint32, code *Code, out []float64) int {
	return call(a, "wavelengths", id, fid, code, func(s *features.Spectrometer) (int, error) {
		n, err := s.Length()
		if err != nil {
			return 0, err
		}
		if err := checkBuffer(len(out), n); err != nil {
			return 0, err
		}
		wl, err := s.Wavelengths()
		if err != nil {
			return 0, err
		}
		return copy(out, wl), nil
	})
}

// MaximumIntensity returns the full-scale formatted value.
func (a *API) MaximumIntensity(id, fid uint32, code *Code) float64 {
	return call(a, "max-intensity", id, fid, code, func(s *features.Spectrometer) (float64, error) {
		if _, _, err := s.Resolve(); err != nil {
			return 0, err
		}
		return features.MaxIntensity, nil
	})
}

// Identity.

// SerialNumber copies the serial number into out and returns its length.
func (a *API) SerialNumber(id, fid uint32, code *Code, out []byte) int {
	return call(a, "serial-number", id, fid, code, func(s *features.SerialNumber) (int, error) {
		sn, err := s.Get()
		if err != nil {
			return 0, err
		}
		return copyString(out, sn)
	})
}

// SerialNumberMaxLength returns the longest serial number the device
// reports.
func (a *API) SerialNumberMaxLength(id, fid uint32, code *Code) int {
	return call(a, "serial-number-max-length", id, fid, code, func(s *features.SerialNumber) (int, error) {
		return s.MaxLength()
	})
}

// HardwareRevision returns the hardware revision.
func (a *API) HardwareRevision(id, fid uint32, code *Code) uint8 {
	return call(a, "hardware-revision", id, fid, code, func(r *features.Revision) (uint8, error) {
		return r.Hardware()
	})
}

// FirmwareRevision returns the firmware revision.
func (a *API) FirmwareRevision(id, fid uint32, code *Code) uint16 {
	return call(a, "firmware-revision", id, fid, code, func(r *features.Revision) (uint16, error) {
		return r.Firmware()
	})
}

// EEPROMReadSlot copies one information slot into out and returns its
// length.
func (a *API) EEPROMReadSlot(id, fid uint32, code *Code, slot int, out []byte) int {
	return call(a, "eeprom-read-slot", id, fid, code, func(e *features.EEPROM) (int, error) {
		if slot < 0 || slot > 255 {
			return 0, fmt.Errorf("%w: slot %d", fault.ErrIllegalArgument, slot)
		}
		v, err := e.ReadSlot(uint8(slot))
		if err != nil {
			return 0, err
		}
		return copyString(out, v)
	})
}

// Cooler and lamp.

// TECEnable switches the cooler.
func (a *API) TECEnable(id, fid uint32, code *Code, on bool) {
	do(a, "tec-enable", id, fid, code, func(t *features.ThermoElectric) error {
		return t.Enable(on)
	})
}

// TECSetTemperatureSetpoint sets the cooler setpoint in degrees Celsius.
func (a *API) TECSetTemperatureSetpoint(id, fid uint32, code *Code, celsius float64) {
	do(a, "tec-setpoint", id, fid, code, func(t *features.ThermoElectric) error {
		return t.SetSetpoint(celsius)
	})
}

// TECReadTemperature returns the detector temperature in degrees Celsius.
func (a *API) TECReadTemperature(id, fid uint32, code *Code) float64 {
	return call(a, "tec-temperature", id, fid, code, func(t *features.ThermoElectric) (float64, error) {
		return t.Temperature()
	})
}

// LampEnable switches the lamp or strobe.
func (a *API) LampEnable(id, fid uint32, code *Code, on bool) {
	do(a, "lamp-enable", id, fid, code, func(l *features.Lamp) error {
		return l.Enable(on)
	})
}

// NonlinearityCoefficients fills out with the correction coefficients and
// returns the number written.
func (a *API) NonlinearityCoefficients(id, fid uint32, code *Code, out []float64) int {
	return call(a, "nonlinearity-coefficients", id, fid, code, func(n *features.Nonlinearity) (int, error) {
		c, err := n.Coefficients()
		if err != nil {
			return 0, err
		}
		if err := checkBuffer(len(out), len(c)); err != nil {
			return 0, err
		}
		return copy(out, c), nil
	})
}

// Pixel binning.

// BinningFactor returns the binning factor.
func (a *API) BinningFactor(id, fid uint32, code *Code) uint8 {
	return call(a, "binning-factor", id, fid, code, func(p *features.PixelBinning) (uint8, error) {
		return p.Factor()
	})
}

// MaxBinningFactor returns the largest binning factor.
func (a *API) MaxBinningFactor(id, fid uint32, code *Code) uint8 {
	return call(a, "max-binning-factor", id, fid, code, func(p *features.PixelBinning) (uint8, error) {
		return p.MaxFactor()
	})
}

// SetBinningFactor sets the binning factor.
func (a *API) SetBinningFactor(id, fid uint32, code *Code, factor uint8) {
	do(a, "set-binning-factor", id, fid, code, func(p *features.PixelBinning) error {
		return p.SetFactor(factor)
	})
}

// Data buffer.

// BufferCapacity returns the buffer capacity in records.
func (a *API) BufferCapacity(id, fid uint32, code *Code) uint32 {
	return call(a, "buffer-capacity", id, fid, code, func(b *features.DataBuffer) (uint32, error) {
		return b.Capacity()
	})
}

// BufferCapacityMinimum returns the smallest settable capacity.
func (a *API) BufferCapacityMinimum(id, fid uint32, code *Code) uint32 {
	return call(a, "buffer-capacity-min", id, fid, code, func(b *features.DataBuffer) (uint32, error) {
		lim, err := b.CapacityLimits()
		return lim.Min, err
	})
}

// BufferCapacityMaximum returns the largest settable capacity.
func (a *API) BufferCapacityMaximum(id, fid uint32, code *Code) uint32 {
	return call(a, "buffer-capacity-max", id, fid, code, func(b *features.DataBuffer) (uint32, error) {
		lim, err := b.CapacityLimits()
		return lim.Max, err
	})
}

// SetBufferCapacity sets the buffer capacity.
func (a *API) SetBufferCapacity(id, fid uint32, code *Code, n uint32) {
	do(a, "set-buffer-capacity", id, fid, code, func(b *features.DataBuffer) error {
		return b.SetCapacity(n)
	})
}

// BufferElementCount returns the number of buffered records.
func (a *API) BufferElementCount(id, fid uint32, code *Code) uint32 {
	return call(a, "buffer-count", id, fid, code, func(b *features.DataBuffer) (uint32, error) {
		return b.Count()
	})
}

// ClearBuffer discards every buffered record.
func (a *API) ClearBuffer(id, fid uint32, code *Code) {
	do(a, "clear-buffer", id, fid, code, func(b *features.DataBuffer) error {
		return b.Clear()
	})
}

// RemoveOldestSpectra discards the n oldest records.
func (a *API) RemoveOldestSpectra(id, fid uint32, code *Code, n uint32) {
	do(a, "remove-oldest", id, fid, code, func(b *features.DataBuffer) error {
		return b.RemoveOldest(n)
	})
}

// Fast buffer.

// FastBufferRecordSize returns the size of one record in bytes.
func (a *API) FastBufferRecordSize(id, fid uint32, code *Code) int {
	return call(a, "fast-buffer-record-size", id, fid, code, func(f *features.FastBuffer) (int, error) {
		return f.ActiveRecordSize()
	})
}

// FastBufferBegin starts capturing n records.
func (a *API) FastBufferBegin(id, fid uint32, code *Code, n int) {
	do(a, "fast-buffer-begin", id, fid, code, func(f *features.FastBuffer) error {
		return f.Begin(n)
	})
}

// FastBufferRetrieve copies complete records into out and returns their
// count. A buffer smaller than one record reports CodeInvalidBuffer.
func (a *API) FastBufferRetrieve(id, fid uint32, code *Code, out []byte) int {
	return call(a, "fast-buffer-retrieve", id, fid, code, func(f *features.FastBuffer) (int, error) {
		if err := checkBuffer(len(out), f.RecordSize()); err != nil {
			return 0, err
		}
		return f.Retrieve(out)
	})
}
