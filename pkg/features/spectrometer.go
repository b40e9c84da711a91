package features

import (
	"fmt"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/model"
	"github.com/lumen-instruments/spectro-go/pkg/protocol"
	"github.com/lumen-instruments/spectro-go/pkg/protocol/legacy"
	"github.com/lumen-instruments/spectro-go/pkg/protocol/obp"
)

// MaxIntensity is the full-scale value of a formatted spectrum.
const MaxIntensity = 65535.0

// TriggerMode selects how acquisitions start.
type TriggerMode uint8

const (
	TriggerNormal TriggerMode = iota
	TriggerSoftware
	TriggerExternalSync
	TriggerExternalHardware
)

// String returns the trigger mode name.
func (m TriggerMode) String() string {
	switch m {
	case TriggerNormal:
		return "NORMAL"
	case TriggerSoftware:
		return "SOFTWARE"
	case TriggerExternalSync:
		return "EXTERNAL_SYNC"
	case TriggerExternalHardware:
		return "EXTERNAL_HARDWARE"
	default:
		return "UNKNOWN"
	}
}

// IntegrationLimits bounds the integration time in microseconds.
type IntegrationLimits struct {
	Min uint32
	Max uint32
}

// Contains reports whether micros is within the limits.
func (l IntegrationLimits) Contains(micros uint32) bool {
	return micros >= l.Min && micros <= l.Max
}

// SpectrometerHelper implements acquisition for one protocol family.
type SpectrometerHelper interface {
	Limits() IntegrationLimits
	Saturation() uint32
	SetIntegrationTime(l *protocol.Link, micros uint32) error
	SetTriggerMode(l *protocol.Link, mode TriggerMode) error
	Binning(l *protocol.Link) (int, error)
	RawSpectrum(l *protocol.Link, pixels int) ([]uint16, error)
	WavelengthCoefficients(l *protocol.Link) ([]float64, error)
}

// Spectrometer acquires spectra.
type Spectrometer struct {
	*model.Feature[SpectrometerHelper]
	pixels int
}

// NewSpectrometer creates a spectrometer feature for a detector of pixels
// pixels.
func NewSpectrometer(pixels int, bindings ...model.Binding[SpectrometerHelper]) *Spectrometer {
	return &Spectrometer{
		Feature: model.NewFeature(model.FamilySpectrometer, bindings...),
		pixels:  pixels,
	}
}

// Pixels returns the detector width.
func (s *Spectrometer) Pixels() int {
	return s.pixels
}

// Length returns the number of values in a spectrum: the detector width
// divided by the active binning factor.
func (s *Spectrometer) Length() (int, error) {
	h, l, err := s.Resolve()
	if err != nil {
		return 0, err
	}
	n, _, err := s.width(h, l)
	return n, err
}

// width returns the spectrum length and the binning factor it follows from.
func (s *Spectrometer) width(h SpectrometerHelper, l *protocol.Link) (int, int, error) {
	f, err := h.Binning(l)
	if err != nil {
		return 0, 0, err
	}
	if f < 1 || f > s.pixels {
		return 0, 0, fmt.Errorf("%w: binning factor %d", fault.ErrFormat, f)
	}
	return s.pixels / f, f, nil
}

// IntegrationLimits returns the supported integration range.
func (s *Spectrometer) IntegrationLimits() (IntegrationLimits, error) {
	h, _, err := s.Resolve()
	if err != nil {
		return IntegrationLimits{}, err
	}
	return h.Limits(), nil
}

// SetIntegrationTime sets the integration time. Values outside the limits
// are rejected without I/O.
func (s *Spectrometer) SetIntegrationTime(micros uint32) error {
	h, l, err := s.Resolve()
	if err != nil {
		return err
	}
	if lim := h.Limits(); !lim.Contains(micros) {
		return fmt.Errorf("%w: integration time %dus outside [%d, %d]",
			fault.ErrIllegalArgument, micros, lim.Min, lim.Max)
	}
	return h.SetIntegrationTime(l, micros)
}

// SetTriggerMode selects the trigger mode.
func (s *Spectrometer) SetTriggerMode(mode TriggerMode) error {
	h, l, err := s.Resolve()
	if err != nil {
		return err
	}
	if mode > TriggerExternalHardware {
		return fmt.Errorf("%w: trigger mode %d", fault.ErrIllegalArgument, mode)
	}
	return h.SetTriggerMode(l, mode)
}

// UnformattedSpectrum returns raw detector counts.
func (s *Spectrometer) UnformattedSpectrum() ([]uint16, error) {
	h, l, err := s.Resolve()
	if err != nil {
		return nil, err
	}
	n, _, err := s.width(h, l)
	if err != nil {
		return nil, err
	}
	return h.RawSpectrum(l, n)
}

// FormattedSpectrum returns the spectrum scaled so the detector's
// saturation level maps to MaxIntensity.
func (s *Spectrometer) FormattedSpectrum() ([]float64, error) {
	h, l, err := s.Resolve()
	if err != nil {
		return nil, err
	}
	n, _, err := s.width(h, l)
	if err != nil {
		return nil, err
	}
	raw, err := h.RawSpectrum(l, n)
	if err != nil {
		return nil, err
	}
	scale := 1.0
	if sat := h.Saturation(); sat > 0 {
		scale = MaxIntensity / float64(sat)
	}
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = min(float64(v)*scale, MaxIntensity)
	}
	return out, nil
}

// Wavelengths evaluates the calibration polynomial at every pixel. A
// binned value is placed at the center of the pixels it combines.
func (s *Spectrometer) Wavelengths() ([]float64, error) {
	h, l, err := s.Resolve()
	if err != nil {
		return nil, err
	}
	n, f, err := s.width(h, l)
	if err != nil {
		return nil, err
	}
	coeffs, err := h.WavelengthCoefficients(l)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = Polynomial(coeffs, float64(i*f)+float64(f-1)/2)
	}
	return out, nil
}

// Polynomial evaluates c[0] + c[1]x + c[2]x² + ... by Horner's rule.
func Polynomial(c []float64, x float64) float64 {
	var y float64
	for i := len(c) - 1; i >= 0; i-- {
		y = y*x + c[i]
	}
	return y
}

// Legacy.

type legacySpectrometer struct {
	limits     IntegrationLimits
	saturation uint32
}

// LegacySpectrometer returns the opcode-protocol helper. Limits are fixed
// by the device type.
func LegacySpectrometer(limits IntegrationLimits) SpectrometerHelper {
	return &legacySpectrometer{limits: limits}
}

// Initialize resets the instrument and reads its saturation level.
func (h *legacySpectrometer) Initialize(l *protocol.Link) error {
	if _, err := legacy.Initialize().Execute(l); err != nil {
		return err
	}
	sat, err := legacy.QueryFloat(legacy.SlotSaturation).Execute(l)
	if err != nil {
		return err
	}
	if sat <= 0 || sat > MaxIntensity {
		return fmt.Errorf("%w: saturation level %v", fault.ErrFormat, sat)
	}
	h.saturation = uint32(sat)
	return nil
}

func (h *legacySpectrometer) Limits() IntegrationLimits           { return h.limits }
func (h *legacySpectrometer) Saturation() uint32                  { return h.saturation }
func (h *legacySpectrometer) Binning(*protocol.Link) (int, error) { return 1, nil }

func (h *legacySpectrometer) SetIntegrationTime(l *protocol.Link, micros uint32) error {
	_, err := legacy.SetIntegrationTime(micros).Execute(l)
	return err
}

func (h *legacySpectrometer) SetTriggerMode(l *protocol.Link, mode TriggerMode) error {
	_, err := legacy.SetTriggerMode(uint16(mode)).Execute(l)
	return err
}

func (h *legacySpectrometer) RawSpectrum(l *protocol.Link, pixels int) ([]uint16, error) {
	return legacy.RequestSpectrum(pixels).Execute(l)
}

func (h *legacySpectrometer) WavelengthCoefficients(l *protocol.Link) ([]float64, error) {
	coeffs := make([]float64, legacy.WavelengthSlots)
	for i := range coeffs {
		v, err := legacy.QueryFloat(legacy.SlotWavelength0 + uint8(i)).Execute(l)
		if err != nil {
			return nil, err
		}
		coeffs[i] = v
	}
	return coeffs, nil
}

// OBP.

type obpSpectrometer struct {
	limits     IntegrationLimits
	saturation uint32
	binned     bool
}

// OBPSpectrometer returns the OBP helper. Limits and saturation are read
// from the device on open.
func OBPSpectrometer() SpectrometerHelper {
	return &obpSpectrometer{}
}

// OBPBinnedSpectrometer returns the OBP helper for detectors with pixel
// binning. Every acquisition first reads the binning factor so the reply
// width follows it.
func OBPBinnedSpectrometer() SpectrometerHelper {
	return &obpSpectrometer{binned: true}
}

// Initialize caches the integration limits and saturation level.
func (h *obpSpectrometer) Initialize(l *protocol.Link) error {
	lo, err := obp.IntegrationTimeMin().Execute(l)
	if err != nil {
		return err
	}
	hi, err := obp.IntegrationTimeMax().Execute(l)
	if err != nil {
		return err
	}
	if lo > hi {
		return fmt.Errorf("%w: integration limits [%d, %d]", fault.ErrFormat, lo, hi)
	}
	sat, err := obp.SaturationLevel().Execute(l)
	if err != nil {
		return err
	}
	h.limits = IntegrationLimits{Min: lo, Max: hi}
	h.saturation = sat
	return nil
}

func (h *obpSpectrometer) Limits() IntegrationLimits { return h.limits }
func (h *obpSpectrometer) Saturation() uint32        { return h.saturation }

func (h *obpSpectrometer) Binning(l *protocol.Link) (int, error) {
	if !h.binned {
		return 1, nil
	}
	f, err := obp.BinningFactor().Execute(l)
	return int(f), err
}

func (h *obpSpectrometer) SetIntegrationTime(l *protocol.Link, micros uint32) error {
	_, err := obp.SetIntegrationTime(micros).Execute(l)
	return err
}

func (h *obpSpectrometer) SetTriggerMode(l *protocol.Link, mode TriggerMode) error {
	_, err := obp.SetTriggerMode(uint8(mode)).Execute(l)
	return err
}

func (h *obpSpectrometer) RawSpectrum(l *protocol.Link, pixels int) ([]uint16, error) {
	return obp.RawSpectrum(pixels).Execute(l)
}

func (h *obpSpectrometer) WavelengthCoefficients(l *protocol.Link) ([]float64, error) {
	return readCoefficients(l, obp.WavelengthCoeffCount(), obp.WavelengthCoeff)
}

// readCoefficients reads a count then each indexed coefficient.
func readCoefficients(l *protocol.Link, count protocol.Transaction[uint8], coeff func(uint8) protocol.Transaction[float32]) ([]float64, error) {
	n, err := count.Execute(l)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		v, err := coeff(uint8(i)).Execute(l)
		if err != nil {
			return nil, err
		}
		out[i] = float64(v)
	}
	return out, nil
}
