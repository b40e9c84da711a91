package features

import (
	"fmt"
	"math"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/model"
	"github.com/lumen-instruments/spectro-go/pkg/protocol"
	"github.com/lumen-instruments/spectro-go/pkg/protocol/obp"
)

// Setpoint range accepted by the cooler, in degrees Celsius.
const (
	MinSetpoint = -40.0
	MaxSetpoint = 30.0
)

// ThermoElectricHelper drives the detector cooler.
type ThermoElectricHelper interface {
	Enable(l *protocol.Link, on bool) error
	SetSetpoint(l *protocol.Link, celsius float32) error
	Temperature(l *protocol.Link) (float32, error)
}

// ThermoElectric controls the detector cooler.
type ThermoElectric struct {
	*model.Feature[ThermoElectricHelper]
}

// NewThermoElectric creates a cooler feature.
func NewThermoElectric(bindings ...model.Binding[ThermoElectricHelper]) *ThermoElectric {
	return &ThermoElectric{model.NewFeature(model.FamilyThermoElectric, bindings...)}
}

// Enable switches the cooler on or off.
func (t *ThermoElectric) Enable(on bool) error {
	h, l, err := t.Resolve()
	if err != nil {
		return err
	}
	return h.Enable(l, on)
}

// SetSetpoint sets the target temperature.
func (t *ThermoElectric) SetSetpoint(celsius float64) error {
	h, l, err := t.Resolve()
	if err != nil {
		return err
	}
	if math.IsNaN(celsius) || celsius < MinSetpoint || celsius > MaxSetpoint {
		return fmt.Errorf("%w: setpoint %v°C outside [%v, %v]", fault.ErrIllegalArgument, celsius, MinSetpoint, MaxSetpoint)
	}
	return h.SetSetpoint(l, float32(celsius))
}

// Temperature reads the detector temperature.
func (t *ThermoElectric) Temperature() (float64, error) {
	h, l, err := t.Resolve()
	if err != nil {
		return 0, err
	}
	v, err := h.Temperature(l)
	return float64(v), err
}

type obpTEC struct{}

// OBPThermoElectric returns the OBP cooler helper.
func OBPThermoElectric() ThermoElectricHelper { return obpTEC{} }

func (obpTEC) Enable(l *protocol.Link, on bool) error {
	_, err := obp.SetTECEnable(on).Execute(l)
	return err
}

func (obpTEC) SetSetpoint(l *protocol.Link, celsius float32) error {
	_, err := obp.SetTECSetpoint(celsius).Execute(l)
	return err
}

func (obpTEC) Temperature(l *protocol.Link) (float32, error) {
	return obp.TECTemperature().Execute(l)
}
