package features

import (
	"github.com/lumen-instruments/spectro-go/pkg/model"
	"github.com/lumen-instruments/spectro-go/pkg/protocol"
	"github.com/lumen-instruments/spectro-go/pkg/protocol/legacy"
	"github.com/lumen-instruments/spectro-go/pkg/protocol/obp"
)

// LampHelper switches the lamp or strobe output.
type LampHelper interface {
	Enable(l *protocol.Link, on bool) error
}

// Lamp controls the lamp enable line.
type Lamp struct {
	*model.Feature[LampHelper]
}

// NewLamp creates a lamp feature.
func NewLamp(bindings ...model.Binding[LampHelper]) *Lamp {
	return &Lamp{model.NewFeature(model.FamilyLamp, bindings...)}
}

// Enable switches the lamp.
func (lp *Lamp) Enable(on bool) error {
	h, l, err := lp.Resolve()
	if err != nil {
		return err
	}
	return h.Enable(l, on)
}

type legacyLamp struct{}

// LegacyLamp drives the strobe opcode.
func LegacyLamp() LampHelper { return legacyLamp{} }

func (legacyLamp) Enable(l *protocol.Link, on bool) error {
	_, err := legacy.SetStrobe(on).Execute(l)
	return err
}

type obpLamp struct{}

// OBPLamp drives the lamp message.
func OBPLamp() LampHelper { return obpLamp{} }

func (obpLamp) Enable(l *protocol.Link, on bool) error {
	_, err := obp.SetLampEnable(on).Execute(l)
	return err
}
