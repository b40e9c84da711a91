package features

import (
	"fmt"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/model"
	"github.com/lumen-instruments/spectro-go/pkg/protocol"
	"github.com/lumen-instruments/spectro-go/pkg/protocol/legacy"
	"github.com/lumen-instruments/spectro-go/pkg/protocol/obp"
)

// NonlinearityHelper reads correction coefficients.
type NonlinearityHelper interface {
	Coefficients(l *protocol.Link) ([]float64, error)
}

// Nonlinearity reports the detector nonlinearity correction polynomial.
type Nonlinearity struct {
	*model.Feature[NonlinearityHelper]
}

// NewNonlinearity creates a nonlinearity feature.
func NewNonlinearity(bindings ...model.Binding[NonlinearityHelper]) *Nonlinearity {
	return &Nonlinearity{model.NewFeature(model.FamilyNonlinearity, bindings...)}
}

// Coefficients returns c[0..n], lowest order first.
func (n *Nonlinearity) Coefficients() ([]float64, error) {
	h, l, err := n.Resolve()
	if err != nil {
		return nil, err
	}
	return h.Coefficients(l)
}

type legacyNonlinearity struct{}

// LegacyNonlinearity reads the order slot then the coefficient slots.
func LegacyNonlinearity() NonlinearityHelper { return legacyNonlinearity{} }

func (legacyNonlinearity) Coefficients(l *protocol.Link) ([]float64, error) {
	order, err := legacy.QueryFloat(legacy.SlotNonlinearityOrder).Execute(l)
	if err != nil {
		return nil, err
	}
	n := int(order) + 1
	if order < 0 || n > legacy.NonlinearitySlots {
		return nil, fmt.Errorf("%w: nonlinearity order %v", fault.ErrFormat, order)
	}
	out := make([]float64, n)
	for i := range out {
		v, err := legacy.QueryFloat(legacy.SlotNonlinearity0 + uint8(i)).Execute(l)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

type obpNonlinearity struct{}

// OBPNonlinearity reads the coefficient count then each coefficient.
func OBPNonlinearity() NonlinearityHelper { return obpNonlinearity{} }

func (obpNonlinearity) Coefficients(l *protocol.Link) ([]float64, error) {
	return readCoefficients(l, obp.NonlinearityCount(), obp.NonlinearityCoeff)
}
