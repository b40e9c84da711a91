package features

import (
	"fmt"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/model"
	"github.com/lumen-instruments/spectro-go/pkg/protocol"
	"github.com/lumen-instruments/spectro-go/pkg/protocol/obp"
)

// PixelBinningHelper reads and sets the binning factor.
type PixelBinningHelper interface {
	Factor(l *protocol.Link) (uint8, error)
	MaxFactor(l *protocol.Link) (uint8, error)
	SetFactor(l *protocol.Link, f uint8) error
}

// PixelBinning combines adjacent pixels on the detector.
type PixelBinning struct {
	*model.Feature[PixelBinningHelper]
}

// NewPixelBinning creates a pixel binning feature.
func NewPixelBinning(bindings ...model.Binding[PixelBinningHelper]) *PixelBinning {
	return &PixelBinning{model.NewFeature(model.FamilyPixelBinning, bindings...)}
}

// Factor returns the current binning factor.
func (p *PixelBinning) Factor() (uint8, error) {
	h, l, err := p.Resolve()
	if err != nil {
		return 0, err
	}
	return h.Factor(l)
}

// MaxFactor returns the largest supported factor.
func (p *PixelBinning) MaxFactor() (uint8, error) {
	h, l, err := p.Resolve()
	if err != nil {
		return 0, err
	}
	return h.MaxFactor(l)
}

// SetFactor sets the binning factor. Zero and factors above the maximum
// are rejected.
func (p *PixelBinning) SetFactor(f uint8) error {
	h, l, err := p.Resolve()
	if err != nil {
		return err
	}
	if f == 0 {
		return fmt.Errorf("%w: binning factor 0", fault.ErrIllegalArgument)
	}
	limit, err := h.MaxFactor(l)
	if err != nil {
		return err
	}
	if f > limit {
		return fmt.Errorf("%w: binning factor %d above %d", fault.ErrIllegalArgument, f, limit)
	}
	return h.SetFactor(l, f)
}

type obpBinning struct{}

// OBPPixelBinning returns the OBP binning helper.
func OBPPixelBinning() PixelBinningHelper { return obpBinning{} }

func (obpBinning) Factor(l *protocol.Link) (uint8, error) {
	return obp.BinningFactor().Execute(l)
}

func (obpBinning) MaxFactor(l *protocol.Link) (uint8, error) {
	return obp.BinningFactorMax().Execute(l)
}

func (obpBinning) SetFactor(l *protocol.Link, f uint8) error {
	_, err := obp.SetBinningFactor(f).Execute(l)
	return err
}
