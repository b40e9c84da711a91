package features

import (
	"fmt"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/model"
	"github.com/lumen-instruments/spectro-go/pkg/protocol"
	"github.com/lumen-instruments/spectro-go/pkg/protocol/legacy"
)

// EEPROMHelper reads information slots.
type EEPROMHelper interface {
	ReadSlot(l *protocol.Link, slot uint8) (string, error)
	MaxSlot() uint8
}

// EEPROM exposes the raw information slots of older instruments.
type EEPROM struct {
	*model.Feature[EEPROMHelper]
}

// NewEEPROM creates an EEPROM feature.
func NewEEPROM(bindings ...model.Binding[EEPROMHelper]) *EEPROM {
	return &EEPROM{model.NewFeature(model.FamilyEEPROM, bindings...)}
}

// ReadSlot returns the value stored in slot.
func (e *EEPROM) ReadSlot(slot uint8) (string, error) {
	h, l, err := e.Resolve()
	if err != nil {
		return "", err
	}
	if slot > h.MaxSlot() {
		return "", fmt.Errorf("%w: slot %d beyond %d", fault.ErrIllegalArgument, slot, h.MaxSlot())
	}
	return h.ReadSlot(l, slot)
}

type legacyEEPROM struct{}

// LegacyEEPROM reads slots with the query-information opcode.
func LegacyEEPROM() EEPROMHelper { return legacyEEPROM{} }

func (legacyEEPROM) ReadSlot(l *protocol.Link, slot uint8) (string, error) {
	return legacy.QueryInfo(slot).Execute(l)
}

func (legacyEEPROM) MaxSlot() uint8 { return legacy.MaxSlot }
