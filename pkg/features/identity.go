package features

import (
	"github.com/lumen-instruments/spectro-go/pkg/model"
	"github.com/lumen-instruments/spectro-go/pkg/protocol"
	"github.com/lumen-instruments/spectro-go/pkg/protocol/legacy"
	"github.com/lumen-instruments/spectro-go/pkg/protocol/obp"
)

// SerialNumberHelper reads the instrument serial number.
type SerialNumberHelper interface {
	SerialNumber(l *protocol.Link) (string, error)
	MaxLength(l *protocol.Link) (int, error)
}

// SerialNumber reports the instrument serial number.
type SerialNumber struct {
	*model.Feature[SerialNumberHelper]
}

// NewSerialNumber creates a serial number feature.
func NewSerialNumber(bindings ...model.Binding[SerialNumberHelper]) *SerialNumber {
	return &SerialNumber{model.NewFeature(model.FamilySerialNumber, bindings...)}
}

// Get reads the serial number.
func (s *SerialNumber) Get() (string, error) {
	h, l, err := s.Resolve()
	if err != nil {
		return "", err
	}
	return h.SerialNumber(l)
}

// MaxLength returns the longest serial number the device can report.
func (s *SerialNumber) MaxLength() (int, error) {
	h, l, err := s.Resolve()
	if err != nil {
		return 0, err
	}
	return h.MaxLength(l)
}

type legacySerial struct{}

// LegacySerialNumber reads information slot 0.
func LegacySerialNumber() SerialNumberHelper { return legacySerial{} }

func (legacySerial) SerialNumber(l *protocol.Link) (string, error) {
	return legacy.QueryInfo(legacy.SlotSerial).Execute(l)
}

func (legacySerial) MaxLength(*protocol.Link) (int, error) {
	return legacy.InfoValueSize, nil
}

type obpSerial struct{}

// OBPSerialNumber reads the serial number messages.
func OBPSerialNumber() SerialNumberHelper { return obpSerial{} }

func (obpSerial) SerialNumber(l *protocol.Link) (string, error) {
	return obp.SerialNumber().Execute(l)
}

func (obpSerial) MaxLength(l *protocol.Link) (int, error) {
	n, err := obp.SerialNumberLength().Execute(l)
	return int(n), err
}

// RevisionHelper reads hardware and firmware revisions.
type RevisionHelper interface {
	Hardware(l *protocol.Link) (uint8, error)
	Firmware(l *protocol.Link) (uint16, error)
}

// Revision reports hardware and firmware revisions.
type Revision struct {
	*model.Feature[RevisionHelper]
}

// NewRevision creates a revision feature.
func NewRevision(bindings ...model.Binding[RevisionHelper]) *Revision {
	return &Revision{model.NewFeature(model.FamilyRevision, bindings...)}
}

// Hardware returns the hardware revision.
func (r *Revision) Hardware() (uint8, error) {
	h, l, err := r.Resolve()
	if err != nil {
		return 0, err
	}
	return h.Hardware(l)
}

// Firmware returns the firmware revision.
func (r *Revision) Firmware() (uint16, error) {
	h, l, err := r.Resolve()
	if err != nil {
		return 0, err
	}
	return h.Firmware(l)
}

type obpRevision struct{}

// OBPRevision reads the revision messages.
func OBPRevision() RevisionHelper { return obpRevision{} }

func (obpRevision) Hardware(l *protocol.Link) (uint8, error) {
	return obp.HardwareRevision().Execute(l)
}

func (obpRevision) Firmware(l *protocol.Link) (uint16, error) {
	return obp.FirmwareRevision().Execute(l)
}
