package protocol

// Family identifies a wire protocol family.
type Family uint8

const (
	// FamilyLegacy is the fixed-opcode command set.
	FamilyLegacy Family = iota + 1
	// FamilyOBP is the self-describing binary message protocol.
	FamilyOBP
)

// String returns the family name.
func (f Family) String() string {
	switch f {
	case FamilyLegacy:
		return "LEGACY"
	case FamilyOBP:
		return "OBP"
	default:
		return "UNKNOWN"
	}
}

// Protocol is one wire protocol a device speaks.
type Protocol struct {
	Family Family

	// Version is informational (for example the OBP header version).
	Version uint16
}

// Legacy and OBP are the protocols shipped with the catalog.
var (
	Legacy = Protocol{Family: FamilyLegacy}
	OBP    = Protocol{Family: FamilyOBP, Version: 0x1100}
)

// String returns the family name.
func (p Protocol) String() string {
	return p.Family.String()
}
