package model

// FeatureFamily tags a feature with the capability it provides.
type FeatureFamily uint8

// Feature families. Values are stable across releases.
const (
	FamilySerialNumber   FeatureFamily = 1
	FamilySpectrometer   FeatureFamily = 2
	FamilyThermoElectric FeatureFamily = 3
	FamilyEEPROM         FeatureFamily = 5
	FamilyLamp           FeatureFamily = 6
	FamilyNonlinearity   FeatureFamily = 10
	FamilyRevision       FeatureFamily = 13
	FamilyDataBuffer     FeatureFamily = 18
	FamilyFastBuffer     FeatureFamily = 19
	FamilyPixelBinning   FeatureFamily = 21
)

// Families lists every family in ascending order.
var Families = []FeatureFamily{
	FamilySerialNumber,
	FamilySpectrometer,
	FamilyThermoElectric,
	FamilyEEPROM,
	FamilyLamp,
	FamilyNonlinearity,
	FamilyRevision,
	FamilyDataBuffer,
	FamilyFastBuffer,
	FamilyPixelBinning,
}

// String returns the family name.
func (f FeatureFamily) String() string {
	switch f {
	case FamilySerialNumber:
		return "SERIAL_NUMBER"
	case FamilySpectrometer:
		return "SPECTROMETER"
	case FamilyThermoElectric:
		return "THERMO_ELECTRIC"
	case FamilyEEPROM:
		return "EEPROM"
	case FamilyLamp:
		return "LAMP"
	case FamilyNonlinearity:
		return "NONLINEARITY"
	case FamilyRevision:
		return "REVISION"
	case FamilyDataBuffer:
		return "DATA_BUFFER"
	case FamilyFastBuffer:
		return "FAST_BUFFER"
	case FamilyPixelBinning:
		return "PIXEL_BINNING"
	default:
		return "UNKNOWN"
	}
}

// ParseFamily resolves a family name as returned by String.
func ParseFamily(s string) (FeatureFamily, bool) {
	for _, f := range Families {
		if f.String() == s {
			return f, true
		}
	}
	return 0, false
}
