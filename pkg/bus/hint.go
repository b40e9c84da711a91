package bus

// Hint selects a TransferHelper. It never changes protocol semantics.
type Hint uint8

const (
	// HintControl carries commands and short replies.
	HintControl Hint = iota + 1
	// HintSpectrum carries raw spectrum data.
	HintSpectrum
	// HintBulkBuffer carries buffered record batches.
	HintBulkBuffer
)

// String returns the hint name.
func (h Hint) String() string {
	switch h {
	case HintControl:
		return "CONTROL"
	case HintSpectrum:
		return "SPECTRUM"
	case HintBulkBuffer:
		return "BULK_BUFFER"
	default:
		return "UNKNOWN"
	}
}

// Hints lists every hint in a stable order.
var Hints = []Hint{HintControl, HintSpectrum, HintBulkBuffer}
