package bus

import (
	"github.com/valyala/bytebufferpool"
)

// DefaultWordSize is the transfer alignment some USB controllers demand.
const DefaultWordSize = 4

// AlignedHelper pads every transfer to a multiple of a word size. Sends
// are zero-padded; receives read up to the padded length into scratch space
// and hand back only the bytes the caller asked for. Callers above the bus
// never see the padding.
type AlignedHelper struct {
	inner TransferHelper
	word  int
	pool  bytebufferpool.Pool

	// onPad, if set, is told how many padding bytes each transfer added.
	onPad func(n int)
}

// NewAlignedHelper wraps inner with word-size alignment. A word size below
// 2 disables padding.
func NewAlignedHelper(inner TransferHelper, word int) *AlignedHelper {
	if word < 1 {
		word = 1
	}
	return &AlignedHelper{inner: inner, word: word}
}

// WordSize returns the alignment.
func (h *AlignedHelper) WordSize() int {
	return h.word
}

// Padded returns n rounded up to the word size.
func (h *AlignedHelper) Padded(n int) int {
	if r := n % h.word; r != 0 {
		return n + h.word - r
	}
	return n
}

func (h *AlignedHelper) Send(p []byte) (int, error) {
	padded := h.Padded(len(p))
	if padded == len(p) {
		return h.inner.Send(p)
	}

	bb := h.pool.Get()
	defer h.pool.Put(bb)
	bb.B = zeroed(bb.B, padded)
	copy(bb.B, p)
	h.padded(padded - len(p))

	n, err := h.inner.Send(bb.B)
	if n > len(p) {
		n = len(p)
	}
	return n, err
}

func (h *AlignedHelper) Receive(p []byte) (int, error) {
	padded := h.Padded(len(p))
	if padded == len(p) {
		return h.inner.Receive(p)
	}

	bb := h.pool.Get()
	defer h.pool.Put(bb)
	bb.B = zeroed(bb.B, padded)
	h.padded(padded - len(p))

	// Devices end a transfer with a short packet, so a packet read is
	// judged against the requested length, not the padded one.
	var n int
	var err error
	if r, ok := h.inner.(packetReader); ok {
		n, err = r.readPacket(bb.B)
		if err == nil {
			err = truncated(n, len(p))
		}
	} else {
		n, err = h.inner.Receive(bb.B)
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, bb.B[:n])
	return n, err
}

func (h *AlignedHelper) padded(n int) {
	if h.onPad != nil {
		h.onPad(n)
	}
}

// zeroed returns b resized to n bytes, all zero.
func zeroed(b []byte, n int) []byte {
	if cap(b) < n {
		return make([]byte, n)
	}
	b = b[:n]
	clear(b)
	return b
}

// Compile-time interface satisfaction check.
var _ TransferHelper = (*AlignedHelper)(nil)
