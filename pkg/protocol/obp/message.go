package obp

import (
	"bytes"
	"crypto/md5"
	"errors"
	"fmt"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/wire"
)

// Layout constants.
const (
	HeaderSize     = 44
	ChecksumSize   = 16
	FooterSize     = 4
	ImmediateSize  = 16
	MinMessageSize = HeaderSize + ChecksumSize + FooterSize

	// MaxPayloadSize bounds the allocation for one incoming message.
	MaxPayloadSize = 16 << 20

	// Version is the protocol version this package speaks.
	Version uint16 = 0x1100
)

// Flags.
const (
	FlagResponse     uint16 = 0x0001
	FlagAck          uint16 = 0x0002
	FlagAckRequested uint16 = 0x0004
	FlagNack         uint16 = 0x0008
	FlagException    uint16 = 0x0010
)

// Checksum types.
const (
	ChecksumNone uint8 = 0
	ChecksumMD5  uint8 = 1
)

var (
	startBytes  = []byte{0xC1, 0xC0}
	footerBytes = []byte{0xC5, 0xC4, 0xC3, 0xC2}
)

// Message framing errors.
var (
	ErrBadStart      = errors.New("bad start bytes")
	ErrBadFooter     = errors.New("bad footer")
	ErrBadChecksum   = errors.New("checksum mismatch")
	ErrBadLength     = errors.New("inconsistent length")
	ErrPayloadTooBig = errors.New("payload too large")
)

// Message is one decoded protocol message.
type Message struct {
	Flags        uint16
	Errno        uint16
	Type         uint32
	Regarding    uint32
	ChecksumType uint8
	Payload      []byte
}

// IsResponse reports whether the device sent m.
func (m *Message) IsResponse() bool {
	return m.Flags&FlagResponse != 0
}

// Encode serializes m. Payloads up to ImmediateSize bytes go in the
// immediate field.
func (m *Message) Encode() []byte {
	immediate := len(m.Payload) <= ImmediateSize
	remaining := ChecksumSize + FooterSize
	if !immediate {
		remaining += len(m.Payload)
	}

	w := wire.NewWriter(HeaderSize + remaining)
	w.Raw(startBytes)
	w.U16(Version)
	w.U16(m.Flags)
	w.U16(m.Errno)
	w.U32(m.Type)
	w.U32(m.Regarding)
	w.Zeros(6)
	w.U8(m.ChecksumType)
	if immediate {
		w.U8(uint8(len(m.Payload)))
		w.Raw(m.Payload)
		w.Zeros(ImmediateSize - len(m.Payload))
	} else {
		w.U8(0)
		w.Zeros(ImmediateSize)
	}
	w.U32(uint32(remaining))
	if !immediate {
		w.Raw(m.Payload)
	}

	sum := checksum(m.ChecksumType, w.Bytes())
	w.Raw(sum[:])
	w.Raw(footerBytes)
	return w.Bytes()
}

func checksum(kind uint8, covered []byte) [ChecksumSize]byte {
	if kind == ChecksumMD5 {
		return md5.Sum(covered)
	}
	return [ChecksumSize]byte{}
}

// header is the fixed part of a message.
type header struct {
	Message
	immediateLen int
	immediate    []byte
	remaining    int
}

func decodeHeader(p []byte) (header, error) {
	if len(p) < HeaderSize {
		return header{}, fmt.Errorf("%w: header is %d bytes, need %d", fault.ErrFormat, len(p), HeaderSize)
	}
	r := wire.NewReader(p[:HeaderSize])
	if !bytes.Equal(r.Raw(2), startBytes) {
		return header{}, fmt.Errorf("%w: %w", fault.ErrFormat, ErrBadStart)
	}
	_ = r.U16() // version; devices answer with their own
	var h header
	h.Flags = r.U16()
	h.Errno = r.U16()
	h.Type = r.U32()
	h.Regarding = r.U32()
	r.Skip(6)
	h.ChecksumType = r.U8()
	h.immediateLen = int(r.U8())
	h.immediate = r.Raw(ImmediateSize)
	h.remaining = int(r.U32())
	if err := r.Err(); err != nil {
		return header{}, err
	}

	switch {
	case h.immediateLen > ImmediateSize:
		return header{}, fmt.Errorf("%w: %w: immediate length %d", fault.ErrFormat, ErrBadLength, h.immediateLen)
	case h.remaining < ChecksumSize+FooterSize:
		return header{}, fmt.Errorf("%w: %w: bytes remaining %d", fault.ErrFormat, ErrBadLength, h.remaining)
	case h.remaining-ChecksumSize-FooterSize > MaxPayloadSize:
		return header{}, fmt.Errorf("%w: %w: %d bytes", fault.ErrFormat, ErrPayloadTooBig, h.remaining)
	case h.immediateLen > 0 && h.remaining != ChecksumSize+FooterSize:
		return header{}, fmt.Errorf("%w: %w: immediate data with %d bytes remaining", fault.ErrFormat, ErrBadLength, h.remaining)
	}
	return h, nil
}

// decodeBody completes a message from its header bytes and the
// bytes-remaining section.
func decodeBody(h header, headerBytes, rest []byte) (*Message, error) {
	if len(rest) != h.remaining {
		return nil, fmt.Errorf("%w: %w: %d bytes after header, expected %d", fault.ErrFormat, ErrBadLength, len(rest), h.remaining)
	}
	payloadLen := h.remaining - ChecksumSize - FooterSize
	payload := rest[:payloadLen]
	sum := rest[payloadLen : payloadLen+ChecksumSize]
	footer := rest[payloadLen+ChecksumSize:]

	if !bytes.Equal(footer, footerBytes) {
		return nil, fmt.Errorf("%w: %w: % x", fault.ErrFormat, ErrBadFooter, footer)
	}
	if h.ChecksumType == ChecksumMD5 {
		covered := make([]byte, 0, HeaderSize+payloadLen)
		covered = append(covered, headerBytes...)
		covered = append(covered, payload...)
		want := md5.Sum(covered)
		if !bytes.Equal(sum, want[:]) {
			return nil, fmt.Errorf("%w: %w", fault.ErrFormat, ErrBadChecksum)
		}
	}

	m := h.Message
	if h.immediateLen > 0 {
		m.Payload = append([]byte(nil), h.immediate[:h.immediateLen]...)
	} else if payloadLen > 0 {
		m.Payload = append([]byte(nil), payload...)
	}
	return &m, nil
}

// Decode parses one complete message.
func Decode(p []byte) (*Message, error) {
	h, err := decodeHeader(p)
	if err != nil {
		return nil, err
	}
	return decodeBody(h, p[:HeaderSize], p[HeaderSize:])
}
