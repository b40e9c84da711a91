// Package obp implements the self-describing binary message protocol
// spoken by newer spectrometers over USB and TCP.
//
// Every message is a 44-byte header, an optional payload, a 16-byte
// checksum and a 4-byte footer:
//
//	offset size field
//	0      2    start bytes C1 C0
//	2      2    protocol version
//	4      2    flags
//	6      2    error number
//	8      4    message type
//	12     4    regarding token
//	16     6    reserved
//	22     1    checksum type
//	23     1    immediate data length
//	24     16   immediate data
//	40     4    bytes remaining (payload + checksum + footer)
//	44     n    payload
//	44+n   16   checksum
//	60+n   4    footer C5 C4 C3 C2
//
// Payloads of up to 16 bytes travel in the immediate field. All numeric
// fields are little-endian. The host always requests an acknowledgement,
// so every request is answered by a message echoing its type and
// regarding token.
package obp
