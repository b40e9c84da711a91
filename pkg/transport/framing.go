package transport

import (
	"errors"
	"fmt"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
)

// Framing errors.
var (
	// ErrFrameTruncated indicates the peer stopped sending partway through
	// an expected frame.
	ErrFrameTruncated = errors.New("frame truncated")

	// ErrNoProgress indicates a write accepted zero bytes without error.
	ErrNoProgress = errors.New("write made no progress")
)

// ReadFull reads exactly len(p) bytes from s.
//
// If the stream times out before any byte arrives the timeout is returned
// unchanged so the caller can retry. If it times out after a partial
// frame, the result is a format error wrapping ErrFrameTruncated.
func ReadFull(s Stream, p []byte) (int, error) {
	got := 0
	for got < len(p) {
		n, err := s.Read(p[got:])
		got += n
		if err == nil {
			if n == 0 {
				// Drivers that signal a timeout as (0, nil).
				err = fault.ErrTimeout
			} else {
				continue
			}
		}
		if errors.Is(err, fault.ErrTimeout) {
			if got == 0 {
				return 0, err
			}
			return got, fmt.Errorf("%w: %w: %d of %d bytes", fault.ErrFormat, ErrFrameTruncated, got, len(p))
		}
		return got, err
	}
	return got, nil
}

// WriteAll writes every byte of p to s.
func WriteAll(s Stream, p []byte) (int, error) {
	sent := 0
	for sent < len(p) {
		n, err := s.Write(p[sent:])
		sent += n
		if err != nil {
			return sent, err
		}
		if n == 0 {
			return sent, ErrNoProgress
		}
	}
	return sent, nil
}
