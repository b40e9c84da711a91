package transport_test

import (
	"errors"
	"io"
	"testing"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/transport"
	"github.com/lumen-instruments/spectro-go/pkg/transport/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// chunked returns a Read implementation that serves data in pieces of at
// most size bytes, then times out.
func chunked(data []byte, size int) func([]byte) (int, error) {
	return func(p []byte) (int, error) {
		if len(data) == 0 {
			return 0, fault.ErrTimeout
		}
		n := min(size, len(p), len(data))
		copy(p, data[:n])
		data = data[n:]
		return n, nil
	}
}

func TestReadFullAssemblesChunks(t *testing.T) {
	s := mocks.NewMockStream(t)
	payload := []byte{1, 2, 3, 4, 5, 6, 7}
	s.EXPECT().Read(mock.Anything).RunAndReturn(chunked(payload, 3))

	buf := make([]byte, len(payload))
	n, err := transport.ReadFull(s, buf)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)
	assert.Equal(t, payload, buf)
}

func TestReadFullTimeoutBeforeData(t *testing.T) {
	s := mocks.NewMockStream(t)
	s.EXPECT().Read(mock.Anything).Return(0, fault.ErrTimeout).Once()

	n, err := transport.ReadFull(s, make([]byte, 4))
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, fault.ErrTimeout)
	assert.NotErrorIs(t, err, fault.ErrFormat)
}

func TestReadFullTruncatedIsFormatError(t *testing.T) {
	tests := []struct {
		name string
		have int
		want int
	}{
		{"one of four", 1, 4},
		{"three of four", 3, 4},
		{"almost full spectrum", 4095, 4097},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mocks.NewMockStream(t)
			s.EXPECT().Read(mock.Anything).RunAndReturn(chunked(make([]byte, tt.have), 64))

			n, err := transport.ReadFull(s, make([]byte, tt.want))
			assert.Equal(t, tt.have, n)
			assert.ErrorIs(t, err, fault.ErrFormat)
			assert.ErrorIs(t, err, transport.ErrFrameTruncated)
		})
	}
}

func TestReadFullZeroNilCountsAsTimeout(t *testing.T) {
	s := mocks.NewMockStream(t)
	s.EXPECT().Read(mock.Anything).Return(0, nil).Once()

	_, err := transport.ReadFull(s, make([]byte, 2))
	assert.ErrorIs(t, err, fault.ErrTimeout)
}

func TestReadFullPassesIOError(t *testing.T) {
	s := mocks.NewMockStream(t)
	s.EXPECT().Read(mock.Anything).Return(0, io.ErrClosedPipe).Once()

	_, err := transport.ReadFull(s, make([]byte, 2))
	assert.True(t, errors.Is(err, io.ErrClosedPipe))
}

func TestWriteAll(t *testing.T) {
	s := mocks.NewMockStream(t)
	var written []byte
	s.EXPECT().Write(mock.Anything).RunAndReturn(func(p []byte) (int, error) {
		n := min(2, len(p))
		written = append(written, p[:n]...)
		return n, nil
	})

	n, err := transport.WriteAll(s, []byte{9, 8, 7, 6, 5})
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []byte{9, 8, 7, 6, 5}, written)
}

func TestWriteAllNoProgress(t *testing.T) {
	s := mocks.NewMockStream(t)
	s.EXPECT().Write(mock.Anything).Return(0, nil).Once()

	_, err := transport.WriteAll(s, []byte{1})
	assert.ErrorIs(t, err, transport.ErrNoProgress)
}
