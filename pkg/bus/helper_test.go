package bus

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/lumen-instruments/spectro-go/pkg/transport/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// loopback is a TransferHelper that replays what was sent.
type loopback struct {
	buf       bytes.Buffer
	sentSizes []int
	recvSizes []int
}

func (l *loopback) Send(p []byte) (int, error) {
	l.sentSizes = append(l.sentSizes, len(p))
	return l.buf.Write(p)
}

func (l *loopback) Receive(p []byte) (int, error) {
	l.recvSizes = append(l.recvSizes, len(p))
	if l.buf.Len() < len(p) {
		n, _ := l.buf.Read(p)
		return n, fault.ErrFormat
	}
	return l.buf.Read(p)
}

func TestAlignedHelperPaddingTransparency(t *testing.T) {
	for _, word := range []int{2, 4, 8} {
		for n := 0; n <= 3*word+1; n++ {
			inner := &loopback{}
			h := NewAlignedHelper(inner, word)

			payload := make([]byte, n)
			for i := range payload {
				payload[i] = byte(i + 1)
			}

			sent, err := h.Send(payload)
			require.NoError(t, err)
			assert.Equal(t, n, sent, "word %d len %d: send count", word, n)

			got := make([]byte, n)
			recv, err := h.Receive(got)
			require.NoError(t, err)
			assert.Equal(t, n, recv, "word %d len %d: receive count", word, n)
			assert.Equal(t, payload, got, "word %d len %d: data", word, n)

			require.Len(t, inner.sentSizes, 1)
			assert.Zero(t, inner.sentSizes[0]%word, "wire size must be aligned")
			assert.GreaterOrEqual(t, inner.sentSizes[0], n)
			assert.Less(t, inner.sentSizes[0]-n, word)
		}
	}
}

func TestAlignedHelperZeroPadsTail(t *testing.T) {
	inner := &loopback{}
	h := NewAlignedHelper(inner, 4)

	_, err := h.Send([]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0, 0, 0}, inner.buf.Bytes())
}

func TestAlignedHelperReportsPadding(t *testing.T) {
	var total int
	h := NewAlignedHelper(&loopback{}, 4)
	h.onPad = func(n int) { total += n }

	h.Send(make([]byte, 5))
	h.Receive(make([]byte, 6))
	h.Send(make([]byte, 8))
	assert.Equal(t, 3+2, total)
}

func TestAlignedHelperPadded(t *testing.T) {
	h := NewAlignedHelper(&loopback{}, 4)
	for n, want := range map[int]int{0: 0, 1: 4, 4: 4, 5: 8, 1043: 1044} {
		assert.Equal(t, want, h.Padded(n), "Padded(%d)", n)
	}
	assert.Equal(t, 1, NewAlignedHelper(&loopback{}, 0).WordSize())
}

func TestPacketHelperShortReadIsFormatError(t *testing.T) {
	s := mocks.NewMockStream(t)
	s.EXPECT().Read(mock.Anything).RunAndReturn(func(p []byte) (int, error) {
		return copy(p, []byte{1, 2, 3}), nil
	}).Once()

	h := NewPacketHelper(s)
	n, err := h.Receive(make([]byte, 8))
	assert.Equal(t, 3, n)
	assert.ErrorIs(t, err, fault.ErrFormat)
}

func TestPacketHelperTimeout(t *testing.T) {
	s := mocks.NewMockStream(t)
	s.EXPECT().Read(mock.Anything).Return(0, fault.ErrTimeout).Once()

	_, err := NewPacketHelper(s).Receive(make([]byte, 8))
	assert.ErrorIs(t, err, fault.ErrTimeout)
	assert.NotErrorIs(t, err, fault.ErrTransfer)
}

func TestStreamHelperClassifiesIOErrors(t *testing.T) {
	s := mocks.NewMockStream(t)
	s.EXPECT().Write(mock.Anything).Return(0, io.ErrClosedPipe).Once()
	s.EXPECT().Read(mock.Anything).Return(0, io.ErrUnexpectedEOF).Once()

	h := NewStreamHelper(s)
	_, err := h.Send([]byte{1})
	assert.ErrorIs(t, err, fault.ErrTransfer)
	assert.True(t, errors.Is(err, io.ErrClosedPipe))

	_, err = h.Receive(make([]byte, 1))
	assert.ErrorIs(t, err, fault.ErrTransfer)
}

func TestAlignedPacketAcceptsUnpaddedReply(t *testing.T) {
	tests := []struct {
		name    string
		want    int
		reply   int
		wantErr error
	}{
		{"exact", 10, 10, nil},
		{"exact single", 17, 17, nil},
		{"padding included", 10, 12, nil},
		{"short of request", 10, 9, fault.ErrFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := make([]byte, tt.reply)
			for i := range reply {
				reply[i] = byte(i + 1)
			}
			s := mocks.NewMockStream(t)
			s.EXPECT().Read(mock.Anything).RunAndReturn(func(p []byte) (int, error) {
				assert.Zero(t, len(p)%4, "read size must be aligned")
				return copy(p, reply), nil
			}).Once()

			got := make([]byte, tt.want)
			n, err := NewAlignedHelper(NewPacketHelper(s), 4).Receive(got)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
			assert.Equal(t, reply[:tt.want], got)
		})
	}
}

func TestAlignedPacketTimeout(t *testing.T) {
	s := mocks.NewMockStream(t)
	s.EXPECT().Read(mock.Anything).Return(0, nil).Once()

	_, err := NewAlignedHelper(NewPacketHelper(s), 4).Receive(make([]byte, 6))
	assert.ErrorIs(t, err, fault.ErrTimeout)
}
