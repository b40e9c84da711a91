package tcp

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/lumen-instruments/spectro-go/pkg/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listen(t *testing.T) (net.Listener, string, int) {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return ln, host, port
}

func TestDialEcho(t *testing.T) {
	ln, host, port := listen(t)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		buf := make([]byte, 4)
		n, _ := c.Read(buf)
		c.Write(buf[:n])
	}()

	p, err := Dialer{}.Dial(host, port, time.Second)
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Write([]byte{1, 2, 3, 4})
	require.NoError(t, err)

	got := make([]byte, 4)
	n, err := p.Read(got)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, got[:n])
}

func TestReadTimeout(t *testing.T) {
	ln, host, port := listen(t)
	done := make(chan struct{})
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		<-done
		c.Close()
	}()
	defer close(done)

	p, err := Dialer{}.Dial(host, port, 50*time.Millisecond)
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Read(make([]byte, 1))
	assert.ErrorIs(t, err, fault.ErrTimeout)
}

func TestCloseIdempotent(t *testing.T) {
	ln, host, port := listen(t)
	go func() {
		if c, err := ln.Accept(); err == nil {
			c.Close()
		}
	}()

	p, err := Dialer{}.Dial(host, port, time.Second)
	require.NoError(t, err)
	assert.NoError(t, p.Close())
	assert.NoError(t, p.Close())
}

func TestDialRefused(t *testing.T) {
	ln, host, port := listen(t)
	ln.Close()

	_, err := Dialer{}.Dial(host, port, time.Second)
	assert.ErrorIs(t, err, fault.ErrTransfer)
}
