package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilRegistryDisables(t *testing.T) {
	c, err := New(nil)
	require.NoError(t, err)
	assert.Nil(t, c)

	// Every method is safe on a nil collector.
	c.Transfer("USB", "OUT", 10)
	c.Padding("USB", 2)
	c.TransferError("USB", "TIMEOUT")
	c.Exchange("OBP", "get-serial", time.Millisecond)
	c.Records(3, 1)
	c.DeviceOpened(true)
	c.Probed(2)
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	require.NoError(t, err)

	c.Transfer("USB", "OUT", 5)
	c.Transfer("USB", "OUT", 7)
	c.Padding("USB", 3)
	c.Padding("USB", 0)
	c.TransferError("TCP", "TIMEOUT")
	c.Records(10, 4)
	c.DeviceOpened(true)
	c.DeviceOpened(true)
	c.DeviceOpened(false)
	c.Probed(4)

	assert.Equal(t, 12.0, testutil.ToFloat64(c.bytesTotal.WithLabelValues("USB", "OUT")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.transfersTotal.WithLabelValues("USB", "OUT")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.paddedBytes.WithLabelValues("USB")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.errorsTotal.WithLabelValues("TCP", "TIMEOUT")))
	assert.Equal(t, 10.0, testutil.ToFloat64(c.recordsTotal))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.discardBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.devicesOpen))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.devicesProbed))
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}
