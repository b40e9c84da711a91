// Package metrics exposes Prometheus instrumentation for buses, exchanges
// and buffered acquisition.
//
// A nil *Collector is valid and records nothing, so components take one
// unconditionally and callers that do not want metrics pass nil.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "spectro"

// Collector holds the driver metrics.
type Collector struct {
	// Transport
	bytesTotal     *prometheus.CounterVec // By bus and direction
	transfersTotal *prometheus.CounterVec // By bus and direction
	paddedBytes    *prometheus.CounterVec // By bus
	errorsTotal    *prometheus.CounterVec // By bus and fault kind

	// Exchange
	exchangeDuration *prometheus.HistogramVec // By protocol and exchange

	// Acquisition
	recordsTotal  prometheus.Counter
	discardBytes  prometheus.Counter
	devicesOpen   prometheus.Gauge
	devicesProbed prometheus.Gauge
}

// New creates a collector and registers it with reg. A nil reg returns a
// nil collector, which disables metrics.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		return nil, nil
	}

	c := &Collector{
		bytesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "bytes_total",
			Help:      "Bytes moved across a bus as requested by callers",
		}, []string{"bus", "direction"}),

		transfersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "transfers_total",
			Help:      "Send and receive calls completed on a bus",
		}, []string{"bus", "direction"}),

		paddedBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "padding_bytes_total",
			Help:      "Alignment padding added to transfers",
		}, []string{"bus"}),

		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "errors_total",
			Help:      "Failed transfers by fault kind",
		}, []string{"bus", "kind"}),

		exchangeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "exchange",
			Name:      "duration_seconds",
			Help:      "Transaction execution time",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"protocol", "exchange"}),

		recordsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "buffer",
			Name:      "records_total",
			Help:      "Complete spectrum records retrieved from on-device buffers",
		}),

		discardBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "buffer",
			Name:      "discarded_bytes_total",
			Help:      "Trailing partial record bytes dropped on retrieve",
		}),

		devicesOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "devices_open",
			Help:      "Devices with an active bus",
		}),

		devicesProbed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "devices_probed",
			Help:      "Devices found by the last probe pass",
		}),
	}

	for _, col := range []prometheus.Collector{
		c.bytesTotal, c.transfersTotal, c.paddedBytes, c.errorsTotal,
		c.exchangeDuration, c.recordsTotal, c.discardBytes,
		c.devicesOpen, c.devicesProbed,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Transfer records one completed send or receive.
func (c *Collector) Transfer(bus, direction string, n int) {
	if c == nil {
		return
	}
	c.transfersTotal.WithLabelValues(bus, direction).Inc()
	c.bytesTotal.WithLabelValues(bus, direction).Add(float64(n))
}

// Padding records alignment bytes added to a transfer.
func (c *Collector) Padding(bus string, n int) {
	if c == nil || n == 0 {
		return
	}
	c.paddedBytes.WithLabelValues(bus).Add(float64(n))
}

// TransferError records a failed transfer.
func (c *Collector) TransferError(bus, kind string) {
	if c == nil {
		return
	}
	c.errorsTotal.WithLabelValues(bus, kind).Inc()
}

// Exchange records the duration of one transaction.
func (c *Collector) Exchange(protocol, name string, d time.Duration) {
	if c == nil {
		return
	}
	c.exchangeDuration.WithLabelValues(protocol, name).Observe(d.Seconds())
}

// Records records spectra retrieved and partial bytes discarded.
func (c *Collector) Records(n, discarded int) {
	if c == nil {
		return
	}
	c.recordsTotal.Add(float64(n))
	c.discardBytes.Add(float64(discarded))
}

// DeviceOpened adjusts the open device gauge by +1 or -1.
func (c *Collector) DeviceOpened(open bool) {
	if c == nil {
		return
	}
	if open {
		c.devicesOpen.Inc()
	} else {
		c.devicesOpen.Dec()
	}
}

// Probed sets the probed device gauge.
func (c *Collector) Probed(n int) {
	if c == nil {
		return
	}
	c.devicesProbed.Set(float64(n))
}
