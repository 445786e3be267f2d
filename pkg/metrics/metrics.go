// Package metrics collects filesystem operation metrics for a generation run.
//
// Metrics live on a private registry so that tests and concurrent runs never
// share state. At the end of a run the registry can be written in the
// Prometheus text format for the node-exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/eunmann/fsfixture/pkg/limiter"
	"github.com/prometheus/client_golang/prometheus"
)

// Operation names used as the "op" label.
const (
	OpMkdir = "mkdir"
	OpWrite = "write"
)

// Outcome label values.
const (
	OutcomeOK     = "ok"
	OutcomeExists = "exists"
	OutcomeError  = "error"
)

// Metrics holds the collectors for one run.
type Metrics struct {
	reg *prometheus.Registry

	ops          *prometheus.CounterVec
	bytesWritten prometheus.Counter
	latency      *prometheus.HistogramVec
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		ops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsfixture_fs_ops_total",
				Help: "Number of filesystem operations by kind and outcome.",
			},
			[]string{"op", "outcome"},
		),
		bytesWritten: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fsfixture_bytes_written_total",
				Help: "Payload bytes written to fixture files.",
			},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fsfixture_fs_op_latency_seconds",
				Help:    "Latency of filesystem operations.",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"op"},
		),
	}
	m.reg.MustRegister(m.ops, m.bytesWritten, m.latency)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// ObserveOp records one operation with its latency and outcome.
func (m *Metrics) ObserveOp(op, outcome string, start time.Time) {
	m.ops.WithLabelValues(op, outcome).Inc()
	m.latency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// AddBytes records payload bytes written.
func (m *Metrics) AddBytes(n int) {
	m.bytesWritten.Add(float64(n))
}

// RegisterLimiter exposes limiter occupancy as gauges.
func (m *Metrics) RegisterLimiter(l *limiter.Limiter) error {
	inFlight := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "fsfixture_write_permits_in_flight",
			Help: "Write permits currently held.",
		},
		func() float64 { return float64(l.InFlight()) },
	)
	peak := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "fsfixture_write_permits_peak",
			Help: "Highest number of write permits held at once.",
		},
		func() float64 { return float64(l.Peak()) },
	)
	capacity := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fsfixture_write_permits_capacity",
		Help: "Configured write permit capacity.",
	})
	capacity.Set(float64(l.Capacity()))

	for _, c := range []prometheus.Collector{inFlight, peak, capacity} {
		if err := m.reg.Register(c); err != nil {
			return fmt.Errorf("register limiter gauge: %w", err)
		}
	}
	return nil
}

// WriteTextfile writes all metrics to path in the Prometheus text format.
// The file is written atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
