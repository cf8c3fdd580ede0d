package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every collector name.
const Namespace = "verdict"

// Stream holds the collectors for the artifact stream writer.
// A nil *Stream is valid and records nothing.
type Stream struct {
	submitted   prometheus.Counter
	dropped     prometheus.Counter
	batches     prometheus.Counter
	written     prometheus.Counter
	writeErrors prometheus.Counter
	pending     prometheus.Gauge
}

// NewStream registers the stream collectors with reg. A nil reg
// creates unregistered collectors.
func NewStream(reg prometheus.Registerer) *Stream {
	factory := promauto.With(reg)
	return &Stream{
		submitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "stream",
			Name:      "artifacts_submitted_total",
			Help:      "Artifacts accepted by the stream writer",
		}),
		dropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "stream",
			Name:      "artifacts_dropped_total",
			Help:      "Artifacts dropped after the stream was closed or failed",
		}),
		batches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "stream",
			Name:      "batches_flushed_total",
			Help:      "Batches written and flushed to the sink",
		}),
		written: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "stream",
			Name:      "artifacts_written_total",
			Help:      "Artifact lines written to the sink",
		}),
		writeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "stream",
			Name:      "write_errors_total",
			Help:      "Sink write failures that halted the background writer",
		}),
		pending: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "stream",
			Name:      "pending_batches",
			Help:      "Batches queued for the background writer",
		}),
	}
}

// Submitted counts an accepted artifact.
func (m *Stream) Submitted() {
	if m == nil {
		return
	}
	m.submitted.Inc()
}

// Dropped counts n artifacts that never reached the sink.
func (m *Stream) Dropped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.dropped.Add(float64(n))
}

// Flushed counts a batch of n lines written to the sink.
func (m *Stream) Flushed(n int) {
	if m == nil {
		return
	}
	m.batches.Inc()
	m.written.Add(float64(n))
}

// WriteError counts a failed sink write.
func (m *Stream) WriteError() {
	if m == nil {
		return
	}
	m.writeErrors.Inc()
}

// Pending records the number of queued batches.
func (m *Stream) Pending(n int) {
	if m == nil {
		return
	}
	m.pending.Set(float64(n))
}
