// Package metrics ports the teacher's Prometheus instrumentation pattern to
// engine-shaped signals: how many jobs are in flight, how deep the scheduler
// queue runs, how long a job takes to execute, how often tasks change, and
// how many actions get broadcast.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects every gauge/histogram/counter the engine reports,
// registered under the "worldcore" namespace. Thread-safe: every recording
// method is a no-op read of an already-thread-safe prometheus collector,
// gated by an enabled flag guarded by mu.
type Metrics struct {
	inflightJobs prometheus.Gauge
	queueDepth   prometheus.Gauge
	jobLatency   *prometheus.HistogramVec
	transitions  *prometheus.CounterVec
	actionsSent  *prometheus.CounterVec

	mu      sync.RWMutex
	enabled bool
}

// New registers every engine metric with registry. A nil registry uses
// prometheus.DefaultRegisterer.
func New(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		enabled: true,

		inflightJobs: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "worldcore",
			Name:      "inflight_jobs",
			Help:      "Jobs currently inside Job.Execute",
		}),
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "worldcore",
			Name:      "scheduler_queue_depth",
			Help:      "Entries currently pending in the scheduler's heap",
		}),
		jobLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "worldcore",
			Name:      "job_latency_ms",
			Help:      "Job.Execute wall time in milliseconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000},
		}, []string{"job_kind"}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "worldcore",
			Name:      "task_transitions_total",
			Help:      "Entity task changes, labeled by the task kinds involved",
		}, []string{"from_task", "to_task"}),
		actionsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "worldcore",
			Name:      "actions_broadcast_total",
			Help:      "Actions handed to the gateway, labeled by action kind",
		}, []string{"action_kind"}),
	}
}

// RecordJobLatency records how long a job's Execute call took, labeled by
// its concrete Go type name.
func (m *Metrics) RecordJobLatency(jobKind string, latency time.Duration) {
	if !m.isEnabled() {
		return
	}
	m.jobLatency.WithLabelValues(jobKind).Observe(float64(latency.Microseconds()) / 1000.0)
}

// IncrementTaskTransition records one entity moving from one task kind to
// another.
func (m *Metrics) IncrementTaskTransition(fromTask, toTask string) {
	if !m.isEnabled() {
		return
	}
	m.transitions.WithLabelValues(fromTask, toTask).Inc()
}

// IncrementActionsBroadcast records one action handed to the gateway.
func (m *Metrics) IncrementActionsBroadcast(actionKind string) {
	if !m.isEnabled() {
		return
	}
	m.actionsSent.WithLabelValues(actionKind).Inc()
}

// UpdateQueueDepth sets the scheduler_queue_depth gauge to depth.
func (m *Metrics) UpdateQueueDepth(depth int) {
	if !m.isEnabled() {
		return
	}
	m.queueDepth.Set(float64(depth))
}

// UpdateInflightJobs sets the inflight_jobs gauge to count.
func (m *Metrics) UpdateInflightJobs(count int) {
	if !m.isEnabled() {
		return
	}
	m.inflightJobs.Set(float64(count))
}

func (m *Metrics) isEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// Disable stops recording without unregistering collectors — handy for
// tests that share a process-wide default registry.
func (m *Metrics) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = false
}

// Enable resumes recording after Disable.
func (m *Metrics) Enable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = true
}
