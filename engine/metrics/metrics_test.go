package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	m := &dto.Metric{}
	if err := (<-ch).Write(m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	if m.Counter != nil {
		return m.Counter.GetValue()
	}
	return m.Gauge.GetValue()
}

func TestRecordJobLatencyObservesHistogram(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.RecordJobLatency("*sim.HungerDrainJob", 2*time.Millisecond)

	ch := make(chan prometheus.Metric, 1)
	m.jobLatency.Collect(ch)
	metric := &dto.Metric{}
	if err := (<-ch).Write(metric); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	if got := metric.GetHistogram().GetSampleCount(); got != 1 {
		t.Fatalf("got %d latency observations, want 1", got)
	}
}

func TestIncrementTaskTransitionIncrementsCounter(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.IncrementTaskTransition("*sim.IdleTask", "*sim.WalkTask")

	got := counterValue(t, m.transitions.WithLabelValues("*sim.IdleTask", "*sim.WalkTask"))
	if got != 1 {
		t.Fatalf("got transition count %v, want 1", got)
	}
}

func TestIncrementActionsBroadcastIncrementsCounter(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.IncrementActionsBroadcast("sim.IdleAction")
	m.IncrementActionsBroadcast("sim.IdleAction")

	got := counterValue(t, m.actionsSent.WithLabelValues("sim.IdleAction"))
	if got != 2 {
		t.Fatalf("got action count %v, want 2", got)
	}
}

func TestUpdateQueueDepthSetsGauge(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.UpdateQueueDepth(5)

	if got := counterValue(t, m.queueDepth); got != 5 {
		t.Fatalf("got queue depth %v, want 5", got)
	}
}

func TestUpdateInflightJobsSetsGauge(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.UpdateInflightJobs(3)

	if got := counterValue(t, m.inflightJobs); got != 3 {
		t.Fatalf("got inflight jobs %v, want 3", got)
	}
}

func TestDisableSuppressesRecording(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Disable()
	m.IncrementActionsBroadcast("sim.IdleAction")

	if got := counterValue(t, m.actionsSent.WithLabelValues("sim.IdleAction")); got != 0 {
		t.Fatalf("expected no recording while disabled, got %v", got)
	}

	m.Enable()
	m.IncrementActionsBroadcast("sim.IdleAction")
	if got := counterValue(t, m.actionsSent.WithLabelValues("sim.IdleAction")); got != 1 {
		t.Fatalf("expected recording to resume after Enable, got %v", got)
	}
}
