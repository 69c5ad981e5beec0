package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vireo-ui/vireo/pkg/reactive"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	return m.GetGauge().GetValue()
}

func histogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestNewMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg))

	m.EventsTotal.WithLabelValues("click", "ok").Inc()
	m.PatchesSent.Add(3)
	m.ActiveSessions.Inc()
	m.FlushDuration.Observe(0.001)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}

	for _, want := range []string{
		"vireo_events_total",
		"vireo_patches_sent_total",
		"vireo_active_sessions",
		"vireo_flush_duration_seconds",
	} {
		if !names[want] {
			t.Errorf("registry is missing %s", want)
		}
	}
}

func TestNamespaceAndSubsystem(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("myapp"), WithSubsystem("ui"))

	m.SessionsTotal.Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "myapp_ui_sessions_total" {
			found = true
		}
	}
	if !found {
		t.Error("expected myapp_ui_sessions_total in registry")
	}
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg))

	m.PatchesSent.Add(5)
	m.FramesSent.Inc()
	m.ActiveSessions.Inc()
	m.ActiveSessions.Dec()
	m.SocketErrors.WithLabelValues("read").Inc()

	if got := counterValue(t, m.PatchesSent); got != 5 {
		t.Errorf("patches_sent_total = %v, want 5", got)
	}
	if got := counterValue(t, m.FramesSent); got != 1 {
		t.Errorf("frames_sent_total = %v, want 1", got)
	}
	if got := gaugeValue(t, m.ActiveSessions); got != 0 {
		t.Errorf("active_sessions = %v, want 0", got)
	}
	if got := counterValue(t, m.SocketErrors.WithLabelValues("read")); got != 1 {
		t.Errorf("socket_errors_total{read} = %v, want 1", got)
	}
}

func TestObserveScheduler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg))

	m.ObserveScheduler()
	defer reactive.SetDevHooks(nil)

	// Drive the hooks directly; a real flush goes through the same
	// callbacks.
	reactive.SetAsync(false)
	defer reactive.SetAsync(true)

	obj := reactive.NewObject(map[string]any{"n": 1})
	w := reactive.NewWatcher(func() any { return obj.Get("n") }, nil)
	defer w.Teardown()

	obj.Set("n", 2)

	if got := histogramCount(t, m.FlushDuration); got == 0 {
		t.Error("expected flush_duration_seconds to record a sample")
	}
	if got := histogramCount(t, m.FlushQueueDepth); got == 0 {
		t.Error("expected flush_queue_depth to record a sample")
	}
	if got := counterValue(t, m.WatcherRuns); got == 0 {
		t.Error("expected watcher_runs_total > 0")
	}
}

func TestObserveSchedulerWithChains(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg))

	var sawEnd bool
	m.ObserveSchedulerWith(&reactive.DevHooks{
		OnFlushEnd: func(ran int, elapsed time.Duration) { sawEnd = true },
	})
	defer reactive.SetDevHooks(nil)

	reactive.SetAsync(false)
	defer reactive.SetAsync(true)

	obj := reactive.NewObject(map[string]any{"n": 1})
	w := reactive.NewWatcher(func() any { return obj.Get("n") }, nil)
	defer w.Teardown()

	obj.Set("n", 2)

	if !sawEnd {
		t.Error("chained OnFlushEnd hook did not fire")
	}
	if got := histogramCount(t, m.FlushDuration); got == 0 {
		t.Error("expected flush_duration_seconds to record a sample")
	}
}

func TestDefaultIsSingleton(t *testing.T) {
	a := Default()
	b := Default()
	if a != b {
		t.Error("Default() returned two different Metrics")
	}
}
