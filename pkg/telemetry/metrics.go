package telemetry

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vireo-ui/vireo/pkg/reactive"
)

// Config configures metric registration.
type Config struct {
	// Namespace prefixes every metric name. Default "vireo".
	Namespace string

	// Subsystem is the optional second name segment.
	Subsystem string

	// ConstLabels are attached to every metric.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for event and flush durations.
	// Default prometheus.DefBuckets.
	Buckets []float64

	// Registry receives the collectors. Default
	// prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// Option adjusts the metrics configuration.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) { c.Namespace = namespace }
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) { c.Subsystem = subsystem }
}

// WithConstLabels attaches constant labels to every metric.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) { c.ConstLabels = labels }
}

// WithBuckets sets the duration histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) { c.Buckets = buckets }
}

// WithRegistry registers the collectors somewhere other than the
// default registry. Tests use this to get a clean registry per test.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) { c.Registry = registry }
}

func defaultConfig() Config {
	return Config{
		Namespace: "vireo",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors for a running server.
type Metrics struct {
	// Live layer.
	EventsTotal    *prometheus.CounterVec // {type, status}
	EventDuration  *prometheus.HistogramVec
	PatchesSent    prometheus.Counter
	PatchBytesSent prometheus.Counter
	FramesSent     prometheus.Counter

	ActiveSessions   prometheus.Gauge
	DetachedSessions prometheus.Gauge
	SessionsTotal    prometheus.Counter
	ResumesTotal     prometheus.Counter
	SocketErrors     *prometheus.CounterVec // {type}

	// Reactive core.
	FlushDuration   prometheus.Histogram
	FlushQueueDepth prometheus.Histogram
	WatcherRuns     prometheus.Counter
	RunawayWatchers prometheus.Counter
}

// NewMetrics registers a full collector set and returns it. Registering
// twice against the same registry panics, as promauto always does; keep
// one Metrics per process or use WithRegistry.
func NewMetrics(opts ...Option) *Metrics {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := promauto.With(cfg.Registry)
	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: cfg.ConstLabels,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: cfg.ConstLabels,
		})
	}

	return &Metrics{
		EventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "events_total",
			Help:        "Client events dispatched, by event type and outcome",
			ConstLabels: cfg.ConstLabels,
		}, []string{"type", "status"}),

		EventDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "event_duration_seconds",
			Help:        "Time from event dispatch to flushed patches",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}, []string{"type"}),

		PatchesSent:    counter("patches_sent_total", "DOM patches sent to clients"),
		PatchBytesSent: counter("patch_bytes_sent_total", "Encoded patch frame bytes sent to clients"),
		FramesSent:     counter("frames_sent_total", "Patch frames sent to clients"),

		ActiveSessions:   gauge("active_sessions", "Sessions with a live WebSocket attached"),
		DetachedSessions: gauge("detached_sessions", "Sessions awaiting reconnect"),
		SessionsTotal:    counter("sessions_total", "Sessions created since start"),
		ResumesTotal:     counter("resumes_total", "Sessions resumed over a new connection"),

		SocketErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "socket_errors_total",
			Help:        "WebSocket failures by kind",
			ConstLabels: cfg.ConstLabels,
		}, []string{"type"}),

		FlushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Scheduler flush wall time",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}),

		FlushQueueDepth: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "flush_queue_depth",
			Help:        "Watchers queued when a flush begins",
			ConstLabels: cfg.ConstLabels,
			Buckets:     []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
		}),

		WatcherRuns:     counter("watcher_runs_total", "Watcher evaluations performed by flushes"),
		RunawayWatchers: counter("runaway_watchers_total", "Watchers abandoned mid-flush for re-triggering themselves"),
	}
}

// ObserveScheduler installs the reactive core's instrumentation hooks
// so flush metrics populate. It replaces any hooks installed earlier;
// call it once at startup.
func (m *Metrics) ObserveScheduler() {
	m.installHooks(nil)
}

// ObserveSchedulerWith chains the metric hooks in front of existing
// hooks, preserving callbacks another layer installed.
func (m *Metrics) ObserveSchedulerWith(next *reactive.DevHooks) {
	m.installHooks(next)
}

func (m *Metrics) installHooks(next *reactive.DevHooks) {
	hooks := &reactive.DevHooks{
		OnFlushStart: func(queued int) {
			m.FlushQueueDepth.Observe(float64(queued))
			if next != nil && next.OnFlushStart != nil {
				next.OnFlushStart(queued)
			}
		},
		OnFlushEnd: func(ran int, elapsed time.Duration) {
			m.WatcherRuns.Add(float64(ran))
			m.FlushDuration.Observe(elapsed.Seconds())
			if next != nil && next.OnFlushEnd != nil {
				next.OnFlushEnd(ran, elapsed)
			}
		},
		OnRunaway: func(w *reactive.Watcher) {
			m.RunawayWatchers.Inc()
			if next != nil && next.OnRunaway != nil {
				next.OnRunaway(w)
			}
		},
	}
	if next != nil {
		hooks.OnTrack = next.OnTrack
		hooks.OnTrigger = next.OnTrigger
	}
	reactive.SetDevHooks(hooks)
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// Default returns the process-wide Metrics, creating it against the
// default registry on first use.
func Default() *Metrics {
	defaultMetricsOnce.Do(func() {
		defaultMetrics = NewMetrics()
	})
	return defaultMetrics
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
