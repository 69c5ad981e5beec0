// Package telemetry instruments a vireo server with Prometheus metrics
// and OpenTelemetry traces.
//
// Metrics covers both halves of the runtime: the reactive core (flush
// duration, watcher runs, runaway watchers, queue depth at flush start)
// and the live layer (events, patches, sessions, socket errors). The
// reactive metrics attach through the core's instrumentation hooks:
//
//	m := telemetry.NewMetrics()
//	m.ObserveScheduler()
//	http.Handle("/metrics", telemetry.Handler())
//
// Tracing wraps event dispatch and flush in server spans. The tracer
// resolves from the global OpenTelemetry provider, so it is a no-op
// until the application installs one:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
package telemetry
