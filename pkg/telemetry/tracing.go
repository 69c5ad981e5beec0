package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the default instrumentation scope name.
const TracerName = "vireo"

// Tracer opens spans around the live layer's two units of work: the
// dispatch of one client event and the flush that follows it. It
// resolves against the global tracer provider, so without an installed
// SDK every span is a no-op.
type Tracer struct {
	tr trace.Tracer
}

// NewTracer resolves a tracer from the global provider. An empty name
// uses TracerName.
func NewTracer(name string) *Tracer {
	if name == "" {
		name = TracerName
	}
	return &Tracer{tr: otel.Tracer(name)}
}

// StartEvent opens a server span for one client event dispatch.
func (t *Tracer) StartEvent(ctx context.Context, sessionID, eventType, hid string) (context.Context, trace.Span) {
	return t.tr.Start(ctx, "vireo.event."+eventType,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("vireo.session_id", sessionID),
			attribute.String("vireo.event_type", eventType),
			attribute.String("vireo.target_hid", hid),
		),
	)
}

// StartFlush opens an internal span covering one recorder drain and the
// frame write that follows.
func (t *Tracer) StartFlush(ctx context.Context, sessionID string) (context.Context, trace.Span) {
	return t.tr.Start(ctx, "vireo.flush",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("vireo.session_id", sessionID),
		),
	)
}

// EndSpan records the outcome on span and ends it. A non-nil err marks
// the span failed; patches is recorded as an attribute either way.
func EndSpan(span trace.Span, err error, patches int) {
	span.SetAttributes(attribute.Int("vireo.patch_count", patches))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
