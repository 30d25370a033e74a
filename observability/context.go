package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/foremit/errors"
)

// StartSequenceSpan opens the span that covers one sequence from wrap to
// teardown. A nil tracer uses the global provider.
func StartSequenceSpan(ctx context.Context, tracer trace.Tracer, id, event string) (context.Context, trace.Span) {
	if tracer == nil {
		tracer = Tracer(InstrumentationName)
	}
	return tracer.Start(ctx, SpanSequenceConsume,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String(AttrSequenceID, id),
			attribute.String(AttrEvent, event),
		),
	)
}

// EndSequenceSpan records the final state and ends span. A non-nil err marks
// the span as failed and tags it with the error code.
func EndSequenceSpan(span trace.Span, state string, yielded int64, err error) {
	span.SetAttributes(
		attribute.String(AttrState, state),
		attribute.Int64(AttrYielded, yielded),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if code := errors.CodeOf(err); code != "" {
			span.SetAttributes(attribute.String(AttrErrorCode, string(code)))
		}
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds a named event to the span in ctx when it is recording.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent(name, trace.WithAttributes(attrs...))
	}
}
