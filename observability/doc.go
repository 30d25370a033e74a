// Package observability wires OpenTelemetry tracing and metrics for
// sequences.
//
// Exporters are OTLP over HTTP. Setup returns providers that must be shut
// down on exit:
//
//	shutdown, err := observability.Init(ctx, &cfg)
//	defer shutdown(context.Background())
//
// Sequence instruments are created once per meter and shared by every
// sequence that reports into it:
//
//	m, err := observability.NewSequenceMetrics(observability.Meter(observability.InstrumentationName))
//	m.RecordRace(ctx, "in_between", "event")
//
// A sequence's lifetime is covered by one span, opened with
// StartSequenceSpan and closed with EndSequenceSpan.
package observability
