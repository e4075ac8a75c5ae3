package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "finitefield.org/contractor-site"

var tracer = otel.Tracer(instrumentationName)

// StartSpan starts an internal span for a build phase. The global tracer provider is a no-op
// unless the caller installs one.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal), trace.WithAttributes(attrs...))
}

// EndSpan records err on the span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// TraceID extracts the active trace identifier when the span is recording a valid trace.
func TraceID(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.HasTraceID() {
		return ""
	}
	return spanCtx.TraceID().String()
}

// BuildMetrics groups the counters reported by the batch build.
type BuildMetrics struct {
	written metric.Int64Counter
	skipped metric.Int64Counter
	failed  metric.Int64Counter
}

// NewBuildMetrics registers the build counters on the global meter provider.
func NewBuildMetrics() (*BuildMetrics, error) {
	meter := otel.Meter(instrumentationName)
	written, err := meter.Int64Counter("sitegen.pages.written",
		metric.WithDescription("Pages written to the output directory"),
		metric.WithUnit("{page}"))
	if err != nil {
		return nil, err
	}
	skipped, err := meter.Int64Counter("sitegen.pages.skipped",
		metric.WithDescription("Pages whose output was unchanged"),
		metric.WithUnit("{page}"))
	if err != nil {
		return nil, err
	}
	failed, err := meter.Int64Counter("sitegen.pages.failed",
		metric.WithDescription("Pages that failed validation"),
		metric.WithUnit("{page}"))
	if err != nil {
		return nil, err
	}
	return &BuildMetrics{written: written, skipped: skipped, failed: failed}, nil
}

// PageWritten counts a written page.
func (m *BuildMetrics) PageWritten(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.written.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// PageSkipped counts a page whose output already matched.
func (m *BuildMetrics) PageSkipped(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.skipped.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// PageFailed counts a page that could not be generated.
func (m *BuildMetrics) PageFailed(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.failed.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
