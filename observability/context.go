package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanPrefixRegistry prefixes the span names of discovery agent calls.
const SpanPrefixRegistry = "registry."

// Operation tracks one traced and metered call to the discovery agent.
type Operation struct {
	Name      string
	StartTime time.Time
	span      trace.Span
	metrics   *Metrics
}

// StartRegistryOperation opens a span named "registry.<name>" and starts the
// latency clock. metrics may be nil, in which case only the span is recorded.
func StartRegistryOperation(ctx context.Context, metrics *Metrics, name string, attrs ...attribute.KeyValue) (context.Context, *Operation) {
	ctx, span := StartSpan(ctx, SpanPrefixRegistry+name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	span.SetAttributes(attribute.String(AttrOperationName, name))
	return ctx, &Operation{
		Name:      name,
		StartTime: time.Now(),
		span:      span,
		metrics:   metrics,
	}
}

// SetAttributes adds attributes to the operation's span.
func (op *Operation) SetAttributes(attrs ...attribute.KeyValue) {
	op.span.SetAttributes(attrs...)
}

// End closes the span and records the operation outcome. err may be nil.
func (op *Operation) End(err error) {
	d := op.Duration()
	if err != nil {
		op.span.RecordError(err)
		op.span.SetStatus(codes.Error, err.Error())
	}
	op.span.SetAttributes(attribute.Int64(AttrDurationMs, d.Milliseconds()))
	op.span.End()

	op.metrics.RecordRegistryOperation(op.Name, err, d)
}

// Duration returns the elapsed time since operation start.
func (op *Operation) Duration() time.Duration {
	return time.Since(op.StartTime)
}
