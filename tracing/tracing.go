package tracing

import (
	"context"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	otlog "github.com/opentracing/opentracing-go/log"
)

// Component tag values used on runtime spans.
const (
	ComponentName = "smithkit"
	SpanOperation = "operation"
	SpanAttempt   = "attempt"
	SpanSigning   = "signing"
)

// StartSpan opens a child span of whatever span ctx carries, falling back to
// a root span on the global tracer.
func StartSpan(ctx context.Context, operationName string) (opentracing.Span, context.Context) {
	var opts []opentracing.StartSpanOption
	if parent := opentracing.SpanFromContext(ctx); parent != nil {
		opts = append(opts, opentracing.ChildOf(parent.Context()))
	}
	span := opentracing.GlobalTracer().StartSpan(operationName, opts...)
	ext.Component.Set(span, ComponentName)
	return span, opentracing.ContextWithSpan(ctx, span)
}

// SpanFromContext returns the active span or nil.
func SpanFromContext(ctx context.Context) opentracing.Span {
	return opentracing.SpanFromContext(ctx)
}

// LogError marks span failed and records err, with optional extra fields.
func LogError(span opentracing.Span, err error, fields ...otlog.Field) {
	if span == nil || err == nil {
		return
	}
	ext.Error.Set(span, true)
	span.LogFields(append([]otlog.Field{otlog.Error(err)}, fields...)...)
}

// InjectHTTP writes the span context into carrier as HTTP headers so the
// trace propagates across the wire.
func InjectHTTP(span opentracing.Span, setHeader func(key, value string)) error {
	if span == nil {
		return nil
	}
	return span.Tracer().Inject(
		span.Context(),
		opentracing.HTTPHeaders,
		headerSetter{setHeader},
	)
}

type headerSetter struct {
	set func(key, value string)
}

// Set implements opentracing.TextMapWriter through HTTPHeadersCarrier.
func (s headerSetter) Set(key, val string) { s.set(key, val) }
