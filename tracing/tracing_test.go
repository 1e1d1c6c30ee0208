package tracing

import (
	"context"
	"errors"
	"testing"

	basictracer "github.com/opentracing/basictracer-go"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withRecordingTracer(t *testing.T) *basictracer.InMemorySpanRecorder {
	t.Helper()
	recorder := basictracer.NewInMemoryRecorder()
	old := opentracing.GlobalTracer()
	opentracing.SetGlobalTracer(basictracer.New(recorder))
	t.Cleanup(func() { opentracing.SetGlobalTracer(old) })
	return recorder
}

func TestStartSpanParenting(t *testing.T) {
	recorder := withRecordingTracer(t)

	parent, ctx := StartSpan(context.Background(), "operation")
	child, _ := StartSpan(ctx, "attempt")
	child.Finish()
	parent.Finish()

	spans := recorder.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "attempt", spans[0].Operation)
	assert.Equal(t, "operation", spans[1].Operation)
	assert.Equal(t, spans[1].Context.SpanID, spans[0].ParentSpanID)
	assert.Equal(t, ComponentName, spans[0].Tags["component"])
}

func TestLogErrorMarksSpan(t *testing.T) {
	recorder := withRecordingTracer(t)

	span, _ := StartSpan(context.Background(), "op")
	LogError(span, errors.New("boom"))
	span.Finish()

	spans := recorder.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, true, spans[0].Tags["error"])
}

func TestInjectHTTPWritesHeaders(t *testing.T) {
	withRecordingTracer(t)

	span, _ := StartSpan(context.Background(), "op")
	defer span.Finish()

	headers := map[string]string{}
	err := InjectHTTP(span, func(k, v string) { headers[k] = v })
	require.NoError(t, err)
	assert.NotEmpty(t, headers, "trace context must be written to the carrier")
}

func TestNilSpanHelpers(t *testing.T) {
	LogError(nil, errors.New("ignored"))
	assert.NoError(t, InjectHTTP(nil, func(string, string) {}))
	assert.Nil(t, SpanFromContext(context.Background()))
}
