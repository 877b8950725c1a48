package tracer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSpansAreRecorded(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tr := &Tracer{provider: sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))}

	ctx, parent := tr.StartSpan(context.Background(), "index.run")
	_, child := tr.StartSpan(ctx, "index.flush")
	tr.SetAttributes(child, map[string]interface{}{"batch.size": 32, "ok": false, "ratio": 0.5})
	tr.RecordErrorOnSpan(child, errors.New("commit failed"))
	child.End()
	parent.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	flush := spans[0]
	assert.Equal(t, "index.flush", flush.Name())
	assert.Equal(t, codes.Error, flush.Status().Code)
	assert.Equal(t, spans[1].SpanContext().SpanID(), flush.Parent().SpanID())
	assert.Len(t, flush.Attributes(), 3)

	require.NoError(t, tr.Shutdown(context.Background()))
}

func TestNilTracerIsNoop(t *testing.T) {
	var tr *Tracer
	_, span := tr.StartSpan(context.Background(), "x")
	tr.RecordErrorOnSpan(span, errors.New("ignored"))
	span.End()
	assert.False(t, span.SpanContext().IsValid())
	assert.NoError(t, tr.Shutdown(context.Background()))
}

func TestNewClientWithoutExport(t *testing.T) {
	tr, err := NewClient(Config{ServiceName: "test", AppEnv: "test"})
	require.NoError(t, err)
	_, span := tr.StartSpan(context.Background(), "x")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
	require.NoError(t, tr.Shutdown(context.Background()))
}
