package tracing

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/metadata"
)

func setup(t *testing.T) trace.Tracer {
	t.Helper()
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp.Tracer("test")
}

func TestKafkaHeadersRoundTrip(t *testing.T) {
	tracer := setup(t)
	ctx, span := tracer.Start(context.Background(), "produce")
	defer span.End()

	headers := InjectKafkaHeaders(ctx, []kafka.Header{{Key: "event_type", Value: []byte("OrderPlaced")}})
	require.Len(t, headers, 2)

	got := trace.SpanContextFromContext(ExtractKafkaHeaders(context.Background(), headers))
	assert.Equal(t, span.SpanContext().TraceID(), got.TraceID())
	assert.True(t, got.IsRemote())
}

func TestTraceparent(t *testing.T) {
	tracer := setup(t)
	assert.Empty(t, Traceparent(context.Background()))

	ctx, span := tracer.Start(context.Background(), "op")
	defer span.End()
	tp := Traceparent(ctx)
	assert.Contains(t, tp, span.SpanContext().TraceID().String())
}

func TestMetadataCarrier(t *testing.T) {
	tracer := setup(t)
	ctx, span := tracer.Start(context.Background(), "call")
	defer span.End()

	md := metadata.MD{}
	otel.GetTextMapPropagator().Inject(ctx, metadataCarrier(md))
	assert.NotEmpty(t, md.Get(TraceparentHeader))

	got := trace.SpanContextFromContext(otel.GetTextMapPropagator().Extract(context.Background(), metadataCarrier(md)))
	assert.Equal(t, span.SpanContext().TraceID(), got.TraceID())
	assert.Contains(t, metadataCarrier(md).Keys(), TraceparentHeader)
}

func TestContextFromTraceparent(t *testing.T) {
	tracer := setup(t)
	ctx, span := tracer.Start(context.Background(), "write")
	tp := Traceparent(ctx)
	span.End()

	restored := ContextFromTraceparent(context.Background(), tp)
	headers := InjectKafkaHeaders(restored, []kafka.Header{{Key: TraceparentHeader, Value: []byte("stale")}})

	require.Len(t, headers, 1)
	assert.Equal(t, tp, string(headers[0].Value))
	assert.Equal(t, context.Background(), ContextFromTraceparent(context.Background(), ""))
}
