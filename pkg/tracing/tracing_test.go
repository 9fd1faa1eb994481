package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webhookx-io/hookdash/config/modules"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewDisabled(t *testing.T) {
	tracer, err := New(&modules.TracingConfig{})
	assert.NoError(t, err)
	assert.Nil(t, tracer)
	assert.NoError(t, tracer.Stop())
}

func TestSetupInvalidEndpoint(t *testing.T) {
	_, err := New(&modules.TracingConfig{
		Enabled:      true,
		SamplingRate: 1,
		Opentelemetry: modules.OpentelemetryTracing{
			Protocol: modules.OtlpProtocolGRPC,
			Endpoint: "localhost",
		},
	})
	assert.EqualError(t, err, `failed to setup exporter: invalid collector endpoint "localhost": address localhost: missing port in address`)
}

func TestStart(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	ctx, parent := Start(context.Background(), "parent")
	_, child := Start(ctx, "child")
	Error(child, errors.New("boom"))
	Error(child, nil)
	child.End()
	parent.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "child", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "boom", spans[0].Status().Description)
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
}

func TestTracingConfig(t *testing.T) {
	cfg := modules.TracingConfig{SamplingRate: 2, Opentelemetry: modules.OpentelemetryTracing{Protocol: modules.OtlpProtocolHTTP}}
	assert.EqualError(t, cfg.Validate(), "sampling_rate must be in the range [0, 1]")
	cfg.SamplingRate = 0.5
	assert.NoError(t, cfg.Validate())
}
