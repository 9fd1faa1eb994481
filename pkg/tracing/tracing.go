package tracing

import (
	"context"
	"time"

	"github.com/webhookx-io/hookdash/config/modules"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/webhookx-io/hookdash"

type Tracer struct {
	provider *sdktrace.TracerProvider
}

// New installs the global tracer provider. It returns nil when tracing is disabled.
func New(cfg *modules.TracingConfig) (*Tracer, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	provider, err := SetupOTEL(cfg)
	if err != nil {
		return nil, err
	}
	return &Tracer{provider: provider}, nil
}

// Start starts a span from the global tracer provider, a no-op span until one is installed
func Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, spanName, opts...)
}

// Error records err on span and marks it failed
func Error(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func (t *Tracer) Stop() error {
	if t == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return t.provider.Shutdown(ctx)
}
