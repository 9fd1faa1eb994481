package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/webhookx-io/hookdash"
	"github.com/webhookx-io/hookdash/config/modules"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	prefix              = "hookdash."
	instrumentationName = "github.com/webhookx-io/hookdash"
)

func newHTTPExporter(endpoint string) (metric.Exporter, error) {
	return otlpmetrichttp.New(context.Background(), otlpmetrichttp.WithEndpointURL(endpoint))
}

func newGRPCExporter(endpoint string) (metric.Exporter, error) {
	return otlpmetricgrpc.New(context.Background(),
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
}

// SetupOpentelemetry installs a global meter provider pushing to the collector every interval
func SetupOpentelemetry(attributes map[string]string, cfg modules.OpentelemetryMetrics, interval time.Duration) (*metric.MeterProvider, error) {
	var err error
	var exporter metric.Exporter
	switch cfg.Protocol {
	case modules.OtlpProtocolHTTP:
		exporter, err = newHTTPExporter(cfg.Endpoint)
	case modules.OtlpProtocolGRPC:
		exporter, err = newGRPCExporter(cfg.Endpoint)
	default:
		err = fmt.Errorf("unsupported protocol: %s", cfg.Protocol)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to setup exporter: %v", err)
	}

	attrs := make([]attribute.KeyValue, 0, len(attributes))
	for name, value := range attributes {
		attrs = append(attrs, attribute.String(name, value))
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(semconv.ServiceNameKey.String("hookdash")),
		resource.WithAttributes(semconv.ServiceVersionKey.String(hookdash.VERSION)),
		resource.WithFromEnv(),
		resource.WithAttributes(attrs...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build resource: %w", err)
	}

	provider := metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(interval))),
	)
	otel.SetMeterProvider(provider)
	return provider, nil
}
