package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webhookx-io/hookdash/config/modules"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	data := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			data[m.Name] = m.Data
		}
	}
	return data
}

func TestNewDisabled(t *testing.T) {
	m, err := New(modules.MetricsConfig{})
	require.NoError(t, err)
	assert.False(t, m.Enabled)

	// no-op instruments accept records
	m.CounterDeltaCounter.With("delta", "+1").Add(1)
	m.TaskPendingGauge.Set(3)
	assert.NoError(t, m.Stop())
	assert.NoError(t, m.Stop())
}

func TestNewWithProvider(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m := NewWithProvider(provider, time.Hour)
	defer m.Stop()
	assert.True(t, m.Enabled)

	m.CounterDeltaCounter.With("delta", "+1").Add(1)
	m.CounterDeltaCounter.With("delta", "+1").Add(1)
	m.CounterDeltaCounter.With("delta", "-1").Add(1)
	m.TaskPendingGauge.Set(7)

	data := collect(t, reader)

	sum, ok := data["hookdash.counter.delta"].(metricdata.Sum[float64])
	require.True(t, ok)
	values := make(map[string]float64)
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key("delta"))
		values[v.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]float64{"+1": 2, "-1": 1}, values)

	gauge, ok := data["hookdash.task.pending"].(metricdata.Gauge[float64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, float64(7), gauge.DataPoints[0].Value)
}

func TestLabelValues(t *testing.T) {
	lvs := LabelValues{"a", "1"}
	assert.Equal(t, LabelValues{"a", "1", "b", "unknown"}, lvs.With("b"))
	assert.Equal(t, LabelValues{"a", "1"}, lvs)
	assert.Equal(t, []attribute.KeyValue{attribute.String("a", "1")}, lvs.ToLabels())
}

func TestMetricsConfig(t *testing.T) {
	cfg := modules.MetricsConfig{PushInterval: 10, Opentelemetry: modules.OpentelemetryMetrics{Protocol: modules.OtlpProtocolHTTP}}
	assert.NoError(t, cfg.Validate())

	cfg.Exports = []modules.Export{"prometheus"}
	assert.EqualError(t, cfg.Validate(), "invalid export: prometheus")

	cfg.Exports = nil
	cfg.PushInterval = 0
	assert.EqualError(t, cfg.Validate(), "interval must be in the range [1, 60]")

	cfg.PushInterval = 10
	cfg.Opentelemetry.Protocol = "udp"
	assert.EqualError(t, cfg.Validate(), "invalid protocol: udp")
}
