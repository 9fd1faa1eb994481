package metrics

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/webhookx-io/hookdash/config/modules"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

type Metrics struct {
	stop     chan struct{}
	stopOnce sync.Once
	shutdown func(ctx context.Context) error

	Enabled  bool
	Interval time.Duration

	// runtime metrics

	RuntimeGoroutine    metrics.Gauge
	RuntimeAlloc        metrics.Gauge
	RuntimeSys          metrics.Gauge
	RuntimeHeapObjects  metrics.Gauge
	RuntimePauseTotalNs metrics.Gauge
	RuntimeGC           metrics.Gauge

	// counter metrics

	CounterDeltaCounter   metrics.Counter
	CounterSkippedCounter metrics.Counter
	CounterFailedCounter  metrics.Counter

	// trigger metrics

	TaskPendingGauge    metrics.Gauge
	TriggerEventCounter metrics.Counter
}

// New returns Metrics exporting to the configured exports. Without exports every
// instrument is a no-op.
func New(cfg modules.MetricsConfig) (*Metrics, error) {
	if !cfg.IsEnabled() {
		m := &Metrics{stop: make(chan struct{})}
		m.register(noop.NewMeterProvider().Meter(instrumentationName))
		return m, nil
	}

	interval := time.Second * time.Duration(cfg.PushInterval)
	provider, err := SetupOpentelemetry(cfg.Attributes, cfg.Opentelemetry, interval)
	if err != nil {
		return nil, err
	}
	m := NewWithProvider(provider, interval)
	m.shutdown = provider.Shutdown
	zap.S().Infof("enabled metric exports: %v", cfg.Exports)
	return m, nil
}

// NewWithProvider returns enabled Metrics recording to provider
func NewWithProvider(provider metric.MeterProvider, interval time.Duration) *Metrics {
	m := &Metrics{
		stop:     make(chan struct{}),
		Enabled:  true,
		Interval: interval,
	}
	m.register(provider.Meter(instrumentationName))
	go m.collect()
	return m
}

func (m *Metrics) register(meter metric.Meter) {
	// runtime metrics
	m.RuntimeGoroutine = NewGauge(meter, prefix+"runtime.num_goroutine", "")
	m.RuntimeAlloc = NewGauge(meter, prefix+"runtime.alloc_bytes", "")
	m.RuntimeSys = NewGauge(meter, prefix+"runtime.sys_bytes", "")
	m.RuntimeHeapObjects = NewGauge(meter, prefix+"runtime.heap_objects", "")
	m.RuntimePauseTotalNs = NewGauge(meter, prefix+"runtime.pause_total_ns", "")
	m.RuntimeGC = NewGauge(meter, prefix+"runtime.num_gc", "")

	// counter metrics
	m.CounterDeltaCounter = NewCounter(meter, prefix+"counter.delta", "applied webhook count deltas")
	m.CounterSkippedCounter = NewCounter(meter, prefix+"counter.skipped", "changes that did not produce a write")
	m.CounterFailedCounter = NewCounter(meter, prefix+"counter.failed", "failed delta writes")

	// trigger metrics
	m.TaskPendingGauge = NewGauge(meter, prefix+"task.pending", "")
	m.TriggerEventCounter = NewCounter(meter, prefix+"trigger.event.total", "")
}

func (m *Metrics) collect() {
	ticker := time.NewTicker(m.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.collectRuntimeStats()
		}
	}
}

func (m *Metrics) collectRuntimeStats() {
	m.RuntimeGoroutine.Set(float64(runtime.NumGoroutine()))

	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	m.RuntimeAlloc.Set(float64(stats.Alloc))
	m.RuntimeSys.Set(float64(stats.Sys))
	m.RuntimeHeapObjects.Set(float64(stats.HeapObjects))
	m.RuntimePauseTotalNs.Set(float64(stats.PauseTotalNs))
	m.RuntimeGC.Set(float64(stats.NumGC))
}

func (m *Metrics) Stop() error {
	m.stopOnce.Do(func() { close(m.stop) })
	if m.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return m.shutdown(ctx)
	}
	return nil
}
