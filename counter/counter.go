package counter

import (
	"context"
	"errors"
	"strconv"

	"github.com/webhookx-io/hookdash/pkg/metrics"
	"github.com/webhookx-io/hookdash/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var ErrMissingEndpoint = errors.New("change has no endpointId")

// Writer applies an atomic relative increment to an endpoint's webhook count.
// The endpoint is created when absent.
type Writer interface {
	Increment(ctx context.Context, endpointId string, delta int64) error
}

// Ledger records applied deliveries
type Ledger interface {
	// Acquire returns false when id has already been acquired
	Acquire(ctx context.Context, id string) (bool, error)
	Release(ctx context.Context, id string) error
}

type Maintainer struct {
	writer  Writer
	ledger  Ledger
	metrics *metrics.Metrics
	log     *zap.SugaredLogger
}

type Option func(*Maintainer)

func WithLedger(ledger Ledger) Option {
	return func(m *Maintainer) {
		m.ledger = ledger
	}
}

func WithMetrics(metrics *metrics.Metrics) Option {
	return func(m *Maintainer) {
		m.metrics = metrics
	}
}

func NewMaintainer(writer Writer, log *zap.SugaredLogger, opts ...Option) *Maintainer {
	m := &Maintainer{
		writer: writer,
		log:    log,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handle applies the change to the endpoint's webhook count. Errors are returned
// as-is so the delivery mechanism can redeliver.
func (m *Maintainer) Handle(ctx context.Context, change *Change) error {
	ctx, span := tracing.Start(ctx, "counter.handle")
	defer span.End()

	delta := change.Delta()
	span.SetAttributes(
		attribute.String("change.id", change.ID),
		attribute.String("endpoint.id", change.Params.EndpointId),
		attribute.Int64("delta", delta),
	)
	if delta == 0 {
		m.skipped("noop")
		return nil
	}
	if change.Params.EndpointId == "" {
		tracing.Error(span, ErrMissingEndpoint)
		return ErrMissingEndpoint
	}

	if m.ledger != nil && change.ID != "" {
		ok, err := m.ledger.Acquire(ctx, change.ID)
		if err != nil {
			tracing.Error(span, err)
			return err
		}
		if !ok {
			m.log.Debugf("[counter] skip duplicate delivery %s", change.ID)
			m.skipped("duplicate")
			return nil
		}
	}

	if err := m.writer.Increment(ctx, change.Params.EndpointId, delta); err != nil {
		if m.ledger != nil && change.ID != "" {
			if rerr := m.ledger.Release(ctx, change.ID); rerr != nil {
				m.log.Warnf("[counter] failed to release delivery %s: %v", change.ID, rerr)
			}
		}
		if m.metrics != nil {
			m.metrics.CounterFailedCounter.Add(1)
		}
		tracing.Error(span, err)
		return err
	}

	if m.metrics != nil {
		m.metrics.CounterDeltaCounter.With("delta", strconv.FormatInt(delta, 10)).Add(1)
	}
	m.log.Debugf("[counter] endpoint %s webhook_count %+d (webhook %s)",
		change.Params.EndpointId, delta, change.Params.WebhookId)
	return nil
}

func (m *Maintainer) skipped(reason string) {
	if m.metrics != nil {
		m.metrics.CounterSkippedCounter.With("reason", reason).Add(1)
	}
}
