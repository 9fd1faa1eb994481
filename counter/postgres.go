package counter

import "context"

type EndpointIncrementer interface {
	IncrementWebhookCount(ctx context.Context, id string, delta int64) error
}

// PostgresWriter upserts endpoints.webhook_count
type PostgresWriter struct {
	endpoints EndpointIncrementer
}

func NewPostgresWriter(endpoints EndpointIncrementer) *PostgresWriter {
	return &PostgresWriter{endpoints: endpoints}
}

func (w *PostgresWriter) Increment(ctx context.Context, endpointId string, delta int64) error {
	return w.endpoints.IncrementWebhookCount(ctx, endpointId, delta)
}
