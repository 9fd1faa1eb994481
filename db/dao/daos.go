package dao

import (
	"context"

	"github.com/webhookx-io/hookdash/db/entities"
	"github.com/webhookx-io/hookdash/db/query"
)

type BaseDAO[T any] interface {
	Get(ctx context.Context, id string) (*T, error)
	Insert(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id string) (bool, error)
	Page(ctx context.Context, q query.Queryer) ([]*T, int64, error)
	List(ctx context.Context, q query.Queryer) ([]*T, error)
	Count(ctx context.Context, conditions map[string]interface{}) (int64, error)
}

type EndpointDAO interface {
	BaseDAO[entities.Endpoint]
	// IncrementWebhookCount adds delta to webhook_count, creating the endpoint row when absent
	IncrementWebhookCount(ctx context.Context, id string, delta int64) error
}

type WebhookDAO interface {
	BaseDAO[entities.Webhook]
}

// ChangeHook observes webhook writes. before is nil for an insert, after is nil for a delete.
// A returned error fails the write.
type ChangeHook func(ctx context.Context, before, after *entities.Webhook) error
