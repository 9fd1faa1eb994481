package dao

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/webhookx-io/hookdash/db/entities"
)

type endpointDAO struct {
	*DAO[entities.Endpoint]
}

func NewEndpointDAO(db *sqlx.DB) EndpointDAO {
	opts := Options{
		Table:      "endpoints",
		EntityName: "endpoint",
	}
	return &endpointDAO{
		DAO: NewDAO[entities.Endpoint](db, opts),
	}
}

func incrementSQL(id string, delta int64) (string, []interface{}) {
	return psql.Insert("endpoints").
		Columns("id", "webhook_count", "implicit").
		Values(id, delta, true).
		Suffix("ON CONFLICT (id) DO UPDATE SET webhook_count = endpoints.webhook_count + EXCLUDED.webhook_count, updated_at = now()").
		MustSql()
}

func (dao *endpointDAO) IncrementWebhookCount(ctx context.Context, id string, delta int64) error {
	statement, args := incrementSQL(id, delta)
	dao.debugSQL(statement, args)
	_, err := dao.DB(ctx).ExecContext(ctx, statement, args...)
	return err
}

