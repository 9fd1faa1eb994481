package dao

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/webhookx-io/hookdash/db/entities"
)

type webhookDAO struct {
	*DAO[entities.Webhook]
	hook ChangeHook
}

func NewWebhookDAO(db *sqlx.DB, hook ChangeHook) WebhookDAO {
	opts := Options{
		Table:      "webhooks",
		EntityName: "webhook",
	}
	return &webhookDAO{
		DAO:  NewDAO[entities.Webhook](db, opts),
		hook: hook,
	}
}

func (dao *webhookDAO) notify(ctx context.Context, before, after *entities.Webhook) error {
	if dao.hook == nil {
		return nil
	}
	return dao.hook(ctx, before, after)
}

func (dao *webhookDAO) Insert(ctx context.Context, webhook *entities.Webhook) error {
	if err := dao.DAO.Insert(ctx, webhook); err != nil {
		return err
	}
	return dao.notify(ctx, nil, webhook)
}

func (dao *webhookDAO) Update(ctx context.Context, webhook *entities.Webhook) error {
	before, err := dao.getForUpdate(ctx, webhook.ID)
	if err != nil {
		return err
	}
	if before == nil {
		return ErrNoRows
	}
	if err := dao.DAO.Update(ctx, webhook); err != nil {
		return err
	}
	return dao.notify(ctx, before, webhook)
}

func (dao *webhookDAO) Delete(ctx context.Context, id string) (bool, error) {
	before, err := dao.deleteReturning(ctx, id)
	if err != nil || before == nil {
		return false, err
	}
	return true, dao.notify(ctx, before, nil)
}
