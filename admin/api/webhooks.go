package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/webhookx-io/hookdash/db/entities"
	"github.com/webhookx-io/hookdash/db/query"
	"github.com/webhookx-io/hookdash/pkg/types"
)

func (api *API) PageWebhook(w http.ResponseWriter, r *http.Request) {
	endpointId := api.param(r, "id")
	var q query.WebhookQuery
	q.EndpointId = &endpointId
	if eventType := api.query(r, "event_type"); eventType != "" {
		q.EventType = &eventType
	}
	q.Order("id", query.DESC)
	api.bindQuery(r, &q.Query)
	list, total, err := api.db.Webhooks.Page(r.Context(), &q)
	api.assert(err)

	api.json(200, w, NewPagination(total, list))
}

// getWebhook returns the webhook only when it belongs to the endpoint in the path
func (api *API) getWebhook(ctx context.Context, r *http.Request) (*entities.Webhook, error) {
	webhook, err := api.db.Webhooks.Get(ctx, api.param(r, "webhook_id"))
	if err != nil || webhook == nil {
		return nil, err
	}
	if webhook.EndpointId != api.param(r, "id") {
		return nil, nil
	}
	return webhook, nil
}

func (api *API) GetWebhook(w http.ResponseWriter, r *http.Request) {
	webhook, err := api.getWebhook(r.Context(), r)
	api.assert(err)

	if webhook == nil {
		api.json(404, w, types.ErrorResponse{Message: MsgNotFound})
		return
	}

	api.json(200, w, webhook)
}

func (api *API) CreateWebhook(w http.ResponseWriter, r *http.Request) {
	var webhook entities.Webhook
	webhook.Init()
	if err := json.NewDecoder(r.Body).Decode(&webhook); err != nil {
		api.error(400, w, err)
		return
	}

	webhook.EndpointId = api.param(r, "id")
	if err := webhook.Validate(); err != nil {
		api.error(400, w, err)
		return
	}

	err := api.db.TX(r.Context(), func(ctx context.Context) error {
		return api.db.Webhooks.Insert(ctx, &webhook)
	})
	api.assert(err)

	api.json(201, w, webhook)
}

func (api *API) UpdateWebhook(w http.ResponseWriter, r *http.Request) {
	var webhook *entities.Webhook
	var invalid error
	err := api.db.TX(r.Context(), func(ctx context.Context) error {
		var err error
		webhook, err = api.getWebhook(ctx, r)
		if err != nil || webhook == nil {
			return err
		}
		id, endpointId := webhook.ID, webhook.EndpointId
		if invalid = json.NewDecoder(r.Body).Decode(webhook); invalid != nil {
			return nil
		}
		webhook.ID, webhook.EndpointId = id, endpointId
		if invalid = webhook.Validate(); invalid != nil {
			return nil
		}
		return api.db.Webhooks.Update(ctx, webhook)
	})
	api.assert(err)

	if webhook == nil {
		api.json(404, w, types.ErrorResponse{Message: MsgNotFound})
		return
	}
	if invalid != nil {
		api.error(400, w, invalid)
		return
	}

	api.json(200, w, webhook)
}

func (api *API) DeleteWebhook(w http.ResponseWriter, r *http.Request) {
	err := api.db.TX(r.Context(), func(ctx context.Context) error {
		webhook, err := api.getWebhook(ctx, r)
		if err != nil || webhook == nil {
			return err
		}
		_, err = api.db.Webhooks.Delete(ctx, webhook.ID)
		return err
	})
	api.assert(err)

	w.WriteHeader(204)
}
