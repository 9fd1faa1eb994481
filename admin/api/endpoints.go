package api

import (
	"encoding/json"
	"net/http"

	"github.com/creasty/defaults"
	"github.com/webhookx-io/hookdash/db/entities"
	"github.com/webhookx-io/hookdash/db/query"
	"github.com/webhookx-io/hookdash/pkg/types"
)

func (api *API) PageEndpoint(w http.ResponseWriter, r *http.Request) {
	var q query.EndpointQuery
	q.Visible = true
	q.Order("id", query.DESC)
	api.bindQuery(r, &q.Query)
	list, total, err := api.db.Endpoints.Page(r.Context(), &q)
	api.assert(err)

	api.json(200, w, NewPagination(total, list))
}

func (api *API) GetEndpoint(w http.ResponseWriter, r *http.Request) {
	id := api.param(r, "id")
	endpoint, err := api.db.Endpoints.Get(r.Context(), id)
	api.assert(err)

	if endpoint == nil || (endpoint.Implicit && endpoint.WebhookCount <= 0) {
		api.json(404, w, types.ErrorResponse{Message: MsgNotFound})
		return
	}

	api.json(200, w, endpoint)
}

func (api *API) CreateEndpoint(w http.ResponseWriter, r *http.Request) {
	var endpoint entities.Endpoint
	endpoint.Init()
	_ = defaults.Set(&endpoint)
	if err := json.NewDecoder(r.Body).Decode(&endpoint); err != nil {
		api.error(400, w, err)
		return
	}

	if err := endpoint.Validate(); err != nil {
		api.error(400, w, err)
		return
	}

	// webhook_count is owned by the counter
	endpoint.WebhookCount = 0
	err := api.db.Endpoints.Insert(r.Context(), &endpoint)
	api.assert(err)

	api.json(201, w, endpoint)
}

func (api *API) DeleteEndpoint(w http.ResponseWriter, r *http.Request) {
	id := api.param(r, "id")
	_, err := api.db.Endpoints.Delete(r.Context(), id)
	api.assert(err)

	w.WriteHeader(204)
}
