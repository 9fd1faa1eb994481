package admin

import (
	"context"

	"github.com/go-resty/resty/v2"
	. "github.com/onsi/ginkgo/v2"
	"github.com/stretchr/testify/assert"
	"github.com/webhookx-io/hookdash/admin/api"
	"github.com/webhookx-io/hookdash/app"
	"github.com/webhookx-io/hookdash/db"
	"github.com/webhookx-io/hookdash/db/entities"
	"github.com/webhookx-io/hookdash/db/query"
	"github.com/webhookx-io/hookdash/test/helper"
	"github.com/webhookx-io/hookdash/test/helper/factory"
)

var _ = Describe("/endpoints/{id}/webhooks", Ordered, func() {

	var adminClient *resty.Client
	var app *app.Application
	var db *db.DB
	var endpoint *entities.Endpoint
	var other *entities.Endpoint

	BeforeAll(func() {
		endpoint = factory.EndpointP()
		other = factory.EndpointP()
		db = helper.InitDB(true, &helper.EntitiesConfig{
			Endpoints: []*entities.Endpoint{endpoint, other},
			Webhooks:  []*entities.Webhook{factory.WebhookP(other.ID)},
		})
		var err error
		adminClient = helper.AdminClient()
		app, err = helper.Start(map[string]string{
			"HOOKDASH_TRIGGER_SOURCE": "off",
		})
		assert.Nil(GinkgoT(), err)
	})

	AfterAll(func() {
		app.Stop()
	})

	Context("POST", func() {
		It("creates a webhook", func() {
			resp, err := adminClient.R().
				SetBody(map[string]interface{}{
					"event_type": "charge.succeeded",
					"data":       map[string]interface{}{"amount": 100},
				}).
				SetResult(entities.Webhook{}).
				Post("/endpoints/" + endpoint.ID + "/webhooks")
			assert.Nil(GinkgoT(), err)
			assert.Equal(GinkgoT(), 201, resp.StatusCode())

			result := resp.Result().(*entities.Webhook)
			assert.NotEmpty(GinkgoT(), result.ID)
			assert.Equal(GinkgoT(), endpoint.ID, result.EndpointId)
			assert.Equal(GinkgoT(), "charge.succeeded", result.EventType)

			w, err := db.Webhooks.Get(context.TODO(), result.ID)
			assert.Nil(GinkgoT(), err)
			assert.JSONEq(GinkgoT(), `{"amount":100}`, string(w.Data))
		})

		It("returns HTTP 400 for missing required fields", func() {
			resp, err := adminClient.R().
				SetBody(map[string]interface{}{}).
				Post("/endpoints/" + endpoint.ID + "/webhooks")
			assert.Nil(GinkgoT(), err)
			assert.Equal(GinkgoT(), 400, resp.StatusCode())
			assert.Equal(GinkgoT(),
				`{"message":"Request Validation","error":{"message":"request validation","fields":{"event_type":"required field missing"}}}`,
				string(resp.Body()))
		})

		It("returns HTTP 400 for unknown endpoint", func() {
			resp, err := adminClient.R().
				SetBody(map[string]interface{}{"event_type": "charge.succeeded"}).
				Post("/endpoints/unknown/webhooks")
			assert.Nil(GinkgoT(), err)
			assert.Equal(GinkgoT(), 400, resp.StatusCode())
			assert.Contains(GinkgoT(), string(resp.Body()), "foreign key constraint violation")
		})
	})

	Context("GET", func() {
		It("pages webhooks of the endpoint only", func() {
			resp, err := adminClient.R().
				SetResult(api.Pagination[*entities.Webhook]{}).
				Get("/endpoints/" + endpoint.ID + "/webhooks")
			assert.Nil(GinkgoT(), err)
			assert.Equal(GinkgoT(), 200, resp.StatusCode())
			result := resp.Result().(*api.Pagination[*entities.Webhook])
			assert.EqualValues(GinkgoT(), 1, result.Total)
			assert.Equal(GinkgoT(), endpoint.ID, result.Data[0].EndpointId)
		})

		It("returns HTTP 404 for a webhook of another endpoint", func() {
			var q query.WebhookQuery
			q.EndpointId = &other.ID
			list, err := db.Webhooks.List(context.TODO(), &q)
			assert.Nil(GinkgoT(), err)
			assert.Len(GinkgoT(), list, 1)

			resp, err := adminClient.R().Get("/endpoints/" + endpoint.ID + "/webhooks/" + list[0].ID)
			assert.Nil(GinkgoT(), err)
			assert.Equal(GinkgoT(), 404, resp.StatusCode())

			resp, err = adminClient.R().Get("/endpoints/" + other.ID + "/webhooks/" + list[0].ID)
			assert.Nil(GinkgoT(), err)
			assert.Equal(GinkgoT(), 200, resp.StatusCode())
		})
	})

	Context("PUT", func() {
		It("updates a webhook", func() {
			webhook := factory.WebhookP(endpoint.ID)
			assert.Nil(GinkgoT(), db.Webhooks.Insert(context.TODO(), webhook))

			resp, err := adminClient.R().
				SetBody(map[string]interface{}{
					"event_type":  "charge.refunded",
					"endpoint_id": other.ID,
				}).
				SetResult(entities.Webhook{}).
				Put("/endpoints/" + endpoint.ID + "/webhooks/" + webhook.ID)
			assert.Nil(GinkgoT(), err)
			assert.Equal(GinkgoT(), 200, resp.StatusCode())
			result := resp.Result().(*entities.Webhook)
			assert.Equal(GinkgoT(), "charge.refunded", result.EventType)
			assert.Equal(GinkgoT(), endpoint.ID, result.EndpointId)
		})

		It("returns HTTP 404", func() {
			resp, err := adminClient.R().
				SetBody(map[string]interface{}{"event_type": "charge.refunded"}).
				Put("/endpoints/" + endpoint.ID + "/webhooks/unknown")
			assert.Nil(GinkgoT(), err)
			assert.Equal(GinkgoT(), 404, resp.StatusCode())
		})
	})

	Context("DELETE", func() {
		It("deletes a webhook", func() {
			webhook := factory.WebhookP(endpoint.ID)
			assert.Nil(GinkgoT(), db.Webhooks.Insert(context.TODO(), webhook))

			resp, err := adminClient.R().Delete("/endpoints/" + endpoint.ID + "/webhooks/" + webhook.ID)
			assert.Nil(GinkgoT(), err)
			assert.Equal(GinkgoT(), 204, resp.StatusCode())

			w, err := db.Webhooks.Get(context.TODO(), webhook.ID)
			assert.Nil(GinkgoT(), err)
			assert.Nil(GinkgoT(), w)
		})
	})
})
