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
	"github.com/webhookx-io/hookdash/test/helper"
	"github.com/webhookx-io/hookdash/test/helper/factory"
)

var _ = Describe("/endpoints", Ordered, func() {

	var adminClient *resty.Client
	var app *app.Application
	var db *db.DB

	BeforeAll(func() {
		db = helper.InitDB(true, nil)
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

	It("GET /", func() {
		resp, err := adminClient.R().Get("/")
		assert.Nil(GinkgoT(), err)
		assert.Equal(GinkgoT(), 200, resp.StatusCode())
	})

	Context("POST", func() {
		It("creates an endpoint", func() {
			resp, err := adminClient.R().
				SetBody(map[string]interface{}{
					"name":          "orders",
					"webhook_count": 42,
				}).
				SetResult(entities.Endpoint{}).
				Post("/endpoints")
			assert.Nil(GinkgoT(), err)
			assert.Equal(GinkgoT(), 201, resp.StatusCode())

			result := resp.Result().(*entities.Endpoint)
			assert.NotEmpty(GinkgoT(), result.ID)
			assert.Equal(GinkgoT(), "orders", *result.Name)
			assert.EqualValues(GinkgoT(), 0, result.WebhookCount)

			e, err := db.Endpoints.Get(context.TODO(), result.ID)
			assert.Nil(GinkgoT(), err)
			assert.NotNil(GinkgoT(), e)
			assert.EqualValues(GinkgoT(), 0, e.WebhookCount)
		})

		It("returns HTTP 400 for invalid json", func() {
			resp, err := adminClient.R().
				SetBody("").
				Post("/endpoints")
			assert.Nil(GinkgoT(), err)
			assert.Equal(GinkgoT(), 400, resp.StatusCode())
		})

		It("returns HTTP 400 for unique constraint violation", func() {
			endpoint := factory.EndpointP()
			assert.Nil(GinkgoT(), db.Endpoints.Insert(context.TODO(), endpoint))

			resp, err := adminClient.R().
				SetBody(map[string]interface{}{"id": endpoint.ID}).
				Post("/endpoints")
			assert.Nil(GinkgoT(), err)
			assert.Equal(GinkgoT(), 400, resp.StatusCode())
		})
	})

	Context("GET", func() {
		It("retrieves an endpoint", func() {
			endpoint := factory.EndpointP(factory.WithEndpointName("billing"))
			assert.Nil(GinkgoT(), db.Endpoints.Insert(context.TODO(), endpoint))

			resp, err := adminClient.R().
				SetResult(entities.Endpoint{}).
				Get("/endpoints/" + endpoint.ID)
			assert.Nil(GinkgoT(), err)
			assert.Equal(GinkgoT(), 200, resp.StatusCode())
			result := resp.Result().(*entities.Endpoint)
			assert.Equal(GinkgoT(), endpoint.ID, result.ID)
			assert.Equal(GinkgoT(), "billing", *result.Name)
		})

		It("returns HTTP 404", func() {
			resp, err := adminClient.R().Get("/endpoints/notfound")
			assert.Nil(GinkgoT(), err)
			assert.Equal(GinkgoT(), 404, resp.StatusCode())
			assert.Equal(GinkgoT(), `{"message":"not found"}`, string(resp.Body()))
		})

		It("pages endpoints", func() {
			resp, err := adminClient.R().
				SetResult(api.Pagination[*entities.Endpoint]{}).
				Get("/endpoints?page_no=1&page_size=1")
			assert.Nil(GinkgoT(), err)
			assert.Equal(GinkgoT(), 200, resp.StatusCode())
			result := resp.Result().(*api.Pagination[*entities.Endpoint])
			assert.EqualValues(GinkgoT(), 3, result.Total)
			assert.Len(GinkgoT(), result.Data, 1)
		})
	})

	Context("implicit endpoints", func() {
		It("hides rows created by a late decrement", func() {
			id := factory.EndpointP().ID
			assert.Nil(GinkgoT(), db.Endpoints.IncrementWebhookCount(context.TODO(), id, -1))

			e, err := db.Endpoints.Get(context.TODO(), id)
			assert.Nil(GinkgoT(), err)
			assert.True(GinkgoT(), e.Implicit)
			assert.EqualValues(GinkgoT(), -1, e.WebhookCount)

			resp, err := adminClient.R().Get("/endpoints/" + id)
			assert.Nil(GinkgoT(), err)
			assert.Equal(GinkgoT(), 404, resp.StatusCode())

			resp, err = adminClient.R().
				SetResult(api.Pagination[*entities.Endpoint]{}).
				Get("/endpoints?page_size=100")
			assert.Nil(GinkgoT(), err)
			assert.Equal(GinkgoT(), 200, resp.StatusCode())
			result := resp.Result().(*api.Pagination[*entities.Endpoint])
			assert.EqualValues(GinkgoT(), 3, result.Total)
			for _, endpoint := range result.Data {
				assert.NotEqual(GinkgoT(), id, endpoint.ID)
			}
		})

		It("lists implicit rows that hold webhooks", func() {
			id := factory.EndpointP().ID
			assert.Nil(GinkgoT(), db.Endpoints.IncrementWebhookCount(context.TODO(), id, 1))

			resp, err := adminClient.R().
				SetResult(entities.Endpoint{}).
				Get("/endpoints/" + id)
			assert.Nil(GinkgoT(), err)
			assert.Equal(GinkgoT(), 200, resp.StatusCode())
			assert.EqualValues(GinkgoT(), 1, resp.Result().(*entities.Endpoint).WebhookCount)

			resp, err = adminClient.R().
				SetResult(api.Pagination[*entities.Endpoint]{}).
				Get("/endpoints?page_size=100")
			assert.Nil(GinkgoT(), err)
			assert.EqualValues(GinkgoT(), 4, resp.Result().(*api.Pagination[*entities.Endpoint]).Total)
		})
	})

	Context("DELETE", func() {
		It("deletes an endpoint", func() {
			endpoint := factory.EndpointP()
			assert.Nil(GinkgoT(), db.Endpoints.Insert(context.TODO(), endpoint))

			resp, err := adminClient.R().Delete("/endpoints/" + endpoint.ID)
			assert.Nil(GinkgoT(), err)
			assert.Equal(GinkgoT(), 204, resp.StatusCode())

			e, err := db.Endpoints.Get(context.TODO(), endpoint.ID)
			assert.Nil(GinkgoT(), err)
			assert.Nil(GinkgoT(), e)
		})
	})
})
