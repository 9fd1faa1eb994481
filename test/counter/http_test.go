package counter

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/webhookx-io/hookdash/app"
	"github.com/webhookx-io/hookdash/db"
	"github.com/webhookx-io/hookdash/db/entities"
	"github.com/webhookx-io/hookdash/test/helper"
	"github.com/webhookx-io/hookdash/test/helper/factory"
	"github.com/webhookx-io/hookdash/utils"
)

func documentName(endpointId, webhookId string) string {
	return fmt.Sprintf("projects/demo/databases/(default)/documents/endpoints/%s/webhooks/%s", endpointId, webhookId)
}

var _ = Describe("http source", Ordered, func() {

	var triggerClient *resty.Client
	var app *app.Application
	var db *db.DB

	BeforeAll(func() {
		db = helper.InitDB(true, nil)
		var err error
		triggerClient = helper.TriggerClient()
		app, err = helper.Start(map[string]string{
			"HOOKDASH_TRIGGER_SOURCE":        "http",
			"HOOKDASH_TRIGGER_DEDUP_ENABLED": "true",
			"HOOKDASH_ADMIN_LISTEN":          "off",
		})
		assert.Nil(GinkgoT(), err)
	})

	AfterAll(func() {
		app.Stop()
	})

	It("applies document writes to the endpoint counter", func() {
		endpointId := utils.UUID()
		name := documentName(endpointId, "w1")
		// delivery ids outlive a test run in redis
		eventId := func(n int) string { return fmt.Sprintf("%s-%d", endpointId, n) }

		resp, err := triggerClient.R().
			SetHeader("ce-id", eventId(1)).
			SetBody(map[string]interface{}{
				"value": map[string]interface{}{"name": name},
			}).
			Post("/events/firestore")
		assert.Nil(GinkgoT(), err)
		assert.Equal(GinkgoT(), 204, resp.StatusCode())
		assert.EqualValues(GinkgoT(), 1, webhookCount(db, endpointId)())

		By("redelivering the same event")
		resp, err = triggerClient.R().
			SetHeader("ce-id", eventId(1)).
			SetBody(map[string]interface{}{
				"value": map[string]interface{}{"name": name},
			}).
			Post("/events/firestore")
		assert.Nil(GinkgoT(), err)
		assert.Equal(GinkgoT(), 204, resp.StatusCode())
		assert.EqualValues(GinkgoT(), 1, webhookCount(db, endpointId)())

		By("updating the document")
		resp, err = triggerClient.R().
			SetHeader("ce-id", eventId(2)).
			SetBody(map[string]interface{}{
				"oldValue": map[string]interface{}{"name": name},
				"value":    map[string]interface{}{"name": name},
			}).
			Post("/events/firestore")
		assert.Nil(GinkgoT(), err)
		assert.Equal(GinkgoT(), 204, resp.StatusCode())
		assert.EqualValues(GinkgoT(), 1, webhookCount(db, endpointId)())

		By("deleting the document")
		resp, err = triggerClient.R().
			SetHeader("ce-id", eventId(3)).
			SetBody(map[string]interface{}{
				"oldValue": map[string]interface{}{"name": name},
			}).
			Post("/events/firestore")
		assert.Nil(GinkgoT(), err)
		assert.Equal(GinkgoT(), 204, resp.StatusCode())
		assert.EqualValues(GinkgoT(), 0, webhookCount(db, endpointId)())
	})

	It("rejects documents outside the webhooks collection", func() {
		resp, err := triggerClient.R().
			SetBody(map[string]interface{}{
				"value": map[string]interface{}{"name": "projects/demo/databases/(default)/documents/endpoints/e1"},
			}).
			Post("/events/firestore")
		assert.Nil(GinkgoT(), err)
		assert.Equal(GinkgoT(), 400, resp.StatusCode())
		Consistently(webhookCount(db, "e1"), 500*time.Millisecond, 100*time.Millisecond).Should(BeEquivalentTo(-1))
	})

	It("answers 5xx when the counter cannot be written", func() {
		// counter ids are limited to 36 characters
		long := fmt.Sprintf("%040d", 1)
		resp, err := triggerClient.R().
			SetHeader("ce-id", utils.UUID()).
			SetBody(map[string]interface{}{
				"value": map[string]interface{}{"name": documentName(long, "w1")},
			}).
			Post("/events/firestore")
		assert.Nil(GinkgoT(), err)
		assert.Equal(GinkgoT(), 500, resp.StatusCode())
	})
})

var _ = Describe("http source with admin writes", Ordered, func() {

	var adminClient *resty.Client
	var app *app.Application
	var db *db.DB
	var endpoint *entities.Endpoint

	BeforeAll(func() {
		endpoint = factory.EndpointP()
		db = helper.InitDB(true, &helper.EntitiesConfig{
			Endpoints: []*entities.Endpoint{endpoint},
		})
		var err error
		adminClient = helper.AdminClient()
		app, err = helper.Start(map[string]string{
			"HOOKDASH_TRIGGER_SOURCE": "http",
		})
		assert.Nil(GinkgoT(), err)
	})

	AfterAll(func() {
		app.Stop()
	})

	It("counts webhooks written through the admin API", func() {
		resp, err := adminClient.R().
			SetBody(map[string]interface{}{"event_type": "charge.succeeded"}).
			SetResult(entities.Webhook{}).
			Post("/endpoints/" + endpoint.ID + "/webhooks")
		assert.Nil(GinkgoT(), err)
		assert.Equal(GinkgoT(), 201, resp.StatusCode())
		assert.EqualValues(GinkgoT(), 1, webhookCount(db, endpoint.ID)())

		id := resp.Result().(*entities.Webhook).ID
		resp, err = adminClient.R().Delete("/endpoints/" + endpoint.ID + "/webhooks/" + id)
		assert.Nil(GinkgoT(), err)
		assert.Equal(GinkgoT(), 204, resp.StatusCode())
		assert.EqualValues(GinkgoT(), 0, webhookCount(db, endpoint.ID)())
	})
})
