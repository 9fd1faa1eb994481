package counter

import (
	"context"
	"errors"
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
)

func webhookCount(db *db.DB, id string) func() int64 {
	return func() int64 {
		e, err := db.Endpoints.Get(context.TODO(), id)
		if err != nil || e == nil {
			return -1
		}
		return e.WebhookCount
	}
}

var _ = Describe("queue source", Ordered, func() {

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
			"HOOKDASH_TRIGGER_SOURCE":        "queue",
			"HOOKDASH_TRIGGER_DEDUP_ENABLED": "true",
		})
		assert.Nil(GinkgoT(), err)
	})

	AfterAll(func() {
		app.Stop()
	})

	It("counts webhooks created through the admin API", func() {
		ids := make([]string, 0)
		for i := 0; i < 5; i++ {
			resp, err := adminClient.R().
				SetBody(map[string]interface{}{"event_type": "charge.succeeded"}).
				SetResult(entities.Webhook{}).
				Post("/endpoints/" + endpoint.ID + "/webhooks")
			assert.Nil(GinkgoT(), err)
			assert.Equal(GinkgoT(), 201, resp.StatusCode())
			ids = append(ids, resp.Result().(*entities.Webhook).ID)
		}

		Eventually(webhookCount(db, endpoint.ID), 5*time.Second, 100*time.Millisecond).Should(BeEquivalentTo(5))

		By("updating a webhook")
		resp, err := adminClient.R().
			SetBody(map[string]interface{}{"event_type": "charge.refunded"}).
			Put("/endpoints/" + endpoint.ID + "/webhooks/" + ids[0])
		assert.Nil(GinkgoT(), err)
		assert.Equal(GinkgoT(), 200, resp.StatusCode())
		Consistently(webhookCount(db, endpoint.ID), 2*time.Second, 200*time.Millisecond).Should(BeEquivalentTo(5))

		By("deleting webhooks")
		for _, id := range ids[:2] {
			resp, err := adminClient.R().Delete("/endpoints/" + endpoint.ID + "/webhooks/" + id)
			assert.Nil(GinkgoT(), err)
			assert.Equal(GinkgoT(), 204, resp.StatusCode())
		}
		Eventually(webhookCount(db, endpoint.ID), 5*time.Second, 100*time.Millisecond).Should(BeEquivalentTo(3))
	})

	It("does not count writes that are rolled back", func() {
		err := app.DB().TX(context.TODO(), func(ctx context.Context) error {
			if err := app.DB().Webhooks.Insert(ctx, factory.WebhookP(endpoint.ID)); err != nil {
				return err
			}
			return errors.New("rollback")
		})
		assert.EqualError(GinkgoT(), err, "rollback")
		Consistently(webhookCount(db, endpoint.ID), 2*time.Second, 200*time.Millisecond).Should(BeEquivalentTo(3))
	})

	It("does not count webhooks of unknown endpoints", func() {
		resp, err := adminClient.R().
			SetBody(map[string]interface{}{"event_type": "charge.succeeded"}).
			Post("/endpoints/unknown/webhooks")
		assert.Nil(GinkgoT(), err)
		assert.Equal(GinkgoT(), 400, resp.StatusCode())
		Consistently(webhookCount(db, "unknown"), time.Second, 200*time.Millisecond).Should(BeEquivalentTo(-1))
	})
})
