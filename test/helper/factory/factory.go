package factory

import (
	"github.com/webhookx-io/hookdash/db/entities"
)

// Endpoint

type EndpointOption func(*entities.Endpoint)

func WithEndpointID(id string) EndpointOption {
	return func(e *entities.Endpoint) {
		e.ID = id
	}
}

func WithEndpointName(name string) EndpointOption {
	return func(e *entities.Endpoint) {
		e.Name = &name
	}
}

func EndpointP(opts ...EndpointOption) *entities.Endpoint {
	var entity entities.Endpoint
	entity.Init()
	for _, opt := range opts {
		opt(&entity)
	}
	return &entity
}

// Webhook

type WebhookOption func(*entities.Webhook)

func WithWebhookEventType(eventType string) WebhookOption {
	return func(e *entities.Webhook) {
		e.EventType = eventType
	}
}

func WebhookP(endpointId string, opts ...WebhookOption) *entities.Webhook {
	var entity entities.Webhook
	entity.Init()
	entity.EndpointId = endpointId
	entity.EventType = "foo.bar"
	entity.Data = entities.JSON(`{"key":"value"}`)
	for _, opt := range opts {
		opt(&entity)
	}
	return &entity
}
