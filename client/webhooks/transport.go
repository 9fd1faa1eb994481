package webhooks

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/webhookx-io/hookdash/client/graphql"
)

// GraphQLTransport runs the webhook documents on a graphql.Client
type GraphQLTransport struct {
	client *graphql.Client
}

func NewGraphQLTransport(client *graphql.Client) *GraphQLTransport {
	return &GraphQLTransport{client: client}
}

func (t *GraphQLTransport) FetchPage(ctx context.Context, endpointID string, after Cursor) (*Connection, error) {
	variables := map[string]interface{}{"endpointId": endpointID}
	if !after.IsZero() {
		variables["after"] = json.RawMessage(after)
	}
	var out struct {
		Webhooks *Connection `json:"webhooks"`
	}
	err := t.client.Query(ctx, &graphql.Request{
		Query:         GetWebhooksQuery,
		OperationName: "getWebhooks",
		Variables:     variables,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Webhooks == nil {
		return &Connection{}, nil
	}
	return out.Webhooks, nil
}

func (t *GraphQLTransport) SubscribeCreated(ctx context.Context, endpointID string) (Stream, error) {
	sub := t.client.Subscribe(ctx, &graphql.Request{
		Query:         WebhookCreatedSubscription,
		OperationName: "webhookCreated",
		Variables:     map[string]interface{}{"endpointId": endpointID},
	})
	s := &graphqlStream{
		sub:    sub,
		events: make(chan CreatedEvent),
		stop:   make(chan struct{}),
	}
	go s.run()
	return s, nil
}

type graphqlStream struct {
	sub    *graphql.Subscription
	events chan CreatedEvent
	stop   chan struct{}
	once   sync.Once
}

type createdPayload struct {
	WebhookCreated *struct {
		Webhook *Webhook `json:"webhook"`
	} `json:"webhookCreated"`
}

func (s *graphqlStream) run() {
	defer close(s.events)
	for e := range s.sub.Events() {
		event := CreatedEvent{Err: e.Err}
		if e.Err == nil {
			var payload createdPayload
			if err := json.Unmarshal(e.Data, &payload); err != nil {
				event.Err = err
			} else if payload.WebhookCreated != nil {
				event.Webhook = payload.WebhookCreated.Webhook
			}
		}
		select {
		case s.events <- event:
		case <-s.stop:
			return
		}
	}
}

func (s *graphqlStream) Events() <-chan CreatedEvent {
	return s.events
}

func (s *graphqlStream) Close() {
	s.once.Do(func() {
		close(s.stop)
		s.sub.Close()
	})
}
