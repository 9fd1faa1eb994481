package webhooks

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/webhookx-io/hookdash/pkg/types"
)

// Cursor is the server's opaque pagination cursor, sent back verbatim
type Cursor json.RawMessage

func (c Cursor) IsZero() bool {
	return len(c) == 0 || bytes.Equal(c, []byte("null"))
}

func (c Cursor) MarshalJSON() ([]byte, error) {
	if len(c) == 0 {
		return []byte("null"), nil
	}
	return c, nil
}

func (c *Cursor) UnmarshalJSON(b []byte) error {
	*c = append((*c)[0:0], b...)
	return nil
}

type Webhook struct {
	ID         string            `json:"id"`
	EndpointId string            `json:"endpointId"`
	EventType  string            `json:"eventType"`
	Data       json.RawMessage   `json:"data,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	CreatedAt  types.Time        `json:"createdAt"`
}

type PageInfo struct {
	EndCursor   Cursor `json:"endCursor"`
	HasNextPage bool   `json:"hasNextPage"`
}

// Connection is one page, or the merged pages, of an endpoint's webhooks
type Connection struct {
	Nodes    []Webhook `json:"nodes"`
	PageInfo PageInfo  `json:"pageInfo"`
}

func (c *Connection) clone() *Connection {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Nodes = append([]Webhook(nil), c.Nodes...)
	clone.PageInfo.EndCursor = append(Cursor(nil), c.PageInfo.EndCursor...)
	return &clone
}

func (c *Connection) contains(id string) bool {
	for _, node := range c.Nodes {
		if node.ID == id {
			return true
		}
	}
	return false
}

// CreatedEvent is one result of the webhook-created subscription
type CreatedEvent struct {
	Webhook *Webhook
	Err     error
}

// Stream is a live subscription. Events is closed once the stream ends.
type Stream interface {
	Events() <-chan CreatedEvent
	Close()
}

// Transport fetches pages and subscribes to creations
type Transport interface {
	FetchPage(ctx context.Context, endpointID string, after Cursor) (*Connection, error)
	SubscribeCreated(ctx context.Context, endpointID string) (Stream, error)
}
