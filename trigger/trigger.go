package trigger

import (
	"context"
	"errors"

	"github.com/webhookx-io/hookdash/counter"
	"github.com/webhookx-io/hookdash/db/entities"
	"github.com/webhookx-io/hookdash/utils"
)

var (
	ErrSourceStarted = errors.New("already started")
	ErrSourceStopped = errors.New("already stopped")
)

// Handler consumes webhook change events
type Handler interface {
	Handle(ctx context.Context, change *counter.Change) error
}

// WebhookChange builds the change event for a webhook write
func WebhookChange(before, after *entities.Webhook) *counter.Change {
	change := &counter.Change{
		ID:     utils.UUID(),
		Before: snapshot(before),
		After:  snapshot(after),
	}
	for _, w := range []*entities.Webhook{after, before} {
		if w != nil {
			change.Params = counter.Params{
				EndpointId: w.EndpointId,
				WebhookId:  w.ID,
			}
			break
		}
	}
	return change
}

func snapshot(w *entities.Webhook) *counter.Snapshot {
	if w == nil {
		return &counter.Snapshot{Exists: false}
	}
	return &counter.Snapshot{
		Exists: true,
		Data: map[string]interface{}{
			"event_type": w.EventType,
		},
	}
}
