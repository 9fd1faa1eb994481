package counter

// Snapshot is the state of a webhook document at one side of a write
type Snapshot struct {
	Exists bool                   `json:"exists"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

func (s *Snapshot) exists() bool {
	return s != nil && s.Exists
}

// Params are the wildcards captured from endpoints/{endpointId}/webhooks/{webhookId}
type Params struct {
	EndpointId string `json:"endpointId"`
	WebhookId  string `json:"webhookId"`
}

// Change is a document-change event for a webhook.
// ID identifies the delivery and is only used by the dedup ledger.
type Change struct {
	ID     string    `json:"id,omitempty"`
	Before *Snapshot `json:"before"`
	After  *Snapshot `json:"after"`
	Params Params    `json:"params"`
}

// Delta returns the webhook_count adjustment for an existence transition
func (c *Change) Delta() int64 {
	before, after := c.Before.exists(), c.After.exists()
	switch {
	case !before && after:
		return 1
	case before && !after:
		return -1
	default:
		return 0
	}
}
