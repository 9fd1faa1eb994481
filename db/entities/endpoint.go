package entities

import (
	"github.com/webhookx-io/hookdash/utils"
)

type Endpoint struct {
	ID           string  `json:"id" db:"id"`
	Name         *string `json:"name" db:"name" validate:"omitempty,max=255"`
	Description  *string `json:"description" db:"description"`
	WebhookCount int64   `json:"webhook_count" db:"webhook_count"`
	// Implicit is set on rows created by a counter write for an unknown endpoint
	Implicit bool `json:"-" db:"implicit"`

	BaseModel
}

func (m *Endpoint) Init() {
	m.ID = utils.UUID()
}

func (m *Endpoint) Validate() error {
	return utils.Validate(m)
}
