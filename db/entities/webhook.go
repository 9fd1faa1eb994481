package entities

import (
	"github.com/webhookx-io/hookdash/utils"
)

type Webhook struct {
	ID         string  `json:"id" db:"id"`
	EndpointId string  `json:"endpoint_id" db:"endpoint_id" validate:"required"`
	EventType  string  `json:"event_type" db:"event_type" validate:"required,max=255"`
	Data       JSON    `json:"data" db:"data"`
	Headers    Headers `json:"headers" db:"headers"`

	BaseModel
}

func (m *Webhook) Init() {
	m.ID = utils.KSUID()
}

func (m *Webhook) Validate() error {
	return utils.Validate(m)
}
