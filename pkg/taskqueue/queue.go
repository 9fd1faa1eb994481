package taskqueue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/webhookx-io/hookdash/utils"
)

type TaskMessage struct {
	ID          string
	ScheduledAt time.Time
	Data        interface{}

	data []byte
}

func NewTaskMessage(data interface{}) *TaskMessage {
	return &TaskMessage{
		ID:          utils.UUID(),
		ScheduledAt: time.Now(),
		Data:        data,
	}
}

func (t *TaskMessage) String() string {
	return t.ID + ":" + string(t.data)
}

func (t *TaskMessage) MarshalData() ([]byte, error) {
	if t.data != nil {
		return t.data, nil
	}
	b, err := json.Marshal(t.Data)
	if err != nil {
		return nil, err
	}
	t.data = b
	return b, nil
}

func (t *TaskMessage) UnmarshalData(v interface{}) error {
	data, err := t.MarshalData()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

type GetOptions struct {
	Count int64
}

type TaskQueue interface {
	Add(ctx context.Context, tasks []*TaskMessage) error
	Get(ctx context.Context, opts *GetOptions) ([]*TaskMessage, error)
	Delete(ctx context.Context, task *TaskMessage) error
	// Schedule moves a queued task to at
	Schedule(ctx context.Context, task *TaskMessage, at time.Time) error
	Size(ctx context.Context) (int64, error)
}
