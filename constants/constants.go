package constants

import (
	"time"

	"github.com/webhookx-io/hookdash"
)

// Task Queue
const (
	TaskQueueName               = "hookdash:queue"
	TaskQueueInvisibleQueueName = "hookdash:queue_invisible"
	TaskQueueDataName           = "hookdash:queue_data"
	TaskQueueVisibilityTimeout  = time.Second * 60
)

// Counter
const (
	DedupKeyPrefix = "hookdash:dedup:"
)

// Client cache
const (
	ClientCacheKeyPrefix = "hookdash:client:"
)

type Header struct {
	Name  string
	Value string
}

var (
	HeaderToken            = "x-token"
	DefaultResponseHeaders = []Header{
		{Name: "Server", Value: "hookdash/" + hookdash.VERSION},
	}
	DefaultClientHeaders = []Header{
		{Name: "User-Agent", Value: "hookdash/" + hookdash.VERSION},
	}
)
