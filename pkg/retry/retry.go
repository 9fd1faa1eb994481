package retry

import (
	"time"
)

type Strategy string

const (
	FixedStrategy Strategy = "fixed"
)

const Stop time.Duration = -1

type Retry interface {
	// NextDelay returns the delay before the given attempt (1-based), or Stop
	NextDelay(attempts int) time.Duration
}

type Option func(Retry)

func NewRetry(strategy Strategy, opts ...Option) Retry {
	var retry Retry
	switch strategy {
	case FixedStrategy:
		retry = newFixedStrategyRetry()
	default:
		panic("invalid strategy: " + strategy)
	}
	for _, opt := range opts {
		opt(retry)
	}
	return retry
}
