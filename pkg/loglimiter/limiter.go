package loglimiter

import (
	"sync"
	"time"
)

type entry struct {
	last       time.Time
	suppressed int
}

// Limiter lets one log per key through each window
type Limiter struct {
	mux    sync.Mutex
	window time.Duration
	logs   map[string]*entry
}

func NewLimiter(window time.Duration) *Limiter {
	return &Limiter{
		window: window,
		logs:   make(map[string]*entry),
	}
}

func (l *Limiter) Allow(key string) bool {
	ok, _ := l.AllowN(key)
	return ok
}

// AllowN is Allow that also returns how many logs of key were dropped since the last allowed one
func (l *Limiter) AllowN(key string) (bool, int) {
	l.mux.Lock()
	defer l.mux.Unlock()

	now := time.Now()
	e, ok := l.logs[key]
	if !ok {
		l.logs[key] = &entry{last: now}
		return true, 0
	}
	if now.Sub(e.last) > l.window {
		suppressed := e.suppressed
		e.last = now
		e.suppressed = 0
		return true, suppressed
	}

	e.suppressed++
	return false, 0
}
