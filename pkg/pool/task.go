package pool

import (
	"runtime"

	"go.uber.org/zap"
)

type Task interface {
	Execute()
}

type task struct {
	fn func()
}

func (t *task) Execute() {
	defer func() {
		if e := recover(); e != nil {
			buf := make([]byte, 2048)
			n := runtime.Stack(buf, false)
			buf = buf[:n]
			zap.S().Errorf("panic recovered: %v\n %s", e, buf)
		}
	}()
	t.fn()
}
