package safe

import (
	"runtime"

	"go.uber.org/zap"
)

// Go runs fn in a new goroutine. A panic is logged to log and ends only that goroutine.
func Go(log *zap.SugaredLogger, fn func()) {
	go func() {
		defer func() {
			if err := recover(); err != nil {
				buf := make([]byte, 2048)
				n := runtime.Stack(buf, false)
				buf = buf[:n]

				log.Errorf("goroutine panic: %v\n %s", err, buf)
			}
		}()
		fn()
	}()
}
